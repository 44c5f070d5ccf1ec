package fetcher

import (
	"context"
	"io"
	"os"
	"strings"

	"github.com/rotisserie/eris"
)

// FileFetcher reads workbooks from the local filesystem. Accepts plain paths
// and file:// URLs.
type FileFetcher struct{}

// NewFileFetcher creates a FileFetcher.
func NewFileFetcher() *FileFetcher {
	return &FileFetcher{}
}

// Download opens the local file and returns it.
func (f *FileFetcher) Download(_ context.Context, rawURL string) (io.ReadCloser, error) {
	path := strings.TrimPrefix(rawURL, "file://")
	file, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "open %s", path)
	}
	return file, nil
}
