package fetcher

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestForURL(t *testing.T) {
	opts := Options{Timeout: time.Second}

	_, isHTTP := ForURL("https://example.com/x.xlsx", opts).(*HTTPFetcher)
	assert.True(t, isHTTP)

	_, isFTP := ForURL("ftp://example.com/x.xlsx", opts).(*FTPFetcher)
	assert.True(t, isFTP)

	_, isFile := ForURL("/tmp/x.xlsx", opts).(*FileFetcher)
	assert.True(t, isFile)

	_, isFile = ForURL("file:///tmp/x.xlsx", opts).(*FileFetcher)
	assert.True(t, isFile)
}

func TestFileFetcher(t *testing.T) {
	path := filepath.Join(t.TempDir(), "x.bin")
	require.NoError(t, os.WriteFile(path, []byte("payload"), 0o644))

	f := NewFileFetcher()
	rc, err := f.Download(context.Background(), "file://"+path)
	require.NoError(t, err)
	defer rc.Close()

	bs, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, "payload", string(bs))
}

func TestFileFetcher_Missing(t *testing.T) {
	f := NewFileFetcher()
	_, err := f.Download(context.Background(), filepath.Join(t.TempDir(), "absent.xlsx"))
	require.Error(t, err)
}

type countingFetcher struct {
	calls int
	body  string
}

func (c *countingFetcher) Download(context.Context, string) (io.ReadCloser, error) {
	c.calls++
	return io.NopCloser(strings.NewReader(c.body)), nil
}

func TestCache_ServesFreshEntries(t *testing.T) {
	f := &countingFetcher{body: "bytes"}
	c := NewCache(time.Minute)

	for i := 0; i < 3; i++ {
		bs, err := c.Fetch(context.Background(), f, "u")
		require.NoError(t, err)
		assert.Equal(t, "bytes", string(bs))
	}
	assert.Equal(t, 1, f.calls)
}

func TestCache_ExpiresByTTL(t *testing.T) {
	f := &countingFetcher{body: "bytes"}
	c := NewCache(time.Minute)

	now := time.Now()
	c.now = func() time.Time { return now }

	_, err := c.Fetch(context.Background(), f, "u")
	require.NoError(t, err)

	now = now.Add(2 * time.Minute)
	_, err = c.Fetch(context.Background(), f, "u")
	require.NoError(t, err)
	assert.Equal(t, 2, f.calls)
}

func TestCache_ZeroTTLDisablesCaching(t *testing.T) {
	f := &countingFetcher{body: "bytes"}
	c := NewCache(0)

	for i := 0; i < 2; i++ {
		_, err := c.Fetch(context.Background(), f, "u")
		require.NoError(t, err)
	}
	assert.Equal(t, 2, f.calls)
}
