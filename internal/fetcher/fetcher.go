// Package fetcher downloads source workbooks over HTTP, FTP, or from the
// local filesystem, and parses XLSX content into rows.
package fetcher

import (
	"context"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/rotisserie/eris"
)

// Fetcher defines the interface for downloading remote data.
type Fetcher interface {
	// Download fetches the URL and returns the response body.
	Download(ctx context.Context, url string) (io.ReadCloser, error)
}

// FetchBytes downloads the URL with the fetcher matching its scheme and
// returns the full body.
func FetchBytes(ctx context.Context, f Fetcher, url string) ([]byte, error) {
	rc, err := f.Download(ctx, url)
	if err != nil {
		return nil, err
	}
	defer rc.Close() //nolint:errcheck

	bs, err := io.ReadAll(rc)
	if err != nil {
		return nil, eris.Wrapf(err, "read body of %s", url)
	}
	return bs, nil
}

// ForURL returns a fetcher appropriate for the URL scheme. Plain paths and
// file:// URLs use the local filesystem.
func ForURL(rawURL string, opts Options) Fetcher {
	switch {
	case strings.HasPrefix(rawURL, "ftp://"):
		return NewFTPFetcher(FTPOptions{Timeout: opts.Timeout})
	case strings.HasPrefix(rawURL, "http://"), strings.HasPrefix(rawURL, "https://"):
		return NewHTTPFetcher(HTTPOptions{
			Timeout:    opts.Timeout,
			MaxRetries: opts.MaxRetries,
			AuthToken:  opts.AuthToken,
		})
	default:
		return NewFileFetcher()
	}
}

// Options are the scheme-independent fetch settings.
type Options struct {
	Timeout    time.Duration
	MaxRetries int
	AuthToken  string
}

// Cache is a small in-process TTL cache for workbook bytes, so that commands
// reading the same workbook twice in one invocation fetch it once.
type Cache struct {
	mu      sync.Mutex
	ttl     time.Duration
	entries map[string]cacheEntry
	now     func() time.Time
}

type cacheEntry struct {
	bytes   []byte
	fetched time.Time
}

// NewCache creates a byte cache with the given TTL. A zero TTL disables
// caching entirely.
func NewCache(ttl time.Duration) *Cache {
	return &Cache{
		ttl:     ttl,
		entries: make(map[string]cacheEntry),
		now:     time.Now,
	}
}

// Fetch returns cached bytes for the URL when fresh, otherwise downloads
// through the fetcher and stores the result.
func (c *Cache) Fetch(ctx context.Context, f Fetcher, url string) ([]byte, error) {
	if c.ttl > 0 {
		c.mu.Lock()
		if e, ok := c.entries[url]; ok && c.now().Sub(e.fetched) < c.ttl {
			c.mu.Unlock()
			return e.bytes, nil
		}
		c.mu.Unlock()
	}

	bs, err := FetchBytes(ctx, f, url)
	if err != nil {
		return nil, err
	}

	if c.ttl > 0 {
		c.mu.Lock()
		c.entries[url] = cacheEntry{bytes: bs, fetched: c.now()}
		c.mu.Unlock()
	}
	return bs, nil
}
