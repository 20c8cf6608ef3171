package blocklist

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"time"
)

// DefaultCacheTTL is how long a cached filter list stays fresh. The
// upstream list changes rarely; refetching per crawl would add seconds
// to every screenshot run.
const DefaultCacheTTL = 24 * time.Hour

// cacheFileName is the filter list cache file under the cache dir.
const cacheFileName = "blocklist.txt"

// ErrEmptyList is returned when the fetched filter list has no rules.
var ErrEmptyList = errors.New("filter list is empty")

// Fetcher loads the filter list from an HTTP URL with a file cache.
// Concurrent crawls may race to populate the cache file; writes go
// through a temp file and rename, so the last writer wins and readers
// never observe a partial list.
type Fetcher struct {
	client   *http.Client
	cacheDir string
	ttl      time.Duration
	logger   *slog.Logger
}

// NewFetcher creates a Fetcher caching under cacheDir.
func NewFetcher(cacheDir string, logger *slog.Logger) *Fetcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Fetcher{
		client:   &http.Client{Timeout: 30 * time.Second},
		cacheDir: cacheDir,
		ttl:      DefaultCacheTTL,
		logger:   logger,
	}
}

// WithTTL overrides the cache freshness window.
func (f *Fetcher) WithTTL(ttl time.Duration) *Fetcher {
	f.ttl = ttl
	return f
}

// WithClient overrides the HTTP client.
func (f *Fetcher) WithClient(client *http.Client) *Fetcher {
	f.client = client
	return f
}

// Load returns the compiled filter list, preferring a fresh cache file,
// then the network, then a stale cache as last resort. A crawl that
// cannot obtain any list at all still proceeds; the caller treats a nil
// list as "block nothing".
func (f *Fetcher) Load(ctx context.Context, listURL string) (*List, error) {
	cachePath := filepath.Join(f.cacheDir, cacheFileName)

	if raw, ok := f.readFreshCache(cachePath); ok {
		f.logger.Debug("filter list loaded from cache", "path", cachePath)
		return Compile(raw), nil
	}

	raw, err := f.fetch(ctx, listURL)
	if err != nil {
		// stale cache beats no list
		if stale, readErr := os.ReadFile(cachePath); readErr == nil {
			f.logger.Warn("filter list fetch failed, using stale cache", "error", err)
			return Compile(string(stale)), nil
		}
		return nil, fmt.Errorf("failed to fetch filter list: %w", err)
	}

	f.writeCache(cachePath, raw)
	return Compile(raw), nil
}

func (f *Fetcher) readFreshCache(path string) (string, bool) {
	info, err := os.Stat(path)
	if err != nil || time.Since(info.ModTime()) > f.ttl {
		return "", false
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return "", false
	}
	return string(raw), true
}

func (f *Fetcher) fetch(ctx context.Context, listURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, listURL, nil)
	if err != nil {
		return "", err
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close() //nolint:errcheck // read-only body

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 32<<20))
	if err != nil {
		return "", err
	}
	if len(body) == 0 {
		return "", ErrEmptyList
	}
	return string(body), nil
}

func (f *Fetcher) writeCache(path, raw string) {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		f.logger.Warn("failed to create cache dir", "error", err)
		return
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), cacheFileName+".*")
	if err != nil {
		f.logger.Warn("failed to create cache temp file", "error", err)
		return
	}

	if _, err := tmp.WriteString(raw); err != nil {
		tmp.Close()           //nolint:errcheck // already failing
		os.Remove(tmp.Name()) //nolint:errcheck // best effort
		f.logger.Warn("failed to write cache", "error", err)
		return
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name()) //nolint:errcheck // best effort
		return
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name()) //nolint:errcheck // best effort
		f.logger.Warn("failed to publish cache", "error", err)
	}
}
