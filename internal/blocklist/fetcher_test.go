package blocklist

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"
)

func TestFetcher_Load(t *testing.T) {
	t.Parallel()

	t.Run("fetches and caches", func(t *testing.T) {
		t.Parallel()

		var hits atomic.Int32
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			hits.Add(1)
			w.Write([]byte("||ads.example.com^\n")) //nolint:errcheck // test server
		}))
		defer srv.Close()

		dir := t.TempDir()
		fetcher := NewFetcher(dir, nil)

		list, err := fetcher.Load(context.Background(), srv.URL)
		if err != nil {
			t.Fatalf("Load() error: %v", err)
		}
		if !list.Blocked("https://ads.example.com/x") {
			t.Error("fetched list does not match expected rule")
		}

		// second load must come from cache
		if _, err := fetcher.Load(context.Background(), srv.URL); err != nil {
			t.Fatalf("second Load() error: %v", err)
		}
		if got := hits.Load(); got != 1 {
			t.Errorf("server hit %d times, want 1", got)
		}
	})

	t.Run("expired cache is refetched", func(t *testing.T) {
		t.Parallel()

		var hits atomic.Int32
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			hits.Add(1)
			w.Write([]byte("||ads.example.com^\n")) //nolint:errcheck // test server
		}))
		defer srv.Close()

		dir := t.TempDir()
		fetcher := NewFetcher(dir, nil).WithTTL(time.Nanosecond)

		if _, err := fetcher.Load(context.Background(), srv.URL); err != nil {
			t.Fatal(err)
		}
		time.Sleep(time.Millisecond)
		if _, err := fetcher.Load(context.Background(), srv.URL); err != nil {
			t.Fatal(err)
		}

		if got := hits.Load(); got != 2 {
			t.Errorf("server hit %d times, want 2", got)
		}
	})

	t.Run("stale cache used when fetch fails", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		cachePath := filepath.Join(dir, cacheFileName)
		if err := os.WriteFile(cachePath, []byte("||stale.example.com^\n"), 0o600); err != nil {
			t.Fatal(err)
		}
		// age the file beyond the TTL
		old := time.Now().Add(-48 * time.Hour)
		if err := os.Chtimes(cachePath, old, old); err != nil {
			t.Fatal(err)
		}

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer srv.Close()

		list, err := NewFetcher(dir, nil).Load(context.Background(), srv.URL)
		if err != nil {
			t.Fatalf("Load() error: %v", err)
		}
		if !list.Blocked("https://stale.example.com/") {
			t.Error("stale cache rule not applied")
		}
	})

	t.Run("no cache and failed fetch is an error", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		}))
		defer srv.Close()

		if _, err := NewFetcher(t.TempDir(), nil).Load(context.Background(), srv.URL); err == nil {
			t.Error("expected an error with no cache and a failing server")
		}
	})
}
