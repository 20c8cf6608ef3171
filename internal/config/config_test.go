package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

// TestNewOptions verifies the documented defaults.
func TestNewOptions(t *testing.T) {
	t.Parallel()

	opts := NewOptions()

	if opts.ChunkSize != DefaultChunkSize {
		t.Errorf("expected chunk size %d, got %d", DefaultChunkSize, opts.ChunkSize)
	}
	if opts.MaxDepth != DefaultMaxDepth {
		t.Errorf("expected max depth %d, got %d", DefaultMaxDepth, opts.MaxDepth)
	}
	if opts.MaxURLs != DefaultMaxURLs {
		t.Errorf("expected max URLs %d, got %d", DefaultMaxURLs, opts.MaxURLs)
	}
	if opts.MaxWait != DefaultMaxWait {
		t.Errorf("expected max wait %v, got %v", DefaultMaxWait, opts.MaxWait)
	}
	if opts.Delay != DefaultDelay {
		t.Errorf("expected delay %v, got %v", DefaultDelay, opts.Delay)
	}
	if opts.Recursive {
		t.Error("expected recursive to default to false")
	}
}

// TestCoerce verifies flag coercion rules.
func TestCoerce(t *testing.T) {
	t.Parallel()

	t.Run("non-recursive crawls never stagger", func(t *testing.T) {
		t.Parallel()

		opts := NewOptions()
		opts.Delay = 2 * time.Second
		opts.Recursive = false
		opts.Coerce()

		if opts.Delay != 0 {
			t.Errorf("expected delay 0, got %v", opts.Delay)
		}
	})

	t.Run("recursive crawls keep their delay", func(t *testing.T) {
		t.Parallel()

		opts := NewOptions()
		opts.Delay = 2 * time.Second
		opts.Recursive = true
		opts.Coerce()

		if opts.Delay != 2*time.Second {
			t.Errorf("expected delay 2s, got %v", opts.Delay)
		}
	})

	t.Run("zeroed knobs fall back to defaults", func(t *testing.T) {
		t.Parallel()

		opts := &Options{}
		opts.Coerce()

		if opts.ChunkSize != DefaultChunkSize {
			t.Errorf("expected chunk size %d, got %d", DefaultChunkSize, opts.ChunkSize)
		}
		if opts.MaxURLs != DefaultMaxURLs {
			t.Errorf("expected max URLs %d, got %d", DefaultMaxURLs, opts.MaxURLs)
		}
		if opts.UserAgent != DefaultUserAgent {
			t.Errorf("unexpected user agent %q", opts.UserAgent)
		}
		if opts.BlocklistURL != DefaultBlocklistURL {
			t.Errorf("unexpected blocklist URL %q", opts.BlocklistURL)
		}
	})
}

// TestValidate tests configuration validation.
func TestValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		mutate  func(*Options)
		wantErr error
	}{
		{name: "valid defaults", mutate: func(*Options) {}, wantErr: nil},
		{name: "zero chunk size", mutate: func(o *Options) { o.ChunkSize = 0 }, wantErr: ErrInvalidChunkSize},
		{name: "zero max depth", mutate: func(o *Options) { o.MaxDepth = 0 }, wantErr: ErrInvalidMaxDepth},
		{name: "zero max URLs", mutate: func(o *Options) { o.MaxURLs = 0 }, wantErr: ErrInvalidMaxURLs},
		{name: "zero max wait", mutate: func(o *Options) { o.MaxWait = 0 }, wantErr: ErrInvalidMaxWait},
		{name: "negative delay", mutate: func(o *Options) { o.Delay = -time.Second }, wantErr: ErrInvalidDelay},
		{name: "negative html window", mutate: func(o *Options) { o.HTMLMaxCols = -1 }, wantErr: ErrInvalidHTMLWindow},
		{name: "negative rate", mutate: func(o *Options) { o.RatePerSecond = -1 }, wantErr: ErrInvalidRate},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			opts := NewOptions()
			tt.mutate(opts)

			err := opts.Validate()
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("expected error %v, got %v", tt.wantErr, err)
			}
		})
	}
}

// TestSiteConfigApply verifies per-site overrides produce a copy.
func TestSiteConfigApply(t *testing.T) {
	t.Parallel()

	base := NewOptions()
	sc := SiteConfig{Username: "alice", Password: "s3cret", Depth: 7}

	merged := sc.Apply(base)

	if merged.Username != "alice" || merged.Password != "s3cret" {
		t.Errorf("credentials not applied: %q/%q", merged.Username, merged.Password)
	}
	if merged.MaxDepth != 7 {
		t.Errorf("expected depth 7, got %d", merged.MaxDepth)
	}
	if base.Username != "" || base.MaxDepth != DefaultMaxDepth {
		t.Error("Apply mutated the base options")
	}
}

// TestGetSiteConfig verifies defaults merging.
func TestGetSiteConfig(t *testing.T) {
	t.Parallel()

	cf := &File{
		Defaults: SiteConfig{UserAgent: "default-agent", Depth: 2},
		Sites: map[string]SiteConfig{
			"example.com": {Username: "bob", Depth: 5},
		},
	}

	t.Run("known site merges over defaults", func(t *testing.T) {
		t.Parallel()

		sc := cf.GetSiteConfig("example.com")
		if sc.Username != "bob" {
			t.Errorf("expected username bob, got %q", sc.Username)
		}
		if sc.Depth != 5 {
			t.Errorf("expected depth 5, got %d", sc.Depth)
		}
		if sc.UserAgent != "default-agent" {
			t.Errorf("expected default user agent, got %q", sc.UserAgent)
		}
	})

	t.Run("unknown site gets defaults", func(t *testing.T) {
		t.Parallel()

		sc := cf.GetSiteConfig("other.com")
		if sc.Depth != 2 || sc.UserAgent != "default-agent" {
			t.Errorf("unexpected defaults: %+v", sc)
		}
	})
}

// TestLoadConfigFile tests YAML config loading.
func TestLoadConfigFile(t *testing.T) {
	t.Parallel()

	t.Run("missing file returns ErrConfigNotFound", func(t *testing.T) {
		t.Parallel()

		_, err := LoadConfigFile(filepath.Join(t.TempDir(), "nope"))
		if !errors.Is(err, ErrConfigNotFound) {
			t.Errorf("expected ErrConfigNotFound, got %v", err)
		}
	})

	t.Run("parses sites", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), DefaultConfigFile)
		content := "sites:\n  example.com:\n    username: alice\n    depth: 4\n"
		if err := os.WriteFile(path, []byte(content), 0600); err != nil {
			t.Fatalf("failed to write config: %v", err)
		}

		cf, err := LoadConfigFile(path)
		if err != nil {
			t.Fatalf("failed to load config: %v", err)
		}

		sc := cf.GetSiteConfig("example.com")
		if sc.Username != "alice" || sc.Depth != 4 {
			t.Errorf("unexpected site config: %+v", sc)
		}
	})

	t.Run("rejects malformed yaml", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), DefaultConfigFile)
		if err := os.WriteFile(path, []byte("sites: [not a map"), 0600); err != nil {
			t.Fatalf("failed to write config: %v", err)
		}

		if _, err := LoadConfigFile(path); err == nil {
			t.Error("expected parse error, got nil")
		}
	})
}
