package main

import (
	"testing"
	"time"

	"github.com/techspider/techspider/internal/config"
)

// TestNewScanCmd tests the scan command creation.
func TestNewScanCmd(t *testing.T) {
	t.Parallel()

	cmd := NewScanCmd()

	t.Run("has correct use", func(t *testing.T) {
		t.Parallel()
		if cmd.Use != "scan [url]" {
			t.Errorf("unexpected Use: got %q", cmd.Use)
		}
	})

	t.Run("has expected flags with shorthands", func(t *testing.T) {
		t.Parallel()

		flagsWithShort := map[string]string{
			"recursive":  "r",
			"depth":      "d",
			"max-urls":   "p",
			"max-wait":   "t",
			"user-agent": "u",
			"screenshot": "s",
			"batch":      "b",
			"config":     "c",
			"json":       "j",
			"markdown":   "m",
			"output":     "o",
		}
		for flag, shorthand := range flagsWithShort {
			f := cmd.Flags().Lookup(flag)
			if f == nil {
				t.Errorf("expected flag %q to exist", flag)
				continue
			}
			if f.Shorthand != shorthand {
				t.Errorf("flag %q: expected shorthand %q, got %q", flag, shorthand, f.Shorthand)
			}
		}
	})

	t.Run("has long-only flags", func(t *testing.T) {
		t.Parallel()

		for _, flag := range []string{"chunk", "delay", "rate", "proxy", "chrome", "chromium-arg", "blocklist", "no-db"} {
			if cmd.Flags().Lookup(flag) == nil {
				t.Errorf("expected flag %q to exist", flag)
			}
		}
	})

	t.Run("db-dir flag does not exist", func(t *testing.T) {
		t.Parallel()
		// The database always lives in the XDG data directory.
		if cmd.Flags().Lookup("db-dir") != nil {
			t.Error("db-dir flag should not exist")
		}
	})
}

// TestBuildScanSettings tests flag parsing into scan settings.
func TestBuildScanSettings(t *testing.T) {
	t.Parallel()

	t.Run("defaults", func(t *testing.T) {
		t.Parallel()

		cmd := NewScanCmd()
		if err := cmd.ParseFlags(nil); err != nil {
			t.Fatalf("ParseFlags() error = %v", err)
		}

		settings, err := buildScanSettings(cmd, []string{"https://example.com"})
		if err != nil {
			t.Fatalf("buildScanSettings() error = %v", err)
		}

		if settings.opts.MaxDepth != config.DefaultMaxDepth {
			t.Errorf("MaxDepth = %d, want default %d", settings.opts.MaxDepth, config.DefaultMaxDepth)
		}
		if settings.opts.Recursive {
			t.Error("Recursive should default to false")
		}
		// Non-recursive crawls never stagger.
		if settings.opts.Delay != 0 {
			t.Errorf("Delay = %v, want 0 for non-recursive crawl", settings.opts.Delay)
		}
		if !settings.saveToDB {
			t.Error("saveToDB should default to true")
		}
		if len(settings.targets) != 1 || settings.targets[0] != "https://example.com" {
			t.Errorf("targets = %v", settings.targets)
		}
	})

	t.Run("flags override defaults", func(t *testing.T) {
		t.Parallel()

		cmd := NewScanCmd()
		args := []string{
			"--recursive", "--depth", "5", "--max-urls", "50",
			"--chunk", "2", "--delay", "1s", "--no-db",
		}
		if err := cmd.ParseFlags(args); err != nil {
			t.Fatalf("ParseFlags() error = %v", err)
		}

		settings, err := buildScanSettings(cmd, nil)
		if err != nil {
			t.Fatalf("buildScanSettings() error = %v", err)
		}

		if !settings.opts.Recursive {
			t.Error("Recursive not applied")
		}
		if settings.opts.MaxDepth != 5 {
			t.Errorf("MaxDepth = %d, want 5", settings.opts.MaxDepth)
		}
		if settings.opts.MaxURLs != 50 {
			t.Errorf("MaxURLs = %d, want 50", settings.opts.MaxURLs)
		}
		if settings.opts.ChunkSize != 2 {
			t.Errorf("ChunkSize = %d, want 2", settings.opts.ChunkSize)
		}
		if settings.opts.Delay != time.Second {
			t.Errorf("Delay = %v, want 1s", settings.opts.Delay)
		}
		if settings.saveToDB {
			t.Error("--no-db not applied")
		}
	})

	t.Run("json and markdown are mutually exclusive", func(t *testing.T) {
		t.Parallel()

		cmd := NewScanCmd()
		if err := cmd.ParseFlags([]string{"--json", "--markdown"}); err != nil {
			t.Fatalf("ParseFlags() error = %v", err)
		}

		if _, err := buildScanSettings(cmd, nil); err == nil {
			t.Error("expected error for --json with --markdown")
		}
	})

	t.Run("missing explicit config file is an error", func(t *testing.T) {
		t.Parallel()

		cmd := NewScanCmd()
		if err := cmd.ParseFlags([]string{"--config", "/nonexistent/config.yaml"}); err != nil {
			t.Fatalf("ParseFlags() error = %v", err)
		}

		if _, err := buildScanSettings(cmd, nil); err == nil {
			t.Error("expected error for missing explicit config file")
		}
	})
}

// TestNormalizeTarget tests scheme defaulting for bare domains.
func TestNormalizeTarget(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		target string
		want   string
	}{
		{name: "bare domain gets https", target: "example.com", want: "https://example.com"},
		{name: "https kept", target: "https://example.com", want: "https://example.com"},
		{name: "http kept", target: "http://example.com/page", want: "http://example.com/page"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := normalizeTarget(tt.target); got != tt.want {
				t.Errorf("normalizeTarget(%q) = %q, want %q", tt.target, got, tt.want)
			}
		})
	}
}
