package main

import (
	"testing"

	"github.com/techspider/techspider/internal/worker"
)

// TestNewWorkerCmd tests the hidden worker command surface.
func TestNewWorkerCmd(t *testing.T) {
	t.Parallel()

	cmd := NewWorkerCmd()

	t.Run("matches the dispatcher protocol", func(t *testing.T) {
		t.Parallel()

		if cmd.Use != worker.Command {
			t.Errorf("Use = %q, want %q", cmd.Use, worker.Command)
		}
		for _, flag := range []string{
			worker.FlagURL,
			worker.FlagOptions,
			worker.FlagScreenshot,
			worker.FlagSimple,
			worker.FlagFirst,
		} {
			if cmd.Flags().Lookup(flag) == nil {
				t.Errorf("expected flag %q to exist", flag)
			}
		}
	})

	t.Run("is hidden", func(t *testing.T) {
		t.Parallel()
		if !cmd.Hidden {
			t.Error("worker command should be hidden")
		}
	})

	t.Run("requires a url", func(t *testing.T) {
		t.Parallel()

		c := NewWorkerCmd()
		c.SetArgs([]string{})
		if err := c.Execute(); err == nil {
			t.Error("expected error without --url")
		}
	})

	t.Run("rejects malformed options JSON", func(t *testing.T) {
		t.Parallel()

		c := NewWorkerCmd()
		c.SetArgs([]string{"--" + worker.FlagURL, "https://example.com", "--" + worker.FlagOptions, "{not json"})
		if err := c.Execute(); err == nil {
			t.Error("expected error for malformed options JSON")
		}
	})
}
