package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// TestNewInitCmd tests the init command creation.
func TestNewInitCmd(t *testing.T) {
	t.Parallel()

	cmd := NewInitCmd()

	t.Run("has correct use", func(t *testing.T) {
		t.Parallel()
		if cmd.Use != "init" {
			t.Errorf("unexpected Use: got %q", cmd.Use)
		}
	})

	t.Run("has output and force flags", func(t *testing.T) {
		t.Parallel()

		output := cmd.Flags().Lookup("output")
		if output == nil || output.Shorthand != "o" {
			t.Error("expected output flag with shorthand o")
		}
		force := cmd.Flags().Lookup("force")
		if force == nil || force.Shorthand != "f" {
			t.Error("expected force flag with shorthand f")
		}
	})
}

// TestRunInitCmd tests configuration file generation.
func TestRunInitCmd(t *testing.T) {
	t.Parallel()

	t.Run("creates configuration file", func(t *testing.T) {
		t.Parallel()

		outputPath := filepath.Join(t.TempDir(), "config", ".techspider")

		cmd := NewInitCmd()
		cmd.SetArgs([]string{"-o", outputPath})
		if err := cmd.Execute(); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		content, err := os.ReadFile(outputPath)
		if err != nil {
			t.Fatalf("config file not created: %v", err)
		}
		if !strings.Contains(string(content), "sites:") {
			t.Error("expected template to contain sites section")
		}

		info, err := os.Stat(outputPath)
		if err != nil {
			t.Fatalf("stat failed: %v", err)
		}
		if info.Mode().Perm() != 0600 {
			t.Errorf("file mode = %o, want 0600", info.Mode().Perm())
		}
	})

	t.Run("refuses to overwrite without force", func(t *testing.T) {
		t.Parallel()

		outputPath := filepath.Join(t.TempDir(), ".techspider")
		if err := os.WriteFile(outputPath, []byte("existing"), 0600); err != nil {
			t.Fatalf("setup failed: %v", err)
		}

		cmd := NewInitCmd()
		cmd.SetArgs([]string{"-o", outputPath})
		if err := cmd.Execute(); err == nil {
			t.Error("expected error when file exists")
		}
	})

	t.Run("overwrites with force", func(t *testing.T) {
		t.Parallel()

		outputPath := filepath.Join(t.TempDir(), ".techspider")
		if err := os.WriteFile(outputPath, []byte("existing"), 0600); err != nil {
			t.Fatalf("setup failed: %v", err)
		}

		cmd := NewInitCmd()
		cmd.SetArgs([]string{"-o", outputPath, "-f"})
		if err := cmd.Execute(); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		content, err := os.ReadFile(outputPath)
		if err != nil {
			t.Fatalf("read failed: %v", err)
		}
		if string(content) == "existing" {
			t.Error("file was not overwritten")
		}
	})
}
