package main

import (
	"bytes"
	"strings"
	"testing"
)

// TestNewRootCmd tests the root command creation.
func TestNewRootCmd(t *testing.T) {
	t.Parallel()

	cmd := NewRootCmd()

	t.Run("has correct use", func(t *testing.T) {
		t.Parallel()
		if cmd.Use != "techspider" {
			t.Errorf("unexpected Use: got %q", cmd.Use)
		}
	})

	t.Run("has expected subcommands", func(t *testing.T) {
		t.Parallel()

		want := map[string]bool{
			"scan":          false,
			"history":       false,
			"init":          false,
			"version":       false,
			"render-worker": false,
		}
		for _, sub := range cmd.Commands() {
			if _, ok := want[sub.Name()]; ok {
				want[sub.Name()] = true
			}
		}
		for name, found := range want {
			if !found {
				t.Errorf("expected subcommand %q to exist", name)
			}
		}
	})

	t.Run("worker command is hidden", func(t *testing.T) {
		t.Parallel()

		for _, sub := range cmd.Commands() {
			if sub.Name() == "render-worker" && !sub.Hidden {
				t.Error("render-worker should be hidden")
			}
		}
	})

	t.Run("has verbose persistent flag", func(t *testing.T) {
		t.Parallel()

		flag := cmd.PersistentFlags().Lookup("verbose")
		if flag == nil {
			t.Fatal("expected verbose flag")
		}
		if flag.Shorthand != "v" {
			t.Errorf("verbose shorthand = %q, want v", flag.Shorthand)
		}
	})

	t.Run("help runs without error", func(t *testing.T) {
		t.Parallel()

		root := NewRootCmd()
		var buf bytes.Buffer
		root.SetOut(&buf)
		root.SetErr(&buf)
		root.SetArgs([]string{"--help"})

		if err := root.Execute(); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(buf.String(), "techspider") {
			t.Error("help output should mention techspider")
		}
	})
}
