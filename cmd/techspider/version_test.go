package main

import (
	"bytes"
	"strings"
	"testing"
)

// TestNewVersionCmd tests the version command output.
func TestNewVersionCmd(t *testing.T) {
	t.Parallel()

	cmd := NewVersionCmd()
	var buf bytes.Buffer
	cmd.SetOut(&buf)

	if err := cmd.Execute(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	output := buf.String()
	if !strings.Contains(output, "techspider version") {
		t.Errorf("expected version line, got %q", output)
	}
	if !strings.Contains(output, "commit:") {
		t.Error("expected commit line")
	}
	if !strings.Contains(output, "built:") {
		t.Error("expected build date line")
	}
}

// TestGetVersion tests version resolution priority.
func TestGetVersion(t *testing.T) {
	// Not parallel: mutates package-level version variables.
	orig := version
	defer func() { version = orig }()

	version = "1.2.3"
	if got := getVersion(); got != "1.2.3" {
		t.Errorf("getVersion() = %q, want ldflags value", got)
	}

	version = ""
	if got := getVersion(); got == "" {
		t.Error("getVersion() should fall back to build info or (devel)")
	}
}
