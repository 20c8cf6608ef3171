package report

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/techspider/techspider/internal/model"
)

// createTestResult creates a crawl result with sample data for testing.
func createTestResult() *model.CrawlResult {
	return &model.CrawlResult{
		Target: "https://example.com",
		URLs: map[string]model.URLStatus{
			"https://example.com/":          {Status: 200},
			"https://example.com/down.html": {Error: "NO_RESPONSE"},
		},
		Applications: []model.DetectedApp{
			{Name: "WordPress", Confidence: 100, Version: "6.5", Categories: []string{"CMS", "Blogs"}},
			{Name: "MySQL", Confidence: 50, Categories: []string{"Databases"}},
		},
		Meta: model.PageTexts{
			Title:       "Example Site",
			Description: "A site about examples",
			SiteName:    "Example",
			Locale:      "en",
		},
		StartedAt:  time.Date(2026, 1, 15, 10, 0, 0, 0, time.UTC),
		FinishedAt: time.Date(2026, 1, 15, 10, 0, 42, 0, time.UTC),
	}
}

// TestSimpleWriter tests the human-readable report writer.
func TestSimpleWriter(t *testing.T) {
	t.Parallel()

	t.Run("writes report header", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewSimpleWriter(&buf)

		if _, err := w.Write(createTestResult()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		output := buf.String()
		if !strings.Contains(output, "TECHSPIDER REPORT") {
			t.Error("expected output to contain header")
		}
		if !strings.Contains(output, "https://example.com") {
			t.Error("expected output to contain target")
		}
		if !strings.Contains(output, "Pages Visited: 2") {
			t.Error("expected output to contain page count")
		}
	})

	t.Run("writes detected technologies", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewSimpleWriter(&buf)

		if _, err := w.Write(createTestResult()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		output := buf.String()
		if !strings.Contains(output, "DETECTED TECHNOLOGIES") {
			t.Error("expected output to contain technologies section")
		}
		if !strings.Contains(output, "WordPress") || !strings.Contains(output, "6.5") {
			t.Error("expected output to contain WordPress with version")
		}
		if !strings.Contains(output, "CMS, Blogs") {
			t.Error("expected output to contain categories")
		}
	})

	t.Run("writes page outcomes", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewSimpleWriter(&buf)

		if _, err := w.Write(createTestResult()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		output := buf.String()
		if !strings.Contains(output, "[200] https://example.com/") {
			t.Error("expected output to contain successful page")
		}
		if !strings.Contains(output, "[NO_RESPONSE] https://example.com/down.html") {
			t.Error("expected output to contain failed page with error kind")
		}
	})

	t.Run("writes site metadata", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewSimpleWriter(&buf)

		if _, err := w.Write(createTestResult()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		output := buf.String()
		if !strings.Contains(output, "Example Site") {
			t.Error("expected output to contain site title")
		}
		if !strings.Contains(output, "Language:") {
			t.Error("expected output to contain detected language")
		}
	})

	t.Run("reports a seed redirect", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewSimpleWriter(&buf)

		result := createTestResult()
		result.Redirect = &model.Redirect{URL: "https://new.example.net/", Domain: "example.net"}

		if _, err := w.Write(result); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if !strings.Contains(buf.String(), "REDIRECTED to https://new.example.net/") {
			t.Error("expected output to report the redirect")
		}
	})

	t.Run("hides empty sections by default", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewSimpleWriter(&buf)

		result := createTestResult()
		result.Applications = nil

		if _, err := w.Write(result); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if strings.Contains(buf.String(), "DETECTED TECHNOLOGIES") {
			t.Error("empty technologies section should be hidden")
		}

		buf.Reset()
		w = NewSimpleWriter(&buf, WithShowEmpty(true))
		if _, err := w.Write(result); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(buf.String(), "(none)") {
			t.Error("WithShowEmpty should show empty section placeholder")
		}
	})
}

// TestJSONWriter tests the JSON report writer.
func TestJSONWriter(t *testing.T) {
	t.Parallel()

	t.Run("writes valid JSON", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewJSONWriter(&buf)

		if _, err := w.Write(createTestResult()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		var decoded model.CrawlResult
		if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
			t.Fatalf("output is not valid JSON: %v", err)
		}
		if decoded.Target != "https://example.com" {
			t.Errorf("Target = %s, want https://example.com", decoded.Target)
		}
		if len(decoded.Applications) != 2 {
			t.Errorf("applications = %d, want 2", len(decoded.Applications))
		}
	})

	t.Run("pretty print adds indentation", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewJSONWriter(&buf, WithPrettyPrint())

		if _, err := w.Write(createTestResult()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(buf.String(), "\n  \"target\"") {
			t.Error("expected indented output")
		}
	})

	t.Run("full writer wraps with version", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewFullJSONWriter(&buf, "1.2.3")

		if _, err := w.Write(createTestResult()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		var wrapped JSONReport
		if err := json.Unmarshal(buf.Bytes(), &wrapped); err != nil {
			t.Fatalf("output is not valid JSON: %v", err)
		}
		if wrapped.Version != "1.2.3" {
			t.Errorf("Version = %s, want 1.2.3", wrapped.Version)
		}
		if wrapped.Result == nil || wrapped.Result.Target != "https://example.com" {
			t.Error("wrapped result missing")
		}
	})
}

// TestMarkdownWriter tests the Markdown report writer.
func TestMarkdownWriter(t *testing.T) {
	t.Parallel()

	t.Run("writes markdown sections", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewMarkdownWriter(&buf)

		if _, err := w.Write(createTestResult()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		output := buf.String()
		if !strings.Contains(output, "# Techspider Report") {
			t.Error("expected H1 header")
		}
		if !strings.Contains(output, "## Detected Technologies") {
			t.Error("expected technologies section")
		}
		if !strings.Contains(output, "WordPress") {
			t.Error("expected WordPress row")
		}
		if !strings.Contains(output, "mermaid") {
			t.Error("expected mermaid pie chart for multi-page crawl")
		}
	})

	t.Run("warns on redirect", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewMarkdownWriter(&buf)

		result := createTestResult()
		result.Redirect = &model.Redirect{URL: "https://new.example.net/", Domain: "example.net"}

		if _, err := w.Write(result); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(buf.String(), "example.net") {
			t.Error("expected redirect warning")
		}
	})
}

// TestMultiWriter tests fan-out to multiple writers.
func TestMultiWriter(t *testing.T) {
	t.Parallel()

	var text, jsonBuf bytes.Buffer
	mw := NewMultiWriter(NewSimpleWriter(&text), NewJSONWriter(&jsonBuf))

	if _, err := mw.Write(createTestResult()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(text.String(), "TECHSPIDER REPORT") {
		t.Error("simple writer did not receive the result")
	}
	if !strings.Contains(jsonBuf.String(), "\"target\"") {
		t.Error("json writer did not receive the result")
	}
}
