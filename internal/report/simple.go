package report

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/techspider/techspider/internal/model"
)

// SimpleWriter outputs human-readable text reports.
// This format is designed for terminal display with clear section
// formatting.
//
// Design decision: We use plain text with ASCII formatting rather than
// ANSI colors by default because:
// 1. It works in all terminals without compatibility issues
// 2. It's easier to pipe to files or other tools
// 3. Color can be added as an option later if needed
type SimpleWriter struct {
	baseWriter

	// showEmpty controls whether sections with no content are shown.
	showEmpty bool

	// verbose enables additional detail in the output.
	verbose bool
}

// SimpleWriterOption configures a SimpleWriter.
type SimpleWriterOption func(*SimpleWriter)

// WithShowEmpty configures the writer to show empty sections.
func WithShowEmpty(show bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.showEmpty = show
	}
}

// WithVerbose enables verbose output with additional details.
func WithVerbose(verbose bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.verbose = verbose
	}
}

// NewSimpleWriter creates a SimpleWriter that outputs to the given writer.
func NewSimpleWriter(output io.Writer, opts ...SimpleWriterOption) *SimpleWriter {
	w := &SimpleWriter{
		baseWriter: newBaseWriter(output),
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// Write outputs the crawl result in human-readable format.
func (w *SimpleWriter) Write(result *model.CrawlResult) (int, error) {
	var sb strings.Builder

	w.writeHeader(&sb, result)
	w.writeApplications(&sb, result)
	w.writePages(&sb, result)
	w.writeMeta(&sb, result)

	return w.output.Write([]byte(sb.String()))
}

// writeHeader writes the report header with crawl information.
func (w *SimpleWriter) writeHeader(sb *strings.Builder, result *model.CrawlResult) {
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
	sb.WriteString("                        TECHSPIDER REPORT\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n\n")

	sb.WriteString(fmt.Sprintf("Target:        %s\n", result.Target))
	sb.WriteString(fmt.Sprintf("Crawl Date:    %s\n", result.StartedAt.Format("2006-01-02 15:04:05 MST")))
	sb.WriteString(fmt.Sprintf("Duration:      %s\n", result.Duration().Round(10*time.Millisecond)))
	sb.WriteString(fmt.Sprintf("Pages Visited: %d\n", len(result.URLs)))

	if result.Redirect != nil {
		sb.WriteString(fmt.Sprintf("Status:        REDIRECTED to %s (%s)\n", result.Redirect.URL, result.Redirect.Domain))
	} else {
		sb.WriteString("Status:        Complete\n")
	}

	sb.WriteString("\n")
}

// writeApplications writes the detected technologies section.
func (w *SimpleWriter) writeApplications(sb *strings.Builder, result *model.CrawlResult) {
	if len(result.Applications) == 0 && !w.showEmpty {
		return
	}

	sb.WriteString("DETECTED TECHNOLOGIES\n")
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")

	if len(result.Applications) == 0 {
		sb.WriteString("  (none)\n\n")
		return
	}

	for _, app := range result.Applications {
		line := fmt.Sprintf("  %-30s", app.Name)
		if app.Version != "" {
			line += fmt.Sprintf(" %-12s", app.Version)
		} else {
			line += fmt.Sprintf(" %-12s", "-")
		}
		line += fmt.Sprintf(" %3d%%", app.Confidence)
		if len(app.Categories) > 0 {
			line += "  " + strings.Join(app.Categories, ", ")
		}
		sb.WriteString(line + "\n")
	}
	sb.WriteString("\n")
}

// writePages writes the per-URL outcome section.
func (w *SimpleWriter) writePages(sb *strings.Builder, result *model.CrawlResult) {
	if len(result.URLs) == 0 && !w.showEmpty {
		return
	}

	sb.WriteString("PAGES\n")
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")

	for _, href := range sortedURLs(result.URLs) {
		st := result.URLs[href]
		if st.Error != "" {
			sb.WriteString(fmt.Sprintf("  [%s] %s\n", st.Error, href))
		} else {
			sb.WriteString(fmt.Sprintf("  [%d] %s\n", st.Status, href))
		}
	}
	sb.WriteString("\n")
}

// writeMeta writes the site metadata section.
func (w *SimpleWriter) writeMeta(sb *strings.Builder, result *model.CrawlResult) {
	meta := result.Meta
	if meta.Title == "" && meta.Description == "" && meta.SiteName == "" && meta.Locale == "" && !w.showEmpty {
		return
	}

	sb.WriteString("SITE\n")
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")

	writeMetaLine(sb, "Title", meta.Title)
	writeMetaLine(sb, "Description", meta.Description)
	writeMetaLine(sb, "Site Name", meta.SiteName)
	writeMetaLine(sb, "Language", meta.Locale)
	if w.verbose {
		writeMetaLine(sb, "Heading", meta.SecondaryTitle)
	}
	sb.WriteString("\n")
}

func writeMetaLine(sb *strings.Builder, label, value string) {
	if value == "" {
		return
	}
	sb.WriteString(fmt.Sprintf("  %-12s %s\n", label+":", value))
}

// sortedURLs returns the URL keys in stable alphabetical order so output
// is deterministic across runs.
func sortedURLs(urls map[string]model.URLStatus) []string {
	out := make([]string, 0, len(urls))
	for href := range urls {
		out = append(out, href)
	}
	sort.Strings(out)
	return out
}
