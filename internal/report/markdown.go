package report

import (
	"io"
	"strconv"
	"strings"

	"github.com/nao1215/markdown"
	"github.com/nao1215/markdown/mermaid/piechart"

	"github.com/techspider/techspider/internal/model"
)

// MarkdownWriter outputs crawl results in Markdown format.
// This format is designed for documentation and sharing.
//
// Design decision: We use the nao1215/markdown library for fluent markdown
// generation which provides:
// 1. Type-safe markdown generation
// 2. Support for tables, lists, and code blocks
// 3. GitHub-flavored markdown alerts
type MarkdownWriter struct {
	baseWriter
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{
		baseWriter: newBaseWriter(output),
	}
}

// Write outputs the crawl result in Markdown format.
func (w *MarkdownWriter) Write(result *model.CrawlResult) (int, error) {
	md := markdown.NewMarkdown(w.output)

	w.writeHeader(md, result)
	w.writeApplications(md, result)
	w.writePages(md, result)
	w.writeMeta(md, result)

	return len(md.String()), md.Build()
}

// writeHeader writes the report header with crawl information.
func (w *MarkdownWriter) writeHeader(md *markdown.Markdown, result *model.CrawlResult) {
	md.H1("Techspider Report")
	md.PlainText("")

	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Target", "`" + result.Target + "`"},
			{"Crawl Date", result.StartedAt.Format("2006-01-02 15:04:05 MST")},
			{"Pages Visited", strconv.Itoa(len(result.URLs))},
			{"Status", w.statusText(result)},
		},
	})
	md.PlainText("")

	if result.Redirect != nil {
		md.Warningf("The target redirected to `%s` (%s). Re-run the crawl against the new domain for full results.",
			result.Redirect.URL, result.Redirect.Domain)
		md.PlainText("")
	}
}

// statusText returns the status cell based on the crawl outcome.
func (w *MarkdownWriter) statusText(result *model.CrawlResult) string {
	if result.Redirect != nil {
		return "⚠️ Redirected off-site"
	}
	for _, st := range result.URLs {
		if st.Error == "" {
			return "✅ Complete"
		}
	}
	if len(result.URLs) > 0 {
		return "❌ All page visits failed"
	}
	return "✅ Complete"
}

// writeApplications writes the detected technologies section.
func (w *MarkdownWriter) writeApplications(md *markdown.Markdown, result *model.CrawlResult) {
	md.H2("Detected Technologies")
	md.PlainText("")

	if len(result.Applications) == 0 {
		md.PlainText("No technologies detected.")
		md.PlainText("")
		return
	}

	rows := make([][]string, 0, len(result.Applications))
	for _, app := range result.Applications {
		version := app.Version
		if version == "" {
			version = "-"
		}
		rows = append(rows, []string{
			app.Name,
			version,
			strconv.Itoa(app.Confidence) + "%",
			strings.Join(app.Categories, ", "),
		})
	}

	md.Table(markdown.TableSet{
		Header: []string{"Technology", "Version", "Confidence", "Categories"},
		Rows:   rows,
	})
	md.PlainText("")
}

// writePages writes the per-URL outcomes, with a pie chart of visit
// outcomes when more than one page was crawled.
func (w *MarkdownWriter) writePages(md *markdown.Markdown, result *model.CrawlResult) {
	md.H2("Pages")
	md.PlainText("")

	if len(result.URLs) == 0 {
		md.PlainText("No pages visited.")
		md.PlainText("")
		return
	}

	rows := make([][]string, 0, len(result.URLs))
	ok, failed := 0, 0
	for _, href := range sortedURLs(result.URLs) {
		st := result.URLs[href]
		outcome := strconv.Itoa(st.Status)
		if st.Error != "" {
			outcome = st.Error
			failed++
		} else {
			ok++
		}
		rows = append(rows, []string{"`" + href + "`", outcome})
	}

	md.Table(markdown.TableSet{
		Header: []string{"URL", "Outcome"},
		Rows:   rows,
	})
	md.PlainText("")

	if len(result.URLs) > 1 {
		w.writePieChart(md, ok, failed)
	}
}

// writePieChart writes a mermaid pie chart for visit outcomes.
func (w *MarkdownWriter) writePieChart(md *markdown.Markdown, ok, failed int) {
	chart := piechart.NewPieChart(
		io.Discard,
		piechart.WithTitle("Page Visit Outcomes"),
		piechart.WithShowData(true),
	)

	if ok > 0 {
		chart.LabelAndIntValue("Succeeded", uint64(ok))
	}
	if failed > 0 {
		chart.LabelAndIntValue("Failed", uint64(failed))
	}

	md.PlainText("")
	md.CodeBlocks(markdown.SyntaxHighlightMermaid, chart.String())
	md.PlainText("")
}

// writeMeta writes the site metadata section.
func (w *MarkdownWriter) writeMeta(md *markdown.Markdown, result *model.CrawlResult) {
	meta := result.Meta
	if meta.Title == "" && meta.Description == "" && meta.SiteName == "" && meta.Locale == "" {
		return
	}

	md.H2("Site")
	md.PlainText("")

	rows := make([][]string, 0, 4)
	appendRow := func(label, value string) {
		if value != "" {
			rows = append(rows, []string{label, value})
		}
	}
	appendRow("Title", meta.Title)
	appendRow("Description", meta.Description)
	appendRow("Site Name", meta.SiteName)
	appendRow("Language", meta.Locale)

	md.Table(markdown.TableSet{
		Header: []string{"Field", "Value"},
		Rows:   rows,
	})
	md.PlainText("")
}
