package report

import (
	"io"
	"strconv"

	"github.com/nao1215/gridscan/internal/model"
	"github.com/nao1215/markdown"
)

// MarkdownWriter outputs reports in Markdown format.
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

// Write outputs the full report in Markdown format.
func (w *MarkdownWriter) Write(report *model.ScrapeReport) (int, error) {
	md := markdown.NewMarkdown(w.output)

	simple := model.NewSimpleReport(report)
	w.writeHeader(md, simple)
	w.writePage(md, simple)
	w.writeMetadata(md, report.Metadata)
	w.writeFooter(md)

	return len(md.String()), md.Build()
}

// WriteSimple outputs the simple report in Markdown format.
func (w *MarkdownWriter) WriteSimple(report *model.SimpleReport) (int, error) {
	md := markdown.NewMarkdown(w.output)

	w.writeHeader(md, report)
	w.writePage(md, report)
	w.writeFooter(md)

	return len(md.String()), md.Build()
}

// writeHeader writes the report header with run information.
func (w *MarkdownWriter) writeHeader(md *markdown.Markdown, report *model.SimpleReport) {
	md.H1("Gridscan Report")
	md.PlainText("")

	// Basic info table
	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Target", "`" + report.Target + "`"},
			{"Scan Date", report.DateScanned.Format("2006-01-02 15:04:05 MST")},
			{"Browser", report.Browser},
			{"Execution Mode", report.ExecutionMode},
			{"Status", w.getStatusText(report)},
		},
	})
	md.PlainText("")

	w.writeAlert(md, report)
}

// getStatusText returns the status text based on report state.
func (w *MarkdownWriter) getStatusText(report *model.SimpleReport) string {
	if report.TimedOut {
		return "⚠️ Timed Out"
	}
	if report.Error != "" {
		return "❌ Error - " + report.Error
	}
	return "✅ Complete"
}

// writeAlert writes an appropriate alert based on the run outcome.
func (w *MarkdownWriter) writeAlert(md *markdown.Markdown, report *model.SimpleReport) {
	switch {
	case report.TimedOut:
		md.Warningf("The scan was cancelled before completing. Fields below may be incomplete.")
	case report.Error != "":
		md.Cautionf("The scan failed: %s", report.Error)
	default:
		md.Tip("The scan completed successfully.")
	}
	md.PlainText("")
}

// writePage writes the extracted page information section.
func (w *MarkdownWriter) writePage(md *markdown.Markdown, report *model.SimpleReport) {
	md.H2("Page")
	md.PlainText("")

	rows := [][]string{
		{"Title", report.Title},
		{"Headline", report.Headline},
		{"Final URL", "`" + report.FinalURL + "`"},
		{"Source Length", strconv.Itoa(report.PageSourceLength) + " bytes"},
	}
	if report.ScreenshotPath != "" {
		rows = append(rows, []string{"Screenshot", "`" + report.ScreenshotPath + "`"})
	}

	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows:   rows,
	})
	md.PlainText("")
}

// writeMetadata writes the parsed page metadata section.
// Skipped entirely when no metadata was collected.
func (w *MarkdownWriter) writeMetadata(md *markdown.Markdown, meta *model.PageMetadata) {
	if meta == nil {
		return
	}

	md.H2("Page Metadata")
	md.PlainText("")

	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Description", truncateString(meta.Description, 80)},
			{"Links", strconv.Itoa(meta.LinkCount)},
			{"Images", strconv.Itoa(meta.ImageCount)},
		},
	})
	md.PlainText("")

	if len(meta.Headings) > 0 {
		md.H3("Headings")
		md.PlainText("")
		md.BulletList(meta.Headings...)
		md.PlainText("")
	}

	if len(meta.MetaTags) > 0 {
		rows := make([][]string, 0, len(meta.MetaTags))
		for name, content := range meta.MetaTags {
			rows = append(rows, []string{name, truncateString(content, 60)})
		}

		md.H3("Meta Tags")
		md.PlainText("")
		md.Table(markdown.TableSet{
			Header: []string{"Name", "Content"},
			Rows:   rows,
		})
		md.PlainText("")
	}
}

// writeFooter writes the report footer.
func (w *MarkdownWriter) writeFooter(md *markdown.Markdown) {
	md.HorizontalRule()
	md.PlainText("")
	md.PlainTextf("*Report generated by [gridscan](https://github.com/nao1215/gridscan)*")
}

// truncateString truncates a string to maxLen characters with ellipsis.
func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}
