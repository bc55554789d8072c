package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/nao1215/gridscan/internal/model"
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

	// verbose enables additional detail in the output.
	verbose bool
}

// SimpleWriterOption configures a SimpleWriter.
type SimpleWriterOption func(*SimpleWriter)

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
		verbose:    false,
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// Write outputs the full report in human-readable format.
// Besides the summary fields it renders the parsed page metadata,
// which the simple view does not carry.
func (w *SimpleWriter) Write(report *model.ScrapeReport) (int, error) {
	var sb strings.Builder

	simple := model.NewSimpleReport(report)
	w.writeHeader(&sb, simple)
	w.writePage(&sb, simple)
	w.writeMetadata(&sb, report.Metadata)
	w.writeFooter(&sb)

	return w.output.Write([]byte(sb.String()))
}

// WriteSimple outputs the simple report in human-readable format.
func (w *SimpleWriter) WriteSimple(report *model.SimpleReport) (int, error) {
	var sb strings.Builder

	w.writeHeader(&sb, report)
	w.writePage(&sb, report)
	w.writeFooter(&sb)

	return w.output.Write([]byte(sb.String()))
}

// writeHeader writes the report header with run information.
func (w *SimpleWriter) writeHeader(sb *strings.Builder, report *model.SimpleReport) {
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
	sb.WriteString("                         GRIDSCAN REPORT\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n\n")

	sb.WriteString(fmt.Sprintf("Target:         %s\n", report.Target))
	sb.WriteString(fmt.Sprintf("Scan Date:      %s\n", report.DateScanned.Format("2006-01-02 15:04:05 MST")))
	sb.WriteString(fmt.Sprintf("Browser:        %s\n", report.Browser))
	sb.WriteString(fmt.Sprintf("Execution Mode: %s\n", report.ExecutionMode))

	switch {
	case report.TimedOut:
		sb.WriteString("Status:         TIMED OUT\n")
	case report.Error != "":
		sb.WriteString(fmt.Sprintf("Status:         ERROR - %s\n", report.Error))
	default:
		sb.WriteString("Status:         Complete\n")
	}

	if report.Elapsed > 0 {
		sb.WriteString(fmt.Sprintf("Elapsed:        %s\n", report.Elapsed))
	}

	sb.WriteString("\n")
}

// writePage writes the extracted page information section.
func (w *SimpleWriter) writePage(sb *strings.Builder, report *model.SimpleReport) {
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")
	sb.WriteString("PAGE\n")
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n\n")

	sb.WriteString(fmt.Sprintf("  Title:          %s\n", report.Title))
	sb.WriteString(fmt.Sprintf("  Headline:       %s\n", report.Headline))
	if report.FinalURL != "" {
		sb.WriteString(fmt.Sprintf("  Final URL:      %s\n", report.FinalURL))
	}
	sb.WriteString(fmt.Sprintf("  Source Length:  %d bytes\n", report.PageSourceLength))
	if report.ScreenshotPath != "" {
		sb.WriteString(fmt.Sprintf("  Screenshot:     %s\n", report.ScreenshotPath))
	}
	sb.WriteString("\n")
}

// writeMetadata writes the parsed page metadata section.
// Skipped entirely when no metadata was collected.
func (w *SimpleWriter) writeMetadata(sb *strings.Builder, meta *model.PageMetadata) {
	if meta == nil {
		return
	}

	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")
	sb.WriteString("PAGE METADATA\n")
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n\n")

	if meta.Description != "" {
		sb.WriteString(fmt.Sprintf("  Description:  %s\n", meta.Description))
	}
	sb.WriteString(fmt.Sprintf("  Links:        %d\n", meta.LinkCount))
	sb.WriteString(fmt.Sprintf("  Images:       %d\n", meta.ImageCount))

	if len(meta.Headings) > 0 {
		sb.WriteString("  Headings:\n")
		for _, heading := range meta.Headings {
			sb.WriteString(fmt.Sprintf("    * %s\n", heading))
		}
	}

	if w.verbose && len(meta.MetaTags) > 0 {
		sb.WriteString("  Meta Tags:\n")
		for name, content := range meta.MetaTags {
			sb.WriteString(fmt.Sprintf("    %s: %s\n", name, content))
		}
	}

	sb.WriteString("\n")
}

// writeFooter writes the report footer.
func (w *SimpleWriter) writeFooter(sb *strings.Builder) {
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
	sb.WriteString("Report generated by gridscan\n")
	sb.WriteString("https://github.com/nao1215/gridscan\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
}
