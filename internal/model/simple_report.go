package model

import "time"

// SimpleReport is a summarized, human-readable view of a scrape run.
// It extracts the fields users look at first from the full report.
//
// Design decision: We keep a separate simplified report rather than
// printing parts of ScrapeReport directly because:
//  1. It gives all writers (text, JSON, markdown) the same curated view
//  2. It can be serialized for tools that want structured simple output
//  3. It separates presentation concerns from data collection
type SimpleReport struct {
	// Target is the scanned URL.
	Target string `json:"target"`

	// DateScanned is when the scan was performed.
	DateScanned time.Time `json:"date_scanned"`

	// Status is "success" or "error".
	Status string `json:"status"`

	// Title is the document title.
	Title string `json:"title,omitempty"`

	// Headline is the headline element text (or the N/A fallback).
	Headline string `json:"headline,omitempty"`

	// FinalURL is the URL after navigation.
	FinalURL string `json:"final_url,omitempty"`

	// Browser is the browser identification "name version" from the
	// session capabilities.
	Browser string `json:"browser"`

	// ExecutionMode identifies the remote endpoint type.
	ExecutionMode string `json:"execution_mode"`

	// PageSourceLength is the page source size in bytes.
	PageSourceLength int `json:"page_source_length"`

	// ScreenshotPath is where the screenshot was saved, if any.
	ScreenshotPath string `json:"screenshot_path,omitempty"`

	// Elapsed is the scan duration.
	Elapsed time.Duration `json:"elapsed"`

	// TimedOut indicates the scan was cancelled before completing.
	TimedOut bool `json:"timed_out,omitempty"`

	// Error contains the error message if the scan failed.
	Error string `json:"error,omitempty"`
}

// NewSimpleReport creates a SimpleReport from a full ScrapeReport.
func NewSimpleReport(report *ScrapeReport) *SimpleReport {
	simple := &SimpleReport{
		Target:           report.Target,
		DateScanned:      report.DateScanned,
		Status:           report.Status(),
		Title:            report.Title,
		Headline:         report.Headline,
		FinalURL:         report.FinalURL,
		Browser:          browserLabel(report),
		ExecutionMode:    report.ExecutionMode,
		PageSourceLength: report.PageSourceLength,
		ScreenshotPath:   report.ScreenshotPath,
		Elapsed:          report.Elapsed,
		TimedOut:         report.TimedOut,
		Error:            report.ErrorMessage,
	}
	return simple
}

// browserLabel builds the "name version" browser label from session
// capabilities, falling back to the requested browser name when the
// session never reported capabilities.
func browserLabel(report *ScrapeReport) string {
	name := report.BrowserName
	if name == "" || name == BrowserUnknown {
		name = report.Browser
	}
	if report.BrowserVersion == "" || report.BrowserVersion == BrowserUnknown {
		return name
	}
	return name + " " + report.BrowserVersion
}
