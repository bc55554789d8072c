package model

import "time"

// Execution mode labels recorded in reports.
// The mode identifies which kind of remote endpoint served the session,
// so results from different deployments can be told apart later.
const (
	// ExecutionModeGrid indicates the session ran against a Selenium Grid hub.
	ExecutionModeGrid = "selenium_grid"

	// ExecutionModeStandalone indicates a standalone browser container
	// (selenium/standalone-chromium and friends) rather than a full hub.
	ExecutionModeStandalone = "selenium_standalone"
)

// HeadlineFallback is the sentinel recorded when the page has no
// headline element. Kept as a plain string rather than an empty value
// so downstream consumers can distinguish "no element" from "empty text".
const HeadlineFallback = "N/A"

// BrowserUnknown is recorded when the session capabilities do not
// report a browser name or version.
const BrowserUnknown = "unknown"

// ScrapeReport is the result of driving one browser session against one
// target URL. It contains everything collected during the run: page
// metadata, browser identification from the session capabilities, the
// screenshot location, and any error that stopped the run.
//
// Design decision: We use a single flat struct rather than nesting
// per-step results because the pipeline steps accumulate into one
// report, and a flat shape serializes cleanly to JSON and SQLite.
type ScrapeReport struct {
	// Target is the URL the scan was asked to visit.
	Target string `json:"target"`

	// FinalURL is the URL the browser ended up on after navigation
	// (redirects may differ from Target).
	FinalURL string `json:"final_url,omitempty"`

	// DateScanned is when the scan was performed.
	DateScanned time.Time `json:"date_scanned"`

	// Browser is the browser name that was requested (chrome, firefox).
	Browser string `json:"browser"`

	// BrowserName is the browser name reported by the session
	// capabilities. BrowserUnknown when the hub did not report one.
	BrowserName string `json:"browser_name,omitempty"`

	// BrowserVersion is the browser version reported by the session
	// capabilities. BrowserUnknown when the hub did not report one.
	BrowserVersion string `json:"browser_version,omitempty"`

	// ExecutionMode identifies the remote endpoint type.
	// See ExecutionModeGrid and ExecutionModeStandalone.
	ExecutionMode string `json:"execution_mode"`

	// Title is the document title after navigation.
	Title string `json:"title,omitempty"`

	// Headline is the text of the page's headline element (the wait
	// selector, <h1> by default). HeadlineFallback when absent.
	Headline string `json:"headline,omitempty"`

	// PageSourceLength is the length in bytes of the page source.
	PageSourceLength int `json:"page_source_length"`

	// Metadata holds structured metadata parsed from the page source.
	// Nil when the metadata step did not run or the source was not HTML.
	Metadata *PageMetadata `json:"metadata,omitempty"`

	// ScreenshotPath is the path of the saved screenshot file.
	// Empty when screenshots were disabled or the step failed.
	ScreenshotPath string `json:"screenshot_path,omitempty"`

	// Elapsed is the total wall-clock duration of the scan.
	Elapsed time.Duration `json:"elapsed"`

	// PerformedSteps lists the pipeline steps that ran, in order.
	PerformedSteps []string `json:"performed_steps,omitempty"`

	// TimedOut indicates the scan was cancelled before completing.
	TimedOut bool `json:"timed_out,omitempty"`

	// Error is the error that stopped the scan, if any.
	// Excluded from JSON; ErrorMessage carries the serializable form.
	Error error `json:"-"`

	// ErrorMessage is the string form of Error for serialization.
	ErrorMessage string `json:"error,omitempty"`
}

// NewScrapeReport creates a report for the given target and requested
// browser, stamped with the current time.
func NewScrapeReport(target, browser string) *ScrapeReport {
	return &ScrapeReport{
		Target:        target,
		Browser:       browser,
		DateScanned:   time.Now(),
		ExecutionMode: ExecutionModeGrid,
	}
}

// Succeeded reports whether the scan completed without error.
func (r *ScrapeReport) Succeeded() bool {
	return r.Error == nil && r.ErrorMessage == "" && !r.TimedOut
}

// Status returns the report status string used in output: "success"
// when the scan completed, "error" otherwise.
func (r *ScrapeReport) Status() string {
	if r.Succeeded() {
		return "success"
	}
	return "error"
}

// SetError records an error on the report, keeping both the error value
// and its serializable message in sync.
func (r *ScrapeReport) SetError(err error) {
	if err == nil {
		return
	}
	r.Error = err
	r.ErrorMessage = err.Error()
}
