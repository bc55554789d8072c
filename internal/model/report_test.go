package model

import (
	"errors"
	"testing"
	"time"
)

// TestNewScrapeReport tests report construction.
func TestNewScrapeReport(t *testing.T) {
	t.Parallel()

	report := NewScrapeReport("https://httpbin.org/html", "chrome")

	if report.Target != "https://httpbin.org/html" {
		t.Errorf("Target = %q, expected %q", report.Target, "https://httpbin.org/html")
	}
	if report.Browser != "chrome" {
		t.Errorf("Browser = %q, expected %q", report.Browser, "chrome")
	}
	if report.ExecutionMode != ExecutionModeGrid {
		t.Errorf("ExecutionMode = %q, expected %q", report.ExecutionMode, ExecutionModeGrid)
	}
	if report.DateScanned.IsZero() {
		t.Error("DateScanned should be set")
	}
	if time.Since(report.DateScanned) > time.Minute {
		t.Error("DateScanned should be recent")
	}
}

// TestScrapeReportStatus tests status transitions.
func TestScrapeReportStatus(t *testing.T) {
	t.Parallel()

	t.Run("new report is success", func(t *testing.T) {
		t.Parallel()

		report := NewScrapeReport("https://example.com", "chrome")
		if !report.Succeeded() {
			t.Error("expected Succeeded() to be true")
		}
		if report.Status() != "success" {
			t.Errorf("Status() = %q, expected %q", report.Status(), "success")
		}
	})

	t.Run("report with error is error", func(t *testing.T) {
		t.Parallel()

		report := NewScrapeReport("https://example.com", "chrome")
		report.SetError(errors.New("navigation failed"))

		if report.Succeeded() {
			t.Error("expected Succeeded() to be false")
		}
		if report.Status() != "error" {
			t.Errorf("Status() = %q, expected %q", report.Status(), "error")
		}
		if report.ErrorMessage != "navigation failed" {
			t.Errorf("ErrorMessage = %q, expected %q", report.ErrorMessage, "navigation failed")
		}
	})

	t.Run("timed out report is error", func(t *testing.T) {
		t.Parallel()

		report := NewScrapeReport("https://example.com", "chrome")
		report.TimedOut = true

		if report.Status() != "error" {
			t.Errorf("Status() = %q, expected %q", report.Status(), "error")
		}
	})

	t.Run("SetError with nil is a no-op", func(t *testing.T) {
		t.Parallel()

		report := NewScrapeReport("https://example.com", "chrome")
		report.SetError(nil)

		if report.Error != nil {
			t.Errorf("Error = %v, expected nil", report.Error)
		}
		if !report.Succeeded() {
			t.Error("expected Succeeded() to be true")
		}
	})
}

// TestPageMetadataFirstHeading tests the first-heading accessor.
func TestPageMetadataFirstHeading(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name     string
		metadata *PageMetadata
		expected string
	}{
		{"nil metadata", nil, ""},
		{"no headings", &PageMetadata{}, ""},
		{"single heading", &PageMetadata{Headings: []string{"Welcome"}}, "Welcome"},
		{"multiple headings", &PageMetadata{Headings: []string{"First", "Second"}}, "First"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			if got := tc.metadata.FirstHeading(); got != tc.expected {
				t.Errorf("FirstHeading() = %q, expected %q", got, tc.expected)
			}
		})
	}
}
