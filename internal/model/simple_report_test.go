package model

import (
	"errors"
	"testing"
	"time"
)

// TestNewSimpleReport tests summarization of a full report.
func TestNewSimpleReport(t *testing.T) {
	t.Parallel()

	t.Run("successful scan", func(t *testing.T) {
		t.Parallel()

		report := NewScrapeReport("https://httpbin.org/html", "chrome")
		report.Title = "Herman Melville - Moby-Dick"
		report.Headline = "Herman Melville - Moby-Dick"
		report.FinalURL = "https://httpbin.org/html"
		report.BrowserName = "chrome"
		report.BrowserVersion = "120.0.6099.109"
		report.PageSourceLength = 3741
		report.ScreenshotPath = "reports/test_chrome_screenshot.png"
		report.Elapsed = 2 * time.Second

		simple := NewSimpleReport(report)

		if simple.Status != "success" {
			t.Errorf("Status = %q, expected %q", simple.Status, "success")
		}
		if simple.Title != "Herman Melville - Moby-Dick" {
			t.Errorf("Title = %q, expected %q", simple.Title, "Herman Melville - Moby-Dick")
		}
		if simple.Browser != "chrome 120.0.6099.109" {
			t.Errorf("Browser = %q, expected %q", simple.Browser, "chrome 120.0.6099.109")
		}
		if simple.PageSourceLength != 3741 {
			t.Errorf("PageSourceLength = %d, expected %d", simple.PageSourceLength, 3741)
		}
		if simple.ScreenshotPath != "reports/test_chrome_screenshot.png" {
			t.Errorf("ScreenshotPath = %q, expected %q",
				simple.ScreenshotPath, "reports/test_chrome_screenshot.png")
		}
	})

	t.Run("failed scan carries error", func(t *testing.T) {
		t.Parallel()

		report := NewScrapeReport("https://example.com", "firefox")
		report.SetError(errors.New("session not created"))

		simple := NewSimpleReport(report)

		if simple.Status != "error" {
			t.Errorf("Status = %q, expected %q", simple.Status, "error")
		}
		if simple.Error != "session not created" {
			t.Errorf("Error = %q, expected %q", simple.Error, "session not created")
		}
	})
}

// TestBrowserLabel tests browser label construction from capabilities.
func TestBrowserLabel(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name     string
		reported string
		version  string
		expected string
	}{
		{"name and version", "chrome", "120.0", "chrome 120.0"},
		{"name only", "firefox", "", "firefox"},
		{"unknown version", "chrome", BrowserUnknown, "chrome"},
		{"unknown name falls back to requested", BrowserUnknown, "", "chrome"},
		{"empty capabilities fall back to requested", "", "", "chrome"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			report := NewScrapeReport("https://example.com", "chrome")
			report.BrowserName = tc.reported
			report.BrowserVersion = tc.version

			if got := browserLabel(report); got != tc.expected {
				t.Errorf("browserLabel() = %q, expected %q", got, tc.expected)
			}
		})
	}
}
