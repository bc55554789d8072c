// Package main provides the entry point for the gridscan CLI.
//
// Gridscan drives browsers on a remote Selenium Grid hub: it opens a
// session, navigates to a target page, waits for it to render, extracts
// page and browser metadata, and saves a screenshot.
//
// Usage:
//
//	gridscan scan <url>
//	gridscan history <url>
//
// See --help for all available options.
package main

// main is the entry point for gridscan.
func main() {
	Execute()
}
