// Package model defines the data structures shared across gridscan.
// It contains the scrape report produced by a browser session, the
// page metadata extracted from HTML, and the summarized report used
// for human-readable output.
package model
