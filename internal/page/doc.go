// Package page extracts metadata from HTML page source.
// The browser session returns the rendered page source as a string;
// this package parses it to recover the title, meta tags, headings,
// and link/image counts recorded in scrape reports.
package page
