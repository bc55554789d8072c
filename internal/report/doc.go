// Package report renders scrape results for humans and tools.
// It defines a Writer interface over model.ScrapeReport and provides
// three implementations: a plain-text writer for terminals, a JSON
// writer for tool integration, and a Markdown writer for sharing.
// A MultiWriter fans one report out to several destinations at once.
package report
