// Package pipeline orchestrates the steps of a single scrape: navigate
// to the target, wait for the page to render, extract metadata, and
// capture a screenshot. Steps implement a common interface and
// accumulate into one model.ScrapeReport, so the set of steps can be
// tailored per run (screenshots off, extra steps added) without
// changing the execution logic. A BatchProcessor runs pipelines for
// multiple targets concurrently, one browser session per target.
package pipeline
