package pipeline

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/nao1215/gridscan/internal/model"
	"golang.org/x/sync/errgroup"
)

// CleanupFunc releases the resources backing a pipeline, typically the
// browser session. It is called exactly once after the pipeline runs,
// whether or not the run succeeded.
type CleanupFunc func()

// PipelineFactory creates a fresh pipeline for one target.
//
// Design decision: Unlike a plain factory function, this one takes a
// context and can fail, because creating a pipeline means opening a
// browser session on the hub. Session creation failures are per-target:
// one node slot being unavailable should not abort the whole batch.
// The target is passed in so callers can derive per-target settings
// such as unique screenshot file names.
type PipelineFactory func(ctx context.Context, target string) (*Pipeline, CleanupFunc, error)

// BatchProcessor handles concurrent scraping of multiple targets.
// It uses errgroup to manage goroutines and respect concurrency limits.
// Each target gets its own browser session, so the concurrency limit is
// also the number of node slots the batch occupies on the hub.
//
// Design decision: We use a separate BatchProcessor rather than adding
// batch functionality to Pipeline because:
// 1. It keeps the Pipeline focused on single-target execution
// 2. It allows different batch strategies (e.g., rate limiting, retries)
// 3. It provides cleaner separation of concerns
type BatchProcessor struct {
	// factory creates a pipeline (and its browser session) per target.
	factory PipelineFactory

	// browser is the requested browser name recorded in each report.
	browser string

	// concurrency is the maximum number of concurrent sessions.
	concurrency int

	// logger is used for batch-level logging.
	logger *slog.Logger

	// results stores completed scrape reports.
	// Access is synchronized via mutex.
	results []*model.ScrapeReport
	mu      sync.Mutex
}

// BatchOption configures a BatchProcessor.
type BatchOption func(*BatchProcessor)

// WithBatchLogger sets a custom logger for batch processing.
func WithBatchLogger(logger *slog.Logger) BatchOption {
	return func(b *BatchProcessor) {
		b.logger = logger
	}
}

// WithConcurrency sets the maximum number of concurrent sessions.
// Default is 4 if not specified.
func WithConcurrency(n int) BatchOption {
	return func(b *BatchProcessor) {
		if n > 0 {
			b.concurrency = n
		}
	}
}

// NewBatchProcessor creates a new BatchProcessor.
//
// The factory is called once per target to create a fresh pipeline and
// its browser session. This ensures no browser state (cookies, history)
// leaks between targets.
func NewBatchProcessor(browser string, factory PipelineFactory, opts ...BatchOption) *BatchProcessor {
	bp := &BatchProcessor{
		factory:     factory,
		browser:     browser,
		concurrency: 4,
		results:     make([]*model.ScrapeReport, 0),
	}

	for _, opt := range opts {
		opt(bp)
	}

	if bp.logger == nil {
		bp.logger = slog.Default()
	}

	return bp
}

// ProcessBatch scrapes multiple targets concurrently.
// It respects the configured concurrency limit and context cancellation.
//
// Design decision: We use errgroup.SetLimit rather than a worker pool
// because it's simpler and errgroup handles the concurrency correctly.
// Each target gets its own goroutine, but only 'concurrency' goroutines
// run simultaneously.
//
// Returns all reports collected, even for targets that failed.
// The error return indicates if the batch was cancelled.
func (bp *BatchProcessor) ProcessBatch(ctx context.Context, targets []string) ([]*model.ScrapeReport, error) {
	bp.logger.Info("starting batch processing",
		"total_targets", len(targets),
		"concurrency", bp.concurrency,
	)

	startTime := time.Now()

	// Pre-allocate results slice to maintain order
	bp.results = make([]*model.ScrapeReport, len(targets))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(bp.concurrency)

	for i, target := range targets {
		g.Go(func() error {
			report := bp.scrapeOne(ctx, target, i, len(targets))

			bp.mu.Lock()
			bp.results[i] = report
			bp.mu.Unlock()

			return nil
		})
	}

	// Wait for all scrapes to complete
	err := g.Wait()

	elapsed := time.Since(startTime)
	bp.logger.Info("batch processing complete",
		"total_targets", len(targets),
		"elapsed", elapsed,
	)

	return bp.results, err
}

// ProcessBatchWithCallback scrapes multiple targets and calls a callback
// for each completed scrape. This is useful for streaming results.
//
// The callback receives the report and the index of the target in the
// original slice. The callback is called from the goroutine that
// completed the scrape, so it should be thread-safe if it accesses
// shared state.
func (bp *BatchProcessor) ProcessBatchWithCallback(
	ctx context.Context,
	targets []string,
	callback func(report *model.ScrapeReport, index int),
) error {
	bp.logger.Info("starting batch processing with callback",
		"total_targets", len(targets),
		"concurrency", bp.concurrency,
	)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(bp.concurrency)

	for i, target := range targets {
		g.Go(func() error {
			report := bp.scrapeOne(ctx, target, i, len(targets))
			callback(report, i)
			return nil
		})
	}

	return g.Wait()
}

// scrapeOne runs the full scrape of one target: open a session via the
// factory, execute the pipeline, clean up. Failures are recorded in the
// returned report rather than propagated, so one bad target never
// aborts the batch.
func (bp *BatchProcessor) scrapeOne(ctx context.Context, target string, index, total int) *model.ScrapeReport {
	report := model.NewScrapeReport(target, bp.browser)

	// Check for cancellation before opening a session
	select {
	case <-ctx.Done():
		report.TimedOut = true
		report.SetError(ctx.Err())
		return report
	default:
	}

	bp.logger.Info("scraping target",
		"target", target,
		"index", index+1,
		"total", total,
	)

	start := time.Now()
	defer func() { report.Elapsed = time.Since(start) }()

	p, cleanup, err := bp.factory(ctx, target)
	if err != nil {
		bp.logger.Warn("failed to open session",
			"target", target,
			"error", err,
		)
		report.SetError(err)
		return report
	}
	defer cleanup()

	if err := p.Execute(ctx, report); err != nil {
		// Error is already recorded in the report; keep going with
		// the other targets.
		bp.logger.Warn("scrape failed",
			"target", target,
			"error", err,
		)
		return report
	}

	bp.logger.Info("scrape completed", "target", target)
	return report
}
