package pipeline

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/nao1215/gridscan/internal/model"
)

// okFactory returns a factory producing an empty pipeline with a no-op
// cleanup. Useful when the test only exercises batch mechanics.
func okFactory() PipelineFactory {
	return func(_ context.Context, _ string) (*Pipeline, CleanupFunc, error) {
		return New(), func() {}, nil
	}
}

// TestBatchProcessorOptions tests BatchProcessor option functions.
func TestBatchProcessorOptions(t *testing.T) {
	t.Parallel()

	t.Run("WithBatchLogger sets custom logger", func(t *testing.T) {
		t.Parallel()

		bp := NewBatchProcessor("chrome", okFactory(), WithBatchLogger(nil))

		if bp == nil {
			t.Fatal("expected non-nil batch processor")
		}
	})

	t.Run("WithConcurrency sets concurrency", func(t *testing.T) {
		t.Parallel()

		bp := NewBatchProcessor("chrome", okFactory(), WithConcurrency(8))

		if bp.concurrency != 8 {
			t.Errorf("expected concurrency 8, got %d", bp.concurrency)
		}
	})

	t.Run("WithConcurrency ignores invalid values", func(t *testing.T) {
		t.Parallel()

		bp := NewBatchProcessor("chrome", okFactory(), WithConcurrency(0))

		// Should keep default (4)
		if bp.concurrency != 4 {
			t.Errorf("expected default concurrency 4, got %d", bp.concurrency)
		}
	})
}

// TestProcessBatch tests concurrent batch scraping.
func TestProcessBatch(t *testing.T) {
	t.Parallel()

	t.Run("returns one report per target in input order", func(t *testing.T) {
		t.Parallel()

		factory := func(_ context.Context, _ string) (*Pipeline, CleanupFunc, error) {
			p := New()
			p.AddStep(&mockStep{
				name: "mark",
				doFunc: func(_ context.Context, r *model.ScrapeReport) error {
					r.Title = "visited " + r.Target
					return nil
				},
			})
			return p, func() {}, nil
		}

		bp := NewBatchProcessor("chrome", factory, WithConcurrency(2))
		targets := []string{
			"https://example.com/a",
			"https://example.com/b",
			"https://example.com/c",
		}

		reports, err := bp.ProcessBatch(context.Background(), targets)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(reports) != len(targets) {
			t.Fatalf("expected %d reports, got %d", len(targets), len(reports))
		}
		for i, report := range reports {
			if report.Target != targets[i] {
				t.Errorf("report %d: expected target %q, got %q", i, targets[i], report.Target)
			}
			if report.Title != "visited "+targets[i] {
				t.Errorf("report %d: pipeline did not run: %q", i, report.Title)
			}
			if report.Browser != "chrome" {
				t.Errorf("report %d: expected browser chrome, got %q", i, report.Browser)
			}
		}
	})

	t.Run("records factory failures per target", func(t *testing.T) {
		t.Parallel()

		sessionErr := errors.New("no node slot available")
		var calls int
		var mu sync.Mutex

		factory := func(_ context.Context, _ string) (*Pipeline, CleanupFunc, error) {
			mu.Lock()
			calls++
			fail := calls == 2
			mu.Unlock()
			if fail {
				return nil, nil, sessionErr
			}
			return New(), func() {}, nil
		}

		// Concurrency 1 makes the failing call deterministic
		bp := NewBatchProcessor("chrome", factory, WithConcurrency(1))
		targets := []string{"https://a.test", "https://b.test", "https://c.test"}

		reports, err := bp.ProcessBatch(context.Background(), targets)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		var failed int
		for _, report := range reports {
			if !report.Succeeded() {
				failed++
				if !errors.Is(report.Error, sessionErr) {
					t.Errorf("unexpected report error: %v", report.Error)
				}
			}
		}
		if failed != 1 {
			t.Errorf("expected 1 failed report, got %d", failed)
		}
	})

	t.Run("keeps scraping after a pipeline failure", func(t *testing.T) {
		t.Parallel()

		stepErr := errors.New("page did not render")

		factory := func(_ context.Context, _ string) (*Pipeline, CleanupFunc, error) {
			p := New()
			p.AddStep(&mockStep{
				name: "maybe-fail",
				doFunc: func(_ context.Context, r *model.ScrapeReport) error {
					if r.Target == "https://broken.test" {
						return stepErr
					}
					return nil
				},
			})
			return p, func() {}, nil
		}

		bp := NewBatchProcessor("chrome", factory)
		targets := []string{"https://ok.test", "https://broken.test", "https://also-ok.test"}

		reports, err := bp.ProcessBatch(context.Background(), targets)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if reports[0].Status() != "success" || reports[2].Status() != "success" {
			t.Error("healthy targets should succeed")
		}
		if reports[1].Status() != "error" {
			t.Error("broken target should be recorded as error")
		}
	})

	t.Run("calls cleanup for every opened session", func(t *testing.T) {
		t.Parallel()

		var mu sync.Mutex
		var cleanups int

		factory := func(_ context.Context, _ string) (*Pipeline, CleanupFunc, error) {
			return New(), func() {
				mu.Lock()
				cleanups++
				mu.Unlock()
			}, nil
		}

		bp := NewBatchProcessor("chrome", factory)
		targets := []string{"https://a.test", "https://b.test"}

		if _, err := bp.ProcessBatch(context.Background(), targets); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		mu.Lock()
		defer mu.Unlock()
		if cleanups != len(targets) {
			t.Errorf("expected %d cleanups, got %d", len(targets), cleanups)
		}
	})

	t.Run("marks remaining targets timed out on cancellation", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		bp := NewBatchProcessor("chrome", okFactory())
		reports, err := bp.ProcessBatch(ctx, []string{"https://a.test", "https://b.test"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		for i, report := range reports {
			if !report.TimedOut {
				t.Errorf("report %d: expected TimedOut", i)
			}
		}
	})
}

// TestProcessBatchWithCallback tests streaming batch results.
func TestProcessBatchWithCallback(t *testing.T) {
	t.Parallel()

	t.Run("invokes callback once per target", func(t *testing.T) {
		t.Parallel()

		bp := NewBatchProcessor("firefox", okFactory(), WithConcurrency(2))
		targets := []string{"https://a.test", "https://b.test", "https://c.test"}

		var mu sync.Mutex
		seen := make(map[int]string)

		err := bp.ProcessBatchWithCallback(context.Background(), targets,
			func(report *model.ScrapeReport, index int) {
				mu.Lock()
				seen[index] = report.Target
				mu.Unlock()
			})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		mu.Lock()
		defer mu.Unlock()
		if len(seen) != len(targets) {
			t.Fatalf("expected %d callbacks, got %d", len(targets), len(seen))
		}
		for i, target := range targets {
			if seen[i] != target {
				t.Errorf("index %d: expected %q, got %q", i, target, seen[i])
			}
		}
	})
}
