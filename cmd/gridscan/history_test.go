package main

import (
	"context"
	"strings"
	"testing"

	"github.com/nao1215/gridscan/internal/database"
	"github.com/nao1215/gridscan/internal/model"
)

// TestNewHistoryCmd tests the history command creation.
func TestNewHistoryCmd(t *testing.T) {
	t.Parallel()

	cmd := NewHistoryCmd()

	t.Run("has correct use", func(t *testing.T) {
		t.Parallel()
		if cmd.Use != "history [url]" {
			t.Errorf("expected use 'history [url]', got %q", cmd.Use)
		}
	})

	t.Run("has short description", func(t *testing.T) {
		t.Parallel()
		if cmd.Short == "" {
			t.Error("expected non-empty short description")
		}
	})

	t.Run("has list-targets flag", func(t *testing.T) {
		t.Parallel()
		flag := cmd.Flags().Lookup("list-targets")
		if flag == nil {
			t.Fatal("expected list-targets flag")
		}
		if flag.Shorthand != "L" {
			t.Errorf("expected shorthand 'L', got %q", flag.Shorthand)
		}
	})

	t.Run("has last flag", func(t *testing.T) {
		t.Parallel()
		flag := cmd.Flags().Lookup("last")
		if flag == nil {
			t.Fatal("expected last flag")
		}
		if flag.Shorthand != "n" {
			t.Errorf("expected shorthand 'n', got %q", flag.Shorthand)
		}
	})

	t.Run("has id flag", func(t *testing.T) {
		t.Parallel()
		if cmd.Flags().Lookup("id") == nil {
			t.Fatal("expected id flag")
		}
	})

	t.Run("has json flag", func(t *testing.T) {
		t.Parallel()
		flag := cmd.Flags().Lookup("json")
		if flag == nil {
			t.Fatal("expected json flag")
		}
		if flag.Shorthand != "j" {
			t.Errorf("expected shorthand 'j', got %q", flag.Shorthand)
		}
	})
}

// openHistoryTestDB opens a fresh database in a temp directory and
// seeds it with the given reports.
func openHistoryTestDB(t *testing.T, reports ...*model.ScrapeReport) *database.HistoryDB {
	t.Helper()

	db, err := database.Open(t.TempDir(), database.DefaultOptions())
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	t.Cleanup(func() {
		if err := db.Close(); err != nil {
			t.Errorf("failed to close database: %v", err)
		}
	})

	ctx := context.Background()
	for _, r := range reports {
		if _, err := db.SaveScrapeReport(ctx, r); err != nil {
			t.Fatalf("failed to seed report: %v", err)
		}
	}

	return db
}

// TestListScannedTargets tests target listing.
func TestListScannedTargets(t *testing.T) {
	t.Parallel()

	t.Run("handles empty database", func(t *testing.T) {
		t.Parallel()

		db := openHistoryTestDB(t)
		if err := listScannedTargets(context.Background(), db); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})

	t.Run("lists seeded targets", func(t *testing.T) {
		t.Parallel()

		db := openHistoryTestDB(t,
			model.NewScrapeReport("https://a.test", "chrome"),
			model.NewScrapeReport("https://b.test", "firefox"),
		)
		if err := listScannedTargets(context.Background(), db); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})
}

// TestListRunHistory tests run listing.
func TestListRunHistory(t *testing.T) {
	t.Parallel()

	t.Run("handles empty database", func(t *testing.T) {
		t.Parallel()

		db := openHistoryTestDB(t)
		if err := listRunHistory(context.Background(), db, "", 10); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})

	t.Run("lists runs for a target", func(t *testing.T) {
		t.Parallel()

		first := model.NewScrapeReport("https://list.test", "chrome")
		first.Title = "First Run"
		second := model.NewScrapeReport("https://list.test", "chrome")
		second.Title = "Second Run"

		db := openHistoryTestDB(t, first, second)
		if err := listRunHistory(context.Background(), db, "https://list.test", 10); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})

	t.Run("lists runs across all targets", func(t *testing.T) {
		t.Parallel()

		db := openHistoryTestDB(t,
			model.NewScrapeReport("https://a.test", "chrome"),
			model.NewScrapeReport("https://b.test", "chrome"),
		)
		if err := listRunHistory(context.Background(), db, "", 10); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})
}

// TestShowRun tests replaying a stored run.
func TestShowRun(t *testing.T) {
	t.Parallel()

	t.Run("replays stored run", func(t *testing.T) {
		t.Parallel()

		seeded := model.NewScrapeReport("https://show.test", "chrome")
		seeded.Title = "Shown Page"
		db := openHistoryTestDB(t, seeded)

		runs, err := db.ListRuns(context.Background(), "https://show.test", 1)
		if err != nil || len(runs) != 1 {
			t.Fatalf("failed to list seeded run: %v", err)
		}

		if err := showRun(context.Background(), db, runs[0].ID, false); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})

	t.Run("replays stored run as JSON", func(t *testing.T) {
		t.Parallel()

		seeded := model.NewScrapeReport("https://show-json.test", "firefox")
		db := openHistoryTestDB(t, seeded)

		runs, err := db.ListRuns(context.Background(), "https://show-json.test", 1)
		if err != nil || len(runs) != 1 {
			t.Fatalf("failed to list seeded run: %v", err)
		}

		if err := showRun(context.Background(), db, runs[0].ID, true); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})

	t.Run("returns error for unknown run ID", func(t *testing.T) {
		t.Parallel()

		db := openHistoryTestDB(t)

		err := showRun(context.Background(), db, 9999, false)
		if err == nil {
			t.Fatal("expected error for unknown run ID")
		}
		if !strings.Contains(err.Error(), "no run found") {
			t.Errorf("expected 'no run found' error, got: %v", err)
		}
	})
}
