package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/nao1215/gridscan/internal/config"
	"github.com/nao1215/gridscan/internal/database"
	"github.com/nao1215/gridscan/internal/report"
	"github.com/spf13/cobra"
)

// defaultHistoryLimit is the number of runs shown when --last is unset.
const defaultHistoryLimit = 20

// NewHistoryCmd creates the history command.
// This command lists and replays scan results stored in the database.
func NewHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history [url]",
		Short: "Show past scan results stored in the database",
		Long: `History lists scan runs recorded by 'gridscan scan'.

Every scan is saved to a local SQLite database in the XDG data
directory. This command lists those runs, filtered by target URL
when one is given, and can replay the full report of a single run.

Examples:
  # List the most recent runs across all targets
  gridscan history

  # List runs for a specific target
  gridscan history https://example.com

  # List the targets present in the database
  gridscan history --list-targets

  # Show the last 5 runs for a target
  gridscan history -n 5 https://example.com

  # Replay the full report of run 12
  gridscan history --id 12

  # Replay run 12 as JSON
  gridscan history --id 12 --json`,
		Args: cobra.MaximumNArgs(1),
		RunE: runHistoryCmd,
	}

	cmd.Flags().BoolP("list-targets", "L", false,
		"List all targets present in the database")
	cmd.Flags().IntP("last", "n", defaultHistoryLimit,
		"Maximum number of runs to list")
	cmd.Flags().Int64("id", 0,
		"Show the full report of a specific run by ID")
	cmd.Flags().BoolP("json", "j", false,
		"Output the run report in JSON format (with --id)")

	return cmd
}

// runHistoryCmd executes the history command.
func runHistoryCmd(cmd *cobra.Command, args []string) error {
	listTargets, err := cmd.Flags().GetBool("list-targets")
	if err != nil {
		return err
	}

	runID, err := cmd.Flags().GetInt64("id")
	if err != nil {
		return err
	}

	limit, err := cmd.Flags().GetInt("last")
	if err != nil {
		return err
	}
	if limit <= 0 {
		limit = defaultHistoryLimit
	}

	jsonOutput, err := cmd.Flags().GetBool("json")
	if err != nil {
		return err
	}

	// Use XDG data directory for database
	dbDir := config.XDGDataDir()

	db, err := database.Open(dbDir, database.Options{CreateIfNotExists: false, EnableWAL: true})
	if err != nil {
		return fmt.Errorf("failed to open database (run 'gridscan scan' first): %w", err)
	}
	defer db.Close()

	ctx := context.Background()

	if listTargets {
		return listScannedTargets(ctx, db)
	}

	if runID > 0 {
		return showRun(ctx, db, runID, jsonOutput)
	}

	var target string
	if len(args) > 0 {
		target = args[0]
	}

	return listRunHistory(ctx, db, target, limit)
}

// listScannedTargets lists all targets that have runs in the database.
func listScannedTargets(ctx context.Context, db *database.HistoryDB) error {
	targets, err := db.ListTargets(ctx)
	if err != nil {
		return fmt.Errorf("failed to list targets: %w", err)
	}

	if len(targets) == 0 {
		fmt.Println("No scan runs found in the database.")
		fmt.Println("\nUse 'gridscan scan <url>' to scan a page.")
		return nil
	}

	fmt.Printf("Scanned targets (%d):\n\n", len(targets))
	for _, target := range targets {
		fmt.Printf("  • %s\n", target)
	}
	fmt.Println("\nUse 'gridscan history <url>' to see runs for a target.")

	return nil
}

// listRunHistory lists run records, optionally filtered by target.
func listRunHistory(ctx context.Context, db *database.HistoryDB, target string, limit int) error {
	runs, err := db.ListRuns(ctx, target, limit)
	if err != nil {
		return fmt.Errorf("failed to get run history: %w", err)
	}

	if len(runs) == 0 {
		if target != "" {
			fmt.Printf("No scan runs found for %s\n", target)
		} else {
			fmt.Println("No scan runs found in the database.")
		}
		fmt.Println("\nUse 'gridscan scan' to scan a page.")
		return nil
	}

	if target != "" {
		fmt.Printf("Scan runs for %s (%d runs):\n\n", target, len(runs))
	} else {
		fmt.Printf("Recent scan runs (%d):\n\n", len(runs))
	}

	fmt.Printf("  %-6s  %-20s  %-8s  %-8s  %s\n", "ID", "Date", "Browser", "Status", "Title")
	fmt.Println("  " + strings.Repeat("-", 76))

	for _, run := range runs {
		title := run.Title
		if title == "" {
			title = "-"
		}
		fmt.Printf("  %-6d  %-20s  %-8s  %-8s  %s\n",
			run.ID,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Browser,
			run.Status,
			title,
		)
	}

	fmt.Println("\nUse 'gridscan history --id <id>' to replay the full report of a run.")

	return nil
}

// showRun replays the full report of a single stored run.
func showRun(ctx context.Context, db *database.HistoryDB, runID int64, jsonOutput bool) error {
	scrapeReport, err := db.GetRunByID(ctx, runID)
	if err != nil {
		return fmt.Errorf("failed to load run %d: %w", runID, err)
	}
	if scrapeReport == nil {
		return fmt.Errorf("no run found with ID %d (use 'gridscan history' to list runs)", runID)
	}

	if jsonOutput {
		writer := report.NewJSONWriter(os.Stdout, report.WithPrettyPrint())
		_, err := writer.Write(scrapeReport)
		return err
	}

	writer := report.NewSimpleWriter(os.Stdout, report.WithVerbose(true))
	_, err = writer.Write(scrapeReport)
	return err
}
