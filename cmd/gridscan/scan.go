package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/nao1215/gridscan/internal/config"
	"github.com/nao1215/gridscan/internal/database"
	"github.com/nao1215/gridscan/internal/grid"
	"github.com/nao1215/gridscan/internal/log"
	"github.com/nao1215/gridscan/internal/model"
	"github.com/nao1215/gridscan/internal/pipeline"
	"github.com/nao1215/gridscan/internal/report"
	"github.com/spf13/cobra"
)

// NewScanCmd creates the scan command.
func NewScanCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scan [url...]",
		Short: "Open a browser session on the Grid hub and scan target pages",
		Long: `Scan opens a browser session on a remote Selenium Grid hub, navigates
to each target URL, waits for the page to render, and extracts:
- Page title, first headline, and final URL
- Page metadata (description, headings, link and image counts)
- Browser name and version as reported by the session
- A PNG screenshot saved under the screenshot directory

When no URL is given, the built-in smoke-test page is scanned.

Examples:
  # Scan the default smoke-test page against a local Grid
  gridscan scan

  # Scan a single page
  gridscan scan https://example.com

  # Scan multiple pages concurrently
  gridscan scan https://example.com https://example.org

  # Use a remote hub and Firefox
  gridscan scan --hub http://grid.internal:4444 --browser firefox https://example.com

  # Output JSON report
  gridscan scan --json https://example.com

  # Use a custom configuration file
  gridscan scan -c myconfig.yaml https://example.com

Configuration file (.gridscan) example:
  targets:
    https://example.com:
      waitSelector: "main h1"
      screenshot: example_home.png
    https://example.org:
      browserArgs: ["--lang=ja"]
  defaults:
    waitSelector: "h1"`,
		Args: cobra.ArbitraryArgs,
		RunE: runScanCmd,
	}

	// Hub connection flags
	cmd.Flags().String("hub", config.DefaultHubURL,
		"Selenium Grid hub base URL (also via SELENIUM_REMOTE_URL)")
	cmd.Flags().String("browser", config.DefaultBrowser,
		"Browser to request: chrome or firefox (also via SELENIUM_BROWSER)")

	// Scan behavior flags
	cmd.Flags().DurationP("timeout", "t", config.DefaultTimeout,
		"Timeout for the post-navigation element wait")
	cmd.Flags().String("wait-selector", config.DefaultWaitSelector,
		"CSS selector waited for after navigation (its text becomes the headline)")
	cmd.Flags().String("screenshot-dir", config.DefaultScreenshotDir,
		"Directory screenshots are saved to")
	cmd.Flags().Bool("no-screenshot", false,
		"Skip the screenshot step")

	// Batch scanning flags
	cmd.Flags().IntP("batch", "b", config.DefaultBatchSize,
		"Number of concurrent sessions (each occupies a Grid node slot)")

	// Configuration file
	cmd.Flags().StringP("config", "c", "",
		"Configuration file path (default: .gridscan in current or home directory)")

	// Report flags
	cmd.Flags().BoolP("json", "j", false,
		"Output JSON report (mutually exclusive with --markdown)")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output Markdown report (mutually exclusive with --json)")
	cmd.Flags().StringP("output", "o", "",
		"Write report to specified file path (creates directories if needed)")

	return cmd
}

// runScanCmd executes the scan command.
func runScanCmd(cmd *cobra.Command, args []string) error {
	// Build config from environment and flags
	cfg, err := buildConfig(cmd, args)
	if err != nil {
		return err
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	// Set up structured logging
	cfg.Verbose = getVerboseFlag(cmd)
	logger := log.NewSecureLogger(os.Stderr, cfg.Verbose)
	slog.SetDefault(logger)

	// Set up context with signal handling for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle interrupt signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Info("received shutdown signal, cancelling...")
		cancel()
	}()

	return runScan(ctx, cfg, logger)
}

// getVerboseFlag retrieves the verbose flag from the command or its parent.
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		verbose, err = cmd.Root().PersistentFlags().GetBool("verbose")
		if err != nil {
			return false
		}
	}
	return verbose
}

// buildConfig creates a Config from the environment and cobra flags.
//
// Precedence, lowest to highest: built-in defaults, environment
// variables (SELENIUM_REMOTE_URL / SELENIUM_HUB_URL / SELENIUM_BROWSER),
// explicitly set flags. Flags that were left at their default must not
// clobber an environment override, hence the Changed checks.
func buildConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg := config.NewConfig()
	cfg.ApplyEnvironment()

	var err error

	if cmd.Flags().Changed("hub") {
		cfg.HubURL, err = cmd.Flags().GetString("hub")
		if err != nil {
			return nil, err
		}
	}
	cfg.HubURL = strings.TrimRight(cfg.HubURL, "/")

	if cmd.Flags().Changed("browser") {
		cfg.Browser, err = cmd.Flags().GetString("browser")
		if err != nil {
			return nil, err
		}
	}
	cfg.Browser = strings.ToLower(cfg.Browser)

	cfg.Timeout, err = cmd.Flags().GetDuration("timeout")
	if err != nil {
		return nil, err
	}

	cfg.WaitSelector, err = cmd.Flags().GetString("wait-selector")
	if err != nil {
		return nil, err
	}

	cfg.ScreenshotDir, err = cmd.Flags().GetString("screenshot-dir")
	if err != nil {
		return nil, err
	}

	cfg.DisableScreenshot, err = cmd.Flags().GetBool("no-screenshot")
	if err != nil {
		return nil, err
	}

	cfg.BatchSize, err = cmd.Flags().GetInt("batch")
	if err != nil {
		return nil, err
	}

	cfg.ConfigFilePath, err = cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}

	// Load per-target configurations from the config file.
	// If user explicitly specified a config file path, error if not found.
	// If no path specified, silently use empty config if no file found.
	explicitConfigPath := cfg.ConfigFilePath != ""
	configPath := config.FindConfigFile(cfg.ConfigFilePath)

	if configPath != "" {
		cfg.TargetConfigs, err = config.LoadConfigFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	} else if explicitConfigPath {
		// User explicitly specified a config file that doesn't exist
		return nil, fmt.Errorf("configuration file not found: %s", cfg.ConfigFilePath)
	} else {
		// Use empty config if no file found and user didn't explicitly specify one
		cfg.TargetConfigs = &config.File{
			Targets: make(map[string]config.TargetConfig),
		}
	}

	cfg.JSONReport, err = cmd.Flags().GetBool("json")
	if err != nil {
		return nil, err
	}

	cfg.MarkdownReport, err = cmd.Flags().GetBool("markdown")
	if err != nil {
		return nil, err
	}

	cfg.ReportFile, err = cmd.Flags().GetString("output")
	if err != nil {
		return nil, err
	}

	// Always save to database using XDG data directory
	cfg.SaveToDB = true
	cfg.DBDir = config.XDGDataDir()

	// Positional arguments are the target URLs. With none given, scan
	// the built-in smoke-test page.
	cfg.Targets = args
	if len(cfg.Targets) == 0 {
		cfg.Targets = []string{config.DefaultTestURL}
	}

	return cfg, nil
}

// runScan executes the scan.
func runScan(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	logger.Info("starting scan",
		"targets", cfg.Targets,
		"hubURL", cfg.HubURL,
		"browser", cfg.Browser,
		"batchSize", cfg.BatchSize,
		"saveToDB", cfg.SaveToDB,
	)

	// Open database connection if saving is enabled
	var db *database.HistoryDB
	if cfg.SaveToDB {
		var err error
		db, err = database.Open(cfg.DBDir, database.DefaultOptions())
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		defer db.Close()
		logger.Info("database opened", "dir", cfg.DBDir)
	}

	// Probe the hub before opening any session. The status command is
	// free, so a dead or misconfigured hub fails fast here instead of
	// timing out inside session creation.
	probe, err := grid.NewClient(cfg.HubURL, cfg.Browser, cfg.Timeout, grid.WithLogger(logger))
	if err != nil {
		return fmt.Errorf("failed to create Grid client: %w", err)
	}

	status := probe.CheckConnection(ctx)
	if status != grid.HubStatusOK {
		return fmt.Errorf("hub check failed: %s (make sure a Selenium Grid is running at %s)",
			status, cfg.HubURL)
	}

	logger.Info("hub connection verified", "hubURL", cfg.HubURL)
	fmt.Printf("Connected to Selenium Grid at %s (browser: %s)\n\n", cfg.HubURL, cfg.Browser)

	// Use batch processor for parallel scanning if multiple targets
	if len(cfg.Targets) > 1 && cfg.BatchSize > 1 {
		return runBatchScan(ctx, cfg, db, logger)
	}

	// Single target or sequential scanning
	return runSequentialScan(ctx, cfg, db, logger)
}

// runSequentialScan scans targets one at a time, applying per-target
// configuration from the config file.
func runSequentialScan(ctx context.Context, cfg *config.Config, db *database.HistoryDB, logger *slog.Logger) error {
	var failed int

	for _, target := range cfg.Targets {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		targetConfig := getTargetConfig(cfg, target)

		fmt.Printf("Scanning %s...\n", target)
		scrapeReport := model.NewScrapeReport(target, cfg.Browser)
		startTime := time.Now()

		if err := scrapeTarget(ctx, cfg, targetConfig, target, scrapeReport, logger); err != nil {
			logger.Error("scan failed", "target", target, "error", err)
			fmt.Fprintf(os.Stderr, "Scan error for %s: %v\n", target, err)
		}

		scrapeReport.Elapsed = time.Since(startTime)
		if !scrapeReport.Succeeded() {
			failed++
		} else {
			fmt.Printf("Scan completed in %s\n\n", scrapeReport.Elapsed.Round(time.Millisecond))
		}

		// Generate and output report
		if err := outputReport(cfg, scrapeReport); err != nil {
			logger.Error("report failed", "target", target, "error", err)
		}

		// Save to database if enabled
		if err := saveScrapeReport(ctx, db, scrapeReport, logger); err != nil {
			logger.Error("failed to save scrape report", "target", target, "error", err)
		}
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d targets failed", failed, len(cfg.Targets))
	}
	return nil
}

// scrapeTarget opens a session for one target, runs the pipeline, and
// closes the session. Errors are also recorded in the report so the
// report output and database row reflect the failure.
func scrapeTarget(ctx context.Context, cfg *config.Config, targetConfig config.TargetConfig, target string, scrapeReport *model.ScrapeReport, logger *slog.Logger) error {
	client, err := newClientForTarget(cfg, targetConfig, logger)
	if err != nil {
		scrapeReport.SetError(err)
		return err
	}

	session, err := client.Connect(ctx)
	if err != nil {
		scrapeReport.SetError(err)
		return fmt.Errorf("failed to open session: %w", err)
	}
	defer func() {
		if err := session.Close(); err != nil {
			logger.Warn("failed to close session", "target", target, "error", err)
		}
	}()

	p := createPipelineForTarget(session, logger, cfg, targetConfig, target)
	return p.Execute(ctx, scrapeReport)
}

// runBatchScan scans multiple targets concurrently using BatchProcessor.
// Each target gets its own session, opened by the pipeline factory.
func runBatchScan(ctx context.Context, cfg *config.Config, db *database.HistoryDB, logger *slog.Logger) error {
	fmt.Printf("Starting batch scan of %d targets (concurrency: %d)...\n\n",
		len(cfg.Targets), cfg.BatchSize)

	startTime := time.Now()

	// Warn user about batch processing limitation
	if cfg.TargetConfigs != nil && len(cfg.TargetConfigs.Targets) > 0 {
		logger.Warn("batch processing uses default target config only; per-target configs (selectors, browser args, window size) are ignored",
			"targetCount", len(cfg.TargetConfigs.Targets))
		fmt.Fprintf(os.Stderr, "Warning: Per-target configurations are ignored in batch mode. Use sequential mode (--batch 1) to apply per-target settings.\n\n")
	}

	// Create batch processor with pipeline factory. The factory opens a
	// fresh session per target so no browser state leaks between pages.
	bp := pipeline.NewBatchProcessor(
		cfg.Browser,
		func(ctx context.Context, target string) (*pipeline.Pipeline, pipeline.CleanupFunc, error) {
			// Note: For batch processing, we use the default target config.
			// Per-target configs would change capabilities per session.
			var targetConfig config.TargetConfig
			if cfg.TargetConfigs != nil {
				targetConfig = cfg.TargetConfigs.Defaults
			}

			client, err := newClientForTarget(cfg, targetConfig, logger)
			if err != nil {
				return nil, nil, err
			}

			session, err := client.Connect(ctx)
			if err != nil {
				return nil, nil, err
			}

			cleanup := func() {
				if err := session.Close(); err != nil {
					logger.Warn("failed to close session", "target", target, "error", err)
				}
			}

			return createPipelineForTarget(session, logger, cfg, targetConfig, target), cleanup, nil
		},
		pipeline.WithConcurrency(cfg.BatchSize),
		pipeline.WithBatchLogger(logger),
	)

	// Process with callback for streaming output
	var mu sync.Mutex
	var failed int
	err := bp.ProcessBatchWithCallback(ctx, cfg.Targets, func(scrapeReport *model.ScrapeReport, index int) {
		mu.Lock()
		defer mu.Unlock()

		fmt.Printf("[%d/%d] Scan completed: %s\n", index+1, len(cfg.Targets), scrapeReport.Target)
		if !scrapeReport.Succeeded() {
			failed++
		}

		// Generate and output report
		if err := outputReport(cfg, scrapeReport); err != nil {
			logger.Error("report failed", "target", scrapeReport.Target, "error", err)
		}

		// Save to database if enabled
		if err := saveScrapeReport(ctx, db, scrapeReport, logger); err != nil {
			logger.Error("failed to save scrape report", "target", scrapeReport.Target, "error", err)
		}
	})

	elapsed := time.Since(startTime)
	fmt.Printf("\nBatch scan completed in %s\n", elapsed.Round(time.Millisecond))

	if err != nil {
		return err
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d targets failed", failed, len(cfg.Targets))
	}
	return nil
}

// getTargetConfig returns the per-target configuration for a target URL.
// Falls back to defaults if no target-specific config exists.
func getTargetConfig(cfg *config.Config, target string) config.TargetConfig {
	if cfg.TargetConfigs == nil {
		return config.TargetConfig{}
	}
	return cfg.TargetConfigs.GetTargetConfig(target)
}

// newClientForTarget creates a Grid client with capabilities derived
// from the global config plus per-target overrides.
func newClientForTarget(cfg *config.Config, targetConfig config.TargetConfig, logger *slog.Logger) (*grid.Client, error) {
	width := cfg.WindowWidth
	if targetConfig.WindowWidth > 0 {
		width = targetConfig.WindowWidth
	}
	height := cfg.WindowHeight
	if targetConfig.WindowHeight > 0 {
		height = targetConfig.WindowHeight
	}

	opts := []grid.ClientOption{
		grid.WithLogger(logger),
		grid.WithWindowSize(width, height),
		grid.WithUserAgent(cfg.UserAgent),
	}
	if len(targetConfig.BrowserArgs) > 0 {
		opts = append(opts, grid.WithBrowserArgs(targetConfig.BrowserArgs...))
	}

	return grid.NewClient(cfg.HubURL, cfg.Browser, cfg.Timeout, opts...)
}

// createPipelineForTarget creates a pipeline bound to an open session.
func createPipelineForTarget(session pipeline.Browser, logger *slog.Logger, cfg *config.Config, targetConfig config.TargetConfig, target string) *pipeline.Pipeline {
	pipelineOpts := []pipeline.Option{
		pipeline.WithLogger(logger),
		pipeline.WithContinueOnError(true),
	}

	// Determine wait selector (target-specific overrides global)
	waitSelector := cfg.WaitSelector
	if targetConfig.WaitSelector != "" {
		waitSelector = targetConfig.WaitSelector
	}

	configOpts := []pipeline.DefaultPipelineOption{
		pipeline.WithPipelineWaitSelector(waitSelector),
		pipeline.WithPipelineScreenshotDir(cfg.ScreenshotDir),
		pipeline.WithPipelineStepLogger(logger),
	}

	if cfg.DisableScreenshot {
		configOpts = append(configOpts, pipeline.WithPipelineDisableScreenshot(true))
	}

	// Screenshot file name: the per-target override wins. With multiple
	// targets the generated default would collide, so derive a unique
	// name from the target URL instead.
	switch {
	case targetConfig.Screenshot != "":
		configOpts = append(configOpts, pipeline.WithPipelineScreenshotName(targetConfig.Screenshot))
	case len(cfg.Targets) > 1:
		configOpts = append(configOpts, pipeline.WithPipelineScreenshotName(screenshotName(cfg.Browser, target)))
	}

	return pipeline.DefaultPipeline(session, pipelineOpts, configOpts...)
}

// screenshotName derives a screenshot file name unique per target,
// based on the target URL's host and path.
func screenshotName(browser, target string) string {
	slug := target
	if u, err := url.Parse(target); err == nil && u.Host != "" {
		slug = u.Host + u.Path
	}

	// Keep only characters safe in file names
	var sb strings.Builder
	for _, r := range slug {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			sb.WriteRune(r)
		default:
			sb.WriteRune('_')
		}
	}

	return fmt.Sprintf("test_%s_%s_screenshot.png", browser, strings.Trim(sb.String(), "_"))
}

// outputReport outputs the scrape report in the requested format.
func outputReport(cfg *config.Config, scrapeReport *model.ScrapeReport) error {
	// Determine output destination
	var output *os.File
	if cfg.ReportFile != "" {
		// Create directories if they don't exist
		dir := filepath.Dir(cfg.ReportFile)
		if dir != "" && dir != "." {
			if err := os.MkdirAll(dir, 0750); err != nil {
				return fmt.Errorf("failed to create output directory: %w", err)
			}
		}

		// Append so multi-target runs collect every report in one file
		f, err := os.OpenFile(cfg.ReportFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close()
		output = f
	} else {
		output = os.Stdout
	}

	// JSON output (detailed report with all data)
	if cfg.JSONReport {
		writer := report.NewFullJSONWriter(output, getVersion(), report.WithPrettyPrint())
		_, err := writer.Write(scrapeReport)
		return err
	}

	// Markdown output
	if cfg.MarkdownReport {
		writer := report.NewMarkdownWriter(output)
		_, err := writer.Write(scrapeReport)
		return err
	}

	// Human-readable report (default)
	writer := report.NewSimpleWriter(output, report.WithVerbose(cfg.Verbose))
	_, err := writer.Write(scrapeReport)
	return err
}

// saveScrapeReport saves the scrape report to the database if enabled.
// If db is nil, this function is a no-op.
func saveScrapeReport(ctx context.Context, db *database.HistoryDB, scrapeReport *model.ScrapeReport, logger *slog.Logger) error {
	if db == nil {
		return nil
	}

	id, err := db.SaveScrapeReport(ctx, scrapeReport)
	if err != nil {
		return fmt.Errorf("failed to save scrape report: %w", err)
	}

	logger.Info("scrape report saved to database", "target", scrapeReport.Target, "runID", id)
	return nil
}
