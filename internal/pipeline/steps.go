package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/nao1215/gridscan/internal/config"
	"github.com/nao1215/gridscan/internal/grid"
	"github.com/nao1215/gridscan/internal/model"
	"github.com/nao1215/gridscan/internal/page"
)

// Browser is the subset of session behavior the pipeline steps need.
// *grid.Session satisfies it; tests provide a fake.
//
// Design decision: Steps depend on this interface rather than on
// *grid.Session directly so step logic can be tested without a running
// Grid hub. The interface is deliberately narrow: steps only read page
// state and capture screenshots, they never manage the session
// lifecycle (the caller owns Connect/Close).
type Browser interface {
	Navigate(url string) error
	WaitForElement(ctx context.Context, selector string) error
	Title() (string, error)
	CurrentURL() (string, error)
	PageSource() (string, error)
	ElementText(selector string) (string, error)
	Screenshot() ([]byte, error)
	BrowserName() string
	BrowserVersion() string
}

// NavigateStep loads the target URL and waits for the page to render.
// Rendering is detected by polling for a wait selector, because a
// JavaScript-heavy page can return from navigation before its content
// exists in the DOM.
type NavigateStep struct {
	// browser is the session being driven.
	browser Browser

	// waitSelector is the CSS selector polled for after navigation.
	waitSelector string

	// logger for structured logging.
	logger *slog.Logger
}

// NavigateStepOption configures a NavigateStep.
type NavigateStepOption func(*NavigateStep)

// WithWaitSelector sets the CSS selector waited for after navigation.
func WithWaitSelector(selector string) NavigateStepOption {
	return func(s *NavigateStep) {
		s.waitSelector = selector
	}
}

// WithNavigateLogger sets a custom logger for the navigate step.
func WithNavigateLogger(logger *slog.Logger) NavigateStepOption {
	return func(s *NavigateStep) {
		s.logger = logger
	}
}

// NewNavigateStep creates a navigation step driving the given browser.
func NewNavigateStep(browser Browser, opts ...NavigateStepOption) *NavigateStep {
	s := &NavigateStep{
		browser:      browser,
		waitSelector: config.DefaultWaitSelector,
		logger:       slog.Default(),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Name returns the step name.
func (s *NavigateStep) Name() string {
	return "navigate"
}

// Do navigates to the report's target and waits for the wait selector.
// A wait timeout is a critical error: nothing later in the pipeline is
// meaningful if the page never rendered.
func (s *NavigateStep) Do(ctx context.Context, report *model.ScrapeReport) error {
	if err := s.browser.Navigate(report.Target); err != nil {
		return fmt.Errorf("failed to navigate to %s: %w", report.Target, err)
	}

	s.logger.Debug("waiting for page to render",
		"target", report.Target,
		"selector", s.waitSelector,
	)

	if err := s.browser.WaitForElement(ctx, s.waitSelector); err != nil {
		return fmt.Errorf("page did not render %q in time: %w", s.waitSelector, err)
	}

	return nil
}

// MetadataStep extracts page and browser metadata from the loaded page:
// the document title, final URL, headline text, page source length,
// parsed HTML metadata, and the browser identification reported by the
// session capabilities.
//
// Design decision: Everything here is best-effort. A page without a
// headline or a hub that hides its capabilities still produces a usable
// report, with the documented fallback values in place of the missing
// fields. Only a dead session makes this step fail.
type MetadataStep struct {
	// browser is the session being driven.
	browser Browser

	// headlineSelector is the CSS selector for the headline element.
	headlineSelector string

	// logger for structured logging.
	logger *slog.Logger
}

// MetadataStepOption configures a MetadataStep.
type MetadataStepOption func(*MetadataStep)

// WithHeadlineSelector sets the CSS selector for the headline element.
func WithHeadlineSelector(selector string) MetadataStepOption {
	return func(s *MetadataStep) {
		s.headlineSelector = selector
	}
}

// WithMetadataLogger sets a custom logger for the metadata step.
func WithMetadataLogger(logger *slog.Logger) MetadataStepOption {
	return func(s *MetadataStep) {
		s.logger = logger
	}
}

// NewMetadataStep creates a metadata extraction step.
func NewMetadataStep(browser Browser, opts ...MetadataStepOption) *MetadataStep {
	s := &MetadataStep{
		browser:          browser,
		headlineSelector: config.DefaultWaitSelector,
		logger:           slog.Default(),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Name returns the step name.
func (s *MetadataStep) Name() string {
	return "metadata"
}

// Do collects metadata from the current page into the report.
func (s *MetadataStep) Do(_ context.Context, report *model.ScrapeReport) error {
	title, err := s.browser.Title()
	if err != nil {
		return fmt.Errorf("failed to read page title: %w", err)
	}
	report.Title = title

	currentURL, err := s.browser.CurrentURL()
	if err != nil {
		return fmt.Errorf("failed to read current URL: %w", err)
	}
	report.FinalURL = currentURL

	source, err := s.browser.PageSource()
	if err != nil {
		return fmt.Errorf("failed to read page source: %w", err)
	}
	report.PageSourceLength = len(source)

	// Structured metadata is a bonus: a non-HTML response simply
	// leaves report.Metadata nil.
	if result, err := page.Parse(source); err != nil {
		s.logger.Debug("failed to parse page source", "error", err)
	} else {
		report.Metadata = result.Metadata
	}

	// Missing headline element is expected on some pages
	headline, err := s.browser.ElementText(s.headlineSelector)
	switch {
	case errors.Is(err, grid.ErrElementNotFound):
		report.Headline = model.HeadlineFallback
	case err != nil:
		return fmt.Errorf("failed to read headline text: %w", err)
	default:
		report.Headline = headline
	}

	report.BrowserName = s.browser.BrowserName()
	if report.BrowserName == "" {
		report.BrowserName = model.BrowserUnknown
	}
	report.BrowserVersion = s.browser.BrowserVersion()
	if report.BrowserVersion == "" {
		report.BrowserVersion = model.BrowserUnknown
	}

	s.logger.Debug("metadata collected",
		"title", report.Title,
		"final_url", report.FinalURL,
		"source_length", report.PageSourceLength,
	)

	return nil
}

// ScreenshotStep captures a full-window screenshot of the loaded page
// and writes it as a PNG under the configured directory. The directory
// is created on demand.
type ScreenshotStep struct {
	// browser is the session being driven.
	browser Browser

	// dir is the directory screenshots are written to.
	dir string

	// filename overrides the generated screenshot file name when set.
	filename string

	// logger for structured logging.
	logger *slog.Logger
}

// ScreenshotStepOption configures a ScreenshotStep.
type ScreenshotStepOption func(*ScreenshotStep)

// WithScreenshotDir sets the directory screenshots are written to.
func WithScreenshotDir(dir string) ScreenshotStepOption {
	return func(s *ScreenshotStep) {
		s.dir = dir
	}
}

// WithScreenshotFilename overrides the generated screenshot file name.
func WithScreenshotFilename(name string) ScreenshotStepOption {
	return func(s *ScreenshotStep) {
		s.filename = name
	}
}

// WithScreenshotLogger sets a custom logger for the screenshot step.
func WithScreenshotLogger(logger *slog.Logger) ScreenshotStepOption {
	return func(s *ScreenshotStep) {
		s.logger = logger
	}
}

// NewScreenshotStep creates a screenshot capture step.
func NewScreenshotStep(browser Browser, opts ...ScreenshotStepOption) *ScreenshotStep {
	s := &ScreenshotStep{
		browser: browser,
		dir:     config.DefaultScreenshotDir,
		logger:  slog.Default(),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Name returns the step name.
func (s *ScreenshotStep) Name() string {
	return "screenshot"
}

// Do captures a screenshot and saves it. The file name defaults to
// test_<browser>_screenshot.png using the requested browser name.
func (s *ScreenshotStep) Do(_ context.Context, report *model.ScrapeReport) error {
	png, err := s.browser.Screenshot()
	if err != nil {
		return fmt.Errorf("failed to capture screenshot: %w", err)
	}

	if err := os.MkdirAll(s.dir, 0750); err != nil {
		return fmt.Errorf("failed to create screenshot directory: %w", err)
	}

	name := s.filename
	if name == "" {
		name = fmt.Sprintf("test_%s_screenshot.png", report.Browser)
	}

	path := filepath.Join(s.dir, name)
	if err := os.WriteFile(path, png, 0600); err != nil {
		return fmt.Errorf("failed to write screenshot: %w", err)
	}

	report.ScreenshotPath = path
	s.logger.Info("screenshot saved", "path", path, "bytes", len(png))

	return nil
}

// DefaultPipelineConfig holds configuration for the default pipeline.
type DefaultPipelineConfig struct {
	// WaitSelector is the CSS selector waited for after navigation
	// and read for the headline text.
	WaitSelector string

	// ScreenshotDir is the directory screenshots are written to.
	ScreenshotDir string

	// ScreenshotFilename overrides the generated screenshot file name.
	ScreenshotFilename string

	// DisableScreenshot skips the screenshot step entirely.
	DisableScreenshot bool

	// Logger is passed down to every step.
	Logger *slog.Logger
}

// DefaultPipelineOption configures a DefaultPipelineConfig.
type DefaultPipelineOption func(*DefaultPipelineConfig)

// WithPipelineWaitSelector sets the CSS selector used both for the
// render wait and the headline extraction.
func WithPipelineWaitSelector(selector string) DefaultPipelineOption {
	return func(c *DefaultPipelineConfig) {
		c.WaitSelector = selector
	}
}

// WithPipelineScreenshotDir sets the screenshot output directory.
func WithPipelineScreenshotDir(dir string) DefaultPipelineOption {
	return func(c *DefaultPipelineConfig) {
		c.ScreenshotDir = dir
	}
}

// WithPipelineScreenshotName overrides the screenshot file name.
func WithPipelineScreenshotName(name string) DefaultPipelineOption {
	return func(c *DefaultPipelineConfig) {
		c.ScreenshotFilename = name
	}
}

// WithPipelineDisableScreenshot skips the screenshot step.
func WithPipelineDisableScreenshot(disable bool) DefaultPipelineOption {
	return func(c *DefaultPipelineConfig) {
		c.DisableScreenshot = disable
	}
}

// WithPipelineStepLogger sets the logger passed to every step.
func WithPipelineStepLogger(logger *slog.Logger) DefaultPipelineOption {
	return func(c *DefaultPipelineConfig) {
		c.Logger = logger
	}
}

// DefaultPipeline creates a pipeline with the standard steps, in order:
// navigate, metadata, screenshot. This is the pipeline the scan command
// uses against each target.
//
// Design decision: We provide a default pipeline because:
// 1. Most runs want the full extraction
// 2. Reduces boilerplate in CLI
// 3. Ensures consistent ordering
//
// The first variadic parameter accepts pipeline options (WithLogger, etc).
// The second accepts pipeline config options (WithPipelineWaitSelector, etc).
func DefaultPipeline(browser Browser, pipelineOpts []Option, configOpts ...DefaultPipelineOption) *Pipeline {
	p := New(pipelineOpts...)

	cfg := &DefaultPipelineConfig{
		WaitSelector:  config.DefaultWaitSelector,
		ScreenshotDir: config.DefaultScreenshotDir,
	}
	for _, opt := range configOpts {
		opt(cfg)
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	p.AddSteps(
		NewNavigateStep(browser,
			WithWaitSelector(cfg.WaitSelector),
			WithNavigateLogger(cfg.Logger),
		),
		NewMetadataStep(browser,
			WithHeadlineSelector(cfg.WaitSelector),
			WithMetadataLogger(cfg.Logger),
		),
	)

	if !cfg.DisableScreenshot {
		screenshotOpts := []ScreenshotStepOption{
			WithScreenshotDir(cfg.ScreenshotDir),
			WithScreenshotLogger(cfg.Logger),
		}
		if cfg.ScreenshotFilename != "" {
			screenshotOpts = append(screenshotOpts, WithScreenshotFilename(cfg.ScreenshotFilename))
		}
		p.AddStep(NewScreenshotStep(browser, screenshotOpts...))
	}

	return p
}
