package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
)

// Supported browser names. The hub decides which node actually serves
// the session; these names select the capability set gridscan requests.
const (
	// BrowserChrome requests a Chrome/Chromium session.
	BrowserChrome = "chrome"

	// BrowserFirefox requests a Firefox session.
	BrowserFirefox = "firefox"
)

// Environment variables honored by gridscan. These match the variables
// used by the official Selenium Grid Docker deployment templates, so an
// existing docker-compose setup works without flags.
const (
	// EnvRemoteURL selects the hub base URL (e.g. "http://selenium:4444").
	EnvRemoteURL = "SELENIUM_REMOTE_URL"

	// EnvHubURL is an alternate name for EnvRemoteURL. EnvRemoteURL
	// wins when both are set.
	EnvHubURL = "SELENIUM_HUB_URL"

	// EnvBrowser selects the browser name (chrome or firefox).
	EnvBrowser = "SELENIUM_BROWSER"
)

// Default configuration values.
// These match the upstream Selenium Grid Docker images and the defaults
// of the deployment template this tool ships with.
const (
	// DefaultHubURL is the hub address of a locally running Grid.
	// Port 4444 is the Selenium Grid router's default listen port.
	DefaultHubURL = "http://localhost:4444"

	// DefaultBrowser is the browser requested when none is configured.
	DefaultBrowser = BrowserChrome

	// DefaultTimeout bounds the element wait after navigation. 10
	// seconds is generous for a loaded page while keeping failed waits
	// from stalling a batch for long.
	DefaultTimeout = 10 * time.Second

	// DefaultTestURL is the page scanned when no targets are given.
	// httpbin's /html endpoint serves a small static page with a
	// predictable <h1>, which makes it a good smoke-test target.
	DefaultTestURL = "https://httpbin.org/html"

	// DefaultWaitSelector is the CSS selector waited for after
	// navigation before reading page metadata.
	DefaultWaitSelector = "h1"

	// DefaultScreenshotDir is the directory screenshots are saved to,
	// relative to the working directory. Created on demand.
	DefaultScreenshotDir = "reports"

	// DefaultBatchSize is the number of concurrent sessions when
	// scanning multiple targets. Each session occupies a Grid node
	// slot, so this stays small by default.
	DefaultBatchSize = 4

	// DefaultWindowWidth and DefaultWindowHeight set the browser
	// window size. 1920x1080 matches the Grid node's default screen.
	DefaultWindowWidth  = 1920
	DefaultWindowHeight = 1080

	// DefaultUserAgent is the User-Agent configured on Chrome
	// sessions. Firefox sessions keep the browser default because
	// Firefox has no equivalent command-line switch.
	DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36"

	// AppName is the application name used for XDG directory paths.
	AppName = "gridscan"
)

// Config holds all configuration options for gridscan.
// It is populated from defaults, environment variables, and CLI flags
// (in that order of increasing precedence) and passed through the
// application via dependency injection rather than global state.
type Config struct {
	// HubURL is the base URL of the Selenium Grid hub, without the
	// /wd/hub suffix (e.g. "http://localhost:4444"). The WebDriver
	// session endpoint is derived from it.
	HubURL string

	// Browser is the requested browser name (chrome or firefox).
	Browser string

	// Timeout bounds the post-navigation element wait and the hub
	// status probe.
	Timeout time.Duration

	// WaitSelector is the CSS selector of the element waited for after
	// navigation. Its text also becomes the report's headline.
	WaitSelector string

	// ScreenshotDir is the directory screenshots are written to.
	ScreenshotDir string

	// DisableScreenshot skips the screenshot step entirely.
	DisableScreenshot bool

	// BatchSize is the number of concurrent sessions when scanning
	// multiple targets.
	BatchSize int

	// Verbose enables debug-level log output.
	Verbose bool

	// ConfigFilePath is the path to the .gridscan configuration file.
	// If empty, the tool searches the current and home directories.
	ConfigFilePath string

	// TargetConfigs holds per-target settings loaded from the config
	// file. Populated by LoadConfigFile.
	TargetConfigs *File

	// JSONReport enables JSON report output.
	// Mutually exclusive with MarkdownReport.
	JSONReport bool

	// MarkdownReport enables Markdown report output.
	// Mutually exclusive with JSONReport.
	MarkdownReport bool

	// ReportFile is the output file path for the report. When empty,
	// reports go to stdout.
	ReportFile string

	// Targets is the list of URLs to scan. When empty at build time,
	// the CLI substitutes DefaultTestURL.
	Targets []string

	// UserAgent is the User-Agent configured on Chrome sessions.
	UserAgent string

	// WindowWidth and WindowHeight set the browser window size.
	WindowWidth  int
	WindowHeight int

	// DBDir is the directory for the run-history SQLite database.
	DBDir string

	// SaveToDB indicates whether to record runs in the history database.
	SaveToDB bool
}

// NewConfig creates a new Config with default values.
// Many defaults are non-zero, so relying on the zero value would be
// wrong; this constructor also documents what the defaults are.
func NewConfig() *Config {
	return &Config{
		HubURL:        DefaultHubURL,
		Browser:       DefaultBrowser,
		Timeout:       DefaultTimeout,
		WaitSelector:  DefaultWaitSelector,
		ScreenshotDir: DefaultScreenshotDir,
		BatchSize:     DefaultBatchSize,
		UserAgent:     DefaultUserAgent,
		WindowWidth:   DefaultWindowWidth,
		WindowHeight:  DefaultWindowHeight,
	}
}

// ApplyEnvironment overrides config values from the process environment.
// Only variables that are set and non-empty take effect, so the CLI can
// apply flags afterwards with higher precedence.
func (c *Config) ApplyEnvironment() {
	if v := os.Getenv(EnvRemoteURL); v != "" {
		c.HubURL = v
	} else if v := os.Getenv(EnvHubURL); v != "" {
		c.HubURL = v
	}
	if v := os.Getenv(EnvBrowser); v != "" {
		c.Browser = v
	}
}

// Validate checks if the configuration is valid.
// It returns the first problem found; fixing one error often makes
// later ones irrelevant, so collecting all of them adds little.
// Called once after CLI parsing, before any network activity.
func (c *Config) Validate() error {
	if c.Browser != BrowserChrome && c.Browser != BrowserFirefox {
		return fmt.Errorf("%w: %q (use %q or %q)",
			ErrUnsupportedBrowser, c.Browser, BrowserChrome, BrowserFirefox)
	}

	u, err := url.Parse(c.HubURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("%w: %q", ErrInvalidHubURL, c.HubURL)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%w: %q (scheme must be http or https)", ErrInvalidHubURL, c.HubURL)
	}

	// Zero or negative timeout would make every element wait fail
	// immediately
	if c.Timeout <= 0 {
		return ErrInvalidTimeout
	}

	if c.BatchSize <= 0 {
		return ErrInvalidBatchSize
	}

	if c.JSONReport && c.MarkdownReport {
		return ErrConflictingReportFormats
	}

	if c.WindowWidth <= 0 || c.WindowHeight <= 0 {
		return ErrInvalidWindowSize
	}

	return nil
}

// SessionURL returns the WebDriver session endpoint derived from the
// hub URL. Selenium Grid serves the WebDriver protocol under /wd/hub.
func (c *Config) SessionURL() string {
	return c.HubURL + "/wd/hub"
}

// XDGDataDir returns the XDG data directory for gridscan.
// On Linux: ~/.local/share/gridscan
// On macOS: ~/Library/Application Support/gridscan
// On Windows: %LOCALAPPDATA%\gridscan
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the XDG config directory for gridscan.
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}
