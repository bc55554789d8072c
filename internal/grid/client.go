package grid

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/tebeka/selenium"
)

// checkHubTimeout is the timeout for probing the hub status endpoint.
// This is a plain HTTP round trip to a local or nearby service, so a
// short timeout keeps startup failures fast.
const checkHubTimeout = 5 * time.Second

// sessionPathSuffix is appended to the hub base URL to reach the
// WebDriver session endpoint. Selenium Grid serves the protocol under
// /wd/hub for compatibility with Grid 3 clients.
const sessionPathSuffix = "/wd/hub"

// maxStatusBody limits how much of the status response is read.
// A real hub status document is a few hundred bytes; anything beyond
// this is not a hub.
const maxStatusBody = 64 * 1024

// sessionFactory creates a WebDriver session. Declared as a type so
// tests can substitute a fake without a running Grid.
type sessionFactory func(caps selenium.Capabilities, urlPrefix string) (selenium.WebDriver, error)

// Client provides Selenium Grid connectivity.
// It validates the hub address, probes the hub's readiness, and opens
// browser sessions with the configured capability set.
//
// Design decision: We don't contact the hub in the constructor because:
//  1. It allows creating the client before the Grid finishes starting
//  2. It separates object creation from network operations
//  3. It allows for better testing with httptest servers
type Client struct {
	// hubURL is the hub base URL without the /wd/hub suffix.
	hubURL string

	// browser is the requested browser name.
	browser string

	// timeout bounds element waits on sessions created by this client.
	timeout time.Duration

	// windowWidth/windowHeight, userAgent, and extraArgs feed
	// capability construction.
	windowWidth  int
	windowHeight int
	userAgent    string
	extraArgs    []string

	// httpClient performs the status probe.
	httpClient *http.Client

	// newSession creates WebDriver sessions. Defaults to
	// selenium.NewRemote; replaced in tests.
	newSession sessionFactory

	// logger for structured logging.
	logger *slog.Logger
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithWindowSize sets the browser window dimensions.
func WithWindowSize(width, height int) ClientOption {
	return func(c *Client) {
		c.windowWidth = width
		c.windowHeight = height
	}
}

// WithUserAgent sets the User-Agent for Chrome sessions.
func WithUserAgent(ua string) ClientOption {
	return func(c *Client) {
		c.userAgent = ua
	}
}

// WithBrowserArgs appends extra browser command-line arguments.
func WithBrowserArgs(args ...string) ClientOption {
	return func(c *Client) {
		c.extraArgs = append(c.extraArgs, args...)
	}
}

// WithLogger sets a custom logger for the client.
func WithLogger(logger *slog.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// NewClient creates a new Grid client for the given hub URL and browser.
//
// The hubURL must be an absolute http(s) URL without the /wd/hub suffix
// (e.g. "http://localhost:4444"). The timeout is used for element waits
// on sessions created by this client.
//
// This function validates its arguments but does not contact the hub.
// Call CheckConnection() to verify the hub is reachable.
func NewClient(hubURL, browser string, timeout time.Duration, opts ...ClientOption) (*Client, error) {
	u, err := url.Parse(hubURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid hub URL %q: must be an absolute http(s) URL", hubURL)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("invalid hub URL %q: scheme must be http or https", hubURL)
	}

	if browser != browserChrome && browser != browserFirefox {
		return nil, fmt.Errorf("%w: %q (use %q or %q)",
			ErrUnsupportedBrowser, browser, browserChrome, browserFirefox)
	}

	c := &Client{
		hubURL:       hubURL,
		browser:      browser,
		timeout:      timeout,
		windowWidth:  1920,
		windowHeight: 1080,
		httpClient:   &http.Client{Timeout: checkHubTimeout},
		newSession:   selenium.NewRemote,
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.logger == nil {
		c.logger = slog.Default()
	}

	return c, nil
}

// HubURL returns the configured hub base URL.
func (c *Client) HubURL() string {
	return c.hubURL
}

// Browser returns the configured browser name.
func (c *Client) Browser() string {
	return c.browser
}

// SessionURL returns the WebDriver session endpoint.
func (c *Client) SessionURL() string {
	return c.hubURL + sessionPathSuffix
}

// hubStatusResponse is the shape of the WebDriver status document.
// Both Grid 4 (`/status`) and standalone images return this envelope.
type hubStatusResponse struct {
	Value struct {
		Ready   bool   `json:"ready"`
		Message string `json:"message"`
	} `json:"value"`
}

// CheckConnection verifies that the hub is running and ready.
// It returns a HubStatus describing the result.
//
// The check performs the standard WebDriver status command (GET
// /status) against the hub. Unlike opening a throwaway session, the
// status command is free: it does not consume a node slot and responds
// immediately even on a busy Grid.
func (c *Client) CheckConnection(ctx context.Context) HubStatus {
	ctx, cancel := context.WithTimeout(ctx, checkHubTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.hubURL+"/status", nil)
	if err != nil {
		return HubStatusCannotConnect
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || ctx.Err() == context.DeadlineExceeded {
			return HubStatusTimeout
		}
		return HubStatusCannotConnect
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return HubStatusWrongType
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxStatusBody))
	if err != nil {
		return HubStatusWrongType
	}

	var status hubStatusResponse
	if err := json.Unmarshal(body, &status); err != nil {
		// Responded with 200 but not a WebDriver status document
		return HubStatusWrongType
	}

	if !status.Value.Ready {
		c.logger.Debug("hub not ready", "message", status.Value.Message)
		return HubStatusNotReady
	}

	return HubStatusOK
}

// Connect opens a new browser session on the hub.
// The returned Session must be closed by the caller to release the
// browser node slot.
//
// Design decision: selenium.NewRemote does not accept a context, so we
// run it in a goroutine and select on ctx. If the context is cancelled
// the goroutine's session, once created, is quit in the background so
// the node slot is not leaked. This mirrors how the request would be
// abandoned by any client, and the hub's session timeout is the final
// backstop.
func (c *Client) Connect(ctx context.Context) (*Session, error) {
	caps, err := newCapabilities(capabilityConfig{
		browser:      c.browser,
		windowWidth:  c.windowWidth,
		windowHeight: c.windowHeight,
		userAgent:    c.userAgent,
		extraArgs:    c.extraArgs,
	})
	if err != nil {
		return nil, err
	}

	c.logger.Debug("creating session",
		"hubURL", c.hubURL,
		"browser", c.browser,
	)

	type connectResult struct {
		wd  selenium.WebDriver
		err error
	}
	resultCh := make(chan connectResult, 1)

	go func() {
		wd, err := c.newSession(caps, c.SessionURL())
		resultCh <- connectResult{wd, err}
	}()

	select {
	case result := <-resultCh:
		if result.err != nil {
			return nil, fmt.Errorf("failed to create session on %s: %w", c.hubURL, result.err)
		}
		return newSession(result.wd, c.timeout, c.logger), nil
	case <-ctx.Done():
		go func() {
			result := <-resultCh
			if result.err == nil && result.wd != nil {
				_ = result.wd.Quit() //nolint:errcheck // Best effort cleanup after cancel
			}
		}()
		return nil, ctx.Err()
	}
}
