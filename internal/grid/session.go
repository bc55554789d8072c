package grid

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/tebeka/selenium"
)

// waitPollInterval is how often WaitForElement retries the selector.
// 100ms matches the default polling interval of Selenium's own
// WebDriverWait helpers.
const waitPollInterval = 100 * time.Millisecond

// driver is the subset of selenium.WebDriver that Session uses.
// selenium.WebDriver is a very large interface; depending on this
// narrow slice keeps fakes small in tests.
type driver interface {
	Get(url string) error
	Title() (string, error)
	CurrentURL() (string, error)
	PageSource() (string, error)
	FindElement(by, value string) (selenium.WebElement, error)
	Screenshot() ([]byte, error)
	Capabilities() (selenium.Capabilities, error)
	Quit() error
}

// Session wraps a live WebDriver session with the operations gridscan
// performs. All methods return ErrNotConnected after Close.
type Session struct {
	// wd is the underlying WebDriver session, nil once closed.
	wd driver

	// timeout bounds element waits.
	timeout time.Duration

	// logger for structured logging.
	logger *slog.Logger

	// browserName and browserVersion are read once from the session
	// capabilities on first use and cached.
	browserName    string
	browserVersion string
	capsLoaded     bool
}

// newSession wraps a WebDriver session.
func newSession(wd driver, timeout time.Duration, logger *slog.Logger) *Session {
	if logger == nil {
		logger = slog.Default()
	}
	return &Session{
		wd:      wd,
		timeout: timeout,
		logger:  logger,
	}
}

// Navigate loads the given URL in the browser.
func (s *Session) Navigate(url string) error {
	if s.wd == nil {
		return ErrNotConnected
	}
	if err := s.wd.Get(url); err != nil {
		return fmt.Errorf("failed to navigate to %s: %w", url, err)
	}
	return nil
}

// WaitForElement polls the session until an element matching the CSS
// selector is present, the session timeout expires, or the context is
// cancelled.
//
// Design decision: We poll with FindElement rather than using the
// client library's Wait helper because the helper's condition callback
// requires the full WebDriver interface, which would defeat the narrow
// driver seam used for testing. The polling behavior is identical.
func (s *Session) WaitForElement(ctx context.Context, selector string) error {
	if s.wd == nil {
		return ErrNotConnected
	}

	deadline := time.Now().Add(s.timeout)
	ticker := time.NewTicker(waitPollInterval)
	defer ticker.Stop()

	for {
		if _, err := s.wd.FindElement(selenium.ByCSSSelector, selector); err == nil {
			return nil
		}

		if time.Now().After(deadline) {
			return fmt.Errorf("%w: %q after %s", ErrElementNotFound, selector, s.timeout)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// Title returns the current document title.
func (s *Session) Title() (string, error) {
	if s.wd == nil {
		return "", ErrNotConnected
	}
	return s.wd.Title()
}

// CurrentURL returns the URL the browser is currently on.
func (s *Session) CurrentURL() (string, error) {
	if s.wd == nil {
		return "", ErrNotConnected
	}
	return s.wd.CurrentURL()
}

// PageSource returns the current page source.
func (s *Session) PageSource() (string, error) {
	if s.wd == nil {
		return "", ErrNotConnected
	}
	return s.wd.PageSource()
}

// ElementText returns the text of the first element matching the CSS
// selector. Returns ErrElementNotFound (wrapped) when no element
// matches.
func (s *Session) ElementText(selector string) (string, error) {
	if s.wd == nil {
		return "", ErrNotConnected
	}

	elem, err := s.wd.FindElement(selenium.ByCSSSelector, selector)
	if err != nil {
		return "", fmt.Errorf("%w: %q", ErrElementNotFound, selector)
	}

	return elem.Text()
}

// Screenshot returns the current page rendered as PNG bytes.
func (s *Session) Screenshot() ([]byte, error) {
	if s.wd == nil {
		return nil, ErrNotConnected
	}
	return s.wd.Screenshot()
}

// BrowserName returns the browser name reported by the session
// capabilities, or the empty string when unavailable.
func (s *Session) BrowserName() string {
	s.loadCapabilities()
	return s.browserName
}

// BrowserVersion returns the browser version reported by the session
// capabilities, or the empty string when unavailable.
func (s *Session) BrowserVersion() string {
	s.loadCapabilities()
	return s.browserVersion
}

// loadCapabilities reads and caches browser identification from the
// session capabilities. Failures leave both fields empty; callers
// apply their own fallback.
func (s *Session) loadCapabilities() {
	if s.capsLoaded || s.wd == nil {
		return
	}
	s.capsLoaded = true

	caps, err := s.wd.Capabilities()
	if err != nil {
		s.logger.Debug("failed to read session capabilities", "error", err)
		return
	}

	if name, ok := caps["browserName"].(string); ok {
		s.browserName = name
	}
	// W3C WebDriver reports browserVersion; older remote ends used
	// the legacy "version" key
	if version, ok := caps["browserVersion"].(string); ok {
		s.browserVersion = version
	} else if version, ok := caps["version"].(string); ok {
		s.browserVersion = version
	}
}

// Close quits the browser session and releases the node slot.
// Closing an already-closed session is a no-op.
func (s *Session) Close() error {
	if s.wd == nil {
		return nil
	}

	err := s.wd.Quit()
	s.wd = nil

	if err != nil && !errors.Is(err, ErrNotConnected) {
		return fmt.Errorf("failed to quit session: %w", err)
	}
	return nil
}
