package grid

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/tebeka/selenium"
)

// fakeElement is a WebElement stub. It embeds the interface so only
// the methods the Session actually calls need implementations.
type fakeElement struct {
	selenium.WebElement
	text string
}

// Text returns the fixed element text.
func (e fakeElement) Text() (string, error) {
	return e.text, nil
}

// fakeDriver stubs a WebDriver session with fixed responses. It embeds
// the interface so the session factory seam can hand it out as a full
// selenium.WebDriver while only the methods under test are implemented.
type fakeDriver struct {
	selenium.WebDriver

	title      string
	currentURL string
	pageSource string
	screenshot []byte
	caps       selenium.Capabilities

	// elements maps CSS selectors to element text. Selectors absent
	// from the map are "not found".
	elements map[string]string

	// findUnblockAfter makes FindElement fail this many times before
	// succeeding, for wait testing.
	findUnblockAfter int
	findCalls        int

	navigated  []string
	getErr     error
	quitErr    error
	quitCalled bool
}

// newFakeDriver returns a driver stub resembling a Chrome session on
// httpbin's HTML test page.
func newFakeDriver() *fakeDriver {
	return &fakeDriver{
		title:      "Herman Melville - Moby-Dick",
		currentURL: "https://httpbin.org/html",
		pageSource: "<html><head><title>Herman Melville - Moby-Dick</title></head><body><h1>Herman Melville - Moby-Dick</h1></body></html>",
		screenshot: []byte{0x89, 0x50, 0x4E, 0x47},
		caps: selenium.Capabilities{
			"browserName":    "chrome",
			"browserVersion": "120.0.6099.109",
		},
		elements: map[string]string{
			"h1": "Herman Melville - Moby-Dick",
		},
	}
}

func (d *fakeDriver) Get(url string) error {
	if d.getErr != nil {
		return d.getErr
	}
	d.navigated = append(d.navigated, url)
	d.currentURL = url
	return nil
}

func (d *fakeDriver) Title() (string, error)      { return d.title, nil }
func (d *fakeDriver) CurrentURL() (string, error) { return d.currentURL, nil }
func (d *fakeDriver) PageSource() (string, error) { return d.pageSource, nil }

func (d *fakeDriver) FindElement(_, value string) (selenium.WebElement, error) {
	d.findCalls++
	if d.findCalls <= d.findUnblockAfter {
		return nil, errors.New("no such element")
	}
	text, ok := d.elements[value]
	if !ok {
		return nil, errors.New("no such element")
	}
	return fakeElement{text: text}, nil
}

func (d *fakeDriver) Screenshot() ([]byte, error) { return d.screenshot, nil }

func (d *fakeDriver) Capabilities() (selenium.Capabilities, error) {
	if d.caps == nil {
		return nil, errors.New("capabilities unavailable")
	}
	return d.caps, nil
}

func (d *fakeDriver) Quit() error {
	d.quitCalled = true
	return d.quitErr
}

// TestSessionQueries tests title, URL, and source pass-through.
func TestSessionQueries(t *testing.T) {
	t.Parallel()

	fake := newFakeDriver()
	session := newSession(fake, 10*time.Second, nil)

	title, err := session.Title()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if title != "Herman Melville - Moby-Dick" {
		t.Errorf("Title() = %q, expected %q", title, "Herman Melville - Moby-Dick")
	}

	url, err := session.CurrentURL()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if url != "https://httpbin.org/html" {
		t.Errorf("CurrentURL() = %q, expected %q", url, "https://httpbin.org/html")
	}

	source, err := session.PageSource()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(source) == 0 {
		t.Error("PageSource() returned empty source")
	}
}

// TestSessionNavigate tests navigation.
func TestSessionNavigate(t *testing.T) {
	t.Parallel()

	t.Run("navigation records URL", func(t *testing.T) {
		t.Parallel()

		fake := newFakeDriver()
		session := newSession(fake, 10*time.Second, nil)

		if err := session.Navigate("https://example.com"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(fake.navigated) != 1 || fake.navigated[0] != "https://example.com" {
			t.Errorf("navigated = %v, expected [https://example.com]", fake.navigated)
		}
	})

	t.Run("navigation error is wrapped", func(t *testing.T) {
		t.Parallel()

		fake := newFakeDriver()
		fake.getErr = errors.New("dns failure")
		session := newSession(fake, 10*time.Second, nil)

		if err := session.Navigate("https://example.com"); err == nil {
			t.Error("expected error, got nil")
		}
	})
}

// TestSessionWaitForElement tests element polling.
func TestSessionWaitForElement(t *testing.T) {
	t.Parallel()

	t.Run("present element returns immediately", func(t *testing.T) {
		t.Parallel()

		fake := newFakeDriver()
		session := newSession(fake, 10*time.Second, nil)

		if err := session.WaitForElement(context.Background(), "h1"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})

	t.Run("element appearing after retries succeeds", func(t *testing.T) {
		t.Parallel()

		fake := newFakeDriver()
		fake.findUnblockAfter = 2
		session := newSession(fake, 10*time.Second, nil)

		if err := session.WaitForElement(context.Background(), "h1"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if fake.findCalls < 3 {
			t.Errorf("findCalls = %d, expected at least 3", fake.findCalls)
		}
	})

	t.Run("missing element times out", func(t *testing.T) {
		t.Parallel()

		fake := newFakeDriver()
		session := newSession(fake, 300*time.Millisecond, nil)

		err := session.WaitForElement(context.Background(), "#missing")
		if !errors.Is(err, ErrElementNotFound) {
			t.Errorf("expected ErrElementNotFound, got %v", err)
		}
	})

	t.Run("cancelled context stops wait", func(t *testing.T) {
		t.Parallel()

		fake := newFakeDriver()
		session := newSession(fake, 10*time.Second, nil)

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		err := session.WaitForElement(ctx, "#missing")
		if !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
	})
}

// TestSessionElementText tests element text retrieval.
func TestSessionElementText(t *testing.T) {
	t.Parallel()

	t.Run("existing element returns text", func(t *testing.T) {
		t.Parallel()

		fake := newFakeDriver()
		session := newSession(fake, 10*time.Second, nil)

		text, err := session.ElementText("h1")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if text != "Herman Melville - Moby-Dick" {
			t.Errorf("ElementText() = %q, expected %q", text, "Herman Melville - Moby-Dick")
		}
	})

	t.Run("missing element returns ErrElementNotFound", func(t *testing.T) {
		t.Parallel()

		fake := newFakeDriver()
		session := newSession(fake, 10*time.Second, nil)

		_, err := session.ElementText("#missing")
		if !errors.Is(err, ErrElementNotFound) {
			t.Errorf("expected ErrElementNotFound, got %v", err)
		}
	})
}

// TestSessionCapabilities tests browser identification from capabilities.
func TestSessionCapabilities(t *testing.T) {
	t.Parallel()

	t.Run("W3C capabilities", func(t *testing.T) {
		t.Parallel()

		fake := newFakeDriver()
		session := newSession(fake, 10*time.Second, nil)

		if got := session.BrowserName(); got != "chrome" {
			t.Errorf("BrowserName() = %q, expected %q", got, "chrome")
		}
		if got := session.BrowserVersion(); got != "120.0.6099.109" {
			t.Errorf("BrowserVersion() = %q, expected %q", got, "120.0.6099.109")
		}
	})

	t.Run("legacy version key", func(t *testing.T) {
		t.Parallel()

		fake := newFakeDriver()
		fake.caps = selenium.Capabilities{
			"browserName": "firefox",
			"version":     "115.0",
		}
		session := newSession(fake, 10*time.Second, nil)

		if got := session.BrowserVersion(); got != "115.0" {
			t.Errorf("BrowserVersion() = %q, expected %q", got, "115.0")
		}
	})

	t.Run("unavailable capabilities yield empty strings", func(t *testing.T) {
		t.Parallel()

		fake := newFakeDriver()
		fake.caps = nil
		session := newSession(fake, 10*time.Second, nil)

		if got := session.BrowserName(); got != "" {
			t.Errorf("BrowserName() = %q, expected empty", got)
		}
		if got := session.BrowserVersion(); got != "" {
			t.Errorf("BrowserVersion() = %q, expected empty", got)
		}
	})
}

// TestSessionClose tests session shutdown semantics.
func TestSessionClose(t *testing.T) {
	t.Parallel()

	t.Run("close quits the driver", func(t *testing.T) {
		t.Parallel()

		fake := newFakeDriver()
		session := newSession(fake, 10*time.Second, nil)

		if err := session.Close(); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !fake.quitCalled {
			t.Error("expected Quit to be called")
		}
	})

	t.Run("double close is a no-op", func(t *testing.T) {
		t.Parallel()

		fake := newFakeDriver()
		session := newSession(fake, 10*time.Second, nil)

		if err := session.Close(); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if err := session.Close(); err != nil {
			t.Errorf("second Close() = %v, expected nil", err)
		}
	})

	t.Run("operations after close return ErrNotConnected", func(t *testing.T) {
		t.Parallel()

		fake := newFakeDriver()
		session := newSession(fake, 10*time.Second, nil)
		_ = session.Close() //nolint:errcheck // Close result not under test

		if _, err := session.Title(); !errors.Is(err, ErrNotConnected) {
			t.Errorf("expected ErrNotConnected, got %v", err)
		}
		if err := session.Navigate("https://example.com"); !errors.Is(err, ErrNotConnected) {
			t.Errorf("expected ErrNotConnected, got %v", err)
		}
		if _, err := session.Screenshot(); !errors.Is(err, ErrNotConnected) {
			t.Errorf("expected ErrNotConnected, got %v", err)
		}
	})
}
