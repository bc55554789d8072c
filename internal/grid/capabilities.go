package grid

import (
	"fmt"

	"github.com/tebeka/selenium"
	"github.com/tebeka/selenium/chrome"
	"github.com/tebeka/selenium/firefox"
)

// Browser names gridscan can build capabilities for.
const (
	browserChrome  = "chrome"
	browserFirefox = "firefox"
)

// W3C capability keys under which browser-specific options travel.
const (
	chromeOptionsKey  = "goog:chromeOptions"
	firefoxOptionsKey = "moz:firefoxOptions"
)

// capabilityConfig carries the session parameters capability
// construction needs. Kept separate from config.Config so this package
// does not depend on CLI configuration.
type capabilityConfig struct {
	// browser is the requested browser name (chrome or firefox).
	browser string

	// windowWidth and windowHeight set the browser window size.
	windowWidth  int
	windowHeight int

	// userAgent overrides the browser User-Agent. Chrome only; Firefox
	// has no command-line switch for it.
	userAgent string

	// extraArgs are additional command-line arguments appended after
	// the built-in option set.
	extraArgs []string
}

// newCapabilities builds the WebDriver capabilities for the requested
// browser.
//
// The Chrome option set mirrors what the Selenium Grid Docker images
// expect from containerized sessions: sandboxing off (the container is
// the sandbox), /dev/shm avoided (it is tiny in default Docker), and
// GPU off (nodes are headless).
func newCapabilities(cc capabilityConfig) (selenium.Capabilities, error) {
	caps := selenium.Capabilities{"browserName": cc.browser}

	switch cc.browser {
	case browserChrome:
		args := []string{
			"--no-sandbox",
			"--disable-dev-shm-usage",
			"--disable-gpu",
			fmt.Sprintf("--window-size=%d,%d", cc.windowWidth, cc.windowHeight),
		}
		if cc.userAgent != "" {
			args = append(args, "--user-agent="+cc.userAgent)
		}
		args = append(args, cc.extraArgs...)
		caps.AddChrome(chrome.Capabilities{Args: args})

	case browserFirefox:
		args := []string{
			fmt.Sprintf("--width=%d", cc.windowWidth),
			fmt.Sprintf("--height=%d", cc.windowHeight),
		}
		args = append(args, cc.extraArgs...)
		caps.AddFirefox(firefox.Capabilities{Args: args})

	default:
		return nil, fmt.Errorf("%w: %q (use %q or %q)",
			ErrUnsupportedBrowser, cc.browser, browserChrome, browserFirefox)
	}

	return caps, nil
}
