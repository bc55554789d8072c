package grid

import "errors"

// Hub connectivity errors.
// These are returned when there are problems reaching or using the hub.
//
// Design decision: We define specific error types rather than wrapping
// all errors generically. This allows callers to handle failure modes
// appropriately (e.g. a clear "start docker-compose" hint when the hub
// is simply not running).
var (
	// ErrHubNotReady is returned when the hub responds to the status
	// probe but reports it cannot accept new sessions yet. This is
	// typical right after startup while browser nodes register.
	ErrHubNotReady = errors.New("hub is not ready to accept sessions")

	// ErrHubCannotConnect is returned when no TCP connection to the
	// hub address can be established. The Grid is probably not running
	// or the address is wrong.
	ErrHubCannotConnect = errors.New("cannot connect to hub")

	// ErrHubTimeout is returned when the status probe times out.
	ErrHubTimeout = errors.New("timeout connecting to hub")

	// ErrHubWrongType is returned when the configured address responds
	// but does not speak the WebDriver status protocol. This happens
	// when pointing gridscan at an unrelated HTTP service.
	ErrHubWrongType = errors.New("endpoint is not a WebDriver hub")

	// ErrUnsupportedBrowser is returned when capabilities are requested
	// for a browser gridscan has no option set for.
	ErrUnsupportedBrowser = errors.New("unsupported browser")

	// ErrNotConnected is returned when a session operation is attempted
	// on a closed or never-created session.
	ErrNotConnected = errors.New("webdriver session not connected")

	// ErrElementNotFound is returned when the wait selector never
	// matched before the timeout expired.
	ErrElementNotFound = errors.New("element not found")
)

// HubStatus represents the result of probing the hub's status endpoint.
type HubStatus int

const (
	// HubStatusOK indicates the hub is up and ready for new sessions.
	HubStatusOK HubStatus = iota

	// HubStatusNotReady indicates the hub responded but has no ready
	// browser nodes.
	HubStatusNotReady

	// HubStatusWrongType indicates the endpoint is not a WebDriver hub.
	HubStatusWrongType

	// HubStatusCannotConnect indicates no connection could be made.
	HubStatusCannotConnect

	// HubStatusTimeout indicates the probe timed out.
	HubStatusTimeout
)

// String returns a human-readable description of the hub status.
func (s HubStatus) String() string {
	switch s {
	case HubStatusOK:
		return "OK"
	case HubStatusNotReady:
		return "not ready"
	case HubStatusWrongType:
		return "wrong type (not a WebDriver hub)"
	case HubStatusCannotConnect:
		return "cannot connect"
	case HubStatusTimeout:
		return "timeout"
	default:
		return "unknown"
	}
}

// Error returns the appropriate error for this status, or nil if OK.
func (s HubStatus) Error() error {
	switch s {
	case HubStatusOK:
		return nil
	case HubStatusNotReady:
		return ErrHubNotReady
	case HubStatusWrongType:
		return ErrHubWrongType
	case HubStatusCannotConnect:
		return ErrHubCannotConnect
	case HubStatusTimeout:
		return ErrHubTimeout
	default:
		return errors.New("unknown hub status")
	}
}
