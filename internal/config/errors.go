package config

import "errors"

// Configuration validation errors.
// These are returned by Config.Validate() and name the specific problem.
//
// Design decision: package-level sentinel errors keep errors.Is()
// usable for programmatic handling while still reading well for humans.
// Dynamic context (the offending value) is added at the call site with
// fmt.Errorf and %w.
var (
	// ErrUnsupportedBrowser is returned when the configured browser is
	// neither chrome nor firefox. Those are the node images the
	// deployment template provisions.
	ErrUnsupportedBrowser = errors.New("unsupported browser")

	// ErrInvalidHubURL is returned when the hub URL cannot be parsed
	// as an absolute http(s) URL.
	ErrInvalidHubURL = errors.New("invalid hub URL")

	// ErrInvalidTimeout is returned when the timeout is not positive.
	// A zero or negative timeout would fail every element wait.
	ErrInvalidTimeout = errors.New("invalid timeout: must be positive")

	// ErrInvalidBatchSize is returned when the batch size is not
	// positive. Zero concurrent sessions would scan nothing.
	ErrInvalidBatchSize = errors.New("invalid batch size: must be positive")

	// ErrConflictingReportFormats is returned when both --json and
	// --markdown are specified. Only one output format at a time.
	ErrConflictingReportFormats = errors.New("conflicting report formats: --json and --markdown cannot be used together")

	// ErrInvalidWindowSize is returned when the window dimensions are
	// not positive.
	ErrInvalidWindowSize = errors.New("invalid window size: width and height must be positive")
)
