package config

// TargetConfig holds per-target settings for a single URL.
// This allows customizing session behavior per page without separate
// invocations.
type TargetConfig struct {
	// WaitSelector overrides the global wait selector for this target.
	WaitSelector string `yaml:"waitSelector,omitempty"`

	// Screenshot overrides the screenshot file name for this target.
	// Relative names are resolved under the screenshot directory.
	Screenshot string `yaml:"screenshot,omitempty"`

	// BrowserArgs are extra command-line arguments passed to the
	// browser for this target's session (e.g. "--lang=ja").
	BrowserArgs []string `yaml:"browserArgs,omitempty"`

	// WindowWidth and WindowHeight override the global window size.
	// Zero means use the global value.
	WindowWidth  int `yaml:"windowWidth,omitempty"`
	WindowHeight int `yaml:"windowHeight,omitempty"`
}

// File represents the structure of the .gridscan configuration file.
type File struct {
	// Targets maps URLs to their target-specific configurations.
	// Keys are the full target URL as passed on the command line.
	Targets map[string]TargetConfig `yaml:"targets,omitempty"`

	// Defaults contains settings applied to all targets unless
	// overridden in the target-specific configuration.
	Defaults TargetConfig `yaml:"defaults,omitempty"`
}

// GetTargetConfig returns the configuration for a specific target URL,
// merging the target-specific configuration with the defaults.
func (cf *File) GetTargetConfig(target string) TargetConfig {
	result := cf.Defaults

	if tc, ok := cf.Targets[target]; ok {
		if tc.WaitSelector != "" {
			result.WaitSelector = tc.WaitSelector
		}
		if tc.Screenshot != "" {
			result.Screenshot = tc.Screenshot
		}
		if len(tc.BrowserArgs) > 0 {
			result.BrowserArgs = tc.BrowserArgs
		}
		if tc.WindowWidth > 0 {
			result.WindowWidth = tc.WindowWidth
		}
		if tc.WindowHeight > 0 {
			result.WindowHeight = tc.WindowHeight
		}
	}

	return result
}
