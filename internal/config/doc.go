// Package config provides configuration structures and utilities for
// gridscan. It defines the options for connecting to a remote Selenium
// Grid hub, driving browser sessions, and generating reports, along
// with the .gridscan per-target configuration file format.
package config
