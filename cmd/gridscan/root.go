// Package main provides the entry point for the gridscan CLI.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for gridscan.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "gridscan",
		Short: "Browser automation client for remote Selenium Grid hubs",
		Long: `Gridscan drives browsers running on a remote Selenium Grid hub.
It opens a browser session on the hub, navigates to a target page, waits
for it to render, extracts page and browser metadata, and saves a
screenshot.

The hub address and browser can be set via SELENIUM_REMOTE_URL (or
SELENIUM_HUB_URL) and SELENIUM_BROWSER, matching the official Selenium
Grid Docker deployment templates. Flags take precedence over the
environment.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags that apply to all commands
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")

	// Add subcommands
	cmd.AddCommand(NewScanCmd())
	cmd.AddCommand(NewHistoryCmd())
	cmd.AddCommand(NewInitCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
