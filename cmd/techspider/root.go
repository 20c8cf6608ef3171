// Package main provides the entry point for the techspider CLI.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for techspider.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "techspider",
		Short: "Identify the technologies a website is built with",
		Long: `Techspider crawls a website with headless Chromium and extracts the
signals technology fingerprinting needs: response headers, cookies,
script sources, the rendered document, and a snapshot of JavaScript
global state.

Each page visit runs in an isolated child process, so a crashed or hung
browser session never takes the crawl down with it.`,
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
	cmd.AddCommand(NewWorkerCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
