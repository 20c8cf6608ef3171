package main

import (
	"encoding/json"
	"errors"
	"os"

	"github.com/spf13/cobra"

	"github.com/techspider/techspider/internal/browser"
	"github.com/techspider/techspider/internal/config"
	"github.com/techspider/techspider/internal/worker"
)

// NewWorkerCmd creates the hidden worker command. The crawl driver
// re-executes the techspider binary with this subcommand, one process
// per page visit, and reads the visit's frames from its stdout.
// It is not meant to be invoked by users.
func NewWorkerCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:    worker.Command,
		Short:  "Run one isolated page visit (internal)",
		Hidden: true,
		Args:   cobra.NoArgs,
		RunE:   runWorkerCmd,
	}

	cmd.Flags().String(worker.FlagURL, "", "URL of the page to visit")
	cmd.Flags().String(worker.FlagOptions, "", "Crawl options as JSON")
	cmd.Flags().Bool(worker.FlagScreenshot, false, "Capture a screenshot of the page")
	cmd.Flags().Bool(worker.FlagSimple, false, "Wait for DOM readiness only, not full load")
	cmd.Flags().Bool(worker.FlagFirst, false, "Treat this as the crawl's first visit")

	// The parent only reads protocol frames from stdout; cobra's own
	// output goes to stderr.
	cmd.SetOut(os.Stderr)

	return cmd
}

// runWorkerCmd executes one page visit and streams the results to stdout.
func runWorkerCmd(cmd *cobra.Command, _ []string) error {
	pageURL, err := cmd.Flags().GetString(worker.FlagURL)
	if err != nil {
		return err
	}
	if pageURL == "" {
		return errors.New("missing --" + worker.FlagURL)
	}

	optionsJSON, err := cmd.Flags().GetString(worker.FlagOptions)
	if err != nil {
		return err
	}
	opts := config.NewOptions()
	if optionsJSON != "" {
		if err := json.Unmarshal([]byte(optionsJSON), opts); err != nil {
			return err
		}
	}

	var flags browser.VisitFlags
	if flags.Screenshot, err = cmd.Flags().GetBool(worker.FlagScreenshot); err != nil {
		return err
	}
	if flags.Simple, err = cmd.Flags().GetBool(worker.FlagSimple); err != nil {
		return err
	}
	if flags.First, err = cmd.Flags().GetBool(worker.FlagFirst); err != nil {
		return err
	}

	return worker.Run(cmd.Context(), os.Stdout, pageURL, flags, opts)
}
