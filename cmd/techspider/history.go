package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/techspider/techspider/internal/config"
	"github.com/techspider/techspider/internal/database"
	"github.com/techspider/techspider/internal/report"
)

// NewHistoryCmd creates the history command.
func NewHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history [url]",
		Short: "Show past crawls from the local database",
		Long: `History lists the crawls recorded in the local database.

Without arguments it lists every crawled target. With a target URL it
lists that target's crawls, newest first.

Examples:
  # List all crawled targets
  techspider history

  # List crawls of one target
  techspider history https://example.com

  # Print the latest stored result as JSON
  techspider history --json https://example.com

  # Print one stored result by its ID
  techspider history --id 42`,
		Args: cobra.MaximumNArgs(1),
		RunE: runHistoryCmd,
	}

	cmd.Flags().BoolP("json", "j", false,
		"Print the latest stored result for the target as JSON")
	cmd.Flags().Int64("id", 0,
		"Print the stored result with the given ID as JSON")

	return cmd
}

// runHistoryCmd executes the history command.
func runHistoryCmd(cmd *cobra.Command, args []string) error {
	db, err := database.Open(config.XDGDataDir(), database.Options{
		CreateIfNotExists: false,
		EnableWAL:         true,
	})
	if err != nil {
		return fmt.Errorf("no crawl history yet: %w", err)
	}
	defer db.Close()

	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	// One stored result by ID
	if id, err := cmd.Flags().GetInt64("id"); err != nil {
		return err
	} else if id != 0 {
		result, err := db.GetResultByID(ctx, id)
		if err != nil {
			return err
		}
		if result == nil {
			return fmt.Errorf("no crawl with id %d", id)
		}
		_, err = report.NewJSONWriter(out, report.WithPrettyPrint()).Write(result)
		return err
	}

	// No target: list all crawled targets
	if len(args) == 0 {
		targets, err := db.ListTargets(ctx)
		if err != nil {
			return err
		}
		if len(targets) == 0 {
			fmt.Fprintln(out, "No crawls recorded yet.")
			return nil
		}
		for _, target := range targets {
			fmt.Fprintln(out, target)
		}
		return nil
	}

	target := normalizeTarget(args[0])

	asJSON, err := cmd.Flags().GetBool("json")
	if err != nil {
		return err
	}
	if asJSON {
		result, err := db.GetLatestResult(ctx, target)
		if err != nil {
			return err
		}
		if result == nil {
			return fmt.Errorf("no crawls recorded for %s", target)
		}
		_, err = report.NewJSONWriter(out, report.WithPrettyPrint()).Write(result)
		return err
	}

	metas, err := db.GetHistoryWithMetadata(ctx, target)
	if err != nil {
		return err
	}
	if len(metas) == 0 {
		fmt.Fprintf(out, "No crawls recorded for %s.\n", target)
		return nil
	}

	fmt.Fprintf(out, "%-6s %-20s %s\n", "ID", "DATE", "TECHNOLOGIES")
	for _, meta := range metas {
		apps := strings.Join(meta.Applications, ", ")
		if apps == "" {
			apps = "-"
		}
		fmt.Fprintf(out, "%-6d %-20s %s\n", meta.ID, meta.Timestamp.Format("2006-01-02 15:04:05"), apps)
	}

	return nil
}
