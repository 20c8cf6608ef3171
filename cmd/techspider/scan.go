package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/techspider/techspider/internal/analyzer"
	"github.com/techspider/techspider/internal/config"
	"github.com/techspider/techspider/internal/crawler"
	"github.com/techspider/techspider/internal/database"
	"github.com/techspider/techspider/internal/log"
	"github.com/techspider/techspider/internal/model"
	"github.com/techspider/techspider/internal/report"
	"github.com/techspider/techspider/internal/worker"
)

// scanSettings bundles everything the scan command resolved from flags
// and the configuration file.
type scanSettings struct {
	opts           *config.Options
	targets        []string
	siteConfigs    *config.File
	batchSize      int
	jsonReport     bool
	markdownReport bool
	reportFile     string
	screenshotFile string
	saveToDB       bool
	dbDir          string
}

// NewScanCmd creates the scan command.
func NewScanCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scan [url]",
		Short: "Crawl a website and extract technology signals",
		Long: `Scan crawls a website with headless Chromium and reports the signals
found on its pages: response headers, cookies, script sources, page
metadata, and the detected content language.

Each page visit runs in its own child process. In recursive mode the
crawl follows same-site links breadth-first, bounded by --depth and
--max-urls, visiting --chunk pages concurrently per level.

Examples:
  # Crawl a single page
  techspider scan https://example.com

  # Recursive crawl, three levels deep
  techspider scan --recursive --depth 3 https://example.com

  # Crawl several sites concurrently
  techspider scan --batch 3 https://one.example https://two.example

  # Take a screenshot of the start page
  techspider scan --screenshot shot.png https://example.com

  # Output JSON report to a file
  techspider scan --json --output report.json https://example.com

Configuration file (.techspider) example:
  sites:
    example.com:
      username: "admin"
      password: "secret"
      depth: 2`,
		Args: cobra.ArbitraryArgs,
		RunE: runScanCmd,
	}

	// Crawl behavior flags
	cmd.Flags().BoolP("recursive", "r", false,
		"Follow same-site links instead of visiting only the start page")
	cmd.Flags().IntP("depth", "d", config.DefaultMaxDepth,
		"Maximum crawl recursion depth")
	cmd.Flags().IntP("max-urls", "p", config.DefaultMaxURLs,
		"Maximum number of pages to visit per target")
	cmd.Flags().Int("chunk", config.DefaultChunkSize,
		"Number of concurrent page visits per crawl level")
	cmd.Flags().Duration("delay", config.DefaultDelay,
		"Stagger between same-chunk visits (recursive mode only)")
	cmd.Flags().DurationP("max-wait", "t", config.DefaultMaxWait,
		"Wall-clock budget for a single page visit")
	cmd.Flags().Float64("rate", 0,
		"Maximum page visits per second across the crawl (0 disables)")

	// Browser flags
	cmd.Flags().StringP("user-agent", "u", "",
		"Override the browser User-Agent")
	cmd.Flags().String("proxy", "",
		"Proxy URL handed to Chromium (e.g. socks5://127.0.0.1:9050)")
	cmd.Flags().String("chrome", "",
		"Path to a Chromium binary (default: auto-detect)")
	cmd.Flags().StringArray("chromium-arg", nil,
		"Extra Chromium switch, repeatable (e.g. --chromium-arg=--lang=de)")
	cmd.Flags().StringP("screenshot", "s", "",
		"Capture a screenshot of the start page to the given PNG file")
	cmd.Flags().String("blocklist", "",
		"Filter-list URL for screenshot-mode request blocking")

	// Batch scanning flags
	cmd.Flags().IntP("batch", "b", 1,
		"Number of targets crawled concurrently")

	// Configuration file
	cmd.Flags().StringP("config", "c", "",
		"Configuration file path (default: .techspider in current or home directory)")

	// Report flags
	cmd.Flags().BoolP("json", "j", false,
		"Output JSON report (mutually exclusive with --markdown)")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output Markdown report (mutually exclusive with --json)")
	cmd.Flags().StringP("output", "o", "",
		"Write report to specified file path (creates directories if needed)")
	cmd.Flags().Bool("no-db", false,
		"Do not record the crawl in the local history database")

	return cmd
}

// runScanCmd executes the scan command.
func runScanCmd(cmd *cobra.Command, args []string) error {
	settings, err := buildScanSettings(cmd, args)
	if err != nil {
		return err
	}

	if err := settings.opts.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	// Set up structured logging. The secure handler masks credentials
	// and session cookies that site configs may carry.
	verbose := getVerboseFlag(cmd)
	logger := log.NewSecureLogger(os.Stderr, verbose)
	slog.SetDefault(logger)

	// Set up context with signal handling for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Info("received shutdown signal, cancelling...")
		cancel()
	}()

	return runScan(ctx, settings, logger)
}

// getVerboseFlag retrieves the verbose flag from the command or its parent.
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		verbose, err = cmd.Root().PersistentFlags().GetBool("verbose")
		if err != nil {
			return false
		}
	}
	return verbose
}

// buildScanSettings creates scan settings from cobra command flags.
func buildScanSettings(cmd *cobra.Command, args []string) (*scanSettings, error) {
	opts := config.NewOptions()

	var err error
	if opts.Recursive, err = cmd.Flags().GetBool("recursive"); err != nil {
		return nil, err
	}
	if opts.MaxDepth, err = cmd.Flags().GetInt("depth"); err != nil {
		return nil, err
	}
	if opts.MaxURLs, err = cmd.Flags().GetInt("max-urls"); err != nil {
		return nil, err
	}
	if opts.ChunkSize, err = cmd.Flags().GetInt("chunk"); err != nil {
		return nil, err
	}
	if opts.Delay, err = cmd.Flags().GetDuration("delay"); err != nil {
		return nil, err
	}
	if opts.MaxWait, err = cmd.Flags().GetDuration("max-wait"); err != nil {
		return nil, err
	}
	if opts.RatePerSecond, err = cmd.Flags().GetFloat64("rate"); err != nil {
		return nil, err
	}
	if opts.UserAgent, err = cmd.Flags().GetString("user-agent"); err != nil {
		return nil, err
	}
	if opts.Proxy, err = cmd.Flags().GetString("proxy"); err != nil {
		return nil, err
	}
	if opts.ChromePath, err = cmd.Flags().GetString("chrome"); err != nil {
		return nil, err
	}
	if opts.ChromiumArgs, err = cmd.Flags().GetStringArray("chromium-arg"); err != nil {
		return nil, err
	}
	if opts.BlocklistURL, err = cmd.Flags().GetString("blocklist"); err != nil {
		return nil, err
	}
	opts.Debug = getVerboseFlag(cmd)
	opts.Coerce()

	settings := &scanSettings{opts: opts}

	if settings.batchSize, err = cmd.Flags().GetInt("batch"); err != nil {
		return nil, err
	}
	if settings.jsonReport, err = cmd.Flags().GetBool("json"); err != nil {
		return nil, err
	}
	if settings.markdownReport, err = cmd.Flags().GetBool("markdown"); err != nil {
		return nil, err
	}
	if settings.jsonReport && settings.markdownReport {
		return nil, errors.New("--json and --markdown are mutually exclusive")
	}
	if settings.reportFile, err = cmd.Flags().GetString("output"); err != nil {
		return nil, err
	}
	if settings.screenshotFile, err = cmd.Flags().GetString("screenshot"); err != nil {
		return nil, err
	}

	noDB, err := cmd.Flags().GetBool("no-db")
	if err != nil {
		return nil, err
	}
	settings.saveToDB = !noDB
	settings.dbDir = config.XDGDataDir()

	// Load site-specific configurations from config file.
	// If user explicitly specified a config file path, error if not found.
	// If no path specified, silently use empty config if no file found.
	configPathFlag, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}
	configPath := config.FindConfigFile(configPathFlag)
	if configPath != "" {
		settings.siteConfigs, err = config.LoadConfigFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	} else if configPathFlag != "" {
		return nil, fmt.Errorf("configuration file not found: %s", configPathFlag)
	} else {
		settings.siteConfigs = &config.File{Sites: make(map[string]config.SiteConfig)}
	}

	// Positional arguments are target URLs; bare domains get https.
	settings.targets = make([]string, 0, len(args))
	for _, arg := range args {
		settings.targets = append(settings.targets, normalizeTarget(arg))
	}

	return settings, nil
}

// normalizeTarget adds an https scheme to bare domains so users can
// pass "example.com" as a target.
func normalizeTarget(target string) string {
	if strings.Contains(target, "://") {
		return target
	}
	return "https://" + target
}

// runScan executes the crawl.
func runScan(ctx context.Context, settings *scanSettings, logger *slog.Logger) error {
	if len(settings.targets) == 0 {
		return errors.New("no targets provided (specify one or more URLs as arguments)")
	}

	logger.Info("starting scan",
		"targets", settings.targets,
		"recursive", settings.opts.Recursive,
		"batchSize", settings.batchSize,
		"saveToDB", settings.saveToDB,
	)

	// Open database connection if saving is enabled
	var db *database.HistoryDB
	if settings.saveToDB {
		var err error
		db, err = database.Open(settings.dbDir, database.DefaultOptions())
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		defer db.Close()
		logger.Info("database opened", "dir", settings.dbDir)
	}

	if len(settings.targets) > 1 && settings.batchSize > 1 {
		return runBatchScan(ctx, settings, db, logger)
	}
	return runSequentialScan(ctx, settings, db, logger)
}

// runSequentialScan crawls targets one at a time.
func runSequentialScan(ctx context.Context, settings *scanSettings, db *database.HistoryDB, logger *slog.Logger) error {
	for _, target := range settings.targets {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		driver, err := createDriverForTarget(settings, target, logger)
		if err != nil {
			logger.Error("invalid target", "target", target, "error", err)
			fmt.Fprintf(os.Stderr, "Invalid target %s: %v\n", target, err)
			continue
		}

		fmt.Printf("Crawling %s...\n", target)
		startTime := time.Now()

		result := driver.Analyze(ctx)

		fmt.Printf("Crawl completed in %s\n\n", time.Since(startTime).Round(time.Millisecond))

		if err := outputReport(settings, result); err != nil {
			logger.Error("report failed", "target", target, "error", err)
		}
		if err := writeScreenshot(settings.screenshotFile, result, logger); err != nil {
			logger.Error("failed to write screenshot", "target", target, "error", err)
		}
		if err := saveResult(ctx, db, result, logger); err != nil {
			logger.Error("failed to save crawl result", "target", target, "error", err)
		}
	}

	return nil
}

// runBatchScan crawls multiple targets concurrently using BatchProcessor.
func runBatchScan(ctx context.Context, settings *scanSettings, db *database.HistoryDB, logger *slog.Logger) error {
	fmt.Printf("Starting batch crawl of %d targets (concurrency: %d)...\n\n",
		len(settings.targets), settings.batchSize)

	if settings.screenshotFile != "" {
		logger.Warn("screenshots are only supported in sequential mode; ignoring --screenshot")
		fmt.Fprintf(os.Stderr, "Warning: --screenshot is ignored in batch mode. Use --batch 1 to capture screenshots.\n\n")
	}

	startTime := time.Now()

	bp := crawler.NewBatchProcessor(
		func(target string) (*crawler.Driver, error) {
			return createDriverForTarget(settings, target, logger)
		},
		crawler.WithConcurrency(settings.batchSize),
		crawler.WithBatchLogger(logger),
	)

	// Process with callback for streaming output
	var mu sync.Mutex
	err := bp.ProcessBatchWithCallback(ctx, settings.targets, func(result *model.CrawlResult, index int) {
		mu.Lock()
		defer mu.Unlock()

		fmt.Printf("[%d/%d] Crawl completed: %s\n", index+1, len(settings.targets), result.Target)

		if err := outputReport(settings, result); err != nil {
			logger.Error("report failed", "target", result.Target, "error", err)
		}
		if err := saveResult(ctx, db, result, logger); err != nil {
			logger.Error("failed to save crawl result", "target", result.Target, "error", err)
		}
	})

	fmt.Printf("\nBatch crawl completed in %s\n", time.Since(startTime).Round(time.Millisecond))

	return err
}

// createDriverForTarget builds a crawl driver with site-specific options
// applied on top of the global ones.
func createDriverForTarget(settings *scanSettings, target string, logger *slog.Logger) (*crawler.Driver, error) {
	opts := settings.opts
	if u, err := url.Parse(target); err == nil && u.Hostname() != "" {
		opts = settings.siteConfigs.GetSiteConfig(u.Hostname()).Apply(opts)
	}

	driverOpts := []crawler.Option{
		crawler.WithLogger(logger),
		crawler.WithLanguageDetector(analyzer.NewWhatLangDetector()),
	}
	if settings.screenshotFile != "" && settings.batchSize <= 1 {
		driverOpts = append(driverOpts, crawler.WithScreenshot())
	}

	return crawler.NewDriver(target, opts, worker.NewDispatcher(opts, logger), driverOpts...)
}

// outputReport outputs the crawl result in the requested format.
func outputReport(settings *scanSettings, result *model.CrawlResult) error {
	// Determine output destination
	var output *os.File
	if settings.reportFile != "" {
		// Create directories if they don't exist
		dir := filepath.Dir(settings.reportFile)
		if dir != "" && dir != "." {
			if err := os.MkdirAll(dir, 0750); err != nil {
				return fmt.Errorf("failed to create output directory: %w", err)
			}
		}

		// Reports may contain session cookies or internal URLs, so they
		// are only readable by the owner.
		f, err := os.OpenFile(settings.reportFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close()
		output = f
	} else {
		output = os.Stdout
	}

	var writer report.Writer
	switch {
	case settings.jsonReport:
		writer = report.NewFullJSONWriter(output, getVersion(), report.WithPrettyPrint())
	case settings.markdownReport:
		writer = report.NewMarkdownWriter(output)
	default:
		writer = report.NewSimpleWriter(output)
	}

	_, err := writer.Write(result)
	return err
}

// writeScreenshot writes the captured screenshot to the requested file.
// If no screenshot was requested or captured, this is a no-op.
func writeScreenshot(path string, result *model.CrawlResult, logger *slog.Logger) error {
	if path == "" || len(result.Screenshot) == 0 {
		return nil
	}

	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return fmt.Errorf("failed to create screenshot directory: %w", err)
		}
	}
	if err := os.WriteFile(path, result.Screenshot, 0600); err != nil {
		return fmt.Errorf("failed to write screenshot: %w", err)
	}

	logger.Info("screenshot saved", "path", path, "bytes", len(result.Screenshot))
	fmt.Printf("Screenshot saved to %s\n", path)
	return nil
}

// saveResult saves the crawl result to the database if enabled.
// If db is nil, this function is a no-op.
func saveResult(ctx context.Context, db *database.HistoryDB, result *model.CrawlResult, logger *slog.Logger) error {
	if db == nil {
		return nil
	}

	if err := db.SaveResult(ctx, result); err != nil {
		return fmt.Errorf("failed to save crawl result: %w", err)
	}

	logger.Info("crawl result saved to database", "target", result.Target)
	return nil
}
