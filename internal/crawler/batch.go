package crawler

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/techspider/techspider/internal/model"
)

// BatchProcessor crawls multiple targets concurrently. It uses errgroup
// to manage goroutines and respect concurrency limits.
//
// Design decision: We use a separate BatchProcessor rather than adding
// multi-target support to Driver because:
// 1. It keeps the Driver focused on a single crawl's frontier
// 2. It allows different batch strategies (e.g., rate limiting, retries)
// 3. It provides cleaner separation of concerns
type BatchProcessor struct {
	// driverFactory creates a new driver for each target.
	// We use a factory to ensure each target gets a fresh frontier and
	// result; driver state never leaks between crawls.
	driverFactory func(target string) (*Driver, error)

	// concurrency is the maximum number of concurrent crawls.
	concurrency int

	// logger is used for batch-level logging.
	logger *slog.Logger

	// results stores completed crawl results.
	// Access is synchronized via mutex.
	results []*model.CrawlResult
	mu      sync.Mutex
}

// BatchOption configures a BatchProcessor.
type BatchOption func(*BatchProcessor)

// WithBatchLogger sets a custom logger for batch processing.
func WithBatchLogger(logger *slog.Logger) BatchOption {
	return func(b *BatchProcessor) {
		b.logger = logger
	}
}

// WithConcurrency sets the maximum number of concurrent crawls.
// Default is 3 if not specified: each crawl already fans out its own
// browser processes, so batch concurrency multiplies quickly.
func WithConcurrency(n int) BatchOption {
	return func(b *BatchProcessor) {
		if n > 0 {
			b.concurrency = n
		}
	}
}

// NewBatchProcessor creates a new BatchProcessor.
//
// The driverFactory function is called for each target to create a fresh
// Driver. A factory error (a malformed target URL) is recorded as an
// empty result rather than aborting the batch.
func NewBatchProcessor(driverFactory func(target string) (*Driver, error), opts ...BatchOption) *BatchProcessor {
	bp := &BatchProcessor{
		driverFactory: driverFactory,
		concurrency:   3,
		results:       make([]*model.CrawlResult, 0),
	}

	for _, opt := range opts {
		opt(bp)
	}

	if bp.logger == nil {
		bp.logger = slog.Default()
	}

	return bp
}

// ProcessBatch crawls multiple targets concurrently.
// It respects the configured concurrency limit and context cancellation.
//
// Design decision: We use errgroup.SetLimit rather than a worker pool
// because it's simpler and errgroup handles the concurrency correctly.
// Each target gets its own goroutine, but only 'concurrency' goroutines
// run simultaneously.
//
// Returns all results collected, in input order, including targets whose
// crawls failed. The error return indicates cancellation only.
func (bp *BatchProcessor) ProcessBatch(ctx context.Context, targets []string) ([]*model.CrawlResult, error) {
	bp.logger.Info("starting batch crawl",
		"total_targets", len(targets),
		"concurrency", bp.concurrency,
	)

	startTime := time.Now()

	// one slot per input, so output order survives concurrency
	bp.results = make([]*model.CrawlResult, len(targets))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(bp.concurrency)

	for i, target := range targets {
		g.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}

			bp.logger.Info("crawling target",
				"target", target,
				"index", i+1,
				"total", len(targets),
			)

			result := bp.crawlOne(ctx, target)

			bp.mu.Lock()
			bp.results[i] = result
			bp.mu.Unlock()

			bp.logger.Info("crawl completed",
				"target", target,
				"urls", len(result.URLs),
				"duration", result.Duration().String(),
			)
			return nil
		})
	}

	err := g.Wait()

	elapsed := time.Since(startTime)
	bp.logger.Info("batch crawl complete",
		"total_targets", len(targets),
		"elapsed", elapsed,
	)

	return bp.results, err
}

// ProcessBatchWithCallback crawls multiple targets and calls a callback
// for each completed crawl. This is useful for streaming results.
//
// The callback receives the result and the index of the target in the
// original slice. The callback is called from the goroutine that
// completed the crawl, so it should be thread-safe if it accesses shared
// state.
func (bp *BatchProcessor) ProcessBatchWithCallback(
	ctx context.Context,
	targets []string,
	callback func(result *model.CrawlResult, index int),
) error {
	bp.logger.Info("starting batch crawl with callback",
		"total_targets", len(targets),
		"concurrency", bp.concurrency,
	)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(bp.concurrency)

	for i, target := range targets {
		g.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}

			callback(bp.crawlOne(ctx, target), i)
			return nil
		})
	}

	return g.Wait()
}

// crawlOne runs a single target to completion. A driver construction
// failure (a malformed target URL) becomes a result with the target's
// entry marked as unknown-error, so batch output keeps one slot per
// input.
func (bp *BatchProcessor) crawlOne(ctx context.Context, target string) *model.CrawlResult {
	driver, err := bp.driverFactory(target)
	if err != nil {
		bp.logger.Warn("skipping target", "target", target, "error", err)
		result := model.NewCrawlResult(target)
		result.URLs[target] = model.URLStatus{Error: KindUnknown}
		result.FinishedAt = time.Now()
		return result
	}
	return driver.Analyze(ctx)
}
