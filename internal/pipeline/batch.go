package pipeline

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/nao1215/linkaudit/internal/config"
	"github.com/nao1215/linkaudit/internal/model"
)

// Extractor runs one single-page extraction. *Service implements it.
type Extractor interface {
	ExtractAndClassify(ctx context.Context, url string, persist bool) (*model.ExtractionResult, string, error)
}

// BatchItem is the outcome of one URL of a batch.
type BatchItem struct {
	// URL is the input URL.
	URL string

	// Result is nil when the extraction failed before assembly.
	Result *model.ExtractionResult

	// Err is the extraction error, if any.
	Err error
}

// BatchProcessor extracts many pages concurrently.
// It uses errgroup to manage goroutines and respect concurrency limits.
type BatchProcessor struct {
	extractor Extractor

	// concurrency is the maximum number of concurrent extractions.
	concurrency int

	// persist is passed to every extraction.
	persist bool

	// logger is used for batch-level logging.
	logger *slog.Logger
}

// BatchOption configures a BatchProcessor.
type BatchOption func(*BatchProcessor)

// WithBatchLogger sets a custom logger for batch processing.
func WithBatchLogger(logger *slog.Logger) BatchOption {
	return func(b *BatchProcessor) {
		b.logger = logger
	}
}

// WithConcurrency sets the maximum number of concurrent extractions.
// Values below 1 are ignored.
func WithConcurrency(n int) BatchOption {
	return func(b *BatchProcessor) {
		if n > 0 {
			b.concurrency = n
		}
	}
}

// WithPersist saves every successful result.
func WithPersist(persist bool) BatchOption {
	return func(b *BatchProcessor) {
		b.persist = persist
	}
}

// NewBatchProcessor creates a new BatchProcessor.
func NewBatchProcessor(extractor Extractor, opts ...BatchOption) *BatchProcessor {
	bp := &BatchProcessor{
		extractor:   extractor,
		concurrency: config.DefaultConcurrency,
	}

	for _, opt := range opts {
		opt(bp)
	}

	if bp.logger == nil {
		bp.logger = slog.Default()
	}

	return bp
}

// ProcessBatch extracts every URL, at most concurrency at a time.
// One URL's failure does not stop the others; it is recorded in its item.
// Items are returned in input order. The error is non-nil only when ctx
// was cancelled.
func (bp *BatchProcessor) ProcessBatch(ctx context.Context, urls []string) ([]BatchItem, error) {
	items := make([]BatchItem, len(urls))
	err := bp.ProcessBatchWithCallback(ctx, urls, func(item BatchItem, index int) {
		// Each goroutine writes its own index.
		items[index] = item
	})
	return items, err
}

// ProcessBatchWithCallback extracts every URL and calls callback for each
// completed one. This is useful for streaming results.
//
// The callback is called from the goroutine that completed the
// extraction, so it must be safe for concurrent use if it touches shared
// state.
func (bp *BatchProcessor) ProcessBatchWithCallback(
	ctx context.Context,
	urls []string,
	callback func(item BatchItem, index int),
) error {
	bp.logger.InfoContext(ctx, "starting batch processing",
		"total_urls", len(urls),
		"concurrency", bp.concurrency,
	)

	startTime := time.Now()

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(bp.concurrency)

	for i, u := range urls {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			result, _, err := bp.extractor.ExtractAndClassify(gctx, u, bp.persist)
			if err != nil {
				bp.logger.WarnContext(gctx, "extraction failed",
					"url", u,
					"index", i+1,
					"total", len(urls),
					"error", err,
				)
			}

			callback(BatchItem{URL: u, Result: result, Err: err}, i)
			return nil
		})
	}

	err := g.Wait()

	bp.logger.InfoContext(ctx, "batch processing complete",
		"total_urls", len(urls),
		"elapsed", time.Since(startTime),
	)

	if err == nil {
		err = ctx.Err()
	}
	return err
}

// Succeeded returns the results of the successful items, in order.
func Succeeded(items []BatchItem) []*model.ExtractionResult {
	results := make([]*model.ExtractionResult, 0, len(items))
	for _, item := range items {
		if item.Err == nil && item.Result != nil {
			results = append(results, item.Result)
		}
	}
	return results
}
