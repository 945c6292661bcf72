package pipeline

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/nao1215/riskscan/internal/model"
)

// DefaultConcurrency is the number of requests analyzed at once.
const DefaultConcurrency = 4

// Analyzer is satisfied by *Engine.
type Analyzer interface {
	Analyze(ctx context.Context, req *model.Request) (*model.Report, error)
}

// BatchResult is the outcome of one batch entry. Exactly one of Report and
// Err is set.
type BatchResult struct {
	// Index is the position of the request in the input slice.
	Index int

	// Report is the completed analysis when the entry succeeded.
	Report *model.Report

	// Err is the reason the entry failed. Cancelled entries carry ctx.Err().
	Err error
}

// BatchProcessor analyzes many requests with bounded concurrency.
//
// Design decision: batch handling lives outside Engine so that a single
// analysis stays sequential and easy to reason about, while the batch layer
// owns concurrency limits and per-entry failure handling.
type BatchProcessor struct {
	// analyzer runs each request. Engine is immutable, so one instance is
	// shared by every worker.
	analyzer Analyzer

	// concurrency is the maximum number of analyses in flight.
	concurrency int

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

// WithConcurrency sets the maximum number of concurrent analyses.
func WithConcurrency(n int) BatchOption {
	return func(b *BatchProcessor) {
		if n > 0 {
			b.concurrency = n
		}
	}
}

// NewBatchProcessor creates a new BatchProcessor.
func NewBatchProcessor(analyzer Analyzer, opts ...BatchOption) *BatchProcessor {
	bp := &BatchProcessor{
		analyzer:    analyzer,
		concurrency: DefaultConcurrency,
	}
	for _, opt := range opts {
		opt(bp)
	}
	if bp.logger == nil {
		bp.logger = slog.Default()
	}
	return bp
}

// ProcessBatch analyzes every request. Results keep the input order. A
// failed entry does not stop the others; the returned error is only set
// when ctx is cancelled.
func (bp *BatchProcessor) ProcessBatch(ctx context.Context, requests []*model.Request) ([]BatchResult, error) {
	results := make([]BatchResult, len(requests))
	err := bp.ProcessBatchWithCallback(ctx, requests, func(result BatchResult) {
		results[result.Index] = result
	})
	return results, err
}

// ProcessBatchWithCallback analyzes every request and calls callback as each
// one completes. The callback runs on the worker goroutine and must be safe
// for concurrent use if it touches shared state.
func (bp *BatchProcessor) ProcessBatchWithCallback(
	ctx context.Context,
	requests []*model.Request,
	callback func(result BatchResult),
) error {
	bp.logger.Info("starting batch analysis",
		"total", len(requests),
		"concurrency", bp.concurrency,
	)
	startTime := time.Now()

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(bp.concurrency)

	// Entry errors are recorded in the result and never returned to the
	// errgroup, so one bad entry does not cancel its siblings.
	for i, req := range requests {
		g.Go(func() error {
			select {
			case <-ctx.Done():
				callback(BatchResult{Index: i, Err: ctx.Err()})
				return ctx.Err()
			default:
			}

			report, err := bp.analyzer.Analyze(ctx, req)
			if err != nil {
				bp.logger.Warn("batch entry failed",
					"index", i+1,
					"total", len(requests),
					"error", err,
				)
				callback(BatchResult{Index: i, Err: err})
				return nil
			}
			callback(BatchResult{Index: i, Report: report})
			return nil
		})
	}

	err := g.Wait()
	bp.logger.Info("batch analysis complete",
		"total", len(requests),
		"elapsed", time.Since(startTime),
	)
	return err
}
