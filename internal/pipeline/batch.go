package pipeline

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/nao1215/staffscan/internal/model"
)

// Target is one company to run the pipeline for.
type Target struct {
	Company      string
	Location     string
	Website      string
	SearchTitles []string

	// ScoringTitles are the operator's own titles; see model.Run.
	ScoringTitles []string
}

// NewRun creates a run for the target with a fresh UUID.
func NewRun(t Target) *model.Run {
	run := model.NewRun(uuid.NewString(), t.Company, t.Location)
	run.Website = t.Website
	run.SearchTitles = t.SearchTitles
	run.ScoringTitles = t.ScoringTitles
	return run
}

// BatchProcessor runs one pipeline per company concurrently.
type BatchProcessor struct {
	// pipelineFactory builds a fresh pipeline for each target so steps
	// never share per-company state.
	pipelineFactory func(Target) *Pipeline

	concurrency int
	logger      *slog.Logger
}

// BatchOption configures a BatchProcessor.
type BatchOption func(*BatchProcessor)

// WithBatchLogger sets a custom logger for batch processing.
func WithBatchLogger(logger *slog.Logger) BatchOption {
	return func(b *BatchProcessor) {
		b.logger = logger
	}
}

// WithConcurrency sets the maximum number of concurrent runs.
// Non-positive values keep the default of 4.
func WithConcurrency(n int) BatchOption {
	return func(b *BatchProcessor) {
		if n > 0 {
			b.concurrency = n
		}
	}
}

// NewBatchProcessor creates a new BatchProcessor.
func NewBatchProcessor(pipelineFactory func(Target) *Pipeline, opts ...BatchOption) *BatchProcessor {
	bp := &BatchProcessor{
		pipelineFactory: pipelineFactory,
		concurrency:     4,
	}
	for _, opt := range opts {
		opt(bp)
	}
	if bp.logger == nil {
		bp.logger = slog.Default()
	}
	return bp
}

// ProcessBatch runs every target and returns the runs in target order.
// A failing run does not stop the others; its errors are in the run.
// Targets not started before cancellation have a nil run.
func (bp *BatchProcessor) ProcessBatch(ctx context.Context, targets []Target) ([]*model.Run, error) {
	bp.logger.Info("starting batch processing",
		"total_companies", len(targets),
		"concurrency", bp.concurrency,
	)
	startTime := time.Now()

	runs := make([]*model.Run, len(targets))
	err := bp.process(ctx, targets, func(run *model.Run, index int) {
		runs[index] = run
	})

	bp.logger.Info("batch processing complete",
		"total_companies", len(targets),
		"elapsed", time.Since(startTime),
	)
	return runs, err
}

// ProcessBatchWithCallback calls callback as each run finishes. The
// callback runs on the worker goroutine and must be safe for concurrent use.
func (bp *BatchProcessor) ProcessBatchWithCallback(
	ctx context.Context,
	targets []Target,
	callback func(run *model.Run, index int),
) error {
	return bp.process(ctx, targets, callback)
}

func (bp *BatchProcessor) process(ctx context.Context, targets []Target, done func(*model.Run, int)) error {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(bp.concurrency)

	for i, target := range targets {
		g.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}

			bp.logger.Info("processing company",
				"company", target.Company,
				"index", i+1,
				"total", len(targets),
			)

			run := NewRun(target)
			if err := bp.pipelineFactory(target).Execute(ctx, run); err != nil {
				bp.logger.Warn("run failed",
					"company", target.Company,
					"error", err,
				)
			}
			done(run, i)
			return nil
		})
	}
	return g.Wait()
}
