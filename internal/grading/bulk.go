package grading

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	gradingerrors "github.com/autograde/grader/internal/grading_errors"
	"github.com/autograde/grader/internal/logger"
	"github.com/autograde/grader/internal/types"
)

const DefaultMaxConcurrency = 4

const (
	msgAborted   = "not graded: batch aborted after a persistence failure"
	msgCancelled = "not graded: batch cancelled"
)

// Grades a batch with bounded concurrency. Results line up with the input by index.
type BulkCoordinator struct {
	grader         Grader
	metrics        *metrics
	maxConcurrency int
}

func NewBulkCoordinator(grader Grader, maxConcurrency int) *BulkCoordinator {
	if maxConcurrency < 1 {
		maxConcurrency = DefaultMaxConcurrency
	}

	return &BulkCoordinator{
		grader:         grader,
		metrics:        newMetrics(),
		maxConcurrency: maxConcurrency,
	}
}

// Item failures become error slots. A persistence failure or cancellation of ctx stops dispatch:
// items already running finish and are stored, undispatched items get error slots, and the
// persistence failures (or the context error) are returned alongside the partial result.
func (b *BulkCoordinator) GradeMany(ctx context.Context, subs []types.Submission) (types.BatchResult, error) {
	ctx, span := tracer.Start(ctx, "BulkCoordinator.GradeMany", trace.WithAttributes(
		attribute.Int("batch.size", len(subs)),
		attribute.Int("batch.max_concurrency", b.maxConcurrency),
	))
	defer span.End()

	l := logger.Component("grading").With("batchSize", len(subs))

	items := make([]types.BatchItem, len(subs))
	dispatched := make([]bool, len(subs))

	var (
		stop    atomic.Bool
		fatalMu sync.Mutex
		fatal   []error
	)

	// in flight items finish their write even if the caller gives up
	itemCtx := context.WithoutCancel(ctx)

	g := new(errgroup.Group)
	g.SetLimit(b.maxConcurrency)

	for i, sub := range subs {
		if stop.Load() || ctx.Err() != nil {
			break
		}

		g.Go(func() error {
			// the slot may have been waited on while the batch stopped
			if stop.Load() || ctx.Err() != nil {
				return nil
			}
			dispatched[i] = true

			record, err := b.grader.GradeOne(itemCtx, sub)
			items[i] = slot(i, sub, record, err)

			if gradingerrors.IsFatal(err) {
				stop.Store(true)
				fatalMu.Lock()
				fatal = append(fatal, err)
				fatalMu.Unlock()
			}

			return nil
		})
	}

	_ = g.Wait()

	skipped := 0
	for i := range items {
		if dispatched[i] {
			continue
		}
		skipped++

		msg := msgCancelled
		if len(fatal) > 0 {
			msg = msgAborted
		}
		items[i] = types.BatchItem{
			Index:        i,
			SubmissionID: subs[i].ID,
			Status:       types.BatchItemError,
			Error:        msg,
		}
	}

	var err error
	if len(fatal) > 0 {
		err = errors.Join(fatal...)
	} else if skipped > 0 {
		err = ctx.Err()
	}

	result := types.BatchResult{Items: items}
	succeeded, failed := result.Counts()
	for range succeeded {
		b.metrics.batchItem(ctx, types.BatchItemSuccess)
	}
	for range failed {
		b.metrics.batchItem(ctx, types.BatchItemError)
	}

	span.SetAttributes(
		attribute.Int("batch.succeeded", succeeded),
		attribute.Int("batch.failed", failed),
		attribute.Int("batch.skipped", skipped),
	)

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "batch stopped early")
		l.ErrorContext(ctx, "batch stopped early", "error", err, "skipped", skipped)
		return result, err
	}

	l.InfoContext(ctx, "graded batch", "succeeded", succeeded, "failed", failed)
	span.RecordError(nil)
	span.SetStatus(codes.Ok, "graded batch")
	return result, nil
}

func slot(i int, sub types.Submission, record *types.GradeRecord, err error) types.BatchItem {
	item := types.BatchItem{Index: i, SubmissionID: sub.ID}

	switch {
	case err != nil:
		item.Status = types.BatchItemError
		item.Error = err.Error()
	case record == nil:
		item.Status = types.BatchItemError
		item.Error = "no grade record produced"
	case record.Method == types.GradingMethodError:
		item.Status = types.BatchItemError
		item.Error = record.Error
		item.Record = record
	default:
		item.Status = types.BatchItemSuccess
		item.Record = record
	}

	return item
}
