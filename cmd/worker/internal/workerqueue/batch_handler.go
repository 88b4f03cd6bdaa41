package workerqueue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/autograde/grader/internal/audit"
	"github.com/autograde/grader/internal/grading"
	"github.com/autograde/grader/internal/logger"
	"github.com/autograde/grader/internal/queue"
	"github.com/autograde/grader/internal/types"
	"github.com/autograde/grader/internal/validator"
)

var tracer = otel.Tracer("github.com/autograde/grader/cmd/worker/internal/workerqueue")

var ErrBatchSize = fmt.Errorf("batch must hold between 1 and %d submissions", validator.MaxBatchSize)

var _ queue.MessageHandler = (*BatchHandler)(nil)

// Grades GradeBatchMsg messages and publishes a GradeBatchResultMsg for each.
//
// Malformed messages are poisoned. A batch stopped early publishes nothing and returns its error,
// so the message comes back and the regrade supersedes whatever was stored.
type BatchHandler struct {
	bulk     *grading.BulkCoordinator
	results  queue.Queuer
	validate validator.CustomValidator
}

func NewBatchHandler(bulk *grading.BulkCoordinator, results queue.Queuer) *BatchHandler {
	return &BatchHandler{
		bulk:     bulk,
		results:  results,
		validate: validator.Create(),
	}
}

func (h *BatchHandler) Handle(ctx context.Context, message []byte) error {
	ctx, span := tracer.Start(ctx, "BatchHandler.Handle")
	defer span.End()

	l := logger.Component("workerqueue")

	var msg types.GradeBatchMsg
	if err := json.Unmarshal(message, &msg); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to decode batch message")
		return queue.WrapPoisonError(err)
	}

	if err := h.validate.Validate(msg); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "invalid batch message")
		return queue.WrapPoisonError(err)
	}

	if !validator.ValidateBatchSize(len(msg.Submissions)) {
		span.RecordError(ErrBatchSize)
		span.SetStatus(codes.Error, "invalid batch size")
		return queue.WrapPoisonError(ErrBatchSize)
	}

	span.SetAttributes(
		attribute.String("batch.id", msg.BatchID),
		attribute.Int("batch.size", len(msg.Submissions)),
	)

	ctx = audit.WithBatchID(ctx, msg.BatchID)
	result, err := h.bulk.GradeMany(ctx, msg.Submissions)
	audit.LogBatchCompleted(audit.ContextFrom(ctx, ""), result, err != nil)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "batch stopped early")
		l.ErrorContext(ctx, "batch stopped early, leaving message for redelivery",
			"batch_id", msg.BatchID, "error", err)
		return err
	}

	return h.publish(ctx, msg.BatchID, result)
}

func (h *BatchHandler) publish(ctx context.Context, batchID string, result types.BatchResult) error {
	ctx, span := tracer.Start(ctx, "BatchHandler.publish", trace.WithAttributes(
		attribute.String("batch.id", batchID),
	))
	defer span.End()

	succeeded, failed := result.Counts()
	span.SetAttributes(
		attribute.Int("batch.succeeded", succeeded),
		attribute.Int("batch.failed", failed),
	)

	err := h.results.Enqueue(ctx, types.GradeBatchResultMsg{
		BatchID: batchID,
		Items:   result.Items,
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to enqueue batch result")
		return errors.Join(errors.New("failed to publish batch result"), err)
	}

	span.RecordError(nil)
	span.SetStatus(codes.Ok, "published batch result")
	return nil
}
