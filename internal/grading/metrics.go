package grading

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"

	"github.com/autograde/grader/internal/logger"
	"github.com/autograde/grader/internal/types"
)

var meter = otel.Meter("github.com/autograde/grader/internal/grading")

type metrics struct {
	records         metric.Int64Counter
	scoringDuration metric.Float64Histogram
	batchItems      metric.Int64Counter
}

func newMetrics() *metrics {
	fallback := noop.NewMeterProvider().Meter("")
	l := logger.Component("grading")

	records, err := meter.Int64Counter("grader.records",
		metric.WithDescription("Grade records persisted, by grading method"),
		metric.WithUnit("{record}"),
	)
	if err != nil {
		l.Warn("failed to create records counter", "error", err)
		records, _ = fallback.Int64Counter("grader.records")
	}

	scoringDuration, err := meter.Float64Histogram("grader.scoring.duration",
		metric.WithDescription("Time spent waiting on the scoring collaborator"),
		metric.WithUnit("s"),
	)
	if err != nil {
		l.Warn("failed to create scoring duration histogram", "error", err)
		scoringDuration, _ = fallback.Float64Histogram("grader.scoring.duration")
	}

	batchItems, err := meter.Int64Counter("grader.batch.items",
		metric.WithDescription("Batch slots produced, by status"),
		metric.WithUnit("{item}"),
	)
	if err != nil {
		l.Warn("failed to create batch items counter", "error", err)
		batchItems, _ = fallback.Int64Counter("grader.batch.items")
	}

	return &metrics{
		records:         records,
		scoringDuration: scoringDuration,
		batchItems:      batchItems,
	}
}

func (m *metrics) recordPersisted(ctx context.Context, record *types.GradeRecord) {
	attrs := []attribute.KeyValue{attribute.String("grading.method", string(record.Method))}
	if record.ErrorKind != "" {
		attrs = append(attrs, attribute.String("error.kind", record.ErrorKind))
	}

	m.records.Add(ctx, 1, metric.WithAttributes(attrs...))
}

func (m *metrics) scored(ctx context.Context, kind types.AssignmentKind, elapsed time.Duration, failed bool) {
	m.scoringDuration.Record(ctx, elapsed.Seconds(), metric.WithAttributes(
		attribute.String("assignment.kind", string(kind)),
		attribute.Bool("failed", failed),
	))
}

func (m *metrics) batchItem(ctx context.Context, status types.BatchItemStatus) {
	m.batchItems.Add(ctx, 1, metric.WithAttributes(attribute.String("status", string(status))))
}
