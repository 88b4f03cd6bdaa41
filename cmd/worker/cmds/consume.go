package cmds

import (
	"context"
	"errors"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel/codes"

	"github.com/autograde/grader/cmd/worker/internal/common"
	"github.com/autograde/grader/cmd/worker/internal/workerqueue"
	"github.com/autograde/grader/internal/config"
	gradingerrors "github.com/autograde/grader/internal/grading_errors"
	"github.com/autograde/grader/internal/logger"
	"github.com/autograde/grader/internal/pipeline"
	"github.com/autograde/grader/internal/queue"
	"github.com/autograde/grader/internal/types"
)

var (
	consumeVisibility time.Duration
	consumeBackoff    time.Duration
)

var consumeCmd = &cobra.Command{
	Use:   "consume",
	Short: "Grade batches from the batch queue until interrupted, publishing results to the results queue",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGTERM, syscall.SIGINT)
		defer cancel()

		ctx, span := tracer.Start(ctx, "consumeCmd")
		defer span.End()

		l := logger.Component("consume")

		cfg, err := config.GetConfig()
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "failed to load config")
			return gradingerrors.ExitErrorWrap(types.ExitErrored, err)
		}

		batches, err := common.GetBatchQueueClient(cfg)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "failed to make batch queue")
			return gradingerrors.ExitErrorWrap(types.ExitErrored, err)
		}

		results, err := common.GetResultQueueClient(cfg)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "failed to make results queue")
			return gradingerrors.ExitErrorWrap(types.ExitErrored, err)
		}

		p, err := pipeline.New(ctx, cfg)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "failed to build grading pipeline")
			return gradingerrors.ExitErrorWrap(types.ExitErrored, err)
		}
		defer func() {
			if err := p.Close(); err != nil {
				l.Warn("failed to close grading pipeline", "error", err)
			}
		}()

		handler := workerqueue.NewBatchHandler(p.Bulk, results)

		l.InfoContext(ctx, "consuming batches", "visibility", consumeVisibility)
		consume(ctx, batches, handler, consumeVisibility, consumeBackoff)
		l.InfoContext(ctx, "stopped consuming batches")

		span.RecordError(nil)
		span.SetStatus(codes.Ok, "stopped consuming")
		return nil
	},
}

// Dequeue until ctx is done. Queue errors are logged and retried after backoff.
func consume(
	ctx context.Context,
	batches queue.Queuer,
	handler queue.MessageHandler,
	visibility time.Duration,
	backoff time.Duration,
) {
	l := logger.Component("consume")

	for ctx.Err() == nil {
		err := batches.Dequeue(ctx, visibility, handler)
		if err == nil || errors.Is(err, context.Canceled) {
			continue
		}

		l.WarnContext(ctx, "failed to dequeue batch", "error", err)
		select {
		case <-ctx.Done():
		case <-time.After(backoff):
		}
	}
}

func init() {
	rootCmd.AddCommand(consumeCmd)

	consumeCmd.Flags().DurationVar(
		&consumeVisibility,
		"visibility-timeout",
		30*time.Minute,
		"How long a batch may take before its message reappears on the queue",
	)
	consumeCmd.Flags().
		DurationVar(&consumeBackoff, "backoff", 5*time.Second, "Wait after a queue error before dequeuing again")
}
