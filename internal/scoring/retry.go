package scoring

import (
	"context"
	"errors"
	"time"

	"github.com/sethvargo/go-retry"
	"go.opentelemetry.io/otel/codes"
)

// Ensure RetryScorer implements Scorer interface.
var _ Scorer = (*RetryScorer)(nil)

// Scorer decorator retrying transient failures. Rejections are returned immediately.
//
// Belongs to the batch layer, the single submission path never retries on its own.
type RetryScorer struct {
	scorer  Scorer
	backoff func() retry.Backoff
}

func NewRetryScorerBackoff(scorer Scorer, backoff func() retry.Backoff) *RetryScorer {
	return &RetryScorer{
		scorer:  scorer,
		backoff: backoff,
	}
}

// `attempts` counts the first call
func NewRetryScorer(scorer Scorer, attempts uint64) *RetryScorer {
	return &RetryScorer{
		scorer: scorer,
		backoff: func() retry.Backoff {
			b := retry.NewExponential(500 * time.Millisecond)
			b = retry.WithJitterPercent(10, b)
			if attempts > 0 {
				b = retry.WithMaxRetries(attempts-1, b)
			}
			return b
		},
	}
}

func (r *RetryScorer) Score(ctx context.Context, req Request) (Result, error) {
	ctx, span := tracer.Start(ctx, "RetryScorer.Score")
	defer span.End()

	var result Result
	err := retry.Do(ctx, r.backoff(), func(ctx context.Context) error {
		//nolint:govet // shadow: intentionally shadow ctx and span to avoid using the incorrect one.
		ctx, span := tracer.Start(ctx, "RetryScorer.Score.Retry")
		defer span.End()

		var err error
		result, err = r.scorer.Score(ctx, req)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "failed to score")
			if errors.Is(err, ErrRejected) || errors.Is(err, context.DeadlineExceeded) {
				return err
			}
			return retry.RetryableError(err)
		}

		span.RecordError(nil)
		span.SetStatus(codes.Ok, "successfully retried")
		return nil
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to score")
		return Result{}, err
	}

	span.RecordError(nil)
	span.SetStatus(codes.Ok, "scored submission")
	return result, nil
}
