package grading_test

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/autograde/grader/internal/grading"
	mockgrading "github.com/autograde/grader/internal/grading/mock"
	gradingerrors "github.com/autograde/grader/internal/grading_errors"
	"github.com/autograde/grader/internal/types"
)

func batch(n int) []types.Submission {
	subs := make([]types.Submission, n)
	for i := range subs {
		subs[i] = textSubmission(fmt.Sprintf("s%d", i))
	}

	return subs
}

func graded(sub types.Submission) *types.GradeRecord {
	score := 80.0
	return &types.GradeRecord{
		SubmissionID: sub.ID,
		AssignmentID: sub.AssignmentID,
		StudentID:    sub.StudentID,
		Score:        &score,
		TotalPoints:  100,
		Method:       types.GradingMethodAutomated,
	}
}

func TestGradeMany(t *testing.T) {
	ctx := context.Background()

	t.Run("Empty", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		grader := mockgrading.NewMockGrader(ctrl)

		result, err := grading.NewBulkCoordinator(grader, 2).GradeMany(ctx, nil)
		require.NoError(t, err)
		assert.Empty(t, result.Items)
	})

	t.Run("OrderPreserved", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		grader := mockgrading.NewMockGrader(ctrl)
		subs := batch(12)

		grader.EXPECT().GradeOne(gomock.Any(), gomock.Any()).DoAndReturn(
			func(_ context.Context, sub types.Submission) (*types.GradeRecord, error) {
				// later items finish first
				var n int
				_, _ = fmt.Sscanf(sub.ID, "s%d", &n)
				time.Sleep(time.Duration(12-n) * time.Millisecond)
				return graded(sub), nil
			},
		).Times(len(subs))

		result, err := grading.NewBulkCoordinator(grader, 4).GradeMany(ctx, subs)
		require.NoError(t, err)
		require.Len(t, result.Items, len(subs))

		for i, item := range result.Items {
			assert.Equal(t, i, item.Index)
			assert.Equal(t, subs[i].ID, item.SubmissionID)
			assert.Equal(t, types.BatchItemSuccess, item.Status)
			require.NotNil(t, item.Record)
			assert.Equal(t, subs[i].ID, item.Record.SubmissionID)
		}
	})

	t.Run("ItemFailures", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		grader := mockgrading.NewMockGrader(ctrl)
		subs := batch(3)

		failed := graded(subs[1])
		failed.Score = nil
		failed.Method = types.GradingMethodError
		failed.Error = "scoring_failure [s1]: boom"

		grader.EXPECT().GradeOne(gomock.Any(), subs[0]).Return(graded(subs[0]), nil)
		grader.EXPECT().GradeOne(gomock.Any(), subs[1]).Return(failed, nil)
		grader.EXPECT().GradeOne(gomock.Any(), subs[2]).Return(nil,
			gradingerrors.InvalidSubmission(subs[2].ID, errors.New("missing content")))

		result, err := grading.NewBulkCoordinator(grader, 1).GradeMany(ctx, subs)
		require.NoError(t, err)

		assert.Equal(t, types.BatchItemSuccess, result.Items[0].Status)

		assert.Equal(t, types.BatchItemError, result.Items[1].Status)
		assert.Equal(t, failed.Error, result.Items[1].Error)
		assert.Same(t, failed, result.Items[1].Record, "failed attempt is still reported")

		assert.Equal(t, types.BatchItemError, result.Items[2].Status)
		assert.Contains(t, result.Items[2].Error, "missing content")
		assert.Nil(t, result.Items[2].Record)

		succeeded, failures := result.Counts()
		assert.Equal(t, 1, succeeded)
		assert.Equal(t, 2, failures)
	})

	t.Run("ConcurrencyBounded", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		grader := mockgrading.NewMockGrader(ctrl)
		subs := batch(20)
		const limit = 3

		var inFlight, peak atomic.Int32
		grader.EXPECT().GradeOne(gomock.Any(), gomock.Any()).DoAndReturn(
			func(_ context.Context, sub types.Submission) (*types.GradeRecord, error) {
				n := inFlight.Add(1)
				defer inFlight.Add(-1)
				for {
					p := peak.Load()
					if n <= p || peak.CompareAndSwap(p, n) {
						break
					}
				}
				time.Sleep(5 * time.Millisecond)
				return graded(sub), nil
			},
		).Times(len(subs))

		_, err := grading.NewBulkCoordinator(grader, limit).GradeMany(ctx, subs)
		require.NoError(t, err)
		assert.LessOrEqual(t, peak.Load(), int32(limit))
		assert.Positive(t, peak.Load())
	})

	t.Run("PersistenceFailureStops", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		grader := mockgrading.NewMockGrader(ctrl)
		subs := batch(5)

		grader.EXPECT().GradeOne(gomock.Any(), subs[0]).Return(graded(subs[0]), nil)
		grader.EXPECT().GradeOne(gomock.Any(), subs[1]).Return(nil,
			gradingerrors.PersistenceFailure(subs[1].ID, errors.New("connection refused")))

		result, err := grading.NewBulkCoordinator(grader, 1).GradeMany(ctx, subs)
		require.ErrorIs(t, err, gradingerrors.ErrPersistence)
		require.Len(t, result.Items, len(subs))

		assert.Equal(t, types.BatchItemSuccess, result.Items[0].Status)
		assert.Equal(t, types.BatchItemError, result.Items[1].Status)
		for _, item := range result.Items[2:] {
			assert.Equal(t, types.BatchItemError, item.Status)
			assert.Contains(t, item.Error, "aborted")
			assert.Nil(t, item.Record)
		}
	})

	t.Run("Cancelled", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		grader := mockgrading.NewMockGrader(ctrl)
		subs := batch(4)

		cctx, cancel := context.WithCancel(ctx)
		grader.EXPECT().GradeOne(gomock.Any(), subs[0]).DoAndReturn(
			func(itemCtx context.Context, sub types.Submission) (*types.GradeRecord, error) {
				cancel()
				// the running item keeps a live context so its write completes
				assert.NoError(t, itemCtx.Err())
				return graded(sub), nil
			},
		)

		result, err := grading.NewBulkCoordinator(grader, 1).GradeMany(cctx, subs)
		require.ErrorIs(t, err, context.Canceled)

		assert.Equal(t, types.BatchItemSuccess, result.Items[0].Status)
		for _, item := range result.Items[1:] {
			assert.Equal(t, types.BatchItemError, item.Status)
			assert.Contains(t, item.Error, "cancelled")
		}
	})
}
