package store_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/autograde/grader/internal/store"
	"github.com/autograde/grader/internal/types"
)

func TestMemoryGradeStore(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemoryGradeStore()

	_, err := s.Current(ctx, "s1")
	require.ErrorIs(t, err, store.ErrNotFound)

	first := &types.GradeRecord{SubmissionID: "s1", AssignmentID: "1", StudentID: "b"}
	second := &types.GradeRecord{SubmissionID: "s1", AssignmentID: "1", StudentID: "b"}
	other := &types.GradeRecord{SubmissionID: "s2", AssignmentID: "1", StudentID: "a"}

	require.NoError(t, s.Save(ctx, first))
	require.NoError(t, s.Save(ctx, other))
	require.NoError(t, s.Save(ctx, second))

	current, err := s.Current(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, second.ID, current.ID)

	history, err := s.History(ctx, "s1")
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, first.ID, history[0].ID)
	require.NotNil(t, history[0].SupersededBy)
	assert.Equal(t, second.ID, *history[0].SupersededBy)
	assert.True(t, history[1].IsCurrent())

	listed, err := s.ListCurrent(ctx, "1")
	require.NoError(t, err)
	require.Len(t, listed, 2)
	assert.Equal(t, "a", listed[0].StudentID)
	assert.Equal(t, "b", listed[1].StudentID)
}

func TestMemoryAssignmentSource(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemoryAssignmentSource(types.AssignmentGradingConfig{AssignmentID: "1", TotalPoints: 10})

	cfg, err := s.GradingConfig(ctx, "1")
	require.NoError(t, err)
	assert.InDelta(t, 10, cfg.TotalPoints, 1e-9)

	_, err = s.GradingConfig(ctx, "2")
	require.ErrorIs(t, err, store.ErrNotFound)

	require.NoError(t, s.Put(ctx, &types.AssignmentGradingConfig{AssignmentID: "1", TotalPoints: 20}))
	cfg, err = s.GradingConfig(ctx, "1")
	require.NoError(t, err)
	assert.InDelta(t, 20, cfg.TotalPoints, 1e-9)
	assert.Equal(t, 1, cfg.Version)
}
