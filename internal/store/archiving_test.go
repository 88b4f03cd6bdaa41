package store_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/autograde/grader/internal/store"
	mockstore "github.com/autograde/grader/internal/store/mock"
	"github.com/autograde/grader/internal/types"
	mockuploader "github.com/autograde/grader/internal/upload/mock"
)

func TestArchivingGradeStore(t *testing.T) {
	ctx := context.Background()

	t.Run("ArchiveFailureIsNotFatal", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		next := mockstore.NewMockGradeStore(ctrl)
		u := mockuploader.NewMockUploader(ctrl)

		record := newRecord(uuid.NewString(), 50, types.GradingMethodAutomated)
		next.EXPECT().Save(gomock.Any(), record).Return(nil)
		u.EXPECT().Exists(gomock.Any(), gomock.Any()).Return(false, errors.New("bucket gone"))

		require.NoError(t, store.NewArchivingGradeStore(next, u).Save(ctx, record))
	})

	t.Run("SaveFailureSkipsArchive", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		next := mockstore.NewMockGradeStore(ctrl)
		u := mockuploader.NewMockUploader(ctrl)

		cause := errors.New("connection refused")
		record := newRecord(uuid.NewString(), 50, types.GradingMethodAutomated)
		next.EXPECT().Save(gomock.Any(), record).Return(cause)

		err := store.NewArchivingGradeStore(next, u).Save(ctx, record)
		require.ErrorIs(t, err, cause)
	})

	t.Run("Archives", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		next := mockstore.NewMockGradeStore(ctrl)
		u := mockuploader.NewMockUploader(ctrl)

		record := newRecord(uuid.NewString(), 50, types.GradingMethodAutomated)
		gomock.InOrder(
			next.EXPECT().Save(gomock.Any(), record).Return(nil),
			u.EXPECT().Exists(gomock.Any(), gomock.Any()).Return(true, nil),
			u.EXPECT().StoreIdentifier(gomock.Any()).Return("archive", nil),
		)

		require.NoError(t, store.NewArchivingGradeStore(next, u).Save(ctx, record))
	})

	t.Run("DelegatesReads", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		next := mockstore.NewMockGradeStore(ctrl)
		u := mockuploader.NewMockUploader(ctrl)

		next.EXPECT().Current(gomock.Any(), "s1").Return(nil, store.ErrNotFound)

		_, err := store.NewArchivingGradeStore(next, u).Current(ctx, "s1")
		require.ErrorIs(t, err, store.ErrNotFound)
	})
}
