package upload_test

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/sethvargo/go-retry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/autograde/grader/internal/upload"
	mockuploader "github.com/autograde/grader/internal/upload/mock"
)

func fastBackoff() retry.Backoff {
	return retry.WithMaxRetries(3, retry.NewConstant(time.Millisecond))
}

func TestRetryUpload(t *testing.T) {
	object := "2f1c0e"

	t.Run("NoError", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		u := mockuploader.NewMockUploader(ctrl)
		reader := strings.NewReader(`{"score":9}`)

		u.EXPECT().
			Upload(gomock.Any(), gomock.Any(), gomock.Eq(int64(reader.Len())), gomock.Eq(object)).
			Return(nil).
			Times(1)

		err := upload.NewRetryUploaderBackoff(u, fastBackoff).
			Upload(context.Background(), reader, int64(reader.Len()), object)
		require.NoError(t, err)
	})

	t.Run("RewindsBetweenAttempts", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		u := mockuploader.NewMockUploader(ctrl)
		content := `{"score":9}`
		reader := strings.NewReader(content)

		attempts := 0
		u.EXPECT().
			Upload(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Eq(object)).
			DoAndReturn(func(_ context.Context, r io.ReadSeeker, _ int64, _ string) error {
				attempts++
				b, err := io.ReadAll(r)
				require.NoError(t, err)
				assert.Equal(t, content, string(b), "every attempt should see the whole object")

				if attempts == 1 {
					return errors.New("connection reset")
				}
				return nil
			}).
			Times(2)

		err := upload.NewRetryUploaderBackoff(u, fastBackoff).
			Upload(context.Background(), reader, int64(len(content)), object)
		require.NoError(t, err)
	})

	t.Run("Exhausted", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		u := mockuploader.NewMockUploader(ctrl)
		reader := strings.NewReader("x")

		u.EXPECT().
			Upload(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
			Return(errors.New("expected error")).
			Times(4)

		err := upload.NewRetryUploaderBackoff(u, fastBackoff).
			Upload(context.Background(), reader, 1, object)
		require.Error(t, err)
	})
}

func TestRetryExists(t *testing.T) {
	t.Run("ErrorAfter1Try", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		u := mockuploader.NewMockUploader(ctrl)

		gomock.InOrder(
			u.EXPECT().Exists(gomock.Any(), "obj").Return(false, errors.New("timeout")),
			u.EXPECT().Exists(gomock.Any(), "obj").Return(true, nil),
		)

		exists, err := upload.NewRetryUploaderBackoff(u, fastBackoff).Exists(context.Background(), "obj")
		require.NoError(t, err)
		assert.True(t, exists)
	})

	t.Run("Exhausted", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		u := mockuploader.NewMockUploader(ctrl)

		u.EXPECT().Exists(gomock.Any(), "obj").Return(false, errors.New("timeout")).Times(4)

		_, err := upload.NewRetryUploaderBackoff(u, fastBackoff).Exists(context.Background(), "obj")
		require.Error(t, err)
	})
}

func TestRetryStoreIdentifier(t *testing.T) {
	ctrl := gomock.NewController(t)
	u := mockuploader.NewMockUploader(ctrl)

	u.EXPECT().StoreIdentifier(gomock.Any()).Return("grade-archive", nil).Times(1)

	id, err := upload.NewRetryUploader(u).StoreIdentifier(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "grade-archive", id)
}
