package hash_test

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/autograde/grader/internal/hash"
)

// sha256("hello world")
const helloSum = "b94d27b9934d3e08a52e52d7da7dabfac484efe37a5380ee9088f7ace2efcde9"

func TestOf(t *testing.T) {
	ctx := context.Background()

	t.Run("MatchesBytes", func(t *testing.T) {
		d, err := hash.Of(ctx, strings.NewReader("hello world"), 11)
		require.NoError(t, err)
		assert.Equal(t, helloSum, d.Sum)
		assert.Equal(t, int64(11), d.Size)
		assert.Equal(t, hash.Bytes([]byte("hello world")), d)
	})

	t.Run("UnknownLength", func(t *testing.T) {
		d, err := hash.Of(ctx, strings.NewReader("hello world"), -1)
		require.NoError(t, err)
		assert.Equal(t, helloSum, d.Sum)
	})

	t.Run("SizeMismatch", func(t *testing.T) {
		_, err := hash.Of(ctx, strings.NewReader("hello"), 11)
		assert.ErrorIs(t, err, hash.ErrSizeMismatch)
	})
}

func TestObject(t *testing.T) {
	d := hash.Bytes([]byte("hello world"))

	assert.Equal(t, "grades/42/b9/"+helloSum, d.Object("grades/42"))
	assert.Equal(t, "b9/"+helloSum, d.Object(""))
}
