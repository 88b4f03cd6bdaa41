package common_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/autograde/grader/cmd/worker/internal/common"
	"github.com/autograde/grader/internal/config"
)

func TestJSONRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.json")

	require.NoError(t, common.WriteJSON(path, map[string]int{"count": 3}))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(raw), "\n  \"count\": 3")

	var out map[string]int
	require.NoError(t, common.ReadJSON(path, &out))
	assert.Equal(t, 3, out["count"])
}

func TestReadJSONErrors(t *testing.T) {
	dir := t.TempDir()

	var out map[string]any
	assert.Error(t, common.ReadJSON(filepath.Join(dir, "missing.json"), &out))

	bad := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte("{"), 0o600))
	assert.ErrorContains(t, common.ReadJSON(bad, &out), "bad.json")
}

func TestQueueClientsNeedAzure(t *testing.T) {
	_, err := common.GetBatchQueueClient(&config.Config{})
	assert.ErrorIs(t, err, common.ErrNoAzure)

	_, err = common.GetResultQueueClient(&config.Config{})
	assert.ErrorIs(t, err, common.ErrNoAzure)
}
