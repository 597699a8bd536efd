// pkg/registry/registry_test.go
package registry

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testRegistryJSON = `{
  "version": "1.0.0",
  "lastUpdated": "2026-08-25",
  "stages": [
    {
      "id": "ingestion",
      "displayName": "Data Ingestion",
      "description": "Exports the feature store and splits it.",
      "version": "1.0.0",
      "errorCodes": ["FEATURE_STORE_FETCH_FAILED", "EMPTY_DATASET"],
      "timeout": "120s",
      "retries": 3,
      "tags": ["pipeline"]
    },
    {
      "id": "pusher",
      "displayName": "Model Pusher",
      "description": "Uploads accepted models.",
      "version": "1.0.0",
      "errorCodes": ["MODEL_UPLOAD_FAILED"],
      "timeout": "60s",
      "retries": 3,
      "tags": ["pipeline", "registry"]
    }
  ]
}`

func TestLoadRegistry(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stage-registry.json")
	require.NoError(t, os.WriteFile(path, []byte(testRegistryJSON), 0o644))

	reg, err := LoadRegistry(path)
	require.NoError(t, err)

	assert.Equal(t, "1.0.0", reg.Version)
	require.Len(t, reg.Stages, 2)

	stage, ok := reg.Find("ingestion")
	require.True(t, ok)
	assert.Equal(t, "Data Ingestion", stage.DisplayName)
	assert.Contains(t, stage.ErrorCodes, "EMPTY_DATASET")
	assert.Equal(t, 3, stage.Retries)

	_, ok = reg.Find("does-not-exist")
	assert.False(t, ok)
}

func TestMissingStages(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stage-registry.json")
	require.NoError(t, os.WriteFile(path, []byte(testRegistryJSON), 0o644))

	reg, err := LoadRegistry(path)
	require.NoError(t, err)

	assert.Empty(t, reg.MissingStages([]string{"ingestion", "pusher"}))
	assert.Equal(t, []string{"training", "notify"},
		reg.MissingStages([]string{"ingestion", "training", "notify"}))
}

func TestLoadRegistry_MissingFile(t *testing.T) {
	_, err := LoadRegistry(filepath.Join(t.TempDir(), "nope.json"))
	assert.Error(t, err)
}
