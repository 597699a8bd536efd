// internal/stages/pusher/handler_test.go
package pusher

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"vehicle-insurance-pipeline/internal/common/logger"
	"vehicle-insurance-pipeline/internal/models"
	"vehicle-insurance-pipeline/internal/registry"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const modelKey = "model-registry/model.json"

func TestHandler_Execute_PushesAcceptedModel(t *testing.T) {
	dir := t.TempDir()
	modelPath := filepath.Join(dir, "model.json")
	payload := []byte(`{"version":1}`)
	require.NoError(t, os.WriteFile(modelPath, payload, 0o644))

	store := registry.NewFSStore(filepath.Join(dir, "store"))
	h := NewHandler(&Config{Bucket: "models"}, store, logger.NewTestLogger(t))

	out, err := h.Execute(context.Background(), &models.EvaluationArtifact{
		IsAccepted:       true,
		S3ModelKey:       modelKey,
		TrainedModelPath: modelPath,
	})
	require.NoError(t, err)

	assert.True(t, out.Pushed)
	assert.Equal(t, "models", out.Bucket)
	assert.Equal(t, modelKey, out.Key)

	stored, err := store.Load(context.Background(), modelKey)
	require.NoError(t, err)
	assert.Equal(t, payload, stored)
}

func TestHandler_Execute_SkipsRejectedModel(t *testing.T) {
	dir := t.TempDir()
	store := registry.NewFSStore(filepath.Join(dir, "store"))
	h := NewHandler(&Config{Bucket: "models"}, store, logger.NewTestLogger(t))

	out, err := h.Execute(context.Background(), &models.EvaluationArtifact{
		IsAccepted: false,
		S3ModelKey: modelKey,
	})
	require.NoError(t, err)

	assert.False(t, out.Pushed)

	present, err := store.IsPresent(context.Background(), modelKey)
	require.NoError(t, err)
	assert.False(t, present)
}

func TestHandler_Execute_MissingModelFile(t *testing.T) {
	dir := t.TempDir()
	store := registry.NewFSStore(filepath.Join(dir, "store"))
	h := NewHandler(&Config{Bucket: "models"}, store, logger.NewTestLogger(t))

	_, err := h.Execute(context.Background(), &models.EvaluationArtifact{
		IsAccepted:       true,
		S3ModelKey:       modelKey,
		TrainedModelPath: filepath.Join(dir, "missing.json"),
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ARTIFACT_READ_FAILED")
}
