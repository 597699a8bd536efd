// internal/stages/pusher/handler.go
package pusher

import (
	"context"
	"os"

	stderrors "vehicle-insurance-pipeline/internal/common/errors"
	"vehicle-insurance-pipeline/internal/common/logger"
	"vehicle-insurance-pipeline/internal/models"
	"vehicle-insurance-pipeline/internal/registry"
)

const StageName = "pusher"

type Handler struct {
	config *Config
	store  registry.ModelStore
	logger logger.Logger
}

func NewHandler(config *Config, store registry.ModelStore, log logger.Logger) *Handler {
	return &Handler{
		config: config,
		store:  store,
		logger: log.WithFields(map[string]interface{}{"stage": StageName}),
	}
}

// Execute uploads the accepted model to the registry. A rejected candidate
// is a no-op, not an error.
func (h *Handler) Execute(ctx context.Context, evaluation *models.EvaluationArtifact) (*models.PusherArtifact, error) {
	if !evaluation.IsAccepted {
		h.logger.Info("candidate rejected, skipping push", nil)
		return &models.PusherArtifact{
			Bucket: h.config.Bucket,
			Key:    evaluation.S3ModelKey,
			Pushed: false,
		}, nil
	}

	data, err := os.ReadFile(evaluation.TrainedModelPath)
	if err != nil {
		return nil, stderrors.NewArtifactReadFailedError(evaluation.TrainedModelPath, err)
	}

	if err := h.store.Save(ctx, evaluation.S3ModelKey, data); err != nil {
		return nil, stderrors.NewModelUploadFailedError(evaluation.S3ModelKey, err)
	}

	h.logger.Info("model pushed", map[string]interface{}{
		"bucket": h.config.Bucket,
		"key":    evaluation.S3ModelKey,
		"bytes":  len(data),
	})

	return &models.PusherArtifact{
		Bucket: h.config.Bucket,
		Key:    evaluation.S3ModelKey,
		Pushed: true,
	}, nil
}
