// internal/stages/evaluation/handler.go
package evaluation

import (
	"context"
	"os"

	stderrors "vehicle-insurance-pipeline/internal/common/errors"
	"vehicle-insurance-pipeline/internal/common/logger"
	"vehicle-insurance-pipeline/internal/ml"
	"vehicle-insurance-pipeline/internal/models"
	"vehicle-insurance-pipeline/internal/registry"
)

const StageName = "evaluation"

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

// Execute scores the candidate and the current production model on the raw
// test split. The candidate is accepted only when its F1 strictly beats the
// production F1; a missing production model counts as 0.
func (h *Handler) Execute(ctx context.Context, ingestion *models.IngestionArtifact, trainer *models.TrainerArtifact) (*models.EvaluationArtifact, error) {
	testRecords, err := models.ReadRecordsCSV(ingestion.TestFilePath)
	if err != nil {
		return nil, stderrors.NewArtifactReadFailedError(ingestion.TestFilePath, err)
	}

	features := make([][]float64, len(testRecords))
	labels := make([]int, len(testRecords))
	for i, r := range testRecords {
		features[i] = r.Features()
		labels[i] = r.Response
	}

	candidate, err := h.loadCandidate(trainer.ModelPath)
	if err != nil {
		return nil, err
	}

	candidateF1, err := h.score(candidate, features, labels)
	if err != nil {
		return nil, stderrors.NewPredictionFailedError(err)
	}

	productionF1 := 0.0
	present, err := h.store.IsPresent(ctx, h.config.ModelKey)
	if err != nil {
		return nil, stderrors.NewModelRegistryUnavailableError(err)
	}
	if present {
		data, err := h.store.Load(ctx, h.config.ModelKey)
		if err != nil {
			return nil, stderrors.NewModelRegistryUnavailableError(err)
		}
		production, err := ml.UnmarshalModel(data)
		if err != nil {
			return nil, stderrors.NewModelSerializationError(err)
		}
		if productionF1, err = h.score(production, features, labels); err != nil {
			return nil, stderrors.NewPredictionFailedError(err)
		}
	}

	accepted := candidateF1 > productionF1
	h.logger.Info("evaluation completed", map[string]interface{}{
		"candidateF1":       candidateF1,
		"productionF1":      productionF1,
		"productionPresent": present,
		"accepted":          accepted,
	})

	return &models.EvaluationArtifact{
		IsAccepted:       accepted,
		S3ModelKey:       h.config.ModelKey,
		TrainedModelPath: trainer.ModelPath,
		F1Delta:          candidateF1 - productionF1,
		CandidateF1:      candidateF1,
		ProductionF1:     productionF1,
	}, nil
}

func (h *Handler) loadCandidate(path string) (*ml.Model, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, stderrors.NewArtifactReadFailedError(path, err)
	}
	model, err := ml.UnmarshalModel(data)
	if err != nil {
		return nil, stderrors.NewModelSerializationError(err)
	}
	return model, nil
}

func (h *Handler) score(model *ml.Model, features [][]float64, labels []int) (float64, error) {
	predicted := make([]int, len(features))
	for i, row := range features {
		p, err := model.Predict(row)
		if err != nil {
			return 0, err
		}
		predicted[i] = p
	}
	return ml.EvaluateBinary(predicted, labels).F1, nil
}
