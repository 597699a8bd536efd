// internal/stages/training/handler.go
package training

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"

	stderrors "vehicle-insurance-pipeline/internal/common/errors"
	"vehicle-insurance-pipeline/internal/common/logger"
	"vehicle-insurance-pipeline/internal/ml"
	"vehicle-insurance-pipeline/internal/models"
)

const StageName = "training"

type Handler struct {
	config *Config
	logger logger.Logger
}

func NewHandler(config *Config, log logger.Logger) *Handler {
	return &Handler{
		config: config,
		logger: log.WithFields(map[string]interface{}{"stage": StageName}),
	}
}

// Execute trains the forest on the transformed train array, gates on the
// expected training accuracy, scores the test array, and writes the bundled
// model artifact.
func (h *Handler) Execute(ctx context.Context, transformation *models.TransformationArtifact) (*models.TrainerArtifact, error) {
	trainMatrix, err := models.ReadMatrixCSV(transformation.TrainArrayPath)
	if err != nil {
		return nil, stderrors.NewArtifactReadFailedError(transformation.TrainArrayPath, err)
	}
	testMatrix, err := models.ReadMatrixCSV(transformation.TestArrayPath)
	if err != nil {
		return nil, stderrors.NewArtifactReadFailedError(transformation.TestArrayPath, err)
	}

	trainFeatures, trainLabels := models.SplitFeaturesLabels(trainMatrix)
	testFeatures, testLabels := models.SplitFeaturesLabels(testMatrix)

	h.logger.Info("training forest", map[string]interface{}{
		"trainRows":  len(trainFeatures),
		"estimators": h.config.Forest.Estimators,
	})

	forest, err := ml.FitForest(trainFeatures, trainLabels, h.config.Forest)
	if err != nil {
		return nil, stderrors.NewTrainingFailedError(err)
	}

	trainMetrics := ml.EvaluateBinary(forest.PredictBatch(trainFeatures), trainLabels)
	if trainMetrics.Accuracy < h.config.ExpectedAccuracy {
		return nil, stderrors.NewAccuracyBelowThresholdError(trainMetrics.Accuracy, h.config.ExpectedAccuracy)
	}

	testMetrics := ml.EvaluateBinary(forest.PredictBatch(testFeatures), testLabels)
	h.logger.Info("training completed", map[string]interface{}{
		"trainAccuracy": trainMetrics.Accuracy,
		"testAccuracy":  testMetrics.Accuracy,
		"testF1":        testMetrics.F1,
	})

	preprocessor, err := h.loadPreprocessor(transformation.PreprocessorPath)
	if err != nil {
		return nil, err
	}

	model := ml.NewModel(preprocessor, forest)
	data, err := model.Marshal()
	if err != nil {
		return nil, stderrors.NewModelSerializationError(err)
	}

	modelPath := filepath.Join(h.config.ArtifactsDir, modelFile)
	if err := os.MkdirAll(filepath.Dir(modelPath), 0o755); err != nil {
		return nil, stderrors.NewArtifactWriteFailedError(modelPath, err)
	}
	if err := os.WriteFile(modelPath, data, 0o644); err != nil {
		return nil, stderrors.NewArtifactWriteFailedError(modelPath, err)
	}

	return &models.TrainerArtifact{
		ModelPath: modelPath,
		Metrics:   testMetrics,
	}, nil
}

func (h *Handler) loadPreprocessor(path string) (*ml.Preprocessor, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, stderrors.NewArtifactReadFailedError(path, err)
	}

	var p ml.Preprocessor
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, stderrors.NewArtifactReadFailedError(path, err)
	}
	return &p, nil
}
