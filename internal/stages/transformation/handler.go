// internal/stages/transformation/handler.go
package transformation

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

const StageName = "transformation"

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

// Execute engineers features, fits the scalers on the training split,
// rebalances both splits, and persists the preprocessor plus the transformed
// arrays. It refuses to run on a dataset that failed validation.
func (h *Handler) Execute(ctx context.Context, validation *models.ValidationArtifact, ingestion *models.IngestionArtifact) (*models.TransformationArtifact, error) {
	if !validation.Status {
		return nil, stderrors.NewInvalidDatasetError(validation.Message)
	}

	trainRecords, err := models.ReadRecordsCSV(ingestion.TrainFilePath)
	if err != nil {
		return nil, stderrors.NewArtifactReadFailedError(ingestion.TrainFilePath, err)
	}
	testRecords, err := models.ReadRecordsCSV(ingestion.TestFilePath)
	if err != nil {
		return nil, stderrors.NewArtifactReadFailedError(ingestion.TestFilePath, err)
	}

	trainFeatures, trainLabels := engineer(trainRecords)
	testFeatures, testLabels := engineer(testRecords)

	preprocessor := ml.NewPreprocessor(models.FeatureColumns, standardScaledColumns, minMaxScaledColumns)
	if err := preprocessor.Fit(trainFeatures); err != nil {
		return nil, stderrors.NewTransformationFailedError(err.Error())
	}

	trainScaled, err := preprocessor.TransformMatrix(trainFeatures)
	if err != nil {
		return nil, stderrors.NewTransformationFailedError(err.Error())
	}
	testScaled, err := preprocessor.TransformMatrix(testFeatures)
	if err != nil {
		return nil, stderrors.NewTransformationFailedError(err.Error())
	}

	trainScaled, trainLabels = ml.ResampleSMOTEENN(trainScaled, trainLabels, h.config.Seed)
	testScaled, testLabels = ml.ResampleSMOTEENN(testScaled, testLabels, h.config.Seed)

	h.logger.Info("resampling completed", map[string]interface{}{
		"trainRows": len(trainScaled),
		"testRows":  len(testScaled),
	})

	preprocessorPath := filepath.Join(h.config.ArtifactsDir, preprocessorFile)
	if err := h.writePreprocessor(preprocessorPath, preprocessor); err != nil {
		return nil, err
	}

	trainArrayPath := filepath.Join(h.config.ArtifactsDir, trainArrayFile)
	if err := models.WriteMatrixCSV(trainArrayPath, withLabels(trainScaled, trainLabels)); err != nil {
		return nil, stderrors.NewArtifactWriteFailedError(trainArrayPath, err)
	}
	testArrayPath := filepath.Join(h.config.ArtifactsDir, testArrayFile)
	if err := models.WriteMatrixCSV(testArrayPath, withLabels(testScaled, testLabels)); err != nil {
		return nil, stderrors.NewArtifactWriteFailedError(testArrayPath, err)
	}

	return &models.TransformationArtifact{
		PreprocessorPath: preprocessorPath,
		TrainArrayPath:   trainArrayPath,
		TestArrayPath:    testArrayPath,
	}, nil
}

func (h *Handler) writePreprocessor(path string, p *ml.Preprocessor) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return stderrors.NewArtifactWriteFailedError(path, err)
	}

	data, err := json.Marshal(p)
	if err != nil {
		return stderrors.NewArtifactWriteFailedError(path, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return stderrors.NewArtifactWriteFailedError(path, err)
	}
	return nil
}

// engineer applies the feature mapping to every record and splits out labels.
func engineer(records []models.VehicleRecord) ([][]float64, []int) {
	features := make([][]float64, len(records))
	labels := make([]int, len(records))
	for i, r := range records {
		features[i] = r.Features()
		labels[i] = r.Response
	}
	return features, labels
}

func withLabels(features [][]float64, labels []int) [][]float64 {
	out := make([][]float64, len(features))
	for i, row := range features {
		combined := make([]float64, len(row)+1)
		copy(combined, row)
		combined[len(row)] = float64(labels[i])
		out[i] = combined
	}
	return out
}
