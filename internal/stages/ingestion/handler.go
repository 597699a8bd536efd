// internal/stages/ingestion/handler.go
package ingestion

import (
	"context"
	"path/filepath"

	stderrors "vehicle-insurance-pipeline/internal/common/errors"
	"vehicle-insurance-pipeline/internal/common/logger"
	"vehicle-insurance-pipeline/internal/models"
)

const StageName = "ingestion"

// DataSource abstracts the feature store so tests can stub MongoDB.
type DataSource interface {
	FetchCollection(ctx context.Context, collection string) ([]map[string]interface{}, error)
}

type Handler struct {
	config *Config
	source DataSource
	logger logger.Logger
}

func NewHandler(config *Config, source DataSource, log logger.Logger) *Handler {
	return &Handler{
		config: config,
		source: source,
		logger: log.WithFields(map[string]interface{}{"stage": StageName}),
	}
}

// Execute pulls the full collection, persists the raw dataset, and writes a
// deterministic train/test split.
func (h *Handler) Execute(ctx context.Context) (*models.IngestionArtifact, error) {
	h.logger.Info("fetching feature store collection", map[string]interface{}{
		"collection": h.config.Collection,
	})

	docs, err := h.source.FetchCollection(ctx, h.config.Collection)
	if err != nil {
		return nil, stderrors.NewFeatureStoreFetchFailedError(h.config.Collection, err)
	}
	if len(docs) == 0 {
		return nil, stderrors.NewEmptyDatasetError(h.config.Collection)
	}

	records := make([]models.VehicleRecord, 0, len(docs))
	dropped := 0
	for _, doc := range docs {
		rec, err := models.RecordFromMap(doc)
		if err != nil {
			dropped++
			h.logger.Debug("dropping record with missing or invalid fields", map[string]interface{}{
				"error": err.Error(),
			})
			continue
		}
		records = append(records, rec)
	}
	if len(records) == 0 {
		return nil, stderrors.NewEmptyDatasetError(h.config.Collection)
	}
	if dropped > 0 {
		h.logger.Warn("dropped records during ingestion", map[string]interface{}{
			"dropped": dropped,
			"kept":    len(records),
		})
	}

	featureStorePath := filepath.Join(h.config.ArtifactsDir, featureStoreFile)
	if err := models.WriteRecordsCSV(featureStorePath, records); err != nil {
		return nil, stderrors.NewArtifactWriteFailedError(featureStorePath, err)
	}

	train, test := models.TrainTestSplit(records, h.config.TestRatio, h.config.Seed)

	trainPath := filepath.Join(h.config.ArtifactsDir, trainFile)
	if err := models.WriteRecordsCSV(trainPath, train); err != nil {
		return nil, stderrors.NewArtifactWriteFailedError(trainPath, err)
	}
	testPath := filepath.Join(h.config.ArtifactsDir, testFile)
	if err := models.WriteRecordsCSV(testPath, test); err != nil {
		return nil, stderrors.NewArtifactWriteFailedError(testPath, err)
	}

	h.logger.Info("ingestion completed", map[string]interface{}{
		"totalRecords": len(records),
		"trainRecords": len(train),
		"testRecords":  len(test),
	})

	return &models.IngestionArtifact{
		FeatureStorePath: featureStorePath,
		TrainFilePath:    trainPath,
		TestFilePath:     testPath,
		TotalRecords:     len(records),
	}, nil
}
