// internal/stages/evaluation/handler_test.go
package evaluation

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"vehicle-insurance-pipeline/internal/common/logger"
	"vehicle-insurance-pipeline/internal/ml"
	"vehicle-insurance-pipeline/internal/models"
	"vehicle-insurance-pipeline/internal/registry"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// Test Helper Functions
// ==========================

const modelKey = "model-registry/model.json"

// damageRecords builds a dataset where the label follows Vehicle_Damage.
func damageRecords(n int) []models.VehicleRecord {
	records := make([]models.VehicleRecord, n)
	for i := range records {
		damage := "No"
		response := 0
		if i%2 == 0 {
			damage = "Yes"
			response = 1
		}
		records[i] = models.VehicleRecord{
			ID:                 int64(i + 1),
			Gender:             "Male",
			Age:                25 + i%40,
			DrivingLicense:     1,
			RegionCode:         float64(i % 20),
			PreviouslyInsured:  0,
			VehicleAge:         "1-2 Year",
			VehicleDamage:      damage,
			AnnualPremium:      25000 + float64(i)*300,
			PolicySalesChannel: 26,
			Vintage:            100 + i,
			Response:           response,
		}
	}
	return records
}

func trainModel(t *testing.T, records []models.VehicleRecord, seed int64) *ml.Model {
	features := make([][]float64, len(records))
	labels := make([]int, len(records))
	for i, r := range records {
		features[i] = r.Features()
		labels[i] = r.Response
	}

	p := ml.NewPreprocessor(models.FeatureColumns, []string{"Age", "Vintage"}, []string{"Annual_Premium"})
	require.NoError(t, p.Fit(features))
	scaled, err := p.TransformMatrix(features)
	require.NoError(t, err)

	forest, err := ml.FitForest(scaled, labels, ml.ForestParams{
		Estimators: 15, MaxDepth: 5, MinSamplesSplit: 2, MinSamplesLeaf: 1, Seed: seed,
	})
	require.NoError(t, err)

	return ml.NewModel(p, forest)
}

// brokenModel always predicts class 0 regardless of input.
func brokenModel(t *testing.T) *ml.Model {
	records := damageRecords(40)
	for i := range records {
		records[i].Response = 0
	}
	records[0].Response = 1 // avoid a degenerate single-class fit
	return trainModel(t, records, 99)
}

func setup(t *testing.T, records []models.VehicleRecord) (*models.IngestionArtifact, *models.TrainerArtifact, *registry.FSStore, string) {
	dir := t.TempDir()

	testPath := filepath.Join(dir, "test.csv")
	require.NoError(t, models.WriteRecordsCSV(testPath, records))

	candidate := trainModel(t, records, 42)
	data, err := candidate.Marshal()
	require.NoError(t, err)
	modelPath := filepath.Join(dir, "model.json")
	require.NoError(t, os.WriteFile(modelPath, data, 0o644))

	store := registry.NewFSStore(filepath.Join(dir, "store"))
	ingestion := &models.IngestionArtifact{TestFilePath: testPath}
	trainer := &models.TrainerArtifact{ModelPath: modelPath}
	return ingestion, trainer, store, dir
}

// ==========================
// Core Functionality Tests
// ==========================

func TestHandler_Execute_AcceptsWhenNoProductionModel(t *testing.T) {
	records := damageRecords(60)
	ingestion, trainer, store, _ := setup(t, records)

	h := NewHandler(&Config{ModelKey: modelKey}, store, logger.NewTestLogger(t))
	out, err := h.Execute(context.Background(), ingestion, trainer)
	require.NoError(t, err)

	assert.True(t, out.IsAccepted)
	assert.Zero(t, out.ProductionF1)
	assert.Greater(t, out.CandidateF1, 0.9)
	assert.Equal(t, modelKey, out.S3ModelKey)
}

func TestHandler_Execute_AcceptsWhenCandidateBeatsProduction(t *testing.T) {
	records := damageRecords(60)
	ingestion, trainer, store, _ := setup(t, records)

	weak := brokenModel(t)
	data, err := weak.Marshal()
	require.NoError(t, err)
	require.NoError(t, store.Save(context.Background(), modelKey, data))

	h := NewHandler(&Config{ModelKey: modelKey}, store, logger.NewTestLogger(t))
	out, err := h.Execute(context.Background(), ingestion, trainer)
	require.NoError(t, err)

	assert.True(t, out.IsAccepted)
	assert.Greater(t, out.F1Delta, 0.0)
}

func TestHandler_Execute_RejectsWhenProductionIsAsGood(t *testing.T) {
	records := damageRecords(60)
	ingestion, trainer, store, _ := setup(t, records)

	// Production is the same model, so the candidate cannot strictly beat it.
	data, err := os.ReadFile(trainer.ModelPath)
	require.NoError(t, err)
	require.NoError(t, store.Save(context.Background(), modelKey, data))

	h := NewHandler(&Config{ModelKey: modelKey}, store, logger.NewTestLogger(t))
	out, err := h.Execute(context.Background(), ingestion, trainer)
	require.NoError(t, err)

	assert.False(t, out.IsAccepted)
	assert.Zero(t, out.F1Delta)
}

func TestHandler_Execute_MissingCandidateModel(t *testing.T) {
	records := damageRecords(20)
	ingestion, trainer, store, dir := setup(t, records)
	trainer.ModelPath = filepath.Join(dir, "missing.json")

	h := NewHandler(&Config{ModelKey: modelKey}, store, logger.NewTestLogger(t))
	_, err := h.Execute(context.Background(), ingestion, trainer)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ARTIFACT_READ_FAILED")
}
