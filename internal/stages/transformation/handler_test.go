// internal/stages/transformation/handler_test.go
package transformation

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"vehicle-insurance-pipeline/internal/common/logger"
	"vehicle-insurance-pipeline/internal/ml"
	"vehicle-insurance-pipeline/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// Test Helper Functions
// ==========================

func makeRecords(n int) []models.VehicleRecord {
	records := make([]models.VehicleRecord, n)
	for i := range records {
		gender := "Male"
		if i%2 == 0 {
			gender = "Female"
		}
		vehicleAge := "1-2 Year"
		switch i % 3 {
		case 0:
			vehicleAge = "< 1 Year"
		case 1:
			vehicleAge = "> 2 Years"
		}
		damage := "No"
		response := 0
		if i%4 == 0 {
			damage = "Yes"
			response = 1
		}
		records[i] = models.VehicleRecord{
			ID:                 int64(i + 1),
			Gender:             gender,
			Age:                20 + i%50,
			DrivingLicense:     1,
			RegionCode:         float64(i % 30),
			PreviouslyInsured:  i % 2,
			VehicleAge:         vehicleAge,
			VehicleDamage:      damage,
			AnnualPremium:      20000 + float64(i)*500,
			PolicySalesChannel: float64(26 + i%100),
			Vintage:            50 + i*2,
			Response:           response,
		}
	}
	return records
}

func setup(t *testing.T, records []models.VehicleRecord) (*Handler, *models.IngestionArtifact) {
	dir := t.TempDir()
	trainPath := filepath.Join(dir, "train.csv")
	testPath := filepath.Join(dir, "test.csv")

	split := len(records) * 3 / 4
	require.NoError(t, models.WriteRecordsCSV(trainPath, records[:split]))
	require.NoError(t, models.WriteRecordsCSV(testPath, records[split:]))

	cfg := &Config{ArtifactsDir: dir, Seed: 42}
	h := NewHandler(cfg, logger.NewTestLogger(t))
	return h, &models.IngestionArtifact{TrainFilePath: trainPath, TestFilePath: testPath}
}

func validOK() *models.ValidationArtifact {
	return &models.ValidationArtifact{Status: true}
}

// ==========================
// Core Functionality Tests
// ==========================

func TestHandler_Execute_Success(t *testing.T) {
	h, ingestion := setup(t, makeRecords(80))

	out, err := h.Execute(context.Background(), validOK(), ingestion)
	require.NoError(t, err)

	assert.FileExists(t, out.PreprocessorPath)
	assert.FileExists(t, out.TrainArrayPath)
	assert.FileExists(t, out.TestArrayPath)

	matrix, err := models.ReadMatrixCSV(out.TrainArrayPath)
	require.NoError(t, err)
	require.NotEmpty(t, matrix)
	// 11 features plus the label column
	assert.Len(t, matrix[0], models.NumFeatures+1)

	for _, row := range matrix {
		label := row[len(row)-1]
		assert.Contains(t, []float64{0, 1}, label)
	}
}

func TestHandler_Execute_PreprocessorRoundTrip(t *testing.T) {
	h, ingestion := setup(t, makeRecords(80))

	out, err := h.Execute(context.Background(), validOK(), ingestion)
	require.NoError(t, err)

	data, err := os.ReadFile(out.PreprocessorPath)
	require.NoError(t, err)

	var p ml.Preprocessor
	require.NoError(t, json.Unmarshal(data, &p))

	assert.Equal(t, models.FeatureColumns, p.Columns)
	require.Contains(t, p.Standard, "Age")
	require.Contains(t, p.Standard, "Vintage")
	require.Contains(t, p.MinMax, "Annual_Premium")
	assert.NotZero(t, p.Standard["Age"].Std)
	assert.Greater(t, p.MinMax["Annual_Premium"].Max, p.MinMax["Annual_Premium"].Min)
}

func TestHandler_Execute_AnnualPremiumScaledIntoUnitRange(t *testing.T) {
	h, ingestion := setup(t, makeRecords(80))

	out, err := h.Execute(context.Background(), validOK(), ingestion)
	require.NoError(t, err)

	matrix, err := models.ReadMatrixCSV(out.TrainArrayPath)
	require.NoError(t, err)

	premiumIdx := -1
	for i, c := range models.FeatureColumns {
		if c == "Annual_Premium" {
			premiumIdx = i
		}
	}
	require.GreaterOrEqual(t, premiumIdx, 0)

	// SMOTE interpolates between samples, so values stay inside the fitted range.
	for _, row := range matrix {
		assert.GreaterOrEqual(t, row[premiumIdx], -0.01)
		assert.LessOrEqual(t, row[premiumIdx], 1.01)
	}
}

func TestHandler_Execute_RefusesInvalidDataset(t *testing.T) {
	h, ingestion := setup(t, makeRecords(20))

	invalid := &models.ValidationArtifact{Status: false, Message: "column count mismatch"}
	_, err := h.Execute(context.Background(), invalid, ingestion)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "INVALID_DATASET")
}
