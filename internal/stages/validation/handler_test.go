// internal/stages/validation/handler_test.go
package validation

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"vehicle-insurance-pipeline/internal/common/logger"
	"vehicle-insurance-pipeline/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// Test Helper Functions
// ==========================

const testSchemaYAML = `columns:
  - id
  - Gender
  - Age
  - Driving_License
  - Region_Code
  - Previously_Insured
  - Vehicle_Age
  - Vehicle_Damage
  - Annual_Premium
  - Policy_Sales_Channel
  - Vintage
  - Response
numerical_columns:
  - Age
  - Annual_Premium
  - Vintage
categorical_columns:
  - Gender
  - Vehicle_Age
  - Vehicle_Damage
`

const testRecordSchemaJSON = `{
  "type": "object",
  "required": ["Gender", "Age", "Driving_License", "Vehicle_Age", "Vehicle_Damage", "Annual_Premium"],
  "properties": {
    "Gender": {"enum": ["Male", "Female"]},
    "Age": {"type": "integer", "minimum": 18, "maximum": 100},
    "Driving_License": {"enum": [0, 1]},
    "Previously_Insured": {"enum": [0, 1]},
    "Vehicle_Age": {"enum": ["< 1 Year", "1-2 Year", "> 2 Years"]},
    "Vehicle_Damage": {"enum": ["Yes", "No"]},
    "Annual_Premium": {"type": "number", "exclusiveMinimum": 0}
  }
}`

func testRecord(id int64, age int) models.VehicleRecord {
	return models.VehicleRecord{
		ID:                 id,
		Gender:             "Female",
		Age:                age,
		DrivingLicense:     1,
		RegionCode:         28,
		PreviouslyInsured:  0,
		VehicleAge:         "< 1 Year",
		VehicleDamage:      "No",
		AnnualPremium:      25000,
		PolicySalesChannel: 26,
		Vintage:            150,
		Response:           0,
	}
}

func setupArtifacts(t *testing.T, records []models.VehicleRecord, schemaYAML string) (*Config, *models.IngestionArtifact) {
	dir := t.TempDir()

	schemaPath := filepath.Join(dir, "schema.yaml")
	require.NoError(t, os.WriteFile(schemaPath, []byte(schemaYAML), 0o644))
	recordSchemaPath := filepath.Join(dir, "record-schema.json")
	require.NoError(t, os.WriteFile(recordSchemaPath, []byte(testRecordSchemaJSON), 0o644))

	trainPath := filepath.Join(dir, "train.csv")
	testPath := filepath.Join(dir, "test.csv")
	require.NoError(t, models.WriteRecordsCSV(trainPath, records))
	require.NoError(t, models.WriteRecordsCSV(testPath, records[:1]))

	cfg := &Config{
		SchemaFile:       schemaPath,
		RecordSchemaFile: recordSchemaPath,
		ArtifactsDir:     dir,
	}
	art := &models.IngestionArtifact{
		TrainFilePath: trainPath,
		TestFilePath:  testPath,
		TotalRecords:  len(records),
	}
	return cfg, art
}

// ==========================
// Core Functionality Tests
// ==========================

func TestHandler_Execute_ValidDataset(t *testing.T) {
	records := []models.VehicleRecord{testRecord(1, 30), testRecord(2, 45), testRecord(3, 60)}
	cfg, art := setupArtifacts(t, records, testSchemaYAML)

	h := NewHandler(cfg, logger.NewTestLogger(t))
	out, err := h.Execute(context.Background(), art)
	require.NoError(t, err)

	assert.True(t, out.Status)
	assert.Empty(t, out.Message)
	assert.FileExists(t, out.ReportFilePath)
}

func TestHandler_Execute_OutOfRangeRecord(t *testing.T) {
	bad := testRecord(2, 150) // above the Age maximum
	records := []models.VehicleRecord{testRecord(1, 30), bad}
	cfg, art := setupArtifacts(t, records, testSchemaYAML)

	h := NewHandler(cfg, logger.NewTestLogger(t))
	out, err := h.Execute(context.Background(), art)
	require.NoError(t, err)

	assert.False(t, out.Status)
	assert.Contains(t, out.Message, "records failed schema validation")

	data, err := os.ReadFile(out.ReportFilePath)
	require.NoError(t, err)
	var report Report
	require.NoError(t, json.Unmarshal(data, &report))
	assert.False(t, report.Status)
	assert.NotZero(t, report.RecordErrorCount)
	assert.NotEmpty(t, report.RecordErrors)
}

func TestHandler_Execute_MissingColumn(t *testing.T) {
	records := []models.VehicleRecord{testRecord(1, 30)}
	cfg, art := setupArtifacts(t, records, testSchemaYAML)

	// Customer_Tenure is declared numerical but absent from the CSV.
	extended := `columns:
  - id
  - Gender
  - Age
  - Driving_License
  - Region_Code
  - Previously_Insured
  - Vehicle_Age
  - Vehicle_Damage
  - Annual_Premium
  - Policy_Sales_Channel
  - Vintage
  - Response
  - Customer_Tenure
numerical_columns:
  - Age
  - Customer_Tenure
categorical_columns:
  - Gender
`
	require.NoError(t, os.WriteFile(cfg.SchemaFile, []byte(extended), 0o644))

	h := NewHandler(cfg, logger.NewTestLogger(t))
	out, err := h.Execute(context.Background(), art)
	require.NoError(t, err)

	assert.False(t, out.Status)
	assert.Contains(t, out.Message, "column count mismatch")
	assert.Contains(t, out.Message, "Customer_Tenure")
}

func TestHandler_Execute_SchemaFileMissing(t *testing.T) {
	records := []models.VehicleRecord{testRecord(1, 30)}
	cfg, art := setupArtifacts(t, records, testSchemaYAML)
	cfg.SchemaFile = filepath.Join(t.TempDir(), "nope.yaml")

	h := NewHandler(cfg, logger.NewTestLogger(t))
	_, err := h.Execute(context.Background(), art)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SCHEMA_FILE_INVALID")
}
