// internal/pipeline/training_test.go
package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	appconfig "vehicle-insurance-pipeline/internal/common/config"
	"vehicle-insurance-pipeline/internal/common/logger"
	"vehicle-insurance-pipeline/internal/registry"
	"vehicle-insurance-pipeline/internal/stages/evaluation"
	"vehicle-insurance-pipeline/internal/stages/ingestion"
	"vehicle-insurance-pipeline/internal/stages/pusher"
	"vehicle-insurance-pipeline/internal/stages/training"
	"vehicle-insurance-pipeline/internal/stages/transformation"
	"vehicle-insurance-pipeline/internal/stages/validation"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// Test Helper Functions
// ==========================

type memorySource struct {
	docs []map[string]interface{}
}

func (m *memorySource) FetchCollection(_ context.Context, _ string) ([]map[string]interface{}, error) {
	return m.docs, nil
}

type memoryReporter struct {
	indexed map[string]interface{}
}

func (m *memoryReporter) IndexDocument(_ context.Context, _ string, docID string, doc interface{}) error {
	if m.indexed == nil {
		m.indexed = map[string]interface{}{}
	}
	m.indexed[docID] = doc
	return nil
}

const pipelineSchemaYAML = `columns:
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

const pipelineRecordSchemaJSON = `{
  "type": "object",
  "required": ["Gender", "Age", "Annual_Premium"],
  "properties": {
    "Gender": {"enum": ["Male", "Female"]},
    "Age": {"type": "integer", "minimum": 18, "maximum": 100},
    "Annual_Premium": {"type": "number", "exclusiveMinimum": 0}
  }
}`

func syntheticDocs(n int) []map[string]interface{} {
	docs := make([]map[string]interface{}, n)
	for i := range docs {
		gender := "Male"
		if i%3 == 0 {
			gender = "Female"
		}
		damage := "No"
		response := 0
		if i%2 == 0 {
			damage = "Yes"
			response = 1
		}
		vehicleAge := "1-2 Year"
		if i%5 == 0 {
			vehicleAge = "< 1 Year"
		}
		docs[i] = map[string]interface{}{
			"id":                   i + 1,
			"Gender":               gender,
			"Age":                  20 + i%50,
			"Driving_License":      1,
			"Region_Code":          float64(i % 25),
			"Previously_Insured":   i % 2,
			"Vehicle_Age":          vehicleAge,
			"Vehicle_Damage":       damage,
			"Annual_Premium":       20000.0 + float64(i)*250,
			"Policy_Sales_Channel": 26.0,
			"Vintage":              60 + i,
			"Response":             response,
		}
	}
	return docs
}

func testPipelineConfig(t *testing.T) *appconfig.Config {
	dir := t.TempDir()

	schemaPath := filepath.Join(dir, "schema.yaml")
	require.NoError(t, os.WriteFile(schemaPath, []byte(pipelineSchemaYAML), 0o644))
	recordSchemaPath := filepath.Join(dir, "record-schema.json")
	require.NoError(t, os.WriteFile(recordSchemaPath, []byte(pipelineRecordSchemaJSON), 0o644))

	cfg := &appconfig.Config{}
	cfg.Pipeline.ArtifactsDir = filepath.Join(dir, "artifacts")
	cfg.Pipeline.TrainTestSplitRatio = 0.25
	cfg.Pipeline.Seed = 42
	cfg.Pipeline.ExpectedAccuracy = 0.7
	cfg.Pipeline.SchemaFile = schemaPath
	cfg.Pipeline.RecordSchemaFile = recordSchemaPath
	cfg.Pipeline.Forest.Estimators = 20
	cfg.Pipeline.Forest.MaxDepth = 6
	cfg.Pipeline.Forest.MinSamplesSplit = 2
	cfg.Pipeline.Forest.MinSamplesLeaf = 1
	cfg.Pipeline.Model.Bucket = "models"
	cfg.Pipeline.Model.Key = "model-registry/model.json"
	cfg.Database.MongoDB.Collection = "customers"
	cfg.Database.Elasticsearch.RunIndex = "pipeline-runs"
	return cfg
}

func newTestRunner(t *testing.T, cfg *appconfig.Config, docs []map[string]interface{}) (*Runner, *memoryReporter, *registry.FSStore) {
	log := logger.NewTestLogger(t)
	store := registry.NewFSStore(filepath.Join(t.TempDir(), "store"))
	reporter := &memoryReporter{}

	deps := Deps{
		Config:         cfg,
		Logger:         log,
		Ingestion:      ingestion.NewHandler(ingestion.LoadConfig(cfg), &memorySource{docs: docs}, log),
		Validation:     validation.NewHandler(validation.LoadConfig(cfg), log),
		Transformation: transformation.NewHandler(transformation.LoadConfig(cfg), log),
		Training:       training.NewHandler(training.LoadConfig(cfg), log),
		Evaluation:     evaluation.NewHandler(evaluation.LoadConfig(cfg), store, log),
		Pusher:         pusher.NewHandler(pusher.LoadConfig(cfg), store, log),
		Reporter:       reporter,
	}
	return NewRunner(deps), reporter, store
}

// ==========================
// Core Functionality Tests
// ==========================

func TestRunner_Run_FullPipeline(t *testing.T) {
	cfg := testPipelineConfig(t)
	runner, reporter, store := newTestRunner(t, cfg, syntheticDocs(120))

	report, err := runner.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "success", report.Outcome)
	assert.Equal(t, 120, report.IngestedCount)
	assert.True(t, report.ModelAccepted)
	assert.True(t, report.ModelPushed)
	assert.Len(t, report.Stages, 6)
	for _, s := range report.Stages {
		assert.Equal(t, "completed", s.Status, s.Stage)
	}

	present, err := store.IsPresent(context.Background(), cfg.Pipeline.Model.Key)
	require.NoError(t, err)
	assert.True(t, present)

	require.Contains(t, reporter.indexed, report.RunID)
}

func TestRunner_Run_ValidationFailureStopsTransformation(t *testing.T) {
	cfg := testPipelineConfig(t)
	docs := syntheticDocs(40)
	for i := range docs {
		docs[i]["Age"] = 150 // out of range for every record
	}
	runner, _, store := newTestRunner(t, cfg, docs)

	report, err := runner.Run(context.Background())
	require.Error(t, err)

	assert.Equal(t, "failed", report.Outcome)
	assert.Contains(t, err.Error(), "INVALID_DATASET")

	present, err := store.IsPresent(context.Background(), cfg.Pipeline.Model.Key)
	require.NoError(t, err)
	assert.False(t, present)
}

func TestRunner_Run_DisabledStageIsSkipped(t *testing.T) {
	cfg := testPipelineConfig(t)
	cfg.Stages = map[string]appconfig.StageConfig{
		"pusher": {Enabled: false, Timeout: 60000, MaxRetries: 1},
	}
	runner, _, store := newTestRunner(t, cfg, syntheticDocs(80))

	report, err := runner.Run(context.Background())
	require.NoError(t, err)

	var pusherResult string
	for _, s := range report.Stages {
		if s.Stage == "pusher" {
			pusherResult = s.Status
		}
	}
	assert.Equal(t, "skipped", pusherResult)

	present, err := store.IsPresent(context.Background(), cfg.Pipeline.Model.Key)
	require.NoError(t, err)
	assert.False(t, present)
}
