// internal/stages/validation/handler.go
package validation

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	stderrors "vehicle-insurance-pipeline/internal/common/errors"
	"vehicle-insurance-pipeline/internal/common/logger"
	"vehicle-insurance-pipeline/internal/models"

	"github.com/xeipuuv/gojsonschema"
	"gopkg.in/yaml.v3"
)

const StageName = "validation"

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

// Execute checks the train and test splits against the dataset schema and
// validates every record against the JSON record schema. A failed validation
// is not an error: the artifact carries Status=false and the accumulated
// message, and downstream stages refuse to run.
func (h *Handler) Execute(ctx context.Context, ingestion *models.IngestionArtifact) (*models.ValidationArtifact, error) {
	schema, err := h.loadSchema()
	if err != nil {
		return nil, err
	}

	recordSchema, err := h.loadRecordSchema()
	if err != nil {
		return nil, err
	}

	report := Report{
		Status:           true,
		ColumnCountValid: true,
	}

	for _, path := range []string{ingestion.TrainFilePath, ingestion.TestFilePath} {
		if err := h.validateFile(ctx, path, schema, recordSchema, &report); err != nil {
			return nil, err
		}
	}

	var problems []string
	if !report.ColumnCountValid {
		problems = append(problems, "column count mismatch")
	}
	if len(report.MissingNumerical) > 0 {
		problems = append(problems, fmt.Sprintf("missing numerical columns: %s", strings.Join(report.MissingNumerical, ", ")))
	}
	if len(report.MissingCategorical) > 0 {
		problems = append(problems, fmt.Sprintf("missing categorical columns: %s", strings.Join(report.MissingCategorical, ", ")))
	}
	if report.RecordErrorCount > 0 {
		problems = append(problems, fmt.Sprintf("%d records failed schema validation", report.RecordErrorCount))
	}

	if len(problems) > 0 {
		report.Status = false
		report.Message = strings.Join(problems, "; ")
	}

	reportPath := filepath.Join(h.config.ArtifactsDir, reportFile)
	if err := h.writeReport(reportPath, &report); err != nil {
		return nil, err
	}

	h.logger.Info("validation completed", map[string]interface{}{
		"status":       report.Status,
		"recordErrors": report.RecordErrorCount,
		"report":       reportPath,
	})

	return &models.ValidationArtifact{
		Status:         report.Status,
		Message:        report.Message,
		ReportFilePath: reportPath,
	}, nil
}

func (h *Handler) loadSchema() (*DatasetSchema, error) {
	data, err := os.ReadFile(h.config.SchemaFile)
	if err != nil {
		return nil, stderrors.NewSchemaFileInvalidError(h.config.SchemaFile, err)
	}

	var schema DatasetSchema
	if err := yaml.Unmarshal(data, &schema); err != nil {
		return nil, stderrors.NewSchemaFileInvalidError(h.config.SchemaFile, err)
	}
	if len(schema.Columns) == 0 {
		return nil, stderrors.NewSchemaFileInvalidError(h.config.SchemaFile, fmt.Errorf("no columns declared"))
	}

	return &schema, nil
}

func (h *Handler) loadRecordSchema() (*gojsonschema.Schema, error) {
	data, err := os.ReadFile(h.config.RecordSchemaFile)
	if err != nil {
		return nil, stderrors.NewSchemaFileInvalidError(h.config.RecordSchemaFile, err)
	}

	schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(string(data)))
	if err != nil {
		return nil, stderrors.NewSchemaFileInvalidError(h.config.RecordSchemaFile, err)
	}

	return schema, nil
}

func (h *Handler) validateFile(ctx context.Context, path string, schema *DatasetSchema, recordSchema *gojsonschema.Schema, report *Report) error {
	header, err := models.ReadCSVColumns(path)
	if err != nil {
		return stderrors.NewArtifactReadFailedError(path, err)
	}

	if len(header) != len(schema.Columns) {
		report.ColumnCountValid = false
	}

	present := make(map[string]bool, len(header))
	for _, c := range header {
		present[c] = true
	}
	for _, c := range schema.NumericalColumns {
		if !present[c] && !contains(report.MissingNumerical, c) {
			report.MissingNumerical = append(report.MissingNumerical, c)
		}
	}
	for _, c := range schema.CategoricalColumns {
		if !present[c] && !contains(report.MissingCategorical, c) {
			report.MissingCategorical = append(report.MissingCategorical, c)
		}
	}

	records, err := models.ReadRecordsCSV(path)
	if err != nil {
		return stderrors.NewArtifactReadFailedError(path, err)
	}

	file := filepath.Base(path)
	for i, rec := range records {
		if err := ctx.Err(); err != nil {
			return err
		}

		result, err := recordSchema.Validate(gojsonschema.NewGoLoader(rec.ToMap()))
		if err != nil {
			return stderrors.NewSchemaValidationFailedError(err.Error())
		}
		if result.Valid() {
			continue
		}

		report.RecordErrorCount++
		if len(report.RecordErrors) < maxRecordErrors {
			var msgs []string
			for _, e := range result.Errors() {
				msgs = append(msgs, e.String())
			}
			report.RecordErrors = append(report.RecordErrors,
				fmt.Sprintf("%s row %d: %s", file, i+1, strings.Join(msgs, "; ")))
		}
	}

	return nil
}

func (h *Handler) writeReport(path string, report *Report) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return stderrors.NewArtifactWriteFailedError(path, err)
	}

	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return stderrors.NewArtifactWriteFailedError(path, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return stderrors.NewArtifactWriteFailedError(path, err)
	}
	return nil
}

func contains(list []string, v string) bool {
	for _, x := range list {
		if x == v {
			return true
		}
	}
	return false
}
