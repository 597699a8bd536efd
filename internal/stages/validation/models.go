// internal/stages/validation/models.go
package validation

const reportFile = "validation_report.json"

// maxRecordErrors caps how many row-level problems land in the report.
const maxRecordErrors = 50

// DatasetSchema is the dataset contract loaded from the schema YAML.
type DatasetSchema struct {
	Columns            []string `yaml:"columns"`
	NumericalColumns   []string `yaml:"numerical_columns"`
	CategoricalColumns []string `yaml:"categorical_columns"`
}

// Report is the JSON validation report written per run.
type Report struct {
	Status             bool     `json:"status"`
	ColumnCountValid   bool     `json:"column_count_valid"`
	MissingNumerical   []string `json:"missing_numerical_columns"`
	MissingCategorical []string `json:"missing_categorical_columns"`
	RecordErrors       []string `json:"record_errors"`
	RecordErrorCount   int      `json:"record_error_count"`
	Message            string   `json:"message"`
}
