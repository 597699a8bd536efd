// internal/models/artifacts.go
package models

import "time"

// Artifacts passed between pipeline stages. All are JSON-serializable so a
// run can be inspected or resumed from disk.

type IngestionArtifact struct {
	FeatureStorePath string `json:"feature_store_path"`
	TrainFilePath    string `json:"train_file_path"`
	TestFilePath     string `json:"test_file_path"`
	TotalRecords     int    `json:"total_records"`
}

type ValidationArtifact struct {
	Status         bool   `json:"status"`
	Message        string `json:"message"`
	ReportFilePath string `json:"report_file_path"`
}

type TransformationArtifact struct {
	PreprocessorPath string `json:"preprocessor_path"`
	TrainArrayPath   string `json:"train_array_path"`
	TestArrayPath    string `json:"test_array_path"`
}

// ClassificationMetrics summarizes model quality on a labelled dataset.
type ClassificationMetrics struct {
	Accuracy  float64 `json:"accuracy"`
	Precision float64 `json:"precision"`
	Recall    float64 `json:"recall"`
	F1        float64 `json:"f1"`
}

type TrainerArtifact struct {
	ModelPath string                `json:"model_path"`
	Metrics   ClassificationMetrics `json:"metrics"`
}

type EvaluationArtifact struct {
	IsAccepted       bool    `json:"is_accepted"`
	S3ModelKey       string  `json:"s3_model_key"`
	TrainedModelPath string  `json:"trained_model_path"`
	F1Delta          float64 `json:"f1_delta"`
	CandidateF1      float64 `json:"candidate_f1"`
	ProductionF1     float64 `json:"production_f1"`
}

type PusherArtifact struct {
	Bucket string `json:"bucket"`
	Key    string `json:"key"`
	Pushed bool   `json:"pushed"`
}

// StageResult records one stage execution inside a run report.
type StageResult struct {
	Stage      string    `json:"stage"`
	Status     string    `json:"status"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
	DurationMS int64     `json:"duration_ms"`
	Error      string    `json:"error,omitempty"`
}

// RunReport is the final document indexed into Elasticsearch per run.
type RunReport struct {
	RunID          string                 `json:"run_id"`
	StartedAt      time.Time              `json:"started_at"`
	FinishedAt     time.Time              `json:"finished_at"`
	Outcome        string                 `json:"outcome"`
	Stages         []StageResult          `json:"stages"`
	Metrics        *ClassificationMetrics `json:"metrics,omitempty"`
	ModelAccepted  bool                   `json:"model_accepted"`
	ModelPushed    bool                   `json:"model_pushed"`
	ModelBucket    string                 `json:"model_bucket,omitempty"`
	ModelKey       string                 `json:"model_key,omitempty"`
	IngestedCount  int                    `json:"ingested_count"`
	FailureMessage string                 `json:"failure_message,omitempty"`
}
