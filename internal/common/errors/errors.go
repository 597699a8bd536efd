// Package errors provides standardized error handling for the training
// pipeline and the prediction service.
package errors

import (
	"fmt"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	ErrCodeFeatureStoreConnectionFailed ErrorCode = "FEATURE_STORE_CONNECTION_FAILED"
	ErrCodeFeatureStoreFetchFailed      ErrorCode = "FEATURE_STORE_FETCH_FAILED"
	ErrCodeEmptyDataset                 ErrorCode = "EMPTY_DATASET"

	ErrCodeSchemaValidationFailed ErrorCode = "SCHEMA_VALIDATION_FAILED"
	ErrCodeSchemaFileInvalid      ErrorCode = "SCHEMA_FILE_INVALID"

	ErrCodeTransformationFailed ErrorCode = "TRANSFORMATION_FAILED"
	ErrCodeInvalidDataset       ErrorCode = "INVALID_DATASET"

	ErrCodeTrainingFailed          ErrorCode = "TRAINING_FAILED"
	ErrCodeAccuracyBelowThreshold  ErrorCode = "ACCURACY_BELOW_THRESHOLD"
	ErrCodeModelSerializationError ErrorCode = "MODEL_SERIALIZATION_ERROR"

	ErrCodeModelRegistryUnavailable ErrorCode = "MODEL_REGISTRY_UNAVAILABLE"
	ErrCodeModelNotFound            ErrorCode = "MODEL_NOT_FOUND"
	ErrCodeModelUploadFailed        ErrorCode = "MODEL_UPLOAD_FAILED"

	ErrCodeDatabaseConnectionFailed ErrorCode = "DATABASE_CONNECTION_FAILED"
	ErrCodeAuditInsertFailed        ErrorCode = "AUDIT_INSERT_FAILED"

	ErrCodeCacheUnavailable ErrorCode = "CACHE_UNAVAILABLE"

	ErrCodeReportIndexFailed ErrorCode = "REPORT_INDEX_FAILED"

	ErrCodeNotificationSendFailed ErrorCode = "NOTIFICATION_SEND_FAILED"

	ErrCodePredictionFailed    ErrorCode = "PREDICTION_FAILED"
	ErrCodeInvalidInput        ErrorCode = "INVALID_INPUT"
	ErrCodeModelNotLoaded      ErrorCode = "MODEL_NOT_LOADED"
	ErrCodeStageTimeout        ErrorCode = "STAGE_TIMEOUT"
	ErrCodeStageDisabled       ErrorCode = "STAGE_DISABLED"
	ErrCodeArtifactReadFailed  ErrorCode = "ARTIFACT_READ_FAILED"
	ErrCodeArtifactWriteFailed ErrorCode = "ARTIFACT_WRITE_FAILED"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

func (e *StandardError) Error() string {
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

// ==========================
// 2. Error Constructors
// ==========================

// NewFeatureStoreConnectionFailedError creates a retryable MongoDB connection error.
func NewFeatureStoreConnectionFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeFeatureStoreConnectionFailed,
		Message:   "Feature store connection error",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewFeatureStoreFetchFailedError creates a retryable fetch error.
func NewFeatureStoreFetchFailedError(collection string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeFeatureStoreFetchFailed,
		Message:   "Failed to fetch collection from feature store",
		Details:   fmt.Sprintf("collection: %s, error: %s", collection, err.Error()),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewEmptyDatasetError creates a non-retryable empty dataset error.
func NewEmptyDatasetError(collection string) *StandardError {
	return &StandardError{
		Code:      ErrCodeEmptyDataset,
		Message:   "Feature store collection contains no records",
		Details:   fmt.Sprintf("collection: %s", collection),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewSchemaValidationFailedError creates a non-retryable schema validation error.
func NewSchemaValidationFailedError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeSchemaValidationFailed,
		Message:   "Dataset failed schema validation",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewSchemaFileInvalidError creates a non-retryable schema file error.
func NewSchemaFileInvalidError(path string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeSchemaFileInvalid,
		Message:   "Schema file could not be parsed",
		Details:   fmt.Sprintf("path: %s, error: %s", path, err.Error()),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewTransformationFailedError creates a non-retryable transformation error.
func NewTransformationFailedError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeTransformationFailed,
		Message:   "Data transformation failed",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewInvalidDatasetError creates a non-retryable error for data that failed validation.
func NewInvalidDatasetError(message string) *StandardError {
	return &StandardError{
		Code:      ErrCodeInvalidDataset,
		Message:   "Dataset rejected by validation stage",
		Details:   message,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewTrainingFailedError creates a non-retryable training error.
func NewTrainingFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeTrainingFailed,
		Message:   "Model training failed",
		Details:   err.Error(),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewAccuracyBelowThresholdError creates a non-retryable threshold error.
func NewAccuracyBelowThresholdError(got, want float64) *StandardError {
	return &StandardError{
		Code:      ErrCodeAccuracyBelowThreshold,
		Message:   "Trained model failed to reach the expected accuracy",
		Details:   fmt.Sprintf("accuracy: %.4f, expected: %.4f", got, want),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewModelSerializationError creates a non-retryable serialization error.
func NewModelSerializationError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeModelSerializationError,
		Message:   "Model artifact could not be serialized",
		Details:   err.Error(),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewModelRegistryUnavailableError creates a retryable registry error.
func NewModelRegistryUnavailableError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeModelRegistryUnavailable,
		Message:   "Model registry unavailable",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewModelNotFoundError creates a non-retryable missing model error.
func NewModelNotFoundError(key string) *StandardError {
	return &StandardError{
		Code:      ErrCodeModelNotFound,
		Message:   "Model not found in registry",
		Details:   fmt.Sprintf("key: %s", key),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewModelUploadFailedError creates a retryable upload error.
func NewModelUploadFailedError(key string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeModelUploadFailed,
		Message:   "Model upload to registry failed",
		Details:   fmt.Sprintf("key: %s, error: %s", key, err.Error()),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewDatabaseConnectionFailedError creates a retryable database connection error.
func NewDatabaseConnectionFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeDatabaseConnectionFailed,
		Message:   "Database connection error",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewAuditInsertFailedError creates a retryable audit insert error.
func NewAuditInsertFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeAuditInsertFailed,
		Message:   "Prediction audit insert failed",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewCacheUnavailableError creates a retryable cache error.
func NewCacheUnavailableError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeCacheUnavailable,
		Message:   "Prediction cache unavailable",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewReportIndexFailedError creates a retryable Elasticsearch error.
func NewReportIndexFailedError(index string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeReportIndexFailed,
		Message:   "Run report indexing failed",
		Details:   fmt.Sprintf("index: %s, error: %s", index, err.Error()),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewNotificationSendFailedError creates a retryable notification error.
func NewNotificationSendFailedError(channel string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeNotificationSendFailed,
		Message:   "Run notification failed",
		Details:   fmt.Sprintf("channel: %s, error: %s", channel, err.Error()),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewPredictionFailedError creates a non-retryable prediction error.
func NewPredictionFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodePredictionFailed,
		Message:   "Prediction failed",
		Details:   err.Error(),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewInvalidInputError creates a non-retryable input validation error.
func NewInvalidInputError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeInvalidInput,
		Message:   "Input failed validation",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewModelNotLoadedError creates a retryable missing model error for the server.
func NewModelNotLoadedError() *StandardError {
	return &StandardError{
		Code:      ErrCodeModelNotLoaded,
		Message:   "No model loaded",
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewStageTimeoutError creates a retryable timeout error.
func NewStageTimeoutError(stage string) *StandardError {
	return &StandardError{
		Code:      ErrCodeStageTimeout,
		Message:   "Pipeline stage timed out",
		Details:   fmt.Sprintf("stage: %s", stage),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewArtifactReadFailedError creates a non-retryable artifact read error.
func NewArtifactReadFailedError(path string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeArtifactReadFailed,
		Message:   "Stage artifact could not be read",
		Details:   fmt.Sprintf("path: %s, error: %s", path, err.Error()),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewArtifactWriteFailedError creates a non-retryable artifact write error.
func NewArtifactWriteFailedError(path string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeArtifactWriteFailed,
		Message:   "Stage artifact could not be written",
		Details:   fmt.Sprintf("path: %s, error: %s", path, err.Error()),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// ==========================
// 3. Retry / Category Tables
// ==========================

// GetRetryCount returns how many times an error code should be retried.
func GetRetryCount(code ErrorCode) int {
	switch code {
	case ErrCodeFeatureStoreConnectionFailed,
		ErrCodeFeatureStoreFetchFailed,
		ErrCodeModelRegistryUnavailable,
		ErrCodeModelUploadFailed,
		ErrCodeDatabaseConnectionFailed,
		ErrCodeCacheUnavailable,
		ErrCodeReportIndexFailed,
		ErrCodeNotificationSendFailed,
		ErrCodeStageTimeout:
		return 3
	default:
		return 0
	}
}

// GetErrorCategory groups error codes for logging and metrics labels.
func GetErrorCategory(code ErrorCode) string {
	switch code {
	case ErrCodeFeatureStoreConnectionFailed, ErrCodeFeatureStoreFetchFailed, ErrCodeEmptyDataset:
		return "ingestion"
	case ErrCodeSchemaValidationFailed, ErrCodeSchemaFileInvalid:
		return "validation"
	case ErrCodeTransformationFailed, ErrCodeInvalidDataset:
		return "transformation"
	case ErrCodeTrainingFailed, ErrCodeAccuracyBelowThreshold, ErrCodeModelSerializationError:
		return "training"
	case ErrCodeModelRegistryUnavailable, ErrCodeModelNotFound, ErrCodeModelUploadFailed:
		return "registry"
	case ErrCodeDatabaseConnectionFailed, ErrCodeAuditInsertFailed, ErrCodeCacheUnavailable, ErrCodeReportIndexFailed:
		return "infrastructure"
	case ErrCodeNotificationSendFailed:
		return "notification"
	case ErrCodePredictionFailed, ErrCodeInvalidInput, ErrCodeModelNotLoaded:
		return "prediction"
	default:
		return "internal"
	}
}
