// internal/common/errors/handler.go
package errors

import (
	"context"
	"time"
)

// ErrorHandler handles stage errors with standardized error handling
type ErrorHandler struct {
	logger Logger
}

type Logger interface {
	Error(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
}

func NewErrorHandler(logger Logger) *ErrorHandler {
	return &ErrorHandler{logger: logger}
}

// HandleStageError normalizes, logs, and classifies a stage failure. It
// returns the normalized error and whether the stage should be retried.
func (h *ErrorHandler) HandleStageError(ctx context.Context, stage string, attempt int, err error) (*StandardError, bool) {
	stdErr := h.normalizeError(err)

	retries := GetRetryCount(stdErr.Code)
	retry := stdErr.Retryable && attempt < retries

	h.logError(stage, attempt, stdErr, retry)
	return stdErr, retry
}

// normalizeError ensures we always have a StandardError
func (h *ErrorHandler) normalizeError(err error) *StandardError {
	if stdErr, ok := err.(*StandardError); ok {
		return stdErr
	}
	return &StandardError{
		Code:      "INTERNAL_ERROR",
		Message:   "Unexpected error",
		Details:   err.Error(),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

func (h *ErrorHandler) logError(stage string, attempt int, stdErr *StandardError, retry bool) {
	fields := map[string]interface{}{
		"stage":         stage,
		"attempt":       attempt,
		"errorCode":     string(stdErr.Code),
		"message":       stdErr.Message,
		"details":       stdErr.Details,
		"retryable":     stdErr.Retryable,
		"maxRetries":    GetRetryCount(stdErr.Code),
		"errorCategory": GetErrorCategory(stdErr.Code),
	}

	if retry {
		h.logger.Warn("Stage failed, retrying", fields)
		return
	}
	h.logger.Error("Stage failed", fields)
}
