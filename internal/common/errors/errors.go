// Package errors provides the standardized error taxonomy for the risk engine.
package errors

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	ErrCodeInvalidProfile           ErrorCode = "INVALID_PROFILE"
	ErrCodeStudentNotFound          ErrorCode = "STUDENT_NOT_FOUND"
	ErrCodeModelUnavailable         ErrorCode = "MODEL_UNAVAILABLE"
	ErrCodeTrainingInProgress       ErrorCode = "TRAINING_IN_PROGRESS"
	ErrCodeInsufficientTrainingData ErrorCode = "INSUFFICIENT_TRAINING_DATA"
	ErrCodePersistenceFailed        ErrorCode = "PERSISTENCE_FAILED"
	ErrCodeConfigInvalid            ErrorCode = "CONFIG_INVALID"
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

// Is lets errors.Is match two StandardErrors by code.
func (e *StandardError) Is(target error) bool {
	var se *StandardError
	if errors.As(target, &se) {
		return se.Code == e.Code
	}
	return false
}

// ==========================
// 2. Error Constructors
// ==========================

// NewInvalidProfileError reports malformed or out-of-range profile input.
// Not retryable: the caller must fix the data, not repeat the call.
func NewInvalidProfileError(studentID, details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeInvalidProfile,
		Message:   "Student profile failed validation",
		Details:   details,
		Retryable: false,
		Metadata:  map[string]interface{}{"studentId": studentID},
		Timestamp: time.Now().UTC(),
	}
}

// NewStudentNotFoundError reports an unknown student identifier.
func NewStudentNotFoundError(studentID string) *StandardError {
	return &StandardError{
		Code:      ErrCodeStudentNotFound,
		Message:   "Student not found",
		Details:   fmt.Sprintf("studentId: %s", studentID),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewModelUnavailableError is internal to the model wrapper. It never reaches
// callers: the wrapper converts it into a rule-based fallback prediction.
func NewModelUnavailableError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeModelUnavailable,
		Message:   "Predictive model unavailable",
		Details:   details,
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewTrainingInProgressError reports a training run already in flight.
// The caller may retry once the current run completes.
func NewTrainingInProgressError() *StandardError {
	return &StandardError{
		Code:      ErrCodeTrainingInProgress,
		Message:   "A training run is already in progress",
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewInsufficientTrainingDataError reports too few labeled samples to fit.
func NewInsufficientTrainingDataError(got, need int) *StandardError {
	return &StandardError{
		Code:      ErrCodeInsufficientTrainingData,
		Message:   "Not enough labeled outcomes to train",
		Details:   fmt.Sprintf("got %d samples, need at least %d", got, need),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewPersistenceError wraps a storage collaborator failure.
func NewPersistenceError(op string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodePersistenceFailed,
		Message:   "Storage operation failed",
		Details:   fmt.Sprintf("op: %s, error: %s", op, err.Error()),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewConfigInvalidError reports an invalid engine configuration.
func NewConfigInvalidError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeConfigInvalid,
		Message:   "Invalid configuration",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// ==========================
// 3. Utility Functions
// ==========================

// CodeOf extracts the error code, or empty string for foreign errors.
func CodeOf(err error) ErrorCode {
	var se *StandardError
	if errors.As(err, &se) {
		return se.Code
	}
	return ""
}

// IsInvalidProfile reports whether err is a profile validation failure.
func IsInvalidProfile(err error) bool {
	return CodeOf(err) == ErrCodeInvalidProfile
}

// IsTrainingInProgress reports whether err is a serialized-training rejection.
func IsTrainingInProgress(err error) bool {
	return CodeOf(err) == ErrCodeTrainingInProgress
}

// IsRetryable reports whether the error is worth retrying later.
func IsRetryable(err error) bool {
	var se *StandardError
	if errors.As(err, &se) {
		return se.Retryable
	}
	return false
}

// GetErrorCategory returns a coarse category for logging and metrics labels.
func GetErrorCategory(code ErrorCode) string {
	codeStr := string(code)
	switch {
	case strings.Contains(codeStr, "PROFILE") || strings.Contains(codeStr, "CONFIG"):
		return "VALIDATION"
	case strings.Contains(codeStr, "MODEL") || strings.Contains(codeStr, "TRAINING"):
		return "MODEL"
	case strings.Contains(codeStr, "PERSISTENCE"):
		return "STORAGE"
	case strings.Contains(codeStr, "NOT_FOUND"):
		return "LOOKUP"
	default:
		return "OTHER"
	}
}
