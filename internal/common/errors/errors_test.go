// internal/common/errors/errors_test.go
package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStandardError_IsMatchesByCode(t *testing.T) {
	err := NewInvalidProfileError("s1", "attendancePct out of range")

	assert.True(t, errors.Is(err, &StandardError{Code: ErrCodeInvalidProfile}))
	assert.False(t, errors.Is(err, &StandardError{Code: ErrCodePersistenceFailed}))

	wrapped := fmt.Errorf("assess student: %w", err)
	assert.True(t, IsInvalidProfile(wrapped))
	assert.Equal(t, ErrCodeInvalidProfile, CodeOf(wrapped))
}

func TestCodeOf_ForeignError(t *testing.T) {
	assert.Equal(t, ErrorCode(""), CodeOf(fmt.Errorf("plain error")))
	assert.Equal(t, ErrorCode(""), CodeOf(nil))
}

func TestConstructors(t *testing.T) {
	tests := []struct {
		name      string
		err       *StandardError
		code      ErrorCode
		retryable bool
	}{
		{"invalid profile", NewInvalidProfileError("s1", "bad"), ErrCodeInvalidProfile, false},
		{"student not found", NewStudentNotFoundError("s1"), ErrCodeStudentNotFound, false},
		{"model unavailable", NewModelUnavailableError("no params"), ErrCodeModelUnavailable, true},
		{"training in progress", NewTrainingInProgressError(), ErrCodeTrainingInProgress, true},
		{"insufficient data", NewInsufficientTrainingDataError(3, 20), ErrCodeInsufficientTrainingData, false},
		{"persistence", NewPersistenceError("insert", fmt.Errorf("timeout")), ErrCodePersistenceFailed, true},
		{"config", NewConfigInvalidError("bad cutoffs"), ErrCodeConfigInvalid, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.NotNil(t, tt.err)
			assert.Equal(t, tt.code, tt.err.Code)
			assert.Equal(t, tt.retryable, IsRetryable(tt.err))
			assert.NotEmpty(t, tt.err.Message)
			assert.False(t, tt.err.Timestamp.IsZero())
			assert.Contains(t, tt.err.Error(), string(tt.code))
		})
	}
}

func TestInsufficientTrainingData_Details(t *testing.T) {
	err := NewInsufficientTrainingDataError(5, 20)
	assert.Contains(t, err.Details, "5")
	assert.Contains(t, err.Details, "20")
}

func TestGetErrorCategory(t *testing.T) {
	tests := []struct {
		code     ErrorCode
		category string
	}{
		{ErrCodeInvalidProfile, "VALIDATION"},
		{ErrCodeConfigInvalid, "VALIDATION"},
		{ErrCodeModelUnavailable, "MODEL"},
		{ErrCodeTrainingInProgress, "MODEL"},
		{ErrCodeInsufficientTrainingData, "MODEL"},
		{ErrCodePersistenceFailed, "STORAGE"},
		{ErrCodeStudentNotFound, "LOOKUP"},
		{ErrorCode("SOMETHING_ELSE"), "OTHER"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.category, GetErrorCategory(tt.code), string(tt.code))
	}
}
