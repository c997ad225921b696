package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorType_Constants(t *testing.T) {
	tests := []struct {
		name     string
		errType  ErrorType
		expected string
	}{
		{name: "parsing error type", errType: ErrTypeParsing, expected: "PARSING"},
		{name: "shape error type", errType: ErrTypeShape, expected: "SHAPE"},
		{name: "storage error type", errType: ErrTypeStorage, expected: "STORAGE"},
		{name: "validation error type", errType: ErrTypeValidation, expected: "VALIDATION"},
		{name: "not found error type", errType: ErrTypeNotFound, expected: "NOT_FOUND"},
		{name: "config error type", errType: ErrTypeConfig, expected: "CONFIG"},
		{name: "export error type", errType: ErrTypeExport, expected: "EXPORT"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, string(tt.errType))
		})
	}
}

func TestAppError_Error(t *testing.T) {
	tests := []struct {
		name        string
		appError    *AppError
		wantMessage string
	}{
		{
			name:        "error without cause",
			appError:    &AppError{Type: ErrTypeShape, Message: "nil table"},
			wantMessage: "[SHAPE] nil table",
		},
		{
			name: "error with cause",
			appError: &AppError{
				Type:    ErrTypeParsing,
				Message: "failed to read workbook",
				Cause:   fmt.Errorf("zip: not a valid zip file"),
			},
			wantMessage: "[PARSING] failed to read workbook: zip: not a valid zip file",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantMessage, tt.appError.Error())
		})
	}
}

func TestAppError_Unwrap(t *testing.T) {
	cause := errors.New("disk full")
	err := NewStorageError("failed to record run", cause)

	assert.Same(t, cause, errors.Unwrap(err))
	assert.True(t, errors.Is(err, cause))

	wrapped := fmt.Errorf("history: %w", err)
	var appErr *AppError
	require.True(t, errors.As(wrapped, &appErr))
	assert.Equal(t, ErrTypeStorage, appErr.Type)
}

func TestAppError_WithContext(t *testing.T) {
	err := &AppError{Type: ErrTypeConfig, Message: "bad bounds"}
	err.WithContext("column", "odds").WithContext("min", 999.9)

	require.NotNil(t, err.Context)
	assert.Equal(t, "odds", err.Context["column"])
	assert.Equal(t, 999.9, err.Context["min"])
}

func TestIsType(t *testing.T) {
	shape := NewShapeError("duplicate column", nil)

	assert.True(t, IsType(shape, ErrTypeShape))
	assert.True(t, IsType(fmt.Errorf("clean: %w", shape), ErrTypeShape))
	assert.False(t, IsType(shape, ErrTypeParsing))
	assert.False(t, IsType(errors.New("plain"), ErrTypeShape))
	assert.False(t, IsType(nil, ErrTypeShape))
}

func TestConstructors(t *testing.T) {
	tests := []struct {
		name string
		err  *AppError
		want ErrorType
	}{
		{"parsing", NewParsingError("x", nil), ErrTypeParsing},
		{"shape", NewShapeError("x", nil), ErrTypeShape},
		{"storage", NewStorageError("x", nil), ErrTypeStorage},
		{"validation", NewAppValidationError("x"), ErrTypeValidation},
		{"not found", NewNotFoundError("sheet"), ErrTypeNotFound},
		{"config", NewConfigError("x", nil), ErrTypeConfig},
		{"export", NewExportError("x", nil), ErrTypeExport},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.Type)
			assert.NotNil(t, tt.err.Context)
		})
	}

	assert.Equal(t, "[NOT_FOUND] sheet not found", NewNotFoundError("sheet").Error())
}
