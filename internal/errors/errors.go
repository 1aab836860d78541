package errors

import (
	stderrors "errors"
	"fmt"
)

// ErrorType represents the type of error
type ErrorType string

const (
	ErrTypeNoInputFiles        ErrorType = "NO_INPUT_FILES"
	ErrTypeFileParse           ErrorType = "FILE_PARSE"
	ErrTypeMissingPrimaryTable ErrorType = "MISSING_PRIMARY_TABLE"
	ErrTypeEmptyDataset        ErrorType = "EMPTY_DATASET"
	ErrTypeDivisionByZero      ErrorType = "DIVISION_BY_ZERO"
	ErrTypeMissingField        ErrorType = "MISSING_FIELD"
	ErrTypeMissingYear         ErrorType = "MISSING_YEAR"
	ErrTypeRender              ErrorType = "RENDER"
	ErrTypeExport              ErrorType = "EXPORT"
	ErrTypeConfig              ErrorType = "CONFIG"
)

// AppError represents an application-specific error
type AppError struct {
	Type    ErrorType
	Message string
	Cause   error
	Context map[string]interface{}
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Type, e.Message)
}

// Unwrap allows errors.Is and errors.As to work with AppError
func (e *AppError) Unwrap() error {
	return e.Cause
}

// WithContext adds context to the error
func (e *AppError) WithContext(key string, value interface{}) *AppError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// NewAppError creates a new application error
func NewAppError(errType ErrorType, message string, cause error) *AppError {
	return &AppError{
		Type:    errType,
		Message: message,
		Cause:   cause,
		Context: make(map[string]interface{}),
	}
}

// IsType reports whether err is (or wraps) an AppError of the given type.
func IsType(err error, errType ErrorType) bool {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr.Type == errType
	}
	return false
}

// Helper functions for common error types

// NewNoInputFilesError signals that the input directory held no tabular files.
func NewNoInputFilesError(dir string) *AppError {
	return NewAppError(ErrTypeNoInputFiles, fmt.Sprintf("no tabular input files found in %s", dir), nil)
}

// NewParsingError creates a per-file parse error
func NewParsingError(file string, cause error) *AppError {
	return NewAppError(ErrTypeFileParse, fmt.Sprintf("failed to parse %s", file), cause)
}

// NewMissingPrimaryTableError signals that no table matched the indicator-dataset pattern.
func NewMissingPrimaryTableError() *AppError {
	return NewAppError(ErrTypeMissingPrimaryTable, "no table matches the indicator dataset pattern", nil)
}

// NewEmptyDatasetError creates an empty-dataset error for the named operation
func NewEmptyDatasetError(operation string) *AppError {
	return NewAppError(ErrTypeEmptyDataset, fmt.Sprintf("%s requires a non-empty dataset", operation), nil)
}

// NewDivisionByZeroError creates a zero-division error for the named quantity
func NewDivisionByZeroError(quantity string) *AppError {
	return NewAppError(ErrTypeDivisionByZero, fmt.Sprintf("%s is zero, ratio undefined", quantity), nil)
}

// NewMissingFieldError creates a missing-field error
func NewMissingFieldError(field, table string) *AppError {
	return NewAppError(ErrTypeMissingField, fmt.Sprintf("required field %q not found in %s", field, table), nil)
}

// NewNonNumericFieldError creates a schema error for a field that must hold
// numbers but contains text
func NewNonNumericFieldError(field, table, value string) *AppError {
	return NewAppError(ErrTypeMissingField, fmt.Sprintf("field %q in %s must be numeric, got %q", field, table, value), nil)
}

// NewMissingYearError creates a missing-year error
func NewMissingYearError(year int) *AppError {
	return NewAppError(ErrTypeMissingYear, fmt.Sprintf("no records for year %d", year), nil)
}

// NewRenderError creates a chart rendering error
func NewRenderError(message string, cause error) *AppError {
	return NewAppError(ErrTypeRender, message, cause)
}

// NewExportError creates a CSV export error
func NewExportError(message string, cause error) *AppError {
	return NewAppError(ErrTypeExport, message, cause)
}

// NewConfigError creates a configuration error
func NewConfigError(message string, cause error) *AppError {
	return NewAppError(ErrTypeConfig, message, cause)
}
