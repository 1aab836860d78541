package errors

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppError(t *testing.T) {
	t.Run("Error without cause", func(t *testing.T) {
		err := NewEmptyDatasetError("yearly aggregate")
		assert.Equal(t, "[EMPTY_DATASET] yearly aggregate requires a non-empty dataset", err.Error())
	})

	t.Run("Error with cause", func(t *testing.T) {
		cause := fmt.Errorf("record on line 3: wrong number of fields")
		err := NewParsingError("flows_2021.csv", cause)
		assert.Contains(t, err.Error(), "FILE_PARSE")
		assert.Contains(t, err.Error(), "flows_2021.csv")
		assert.Contains(t, err.Error(), cause.Error())
	})

	t.Run("Unwrap", func(t *testing.T) {
		cause := fmt.Errorf("underlying")
		err := NewRenderError("cannot draw bar panel", cause)
		assert.Equal(t, cause, err.Unwrap())
	})

	t.Run("WithContext", func(t *testing.T) {
		err := NewMissingFieldError("volume", "flows_2021.csv").WithContext("columns", []string{"year", "origin"})
		require.NotNil(t, err.Context)
		assert.Contains(t, err.Context, "columns")
	})
}

func TestIsType(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		errType ErrorType
		want    bool
	}{
		{"matching type", NewNoInputFilesError("/tmp/empty"), ErrTypeNoInputFiles, true},
		{"different type", NewNoInputFilesError("/tmp/empty"), ErrTypeEmptyDataset, false},
		{"wrapped AppError", fmt.Errorf("pipeline: %w", NewDivisionByZeroError("first-year total")), ErrTypeDivisionByZero, true},
		{"plain error", fmt.Errorf("plain"), ErrTypeFileParse, false},
		{"nil error", nil, ErrTypeFileParse, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsType(tt.err, tt.errType))
		})
	}
}
