//nolint:revive // Package name matches the package it tests
package errors

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSentinelErrors(t *testing.T) {
	assert.NotEqual(t, ErrValidation, ErrNotFound)
	assert.NotEqual(t, ErrValidation, ErrDependency)
	assert.NotEqual(t, ErrNotFound, ErrDependency)
}

func TestDetailErrorError(t *testing.T) {
	detail := &DetailError{
		Type:     "validation failed",
		Message:  "exports must be a string or object",
		Location: "packages/ui/package.json",
		Field:    "exports",
		Context:  map[string]string{"Target": "esm", "Dir": "dist"},
		Hint:     "Check the exports field",
	}

	out := detail.Error()

	assert.Contains(t, out, "Error: validation failed")
	assert.Contains(t, out, "Location: packages/ui/package.json")
	assert.Contains(t, out, "Field: exports")
	assert.Contains(t, out, "Target: esm")
	assert.Contains(t, out, "exports must be a string or object")
	assert.Contains(t, out, "Hint: Check the exports field")
	assert.Less(t, strings.Index(out, "Dir: dist"), strings.Index(out, "Target: esm"), "context keys are sorted")
}

func TestDetailErrorUnwrap(t *testing.T) {
	detail := &DetailError{Type: "test", Message: "test message", Cause: ErrValidation}

	assert.True(t, errors.Is(detail, ErrValidation))
	assert.Equal(t, ErrValidation, detail.Unwrap())
}

func TestNewValidationError(t *testing.T) {
	err := NewValidationError("invalid value", "package.json", "name", "Use a lowercase name")

	require.NotNil(t, err)
	assert.True(t, errors.Is(err, ErrValidation))

	var detail *DetailError
	require.True(t, errors.As(err, &detail))
	assert.Equal(t, "validation failed", detail.Type)
	assert.Equal(t, "invalid value", detail.Message)
	assert.Equal(t, "package.json", detail.Location)
	assert.Equal(t, "name", detail.Field)
	assert.Equal(t, "Use a lowercase name", detail.Hint)
}

func TestNewDependencyError(t *testing.T) {
	err := NewDependencyError("catalog entry missing", map[string]string{"Package": "react"}, "")
	assert.True(t, errors.Is(err, ErrDependency))
	assert.Contains(t, err.Error(), "Package: react")
}

func TestWrap(t *testing.T) {
	wrapped := Wrap(ErrValidation, "schema check failed")

	assert.True(t, errors.Is(wrapped, ErrValidation))
	assert.Contains(t, wrapped.Error(), "schema check failed")
}

func TestExitCodeFromError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected int
	}{
		{name: "nil error returns success", err: nil, expected: ExitSuccess},
		{name: "validation error", err: ErrValidation, expected: ExitValidationError},
		{name: "not found error", err: ErrNotFound, expected: ExitNotFound},
		{name: "dependency error", err: ErrDependency, expected: ExitDependencyError},
		{name: "wrapped dependency error", err: fmt.Errorf("resolving: %w", ErrDependency), expected: ExitDependencyError},
		{name: "detail error", err: NewNotFoundError("no manifest", ".", ""), expected: ExitNotFound},
		{name: "explicit exit error wins", err: NewExitError(ErrValidation, ExitGeneralError), expected: ExitGeneralError},
		{name: "unknown error", err: errors.New("boom"), expected: ExitGeneralError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ExitCodeFromError(tt.err))
		})
	}
}

func TestExitError(t *testing.T) {
	originalErr := errors.New("original error")
	exitErr := NewExitError(originalErr, ExitValidationError)

	assert.Equal(t, "original error", exitErr.Error())
	assert.Equal(t, originalErr, errors.Unwrap(exitErr))
	assert.True(t, errors.Is(exitErr, originalErr))
	assert.Equal(t, "Unknown", ExitCodeName(42))
	assert.Equal(t, "Dependency Error", ExitCodeName(ExitDependencyError))
	assert.Equal(t, "Validation Error", (&ExitError{Code: ExitValidationError}).Error())
}
