package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	oerrors "github.com/opmodel/pkgbuild/internal/errors"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestValidator_ValidateFile(t *testing.T) {
	v, err := NewValidator()
	require.NoError(t, err)

	tests := []struct {
		name    string
		content string
		field   string
	}{
		{
			name: "valid",
			content: `outDir: dist
targets:
  - name: esm
  - name: cjs
    format: cjs
    outDir: dist/cjs
`,
		},
		{name: "unknown key", content: "outdir: dist\n", field: "outdir"},
		{name: "bad format", content: "targets:\n  - name: umd\n    format: umd\n", field: "format"},
		{name: "target without name", content: "targets:\n  - format: esm\n", field: "name"},
		{name: "source root without trailing slash", content: "sourceRoots: [./src]\n", field: "sourceRoots"},
		{name: "duplicate targets", content: "targets:\n  - name: esm\n  - name: esm\n", field: "targets[1].name"},
		{name: "collapse with nested layout", content: "nestedIndexLayout: true\ncollapseIndex: true\n", field: "collapseIndex"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.ValidateFile(writeConfig(t, tt.content))
			if tt.field == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.field)
			assert.True(t, errors.Is(err, oerrors.ErrValidation))
		})
	}
}

func TestValidator_ValidateFileMissing(t *testing.T) {
	v, err := NewValidator()
	require.NoError(t, err)
	assert.Error(t, v.ValidateFile(filepath.Join(t.TempDir(), "missing.yaml")))
}

func TestValidationErrors(t *testing.T) {
	assert.Equal(t, "no validation errors", ValidationErrors{}.Error())

	errs := ValidationErrors{{Field: "outDir", Message: "must not be empty"}}
	assert.Contains(t, errs.Error(), "outDir: must not be empty")
}
