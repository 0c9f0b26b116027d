package cmd

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	oerrors "github.com/opmodel/pkgbuild/internal/errors"
	"github.com/opmodel/pkgbuild/internal/testutil"
)

func TestRoot_WarnsOnMalformedConfig(t *testing.T) {
	path := testutil.WriteFile(t, t.TempDir(), "config.yaml", "targets: [\n")

	r, w, err := os.Pipe()
	require.NoError(t, err)
	stderr := os.Stderr
	os.Stderr = w
	t.Cleanup(func() { os.Stderr = stderr })

	out, err := execute(t, "version", "--config", path)
	require.NoError(t, w.Close())
	logged, readErr := io.ReadAll(r)
	require.NoError(t, readErr)

	require.NoError(t, err, "a broken config must not block commands that do not need it")
	assert.Contains(t, out, "pkgbuild")
	assert.Contains(t, string(logged), "WARN")
	assert.Contains(t, string(logged), "ignoring config file, using defaults")
	assert.Contains(t, string(logged), "config.yaml")
}

func TestNewConfigInitCmd(t *testing.T) {
	cmd := NewConfigInitCmd()

	assert.Equal(t, "init", cmd.Use)
	assert.NotEmpty(t, cmd.Short)
	assert.NotEmpty(t, cmd.Long)
	assert.NotNil(t, cmd.Flags().Lookup("force"))
}

func TestConfigInit_CreatesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	out, err := execute(t, "config", "init", "--config", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Config file created")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "# pkgbuild configuration")
	assert.Contains(t, string(data), "catalogFile: pnpm-workspace.yaml")

	// The generated file passes its own validation.
	_, err = execute(t, "config", "vet", "--config", path)
	assert.NoError(t, err)
}

func TestConfigInit_ExistingConfig(t *testing.T) {
	path := testutil.WriteFile(t, t.TempDir(), "config.yaml", "outDir: keep\n")

	_, err := execute(t, "config", "init", "--config", path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "outDir: keep\n", string(data))

	_, err = execute(t, "config", "init", "--config", path, "--force")
	require.NoError(t, err)
}

func TestConfigVet(t *testing.T) {
	tests := []struct {
		name    string
		content string
		missing bool
		code    int
	}{
		{name: "valid", content: "outDir: dist\ntargets:\n  - name: esm\n"},
		{name: "invalid", content: "targets:\n  - name: esm\n    format: umd\n", code: oerrors.ExitValidationError},
		{name: "missing", missing: true, code: oerrors.ExitNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.yaml")
			if !tt.missing {
				testutil.WriteFile(t, filepath.Dir(path), "config.yaml", tt.content)
			}

			out, err := execute(t, "config", "vet", "--config", path)
			if tt.code == 0 {
				require.NoError(t, err)
				assert.Contains(t, out, "Config valid")
				return
			}
			var exitErr *oerrors.ExitError
			require.True(t, errors.As(err, &exitErr))
			assert.Equal(t, tt.code, exitErr.Code)
		})
	}
}

func TestVersionCmd(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "pkgbuild:")
	assert.Contains(t, out, "SDK Version")
}
