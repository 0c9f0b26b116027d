package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLoader(t *testing.T) {
	loader := NewLoader()
	assert.NotNil(t, loader)
	assert.NotNil(t, loader.v)
}

func TestLoaderLoad(t *testing.T) {
	t.Run("loads config from file", func(t *testing.T) {
		configFile := filepath.Join(t.TempDir(), "config.yaml")
		content := `
sourceDir: source
outDir: build
catalogFile: catalog.yaml
nestedIndexLayout: true
bundle: false
sourceRoots:
  - ./source/
  - ./generated/
targets:
  - name: esm
    format: esm
  - name: cjs
    format: cjs
    outDir: build/cjs
    production: false
log:
  timestamps: false
`
		require.NoError(t, os.WriteFile(configFile, []byte(content), 0o644))

		cfg, err := NewLoader().Load(configFile)
		require.NoError(t, err)

		assert.Equal(t, "source", cfg.SourceDir)
		assert.Equal(t, "build", cfg.OutDir)
		assert.Equal(t, "catalog.yaml", cfg.CatalogFile)
		assert.True(t, cfg.NestedIndexLayout)
		assert.False(t, cfg.BundleEnabled())
		assert.Equal(t, []string{"./source/", "./generated/"}, cfg.SourceRoots)
		require.Len(t, cfg.Targets, 2)
		assert.Equal(t, "build/cjs", cfg.Targets[1].OutDir)
		assert.False(t, cfg.Targets[1].IsProduction())
		require.NotNil(t, cfg.Log.Timestamps)
		assert.False(t, *cfg.Log.Timestamps)
	})

	t.Run("returns empty config for missing file", func(t *testing.T) {
		cfg, err := NewLoader().Load(filepath.Join(t.TempDir(), "nonexistent.yaml"))
		require.NoError(t, err)
		assert.Empty(t, cfg.OutDir)
		assert.Empty(t, cfg.Targets)
	})

	t.Run("loads from environment variables", func(t *testing.T) {
		t.Setenv("PKGBUILD_OUT_DIR", "env-dist")
		t.Setenv("PKGBUILD_CATALOG_FILE", "env-catalog.yaml")
		t.Setenv("PKGBUILD_BUNDLE", "false")

		cfg, err := NewLoader().Load(filepath.Join(t.TempDir(), "nonexistent.yaml"))
		require.NoError(t, err)
		assert.Equal(t, "env-dist", cfg.OutDir)
		assert.Equal(t, "env-catalog.yaml", cfg.CatalogFile)
		assert.False(t, cfg.BundleEnabled())
	})

	t.Run("env overrides file", func(t *testing.T) {
		configFile := filepath.Join(t.TempDir(), "config.yaml")
		require.NoError(t, os.WriteFile(configFile, []byte("outDir: file-dist\n"), 0o644))
		t.Setenv("PKGBUILD_OUT_DIR", "env-dist")

		cfg, err := NewLoader().Load(configFile)
		require.NoError(t, err)
		assert.Equal(t, "env-dist", cfg.OutDir)
	})

	t.Run("rejects malformed yaml", func(t *testing.T) {
		configFile := filepath.Join(t.TempDir(), "config.yaml")
		require.NoError(t, os.WriteFile(configFile, []byte("targets: [unclosed\n"), 0o644))

		_, err := NewLoader().Load(configFile)
		assert.Error(t, err)
	})
}

func TestLoadWithDefaults(t *testing.T) {
	cfg, err := NewLoader().LoadWithDefaults(filepath.Join(t.TempDir(), "nonexistent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestConfigFileExists(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")

	exists, err := ConfigFileExists(path)
	require.NoError(t, err)
	assert.False(t, exists)

	require.NoError(t, os.WriteFile(path, []byte("outDir: dist\n"), 0o644))
	exists, err = ConfigFileExists(path)
	require.NoError(t, err)
	assert.True(t, exists)
}
