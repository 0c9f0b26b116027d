package pipeline

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opmodel/pkgbuild/internal/config"
	oerrors "github.com/opmodel/pkgbuild/internal/errors"
	"github.com/opmodel/pkgbuild/internal/manifest"
	"github.com/opmodel/pkgbuild/internal/output"
	"github.com/opmodel/pkgbuild/internal/rewrite"
	"github.com/opmodel/pkgbuild/internal/testutil"
)

const pkgDir = "/repo/packages/ui"

const workspaceYAML = `packages:
  - packages/*
catalog:
  react: ^18.2.0
`

const sourceManifest = `{
  "name": "@acme/ui",
  "version": "1.0.0",
  "exports": {
    ".": "./src/index.ts",
    "./utils": "./src/utils.ts"
  },
  "scripts": {"build": "pkgbuild build"},
  "publishConfig": {"access": "public"},
  "dependencies": {"react": "catalog:"}
}`

func boolPtr(b bool) *bool { return &b }

func twoTargets() *config.Config {
	return &config.Config{
		Targets: []config.Target{
			{Name: "esm", Format: "esm"},
			{Name: "cjs", Format: "cjs", OutDir: "dist/cjs"},
		},
	}
}

func newFixture(t *testing.T, doc string, withWorkspace bool) afero.Fs {
	t.Helper()
	fs := afero.NewMemMapFs()
	testutil.WriteFs(t, fs, filepath.Join(pkgDir, manifest.FileName), doc)
	if withWorkspace {
		testutil.WriteFs(t, fs, "/repo/pnpm-workspace.yaml", workspaceYAML)
	}
	return fs
}

func newPipeline(t *testing.T, cfg *config.Config, fs afero.Fs) *Pipeline {
	t.Helper()
	p, err := New(Options{Config: cfg, Fs: fs})
	require.NoError(t, err)
	return p
}

func readOutput(t *testing.T, fs afero.Fs, path string) *manifest.Manifest {
	t.Helper()
	data, err := afero.ReadFile(fs, path)
	require.NoError(t, err)
	return testutil.ParseManifest(t, string(data))
}

func TestRun_WritesEveryTarget(t *testing.T) {
	fs := newFixture(t, sourceManifest, true)
	p := newPipeline(t, twoTargets(), fs)

	result, err := p.Run(context.Background(), RunOptions{Dir: pkgDir})
	require.NoError(t, err)
	require.Len(t, result.Targets, 2)

	assert.Equal(t, "./src/index.ts", result.Plan.Entries["index"])
	assert.Equal(t, "./src/utils.ts", result.Plan.Entries["utils"])

	esm := result.Targets[0]
	assert.Equal(t, output.StatusWritten, esm.Status)
	assert.Equal(t, filepath.Join(pkgDir, "dist", manifest.FileName), esm.Path)

	m := readOutput(t, fs, esm.Path)
	assert.Equal(t, "./index.js", testutil.Lookup(m, "exports", ".", "import"))
	assert.Equal(t, "./index.d.ts", testutil.Lookup(m, "exports", ".", "types"))
	assert.Equal(t, "./utils.js", testutil.Lookup(m, "exports", "./utils", "import"))
	assert.Equal(t, "^18.2.0", testutil.Lookup(m, "dependencies", "react"))
	assert.Equal(t, false, testutil.Lookup(m, "private"))
	assert.Nil(t, testutil.Lookup(m, "scripts"))
	assert.Nil(t, testutil.Lookup(m, "publishConfig"))

	cjs := readOutput(t, fs, filepath.Join(pkgDir, "dist", "cjs", manifest.FileName))
	assert.Equal(t, "./index.cjs", testutil.Lookup(cjs, "exports", ".", "require"))
	assert.Nil(t, testutil.Lookup(cjs, "exports", ".", "import"))

	source := readOutput(t, fs, filepath.Join(pkgDir, manifest.FileName))
	assert.Equal(t, "catalog:", testutil.Lookup(source, "dependencies", "react"), "source manifest must not change")
}

func TestRun_SecondRunIsUnchanged(t *testing.T) {
	fs := newFixture(t, sourceManifest, true)
	p := newPipeline(t, nil, fs)

	_, err := p.Run(context.Background(), RunOptions{Dir: pkgDir})
	require.NoError(t, err)

	result, err := p.Run(context.Background(), RunOptions{Dir: pkgDir})
	require.NoError(t, err)
	require.Len(t, result.Targets, 1)
	assert.Equal(t, output.StatusUnchanged, result.Targets[0].Status)
}

func TestRun_EmitsRangeOperatorsVerbatim(t *testing.T) {
	doc := `{
  "name": "@acme/ui",
  "version": "1.0.0",
  "exports": "./src/index.ts",
  "peerDependencies": {"react": ">=18 <20"},
  "typesVersions": {">=4.2": {"*": ["./src/*"]}}
}`
	fs := newFixture(t, doc, true)
	p := newPipeline(t, nil, fs)

	_, err := p.Run(context.Background(), RunOptions{Dir: pkgDir})
	require.NoError(t, err)

	data, err := afero.ReadFile(fs, filepath.Join(pkgDir, "dist", manifest.FileName))
	require.NoError(t, err)
	assert.Contains(t, string(data), `"react": ">=18 <20"`)
	assert.Contains(t, string(data), `">=4.2": {`)
	assert.NotContains(t, string(data), `\u003`)
}

func TestRun_DevKeepsReferences(t *testing.T) {
	tests := []struct {
		name string
		cfg  *config.Config
		dev  bool
	}{
		{name: "dev flag", cfg: nil, dev: true},
		{name: "non-production target", cfg: &config.Config{Targets: []config.Target{{Name: "dev", Production: boolPtr(false)}}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// No workspace file: a production build would fail.
			fs := newFixture(t, sourceManifest, false)
			p := newPipeline(t, tt.cfg, fs)

			result, err := p.Run(context.Background(), RunOptions{Dir: pkgDir, Dev: tt.dev, DryRun: true})
			require.NoError(t, err)
			require.Len(t, result.Targets, 1)
			assert.Equal(t, "catalog:", testutil.Lookup(result.Targets[0].Manifest, "dependencies", "react"))
			assert.Equal(t, output.StatusValid, result.Targets[0].Status)
		})
	}
}

func TestRun_DryRunWritesNothing(t *testing.T) {
	fs := newFixture(t, sourceManifest, true)
	p := newPipeline(t, nil, fs)

	result, err := p.Run(context.Background(), RunOptions{Dir: pkgDir, DryRun: true})
	require.NoError(t, err)
	assert.Empty(t, result.Targets[0].Path)

	exists, err := afero.DirExists(fs, filepath.Join(pkgDir, "dist"))
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestRun_Errors(t *testing.T) {
	tests := []struct {
		name      string
		doc       string
		workspace bool
		targets   []string
		sentinel  error
		target    bool
	}{
		{name: "missing catalog", doc: sourceManifest, sentinel: oerrors.ErrDependency, target: true},
		{name: "schema violation", doc: `{"name": 42}`, workspace: true, sentinel: oerrors.ErrValidation},
		{name: "malformed manifest", doc: `[1, 2]`, workspace: true, sentinel: oerrors.ErrValidation},
		{name: "unknown target", doc: sourceManifest, workspace: true, targets: []string{"umd"}, sentinel: oerrors.ErrValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fs := newFixture(t, tt.doc, tt.workspace)
			p := newPipeline(t, nil, fs)

			_, err := p.Run(context.Background(), RunOptions{Dir: pkgDir, Targets: tt.targets})
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.sentinel), "got %v", err)

			var targetErr *TargetError
			assert.Equal(t, tt.target, errors.As(err, &targetErr))
		})
	}
}

func TestRun_MissingManifest(t *testing.T) {
	p := newPipeline(t, nil, afero.NewMemMapFs())

	_, err := p.Run(context.Background(), RunOptions{Dir: pkgDir})
	require.Error(t, err)
	assert.True(t, errors.Is(err, oerrors.ErrNotFound))
	assert.Contains(t, err.Error(), pkgDir)
}

func TestRun_UnsupportedFormat(t *testing.T) {
	fs := newFixture(t, sourceManifest, true)
	p := newPipeline(t, &config.Config{Targets: []config.Target{{Name: "umd", Format: "umd"}}}, fs)

	_, err := p.Run(context.Background(), RunOptions{Dir: pkgDir})
	require.Error(t, err)
	assert.True(t, errors.Is(err, oerrors.ErrValidation))
}

func TestRun_CanceledContext(t *testing.T) {
	fs := newFixture(t, sourceManifest, true)
	p := newPipeline(t, nil, fs)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := p.Run(ctx, RunOptions{Dir: pkgDir})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestConfigure_NestedLayoutOverrides(t *testing.T) {
	doc := `{
  "name": "nested",
  "exports": {
    ".": "./src/index.ts",
    "./api/v1": "./src/api/v1/index.ts"
  }
}`
	fs := newFixture(t, doc, false)
	cfg := twoTargets()
	cfg.NestedIndexLayout = true
	p := newPipeline(t, cfg, fs)

	plan, err := p.Configure(pkgDir, p.Config().Targets)
	require.NoError(t, err)
	assert.Equal(t, "./src/api/v1/index.ts", plan.Entries["api/v1/index"])
	assert.Equal(t, "./api/v1/index.js", plan.OverridesFor(rewrite.FormatESM)["./api/v1"])
	assert.Equal(t, "./api/v1/index.cjs", plan.OverridesFor(rewrite.FormatCJS)["./api/v1"])

	m, err := p.Assemble(context.Background(), plan, p.Config().Targets[0], false)
	require.NoError(t, err)
	assert.Equal(t, "./api/v1/index.js", testutil.Lookup(m, "exports", "./api/v1", "import"))
	assert.Equal(t, "./api/v1/index.d.ts", testutil.Lookup(m, "exports", "./api/v1", "types"))
}

func TestRun_ResolverAndTransform(t *testing.T) {
	fs := newFixture(t, sourceManifest, false)
	resolver := &recordingResolver{}
	p, err := New(Options{
		Fs:       fs,
		Resolver: resolver,
		Transform: func(m *manifest.Manifest) *manifest.Manifest {
			m.Set("sideEffects", false)
			return nil
		},
	})
	require.NoError(t, err)

	result, err := p.Run(context.Background(), RunOptions{Dir: pkgDir, DryRun: true})
	require.NoError(t, err)
	assert.Equal(t, []string{pkgDir}, resolver.dirs)
	assert.Equal(t, false, testutil.Lookup(result.Targets[0].Manifest, "sideEffects"))
	assert.Equal(t, "1.0.0", testutil.Lookup(result.Targets[0].Manifest, "dependencies", "react"))
}

type recordingResolver struct {
	dirs []string
}

func (r *recordingResolver) ResolvePackageJSON(_ context.Context, m *manifest.Manifest, dir string) (*manifest.Manifest, error) {
	r.dirs = append(r.dirs, dir)
	out := m.Clone()
	out.ObjectField(manifest.FieldDependencies).Set("react", "1.0.0")
	return out, nil
}

func TestResolver_SharedPerDir(t *testing.T) {
	p := newPipeline(t, nil, afero.NewMemMapFs())
	assert.Same(t, p.Resolver("/a"), p.Resolver("/a"))
	assert.NotSame(t, p.Resolver("/a"), p.Resolver("/b"))
	assert.Equal(t, config.DefaultCatalogFile, p.Resolver("/a").FileName())
}
