// Package pipeline is the host build pipeline. It reads a package manifest,
// derives the entry tables once, and assembles one publishable manifest per
// build target.
package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/spf13/afero"

	"github.com/opmodel/pkgbuild/internal/assembler"
	"github.com/opmodel/pkgbuild/internal/catalog"
	"github.com/opmodel/pkgbuild/internal/config"
	"github.com/opmodel/pkgbuild/internal/entry"
	oerrors "github.com/opmodel/pkgbuild/internal/errors"
	"github.com/opmodel/pkgbuild/internal/manifest"
	"github.com/opmodel/pkgbuild/internal/output"
	"github.com/opmodel/pkgbuild/internal/rewrite"
	"github.com/opmodel/pkgbuild/internal/schema"
)

// Options configures a Pipeline.
type Options struct {
	// Config is the effective configuration. Defaults are applied by New.
	Config *config.Config

	// Fs is used for manifest, catalog and output I/O. Default: the OS filesystem.
	Fs afero.Fs

	// Resolver replaces the catalog resolver. Used by tests.
	Resolver assembler.DependencyResolver

	// Transform is run on every assembled manifest.
	Transform assembler.Transform
}

// Pipeline runs builds for one configuration. Catalog resolvers are kept per
// package directory so repeated runs share the catalog cache.
type Pipeline struct {
	cfg       *config.Config
	fs        afero.Fs
	validator *schema.Validator
	resolver  assembler.DependencyResolver
	transform assembler.Transform

	mu        sync.Mutex
	resolvers map[string]*catalog.Resolver
}

// New creates a Pipeline.
func New(opts Options) (*Pipeline, error) {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	fs := opts.Fs
	if fs == nil {
		fs = afero.NewOsFs()
	}
	validator, err := schema.NewValidator()
	if err != nil {
		return nil, fmt.Errorf("loading manifest schema: %w", err)
	}
	return &Pipeline{
		cfg:       cfg.WithDefaults(),
		fs:        fs,
		validator: validator,
		resolver:  opts.Resolver,
		transform: opts.Transform,
		resolvers: make(map[string]*catalog.Resolver),
	}, nil
}

// Config returns the effective configuration.
func (p *Pipeline) Config() *config.Config {
	return p.cfg
}

// Resolver returns the catalog resolver for the package in dir.
func (p *Pipeline) Resolver(dir string) *catalog.Resolver {
	p.mu.Lock()
	defer p.mu.Unlock()

	if r, ok := p.resolvers[dir]; ok {
		return r
	}
	r := catalog.NewResolver(catalog.Options{
		Fs:       p.fs,
		FileName: p.cfg.CatalogFile,
		StartDir: dir,
	})
	p.resolvers[dir] = r
	return r
}

func (p *Pipeline) dependencyResolver(dir string) assembler.DependencyResolver {
	if p.resolver != nil {
		return p.resolver
	}
	return p.Resolver(dir)
}

// Run executes the pipeline and returns one result per selected target.
//
// Stage sequence:
//  1. CONFIGURE: read and vet the manifest, extract entries and overrides → *Plan
//  2. ASSEMBLE:  per target, resolve dependencies and rewrite paths
//  3. EMIT:      write <dir>/<outDir>/package.json unless DryRun
//
// The first failing target aborts the run.
func (p *Pipeline) Run(ctx context.Context, opts RunOptions) (*Result, error) {
	dir, err := absDir(opts.Dir)
	if err != nil {
		return nil, err
	}

	targets, err := p.cfg.SelectTargets(opts.Targets)
	if err != nil {
		return nil, oerrors.Wrap(oerrors.ErrValidation, err.Error())
	}

	// Stage 1: CONFIGURE. Tables are computed once and threaded through every target.
	plan, err := p.Configure(dir, targets)
	if err != nil {
		return nil, err
	}

	result := &Result{Plan: plan}
	for _, target := range targets {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		log := output.TargetLogger(target.Name)

		// Stage 2: ASSEMBLE
		m, err := p.Assemble(ctx, plan, target, opts.Dev)
		if err != nil {
			return nil, &TargetError{Target: target.Name, Err: err}
		}

		if opts.DryRun {
			log.Debug("manifest assembled", "format", target.Format)
			result.Targets = append(result.Targets, TargetResult{
				Target:   target,
				Manifest: m,
				Status:   output.StatusValid,
			})
			continue
		}

		// Stage 3: EMIT
		tr, err := p.Emit(plan, target, m)
		if err != nil {
			return nil, &TargetError{Target: target.Name, Err: err}
		}
		log.Debug("manifest emitted", "path", tr.Path, "status", tr.Status)
		result.Targets = append(result.Targets, tr)
	}
	return result, nil
}

// Configure reads and vets the manifest in dir and derives the entry table.
// Override tables are derived for the formats of targets when the nested
// index layout is enabled.
func (p *Pipeline) Configure(dir string, targets []config.Target) (*Plan, error) {
	path := filepath.Join(dir, manifest.FileName)
	exists, err := afero.Exists(p.fs, path)
	if err != nil {
		return nil, fmt.Errorf("checking %s: %w", path, err)
	}
	if !exists {
		return nil, &ManifestNotFoundError{Dir: dir}
	}

	m, err := manifest.LoadFs(p.fs, dir)
	if err != nil {
		return nil, oerrors.NewValidationError(err.Error(), path, "", "package.json must be a JSON object")
	}
	if err := p.validator.Validate(m, path); err != nil {
		return nil, err
	}

	res := entry.Extract(m, entry.Options{
		NestedIndexLayout: p.cfg.NestedIndexLayout,
		SourceDir:         p.cfg.SourceDir,
		OutputDirs:        p.cfg.OutputDirs,
	})
	output.Debug("entries extracted", "package", m.Name(), "count", len(res.Entries))

	plan := &Plan{
		Dir:       dir,
		Manifest:  m,
		Entries:   res.Entries,
		Overrides: make(map[rewrite.Format]entry.OverrideTable),
	}
	if p.cfg.NestedIndexLayout {
		for _, t := range targets {
			format := rewrite.Format(t.Format)
			if _, ok := plan.Overrides[format]; ok || !format.Valid() {
				continue
			}
			plan.Overrides[format] = entry.OverridesFor(m, res, format.OutputExt())
		}
	}
	return plan, nil
}

// Assemble builds the publishable manifest of target from plan. dev forces
// a development build regardless of the target's production setting.
func (p *Pipeline) Assemble(ctx context.Context, plan *Plan, target config.Target, dev bool) (*manifest.Manifest, error) {
	format := rewrite.Format(target.Format)
	if !format.Valid() {
		return nil, oerrors.NewValidationError(
			fmt.Sprintf("unsupported format %q", target.Format), "", "targets."+target.Name+".format",
			`use "esm" or "cjs"`)
	}

	asm := assembler.New(p.dependencyResolver(plan.Dir), rewrite.Options{
		Format:            format,
		CollapseIndex:     p.cfg.CollapseIndexEnabled(),
		SourceRoots:       p.cfg.SourceRoots,
		PublicDir:         p.cfg.PublicDir,
		NestedIndexLayout: p.cfg.NestedIndexLayout,
	})
	return asm.Build(ctx, assembler.Input{
		Manifest:        plan.Manifest,
		Dir:             plan.Dir,
		Production:      target.IsProduction() && !dev,
		SourceTransform: p.cfg.SourceTransformEnabled(),
		Entries:         plan.Entries,
		Overrides:       plan.OverridesFor(format),
		Bundle:          p.cfg.BundleEnabled(),
		CustomTransform: p.transform,
	})
}

// Emit writes m to <plan.Dir>/<target.OutDir>/package.json. A file whose
// content already matches is left untouched.
func (p *Pipeline) Emit(plan *Plan, target config.Target, m *manifest.Manifest) (TargetResult, error) {
	tr := TargetResult{Target: target, Manifest: m}

	data, err := m.Marshal()
	if err != nil {
		return tr, fmt.Errorf("encoding manifest: %w", err)
	}

	outDir := target.OutDir
	if !filepath.IsAbs(outDir) {
		outDir = filepath.Join(plan.Dir, outDir)
	}
	tr.Path = filepath.Join(outDir, manifest.FileName)

	if existing, err := afero.ReadFile(p.fs, tr.Path); err == nil && bytes.Equal(existing, data) {
		tr.Status = output.StatusUnchanged
		return tr, nil
	}

	if err := p.fs.MkdirAll(outDir, 0o755); err != nil {
		return tr, fmt.Errorf("creating %s: %w", outDir, err)
	}
	if err := afero.WriteFile(p.fs, tr.Path, data, 0o644); err != nil {
		return tr, fmt.Errorf("writing %s: %w", tr.Path, err)
	}
	tr.Status = output.StatusWritten
	return tr, nil
}

func absDir(dir string) (string, error) {
	if dir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("determining working directory: %w", err)
		}
		return wd, nil
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("resolving %s: %w", dir, err)
	}
	return abs, nil
}
