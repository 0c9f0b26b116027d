package catalog

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"

	"github.com/Masterminds/semver/v3"
	"github.com/spf13/afero"

	"github.com/opmodel/pkgbuild/internal/manifest"
	"github.com/opmodel/pkgbuild/internal/output"
)

// Exporter produces a publishable manifest by substituting catalog and
// workspace references. catalogs maps catalog name to its version table.
type Exporter interface {
	Export(ctx context.Context, dir string, m *manifest.Manifest, catalogs map[string]map[string]string) (*manifest.Manifest, error)
}

// WorkspaceSource supplies the workspace root and the parsed catalog file.
type WorkspaceSource interface {
	Root() (string, bool)
	Workspace() *Workspace
}

// WorkspaceExporter is the default Exporter. Workspace packages are
// discovered from the `packages` globs of the catalog file.
type WorkspaceExporter struct {
	fs     afero.Fs
	source WorkspaceSource
}

// NewWorkspaceExporter returns an Exporter reading workspace packages from fs.
func NewWorkspaceExporter(fs afero.Fs, source WorkspaceSource) *WorkspaceExporter {
	return &WorkspaceExporter{fs: fs, source: source}
}

// Export returns a copy of m with every reference replaced by a concrete
// version or range. The input manifest is not modified.
func (e *WorkspaceExporter) Export(ctx context.Context, dir string, m *manifest.Manifest, catalogs map[string]map[string]string) (*manifest.Manifest, error) {
	out := m.Clone()

	var packages map[string]string
	for _, field := range manifest.DependencyFields {
		deps := out.ObjectField(field)
		if deps == nil {
			continue
		}
		for _, dep := range out.Dependencies(field) {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			kind, ok := KindOf(dep.Version)
			if !ok {
				continue
			}

			var version string
			var err error
			switch kind {
			case KindCatalog:
				version, err = resolveCatalogVersion(dep, catalogs)
			case KindWorkspace:
				if packages == nil {
					if packages, err = e.workspacePackages(); err != nil {
						return nil, err
					}
				}
				version, err = resolveWorkspaceVersion(dep, packages)
			}
			if err != nil {
				return nil, err
			}
			deps.Set(dep.Name, version)
		}
	}
	return out, nil
}

func resolveCatalogVersion(dep manifest.Dependency, catalogs map[string]map[string]string) (string, error) {
	name := strings.TrimPrefix(dep.Version, PrefixCatalog)
	if name == "" {
		name = DefaultCatalog
	}
	table, ok := catalogs[name]
	if !ok {
		return "", fmt.Errorf("catalog %q is not defined (%s.%s)", name, dep.Field, dep.Name)
	}
	version, ok := table[dep.Name]
	if !ok || version == "" {
		return "", fmt.Errorf("no entry for %s in catalog %q (%s)", dep.Name, name, dep.Field)
	}
	return version, nil
}

func resolveWorkspaceVersion(dep manifest.Dependency, packages map[string]string) (string, error) {
	spec := strings.TrimPrefix(dep.Version, PrefixWorkspace)
	local, ok := packages[dep.Name]
	if !ok {
		return "", fmt.Errorf("workspace package %s not found (%s)", dep.Name, dep.Field)
	}
	if local == "" {
		return "", fmt.Errorf("workspace package %s has no version", dep.Name)
	}

	switch spec {
	case "", "*":
		return local, nil
	case "^", "~":
		return spec + local, nil
	}

	constraint, err := semver.NewConstraint(spec)
	if err != nil {
		return "", fmt.Errorf("invalid workspace range %q for %s: %w", spec, dep.Name, err)
	}
	if v, err := semver.NewVersion(local); err == nil && !constraint.Check(v) {
		return "", fmt.Errorf("workspace package %s@%s does not satisfy %s", dep.Name, local, spec)
	}
	return spec, nil
}

// workspacePackages maps package name to version for every package selected
// by the workspace globs, plus the root package.
func (e *WorkspaceExporter) workspacePackages() (map[string]string, error) {
	root, ok := e.source.Root()
	if !ok {
		return nil, fmt.Errorf("workspace root not found")
	}

	var include, exclude []string
	for _, glob := range e.source.Workspace().Packages {
		if strings.HasPrefix(glob, "!") {
			exclude = append(exclude, strings.TrimPrefix(glob, "!"))
		} else {
			include = append(include, glob)
		}
	}

	dirs := map[string]bool{root: true}
	for _, glob := range include {
		matches, err := e.expand(root, glob)
		if err != nil {
			return nil, fmt.Errorf("expanding workspace glob %q: %w", glob, err)
		}
		for _, dir := range matches {
			if !excluded(root, dir, exclude) {
				dirs[dir] = true
			}
		}
	}

	sorted := make([]string, 0, len(dirs))
	for dir := range dirs {
		sorted = append(sorted, dir)
	}
	sort.Strings(sorted)

	packages := make(map[string]string, len(sorted))
	for _, dir := range sorted {
		m, err := manifest.LoadFs(e.fs, dir)
		if err != nil {
			if dir == root {
				continue
			}
			return nil, fmt.Errorf("reading workspace package manifest: %w", err)
		}
		if name := m.Name(); name != "" {
			packages[name] = m.Version()
		}
	}
	output.Debug("discovered workspace packages", "root", root, "count", len(packages))
	return packages, nil
}

// expand returns package directories matching glob. A trailing "/**"
// selects every nested directory holding a manifest.
func (e *WorkspaceExporter) expand(root, glob string) ([]string, error) {
	glob = strings.TrimPrefix(glob, "./")
	if base, ok := strings.CutSuffix(glob, "/**"); ok {
		var dirs []string
		err := afero.Walk(e.fs, filepath.Join(root, base), func(path string, info fs.FileInfo, err error) error {
			if err != nil {
				if errors.Is(err, fs.ErrNotExist) {
					return nil
				}
				return err
			}
			if info.IsDir() && info.Name() == "node_modules" {
				return filepath.SkipDir
			}
			if !info.IsDir() && info.Name() == manifest.FileName {
				dirs = append(dirs, filepath.Dir(path))
			}
			return nil
		})
		return dirs, err
	}

	matches, err := afero.Glob(e.fs, filepath.Join(root, glob))
	if err != nil {
		return nil, err
	}
	var dirs []string
	for _, match := range matches {
		if ok, _ := afero.Exists(e.fs, filepath.Join(match, manifest.FileName)); ok {
			dirs = append(dirs, match)
		}
	}
	return dirs, nil
}

func excluded(root, dir string, patterns []string) bool {
	rel, err := filepath.Rel(root, dir)
	if err != nil {
		return false
	}
	rel = filepath.ToSlash(rel)
	for _, pattern := range patterns {
		pattern = strings.TrimPrefix(pattern, "./")
		if base, ok := strings.CutSuffix(pattern, "/**"); ok {
			if rel == base || strings.HasPrefix(rel, base+"/") {
				return true
			}
			continue
		}
		if ok, _ := filepath.Match(pattern, rel); ok {
			return true
		}
	}
	return false
}
