package catalog

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/spf13/afero"

	"github.com/opmodel/pkgbuild/internal/manifest"
	"github.com/opmodel/pkgbuild/internal/output"
)

// Reasons attached to catalog-unavailable warnings.
const (
	reasonNoWorkspace = "no-workspace"
	reasonMissing     = "missing"
	reasonParse       = "parse"
	reasonIO          = "io"
)

// Options configures a Resolver. Zero values select the OS filesystem,
// DefaultFileName, a FileLocator and the workspace Exporter.
type Options struct {
	Fs       afero.Fs
	FileName string

	// StartDir is where workspace root lookup begins. Defaults to the working directory.
	StartDir string

	Locator  Locator
	Exporter Exporter
}

// Resolver loads the workspace catalog and applies it to manifests.
// Each Resolver owns its cache; independent resolvers share nothing.
type Resolver struct {
	fs       afero.Fs
	fileName string
	startDir string
	locator  Locator
	exporter Exporter
	cache    *Cache

	root      string
	rootFound bool
	located   bool
}

// NewResolver creates a Resolver from opts.
func NewResolver(opts Options) *Resolver {
	r := &Resolver{
		fs:       opts.Fs,
		fileName: opts.FileName,
		startDir: opts.StartDir,
		locator:  opts.Locator,
		exporter: opts.Exporter,
		cache:    NewCache(),
	}
	if r.fs == nil {
		r.fs = afero.NewOsFs()
	}
	if r.fileName == "" {
		r.fileName = DefaultFileName
	}
	if r.startDir == "" {
		if wd, err := os.Getwd(); err == nil {
			r.startDir = wd
		}
	}
	if r.locator == nil {
		r.locator = NewFileLocator(r.fs, r.fileName)
	}
	if r.exporter == nil {
		r.exporter = NewWorkspaceExporter(r.fs, r)
	}
	return r
}

// FileName returns the catalog file name this resolver reads.
func (r *Resolver) FileName() string {
	return r.fileName
}

// Root returns the workspace root, locating it once per cache lifetime.
func (r *Resolver) Root() (string, bool) {
	if !r.located {
		r.root, r.rootFound = r.locator.Root(r.startDir)
		r.located = true
	}
	return r.root, r.rootFound
}

// Workspace returns the parsed catalog file. Failures are logged and yield an
// empty Workspace; this method never returns an error.
func (r *Resolver) Workspace() *Workspace {
	root, ok := r.Root()
	if !ok {
		output.Warn("catalog unavailable", "reason", reasonNoWorkspace, "file", r.fileName, "start", r.startDir)
		return emptyWorkspace()
	}

	path := filepath.Join(root, r.fileName)
	info, err := r.fs.Stat(path)
	if err != nil {
		r.warnUnavailable(path, err)
		return emptyWorkspace()
	}

	w, err := r.cache.GetOrRefresh(path, info.ModTime(), func() (*Workspace, error) {
		output.Debug("reading catalog file", "path", path)
		return ReadWorkspace(r.fs, path)
	})
	if err != nil {
		r.warnUnavailable(path, err)
		return emptyWorkspace()
	}
	return w
}

// Catalog returns the default catalog mapping dependency name to version.
func (r *Resolver) Catalog() map[string]string {
	return r.Workspace().Catalog
}

// ClearCache resets the cached catalog and workspace root.
func (r *Resolver) ClearCache() {
	r.cache.Invalidate()
	r.root = ""
	r.rootFound = false
	r.located = false
}

func (r *Resolver) warnUnavailable(path string, err error) {
	var parseErr *ParseError
	switch {
	case errors.Is(err, fs.ErrNotExist):
		output.Warn("catalog unavailable", "reason", reasonMissing, "path", path)
	case errors.As(err, &parseErr):
		output.Warn("catalog unavailable", "reason", reasonParse, "path", path, "error", parseErr.Err)
	default:
		output.Warn("catalog unavailable", "reason", reasonIO, "path", path, "error", err)
	}
}

func emptyWorkspace() *Workspace {
	return &Workspace{Catalog: map[string]string{}}
}

// ResolvePackageJSON returns a copy of m with catalog: and workspace:
// references substituted. dir is the package directory.
//
// Catalog references with an empty catalog fail before the Exporter runs.
// Exporter failures are classified into a ResolutionError. Any reference
// still present afterwards fails with a ReferenceError.
func (r *Resolver) ResolvePackageJSON(ctx context.Context, m *manifest.Manifest, dir string) (*manifest.Manifest, error) {
	refs := ScanReferences(m)
	w := r.Workspace()

	if catalogRefs := filterKind(refs, KindCatalog); len(catalogRefs) > 0 && w.Size() == 0 {
		return nil, missingCatalogError(r.fileName, catalogRefs)
	}

	output.Debug("resolving dependency references", "dir", dir, "references", len(refs))
	resolved, err := r.exporter.Export(ctx, dir, m, w.ByName())
	if err != nil {
		return nil, classifyExportError(err)
	}

	if remaining := ScanReferences(resolved); len(remaining) > 0 {
		return nil, unresolvedError(remaining)
	}
	return resolved, nil
}
