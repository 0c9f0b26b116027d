// Package catalog resolves indirect dependency references in a package
// manifest against the workspace catalog file.
//
// Two reference forms are recognized in the dependency fields:
//
//	"react": "catalog:"          // default catalog
//	"react": "catalog:legacy"    // named catalog
//	"@acme/ui": "workspace:^"    // local workspace package
//
// The catalog file is cached per Resolver and re-read only when its
// modification time changes.
package catalog

import (
	"fmt"

	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"
)

// DefaultFileName is the workspace catalog file looked up from the package directory.
const DefaultFileName = "pnpm-workspace.yaml"

// DefaultCatalog is the name under which the unnamed `catalog` mapping is exposed.
const DefaultCatalog = "default"

// Workspace is the parsed content of the workspace catalog file.
type Workspace struct {
	// Packages lists the globs selecting workspace package directories.
	Packages []string `yaml:"packages"`

	// Catalog is the default catalog: dependency name to version.
	Catalog map[string]string `yaml:"catalog"`

	// Catalogs holds named catalogs.
	Catalogs map[string]map[string]string `yaml:"catalogs"`
}

// ByName returns every catalog keyed by name, the default one under DefaultCatalog.
func (w *Workspace) ByName() map[string]map[string]string {
	out := make(map[string]map[string]string, len(w.Catalogs)+1)
	for name, versions := range w.Catalogs {
		out[name] = versions
	}
	if len(w.Catalog) > 0 {
		out[DefaultCatalog] = w.Catalog
	}
	return out
}

// Size returns the number of entries across all catalogs.
func (w *Workspace) Size() int {
	n := len(w.Catalog)
	for _, versions := range w.Catalogs {
		n += len(versions)
	}
	return n
}

// ReadWorkspace reads and parses the catalog file at path.
func ReadWorkspace(fs afero.Fs, path string) (*Workspace, error) {
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, err
	}
	return ParseWorkspace(data)
}

// ParseWorkspace parses catalog file content. An empty document yields an empty Workspace.
func ParseWorkspace(data []byte) (*Workspace, error) {
	var w Workspace
	if err := yaml.Unmarshal(data, &w); err != nil {
		return nil, &ParseError{Err: err}
	}
	if w.Catalog == nil {
		w.Catalog = map[string]string{}
	}
	return &w, nil
}

// ParseError reports a malformed catalog file.
type ParseError struct {
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parsing catalog file: %v", e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
