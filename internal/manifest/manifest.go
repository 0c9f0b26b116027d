// Package manifest models the package manifest (package.json) a build reads
// from a source tree and the derived copy it publishes.
package manifest

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/afero"
)

// FileName is the manifest file name inside a package directory.
const FileName = "package.json"

// Recognized manifest fields.
const (
	FieldName          = "name"
	FieldVersion       = "version"
	FieldExports       = "exports"
	FieldBin           = "bin"
	FieldTypesVersions = "typesVersions"
	FieldFiles         = "files"
	FieldMain          = "main"
	FieldModule        = "module"
	FieldTypes         = "types"
	FieldTypings       = "typings"
	FieldPublishConfig = "publishConfig"
	FieldScripts       = "scripts"
	FieldPrivate       = "private"
)

// Dependency fields, in the order they are scanned and reported.
const (
	FieldDependencies         = "dependencies"
	FieldDevDependencies      = "devDependencies"
	FieldPeerDependencies     = "peerDependencies"
	FieldOptionalDependencies = "optionalDependencies"
)

// DependencyFields lists every dependency field kind.
var DependencyFields = []string{
	FieldDependencies,
	FieldDevDependencies,
	FieldPeerDependencies,
	FieldOptionalDependencies,
}

// Manifest is an open package manifest. Unknown fields are carried through.
type Manifest struct {
	*Object
}

// New wraps obj as a Manifest. A nil obj yields an empty manifest.
func New(obj *Object) *Manifest {
	if obj == nil {
		obj = NewObject()
	}
	return &Manifest{Object: obj}
}

// Parse decodes a manifest document.
func Parse(data []byte) (*Manifest, error) {
	obj := NewObject()
	if err := obj.UnmarshalJSON(data); err != nil {
		return nil, fmt.Errorf("parsing manifest: %w", err)
	}
	return New(obj), nil
}

// Read decodes a manifest from r.
func Read(r io.Reader) (*Manifest, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading manifest: %w", err)
	}
	return Parse(data)
}

// Load reads <dir>/package.json from the OS filesystem.
func Load(dir string) (*Manifest, error) {
	return LoadFs(afero.NewOsFs(), dir)
}

// LoadFs reads <dir>/package.json from fs.
func LoadFs(fs afero.Fs, dir string) (*Manifest, error) {
	path := filepath.Join(dir, FileName)
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	m, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return m, nil
}

// Clone returns a deep copy; the source manifest is never mutated by a build.
func (m *Manifest) Clone() *Manifest {
	return New(m.Object.Clone())
}

// Name returns the package name, or "" when absent.
func (m *Manifest) Name() string {
	return m.String(FieldName)
}

// Version returns the package version, or "" when absent.
func (m *Manifest) Version() string {
	return m.String(FieldVersion)
}

// String returns a string field, or "" when absent or not a string.
func (m *Manifest) String(field string) string {
	v, _ := m.Get(field)
	s, _ := v.(string)
	return s
}

// ObjectField returns an object-valued field, or nil.
func (m *Manifest) ObjectField(field string) *Object {
	v, _ := m.Get(field)
	obj, _ := v.(*Object)
	return obj
}

// Exports returns the parsed export map, or nil when the manifest has none.
func (m *Manifest) Exports() *ExportNode {
	v, ok := m.Get(FieldExports)
	if !ok {
		return nil
	}
	return ParseExportNode(v)
}

// Dependencies returns the name → version pairs of one dependency field in
// document order. Non-string versions are skipped.
func (m *Manifest) Dependencies(field string) []Dependency {
	obj := m.ObjectField(field)
	if obj == nil {
		return nil
	}
	deps := make([]Dependency, 0, obj.Len())
	for _, name := range obj.keys {
		if version, ok := obj.values[name].(string); ok {
			deps = append(deps, Dependency{Field: field, Name: name, Version: version})
		}
	}
	return deps
}

// Dependency is one entry of a dependency field.
type Dependency struct {
	Field   string
	Name    string
	Version string
}

// PublicAccess reports whether publishConfig.access is "public".
func (m *Manifest) PublicAccess() bool {
	pc := m.ObjectField(FieldPublishConfig)
	if pc == nil {
		return false
	}
	v, _ := pc.Get("access")
	return v == "public"
}

// Marshal encodes the manifest as indented JSON with a trailing newline.
func (m *Manifest) Marshal() ([]byte, error) {
	return encodeJSON(m.Object.ordered(), "  ")
}

// WriteFile writes the manifest to <dir>/package.json, creating dir as needed.
func (m *Manifest) WriteFile(dir string) (string, error) {
	data, err := m.Marshal()
	if err != nil {
		return "", fmt.Errorf("encoding manifest: %w", err)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating %s: %w", dir, err)
	}
	path := filepath.Join(dir, FileName)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("writing %s: %w", path, err)
	}
	return path, nil
}
