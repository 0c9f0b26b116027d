// Package rewrite converts the path-bearing fields of a source manifest
// (exports, bin, typesVersions, files, main, module, types) into their
// build-output form.
package rewrite

import (
	"sort"

	"github.com/opmodel/pkgbuild/internal/entry"
	"github.com/opmodel/pkgbuild/internal/manifest"
)

// Format is the module format of a build target.
type Format string

const (
	FormatESM Format = "esm"
	FormatCJS Format = "cjs"
)

// OutputExt returns the file extension emitted for the format.
func (f Format) OutputExt() string {
	if f == FormatCJS {
		return ".cjs"
	}
	return ".js"
}

// ModuleCondition returns the export condition that selects the format.
func (f Format) ModuleCondition() string {
	if f == FormatCJS {
		return manifest.ConditionRequire
	}
	return manifest.ConditionImport
}

// Valid reports whether f is a known format.
func (f Format) Valid() bool {
	return f == FormatESM || f == FormatCJS
}

// DefaultSourceRoots are stripped from paths when no roots are configured.
var DefaultSourceRoots = []string{"./src/"}

// DefaultPublicDir is the static-asset directory merged into the output root.
const DefaultPublicDir = "public"

// Options configures a Rewriter.
type Options struct {
	// Format selects the output extension and module condition.
	Format Format

	// SourceTransform converts source-module extensions to the output extension.
	SourceTransform bool

	// CollapseIndex emits "<dir>/index.ts" as "<dir>.js".
	CollapseIndex bool

	// SourceRoots are path prefixes removed from every path, e.g. "./src/".
	SourceRoots []string

	// PublicDir is stripped from file-list entries.
	PublicDir string

	// Entries is the entry table of the current build. Ignored when Bundle is false.
	Entries entry.Table

	// Overrides maps export keys to exact output paths and wins over Entries.
	Overrides entry.OverrideTable

	// NestedIndexLayout must match the layout the entry table was extracted with.
	NestedIndexLayout bool

	// Bundle reports whether outputs are named after entries. In bundleless
	// builds sources are emitted one to one and Entries is not consulted.
	Bundle bool
}

// Rewriter rewrites manifest paths for one build target.
type Rewriter struct {
	opts   Options
	outExt string
}

// New returns a Rewriter for opts.
func New(opts Options) *Rewriter {
	if !opts.Format.Valid() {
		opts.Format = FormatESM
	}
	if len(opts.SourceRoots) == 0 {
		opts.SourceRoots = DefaultSourceRoots
	}
	roots := append([]string(nil), opts.SourceRoots...)
	// Longest first so nested alternates win over the primary root.
	sort.SliceStable(roots, func(i, j int) bool { return len(roots[i]) > len(roots[j]) })
	opts.SourceRoots = roots
	if opts.PublicDir == "" {
		opts.PublicDir = DefaultPublicDir
	}
	return &Rewriter{opts: opts, outExt: opts.Format.OutputExt()}
}

// Rewrite produces the publishable manifest. transformed supplies exports,
// bin and dependencies; original supplies typesVersions, files and the
// publish access that decides `private`. Neither input is modified.
func (r *Rewriter) Rewrite(transformed, original *manifest.Manifest) (*manifest.Manifest, error) {
	out := transformed.Clone()

	if v, ok := transformed.Get(manifest.FieldExports); ok {
		node, err := r.TransformExports(manifest.ParseExportNode(v))
		if err != nil {
			return nil, err
		}
		out.Set(manifest.FieldExports, node.Value())
	}
	if v, ok := transformed.Get(manifest.FieldBin); ok {
		out.Set(manifest.FieldBin, r.TransformBin(v))
	}
	if v, ok := original.Get(manifest.FieldTypesVersions); ok {
		out.Set(manifest.FieldTypesVersions, r.TransformTypesVersions(v))
	}
	if v, ok := original.Get(manifest.FieldFiles); ok {
		out.Set(manifest.FieldFiles, r.TransformFiles(v))
	}
	r.rewriteEntryFields(out)

	out.Delete(manifest.FieldPublishConfig)
	out.Delete(manifest.FieldScripts)
	out.Set(manifest.FieldPrivate, !original.PublicAccess())
	out.SortKeys()
	return out, nil
}

// rewriteEntryFields updates main, module, types and typings in place.
func (r *Rewriter) rewriteEntryFields(m *manifest.Manifest) {
	for _, field := range []string{manifest.FieldMain, manifest.FieldModule} {
		if p := m.String(field); p != "" {
			m.Set(field, r.TransformPath(p))
		}
	}
	for _, field := range []string{manifest.FieldTypes, manifest.FieldTypings} {
		if p := m.String(field); p != "" {
			m.Set(field, r.typePath(p))
		}
	}
}
