// Package entry determines which source files are build entry points by
// scanning a manifest's export and executable maps.
package entry

import (
	"strings"

	"github.com/opmodel/pkgbuild/internal/manifest"
	"github.com/opmodel/pkgbuild/internal/output"
)

// Table maps an entry name to its source file path.
type Table map[string]string

// IndexName is the entry name of the package root.
const IndexName = "index"

// BinPrefix prefixes every executable entry name.
const BinPrefix = "bin/"

// DefaultBinName is the entry name of a bin field given as a single string.
const DefaultBinName = BinPrefix + "cli"

// Options configures extraction.
type Options struct {
	// NestedIndexLayout names entries "<path>/index" instead of "<path-with-hyphens>".
	NestedIndexLayout bool

	// SourceDir is the source-tree directory compiled paths are mapped back into.
	// Default: "src".
	SourceDir string

	// OutputDirs are the compiled-output directories recognized in export values.
	// Default: ["dist"].
	OutputDirs []string
}

func (o Options) withDefaults() Options {
	if o.SourceDir == "" {
		o.SourceDir = "src"
	}
	if len(o.OutputDirs) == 0 {
		o.OutputDirs = []string{"dist"}
	}
	return o
}

// Result is the outcome of an extraction.
type Result struct {
	Entries Table
}

// Extract builds the entry table for m. It never fails: malformed or absent
// fields contribute no entries.
func Extract(m *manifest.Manifest, opts Options) Result {
	opts = opts.withDefaults()
	entries := make(Table)

	if v, ok := m.Get(manifest.FieldExports); ok {
		extractExports(manifest.ParseExportNode(v), opts, entries)
	}
	if v, ok := m.Get(manifest.FieldBin); ok {
		extractBin(v, opts, entries)
	}

	output.Debug("extracted entries", "count", len(entries), "nested", opts.NestedIndexLayout)
	return Result{Entries: entries}
}

func extractExports(root *manifest.ExportNode, opts Options, entries Table) {
	switch root.Kind {
	case manifest.KindPath:
		if p, ok := sourcePath(root.Path, opts); ok {
			entries[IndexName] = p
		}
	case manifest.KindConditions:
		// Conditions at the top level describe the root export.
		addExport(manifest.RootKey, root, opts, entries)
	case manifest.KindSubpaths:
		for _, e := range root.Entries {
			if e.Key == manifest.SelfKey || manifest.IsAssetKey(e.Key) || strings.Contains(e.Key, "*") {
				continue
			}
			addExport(e.Key, e.Node, opts, entries)
		}
	}
}

func addExport(key string, node *manifest.ExportNode, opts Options, entries Table) {
	chosen, ok := choosePath(node)
	if !ok {
		return
	}
	p, ok := sourcePath(chosen, opts)
	if !ok {
		return
	}
	entries[Name(key, opts.NestedIndexLayout)] = p
}

// choosePath picks the path that best identifies the source of an export:
// import, then default, then types, then a bare string.
func choosePath(node *manifest.ExportNode) (string, bool) {
	switch node.Kind {
	case manifest.KindPath:
		return node.Path, true
	case manifest.KindConditions:
		for _, cond := range []string{manifest.ConditionImport, manifest.ConditionDefault, manifest.ConditionTypes} {
			child, ok := node.Lookup(cond)
			if !ok {
				continue
			}
			if p, ok := choosePath(child); ok {
				return p, true
			}
		}
	}
	return "", false
}

func extractBin(v any, opts Options, entries Table) {
	switch t := v.(type) {
	case string:
		if p, ok := sourcePath(t, opts); ok {
			entries[DefaultBinName] = p
		}
	case *manifest.Object:
		for _, name := range t.Keys() {
			raw, _ := t.Get(name)
			s, ok := raw.(string)
			if !ok {
				continue
			}
			if p, ok := sourcePath(s, opts); ok {
				entries[BinPrefix+name] = p
			}
		}
	}
}

// sourcePath maps p back into the source tree when it points at compiled
// output, and reports whether the result is a buildable source module.
func sourcePath(p string, opts Options) (string, bool) {
	if ext := manifest.CompiledExt(p); ext != "" {
		for _, dir := range opts.OutputDirs {
			if mapped, ok := remapCompiled(p, ext, dir, opts.SourceDir); ok {
				p = mapped
				break
			}
		}
	}
	return p, manifest.IsSourceModule(p)
}

func remapCompiled(p, ext, outDir, srcDir string) (string, bool) {
	for _, prefix := range []string{manifest.SubpathPrefix + outDir + "/", outDir + "/"} {
		if strings.HasPrefix(p, prefix) {
			rest := strings.TrimSuffix(strings.TrimPrefix(p, prefix), ext)
			lead := strings.TrimSuffix(prefix, outDir+"/")
			return lead + srcDir + "/" + rest + ".ts", true
		}
	}
	return "", false
}

// Name derives the entry name for an export key.
func Name(key string, nested bool) string {
	if key == manifest.RootKey {
		return IndexName
	}
	stripped := manifest.StripSubpath(key)
	if nested {
		return stripped + "/" + IndexName
	}
	return strings.ReplaceAll(stripped, "/", "-")
}

// OverrideTable maps an export key to the exact output path of its entry.
type OverrideTable map[string]string

// OverridesFor derives the override table used with the nested index layout:
// every non-root export key that produced an entry maps to
// "./<key>/index<outExt>".
func OverridesFor(m *manifest.Manifest, res Result, outExt string) OverrideTable {
	overrides := make(OverrideTable)
	root := m.Exports()
	if root == nil || root.Kind != manifest.KindSubpaths {
		return overrides
	}
	for _, e := range root.Entries {
		if e.Key == manifest.RootKey {
			continue
		}
		name := Name(e.Key, true)
		if _, ok := res.Entries[name]; !ok {
			continue
		}
		overrides[e.Key] = manifest.SubpathPrefix + name + outExt
	}
	return overrides
}
