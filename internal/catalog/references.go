package catalog

import (
	"strings"

	"github.com/opmodel/pkgbuild/internal/manifest"
)

// Reference prefixes recognized in dependency version strings.
const (
	PrefixCatalog   = "catalog:"
	PrefixWorkspace = "workspace:"
)

// Kind identifies a reference prefix.
type Kind string

const (
	KindCatalog   Kind = "catalog"
	KindWorkspace Kind = "workspace"
)

// Reference is a dependency whose version carries a recognized prefix.
type Reference struct {
	Field string
	Name  string
	Value string
	Kind  Kind
}

func (r Reference) String() string {
	return r.Field + "." + r.Name + ": " + r.Value
}

// KindOf returns the reference kind of a version string, or false for plain versions.
func KindOf(version string) (Kind, bool) {
	switch {
	case strings.HasPrefix(version, PrefixCatalog):
		return KindCatalog, true
	case strings.HasPrefix(version, PrefixWorkspace):
		return KindWorkspace, true
	default:
		return "", false
	}
}

// ScanReferences lists every prefixed reference across the four dependency
// fields, in field order then manifest order.
func ScanReferences(m *manifest.Manifest) []Reference {
	var refs []Reference
	for _, field := range manifest.DependencyFields {
		for _, dep := range m.Dependencies(field) {
			if kind, ok := KindOf(dep.Version); ok {
				refs = append(refs, Reference{Field: dep.Field, Name: dep.Name, Value: dep.Version, Kind: kind})
			}
		}
	}
	return refs
}

// filterKind returns refs of the given kind.
func filterKind(refs []Reference, kind Kind) []Reference {
	var out []Reference
	for _, r := range refs {
		if r.Kind == kind {
			out = append(out, r)
		}
	}
	return out
}

// kinds returns the distinct kinds present in refs, catalog first.
func kinds(refs []Reference) []Kind {
	var out []Kind
	if len(filterKind(refs, KindCatalog)) > 0 {
		out = append(out, KindCatalog)
	}
	if len(filterKind(refs, KindWorkspace)) > 0 {
		out = append(out, KindWorkspace)
	}
	return out
}
