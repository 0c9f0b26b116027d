package catalog

import (
	"fmt"
	"strings"

	oerrors "github.com/opmodel/pkgbuild/internal/errors"
)

// ReferenceError reports dependency references that cannot be published:
// catalog references with no catalog to resolve them, or references that
// survived resolution.
type ReferenceError struct {
	// Message is the headline, e.g. "missing catalog configuration".
	Message string
	// Kinds names the reference kinds involved.
	Kinds []Kind
	// Refs lists every offending field/name/value.
	Refs []Reference
}

func (e *ReferenceError) Error() string {
	var b strings.Builder
	b.WriteString(e.Message)
	for _, r := range e.Refs {
		b.WriteString("\n  ")
		b.WriteString(r.String())
	}
	return b.String()
}

// Unwrap maps reference errors to the dependency exit code.
func (e *ReferenceError) Unwrap() error {
	return oerrors.ErrDependency
}

func missingCatalogError(fileName string, refs []Reference) *ReferenceError {
	return &ReferenceError{
		Message: fmt.Sprintf("missing catalog configuration: no catalog entries found in %s for catalog references", fileName),
		Kinds:   []Kind{KindCatalog},
		Refs:    refs,
	}
}

func unresolvedError(refs []Reference) *ReferenceError {
	ks := kinds(refs)
	names := make([]string, len(ks))
	for i, k := range ks {
		names[i] = string(k)
	}
	return &ReferenceError{
		Message: fmt.Sprintf("unresolved %s references remain after dependency resolution", strings.Join(names, " and ")),
		Kinds:   ks,
		Refs:    refs,
	}
}

// Category classifies a manifest-export failure.
type Category string

const (
	CategoryCatalog   Category = "catalog resolution failed"
	CategoryWorkspace Category = "workspace resolution failed"
	CategoryManifest  Category = "manifest processing failed"
	CategoryGeneric   Category = "dependency resolution failed"
)

// ResolutionError wraps a failure of the Exporter with its category.
type ResolutionError struct {
	Category Category
	Err      error
}

func (e *ResolutionError) Error() string {
	return fmt.Sprintf("%s: %v", e.Category, e.Err)
}

// Unwrap exposes both the dependency sentinel and the exporter's error.
func (e *ResolutionError) Unwrap() []error {
	return []error{oerrors.ErrDependency, e.Err}
}

// classifyExportError assigns a category by inspecting the error text.
// Matching order is catalog, workspace, manifest.
func classifyExportError(err error) *ResolutionError {
	msg := strings.ToLower(err.Error())
	category := CategoryGeneric
	switch {
	case strings.Contains(msg, "catalog"):
		category = CategoryCatalog
	case strings.Contains(msg, "workspace"):
		category = CategoryWorkspace
	case strings.Contains(msg, "manifest"):
		category = CategoryManifest
	}
	return &ResolutionError{Category: category, Err: err}
}
