// Package assembler produces the publishable manifest of one build target by
// chaining dependency resolution, path rewriting and an optional caller hook.
package assembler

import (
	"context"
	"fmt"

	"github.com/opmodel/pkgbuild/internal/entry"
	"github.com/opmodel/pkgbuild/internal/manifest"
	"github.com/opmodel/pkgbuild/internal/output"
	"github.com/opmodel/pkgbuild/internal/rewrite"
)

// DependencyResolver substitutes catalog and workspace references.
// *catalog.Resolver implements it.
type DependencyResolver interface {
	ResolvePackageJSON(ctx context.Context, m *manifest.Manifest, dir string) (*manifest.Manifest, error)
}

// Transform is a caller hook run on the finished manifest. It may mutate its
// argument and return nil, or return a replacement.
type Transform func(m *manifest.Manifest) *manifest.Manifest

// Input describes one build of one target.
type Input struct {
	// Manifest is the source manifest. It is never modified.
	Manifest *manifest.Manifest

	// Dir is the package directory.
	Dir string

	// Production resolves catalog and workspace references. Development
	// builds keep them so local links survive.
	Production bool

	// SourceTransform converts source extensions to the output extension.
	SourceTransform bool

	Entries   entry.Table
	Overrides entry.OverrideTable
	Bundle    bool

	CustomTransform Transform
}

// Assembler builds manifests for one target layout.
type Assembler struct {
	resolver DependencyResolver
	layout   rewrite.Options
}

// New returns an Assembler. layout carries the target's format and path
// layout; its per-build fields are replaced by Input on every Build.
func New(resolver DependencyResolver, layout rewrite.Options) *Assembler {
	return &Assembler{resolver: resolver, layout: layout}
}

// Build returns the publishable manifest for in.
func (a *Assembler) Build(ctx context.Context, in Input) (*manifest.Manifest, error) {
	original := in.Manifest
	transformed := original

	if in.Production {
		resolved, err := a.resolver.ResolvePackageJSON(ctx, original, in.Dir)
		if err != nil {
			return nil, fmt.Errorf("resolving dependencies of %s: %w", displayName(original), err)
		}
		transformed = resolved
	} else {
		output.Debug("skipping dependency resolution", "package", displayName(original))
	}

	opts := a.layout
	opts.SourceTransform = in.SourceTransform
	opts.Entries = in.Entries
	opts.Overrides = in.Overrides
	opts.Bundle = in.Bundle

	out, err := rewrite.New(opts).Rewrite(transformed, original)
	if err != nil {
		return nil, fmt.Errorf("rewriting manifest of %s: %w", displayName(original), err)
	}

	if in.CustomTransform != nil {
		if replaced := in.CustomTransform(out); replaced != nil {
			out = replaced
		}
	}
	return out, nil
}

func displayName(m *manifest.Manifest) string {
	if name := m.Name(); name != "" {
		return name
	}
	return "package"
}
