package pipeline

import (
	"github.com/opmodel/pkgbuild/internal/config"
	"github.com/opmodel/pkgbuild/internal/entry"
	"github.com/opmodel/pkgbuild/internal/manifest"
	"github.com/opmodel/pkgbuild/internal/rewrite"
)

// Plan is the outcome of the CONFIGURE stage. It owns the entry and override
// tables consumed by every target of the same run.
type Plan struct {
	// Dir is the package directory.
	Dir string

	// Manifest is the source manifest as read from disk.
	Manifest *manifest.Manifest

	// Entries maps entry names to source files.
	Entries entry.Table

	// Overrides holds one override table per output format. Empty unless
	// the nested index layout is enabled.
	Overrides map[rewrite.Format]entry.OverrideTable
}

// OverridesFor returns the override table for format, or nil.
func (p *Plan) OverridesFor(format rewrite.Format) entry.OverrideTable {
	return p.Overrides[format]
}

// RunOptions selects what a Run builds and where it goes.
type RunOptions struct {
	// Dir is the package directory. Default: the working directory.
	Dir string

	// Targets limits the run to the named targets. Empty means all.
	Targets []string

	// Dev forces development builds: dependency references are kept.
	Dev bool

	// DryRun assembles every target without writing files.
	DryRun bool
}

// TargetResult is the outcome of one target.
type TargetResult struct {
	Target   config.Target
	Manifest *manifest.Manifest

	// Path is the written manifest path. Empty on dry runs.
	Path string

	// Status is one of output.StatusWritten, StatusUnchanged or StatusSkipped.
	Status string
}

// Result is the outcome of a Run.
type Result struct {
	Plan    *Plan
	Targets []TargetResult
}
