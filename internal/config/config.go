// Package config provides configuration loading and management.
package config

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// Default values applied by WithDefaults.
const (
	DefaultSourceDir   = "src"
	DefaultOutDir      = "dist"
	DefaultPublicDir   = "public"
	DefaultCatalogFile = "pnpm-workspace.yaml"
	DefaultTargetName  = "esm"
	DefaultFormat      = "esm"
)

// Target is one output variant of a build.
type Target struct {
	// Name identifies the target in logs and --target.
	Name string `mapstructure:"name" yaml:"name"`

	// Format is "esm" or "cjs". Default: esm.
	Format string `mapstructure:"format" yaml:"format,omitempty"`

	// Production resolves catalog and workspace references. Default: true.
	Production *bool `mapstructure:"production" yaml:"production,omitempty"`

	// OutDir is relative to the package directory. Default: Config.OutDir.
	OutDir string `mapstructure:"outDir" yaml:"outDir,omitempty"`
}

// IsProduction reports whether the target resolves dependency references.
func (t Target) IsProduction() bool {
	return t.Production == nil || *t.Production
}

// LogConfig contains logging-related settings.
type LogConfig struct {
	// Timestamps controls whether timestamps are shown in log output.
	// Default: true. Override with --timestamps flag.
	Timestamps *bool `mapstructure:"timestamps" yaml:"timestamps,omitempty"`
}

// Config represents the pkgbuild configuration.
// Loaded from ~/.pkgbuild/config.yaml, validated against the embedded CUE schema.
type Config struct {
	// SourceDir is the source tree compiled export paths map back into.
	SourceDir string `mapstructure:"sourceDir" yaml:"sourceDir,omitempty"`

	// OutDir is the default output directory. Env: PKGBUILD_OUT_DIR
	OutDir string `mapstructure:"outDir" yaml:"outDir,omitempty"`

	// PublicDir holds static assets merged into the output root.
	PublicDir string `mapstructure:"publicDir" yaml:"publicDir,omitempty"`

	// SourceRoots are stripped from manifest paths, e.g. "./src/".
	SourceRoots []string `mapstructure:"sourceRoots" yaml:"sourceRoots,omitempty"`

	// OutputDirs are compiled-output directories recognized in export values.
	OutputDirs []string `mapstructure:"outputDirs" yaml:"outputDirs,omitempty"`

	// CatalogFile is the workspace catalog file name. Env: PKGBUILD_CATALOG_FILE
	CatalogFile string `mapstructure:"catalogFile" yaml:"catalogFile,omitempty"`

	// NestedIndexLayout emits every subpath export as "<path>/index".
	NestedIndexLayout bool `mapstructure:"nestedIndexLayout" yaml:"nestedIndexLayout,omitempty"`

	// Bundle names outputs after entries. Default: true.
	Bundle *bool `mapstructure:"bundle" yaml:"bundle,omitempty"`

	// CollapseIndex emits "<dir>/index.ts" as "<dir>.js". Default: true unless
	// NestedIndexLayout is set.
	CollapseIndex *bool `mapstructure:"collapseIndex" yaml:"collapseIndex,omitempty"`

	// SourceTransform swaps source extensions for output ones. Default: true.
	SourceTransform *bool `mapstructure:"sourceTransform" yaml:"sourceTransform,omitempty"`

	// Targets lists the output variants. Default: a single production esm target.
	Targets []Target `mapstructure:"targets" yaml:"targets,omitempty"`

	// Log contains logging-related settings.
	Log LogConfig `mapstructure:"log" yaml:"log,omitempty"`
}

// DefaultConfig returns a Config with all default values populated.
// Used by `pkgbuild config init` to generate the initial config file.
func DefaultConfig() *Config {
	return (&Config{}).WithDefaults()
}

// WithDefaults returns a copy of c with unset fields defaulted.
func (c *Config) WithDefaults() *Config {
	out := *c
	if out.SourceDir == "" {
		out.SourceDir = DefaultSourceDir
	}
	if out.OutDir == "" {
		out.OutDir = DefaultOutDir
	}
	if out.PublicDir == "" {
		out.PublicDir = DefaultPublicDir
	}
	if len(out.SourceRoots) == 0 {
		out.SourceRoots = []string{"./" + out.SourceDir + "/"}
	}
	if len(out.OutputDirs) == 0 {
		out.OutputDirs = []string{out.OutDir}
	}
	if out.CatalogFile == "" {
		out.CatalogFile = DefaultCatalogFile
	}
	if len(out.Targets) == 0 {
		out.Targets = []Target{{Name: DefaultTargetName, Format: DefaultFormat}}
	}

	targets := make([]Target, len(out.Targets))
	for i, t := range out.Targets {
		if t.Format == "" {
			t.Format = DefaultFormat
		}
		if t.OutDir == "" {
			t.OutDir = out.OutDir
		}
		targets[i] = t
	}
	out.Targets = targets
	return &out
}

// BundleEnabled reports whether outputs are named after entries.
func (c *Config) BundleEnabled() bool {
	return c.Bundle == nil || *c.Bundle
}

// CollapseIndexEnabled reports whether index modules collapse into their directory name.
func (c *Config) CollapseIndexEnabled() bool {
	if c.CollapseIndex != nil {
		return *c.CollapseIndex
	}
	return !c.NestedIndexLayout
}

// SourceTransformEnabled reports whether source extensions are rewritten.
func (c *Config) SourceTransformEnabled() bool {
	return c.SourceTransform == nil || *c.SourceTransform
}

// SelectTargets returns the targets named in names, in config order, or
// every target when names is empty.
func (c *Config) SelectTargets(names []string) ([]Target, error) {
	if len(names) == 0 {
		return c.Targets, nil
	}
	want := make(map[string]bool, len(names))
	for _, n := range names {
		want[n] = true
	}
	var out []Target
	for _, t := range c.Targets {
		if want[t.Name] {
			out = append(out, t)
			delete(want, t.Name)
		}
	}
	for n := range want {
		return nil, fmt.Errorf("unknown target %q", n)
	}
	return out, nil
}

// Marshal renders c as YAML.
func (c *Config) Marshal() ([]byte, error) {
	return yaml.Marshal(c)
}
