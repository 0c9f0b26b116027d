package cmd

import (
	"github.com/spf13/cobra"

	"github.com/opmodel/pkgbuild/internal/config"
	"github.com/opmodel/pkgbuild/internal/pipeline"
)

// TargetFlags holds flags common to commands that assemble manifests
// (build, diff, vet).
type TargetFlags struct {
	Targets []string
	Dev     bool
	OutDir  string
}

// AddTo registers the target flags on the given cobra command.
func (f *TargetFlags) AddTo(cmd *cobra.Command) {
	cmd.Flags().StringSliceVarP(&f.Targets, "target", "t", nil,
		"Build only the named targets (can be repeated)")
	cmd.Flags().BoolVar(&f.Dev, "dev", false,
		"Keep catalog: and workspace: references (development build)")
	cmd.Flags().StringVar(&f.OutDir, "out-dir", "",
		"Default output directory (env: PKGBUILD_OUT_DIR)")
}

// effectiveConfig applies the resolved --out-dir to the loaded config.
func (f *TargetFlags) effectiveConfig() *config.Config {
	var cfg config.Config
	if rawConfig != nil {
		cfg = *rawConfig
	}
	outDir := config.ResolveOutDir(config.ResolveOutDirOptions{
		FlagValue:   f.OutDir,
		ConfigValue: cfg.OutDir,
	})
	config.LogResolvedValues(outDir)
	cfg.OutDir = outDir.Value
	return cfg.WithDefaults()
}

// newPipeline creates a pipeline for the effective configuration.
func (f *TargetFlags) newPipeline() (*pipeline.Pipeline, error) {
	return pipeline.New(pipeline.Options{Config: f.effectiveConfig()})
}

// packageDir returns the package directory argument, defaulting to ".".
func packageDir(args []string) string {
	if len(args) > 0 {
		return args[0]
	}
	return "."
}
