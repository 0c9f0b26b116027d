// Package cmd provides CLI command implementations.
package cmd

import (
	"github.com/spf13/cobra"

	"github.com/opmodel/pkgbuild/internal/config"
	"github.com/opmodel/pkgbuild/internal/output"
	"github.com/opmodel/pkgbuild/internal/version"
)

var (
	// Global flags
	configFlag     string
	verboseFlag    bool
	timestampsFlag bool

	// Loaded during PersistentPreRunE. The raw config keeps unset fields
	// empty so flag resolution can tell config values from defaults.
	rawConfig          *config.Config
	resolvedConfigPath config.ResolvedValue
)

// NewRootCmd creates the root command for the pkgbuild CLI.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "pkgbuild",
		Short: "Package manifest builder",
		Long: `pkgbuild turns a source package.json into the manifests published with
each build target.

It extracts build entries from the export map, resolves catalog: and
workspace: dependency references against the workspace catalog, and rewrites
every path to point at compiled output.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return initializeGlobals(cmd)
		},
	}

	rootCmd.PersistentFlags().StringVarP(&configFlag, "config", "c", "", "Path to config file (env: PKGBUILD_CONFIG)")
	rootCmd.PersistentFlags().BoolVarP(&verboseFlag, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().BoolVar(&timestampsFlag, "timestamps", true, "Show timestamps in log output")

	rootCmd.AddCommand(NewBuildCmd())
	rootCmd.AddCommand(NewEntriesCmd())
	rootCmd.AddCommand(NewCatalogCmd())
	rootCmd.AddCommand(NewDiffCmd())
	rootCmd.AddCommand(NewVetCmd())
	rootCmd.AddCommand(NewConfigCmd())
	rootCmd.AddCommand(NewVersionCmd())

	return rootCmd
}

// initializeGlobals sets up logging and loads configuration.
func initializeGlobals(cmd *cobra.Command) error {
	resolved, err := config.ResolveConfigPath(config.ResolveConfigPathOptions{FlagValue: configFlag})
	if err != nil {
		return err
	}
	resolvedConfigPath = resolved

	// Commands that don't need config (version, config init) still work
	// when the file is unreadable; the failure is reported once logging is up.
	loaded, loadErr := config.NewLoader().Load(resolved.Value)
	if loadErr != nil {
		loaded = &config.Config{}
	}
	rawConfig = loaded

	// Timestamps: flag (if explicitly set) > config > default (nil = true)
	logCfg := output.LogConfig{Verbose: verboseFlag}
	if cmd.Flags().Changed("timestamps") {
		logCfg.Timestamps = output.BoolPtr(timestampsFlag)
	} else if rawConfig.Log.Timestamps != nil {
		logCfg.Timestamps = rawConfig.Log.Timestamps
	}
	output.SetupLogging(logCfg)

	if loadErr != nil {
		output.Warn("ignoring config file, using defaults", "path", resolved.Value, "error", loadErr)
	}

	info := version.GetInfo()
	output.Debug("pkgbuild started", "version", info.Version, "cue_sdk", info.CUESDKVersion)
	config.LogResolvedValues(resolved)

	return nil
}

// GetConfig returns the loaded configuration with defaults applied.
func GetConfig() *config.Config {
	if rawConfig == nil {
		return config.DefaultConfig()
	}
	return rawConfig.WithDefaults()
}

// GetConfigPath returns the resolved config file path.
func GetConfigPath() string {
	if resolvedConfigPath.Value != "" {
		return resolvedConfigPath.Value
	}
	return configFlag
}
