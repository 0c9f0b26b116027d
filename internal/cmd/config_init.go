package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/opmodel/pkgbuild/internal/config"
	oerrors "github.com/opmodel/pkgbuild/internal/errors"
	"github.com/opmodel/pkgbuild/internal/output"
)

const configHeader = "# pkgbuild configuration\n# Keys can be overridden with PKGBUILD_* environment variables.\n\n"

// NewConfigInitCmd creates the config init command.
func NewConfigInitCmd() *cobra.Command {
	var forceFlag bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create a new configuration file",
		Long: `Create a new pkgbuild configuration file with default values.

The configuration file is created at ~/.pkgbuild/config.yaml by default.
Use --config flag to specify a different location.`,
		RunE: func(c *cobra.Command, _ []string) error {
			return runConfigInit(c, forceFlag)
		},
	}

	cmd.Flags().BoolVarP(&forceFlag, "force", "f", false, "Overwrite existing config file")

	return cmd
}

func runConfigInit(c *cobra.Command, force bool) error {
	path, err := configFilePath()
	if err != nil {
		return err
	}

	exists, err := config.ConfigFileExists(path)
	if err != nil {
		return fmt.Errorf("checking config file: %w", err)
	}
	if exists && !force {
		return oerrors.NewExitError(
			fmt.Errorf("config file already exists at %s (use --force to overwrite)", path),
			oerrors.ExitGeneralError,
		)
	}

	if err := config.EnsureDir(path); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := config.DefaultConfig().Marshal()
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	data = append([]byte(configHeader), data...)

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	fmt.Fprintln(c.OutOrStdout(), output.FormatCheckmark("Config file created: "+path))
	return nil
}

// configFilePath returns the expanded --config path, or the default one.
func configFilePath() (string, error) {
	path := GetConfigPath()
	if path == "" {
		var err error
		path, err = config.GetConfigFile()
		if err != nil {
			return "", fmt.Errorf("getting config file path: %w", err)
		}
	}
	expanded, err := config.ExpandPath(path)
	if err != nil {
		return "", fmt.Errorf("expanding config path: %w", err)
	}
	return expanded, nil
}
