package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/opmodel/pkgbuild/internal/config"
	oerrors "github.com/opmodel/pkgbuild/internal/errors"
	"github.com/opmodel/pkgbuild/internal/output"
)

// NewConfigVetCmd creates the config vet command.
func NewConfigVetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "vet",
		Short: "Validate the configuration file",
		Long: `Validate the pkgbuild configuration file against the internal schema.

The command validates the configuration file at ~/.pkgbuild/config.yaml by
default. Use --config flag to specify a different location.`,
		RunE: runConfigVet,
	}
}

func runConfigVet(c *cobra.Command, _ []string) error {
	path, err := configFilePath()
	if err != nil {
		return err
	}

	exists, err := config.ConfigFileExists(path)
	if err != nil {
		return fmt.Errorf("checking config file: %w", err)
	}
	if !exists {
		return oerrors.NewExitError(
			fmt.Errorf("config file not found: %s", path),
			oerrors.ExitNotFound,
		)
	}

	validator, err := config.NewValidator()
	if err != nil {
		return fmt.Errorf("creating validator: %w", err)
	}

	if err := validator.ValidateFile(path); err != nil {
		var validationErrs config.ValidationErrors
		if errors.As(err, &validationErrs) {
			output.Error("config validation failed", "file", path)
			for _, e := range validationErrs {
				output.Error("config validation failed", "field", e.Field, "issue", e.Message)
			}
			return &oerrors.ExitError{Code: oerrors.ExitValidationError, Err: err, Printed: true}
		}
		return fmt.Errorf("validating config: %w", err)
	}

	w := c.OutOrStdout()
	fmt.Fprintln(w, output.FormatVetCheck("Config file found", path))
	fmt.Fprintln(w, output.FormatVetCheck("Schema valid", ""))
	fmt.Fprintln(w, output.FormatCheckmark("Config valid"))
	return nil
}
