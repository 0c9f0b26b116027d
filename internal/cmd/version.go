package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/opmodel/pkgbuild/internal/version"
)

// NewVersionCmd creates the version command.
func NewVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Long: `Show pkgbuild version information.

Displays:
  - pkgbuild version, commit, and build date
  - CUE SDK version used for schema validation`,
		RunE: func(c *cobra.Command, _ []string) error {
			fmt.Fprintln(c.OutOrStdout(), version.GetInfo().String())
			return nil
		},
	}
}
