package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/opmodel/pkgbuild/internal/catalog"
	oerrors "github.com/opmodel/pkgbuild/internal/errors"
	"github.com/opmodel/pkgbuild/internal/manifest"
	"github.com/opmodel/pkgbuild/internal/output"
	"github.com/opmodel/pkgbuild/internal/pipeline"
)

// NewVetCmd creates the vet command.
func NewVetCmd() *cobra.Command {
	var tf TargetFlags

	cmd := &cobra.Command{
		Use:   "vet [path]",
		Short: "Validate a package without writing manifests",
		Long: `Validate a package manifest through the build pipeline.

This command checks the manifest against the schema, extracts entries,
resolves dependency references and rewrites paths for every target. Nothing is
written; it is a pass/fail check with per-target feedback.

Arguments:
  path    Path to package directory (default: current directory)`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			p, err := tf.newPipeline()
			if err != nil {
				return reportError("initializing", err)
			}
			dir, err := filepath.Abs(packageDir(args))
			if err != nil {
				return err
			}
			targets, err := p.Config().SelectTargets(tf.Targets)
			if err != nil {
				return reportError("validation failed", oerrors.Wrap(oerrors.ErrValidation, err.Error()))
			}

			plan, err := p.Configure(dir, targets)
			if err != nil {
				return reportError("validation failed", err)
			}

			w := c.OutOrStdout()
			fmt.Fprintln(w, output.FormatVetCheck("Manifest found", filepath.Join(dir, manifest.FileName)))
			fmt.Fprintln(w, output.FormatVetCheck("Schema valid", ""))
			fmt.Fprintln(w, output.FormatVetCheck("Entries extracted", fmt.Sprintf("%d", len(plan.Entries))))

			if refs := catalog.ScanReferences(plan.Manifest); len(refs) > 0 && !tf.Dev {
				fmt.Fprintln(w, output.FormatVetCheck("Dependency references found", fmt.Sprintf("%d", len(refs))))
			}

			for _, target := range targets {
				if _, err := p.Assemble(c.Context(), plan, target, tf.Dev); err != nil {
					return reportError("validation failed", &pipeline.TargetError{Target: target.Name, Err: err})
				}
				fmt.Fprintln(w, output.FormatFileLine(filepath.Join(target.OutDir, manifest.FileName), output.StatusValid))
			}

			fmt.Fprintln(w, output.FormatCheckmark(fmt.Sprintf("Package valid (%d targets)", len(targets))))
			return nil
		},
	}

	tf.AddTo(cmd)

	return cmd
}
