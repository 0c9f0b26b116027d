package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/opmodel/pkgbuild/internal/manifest"
	"github.com/opmodel/pkgbuild/internal/output"
	"github.com/opmodel/pkgbuild/internal/pipeline"
)

// NewDiffCmd creates the diff command.
func NewDiffCmd() *cobra.Command {
	var tf TargetFlags

	cmd := &cobra.Command{
		Use:   "diff [path]",
		Short: "Show what a build changes in the manifest",
		Long: `Show the differences between the source package.json and the manifest
each target would publish, using a semantic YAML diff (via dyff).

Nothing is written.

Arguments:
  path    Path to package directory (default: current directory)

Examples:
  # Diff every target
  pkgbuild diff

  # Diff the cjs target of a development build
  pkgbuild diff --target cjs --dev`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			p, err := tf.newPipeline()
			if err != nil {
				return reportError("initializing", err)
			}

			result, err := p.Run(c.Context(), pipeline.RunOptions{
				Dir:     packageDir(args),
				Targets: tf.Targets,
				Dev:     tf.Dev,
				DryRun:  true,
			})
			if err != nil {
				return reportError("diff failed", err)
			}

			w := c.OutOrStdout()
			for _, tr := range result.Targets {
				diff, err := output.DiffManifests(result.Plan.Manifest, tr.Manifest, output.DiffOptions{
					FromName: manifest.FileName,
					ToName:   filepath.Join(tr.Target.OutDir, manifest.FileName),
					UseColor: output.IsTTY(),
				})
				if err != nil {
					return reportError("diff failed", err)
				}

				log := output.TargetLogger(tr.Target.Name)
				log.Info(diff.Summary())
				if diff.Report != "" {
					fmt.Fprintln(w, diff.Report)
				}
			}
			return nil
		},
	}

	tf.AddTo(cmd)

	return cmd
}
