package cmd

import (
	"context"
	"fmt"
	"io"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/opmodel/pkgbuild/internal/output"
	"github.com/opmodel/pkgbuild/internal/pipeline"
)

// NewBuildCmd creates the build command.
func NewBuildCmd() *cobra.Command {
	var tf TargetFlags

	// Build-specific flags (local to this command)
	var (
		stdoutFlag bool
		outputFlag string
		queryFlag  string
		watchFlag  bool
	)

	cmd := &cobra.Command{
		Use:   "build [path]",
		Short: "Build publishable manifests",
		Long: `Build the publishable package.json of every configured target.

The source manifest is read, its build entries extracted, and for each target
dependency references are resolved and paths rewritten to compiled output.
Each result is written to <path>/<outDir>/package.json.

Arguments:
  path    Path to package directory (default: current directory)

Examples:
  # Build every target of the package in the current directory
  pkgbuild build

  # Build only the cjs target, keeping workspace links
  pkgbuild build --target cjs --dev

  # Print the esm manifest as YAML instead of writing it
  pkgbuild build --target esm --stdout -o yaml

  # Show only the export map
  pkgbuild build --stdout --query '$.exports'

  # Rebuild whenever package.json or the workspace catalog changes
  pkgbuild build --watch`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			return runBuild(c, args, &tf, buildOutput{
				stdout: stdoutFlag,
				format: outputFlag,
				query:  queryFlag,
				watch:  watchFlag,
			})
		},
	}

	tf.AddTo(cmd)

	cmd.Flags().BoolVar(&stdoutFlag, "stdout", false,
		"Print manifests instead of writing them")
	cmd.Flags().StringVarP(&outputFlag, "output", "o", "json",
		"Output format for --stdout: json, yaml")
	cmd.Flags().StringVarP(&queryFlag, "query", "q", "",
		"JSONPath expression selecting part of each manifest (implies --stdout)")
	cmd.Flags().BoolVarP(&watchFlag, "watch", "w", false,
		"Rebuild when package.json or the catalog file changes")

	return cmd
}

type buildOutput struct {
	stdout bool
	format string
	query  string
	watch  bool
}

func runBuild(c *cobra.Command, args []string, tf *TargetFlags, bo buildOutput) error {
	format, ok := output.ParseOutputFormat(bo.format)
	if !ok || format == output.FormatTable {
		return usageError("invalid output format %q (valid: json, yaml)", bo.format)
	}
	if bo.query != "" {
		bo.stdout = true
	}

	p, err := tf.newPipeline()
	if err != nil {
		return reportError("initializing build", err)
	}

	opts := pipeline.RunOptions{
		Dir:     packageDir(args),
		Targets: tf.Targets,
		Dev:     tf.Dev,
		DryRun:  bo.stdout,
	}
	show := func(result *pipeline.Result) error {
		if bo.stdout {
			return printManifests(c.OutOrStdout(), result, output.ManifestOptions{Format: format, Query: bo.query})
		}
		printWritten(c.OutOrStdout(), result)
		return nil
	}

	ctx := c.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	if bo.watch {
		ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
		defer stop()
		return p.Watch(ctx, pipeline.WatchOptions{
			RunOptions: opts,
			OnResult: func(result *pipeline.Result, err error) {
				if err != nil {
					_ = reportError("build failed", err)
					return
				}
				if err := show(result); err != nil {
					output.Error("printing result", "error", err)
				}
			},
		})
	}

	var result *pipeline.Result
	err = output.RunWithSpinner(ctx, "Building manifests", func() error {
		var runErr error
		result, runErr = p.Run(ctx, opts)
		return runErr
	})
	if err != nil {
		return reportError("build failed", err)
	}
	return show(result)
}

// printManifests writes every target's manifest. Several YAML documents are
// separated and labeled with their target.
func printManifests(w io.Writer, result *pipeline.Result, opts output.ManifestOptions) error {
	opts.Writer = w
	for _, tr := range result.Targets {
		if len(result.Targets) > 1 && opts.Format == output.FormatYAML {
			fmt.Fprintf(w, "---\n# target: %s\n", tr.Target.Name)
		}
		if err := output.WriteManifest(tr.Manifest, opts); err != nil {
			return fmt.Errorf("target %s: %w", tr.Target.Name, err)
		}
	}
	return nil
}

func printWritten(w io.Writer, result *pipeline.Result) {
	for _, tr := range result.Targets {
		path := tr.Path
		if rel, err := filepath.Rel(result.Plan.Dir, tr.Path); err == nil {
			path = rel
		}
		fmt.Fprintln(w, output.FormatFileLine(path, tr.Status))
	}
	name := result.Plan.Manifest.Name()
	if name == "" {
		name = filepath.Base(result.Plan.Dir)
	}
	fmt.Fprintln(w, output.FormatCheckmark(fmt.Sprintf("Built %s (%d targets)", output.StyleNoun.Render(name), len(result.Targets))))
}
