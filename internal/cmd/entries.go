package cmd

import (
	"fmt"
	"path/filepath"
	"sort"

	"github.com/spf13/cobra"

	"github.com/opmodel/pkgbuild/internal/output"
	"github.com/opmodel/pkgbuild/internal/pipeline"
	"github.com/opmodel/pkgbuild/internal/rewrite"
)

// NewEntriesCmd creates the entries command.
func NewEntriesCmd() *cobra.Command {
	var (
		outputFlag string
		treeFlag   bool
	)

	cmd := &cobra.Command{
		Use:   "entries [path]",
		Short: "List build entries",
		Long: `List the build entries extracted from the package's export map and bin field.

Each entry maps an output name to the source file the bundler compiles. With
the nested index layout the export overrides are listed as well.

Arguments:
  path    Path to package directory (default: current directory)

Examples:
  # Show entries as a table
  pkgbuild entries

  # Show the output files each entry produces
  pkgbuild entries --tree

  # Machine-readable
  pkgbuild entries -o json`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			format, ok := output.ParseOutputFormat(outputFlag)
			if !ok {
				return usageError("invalid output format %q (valid: table, json, yaml)", outputFlag)
			}

			p, err := pipeline.New(pipeline.Options{Config: GetConfig()})
			if err != nil {
				return reportError("initializing", err)
			}
			dir, err := filepath.Abs(packageDir(args))
			if err != nil {
				return err
			}
			plan, err := p.Configure(dir, p.Config().Targets)
			if err != nil {
				return reportError("reading entries", err)
			}

			w := c.OutOrStdout()
			switch {
			case format != output.FormatTable:
				return output.WriteStructured(w, format, map[string]any{
					"entries":   plan.Entries,
					"overrides": plan.Overrides,
				})
			case treeFlag:
				outExt := rewrite.Format(p.Config().Targets[0].Format).OutputExt()
				files := make(map[string]string, len(plan.Entries))
				for name, src := range plan.Entries {
					files[name+outExt] = src
				}
				fmt.Fprint(w, output.RenderFileTree(p.Config().Targets[0].OutDir, files))
			default:
				if len(plan.Entries) == 0 {
					output.Info("no entries found", "dir", dir)
					return nil
				}
				fmt.Fprintln(w, entriesTable(plan).String())
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&outputFlag, "output", "o", "table",
		"Output format: table, json, yaml")
	cmd.Flags().BoolVar(&treeFlag, "tree", false,
		"Show the output files produced by each entry")

	return cmd
}

func entriesTable(plan *pipeline.Plan) *output.Table {
	names := make([]string, 0, len(plan.Entries))
	for name := range plan.Entries {
		names = append(names, name)
	}
	sort.Strings(names)

	tbl := output.NewTable("ENTRY", "SOURCE")
	for _, name := range names {
		tbl.Row(name, plan.Entries[name])
	}
	return tbl
}
