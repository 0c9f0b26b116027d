package cmd

import (
	"fmt"
	"path/filepath"
	"sort"

	"github.com/spf13/cobra"

	"github.com/opmodel/pkgbuild/internal/catalog"
	oerrors "github.com/opmodel/pkgbuild/internal/errors"
	"github.com/opmodel/pkgbuild/internal/output"
	"github.com/opmodel/pkgbuild/internal/pipeline"
)

// NewCatalogCmd creates the catalog command.
func NewCatalogCmd() *cobra.Command {
	var outputFlag string

	cmd := &cobra.Command{
		Use:   "catalog [path]",
		Short: "Show the workspace dependency catalog",
		Long: `Show the dependency catalog catalog: references resolve against.

The catalog file is looked up from the package directory upwards. Named
catalogs are listed next to the default one.

Arguments:
  path    Path to package directory (default: current directory)`,
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

			resolver := p.Resolver(dir)
			root, found := resolver.Root()
			if !found {
				return reportError("reading catalog", oerrors.NewNotFoundError(
					fmt.Sprintf("no %s found above %s", resolver.FileName(), dir), dir,
					"run inside a workspace or set catalogFile in the config"))
			}
			ws := resolver.Workspace()

			w := c.OutOrStdout()
			if format != output.FormatTable {
				return output.WriteStructured(w, format, map[string]any{
					"file":     filepath.Join(root, resolver.FileName()),
					"catalogs": ws.ByName(),
				})
			}

			output.Info("catalog loaded", "file", filepath.Join(root, resolver.FileName()), "entries", ws.Size())
			if ws.Size() == 0 {
				return nil
			}
			fmt.Fprintln(w, catalogTable(ws).String())
			return nil
		},
	}

	cmd.Flags().StringVarP(&outputFlag, "output", "o", "table",
		"Output format: table, json, yaml")

	return cmd
}

func catalogTable(ws *catalog.Workspace) *output.Table {
	byName := ws.ByName()
	names := make([]string, 0, len(byName))
	for name := range byName {
		names = append(names, name)
	}
	sort.Strings(names)

	tbl := output.NewTable("CATALOG", "DEPENDENCY", "VERSION")
	for _, name := range names {
		deps := make([]string, 0, len(byName[name]))
		for dep := range byName[name] {
			deps = append(deps, dep)
		}
		sort.Strings(deps)
		for _, dep := range deps {
			tbl.Row(name, dep, byName[name][dep])
		}
	}
	return tbl
}
