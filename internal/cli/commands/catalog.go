package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

// NewCatalogCommand creates the catalog command.
func NewCatalogCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Show the active catalog",
		Long: `Show the keywords, relations, fields and functions used for
classification and completion.

The catalog comes from the configured catalog file, a live database
schema (schema.driver), or the built-in NFL sample. Use -o yaml to export
it as a catalog file.`,
		Example: `  yql catalog
  yql catalog -o yaml > catalog.yaml
  yql catalog --schema-driver sqlite --schema-dsn nfl.db`,
		Args: cobra.NoArgs,
		RunE: runCatalog,
	}

	cmd.AddCommand(newCatalogDescribeCommand())

	return cmd
}

func runCatalog(cmd *cobra.Command, _ []string) error {
	cmdCtx := NewCommandContext(cmd)
	cat, err := cmdCtx.Catalog(cmd.Context())
	if err != nil {
		return err
	}
	def := cat.Definition()

	r := cmdCtx.Renderer
	return r.Structured(def, func() {
		r.Heading("relations")
		rows := make([][]any, 0, len(def.Relations))
		for _, rel := range def.Relations {
			rows = append(rows, []any{rel.Name, len(rel.Fields), strings.Join(rel.Fields, ", ")})
		}
		r.Table([]string{"Relation", "Count", "Fields"}, rows)

		for _, section := range []struct {
			name  string
			items []string
		}{
			{"keywords", def.Keywords},
			{"functions", def.Functions},
		} {
			_, _ = fmt.Fprintln(r.Out())
			r.Heading(fmt.Sprintf("%s (%d)", section.name, len(section.items)))
			_, _ = fmt.Fprintln(r.Out(), strings.Join(section.items, " "))
		}
	})
}

func newCatalogDescribeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "describe <name>",
		Short: "Describe a keyword, relation, function or field",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmdCtx := NewCommandContext(cmd)
			cat, err := cmdCtx.Catalog(cmd.Context())
			if err != nil {
				return err
			}
			text, ok := cat.Describe(args[0])
			if !ok {
				return fmt.Errorf("%q is not in the catalog", args[0])
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), text)
			return nil
		},
	}
}
