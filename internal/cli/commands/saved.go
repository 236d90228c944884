package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/yql/internal/state"
)

// NewSavedCommand creates the saved command and its subcommands.
func NewSavedCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "saved",
		Aliases: []string{"queries"},
		Short:   "Manage saved queries",
		Long: `Manage named queries kept in the state database.

Queries are addressed by name or ID. The same queries are available from the
REPL (.save, .saved) and the HTTP API.`,
	}

	cmd.AddCommand(newSavedAddCommand())
	cmd.AddCommand(newSavedListCommand())
	cmd.AddCommand(newSavedShowCommand())
	cmd.AddCommand(newSavedRemoveCommand())
	cmd.AddCommand(newSavedFavoriteCommand())

	return cmd
}

func newSavedAddCommand() *cobra.Command {
	var favorite bool

	cmd := &cobra.Command{
		Use:   "add <name> [query|-]",
		Short: "Save a query under a name",
		Long: `Save a query under a name, replacing the text of an existing query with
the same name. The query is read from stdin when omitted or "-".`,
		Example: `  yql saved add top-qbs "SELECT name FROM players WHERE position = 'QB'"
  yql saved add weekly - < weekly.yql`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			query, err := argOrStdin(cmd, args[1:])
			if err != nil {
				return err
			}

			cmdCtx := NewCommandContext(cmd)
			store, err := cmdCtx.OpenStore(cmd.Context())
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			q, err := store.SaveQuery(cmd.Context(), args[0], strings.TrimSpace(query), favorite)
			if err != nil {
				return fmt.Errorf("failed to save query: %w", err)
			}
			return cmdCtx.Renderer.Structured(q, func() {
				cmdCtx.Renderer.Success("Saved %q (%s)", q.Name, q.ID)
			})
		},
	}

	cmd.Flags().BoolVar(&favorite, "favorite", false, "Mark the query as a favorite")

	return cmd
}

func newSavedListCommand() *cobra.Command {
	var favorites bool

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List saved queries",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmdCtx := NewCommandContext(cmd)
			store, err := cmdCtx.OpenStore(cmd.Context())
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			queries, err := store.ListQueries(cmd.Context(), favorites)
			if err != nil {
				return fmt.Errorf("failed to list saved queries: %w", err)
			}
			if queries == nil {
				queries = []*state.SavedQuery{}
			}

			r := cmdCtx.Renderer
			return r.Structured(queries, func() {
				rows := make([][]any, 0, len(queries))
				for _, q := range queries {
					star := ""
					if q.Favorite {
						star = "*"
					}
					rows = append(rows, []any{star, q.Name, q.Query, q.UpdatedAt.Local().Format("2006-01-02 15:04")})
				}
				r.Table([]string{"", "Name", "Query", "Updated"}, rows)
			})
		},
	}

	cmd.Flags().BoolVar(&favorites, "favorites", false, "Only list favorites")

	return cmd
}

func newSavedShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show <name|id>",
		Short: "Print a saved query",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmdCtx := NewCommandContext(cmd)
			store, err := cmdCtx.OpenStore(cmd.Context())
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			q, err := store.GetQuery(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return cmdCtx.Renderer.Structured(q, func() {
				_, _ = fmt.Fprintln(cmdCtx.Renderer.Out(), q.Query)
			})
		},
	}
}

func newSavedRemoveCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "rm <name|id>",
		Aliases: []string{"delete"},
		Short:   "Delete a saved query",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmdCtx := NewCommandContext(cmd)
			store, err := cmdCtx.OpenStore(cmd.Context())
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			if err := store.DeleteQuery(cmd.Context(), args[0]); err != nil {
				return err
			}
			cmdCtx.Renderer.Success("Deleted %q", args[0])
			return nil
		},
	}
}

func newSavedFavoriteCommand() *cobra.Command {
	var off bool

	cmd := &cobra.Command{
		Use:   "fav <name|id>",
		Short: "Mark a saved query as a favorite",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmdCtx := NewCommandContext(cmd)
			store, err := cmdCtx.OpenStore(cmd.Context())
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			if err := store.SetFavorite(cmd.Context(), args[0], !off); err != nil {
				return err
			}
			if off {
				cmdCtx.Renderer.Success("Unmarked %q", args[0])
			} else {
				cmdCtx.Renderer.Success("Marked %q as favorite", args[0])
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&off, "off", false, "Remove the favorite mark instead")

	return cmd
}
