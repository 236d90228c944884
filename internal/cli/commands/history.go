package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/yql/internal/state"
)

// NewHistoryCommand creates the history command.
func NewHistoryCommand() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recently entered queries",
		Long: `Show queries recorded by the REPL, the editor and the HTTP API,
newest first.`,
		Example: `  yql history
  yql history --limit 5 -o json
  yql history clear`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmdCtx := NewCommandContext(cmd)
			store, err := cmdCtx.OpenStore(cmd.Context())
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			entries, err := store.ListHistory(cmd.Context(), limit)
			if err != nil {
				return fmt.Errorf("failed to list history: %w", err)
			}
			if entries == nil {
				entries = []*state.HistoryEntry{}
			}

			r := cmdCtx.Renderer
			return r.Structured(entries, func() {
				rows := make([][]any, 0, len(entries))
				for _, e := range entries {
					rows = append(rows, []any{e.ID, e.Source, e.RanAt.Local().Format("2006-01-02 15:04:05"), e.Query})
				}
				r.Table([]string{"ID", "Source", "Time", "Query"}, rows)
			})
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum number of entries")

	cmd.AddCommand(&cobra.Command{
		Use:   "clear",
		Short: "Delete all history entries",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmdCtx := NewCommandContext(cmd)
			store, err := cmdCtx.OpenStore(cmd.Context())
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			n, err := store.ClearHistory(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to clear history: %w", err)
			}
			cmdCtx.Renderer.Success("Cleared %d entries", n)
			return nil
		},
	})

	return cmd
}
