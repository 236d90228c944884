package commands

import (
	"github.com/spf13/cobra"

	"github.com/leapstack-labs/yql/pkg/complete"
)

// SuggestOptions holds options for the suggest command.
type SuggestOptions struct {
	Cursor int
	Limit  int
}

// SuggestResult is the output of the suggest command.
type SuggestResult struct {
	Context    string               `json:"context" yaml:"context"`
	Word       string               `json:"word" yaml:"word"`
	Cursor     int                  `json:"cursor" yaml:"cursor"`
	Candidates []complete.Candidate `json:"candidates" yaml:"candidates"`
}

// NewSuggestCommand creates the suggest command.
func NewSuggestCommand() *cobra.Command {
	opts := &SuggestOptions{}

	cmd := &cobra.Command{
		Use:   "suggest [text]",
		Short: "Suggest completions at a cursor position",
		Long: `Suggest keywords, relations, fields and functions for the word being
typed at the cursor. The cursor is a byte offset and defaults to the end
of the text. Without text arguments the source is read from stdin.`,
		Example: `  yql suggest "SELECT * FROM pl"
  yql suggest --cursor 7 "SELECT  FROM players" -o json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSuggest(cmd, args, opts)
		},
	}

	cmd.Flags().IntVar(&opts.Cursor, "cursor", -1, "Cursor byte offset (default: end of text)")
	cmd.Flags().IntVar(&opts.Limit, "limit", 0, "Maximum number of candidates (default: completion.limit)")

	return cmd
}

func runSuggest(cmd *cobra.Command, args []string, opts *SuggestOptions) error {
	cmdCtx := NewCommandContext(cmd)
	source, err := argOrStdin(cmd, args)
	if err != nil {
		return err
	}
	cat, err := cmdCtx.Catalog(cmd.Context())
	if err != nil {
		return err
	}

	cursor := opts.Cursor
	if cursor < 0 || cursor > len(source) {
		cursor = len(source)
	}
	limit := cmdCtx.Cfg.CompletionLimit()
	if opts.Limit > 0 {
		limit = opts.Limit
	}

	engine := complete.New(cat, complete.WithLimit(limit))
	analysis := complete.Analyze(source, cursor)
	result := SuggestResult{
		Context:    analysis.Context.String(),
		Word:       analysis.Word,
		Cursor:     cursor,
		Candidates: engine.Suggest(source, cursor),
	}

	r := cmdCtx.Renderer
	return r.Structured(result, func() {
		rows := make([][]any, 0, len(result.Candidates))
		for _, c := range result.Candidates {
			rows = append(rows, []any{c.Label, c.Kind.String(), c.Detail})
		}
		r.Table([]string{"Label", "Kind", "Detail"}, rows)
	})
}
