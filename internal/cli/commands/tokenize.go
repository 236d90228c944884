package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/leapstack-labs/yql/internal/cli/output"
	"github.com/leapstack-labs/yql/pkg/lexer"
	"github.com/leapstack-labs/yql/pkg/token"
)

// maxParallelFiles bounds concurrent file tokenization.
const maxParallelFiles = 8

// TokenizeOptions holds options for the tokenize command.
type TokenizeOptions struct {
	Segments bool
}

// TokenizeResult is the output for one input.
type TokenizeResult struct {
	File     string          `json:"file,omitempty" yaml:"file,omitempty"`
	Tokens   []token.Token   `json:"tokens" yaml:"tokens"`
	Segments []token.Segment `json:"segments,omitempty" yaml:"segments,omitempty"`
}

// NewTokenizeCommand creates the tokenize command.
func NewTokenizeCommand() *cobra.Command {
	opts := &TokenizeOptions{}

	cmd := &cobra.Command{
		Use:   "tokenize [file...]",
		Short: "Classify YQL source into highlighting tokens",
		Long: `Tokenize YQL source read from files or stdin.

Each token carries its kind and half-open byte offsets. With --segments the
gaps between tokens are included so the segments reproduce the input.
Several files are tokenized concurrently.`,
		Example: `  # Tokenize a file
  yql tokenize query.yql

  # Tokenize stdin as JSON
  echo "SELECT name FROM players" | yql tokenize -o json

  # Include whitespace gaps
  yql tokenize --segments query.yql`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTokenize(cmd, args, opts)
		},
	}

	cmd.Flags().BoolVar(&opts.Segments, "segments", false, "Include gap segments between tokens")

	return cmd
}

func runTokenize(cmd *cobra.Command, args []string, opts *TokenizeOptions) error {
	cmdCtx := NewCommandContext(cmd)
	cat, err := cmdCtx.Catalog(cmd.Context())
	if err != nil {
		return err
	}
	lx := lexer.New(cat)

	inputs := args
	if len(inputs) == 0 {
		inputs = []string{"-"}
	}

	results, err := tokenizeAll(cmd.Context(), inputs, func(input string) (string, error) {
		return readSource(cmd, []string{input})
	}, lx, opts.Segments)
	if err != nil {
		return err
	}

	r := cmdCtx.Renderer
	var v any = results
	if len(results) == 1 {
		v = results[0]
	}
	return r.Structured(v, func() {
		for _, res := range results {
			if len(results) > 1 {
				r.Heading(res.File)
			}
			renderTokenTable(r, res)
		}
	})
}

// tokenizeAll reads and tokenizes inputs concurrently, keeping input order.
func tokenizeAll(ctx context.Context, inputs []string, read func(string) (string, error), lx *lexer.Lexer, segments bool) ([]TokenizeResult, error) {
	results := make([]TokenizeResult, len(inputs))

	eg, egctx := errgroup.WithContext(ctx)
	eg.SetLimit(maxParallelFiles)
	for i, input := range inputs {
		eg.Go(func() error {
			if err := egctx.Err(); err != nil {
				return err
			}
			source, err := read(input)
			if err != nil {
				return fmt.Errorf("%s: %w", input, err)
			}
			tokens := lx.Tokenize(source)
			if tokens == nil {
				tokens = []token.Token{}
			}
			res := TokenizeResult{Tokens: tokens}
			if input != "-" {
				res.File = input
			}
			if segments {
				res.Segments = token.Segments(source, tokens)
			}
			results[i] = res
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func renderTokenTable(r *output.Renderer, res TokenizeResult) {
	if res.Segments != nil {
		rows := make([][]any, 0, len(res.Segments))
		for _, s := range res.Segments {
			kind := s.Kind.String()
			if s.Gap {
				kind = "gap"
			}
			rows = append(rows, []any{s.Start, s.End, kind, fmt.Sprintf("%q", s.Text)})
		}
		r.Table([]string{"Start", "End", "Kind", "Text"}, rows)
		return
	}

	rows := make([][]any, 0, len(res.Tokens))
	for _, t := range res.Tokens {
		rows = append(rows, []any{t.Start, t.End, t.Kind.String(), fmt.Sprintf("%q", t.Text)})
	}
	r.Table([]string{"Start", "End", "Kind", "Text"}, rows)
}
