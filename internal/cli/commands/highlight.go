package commands

import (
	"fmt"
	"strings"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
	"github.com/spf13/cobra"

	"github.com/leapstack-labs/yql/pkg/highlight"
	"github.com/leapstack-labs/yql/pkg/lexer"
	"github.com/leapstack-labs/yql/pkg/token"
)

// HighlightOptions holds options for the highlight command.
type HighlightOptions struct {
	HTML     bool
	CSS      bool
	Markdown bool
}

// NewHighlightCommand creates the highlight command.
func NewHighlightCommand() *cobra.Command {
	opts := &HighlightOptions{}

	cmd := &cobra.Command{
		Use:   "highlight [file]",
		Short: "Print YQL source with syntax highlighting",
		Long: `Print YQL source with ANSI colors, as HTML spans with --html, or as a
fenced Markdown code block with --markdown.

Colors follow the configured theme and are dropped when output is not a
terminal or color is disabled.`,
		Example: `  yql highlight query.yql
  yql highlight --html --css query.yql > query.html
  yql highlight --markdown query.yql >> README.md`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHighlight(cmd, args, opts)
		},
	}

	cmd.Flags().BoolVar(&opts.HTML, "html", false, "Emit HTML spans instead of ANSI colors")
	cmd.Flags().BoolVar(&opts.CSS, "css", false, "With --html, prepend a <style> block for the theme")
	cmd.Flags().BoolVar(&opts.Markdown, "markdown", false, "Emit a fenced Markdown code block")
	cmd.MarkFlagsMutuallyExclusive("html", "markdown")

	return cmd
}

func runHighlight(cmd *cobra.Command, args []string, opts *HighlightOptions) error {
	cmdCtx := NewCommandContext(cmd)
	source, err := readSource(cmd, args)
	if err != nil {
		return err
	}
	cat, err := cmdCtx.Catalog(cmd.Context())
	if err != nil {
		return err
	}
	theme, err := highlight.ThemeByName(cmdCtx.Cfg.Theme)
	if err != nil {
		return err
	}

	tokens := lexer.Tokenize(cat, source)
	out := cmd.OutOrStdout()

	if opts.Markdown {
		md, err := toMarkdown(source, tokens)
		if err != nil {
			return err
		}
		_, _ = fmt.Fprintln(out, md)
		return nil
	}

	if opts.HTML {
		if opts.CSS {
			_, _ = fmt.Fprintf(out, "<style>\n%s</style>\n", highlight.CSS(theme))
		}
		_, _ = fmt.Fprintf(out, "<pre class=\"yql\">%s</pre>\n", highlight.HTML(source, tokens))
		return nil
	}

	rendered := highlight.ANSI(source, tokens, theme, cmdCtx.Renderer.Profile())
	_, _ = fmt.Fprint(out, rendered)
	if !strings.HasSuffix(source, "\n") {
		_, _ = fmt.Fprintln(out)
	}
	return nil
}

// toMarkdown converts the HTML rendering into a fenced code block.
func toMarkdown(source string, tokens []token.Token) (string, error) {
	doc := `<pre><code class="language-yql">` + highlight.HTML(source, tokens) + `</code></pre>`
	md, err := htmltomarkdown.ConvertString(doc)
	if err != nil {
		return "", fmt.Errorf("failed to convert to markdown: %w", err)
	}
	return strings.TrimSpace(md), nil
}
