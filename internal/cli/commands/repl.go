package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/chzyer/readline"
	"github.com/spf13/cobra"

	"github.com/leapstack-labs/yql/internal/state"
	"github.com/leapstack-labs/yql/pkg/catalog"
	"github.com/leapstack-labs/yql/pkg/complete"
	"github.com/leapstack-labs/yql/pkg/highlight"
	"github.com/leapstack-labs/yql/pkg/lexer"
)

const (
	replPrompt = "yql> "
	// replHistoryPreload is how many stored history entries seed readline.
	replHistoryPreload = 200
)

// NewREPLCommand creates the repl command.
func NewREPLCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "repl",
		Short: "Interactive prompt with completion and highlighting",
		Long: `Start an interactive prompt.

Tab completes keywords, relations, fields and functions from the active
catalog. Each entered line is echoed with syntax highlighting and recorded
in the query history.`,
		Example: `  yql repl
  yql repl --catalog catalog.yaml`,
		Args: cobra.NoArgs,
		RunE: runREPL,
	}
}

func runREPL(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	cmdCtx := NewCommandContext(cmd)

	cat, err := cmdCtx.Catalog(ctx)
	if err != nil {
		return err
	}
	theme, err := highlight.ThemeByName(cmdCtx.Cfg.Theme)
	if err != nil {
		return err
	}

	store := cmdCtx.OptionalStore(ctx)
	if store != nil {
		defer func() { _ = store.Close() }()
	}

	session := newREPLSession(cat, cmdCtx.Cfg.CompletionLimit(), highlight.NewRenderer(theme, cmdCtx.Renderer.Profile()), store, cmdCtx.Logger)
	session.out = cmd.OutOrStdout()
	session.errOut = cmd.ErrOrStderr()

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          replPrompt,
		AutoComplete:    &replCompleter{engine: session.engine},
		InterruptPrompt: "^C",
		EOFPrompt:       ".quit",
	})
	if err != nil {
		return fmt.Errorf("failed to initialize REPL: %w", err)
	}
	defer func() { _ = rl.Close() }()

	session.preloadHistory(ctx, rl)

	_, _ = fmt.Fprintf(session.out, "yql REPL (%d relations)\n", len(cat.Relations()))
	_, _ = fmt.Fprintln(session.out, "Type .help for commands, .quit to exit")
	_, _ = fmt.Fprintln(session.out)

	for {
		line, err := rl.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			continue
		}
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to read line: %w", err)
		}
		if quit := session.handleLine(ctx, line); quit {
			return nil
		}
	}
}

// replSession holds the state of one REPL run.
type replSession struct {
	catalog  *catalog.Catalog
	lexer    *lexer.Lexer
	engine   *complete.Engine
	renderer *highlight.Renderer
	store    state.Store // optional
	logger   *slog.Logger

	out    io.Writer
	errOut io.Writer
	last   string
}

func newREPLSession(cat *catalog.Catalog, limit int, renderer *highlight.Renderer, store state.Store, logger *slog.Logger) *replSession {
	return &replSession{
		catalog:  cat,
		lexer:    lexer.New(cat),
		engine:   complete.New(cat, complete.WithLimit(limit)),
		renderer: renderer,
		store:    store,
		logger:   logger,
		out:      io.Discard,
		errOut:   io.Discard,
	}
}

// preloadHistory seeds readline's in-memory history, oldest first.
func (s *replSession) preloadHistory(ctx context.Context, rl *readline.Instance) {
	if s.store == nil {
		return
	}
	entries, err := s.store.ListHistory(ctx, replHistoryPreload)
	if err != nil {
		s.logger.Warn("failed to load history", slog.Any("error", err))
		return
	}
	for i := len(entries) - 1; i >= 0; i-- {
		_ = rl.SaveHistory(entries[i].Query)
	}
}

// handleLine processes one input line and reports whether to quit.
func (s *replSession) handleLine(ctx context.Context, line string) bool {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" {
		return false
	}
	if strings.HasPrefix(trimmed, ".") {
		return s.handleDotCommand(ctx, trimmed)
	}

	_, _ = fmt.Fprintln(s.out, s.renderer.Render(line, s.lexer.Tokenize(line)))
	s.last = line
	if s.store != nil {
		if _, err := s.store.AddHistory(ctx, line, state.SourceREPL); err != nil {
			s.logger.Warn("failed to record history", slog.Any("error", err))
		}
	}
	return false
}

func (s *replSession) handleDotCommand(ctx context.Context, line string) bool {
	parts := strings.Fields(line)
	command := strings.ToLower(parts[0])

	switch command {
	case ".quit", ".exit":
		return true

	case ".help":
		printREPLHelp(s.out)

	case ".relations":
		for _, rel := range s.catalog.Relations() {
			_, _ = fmt.Fprintf(s.out, "%s (%d fields)\n", rel, len(s.catalog.Fields(rel)))
		}

	case ".fields":
		if len(parts) < 2 {
			_, _ = fmt.Fprintln(s.errOut, "Usage: .fields <relation>")
			break
		}
		if !s.catalog.IsRelation(parts[1]) {
			_, _ = fmt.Fprintf(s.errOut, "Error: unknown relation %q\n", parts[1])
			break
		}
		_, _ = fmt.Fprintln(s.out, strings.Join(s.catalog.Fields(strings.ToLower(parts[1])), ", "))

	case ".history":
		s.printHistory(ctx, parts[1:])

	case ".save":
		s.saveLast(ctx, strings.TrimSpace(strings.TrimPrefix(line, parts[0])))

	case ".saved":
		s.printSaved(ctx)

	default:
		_, _ = fmt.Fprintf(s.errOut, "Unknown command: %s (type .help for commands)\n", command)
	}
	return false
}

func (s *replSession) requireStore() bool {
	if s.store == nil {
		_, _ = fmt.Fprintln(s.errOut, "Error: state store is disabled")
		return false
	}
	return true
}

func (s *replSession) printHistory(ctx context.Context, args []string) {
	if !s.requireStore() {
		return
	}
	limit := 20
	if len(args) > 0 {
		n, err := strconv.Atoi(args[0])
		if err != nil || n <= 0 {
			_, _ = fmt.Fprintln(s.errOut, "Usage: .history [n]")
			return
		}
		limit = n
	}
	entries, err := s.store.ListHistory(ctx, limit)
	if err != nil {
		_, _ = fmt.Fprintf(s.errOut, "Error: %v\n", err)
		return
	}
	for i := len(entries) - 1; i >= 0; i-- {
		_, _ = fmt.Fprintf(s.out, "%4d  %s\n", entries[i].ID, entries[i].Query)
	}
}

func (s *replSession) saveLast(ctx context.Context, name string) {
	if !s.requireStore() {
		return
	}
	if name == "" {
		_, _ = fmt.Fprintln(s.errOut, "Usage: .save <name>")
		return
	}
	if s.last == "" {
		_, _ = fmt.Fprintln(s.errOut, "Error: nothing to save yet")
		return
	}
	q, err := s.store.SaveQuery(ctx, name, s.last, false)
	if err != nil {
		_, _ = fmt.Fprintf(s.errOut, "Error: %v\n", err)
		return
	}
	_, _ = fmt.Fprintf(s.out, "Saved %q\n", q.Name)
}

func (s *replSession) printSaved(ctx context.Context) {
	if !s.requireStore() {
		return
	}
	queries, err := s.store.ListQueries(ctx, false)
	if err != nil {
		_, _ = fmt.Fprintf(s.errOut, "Error: %v\n", err)
		return
	}
	for _, q := range queries {
		star := " "
		if q.Favorite {
			star = "*"
		}
		_, _ = fmt.Fprintf(s.out, "%s %-20s %s\n", star, q.Name, q.Query)
	}
}

func printREPLHelp(w io.Writer) {
	help := `
Commands:
  .help              Show this help message
  .relations         List relations in the catalog
  .fields <relation> List the fields of a relation
  .history [n]       Show the last n entered lines (default 20)
  .save <name>       Save the last entered line as a named query
  .saved             List saved queries
  .quit / .exit      Exit the REPL

Tips:
  - Tab completes keywords, relations, fields and functions
  - Use arrow keys to navigate history
`
	_, _ = fmt.Fprintln(w, help)
}

// replCompleter adapts the completion engine to readline. readline appends
// the returned suffixes after the typed word.
type replCompleter struct {
	engine *complete.Engine
}

// Do implements readline.AutoCompleter.
func (c *replCompleter) Do(line []rune, pos int) ([][]rune, int) {
	text := string(line)
	cursor := len(string(line[:pos]))
	start := complete.WordStart(text, cursor)
	word := text[start:cursor]

	var out [][]rune
	for _, cand := range c.engine.Suggest(text, cursor) {
		insert := cand.Text()
		if len(insert) < len(word) || !strings.EqualFold(insert[:len(word)], word) {
			continue
		}
		out = append(out, []rune(insert[len(word):]))
	}
	return out, len([]rune(word))
}
