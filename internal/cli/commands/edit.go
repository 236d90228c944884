package commands

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/muesli/termenv"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/leapstack-labs/yql/internal/editor"
	"github.com/leapstack-labs/yql/internal/state"
	"github.com/leapstack-labs/yql/pkg/highlight"
)

// NewEditCommand creates the edit command.
func NewEditCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "edit [file]",
		Short: "Open the terminal editor",
		Long: `Open a full-screen editor with live highlighting and a completion popup.

Keys:
  ↑/↓         select a suggestion
  tab/enter   accept the selected suggestion
  esc         close the suggestions
  ctrl+space  suggest at the cursor
  ctrl+s      print the buffer to stdout and exit
  ctrl+c      quit without printing

A printed buffer is also recorded in the query history.`,
		Example: `  yql edit
  yql edit query.yql > query.yql.new`,
		Args: cobra.MaximumNArgs(1),
		RunE: runEdit,
	}
}

func runEdit(cmd *cobra.Command, args []string) error {
	if !term.IsTerminal(int(os.Stdin.Fd())) { //nolint:gosec // Fd fits in int
		return errors.New("edit requires an interactive terminal")
	}

	ctx := cmd.Context()
	cmdCtx := NewCommandContext(cmd)

	initial := ""
	if len(args) == 1 {
		text, err := readSource(cmd, args)
		if err != nil {
			return err
		}
		initial = text
	}

	cat, err := cmdCtx.Catalog(ctx)
	if err != nil {
		return err
	}
	theme, err := highlight.ThemeByName(cmdCtx.Cfg.Theme)
	if err != nil {
		return err
	}

	// The buffer is printed to stdout, so draw on stderr when stdout is
	// redirected.
	screen := os.Stdout
	if !term.IsTerminal(int(os.Stdout.Fd())) { //nolint:gosec // Fd fits in int
		screen = os.Stderr
	}
	profile := termenv.Ascii
	if cmdCtx.Cfg.Color {
		profile = termenv.NewOutput(screen).EnvColorProfile()
	}

	m, err := editor.Run(ctx, editor.New(editor.Options{
		Catalog: cat,
		Limit:   cmdCtx.Cfg.CompletionLimit(),
		Theme:   theme,
		Profile: profile,
		Initial: initial,
	}), tea.WithOutput(screen))
	if err != nil {
		return err
	}
	if !m.Saved() {
		return nil
	}

	_, _ = fmt.Fprintln(cmd.OutOrStdout(), m.Text())

	if store := cmdCtx.OptionalStore(ctx); store != nil {
		defer func() { _ = store.Close() }()
		if _, err := store.AddHistory(ctx, m.Text(), state.SourceEditor); err != nil && !errors.Is(err, state.ErrEmptyQuery) {
			cmdCtx.Logger.Warn("failed to record history", slog.Any("error", err))
		}
	}
	return nil
}
