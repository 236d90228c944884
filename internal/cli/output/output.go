// Package output renders command results as tables, JSON, or YAML.
//
// Auto mode picks a table on a terminal and JSON otherwise, so piped
// output stays machine readable.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/muesli/termenv"
	"golang.org/x/term"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"
)

// Mode selects the output format.
type Mode string

// Output modes.
const (
	ModeAuto  Mode = "auto"
	ModeTable Mode = "table"
	ModeJSON  Mode = "json"
	ModeYAML  Mode = "yaml"
)

// Renderer writes command output in the selected mode.
type Renderer struct {
	out    io.Writer
	errOut io.Writer
	mode   Mode
	isTTY  bool
	color  bool

	styles *lipgloss.Renderer
}

// NewRenderer creates a renderer, detecting whether out is a terminal.
func NewRenderer(out, errOut io.Writer, mode Mode) *Renderer {
	return NewRendererWithTTY(out, errOut, isTerminal(out), mode)
}

// NewRendererWithTTY creates a renderer with an explicit terminal state.
func NewRendererWithTTY(out, errOut io.Writer, isTTY bool, mode Mode) *Renderer {
	r := &Renderer{
		out:    out,
		errOut: errOut,
		mode:   mode,
		isTTY:  isTTY,
		color:  true,
		styles: lipgloss.NewRenderer(out),
	}
	r.applyProfile()
	return r
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd())) //nolint:gosec // Fd fits in int
}

// SetColor enables or disables ANSI styling.
func (r *Renderer) SetColor(enabled bool) {
	r.color = enabled
	r.applyProfile()
}

func (r *Renderer) applyProfile() {
	r.styles.SetColorProfile(r.Profile())
}

// Out returns the standard output writer.
func (r *Renderer) Out() io.Writer { return r.out }

// ErrOut returns the diagnostic writer.
func (r *Renderer) ErrOut() io.Writer { return r.errOut }

// IsTTY reports whether output goes to a terminal.
func (r *Renderer) IsTTY() bool { return r.isTTY }

// Mode returns the effective mode with auto resolved.
func (r *Renderer) Mode() Mode {
	switch r.mode {
	case ModeTable, ModeJSON, ModeYAML:
		return r.mode
	default:
		if r.isTTY {
			return ModeTable
		}
		return ModeJSON
	}
}

// Profile returns the color profile for styled output. Non-terminals and
// disabled color get termenv.Ascii.
func (r *Renderer) Profile() termenv.Profile {
	if !r.isTTY || !r.color {
		return termenv.Ascii
	}
	return termenv.NewOutput(r.out).EnvColorProfile()
}

// JSON writes v as indented JSON.
func (r *Renderer) JSON(v any) error {
	enc := json.NewEncoder(r.out)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to encode json: %w", err)
	}
	return nil
}

// YAML writes v as YAML.
func (r *Renderer) YAML(v any) error {
	enc := yaml.NewEncoder(r.out)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to encode yaml: %w", err)
	}
	return enc.Close()
}

// Table writes rows under header with the light box style.
func (r *Renderer) Table(header []string, rows [][]any) {
	if len(rows) == 0 {
		_, _ = fmt.Fprintln(r.out, "(0 rows)")
		return
	}

	t := table.NewWriter()
	t.SetOutputMirror(r.out)
	t.SetStyle(table.StyleLight)

	headerRow := make(table.Row, len(header))
	for i, h := range header {
		headerRow[i] = h
	}
	t.AppendHeader(headerRow)
	for _, row := range rows {
		t.AppendRow(table.Row(row))
	}
	t.Render()
}

// Structured writes v as JSON or YAML, or calls tableFn in table mode.
func (r *Renderer) Structured(v any, tableFn func()) error {
	switch r.Mode() {
	case ModeYAML:
		return r.YAML(v)
	case ModeJSON:
		return r.JSON(v)
	default:
		tableFn()
		return nil
	}
}

// Heading writes a bold title-cased heading.
func (r *Renderer) Heading(text string) {
	_, _ = fmt.Fprintln(r.out, r.styles.NewStyle().Bold(true).Render(Title(text)))
}

// Success writes a confirmation line.
func (r *Renderer) Success(format string, args ...any) {
	style := r.styles.NewStyle().Foreground(lipgloss.Color("#4ADE80"))
	_, _ = fmt.Fprintln(r.out, style.Render("✓ "+fmt.Sprintf(format, args...)))
}

// Warn writes a warning line to the diagnostic writer.
func (r *Renderer) Warn(format string, args ...any) {
	style := r.styles.NewStyle().Foreground(lipgloss.Color("#FBBF24"))
	_, _ = fmt.Fprintln(r.errOut, style.Render("! "+fmt.Sprintf(format, args...)))
}

// Title returns s in title case.
func Title(s string) string {
	return cases.Title(language.English).String(s)
}
