// Package editor is a terminal YQL editor with live highlighting and a
// completion popup.
package editor

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/leapstack-labs/yql/pkg/catalog"
	"github.com/leapstack-labs/yql/pkg/complete"
	"github.com/leapstack-labs/yql/pkg/highlight"
	"github.com/leapstack-labs/yql/pkg/lexer"
)

// chromeHeight is the number of rows taken by everything but the text.
const chromeHeight = 6

// Options configures a Model.
type Options struct {
	Catalog *catalog.Catalog // nil selects the built-in catalog
	Limit   int
	Theme   highlight.Theme
	Profile termenv.Profile
	Initial string
}

// Model is the bubbletea model of the editor.
type Model struct {
	buf      Buffer
	lexer    *lexer.Lexer
	engine   *complete.Engine
	renderer *highlight.Renderer

	suggestions []complete.Candidate
	selected    int
	popup       bool

	viewport viewport.Model
	help     help.Model
	keys     keyMap
	showHelp bool
	width    int
	height   int

	saved    bool
	quitting bool
}

// New creates an editor model.
func New(opts Options) Model {
	if opts.Theme.Name == "" {
		opts.Theme = highlight.Dark
	}
	return Model{
		buf:      *NewBuffer(opts.Initial),
		lexer:    lexer.New(opts.Catalog),
		engine:   complete.New(opts.Catalog, complete.WithLimit(opts.Limit)),
		renderer: highlight.NewRenderer(opts.Theme, opts.Profile),
		help:     help.New(),
		keys:     keys,
	}
}

// Run starts the editor on the terminal and returns the final model.
func Run(ctx context.Context, m Model, opts ...tea.ProgramOption) (Model, error) {
	opts = append([]tea.ProgramOption{tea.WithContext(ctx), tea.WithAltScreen()}, opts...)
	final, err := tea.NewProgram(m, opts...).Run()
	if err != nil {
		return m, fmt.Errorf("editor failed: %w", err)
	}
	return final.(Model), nil
}

// Text returns the current buffer contents.
func (m Model) Text() string { return m.buf.Text() }

// Cursor returns the cursor byte offset.
func (m Model) Cursor() int { return m.buf.Cursor() }

// Saved reports whether the editor was closed with the save binding.
func (m Model) Saved() bool { return m.saved }

// Suggestions returns the open popup's candidates, or nil when closed.
func (m Model) Suggestions() []complete.Candidate {
	if !m.popup {
		return nil
	}
	return m.suggestions
}

// Selected returns the index of the highlighted suggestion.
func (m Model) Selected() int { return m.selected }

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.viewport.Width = max(msg.Width-4, 10)
		m.viewport.Height = max(msg.Height-chromeHeight, 3)
		m.help.Width = msg.Width

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.quitting = true
			return m, tea.Quit
		case key.Matches(msg, m.keys.Save):
			m.saved = true
			m.quitting = true
			return m, tea.Quit
		case key.Matches(msg, m.keys.Help):
			m.showHelp = !m.showHelp
			return m, nil
		}

		if m.popup && m.handlePopupKey(msg) {
			break
		}
		if key.Matches(msg, m.keys.Suggest) {
			m.refresh(true)
			break
		}
		m.edit(msg)
	}

	m.syncViewport()
	return m, nil
}

// handlePopupKey reports whether msg was consumed by the open popup.
func (m *Model) handlePopupKey(msg tea.KeyMsg) bool {
	n := len(m.suggestions)
	switch {
	case key.Matches(msg, m.keys.Next):
		m.selected = (m.selected + 1) % n
	case key.Matches(msg, m.keys.Prev):
		m.selected = (m.selected - 1 + n) % n
	case key.Matches(msg, m.keys.Accept):
		text, cursor := complete.Apply(m.buf.Text(), m.buf.Cursor(), m.suggestions[m.selected])
		m.buf.Set(text, cursor)
		m.popup = false
	case key.Matches(msg, m.keys.Dismiss):
		m.popup = false
	default:
		return false
	}
	return true
}

func (m *Model) edit(msg tea.KeyMsg) {
	switch msg.Type {
	case tea.KeyRunes:
		m.buf.Insert(string(msg.Runes))
		m.refresh(false)
	case tea.KeySpace:
		m.buf.Insert(" ")
		m.refresh(false)
	case tea.KeyTab:
		m.buf.Insert("  ")
		m.popup = false
	case tea.KeyEnter:
		m.buf.Insert("\n")
		m.popup = false
	case tea.KeyBackspace:
		m.buf.Backspace()
		m.refresh(false)
	case tea.KeyDelete:
		m.buf.Delete()
		m.refresh(false)
	case tea.KeyLeft:
		m.buf.Left()
		m.popup = false
	case tea.KeyRight:
		m.buf.Right()
		m.popup = false
	case tea.KeyUp:
		m.buf.Up()
	case tea.KeyDown:
		m.buf.Down()
	case tea.KeyHome:
		m.buf.Home()
		m.popup = false
	case tea.KeyEnd:
		m.buf.End()
		m.popup = false
	}
}

// refresh recomputes suggestions. Without force the popup only opens while
// a word is being typed.
func (m *Model) refresh(force bool) {
	text, cursor := m.buf.Text(), m.buf.Cursor()
	if !force && complete.Analyze(text, cursor).Word == "" {
		m.popup = false
		return
	}
	m.suggestions = m.engine.Suggest(text, cursor)
	m.selected = 0
	m.popup = len(m.suggestions) > 0
}

// syncViewport keeps the cursor line visible.
func (m *Model) syncViewport() {
	if m.viewport.Height == 0 {
		return
	}
	m.viewport.SetContent(m.body())
	line := m.buf.Position().Line
	switch {
	case line < m.viewport.YOffset:
		m.viewport.SetYOffset(line)
	case line >= m.viewport.YOffset+m.viewport.Height:
		m.viewport.SetYOffset(line - m.viewport.Height + 1)
	}
}

func (m Model) body() string {
	text := m.buf.Text()
	return m.renderer.RenderCursor(text, m.lexer.Tokenize(text), m.buf.Cursor())
}

// View implements tea.Model.
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	pos := m.buf.Position()
	header := lipgloss.JoinHorizontal(lipgloss.Left,
		titleStyle.Render("YQL"),
		"  ",
		mutedStyle.Render(fmt.Sprintf("Ln %d, Col %d", pos.Line+1, pos.Column+1)),
	)

	content := m.body()
	if m.viewport.Height > 0 {
		content = m.viewport.View()
	}

	sections := []string{header, editorStyle.Render(content)}
	if m.popup {
		sections = append(sections, m.renderPopup())
	}
	if m.showHelp {
		sections = append(sections, m.help.FullHelpView(m.keys.FullHelp()))
	} else {
		sections = append(sections, m.help.ShortHelpView(m.keys.ShortHelp()))
	}
	return strings.Join(sections, "\n")
}

func (m Model) renderPopup() string {
	width := 0
	for _, c := range m.suggestions {
		width = max(width, len(c.Label))
	}

	lines := make([]string, len(m.suggestions))
	for i, c := range m.suggestions {
		line := kindStyle.Render(c.Kind.String()) + fmt.Sprintf("%-*s  ", width, c.Label) + mutedStyle.Render(c.Detail)
		if i == m.selected {
			line = selectedStyle.Render(line)
		}
		lines[i] = line
	}
	return popupStyle.Render(strings.Join(lines, "\n"))
}
