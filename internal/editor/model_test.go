package editor

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/muesli/termenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/yql/pkg/complete"
)

func newTestModel(initial string) Model {
	return New(Options{Profile: termenv.Ascii, Initial: initial})
}

func send(t *testing.T, m Model, msgs ...tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	var cmd tea.Cmd
	for _, msg := range msgs {
		var next tea.Model
		next, cmd = m.Update(msg)
		m = next.(Model)
	}
	return m, cmd
}

func typeText(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func labels(candidates []complete.Candidate) []string {
	out := make([]string, len(candidates))
	for i, c := range candidates {
		out[i] = c.Label
	}
	return out
}

func TestTypingOpensPopup(t *testing.T) {
	m, _ := send(t, newTestModel(""), typeText("SELECT * FROM pl"))

	assert.Equal(t, "SELECT * FROM pl", m.Text())
	assert.Equal(t, []string{"player_stats", "players"}, labels(m.Suggestions()))
	assert.Equal(t, 0, m.Selected())

	m, _ = send(t, m, tea.KeyMsg{Type: tea.KeySpace})
	assert.Nil(t, m.Suggestions(), "no word being typed")
}

func TestAcceptSuggestion(t *testing.T) {
	m, _ := send(t, newTestModel(""),
		typeText("SELECT * FROM pl"),
		tea.KeyMsg{Type: tea.KeyDown},
		tea.KeyMsg{Type: tea.KeyTab},
	)

	assert.Equal(t, "SELECT * FROM players", m.Text())
	assert.Equal(t, 21, m.Cursor())
	assert.Nil(t, m.Suggestions())
}

func TestAcceptFunctionPlacesCursorInParens(t *testing.T) {
	m, _ := send(t, newTestModel(""), typeText("SELECT up"))
	require.Equal(t, []string{"UPDATE", "UPPER"}, labels(m.Suggestions()))

	m, _ = send(t, m, tea.KeyMsg{Type: tea.KeyUp}, tea.KeyMsg{Type: tea.KeyEnter})
	assert.Equal(t, "SELECT UPPER()", m.Text())
	assert.Equal(t, 13, m.Cursor())
}

func TestSelectionWraps(t *testing.T) {
	m, _ := send(t, newTestModel(""), typeText("SELECT * FROM pl"))

	m, _ = send(t, m, tea.KeyMsg{Type: tea.KeyUp})
	assert.Equal(t, 1, m.Selected())
	m, _ = send(t, m, tea.KeyMsg{Type: tea.KeyDown})
	assert.Equal(t, 0, m.Selected())
}

func TestDismissAndForceSuggest(t *testing.T) {
	m, _ := send(t, newTestModel(""), typeText("SELECT * FROM pl"), tea.KeyMsg{Type: tea.KeyEsc})
	assert.Nil(t, m.Suggestions())

	m, _ = send(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	assert.Equal(t, "SELECT * FROM pl\n", m.Text(), "enter inserts a newline when closed")

	m, _ = send(t, newTestModel("SELECT * FROM "), tea.KeyMsg{Type: tea.KeyCtrlAt})
	assert.Len(t, m.Suggestions(), 10)
}

func TestEditingKeys(t *testing.T) {
	m, _ := send(t, newTestModel("SELECT nam"),
		tea.KeyMsg{Type: tea.KeyBackspace},
		tea.KeyMsg{Type: tea.KeyHome},
		tea.KeyMsg{Type: tea.KeyDelete},
		tea.KeyMsg{Type: tea.KeyEnd},
		tea.KeyMsg{Type: tea.KeyLeft},
		tea.KeyMsg{Type: tea.KeyRight},
	)
	assert.Equal(t, "ELECT na", m.Text())
	assert.Equal(t, 8, m.Cursor())
}

func TestSaveAndQuit(t *testing.T) {
	m, cmd := send(t, newTestModel("SELECT 1"), tea.KeyMsg{Type: tea.KeyCtrlS})
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
	assert.True(t, m.Saved())
	assert.Empty(t, m.View())

	m, cmd = send(t, newTestModel("SELECT 1"), tea.KeyMsg{Type: tea.KeyCtrlC})
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
	assert.False(t, m.Saved())
}

func TestView(t *testing.T) {
	m, _ := send(t, newTestModel(""),
		tea.WindowSizeMsg{Width: 80, Height: 24},
		typeText("SELECT * FROM pl"),
	)

	view := m.View()
	assert.Contains(t, view, "SELECT * FROM pl")
	assert.Contains(t, view, "Ln 1, Col 17")
	assert.Contains(t, view, "player_stats")
	assert.Contains(t, view, "Relation: players")
	assert.Contains(t, view, "accept")

	m, _ = send(t, m, tea.KeyMsg{Type: tea.KeyF1})
	assert.Contains(t, m.View(), "close suggestions")
}
