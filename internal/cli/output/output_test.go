package output

import (
	"bytes"
	"testing"

	"github.com/muesli/termenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRenderer(mode Mode, isTTY bool) (*Renderer, *bytes.Buffer, *bytes.Buffer) {
	out, errOut := &bytes.Buffer{}, &bytes.Buffer{}
	return NewRendererWithTTY(out, errOut, isTTY, mode), out, errOut
}

func TestModeResolution(t *testing.T) {
	tests := []struct {
		mode  Mode
		isTTY bool
		want  Mode
	}{
		{ModeAuto, true, ModeTable},
		{ModeAuto, false, ModeJSON},
		{"", false, ModeJSON},
		{ModeTable, false, ModeTable},
		{ModeYAML, true, ModeYAML},
		{ModeJSON, true, ModeJSON},
	}

	for _, tt := range tests {
		r, _, _ := newTestRenderer(tt.mode, tt.isTTY)
		assert.Equal(t, tt.want, r.Mode(), "mode %q tty %v", tt.mode, tt.isTTY)
	}
}

func TestNewRendererDetectsNonTerminal(t *testing.T) {
	r := NewRenderer(&bytes.Buffer{}, &bytes.Buffer{}, ModeAuto)
	assert.False(t, r.IsTTY())
	assert.Equal(t, termenv.Ascii, r.Profile())
}

func TestProfileHonorsColor(t *testing.T) {
	r, _, _ := newTestRenderer(ModeTable, true)
	r.SetColor(false)
	assert.Equal(t, termenv.Ascii, r.Profile())
}

func TestStructured(t *testing.T) {
	v := map[string]any{"relations": []string{"players"}}

	r, out, _ := newTestRenderer(ModeJSON, false)
	require.NoError(t, r.Structured(v, func() { t.Fatal("table called") }))
	assert.JSONEq(t, `{"relations":["players"]}`, out.String())

	r, out, _ = newTestRenderer(ModeYAML, false)
	require.NoError(t, r.Structured(v, func() { t.Fatal("table called") }))
	assert.Equal(t, "relations:\n  - players\n", out.String())

	called := false
	r, _, _ = newTestRenderer(ModeTable, false)
	require.NoError(t, r.Structured(v, func() { called = true }))
	assert.True(t, called)
}

func TestTable(t *testing.T) {
	r, out, _ := newTestRenderer(ModeTable, false)
	r.Table([]string{"Kind", "Text"}, [][]any{{"keyword", "SELECT"}, {"field", "name"}})

	assert.Contains(t, out.String(), "┌")
	assert.Contains(t, out.String(), "SELECT")
	assert.Contains(t, out.String(), "KIND")

	out.Reset()
	r.Table([]string{"Kind"}, nil)
	assert.Equal(t, "(0 rows)\n", out.String())
}

func TestMessages(t *testing.T) {
	r, out, errOut := newTestRenderer(ModeTable, false)

	r.Heading("player stats")
	r.Success("saved %q", "roster")
	r.Warn("catalog %s not found", "x.yaml")

	assert.Equal(t, "Player Stats\n✓ saved \"roster\"\n", out.String())
	assert.Equal(t, "! catalog x.yaml not found\n", errOut.String())
}
