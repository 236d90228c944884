package highlight

import (
	"io"
	"regexp"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/yql/pkg/lexer"
	"github.com/leapstack-labs/yql/pkg/token"
)

var ansiSeq = regexp.MustCompile(`\x1b\[[0-9;]*m`)

func TestANSIAsciiIsLossless(t *testing.T) {
	source := "SELECT name, COUNT(*)\n  FROM players -- all\n WHERE x = 'a\tb'"
	tokens := lexer.Tokenize(nil, source)

	assert.Equal(t, source, ANSI(source, tokens, Dark, termenv.Ascii))
}

func TestANSITrueColor(t *testing.T) {
	tests := []string{
		"SELECT name FROM players",
		"SELECT 'multi\nline' FROM teams",
		"  WHERE\tweek >= 3 ; -- done\n",
		"",
	}

	for _, source := range tests {
		t.Run(source, func(t *testing.T) {
			out := ANSI(source, lexer.Tokenize(nil, source), Light, termenv.TrueColor)
			if source != "" {
				assert.Contains(t, out, "\x1b[")
			}
			assert.Equal(t, source, ansiSeq.ReplaceAllString(out, ""))
		})
	}
}

func TestRendererLeavesPlainUnstyled(t *testing.T) {
	source := "mystery"
	out := NewRenderer(Dark, termenv.TrueColor).Render(source, lexer.Tokenize(nil, source))
	assert.Equal(t, source, out)
}

func TestHTML(t *testing.T) {
	source := `SELECT name FROM players WHERE x < '<b>' -- &`
	got := HTML(source, lexer.Tokenize(nil, source))

	assert.Equal(t,
		`<span class="yql-keyword">SELECT</span> <span class="yql-field">name</span> `+
			`<span class="yql-keyword">FROM</span> <span class="yql-relation">players</span> `+
			`<span class="yql-keyword">WHERE</span> x <span class="yql-operator">&lt;</span> `+
			`<span class="yql-string">&#39;&lt;b&gt;&#39;</span> <span class="yql-comment">-- &amp;</span>`,
		got)
}

func TestHTMLEscapesDroppedCharacters(t *testing.T) {
	source := "a & b"
	assert.Equal(t, "a &amp; b", HTML(source, lexer.Tokenize(nil, source)))
}

func TestCSS(t *testing.T) {
	css := CSS(Dark)
	assert.Contains(t, css, ".yql-keyword { color: #60A5FA; font-weight: 600; }")
	assert.Contains(t, css, ".yql-comment { color: #6B7280; font-style: italic; }")
	assert.NotContains(t, css, ".yql-plain")
}

func TestThemeByName(t *testing.T) {
	th, err := ThemeByName("LIGHT")
	require.NoError(t, err)
	assert.Equal(t, "light", th.Name)

	th, err = ThemeByName("")
	require.NoError(t, err)
	assert.Equal(t, "dark", th.Name)

	_, err = ThemeByName("solarized")
	assert.Error(t, err)
}

func TestThemesCoverStyledKinds(t *testing.T) {
	for _, th := range []Theme{Dark, Light} {
		for _, kind := range token.Kinds() {
			_, ok := th.Kinds[kind]
			assert.Equal(t, kind != token.Plain, ok, "%s theme, %s", th.Name, kind)
		}
	}
}

func TestThemeStyle(t *testing.T) {
	r := lipgloss.NewRenderer(io.Discard)
	s := Dark.Style(r, token.Keyword)
	assert.True(t, s.GetBold())
	assert.False(t, s.GetItalic())
	assert.True(t, Dark.Style(r, token.Comment).GetItalic())
}

func TestRenderCursor(t *testing.T) {
	tests := []struct {
		name   string
		source string
		cursor int
		want   string
	}{
		{"inside token", "SELECT name", 3, "SELECT name"},
		{"in gap", "SELECT name", 6, "SELECT name"},
		{"at end", "SELECT name", 11, "SELECT name "},
		{"on line break", "FROM\nteams", 4, "FROM \nteams"},
		{"empty source", "", 0, " "},
		{"clamped", "x", 9, "x "},
		{"multibyte", "'é'", 1, "'é'"},
	}

	r := NewRenderer(Dark, termenv.Ascii)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := r.RenderCursor(tt.source, lexer.Tokenize(nil, tt.source), tt.cursor)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRenderCursorReversesCharacter(t *testing.T) {
	source := "SELECT name"
	out := NewRenderer(Dark, termenv.TrueColor).RenderCursor(source, lexer.Tokenize(nil, source), 7)

	assert.Contains(t, out, "\x1b[7m")
	assert.Equal(t, source, ansiSeq.ReplaceAllString(out, ""))
}
