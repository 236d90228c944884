package highlight

import (
	"html"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/leapstack-labs/yql/pkg/token"
)

// Renderer draws token streams with a fixed theme and color profile.
type Renderer struct {
	theme  Theme
	styles map[token.Kind]lipgloss.Style
	cursor lipgloss.Style
}

// NewRenderer creates a Renderer for theme at the given color profile.
// termenv.Ascii produces the source unchanged.
func NewRenderer(theme Theme, profile termenv.Profile) *Renderer {
	lr := lipgloss.NewRenderer(io.Discard)
	lr.SetColorProfile(profile)

	styles := make(map[token.Kind]lipgloss.Style, len(theme.Kinds))
	for _, kind := range token.Kinds() {
		if _, ok := theme.Kinds[kind]; ok {
			styles[kind] = theme.Style(lr, kind)
		}
	}
	return &Renderer{theme: theme, styles: styles, cursor: lr.NewStyle().Reverse(true)}
}

// Theme returns the renderer's theme.
func (r *Renderer) Theme() Theme {
	return r.theme
}

// Render returns source with every token styled. Gaps between tokens are
// copied verbatim.
func (r *Renderer) Render(source string, tokens []token.Token) string {
	var b strings.Builder
	b.Grow(len(source) * 2)
	for _, seg := range token.Segments(source, tokens) {
		r.writeSegment(&b, seg, seg.Text)
	}
	return b.String()
}

// RenderCursor is Render with the character at byte offset cursor drawn in
// reverse video. A cursor on a line break or at the end of source is drawn
// as a reversed space.
func (r *Renderer) RenderCursor(source string, tokens []token.Token, cursor int) string {
	cursor = max(0, min(cursor, len(source)))

	var b strings.Builder
	b.Grow(len(source) * 2)
	drawn := false
	for _, seg := range token.Segments(source, tokens) {
		if drawn || cursor < seg.Start || cursor >= seg.End {
			r.writeSegment(&b, seg, seg.Text)
			continue
		}
		at := cursor - seg.Start
		_, size := utf8.DecodeRuneInString(seg.Text[at:])
		r.writeSegment(&b, seg, seg.Text[:at])
		r.writeCursor(&b, seg.Text[at:at+size])
		r.writeSegment(&b, seg, seg.Text[at+size:])
		drawn = true
	}
	if !drawn {
		r.writeCursor(&b, "")
	}
	return b.String()
}

func (r *Renderer) writeSegment(b *strings.Builder, seg token.Segment, text string) {
	style, ok := r.styles[seg.Kind]
	if seg.Gap || !ok {
		b.WriteString(text)
		return
	}
	r.writeStyled(b, style, text)
}

func (r *Renderer) writeCursor(b *strings.Builder, ch string) {
	if ch == "" || ch == "\n" {
		b.WriteString(r.cursor.Render(" "))
		b.WriteString(ch)
		return
	}
	b.WriteString(r.cursor.Render(ch))
}

// writeStyled styles each line separately so multi-line strings are not
// padded into a block.
func (r *Renderer) writeStyled(b *strings.Builder, style lipgloss.Style, text string) {
	for i, line := range strings.Split(text, "\n") {
		if i > 0 {
			b.WriteByte('\n')
		}
		if line != "" {
			b.WriteString(style.Render(line))
		}
	}
}

// ANSI is a shorthand for NewRenderer(theme, profile).Render(source, tokens).
func ANSI(source string, tokens []token.Token, theme Theme, profile termenv.Profile) string {
	return NewRenderer(theme, profile).Render(source, tokens)
}

// HTML wraps each non-plain token in a span with class "yql-<kind>".
// Gaps and plain tokens are escaped without a wrapper.
func HTML(source string, tokens []token.Token) string {
	var b strings.Builder
	for _, seg := range token.Segments(source, tokens) {
		text := html.EscapeString(seg.Text)
		if seg.Gap || seg.Kind == token.Plain {
			b.WriteString(text)
			continue
		}
		b.WriteString(`<span class="yql-`)
		b.WriteString(seg.Kind.String())
		b.WriteString(`">`)
		b.WriteString(text)
		b.WriteString(`</span>`)
	}
	return b.String()
}

// CSS returns a stylesheet for the classes emitted by HTML.
func CSS(theme Theme) string {
	var b strings.Builder
	for _, kind := range token.Kinds() {
		ks, ok := theme.Kinds[kind]
		if !ok {
			continue
		}
		b.WriteString(".yql-" + kind.String() + " {")
		if ks.Foreground != "" {
			b.WriteString(" color: " + string(ks.Foreground) + ";")
		}
		if ks.Bold {
			b.WriteString(" font-weight: 600;")
		}
		if ks.Italic {
			b.WriteString(" font-style: italic;")
		}
		b.WriteString(" }\n")
	}
	return b.String()
}
