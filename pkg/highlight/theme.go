// Package highlight renders tokenized YQL source for terminals and HTML.
package highlight

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/leapstack-labs/yql/pkg/token"
)

// KindStyle describes how one token kind is drawn.
type KindStyle struct {
	Foreground lipgloss.Color
	Bold       bool
	Italic     bool
}

// Theme maps token kinds to their look. Kinds without an entry render
// unstyled.
type Theme struct {
	Name  string
	Kinds map[token.Kind]KindStyle
}

// Dark is tuned for dark terminal backgrounds.
var Dark = Theme{
	Name: "dark",
	Kinds: map[token.Kind]KindStyle{
		token.Keyword:  {Foreground: "#60A5FA", Bold: true},
		token.Relation: {Foreground: "#4ADE80", Bold: true},
		token.Field:    {Foreground: "#C084FC"},
		token.String:   {Foreground: "#FB923C"},
		token.Number:   {Foreground: "#F87171"},
		token.Operator: {Foreground: "#9CA3AF"},
		token.Function: {Foreground: "#818CF8"},
		token.Comment:  {Foreground: "#6B7280", Italic: true},
	},
}

// Light is tuned for light terminal backgrounds.
var Light = Theme{
	Name: "light",
	Kinds: map[token.Kind]KindStyle{
		token.Keyword:  {Foreground: "#2563EB", Bold: true},
		token.Relation: {Foreground: "#16A34A", Bold: true},
		token.Field:    {Foreground: "#9333EA"},
		token.String:   {Foreground: "#EA580C"},
		token.Number:   {Foreground: "#DC2626"},
		token.Operator: {Foreground: "#4B5563"},
		token.Function: {Foreground: "#4F46E5"},
		token.Comment:  {Foreground: "#6B7280", Italic: true},
	},
}

// ThemeByName returns the named built-in theme.
func ThemeByName(name string) (Theme, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "dark":
		return Dark, nil
	case "light":
		return Light, nil
	default:
		return Theme{}, fmt.Errorf("unknown theme %q (expected dark or light)", name)
	}
}

// Style builds the lipgloss style for kind using renderer r.
func (t Theme) Style(r *lipgloss.Renderer, kind token.Kind) lipgloss.Style {
	s := r.NewStyle().TabWidth(lipgloss.NoTabConversion)
	spec, ok := t.Kinds[kind]
	if !ok {
		return s
	}
	if spec.Foreground != "" {
		s = s.Foreground(spec.Foreground)
	}
	return s.Bold(spec.Bold).Italic(spec.Italic)
}
