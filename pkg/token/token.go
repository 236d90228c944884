// Package token defines the classified tokens produced by the YQL lexer.
//
// Tokens carry half-open byte offsets into the source buffer. Whitespace and
// unrecognized characters are never emitted; they are recovered as the gaps
// between adjacent tokens (see Segments).
package token

import (
	"fmt"
	"strings"
)

// Kind classifies a token for highlighting.
type Kind int

// Token kinds.
const (
	Plain Kind = iota
	Keyword
	Relation
	Field
	String
	Number
	Operator
	Function
	Comment
)

var kindNames = map[Kind]string{
	Plain:    "plain",
	Keyword:  "keyword",
	Relation: "relation",
	Field:    "field",
	String:   "string",
	Number:   "number",
	Operator: "operator",
	Function: "function",
	Comment:  "comment",
}

// Kinds lists every kind in declaration order.
func Kinds() []Kind {
	return []Kind{Plain, Keyword, Relation, Field, String, Number, Operator, Function, Comment}
}

// String returns the lowercase name of the kind.
func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("KIND(%d)", int(k))
}

// ParseKind returns the kind with the given name (case-insensitive).
func ParseKind(name string) (Kind, bool) {
	lower := strings.ToLower(name)
	for k, n := range kindNames {
		if n == lower {
			return k, true
		}
	}
	return Plain, false
}

// MarshalText encodes the kind as its name in JSON and YAML.
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText decodes a kind from its name.
func (k *Kind) UnmarshalText(data []byte) error {
	name := string(data)
	parsed, ok := ParseKind(name)
	if !ok {
		return fmt.Errorf("unknown token kind %q", name)
	}
	*k = parsed
	return nil
}

// Token is a classified span of source text.
type Token struct {
	Kind  Kind   `json:"kind"`
	Text  string `json:"text"`  // exact source slice, including quotes and markers
	Start int    `json:"start"` // inclusive byte offset
	End   int    `json:"end"`   // exclusive byte offset
}

// Len returns the number of bytes covered by the token.
func (t Token) Len() int {
	return t.End - t.Start
}

// Span returns the token's offsets as a Span.
func (t Token) Span() Span {
	return Span{Start: t.Start, End: t.End}
}

// Segment is either a token or the uncovered text between two tokens.
type Segment struct {
	Kind  Kind   `json:"kind"`
	Text  string `json:"text"`
	Start int    `json:"start"`
	End   int    `json:"end"`
	Gap   bool   `json:"gap,omitempty"`
}

// Segments interleaves tokens with the gap text between them so that the
// concatenated segment texts reproduce source exactly. Gap segments have
// kind Plain. Tokens must be ordered and non-overlapping; out-of-range
// tokens are skipped.
func Segments(source string, tokens []Token) []Segment {
	segments := make([]Segment, 0, 2*len(tokens)+1)
	last := 0
	for _, tok := range tokens {
		if tok.Start < last || tok.End > len(source) || tok.Start >= tok.End {
			continue
		}
		if tok.Start > last {
			segments = append(segments, Segment{
				Kind:  Plain,
				Text:  source[last:tok.Start],
				Start: last,
				End:   tok.Start,
				Gap:   true,
			})
		}
		segments = append(segments, Segment{
			Kind:  tok.Kind,
			Text:  tok.Text,
			Start: tok.Start,
			End:   tok.End,
		})
		last = tok.End
	}
	if last < len(source) {
		segments = append(segments, Segment{
			Kind:  Plain,
			Text:  source[last:],
			Start: last,
			End:   len(source),
			Gap:   true,
		})
	}
	return segments
}

// Reconstruct concatenates the segment texts.
func Reconstruct(segments []Segment) string {
	var b strings.Builder
	for _, s := range segments {
		b.WriteString(s.Text)
	}
	return b.String()
}
