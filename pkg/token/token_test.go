package token

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKindString(t *testing.T) {
	tests := []struct {
		kind Kind
		want string
	}{
		{Plain, "plain"},
		{Keyword, "keyword"},
		{Relation, "relation"},
		{Field, "field"},
		{String, "string"},
		{Number, "number"},
		{Operator, "operator"},
		{Function, "function"},
		{Comment, "comment"},
		{Kind(42), "KIND(42)"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.kind.String())
	}
}

func TestParseKind(t *testing.T) {
	for _, k := range Kinds() {
		got, ok := ParseKind(k.String())
		require.True(t, ok, k.String())
		assert.Equal(t, k, got)
	}

	got, ok := ParseKind("KEYWORD")
	assert.True(t, ok)
	assert.Equal(t, Keyword, got)

	_, ok = ParseKind("table")
	assert.False(t, ok)
}

func TestTokenJSON(t *testing.T) {
	tok := Token{Kind: Relation, Text: "players", Start: 5, End: 12}

	data, err := json.Marshal(tok)
	require.NoError(t, err)
	assert.JSONEq(t, `{"kind":"relation","text":"players","start":5,"end":12}`, string(data))

	var decoded Token
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, tok, decoded)

	err = json.Unmarshal([]byte(`{"kind":"table"}`), &decoded)
	assert.Error(t, err)
}

func TestSegments(t *testing.T) {
	source := "  SELECT  x ;"
	tokens := []Token{
		{Kind: Keyword, Text: "SELECT", Start: 2, End: 8},
		{Kind: Plain, Text: "x", Start: 10, End: 11},
	}

	segments := Segments(source, tokens)
	require.Len(t, segments, 5)

	assert.True(t, segments[0].Gap)
	assert.Equal(t, "  ", segments[0].Text)
	assert.Equal(t, Keyword, segments[1].Kind)
	assert.False(t, segments[1].Gap)
	assert.Equal(t, "  ", segments[2].Text)
	assert.Equal(t, "x", segments[3].Text)
	assert.Equal(t, " ;", segments[4].Text)
	assert.True(t, segments[4].Gap)

	assert.Equal(t, source, Reconstruct(segments))
}

func TestSegmentsSkipsInvalidTokens(t *testing.T) {
	source := "abc"
	tokens := []Token{
		{Kind: Plain, Text: "abc", Start: 0, End: 3},
		{Kind: Plain, Text: "b", Start: 1, End: 2}, // overlaps
		{Kind: Plain, Text: "zz", Start: 3, End: 5}, // out of range
	}

	segments := Segments(source, tokens)
	require.Len(t, segments, 1)
	assert.Equal(t, source, Reconstruct(segments))
}

func TestSegmentsEmpty(t *testing.T) {
	assert.Empty(t, Segments("", nil))

	segments := Segments("   ", nil)
	require.Len(t, segments, 1)
	assert.True(t, segments[0].Gap)
}

func TestLineIndex(t *testing.T) {
	source := "SELECT *\nFROM players\n-- done"
	idx := NewLineIndex(source)

	assert.Equal(t, 3, idx.LineCount())
	assert.Equal(t, 9, idx.LineStart(1))
	assert.Equal(t, len(source), idx.LineStart(10))

	assert.Equal(t, Position{Line: 0, Column: 0, Offset: 0}, idx.Position(0))
	assert.Equal(t, Position{Line: 1, Column: 5, Offset: 14}, idx.Position(14))
	assert.Equal(t, Position{Line: 2, Column: 0, Offset: 22}, idx.Position(22))
	assert.Equal(t, idx.Position(len(source)), idx.Position(1000))
	assert.Equal(t, idx.Position(0), idx.Position(-3))

	assert.Equal(t, 14, idx.Offset(1, 5))
	assert.Equal(t, len(source), idx.Offset(2, 500))
	assert.Equal(t, len(source), idx.Offset(7, 0))
	assert.Equal(t, 0, idx.Offset(-1, 4))
}

func TestSpanContains(t *testing.T) {
	s := Span{Start: 2, End: 5}
	assert.True(t, s.Contains(2))
	assert.True(t, s.Contains(4))
	assert.False(t, s.Contains(5))
	assert.False(t, s.Contains(1))
}
