package lsp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/yql/pkg/lexer"
)

func TestDocumentStore_OpenGetClose(t *testing.T) {
	store := NewDocumentStore()

	uri := "file:///test/query.yql"
	store.Open(uri, "SELECT * FROM players", 1)

	doc := store.Get(uri)
	require.NotNil(t, doc)
	assert.Equal(t, uri, doc.URI)
	assert.Equal(t, "SELECT * FROM players", doc.Content)
	assert.Equal(t, 1, doc.Version)

	store.Close(uri)
	assert.Nil(t, store.Get(uri))
}

func TestDocumentStore_Update(t *testing.T) {
	store := NewDocumentStore()

	uri := "file:///test/query.yql"
	store.Open(uri, "SELECT 1", 1)
	before := store.Get(uri)

	store.Update(uri, "SELECT 2\nFROM teams", 2)

	doc := store.Get(uri)
	assert.Equal(t, "SELECT 2\nFROM teams", doc.Content)
	assert.Equal(t, 2, doc.Version)
	assert.Equal(t, "FROM teams", doc.GetLine(1))

	// Earlier snapshots are not mutated.
	assert.Equal(t, "SELECT 1", before.Content)

	store.Update("file:///test/unknown.yql", "x", 1)
	assert.Nil(t, store.Get("file:///test/unknown.yql"))
}

func TestDocumentStore_List(t *testing.T) {
	store := NewDocumentStore()

	store.Open("file:///b.yql", "SELECT b", 1)
	store.Open("file:///a.yql", "SELECT a", 1)

	assert.Equal(t, []string{"file:///a.yql", "file:///b.yql"}, store.List())
}

func TestDocument_PositionToOffset(t *testing.T) {
	doc := newDocument("file:///q.yql", "SELECT name\nFROM players\n", 1)

	tests := []struct {
		pos  Position
		want int
	}{
		{Position{0, 0}, 0},
		{Position{0, 6}, 6},
		{Position{0, 11}, 11},
		{Position{0, 99}, 11}, // clamped to end of line
		{Position{1, 0}, 12},
		{Position{1, 4}, 16},
		{Position{2, 0}, 25},
		{Position{9, 0}, 25},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, doc.PositionToOffset(tt.pos), "position %+v", tt.pos)
	}
}

func TestDocument_OffsetToPosition(t *testing.T) {
	doc := newDocument("file:///q.yql", "SELECT name\nFROM players", 1)

	tests := []struct {
		offset int
		want   Position
	}{
		{0, Position{0, 0}},
		{11, Position{0, 11}},
		{12, Position{1, 0}},
		{17, Position{1, 5}},
		{-3, Position{0, 0}},
		{999, Position{1, 12}},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, doc.OffsetToPosition(tt.offset), "offset %d", tt.offset)
	}
}

func TestDocument_UTF16Columns(t *testing.T) {
	// "é" is two bytes but one UTF-16 unit; "𝄞" is four bytes and two units.
	doc := newDocument("file:///q.yql", "'é𝄞' name", 1)

	assert.Equal(t, Position{0, 5}, doc.OffsetToPosition(8))
	assert.Equal(t, 8, doc.PositionToOffset(Position{0, 5}))
	assert.Equal(t, 9, doc.PositionToOffset(Position{0, 6}))

	tokens := lexer.Tokenize(nil, doc.Content)
	data := EncodeSemanticTokens(doc, tokens).Data
	require.Len(t, data, 10)
	assert.Equal(t, []uint32{0, 0, 5, 3, 0}, data[:5], "string length counted in UTF-16 units")
}

func TestDocument_GetLine(t *testing.T) {
	doc := newDocument("file:///q.yql", "line0\nline1\nline2", 1)

	assert.Equal(t, "line0", doc.GetLine(0))
	assert.Equal(t, "line1", doc.GetLine(1))
	assert.Equal(t, "line2", doc.GetLine(2))
	assert.Equal(t, "", doc.GetLine(3))
	assert.Equal(t, "", doc.GetLine(-1))
}

func TestDocument_GetWordAtPosition(t *testing.T) {
	doc := newDocument("file:///q.yql", "SELECT player_id FROM players", 1)

	word, rng := doc.GetWordAtPosition(Position{0, 10})
	assert.Equal(t, "player_id", word)
	assert.Equal(t, Range{Start: Position{0, 7}, End: Position{0, 16}}, rng)

	word, _ = doc.GetWordAtPosition(Position{0, 29})
	assert.Equal(t, "players", word, "cursor at end of word")

	doc = newDocument("file:///q.yql", "a  b", 1)
	word, rng = doc.GetWordAtPosition(Position{0, 2})
	assert.Equal(t, "", word)
	assert.Equal(t, Range{Start: Position{0, 2}, End: Position{0, 2}}, rng)
}

func TestURIToPath(t *testing.T) {
	assert.Equal(t, "/home/user/query.yql", URIToPath("file:///home/user/query.yql"))
	assert.Equal(t, "/home/user/my query.yql", URIToPath("file:///home/user/my%20query.yql"))
	assert.Equal(t, "/already/a/path", URIToPath("/already/a/path"))
}

func TestPathToURI(t *testing.T) {
	assert.Equal(t, "file:///home/user/query.yql", PathToURI("/home/user/query.yql"))
	assert.Equal(t, "file:///home/user/my%20query.yql", PathToURI("/home/user/my query.yql"))
	assert.Equal(t, "file:///x.yql", PathToURI("file:///x.yql"))
}

func TestIsWordChar(t *testing.T) {
	for _, c := range []byte("azAZ09_") {
		assert.True(t, isWordChar(c), "%q", c)
	}
	for _, c := range []byte(" .,(-'") {
		assert.False(t, isWordChar(c), "%q", c)
	}
}

func TestTerminated(t *testing.T) {
	tests := []struct {
		text string
		want bool
	}{
		{`'ok'`, true},
		{`""`, true},
		{`'`, false},
		{`'open`, false},
		{`'it\'s'`, true},
		{`'\'`, false},
		{`'\\'`, true},
		{`"mixed'`, false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, terminated(tt.text), tt.text)
	}
}
