package lsp

import (
	"net/url"
	"sort"
	"strings"
	"sync"
	"unicode/utf16"
	"unicode/utf8"

	"github.com/leapstack-labs/yql/pkg/token"
)

// Document represents an open text document in the editor.
type Document struct {
	URI     string // Document URI (file:///path/to/query.yql)
	Content string // Full document content
	Version int    // Version number, incremented on each change

	lines *token.LineIndex
}

func newDocument(uri, content string, version int) *Document {
	return &Document{
		URI:     uri,
		Content: content,
		Version: version,
		lines:   token.NewLineIndex(content),
	}
}

// DocumentStore manages open documents in memory. Stored documents are
// never mutated, so a *Document obtained from Get is safe to read while the
// store is being updated.
type DocumentStore struct {
	mu        sync.RWMutex
	documents map[string]*Document
}

// NewDocumentStore creates a new document store.
func NewDocumentStore() *DocumentStore {
	return &DocumentStore{
		documents: make(map[string]*Document),
	}
}

// Open adds or replaces a document in the store.
func (s *DocumentStore) Open(uri string, content string, version int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.documents[uri] = newDocument(uri, content, version)
}

// Close removes a document from the store.
func (s *DocumentStore) Close(uri string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.documents, uri)
}

// Get retrieves a document by URI.
func (s *DocumentStore) Get(uri string) *Document {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.documents[uri]
}

// Update replaces an open document's content. Unknown URIs are ignored.
func (s *DocumentStore) Update(uri string, content string, version int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.documents[uri]; ok {
		s.documents[uri] = newDocument(uri, content, version)
	}
}

// List returns all open document URIs, sorted.
func (s *DocumentStore) List() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	uris := make([]string, 0, len(s.documents))
	for uri := range s.documents {
		uris = append(uris, uri)
	}
	sort.Strings(uris)
	return uris
}

// lineBounds returns the byte range of line, excluding its newline.
func (d *Document) lineBounds(line int) (int, int) {
	start := d.lines.LineStart(line)
	end := len(d.Content)
	if line+1 < d.lines.LineCount() {
		end = d.lines.LineStart(line+1) - 1
	}
	return start, end
}

// PositionToOffset converts a Position to a byte offset in the document.
// Characters past the end of the line clamp to the line end.
func (d *Document) PositionToOffset(pos Position) int {
	if d == nil {
		return 0
	}

	line := int(pos.Line)
	if line >= d.lines.LineCount() {
		return len(d.Content)
	}

	start, end := d.lineBounds(line)
	offset := start
	units := uint32(0)
	for offset < end && units < pos.Character {
		r, size := utf8.DecodeRuneInString(d.Content[offset:end])
		units += uint32(utf16Len(r))
		offset += size
	}
	return offset
}

// OffsetToPosition converts a byte offset to a Position.
func (d *Document) OffsetToPosition(offset int) Position {
	if d == nil {
		return Position{}
	}

	p := d.lines.Position(offset)
	start := d.lines.LineStart(p.Line)
	units := 0
	for _, r := range d.Content[start:p.Offset] {
		units += utf16Len(r)
	}
	return Position{
		Line:      uint32(p.Line),
		Character: uint32(units),
	}
}

// utf16Len returns the number of UTF-16 code units encoding r.
func utf16Len(r rune) int {
	if n := utf16.RuneLen(r); n > 0 {
		return n
	}
	return 1
}

// GetLine returns the content of a specific line.
func (d *Document) GetLine(line int) string {
	if d == nil || line < 0 || line >= d.lines.LineCount() {
		return ""
	}
	start, end := d.lineBounds(line)
	return d.Content[start:end]
}

// GetWordAtPosition returns the word at the given position and its range.
func (d *Document) GetWordAtPosition(pos Position) (string, Range) {
	offset := d.PositionToOffset(pos)

	// Find word boundaries
	start := offset
	for start > 0 && isWordChar(d.Content[start-1]) {
		start--
	}

	end := offset
	for end < len(d.Content) && isWordChar(d.Content[end]) {
		end++
	}

	if start == end {
		return "", Range{Start: pos, End: pos}
	}

	return d.Content[start:end], Range{
		Start: d.OffsetToPosition(start),
		End:   d.OffsetToPosition(end),
	}
}

// isWordChar returns true if the character is part of a word.
func isWordChar(c byte) bool {
	return (c >= 'a' && c <= 'z') ||
		(c >= 'A' && c <= 'Z') ||
		(c >= '0' && c <= '9') ||
		c == '_'
}

// URIToPath converts a file:// URI to a file system path.
func URIToPath(uri string) string {
	const prefix = "file://"
	if !strings.HasPrefix(uri, prefix) {
		return uri
	}
	path := uri[len(prefix):]
	if unescaped, err := url.PathUnescape(path); err == nil {
		return unescaped
	}
	return path
}

// PathToURI converts a file system path to a file:// URI.
func PathToURI(path string) string {
	if strings.HasPrefix(path, "file://") {
		return path
	}
	return "file://" + (&url.URL{Path: path}).EscapedPath()
}
