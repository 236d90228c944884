package editor

import (
	"unicode/utf8"

	"github.com/leapstack-labs/yql/pkg/token"
)

// Buffer is an editable text with a byte-offset cursor that always sits on
// a rune boundary.
type Buffer struct {
	text   string
	cursor int
}

// NewBuffer creates a buffer holding text with the cursor at the end.
func NewBuffer(text string) *Buffer {
	return &Buffer{text: text, cursor: len(text)}
}

// Text returns the buffer contents.
func (b *Buffer) Text() string { return b.text }

// Cursor returns the cursor byte offset.
func (b *Buffer) Cursor() int { return b.cursor }

// Set replaces the contents and moves the cursor, clamped to the text.
func (b *Buffer) Set(text string, cursor int) {
	b.text = text
	b.cursor = b.snap(cursor)
}

// Insert writes s at the cursor and moves the cursor past it.
func (b *Buffer) Insert(s string) {
	b.text = b.text[:b.cursor] + s + b.text[b.cursor:]
	b.cursor += len(s)
}

// Backspace deletes the rune before the cursor.
func (b *Buffer) Backspace() {
	if b.cursor == 0 {
		return
	}
	_, size := utf8.DecodeLastRuneInString(b.text[:b.cursor])
	b.text = b.text[:b.cursor-size] + b.text[b.cursor:]
	b.cursor -= size
}

// Delete deletes the rune under the cursor.
func (b *Buffer) Delete() {
	if b.cursor == len(b.text) {
		return
	}
	_, size := utf8.DecodeRuneInString(b.text[b.cursor:])
	b.text = b.text[:b.cursor] + b.text[b.cursor+size:]
}

// Left moves the cursor one rune back.
func (b *Buffer) Left() {
	if b.cursor > 0 {
		_, size := utf8.DecodeLastRuneInString(b.text[:b.cursor])
		b.cursor -= size
	}
}

// Right moves the cursor one rune forward.
func (b *Buffer) Right() {
	if b.cursor < len(b.text) {
		_, size := utf8.DecodeRuneInString(b.text[b.cursor:])
		b.cursor += size
	}
}

// Home moves the cursor to the start of its line.
func (b *Buffer) Home() {
	x := token.NewLineIndex(b.text)
	b.cursor = x.LineStart(x.Position(b.cursor).Line)
}

// End moves the cursor to the end of its line.
func (b *Buffer) End() {
	x := token.NewLineIndex(b.text)
	b.cursor = lineEnd(x, x.Position(b.cursor).Line, len(b.text))
}

// Up moves the cursor to the previous line, keeping its column where the
// line is long enough.
func (b *Buffer) Up() { b.moveLine(-1) }

// Down moves the cursor to the next line.
func (b *Buffer) Down() { b.moveLine(1) }

// Position returns the cursor's line and byte column.
func (b *Buffer) Position() token.Position {
	return token.NewLineIndex(b.text).Position(b.cursor)
}

func (b *Buffer) moveLine(delta int) {
	x := token.NewLineIndex(b.text)
	pos := x.Position(b.cursor)
	line := pos.Line + delta
	if line < 0 || line >= x.LineCount() {
		return
	}
	offset := min(x.LineStart(line)+pos.Column, lineEnd(x, line, len(b.text)))
	b.cursor = b.snap(offset)
}

// snap clamps offset to the text and backs it up to a rune boundary.
func (b *Buffer) snap(offset int) int {
	offset = max(0, min(offset, len(b.text)))
	for offset > 0 && offset < len(b.text) && !utf8.RuneStart(b.text[offset]) {
		offset--
	}
	return offset
}

// lineEnd is the offset of the line break ending line, or size for the last line.
func lineEnd(x *token.LineIndex, line, size int) int {
	if line+1 < x.LineCount() {
		return x.LineStart(line+1) - 1
	}
	return size
}
