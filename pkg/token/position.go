package token

import "sort"

// Position represents a location in the source buffer.
type Position struct {
	Line   int // 0-based line number
	Column int // 0-based byte column within the line
	Offset int // 0-based byte offset
}

// Span represents a half-open range of byte offsets.
type Span struct {
	Start int
	End   int
}

// Contains returns true if the span contains the given offset.
func (s Span) Contains(offset int) bool {
	return offset >= s.Start && offset < s.End
}

// LineIndex converts between byte offsets and line/column positions.
type LineIndex struct {
	size   int
	starts []int // byte offsets of line starts
}

// NewLineIndex indexes the line starts of source.
func NewLineIndex(source string) *LineIndex {
	starts := []int{0}
	for i := 0; i < len(source); i++ {
		if source[i] == '\n' {
			starts = append(starts, i+1)
		}
	}
	return &LineIndex{size: len(source), starts: starts}
}

// LineCount returns the number of lines (at least 1).
func (x *LineIndex) LineCount() int {
	return len(x.starts)
}

// LineStart returns the byte offset at which line begins.
func (x *LineIndex) LineStart(line int) int {
	if line < 0 {
		return 0
	}
	if line >= len(x.starts) {
		return x.size
	}
	return x.starts[line]
}

// Position returns the position of offset, clamped to the buffer.
func (x *LineIndex) Position(offset int) Position {
	if offset < 0 {
		offset = 0
	}
	if offset > x.size {
		offset = x.size
	}
	line := sort.Search(len(x.starts), func(i int) bool { return x.starts[i] > offset }) - 1
	return Position{Line: line, Column: offset - x.starts[line], Offset: offset}
}

// Offset returns the byte offset for a line and column, clamped to the buffer.
func (x *LineIndex) Offset(line, column int) int {
	if line < 0 {
		return 0
	}
	if line >= len(x.starts) {
		return x.size
	}
	offset := x.starts[line] + column
	if offset > x.size {
		return x.size
	}
	return offset
}
