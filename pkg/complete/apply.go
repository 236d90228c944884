package complete

// Apply replaces the identifier being typed at cursor with the candidate's
// insert text. It returns the new source and the new cursor offset. When the
// inserted text ends in an empty call "()", the cursor lands between the
// parentheses.
func Apply(source string, cursor int, c Candidate) (string, int) {
	cursor = clamp(cursor, len(source))
	start := WordStart(source, cursor)

	text := c.Text()
	out := source[:start] + text + source[cursor:]
	next := start + len(text)
	if len(text) >= 2 && text[len(text)-2:] == "()" {
		next--
	}
	return out, next
}

// WordStart returns the offset where the identifier ending at cursor begins.
func WordStart(source string, cursor int) int {
	cursor = clamp(cursor, len(source))
	start := cursor
	for start > 0 && isIdentChar(source[start-1]) {
		start--
	}
	return start
}

func isIdentChar(ch byte) bool {
	return (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z') || (ch >= '0' && ch <= '9') || ch == '_'
}
