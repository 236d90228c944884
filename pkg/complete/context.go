package complete

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Context is the syntactic position inferred from the text before the cursor.
type Context int

// Completion contexts, in evaluation priority order.
const (
	ContextNone       Context = iota
	ContextRelation           // after FROM, before WHERE
	ContextProjection         // after SELECT, before FROM
	ContextPredicate          // right after WHERE, AND or OR
)

func (c Context) String() string {
	switch c {
	case ContextRelation:
		return "relation"
	case ContextProjection:
		return "projection"
	case ContextPredicate:
		return "predicate"
	default:
		return "none"
	}
}

// Analysis is the textual view of the cursor position used for ranking.
type Analysis struct {
	Context  Context
	Word     string // lowercased word being typed, possibly empty
	Previous string // lowercased word before Word, possibly empty
}

// Analyze classifies the cursor context from the raw prefix. It does not
// tokenize, so keywords inside strings or comments also count.
func Analyze(source string, cursor int) Analysis {
	prefix := strings.ToLower(source[:clamp(cursor, len(source))])
	word, previous := lastWords(prefix)

	a := Analysis{Word: word, Previous: previous}
	switch {
	case strings.Contains(prefix, "from") && !strings.Contains(prefix, "where"):
		a.Context = ContextRelation
	case strings.Contains(prefix, "select") && !strings.Contains(prefix, "from"):
		a.Context = ContextProjection
	case previous == "where" || previous == "and" || previous == "or":
		a.Context = ContextPredicate
	}
	return a
}

// Classify returns only the context of Analyze.
func Classify(source string, cursor int) Context {
	return Analyze(source, cursor).Context
}

// lastWords splits prefix on whitespace runs and returns the last word and
// the one before it. Trailing whitespace yields an empty last word.
func lastWords(prefix string) (last, previous string) {
	words := strings.Fields(prefix)
	if prefix == "" || endsWithSpace(prefix) {
		words = append(words, "")
	}
	if n := len(words); n > 0 {
		last = words[n-1]
		if n > 1 {
			previous = words[n-2]
		}
	}
	return last, previous
}

func endsWithSpace(s string) bool {
	r, _ := utf8.DecodeLastRuneInString(s)
	return unicode.IsSpace(r)
}

func clamp(v, upper int) int {
	if v < 0 {
		return 0
	}
	if v > upper {
		return upper
	}
	return v
}
