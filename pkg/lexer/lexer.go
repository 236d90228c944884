// Package lexer classifies YQL source text into highlighting tokens.
//
// The lexer is a single left-to-right scan with no backtracking and no error
// channel: malformed input degrades to plain tokens or skipped characters.
package lexer

import (
	"github.com/leapstack-labs/yql/pkg/catalog"
	"github.com/leapstack-labs/yql/pkg/token"
)

// Lexer tokenizes source text against a catalog. It holds no per-call state
// and is safe for concurrent use.
type Lexer struct {
	catalog *catalog.Catalog
}

// New creates a Lexer that classifies identifiers with c.
// A nil catalog selects the built-in default.
func New(c *catalog.Catalog) *Lexer {
	if c == nil {
		c = catalog.Default()
	}
	return &Lexer{catalog: c}
}

// Catalog returns the catalog used for identifier classification.
func (l *Lexer) Catalog() *catalog.Catalog {
	return l.catalog
}

// Tokenize returns the ordered, non-overlapping tokens of source.
func (l *Lexer) Tokenize(source string) []token.Token {
	s := &scanner{input: source}
	s.readChar()

	var tokens []token.Token
	for !s.atEnd() {
		if tok, ok := l.next(s); ok {
			tokens = append(tokens, tok)
		}
	}
	return tokens
}

// Tokenize is a shorthand for New(c).Tokenize(source).
func Tokenize(c *catalog.Catalog, source string) []token.Token {
	return New(c).Tokenize(source)
}

// Classify resolves the kind of an identifier. Keywords shadow relations,
// relations shadow functions, and functions shadow fields.
func (l *Lexer) Classify(ident string) token.Kind {
	switch {
	case l.catalog.IsKeyword(ident):
		return token.Keyword
	case l.catalog.IsRelation(ident):
		return token.Relation
	case l.catalog.IsFunction(ident):
		return token.Function
	case l.catalog.IsField(ident):
		return token.Field
	default:
		return token.Plain
	}
}

// next scans one lexeme starting at the current character. It reports false
// when the lexeme produces no token (whitespace or an unrecognized byte).
func (l *Lexer) next(s *scanner) (token.Token, bool) {
	start := s.pos

	switch {
	case isWhitespace(s.ch):
		s.readChar()
		return token.Token{}, false

	case s.ch == '-' && s.peekChar() == '-':
		s.readLineComment()
		return s.emit(token.Comment, start), true

	case s.ch == '"' || s.ch == '\'':
		s.readString(s.ch)
		return s.emit(token.String, start), true

	case isDigit(s.ch):
		for isDigit(s.ch) || s.ch == '.' {
			s.readChar()
		}
		return s.emit(token.Number, start), true

	case isOperator(s.ch):
		// Two-character comparisons win over their one-character prefix.
		if (s.ch == '<' || s.ch == '>' || s.ch == '!' || s.ch == '=') && s.peekChar() == '=' {
			s.readChar()
		}
		s.readChar()
		return s.emit(token.Operator, start), true

	case isLetter(s.ch) || s.ch == '_':
		for isLetter(s.ch) || isDigit(s.ch) || s.ch == '_' {
			s.readChar()
		}
		tok := s.emit(token.Plain, start)
		tok.Kind = l.Classify(tok.Text)
		return tok, true

	default:
		s.readChar()
		return token.Token{}, false
	}
}

// scanner tracks the read position within one Tokenize call.
type scanner struct {
	input   string
	pos     int  // current position in input
	readPos int  // reading position (after current char)
	ch      byte // current char under examination, 0 at end of input
}

// readChar advances to the next character.
func (s *scanner) readChar() {
	if s.readPos >= len(s.input) {
		s.ch = 0
		s.pos = len(s.input)
		s.readPos = len(s.input) + 1
		return
	}
	s.ch = s.input[s.readPos]
	s.pos = s.readPos
	s.readPos++
}

// peekChar returns the next character without advancing.
func (s *scanner) peekChar() byte {
	if s.readPos >= len(s.input) {
		return 0
	}
	return s.input[s.readPos]
}

// atEnd reports whether the scan has consumed the whole input. A NUL byte
// inside the input is a regular character.
func (s *scanner) atEnd() bool {
	return s.pos >= len(s.input)
}

// emit builds a token covering input[start:pos].
func (s *scanner) emit(kind token.Kind, start int) token.Token {
	return token.Token{Kind: kind, Text: s.input[start:s.pos], Start: start, End: s.pos}
}

// readLineComment consumes up to, but not including, the next newline.
func (s *scanner) readLineComment() {
	for !s.atEnd() && s.ch != '\n' {
		s.readChar()
	}
}

// readString consumes a quoted literal including both quotes. A backslash
// escapes the next character. An unterminated literal runs to end of input.
func (s *scanner) readString(quote byte) {
	s.readChar() // skip opening quote
	for !s.atEnd() {
		switch s.ch {
		case quote:
			s.readChar() // skip closing quote
			return
		case '\\':
			s.readChar()
			if s.atEnd() {
				return
			}
		}
		s.readChar()
	}
}

func isWhitespace(ch byte) bool {
	return ch == ' ' || ch == '\t' || ch == '\n' || ch == '\r' || ch == '\f' || ch == '\v'
}

func isLetter(ch byte) bool {
	return (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z')
}

func isDigit(ch byte) bool {
	return ch >= '0' && ch <= '9'
}

func isOperator(ch byte) bool {
	switch ch {
	case '=', '<', '>', '!', '+', '-', '*', '/', '%', '(', ')', ',', ';':
		return true
	}
	return false
}
