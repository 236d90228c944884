package lsp

import (
	"encoding/json"
	"strings"

	"github.com/leapstack-labs/yql/pkg/token"
)

// semanticTypes maps token kinds onto standard LSP semantic token types.
// The index of each entry in the legend is its type id. Plain tokens have
// no entry and are not reported.
var semanticTypes = []struct {
	kind token.Kind
	name string
}{
	{token.Keyword, "keyword"},
	{token.Relation, "class"},
	{token.Field, "property"},
	{token.String, "string"},
	{token.Number, "number"},
	{token.Operator, "operator"},
	{token.Function, "function"},
	{token.Comment, "comment"},
}

// SemanticTokenTypes returns the token type legend advertised on initialize.
func SemanticTokenTypes() []string {
	names := make([]string, len(semanticTypes))
	for i, t := range semanticTypes {
		names[i] = t.name
	}
	return names
}

func semanticTypeIndex(kind token.Kind) (uint32, bool) {
	for i, t := range semanticTypes {
		if t.kind == kind {
			return uint32(i), true
		}
	}
	return 0, false
}

func (s *Server) handleSemanticTokens(msg *JSONRPCMessage) error {
	var params SemanticTokensParams
	if err := json.Unmarshal(msg.Params, &params); err != nil {
		return s.invalidParams(msg, err)
	}

	doc := s.documents.Get(params.TextDocument.URI)
	if doc == nil {
		s.sendResponse(msg.ID, &SemanticTokens{Data: []uint32{}}, nil)
		return nil
	}

	s.sendResponse(msg.ID, EncodeSemanticTokens(doc, s.tokenize(doc)), nil)
	return nil
}

// EncodeSemanticTokens encodes tokens in the relative form of the LSP
// semantic tokens response: five integers per token holding the line delta,
// start delta, length, type and modifiers. Tokens spanning several lines
// are split into one entry per line because clients do not support
// multi-line tokens.
func EncodeSemanticTokens(doc *Document, tokens []token.Token) *SemanticTokens {
	data := make([]uint32, 0, len(tokens)*5)
	var prevLine, prevChar uint32

	emit := func(start, end int, typ uint32) {
		if start >= end {
			return
		}
		from := doc.OffsetToPosition(start)
		to := doc.OffsetToPosition(end)
		deltaLine := from.Line - prevLine
		deltaChar := from.Character
		if deltaLine == 0 {
			deltaChar -= prevChar
		}
		data = append(data, deltaLine, deltaChar, to.Character-from.Character, typ, 0)
		prevLine, prevChar = from.Line, from.Character
	}

	for _, tok := range tokens {
		typ, ok := semanticTypeIndex(tok.Kind)
		if !ok {
			continue
		}
		start := tok.Start
		for {
			nl := strings.IndexByte(doc.Content[start:tok.End], '\n')
			if nl < 0 {
				emit(start, tok.End, typ)
				break
			}
			emit(start, start+nl, typ)
			start += nl + 1
		}
	}

	return &SemanticTokens{Data: data}
}
