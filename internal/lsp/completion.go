package lsp

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/leapstack-labs/yql/pkg/complete"
)

// handleCompletion processes completion requests.
func (s *Server) handleCompletion(msg *JSONRPCMessage) error {
	var params CompletionParams
	if err := json.Unmarshal(msg.Params, &params); err != nil {
		return s.invalidParams(msg, err)
	}

	doc := s.documents.Get(params.TextDocument.URI)
	if doc == nil {
		s.sendResponse(msg.ID, &CompletionList{Items: []CompletionItem{}}, nil)
		return nil
	}

	s.sendResponse(msg.ID, s.completionList(doc, params.Position), nil)
	return nil
}

// completionList builds the completion response for pos in doc.
func (s *Server) completionList(doc *Document, pos Position) *CompletionList {
	offset := doc.PositionToOffset(pos)
	engine := complete.New(s.catalogs.Load(), complete.WithLimit(s.limit))
	candidates := engine.Suggest(doc.Content, offset)

	replace := Range{
		Start: doc.OffsetToPosition(complete.WordStart(doc.Content, offset)),
		End:   doc.OffsetToPosition(offset),
	}

	items := make([]CompletionItem, 0, len(candidates))
	for i, c := range candidates {
		items = append(items, s.completionItem(i, c, replace))
	}

	return &CompletionList{
		// The engine caps its output, so more typing can surface new items.
		IsIncomplete: len(items) >= engine.Limit(),
		Items:        items,
	}
}

// completionItem converts one candidate. SortText pins the engine's
// ranking, which clients would otherwise re-sort alphabetically.
func (s *Server) completionItem(rank int, c complete.Candidate, replace Range) CompletionItem {
	item := CompletionItem{
		Label:            c.Label,
		Kind:             completionKind(c.Kind),
		Detail:           c.Detail,
		SortText:         fmt.Sprintf("%04d", rank),
		FilterText:       c.Label,
		InsertTextFormat: InsertTextFormatPlainText,
		TextEdit:         &TextEdit{Range: replace, NewText: c.Text()},
	}

	if s.snippets && strings.HasSuffix(c.InsertText, "()") {
		item.InsertTextFormat = InsertTextFormatSnippet
		item.TextEdit.NewText = strings.TrimSuffix(c.InsertText, ")") + "$0)"
	}
	return item
}

// completionKind maps a candidate kind onto the closest LSP item kind.
func completionKind(k complete.Kind) CompletionItemKind {
	switch k {
	case complete.Relation:
		return CompletionItemKindClass
	case complete.Field:
		return CompletionItemKindField
	case complete.Function:
		return CompletionItemKindFunction
	default:
		return CompletionItemKindKeyword
	}
}
