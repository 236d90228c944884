package lsp

import (
	"encoding/json"
	"strings"
)

// handleHover describes the catalog entry under the cursor. Words the
// catalog does not know produce a null result.
func (s *Server) handleHover(msg *JSONRPCMessage) error {
	var params HoverParams
	if err := json.Unmarshal(msg.Params, &params); err != nil {
		return s.invalidParams(msg, err)
	}

	doc := s.documents.Get(params.TextDocument.URI)
	if doc == nil {
		s.sendResponse(msg.ID, nil, nil)
		return nil
	}

	hover := s.hover(doc, params.Position)
	if hover == nil {
		s.sendResponse(msg.ID, nil, nil)
		return nil
	}
	s.sendResponse(msg.ID, hover, nil)
	return nil
}

func (s *Server) hover(doc *Document, pos Position) *Hover {
	word, rng := doc.GetWordAtPosition(pos)
	if word == "" {
		return nil
	}

	desc, ok := s.catalogs.Load().Describe(word)
	if !ok {
		return nil
	}

	title, body, _ := strings.Cut(desc, "\n\n")
	value := "**" + title + "**"
	if body != "" {
		value += "\n\n" + body
	}

	return &Hover{
		Contents: MarkupContent{Kind: MarkupKindMarkdown, Value: value},
		Range:    &rng,
	}
}
