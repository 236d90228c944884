package lsp

import (
	"github.com/leapstack-labs/yql/pkg/token"
)

// diagnosticSource labels every diagnostic this server publishes.
const diagnosticSource = "yql"

// publishDiagnostics lexes the document and publishes tokenization problems.
func (s *Server) publishDiagnostics(uri string) {
	doc := s.documents.Get(uri)
	if doc == nil {
		return
	}

	version := doc.Version
	s.sendNotification("textDocument/publishDiagnostics", &PublishDiagnosticsParams{
		URI:         uri,
		Version:     &version,
		Diagnostics: Diagnostics(doc, s.tokenize(doc)),
	})
}

// Diagnostics reports string literals that run to the end of the document
// without a closing quote. The result is never nil.
func Diagnostics(doc *Document, tokens []token.Token) []Diagnostic {
	diagnostics := []Diagnostic{}
	for _, tok := range tokens {
		if tok.Kind != token.String || terminated(tok.Text) {
			continue
		}
		diagnostics = append(diagnostics, Diagnostic{
			Range: Range{
				Start: doc.OffsetToPosition(tok.Start),
				End:   doc.OffsetToPosition(tok.End),
			},
			Severity: DiagnosticSeverityWarning,
			Code:     "unterminated-string",
			Source:   diagnosticSource,
			Message:  "unterminated string literal",
		})
	}
	return diagnostics
}

// terminated reports whether a string literal ends with an unescaped copy
// of its opening quote.
func terminated(text string) bool {
	if len(text) < 2 {
		return false
	}
	quote := text[0]
	if text[len(text)-1] != quote {
		return false
	}
	backslashes := 0
	for i := len(text) - 2; i > 0 && text[i] == '\\'; i-- {
		backslashes++
	}
	return backslashes%2 == 0
}
