package lsp

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/yql/internal/testutil"
	"github.com/leapstack-labs/yql/pkg/catalog"
)

const testURI = "file:///tmp/query.yql"

// frame encodes one JSON-RPC message with its Content-Length header.
func frame(t *testing.T, id int, method string, params any) string {
	t.Helper()
	msg := map[string]any{"jsonrpc": "2.0", "method": method}
	if id > 0 {
		msg["id"] = id
	}
	if params != nil {
		msg["params"] = params
	}
	body, err := json.Marshal(msg)
	require.NoError(t, err)
	return fmt.Sprintf("Content-Length: %d\r\n\r\n%s", len(body), body)
}

// session runs a server over the given input and returns every message it wrote.
func session(t *testing.T, input string, opts ...Option) []JSONRPCMessage {
	t.Helper()
	var out bytes.Buffer
	opts = append([]Option{WithLogger(testutil.NewTestLogger(t))}, opts...)
	s := NewServer(strings.NewReader(input), &out, opts...)
	require.NoError(t, s.Run())
	return readMessages(t, &out)
}

func readMessages(t *testing.T, r io.Reader) []JSONRPCMessage {
	t.Helper()
	br := bufio.NewReader(r)
	var msgs []JSONRPCMessage
	for {
		line, err := br.ReadString('\n')
		if err == io.EOF {
			return msgs
		}
		require.NoError(t, err)
		require.True(t, strings.HasPrefix(line, "Content-Length: "), "unexpected header %q", line)
		n, err := strconv.Atoi(strings.TrimSpace(strings.TrimPrefix(line, "Content-Length: ")))
		require.NoError(t, err)
		_, err = br.ReadString('\n') // blank line
		require.NoError(t, err)
		body := make([]byte, n)
		_, err = io.ReadFull(br, body)
		require.NoError(t, err)

		var msg JSONRPCMessage
		require.NoError(t, json.Unmarshal(body, &msg))
		msgs = append(msgs, msg)
	}
}

func response(t *testing.T, msgs []JSONRPCMessage, id int) JSONRPCMessage {
	t.Helper()
	want := strconv.Itoa(id)
	for _, m := range msgs {
		if m.ID != nil && string(*m.ID) == want {
			return m
		}
	}
	t.Fatalf("no response with id %d", id)
	return JSONRPCMessage{}
}

func notifications(msgs []JSONRPCMessage, method string) []JSONRPCMessage {
	var out []JSONRPCMessage
	for _, m := range msgs {
		if m.ID == nil && m.Method == method {
			out = append(out, m)
		}
	}
	return out
}

func openDoc(t *testing.T, text string) string {
	return frame(t, 0, "textDocument/didOpen", DidOpenTextDocumentParams{
		TextDocument: TextDocumentItem{URI: testURI, LanguageID: "yql", Version: 1, Text: text},
	})
}

func at(line, char uint32) TextDocumentPositionParams {
	return TextDocumentPositionParams{
		TextDocument: TextDocumentIdentifier{URI: testURI},
		Position:     Position{Line: line, Character: char},
	}
}

func TestInitialize(t *testing.T) {
	msgs := session(t, frame(t, 1, "initialize", map[string]any{"rootUri": "file:///tmp"})+
		frame(t, 0, "initialized", map[string]any{}),
		WithVersion("1.2.3"))

	resp := response(t, msgs, 1)
	require.Nil(t, resp.Error)

	var result InitializeResult
	require.NoError(t, json.Unmarshal(resp.Result, &result))
	assert.Equal(t, TextDocumentSyncKindFull, result.Capabilities.TextDocumentSync.Change)
	assert.True(t, result.Capabilities.HoverProvider)
	require.NotNil(t, result.Capabilities.SemanticTokensProvider)
	assert.Equal(t,
		[]string{"keyword", "class", "property", "string", "number", "operator", "function", "comment"},
		result.Capabilities.SemanticTokensProvider.Legend.TokenTypes)
	assert.Equal(t, "yql", result.ServerInfo.Name)
	assert.Equal(t, "1.2.3", result.ServerInfo.Version)
}

func TestCompletion(t *testing.T) {
	msgs := session(t, openDoc(t, "SELECT * FROM pl")+
		frame(t, 2, "textDocument/completion", CompletionParams{TextDocumentPositionParams: at(0, 16)}))

	var list CompletionList
	require.NoError(t, json.Unmarshal(response(t, msgs, 2).Result, &list))
	require.Len(t, list.Items, 2)

	assert.Equal(t, "player_stats", list.Items[0].Label)
	assert.Equal(t, "players", list.Items[1].Label)
	assert.Equal(t, CompletionItemKindClass, list.Items[0].Kind)
	assert.Equal(t, "0000", list.Items[0].SortText)
	assert.Equal(t, "0001", list.Items[1].SortText)
	assert.False(t, list.IsIncomplete)

	edit := list.Items[1].TextEdit
	require.NotNil(t, edit)
	assert.Equal(t, Range{Start: Position{0, 14}, End: Position{0, 16}}, edit.Range)
	assert.Equal(t, "players", edit.NewText)
}

func TestCompletionFunctionSnippet(t *testing.T) {
	init := frame(t, 1, "initialize", map[string]any{
		"capabilities": map[string]any{
			"textDocument": map[string]any{
				"completion": map[string]any{"completionItem": map[string]any{"snippetSupport": true}},
			},
		},
	})
	msgs := session(t, init+openDoc(t, "SELECT up")+
		frame(t, 2, "textDocument/completion", CompletionParams{TextDocumentPositionParams: at(0, 9)}))

	var list CompletionList
	require.NoError(t, json.Unmarshal(response(t, msgs, 2).Result, &list))
	require.Len(t, list.Items, 2)

	assert.Equal(t, "UPDATE", list.Items[0].Label)
	assert.Equal(t, CompletionItemKindKeyword, list.Items[0].Kind)
	assert.Equal(t, InsertTextFormatPlainText, list.Items[0].InsertTextFormat)

	assert.Equal(t, "UPPER", list.Items[1].Label)
	assert.Equal(t, CompletionItemKindFunction, list.Items[1].Kind)
	assert.Equal(t, InsertTextFormatSnippet, list.Items[1].InsertTextFormat)
	assert.Equal(t, "UPPER($0)", list.Items[1].TextEdit.NewText)
}

func TestCompletionHonorsLimit(t *testing.T) {
	msgs := session(t, openDoc(t, "SELECT ")+
		frame(t, 2, "textDocument/completion", CompletionParams{TextDocumentPositionParams: at(0, 7)}),
		WithLimit(3))

	var list CompletionList
	require.NoError(t, json.Unmarshal(response(t, msgs, 2).Result, &list))
	assert.Len(t, list.Items, 3)
	assert.True(t, list.IsIncomplete)
}

func TestCompletionUsesSwappedCatalog(t *testing.T) {
	holder := catalog.NewHolder(nil)
	holder.Swap(catalog.MustNew(catalog.Definition{
		Keywords:  []string{"FROM"},
		Relations: []catalog.RelationDef{{Name: "orders", Fields: []string{"amount"}}},
	}))

	msgs := session(t, openDoc(t, "FROM o")+
		frame(t, 2, "textDocument/completion", CompletionParams{TextDocumentPositionParams: at(0, 6)}),
		WithCatalog(holder))

	var list CompletionList
	require.NoError(t, json.Unmarshal(response(t, msgs, 2).Result, &list))
	require.Len(t, list.Items, 1)
	assert.Equal(t, "orders", list.Items[0].Label)
}

func TestCompletionUnknownDocument(t *testing.T) {
	msgs := session(t, frame(t, 2, "textDocument/completion", CompletionParams{TextDocumentPositionParams: at(0, 0)}))

	var list CompletionList
	require.NoError(t, json.Unmarshal(response(t, msgs, 2).Result, &list))
	assert.Empty(t, list.Items)
	assert.NotNil(t, list.Items)
}

func TestHover(t *testing.T) {
	msgs := session(t, openDoc(t, "SELECT name FROM players zzz")+
		frame(t, 2, "textDocument/hover", HoverParams{TextDocumentPositionParams: at(0, 19)})+
		frame(t, 3, "textDocument/hover", HoverParams{TextDocumentPositionParams: at(0, 26)}))

	var hover Hover
	require.NoError(t, json.Unmarshal(response(t, msgs, 2).Result, &hover))
	assert.Equal(t, MarkupKindMarkdown, hover.Contents.Kind)
	assert.True(t, strings.HasPrefix(hover.Contents.Value, "**Relation: players"))
	require.NotNil(t, hover.Range)
	assert.Equal(t, Range{Start: Position{0, 17}, End: Position{0, 24}}, *hover.Range)

	// Not in the catalog.
	assert.Equal(t, "null", string(response(t, msgs, 3).Result))
}

func TestSemanticTokens(t *testing.T) {
	msgs := session(t, openDoc(t, "SELECT name\nFROM players")+
		frame(t, 2, "textDocument/semanticTokens/full", SemanticTokensParams{
			TextDocument: TextDocumentIdentifier{URI: testURI},
		}))

	var tokens SemanticTokens
	require.NoError(t, json.Unmarshal(response(t, msgs, 2).Result, &tokens))
	assert.Equal(t, []uint32{
		0, 0, 6, 0, 0, // SELECT keyword
		0, 7, 4, 2, 0, // name property
		1, 0, 4, 0, 0, // FROM keyword
		0, 5, 7, 1, 0, // players class
	}, tokens.Data)
}

func TestDiagnostics(t *testing.T) {
	msgs := session(t, openDoc(t, "SELECT 'ok', \"open")+
		frame(t, 0, "textDocument/didChange", DidChangeTextDocumentParams{
			TextDocument:   VersionedTextDocumentIdentifier{TextDocumentIdentifier: TextDocumentIdentifier{URI: testURI}, Version: 2},
			ContentChanges: []TextDocumentContentChangeEvent{{Text: "SELECT 'ok'"}},
		})+
		frame(t, 0, "textDocument/didClose", DidCloseTextDocumentParams{TextDocument: TextDocumentIdentifier{URI: testURI}}))

	published := notifications(msgs, "textDocument/publishDiagnostics")
	require.Len(t, published, 3)

	var first PublishDiagnosticsParams
	require.NoError(t, json.Unmarshal(published[0].Params, &first))
	require.Len(t, first.Diagnostics, 1)
	assert.Equal(t, "unterminated string literal", first.Diagnostics[0].Message)
	assert.Equal(t, DiagnosticSeverityWarning, first.Diagnostics[0].Severity)
	assert.Equal(t, Range{Start: Position{0, 13}, End: Position{0, 18}}, first.Diagnostics[0].Range)
	require.NotNil(t, first.Version)
	assert.Equal(t, 1, *first.Version)

	var second PublishDiagnosticsParams
	require.NoError(t, json.Unmarshal(published[1].Params, &second))
	assert.Empty(t, second.Diagnostics)
	assert.Equal(t, 2, *second.Version)

	var cleared PublishDiagnosticsParams
	require.NoError(t, json.Unmarshal(published[2].Params, &cleared))
	assert.Empty(t, cleared.Diagnostics)
}

func TestUnknownMethod(t *testing.T) {
	msgs := session(t, frame(t, 5, "textDocument/definition", at(0, 0))+
		frame(t, 0, "$/cancelRequest", map[string]any{"id": 1}))

	require.Len(t, msgs, 1)
	resp := response(t, msgs, 5)
	require.NotNil(t, resp.Error)
	assert.Equal(t, codeMethodNotFound, resp.Error.Code)
}

func TestInvalidParams(t *testing.T) {
	msgs := session(t, frame(t, 4, "textDocument/hover", "not an object"))

	resp := response(t, msgs, 4)
	require.NotNil(t, resp.Error)
	assert.Equal(t, codeInvalidParams, resp.Error.Code)
}

func TestMalformedMessage(t *testing.T) {
	body := "{not json"
	input := fmt.Sprintf("Content-Length: %d\r\n\r\n%s", len(body), body) +
		frame(t, 7, "shutdown", nil)

	msgs := session(t, input)
	require.Len(t, msgs, 2)
	require.NotNil(t, msgs[0].Error)
	assert.Equal(t, codeParseError, msgs[0].Error.Code)
	assert.Nil(t, response(t, msgs, 7).Error)
}

func TestShutdownAndExit(t *testing.T) {
	msgs := session(t, frame(t, 1, "shutdown", nil)+
		frame(t, 2, "textDocument/hover", HoverParams{TextDocumentPositionParams: at(0, 0)})+
		frame(t, 0, "exit", nil)+
		frame(t, 3, "shutdown", nil))

	assert.Nil(t, response(t, msgs, 1).Error)
	assert.Equal(t, "null", string(response(t, msgs, 1).Result))

	after := response(t, msgs, 2)
	require.NotNil(t, after.Error)
	assert.Equal(t, codeInvalidRequest, after.Error.Code)

	// Nothing is read after exit.
	assert.Len(t, msgs, 2)
}
