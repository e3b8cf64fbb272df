package mcp

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mvp-joe/cxgraph/internal/clang"
	"github.com/mvp-joe/cxgraph/internal/config"
	"github.com/mvp-joe/cxgraph/internal/storage"
)

// Test Plan for MCP tools:
// - cxgraph_diagnostics reports errors with locations and fix-its
// - cxgraph_cursor describes a use with its definition and value
// - cxgraph_outline lists main-file declarations only
// - cxgraph_complete filters by prefix and respects the limit
// - cxgraph_docs finds doc comments of parsed files
// - cxgraph_symbols answers USR and name lookups from the store
// - Missing or malformed arguments become tool errors
// - String-typed numbers from clients are coerced

const listHeader = `/// Doubly linked list node.
struct node { struct node *next; struct node *prev; int value; };
`

const listSource = `#include "list.h"
#define CAPACITY 16
int count;
/// Pushes a value onto the front of the list.
int push(struct node *head, int value) {
  head->value = count;
  return CAPACITY;
}

int broken = missing
`

func newTestServer(t *testing.T) (*Server, string) {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "list.h"), []byte(listHeader), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "list.c"), []byte(listSource), 0644))

	s, err := NewServer(context.Background(), config.Default(), nil, "test")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s, filepath.Join(dir, "list.c")
}

func callTool(t *testing.T, handler toolHandler, args map[string]interface{}) *mcp.CallToolResult {
	t.Helper()
	result, err := handler(context.Background(), mcp.CallToolRequest{
		Params: mcp.CallToolParams{Arguments: args},
	})
	require.NoError(t, err)
	require.NotNil(t, result)
	return result
}

func decodeResult(t *testing.T, result *mcp.CallToolResult, target interface{}) {
	t.Helper()
	require.False(t, result.IsError, "unexpected tool error: %v", result.Content)
	text, ok := mcp.AsTextContent(result.Content[0])
	require.True(t, ok)
	require.NoError(t, json.Unmarshal([]byte(text.Text), target))
}

func TestDiagnosticsTool(t *testing.T) {
	t.Parallel()

	s, file := newTestServer(t)
	var resp DiagnosticsResponse
	decodeResult(t, callTool(t, createDiagnosticsHandler(s), map[string]interface{}{"file": file}), &resp)

	assert.Equal(t, file, resp.File)
	assert.Equal(t, 2, resp.Errors)
	require.Len(t, resp.Diagnostics, 2)

	var messages []string
	for _, d := range resp.Diagnostics {
		messages = append(messages, d.Message)
		assert.Equal(t, uint32(10), d.Location.Line)
		if d.Message == "expected ';' after top level declarator" {
			require.Len(t, d.FixIts, 1)
			assert.Equal(t, ";", d.FixIts[0].Replacement)
		}
	}
	assert.ElementsMatch(t, []string{
		"use of undeclared identifier 'missing'",
		"expected ';' after top level declarator",
	}, messages)
}

func TestDiagnosticsTool_Errors(t *testing.T) {
	t.Parallel()

	s, file := newTestServer(t)
	handler := createDiagnosticsHandler(s)

	result := callTool(t, handler, map[string]interface{}{})
	assert.True(t, result.IsError)

	result = callTool(t, handler, map[string]interface{}{"file": filepath.Join(filepath.Dir(file), "absent.c")})
	assert.True(t, result.IsError)
}

func TestCursorTool(t *testing.T) {
	t.Parallel()

	s, file := newTestServer(t)

	// Line 6 is "  head->value = count;"; column 17 is "count".
	var info CursorInfo
	decodeResult(t, callTool(t, createCursorHandler(s), map[string]interface{}{
		"file": file, "line": "6", "column": 17,
	}), &info)
	assert.Equal(t, clang.CursorDeclRefExpr.String(), info.Kind)
	assert.Equal(t, "count", info.Spelling)
	assert.Equal(t, "int", info.Type)
	assert.Equal(t, "c:@count", info.USR)
	require.NotNil(t, info.Definition)
	assert.Equal(t, uint32(3), info.Definition.Line)

	decodeResult(t, callTool(t, createCursorHandler(s), map[string]interface{}{
		"file": file, "line": 5, "column": 5,
	}), &info)
	assert.Equal(t, clang.CursorFunctionDecl.String(), info.Kind)
	assert.Equal(t, "c:@F@push", info.USR)
	assert.Equal(t, "Pushes a value onto the front of the list.", info.Brief)

	result := callTool(t, createCursorHandler(s), map[string]interface{}{"file": file, "line": 0, "column": 1})
	assert.True(t, result.IsError)
}

func TestOutlineTool(t *testing.T) {
	t.Parallel()

	s, file := newTestServer(t)
	var resp OutlineResponse
	decodeResult(t, callTool(t, createOutlineHandler(s), map[string]interface{}{"file": file}), &resp)

	var names []string
	for _, e := range resp.Entries {
		names = append(names, e.Spelling)
	}
	assert.Contains(t, names, "push")
	assert.Contains(t, names, "count")
	assert.Contains(t, names, "CAPACITY")
	assert.Contains(t, names, "broken")
	// Declarations from list.h are not part of the outline
	assert.NotContains(t, names, "node")
}

func TestCompleteTool(t *testing.T) {
	t.Parallel()

	s, file := newTestServer(t)

	// Line 6 is "  head->value = count;"; column 9 sits after "head->".
	var resp CompleteResponse
	decodeResult(t, callTool(t, createCompleteHandler(s), map[string]interface{}{
		"file": file, "line": 6, "column": 9,
	}), &resp)
	assert.Equal(t, clang.CursorStructDecl.String(), resp.Container)
	assert.Equal(t, 3, resp.Total)

	decodeResult(t, callTool(t, createCompleteHandler(s), map[string]interface{}{
		"file": file, "line": 6, "column": 9, "prefix": "pr", "limit": 1,
	}), &resp)
	require.Len(t, resp.Completions, 1)
	assert.Equal(t, "prev", resp.Completions[0].Text)
}

func TestDocsTool(t *testing.T) {
	t.Parallel()

	s, file := newTestServer(t)
	s.Preload(context.Background(), []string{file})

	var resp DocsResponse
	decodeResult(t, callTool(t, createDocsHandler(s.docs), map[string]interface{}{"query": "front"}), &resp)
	require.Equal(t, 1, resp.Total)
	assert.Equal(t, "push", resp.Results[0].Doc.Name)

	// Header docs are indexed too
	decodeResult(t, callTool(t, createDocsHandler(s.docs), map[string]interface{}{
		"query": "linked", "kind": clang.CursorStructDecl.String(),
	}), &resp)
	require.Equal(t, 1, resp.Total)
	assert.Equal(t, "node", resp.Results[0].Doc.Name)

	result := callTool(t, createDocsHandler(s.docs), map[string]interface{}{})
	assert.True(t, result.IsError)
}

func TestSymbolsTool(t *testing.T) {
	t.Parallel()

	store, err := storage.Open(":memory:")
	require.NoError(t, err)
	defer store.Close()

	require.NoError(t, store.WriteUnit(&storage.Unit{
		Source: "/src/a.c",
		Symbols: []*storage.Symbol{
			{USR: "c:@F@push", Name: "push", Kind: "function_decl", FilePath: "/src/list.h", Line: 3, Column: 5},
			{USR: "c:@F@push", Name: "push", Kind: "function_decl", FilePath: "/src/a.c", Line: 10, Column: 5, IsDefinition: true},
		},
		Refs: []*storage.Reference{{USR: "c:@F@push", Kind: "decl_ref_expr", FilePath: "/src/a.c", Line: 20, Column: 3}},
	}))
	handler := createSymbolsHandler(store)

	var resp SymbolResponse
	decodeResult(t, callTool(t, handler, map[string]interface{}{"usr": "c:@F@push"}), &resp)
	assert.Len(t, resp.Declarations, 2)
	require.Len(t, resp.Definitions, 1)
	assert.Equal(t, "/src/a.c", resp.Definitions[0].FilePath)
	require.Len(t, resp.References, 1)
	assert.Equal(t, 20, resp.References[0].Line)

	decodeResult(t, callTool(t, handler, map[string]interface{}{"name": "pu%"}), &resp)
	assert.Len(t, resp.Declarations, 2)

	assert.True(t, callTool(t, handler, map[string]interface{}{}).IsError)
}

func TestBindArguments_Coercion(t *testing.T) {
	t.Parallel()

	request := mcp.CallToolRequest{Params: mcp.CallToolParams{Arguments: map[string]interface{}{
		"file": "a.c", "line": "12", "column": 4.0, "prefix": "x", "macros": "true", "limit": "5",
	}}}
	var req CompleteRequest
	require.NoError(t, bindArguments(request, &req))
	assert.Equal(t, CompleteRequest{File: "a.c", Line: 12, Column: 4, Prefix: "x", Macros: true, Limit: 5}, req)
}
