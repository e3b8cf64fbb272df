package mcp

import (
	"github.com/mvp-joe/cxgraph/internal/docsearch"
	"github.com/mvp-joe/cxgraph/internal/storage"
)

// FileRequest names a source file.
type FileRequest struct {
	File string `json:"file"`
}

// PositionRequest names a 1-based position in a file.
type PositionRequest struct {
	File   string `json:"file"`
	Line   int    `json:"line"`
	Column int    `json:"column"`
}

// CompleteRequest asks for completions at a position.
type CompleteRequest struct {
	File   string `json:"file"`
	Line   int    `json:"line"`
	Column int    `json:"column"`
	Prefix string `json:"prefix,omitempty"`
	Macros bool   `json:"macros,omitempty"`
	Limit  int    `json:"limit,omitempty"`
}

// SymbolRequest looks a symbol up by USR or by name pattern.
type SymbolRequest struct {
	USR  string `json:"usr,omitempty"`
	Name string `json:"name,omitempty"`
}

// DocsRequest is a doc comment search.
type DocsRequest struct {
	Query    string `json:"query"`
	Limit    int    `json:"limit,omitempty"`
	Kind     string `json:"kind,omitempty"`
	FilePath string `json:"file_path,omitempty"`
}

// Location is a decoded source position.
type Location struct {
	File   string `json:"file"`
	Line   uint32 `json:"line"`
	Column uint32 `json:"column"`
}

// FixIt is a suggested edit.
type FixIt struct {
	Begin       Location `json:"begin"`
	End         Location `json:"end"`
	Replacement string   `json:"replacement"`
}

// Diagnostic is one compiler message.
type Diagnostic struct {
	Severity string   `json:"severity"`
	Message  string   `json:"message"`
	Location Location `json:"location"`
	Option   string   `json:"option,omitempty"`
	Category string   `json:"category,omitempty"`
	FixIts   []FixIt  `json:"fixits,omitempty"`
}

// DiagnosticsResponse is the result of cxgraph_diagnostics.
type DiagnosticsResponse struct {
	File        string       `json:"file"`
	Errors      int          `json:"errors"`
	Diagnostics []Diagnostic `json:"diagnostics"`
}

// CursorInfo describes the entity at a position.
type CursorInfo struct {
	Kind        string    `json:"kind"`
	Spelling    string    `json:"spelling"`
	DisplayName string    `json:"display_name,omitempty"`
	Type        string    `json:"type,omitempty"`
	USR         string    `json:"usr,omitempty"`
	Location    Location  `json:"location"`
	Definition  *Location `json:"definition,omitempty"`
	Brief       string    `json:"brief,omitempty"`
	Value       string    `json:"value,omitempty"`
}

// OutlineResponse lists the top-level declarations of a file.
type OutlineResponse struct {
	File    string       `json:"file"`
	Entries []CursorInfo `json:"entries"`
}

// Completion is one completion candidate.
type Completion struct {
	Kind     string `json:"kind"`
	Text     string `json:"text"`
	Display  string `json:"display"`
	Priority int    `json:"priority"`
	Brief    string `json:"brief,omitempty"`
}

// CompleteResponse is the result of cxgraph_complete.
type CompleteResponse struct {
	Container   string       `json:"container,omitempty"`
	Total       int          `json:"total"`
	Completions []Completion `json:"completions"`
}

// SymbolResponse is the result of cxgraph_symbols.
type SymbolResponse struct {
	Definitions  []*storage.Symbol    `json:"definitions"`
	Declarations []*storage.Symbol    `json:"declarations"`
	References   []*storage.Reference `json:"references,omitempty"`
}

// DocsResponse is the result of cxgraph_docs.
type DocsResponse struct {
	Results []*docsearch.Result `json:"results"`
	Total   int                 `json:"total"`
}
