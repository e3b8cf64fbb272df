package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/mvp-joe/cxgraph/internal/clang"
	"github.com/mvp-joe/cxgraph/internal/docsearch"
	"github.com/mvp-joe/cxgraph/internal/storage"
)

type toolHandler = func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error)

// unitProvider hands tools a freshly parsed unit.
type unitProvider interface {
	withUnit(ctx context.Context, path string, fn func(*clang.TranslationUnit) error) error
}

func marshalToolResponse(response interface{}) (*mcp.CallToolResult, error) {
	jsonData, err := json.Marshal(response)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal response: %w", err)
	}
	return mcp.NewToolResultText(string(jsonData)), nil
}

// toolError turns caller mistakes into tool errors the agent can read and
// leaves engine faults as protocol errors.
func toolError(err error) (*mcp.CallToolResult, error) {
	if errors.Is(err, clang.ErrEngineFault) {
		return nil, err
	}
	return mcp.NewToolResultError(err.Error()), nil
}

func readOnly(opts ...mcp.ToolOption) []mcp.ToolOption {
	return append(opts, mcp.WithReadOnlyHintAnnotation(true), mcp.WithDestructiveHintAnnotation(false))
}

// AddDiagnosticsTool registers cxgraph_diagnostics.
func AddDiagnosticsTool(s *server.MCPServer, units unitProvider) {
	tool := mcp.NewTool("cxgraph_diagnostics", readOnly(
		mcp.WithDescription("Parse a C file and list its compiler diagnostics (errors, warnings, notes) with locations, warning options and fix-its."),
		mcp.WithString("file", mcp.Required(), mcp.Description("Path of the C source file")),
	)...)
	s.AddTool(tool, createDiagnosticsHandler(units))
}

func createDiagnosticsHandler(units unitProvider) toolHandler {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		var req FileRequest
		if err := bindArguments(request, &req); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Invalid arguments: %v", err)), nil
		}

		var resp DiagnosticsResponse
		err := units.withUnit(ctx, req.File, func(tu *clang.TranslationUnit) error {
			diags, err := tu.Diagnostics()
			if err != nil {
				return err
			}
			resp.File, _ = tu.Spelling()
			resp.Errors = diags.Errors()
			resp.Diagnostics = make([]Diagnostic, 0, len(diags))
			for _, d := range diags {
				resp.Diagnostics = append(resp.Diagnostics, toDiagnostic(d))
			}
			return nil
		})
		if err != nil {
			return toolError(err)
		}
		return marshalToolResponse(&resp)
	}
}

func toLocation(loc clang.SourceLocation) Location {
	pos, err := loc.Position(clang.LocationExpansion)
	if err != nil {
		return Location{}
	}
	return Location{File: pos.Filename, Line: pos.Line, Column: pos.Column}
}

func toDiagnostic(d clang.Diagnostic) Diagnostic {
	enable, _ := d.Option()
	out := Diagnostic{
		Severity: d.Severity().String(),
		Message:  d.Spelling(),
		Location: toLocation(d.Location()),
		Option:   enable,
		Category: d.CategoryName(),
	}
	for _, f := range d.FixIts() {
		out.FixIts = append(out.FixIts, FixIt{
			Begin:       toLocation(f.Range.Begin()),
			End:         toLocation(f.Range.End()),
			Replacement: f.Replacement,
		})
	}
	return out
}

// AddCursorTool registers cxgraph_cursor.
func AddCursorTool(s *server.MCPServer, units unitProvider) {
	tool := mcp.NewTool("cxgraph_cursor", readOnly(
		mcp.WithDescription("Describe the declaration, reference or expression at a position: kind, type, USR, definition location, doc comment and constant value."),
		mcp.WithString("file", mcp.Required(), mcp.Description("Path of the C source file")),
		mcp.WithNumber("line", mcp.Required(), mcp.Description("1-based line")),
		mcp.WithNumber("column", mcp.Required(), mcp.Description("1-based column in bytes")),
	)...)
	s.AddTool(tool, createCursorHandler(units))
}

func createCursorHandler(units unitProvider) toolHandler {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		var req PositionRequest
		if err := bindArguments(request, &req); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Invalid arguments: %v", err)), nil
		}
		if req.Line <= 0 || req.Column <= 0 {
			return mcp.NewToolResultError("line and column must be positive"), nil
		}

		var info CursorInfo
		err := units.withUnit(ctx, req.File, func(tu *clang.TranslationUnit) error {
			main, err := tu.MainFile()
			if err != nil {
				return err
			}
			loc, err := tu.Location(main, uint32(req.Line), uint32(req.Column))
			if err != nil {
				return err
			}
			c, err := tu.CursorAt(loc)
			if err != nil {
				return err
			}
			info, err = describeCursor(c)
			return err
		})
		if err != nil {
			return toolError(err)
		}
		return marshalToolResponse(&info)
	}
}

// describeCursor fills CursorInfo; a reference is described together
// with the USR and definition of what it names.
func describeCursor(c clang.Cursor) (CursorInfo, error) {
	kind, err := c.Kind()
	if err != nil {
		return CursorInfo{}, err
	}
	info := CursorInfo{Kind: kind.String()}
	if info.Spelling, err = c.Spelling(); err != nil {
		return info, err
	}
	info.DisplayName, _ = c.DisplayName()
	if typ, err := c.Type(); err == nil {
		info.Type, _ = typ.Spelling()
	}
	if loc, err := c.Location(); err == nil {
		info.Location = toLocation(loc)
	}
	info.USR, _ = c.USR()

	target := c
	if !kind.IsDeclaration() {
		if ref, err := c.Referenced(); err == nil && !ref.IsNull() {
			target = ref
		}
	}
	if def, err := target.Definition(); err == nil && !def.IsNull() {
		if loc, err := def.Location(); err == nil {
			l := toLocation(loc)
			info.Definition = &l
		}
	}
	info.Brief, _ = target.BriefComment()

	if kind.IsExpression() || kind == clang.CursorVarDecl || kind == clang.CursorEnumConstantDecl {
		if v, err := c.Evaluate(); err == nil {
			info.Value = formatValue(v)
		}
	}
	return info, nil
}

func formatValue(v clang.EvalResult) string {
	switch v.Kind() {
	case clang.EvalInt:
		if v.IsUnsignedInt() {
			return strconv.FormatUint(v.AsUnsigned(), 10)
		}
		return strconv.FormatInt(v.AsLongLong(), 10)
	case clang.EvalFloat:
		return strconv.FormatFloat(v.AsDouble(), 'g', -1, 64)
	case clang.EvalStrLiteral:
		return strconv.Quote(v.AsStr())
	}
	return ""
}

// AddOutlineTool registers cxgraph_outline.
func AddOutlineTool(s *server.MCPServer, units unitProvider) {
	tool := mcp.NewTool("cxgraph_outline", readOnly(
		mcp.WithDescription("List the top-level declarations of a C file (functions, variables, types, macros) with types, USRs and brief doc comments."),
		mcp.WithString("file", mcp.Required(), mcp.Description("Path of the C source file")),
	)...)
	s.AddTool(tool, createOutlineHandler(units))
}

func createOutlineHandler(units unitProvider) toolHandler {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		var req FileRequest
		if err := bindArguments(request, &req); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Invalid arguments: %v", err)), nil
		}

		var resp OutlineResponse
		err := units.withUnit(ctx, req.File, func(tu *clang.TranslationUnit) error {
			root, err := tu.Cursor()
			if err != nil {
				return err
			}
			children, err := root.Children()
			if err != nil {
				return err
			}
			resp.File, _ = tu.Spelling()
			resp.Entries = make([]CursorInfo, 0, len(children))
			for _, c := range children {
				if !c.IsDeclaration() && !c.IsPreprocessing() {
					continue
				}
				if loc, err := c.Location(); err == nil {
					if inMain, _ := loc.IsFromMainFile(); !inMain {
						continue
					}
				}
				info, err := describeCursor(c)
				if err != nil {
					return err
				}
				resp.Entries = append(resp.Entries, info)
			}
			return nil
		})
		if err != nil {
			return toolError(err)
		}
		return marshalToolResponse(&resp)
	}
}

// AddCompleteTool registers cxgraph_complete.
func AddCompleteTool(s *server.MCPServer, units unitProvider) {
	tool := mcp.NewTool("cxgraph_complete", readOnly(
		mcp.WithDescription("Code completion at a position: fields after '.' or '->', otherwise locals, globals, functions, types and keywords ordered by priority."),
		mcp.WithString("file", mcp.Required(), mcp.Description("Path of the C source file")),
		mcp.WithNumber("line", mcp.Required(), mcp.Description("1-based line")),
		mcp.WithNumber("column", mcp.Required(), mcp.Description("1-based column in bytes")),
		mcp.WithString("prefix", mcp.Description("Keep only results starting with this text")),
		mcp.WithBoolean("macros", mcp.Description("Include macros (default false)")),
		mcp.WithNumber("limit", mcp.Description("Maximum results (1-200, default 50)")),
	)...)
	s.AddTool(tool, createCompleteHandler(units))
}

func createCompleteHandler(units unitProvider) toolHandler {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		var req CompleteRequest
		if err := bindArguments(request, &req); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Invalid arguments: %v", err)), nil
		}
		if req.Line <= 0 || req.Column <= 0 {
			return mcp.NewToolResultError("line and column must be positive"), nil
		}
		if req.Limit <= 0 || req.Limit > 200 {
			req.Limit = 50
		}
		flags := clang.CompleteIncludeBriefComments
		if req.Macros {
			flags |= clang.CompleteIncludeMacros
		}

		var resp CompleteResponse
		err := units.withUnit(ctx, req.File, func(tu *clang.TranslationUnit) error {
			name, err := tu.Spelling()
			if err != nil {
				return err
			}
			res, err := tu.CodeComplete(name, uint32(req.Line), uint32(req.Column), nil, flags)
			if err != nil {
				return err
			}
			results := res.Results
			if req.Prefix != "" {
				results = res.Filter(req.Prefix)
			}
			if res.ContainerKind != 0 {
				resp.Container = res.ContainerKind.String()
			}
			resp.Total = len(results)
			if len(results) > req.Limit {
				results = results[:req.Limit]
			}
			resp.Completions = make([]Completion, 0, len(results))
			for _, r := range results {
				resp.Completions = append(resp.Completions, Completion{
					Kind:     r.Kind.String(),
					Text:     r.String.TypedText(),
					Display:  r.String.String(),
					Priority: r.String.Priority,
					Brief:    r.String.BriefComment,
				})
			}
			return nil
		})
		if err != nil {
			return toolError(err)
		}
		return marshalToolResponse(&resp)
	}
}

// AddSymbolsTool registers cxgraph_symbols, backed by the symbol store.
func AddSymbolsTool(s *server.MCPServer, store *storage.Store) {
	tool := mcp.NewTool("cxgraph_symbols", readOnly(
		mcp.WithDescription("Look up indexed symbols across all translation units. Give a USR to get its definitions, declarations and references, or a name pattern (SQL LIKE, e.g. 'list_%') to find declarations."),
		mcp.WithString("usr", mcp.Description("Unified Symbol Resolution string, e.g. c:@F@main")),
		mcp.WithString("name", mcp.Description("Name pattern when no USR is known")),
	)...)
	s.AddTool(tool, createSymbolsHandler(store))
}

func createSymbolsHandler(store *storage.Store) toolHandler {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		var req SymbolRequest
		if err := bindArguments(request, &req); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Invalid arguments: %v", err)), nil
		}

		var (
			resp SymbolResponse
			err  error
		)
		switch {
		case req.USR != "":
			if resp.Declarations, err = store.Declarations(req.USR); err != nil {
				return nil, err
			}
			for _, d := range resp.Declarations {
				if d.IsDefinition {
					resp.Definitions = append(resp.Definitions, d)
				}
			}
			if resp.References, err = store.References(req.USR); err != nil {
				return nil, err
			}
		case req.Name != "":
			if resp.Declarations, err = store.SymbolsByName(req.Name); err != nil {
				return nil, err
			}
			for _, d := range resp.Declarations {
				if d.IsDefinition {
					resp.Definitions = append(resp.Definitions, d)
				}
			}
		default:
			return mcp.NewToolResultError("usr or name parameter is required"), nil
		}
		return marshalToolResponse(&resp)
	}
}

// AddDocsTool registers cxgraph_docs.
func AddDocsTool(s *server.MCPServer, searcher docsearch.Searcher) {
	tool := mcp.NewTool("cxgraph_docs", readOnly(
		mcp.WithDescription(`Full-text search over documentation comments of declarations in the files parsed so far.

Supports bleve query syntax:
- Field scoping: name:list_push, kind:function_decl
- Boolean operators: AND, OR, NOT, +required, -excluded
- Phrase search: "thread safe"
- Wildcards: alloc*
- Fuzzy: allocte~1`),
		mcp.WithString("query", mcp.Required(), mcp.Description("Bleve query string")),
		mcp.WithNumber("limit", mcp.Description("Maximum results (1-100, default 15)")),
		mcp.WithString("kind", mcp.Description("Only this cursor kind, e.g. function_decl")),
		mcp.WithString("file_path", mcp.Description("Wildcard on the declaring file, e.g. */list.h")),
	)...)
	s.AddTool(tool, createDocsHandler(searcher))
}

func createDocsHandler(searcher docsearch.Searcher) toolHandler {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		var req DocsRequest
		if err := bindArguments(request, &req); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Invalid arguments: %v", err)), nil
		}
		if req.Query == "" {
			return mcp.NewToolResultError("query parameter is required"), nil
		}

		results, err := searcher.Search(ctx, req.Query, &docsearch.Options{
			Limit:    req.Limit,
			Kind:     req.Kind,
			FilePath: req.FilePath,
		})
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return marshalToolResponse(&DocsResponse{Results: results, Total: len(results)})
	}
}
