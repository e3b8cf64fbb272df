// Package mcp exposes the C inspection engine as MCP tools over stdio.
package mcp

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"

	"github.com/mark3labs/mcp-go/server"

	"github.com/mvp-joe/cxgraph/internal/clang"
	"github.com/mvp-joe/cxgraph/internal/config"
	"github.com/mvp-joe/cxgraph/internal/docsearch"
	"github.com/mvp-joe/cxgraph/internal/storage"
)

// Server owns one Index and the units opened through it. The engine is
// single threaded, so every tool call holds mu while it touches units.
type Server struct {
	cfg   *config.Config
	index *clang.Index
	store *storage.Store
	docs  docsearch.Searcher
	mcp   *server.MCPServer

	mu    sync.Mutex
	units map[string]*clang.TranslationUnit
}

// NewServer creates a server. store may be nil, in which case the
// cxgraph_symbols tool is not offered.
func NewServer(ctx context.Context, cfg *config.Config, store *storage.Store, version string) (*Server, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	index, err := clang.NewIndex(cfg.IndexOptions()...)
	if err != nil {
		return nil, fmt.Errorf("failed to create index: %w", err)
	}
	docs, err := docsearch.New(ctx, nil)
	if err != nil {
		index.Close()
		return nil, fmt.Errorf("failed to create doc searcher: %w", err)
	}

	s := &Server{
		cfg:   cfg,
		index: index,
		store: store,
		docs:  docs,
		units: make(map[string]*clang.TranslationUnit),
		mcp:   server.NewMCPServer("cxgraph", version, server.WithToolCapabilities(true)),
	}

	AddDiagnosticsTool(s.mcp, s)
	AddCursorTool(s.mcp, s)
	AddOutlineTool(s.mcp, s)
	AddCompleteTool(s.mcp, s)
	AddDocsTool(s.mcp, s.docs)
	if store != nil {
		AddSymbolsTool(s.mcp, store)
	}
	return s, nil
}

// Preload parses files up front so their doc comments are searchable
// before any tool names them.
func (s *Server) Preload(ctx context.Context, files []string) {
	for _, f := range files {
		if err := ctx.Err(); err != nil {
			return
		}
		err := s.withUnit(ctx, f, func(*clang.TranslationUnit) error { return nil })
		if err != nil {
			log.Printf("Warning: failed to preload %s: %v", f, err)
		}
	}
}

// withUnit parses path on first use and reparses it on later calls, then
// runs fn with the fresh unit under the engine lock.
func (s *Server) withUnit(ctx context.Context, path string, fn func(*clang.TranslationUnit) error) error {
	if path == "" {
		return fmt.Errorf("%w: file parameter is required", clang.ErrInvalidArgument)
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tu, ok := s.units[abs]
	if ok {
		if err := tu.Reparse(nil, 0); err != nil {
			return err
		}
	} else {
		flags, err := s.cfg.ParseFlags()
		if err != nil {
			return err
		}
		tu, err = s.index.Parse(abs, s.cfg.CompilerArgs(), nil, flags)
		if err != nil {
			return err
		}
		s.units[abs] = tu
	}

	docs, err := docsearch.Collect(tu)
	if err != nil {
		log.Printf("Warning: failed to collect docs of %s: %v", abs, err)
	} else if err := s.docs.Update(ctx, docs, nil); err != nil {
		log.Printf("Warning: failed to index docs of %s: %v", abs, err)
	}

	return fn(tu)
}

// Serve runs the MCP server on stdio until a signal or ctx ends it.
func (s *Server) Serve(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	errCh := make(chan error, 1)
	go func() {
		log.Printf("Starting MCP server on stdio...")
		if err := server.ServeStdio(s.mcp); err != nil {
			errCh <- fmt.Errorf("MCP server error: %w", err)
		}
	}()

	select {
	case <-sigCh:
		log.Printf("Received shutdown signal, stopping gracefully...")
		return nil
	case err := <-errCh:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close disposes every unit, the index and the doc searcher. The store
// belongs to the caller.
func (s *Server) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, tu := range s.units {
		tu.Close()
	}
	s.units = nil
	if err := s.docs.Close(); err != nil {
		log.Printf("Warning: failed to close doc searcher: %v", err)
	}
	return s.index.Close()
}
