package watcher

import (
	"context"
	"fmt"
	"log"
	"path/filepath"
	"sync"

	"github.com/mvp-joe/cxgraph/internal/clang"
)

// ReparseHandler receives the outcome of each reparse.
type ReparseHandler func(tu *clang.TranslationUnit, diags clang.DiagnosticSet, err error)

// Reparser reparses units whose main file or any included file changed.
// Units are only touched from the watcher goroutine, so callers must not
// use them while Run is active.
type Reparser struct {
	files   FileWatcher
	units   []*clang.TranslationUnit
	handler ReparseHandler
	mu      sync.Mutex // Serializes reparses with Reparsed
	count   int
}

// NewReparser wires a file watcher to units.
func NewReparser(files FileWatcher, units []*clang.TranslationUnit, handler ReparseHandler) *Reparser {
	return &Reparser{files: files, units: units, handler: handler}
}

// Run starts the watcher and blocks until ctx is cancelled.
func (r *Reparser) Run(ctx context.Context) error {
	if err := r.files.Start(ctx, r.handleFileChange); err != nil {
		return fmt.Errorf("failed to start file watcher: %w", err)
	}
	<-ctx.Done()
	if err := r.files.Stop(); err != nil {
		log.Printf("Warning: file watcher stop failed: %v", err)
	}
	return nil
}

// Reparsed returns how many reparses have run.
func (r *Reparser) Reparsed() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.count
}

func (r *Reparser) handleFileChange(files []string) {
	changed := make(map[string]bool, len(files))
	for _, f := range files {
		if abs, err := filepath.Abs(f); err == nil {
			f = abs
		}
		changed[f] = true
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	for _, tu := range r.units {
		affected, err := dependsOn(tu, changed)
		if err != nil {
			log.Printf("Warning: failed to list files of unit: %v", err)
			continue
		}
		if !affected {
			continue
		}

		name, _ := tu.Spelling()
		log.Printf("Reparsing %s (%d changed file(s))", name, len(files))

		r.count++
		if err := tu.Reparse(nil, 0); err != nil {
			r.handler(tu, nil, fmt.Errorf("reparse %s: %w", name, err))
			continue
		}
		diags, err := tu.Diagnostics()
		r.handler(tu, diags, err)
	}
}

// dependsOn reports whether any file the unit read is in changed.
func dependsOn(tu *clang.TranslationUnit, changed map[string]bool) (bool, error) {
	name, err := tu.Spelling()
	if err != nil {
		return false, err
	}
	if changed[name] {
		return true, nil
	}
	files, err := tu.Files()
	if err != nil {
		return false, err
	}
	for _, f := range files {
		fn, err := f.Name()
		if err != nil {
			return false, err
		}
		if changed[fn] {
			return true, nil
		}
	}
	return false, nil
}
