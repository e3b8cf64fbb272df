package clang

import (
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/mvp-joe/cxgraph/internal/syntax"
)

const (
	defaultPreambleBytes = 64 << 20
	defaultPreambleTTL   = 10 * time.Minute
)

// Index owns translation units. Units of one index must be used from one
// goroutine at a time; separate indexes are independent.
type Index struct {
	id                 uuid.UUID
	excludePCH         bool
	displayDiagnostics bool
	preambleBytes      int
	preambleTTL        time.Duration

	mu         sync.Mutex
	options    GlobalOptFlags
	invocation string
	preamble   *syntax.Cache
	units      map[*TranslationUnit]struct{}
	closed     bool
}

// IndexOption configures NewIndex.
type IndexOption func(*Index)

// WithExcludeDeclarationsFromPCH drops declarations that come from
// preamble headers from the top-level cursor list.
func WithExcludeDeclarationsFromPCH(exclude bool) IndexOption {
	return func(ix *Index) { ix.excludePCH = exclude }
}

// WithDisplayDiagnostics prints each unit's diagnostics to stderr after
// every parse.
func WithDisplayDiagnostics(display bool) IndexOption {
	return func(ix *Index) { ix.displayDiagnostics = display }
}

// WithPreambleCache sizes the cache of parsed header trees shared by
// units parsed with FlagPrecompiledPreamble.
func WithPreambleCache(capacityBytes int, ttl time.Duration) IndexOption {
	return func(ix *Index) {
		ix.preambleBytes = capacityBytes
		ix.preambleTTL = ttl
	}
}

// NewIndex creates an index.
func NewIndex(opts ...IndexOption) (*Index, error) {
	ix := &Index{
		id:            uuid.New(),
		preambleBytes: defaultPreambleBytes,
		preambleTTL:   defaultPreambleTTL,
		units:         map[*TranslationUnit]struct{}{},
	}
	for _, opt := range opts {
		opt(ix)
	}
	cache, err := syntax.NewCache(ix.preambleBytes, ix.preambleTTL)
	if err != nil {
		return nil, fmt.Errorf("%w: preamble cache: %v", ErrInvalidArgument, err)
	}
	ix.preamble = cache
	return ix, nil
}

// ID identifies the index in logs and the symbol store.
func (ix *Index) ID() uuid.UUID { return ix.id }

// SetGlobalOptions stores thread priority hints. They have no effect.
func (ix *Index) SetGlobalOptions(opts GlobalOptFlags) {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	ix.options = opts
}

func (ix *Index) GlobalOptions() GlobalOptFlags {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	return ix.options
}

// SetInvocationEmissionPath sets the directory receiving the command line
// of a parse that faulted. Empty disables emission.
func (ix *Index) SetInvocationEmissionPath(dir string) {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	ix.invocation = dir
}

// PreambleStats reports the shared header cache.
func (ix *Index) PreambleStats() syntax.CacheStats {
	return ix.preamble.Stats()
}

// Units returns the number of live translation units.
func (ix *Index) Units() int {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	return len(ix.units)
}

func (ix *Index) register(t *TranslationUnit) error {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	if ix.closed {
		return invalidHandle("index disposed")
	}
	ix.units[t] = struct{}{}
	return nil
}

func (ix *Index) unregister(t *TranslationUnit) {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	delete(ix.units, t)
}

func (ix *Index) invocationPath() string {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	return ix.invocation
}

// Parse parses source with clang-style arguments. When source is empty the
// main file is taken from args. Diagnostics never fail a parse.
func (ix *Index) Parse(source string, args []string, unsaved []UnsavedFile, flags TranslationUnitFlags) (*TranslationUnit, error) {
	if ix == nil {
		return nil, invalidHandle("nil index")
	}
	a, err := parseArgs(source, args)
	if err != nil {
		return nil, &ParseError{Code: ErrorInvalidArguments, Source: source, Err: err}
	}
	if a.source == "" {
		return nil, &ParseError{Code: ErrorInvalidArguments, Err: invalidArgument("no input file")}
	}
	if err := a.checkLanguage(); err != nil {
		return nil, &ParseError{Code: ErrorInvalidArguments, Source: a.source, Err: err}
	}
	t := &TranslationUnit{
		index:   ix,
		args:    append([]string(nil), args...),
		cargs:   a,
		flags:   flags,
		unsaved: append([]UnsavedFile(nil), unsaved...),
	}
	u, err := t.build(unsaved, flags)
	if err != nil {
		return nil, err
	}
	if err := ix.register(t); err != nil {
		return nil, err
	}
	t.u = u
	t.gen = 1
	t.display()
	return t, nil
}

// ParseFromSource parses with a detailed preprocessing record, dropping
// driver-only flags such as -c and -o.
func (ix *Index) ParseFromSource(source string, args []string, unsaved []UnsavedFile) (*TranslationUnit, error) {
	var kept []string
	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "-c", "-S", "-E":
			continue
		case "-o":
			i++
			continue
		}
		kept = append(kept, args[i])
	}
	return ix.Parse(source, kept, unsaved, FlagDetailedPreprocessingRecord)
}

// Close disposes every unit of the index.
func (ix *Index) Close() error {
	ix.mu.Lock()
	units := make([]*TranslationUnit, 0, len(ix.units))
	for t := range ix.units {
		units = append(units, t)
	}
	ix.closed = true
	ix.mu.Unlock()
	for _, t := range units {
		t.dispose()
	}
	ix.preamble.Close()
	return nil
}

// display prints diagnostics when the index asks for it.
func (t *TranslationUnit) display() {
	if !t.index.displayDiagnostics || t.u == nil {
		return
	}
	opts := DefaultDiagnosticDisplayOptions()
	for _, d := range t.diagnosticSet(t.gen, t.u.diags) {
		fmt.Fprintln(os.Stderr, d.Format(opts))
	}
}
