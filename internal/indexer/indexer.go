package indexer

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/mvp-joe/cxgraph/internal/clang"
	"github.com/mvp-joe/cxgraph/internal/storage"
)

// Config holds what an indexing run needs from the project configuration.
type Config struct {
	RootDir      string
	Patterns     []string
	Ignore       []string
	Parallelism  int
	Args         []string
	Flags        clang.TranslationUnitFlags
	IndexOptions []clang.IndexOption
}

// Indexer parses C sources concurrently and writes their symbols,
// references and include edges to a Store.
type Indexer struct {
	cfg      Config
	store    *storage.Store
	progress ProgressReporter

	// sqlite takes one writer at a time
	writeMu sync.Mutex
}

// New creates an indexer. A nil progress reporter reports nothing.
func New(cfg Config, store *storage.Store, progress ProgressReporter) *Indexer {
	if cfg.Parallelism < 1 {
		cfg.Parallelism = 1
	}
	if progress == nil {
		progress = &NoOpProgressReporter{}
	}
	return &Indexer{cfg: cfg, store: store, progress: progress}
}

// Index discovers every source under the root directory and indexes it.
func (ix *Indexer) Index(ctx context.Context) (*Stats, error) {
	discovery, err := NewFileDiscovery(ix.cfg.RootDir, ix.cfg.Patterns, ix.cfg.Ignore)
	if err != nil {
		return nil, fmt.Errorf("invalid index pattern: %w", err)
	}
	files, err := discovery.DiscoverFiles()
	if err != nil {
		return nil, fmt.Errorf("failed to discover files: %w", err)
	}
	return ix.IndexFiles(ctx, files)
}

// IndexFiles indexes the given sources. A source that fails to parse is
// logged and counted as failed; the run continues.
func (ix *Indexer) IndexFiles(ctx context.Context, files []string) (*Stats, error) {
	start := time.Now()
	ix.progress.OnDiscoveryComplete(len(files))

	// One clang.Index per worker keeps preamble caches from being shared
	// across goroutines.
	pool := make(chan *clang.Index, ix.cfg.Parallelism)
	for i := 0; i < ix.cfg.Parallelism; i++ {
		cx, err := clang.NewIndex(ix.cfg.IndexOptions...)
		if err != nil {
			close(pool)
			for c := range pool {
				c.Close()
			}
			return nil, err
		}
		pool <- cx
	}
	defer func() {
		close(pool)
		for c := range pool {
			c.Close()
		}
	}()

	var (
		statsMu sync.Mutex
		stats   = &Stats{}
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(ix.cfg.Parallelism)
	for _, file := range files {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			cx := <-pool
			defer func() { pool <- cx }()

			unit, err := ix.indexFile(cx, file)
			statsMu.Lock()
			defer statsMu.Unlock()
			if err != nil {
				if errors.Is(err, context.Canceled) {
					return err
				}
				log.Printf("Warning: failed to index %s: %v", file, err)
				stats.Failed++
			} else {
				stats.Files++
				stats.Symbols += len(unit.Symbols)
				stats.References += len(unit.Refs)
				stats.Errors += unit.ErrorCount
			}
			ix.progress.OnFileProcessed(file)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	stats.Duration = time.Since(start)
	ix.progress.OnComplete(stats)
	return stats, nil
}

func (ix *Indexer) indexFile(cx *clang.Index, file string) (*storage.Unit, error) {
	tu, err := cx.Parse(file, ix.cfg.Args, nil, ix.cfg.Flags)
	if err != nil {
		return nil, err
	}
	defer tu.Close()

	unit, err := storage.ExtractUnit(tu)
	if err != nil {
		return nil, err
	}

	ix.writeMu.Lock()
	defer ix.writeMu.Unlock()
	if err := ix.store.WriteUnit(unit); err != nil {
		return nil, err
	}
	return unit, nil
}
