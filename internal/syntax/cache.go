package syntax

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/maypok86/otter"
)

// Cache keeps parsed files keyed by path and content hash. It backs the
// precompiled preamble: headers whose bytes did not change between parses
// reuse the copied syntax tree instead of running the grammar again.
type Cache struct {
	files  otter.Cache[string, *File]
	hits   atomic.Uint64
	misses atomic.Uint64
}

// CacheStats is a snapshot of cache counters.
type CacheStats struct {
	Hits    uint64
	Misses  uint64
	Entries int
}

// NewCache creates a cache bounded by the total source bytes it holds.
func NewCache(capacityBytes int, ttl time.Duration) (*Cache, error) {
	if capacityBytes <= 0 {
		return nil, fmt.Errorf("preamble cache capacity must be positive, got %d", capacityBytes)
	}
	builder := otter.MustBuilder[string, *File](capacityBytes).
		Cost(func(key string, f *File) uint32 {
			return uint32(len(f.Source) + 1)
		})

	var (
		files otter.Cache[string, *File]
		err   error
	)
	if ttl > 0 {
		files, err = builder.WithTTL(ttl).Build()
	} else {
		files, err = builder.Build()
	}
	if err != nil {
		return nil, fmt.Errorf("failed to build preamble cache: %w", err)
	}
	return &Cache{files: files}, nil
}

func cacheKey(path string, source []byte) string {
	sum := sha256.Sum256(source)
	return path + "@" + hex.EncodeToString(sum[:])
}

// Parse returns the cached tree for (path, source) or parses and stores it.
func (c *Cache) Parse(path string, source []byte) (*File, error) {
	key := cacheKey(path, source)
	if f, ok := c.files.Get(key); ok {
		c.hits.Add(1)
		return f, nil
	}
	c.misses.Add(1)

	f, err := Parse(path, source)
	if err != nil {
		return nil, err
	}
	c.files.Set(key, f)
	return f, nil
}

// Stats returns hit/miss counters and the current entry count.
func (c *Cache) Stats() CacheStats {
	return CacheStats{
		Hits:    c.hits.Load(),
		Misses:  c.misses.Load(),
		Entries: c.files.Size(),
	}
}

// Clear drops every cached tree.
func (c *Cache) Clear() {
	c.files.Clear()
}

// Close releases the cache.
func (c *Cache) Close() {
	c.files.Close()
}
