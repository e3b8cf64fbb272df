// Package docsearch is a full-text index over the documentation comments
// of C declarations.
package docsearch

import (
	"context"
	"fmt"
	"sync"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/mapping"
	"github.com/blevesearch/bleve/v2/search/query"
)

// Searcher defines the interface for doc comment search.
type Searcher interface {
	// Search executes a query in bleve query string syntax.
	// Supports field scoping, boolean operators, phrase search, wildcards, and fuzzy matching.
	// Options parameter may be nil (defaults will be applied).
	Search(ctx context.Context, queryStr string, options *Options) ([]*Result, error)

	// Update indexes added docs, replacing any with the same USR, and
	// removes the deleted USRs.
	Update(ctx context.Context, added []*Doc, deleted []string) error

	// Count returns the number of indexed docs.
	Count() (uint64, error)

	// Close releases resources held by the searcher.
	Close() error
}

// Options narrows a search.
type Options struct {
	Limit    int    // 1..100, default 15
	Kind     string // cursor kind name, exact match
	FilePath string // wildcard pattern on the declaring file
}

// DefaultOptions returns the options used when Search gets nil.
func DefaultOptions() *Options {
	return &Options{Limit: 15}
}

// Result is a single hit with highlighted snippets.
type Result struct {
	Doc        *Doc     `json:"doc"`
	Score      float64  `json:"score"`
	Highlights []string `json:"highlights"` // Matching snippets with <mark> tags
}

type searcher struct {
	index bleve.Index
	mu    sync.RWMutex // Protects index during updates
}

// New creates a Searcher backed by an in-memory bleve index holding docs.
func New(ctx context.Context, docs []*Doc) (Searcher, error) {
	index, err := bleve.NewMemOnly(buildMapping())
	if err != nil {
		return nil, fmt.Errorf("failed to create bleve index: %w", err)
	}

	if err := indexDocs(ctx, index, docs); err != nil {
		index.Close()
		return nil, fmt.Errorf("failed to index docs: %w", err)
	}

	return &searcher{index: index}, nil
}

// buildMapping creates the index mapping for doc documents.
func buildMapping() *mapping.IndexMappingImpl {
	indexMapping := bleve.NewIndexMapping()

	// Comment text (primary search target)
	textMapping := bleve.NewTextFieldMapping()
	textMapping.Analyzer = "standard"
	textMapping.Store = true
	textMapping.Index = true
	textMapping.IncludeTermVectors = true // Enable phrase search

	// Declaration name, searchable as words
	nameMapping := bleve.NewTextFieldMapping()
	nameMapping.Analyzer = "standard"
	nameMapping.Store = true
	nameMapping.Index = true

	// Filters match exactly
	keywordMapping := bleve.NewTextFieldMapping()
	keywordMapping.Analyzer = "keyword"
	keywordMapping.Store = true
	keywordMapping.Index = true

	// Stored only
	storedMapping := bleve.NewTextFieldMapping()
	storedMapping.Analyzer = "keyword"
	storedMapping.Store = true
	storedMapping.Index = false

	lineMapping := bleve.NewNumericFieldMapping()
	lineMapping.Store = true
	lineMapping.Index = false

	docMapping := bleve.NewDocumentMapping()
	docMapping.AddFieldMappingsAt("usr", storedMapping)
	docMapping.AddFieldMappingsAt("brief", storedMapping)
	docMapping.AddFieldMappingsAt("text", textMapping)
	docMapping.AddFieldMappingsAt("name", nameMapping)
	docMapping.AddFieldMappingsAt("kind", keywordMapping)
	docMapping.AddFieldMappingsAt("file_path", keywordMapping)
	docMapping.AddFieldMappingsAt("line", lineMapping)

	indexMapping.DefaultMapping = docMapping
	indexMapping.DefaultField = "text"
	return indexMapping
}

// indexDocs adds docs to the bleve index in batches.
func indexDocs(ctx context.Context, index bleve.Index, docs []*Doc) error {
	const batchSize = 1000

	batch := index.NewBatch()
	for i, doc := range docs {
		if i%batchSize == 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}
		}

		if err := batch.Index(doc.USR, doc.fields()); err != nil {
			return fmt.Errorf("failed to add doc %s to batch: %w", doc.USR, err)
		}

		if batch.Size() >= batchSize {
			if err := index.Batch(batch); err != nil {
				return fmt.Errorf("failed to execute batch: %w", err)
			}
			batch = index.NewBatch()
		}
	}

	if batch.Size() > 0 {
		if err := index.Batch(batch); err != nil {
			return fmt.Errorf("failed to execute final batch: %w", err)
		}
	}
	return nil
}

var storedFields = []string{"usr", "name", "kind", "file_path", "line", "brief", "text"}

// Search executes a query using bleve QueryStringQuery syntax.
func (s *searcher) Search(ctx context.Context, queryStr string, options *Options) ([]*Result, error) {
	if options == nil {
		options = DefaultOptions()
	}

	limit := options.Limit
	if limit <= 0 || limit > 100 {
		limit = 15
	}

	queries := []query.Query{bleve.NewQueryStringQuery(queryStr)}
	if options.Kind != "" {
		kindQuery := bleve.NewTermQuery(options.Kind)
		kindQuery.SetField("kind")
		queries = append(queries, kindQuery)
	}
	if options.FilePath != "" {
		pathQuery := bleve.NewWildcardQuery(options.FilePath)
		pathQuery.SetField("file_path")
		queries = append(queries, pathQuery)
	}

	var finalQuery query.Query = queries[0]
	if len(queries) > 1 {
		finalQuery = bleve.NewConjunctionQuery(queries...)
	}

	request := bleve.NewSearchRequestOptions(finalQuery, limit, 0, false)
	highlightStyle := "html"
	request.Highlight = bleve.NewHighlightWithStyle(highlightStyle)
	request.Highlight.Fields = []string{"text"}
	request.Fields = storedFields

	s.mu.RLock()
	defer s.mu.RUnlock()

	result, err := s.index.SearchInContext(ctx, request)
	if err != nil {
		return nil, fmt.Errorf("bleve search failed: %w", err)
	}

	results := make([]*Result, 0, len(result.Hits))
	for _, hit := range result.Hits {
		results = append(results, &Result{
			Doc:        docFromFields(hit.Fields),
			Score:      hit.Score,
			Highlights: extractHighlights(hit.Fragments),
		})
	}
	return results, nil
}

// extractHighlights flattens bleve fragments, keeping at most 3.
func extractHighlights(fragments map[string][]string) []string {
	var highlights []string
	for _, snippets := range fragments {
		highlights = append(highlights, snippets...)
	}
	if len(highlights) > 3 {
		highlights = highlights[:3]
	}
	return highlights
}

// Update applies incremental changes to the index in one batch.
func (s *searcher) Update(ctx context.Context, added []*Doc, deleted []string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	batch := s.index.NewBatch()
	for _, usr := range deleted {
		batch.Delete(usr)
	}
	for _, doc := range added {
		if err := batch.Index(doc.USR, doc.fields()); err != nil {
			return fmt.Errorf("failed to add doc %s to batch: %w", doc.USR, err)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.index.Batch(batch); err != nil {
		return fmt.Errorf("failed to execute batch: %w", err)
	}
	return nil
}

func (s *searcher) Count() (uint64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.index.DocCount()
}

// Close releases resources held by the searcher.
func (s *searcher) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.index != nil {
		return s.index.Close()
	}
	return nil
}
