package docsearch

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mvp-joe/cxgraph/internal/clang"
)

// Test Plan for doc search:
// - Collect keeps documented declarations only, with brief and location
// - Search matches comment text and highlights the hit
// - Kind and file path filters narrow results
// - Update replaces and deletes docs by USR
// - A cancelled context stops indexing

const documented = `/// Opens a connection to the server.
/// Retries with backoff on timeout.
int connect(const char *host);

int undocumented(void);

/** Closes every open connection. */
void shutdown(void);

/// Maximum retry count.
#define MAX_RETRIES 5
`

func collectDocs(t *testing.T) []*Doc {
	t.Helper()
	dir := t.TempDir()
	ix, err := clang.NewIndex()
	require.NoError(t, err)
	t.Cleanup(func() { _ = ix.Close() })

	main := filepath.Join(dir, "net.c")
	tu, err := ix.Parse(main, nil, []clang.UnsavedFile{{Filename: main, Contents: []byte(documented)}}, clang.FlagDetailedPreprocessingRecord)
	require.NoError(t, err)

	docs, err := Collect(tu)
	require.NoError(t, err)
	return docs
}

func newSearcher(t *testing.T, docs []*Doc) Searcher {
	t.Helper()
	s, err := New(context.Background(), docs)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestCollect(t *testing.T) {
	t.Parallel()

	docs := collectDocs(t)
	names := make(map[string]*Doc)
	for _, d := range docs {
		names[d.Name] = d
	}
	require.Contains(t, names, "connect")
	require.Contains(t, names, "shutdown")
	require.Contains(t, names, "MAX_RETRIES")
	assert.NotContains(t, names, "undocumented")

	connect := names["connect"]
	assert.Equal(t, "c:@F@connect", connect.USR)
	assert.Equal(t, "function_decl", connect.Kind)
	assert.Equal(t, 3, connect.Line)
	assert.Equal(t, "Opens a connection to the server. Retries with backoff on timeout.", connect.Text)
}

func TestSearch_Text(t *testing.T) {
	t.Parallel()

	s := newSearcher(t, collectDocs(t))

	results, err := s.Search(context.Background(), "backoff", nil)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "connect", results[0].Doc.Name)
	assert.Equal(t, 3, results[0].Doc.Line)
	require.NotEmpty(t, results[0].Highlights)
	assert.Contains(t, results[0].Highlights[0], "<mark>backoff</mark>")

	results, err = s.Search(context.Background(), "connection", nil)
	require.NoError(t, err)
	assert.Len(t, results, 2)
}

func TestSearch_Filters(t *testing.T) {
	t.Parallel()

	s := newSearcher(t, collectDocs(t))

	results, err := s.Search(context.Background(), "connection", &Options{Kind: "function_decl", Limit: 5})
	require.NoError(t, err)
	assert.Len(t, results, 2)

	results, err = s.Search(context.Background(), "retry", &Options{Kind: "macro_definition"})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "MAX_RETRIES", results[0].Doc.Name)

	results, err = s.Search(context.Background(), "connection", &Options{FilePath: "*/other.c"})
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestSearch_Update(t *testing.T) {
	t.Parallel()

	s := newSearcher(t, []*Doc{
		{USR: "c:@F@a", Name: "a", Kind: "function_decl", Text: "parses the header"},
		{USR: "c:@F@b", Name: "b", Kind: "function_decl", Text: "writes the footer"},
	})
	ctx := context.Background()

	err := s.Update(ctx, []*Doc{{USR: "c:@F@a", Name: "a", Kind: "function_decl", Text: "validates the checksum"}}, []string{"c:@F@b"})
	require.NoError(t, err)

	count, err := s.Count()
	require.NoError(t, err)
	assert.Equal(t, uint64(1), count)

	results, err := s.Search(ctx, "header", nil)
	require.NoError(t, err)
	assert.Empty(t, results)

	results, err = s.Search(ctx, "checksum", nil)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "c:@F@a", results[0].Doc.USR)
}

func TestNew_Cancelled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New(ctx, []*Doc{{USR: "c:@x", Text: "x"}})
	assert.ErrorIs(t, err, context.Canceled)
}
