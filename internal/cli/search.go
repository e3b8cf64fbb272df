package cli

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/mvp-joe/cxgraph/internal/docsearch"
)

var (
	searchLimit int
	searchKind  string
	searchPath  string
)

var searchCmd = &cobra.Command{
	Use:   "search QUERY FILE... [-- compiler args]",
	Short: "Full-text search over the doc comments of translation units",
	Long: `Search parses each FILE, collects the documented declarations and macros
of the units and runs QUERY against their doc comments and names.

QUERY uses bleve query string syntax, e.g. "retry +connect" or "name:push".`,
	Args: cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		pos, extra := splitArgs(cmd, args)
		if len(pos) < 2 {
			return fmt.Errorf("search takes QUERY and at least one FILE")
		}
		cfg, _, err := loadProjectConfig()
		if err != nil {
			return err
		}
		ix, err := newIndex(cfg)
		if err != nil {
			return err
		}
		defer ix.Close()

		var docs []*docsearch.Doc
		for _, file := range pos[1:] {
			tu, err := parseFile(ix, cfg, file, extra)
			if err != nil {
				return err
			}
			collected, err := docsearch.Collect(tu)
			tu.Close()
			if err != nil {
				return err
			}
			docs = append(docs, collected...)
		}

		opts := &docsearch.Options{Limit: searchLimit, Kind: searchKind, FilePath: searchPath}
		return runSearch(cmd.Context(), cmd.OutOrStdout(), docs, pos[0], opts)
	},
}

func init() {
	rootCmd.AddCommand(searchCmd)
	searchCmd.Flags().IntVar(&searchLimit, "limit", 15, "Maximum number of results")
	searchCmd.Flags().StringVar(&searchKind, "kind", "", "Only match this cursor kind (e.g. function_decl)")
	searchCmd.Flags().StringVar(&searchPath, "path", "", "Only match declarations in files matching this wildcard")
}

func runSearch(ctx context.Context, out io.Writer, docs []*docsearch.Doc, query string, opts *docsearch.Options) error {
	if ctx == nil {
		ctx = context.Background()
	}
	searcher, err := docsearch.New(ctx, docs)
	if err != nil {
		return err
	}
	defer searcher.Close()

	results, err := searcher.Search(ctx, query, opts)
	if err != nil {
		return err
	}
	for _, r := range results {
		d := r.Doc
		fmt.Fprintf(out, "%s:%d: %s %s (%.2f)\n", d.FilePath, d.Line, d.Kind, d.Name, r.Score)
		for _, h := range r.Highlights {
			fmt.Fprintf(out, "    %s\n", renderHighlight(h))
		}
	}
	return nil
}

var markColor = color.New(color.Bold, color.FgYellow)

// renderHighlight replaces bleve's <mark> tags with terminal emphasis.
func renderHighlight(h string) string {
	var sb strings.Builder
	for {
		start := strings.Index(h, "<mark>")
		if start < 0 {
			break
		}
		end := strings.Index(h[start:], "</mark>")
		if end < 0 {
			break
		}
		end += start
		sb.WriteString(h[:start])
		sb.WriteString(markColor.Sprint(h[start+len("<mark>") : end]))
		h = h[end+len("</mark>"):]
	}
	sb.WriteString(h)
	return sb.String()
}
