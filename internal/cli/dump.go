package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/gobwas/glob"
	"github.com/spf13/cobra"

	"github.com/mvp-joe/cxgraph/internal/clang"
)

var (
	dumpMatch string
	dumpTypes bool
)

var dumpCmd = &cobra.Command{
	Use:   "dump FILE [-- compiler args]",
	Short: "Print the cursor tree of a translation unit",
	Long: `Dump parses FILE and prints every cursor of the main file as an indented
tree: kind, spelling and location, optionally followed by the type.

Examples:
  # Whole tree
  cxgraph dump main.c

  # Only cursors whose spelling matches a glob, with their types
  cxgraph dump main.c --match 'list_*' --types

  # Extra compiler arguments
  cxgraph dump main.c -- -DDEBUG -Iinclude
`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		files, extra := splitArgs(cmd, args)
		if len(files) != 1 {
			return fmt.Errorf("dump takes exactly one file")
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

		tu, err := parseFile(ix, cfg, files[0], extra)
		if err != nil {
			return err
		}
		defer tu.Close()
		return runDump(cmd.OutOrStdout(), tu, dumpMatch, dumpTypes)
	},
}

func init() {
	rootCmd.AddCommand(dumpCmd)
	dumpCmd.Flags().StringVar(&dumpMatch, "match", "", "Only print cursors whose spelling matches this glob")
	dumpCmd.Flags().BoolVar(&dumpTypes, "types", false, "Print the type of each cursor")
}

// runDump prints the cursors of tu located in its main file. With a match
// pattern the tree is flattened to the matching cursors.
func runDump(out io.Writer, tu *clang.TranslationUnit, match string, types bool) error {
	var g glob.Glob
	if match != "" {
		var err error
		if g, err = glob.Compile(match); err != nil {
			return fmt.Errorf("invalid --match pattern %q: %w", match, err)
		}
	}

	root, err := tu.Cursor()
	if err != nil {
		return err
	}
	name, _ := tu.Spelling()
	fmt.Fprintf(out, "translation_unit %s\n", name)

	var printErr error
	var visit func(c clang.Cursor, depth int) clang.ChildVisitResult
	visit = func(c clang.Cursor, depth int) clang.ChildVisitResult {
		loc, err := c.Location()
		if err != nil {
			printErr = err
			return clang.ChildVisitBreak
		}
		if inMain, _ := loc.IsFromMainFile(); !inMain {
			return clang.ChildVisitContinue
		}

		spelling, _ := c.Spelling()
		if g == nil || g.Match(spelling) {
			indent := depth
			if g != nil {
				indent = 0
			}
			if err := printCursor(out, c, indent, types); err != nil {
				printErr = err
				return clang.ChildVisitBreak
			}
		}

		if _, err := c.VisitChildren(func(ch, _ clang.Cursor) clang.ChildVisitResult {
			return visit(ch, depth+1)
		}); err != nil {
			printErr = err
			return clang.ChildVisitBreak
		}
		if printErr != nil {
			return clang.ChildVisitBreak
		}
		return clang.ChildVisitContinue
	}

	if _, err := root.VisitChildren(func(c, _ clang.Cursor) clang.ChildVisitResult {
		return visit(c, 1)
	}); err != nil {
		return err
	}
	return printErr
}

func printCursor(out io.Writer, c clang.Cursor, depth int, types bool) error {
	kind, err := c.Kind()
	if err != nil {
		return err
	}
	spelling, _ := c.Spelling()
	loc, _ := c.Location()
	pos, err := loc.Position(clang.LocationExpansion)
	if err != nil {
		return err
	}

	var sb strings.Builder
	sb.WriteString(strings.Repeat("  ", depth))
	sb.WriteString(kind.String())
	if spelling != "" {
		fmt.Fprintf(&sb, " %s", spelling)
	}
	fmt.Fprintf(&sb, " <%d:%d>", pos.Line, pos.Column)
	if types {
		if typ, err := c.Type(); err == nil {
			if s, _ := typ.Spelling(); s != "" {
				fmt.Fprintf(&sb, " '%s'", s)
			}
		}
	}
	_, err = fmt.Fprintln(out, sb.String())
	return err
}
