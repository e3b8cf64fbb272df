package cli

import (
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/mvp-joe/cxgraph/internal/clang"
	"github.com/mvp-joe/cxgraph/internal/config"
)

var diagCmd = &cobra.Command{
	Use:   "diag FILE [-- compiler args]",
	Short: "Print the diagnostics of a translation unit",
	Long: `Diag parses FILE and prints its diagnostics the way clang does, with notes
and fix-its indented below their diagnostic. Display options and colors come
from the diagnostics section of the configuration.

Exits with status 1 when any error or fatal diagnostic was reported.
`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		files, extra := splitArgs(cmd, args)
		cfg, _, err := loadProjectConfig()
		if err != nil {
			return err
		}
		ix, err := newIndex(cfg)
		if err != nil {
			return err
		}
		defer ix.Close()

		setColorMode(cfg.Diagnostics.Color)

		failed := false
		for _, file := range files {
			tu, err := parseFile(ix, cfg, file, extra)
			if err != nil {
				return err
			}
			errs, err := runDiag(cmd.OutOrStdout(), tu, cfg)
			if err != nil {
				return err
			}
			failed = failed || errs > 0
			tu.Close()
		}
		if failed {
			return errDiagnosticsFound
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(diagCmd)
}

// setColorMode applies "always", "never" or "auto" to fatih/color.
// Auto keeps the library's terminal detection.
func setColorMode(mode string) {
	switch mode {
	case "always":
		color.NoColor = false
	case "never":
		color.NoColor = true
	}
}

var severityColors = map[clang.DiagnosticSeverity]*color.Color{
	clang.SeverityNote:    color.New(color.FgCyan),
	clang.SeverityWarning: color.New(color.FgMagenta, color.Bold),
	clang.SeverityError:   color.New(color.FgRed, color.Bold),
	clang.SeverityFatal:   color.New(color.FgRed, color.Bold),
}

// runDiag prints the diagnostics of tu and returns how many are errors.
func runDiag(out io.Writer, tu *clang.TranslationUnit, cfg *config.Config) (int, error) {
	diags, err := tu.Diagnostics()
	if err != nil {
		return 0, err
	}
	opts := cfg.DisplayOptions()
	for _, d := range diags {
		printDiagnostic(out, d, opts, 0)
	}
	if n := len(diags); n > 0 {
		fmt.Fprintf(out, "%d diagnostic(s), %d error(s)\n", n, diags.Errors())
	}
	return diags.Errors(), nil
}

func printDiagnostic(out io.Writer, d clang.Diagnostic, opts clang.DiagnosticDisplayOptions, depth int) {
	indent := ""
	for i := 0; i < depth; i++ {
		indent += "  "
	}
	text := d.Format(opts)
	if c, ok := severityColors[d.Severity()]; ok {
		text = c.Sprint(text)
	}
	fmt.Fprintf(out, "%s%s\n", indent, text)

	for _, f := range d.FixIts() {
		begin, err := f.Range.Begin().Position(clang.LocationExpansion)
		if err != nil {
			continue
		}
		verb := "replace with"
		switch {
		case f.IsInsertion():
			verb = "insert"
		case f.IsRemoval():
			verb = "remove"
		}
		fmt.Fprintf(out, "%s  fix-it: %s %q at %d:%d\n", indent, verb, f.Replacement, begin.Line, begin.Column)
	}
	for _, child := range d.Children() {
		printDiagnostic(out, child, opts, depth+1)
	}
}
