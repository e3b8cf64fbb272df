package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/mvp-joe/cxgraph/internal/clang"
	"github.com/mvp-joe/cxgraph/internal/config"
	"github.com/mvp-joe/cxgraph/internal/watcher"
)

var watchCmd = &cobra.Command{
	Use:   "watch FILE... [-- compiler args]",
	Short: "Reparse translation units when their files change",
	Long: `Watch parses each FILE, prints its diagnostics, then watches the project
directory. Whenever a unit's main file or any header it includes changes, the
unit is reparsed and its diagnostics are printed again.

Stop with Ctrl+C.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer cancel()

		files, extra := splitArgs(cmd, args)
		cfg, rootDir, err := loadProjectConfig()
		if err != nil {
			return err
		}
		ix, err := newIndex(cfg)
		if err != nil {
			return err
		}
		defer ix.Close()
		setColorMode(cfg.Diagnostics.Color)

		out := cmd.OutOrStdout()
		var units []*clang.TranslationUnit
		for _, file := range files {
			tu, err := parseFile(ix, cfg, file, extra)
			if err != nil {
				return err
			}
			if _, err := runDiag(out, tu, cfg); err != nil {
				return err
			}
			units = append(units, tu)
		}

		fw, err := watcher.NewFileWatcher([]string{rootDir}, watcher.Options{
			Ignore:   cfg.Index.Ignore,
			Debounce: cfg.Debounce(),
		})
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "Watching %s for changes...\n", rootDir)
		return watcher.NewReparser(fw, units, reparseReporter(out, cfg)).Run(ctx)
	},
}

func init() {
	rootCmd.AddCommand(watchCmd)
}

// reparseReporter prints the diagnostics of each reparsed unit.
func reparseReporter(out io.Writer, cfg *config.Config) watcher.ReparseHandler {
	opts := cfg.DisplayOptions()
	return func(tu *clang.TranslationUnit, diags clang.DiagnosticSet, err error) {
		name, _ := tu.Spelling()
		if err != nil {
			fmt.Fprintf(out, "%s: reparse failed: %v\n", name, err)
			return
		}
		fmt.Fprintf(out, "%s: reparsed, %d error(s)\n", name, diags.Errors())
		for _, d := range diags {
			printDiagnostic(out, d, opts, 0)
		}
	}
}
