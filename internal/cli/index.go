package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/mvp-joe/cxgraph/internal/indexer"
	"github.com/mvp-joe/cxgraph/internal/storage"
)

var quietFlag bool

// indexCmd represents the index command
var indexCmd = &cobra.Command{
	Use:   "index [PATTERN...]",
	Short: "Index C sources into the symbol database",
	Long: `Index parses every C source of the project and records its declarations,
references and include edges in a sqlite database, so that refs and defs can
answer questions across translation units.

Sources are selected by the index.patterns globs of the configuration unless
patterns are given on the command line. Parses run concurrently.

Examples:
  # Index the current directory
  cxgraph index

  # Index only the sources under src/
  cxgraph index 'src/**/*.c'
`,
	RunE: func(cmd *cobra.Command, args []string) error {
		// Set up context with cancellation for Ctrl+C
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
		defer signal.Stop(sigChan)
		go func() {
			select {
			case <-sigChan:
				fmt.Fprintln(cmd.ErrOrStderr(), "\nInterrupted! Cancelling indexing...")
				cancel()
			case <-ctx.Done():
			}
		}()

		cfg, rootDir, err := loadProjectConfig()
		if err != nil {
			return err
		}
		if len(args) > 0 {
			cfg.Index.Patterns = args
		}
		indexerConfig, err := cfg.ToIndexerConfig(rootDir)
		if err != nil {
			return err
		}

		_, err = runIndex(ctx, indexerConfig, cfg.Index.Database, NewCLIProgressReporter(cmd.OutOrStdout(), quietFlag))
		return err
	},
}

func init() {
	rootCmd.AddCommand(indexCmd)
	indexCmd.Flags().BoolVarP(&quietFlag, "quiet", "q", false, "Disable progress bars and non-error output")
}

func runIndex(ctx context.Context, cfg indexer.Config, dbPath string, progress indexer.ProgressReporter) (*indexer.Stats, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}
	store, err := storage.Open(dbPath)
	if err != nil {
		return nil, err
	}
	defer store.Close()

	return indexer.New(cfg, store, progress).Index(ctx)
}
