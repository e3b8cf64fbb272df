package cli

import (
	"context"
	"errors"
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/mvp-joe/cxgraph/internal/mcp"
	"github.com/mvp-joe/cxgraph/internal/storage"
)

// mcpCmd represents the mcp command
var mcpCmd = &cobra.Command{
	Use:   "mcp [FILE...]",
	Short: "Start the MCP server over stdio",
	Long: `Start the Model Context Protocol server, exposing diagnostics, cursor
lookup, outlines, code completion and doc comment search as tools.

Files named on the command line are parsed up front so their doc comments
are searchable immediately. When the symbol database exists, the
cxgraph_symbols tool answers cross-unit definition and reference queries.

Logs go to stderr; stdout carries the protocol.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		// stdout belongs to the protocol
		log.SetOutput(os.Stderr)

		cfg, _, err := loadProjectConfig()
		if err != nil {
			return err
		}

		var store *storage.Store
		if _, err := os.Stat(cfg.Index.Database); err == nil {
			store, err = storage.Open(cfg.Index.Database)
			if err != nil {
				return err
			}
			defer store.Close()
		} else if !errors.Is(err, os.ErrNotExist) {
			return err
		} else if verbose {
			log.Printf("No symbol database at %s, cxgraph_symbols disabled", cfg.Index.Database)
		}

		ctx := context.Background()
		srv, err := mcp.NewServer(ctx, cfg, store, Version)
		if err != nil {
			return err
		}
		defer srv.Close()

		srv.Preload(ctx, args)
		return srv.Serve(ctx)
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}
