package cli

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/mvp-joe/cxgraph/internal/storage"
)

var symbolsByName bool

var refsCmd = &cobra.Command{
	Use:   "refs USR",
	Short: "List indexed references to a symbol",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openProjectStore()
		if err != nil {
			return err
		}
		defer store.Close()
		return runRefs(cmd.OutOrStdout(), store, args[0])
	},
}

var defsCmd = &cobra.Command{
	Use:   "defs USR",
	Short: "List indexed definitions and declarations of a symbol",
	Long: `Defs lists where a symbol is defined, then where it is declared.
With --name the argument is a SQL LIKE pattern matched against symbol names
instead of a USR.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openProjectStore()
		if err != nil {
			return err
		}
		defer store.Close()
		if symbolsByName {
			return runSymbolsByName(cmd.OutOrStdout(), store, args[0])
		}
		return runDefs(cmd.OutOrStdout(), store, args[0])
	},
}

func init() {
	rootCmd.AddCommand(refsCmd)
	rootCmd.AddCommand(defsCmd)
	defsCmd.Flags().BoolVar(&symbolsByName, "name", false, "Treat the argument as a name pattern")
}

// openProjectStore opens the configured symbol database, which must
// already exist.
func openProjectStore() (*storage.Store, error) {
	cfg, _, err := loadProjectConfig()
	if err != nil {
		return nil, err
	}
	if _, err := os.Stat(cfg.Index.Database); errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("no symbol database at %s (run cxgraph index first)", cfg.Index.Database)
	}
	return storage.Open(cfg.Index.Database)
}

func runRefs(out io.Writer, store *storage.Store, usr string) error {
	refs, err := store.References(usr)
	if err != nil {
		return err
	}
	for _, r := range refs {
		fmt.Fprintf(out, "%s:%d:%d: %s\n", r.FilePath, r.Line, r.Column, r.Kind)
	}
	return nil
}

func runDefs(out io.Writer, store *storage.Store, usr string) error {
	defs, err := store.Definitions(usr)
	if err != nil {
		return err
	}
	decls, err := store.Declarations(usr)
	if err != nil {
		return err
	}
	for _, s := range defs {
		printSymbol(out, "definition", s)
	}
	for _, s := range decls {
		if s.IsDefinition {
			continue
		}
		printSymbol(out, "declaration", s)
	}
	return nil
}

func runSymbolsByName(out io.Writer, store *storage.Store, pattern string) error {
	syms, err := store.SymbolsByName(pattern)
	if err != nil {
		return err
	}
	for _, s := range syms {
		role := "declaration"
		if s.IsDefinition {
			role = "definition"
		}
		printSymbol(out, role, s)
	}
	return nil
}

func printSymbol(out io.Writer, role string, s *storage.Symbol) {
	fmt.Fprintf(out, "%s:%d:%d: %s %s %s", s.FilePath, s.Line, s.Column, role, s.Kind, s.Name)
	if s.TypeSpelling != "" {
		fmt.Fprintf(out, " '%s'", s.TypeSpelling)
	}
	fmt.Fprintf(out, " [%s]\n", s.USR)
}
