package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/mvp-joe/cxgraph/internal/clang"
)

var tokensAnnotate bool

var tokensCmd = &cobra.Command{
	Use:   "tokens FILE [-- compiler args]",
	Short: "List the tokens of a file",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		files, extra := splitArgs(cmd, args)
		if len(files) != 1 {
			return fmt.Errorf("tokens takes exactly one file")
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
		return runTokens(cmd.OutOrStdout(), tu, tokensAnnotate)
	},
}

func init() {
	rootCmd.AddCommand(tokensCmd)
	tokensCmd.Flags().BoolVar(&tokensAnnotate, "annotate", false, "Print the cursor kind each token belongs to")
}

func runTokens(out io.Writer, tu *clang.TranslationUnit, annotate bool) error {
	main, err := tu.MainFile()
	if err != nil {
		return err
	}
	tokens, err := tu.TokenizeFile(main)
	if err != nil {
		return err
	}
	var cursors []clang.Cursor
	if annotate {
		if cursors, err = tu.AnnotateTokens(tokens); err != nil {
			return err
		}
	}
	for i, tok := range tokens {
		pos, err := tok.Location().Position(clang.LocationExpansion)
		if err != nil {
			return err
		}
		line := fmt.Sprintf("%d:%d\t%s\t%q", pos.Line, pos.Column, tok.Kind(), tok.Spelling())
		if annotate {
			kind, _ := cursors[i].Kind()
			line += "\t" + kind.String()
		}
		fmt.Fprintln(out, line)
	}
	return nil
}
