package cli

import (
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/mvp-joe/cxgraph/internal/clang"
)

var (
	completePrefix string
	completeMacros bool
	completeBrief  bool
)

var completeCmd = &cobra.Command{
	Use:   "complete FILE LINE COLUMN [-- compiler args]",
	Short: "List code completions at a position",
	Args:  cobra.MinimumNArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		pos, extra := splitArgs(cmd, args)
		if len(pos) != 3 {
			return fmt.Errorf("complete takes FILE LINE COLUMN")
		}
		line, err := strconv.ParseUint(pos[1], 10, 32)
		if err != nil {
			return fmt.Errorf("invalid line %q: %w", pos[1], err)
		}
		col, err := strconv.ParseUint(pos[2], 10, 32)
		if err != nil {
			return fmt.Errorf("invalid column %q: %w", pos[2], err)
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

		tu, err := parseFile(ix, cfg, pos[0], extra)
		if err != nil {
			return err
		}
		defer tu.Close()

		var flags clang.CodeCompleteFlags
		if completeMacros {
			flags |= clang.CompleteIncludeMacros
		}
		if completeBrief {
			flags |= clang.CompleteIncludeBriefComments
		}
		res, err := tu.CodeComplete(pos[0], uint32(line), uint32(col), nil, flags)
		if err != nil {
			return err
		}
		printCompletions(cmd.OutOrStdout(), res, completePrefix)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(completeCmd)
	completeCmd.Flags().StringVar(&completePrefix, "prefix", "", "Only list results starting with this text")
	completeCmd.Flags().BoolVar(&completeMacros, "macros", false, "Include macros")
	completeCmd.Flags().BoolVar(&completeBrief, "brief", false, "Include brief doc comments")
}

func printCompletions(out io.Writer, res *clang.CodeCompleteResults, prefix string) {
	results := res.Results
	if prefix != "" {
		results = res.Filter(prefix)
	}
	for _, r := range results {
		line := fmt.Sprintf("%s: %s (%d)", r.Kind, r.String.String(), r.String.Priority)
		if r.String.BriefComment != "" {
			line += " // " + r.String.BriefComment
		}
		fmt.Fprintln(out, line)
	}
}
