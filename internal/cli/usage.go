package cli

import (
	"fmt"
	"io"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/mvp-joe/cxgraph/internal/clang"
)

var usageCmd = &cobra.Command{
	Use:   "usage FILE [-- compiler args]",
	Short: "Show the target and memory usage of a translation unit",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		files, extra := splitArgs(cmd, args)
		if len(files) != 1 {
			return fmt.Errorf("usage takes exactly one file")
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
		return runUsage(cmd.OutOrStdout(), tu)
	},
}

func init() {
	rootCmd.AddCommand(usageCmd)
}

func runUsage(out io.Writer, tu *clang.TranslationUnit) error {
	target, err := tu.TargetInfo()
	if err != nil {
		return err
	}
	entries, err := tu.ResourceUsage()
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "target: %s (%d-bit pointers)\n\n", target.Triple, target.PointerWidth)

	var total uint64
	data := make([][]string, 0, len(entries)+1)
	for _, e := range entries {
		total += e.Amount
		data = append(data, []string{e.Name(), strconv.FormatUint(e.Amount, 10)})
	}
	data = append(data, []string{"total", strconv.FormatUint(total, 10)})

	table := tablewriter.NewWriter(out)
	table.SetHeader([]string{"KIND", "BYTES"})
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetNoWhiteSpace(true)
	table.SetTablePadding("    ")
	table.AppendBulk(data)
	table.Render()
	return nil
}
