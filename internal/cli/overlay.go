package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mvp-joe/cxgraph/internal/vfs"
)

var (
	overlayCaseInsensitive bool
	overlayOutput          string
)

var overlayCmd = &cobra.Command{
	Use:   "overlay VIRTUAL=REAL...",
	Short: "Write a virtual file system overlay",
	Long: `Overlay writes an overlay file mapping virtual paths to real ones. Pass it
to a parse with -ivfsoverlay to make the virtual paths resolvable.

Relative paths are made absolute against the working directory.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		if overlayOutput != "" {
			f, err := os.Create(overlayOutput)
			if err != nil {
				return err
			}
			defer f.Close()
			out = f
		}
		return runOverlay(out, args, !overlayCaseInsensitive)
	},
}

var moduleMapCmd = &cobra.Command{
	Use:   "modulemap NAME UMBRELLA_HEADER",
	Short: "Write a framework module map",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runModuleMap(cmd.OutOrStdout(), args[0], args[1])
	},
}

func init() {
	rootCmd.AddCommand(overlayCmd)
	rootCmd.AddCommand(moduleMapCmd)
	overlayCmd.Flags().BoolVar(&overlayCaseInsensitive, "case-insensitive", false, "Match virtual paths case-insensitively")
	overlayCmd.Flags().StringVarP(&overlayOutput, "output", "o", "", "Write the overlay to a file instead of stdout")
}

func runOverlay(out io.Writer, mappings []string, caseSensitive bool) error {
	o := vfs.NewOverlay()
	o.SetCaseSensitive(caseSensitive)
	for _, m := range mappings {
		virtual, real, ok := strings.Cut(m, "=")
		if !ok {
			return fmt.Errorf("invalid mapping %q, want VIRTUAL=REAL", m)
		}
		virtual, err := filepath.Abs(virtual)
		if err != nil {
			return err
		}
		real, err = filepath.Abs(real)
		if err != nil {
			return err
		}
		if err := o.Map(virtual, real); err != nil {
			return err
		}
	}
	_, err := io.WriteString(out, o.Write())
	return err
}

func runModuleMap(out io.Writer, name, header string) error {
	m := vfs.NewModuleMap()
	if err := m.SetFrameworkModuleName(name); err != nil {
		return err
	}
	if err := m.SetUmbrellaHeader(header); err != nil {
		return err
	}
	text, err := m.Write()
	if err != nil {
		return err
	}
	_, err = io.WriteString(out, text)
	return err
}
