package cli

import (
	"fmt"
	"io"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/mvp-joe/cxgraph/internal/storage"
)

// Set via -ldflags "-X github.com/mvp-joe/cxgraph/internal/cli.Version=...".
var (
	Version   = "dev"
	GitCommit = "none"
	BuildDate = "unknown"
)

var versionShort bool

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the cxgraph build and index schema versions",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runVersion(cmd.OutOrStdout(), versionShort)
	},
}

func init() {
	versionCmd.Flags().BoolVar(&versionShort, "short", false, "print only the version string")
	rootCmd.AddCommand(versionCmd)
}

// runVersion prints the release, the build it came from, and the store
// schema an index written by this binary carries.
func runVersion(out io.Writer, short bool) error {
	if short {
		_, err := fmt.Fprintln(out, Version)
		return err
	}
	_, err := fmt.Fprintf(out, "cxgraph %s (commit %s, built %s)\n  go:           %s %s/%s\n  index schema: %s\n",
		Version, GitCommit, BuildDate,
		runtime.Version(), runtime.GOOS, runtime.GOARCH,
		storage.SchemaVersion)
	return err
}
