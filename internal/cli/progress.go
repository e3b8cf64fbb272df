package cli

import (
	"fmt"
	"io"
	"time"

	"github.com/schollz/progressbar/v3"

	"github.com/mvp-joe/cxgraph/internal/indexer"
)

// CLIProgressReporter implements indexer.ProgressReporter with a progress bar.
type CLIProgressReporter struct {
	out     io.Writer
	quiet   bool
	fileBar *progressbar.ProgressBar
}

// NewCLIProgressReporter creates a new CLI progress reporter.
func NewCLIProgressReporter(out io.Writer, quiet bool) *CLIProgressReporter {
	return &CLIProgressReporter{out: out, quiet: quiet}
}

func (c *CLIProgressReporter) OnDiscoveryComplete(files int) {
	if c.quiet {
		return
	}
	fmt.Fprintf(c.out, "Indexing %d source files\n", files)
	c.fileBar = progressbar.NewOptions(files,
		progressbar.OptionSetWriter(c.out),
		progressbar.OptionSetDescription("Parsing"),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowCount(),
		progressbar.OptionShowIts(),
		progressbar.OptionSetItsString("files/s"),
		progressbar.OptionThrottle(65*time.Millisecond),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionOnCompletion(func() {
			fmt.Fprintln(c.out)
		}),
	)
}

func (c *CLIProgressReporter) OnFileProcessed(fileName string) {
	if c.quiet || c.fileBar == nil {
		return
	}
	c.fileBar.Add(1)
}

func (c *CLIProgressReporter) OnComplete(stats *indexer.Stats) {
	if c.quiet {
		return
	}
	if c.fileBar != nil {
		c.fileBar.Finish()
		c.fileBar = nil
	}
	fmt.Fprintf(c.out, "✓ Indexed %d files in %.1fs\n", stats.Files, stats.Duration.Seconds())
	fmt.Fprintf(c.out, "  Symbols:    %d\n", stats.Symbols)
	fmt.Fprintf(c.out, "  References: %d\n", stats.References)
	if stats.Errors > 0 {
		fmt.Fprintf(c.out, "  Errors:     %d\n", stats.Errors)
	}
	if stats.Failed > 0 {
		fmt.Fprintf(c.out, "  Failed:     %d\n", stats.Failed)
	}
}
