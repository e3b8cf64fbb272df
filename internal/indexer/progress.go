package indexer

import "time"

// ProgressReporter provides callbacks for reporting indexing progress.
// Implementations can display progress bars, log messages, or remain silent.
type ProgressReporter interface {
	// OnDiscoveryComplete is called with the number of sources found.
	OnDiscoveryComplete(files int)

	// OnFileProcessed is called after each source is parsed and stored.
	// It may be called from several goroutines.
	OnFileProcessed(fileName string)

	// OnComplete is called when indexing completes successfully.
	OnComplete(stats *Stats)
}

// NoOpProgressReporter is a progress reporter that does nothing.
// Used when progress reporting is disabled (e.g., --quiet flag).
type NoOpProgressReporter struct{}

func (n *NoOpProgressReporter) OnDiscoveryComplete(files int)   {}
func (n *NoOpProgressReporter) OnFileProcessed(fileName string) {}
func (n *NoOpProgressReporter) OnComplete(stats *Stats)         {}

// Stats summarizes one indexing run.
type Stats struct {
	Files      int
	Failed     int
	Symbols    int
	References int
	Errors     int // error diagnostics across all units
	Duration   time.Duration
}
