package config

import (
	"errors"
	"fmt"

	"github.com/gobwas/glob"
)

var (
	// ErrUnknownParseFlag indicates a parse flag name clang does not define
	ErrUnknownParseFlag = errors.New("unknown parse flag")

	// ErrInvalidColorMode indicates a color mode other than auto, always or never
	ErrInvalidColorMode = errors.New("invalid color mode")

	// ErrInvalidPattern indicates a glob pattern that does not compile
	ErrInvalidPattern = errors.New("invalid glob pattern")

	// ErrInvalidParallelism indicates a non-positive parallelism
	ErrInvalidParallelism = errors.New("invalid parallelism")

	// ErrEmptyDatabase indicates a missing symbol store path
	ErrEmptyDatabase = errors.New("empty database path")

	// ErrInvalidCacheSettings indicates invalid cache configuration
	ErrInvalidCacheSettings = errors.New("invalid cache settings")

	// ErrInvalidDebounce indicates a negative watch debounce
	ErrInvalidDebounce = errors.New("invalid debounce")
)

// Validate checks that the configuration is valid and complete.
func Validate(cfg *Config) error {
	var errs []error

	if _, err := cfg.ParseFlags(); err != nil {
		errs = append(errs, err)
	}

	switch cfg.Diagnostics.Color {
	case "auto", "always", "never":
	default:
		errs = append(errs, fmt.Errorf("%w: must be 'auto', 'always' or 'never', got '%s'", ErrInvalidColorMode, cfg.Diagnostics.Color))
	}

	if err := validateIndex(&cfg.Index); err != nil {
		errs = append(errs, err)
	}

	if cfg.Watch.DebounceMs < 0 {
		errs = append(errs, fmt.Errorf("%w: debounce_ms cannot be negative, got %d", ErrInvalidDebounce, cfg.Watch.DebounceMs))
	}

	// Zero capacity disables the preamble cache; negative values are invalid
	if cfg.Cache.PreambleMB < 0 {
		errs = append(errs, fmt.Errorf("%w: preamble_mb cannot be negative, got %d", ErrInvalidCacheSettings, cfg.Cache.PreambleMB))
	}
	if cfg.Cache.PreambleTTLSeconds < 0 {
		errs = append(errs, fmt.Errorf("%w: preamble_ttl_seconds cannot be negative, got %d", ErrInvalidCacheSettings, cfg.Cache.PreambleTTLSeconds))
	}

	return joinErrors(errs)
}

func validateIndex(cfg *IndexConfig) error {
	var errs []error

	if cfg.Database == "" {
		errs = append(errs, fmt.Errorf("%w: database is required", ErrEmptyDatabase))
	}
	if cfg.Parallelism <= 0 {
		errs = append(errs, fmt.Errorf("%w: parallelism must be positive, got %d", ErrInvalidParallelism, cfg.Parallelism))
	}
	for _, pattern := range append(append([]string(nil), cfg.Patterns...), cfg.Ignore...) {
		if _, err := glob.Compile(pattern, '/'); err != nil {
			errs = append(errs, fmt.Errorf("%w: %s: %v", ErrInvalidPattern, pattern, err))
		}
	}

	return joinErrors(errs)
}

// joinErrors combines multiple errors into a single error that still
// matches each of them with errors.Is.
func joinErrors(errs []error) error {
	switch len(errs) {
	case 0:
		return nil
	case 1:
		return errs[0]
	}
	return fmt.Errorf("validation failed:\n  - %w", errors.Join(errs...))
}
