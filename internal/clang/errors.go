package clang

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strings"
	"sync/atomic"
)

var (
	// ErrInvalidArgument reports malformed compiler arguments or unreadable paths.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrParseFailure reports that no AST could be produced.
	ErrParseFailure = errors.New("parse failure")
	// ErrInvalidHandle reports use of a null, disposed, suspended or stale handle.
	ErrInvalidHandle = errors.New("invalid handle")
	// ErrUnsupportedOperation reports a query that does not apply to the handle.
	ErrUnsupportedOperation = errors.New("unsupported operation")
	// ErrEngineFault reports an internal failure caught by crash recovery.
	ErrEngineFault = errors.New("engine fault")
)

// ParseError is returned when Parse, Reparse or Load cannot produce a unit.
type ParseError struct {
	Code   ErrorCode
	Source string
	Err    error
}

func (e *ParseError) Error() string {
	if e.Source == "" {
		return fmt.Sprintf("clang: %s: %v", e.Code, e.Err)
	}
	return fmt.Sprintf("clang: %s: %s: %v", e.Code, e.Source, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// LayoutError is returned by SizeOf, AlignOf and OffsetOf.
type LayoutError struct {
	Code TypeLayoutError
	Type string
}

func (e *LayoutError) Error() string {
	return fmt.Sprintf("type layout of '%s': %s", e.Type, e.Code)
}

// Unwrap classifies layout failures as unsupported operations.
func (e *LayoutError) Unwrap() error { return ErrUnsupportedOperation }

// SaveUnitError is returned by TranslationUnit.Save.
type SaveUnitError struct {
	Code SaveError
	Err  error
}

func (e *SaveUnitError) Error() string {
	return fmt.Sprintf("save translation unit: %s: %v", e.Code, e.Err)
}

func (e *SaveUnitError) Unwrap() error { return e.Err }

func invalidHandle(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidHandle, fmt.Sprintf(format, args...))
}

func unsupported(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrUnsupportedOperation, fmt.Sprintf(format, args...))
}

func invalidArgument(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidArgument, fmt.Sprintf(format, args...))
}

var crashRecovery atomic.Bool

func init() {
	crashRecovery.Store(true)
}

// ToggleCrashRecovery enables or disables the process-wide recovery of
// engine panics. When enabled (the default) a panic during parsing becomes a
// ParseError with code crashed wrapping ErrEngineFault.
func ToggleCrashRecovery(enabled bool) {
	crashRecovery.Store(enabled)
}

// CrashRecoveryEnabled reports the current crash recovery setting.
func CrashRecoveryEnabled() bool {
	return crashRecovery.Load()
}

// guard runs fn under crash recovery. invocation, when set, receives the
// failing command line.
func guard(source string, args []string, invocation string, fn func() error) (err error) {
	if !crashRecovery.Load() {
		return fn()
	}
	defer func() {
		r := recover()
		if r == nil {
			return
		}
		log.Printf("Warning: recovered from engine fault while parsing %s: %v", source, r)
		if invocation != "" {
			writeInvocation(invocation, source, args, r)
		}
		err = &ParseError{
			Code:   ErrorCrashed,
			Source: source,
			Err:    fmt.Errorf("%w: %v", ErrEngineFault, r),
		}
	}()
	return fn()
}

func writeInvocation(dir, source string, args []string, cause any) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		log.Printf("Warning: failed to create invocation emission dir %s: %v", dir, err)
		return
	}
	f, err := os.CreateTemp(dir, "invocation-*.txt")
	if err != nil {
		log.Printf("Warning: failed to write invocation file: %v", err)
		return
	}
	defer f.Close()
	fmt.Fprintf(f, "source: %s\nargs: %s\nfault: %v\n", source, strings.Join(args, " "), cause)
}
