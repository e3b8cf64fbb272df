package clang

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test Plan for crash recovery:
// - A panic under guard becomes a crashed ParseError wrapping ErrEngineFault
// - The failing command line is written to the invocation directory
// - Ordinary errors pass through unchanged

func TestGuard_RecoversPanic(t *testing.T) {
	t.Parallel()
	require.True(t, CrashRecoveryEnabled())

	dir := filepath.Join(t.TempDir(), "invocations")
	err := guard("main.c", []string{"-DX=1"}, dir, func() error {
		panic("lowering blew up")
	})

	var pe *ParseError
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, ErrorCrashed, pe.Code)
	assert.Equal(t, "main.c", pe.Source)
	assert.ErrorIs(t, err, ErrEngineFault)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	data, err := os.ReadFile(filepath.Join(dir, entries[0].Name()))
	require.NoError(t, err)
	assert.Equal(t, "source: main.c\nargs: -DX=1\nfault: lowering blew up\n", string(data))
}

func TestGuard_PassesErrors(t *testing.T) {
	t.Parallel()

	want := errors.New("boom")
	assert.Same(t, want, guard("main.c", nil, "", func() error { return want }))
	assert.NoError(t, guard("main.c", nil, "", func() error { return nil }))
}
