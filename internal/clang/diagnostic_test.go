package clang

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test Plan for diagnostics:
// - A missing semicolon yields one error with an insertion fix-it
// - Undeclared identifiers are errors located at the use
// - Warning groups honor -w, -Wno-<group> and -Werror
// - Diagnostics are ordered by location and formatted like clang

func diagnostics(t *testing.T, src string, args ...string) DiagnosticSet {
	t.Helper()
	diags, err := parseSource(t, src, args...).Diagnostics()
	require.NoError(t, err)
	return diags
}

func TestDiagnostics_MissingSemicolon(t *testing.T) {
	t.Parallel()

	diags := diagnostics(t, "int x = 1\n")
	require.Len(t, diags, 1)

	d := diags[0]
	assert.Equal(t, SeverityError, d.Severity())
	assert.Equal(t, "expected ';' after top level declarator", d.Spelling())

	pos, err := d.Location().Position(LocationExpansion)
	require.NoError(t, err)
	assert.Equal(t, uint32(1), pos.Line)
	assert.Equal(t, uint32(10), pos.Column)

	fixits := d.FixIts()
	require.Len(t, fixits, 1)
	assert.True(t, fixits[0].IsInsertion())
	assert.Equal(t, ";", fixits[0].Replacement)
}

func TestDiagnostics_UndeclaredIdentifier(t *testing.T) {
	t.Parallel()

	diags := diagnostics(t, "int f(void) {\n  return missing;\n}\n")
	require.Equal(t, 1, diags.Errors())
	assert.Equal(t, "use of undeclared identifier 'missing'", diags[0].Spelling())

	pos, err := diags[0].Location().Position(LocationExpansion)
	require.NoError(t, err)
	assert.Equal(t, uint32(2), pos.Line)
	assert.Equal(t, uint32(10), pos.Column)
}

func TestDiagnostics_WarningGroups(t *testing.T) {
	t.Parallel()

	const src = "int f(void) { return 1 / 0; }\n"
	tests := []struct {
		name     string
		args     []string
		count    int
		severity DiagnosticSeverity
		option   string
	}{
		{"default", nil, 1, SeverityWarning, "-Wdivision-by-zero"},
		{"suppressed", []string{"-w"}, 0, 0, ""},
		{"disabled", []string{"-Wno-division-by-zero"}, 0, 0, ""},
		{"werror", []string{"-Werror"}, 1, SeverityError, "-Werror,-Wdivision-by-zero"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			diags := diagnostics(t, src, tt.args...)
			require.Len(t, diags, tt.count)
			if tt.count == 0 {
				return
			}
			assert.Equal(t, "division by zero is undefined", diags[0].Spelling())
			assert.Equal(t, tt.severity, diags[0].Severity())
			enable, disable := diags[0].Option()
			assert.Equal(t, tt.option, enable)
			assert.Equal(t, "-Wno-division-by-zero", disable)
		})
	}
}

func TestDiagnostics_OrderAndFormat(t *testing.T) {
	t.Parallel()

	diags := diagnostics(t, "int a = b;\nint c = d;\n")
	require.Len(t, diags, 2)

	var lines []uint32
	for _, d := range diags {
		pos, err := d.Location().Position(LocationExpansion)
		require.NoError(t, err)
		lines = append(lines, pos.Line)
	}
	assert.Equal(t, []uint32{1, 2}, lines)

	text := diags[0].Format(DisplaySourceLocation | DisplayColumn)
	assert.True(t, strings.HasSuffix(text, "main.c:1:9: error: use of undeclared identifier 'b'"), text)
}
