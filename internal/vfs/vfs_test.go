package vfs

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test Plan for vfs:
// - Map rejects relative and unclean paths
// - Write renders clang's overlay layout grouped by directory
// - Write emits case-sensitive only when set
// - Parse(Write(o)) restores the same mappings and sensitivity
// - Resolve honors case sensitivity
// - ModuleMap renders the framework module text and rejects empty input

func TestOverlay_MapValidation(t *testing.T) {
	t.Parallel()

	o := NewOverlay()
	assert.ErrorIs(t, o.Map("inc/a.h", "/real/a.h"), ErrInvalidPath)
	assert.ErrorIs(t, o.Map("/inc/a.h", "real/a.h"), ErrInvalidPath)
	assert.ErrorIs(t, o.Map("/inc/../a.h", "/real/a.h"), ErrInvalidPath)
	assert.NoError(t, o.Map("/inc/a.h", "/real/a.h"))
	assert.Equal(t, 1, o.Len())
}

func TestOverlay_Write(t *testing.T) {
	t.Parallel()

	o := NewOverlay()
	require.NoError(t, o.Map("/virtual/inc/b.h", "/real/b.h"))
	require.NoError(t, o.Map("/virtual/inc/a.h", "/real/a.h"))

	want := `{
  'version': 0,
  'roots': [
    {
      'type': 'directory',
      'name': "/virtual/inc",
      'contents': [
        {
          'type': 'file',
          'name': "a.h",
          'external-contents': "/real/a.h"
        },
        {
          'type': 'file',
          'name': "b.h",
          'external-contents': "/real/b.h"
        }
      ]
    }
  ]
}
`
	assert.Equal(t, want, o.Write())
}

func TestOverlay_WriteCaseSensitivity(t *testing.T) {
	t.Parallel()

	o := NewOverlay()
	o.SetCaseSensitive(false)
	assert.Contains(t, o.Write(), "'case-sensitive': 'false',")
	assert.Equal(t, "{\n  'version': 0,\n  'case-sensitive': 'false',\n  'roots': [\n  ]\n}\n", o.Write())
}

func TestOverlay_ParseRoundTrip(t *testing.T) {
	t.Parallel()

	o := NewOverlay()
	require.NoError(t, o.Map("/v/one/a.h", "/r/a.h"))
	require.NoError(t, o.Map("/v/two/b.h", "/r/b.h"))
	o.SetCaseSensitive(false)

	back, err := Parse([]byte(o.Write()))
	require.NoError(t, err)
	assert.Equal(t, o.Mappings(), back.Mappings())
	assert.False(t, back.CaseSensitive())
}

func TestOverlay_ParseRejectsGarbage(t *testing.T) {
	t.Parallel()

	_, err := Parse([]byte("{'version': 0, 'roots': [{'type': 'symlink', 'name': '/x'}]}"))
	assert.ErrorIs(t, err, ErrMalformed)

	_, err = Parse([]byte("{'version': 3}"))
	assert.ErrorIs(t, err, ErrMalformed)
}

func TestOverlay_Resolve(t *testing.T) {
	t.Parallel()

	o := NewOverlay()
	require.NoError(t, o.Map("/v/Inc.h", "/r/inc.h"))

	_, ok := o.Resolve("/v/inc.h")
	assert.False(t, ok)

	o.SetCaseSensitive(false)
	real, ok := o.Resolve("/v/inc.h")
	require.True(t, ok)
	assert.Equal(t, "/r/inc.h", real)
}

func TestLoad(t *testing.T) {
	t.Parallel()

	o := NewOverlay()
	require.NoError(t, o.Map("/v/a.h", "/r/a.h"))
	file := filepath.Join(t.TempDir(), "overlay.yaml")
	require.NoError(t, os.WriteFile(file, []byte(o.Write()), 0644))

	back, err := Load(file)
	require.NoError(t, err)
	real, ok := back.Resolve("/v/a.h")
	require.True(t, ok)
	assert.Equal(t, "/r/a.h", real)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestModuleMap_Write(t *testing.T) {
	t.Parallel()

	m := NewModuleMap()
	_, err := m.Write()
	assert.ErrorIs(t, err, ErrIncompleteModuleMap)

	require.NoError(t, m.SetFrameworkModuleName("TestFrame"))
	require.NoError(t, m.SetUmbrellaHeader("TestFrame.h"))
	assert.Error(t, m.SetUmbrellaHeader(" "))

	text, err := m.Write()
	require.NoError(t, err)
	assert.Equal(t, "framework module TestFrame {\n  umbrella header \"TestFrame.h\"\n\n  export *\n  module * { export * }\n}\n", text)
}
