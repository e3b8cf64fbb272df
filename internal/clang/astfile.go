package clang

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/vmihailenco/msgpack/v5"
)

// astSchemaVersion is bumped whenever astPayload changes shape.
const astSchemaVersion uint16 = 1

// astPayload is the on-disk form of a saved unit. The AST is rebuilt from
// the file snapshots on load, so a loaded unit sees exactly the bytes the
// saved one did.
type astPayload struct {
	Schema uint16
	Source string
	Args   []string
	Flags  uint32
	Files  []astFile
}

type astFile struct {
	Name     string
	Contents []byte
	ModTime  int64
	System   bool
}

// Save writes the unit to path. A unit with errors is refused with
// SaveErrorTranslationErrors.
func (t *TranslationUnit) Save(path string, _ SaveTranslationUnitFlags) error {
	u, err := t.live()
	if err != nil {
		return &SaveUnitError{Code: SaveErrorInvalidTU, Err: err}
	}
	for _, d := range u.diags {
		if d.severity >= SeverityError {
			return &SaveUnitError{Code: SaveErrorTranslationErrors, Err: fmt.Errorf("%w: unit has errors", ErrUnsupportedOperation)}
		}
	}
	payload := astPayload{
		Schema: astSchemaVersion,
		Source: unsavedKey(t.cargs.source),
		Args:   t.args,
		Flags:  uint32(t.flags),
	}
	for _, f := range u.files {
		payload.Files = append(payload.Files, astFile{
			Name:     f.key,
			Contents: f.contents,
			ModTime:  f.modTime.Unix(),
			System:   f.system,
		})
	}

	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".ast-*")
	if err != nil {
		return &SaveUnitError{Code: SaveErrorUnknown, Err: err}
	}
	defer os.Remove(tmp.Name())
	if err := msgpack.NewEncoder(tmp).Encode(&payload); err != nil {
		tmp.Close()
		return &SaveUnitError{Code: SaveErrorUnknown, Err: err}
	}
	if err := tmp.Close(); err != nil {
		return &SaveUnitError{Code: SaveErrorUnknown, Err: err}
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return &SaveUnitError{Code: SaveErrorUnknown, Err: err}
	}
	return nil
}

// Load reads a unit written by Save.
func (ix *Index) Load(path string) (*TranslationUnit, error) {
	readErr := func(err error) error {
		return &ParseError{Code: ErrorASTReadError, Source: path, Err: fmt.Errorf("%w: %v", ErrParseFailure, err)}
	}
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, &ParseError{Code: ErrorASTReadError, Source: path, Err: fmt.Errorf("%w: %v", ErrInvalidArgument, err)}
		}
		return nil, readErr(err)
	}
	defer f.Close()

	var payload astPayload
	if err := msgpack.NewDecoder(f).Decode(&payload); err != nil {
		return nil, readErr(err)
	}
	if payload.Schema != astSchemaVersion {
		return nil, readErr(fmt.Errorf("AST file schema %d, want %d", payload.Schema, astSchemaVersion))
	}
	unsaved := make([]UnsavedFile, 0, len(payload.Files))
	for _, sf := range payload.Files {
		unsaved = append(unsaved, UnsavedFile{Filename: sf.Name, Contents: sf.Contents})
	}
	t, err := ix.Parse(payload.Source, payload.Args, unsaved, TranslationUnitFlags(payload.Flags))
	if err != nil {
		var pe *ParseError
		if errors.As(err, &pe) {
			pe.Code = ErrorASTReadError
		}
		return nil, err
	}
	return t, nil
}
