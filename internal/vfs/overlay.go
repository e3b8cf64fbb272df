// Package vfs implements the virtual file overlay descriptor and the
// framework module map descriptor consumed by the clang engine.
//
// An Overlay maps absolute virtual paths onto absolute real paths. Write
// renders it in the YAML dialect clang accepts for -ivfsoverlay; Load reads
// such a file back so the engine can resolve includes through it.
package vfs

import (
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

var (
	// ErrInvalidPath is returned for relative or unclean mapping paths.
	ErrInvalidPath = errors.New("invalid overlay path")
	// ErrMalformed is returned when an overlay file cannot be decoded.
	ErrMalformed = errors.New("malformed overlay")
)

// Mapping is one virtual→real file entry.
type Mapping struct {
	Virtual string
	Real    string
}

// Overlay is an in-memory virtual file overlay.
type Overlay struct {
	mappings      map[string]string
	caseSensitive *bool
}

// NewOverlay creates an empty overlay.
func NewOverlay() *Overlay {
	return &Overlay{mappings: make(map[string]string)}
}

func checkAbs(kind, p string) error {
	if p == "" || !path.IsAbs(filepath.ToSlash(p)) {
		return fmt.Errorf("%w: %s path %q is not absolute", ErrInvalidPath, kind, p)
	}
	if filepath.Clean(p) != p {
		return fmt.Errorf("%w: %s path %q is not canonical", ErrInvalidPath, kind, p)
	}
	return nil
}

// Map adds a virtual→real mapping. Both paths must be absolute and clean.
func (o *Overlay) Map(virtual, real string) error {
	if err := checkAbs("virtual", virtual); err != nil {
		return err
	}
	if err := checkAbs("real", real); err != nil {
		return err
	}
	o.mappings[virtual] = real
	return nil
}

// SetCaseSensitive records the case sensitivity written to the overlay.
func (o *Overlay) SetCaseSensitive(sensitive bool) {
	o.caseSensitive = &sensitive
}

// CaseSensitive reports the effective case sensitivity (true when unset).
func (o *Overlay) CaseSensitive() bool {
	return o.caseSensitive == nil || *o.caseSensitive
}

// Mappings returns the mappings sorted by virtual path.
func (o *Overlay) Mappings() []Mapping {
	out := make([]Mapping, 0, len(o.mappings))
	for v, r := range o.mappings {
		out = append(out, Mapping{Virtual: v, Real: r})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Virtual < out[j].Virtual })
	return out
}

// Len returns the number of mappings.
func (o *Overlay) Len() int { return len(o.mappings) }

// Resolve maps a virtual path to its real path.
func (o *Overlay) Resolve(p string) (string, bool) {
	p = filepath.Clean(p)
	if r, ok := o.mappings[p]; ok {
		return r, true
	}
	if o.CaseSensitive() {
		return "", false
	}
	for v, r := range o.mappings {
		if strings.EqualFold(v, p) {
			return r, true
		}
	}
	return "", false
}

func quote(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `"`, `\"`)
	return `"` + r.Replace(s) + `"`
}

// Write renders the overlay as a clang VFS overlay document. Files are
// grouped under one directory entry per parent directory.
func (o *Overlay) Write() string {
	type dir struct {
		name  string
		files []Mapping
	}
	var dirs []*dir
	byName := make(map[string]*dir)
	for _, m := range o.Mappings() {
		d := filepath.Dir(m.Virtual)
		entry, ok := byName[d]
		if !ok {
			entry = &dir{name: d}
			byName[d] = entry
			dirs = append(dirs, entry)
		}
		entry.files = append(entry.files, m)
	}

	var sb strings.Builder
	sb.WriteString("{\n  'version': 0,\n")
	if o.caseSensitive != nil {
		fmt.Fprintf(&sb, "  'case-sensitive': '%t',\n", *o.caseSensitive)
	}
	sb.WriteString("  'roots': [\n")
	for i, d := range dirs {
		sb.WriteString("    {\n      'type': 'directory',\n")
		fmt.Fprintf(&sb, "      'name': %s,\n", quote(d.name))
		sb.WriteString("      'contents': [\n")
		for j, f := range d.files {
			sb.WriteString("        {\n          'type': 'file',\n")
			fmt.Fprintf(&sb, "          'name': %s,\n", quote(filepath.Base(f.Virtual)))
			fmt.Fprintf(&sb, "          'external-contents': %s\n", quote(f.Real))
			sb.WriteString("        }")
			if j < len(d.files)-1 {
				sb.WriteByte(',')
			}
			sb.WriteByte('\n')
		}
		sb.WriteString("      ]\n    }")
		if i < len(dirs)-1 {
			sb.WriteByte(',')
		}
		sb.WriteByte('\n')
	}
	sb.WriteString("  ]\n}\n")
	return sb.String()
}

type overlayDoc struct {
	Version       int            `yaml:"version"`
	CaseSensitive string         `yaml:"case-sensitive"`
	Roots         []overlayEntry `yaml:"roots"`
}

type overlayEntry struct {
	Type             string         `yaml:"type"`
	Name             string         `yaml:"name"`
	Contents         []overlayEntry `yaml:"contents"`
	ExternalContents string         `yaml:"external-contents"`
}

// Parse decodes an overlay document produced by Write or by clang tooling.
func Parse(data []byte) (*Overlay, error) {
	var doc overlayDoc
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if doc.Version != 0 {
		return nil, fmt.Errorf("%w: unsupported version %d", ErrMalformed, doc.Version)
	}

	o := NewOverlay()
	switch strings.ToLower(doc.CaseSensitive) {
	case "":
	case "true":
		o.SetCaseSensitive(true)
	case "false":
		o.SetCaseSensitive(false)
	default:
		return nil, fmt.Errorf("%w: case-sensitive must be true or false, got %q", ErrMalformed, doc.CaseSensitive)
	}

	var walk func(prefix string, entries []overlayEntry) error
	walk = func(prefix string, entries []overlayEntry) error {
		for _, e := range entries {
			name := e.Name
			if prefix != "" && !filepath.IsAbs(name) {
				name = filepath.Join(prefix, name)
			}
			switch e.Type {
			case "directory":
				if err := walk(name, e.Contents); err != nil {
					return err
				}
			case "file":
				if err := o.Map(filepath.Clean(name), filepath.Clean(e.ExternalContents)); err != nil {
					return err
				}
			default:
				return fmt.Errorf("%w: unknown entry type %q", ErrMalformed, e.Type)
			}
		}
		return nil
	}
	if err := walk("", doc.Roots); err != nil {
		return nil, err
	}
	return o, nil
}

// Load reads and decodes an overlay file from disk.
func Load(filename string) (*Overlay, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read overlay %s: %w", filename, err)
	}
	return Parse(data)
}
