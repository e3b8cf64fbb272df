package docsearch

import (
	"strings"

	"github.com/mvp-joe/cxgraph/internal/clang"
)

// Doc is the documentation of one declaration, keyed by USR.
type Doc struct {
	USR      string `json:"usr"`
	Name     string `json:"name"`
	Kind     string `json:"kind"`
	FilePath string `json:"file_path"`
	Line     int    `json:"line"`
	Brief    string `json:"brief"`
	Text     string `json:"text"`
}

func (d *Doc) fields() map[string]interface{} {
	return map[string]interface{}{
		"usr":       d.USR,
		"name":      d.Name,
		"kind":      d.Kind,
		"file_path": d.FilePath,
		"line":      d.Line,
		"brief":     d.Brief,
		"text":      d.Text,
	}
}

func docFromFields(fields map[string]interface{}) *Doc {
	d := &Doc{}
	d.USR, _ = fields["usr"].(string)
	d.Name, _ = fields["name"].(string)
	d.Kind, _ = fields["kind"].(string)
	d.FilePath, _ = fields["file_path"].(string)
	d.Brief, _ = fields["brief"].(string)
	d.Text, _ = fields["text"].(string)
	// Bleve stores numbers as float64
	if line, ok := fields["line"].(float64); ok {
		d.Line = int(line)
	}
	return d
}

// Collect returns the documented declarations of a unit. A USR seen more
// than once keeps its first documented declaration.
func Collect(tu *clang.TranslationUnit) ([]*Doc, error) {
	root, err := tu.Cursor()
	if err != nil {
		return nil, err
	}

	var (
		docs    []*Doc
		seen    = make(map[string]bool)
		walkErr error
	)
	err = root.Walk(func(c clang.Cursor) bool {
		doc, err := collectOne(c)
		if err != nil {
			walkErr = err
			return false
		}
		if doc != nil && !seen[doc.USR] {
			seen[doc.USR] = true
			docs = append(docs, doc)
		}
		return walkErr == nil
	})
	if err == nil {
		err = walkErr
	}
	return docs, err
}

func collectOne(c clang.Cursor) (*Doc, error) {
	kind, err := c.Kind()
	if err != nil {
		return nil, err
	}
	if !kind.IsDeclaration() && kind != clang.CursorMacroDefinition {
		return nil, nil
	}
	parsed, err := c.ParsedComment()
	if err != nil || parsed == nil {
		return nil, err
	}
	text := strings.Join(strings.Fields(parsed.PlainText()), " ")
	if text == "" {
		return nil, nil
	}
	usr, err := c.USR()
	if err != nil || usr == "" {
		return nil, err
	}

	name, err := c.Spelling()
	if err != nil {
		return nil, err
	}
	loc, err := c.Location()
	if err != nil {
		return nil, err
	}
	pos, err := loc.Position(clang.LocationExpansion)
	if err != nil {
		return nil, err
	}
	brief, err := c.BriefComment()
	if err != nil {
		return nil, err
	}
	return &Doc{
		USR:      usr,
		Name:     name,
		Kind:     kind.String(),
		FilePath: pos.Filename,
		Line:     int(pos.Line),
		Brief:    brief,
		Text:     text,
	}, nil
}
