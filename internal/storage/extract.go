package storage

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mvp-joe/cxgraph/internal/clang"
)

// ExtractUnit flattens a parsed translation unit into store rows:
// every declaration with a USR becomes a Symbol, every reference to one
// becomes a Reference, and the inclusion stack becomes include edges.
func ExtractUnit(tu *clang.TranslationUnit) (*Unit, error) {
	source, err := tu.Spelling()
	if err != nil {
		return nil, err
	}
	diags, err := tu.Diagnostics()
	if err != nil {
		return nil, err
	}
	root, err := tu.Cursor()
	if err != nil {
		return nil, err
	}

	u := &Unit{
		ID:         uuid.New(),
		Source:     source,
		Args:       tu.Arguments(),
		ErrorCount: diags.Errors(),
		IndexedAt:  time.Now(),
	}

	var walkErr error
	err = root.Walk(func(c clang.Cursor) bool {
		if walkErr != nil {
			return false
		}
		kind, err := c.Kind()
		if err != nil {
			walkErr = err
			return false
		}
		switch {
		case kind.IsDeclaration() || kind == clang.CursorMacroDefinition:
			sym, err := extractSymbol(c, kind)
			if err != nil {
				walkErr = err
				return false
			}
			if sym != nil {
				u.Symbols = append(u.Symbols, sym)
			}
		case kind.IsReference() || kind == clang.CursorDeclRefExpr ||
			kind == clang.CursorMemberRefExpr || kind == clang.CursorMacroExpansion:
			ref, err := extractReference(c, kind)
			if err != nil {
				walkErr = err
				return false
			}
			if ref != nil {
				u.Refs = append(u.Refs, ref)
			}
		}
		return true
	})
	if err == nil {
		err = walkErr
	}
	if err != nil {
		return nil, fmt.Errorf("failed to walk %s: %w", source, err)
	}

	err = tu.Inclusions(func(f clang.File, stack []clang.SourceLocation) {
		if len(stack) == 0 || err != nil {
			return
		}
		included, ferr := f.Name()
		if ferr != nil {
			err = ferr
			return
		}
		pos, perr := stack[0].Position(clang.LocationExpansion)
		if perr != nil {
			err = perr
			return
		}
		u.Includes = append(u.Includes, Include{Includer: pos.Filename, Included: included})
	})
	if err != nil {
		return nil, fmt.Errorf("failed to read inclusions of %s: %w", source, err)
	}

	return u, nil
}

func extractSymbol(c clang.Cursor, kind clang.CursorKind) (*Symbol, error) {
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
	isDef, err := c.IsDefinition()
	if err != nil {
		return nil, err
	}
	sym := &Symbol{
		USR:          usr,
		Name:         name,
		Kind:         kind.String(),
		FilePath:     pos.Filename,
		Line:         int(pos.Line),
		Column:       int(pos.Column),
		IsDefinition: isDef,
	}
	if kind == clang.CursorMacroDefinition {
		// Macros are their own definition and have no type
		sym.IsDefinition = true
		return sym, nil
	}

	linkage, err := c.Linkage()
	if err != nil {
		return nil, err
	}
	sym.Linkage = linkage.String()
	if typ, err := c.Type(); err == nil {
		sym.TypeSpelling, _ = typ.Spelling()
	}
	sym.Brief, err = c.BriefComment()
	if err != nil {
		return nil, err
	}
	return sym, nil
}

func extractReference(c clang.Cursor, kind clang.CursorKind) (*Reference, error) {
	target, err := c.Referenced()
	if err != nil || target.IsNull() {
		return nil, err
	}
	usr, err := target.USR()
	if err != nil || usr == "" {
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
	return &Reference{
		USR:      usr,
		Kind:     kind.String(),
		FilePath: pos.Filename,
		Line:     int(pos.Line),
		Column:   int(pos.Column),
	}, nil
}
