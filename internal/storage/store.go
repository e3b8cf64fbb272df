package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
)

// ErrUnitNotFound is returned when no unit was indexed from a source.
var ErrUnitNotFound = errors.New("unit not found")

const argSeparator = "\x00"

// Store is the cross-unit symbol database. Writes replace a unit's rows
// atomically, so readers never see a half-indexed unit.
type Store struct {
	db *sql.DB
}

// Open opens or creates a symbol store. ":memory:" gives a private
// in-memory store.
func Open(dbPath string) (*Store, error) {
	// _foreign_keys applies the pragma to every pooled connection
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if dbPath == ":memory:" {
		// Each pooled connection would otherwise see its own empty database
		db.SetMaxOpenConns(1)
	}

	// Enable foreign keys (required for cascading deletes)
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	version, err := GetSchemaVersion(db)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to check schema version: %w", err)
	}
	switch version {
	case "0":
		if err := CreateSchema(db); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to create schema: %w", err)
		}
	case SchemaVersion:
	default:
		db.Close()
		return nil, fmt.Errorf("unsupported schema version %s (want %s)", version, SchemaVersion)
	}

	return &Store{db: db}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// WriteUnit replaces every row previously stored for u.Source with u.
// A zero ID is assigned a new uuid.
func (s *Store) WriteUnit(u *Unit) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	if u.IndexedAt.IsZero() {
		u.IndexedAt = time.Now()
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback() // Safe to call even after commit

	// Cascades to symbols, refs and includes
	if _, err := sq.Delete("units").Where(sq.Eq{"source": u.Source}).RunWith(tx).Exec(); err != nil {
		return fmt.Errorf("failed to delete previous unit %s: %w", u.Source, err)
	}

	_, err = sq.Insert("units").
		Columns("unit_id", "source", "args", "error_count", "indexed_at").
		Values(u.ID.String(), u.Source, strings.Join(u.Args, argSeparator), u.ErrorCount, u.IndexedAt.UTC().Format(time.RFC3339)).
		RunWith(tx).
		Exec()
	if err != nil {
		return fmt.Errorf("failed to insert unit %s: %w", u.Source, err)
	}

	for _, sym := range u.Symbols {
		_, err := sq.Insert("symbols").
			Options("OR IGNORE").
			Columns("unit_id", "usr", "name", "kind", "file_path", "line", "col", "is_definition", "linkage", "type_spelling", "brief").
			Values(u.ID.String(), sym.USR, sym.Name, sym.Kind, sym.FilePath, sym.Line, sym.Column, sym.IsDefinition, sym.Linkage, sym.TypeSpelling, sym.Brief).
			RunWith(tx).
			Exec()
		if err != nil {
			return fmt.Errorf("failed to insert symbol %s: %w", sym.USR, err)
		}
	}

	for _, ref := range u.Refs {
		_, err := sq.Insert("refs").
			Options("OR IGNORE").
			Columns("unit_id", "usr", "kind", "file_path", "line", "col").
			Values(u.ID.String(), ref.USR, ref.Kind, ref.FilePath, ref.Line, ref.Column).
			RunWith(tx).
			Exec()
		if err != nil {
			return fmt.Errorf("failed to insert reference to %s: %w", ref.USR, err)
		}
	}

	for _, inc := range u.Includes {
		_, err := sq.Insert("includes").
			Options("OR IGNORE").
			Columns("unit_id", "includer", "included").
			Values(u.ID.String(), inc.Includer, inc.Included).
			RunWith(tx).
			Exec()
		if err != nil {
			return fmt.Errorf("failed to insert include %s: %w", inc.Included, err)
		}
	}

	if _, err := sq.Update("store_metadata").
		Set("value", u.IndexedAt.UTC().Format(time.RFC3339)).
		Set("updated_at", time.Now().UTC().Format(time.RFC3339)).
		Where(sq.Eq{"key": "last_indexed"}).
		RunWith(tx).
		Exec(); err != nil {
		return fmt.Errorf("failed to update last_indexed: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// DeleteUnit removes a unit and all its rows.
func (s *Store) DeleteUnit(source string) error {
	res, err := sq.Delete("units").Where(sq.Eq{"source": source}).RunWith(s.db).Exec()
	if err != nil {
		return fmt.Errorf("failed to delete unit %s: %w", source, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: %s", ErrUnitNotFound, source)
	}
	return nil
}

// Units lists the stored units ordered by source.
func (s *Store) Units() ([]*UnitInfo, error) {
	rows, err := sq.Select("u.unit_id", "u.source", "u.args", "u.error_count", "u.indexed_at", "COUNT(s.usr)").
		From("units u").
		LeftJoin("symbols s ON s.unit_id = u.unit_id").
		GroupBy("u.unit_id").
		OrderBy("u.source").
		RunWith(s.db).
		Query()
	if err != nil {
		return nil, fmt.Errorf("failed to query units: %w", err)
	}
	defer rows.Close()

	var units []*UnitInfo
	for rows.Next() {
		var (
			info            UnitInfo
			id, args, stamp string
		)
		if err := rows.Scan(&id, &info.Source, &args, &info.ErrorCount, &stamp, &info.SymbolCount); err != nil {
			return nil, fmt.Errorf("failed to scan unit: %w", err)
		}
		if info.ID, err = uuid.Parse(id); err != nil {
			return nil, fmt.Errorf("unit %s has a malformed id: %w", info.Source, err)
		}
		if args != "" {
			info.Args = strings.Split(args, argSeparator)
		}
		info.IndexedAt, _ = time.Parse(time.RFC3339, stamp)
		units = append(units, &info)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating units: %w", err)
	}
	return units, nil
}

// LastIndexed returns when a unit was last written; zero for a fresh store.
func (s *Store) LastIndexed() (time.Time, error) {
	var stamp string
	err := sq.Select("value").From("store_metadata").Where(sq.Eq{"key": "last_indexed"}).RunWith(s.db).QueryRow().Scan(&stamp)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to query last_indexed: %w", err)
	}
	if stamp == "" {
		return time.Time{}, nil
	}
	return time.Parse(time.RFC3339, stamp)
}

var symbolColumns = []string{"usr", "name", "kind", "file_path", "line", "col", "is_definition", "linkage", "type_spelling", "brief"}

// querySymbols runs a symbol query, collapsing the copies every unit
// including the same header stores.
func (s *Store) querySymbols(where sq.Sqlizer) ([]*Symbol, error) {
	rows, err := sq.Select(symbolColumns...).
		Distinct().
		From("symbols").
		Where(where).
		OrderBy("file_path", "line", "col").
		RunWith(s.db).
		Query()
	if err != nil {
		return nil, fmt.Errorf("failed to query symbols: %w", err)
	}
	defer rows.Close()

	var out []*Symbol
	for rows.Next() {
		var sym Symbol
		if err := rows.Scan(&sym.USR, &sym.Name, &sym.Kind, &sym.FilePath, &sym.Line, &sym.Column, &sym.IsDefinition, &sym.Linkage, &sym.TypeSpelling, &sym.Brief); err != nil {
			return nil, fmt.Errorf("failed to scan symbol: %w", err)
		}
		out = append(out, &sym)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating symbols: %w", err)
	}
	return out, nil
}

// Definitions returns the defining declarations of a USR.
func (s *Store) Definitions(usr string) ([]*Symbol, error) {
	return s.querySymbols(sq.Eq{"usr": usr, "is_definition": true})
}

// Declarations returns every declaration of a USR, definitions included.
func (s *Store) Declarations(usr string) ([]*Symbol, error) {
	return s.querySymbols(sq.Eq{"usr": usr})
}

// SymbolsByName returns declarations whose name matches a SQL LIKE pattern.
func (s *Store) SymbolsByName(pattern string) ([]*Symbol, error) {
	return s.querySymbols(sq.Like{"name": pattern})
}

// SymbolsInFile returns the declarations located in a file.
func (s *Store) SymbolsInFile(path string) ([]*Symbol, error) {
	return s.querySymbols(sq.Eq{"file_path": path})
}

// References returns the uses of a USR across all units.
func (s *Store) References(usr string) ([]*Reference, error) {
	rows, err := sq.Select("usr", "kind", "file_path", "line", "col").
		Distinct().
		From("refs").
		Where(sq.Eq{"usr": usr}).
		OrderBy("file_path", "line", "col").
		RunWith(s.db).
		Query()
	if err != nil {
		return nil, fmt.Errorf("failed to query references: %w", err)
	}
	defer rows.Close()

	var out []*Reference
	for rows.Next() {
		var ref Reference
		if err := rows.Scan(&ref.USR, &ref.Kind, &ref.FilePath, &ref.Line, &ref.Column); err != nil {
			return nil, fmt.Errorf("failed to scan reference: %w", err)
		}
		out = append(out, &ref)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating references: %w", err)
	}
	return out, nil
}

// Includers returns the sources of units that include path, directly or
// through other headers.
func (s *Store) Includers(path string) ([]string, error) {
	rows, err := sq.Select("u.source").
		Distinct().
		From("includes i").
		Join("units u ON u.unit_id = i.unit_id").
		Where(sq.Eq{"i.included": path}).
		OrderBy("u.source").
		RunWith(s.db).
		Query()
	if err != nil {
		return nil, fmt.Errorf("failed to query includers: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var source string
		if err := rows.Scan(&source); err != nil {
			return nil, fmt.Errorf("failed to scan includer: %w", err)
		}
		out = append(out, source)
	}
	return out, rows.Err()
}
