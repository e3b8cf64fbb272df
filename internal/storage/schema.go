package storage

import (
	"database/sql"
	"fmt"
	"time"
)

// SchemaVersion is written to store_metadata when a database is created.
const SchemaVersion = "1"

// CreateSchema creates all tables and indexes of the symbol store.
// Uses a transaction so schema creation succeeds or fails as a whole.
//
// Schema includes:
//   - units: one row per indexed translation unit
//   - symbols: declarations with their USR and location
//   - refs: references to USRs
//   - includes: the include edges each unit saw
//   - store_metadata: schema version and bookkeeping
//
// Must be called with SQLite PRAGMA foreign_keys = ON.
func CreateSchema(db *sql.DB) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin schema transaction: %w", err)
	}
	defer tx.Rollback() // Safe to call even after commit

	tables := []struct {
		name string
		ddl  string
	}{
		{"units", createUnitsTable},
		{"symbols", createSymbolsTable},
		{"refs", createRefsTable},
		{"includes", createIncludesTable},
		{"store_metadata", createStoreMetadataTable},
	}
	for _, table := range tables {
		if _, err := tx.Exec(table.ddl); err != nil {
			return fmt.Errorf("failed to create %s table: %w", table.name, err)
		}
	}

	for i, idx := range getAllIndexes() {
		if _, err := tx.Exec(idx); err != nil {
			return fmt.Errorf("failed to create index %d: %w", i+1, err)
		}
	}

	now := time.Now().UTC().Format(time.RFC3339)
	if _, err := tx.Exec(
		`INSERT INTO store_metadata (key, value, updated_at) VALUES ('schema_version', ?, ?), ('last_indexed', '', ?)`,
		SchemaVersion, now, now,
	); err != nil {
		return fmt.Errorf("failed to bootstrap store_metadata: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit schema transaction: %w", err)
	}
	return nil
}

// GetSchemaVersion retrieves the schema version from store_metadata.
// Returns "0" if the table doesn't exist (new database).
func GetSchemaVersion(db *sql.DB) (string, error) {
	var tableExists int
	err := db.QueryRow("SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='store_metadata'").Scan(&tableExists)
	if err != nil {
		return "", fmt.Errorf("failed to check store_metadata existence: %w", err)
	}
	if tableExists == 0 {
		return "0", nil
	}

	var version string
	err = db.QueryRow("SELECT value FROM store_metadata WHERE key = 'schema_version'").Scan(&version)
	if err == sql.ErrNoRows {
		return "", fmt.Errorf("schema_version key not found in store_metadata")
	}
	if err != nil {
		return "", fmt.Errorf("failed to query schema version: %w", err)
	}
	return version, nil
}

// Table DDL constants

const createUnitsTable = `
CREATE TABLE units (
    unit_id TEXT PRIMARY KEY,           -- uuid assigned at index time
    source TEXT NOT NULL UNIQUE,        -- absolute main file path
    args TEXT NOT NULL,                 -- compiler arguments, NUL separated
    error_count INTEGER NOT NULL DEFAULT 0,
    indexed_at TEXT NOT NULL            -- ISO 8601
)
`

const createSymbolsTable = `
CREATE TABLE symbols (
    unit_id TEXT NOT NULL REFERENCES units(unit_id) ON DELETE CASCADE,
    usr TEXT NOT NULL,
    name TEXT NOT NULL,
    kind TEXT NOT NULL,                 -- cursor kind name, e.g. function_decl
    file_path TEXT NOT NULL,
    line INTEGER NOT NULL,
    col INTEGER NOT NULL,
    is_definition INTEGER NOT NULL DEFAULT 0,
    linkage TEXT NOT NULL,
    type_spelling TEXT NOT NULL DEFAULT '',
    brief TEXT NOT NULL DEFAULT '',
    PRIMARY KEY (unit_id, usr, file_path, line, col)
)
`

const createRefsTable = `
CREATE TABLE refs (
    unit_id TEXT NOT NULL REFERENCES units(unit_id) ON DELETE CASCADE,
    usr TEXT NOT NULL,
    kind TEXT NOT NULL,                 -- cursor kind of the referencing cursor
    file_path TEXT NOT NULL,
    line INTEGER NOT NULL,
    col INTEGER NOT NULL,
    PRIMARY KEY (unit_id, usr, file_path, line, col)
)
`

const createIncludesTable = `
CREATE TABLE includes (
    unit_id TEXT NOT NULL REFERENCES units(unit_id) ON DELETE CASCADE,
    includer TEXT NOT NULL,
    included TEXT NOT NULL,
    PRIMARY KEY (unit_id, includer, included)
)
`

const createStoreMetadataTable = `
CREATE TABLE store_metadata (
    key TEXT PRIMARY KEY,
    value TEXT NOT NULL,
    updated_at TEXT NOT NULL
)
`

func getAllIndexes() []string {
	return []string{
		"CREATE INDEX idx_symbols_usr ON symbols(usr)",
		"CREATE INDEX idx_symbols_name ON symbols(name)",
		"CREATE INDEX idx_symbols_file ON symbols(file_path)",
		"CREATE INDEX idx_refs_usr ON refs(usr)",
		"CREATE INDEX idx_includes_included ON includes(included)",
	}
}
