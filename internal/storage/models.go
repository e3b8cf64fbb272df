package storage

import (
	"time"

	"github.com/google/uuid"
)

// Unit is everything the store keeps about one indexed translation unit.
type Unit struct {
	ID         uuid.UUID
	Source     string
	Args       []string
	ErrorCount int
	IndexedAt  time.Time
	Symbols    []*Symbol
	Refs       []*Reference
	Includes   []Include
}

// Symbol is a declaration of an entity, keyed by USR.
type Symbol struct {
	USR          string `json:"usr"`
	Name         string `json:"name"`
	Kind         string `json:"kind"`
	FilePath     string `json:"file_path"`
	Line         int    `json:"line"`
	Column       int    `json:"column"`
	IsDefinition bool   `json:"is_definition"`
	Linkage      string `json:"linkage,omitempty"`
	TypeSpelling string `json:"type,omitempty"`
	Brief        string `json:"brief,omitempty"`
}

// Reference is a use of an entity inside some unit.
type Reference struct {
	USR      string `json:"usr"`
	Kind     string `json:"kind"`
	FilePath string `json:"file_path"`
	Line     int    `json:"line"`
	Column   int    `json:"column"`
}

// Include is an include edge seen while indexing a unit.
type Include struct {
	Includer string
	Included string
}

// UnitInfo summarizes a stored unit without its rows.
type UnitInfo struct {
	ID          uuid.UUID
	Source      string
	Args        []string
	ErrorCount  int
	IndexedAt   time.Time
	SymbolCount int
}
