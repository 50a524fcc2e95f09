// Package ops implements the knowledge capsule store operations. Each
// operation lives in its own file and takes its dependencies (database,
// keyword index, config) explicitly.
package ops

import (
	"database/sql"

	"github.com/kailabs/kapsel/internal/db"
	"github.com/kailabs/kapsel/internal/index"
)

// Pagination limits
const (
	DefaultListLimit      = 20
	MaxListLimit          = 100
	DefaultCollisionLimit = 50
	MaxCollisionLimit     = 200
)

// Pagination contains pagination metadata for list operations.
type Pagination struct {
	Limit   int  `json:"limit"`
	Offset  int  `json:"offset"`
	HasMore bool `json:"has_more"`
	Total   int  `json:"total"`
}

// BuildIndex rebuilds the in-memory keyword index from the capsules table.
// Called once on startup; the index is derived state and is never persisted.
func BuildIndex(database *sql.DB) (*index.Index, error) {
	seeds, err := db.AllKeywordSeeds(database)
	if err != nil {
		return nil, err
	}
	idx := index.New()
	idx.Rebuild(seeds)
	return idx, nil
}

// clampLimit applies default and maximum bounds to a caller-supplied limit.
func clampLimit(limit, def, max int) int {
	if limit <= 0 {
		return def
	}
	if limit > max {
		return max
	}
	return limit
}
