package ops

import (
	"database/sql"

	"github.com/kailabs/kapsel/internal/db"
	"github.com/kailabs/kapsel/internal/index"
)

// StatusOutput contains store-wide totals.
type StatusOutput struct {
	TotalCapsules   int      `json:"total_capsules"`
	CollisionEvents int      `json:"collision_events"`
	IndexedKeywords int      `json:"indexed_keywords"`
	Domains         []string `json:"domains"`
}

// Status reports the current size of the store: capsule and collision
// counts, distinct indexed keywords, and the set of domains present.
func Status(database *sql.DB, idx *index.Index) (*StatusOutput, error) {
	capsules, collisions, err := db.Counts(database)
	if err != nil {
		return nil, err
	}

	domains, err := db.DistinctDomains(database)
	if err != nil {
		return nil, err
	}

	return &StatusOutput{
		TotalCapsules:   capsules,
		CollisionEvents: collisions,
		IndexedKeywords: idx.KeywordCount(),
		Domains:         domains,
	}, nil
}
