package ops

import (
	"database/sql"

	"github.com/kailabs/kapsel/internal/capsule"
	"github.com/kailabs/kapsel/internal/db"
)

// CollisionsInput contains parameters for the Collisions operation.
type CollisionsInput struct {
	Limit  int // default: 50, max: 200
	Offset int // default: 0
}

// CollisionsOutput contains a page of the collision log.
type CollisionsOutput struct {
	Items      []capsule.Collision `json:"items"`
	Pagination Pagination          `json:"pagination"`
	Sort       string              `json:"sort"`
}

// Collisions pages through the append-only collision log, newest first.
func Collisions(database *sql.DB, input CollisionsInput) (*CollisionsOutput, error) {
	limit := clampLimit(input.Limit, DefaultCollisionLimit, MaxCollisionLimit)
	offset := max(input.Offset, 0)

	items, total, err := db.ListCollisions(database, limit, offset)
	if err != nil {
		return nil, err
	}

	hasMore := offset+len(items) < total

	return &CollisionsOutput{
		Items: items,
		Pagination: Pagination{
			Limit:   limit,
			Offset:  offset,
			HasMore: hasMore,
			Total:   total,
		},
		Sort: "seq_desc",
	}, nil
}
