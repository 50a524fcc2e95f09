package ops

import (
	"database/sql"

	"github.com/kailabs/kapsel/internal/capsule"
	"github.com/kailabs/kapsel/internal/db"
)

// ListInput contains parameters for the List operation.
type ListInput struct {
	// Domain filters by exact (normalized) domain match when set
	Domain *string

	Limit  int // default: 20, max: 100
	Offset int // default: 0
}

// ListOutput contains the result of the List operation.
type ListOutput struct {
	Items      []capsule.Summary `json:"items"`
	Pagination Pagination        `json:"pagination"`
	Sort       string            `json:"sort"`
}

// List retrieves capsule summaries in insertion order with pagination.
// The listing is restartable: every call re-queries the backing store.
func List(database *sql.DB, input ListInput) (*ListOutput, error) {
	var domainNorm *string
	if input.Domain != nil {
		d := capsule.Normalize(*input.Domain)
		if d != "" {
			domainNorm = &d
		}
	}

	limit := clampLimit(input.Limit, DefaultListLimit, MaxListLimit)
	offset := max(input.Offset, 0)

	summaries, total, err := db.ListSummaries(database, domainNorm, limit, offset)
	if err != nil {
		return nil, err
	}

	hasMore := offset+len(summaries) < total

	return &ListOutput{
		Items: summaries,
		Pagination: Pagination{
			Limit:   limit,
			Offset:  offset,
			HasMore: hasMore,
			Total:   total,
		},
		Sort: "insertion_order",
	}, nil
}
