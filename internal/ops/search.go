package ops

import (
	"database/sql"
	"strings"

	"github.com/kailabs/kapsel/internal/capsule"
	"github.com/kailabs/kapsel/internal/db"
	"github.com/kailabs/kapsel/internal/errors"
	"github.com/kailabs/kapsel/internal/index"
)

// SearchInput contains parameters for the SearchByKeyword operation.
type SearchInput struct {
	Keyword string // required
}

// SearchOutput contains the result of the SearchByKeyword operation.
type SearchOutput struct {
	Keyword string            `json:"keyword"`
	Items   []capsule.Summary `json:"items"`
	Count   int               `json:"count"`
}

// SearchByKeyword looks the keyword up in the inverted index and returns
// the matching capsules. An unknown keyword yields an empty result, not
// an error; the index degrades gracefully.
func SearchByKeyword(database *sql.DB, idx *index.Index, input SearchInput) (*SearchOutput, error) {
	keyword := strings.TrimSpace(input.Keyword)
	if keyword == "" {
		return nil, errors.NewValidation("keyword is required")
	}

	ids := idx.Lookup(keyword)

	items, err := db.GetSummariesByIDs(database, ids)
	if err != nil {
		return nil, err
	}

	return &SearchOutput{
		Keyword: capsule.Normalize(keyword),
		Items:   items,
		Count:   len(items),
	}, nil
}
