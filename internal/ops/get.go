package ops

import (
	"database/sql"
	"strings"

	"github.com/kailabs/kapsel/internal/capsule"
	"github.com/kailabs/kapsel/internal/db"
	"github.com/kailabs/kapsel/internal/errors"
)

// GetInput contains parameters for the Get operation.
type GetInput struct {
	ID string // required
}

// Get retrieves a capsule by id. An absent id is a NOT_FOUND error, never
// a silent nil.
func Get(database *sql.DB, input GetInput) (*capsule.Capsule, error) {
	id := strings.TrimSpace(input.ID)
	if id == "" {
		return nil, errors.NewValidation("id is required")
	}
	return db.GetByID(database, id)
}
