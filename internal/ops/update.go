package ops

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/kailabs/kapsel/internal/capsule"
	"github.com/kailabs/kapsel/internal/db"
	"github.com/kailabs/kapsel/internal/errors"
)

// UpdateInput contains parameters for the Update operation.
type UpdateInput struct {
	ID string // required

	// NewDetails replaces core_insight.details when set
	NewDetails *string

	// ImprovementNotes are appended to the capsule's improvement notes
	ImprovementNotes []string
}

// Update revises an existing capsule. The version always advances by 0.1
// and the modification log records the change; id, context, and origin
// are immutable, so the keyword index is not touched.
func Update(database *sql.DB, input UpdateInput) (*capsule.Capsule, error) {
	id := strings.TrimSpace(input.ID)
	if id == "" {
		return nil, errors.NewValidation("id is required")
	}
	if input.NewDetails == nil && len(input.ImprovementNotes) == 0 {
		return nil, errors.NewValidation("at least one of new_details or improvement_notes must be provided")
	}

	c, err := db.GetByID(database, id)
	if err != nil {
		return nil, err
	}

	version, err := capsule.BumpVersion(c.Evolution.Version)
	if err != nil {
		return nil, errors.NewInternal(err)
	}

	if input.NewDetails != nil {
		c.CoreInsight.Details = *input.NewDetails
		c.Evolution.Modifications = append(c.Evolution.Modifications,
			fmt.Sprintf("details revised in version %s", version))
	}
	if len(input.ImprovementNotes) > 0 {
		c.Evolution.ImprovementNotes = append(c.Evolution.ImprovementNotes, input.ImprovementNotes...)
		c.Evolution.Modifications = append(c.Evolution.Modifications,
			fmt.Sprintf("%d improvement note(s) added in version %s", len(input.ImprovementNotes), version))
	}

	c.Evolution.Version = version
	c.Evolution.ModifiedDate = time.Now().Unix()

	if err := db.UpdateEvolution(database, c); err != nil {
		return nil, err
	}

	return c, nil
}
