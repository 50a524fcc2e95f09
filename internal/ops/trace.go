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

// TraceInput contains parameters for the Trace operation.
type TraceInput struct {
	ID string // required
}

// TraceOutput contains a capsule's provenance: origin, revision history,
// and a human-readable lineage line.
type TraceOutput struct {
	CapsuleID string            `json:"capsule_id"`
	Origin    capsule.Origin    `json:"origin"`
	Evolution capsule.Evolution `json:"evolution"`
	Lineage   string            `json:"lineage"`
}

// Trace reports how a capsule was discovered and how it has evolved.
func Trace(database *sql.DB, input TraceInput) (*TraceOutput, error) {
	id := strings.TrimSpace(input.ID)
	if id == "" {
		return nil, errors.NewValidation("id is required")
	}

	c, err := db.GetByID(database, id)
	if err != nil {
		return nil, err
	}

	discovered := time.Unix(c.Origin.DiscoveryDate, 0).UTC().Format("2006-01-02")

	return &TraceOutput{
		CapsuleID: c.ID,
		Origin:    c.Origin,
		Evolution: c.Evolution,
		Lineage:   fmt.Sprintf("Created by %s on %s", c.Origin.DiscoveredBy, discovered),
	}, nil
}
