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

// crossDomainBoost amplifies the strength of collisions between capsules
// from different domains before clamping to 1.0.
const crossDomainBoost = 1.2

// CollideInput contains parameters for the Collide operation.
type CollideInput struct {
	ID1 string // required
	ID2 string // required
}

// Collide computes the pairwise collision between two capsules, appends
// the result to the append-only collision log, and returns it.
//
// The scoring is a pure function of the two capsule records: strength is
// the mean of the two confidences, boosted by crossDomainBoost when the
// domains differ, clamped to 1.0. Strength and classification are
// symmetric in the argument order.
func Collide(database *sql.DB, input CollideInput) (*capsule.Collision, error) {
	id1 := strings.TrimSpace(input.ID1)
	id2 := strings.TrimSpace(input.ID2)
	if id1 == "" || id2 == "" {
		return nil, errors.NewValidation("two capsule ids are required")
	}

	c1, err := db.GetByID(database, id1)
	if err != nil {
		return nil, err
	}
	c2, err := db.GetByID(database, id2)
	if err != nil {
		return nil, err
	}

	sameDomain := capsule.Normalize(c1.Context.Domain) == capsule.Normalize(c2.Context.Domain)
	sameDiscipline := capsule.Normalize(c1.Context.Discipline) == capsule.Normalize(c2.Context.Discipline)

	overlap := 0
	if sameDomain {
		overlap++
	}
	if sameDiscipline {
		overlap++
	}

	colType := capsule.CollisionCrossDomain
	if sameDomain {
		colType = capsule.CollisionIntraDomain
	}

	strength := (c1.CoreInsight.Confidence + c2.CoreInsight.Confidence) / 2
	if !sameDomain {
		strength *= crossDomainBoost
	}
	strength = capsule.Clamp01(strength)

	col := &capsule.Collision{
		CapsuleA:     c1.ID,
		CapsuleB:     c2.ID,
		Type:         colType,
		OverlapCount: overlap,
		Strength:     strength,
		Insights:     collisionInsights(c1, c2),
		CreatedAt:    time.Now().Unix(),
	}

	if err := db.InsertCollision(database, col); err != nil {
		return nil, err
	}

	return col, nil
}

// collisionInsights produces up to two templated insight strings from the
// two capsules' context fields.
func collisionInsights(c1, c2 *capsule.Capsule) []string {
	var insights []string
	if c1.CoreInsight.Summary != c2.CoreInsight.Summary {
		insights = append(insights,
			fmt.Sprintf("Both capsules address %s and %s", c1.Context.Domain, c2.Context.Domain))
	}
	insights = append(insights,
		fmt.Sprintf("Methodology from %s can inform %s", c1.Context.Discipline, c2.Context.Discipline))
	return insights
}
