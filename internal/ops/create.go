package ops

import (
	"crypto/rand"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/kailabs/kapsel/internal/capsule"
	"github.com/kailabs/kapsel/internal/db"
	"github.com/kailabs/kapsel/internal/errors"
	"github.com/kailabs/kapsel/internal/index"
)

// CreateInput contains parameters for the Create operation.
type CreateInput struct {
	Summary    string  // required
	Details    string
	Confidence float64 // must be in [0,1]
	Sources    []string

	Domain     string // required
	Discipline string // required
	Tags       []string
	RelatedIDs []string

	DiscoveredBy    string // default: "unknown"
	DiscoveryMethod string
	OriginalSource  string

	// Fusion is set only when the capsule records a cross-domain fusion
	Fusion *capsule.Fusion
}

// Create validates the input, assigns a fresh id, inserts the capsule,
// and registers its keywords (domain, discipline, tags) in the inverted
// index. Returns the fully constructed capsule.
func Create(database *sql.DB, idx *index.Index, input CreateInput) (*capsule.Capsule, error) {
	result := capsule.Validate(capsule.ValidateInput{
		Summary:    input.Summary,
		Confidence: input.Confidence,
		Domain:     input.Domain,
		Discipline: input.Discipline,
		Fusion:     input.Fusion,
	})
	if !result.Valid {
		return nil, errors.NewValidationIssues(result.Issues)
	}

	now := time.Now()
	id, err := generateID(now)
	if err != nil {
		return nil, errors.NewInternal(err)
	}

	discoveredBy := strings.TrimSpace(input.DiscoveredBy)
	if discoveredBy == "" {
		discoveredBy = "unknown"
	}

	// Original source doubles as the first citation when none are given
	sources := input.Sources
	if len(sources) == 0 && input.OriginalSource != "" {
		sources = []string{input.OriginalSource}
	}

	c := &capsule.Capsule{
		ID: id,
		CoreInsight: capsule.CoreInsight{
			Summary:    input.Summary,
			Details:    input.Details,
			Confidence: input.Confidence,
			Sources:    sources,
		},
		Context: capsule.Context{
			Domain:            input.Domain,
			Discipline:        input.Discipline,
			Tags:              input.Tags,
			RelatedCapsuleIDs: input.RelatedIDs,
		},
		Origin: capsule.Origin{
			DiscoveredBy:       discoveredBy,
			DiscoveryDate:      now.Unix(),
			DiscoveryMethod:    input.DiscoveryMethod,
			OriginalSource:     input.OriginalSource,
			VerificationStatus: capsule.VerificationPending,
		},
		Evolution: capsule.Evolution{
			Version:       capsule.InitialVersion,
			ModifiedDate:  now.Unix(),
			Modifications: []string{"initial creation"},
		},
		Fusion:    input.Fusion,
		CreatedAt: now.Unix(),
	}

	if err := db.Insert(database, c); err != nil {
		return nil, err
	}

	idx.Add(c.ID, c.Keywords())

	return c, nil
}

// generateID generates a capsule id: a date prefix plus a monotonic ULID.
func generateID(now time.Time) (string, error) {
	entropy := ulid.Monotonic(rand.Reader, 0)
	id, err := ulid.New(ulid.Timestamp(now), entropy)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("KC-%s-%s", now.UTC().Format("2006-01-02"), id.String()), nil
}
