package ops

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/kailabs/kapsel/internal/capsule"
	"github.com/kailabs/kapsel/internal/db"
	"github.com/kailabs/kapsel/internal/errors"
	"github.com/kailabs/kapsel/internal/index"
)

// FusionNoveltyScore is the novelty assigned to fused capsules. It is a
// placeholder constant, not a computed value; tests pin it down so the
// limitation stays documented.
const FusionNoveltyScore = 0.8

// FuseInput contains parameters for the Fuse operation.
type FuseInput struct {
	IDs    []string // at least 2 distinct ids
	Method string   // required
}

// Fuse creates a new capsule summarizing two or more existing capsules.
// The fused capsule's confidence is the arithmetic mean of the inputs'
// confidences, its domain is "fusion", and it carries a cross-domain
// fusion block listing the deduplicated source domains.
func Fuse(database *sql.DB, idx *index.Index, input FuseInput) (*capsule.Capsule, error) {
	method := strings.TrimSpace(input.Method)
	if method == "" {
		return nil, errors.NewValidation("method is required")
	}

	// Duplicate ids count once
	seen := make(map[string]bool, len(input.IDs))
	ids := make([]string, 0, len(input.IDs))
	for _, id := range input.IDs {
		id = strings.TrimSpace(id)
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		ids = append(ids, id)
	}
	if len(ids) < 2 {
		return nil, errors.NewValidation("at least 2 distinct capsule ids are required for fusion")
	}

	capsules := make([]*capsule.Capsule, 0, len(ids))
	for _, id := range ids {
		c, err := db.GetByID(database, id)
		if err != nil {
			return nil, err
		}
		capsules = append(capsules, c)
	}

	var confidenceSum float64
	summaries := make([]string, 0, len(capsules))
	domains := make([]string, 0, len(capsules))
	domainSeen := make(map[string]bool, len(capsules))
	for _, c := range capsules {
		confidenceSum += c.CoreInsight.Confidence
		summaries = append(summaries, c.CoreInsight.Summary)
		d := c.Context.Domain
		if norm := capsule.Normalize(d); !domainSeen[norm] {
			domainSeen[norm] = true
			domains = append(domains, d)
		}
	}
	confidence := capsule.Clamp01(confidenceSum / float64(len(capsules)))

	fusion := &capsule.Fusion{
		DomainsInvolved: domains,
		FusionMethod:    method,
		EmergentInsight: fmt.Sprintf("Merged insights from %s", strings.Join(domains, ", ")),
		NoveltyScore:    FusionNoveltyScore,
	}

	return Create(database, idx, CreateInput{
		Summary:         fmt.Sprintf("Fusion of %d capsules", len(capsules)),
		Details:         strings.Join(summaries, "; "),
		Confidence:      confidence,
		Domain:          "fusion",
		Discipline:      "cross_domain",
		Tags:            []string{"fusion", "cross_domain"},
		RelatedIDs:      ids,
		DiscoveredBy:    "system",
		DiscoveryMethod: "semantic_collision",
		OriginalSource:  "cross-domain fusion",
		Fusion:          fusion,
	})
}
