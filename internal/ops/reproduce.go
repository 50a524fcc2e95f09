package ops

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/kailabs/kapsel/internal/capsule"
	"github.com/kailabs/kapsel/internal/errors"
	"github.com/kailabs/kapsel/internal/index"
)

// ReproductionConfidence is the confidence assigned to reproduced
// historical capsules. Like FusionNoveltyScore it is a fixed constant,
// not a computed value.
const ReproductionConfidence = 0.7

// sourceExcerptLen bounds the original-source citation taken from the
// historical text.
const sourceExcerptLen = 100

// ReproduceInput contains parameters for the Reproduce operation.
type ReproduceInput struct {
	HistoricalText string // required
	ModernAnalysis string // required
	Domain         string // required
}

// Reproduce rediscovers a piece of historical knowledge: it records the
// historical text alongside a modern analysis as a new capsule in the
// given domain, under the "historical_studies" discipline. The original
// source citation is an excerpt of the historical text.
func Reproduce(database *sql.DB, idx *index.Index, input ReproduceInput) (*capsule.Capsule, error) {
	historical := strings.TrimSpace(input.HistoricalText)
	if historical == "" {
		return nil, errors.NewValidation("historical_text is required")
	}
	analysis := strings.TrimSpace(input.ModernAnalysis)
	if analysis == "" {
		return nil, errors.NewValidation("modern_analysis is required")
	}

	return Create(database, idx, CreateInput{
		Summary:         fmt.Sprintf("Historical insight from %s", input.Domain),
		Details:         fmt.Sprintf("Historical: %s\n\nModern Analysis: %s", historical, analysis),
		Confidence:      ReproductionConfidence,
		Domain:          input.Domain,
		Discipline:      "historical_studies",
		Tags:            []string{"historical", "reproduction"},
		DiscoveredBy:    "system",
		DiscoveryMethod: "historical_reproduction",
		OriginalSource:  sourceExcerpt(historical),
	})
}

// sourceExcerpt truncates the historical text to a short citation.
func sourceExcerpt(text string) string {
	runes := []rune(text)
	if len(runes) > sourceExcerptLen {
		runes = runes[:sourceExcerptLen]
	}
	return string(runes) + "..."
}
