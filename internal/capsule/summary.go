package capsule

// Summary represents a capsule's metadata without the full insight text.
// Used for browse operations (list, search) to reduce data transfer.
type Summary struct {
	ID string `json:"id"`

	// InsightSummary is the one-line core insight
	InsightSummary string `json:"summary"`

	Confidence float64 `json:"confidence"`

	Domain     string   `json:"domain"`
	Discipline string   `json:"discipline"`
	Tags       []string `json:"tags,omitempty"`

	VerificationStatus VerificationStatus `json:"verification_status"`

	Version      string `json:"version"`
	ModifiedDate int64  `json:"modified_date"`
	CreatedAt    int64  `json:"created_at"`

	// Fused marks capsules produced by cross-domain fusion
	Fused bool `json:"fused,omitempty"`
}

// ToSummary converts a Capsule to a Summary by stripping the detail text
// and provenance.
func (c *Capsule) ToSummary() Summary {
	return Summary{
		ID:                 c.ID,
		InsightSummary:     c.CoreInsight.Summary,
		Confidence:         c.CoreInsight.Confidence,
		Domain:             c.Context.Domain,
		Discipline:         c.Context.Discipline,
		Tags:               c.Tags(),
		VerificationStatus: c.Origin.VerificationStatus,
		Version:            c.Evolution.Version,
		ModifiedDate:       c.Evolution.ModifiedDate,
		CreatedAt:          c.CreatedAt,
		Fused:              c.Fusion != nil,
	}
}

// Tags returns the capsule's tags, never nil.
func (c *Capsule) Tags() []string {
	if c.Context.Tags == nil {
		return []string{}
	}
	return c.Context.Tags
}
