package capsule

// ExportRecord represents a capsule record in JSONL export format.
// It is also used for parsing export files during import.
type ExportRecord struct {
	// Header detection field - true only for the header line
	KapselExport bool `json:"_kapsel_export,omitempty"`

	// Header fields (only present in the header line)
	SchemaVersion string `json:"schema_version,omitempty"`
	ExportedAt    int64  `json:"exported_at,omitempty"`

	// Capsule fields
	ID          string      `json:"id"`
	CoreInsight CoreInsight `json:"core_insight"`
	Context     Context     `json:"context"`
	Origin      Origin      `json:"origin"`
	Evolution   Evolution   `json:"evolution"`
	Fusion      *Fusion     `json:"cross_domain_fusion,omitempty"`
	CreatedAt   int64       `json:"created_at"`
}

// ToCapsule converts an ExportRecord to a Capsule, restoring defaults for
// fields an older export may lack.
func (r *ExportRecord) ToCapsule() *Capsule {
	c := &Capsule{
		ID:          r.ID,
		CoreInsight: r.CoreInsight,
		Context:     r.Context,
		Origin:      r.Origin,
		Evolution:   r.Evolution,
		Fusion:      r.Fusion,
		CreatedAt:   r.CreatedAt,
	}
	if c.Origin.VerificationStatus == "" {
		c.Origin.VerificationStatus = VerificationPending
	}
	if c.Evolution.Version == "" {
		c.Evolution.Version = InitialVersion
	}
	return c
}

// ToExportRecord converts a Capsule to an ExportRecord for export.
func (c *Capsule) ToExportRecord() *ExportRecord {
	return &ExportRecord{
		ID:          c.ID,
		CoreInsight: c.CoreInsight,
		Context:     c.Context,
		Origin:      c.Origin,
		Evolution:   c.Evolution,
		Fusion:      c.Fusion,
		CreatedAt:   c.CreatedAt,
	}
}
