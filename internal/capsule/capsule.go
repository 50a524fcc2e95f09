package capsule

// VerificationStatus tracks whether a capsule's origin has been checked.
type VerificationStatus string

const (
	VerificationPending  VerificationStatus = "pending"
	VerificationVerified VerificationStatus = "verified"
	VerificationRejected VerificationStatus = "rejected"
)

// Valid reports whether s is one of the known verification states.
func (s VerificationStatus) Valid() bool {
	switch s {
	case VerificationPending, VerificationVerified, VerificationRejected:
		return true
	}
	return false
}

// CoreInsight is the knowledge payload of a capsule.
type CoreInsight struct {
	// Summary is a one-line statement of the insight
	Summary string `json:"summary"`

	// Details is the full insight text (markdown allowed)
	Details string `json:"details"`

	// Confidence is the author's confidence in [0,1]
	Confidence float64 `json:"confidence"`

	// Sources lists citations or provenance strings, in order
	Sources []string `json:"sources,omitempty"`
}

// Context places a capsule in its field of knowledge.
// Domain, discipline, and tags are immutable after creation and feed the
// keyword index.
type Context struct {
	Domain     string `json:"domain"`
	Discipline string `json:"discipline"`

	Tags []string `json:"tags,omitempty"`

	// RelatedCapsuleIDs references other capsules, in order
	RelatedCapsuleIDs []string `json:"related_capsule_ids,omitempty"`
}

// Origin records how and by whom the capsule was discovered.
type Origin struct {
	DiscoveredBy    string `json:"discovered_by"`
	DiscoveryDate   int64  `json:"discovery_date"` // unix seconds
	DiscoveryMethod string `json:"discovery_method,omitempty"`
	OriginalSource  string `json:"original_source,omitempty"`

	VerificationStatus VerificationStatus `json:"verification_status"`
}

// Evolution tracks the capsule's revision history.
type Evolution struct {
	// Version is a dotted numeric string ("1.0", "1.1", ...); it only
	// moves forward
	Version string `json:"version"`

	// ModifiedDate is the unix timestamp of the last update
	ModifiedDate int64 `json:"modified_date"`

	// Modifications is an append-only change log
	Modifications []string `json:"modifications,omitempty"`

	// ImprovementNotes collects reviewer notes appended over time
	ImprovementNotes []string `json:"improvement_notes,omitempty"`
}

// Fusion describes a capsule synthesized from capsules in multiple domains.
type Fusion struct {
	DomainsInvolved []string `json:"domains_involved"`
	FusionMethod    string   `json:"fusion_method"`
	EmergentInsight string   `json:"emergent_insight"`

	// NoveltyScore is in [0,1]
	NoveltyScore float64 `json:"novelty_score"`
}

// Capsule is a versioned unit of knowledge with provenance metadata.
type Capsule struct {
	// ID is "KC-<date>-<ULID>"; immutable once assigned
	ID string `json:"id"`

	CoreInsight CoreInsight `json:"core_insight"`
	Context     Context     `json:"context"`
	Origin      Origin      `json:"origin"`
	Evolution   Evolution   `json:"evolution"`

	// Fusion is set only on capsules produced by cross-domain fusion
	Fusion *Fusion `json:"cross_domain_fusion,omitempty"`

	// CreatedAt is the unix timestamp when the capsule was created
	CreatedAt int64 `json:"created_at"`
}

// Keywords returns the normalized index keywords for the capsule:
// domain, discipline, and each tag.
func (c *Capsule) Keywords() []string {
	return KeywordsOf(c.Context.Domain, c.Context.Discipline, c.Context.Tags)
}

// KeywordsOf derives normalized, deduplicated index keywords from context
// fields. Empty strings are dropped.
func KeywordsOf(domain, discipline string, tags []string) []string {
	raw := make([]string, 0, 2+len(tags))
	raw = append(raw, domain, discipline)
	raw = append(raw, tags...)

	seen := make(map[string]bool, len(raw))
	keywords := make([]string, 0, len(raw))
	for _, k := range raw {
		k = Normalize(k)
		if k == "" || seen[k] {
			continue
		}
		seen[k] = true
		keywords = append(keywords, k)
	}
	return keywords
}

// CollisionType classifies a pairwise collision.
type CollisionType string

const (
	CollisionIntraDomain CollisionType = "intra_domain"
	CollisionCrossDomain CollisionType = "cross_domain"
)

// Collision is one append-only entry in the collision log. Records are
// never mutated after insertion.
type Collision struct {
	// Seq is the log sequence number assigned by the store
	Seq int64 `json:"seq"`

	CapsuleA string `json:"capsule_a"`
	CapsuleB string `json:"capsule_b"`

	Type CollisionType `json:"collision_type"`

	// OverlapCount is how many of {domain, discipline} match between the
	// two capsules (0-2)
	OverlapCount int `json:"overlap_count"`

	// Strength is the collision strength in [0,1]
	Strength float64 `json:"strength"`

	Insights []string `json:"insights,omitempty"`

	CreatedAt int64 `json:"created_at"`
}
