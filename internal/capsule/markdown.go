package capsule

import (
	"fmt"
	"strings"
	"time"
)

// ToMarkdown renders the capsule as a markdown document, one section per
// field group. Used by the markdown export and the web detail page.
func (c *Capsule) ToMarkdown() string {
	var b strings.Builder

	fmt.Fprintf(&b, "# %s\n\n", c.ID)

	fmt.Fprintf(&b, "## Core Insight\n**%s**\n\n", c.CoreInsight.Summary)
	if c.CoreInsight.Details != "" {
		fmt.Fprintf(&b, "%s\n\n", c.CoreInsight.Details)
	}
	fmt.Fprintf(&b, "- Confidence: %.2f\n", c.CoreInsight.Confidence)
	if len(c.CoreInsight.Sources) > 0 {
		fmt.Fprintf(&b, "- Sources: %s\n", strings.Join(c.CoreInsight.Sources, ", "))
	}
	b.WriteString("\n")

	b.WriteString("## Context\n")
	fmt.Fprintf(&b, "- Domain: %s\n", c.Context.Domain)
	fmt.Fprintf(&b, "- Discipline: %s\n", c.Context.Discipline)
	if len(c.Context.Tags) > 0 {
		fmt.Fprintf(&b, "- Tags: %s\n", strings.Join(c.Context.Tags, ", "))
	}
	if len(c.Context.RelatedCapsuleIDs) > 0 {
		fmt.Fprintf(&b, "- Related: %s\n", strings.Join(c.Context.RelatedCapsuleIDs, ", "))
	}
	b.WriteString("\n")

	b.WriteString("## Origin\n")
	fmt.Fprintf(&b, "- Discovered by: %s\n", c.Origin.DiscoveredBy)
	fmt.Fprintf(&b, "- Date: %s\n", formatDate(c.Origin.DiscoveryDate))
	if c.Origin.DiscoveryMethod != "" {
		fmt.Fprintf(&b, "- Method: %s\n", c.Origin.DiscoveryMethod)
	}
	if c.Origin.OriginalSource != "" {
		fmt.Fprintf(&b, "- Source: %s\n", c.Origin.OriginalSource)
	}
	fmt.Fprintf(&b, "- Verification: %s\n\n", c.Origin.VerificationStatus)

	b.WriteString("## Evolution\n")
	fmt.Fprintf(&b, "- Version: %s\n", c.Evolution.Version)
	fmt.Fprintf(&b, "- Modified: %s\n", formatDate(c.Evolution.ModifiedDate))
	if len(c.Evolution.Modifications) > 0 {
		fmt.Fprintf(&b, "- Modifications: %s\n", strings.Join(c.Evolution.Modifications, "; "))
	}
	if len(c.Evolution.ImprovementNotes) > 0 {
		fmt.Fprintf(&b, "- Improvements: %s\n", strings.Join(c.Evolution.ImprovementNotes, "; "))
	}
	b.WriteString("\n")

	if c.Fusion != nil {
		b.WriteString("## Cross-Domain Fusion\n")
		fmt.Fprintf(&b, "- Domains: %s\n", strings.Join(c.Fusion.DomainsInvolved, ", "))
		fmt.Fprintf(&b, "- Method: %s\n", c.Fusion.FusionMethod)
		fmt.Fprintf(&b, "- Emergent Insight: %s\n", c.Fusion.EmergentInsight)
		fmt.Fprintf(&b, "- Novelty Score: %.2f\n\n", c.Fusion.NoveltyScore)
	}

	return b.String()
}

func formatDate(unix int64) string {
	if unix == 0 {
		return "unknown"
	}
	return time.Unix(unix, 0).UTC().Format("2006-01-02 15:04:05 UTC")
}
