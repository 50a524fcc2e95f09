package capsule

import (
	"fmt"
	"strings"
)

// ValidateInput contains the caller-supplied fields checked before a
// capsule is created.
type ValidateInput struct {
	Summary    string
	Confidence float64
	Domain     string
	Discipline string
	Fusion     *Fusion
}

// ValidateResult contains the results of validating capsule input.
type ValidateResult struct {
	Valid  bool
	Issues []string
}

// Validate checks caller-supplied capsule fields. Out-of-range scores are
// rejected here rather than clamped: clamping is reserved for values the
// store computes itself.
func Validate(input ValidateInput) *ValidateResult {
	result := &ValidateResult{Valid: true}

	if strings.TrimSpace(input.Summary) == "" {
		result.add("summary must not be empty")
	}
	if !InRange01(input.Confidence) {
		result.add(fmt.Sprintf("confidence must be in [0,1], got %g", input.Confidence))
	}
	if strings.TrimSpace(input.Domain) == "" {
		result.add("domain must not be empty")
	}
	if strings.TrimSpace(input.Discipline) == "" {
		result.add("discipline must not be empty")
	}
	if input.Fusion != nil {
		if !InRange01(input.Fusion.NoveltyScore) {
			result.add(fmt.Sprintf("novelty_score must be in [0,1], got %g", input.Fusion.NoveltyScore))
		}
		if len(input.Fusion.DomainsInvolved) == 0 {
			result.add("cross_domain_fusion requires at least one domain")
		}
	}

	return result
}

func (r *ValidateResult) add(issue string) {
	r.Valid = false
	r.Issues = append(r.Issues, issue)
}
