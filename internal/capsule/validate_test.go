package capsule

import (
	"strings"
	"testing"
)

func validInput() ValidateInput {
	return ValidateInput{
		Summary:    "Neural networks mirror biological learning",
		Confidence: 0.8,
		Domain:     "ai",
		Discipline: "machine learning",
	}
}

func TestValidate_Valid(t *testing.T) {
	result := Validate(validInput())
	if !result.Valid {
		t.Errorf("expected valid, got issues: %v", result.Issues)
	}
	if len(result.Issues) != 0 {
		t.Errorf("expected no issues, got %v", result.Issues)
	}
}

func TestValidate_EmptySummary(t *testing.T) {
	input := validInput()
	input.Summary = "   "
	result := Validate(input)
	if result.Valid {
		t.Error("expected invalid")
	}
	if !hasIssue(result, "summary") {
		t.Errorf("expected summary issue, got %v", result.Issues)
	}
}

func TestValidate_ConfidenceOutOfRange(t *testing.T) {
	for _, c := range []float64{-0.1, 1.1, 2.0} {
		input := validInput()
		input.Confidence = c
		result := Validate(input)
		if result.Valid {
			t.Errorf("confidence %g should be rejected", c)
		}
	}
}

func TestValidate_MissingDomainAndDiscipline(t *testing.T) {
	input := validInput()
	input.Domain = ""
	input.Discipline = ""
	result := Validate(input)
	if result.Valid {
		t.Error("expected invalid")
	}
	if len(result.Issues) != 2 {
		t.Errorf("expected 2 issues, got %v", result.Issues)
	}
}

func TestValidate_FusionNovelty(t *testing.T) {
	input := validInput()
	input.Fusion = &Fusion{
		DomainsInvolved: []string{"ai", "philosophy"},
		FusionMethod:    "semantic_collision",
		NoveltyScore:    1.5,
	}
	result := Validate(input)
	if result.Valid {
		t.Error("out-of-range novelty_score should be rejected")
	}
	if !hasIssue(result, "novelty_score") {
		t.Errorf("expected novelty_score issue, got %v", result.Issues)
	}
}

func TestValidate_FusionNoDomains(t *testing.T) {
	input := validInput()
	input.Fusion = &Fusion{FusionMethod: "merge", NoveltyScore: 0.8}
	result := Validate(input)
	if result.Valid {
		t.Error("fusion without domains should be rejected")
	}
}

func hasIssue(r *ValidateResult, substr string) bool {
	for _, issue := range r.Issues {
		if strings.Contains(issue, substr) {
			return true
		}
	}
	return false
}
