package ops

import (
	"math"
	"reflect"
	"testing"

	"github.com/kailabs/kapsel/internal/errors"
)

func TestFuse_TwoCapsules(t *testing.T) {
	database, idx := setupStore(t)

	id1 := mustCreate(t, database, idx, basicInput("AI insight", "ai", "machine learning", 0.8))
	id2 := mustCreate(t, database, idx, basicInput("Ethics insight", "philosophy", "ethics", 0.6))

	fused, err := Fuse(database, idx, FuseInput{IDs: []string{id1, id2}, Method: "semantic_collision"})
	if err != nil {
		t.Fatalf("Fuse failed: %v", err)
	}

	if fused.CoreInsight.Summary != "Fusion of 2 capsules" {
		t.Errorf("Summary = %q", fused.CoreInsight.Summary)
	}
	if fused.CoreInsight.Details != "AI insight; Ethics insight" {
		t.Errorf("Details = %q", fused.CoreInsight.Details)
	}
	// mean(0.8, 0.6) = 0.7
	if math.Abs(fused.CoreInsight.Confidence-0.7) > 1e-9 {
		t.Errorf("Confidence = %g, want 0.7", fused.CoreInsight.Confidence)
	}
	if fused.Context.Domain != "fusion" || fused.Context.Discipline != "cross_domain" {
		t.Errorf("context = %+v", fused.Context)
	}
	if !reflect.DeepEqual(fused.Context.Tags, []string{"fusion", "cross_domain"}) {
		t.Errorf("Tags = %v", fused.Context.Tags)
	}
	if !reflect.DeepEqual(fused.Context.RelatedCapsuleIDs, []string{id1, id2}) {
		t.Errorf("RelatedCapsuleIDs = %v", fused.Context.RelatedCapsuleIDs)
	}
	if fused.Origin.DiscoveredBy != "system" || fused.Origin.DiscoveryMethod != "semantic_collision" {
		t.Errorf("origin = %+v", fused.Origin)
	}

	if fused.Fusion == nil {
		t.Fatal("Fusion block missing")
	}
	if !reflect.DeepEqual(fused.Fusion.DomainsInvolved, []string{"ai", "philosophy"}) {
		t.Errorf("DomainsInvolved = %v", fused.Fusion.DomainsInvolved)
	}
	if fused.Fusion.FusionMethod != "semantic_collision" {
		t.Errorf("FusionMethod = %q", fused.Fusion.FusionMethod)
	}
	if fused.Fusion.EmergentInsight != "Merged insights from ai, philosophy" {
		t.Errorf("EmergentInsight = %q", fused.Fusion.EmergentInsight)
	}
	if fused.Fusion.NoveltyScore != FusionNoveltyScore {
		t.Errorf("NoveltyScore = %g, want %g", fused.Fusion.NoveltyScore, FusionNoveltyScore)
	}

	// The fused capsule is a full capsule: stored, retrievable, indexed
	got, err := Get(database, GetInput{ID: fused.ID})
	if err != nil {
		t.Fatalf("Get(fused) failed: %v", err)
	}
	if got.Fusion == nil {
		t.Error("stored fusion block missing")
	}
	if ids := idx.Lookup("fusion"); len(ids) != 1 || ids[0] != fused.ID {
		t.Errorf("Lookup(fusion) = %v", ids)
	}
}

func TestFuse_SameDomainDeduplicated(t *testing.T) {
	database, idx := setupStore(t)

	id1 := mustCreate(t, database, idx, basicInput("a", "AI", "ml", 0.4))
	id2 := mustCreate(t, database, idx, basicInput("b", "ai", "nlp", 0.8))
	id3 := mustCreate(t, database, idx, basicInput("c", "physics", "mechanics", 0.6))

	fused, err := Fuse(database, idx, FuseInput{IDs: []string{id1, id2, id3}, Method: "merge"})
	if err != nil {
		t.Fatalf("Fuse failed: %v", err)
	}

	// "AI" and "ai" are the same domain; first spelling wins
	if !reflect.DeepEqual(fused.Fusion.DomainsInvolved, []string{"AI", "physics"}) {
		t.Errorf("DomainsInvolved = %v", fused.Fusion.DomainsInvolved)
	}
	// mean(0.4, 0.8, 0.6) = 0.6
	if math.Abs(fused.CoreInsight.Confidence-0.6) > 1e-9 {
		t.Errorf("Confidence = %g, want 0.6", fused.CoreInsight.Confidence)
	}
}

func TestFuse_DuplicateIDsCountOnce(t *testing.T) {
	database, idx := setupStore(t)

	id := mustCreate(t, database, idx, basicInput("solo", "ai", "ml", 0.5))

	_, err := Fuse(database, idx, FuseInput{IDs: []string{id, id, " " + id}, Method: "merge"})
	if !errors.Is(err, errors.ErrValidation) {
		t.Errorf("fusing a capsule with itself should be VALIDATION, got %v", err)
	}
}

func TestFuse_RequiresMethod(t *testing.T) {
	database, idx := setupStore(t)

	id1 := mustCreate(t, database, idx, basicInput("a", "ai", "ml", 0.5))
	id2 := mustCreate(t, database, idx, basicInput("b", "physics", "mechanics", 0.5))

	_, err := Fuse(database, idx, FuseInput{IDs: []string{id1, id2}})
	if !errors.Is(err, errors.ErrValidation) {
		t.Errorf("expected VALIDATION, got %v", err)
	}
}

func TestFuse_MissingCapsule(t *testing.T) {
	database, idx := setupStore(t)

	id := mustCreate(t, database, idx, basicInput("real", "ai", "ml", 0.5))

	_, err := Fuse(database, idx, FuseInput{IDs: []string{id, "missing"}, Method: "merge"})
	if !errors.Is(err, errors.ErrNotFound) {
		t.Errorf("expected NOT_FOUND, got %v", err)
	}

	// Nothing was created
	out, listErr := List(database, ListInput{})
	if listErr != nil {
		t.Fatalf("List failed: %v", listErr)
	}
	if out.Pagination.Total != 1 {
		t.Errorf("failed fusion must not create a capsule, total = %d", out.Pagination.Total)
	}
}
