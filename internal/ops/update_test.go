package ops

import (
	"strings"
	"testing"

	"github.com/kailabs/kapsel/internal/errors"
)

func TestUpdate_Details(t *testing.T) {
	database, idx := setupStore(t)
	id := mustCreate(t, database, idx, basicInput("original", "ai", "ml", 0.5))

	updated, err := Update(database, UpdateInput{
		ID:         id,
		NewDetails: stringPtr("expanded details"),
	})
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	if updated.CoreInsight.Details != "expanded details" {
		t.Errorf("Details = %q", updated.CoreInsight.Details)
	}
	if updated.Evolution.Version != "1.1" {
		t.Errorf("Version = %q, want 1.1", updated.Evolution.Version)
	}

	found := false
	for _, m := range updated.Evolution.Modifications {
		if strings.Contains(m, "details revised in version 1.1") {
			found = true
		}
	}
	if !found {
		t.Errorf("modification log missing revision entry: %v", updated.Evolution.Modifications)
	}
}

func TestUpdate_ImprovementNotes(t *testing.T) {
	database, idx := setupStore(t)
	id := mustCreate(t, database, idx, basicInput("original", "ai", "ml", 0.5))

	updated, err := Update(database, UpdateInput{
		ID:               id,
		ImprovementNotes: []string{"note one", "note two"},
	})
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	if len(updated.Evolution.ImprovementNotes) != 2 {
		t.Errorf("ImprovementNotes = %v", updated.Evolution.ImprovementNotes)
	}

	found := false
	for _, m := range updated.Evolution.Modifications {
		if strings.Contains(m, "2 improvement note(s) added in version 1.1") {
			found = true
		}
	}
	if !found {
		t.Errorf("modification log = %v", updated.Evolution.Modifications)
	}
}

func TestUpdate_VersionAdvances(t *testing.T) {
	database, idx := setupStore(t)
	id := mustCreate(t, database, idx, basicInput("versioned", "ai", "ml", 0.5))

	original, err := Get(database, GetInput{ID: id})
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}

	wantVersions := []string{"1.1", "1.2", "1.3"}
	for _, want := range wantVersions {
		updated, err := Update(database, UpdateInput{ID: id, NewDetails: stringPtr("rev " + want)})
		if err != nil {
			t.Fatalf("Update failed: %v", err)
		}
		if updated.Evolution.Version != want {
			t.Errorf("Version = %q, want %q", updated.Evolution.Version, want)
		}
	}

	// Identity and creation time never change
	final, err := Get(database, GetInput{ID: id})
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if final.ID != original.ID || final.CreatedAt != original.CreatedAt {
		t.Error("update must not change id or created_at")
	}
	if final.Context.Domain != original.Context.Domain {
		t.Error("update must not change context")
	}
}

func TestUpdate_RequiresAField(t *testing.T) {
	database, idx := setupStore(t)
	id := mustCreate(t, database, idx, basicInput("unchanged", "ai", "ml", 0.5))

	_, err := Update(database, UpdateInput{ID: id})
	if !errors.Is(err, errors.ErrValidation) {
		t.Errorf("expected VALIDATION, got %v", err)
	}
}

func TestUpdate_NotFound(t *testing.T) {
	database, _ := setupStore(t)

	_, err := Update(database, UpdateInput{ID: "missing", NewDetails: stringPtr("x")})
	if !errors.Is(err, errors.ErrNotFound) {
		t.Errorf("expected NOT_FOUND, got %v", err)
	}
}

func TestUpdate_DoesNotTouchIndex(t *testing.T) {
	database, idx := setupStore(t)
	id := mustCreate(t, database, idx, CreateInput{
		Summary: "indexed", Confidence: 0.5,
		Domain: "ai", Discipline: "ml", Tags: []string{"stable"},
	})

	before := idx.KeywordCount()
	if _, err := Update(database, UpdateInput{ID: id, NewDetails: stringPtr("new")}); err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if idx.KeywordCount() != before {
		t.Error("update must not change the keyword index")
	}
	if ids := idx.Lookup("stable"); len(ids) != 1 {
		t.Errorf("Lookup(stable) = %v", ids)
	}
}
