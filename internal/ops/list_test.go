package ops

import (
	"fmt"
	"testing"
)

func TestList_InsertionOrder(t *testing.T) {
	database, idx := setupStore(t)

	ids := make([]string, 0, 3)
	for i := 0; i < 3; i++ {
		ids = append(ids, mustCreate(t, database, idx,
			basicInput(fmt.Sprintf("capsule %d", i), "ai", "ml", 0.5)))
	}

	out, err := List(database, ListInput{})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}

	if out.Sort != "insertion_order" {
		t.Errorf("Sort = %q", out.Sort)
	}
	if len(out.Items) != 3 {
		t.Fatalf("len(Items) = %d", len(out.Items))
	}
	for i, id := range ids {
		if out.Items[i].ID != id {
			t.Errorf("Items[%d].ID = %q, want %q", i, out.Items[i].ID, id)
		}
	}
}

func TestList_Pagination(t *testing.T) {
	database, idx := setupStore(t)

	for i := 0; i < 5; i++ {
		mustCreate(t, database, idx, basicInput(fmt.Sprintf("c%d", i), "ai", "ml", 0.5))
	}

	out, err := List(database, ListInput{Limit: 2, Offset: 0})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(out.Items) != 2 || !out.Pagination.HasMore || out.Pagination.Total != 5 {
		t.Errorf("page 1 = %+v", out.Pagination)
	}

	out, err = List(database, ListInput{Limit: 2, Offset: 4})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(out.Items) != 1 || out.Pagination.HasMore {
		t.Errorf("last page = %+v", out.Pagination)
	}
}

func TestList_DomainFilterNormalized(t *testing.T) {
	database, idx := setupStore(t)

	mustCreate(t, database, idx, basicInput("a", "AI", "ml", 0.5))
	mustCreate(t, database, idx, basicInput("b", "physics", "mechanics", 0.5))

	domain := "  ai "
	out, err := List(database, ListInput{Domain: &domain})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(out.Items) != 1 || out.Items[0].Domain != "AI" {
		t.Errorf("filtered items = %v", out.Items)
	}
}

func TestList_EmptyStore(t *testing.T) {
	database, _ := setupStore(t)

	out, err := List(database, ListInput{})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(out.Items) != 0 || out.Pagination.Total != 0 || out.Pagination.HasMore {
		t.Errorf("empty store output = %+v", out)
	}
}
