package web

import (
	"io/fs"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/kailabs/kapsel/internal/db"
	"github.com/kailabs/kapsel/internal/index"
	"github.com/kailabs/kapsel/internal/ops"
)

func setupTest(t *testing.T) (*Handlers, *http.ServeMux) {
	t.Helper()
	database, err := db.Init(t.TempDir())
	if err != nil {
		t.Fatalf("db.Init: %v", err)
	}
	t.Cleanup(func() { database.Close() })

	templateSub, err := fs.Sub(templateFS, "templates")
	if err != nil {
		t.Fatalf("template sub-FS: %v", err)
	}

	h := &Handlers{
		db:       database,
		idx:      index.New(),
		renderer: NewRenderer(templateSub, "test"),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /capsules", h.HandleList)
	mux.HandleFunc("GET /capsules/search", h.HandleSearch)
	mux.HandleFunc("GET /capsules/{id}", h.HandleDetail)
	mux.HandleFunc("GET /collisions", h.HandleCollisions)
	return h, mux
}

func createCapsule(t *testing.T, h *Handlers, summary, domain, discipline string) string {
	t.Helper()
	c, err := ops.Create(h.db, h.idx, ops.CreateInput{
		Summary:    summary,
		Confidence: 0.7,
		Domain:     domain,
		Discipline: discipline,
		Tags:       []string{"webtest"},
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	return c.ID
}

func TestHandleList(t *testing.T) {
	h, mux := setupTest(t)
	createCapsule(t, h, "Listed insight", "ai", "ml")

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest("GET", "/capsules", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "Listed insight") {
		t.Error("list page missing capsule summary")
	}
	if !strings.Contains(rec.Header().Get("Content-Type"), "text/html") {
		t.Errorf("Content-Type = %q", rec.Header().Get("Content-Type"))
	}
}

func TestHandleDetail(t *testing.T) {
	h, mux := setupTest(t)
	id := createCapsule(t, h, "Detailed insight", "ai", "ml")

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest("GET", "/capsules/"+id, nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	body := rec.Body.String()
	if !strings.Contains(body, "Detailed insight") {
		t.Error("detail page missing summary")
	}
	// Markdown rendered to HTML headings
	if !strings.Contains(body, "<h2>Core Insight</h2>") {
		t.Error("detail page missing rendered markdown")
	}
}

func TestHandleDetail_NotFound(t *testing.T) {
	_, mux := setupTest(t)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest("GET", "/capsules/missing", nil))

	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestHandleSearch(t *testing.T) {
	h, mux := setupTest(t)
	createCapsule(t, h, "Findable insight", "ai", "ml")

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest("GET", "/capsules/search?q=webtest", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "Findable insight") {
		t.Error("search results missing match")
	}
}

func TestHandleSearch_EmptyQueryShowsForm(t *testing.T) {
	_, mux := setupTest(t)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest("GET", "/capsules/search", nil))

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d", rec.Code)
	}
}

func TestHandleCollisions(t *testing.T) {
	h, mux := setupTest(t)
	id1 := createCapsule(t, h, "First", "ai", "ml")
	id2 := createCapsule(t, h, "Second", "philosophy", "ethics")

	if _, err := ops.Collide(h.db, ops.CollideInput{ID1: id1, ID2: id2}); err != nil {
		t.Fatalf("Collide failed: %v", err)
	}

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest("GET", "/collisions", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, id1) || !strings.Contains(body, id2) {
		t.Error("collision log missing capsule ids")
	}
	if !strings.Contains(body, "cross_domain") {
		t.Error("collision log missing type")
	}
}

func TestSecurityHeaders(t *testing.T) {
	_, mux := setupTest(t)
	handler := securityHeaders(mux)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest("GET", "/capsules", nil))

	if rec.Header().Get("X-Frame-Options") != "DENY" {
		t.Error("missing X-Frame-Options")
	}
	if rec.Header().Get("Content-Security-Policy") == "" {
		t.Error("missing Content-Security-Policy")
	}
}
