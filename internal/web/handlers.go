package web

import (
	"database/sql"
	stderrors "errors"
	"html/template"
	"log"
	"net/http"
	"strconv"

	"github.com/kailabs/kapsel/internal/capsule"
	"github.com/kailabs/kapsel/internal/errors"
	"github.com/kailabs/kapsel/internal/index"
	"github.com/kailabs/kapsel/internal/ops"
)

// Handlers holds dependencies for the read-only web UI.
type Handlers struct {
	db       *sql.DB
	idx      *index.Index
	renderer *Renderer
}

type listPage struct {
	Output *ops.ListOutput
	Domain string
}

// HandleList renders the paginated capsule list, optionally filtered by domain.
func (h *Handlers) HandleList(w http.ResponseWriter, r *http.Request) {
	input := ops.ListInput{
		Limit:  parseIntParam(r, "limit", 0),
		Offset: parseIntParam(r, "offset", 0),
	}

	domain := r.URL.Query().Get("domain")
	if domain != "" {
		input.Domain = &domain
	}

	out, err := ops.List(h.db, input)
	if err != nil {
		h.serveError(w, err)
		return
	}

	h.renderer.renderPage(w, "list.html", "Capsules", listPage{Output: out, Domain: domain})
}

type detailPage struct {
	Capsule  *capsule.Capsule
	Rendered template.HTML
}

// HandleDetail renders a single capsule with its markdown converted to HTML.
func (h *Handlers) HandleDetail(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	c, err := ops.Get(h.db, ops.GetInput{ID: id})
	if err != nil {
		h.serveError(w, err)
		return
	}

	h.renderer.renderPage(w, "detail.html", c.CoreInsight.Summary, detailPage{
		Capsule:  c,
		Rendered: renderMarkdown(c),
	})
}

type searchPage struct {
	Output  *ops.SearchOutput
	Keyword string
}

// HandleSearch renders keyword search results over the inverted index.
func (h *Handlers) HandleSearch(w http.ResponseWriter, r *http.Request) {
	keyword := r.URL.Query().Get("q")
	if keyword == "" {
		h.renderer.renderPage(w, "search.html", "Search", searchPage{})
		return
	}

	out, err := ops.SearchByKeyword(h.db, h.idx, ops.SearchInput{Keyword: keyword})
	if err != nil {
		h.serveError(w, err)
		return
	}

	h.renderer.renderPage(w, "search.html", "Search", searchPage{Output: out, Keyword: keyword})
}

type collisionsPage struct {
	Output *ops.CollisionsOutput
}

// HandleCollisions renders the collision log, newest first.
func (h *Handlers) HandleCollisions(w http.ResponseWriter, r *http.Request) {
	out, err := ops.Collisions(h.db, ops.CollisionsInput{
		Limit:  parseIntParam(r, "limit", 0),
		Offset: parseIntParam(r, "offset", 0),
	})
	if err != nil {
		h.serveError(w, err)
		return
	}

	h.renderer.renderPage(w, "collisions.html", "Collisions", collisionsPage{Output: out})
}

func (h *Handlers) serveError(w http.ResponseWriter, err error) {
	var ke *errors.KapselError
	if !stderrors.As(err, &ke) {
		ke = errors.NewInternal(err)
	}
	msg := ke.Message
	if ke.Status >= 500 {
		log.Printf("web: %v", err)
		msg = "Internal Server Error"
	}
	h.renderer.renderError(w, ke.Status, msg)
}

func parseIntParam(r *http.Request, name string, fallback int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return n
}
