package mcp

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/kailabs/kapsel/internal/config"
	"github.com/kailabs/kapsel/internal/errors"
	"github.com/kailabs/kapsel/internal/index"
	"github.com/kailabs/kapsel/internal/ops"
)

// Handlers holds dependencies for MCP tool handlers.
type Handlers struct {
	db  *sql.DB
	idx *index.Index
	cfg *config.Config
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(db *sql.DB, idx *index.Index, cfg *config.Config) *Handlers {
	return &Handlers{db: db, idx: idx, cfg: cfg}
}

// Request types for each tool

// CreateRequest represents the arguments for create.
type CreateRequest struct {
	Summary         string   `json:"summary"`
	Details         string   `json:"details,omitempty"`
	Confidence      float64  `json:"confidence"`
	Sources         []string `json:"sources,omitempty"`
	Domain          string   `json:"domain"`
	Discipline      string   `json:"discipline"`
	Tags            []string `json:"tags,omitempty"`
	RelatedIDs      []string `json:"related_capsule_ids,omitempty"`
	DiscoveredBy    string   `json:"discovered_by,omitempty"`
	DiscoveryMethod string   `json:"discovery_method,omitempty"`
	OriginalSource  string   `json:"original_source,omitempty"`
}

// GetRequest represents the arguments for get.
type GetRequest struct {
	ID string `json:"id"`
}

// UpdateRequest represents the arguments for update.
type UpdateRequest struct {
	ID               string   `json:"id"`
	NewDetails       *string  `json:"new_details,omitempty"`
	ImprovementNotes []string `json:"improvement_notes,omitempty"`
}

// ListRequest represents the arguments for list.
type ListRequest struct {
	Domain *string `json:"domain,omitempty"`
	Limit  int     `json:"limit,omitempty"`
	Offset int     `json:"offset,omitempty"`
}

// SearchRequest represents the arguments for search.
type SearchRequest struct {
	Keyword string `json:"keyword"`
}

// CollideRequest represents the arguments for collide.
type CollideRequest struct {
	ID1 string `json:"id1"`
	ID2 string `json:"id2"`
}

// FuseRequest represents the arguments for fuse.
type FuseRequest struct {
	IDs    []string `json:"ids"`
	Method string   `json:"method"`
}

// ReproduceRequest represents the arguments for reproduce.
type ReproduceRequest struct {
	HistoricalText string `json:"historical_text"`
	ModernAnalysis string `json:"modern_analysis"`
	Domain         string `json:"domain"`
}

// VerifyRequest represents the arguments for verify.
type VerifyRequest struct {
	ID     string `json:"id"`
	Result string `json:"result"`
}

// TraceRequest represents the arguments for trace.
type TraceRequest struct {
	ID string `json:"id"`
}

// CollisionsRequest represents the arguments for collisions.
type CollisionsRequest struct {
	Limit  int `json:"limit,omitempty"`
	Offset int `json:"offset,omitempty"`
}

// ExportRequest represents the arguments for export.
type ExportRequest struct {
	Path   string `json:"path,omitempty"`
	Format string `json:"format,omitempty"`
}

// ImportRequest represents the arguments for import.
type ImportRequest struct {
	Path string `json:"path"`
	Mode string `json:"mode,omitempty"`
}

// Handler implementations

// HandleCreate handles the create tool call.
func (h *Handlers) HandleCreate(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[CreateRequest](req)
	if err != nil {
		return errorResult(err), nil
	}

	result, err := ops.Create(h.db, h.idx, ops.CreateInput{
		Summary:         input.Summary,
		Details:         input.Details,
		Confidence:      input.Confidence,
		Sources:         input.Sources,
		Domain:          input.Domain,
		Discipline:      input.Discipline,
		Tags:            input.Tags,
		RelatedIDs:      input.RelatedIDs,
		DiscoveredBy:    input.DiscoveredBy,
		DiscoveryMethod: input.DiscoveryMethod,
		OriginalSource:  input.OriginalSource,
	})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleGet handles the get tool call.
func (h *Handlers) HandleGet(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[GetRequest](req)
	if err != nil {
		return errorResult(err), nil
	}

	result, err := ops.Get(h.db, ops.GetInput{ID: input.ID})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleUpdate handles the update tool call.
func (h *Handlers) HandleUpdate(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[UpdateRequest](req)
	if err != nil {
		return errorResult(err), nil
	}

	result, err := ops.Update(h.db, ops.UpdateInput{
		ID:               input.ID,
		NewDetails:       input.NewDetails,
		ImprovementNotes: input.ImprovementNotes,
	})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleList handles the list tool call.
func (h *Handlers) HandleList(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[ListRequest](req)
	if err != nil {
		return errorResult(err), nil
	}

	result, err := ops.List(h.db, ops.ListInput{
		Domain: input.Domain,
		Limit:  input.Limit,
		Offset: input.Offset,
	})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleSearch handles the search tool call.
func (h *Handlers) HandleSearch(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[SearchRequest](req)
	if err != nil {
		return errorResult(err), nil
	}

	result, err := ops.SearchByKeyword(h.db, h.idx, ops.SearchInput{Keyword: input.Keyword})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleCollide handles the collide tool call.
func (h *Handlers) HandleCollide(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[CollideRequest](req)
	if err != nil {
		return errorResult(err), nil
	}

	result, err := ops.Collide(h.db, ops.CollideInput{ID1: input.ID1, ID2: input.ID2})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleFuse handles the fuse tool call.
func (h *Handlers) HandleFuse(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[FuseRequest](req)
	if err != nil {
		return errorResult(err), nil
	}

	result, err := ops.Fuse(h.db, h.idx, ops.FuseInput{IDs: input.IDs, Method: input.Method})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleReproduce handles the reproduce tool call.
func (h *Handlers) HandleReproduce(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[ReproduceRequest](req)
	if err != nil {
		return errorResult(err), nil
	}

	result, err := ops.Reproduce(h.db, h.idx, ops.ReproduceInput{
		HistoricalText: input.HistoricalText,
		ModernAnalysis: input.ModernAnalysis,
		Domain:         input.Domain,
	})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleVerify handles the verify tool call.
func (h *Handlers) HandleVerify(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[VerifyRequest](req)
	if err != nil {
		return errorResult(err), nil
	}

	result, err := ops.Verify(h.db, ops.VerifyInput{ID: input.ID, Result: input.Result})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleTrace handles the trace tool call.
func (h *Handlers) HandleTrace(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[TraceRequest](req)
	if err != nil {
		return errorResult(err), nil
	}

	result, err := ops.Trace(h.db, ops.TraceInput{ID: input.ID})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleStatus handles the status tool call.
func (h *Handlers) HandleStatus(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	result, err := ops.Status(h.db, h.idx)
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleCollisions handles the collisions tool call.
func (h *Handlers) HandleCollisions(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[CollisionsRequest](req)
	if err != nil {
		return errorResult(err), nil
	}

	result, err := ops.Collisions(h.db, ops.CollisionsInput{Limit: input.Limit, Offset: input.Offset})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleExport handles the export tool call.
func (h *Handlers) HandleExport(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[ExportRequest](req)
	if err != nil {
		return errorResult(err), nil
	}

	result, err := ops.Export(ctx, h.db, h.cfg, ops.ExportInput{
		Path:   input.Path,
		Format: ops.ExportFormat(input.Format),
	})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleImport handles the import tool call.
func (h *Handlers) HandleImport(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[ImportRequest](req)
	if err != nil {
		return errorResult(err), nil
	}

	result, err := ops.Import(h.db, h.idx, h.cfg, ops.ImportInput{
		Path: input.Path,
		Mode: ops.ImportMode(input.Mode),
	})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// Result helpers

// errorResult creates an MCP error result from any error.
// Uses IsError: true so MCP clients recognize failures properly.
// Internal error details are not exposed to avoid leaking file paths or
// SQL errors.
func errorResult(err error) *mcp.CallToolResult {
	var payload map[string]any

	if kErr, ok := err.(*errors.KapselError); ok {
		errorObj := map[string]any{
			"code":    kErr.Code,
			"message": kErr.Message,
			"status":  kErr.Status,
		}
		if kErr.Code != errors.ErrInternal && kErr.Details != nil {
			errorObj["details"] = kErr.Details
		}
		payload = map[string]any{"error": errorObj}
	} else {
		payload = map[string]any{
			"error": map[string]any{
				"code":    "INTERNAL",
				"message": "an internal error occurred",
				"status":  500,
			},
		}
	}

	content, _ := json.Marshal(payload)
	return &mcp.CallToolResult{
		Content: []mcp.Content{mcp.TextContent{Type: "text", Text: string(content)}},
		IsError: true,
	}
}

// successResult creates an MCP success result from any data.
func successResult(data any) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultJSON(data)
}
