package mcp

import (
	"github.com/mark3labs/mcp-go/mcp"
)

var stringItems = map[string]any{"type": "string"}

var createToolDef = mcp.NewTool("capsule_create",
	mcp.WithDescription("Create a new knowledge capsule with insight, context, and provenance."),
	mcp.WithString("summary", mcp.Required(), mcp.Description("One-line statement of the insight")),
	mcp.WithString("details", mcp.Description("Full insight text (markdown allowed)")),
	mcp.WithNumber("confidence", mcp.Required(), mcp.Description("Confidence in [0,1]")),
	mcp.WithArray("sources", mcp.Description("Citations or provenance strings"), mcp.Items(stringItems)),
	mcp.WithString("domain", mcp.Required(), mcp.Description("Knowledge domain, e.g. 'ai'")),
	mcp.WithString("discipline", mcp.Required(), mcp.Description("Discipline within the domain")),
	mcp.WithArray("tags", mcp.Description("Tags for keyword search"), mcp.Items(stringItems)),
	mcp.WithArray("related_capsule_ids", mcp.Description("Ids of related capsules"), mcp.Items(stringItems)),
	mcp.WithString("discovered_by", mcp.Description("Who discovered the insight")),
	mcp.WithString("discovery_method", mcp.Description("How the insight was discovered")),
	mcp.WithString("original_source", mcp.Description("Where the insight came from")),
)

var getToolDef = mcp.NewTool("capsule_get",
	mcp.WithDescription("Fetch a capsule by id. Missing ids are a NOT_FOUND error."),
	mcp.WithString("id", mcp.Required(), mcp.Description("Capsule id")),
)

var updateToolDef = mcp.NewTool("capsule_update",
	mcp.WithDescription("Revise a capsule: replace details and/or append improvement notes. Always bumps the version."),
	mcp.WithString("id", mcp.Required(), mcp.Description("Capsule id")),
	mcp.WithString("new_details", mcp.Description("Replacement for the insight details")),
	mcp.WithArray("improvement_notes", mcp.Description("Notes appended to the capsule"), mcp.Items(stringItems)),
)

var listToolDef = mcp.NewTool("capsule_list",
	mcp.WithDescription("List capsule summaries in insertion order, optionally filtered by domain."),
	mcp.WithString("domain", mcp.Description("Exact domain filter")),
	mcp.WithNumber("limit", mcp.Description("Page size (default 20, max 100)")),
	mcp.WithNumber("offset", mcp.Description("Page offset")),
)

var searchToolDef = mcp.NewTool("capsule_search",
	mcp.WithDescription("Search capsules by keyword (domain, discipline, or tag). Unknown keywords return an empty list."),
	mcp.WithString("keyword", mcp.Required(), mcp.Description("Keyword to look up")),
)

var collideToolDef = mcp.NewTool("capsule_collide",
	mcp.WithDescription("Compute the semantic collision between two capsules and append it to the collision log."),
	mcp.WithString("id1", mcp.Required(), mcp.Description("First capsule id")),
	mcp.WithString("id2", mcp.Required(), mcp.Description("Second capsule id")),
)

var fuseToolDef = mcp.NewTool("capsule_fuse",
	mcp.WithDescription("Create a cross-domain fusion capsule from two or more existing capsules."),
	mcp.WithArray("ids", mcp.Required(), mcp.Description("At least 2 distinct capsule ids"), mcp.Items(stringItems)),
	mcp.WithString("method", mcp.Required(), mcp.Description("Fusion method name")),
)

var reproduceToolDef = mcp.NewTool("capsule_reproduce",
	mcp.WithDescription("Record a historical insight alongside a modern analysis as a new capsule."),
	mcp.WithString("historical_text", mcp.Required(), mcp.Description("The historical text being rediscovered")),
	mcp.WithString("modern_analysis", mcp.Required(), mcp.Description("Modern analysis of the text")),
	mcp.WithString("domain", mcp.Required(), mcp.Description("Domain of the historical insight")),
)

var verifyToolDef = mcp.NewTool("capsule_verify",
	mcp.WithDescription("Set a capsule's origin verification status."),
	mcp.WithString("id", mcp.Required(), mcp.Description("Capsule id")),
	mcp.WithString("result", mcp.Required(), mcp.Description("One of: verified, rejected")),
)

var traceToolDef = mcp.NewTool("capsule_trace",
	mcp.WithDescription("Trace a capsule's origin and revision history."),
	mcp.WithString("id", mcp.Required(), mcp.Description("Capsule id")),
)

var statusToolDef = mcp.NewTool("capsule_status",
	mcp.WithDescription("Report store totals: capsules, collision events, indexed keywords, domains."),
)

var collisionsToolDef = mcp.NewTool("capsule_collisions",
	mcp.WithDescription("Page through the collision log, newest first."),
	mcp.WithNumber("limit", mcp.Description("Page size (default 50, max 200)")),
	mcp.WithNumber("offset", mcp.Description("Page offset")),
)

var exportToolDef = mcp.NewTool("capsule_export",
	mcp.WithDescription("Export all capsules to a JSONL or markdown file."),
	mcp.WithString("path", mcp.Description("Destination path (defaults to ~/.kapsel/exports)")),
	mcp.WithString("format", mcp.Description("One of: jsonl, markdown (default jsonl)")),
)

var importToolDef = mcp.NewTool("capsule_import",
	mcp.WithDescription("Import capsules from a JSONL export file."),
	mcp.WithString("path", mcp.Required(), mcp.Description("Path of the export file")),
	mcp.WithString("mode", mcp.Description("Id collision mode: error or skip (default error)")),
)
