package mcp

import (
	"database/sql"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/kailabs/kapsel/internal/config"
	"github.com/kailabs/kapsel/internal/index"
)

// toolEntry pairs a tool definition with a handler factory.
type toolEntry struct {
	def     mcp.Tool
	handler func(*Handlers) server.ToolHandlerFunc
}

// toolRegistry maps tool names to their definitions and handler factories.
var toolRegistry = map[string]toolEntry{
	"capsule_create": {
		def:     createToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleCreate },
	},
	"capsule_get": {
		def:     getToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleGet },
	},
	"capsule_update": {
		def:     updateToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleUpdate },
	},
	"capsule_list": {
		def:     listToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleList },
	},
	"capsule_search": {
		def:     searchToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleSearch },
	},
	"capsule_collide": {
		def:     collideToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleCollide },
	},
	"capsule_fuse": {
		def:     fuseToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleFuse },
	},
	"capsule_reproduce": {
		def:     reproduceToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleReproduce },
	},
	"capsule_verify": {
		def:     verifyToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleVerify },
	},
	"capsule_trace": {
		def:     traceToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleTrace },
	},
	"capsule_status": {
		def:     statusToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleStatus },
	},
	"capsule_collisions": {
		def:     collisionsToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleCollisions },
	},
	"capsule_export": {
		def:     exportToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleExport },
	},
	"capsule_import": {
		def:     importToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleImport },
	},
}

// AllToolNames returns a list of all valid tool names.
func AllToolNames() []string {
	names := make([]string, 0, len(toolRegistry))
	for name := range toolRegistry {
		names = append(names, name)
	}
	return names
}

// ValidateDisabledTools returns a list of unknown tool names from the given list.
func ValidateDisabledTools(names []string) []string {
	unknown := make([]string, 0)
	for _, name := range names {
		if _, ok := toolRegistry[name]; !ok {
			unknown = append(unknown, name)
		}
	}
	return unknown
}

// NewServer creates a new MCP server with Kapsel tools registered.
// Tools listed in cfg.DisabledTools are excluded from registration.
func NewServer(db *sql.DB, idx *index.Index, cfg *config.Config, version string) *server.MCPServer {
	s := server.NewMCPServer(
		"kapsel",
		version,
		server.WithToolCapabilities(true),
	)

	h := NewHandlers(db, idx, cfg)

	disabled := make(map[string]bool)
	for _, name := range cfg.DisabledTools {
		disabled[name] = true
	}

	for name, entry := range toolRegistry {
		if disabled[name] {
			continue
		}
		s.AddTool(entry.def, entry.handler(h))
	}

	return s
}

// Run starts the MCP server using stdio transport.
func Run(db *sql.DB, idx *index.Index, cfg *config.Config, version string) error {
	s := NewServer(db, idx, cfg, version)
	return server.ServeStdio(s)
}
