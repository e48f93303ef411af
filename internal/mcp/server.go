package mcp

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/oic-analytics/adei-insight/internal/engine"
)

// Server wraps the MCP server with its engine dependency.
type Server struct {
	server *mcp.Server
	engine *engine.Engine
}

// Config holds server dependencies.
type Config struct {
	Engine *engine.Engine
}

// NewServer creates a configured MCP server with tools registered.
func NewServer(cfg *Config) *Server {
	impl := &mcp.Implementation{
		Name:    "adei-insight-server",
		Version: "v0.1.0",
	}

	server := mcp.NewServer(impl, nil)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "ask_question",
		Description: "Ask a natural-language question about the ADEI country-indicator dataset. Returns an answer with confidence and cited source documents.",
	}, makeAskHandler(cfg.Engine))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "record_feedback",
		Description: "Rate the quality of a previous answer using its interaction id.",
	}, makeFeedbackHandler(cfg.Engine))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "refresh_corpus",
		Description: "Force an immediate rebuild of the document corpus from the indicator store.",
	}, makeRefreshHandler(cfg.Engine))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_corpus_status",
		Description: "Get the current corpus snapshot status: epoch, document counts, year span and index readiness.",
	}, makeStatusHandler(cfg.Engine))

	return &Server{
		server: server,
		engine: cfg.Engine,
	}
}

// Run starts the server with stdio transport (blocks until client disconnects).
func (s *Server) Run(ctx context.Context) error {
	return s.server.Run(ctx, &mcp.StdioTransport{})
}

// MCPServer returns the underlying MCP server instance.
// Used by transport handlers that need to wrap the server.
func (s *Server) MCPServer() *mcp.Server {
	return s.server
}
