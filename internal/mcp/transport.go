package mcp

import (
	"net/http"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// HTTPHandlerOptions configures how the query engine's MCP endpoint is
// served over HTTP.
type HTTPHandlerOptions struct {
	// Stateless disables session management. The query tools are
	// independent request/response calls with no server-to-client
	// requests, so stateless serving is safe for remote deployments
	// behind a load balancer.
	Stateless bool
}

// NewHTTPHandler serves the MCP server over the Streamable HTTP
// transport. It mounts on a plain mux next to the health and landing
// handlers:
//
//	mux := http.NewServeMux()
//	mux.Handle("/mcp", mcp.NewHTTPHandler(server, nil))
//	mux.HandleFunc("/health", mcp.NewHealthHandler(store))
func NewHTTPHandler(server *Server, opts *HTTPHandlerOptions) http.Handler {
	if opts == nil {
		opts = &HTTPHandlerOptions{}
	}
	return mcp.NewStreamableHTTPHandler(func(r *http.Request) *mcp.Server {
		return server.MCPServer()
	}, &mcp.StreamableHTTPOptions{
		Stateless: opts.Stateless,
	})
}
