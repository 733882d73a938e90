// Package mcp exposes the curation engine to AI assistants over the Model
// Context Protocol. Tools are registered by the tools subpackage.
package mcp

import (
	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"
)

const serverInstructions = "glean-engine tracks discovered software products through a " +
	"curation pipeline. Use list_queue to see tools awaiting review, get_tool to inspect " +
	"one with its claims, approve_tool or reject_tool to decide, skip_tool to move past one " +
	"without deciding, and pipeline_stats for overall pipeline health."

// Server wraps the mcp-go MCPServer with glean-engine patterns.
type Server struct {
	mcp    *server.MCPServer
	logger *zap.Logger
}

// NewServer creates a new MCP server instance.
func NewServer(name, version string, logger *zap.Logger) *Server {
	mcpServer := server.NewMCPServer(
		name,
		version,
		server.WithToolCapabilities(true),
		server.WithInstructions(serverInstructions),
	)

	return &Server{
		mcp:    mcpServer,
		logger: logger,
	}
}

// MCP returns the underlying MCPServer for tool registration.
func (s *Server) MCP() *server.MCPServer {
	return s.mcp
}

// NewStreamableHTTPServer creates an HTTP transport server wrapping this MCP server.
// The HTTP mux handles routing to /mcp, so no endpoint path is configured here.
func (s *Server) NewStreamableHTTPServer() *server.StreamableHTTPServer {
	return server.NewStreamableHTTPServer(
		s.mcp,
		server.WithStateLess(true),
	)
}
