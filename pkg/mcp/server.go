package mcp

import (
	"github.com/mark3labs/mcp-go/server"

	"github.com/gnana997/uitokens/pkg/mcplog"
	"github.com/gnana997/uitokens/pkg/service"
)

// ServerName is reported to MCP clients during initialization.
const ServerName = "uitokens"

var serverVersion = "0.1.0-dev"

// SetVersion overrides the version reported to clients.
func SetVersion(v string) {
	if v != "" {
		serverVersion = v
	}
}

// Server implements the MCP server for uitokens, exposing token extraction
// and lookup tools.
type Server struct {
	mcpServer *server.MCPServer
	svc       *service.Service
	logger    *mcplog.Logger // nil disables call logging
}

// NewServer creates a new MCP server backed by svc. If logger is non-nil
// every tool call is recorded as a JSONL entry.
func NewServer(svc *service.Service, logger *mcplog.Logger) *Server {
	s := &Server{svc: svc, logger: logger}

	opts := []server.ServerOption{
		server.WithToolCapabilities(false),
		server.WithRecovery(),
	}
	if logger != nil {
		opts = append(opts, server.WithToolHandlerMiddleware(s.loggingMiddleware()))
	}

	s.mcpServer = server.NewMCPServer(ServerName, serverVersion, opts...)

	s.mcpServer.AddTools(
		server.ServerTool{Tool: extractTokensTool(), Handler: s.handleExtractTokens},
		server.ServerTool{Tool: getTokensTool(), Handler: s.handleGetTokens},
		server.ServerTool{Tool: listCategoriesTool(), Handler: s.handleListCategories},
	)

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}
