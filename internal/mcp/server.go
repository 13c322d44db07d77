// ABOUTME: MCP server exposing a user's vitals to assistants over stdio.
// ABOUTME: Every tool acts on behalf of the session the server was started with.
package mcp

import (
	"context"
	"errors"

	"github.com/harperreed/vitals/internal/auth"
	"github.com/harperreed/vitals/internal/tracker"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// Server wraps the MCP server with tracker access.
type Server struct {
	mcpServer *mcp.Server
	svc       *tracker.Service
	session   *auth.Session
}

// NewServer creates a new MCP server for the user behind sess.
func NewServer(svc *tracker.Service, sess *auth.Session, version string) (*Server, error) {
	if sess == nil {
		return nil, auth.ErrUnauthorized
	}
	if svc == nil {
		return nil, errors.New("tracker service is required")
	}
	if version == "" {
		version = "dev"
	}

	mcpServer := mcp.NewServer(
		&mcp.Implementation{
			Name:    "vitals",
			Version: version,
		},
		nil,
	)

	s := &Server{
		mcpServer: mcpServer,
		svc:       svc,
		session:   sess,
	}

	s.registerTools()
	s.registerResources()

	return s, nil
}

// Serve starts the MCP server using stdio transport.
func (s *Server) Serve(ctx context.Context) error {
	return s.mcpServer.Run(ctx, &mcp.StdioTransport{})
}
