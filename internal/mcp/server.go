package mcp

import (
	"context"

	"planfact/internal/config"
	"planfact/internal/pipeline"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rs/zerolog/log"
)

// ServerName is reported to MCP clients during initialization.
const ServerName = "planfact"

// Server holds the state for the MCP server.
type Server struct {
	cfg      *config.AppConfig
	defaults pipeline.Options
	server   *mcp.Server
}

// NewServer creates a new MCP server and registers its tools.
func NewServer(cfg *config.AppConfig, defaults pipeline.Options, version string) *Server {
	s := &Server{
		cfg:      cfg,
		defaults: defaults,
		server:   mcp.NewServer(&mcp.Implementation{Name: ServerName, Version: version}, nil),
	}
	s.registerTools()
	return s
}

// Run serves MCP over stdio until the client disconnects or ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	log.Info().Str("data_path", s.cfg.DataPath).Msg("MCP server listening on stdio")
	return s.server.Run(ctx, &mcp.StdioTransport{})
}
