package mcp

import (
	"context"
	"fmt"
	"os"

	"github.com/Fuabioo/unsheet/internal/core"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"
)

const (
	serverName    = "unsheet"
	serverVersion = "0.1.0"
)

// Server wraps the MCP server with the loaded configuration.
type Server struct {
	mcp     *server.MCPServer
	cfg     *core.Config
	dataDir string
	logger  *zap.Logger
}

// NewServer creates the MCP server and registers the unsheet tools.
// cfg supplies the workdir and extraction defaults for every call.
func NewServer(cfg *core.Config, dataDir string, logger *zap.Logger) (*Server, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	s := &Server{
		cfg:     cfg,
		dataDir: dataDir,
		logger:  logger.Named("mcp"),
	}

	s.mcp = server.NewMCPServer(serverName, serverVersion)
	s.registerTools()

	return s, nil
}

func (s *Server) registerTools() {
	s.mcp.AddTool(mcp.NewTool("unsheet_list",
		mcp.WithDescription("Lists the sheet codes, their archive names and destination folders"),
	), s.handleList)

	s.mcp.AddTool(mcp.NewTool("unsheet_status",
		mcp.WithDescription("Reports which sheet archives are present and which folders are extracted"),
		mcp.WithArray("codes",
			mcp.Description("Sheet codes to inspect (default: all)"),
			mcp.WithStringItems()),
	), s.handleStatus)

	s.mcp.AddTool(mcp.NewTool("unsheet_extract",
		mcp.WithDescription("Extracts sheet archives into their folders, one at a time, stopping at the first failure"),
		mcp.WithArray("codes",
			mcp.Description("Sheet codes to extract (default: all)"),
			mcp.WithStringItems()),
		mcp.WithBoolean("native",
			mcp.Description("Use the built-in extractor instead of the external tool (default: configured mode)")),
		mcp.WithBoolean("overwrite",
			mcp.Description("Pass -o to the external tool (default: configured value)")),
	), s.handleExtract)

	s.mcp.AddTool(mcp.NewTool("unsheet_verify",
		mcp.WithDescription("Compares extracted folders with their archives and lists modified, added and missing files"),
		mcp.WithArray("codes",
			mcp.Description("Sheet codes to verify (default: all)"),
			mcp.WithStringItems()),
	), s.handleVerify)
}

// Serve starts the MCP server on stdio transport.
func (s *Server) Serve(ctx context.Context) error {
	stdioServer := server.NewStdioServer(s.mcp)
	if err := stdioServer.Listen(ctx, os.Stdin, os.Stdout); err != nil {
		return fmt.Errorf("failed to serve MCP: %w", err)
	}
	return nil
}
