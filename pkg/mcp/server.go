package mcp

import (
	"context"

	"github.com/mark3labs/mcp-go/server"
	"github.com/urmzd/zwhub/pkg/device"
	"github.com/urmzd/zwhub/pkg/device/schema"
	"github.com/urmzd/zwhub/pkg/unit"
	"github.com/urmzd/zwhub/pkg/zwave"
)

// UnitController exposes the Z-Wave unit layer below device.Controller.
type UnitController interface {
	Units() []zwave.UnitInfo
	SendCommand(ctx context.Context, id string, op unit.Op, value1, value2 uint32) error
}

// Server wraps the MCP server with zwhub's device control functionality
type Server struct {
	mcpServer  *server.MCPServer
	controller device.Controller
	units      UnitController
	validator  *schema.Validator
}

// NewServer creates a new MCP server for device control. units may be nil
// when no Z-Wave stick is attached; the unit tools are then not offered.
func NewServer(controller device.Controller, units UnitController, validator *schema.Validator) *Server {
	s := &Server{
		controller: controller,
		units:      units,
		validator:  validator,
	}

	// Create MCP server
	s.mcpServer = server.NewMCPServer(
		"zwhub",
		"1.0.0",
		server.WithToolCapabilities(true),
	)

	// Register all tools
	s.registerTools()

	return s
}

// ServeStdio starts the MCP server using stdio transport
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}
