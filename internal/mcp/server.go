// Package mcp exposes the calculator as Model Context Protocol tools.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/ternarybob/calc/internal/keypad"
	"github.com/ternarybob/calc/pkg/calc"
)

// Server wraps a keypad to provide MCP tool access.
type Server struct {
	pad    *keypad.Keypad
	server *server.MCPServer
}

// NewServer creates an MCP server whose tools drive pad.
func NewServer(pad *keypad.Keypad, version string) *Server {
	s := &Server{pad: pad}

	mcpServer := server.NewMCPServer(
		"calc",
		version,
		server.WithToolCapabilities(true),
	)
	s.registerTools(mcpServer)

	s.server = mcpServer
	return s
}

func (s *Server) registerTools(mcpServer *server.MCPServer) {
	mcpServer.AddTool(
		mcp.NewTool("append_number",
			mcp.WithDescription("Type a digit or decimal point into the current operand. A second decimal point is ignored."),
			mcp.WithString("digit",
				mcp.Required(),
				mcp.Description("One of 0-9 or '.'"),
			),
		),
		s.handleAppendNumber,
	)

	mcpServer.AddTool(
		mcp.NewTool("choose_operation",
			mcp.WithDescription("Choose the next operator. A pending operation with a second operand is computed first (no precedence)."),
			mcp.WithString("operator",
				mcp.Required(),
				mcp.Description("One of +, -, *, /"),
			),
		),
		s.handleChooseOperation,
	)

	mcpServer.AddTool(
		mcp.NewTool("compute",
			mcp.WithDescription("Apply the pending operation. Division by zero displays 'Error'."),
		),
		s.handleCompute,
	)

	mcpServer.AddTool(
		mcp.NewTool("clear",
			mcp.WithDescription("Reset the calculator."),
		),
		s.handleClear,
	)

	mcpServer.AddTool(
		mcp.NewTool("press_keys",
			mcp.WithDescription("Press a sequence of keys, e.g. '2 + 3 * 4 ='. Keys: digits or whole numbers (12, .5), + - * / x, =, C"),
			mcp.WithString("keys",
				mcp.Required(),
				mcp.Description("Whitespace-separated key labels"),
			),
		),
		s.handlePressKeys,
	)

	mcpServer.AddTool(
		mcp.NewTool("display",
			mcp.WithDescription("Show the calculator state without changing it."),
		),
		s.handleDisplay,
	)
}

func (s *Server) handleAppendNumber(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	digit, err := calc.ParseDigit(request.GetString("digit", ""))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return snapshotResult(s.pad.Do(func(c *calc.Calculator) {
		c.AppendNumber(digit)
	}))
}

func (s *Server) handleChooseOperation(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	op, err := calc.ParseOperator(request.GetString("operator", ""))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return snapshotResult(s.pad.Do(func(c *calc.Calculator) {
		c.ChooseOperation(op)
	}))
}

func (s *Server) handleCompute(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return snapshotResult(s.pad.Do((*calc.Calculator).Compute))
}

func (s *Server) handleClear(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return snapshotResult(s.pad.Do((*calc.Calculator).Clear))
}

func (s *Server) handlePressKeys(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	keys := strings.Fields(request.GetString("keys", ""))
	if len(keys) == 0 {
		return mcp.NewToolResultError("keys parameter is required"), nil
	}

	snap, err := s.pad.PressAll(keys)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("press keys failed: %v", err)), nil
	}
	return snapshotResult(snap)
}

func (s *Server) handleDisplay(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return snapshotResult(s.pad.Snapshot())
}

func snapshotResult(snap calc.Snapshot) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("marshal snapshot failed: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

// ServeStdio serves MCP over stdin/stdout until EOF.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.server)
}

// HTTPHandler returns a streamable HTTP transport for the server.
func (s *Server) HTTPHandler() http.Handler {
	return server.NewStreamableHTTPServer(s.server)
}
