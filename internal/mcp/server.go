// Package mcp exposes glide's control surface as MCP tools over stdio, so
// agents can drive the window manager through the same command set as the
// CLI.
package mcp

import (
	"context"
	"fmt"
	"strings"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/glidewm/glide/internal/ipc"
	"github.com/glidewm/glide/internal/manager"
)

const (
	ServerName    = "glide"
	ServerVersion = "0.1.0"
)

// Server is the MCP server bridging tools to the daemon's control socket.
type Server struct {
	mcpServer *mcpsdk.Server
	client    *ipc.Client
}

// NewServer creates the MCP server.
func NewServer() *Server {
	s := &Server{client: ipc.NewClient()}
	s.mcpServer = mcpsdk.NewServer(
		&mcpsdk.Implementation{
			Name:    ServerName,
			Version: ServerVersion,
		},
		nil,
	)
	s.registerTools()
	return s
}

// Run serves MCP on stdio, blocking until the transport closes.
func (s *Server) Run(ctx context.Context) error {
	return s.mcpServer.Run(ctx, &mcpsdk.StdioTransport{})
}

func (s *Server) registerTools() {
	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name: "glide_command",
		Description: "Send a layout command to the running glide daemon. The command uses the " +
			"same word form as the CLI, e.g. \"focus left\", \"move right\", \"split vertical\", " +
			"\"group tabbed\", \"resize right 40\", \"toggle-floating\", \"balance\".",
	}, s.handleCommand)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name: "glide_status",
		Description: "Report the glide daemon status: active space, window count, layout mode, " +
			"and a diagram of the current layout tree.",
	}, s.handleStatus)
}

// CommandInput is the glide_command argument payload.
type CommandInput struct {
	Command string `json:"command" jsonschema:"the command words, e.g. 'focus left'"`
}

// CommandOutput acknowledges a delivered command.
type CommandOutput struct {
	Delivered bool `json:"delivered"`
}

func (s *Server) handleCommand(_ context.Context, _ *mcpsdk.CallToolRequest, args CommandInput) (*mcpsdk.CallToolResult, CommandOutput, error) {
	cmd, err := manager.ParseCommand(strings.Fields(args.Command))
	if err != nil {
		return nil, CommandOutput{}, err
	}
	if err := s.client.SendCommand(cmd); err != nil {
		return nil, CommandOutput{}, err
	}
	return &mcpsdk.CallToolResult{
		Content: []mcpsdk.Content{
			&mcpsdk.TextContent{Text: fmt.Sprintf("Sent %q to glide", args.Command)},
		},
	}, CommandOutput{Delivered: true}, nil
}

// StatusInput has no fields; glide_status takes no arguments.
type StatusInput struct{}

// StatusOutput is the daemon status snapshot.
type StatusOutput struct {
	ActiveSpace   uint64 `json:"active_space"`
	SpaceCount    int    `json:"space_count"`
	WindowCount   int    `json:"window_count"`
	LayoutMode    string `json:"layout_mode"`
	Animating     bool   `json:"animating"`
	UptimeSeconds int64  `json:"uptime_seconds"`
	Tree          string `json:"tree,omitempty"`
}

func (s *Server) handleStatus(_ context.Context, _ *mcpsdk.CallToolRequest, _ StatusInput) (*mcpsdk.CallToolResult, StatusOutput, error) {
	status, err := s.client.GetStatus()
	if err != nil {
		return nil, StatusOutput{}, err
	}
	out := StatusOutput{
		ActiveSpace:   status.ActiveSpace,
		SpaceCount:    status.SpaceCount,
		WindowCount:   status.WindowCount,
		LayoutMode:    status.LayoutMode,
		Animating:     status.Animating,
		UptimeSeconds: status.UptimeSeconds,
		Tree:          status.Tree,
	}
	return &mcpsdk.CallToolResult{
		Content: []mcpsdk.Content{
			&mcpsdk.TextContent{Text: fmt.Sprintf(
				"space=%d windows=%d mode=%s animating=%v\n%s",
				out.ActiveSpace, out.WindowCount, out.LayoutMode, out.Animating, out.Tree)},
		},
	}, out, nil
}
