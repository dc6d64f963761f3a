// Package mcpclient connects to an MCP tool server and exposes its tools to pollytool.
package mcpclient

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"

	"github.com/alexschlessinger/pollytool/tools"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"pkdindustries/taxalert/internal/core"
)

const (
	ClientName    = "taxchat"
	ClientVersion = "v1.0.0"

	schemaPrompt = "schema_info"
)

var ErrUnknownTransport = errors.New("unknown transport")

// Session is an open MCP client session with the tools it advertised at connect time
type Session struct {
	cs     *mcp.ClientSession
	tools  []*mcp.Tool
	logger *slog.Logger
}

// NewTransport builds the client transport. endpoint is a URL for sse and
// http and a command line for stdio.
func NewTransport(transport core.Transport, endpoint string, logger *slog.Logger) (mcp.Transport, error) {
	switch transport {
	case core.TransportSSE:
		return &mcp.SSEClientTransport{Endpoint: endpoint}, nil
	case core.TransportHTTP:
		return &mcp.StreamableClientTransport{Endpoint: endpoint}, nil
	case core.TransportStdio:
		fields := strings.Fields(endpoint)
		if len(fields) == 0 {
			return nil, errors.New("stdio transport needs a command")
		}
		cmd := exec.Command(fields[0], fields[1:]...)
		cmd.Stderr = core.LogWriter(logger.With("server", fields[0]), slog.LevelDebug)
		return &mcp.CommandTransport{Command: cmd}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownTransport, transport)
	}
}

// Connect opens a session over the named transport and lists the server's tools
func Connect(ctx context.Context, transport core.Transport, endpoint string, logger *slog.Logger) (*Session, error) {
	t, err := NewTransport(transport, endpoint, logger)
	if err != nil {
		return nil, err
	}
	logger.Info("connecting to tool server", "transport", transport, "endpoint", endpoint)
	return ConnectTransport(ctx, t, logger)
}

// ConnectTransport opens a session over t and lists the server's tools
func ConnectTransport(ctx context.Context, t mcp.Transport, logger *slog.Logger) (*Session, error) {
	client := mcp.NewClient(&mcp.Implementation{Name: ClientName, Version: ClientVersion}, nil)

	cs, err := client.Connect(ctx, t, nil)
	if err != nil {
		return nil, fmt.Errorf("connect to tool server: %w", err)
	}

	listed, err := listTools(ctx, cs)
	if err != nil {
		cs.Close()
		return nil, fmt.Errorf("list tools: %w", err)
	}

	logger.Info("connected to tool server", "tools", len(listed))
	for _, tool := range listed {
		logger.Debug("discovered tool", "name", tool.Name, "description", tool.Description)
	}

	return &Session{cs: cs, tools: listed, logger: logger}, nil
}

func listTools(ctx context.Context, cs *mcp.ClientSession) ([]*mcp.Tool, error) {
	var all []*mcp.Tool
	params := &mcp.ListToolsParams{}
	for {
		res, err := cs.ListTools(ctx, params)
		if err != nil {
			return nil, err
		}
		all = append(all, res.Tools...)
		if res.NextCursor == "" {
			return all, nil
		}
		params = &mcp.ListToolsParams{Cursor: res.NextCursor}
	}
}

// Tools returns the advertised tools as pollytool tools
func (s *Session) Tools() []tools.Tool {
	out := make([]tools.Tool, 0, len(s.tools))
	for _, t := range s.tools {
		out = append(out, NewTool(s.cs, t))
	}
	return out
}

// ToolInfo returns the names and descriptions of the advertised tools
func (s *Session) ToolInfo() []core.ToolInfo {
	out := make([]core.ToolInfo, 0, len(s.tools))
	for _, t := range s.tools {
		out = append(out, core.ToolInfo{Name: t.Name, Description: t.Description})
	}
	return out
}

// SchemaInfo fetches the schema_info prompt text. A server that does not
// advertise it yields an empty string.
func (s *Session) SchemaInfo(ctx context.Context) (string, error) {
	list, err := s.cs.ListPrompts(ctx, &mcp.ListPromptsParams{})
	if err != nil {
		s.logger.Debug("server does not list prompts", "error", err)
		return "", nil
	}

	found := false
	for _, p := range list.Prompts {
		if p.Name == schemaPrompt {
			found = true
			break
		}
	}
	if !found {
		return "", nil
	}

	res, err := s.cs.GetPrompt(ctx, &mcp.GetPromptParams{Name: schemaPrompt})
	if err != nil {
		return "", fmt.Errorf("get %s prompt: %w", schemaPrompt, err)
	}

	var parts []string
	for _, m := range res.Messages {
		if text, ok := m.Content.(*mcp.TextContent); ok {
			parts = append(parts, text.Text)
		}
	}
	return strings.Join(parts, "\n"), nil
}

// Close ends the session; for stdio this also stops the server process
func (s *Session) Close() error {
	return s.cs.Close()
}
