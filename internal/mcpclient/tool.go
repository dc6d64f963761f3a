package mcpclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// Tool wraps a remote MCP tool to implement pollytool's tools.Tool
type Tool struct {
	session *mcp.ClientSession
	tool    *mcp.Tool
	schema  *jsonschema.Schema
}

func NewTool(session *mcp.ClientSession, tool *mcp.Tool) *Tool {
	return &Tool{
		session: session,
		tool:    tool,
		schema:  convertSchema(tool),
	}
}

// convertSchema re-decodes the advertised input schema; Title carries the tool name
func convertSchema(tool *mcp.Tool) *jsonschema.Schema {
	schema := &jsonschema.Schema{}
	if tool.InputSchema != nil {
		if data, err := json.Marshal(tool.InputSchema); err == nil {
			if err := json.Unmarshal(data, schema); err != nil {
				schema = &jsonschema.Schema{}
			}
		}
	}
	if schema.Type == "" {
		schema.Type = "object"
	}
	schema.Title = tool.Name
	if schema.Description == "" {
		schema.Description = tool.Description
	}
	return schema
}

func (t *Tool) GetSchema() *jsonschema.Schema { return t.schema }
func (t *Tool) GetName() string               { return t.tool.Name }
func (t *Tool) GetType() string               { return "mcp" }
func (t *Tool) GetSource() string             { return "mcp" }
func (t *Tool) SetContext(ctx any)            {}

// Execute calls the remote tool and returns its text output
func (t *Tool) Execute(ctx context.Context, args map[string]any) (string, error) {
	result, err := t.session.CallTool(ctx, &mcp.CallToolParams{
		Name:      t.tool.Name,
		Arguments: args,
	})
	if err != nil {
		return "", fmt.Errorf("call %s: %w", t.tool.Name, err)
	}

	text := contentText(result.Content)
	if result.IsError {
		if text == "" {
			return "", errors.New("tool returned error without content")
		}
		return "", fmt.Errorf("tool returned error: %s", text)
	}
	return text, nil
}

func contentText(content []mcp.Content) string {
	parts := make([]string, 0, len(content))
	for _, c := range content {
		if text, ok := c.(*mcp.TextContent); ok {
			parts = append(parts, text.Text)
			continue
		}
		if data, err := json.Marshal(c); err == nil {
			parts = append(parts, string(data))
		}
	}
	return strings.Join(parts, "\n")
}
