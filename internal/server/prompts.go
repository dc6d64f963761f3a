package server

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"pkdindustries/taxalert/internal/store"
)

const SchemaPrompt = "schema_info"

func (s *Server) registerPrompts() {
	s.mcp.AddPrompt(&mcp.Prompt{
		Name:        SchemaPrompt,
		Description: "Column layout of the tax_alerts table",
	}, handleSchemaInfo)
}

func handleSchemaInfo(_ context.Context, _ *mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	return &mcp.GetPromptResult{
		Description: "tax_alerts schema",
		Messages: []*mcp.PromptMessage{
			{Role: "user", Content: &mcp.TextContent{Text: store.SchemaInfo}},
		},
	}, nil
}
