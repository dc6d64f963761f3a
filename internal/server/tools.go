package server

import (
	"context"
	"errors"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"pkdindustries/taxalert/internal/core"
	"pkdindustries/taxalert/internal/store"
)

const (
	MsgSelectOnly = "Only SELECT queries are allowed."
	MsgNoResults  = "No results found."
	MsgInserted   = "Tax alert inserted successfully."
	MsgUpdated    = "Update successful."
	MsgDeleted    = "Delete successful."
)

type QueryInput struct {
	SQL string `json:"sql" jsonschema:"a SELECT statement against the tax_alerts table"`
}

type InsertInput struct {
	Title        string `json:"title" jsonschema:"alert title"`
	Date         string `json:"date" jsonschema:"publication date"`
	Jurisdiction string `json:"jurisdiction" jsonschema:"country or region the alert applies to"`
	Topics       string `json:"topics" jsonschema:"comma separated topics"`
	Summary      string `json:"summary" jsonschema:"short summary"`
	FullText     string `json:"full_text" jsonschema:"full alert text"`
	SourceURL    string `json:"source_url" jsonschema:"link to the source"`
	Tags         string `json:"tags" jsonschema:"comma separated tags"`
}

type UpdateInput struct {
	SetClause string `json:"set_clause" jsonschema:"SET clause without the SET keyword, e.g. title='New title'"`
	Condition string `json:"condition" jsonschema:"WHERE condition without the WHERE keyword, e.g. id=1"`
}

type DeleteInput struct {
	Condition string `json:"condition" jsonschema:"WHERE condition without the WHERE keyword, e.g. id=1"`
}

func (s *Server) registerTools() {
	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "query",
		Description: "Run a read-only SELECT query against the tax_alerts table and return the matching rows.",
	}, s.handleQuery)

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "insert",
		Description: "Insert a new tax alert. created_at and updated_at are set by the server.",
	}, s.handleInsert)

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "update",
		Description: "Update tax alerts: UPDATE tax_alerts SET <set_clause> WHERE <condition>.",
	}, s.handleUpdate)

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "delete",
		Description: "Delete tax alerts: DELETE FROM tax_alerts WHERE <condition>.",
	}, s.handleDelete)
}

func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: text}},
	}
}

func (s *Server) handleQuery(ctx context.Context, _ *mcp.CallToolRequest, in QueryInput) (*mcp.CallToolResult, any, error) {
	return textResult(s.Query(ctx, in.SQL)), nil, nil
}

func (s *Server) handleInsert(ctx context.Context, _ *mcp.CallToolRequest, in InsertInput) (*mcp.CallToolResult, any, error) {
	return textResult(s.Insert(ctx, store.Alert(in))), nil, nil
}

func (s *Server) handleUpdate(ctx context.Context, _ *mcp.CallToolRequest, in UpdateInput) (*mcp.CallToolResult, any, error) {
	return textResult(s.Update(ctx, in.SetClause, in.Condition)), nil, nil
}

func (s *Server) handleDelete(ctx context.Context, _ *mcp.CallToolRequest, in DeleteInput) (*mcp.CallToolResult, any, error) {
	return textResult(s.Delete(ctx, in.Condition)), nil, nil
}

// Query returns the rows of a SELECT as tuples, one per line
func (s *Server) Query(ctx context.Context, sql string) string {
	core.WithTool(s.logger, "query", map[string]any{"sql": sql}).Info("query")

	rows, err := s.store.Query(ctx, sql)
	if errors.Is(err, store.ErrNotSelect) {
		return MsgSelectOnly
	}
	if err != nil {
		return fmt.Sprintf("Query error: %v", err)
	}
	if len(rows) == 0 {
		return MsgNoResults
	}
	return store.FormatRows(rows)
}

func (s *Server) Insert(ctx context.Context, a store.Alert) string {
	core.WithTool(s.logger, "insert", map[string]any{"title": a.Title}).Info("insert")

	if err := s.store.Insert(ctx, a); err != nil {
		return fmt.Sprintf("Insert error: %v", err)
	}
	return MsgInserted
}

// Update reports success whether or not any row matched
func (s *Server) Update(ctx context.Context, setClause, condition string) string {
	core.WithTool(s.logger, "update", map[string]any{"set_clause": setClause, "condition": condition}).Info("update")

	n, err := s.store.Update(ctx, setClause, condition)
	if err != nil {
		return fmt.Sprintf("Update error: %v", err)
	}
	s.logger.Info("update applied", "rows_affected", n)
	return MsgUpdated
}

// Delete reports success whether or not any row matched
func (s *Server) Delete(ctx context.Context, condition string) string {
	core.WithTool(s.logger, "delete", map[string]any{"condition": condition}).Info("delete")

	n, err := s.store.Delete(ctx, condition)
	if err != nil {
		return fmt.Sprintf("Delete error: %v", err)
	}
	s.logger.Info("delete applied", "rows_affected", n)
	return MsgDeleted
}
