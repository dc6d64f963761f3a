package mcpclient

import (
	"context"
	"errors"
	"log/slog"
	"path/filepath"
	"strings"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"pkdindustries/taxalert/internal/core"
	"pkdindustries/taxalert/internal/server"
	"pkdindustries/taxalert/internal/store"
)

var discard = slog.New(slog.DiscardHandler)

func connectInMemory(t *testing.T, srv *mcp.Server) *Session {
	t.Helper()
	ctx := context.Background()
	st, ct := mcp.NewInMemoryTransports()

	ss, err := srv.Connect(ctx, st, nil)
	if err != nil {
		t.Fatalf("server connect failed: %v", err)
	}
	t.Cleanup(func() { ss.Close() })

	sess, err := ConnectTransport(ctx, ct, discard)
	if err != nil {
		t.Fatalf("ConnectTransport failed: %v", err)
	}
	t.Cleanup(func() { sess.Close() })
	return sess
}

func alertServer(t *testing.T) *mcp.Server {
	t.Helper()
	st, err := store.New("sqlite", filepath.Join(t.TempDir(), "alerts.db"))
	if err != nil {
		t.Fatal(err)
	}
	if err := st.Init(context.Background()); err != nil {
		t.Fatal(err)
	}
	return server.New(st, discard, "test").MCP()
}

func TestNewTransport(t *testing.T) {
	tr, err := NewTransport(core.TransportSSE, "http://localhost:8001/sse", discard)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := tr.(*mcp.SSEClientTransport); !ok {
		t.Errorf("expected SSE transport, got %T", tr)
	}

	tr, err = NewTransport(core.TransportHTTP, "http://localhost:8001/mcp", discard)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := tr.(*mcp.StreamableClientTransport); !ok {
		t.Errorf("expected streamable transport, got %T", tr)
	}

	tr, err = NewTransport(core.TransportStdio, "taxalertd --transport stdio", discard)
	if err != nil {
		t.Fatal(err)
	}
	ct, ok := tr.(*mcp.CommandTransport)
	if !ok {
		t.Fatalf("expected command transport, got %T", tr)
	}
	if got := strings.Join(ct.Command.Args, " "); got != "taxalertd --transport stdio" {
		t.Errorf("unexpected command line: %q", got)
	}
}

func TestNewTransport_Errors(t *testing.T) {
	if _, err := NewTransport("carrier-pigeon", "x", discard); !errors.Is(err, ErrUnknownTransport) {
		t.Errorf("expected ErrUnknownTransport, got %v", err)
	}
	if _, err := NewTransport(core.TransportStdio, "   ", discard); err == nil {
		t.Error("expected error for empty command")
	}
}

func TestSession_ToolsAndExecute(t *testing.T) {
	sess := connectInMemory(t, alertServer(t))

	info := sess.ToolInfo()
	if len(info) != 4 {
		t.Fatalf("expected 4 tools, got %d", len(info))
	}

	var query *Tool
	for _, tool := range sess.Tools() {
		if tool.GetName() == "query" {
			query = tool.(*Tool)
		}
	}
	if query == nil {
		t.Fatal("query tool not found")
	}

	schema := query.GetSchema()
	if schema.Title != "query" {
		t.Errorf("expected schema title query, got %q", schema.Title)
	}
	if _, ok := schema.Properties["sql"]; !ok {
		t.Errorf("expected sql property, got %v", schema.Properties)
	}

	out, err := query.Execute(context.Background(), map[string]any{"sql": "SELECT 1"})
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if out != "(1)" {
		t.Errorf("expected (1), got %q", out)
	}

	out, err = query.Execute(context.Background(), map[string]any{"sql": "DELETE FROM tax_alerts"})
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if out != server.MsgSelectOnly {
		t.Errorf("expected rejection text, got %q", out)
	}
}

func TestSession_SchemaInfo(t *testing.T) {
	sess := connectInMemory(t, alertServer(t))

	info, err := sess.SchemaInfo(context.Background())
	if err != nil {
		t.Fatalf("SchemaInfo failed: %v", err)
	}
	if info != store.SchemaInfo {
		t.Errorf("unexpected schema info: %q", info)
	}
}

type echoInput struct {
	Text string `json:"text"`
}

func TestSession_NoSchemaPrompt(t *testing.T) {
	srv := mcp.NewServer(&mcp.Implementation{Name: "bare", Version: "v0"}, nil)
	mcp.AddTool(srv, &mcp.Tool{Name: "echo", Description: "echo text"},
		func(ctx context.Context, req *mcp.CallToolRequest, in echoInput) (*mcp.CallToolResult, any, error) {
			return &mcp.CallToolResult{Content: []mcp.Content{&mcp.TextContent{Text: in.Text}}}, nil, nil
		})

	sess := connectInMemory(t, srv)
	info, err := sess.SchemaInfo(context.Background())
	if err != nil {
		t.Fatalf("SchemaInfo failed: %v", err)
	}
	if info != "" {
		t.Errorf("expected no schema info, got %q", info)
	}
}

func TestTool_ErrorResult(t *testing.T) {
	srv := mcp.NewServer(&mcp.Implementation{Name: "failing", Version: "v0"}, nil)
	mcp.AddTool(srv, &mcp.Tool{Name: "fail", Description: "always fails"},
		func(ctx context.Context, req *mcp.CallToolRequest, in echoInput) (*mcp.CallToolResult, any, error) {
			return &mcp.CallToolResult{
				IsError: true,
				Content: []mcp.Content{&mcp.TextContent{Text: "nope"}},
			}, nil, nil
		})

	sess := connectInMemory(t, srv)
	tool := sess.Tools()[0]
	_, err := tool.Execute(context.Background(), map[string]any{"text": "x"})
	if err == nil || !strings.Contains(err.Error(), "nope") {
		t.Errorf("expected tool error carrying its text, got %v", err)
	}
}
