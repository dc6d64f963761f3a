package testing

import (
	"context"
	"sync"
	"time"

	"github.com/alexschlessinger/pollytool/llm"
	"github.com/alexschlessinger/pollytool/messages"
	"github.com/alexschlessinger/pollytool/sessions"
	"github.com/alexschlessinger/pollytool/tools"
	"github.com/google/jsonschema-go/jsonschema"

	"pkdindustries/taxalert/internal/core"
)

// MockLLM implements core.LLM with scripted replies, one per call
type MockLLM struct {
	mu        sync.Mutex
	Responses []messages.ChatMessage
	Error     error // returned once Responses are exhausted
	Requests  []*llm.CompletionRequest
}

// Reply appends a plain assistant reply
func (m *MockLLM) Reply(content string) *MockLLM {
	m.Responses = append(m.Responses, messages.ChatMessage{Role: "assistant", Content: content})
	return m
}

// CallTool appends an assistant message requesting one tool call
func (m *MockLLM) CallTool(id, name, arguments string) *MockLLM {
	m.Responses = append(m.Responses, messages.ChatMessage{
		Role: "assistant",
		ToolCalls: []messages.ChatMessageToolCall{
			{ID: id, Name: name, Arguments: arguments},
		},
	})
	return m
}

// Complete implements core.LLM
func (m *MockLLM) Complete(ctx context.Context, req *llm.CompletionRequest) (*messages.ChatMessage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Requests = append(m.Requests, req)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(m.Responses) == 0 {
		if m.Error != nil {
			return nil, m.Error
		}
		return &messages.ChatMessage{Role: "assistant", Content: "Hello from mock LLM"}, nil
	}
	next := m.Responses[0]
	m.Responses = m.Responses[1:]
	return &next, nil
}

// RequestCount returns how many completions were requested
func (m *MockLLM) RequestCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Requests)
}

var _ core.LLM = (*MockLLM)(nil)

// MockSystem implements core.System for testing
type MockSystem struct {
	ToolRegistry *tools.ToolRegistry
	SessionStore sessions.SessionStore
	LLM          *MockLLM
}

// NewMockSystem creates a MockSystem with sensible defaults
func NewMockSystem(ts ...tools.Tool) *MockSystem {
	return &MockSystem{
		ToolRegistry: tools.NewToolRegistry(ts),
		SessionStore: sessions.NewSyncMapSessionStore(&sessions.Metadata{
			MaxHistory:   50,
			TTL:          time.Minute * 10,
			SystemPrompt: "You are a test assistant.",
		}),
		LLM: &MockLLM{},
	}
}

func (m *MockSystem) GetToolRegistry() *tools.ToolRegistry {
	return m.ToolRegistry
}

func (m *MockSystem) GetSessionStore() sessions.SessionStore {
	return m.SessionStore
}

func (m *MockSystem) GetLLM() core.LLM {
	return m.LLM
}

var _ core.System = (*MockSystem)(nil)

// MockTool is a pollytool tool returning a fixed result
type MockTool struct {
	mu     sync.Mutex
	Name   string
	Result string
	Err    error
	Calls  []map[string]any
}

func NewMockTool(name, result string) *MockTool {
	return &MockTool{Name: name, Result: result}
}

func (t *MockTool) GetSchema() *jsonschema.Schema {
	return &jsonschema.Schema{
		Title:       t.Name,
		Description: "mock tool " + t.Name,
		Type:        "object",
		Properties: map[string]*jsonschema.Schema{
			"sql": {Type: "string"},
		},
	}
}

func (t *MockTool) GetName() string    { return t.Name }
func (t *MockTool) GetType() string    { return "native" }
func (t *MockTool) GetSource() string  { return "mock" }
func (t *MockTool) SetContext(ctx any) {}

func (t *MockTool) Execute(ctx context.Context, args map[string]any) (string, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.Calls = append(t.Calls, args)
	if t.Err != nil {
		return "", t.Err
	}
	return t.Result, nil
}

// CallCount returns how many times the tool ran
func (t *MockTool) CallCount() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.Calls)
}
