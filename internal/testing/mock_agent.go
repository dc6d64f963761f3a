package testing

import (
	"context"
	"errors"
	"sync"

	"pkdindustries/taxalert/internal/core"
)

// MockAgent implements core.Agent with a scripted turn
type MockAgent struct {
	mu          sync.Mutex
	Turn        []core.Message // returned after the user message
	Err         error
	Invocations []string
	Resets      int
}

func NewMockAgent() *MockAgent {
	return &MockAgent{}
}

// WithReply scripts a turn that ends in a plain assistant reply
func (m *MockAgent) WithReply(content string) *MockAgent {
	m.Turn = []core.Message{{Role: core.RoleAssistant, Content: content}}
	return m
}

// WithTurn scripts the messages following the user message
func (m *MockAgent) WithTurn(msgs ...core.Message) *MockAgent {
	m.Turn = msgs
	return m
}

func (m *MockAgent) WithError(err error) *MockAgent {
	m.Err = err
	return m
}

// Invoke implements core.Agent
func (m *MockAgent) Invoke(ctx context.Context, text string) ([]core.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Invocations = append(m.Invocations, text)
	if m.Err != nil {
		return nil, m.Err
	}
	out := []core.Message{{Role: core.RoleUser, Content: text}}
	return append(out, m.Turn...), nil
}

// Reset implements core.Agent
func (m *MockAgent) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Resets++
}

func (m *MockAgent) InvokeCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Invocations)
}

func (m *MockAgent) ResetCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Resets
}

var _ core.Agent = (*MockAgent)(nil)

// MockCloser records Close calls
type MockCloser struct {
	mu     sync.Mutex
	Closed int
}

func (c *MockCloser) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Closed++
	return nil
}

func (c *MockCloser) CloseCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.Closed
}

var ErrMockConnect = errors.New("mock connect failure")

// MockConnector implements core.Connector
type MockConnector struct {
	mu      sync.Mutex
	Agent   core.Agent
	Tools   []core.ToolInfo
	Err     error
	Configs []core.ConnectionConfig
	Closers []*MockCloser
}

func NewMockConnector(agent core.Agent) *MockConnector {
	return &MockConnector{
		Agent: agent,
		Tools: []core.ToolInfo{
			{Name: "query", Description: "run a SELECT"},
			{Name: "insert", Description: "insert an alert"},
		},
	}
}

func (m *MockConnector) WithError(err error) *MockConnector {
	m.Err = err
	return m
}

// Connect implements core.Connector
func (m *MockConnector) Connect(ctx context.Context, cfg core.ConnectionConfig) (*core.Connection, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Configs = append(m.Configs, cfg)
	if m.Err != nil {
		return nil, m.Err
	}
	closer := &MockCloser{}
	m.Closers = append(m.Closers, closer)
	return &core.Connection{
		Config: cfg,
		Tools:  append([]core.ToolInfo(nil), m.Tools...),
		Agent:  m.Agent,
		Closer: closer,
	}, nil
}

var _ core.Connector = (*MockConnector)(nil)
