// Package chat holds the client's session state: transcript, tool executions
// and the active tool server connection.
package chat

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"pkdindustries/taxalert/internal/core"
)

// ErrNotConnected is returned by Send before a connection is established
var ErrNotConnected = errors.New("not connected to a tool server")

// Message is one transcript entry
type Message struct {
	Role    core.Role
	Content string
	// Tool is the output of the last tool call of the turn (assistant entries only)
	Tool string
}

// ToolExecution records a tool call that produced output
type ToolExecution struct {
	Tool   string
	Input  map[string]any
	Output string
	Time   time.Time
}

// Reply is the result of a successful Send
type Reply struct {
	Message Message
	Interpretation
}

// State is created once per client run. It starts disconnected with an empty
// transcript and execution log.
type State struct {
	mu         sync.RWMutex
	transcript []Message
	executions []ToolExecution
	conn       *core.Connection

	connector core.Connector
	now       func() time.Time
	logger    *slog.Logger
	// serializes turns of this state only
	turns *core.RequestLock
}

// Option configures a State
type Option func(*State)

// WithClock overrides the clock used to stamp tool executions
func WithClock(now func() time.Time) Option {
	return func(s *State) { s.now = now }
}

// WithLogger sets the logger; the default is core.GetLogger()
func WithLogger(l *slog.Logger) Option {
	return func(s *State) { s.logger = l }
}

// NewState returns a disconnected State that opens connections through connector
func NewState(connector core.Connector, opts ...Option) *State {
	s := &State{
		connector: connector,
		now:       time.Now,
		logger:    core.GetLogger(),
		turns:     core.NewRequestLock(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Connect opens a new connection and swaps it in. On failure the current
// connection, if any, stays active.
func (s *State) Connect(ctx context.Context, cfg core.ConnectionConfig) error {
	start := time.Now()
	conn, err := s.connector.Connect(ctx, cfg)
	if err != nil {
		s.logger.Warn("connect failed", "transport", cfg.Transport, "endpoint", cfg.Endpoint, "error", err)
		return fmt.Errorf("connect %s %s: %w", cfg.Transport, cfg.Endpoint, err)
	}

	s.mu.Lock()
	old := s.conn
	s.conn = conn
	s.mu.Unlock()

	if old != nil {
		if err := old.Close(); err != nil {
			s.logger.Warn("closing previous connection", "error", err)
		}
	}

	s.logger.Info("connected",
		"model", cfg.Model,
		"transport", cfg.Transport,
		"tools", len(conn.Tools),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return nil
}

// Send appends text to the transcript and runs one agent turn. Turns are
// serialized; a second Send waits for the first to finish or ctx to end.
func (s *State) Send(ctx context.Context, text string) (*Reply, error) {
	s.mu.Lock()
	s.transcript = append(s.transcript, Message{Role: core.RoleUser, Content: text})
	conn := s.conn
	s.mu.Unlock()

	if conn == nil || conn.Agent == nil {
		return nil, ErrNotConnected
	}

	var (
		reply *Reply
		err   error
	)
	s.turns.With(ctx, s.logger, "send",
		func() { reply, err = s.turn(ctx, conn.Agent, text) },
		func() { err = ctx.Err() },
	)
	return reply, err
}

func (s *State) turn(ctx context.Context, agent core.Agent, text string) (*Reply, error) {
	msgs, err := agent.Invoke(ctx, text)
	if err != nil {
		s.logger.Error("agent turn failed", "error", err)
		return nil, fmt.Errorf("agent: %w", err)
	}

	interp := Interpret(msgs, s.now())
	entry := Message{
		Role:    core.RoleAssistant,
		Content: interp.Reply,
		Tool:    interp.LastToolOutput,
	}

	s.mu.Lock()
	s.executions = append(s.executions, interp.Executions...)
	s.transcript = append(s.transcript, entry)
	s.mu.Unlock()

	s.logger.Debug("turn complete", "messages", len(msgs), "executions", len(interp.Executions))
	return &Reply{Message: entry, Interpretation: interp}, nil
}

// Clear empties the transcript and execution log and drops the agent's history
func (s *State) Clear() {
	s.mu.Lock()
	s.transcript = nil
	s.executions = nil
	conn := s.conn
	s.mu.Unlock()

	if conn != nil && conn.Agent != nil {
		conn.Agent.Reset()
	}
}

// Transcript returns a copy of the transcript, oldest first
func (s *State) Transcript() []Message {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]Message(nil), s.transcript...)
}

// Executions returns a copy of the tool execution log, oldest first
func (s *State) Executions() []ToolExecution {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]ToolExecution(nil), s.executions...)
}

// Connected reports whether a tool server connection is active
func (s *State) Connected() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.conn != nil
}

// Connection returns the active connection or nil
func (s *State) Connection() *core.Connection {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.conn
}

// Tools returns the tools offered by the active connection, or nil
func (s *State) Tools() []core.ToolInfo {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.conn == nil {
		return nil
	}
	return append([]core.ToolInfo(nil), s.conn.Tools...)
}

// Close releases the active connection
func (s *State) Close() error {
	s.mu.Lock()
	conn := s.conn
	s.conn = nil
	s.mu.Unlock()
	return conn.Close()
}
