package core

import (
	"context"
	"io"
)

// Agent runs one user turn against the model, calling tools as it sees fit.
// The agent keeps the conversation history between turns.
type Agent interface {
	// Invoke returns every message produced during the turn, starting with the user message
	Invoke(ctx context.Context, text string) ([]Message, error)
	// Reset drops the conversation history
	Reset()
}

// Connection holds everything a successful connect produced
type Connection struct {
	Config ConnectionConfig
	Tools  []ToolInfo
	Agent  Agent
	Closer io.Closer
}

// Close releases the tool server session
func (c *Connection) Close() error {
	if c == nil || c.Closer == nil {
		return nil
	}
	return c.Closer.Close()
}

// Connector opens a tool server session and builds an agent bound to its tools
type Connector interface {
	Connect(ctx context.Context, cfg ConnectionConfig) (*Connection, error)
}
