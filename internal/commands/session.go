package commands

import (
	"fmt"
	"strings"
)

// ClearCommand empties the transcript and the agent's history
type ClearCommand struct{}

func (c *ClearCommand) Name() string  { return "/clear" }
func (c *ClearCommand) Usage() string { return "/clear" }

func (c *ClearCommand) Execute(env Env, args []string) string {
	env.Clear()
	return "Chat cleared"
}

// ModelCommand shows or selects the model used on the next connect
type ModelCommand struct{}

func (c *ModelCommand) Name() string  { return "/model" }
func (c *ModelCommand) Usage() string { return "/model [name]" }

func (c *ModelCommand) Execute(env Env, args []string) string {
	if len(args) == 0 {
		return "Models: " + strings.Join(env.Models(), ", ")
	}
	if !env.SelectModel(args[0]) {
		return fmt.Sprintf("Unknown model %s", args[0])
	}
	return fmt.Sprintf("Model set to %s, reconnect to use it", args[0])
}

// StatusCommand describes the active connection
type StatusCommand struct{}

func (c *StatusCommand) Name() string  { return "/status" }
func (c *StatusCommand) Usage() string { return "/status" }

func (c *StatusCommand) Execute(env Env, args []string) string {
	conn := env.Connection()
	if conn == nil {
		return "Not connected"
	}
	return fmt.Sprintf("Connected to %s over %s using %s (%d tools)",
		conn.Config.Endpoint, conn.Config.Transport, conn.Config.Model, len(conn.Tools))
}
