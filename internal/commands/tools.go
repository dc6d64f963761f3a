package commands

import (
	"strings"
)

// ToolsCommand lists the tools offered by the connected server
type ToolsCommand struct{}

func (c *ToolsCommand) Name() string  { return "/tools" }
func (c *ToolsCommand) Usage() string { return "/tools" }

func (c *ToolsCommand) Execute(env Env, args []string) string {
	tools := env.Tools()
	if len(tools) == 0 {
		return "No tools loaded"
	}

	var b strings.Builder
	b.WriteString("Tools:")
	for _, t := range tools {
		b.WriteString("\n- " + t.Name)
		if t.Description != "" {
			b.WriteString(": " + strings.TrimSpace(t.Description))
		}
	}
	return b.String()
}
