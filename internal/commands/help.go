package commands

import (
	"strings"
)

// HelpCommand handles the /help command
type HelpCommand struct {
	registry *Registry
}

// NewHelpCommand creates a help command that can list registered commands
func NewHelpCommand(registry *Registry) *HelpCommand {
	return &HelpCommand{registry: registry}
}

func (c *HelpCommand) Name() string  { return "/help" }
func (c *HelpCommand) Usage() string { return "/help" }

func (c *HelpCommand) Execute(env Env, args []string) string {
	var lines []string
	for _, cmd := range c.registry.All() {
		lines = append(lines, cmd.Usage())
	}
	return "Supported commands: " + strings.Join(lines, ", ")
}
