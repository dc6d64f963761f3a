package commands

import (
	"sort"
	"strings"

	"pkdindustries/taxalert/internal/core"
)

// Env is the chat session a command acts on
type Env interface {
	Clear()
	Tools() []core.ToolInfo
	Models() []string
	SelectModel(name string) bool
	Connection() *core.Connection
}

// Command defines the interface for slash commands typed into the chat input
type Command interface {
	Name() string
	Usage() string
	Execute(env Env, args []string) string
}

// Registry manages command registration and dispatch
type Registry struct {
	commands map[string]Command
}

// NewRegistry creates a new command registry
func NewRegistry() *Registry {
	return &Registry{
		commands: make(map[string]Command),
	}
}

// NewDefaultRegistry registers the built-in commands
func NewDefaultRegistry(version string) *Registry {
	r := NewRegistry()
	r.Register(NewHelpCommand(r))
	r.Register(&ClearCommand{})
	r.Register(&ToolsCommand{})
	r.Register(&ModelCommand{})
	r.Register(&StatusCommand{})
	r.Register(&VersionCommand{version: version})
	return r
}

// Register adds a command to the registry
func (r *Registry) Register(cmd Command) {
	r.commands[cmd.Name()] = cmd
}

// Get retrieves a command by name
func (r *Registry) Get(name string) (Command, bool) {
	cmd, ok := r.commands[name]
	return cmd, ok
}

// IsCommand reports whether line should be dispatched instead of sent to the agent
func IsCommand(line string) bool {
	return strings.HasPrefix(strings.TrimSpace(line), "/")
}

// Dispatch runs the command named by the first word of line and returns its output
func (r *Registry) Dispatch(env Env, line string) string {
	args := strings.Fields(line)
	if len(args) == 0 {
		return ""
	}
	cmd, ok := r.commands[strings.ToLower(args[0])]
	if !ok {
		return "Unknown command " + args[0] + ". Try /help"
	}
	return cmd.Execute(env, args[1:])
}

// All returns all registered commands sorted by name
func (r *Registry) All() []Command {
	cmds := make([]Command, 0, len(r.commands))
	for _, cmd := range r.commands {
		cmds = append(cmds, cmd)
	}
	sort.Slice(cmds, func(i, j int) bool { return cmds[i].Name() < cmds[j].Name() })
	return cmds
}
