package core

// Role identifies who produced a message in an agent turn
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleTool      Role = "tool"
)

// Transport names the mechanism carrying the tool protocol
type Transport string

const (
	TransportSSE   Transport = "sse"
	TransportStdio Transport = "stdio"
	TransportHTTP  Transport = "http"
)

// ToolCall is a tool invocation requested by the model
type ToolCall struct {
	ID   string
	Name string
	Args map[string]any
}

// Message is one entry of an agent turn as returned by Agent.Invoke.
// Tool results carry Name (the tool that produced them) and ToolCallID.
type Message struct {
	Role       Role
	Content    string
	Name       string
	ToolCalls  []ToolCall
	ToolCallID string
}

// ToolInfo describes a tool advertised by the tool server
type ToolInfo struct {
	Name        string
	Description string
}

// ConnectionConfig is the operator's choice of model and tool server
type ConnectionConfig struct {
	Model     string
	Transport Transport
	// Endpoint is a URL for sse/http and a command line for stdio
	Endpoint string
}
