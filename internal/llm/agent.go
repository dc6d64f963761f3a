package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/alexschlessinger/pollytool/messages"
	"github.com/alexschlessinger/pollytool/tools"

	"pkdindustries/taxalert/internal/config"
	"pkdindustries/taxalert/internal/core"
)

const (
	DefaultMaxToolRounds = 25
	sessionKey           = "taxchat"
)

var ErrToolRoundLimit = errors.New("tool round limit reached")

// Agent runs turns against one model with the tools of one tool server.
// History lives in the system's session store and grows across turns.
type Agent struct {
	cfg       *config.Configuration
	model     string
	sys       core.System
	maxRounds int
	logger    *slog.Logger
}

func NewAgent(cfg *config.Configuration, model string, sys core.System, logger *slog.Logger) *Agent {
	rounds := cfg.Model.MaxToolRounds
	if rounds <= 0 {
		rounds = DefaultMaxToolRounds
	}
	return &Agent{
		cfg:       cfg,
		model:     model,
		sys:       sys,
		maxRounds: rounds,
		logger:    logger.With("model", model),
	}
}

// Invoke completes until the model stops calling tools. The turn is kept
// apart from the history and only committed once it finishes, so a failed
// turn leaves the history as it was. The returned messages start with the
// user message.
func (a *Agent) Invoke(ctx context.Context, text string) ([]core.Message, error) {
	session, err := a.sys.GetSessionStore().Get(sessionKey)
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}

	a.logger.Info("processing user message", "text", core.Preview(text, 100))
	defer core.LogDuration(a.logger, "turn", time.Now())

	history := session.GetHistory()
	turn := []messages.ChatMessage{{Role: messages.MessageRoleUser, Content: text}}

	var all []tools.Tool
	if reg := a.sys.GetToolRegistry(); reg != nil {
		all = reg.All()
	}

	for round := 0; ; round++ {
		req := NewCompletionRequest(a.cfg, a.model, session, all)
		req.Messages = append(append(make([]messages.ChatMessage, 0, len(history)+len(turn)), history...), turn...)

		msg, err := a.sys.GetLLM().Complete(ctx, req)
		if err != nil {
			return nil, fmt.Errorf("completion: %w", err)
		}

		if len(msg.ToolCalls) == 0 {
			turn = append(turn, *msg)
			break
		}
		if round >= a.maxRounds {
			a.logger.Warn("dropping turn", "rounds", round, "messages", len(turn))
			return nil, fmt.Errorf("%w (%d)", ErrToolRoundLimit, a.maxRounds)
		}
		turn = append(turn, *msg)

		for _, tc := range msg.ToolCalls {
			turn = append(turn, a.executeTool(ctx, tc))
		}
	}

	for _, m := range turn {
		session.AddMessage(m)
	}
	return convertTurn(turn), nil
}

// Reset drops the conversation history
func (a *Agent) Reset() {
	session, err := a.sys.GetSessionStore().Get(sessionKey)
	if err != nil {
		a.logger.Warn("reset: load session", "error", err)
		return
	}
	session.Clear()
}

func toolMessage(id, content string) messages.ChatMessage {
	return messages.ChatMessage{
		Role:       messages.MessageRoleTool,
		Content:    content,
		ToolCallID: id,
	}
}

func (a *Agent) executeTool(ctx context.Context, tc messages.ChatMessageToolCall) messages.ChatMessage {
	args, err := parseArgs(tc.Arguments)
	if err != nil {
		a.logger.Error("failed to parse tool arguments", "tool", tc.Name, "error", err)
		return toolMessage(tc.ID, fmt.Sprintf("Error parsing arguments: %v", err))
	}

	registry := a.sys.GetToolRegistry()
	if registry == nil {
		return toolMessage(tc.ID, fmt.Sprintf("Tool not found: %s", tc.Name))
	}
	tool, exists := registry.Get(tc.Name)
	if !exists {
		a.logger.Warn("tool not found", "tool", tc.Name)
		return toolMessage(tc.ID, fmt.Sprintf("Tool not found: %s", tc.Name))
	}

	toolLogger := core.WithTool(a.logger, tc.Name, args)
	start := time.Now()
	toolLogger.Info("executing tool")

	result, err := tool.Execute(ctx, args)
	duration := time.Since(start)
	if err != nil {
		result = fmt.Sprintf("Error: %v", err)
		toolLogger.Error("tool execution failed", "duration_ms", duration.Milliseconds(), "error", err)
	} else {
		toolLogger.Info("tool execution completed",
			"duration_ms", duration.Milliseconds(),
			"result_size", len(result),
			"result", core.Preview(result, 200),
		)
	}
	return toolMessage(tc.ID, result)
}

func parseArgs(raw string) (map[string]any, error) {
	args := map[string]any{}
	if raw == "" {
		return args, nil
	}
	if err := json.Unmarshal([]byte(raw), &args); err != nil {
		return nil, err
	}
	return args, nil
}

// convertTurn maps pollytool messages to core messages. Tool results are
// named after the call they answer.
func convertTurn(turn []messages.ChatMessage) []core.Message {
	names := map[string]string{}
	out := make([]core.Message, 0, len(turn))
	for _, m := range turn {
		cm := core.Message{
			Role:       core.Role(m.Role),
			Content:    m.Content,
			ToolCallID: m.ToolCallID,
		}
		for _, tc := range m.ToolCalls {
			if _, seen := names[tc.ID]; !seen {
				names[tc.ID] = tc.Name
			}
			args, err := parseArgs(tc.Arguments)
			if err != nil {
				args = map[string]any{"arguments": tc.Arguments}
			}
			cm.ToolCalls = append(cm.ToolCalls, core.ToolCall{ID: tc.ID, Name: tc.Name, Args: args})
		}
		if m.Role == messages.MessageRoleTool {
			cm.Name = names[m.ToolCallID]
		}
		out = append(out, cm)
	}
	return out
}

var _ core.Agent = (*Agent)(nil)
