package llm

import (
	"log/slog"

	"github.com/alexschlessinger/pollytool/messages"
)

// collector consumes a completion event stream and keeps the final message.
// Nothing is displayed while streaming; the caller waits for the whole reply.
type collector struct {
	logger   *slog.Logger
	response *messages.ChatMessage
	err      error
}

func newCollector(logger *slog.Logger) *collector {
	return &collector{logger: logger}
}

func (c *collector) OnReasoning(content string, totalLength int) {
	c.logger.Debug("reasoning update", "length", totalLength)
}

func (c *collector) OnContent(content string, firstChunk bool) {
	if firstChunk {
		c.logger.Debug("content started")
	}
}

func (c *collector) OnToolCall(toolCall messages.ChatMessageToolCall) {
	c.logger.Debug("tool call received", "tool", toolCall.Name, "id", toolCall.ID)
}

func (c *collector) OnComplete(message *messages.ChatMessage) {
	if message == nil {
		return
	}
	m := *message
	c.response = &m
	c.logger.Debug("message complete", "role", message.Role, "content_len", len(message.Content), "tool_calls", len(message.ToolCalls))
}

func (c *collector) OnError(err error) {
	if err != nil {
		c.logger.Debug("stream error", "error", err)
		c.err = err
	}
}

// GetResponse returns the accumulated response message
func (c *collector) GetResponse() messages.ChatMessage {
	if c.response == nil {
		return messages.ChatMessage{}
	}
	return *c.response
}
