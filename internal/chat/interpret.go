package chat

import (
	"time"

	"pkdindustries/taxalert/internal/core"
)

// Interpretation is what one agent turn contributes to the display
type Interpretation struct {
	// Reply is the last non-empty text produced by the model
	Reply string
	// Blocks are tool outputs in the order they appeared, shown as code
	Blocks []string
	// Executions are the matched tool calls with non-empty output
	Executions []ToolExecution
	// LastToolOutput is the output of the last tool call processed, empty when it had no result
	LastToolOutput string
}

// Interpret correlates tool calls with their results and picks the reply.
//
// Results are indexed by correlation id. Each call is matched with the first
// result carrying its id that comes after the calling message; unmatched calls
// yield no execution record.
func Interpret(msgs []core.Message, now time.Time) Interpretation {
	var out Interpretation

	results := make(map[string][]int)
	for i, m := range msgs {
		if m.Role == core.RoleTool && m.ToolCallID != "" {
			results[m.ToolCallID] = append(results[m.ToolCallID], i)
		}
	}

	for i, m := range msgs {
		for _, call := range m.ToolCalls {
			output, matched := "", false
			for _, j := range results[call.ID] {
				if j > i {
					output, matched = msgs[j].Content, true
					break
				}
			}
			out.LastToolOutput = output
			if matched && output != "" {
				out.Executions = append(out.Executions, ToolExecution{
					Tool:   call.Name,
					Input:  call.Args,
					Output: output,
					Time:   now,
				})
			}
		}
	}

	for _, m := range msgs {
		switch {
		case m.Role == core.RoleUser:
			continue
		case m.Name != "":
			out.Blocks = append(out.Blocks, m.Content)
		case m.Content != "":
			out.Reply = m.Content
		}
	}

	return out
}
