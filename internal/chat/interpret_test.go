package chat

import (
	"testing"
	"time"

	"pkdindustries/taxalert/internal/core"
)

var fixedNow = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

func call(id, name string, args map[string]any) core.Message {
	return core.Message{
		Role:      core.RoleAssistant,
		ToolCalls: []core.ToolCall{{ID: id, Name: name, Args: args}},
	}
}

func result(id, name, content string) core.Message {
	return core.Message{Role: core.RoleTool, Name: name, ToolCallID: id, Content: content}
}

func TestInterpret_PlainReply(t *testing.T) {
	got := Interpret([]core.Message{
		{Role: core.RoleUser, Content: "hello"},
		{Role: core.RoleAssistant, Content: "hi there"},
	}, fixedNow)

	if got.Reply != "hi there" {
		t.Errorf("expected reply, got %q", got.Reply)
	}
	if len(got.Executions) != 0 || len(got.Blocks) != 0 || got.LastToolOutput != "" {
		t.Errorf("unexpected tool data: %+v", got)
	}
}

func TestInterpret_MatchedCall(t *testing.T) {
	args := map[string]any{"sql": "SELECT 1"}
	got := Interpret([]core.Message{
		{Role: core.RoleUser, Content: "count"},
		call("a", "query", args),
		result("a", "query", "(1)"),
		{Role: core.RoleAssistant, Content: "one"},
	}, fixedNow)

	if got.Reply != "one" {
		t.Errorf("expected reply one, got %q", got.Reply)
	}
	if len(got.Executions) != 1 {
		t.Fatalf("expected 1 execution, got %d", len(got.Executions))
	}
	ex := got.Executions[0]
	if ex.Tool != "query" || ex.Output != "(1)" || ex.Input["sql"] != "SELECT 1" || !ex.Time.Equal(fixedNow) {
		t.Errorf("unexpected execution: %+v", ex)
	}
	if got.LastToolOutput != "(1)" {
		t.Errorf("expected last tool output (1), got %q", got.LastToolOutput)
	}
	if len(got.Blocks) != 1 || got.Blocks[0] != "(1)" {
		t.Errorf("expected tool output block, got %v", got.Blocks)
	}
}

func TestInterpret_UnmatchedCall(t *testing.T) {
	got := Interpret([]core.Message{
		{Role: core.RoleUser, Content: "x"},
		call("a", "query", nil),
		{Role: core.RoleAssistant, Content: "done"},
	}, fixedNow)

	if len(got.Executions) != 0 {
		t.Errorf("expected no executions, got %d", len(got.Executions))
	}
	if got.LastToolOutput != "" {
		t.Errorf("expected empty last output, got %q", got.LastToolOutput)
	}
}

func TestInterpret_LastCallUnmatched(t *testing.T) {
	got := Interpret([]core.Message{
		{Role: core.RoleUser, Content: "x"},
		call("a", "query", nil),
		result("a", "query", "(1)"),
		call("b", "insert", nil),
		{Role: core.RoleAssistant, Content: "done"},
	}, fixedNow)

	if len(got.Executions) != 1 {
		t.Errorf("expected 1 execution, got %d", len(got.Executions))
	}
	if got.LastToolOutput != "" {
		t.Errorf("last call had no result, expected empty output, got %q", got.LastToolOutput)
	}
}

func TestInterpret_EmptyOutputNotRecorded(t *testing.T) {
	got := Interpret([]core.Message{
		call("a", "delete", nil),
		result("a", "delete", ""),
	}, fixedNow)
	if len(got.Executions) != 0 {
		t.Errorf("expected no execution for empty output, got %d", len(got.Executions))
	}
}

func TestInterpret_ResultBeforeCallIgnored(t *testing.T) {
	got := Interpret([]core.Message{
		result("a", "query", "stale"),
		call("a", "query", nil),
	}, fixedNow)
	if len(got.Executions) != 0 {
		t.Errorf("a result preceding its call must not match, got %+v", got.Executions)
	}
}

func TestInterpret_DuplicateIDs(t *testing.T) {
	got := Interpret([]core.Message{
		result("a", "query", "before"),
		call("a", "query", nil),
		result("a", "query", "first"),
		result("a", "query", "second"),
	}, fixedNow)

	if len(got.Executions) != 1 || got.Executions[0].Output != "first" {
		t.Errorf("expected first subsequent result to win, got %+v", got.Executions)
	}
}

func TestInterpret_MultipleCallsInOneMessage(t *testing.T) {
	msg := core.Message{
		Role: core.RoleAssistant,
		ToolCalls: []core.ToolCall{
			{ID: "a", Name: "query"},
			{ID: "b", Name: "insert"},
		},
	}
	got := Interpret([]core.Message{
		msg,
		result("b", "insert", "Tax alert inserted successfully."),
		result("a", "query", "(1)"),
	}, fixedNow)

	if len(got.Executions) != 2 {
		t.Fatalf("expected 2 executions, got %d", len(got.Executions))
	}
	if got.Executions[0].Tool != "query" || got.Executions[1].Tool != "insert" {
		t.Errorf("executions should follow call order: %+v", got.Executions)
	}
	if got.LastToolOutput != "Tax alert inserted successfully." {
		t.Errorf("unexpected last output %q", got.LastToolOutput)
	}
}

func TestInterpret_LastTextWins(t *testing.T) {
	got := Interpret([]core.Message{
		{Role: core.RoleUser, Content: "question"},
		{Role: core.RoleAssistant, Content: "let me check", ToolCalls: []core.ToolCall{{ID: "a", Name: "query"}}},
		result("a", "query", "(1)"),
		{Role: core.RoleAssistant, Content: "final answer"},
		{Role: core.RoleAssistant, Content: ""},
	}, fixedNow)

	if got.Reply != "final answer" {
		t.Errorf("expected final answer, got %q", got.Reply)
	}
}

func TestInterpret_UserOnly(t *testing.T) {
	got := Interpret([]core.Message{{Role: core.RoleUser, Content: "hi"}}, fixedNow)
	if got.Reply != "" {
		t.Errorf("user text must not become the reply, got %q", got.Reply)
	}
}
