package core

import (
	"context"

	"github.com/alexschlessinger/pollytool/llm"
	"github.com/alexschlessinger/pollytool/messages"
	"github.com/alexschlessinger/pollytool/sessions"
	"github.com/alexschlessinger/pollytool/tools"
)

// LLM produces one complete assistant message for a request
type LLM interface {
	Complete(ctx context.Context, req *llm.CompletionRequest) (*messages.ChatMessage, error)
}

// System bundles what an agent runs against
type System interface {
	GetToolRegistry() *tools.ToolRegistry
	GetSessionStore() sessions.SessionStore
	GetLLM() LLM
}

type SystemImpl struct {
	Store sessions.SessionStore
	Tools *tools.ToolRegistry
	LLM   LLM
}

func (s *SystemImpl) GetToolRegistry() *tools.ToolRegistry {
	return s.Tools
}

func (s *SystemImpl) GetSessionStore() sessions.SessionStore {
	return s.Store
}

func (s *SystemImpl) GetLLM() LLM {
	return s.LLM
}
