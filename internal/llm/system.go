package llm

import (
	"log/slog"
	"strings"

	"github.com/alexschlessinger/pollytool/sessions"
	"github.com/alexschlessinger/pollytool/tools"

	"pkdindustries/taxalert/internal/config"
	"pkdindustries/taxalert/internal/core"
)

// NewSystem registers the remote tools and creates a fresh session store.
// schema, when non-empty, is appended to the system prompt.
func NewSystem(cfg *config.Configuration, remote []tools.Tool, schema string, client core.LLM, logger *slog.Logger) core.System {
	s := core.SystemImpl{LLM: client}
	s.Tools = tools.NewToolRegistry(remote)
	logger.Info("loaded tools", "count", len(s.Tools.All()))

	s.Store = sessions.NewSyncMapSessionStore(&sessions.Metadata{
		MaxHistory:   cfg.Session.MaxHistory,
		TTL:          cfg.Session.TTL,
		SystemPrompt: SystemPrompt(cfg.Model.Prompt, schema),
	})
	return &s
}

// SystemPrompt joins the configured prompt and the table description
func SystemPrompt(prompt, schema string) string {
	schema = strings.TrimSpace(schema)
	if schema == "" {
		return prompt
	}
	return prompt + "\n\n" + schema
}
