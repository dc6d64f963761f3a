package chat

import (
	"context"
	"log/slog"

	"pkdindustries/taxalert/internal/config"
	"pkdindustries/taxalert/internal/core"
	"pkdindustries/taxalert/internal/llm"
	"pkdindustries/taxalert/internal/mcpclient"
)

type dialFunc func(ctx context.Context, transport core.Transport, endpoint string, logger *slog.Logger) (*mcpclient.Session, error)

// MCPConnector opens MCP sessions and binds a pollytool agent to their tools
type MCPConnector struct {
	cfg    *config.Configuration
	logger *slog.Logger
	dial   dialFunc
	newLLM func(api *config.APIConfig, logger *slog.Logger) core.LLM
}

func NewConnector(cfg *config.Configuration, logger *slog.Logger) *MCPConnector {
	return &MCPConnector{
		cfg:    cfg,
		logger: logger,
		dial:   mcpclient.Connect,
		newLLM: func(api *config.APIConfig, logger *slog.Logger) core.LLM {
			return llm.NewPollyLLM(api, logger)
		},
	}
}

// Connect checks the model credential, opens the session, lists its tools and
// builds the agent. The schema_info prompt, when offered, extends the system prompt.
func (c *MCPConnector) Connect(ctx context.Context, cc core.ConnectionConfig) (*core.Connection, error) {
	if err := llm.CheckCredential(c.cfg.API, cc.Model); err != nil {
		return nil, err
	}

	sess, err := c.dial(ctx, cc.Transport, cc.Endpoint, c.logger)
	if err != nil {
		return nil, err
	}

	schema, err := sess.SchemaInfo(ctx)
	if err != nil {
		c.logger.Warn("schema info unavailable", "error", err)
	}

	sys := llm.NewSystem(c.cfg, sess.Tools(), schema, c.newLLM(c.cfg.API, c.logger), c.logger)
	agent := llm.NewAgent(c.cfg, cc.Model, sys, c.logger)

	return &core.Connection{
		Config: cc,
		Tools:  sess.ToolInfo(),
		Agent:  agent,
		Closer: sess,
	}, nil
}

var _ core.Connector = (*MCPConnector)(nil)
