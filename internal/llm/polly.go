package llm

import (
	"context"
	"errors"
	"log/slog"

	"github.com/alexschlessinger/pollytool/llm"
	"github.com/alexschlessinger/pollytool/messages"

	"pkdindustries/taxalert/internal/config"
	"pkdindustries/taxalert/internal/core"
)

var ErrEmptyResponse = errors.New("model returned no message")

// PollyLLM wraps pollytool's MultiPass to implement core.LLM
type PollyLLM struct {
	client          *llm.MultiPass
	streamProcessor *messages.StreamProcessor
	logger          *slog.Logger
}

// NewPollyLLM creates a new pollytool-based LLM client
func NewPollyLLM(api *config.APIConfig, logger *slog.Logger) *PollyLLM {
	return &PollyLLM{
		client:          llm.NewMultiPass(APIKeys(api)),
		streamProcessor: messages.NewStreamProcessor(),
		logger:          logger,
	}
}

// Complete streams one completion and waits for the final message
func (p *PollyLLM) Complete(ctx context.Context, req *llm.CompletionRequest) (*messages.ChatMessage, error) {
	c := newCollector(p.logger)

	eventChan := p.client.ChatCompletionStream(ctx, req, p.streamProcessor)
	messages.ProcessEventStream(ctx, eventChan, c)

	if c.err != nil {
		return nil, c.err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if c.response == nil {
		return nil, ErrEmptyResponse
	}
	return c.response, nil
}

var _ core.LLM = (*PollyLLM)(nil)
