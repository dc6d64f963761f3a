package llm

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/alexschlessinger/pollytool/llm"
	"github.com/alexschlessinger/pollytool/sessions"
	"github.com/alexschlessinger/pollytool/tools"

	"pkdindustries/taxalert/internal/config"
)

type CompletionRequest = llm.CompletionRequest

var (
	ErrMissingCredential = errors.New("missing API key")
	ErrUnknownProvider   = errors.New("unknown model provider")
)

// NewCompletionRequest builds a request for model over the session history
func NewCompletionRequest(cfg *config.Configuration, model string, session sessions.Session, tools []tools.Tool) *CompletionRequest {
	req := &CompletionRequest{
		BaseURL:     cfg.API.OpenAIURL,
		Timeout:     cfg.API.Timeout,
		Model:       model,
		MaxTokens:   cfg.Model.MaxTokens,
		Messages:    session.GetHistory(),
		Temperature: cfg.Model.Temperature,
		Tools:       tools,
	}
	if Provider(model) == "ollama" {
		req.BaseURL = cfg.API.OllamaURL
	}
	return req
}

// Provider returns the provider prefix of a provider/model name
func Provider(model string) string {
	provider, _, _ := strings.Cut(model, "/")
	return strings.ToLower(provider)
}

// APIKeys maps the configured keys to pollytool's provider names.
// Gemini falls back to GOOGLE_API_KEY.
func APIKeys(api *config.APIConfig) map[string]string {
	gemini := api.GeminiKey
	if gemini == "" {
		gemini = os.Getenv("GOOGLE_API_KEY")
	}
	return map[string]string{
		"openai":    api.OpenAIKey,
		"anthropic": api.AnthropicKey,
		"gemini":    gemini,
		"ollama":    api.OllamaKey,
	}
}

// CheckCredential fails when the provider of model needs a key that is not configured
func CheckCredential(api *config.APIConfig, model string) error {
	provider := Provider(model)
	if !strings.Contains(model, "/") {
		return fmt.Errorf("%w: %q (expected provider/model)", ErrUnknownProvider, model)
	}

	keys := APIKeys(api)
	switch provider {
	case "ollama":
		return nil
	case "openai":
		// custom endpoints may not need a key
		if api.OpenAIURL != "" {
			return nil
		}
	case "anthropic", "gemini":
	default:
		return fmt.Errorf("%w: %q", ErrUnknownProvider, provider)
	}

	if keys[provider] == "" {
		return fmt.Errorf("%w for %s", ErrMissingCredential, provider)
	}
	return nil
}
