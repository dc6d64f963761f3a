package testing

import (
	"time"

	"pkdindustries/taxalert/internal/config"
)

// DefaultTestConfig returns a minimal client configuration for testing
func DefaultTestConfig() *config.Configuration {
	return &config.Configuration{
		Client: &config.ClientConfig{
			Transport: "sse",
			URL:       config.DefaultSSEURL,
			Command:   config.DefaultCommand,
			Models:    []string{"test/model", "ollama/llama3.2"},
		},
		Model: &config.ModelConfig{
			Model:         "test/model",
			MaxTokens:     100,
			Temperature:   0,
			Prompt:        "You are a test assistant.",
			MaxToolRounds: 3,
		},
		Session: &config.SessionConfig{
			MaxHistory: 50,
			TTL:        time.Minute * 10,
		},
		API: &config.APIConfig{
			Timeout: time.Second * 30,
		},
		Log: &config.LogConfig{},
	}
}
