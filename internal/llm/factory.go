package llm

import (
	"fmt"
	"net/http"

	"github.com/aurite-ai/aurite-go/internal/config"
)

// Default endpoints per provider; overridden by LLMConfig.BaseURL.
const (
	openAIBaseURL = "https://api.openai.com/v1"
	ollamaBaseURL = "http://localhost:11434/v1"
)

// NewClient builds an LLM client for the configured provider, wrapped with
// rate-limit retry.
func NewClient(cfg *config.LLMConfig, httpClient *http.Client) (Client, error) {
	resolved := *cfg
	if resolved.BaseURL == "" {
		switch resolved.Provider {
		case "openai":
			resolved.BaseURL = openAIBaseURL
		case "ollama":
			resolved.BaseURL = ollamaBaseURL
		case "openai-compatible":
			return nil, fmt.Errorf("%w: provider %q requires base_url", ErrBadRequest, resolved.Provider)
		default:
			return nil, fmt.Errorf("%w: %q", ErrUnknownProvider, resolved.Provider)
		}
	}

	client, err := NewOpenAIClient(&resolved, httpClient)
	if err != nil {
		return nil, err
	}
	return WithRetry(client, DefaultRetryConfig()), nil
}
