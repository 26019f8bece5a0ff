package factory

import (
	"fmt"

	"ai-tutoring-be/pkg/llm"
	"ai-tutoring-be/pkg/llm/ollama"
	"ai-tutoring-be/pkg/llm/openai"
)

// NewLLMProvider builds the configured reasoning-service backend.
// A missing credential for a provider that needs one is a fatal
// configuration error, not something to discover mid-request.
func NewLLMProvider(providerType, modelName, baseURL, apiKey string) (llm.LLMProvider, error) {
	switch providerType {
	case "ollama":
		if baseURL == "" {
			baseURL = "http://localhost:11434" // Default
		}
		return ollama.NewOllamaProvider(baseURL, modelName), nil
	case "openai":
		return openai.NewOpenAIProvider(baseURL, modelName, apiKey)
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", providerType)
	}
}
