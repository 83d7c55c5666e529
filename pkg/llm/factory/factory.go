package factory

import (
	"fmt"

	"sysassist-be/pkg/llm"
	"sysassist-be/pkg/llm/ollama"
	"sysassist-be/pkg/llm/openrouter"
)

// NewLLMProvider selects the chat backend from configuration.
// apiKey is only consulted for hosted providers.
func NewLLMProvider(providerType, modelName, baseURL, apiKey string) (llm.LLMProvider, error) {
	switch providerType {
	case "ollama":
		if baseURL == "" {
			baseURL = "http://localhost:11434" // Default
		}
		return ollama.NewOllamaProvider(baseURL, modelName), nil
	case "openrouter":
		if apiKey == "" {
			return nil, fmt.Errorf("openrouter provider requires an API key")
		}
		return openrouter.NewOpenRouterProvider(apiKey, modelName), nil
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", providerType)
	}
}
