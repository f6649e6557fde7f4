package factory

import (
	"ai-legal-assistant-be/pkg/llm"
	"ai-legal-assistant-be/pkg/llm/ollama"
	"ai-legal-assistant-be/pkg/llm/openai"
	"fmt"
)

func NewLLMProvider(providerType, modelName, ollamaBaseURL, openAIBaseURL, openAIKey string) (llm.LLMProvider, error) {
	switch providerType {
	case "ollama":
		if ollamaBaseURL == "" {
			ollamaBaseURL = "http://localhost:11434" // Default
		}
		return ollama.NewOllamaProvider(ollamaBaseURL, modelName), nil
	case "openai":
		if openAIKey == "" {
			return nil, fmt.Errorf("openai provider requires OPENAI_API_KEY")
		}
		return openai.NewOpenAIProvider(openAIBaseURL, openAIKey, modelName), nil
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", providerType)
	}
}
