package research

import (
	"context"
	"fmt"
)

// Supported providers.
const (
	ProviderGemini = "gemini"
	ProviderOpenAI = "openai"
)

// NewModel creates the Model for the named provider.
func NewModel(ctx context.Context, provider, apiKey, modelName, baseURL string) (Model, error) {
	switch provider {
	case ProviderGemini, "":
		g, err := NewGemini(ctx, apiKey, modelName, baseURL)
		if err != nil {
			return nil, err
		}
		return g, nil
	case ProviderOpenAI:
		return NewOpenAI(apiKey, modelName, baseURL), nil
	default:
		return nil, fmt.Errorf("unknown AI provider: %q (valid: gemini, openai)", provider)
	}
}
