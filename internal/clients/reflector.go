package clients

import (
	"context"

	"github.com/spacesedan/mindnest/config"
	"github.com/spacesedan/mindnest/internal/reflection"
)

// NewReflector builds the configured hosted reflector. It returns nil without
// error when the provider is "none".
func NewReflector(ctx context.Context, settings config.Settings) (reflection.Reflector, error) {
	switch settings.ReflectionProvider {
	case config.ProviderGemini:
		client, err := GetGenAIClient(ctx, settings.GeminiAPIKey)
		if err != nil {
			return nil, err
		}
		r, err := reflection.NewGeminiReflector(client, settings.GeminiModel)
		if err != nil {
			return nil, err
		}
		return r, nil
	case config.ProviderOpenAI:
		client, err := GetOpenAIClient(settings.OpenAIAPIKey)
		if err != nil {
			return nil, err
		}
		r, err := reflection.NewOpenAIReflector(client, settings.OpenAIModel)
		if err != nil {
			return nil, err
		}
		return r, nil
	default:
		return nil, nil
	}
}
