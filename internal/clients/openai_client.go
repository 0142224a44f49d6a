package clients

import (
	"errors"
	"log/slog"
	"net/http"
	"sync"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

var (
	openAIClientInstance *openai.Client
	openAIOnce           sync.Once
)

// GetOpenAIClient builds the OpenAI client once. Retries are handled by the
// reflection layer, so the SDK's own retries are disabled.
func GetOpenAIClient(apiKey string) (*openai.Client, error) {
	if apiKey == "" {
		return nil, errors.New("[OpenAIClient] missing OPENAI_API_KEY")
	}

	openAIOnce.Do(func() {
		client := openai.NewClient(
			option.WithAPIKey(apiKey),
			option.WithHTTPClient(&http.Client{Timeout: HTTP_TIMEOUT}),
			option.WithMaxRetries(0),
			option.WithHeader("User-Agent", USER_AGENT),
		)
		openAIClientInstance = &client
		slog.Info("[OpenAIClient] OpenAI client initialized",
			slog.Duration("timeout", HTTP_TIMEOUT))
	})
	return openAIClientInstance, nil
}
