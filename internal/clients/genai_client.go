package clients

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"

	"google.golang.org/genai"
)

var (
	genaiInstance *genai.Client
	genaiErr      error
	genaiOnce     sync.Once
)

func GetGenAIClient(ctx context.Context, apiKey string) (*genai.Client, error) {
	if apiKey == "" {
		return nil, errors.New("[GenAIClient] missing GEMINI_API_KEY")
	}

	genaiOnce.Do(func() {
		client, err := genai.NewClient(ctx, &genai.ClientConfig{
			APIKey:     apiKey,
			Backend:    genai.BackendGeminiAPI,
			HTTPClient: &http.Client{Timeout: HTTP_TIMEOUT},
		})
		if err != nil {
			genaiErr = fmt.Errorf("[GenAIClient] failed to create client: %w", err)
			return
		}
		genaiInstance = client
		slog.Info("[GenAIClient] Gemini client initialized")
	})
	return genaiInstance, genaiErr
}
