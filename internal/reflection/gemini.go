package reflection

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

const DefaultGeminiModel = "gemini-1.5-flash"

// Journal entries routinely describe distress; the provider's own policies
// still apply on top of these thresholds.
var geminiSafetySettings = []*genai.SafetySetting{
	{Category: genai.HarmCategoryHarassment, Threshold: genai.HarmBlockThresholdBlockNone},
	{Category: genai.HarmCategoryHateSpeech, Threshold: genai.HarmBlockThresholdBlockNone},
	{Category: genai.HarmCategorySexuallyExplicit, Threshold: genai.HarmBlockThresholdBlockNone},
	{Category: genai.HarmCategoryDangerousContent, Threshold: genai.HarmBlockThresholdBlockNone},
}

type GeminiReflector struct {
	client *genai.Client
	model  string
}

func NewGeminiReflector(client *genai.Client, model string) (*GeminiReflector, error) {
	if client == nil {
		return nil, errors.New("[GeminiReflector] client is nil")
	}
	if model == "" {
		model = DefaultGeminiModel
	}
	return &GeminiReflector{client: client, model: model}, nil
}

func (g *GeminiReflector) Name() string {
	return "gemini"
}

func (g *GeminiReflector) Reflect(ctx context.Context, req Request) (Result, error) {
	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(BuildPrompt(req)), &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		SafetySettings:   geminiSafetySettings,
	})
	if err != nil {
		var apiErr genai.APIError
		if errors.As(err, &apiErr) {
			return Result{}, &StatusError{StatusCode: apiErr.Code, Err: err}
		}
		return Result{}, fmt.Errorf("[GeminiReflector] generate content failed: %w", err)
	}

	text := firstCandidateText(resp)
	if text == "" {
		return Result{}, ErrNoContent
	}

	return ParseResult(text)
}

func (g *GeminiReflector) Ping(ctx context.Context) error {
	if _, err := g.client.Models.Get(ctx, g.model, nil); err != nil {
		return fmt.Errorf("[GeminiReflector] model lookup failed: %w", err)
	}
	return nil
}

func firstCandidateText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 {
		return ""
	}
	content := resp.Candidates[0].Content
	if content == nil {
		return ""
	}

	var b strings.Builder
	for _, part := range content.Parts {
		if part != nil {
			b.WriteString(part.Text)
		}
	}
	return strings.TrimSpace(b.String())
}
