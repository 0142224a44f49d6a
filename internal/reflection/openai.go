package reflection

import (
	"context"
	"errors"
	"fmt"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/responses"
)

const DefaultOpenAIModel = "gpt-4o-mini"

var resultSchema = GenerateSchema[Result]()

type OpenAIReflector struct {
	client *openai.Client
	model  string
}

func NewOpenAIReflector(client *openai.Client, model string) (*OpenAIReflector, error) {
	if client == nil {
		return nil, errors.New("[OpenAIReflector] client is nil")
	}
	if model == "" {
		model = DefaultOpenAIModel
	}
	return &OpenAIReflector{client: client, model: model}, nil
}

func (o *OpenAIReflector) Name() string {
	return "openai"
}

func (o *OpenAIReflector) Reflect(ctx context.Context, req Request) (Result, error) {
	format := responses.ResponseFormatTextConfigUnionParam{
		OfJSONSchema: &responses.ResponseFormatTextJSONSchemaConfigParam{
			Name:        "JournalReflection",
			Schema:      resultSchema,
			Strict:      openai.Bool(true),
			Description: openai.String("Journal reflection JSON"),
			Type:        "json_schema",
		},
	}

	params := responses.ResponseNewParams{
		Model:           o.model,
		MaxOutputTokens: openai.Int(400),
		Instructions:    openai.String(systemInstructions),
		Input: responses.ResponseNewParamsInputUnion{
			OfInputItemList: []responses.ResponseInputItemUnionParam{
				responses.ResponseInputItemParamOfMessage(BuildPrompt(req), responses.EasyInputMessageRoleUser),
			},
		},
		Text: responses.ResponseTextConfigParam{
			Format: format,
		},
	}

	resp, err := o.client.Responses.New(ctx, params)
	if err != nil {
		var apiErr *openai.Error
		if errors.As(err, &apiErr) {
			return Result{}, &StatusError{StatusCode: apiErr.StatusCode, Err: err}
		}
		return Result{}, fmt.Errorf("[OpenAIReflector] response request failed: %w", err)
	}

	text := resp.OutputText()
	if text == "" {
		return Result{}, ErrNoContent
	}

	return ParseResult(text)
}

func (o *OpenAIReflector) Ping(ctx context.Context) error {
	if _, err := o.client.Models.Get(ctx, o.model); err != nil {
		return fmt.Errorf("[OpenAIReflector] model lookup failed: %w", err)
	}
	return nil
}
