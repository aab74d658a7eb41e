package semantic

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	openai "github.com/sashabaranov/go-openai"

	"github.com/smartclass/triage/internal/triage"
	"github.com/smartclass/triage/pkg/formatting"
)

const sentimentPrompt = `You score the sentiment of short classroom chat messages written by students.
Return the probability of each sentiment class. The four values must sum to 1.
Respond with JSON only.`

const keyPhrasesPrompt = `You extract key phrases from short classroom chat messages written by students.
Return the noun phrases that carry the message topic, each with a confidence between 0 and 1.
Keep the phrases in the message language. Respond with JSON only.`

var sentimentSchema = &Schema{
	Name: "sentiment_scores",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"positive": probability,
			"negative": probability,
			"neutral":  probability,
			"mixed":    probability,
		},
		"required":             []string{"positive", "negative", "neutral", "mixed"},
		"additionalProperties": false,
	},
}

var keyPhrasesSchema = &Schema{
	Name: "key_phrases",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"key_phrases": map[string]any{
				"type": "array",
				"items": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"text":       map[string]any{"type": "string", "minLength": 1},
						"confidence": probability,
					},
					"required":             []string{"text", "confidence"},
					"additionalProperties": false,
				},
			},
		},
		"required":             []string{"key_phrases"},
		"additionalProperties": false,
	},
}

var probability = map[string]any{
	"type":    "number",
	"minimum": 0,
	"maximum": 1,
}

type keyPhrasesResponse struct {
	KeyPhrases []triage.KeyPhrase `json:"key_phrases"`
}

// LLM analyzes text with an OpenAI-compatible chat completion API.
type LLM struct {
	client *openai.Client
	model  string
}

// NewLLM creates an LLM analyzer. BaseURL may point at any OpenAI-compatible API.
func NewLLM(cfg OpenAIConfig) (*LLM, error) {
	if cfg.APIKey == "" {
		return nil, ErrMissingAPIKey
	}

	config := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		config.BaseURL = cfg.BaseURL
	}

	return &LLM{
		client: openai.NewClientWithConfig(config),
		model:  cfg.Model,
	}, nil
}

func (l *LLM) Sentiment(ctx context.Context, text, language string) (triage.SentimentScores, error) {
	content, err := l.complete(ctx, sentimentPrompt, sentimentSchema, text, language)
	if err != nil {
		return triage.SentimentScores{}, err
	}

	scores, err := formatting.Parse[triage.SentimentScores](content)
	if err != nil {
		return triage.SentimentScores{}, &ErrInvalidResponse{Content: content, Err: err}
	}
	return scores, nil
}

func (l *LLM) KeyPhrases(ctx context.Context, text, language string) ([]triage.KeyPhrase, error) {
	content, err := l.complete(ctx, keyPhrasesPrompt, keyPhrasesSchema, text, language)
	if err != nil {
		return nil, err
	}

	resp, err := formatting.Parse[keyPhrasesResponse](content)
	if err != nil {
		return nil, &ErrInvalidResponse{Content: content, Err: err}
	}
	return resp.KeyPhrases, nil
}

func (l *LLM) complete(ctx context.Context, system string, schema *Schema, text, language string) (string, error) {
	schemaBytes, err := json.Marshal(schema.Definition)
	if err != nil {
		return "", fmt.Errorf("marshal schema: %w", err)
	}

	req := openai.ChatCompletionRequest{
		Model: l.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: fmt.Sprintf("Language: %s\nMessage: %s", language, text)},
		},
		Temperature: 0,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONSchema,
			JSONSchema: &openai.ChatCompletionResponseFormatJSONSchema{
				Name:   schema.Name,
				Schema: json.RawMessage(schemaBytes),
				Strict: true,
			},
		},
	}

	resp, err := l.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", mapOpenAIError(err)
	}
	if len(resp.Choices) == 0 {
		return "", &ErrInvalidResponse{Err: fmt.Errorf("no choices in response")}
	}

	content := resp.Choices[0].Message.Content
	if err := validateResponse(schema, content); err != nil {
		return "", err
	}
	return content, nil
}

func mapOpenAIError(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) && apiErr.HTTPStatusCode == http.StatusTooManyRequests {
		return &ErrUnavailable{Provider: ProviderOpenAI, Err: fmt.Errorf("rate limited: %w", err)}
	}
	return &ErrUnavailable{Provider: ProviderOpenAI, Err: err}
}
