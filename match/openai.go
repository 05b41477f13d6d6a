package match

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"

	openai "github.com/sashabaranov/go-openai"

	"github.com/tsawler/unitable/model"
)

// ErrMissingAPIKey is returned by NewOpenAI when no API key is configured.
var ErrMissingAPIKey = errors.New("missing OpenAI API key")

const systemPrompt = "You are a data analyst who identifies semantically similar columns. Always respond with a valid JSON dictionary."

const userPromptTemplate = `Here are column names from multiple data tables:
%s

Identify columns that semantically mean the same thing but use different names.
Group them together and suggest a standardized name for each group.

Return the result as a JSON dictionary mapping original column names to standardized names.

Rules:
1. Use lowercase with underscores for standardized names
2. Only include columns that are part of a similar group
3. Return a valid JSON dictionary

Example:
If you see these columns:
- "DOB", "Birth Date", "Date of Birth"
- "EE Only", "Single", "Employee"

Return exactly this format:
{
    "DOB": "date_of_birth",
    "Birth Date": "date_of_birth",
    "Date of Birth": "date_of_birth",
    "EE Only": "employee_only",
    "Single": "employee_only",
    "Employee": "employee_only"
}`

// OpenAI implements Matcher using the OpenAI chat completions API with a
// JSON-object response format and deterministic (zero temperature) sampling.
type OpenAI struct {
	client    *openai.Client
	modelName string
}

// OpenAIOption configures the OpenAI matcher.
type OpenAIOption func(*openAIConfig)

type openAIConfig struct {
	apiKey    string
	modelName string
	baseURL   string
}

// WithAPIKey sets the API key explicitly instead of reading OPENAI_API_KEY.
func WithAPIKey(key string) OpenAIOption {
	return func(c *openAIConfig) { c.apiKey = key }
}

// WithModel overrides the default chat model.
func WithModel(name string) OpenAIOption {
	return func(c *openAIConfig) { c.modelName = name }
}

// WithBaseURL points the client at a different API endpoint. Useful for
// proxies and for tests.
func WithBaseURL(url string) OpenAIOption {
	return func(c *openAIConfig) { c.baseURL = url }
}

// NewOpenAI creates an OpenAI-backed matcher. The API key comes from the
// WithAPIKey option or the OPENAI_API_KEY environment variable; a missing
// key returns ErrMissingAPIKey. This is the only configuration error in the
// pipeline and it surfaces before any grid is read.
func NewOpenAI(opts ...OpenAIOption) (*OpenAI, error) {
	cfg := openAIConfig{
		modelName: openai.GPT4o,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	if cfg.apiKey == "" {
		cfg.apiKey = os.Getenv("OPENAI_API_KEY")
	}
	if cfg.apiKey == "" {
		return nil, ErrMissingAPIKey
	}

	clientCfg := openai.DefaultConfig(cfg.apiKey)
	if cfg.baseURL != "" {
		clientCfg.BaseURL = cfg.baseURL
	}

	return &OpenAI{
		client:    openai.NewClientWithConfig(clientCfg),
		modelName: cfg.modelName,
	}, nil
}

// Name implements Matcher.
func (o *OpenAI) Name() string {
	return "openai:" + o.modelName
}

// Match implements Matcher. It sends the label list in a single chat
// completion request and validates the response shape with ParseMapping.
func (o *OpenAI) Match(ctx context.Context, labels []string) (model.Mapping, error) {
	if len(labels) == 0 {
		return model.Mapping{}, nil
	}

	labelList, err := json.Marshal(labels)
	if err != nil {
		return nil, fmt.Errorf("encoding labels: %w", err)
	}

	resp, err := o.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: o.modelName,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: fmt.Sprintf(userPromptTemplate, labelList)},
		},
		// The client omits a zero temperature from the request, so send the
		// smallest representable value to ask for deterministic output.
		Temperature: math.SmallestNonzeroFloat32,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, errors.New("chat completion returned no choices")
	}

	return ParseMapping([]byte(resp.Choices[0].Message.Content))
}
