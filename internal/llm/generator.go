package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/shared"
	"github.com/openai/openai-go/shared/constant"
)

// ErrNoAPIKey is returned when no OpenAI key has been configured in settings.
var ErrNoAPIKey = errors.New("openai api key not configured")

// ErrEmptyCompletion is returned when the model answered without content.
var ErrEmptyCompletion = errors.New("openai returned no content")

const systemPrompt = "You are a B2B sales research assistant. Answer in plain text, concise and factual. " +
	"When you are not sure about a fact, say so instead of inventing it."

// Prompt is a single generation request.
type Prompt struct {
	APIKey      string
	Instruction string
	Context     string
	MaxTokens   int
}

// Generator produces text with the chat completions API. The API key is
// supplied per call because it lives in the settings row, not in the environment.
type Generator struct {
	model      string
	baseURL    string
	httpClient *http.Client
}

// Option customises a Generator.
type Option func(*Generator)

// WithBaseURL points the generator at an OpenAI compatible endpoint.
func WithBaseURL(url string) Option {
	return func(g *Generator) { g.baseURL = url }
}

// WithHTTPClient overrides the transport.
func WithHTTPClient(client *http.Client) Option {
	return func(g *Generator) { g.httpClient = client }
}

// NewGenerator builds a generator for the given model.
func NewGenerator(model string, opts ...Option) *Generator {
	if model == "" {
		model = "gpt-4o-mini"
	}
	g := &Generator{model: model}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Generate returns the model's answer for the prompt.
func (g *Generator) Generate(ctx context.Context, p Prompt) (string, error) {
	if strings.TrimSpace(p.APIKey) == "" {
		return "", ErrNoAPIKey
	}

	opts := []option.RequestOption{option.WithAPIKey(p.APIKey), option.WithMaxRetries(0)}
	if g.baseURL != "" {
		opts = append(opts, option.WithBaseURL(g.baseURL))
	}
	if g.httpClient != nil {
		opts = append(opts, option.WithHTTPClient(g.httpClient))
	}
	client := openai.NewClient(opts...)

	user := p.Instruction
	if p.Context != "" {
		user += "\n\n" + p.Context
	}

	params := openai.ChatCompletionNewParams{
		Model: shared.ChatModel(g.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			{
				OfSystem: &openai.ChatCompletionSystemMessageParam{
					Role:    constant.System("system"),
					Content: openai.ChatCompletionSystemMessageParamContentUnion{OfString: openai.String(systemPrompt)},
				},
			},
			{
				OfUser: &openai.ChatCompletionUserMessageParam{
					Role:    constant.User("user"),
					Content: openai.ChatCompletionUserMessageParamContentUnion{OfString: openai.String(user)},
				},
			},
		},
	}
	if p.MaxTokens > 0 {
		params.MaxCompletionTokens = openai.Int(int64(p.MaxTokens))
	}

	resp, err := client.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("create completion: %w", err)
	}
	for _, choice := range resp.Choices {
		if content := strings.TrimSpace(choice.Message.Content); content != "" {
			return content, nil
		}
	}
	return "", ErrEmptyCompletion
}
