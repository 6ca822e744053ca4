package llm

import (
	"context"
	"errors"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/openai/openai-go/v3/shared"

	"github.com/7tiSeven/TRJM/internal"
)

const (
	DefaultOpenAIBaseURL = "https://api.openai.com/v1"
	DefaultOpenAIModel   = "gpt-4.1"
)

// OpenAIProvider talks to the OpenAI chat completions API or any server that
// implements it (vLLM, LiteLLM and similar).
type OpenAIProvider struct {
	name   string
	model  string
	client openai.Client
}

// NewOpenAI creates a provider from cfg. Transient failures (429, 5xx and
// connection errors) are retried inside the SDK up to cfg.MaxRetries times.
func NewOpenAI(cfg Config) *OpenAIProvider {
	name := cfg.Provider
	if name == "" {
		name = ProviderOpenAI
	}
	model := cfg.Model
	if model == "" {
		model = DefaultOpenAIModel
	}

	opts := []option.RequestOption{option.WithMaxRetries(max(cfg.MaxRetries, 0))}
	if cfg.APIKey != "" {
		opts = append(opts, option.WithAPIKey(cfg.APIKey))
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	if cfg.Timeout > 0 {
		opts = append(opts, option.WithRequestTimeout(cfg.Timeout))
	}

	return &OpenAIProvider{
		name:   name,
		model:  model,
		client: openai.NewClient(opts...),
	}
}

func (p *OpenAIProvider) Name() string         { return p.name }
func (p *OpenAIProvider) DefaultModel() string { return p.model }

func (p *OpenAIProvider) ChatCompletion(ctx context.Context, messages []Message, opts Options) (*Response, error) {
	model := opts.Model
	if model == "" {
		model = p.model
	}

	params := openai.ChatCompletionNewParams{
		Model:       openai.ChatModel(model),
		Messages:    toOpenAIMessages(messages),
		Temperature: openai.Float(opts.Temperature),
	}
	if opts.MaxTokens > 0 {
		params.MaxTokens = openai.Int(int64(opts.MaxTokens))
	}
	if opts.JSON {
		params.ResponseFormat = openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONObject: &shared.ResponseFormatJSONObjectParam{},
		}
	}

	resp, err := p.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return nil, p.wrapError(err)
	}

	if len(resp.Choices) == 0 {
		return nil, newError(p.name, KindInvalidResponse, 0, errors.New("no choices in response"))
	}
	choice := resp.Choices[0]
	if choice.FinishReason == "content_filter" {
		return nil, newError(p.name, KindContentFilter, 0, errors.New("completion stopped by content filter"))
	}

	return &Response{
		Content:      choice.Message.Content,
		Model:        resp.Model,
		FinishReason: string(choice.FinishReason),
		Usage: internal.Usage{
			PromptTokens:     int(resp.Usage.PromptTokens),
			CompletionTokens: int(resp.Usage.CompletionTokens),
			TotalTokens:      int(resp.Usage.TotalTokens),
		},
	}, nil
}

func (p *OpenAIProvider) IsAvailable(ctx context.Context) error {
	if _, err := p.client.Models.List(ctx); err != nil {
		return p.wrapError(err)
	}
	return nil
}

func (p *OpenAIProvider) wrapError(err error) error {
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		kind := KindForStatus(apiErr.StatusCode)
		if apiErr.Code == "content_filter" {
			kind = KindContentFilter
		}
		pe := newError(p.name, kind, apiErr.StatusCode, err)
		if kind == KindRateLimit && apiErr.Response != nil {
			pe.RetryAfter = parseRetryAfter(apiErr.Response.Header)
		}
		return pe
	}
	return newError(p.name, Classify(err), 0, err)
}

func toOpenAIMessages(messages []Message) []openai.ChatCompletionMessageParamUnion {
	out := make([]openai.ChatCompletionMessageParamUnion, 0, len(messages))
	for _, m := range messages {
		switch m.Role {
		case RoleSystem:
			out = append(out, openai.SystemMessage(m.Content))
		case RoleAssistant:
			out = append(out, openai.AssistantMessage(m.Content))
		default:
			out = append(out, openai.UserMessage(m.Content))
		}
	}
	return out
}
