package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/7tiSeven/TRJM/internal"
)

const (
	DefaultOllamaBaseURL = "http://localhost:11434"
	DefaultOllamaModel   = "qwen2.5:14b"
)

// OllamaProvider uses a local Ollama server through its /api/chat endpoint.
type OllamaProvider struct {
	model      string
	baseURL    string
	client     *http.Client
	maxRetries int
	retryDelay time.Duration
}

type ollamaChatRequest struct {
	Model    string         `json:"model"`
	Messages []Message      `json:"messages"`
	Stream   bool           `json:"stream"`
	Format   string         `json:"format,omitempty"`
	Options  map[string]any `json:"options,omitempty"`
}

type ollamaChatResponse struct {
	Model           string  `json:"model"`
	Message         Message `json:"message"`
	DoneReason      string  `json:"done_reason"`
	PromptEvalCount int     `json:"prompt_eval_count"`
	EvalCount       int     `json:"eval_count"`
}

func NewOllama(cfg Config) *OllamaProvider {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultOllamaBaseURL
	}
	model := cfg.Model
	if model == "" {
		model = DefaultOllamaModel
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &OllamaProvider{
		model:      model,
		baseURL:    baseURL,
		client:     &http.Client{Timeout: timeout},
		maxRetries: max(cfg.MaxRetries, 0),
		retryDelay: time.Second,
	}
}

func (p *OllamaProvider) Name() string         { return ProviderOllama }
func (p *OllamaProvider) DefaultModel() string { return p.model }

// ChatCompletion retries 429 and 5xx responses with a linear delay.
func (p *OllamaProvider) ChatCompletion(ctx context.Context, messages []Message, opts Options) (*Response, error) {
	model := opts.Model
	if model == "" {
		model = p.model
	}

	reqBody := ollamaChatRequest{
		Model:    model,
		Messages: messages,
		Stream:   false,
		Options:  map[string]any{"temperature": opts.Temperature},
	}
	if opts.MaxTokens > 0 {
		reqBody.Options["num_predict"] = opts.MaxTokens
	}
	if opts.JSON {
		reqBody.Format = "json"
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return nil, newError(ProviderOllama, KindUnknown, 0, fmt.Errorf("failed to marshal request: %w", err))
	}

	var lastErr *ProviderError
	for attempt := 0; attempt <= p.maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, newError(ProviderOllama, Classify(ctx.Err()), 0, ctx.Err())
			case <-time.After(time.Duration(attempt) * p.retryDelay):
			}
		}

		resp, err := p.do(ctx, jsonData)
		if err == nil {
			return resp, nil
		}
		if !errors.As(err, &lastErr) || !retryable(lastErr) {
			return nil, err
		}
	}
	return nil, lastErr
}

func (p *OllamaProvider) do(ctx context.Context, body []byte) (*Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/api/chat", bytes.NewReader(body))
	if err != nil {
		return nil, newError(ProviderOllama, KindUnknown, 0, fmt.Errorf("failed to create request: %w", err))
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, newError(ProviderOllama, Classify(err), 0, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		pe := newError(ProviderOllama, KindForStatus(resp.StatusCode), resp.StatusCode, fmt.Errorf("%s", bytes.TrimSpace(msg)))
		if pe.Kind == KindRateLimit {
			pe.RetryAfter = parseRetryAfter(resp.Header)
		}
		return nil, pe
	}

	var chatResp ollamaChatResponse
	if err := json.NewDecoder(resp.Body).Decode(&chatResp); err != nil {
		return nil, newError(ProviderOllama, KindInvalidResponse, 0, fmt.Errorf("failed to decode response: %w", err))
	}

	return &Response{
		Content:      chatResp.Message.Content,
		Model:        chatResp.Model,
		FinishReason: chatResp.DoneReason,
		Usage: internal.Usage{
			PromptTokens:     chatResp.PromptEvalCount,
			CompletionTokens: chatResp.EvalCount,
			TotalTokens:      chatResp.PromptEvalCount + chatResp.EvalCount,
		},
	}, nil
}

func (p *OllamaProvider) IsAvailable(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+"/api/tags", nil)
	if err != nil {
		return newError(ProviderOllama, KindUnknown, 0, err)
	}
	resp, err := p.client.Do(req)
	if err != nil {
		return newError(ProviderOllama, Classify(err), 0, fmt.Errorf("ollama not reachable at %s: %w", p.baseURL, err))
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return newError(ProviderOllama, KindForStatus(resp.StatusCode), resp.StatusCode, errors.New("unexpected status from /api/tags"))
	}
	return nil
}

func retryable(err *ProviderError) bool {
	return err.Kind == KindRateLimit || err.StatusCode >= 500
}
