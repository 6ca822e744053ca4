package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

const chatCompletionBody = `{
  "id": "chatcmpl-1",
  "object": "chat.completion",
  "created": 1700000000,
  "model": "gpt-4.1",
  "choices": [{"index": 0, "message": {"role": "assistant", "content": "{\"ok\":true}"}, "finish_reason": "stop"}],
  "usage": {"prompt_tokens": 12, "completion_tokens": 4, "total_tokens": 16}
}`

func newTestOpenAI(t *testing.T, handler http.HandlerFunc) *OpenAIProvider {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewOpenAI(Config{
		Provider:   ProviderOpenAI,
		BaseURL:    srv.URL + "/",
		APIKey:     "test-key",
		Model:      "gpt-4.1",
		Timeout:    5 * time.Second,
		MaxRetries: 0,
	})
}

func TestOpenAIProvider_ChatCompletion(t *testing.T) {
	var gotBody map[string]any
	p := newTestOpenAI(t, func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/chat/completions") {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if auth := r.Header.Get("Authorization"); auth != "Bearer test-key" {
			t.Errorf("unexpected Authorization header %q", auth)
		}
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("failed to decode request: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(chatCompletionBody))
	})

	resp, err := p.ChatCompletion(context.Background(),
		[]Message{System("be terse"), User("hello")},
		Options{Temperature: 0.1, MaxTokens: 1024, JSON: true})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if resp.Content != `{"ok":true}` {
		t.Errorf("unexpected content %q", resp.Content)
	}
	if resp.Usage.TotalTokens != 16 || resp.Usage.PromptTokens != 12 || resp.Usage.CompletionTokens != 4 {
		t.Errorf("unexpected usage %+v", resp.Usage)
	}
	if resp.FinishReason != "stop" {
		t.Errorf("expected finish reason stop, got %q", resp.FinishReason)
	}

	if gotBody["model"] != "gpt-4.1" {
		t.Errorf("expected default model in request, got %v", gotBody["model"])
	}
	rf, ok := gotBody["response_format"].(map[string]any)
	if !ok || rf["type"] != "json_object" {
		t.Errorf("expected json_object response format, got %v", gotBody["response_format"])
	}
	msgs, _ := gotBody["messages"].([]any)
	if len(msgs) != 2 {
		t.Errorf("expected 2 messages, got %d", len(msgs))
	}
}

func TestOpenAIProvider_ModelOverride(t *testing.T) {
	var model string
	p := newTestOpenAI(t, func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		json.NewDecoder(r.Body).Decode(&body)
		model, _ = body["model"].(string)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(chatCompletionBody))
	})

	if _, err := p.ChatCompletion(context.Background(), []Message{User("hi")}, Options{Model: "gpt-4o-mini"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if model != "gpt-4o-mini" {
		t.Errorf("expected model override, got %q", model)
	}
}

func TestOpenAIProvider_ErrorMapping(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		header   map[string]string
		sentinel error
	}{
		{"unauthorized", http.StatusUnauthorized, nil, ErrAuthentication},
		{"forbidden", http.StatusForbidden, nil, ErrAuthentication},
		{"rate limited", http.StatusTooManyRequests, map[string]string{"Retry-After": "7"}, ErrRateLimited},
		{"server error", http.StatusInternalServerError, nil, ErrProvider},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := newTestOpenAI(t, func(w http.ResponseWriter, r *http.Request) {
				for k, v := range tt.header {
					w.Header().Set(k, v)
				}
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(tt.status)
				w.Write([]byte(`{"error":{"message":"nope","type":"test","code":"test"}}`))
			})

			_, err := p.ChatCompletion(context.Background(), []Message{User("hi")}, Options{})
			if err == nil {
				t.Fatal("expected error")
			}
			if !errors.Is(err, tt.sentinel) {
				t.Errorf("expected %v, got %v", tt.sentinel, err)
			}
			var pe *ProviderError
			if !errors.As(err, &pe) {
				t.Fatalf("expected *ProviderError, got %T", err)
			}
			if pe.StatusCode != tt.status {
				t.Errorf("expected status %d, got %d", tt.status, pe.StatusCode)
			}
			if tt.sentinel == ErrRateLimited && pe.RetryAfter != 7*time.Second {
				t.Errorf("expected RetryAfter 7s, got %v", pe.RetryAfter)
			}
		})
	}
}

func TestOpenAIProvider_ContentFilter(t *testing.T) {
	p := newTestOpenAI(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(strings.Replace(chatCompletionBody, `"finish_reason": "stop"`, `"finish_reason": "content_filter"`, 1)))
	})

	_, err := p.ChatCompletion(context.Background(), []Message{User("hi")}, Options{})
	if !errors.Is(err, ErrContentFiltered) {
		t.Errorf("expected ErrContentFiltered, got %v", err)
	}
}

func TestOpenAIProvider_NoChoices(t *testing.T) {
	p := newTestOpenAI(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":"x","object":"chat.completion","created":1,"model":"gpt-4.1","choices":[]}`))
	})

	_, err := p.ChatCompletion(context.Background(), []Message{User("hi")}, Options{})
	if !errors.Is(err, ErrInvalidResponse) {
		t.Errorf("expected ErrInvalidResponse, got %v", err)
	}
}

func TestOpenAIProvider_Timeout(t *testing.T) {
	p := newTestOpenAI(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	})

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := p.ChatCompletion(ctx, []Message{User("hi")}, Options{})
	if !errors.Is(err, ErrTimeout) {
		t.Errorf("expected ErrTimeout, got %v", err)
	}
}

func TestNew_Factory(t *testing.T) {
	tests := []struct {
		cfg      Config
		wantName string
		wantErr  bool
	}{
		{Config{}, ProviderOpenAI, false},
		{Config{Provider: "OpenAI"}, ProviderOpenAI, false},
		{Config{Provider: ProviderVLLM, BaseURL: "http://localhost:8000/v1"}, ProviderVLLM, false},
		{Config{Provider: ProviderVLLM}, "", true},
		{Config{Provider: ProviderOllama}, ProviderOllama, false},
		{Config{Provider: ProviderMock}, ProviderMock, false},
		{Config{Provider: "bedrock"}, "", true},
	}

	for _, tt := range tests {
		p, err := New(tt.cfg)
		if tt.wantErr {
			if err == nil {
				t.Errorf("New(%+v): expected error", tt.cfg)
			}
			continue
		}
		if err != nil {
			t.Errorf("New(%+v): unexpected error %v", tt.cfg, err)
			continue
		}
		if p.Name() != tt.wantName {
			t.Errorf("New(%+v): expected %s, got %s", tt.cfg, tt.wantName, p.Name())
		}
	}
}
