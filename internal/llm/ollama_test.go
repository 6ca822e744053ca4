package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

func TestOllamaProvider_New(t *testing.T) {
	p := NewOllama(Config{})

	if p.baseURL != DefaultOllamaBaseURL {
		t.Errorf("expected default baseURL, got %q", p.baseURL)
	}
	if p.DefaultModel() != DefaultOllamaModel {
		t.Errorf("expected default model, got %q", p.DefaultModel())
	}
	if p.client == nil || p.client.Timeout != DefaultTimeout {
		t.Error("expected HTTP client with default timeout")
	}
}

func TestOllamaProvider_ChatCompletion_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/chat" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		var req ollamaChatRequest
		json.NewDecoder(r.Body).Decode(&req)

		if req.Model != "llama3.2" {
			t.Errorf("expected model 'llama3.2', got %q", req.Model)
		}
		if req.Stream {
			t.Error("expected stream=false")
		}
		if req.Format != "json" {
			t.Errorf("expected json format, got %q", req.Format)
		}
		if len(req.Messages) != 2 || req.Messages[0].Role != RoleSystem {
			t.Errorf("unexpected messages %+v", req.Messages)
		}

		json.NewEncoder(w).Encode(ollamaChatResponse{
			Model:           "llama3.2",
			Message:         Message{Role: RoleAssistant, Content: `{"translation":"مرحبا"}`},
			DoneReason:      "stop",
			PromptEvalCount: 20,
			EvalCount:       5,
		})
	}))
	defer server.Close()

	p := NewOllama(Config{BaseURL: server.URL, Model: "llama3.2"})

	resp, err := p.ChatCompletion(context.Background(), []Message{System("sys"), User("Hello")}, Options{JSON: true, MaxTokens: 100})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Content != `{"translation":"مرحبا"}` {
		t.Errorf("unexpected content %q", resp.Content)
	}
	if resp.Usage.TotalTokens != 25 {
		t.Errorf("expected 25 total tokens, got %d", resp.Usage.TotalTokens)
	}
}

func TestOllamaProvider_RetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		json.NewEncoder(w).Encode(ollamaChatResponse{Message: Message{Role: RoleAssistant, Content: "ok"}})
	}))
	defer server.Close()

	p := NewOllama(Config{BaseURL: server.URL, MaxRetries: 2})
	p.retryDelay = time.Millisecond

	resp, err := p.ChatCompletion(context.Background(), []Message{User("Hello")}, Options{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Content != "ok" {
		t.Errorf("expected ok, got %q", resp.Content)
	}
	if calls.Load() != 3 {
		t.Errorf("expected 3 calls (1 initial + 2 retries), got %d", calls.Load())
	}
}

func TestOllamaProvider_RetriesExhausted(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	p := NewOllama(Config{BaseURL: server.URL, MaxRetries: 1})
	p.retryDelay = time.Millisecond

	_, err := p.ChatCompletion(context.Background(), []Message{User("Hello")}, Options{})
	if !errors.Is(err, ErrRateLimited) {
		t.Errorf("expected ErrRateLimited, got %v", err)
	}
	if calls.Load() != 2 {
		t.Errorf("expected 2 calls, got %d", calls.Load())
	}
}

func TestOllamaProvider_NoRetryOnAuthError(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	p := NewOllama(Config{BaseURL: server.URL, MaxRetries: 3})
	p.retryDelay = time.Millisecond

	_, err := p.ChatCompletion(context.Background(), []Message{User("Hello")}, Options{})
	if !errors.Is(err, ErrAuthentication) {
		t.Errorf("expected ErrAuthentication, got %v", err)
	}
	if calls.Load() != 1 {
		t.Errorf("expected a single call, got %d", calls.Load())
	}
}

func TestOllamaProvider_InvalidJSONBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("not json"))
	}))
	defer server.Close()

	p := NewOllama(Config{BaseURL: server.URL})

	_, err := p.ChatCompletion(context.Background(), []Message{User("Hello")}, Options{})
	if !errors.Is(err, ErrInvalidResponse) {
		t.Errorf("expected ErrInvalidResponse, got %v", err)
	}
}

func TestOllamaProvider_IsAvailable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/tags" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Write([]byte(`{"models":[]}`))
	}))
	defer server.Close()

	if err := NewOllama(Config{BaseURL: server.URL}).IsAvailable(context.Background()); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}
