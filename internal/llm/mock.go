package llm

import (
	"context"
	"encoding/json"
	"strings"
	"sync"

	"github.com/7tiSeven/TRJM/internal"
)

const DefaultMockModel = "mock-model"

// Call records one ChatCompletion invocation on a MockProvider.
type Call struct {
	Messages []Message
	Options  Options
}

// MockProvider is a scripted provider for tests and offline runs. Responses
// come from Handler when set, then from the queue passed to NewMock, and
// finally from a built-in responder that recognises each pipeline stage.
type MockProvider struct {
	Handler func(messages []Message, opts Options) (string, error)

	mu        sync.Mutex
	responses []string
	calls     []Call
}

func NewMock(responses ...string) *MockProvider {
	return &MockProvider{responses: responses}
}

func (m *MockProvider) Name() string         { return ProviderMock }
func (m *MockProvider) DefaultModel() string { return DefaultMockModel }

func (m *MockProvider) ChatCompletion(ctx context.Context, messages []Message, opts Options) (*Response, error) {
	if err := ctx.Err(); err != nil {
		return nil, newError(ProviderMock, Classify(err), 0, err)
	}

	m.mu.Lock()
	m.calls = append(m.calls, Call{Messages: messages, Options: opts})
	var queued *string
	if m.Handler == nil && len(m.responses) > 0 {
		queued = &m.responses[0]
		m.responses = m.responses[1:]
	}
	m.mu.Unlock()

	var content string
	switch {
	case m.Handler != nil:
		out, err := m.Handler(messages, opts)
		if err != nil {
			return nil, err
		}
		content = out
	case queued != nil:
		content = *queued
	default:
		content = scriptedResponse(messages)
	}

	prompt := 0
	for _, msg := range messages {
		prompt += len(strings.Fields(msg.Content))
	}
	completion := len(strings.Fields(content))

	model := opts.Model
	if model == "" {
		model = DefaultMockModel
	}
	return &Response{
		Content:      content,
		Model:        model,
		FinishReason: "stop",
		Usage: internal.Usage{
			PromptTokens:     prompt,
			CompletionTokens: completion,
			TotalTokens:      prompt + completion,
		},
	}, nil
}

func (m *MockProvider) IsAvailable(ctx context.Context) error { return nil }

// Calls returns a copy of the recorded invocations.
func (m *MockProvider) Calls() []Call {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Call, len(m.calls))
	copy(out, m.calls)
	return out
}

func scriptedResponse(messages []Message) string {
	var system, user string
	for _, msg := range messages {
		switch msg.Role {
		case RoleSystem:
			system = strings.ToLower(msg.Content)
		case RoleUser:
			user = msg.Content
		}
	}

	var v any
	switch {
	case strings.Contains(system, "routing analyst"):
		v = map[string]any{
			"source_language":            "en",
			"source_language_confidence": 0.9,
			"content_type":               "general",
			"formality_level":            "neutral",
			"special_elements":           []any{},
			"recommended_style":          "neutral",
			"complexity_score":           0.3,
		}
	case strings.Contains(system, "quality reviewer"):
		v = map[string]any{
			"confidence_score":        0.9,
			"issues":                  []any{},
			"corrected_translation":   "",
			"glossary_compliance":     true,
			"protected_tokens_intact": true,
			"risky_spans":             []any{},
		}
	case strings.Contains(system, "typography editor"):
		return ""
	default:
		text := user
		if i := strings.LastIndex(user, "TEXT TO TRANSLATE:"); i >= 0 {
			text = strings.TrimSpace(user[i+len("TEXT TO TRANSLATE:"):])
		}
		v = map[string]any{"translation": text}
	}

	out, _ := json.Marshal(v)
	return string(out)
}
