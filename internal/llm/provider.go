// Package llm abstracts chat-completion backends behind a single Provider
// interface. Concrete providers own their transport and their own
// transient-error retries; callers only see typed ProviderErrors.
package llm

import (
	"context"

	"github.com/7tiSeven/TRJM/internal"
)

type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

func System(content string) Message { return Message{Role: RoleSystem, Content: content} }
func User(content string) Message   { return Message{Role: RoleUser, Content: content} }

// Options are per-call generation parameters. An empty Model selects the
// provider's default model.
type Options struct {
	Model       string
	Temperature float64
	MaxTokens   int
	JSON        bool
}

type Response struct {
	Content      string
	Model        string
	FinishReason string
	Usage        internal.Usage
}

// Provider is safe for concurrent use by multiple goroutines.
type Provider interface {
	Name() string
	DefaultModel() string
	ChatCompletion(ctx context.Context, messages []Message, opts Options) (*Response, error)
	IsAvailable(ctx context.Context) error
}
