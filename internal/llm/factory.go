package llm

import (
	"fmt"
	"strings"
	"time"
)

const (
	ProviderOpenAI = "openai"
	ProviderVLLM   = "vllm"
	ProviderOllama = "ollama"
	ProviderMock   = "mock"

	DefaultTimeout    = 120 * time.Second
	DefaultMaxRetries = 3
)

var Providers = []string{ProviderOpenAI, ProviderVLLM, ProviderOllama, ProviderMock}

type Config struct {
	Provider   string        `mapstructure:"provider" json:"provider"`
	BaseURL    string        `mapstructure:"base_url" json:"base_url"`
	APIKey     string        `mapstructure:"api_key" json:"-"`
	Model      string        `mapstructure:"model" json:"model"`
	Timeout    time.Duration `mapstructure:"timeout" json:"timeout"`
	MaxRetries int           `mapstructure:"max_retries" json:"max_retries"`
}

// New builds the provider named by cfg.Provider. It is meant to be called
// once at startup; the returned provider is shared across requests.
func New(cfg Config) (Provider, error) {
	name := strings.ToLower(strings.TrimSpace(cfg.Provider))
	cfg.Provider = name

	switch name {
	case "", ProviderOpenAI:
		cfg.Provider = ProviderOpenAI
		if cfg.BaseURL == "" {
			cfg.BaseURL = DefaultOpenAIBaseURL
		}
		return NewOpenAI(cfg), nil
	case ProviderVLLM:
		if cfg.BaseURL == "" {
			return nil, fmt.Errorf("vllm provider requires a base URL")
		}
		if cfg.APIKey == "" {
			cfg.APIKey = "not-needed"
		}
		return NewOpenAI(cfg), nil
	case ProviderOllama:
		return NewOllama(cfg), nil
	case ProviderMock:
		return NewMock(), nil
	default:
		return nil, fmt.Errorf("unknown LLM provider %q (supported: %s)", cfg.Provider, strings.Join(Providers, ", "))
	}
}
