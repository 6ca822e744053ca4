package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/viper"

	"github.com/7tiSeven/TRJM/internal/llm"
	"github.com/7tiSeven/TRJM/internal/orchestrator"
)

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("HOME", t.TempDir())

	cfg, err := Load(viper.New(), "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.LLM.Provider != llm.ProviderOpenAI {
		t.Errorf("provider = %q, want %q", cfg.LLM.Provider, llm.ProviderOpenAI)
	}
	if cfg.LLM.Timeout != llm.DefaultTimeout {
		t.Errorf("timeout = %s, want %s", cfg.LLM.Timeout, llm.DefaultTimeout)
	}
	if cfg.Pipeline.ConfidenceThreshold != orchestrator.DefaultConfidenceThreshold {
		t.Errorf("threshold = %v", cfg.Pipeline.ConfidenceThreshold)
	}
	if cfg.Pipeline.MaxRetries != orchestrator.DefaultMaxRetries {
		t.Errorf("max retries = %d", cfg.Pipeline.MaxRetries)
	}
	if cfg.DB.Path != DefaultDBPath {
		t.Errorf("db path = %q", cfg.DB.Path)
	}
	if cfg.Document.Concurrency < 1 {
		t.Errorf("concurrency = %d", cfg.Document.Concurrency)
	}
}

func TestLoad_FileAndEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "trjm.yaml")
	content := `
llm:
  provider: ollama
  model: qwen2.5:7b
  timeout: 30s
pipeline:
  confidence_threshold: 0.9
  max_retries: 1
log:
  level: debug
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("TRJM_PIPELINE_MAX_RETRIES", "4")
	t.Setenv("TRJM_LLM_API_KEY", "secret")

	cfg, err := Load(viper.New(), path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.LLM.Provider != llm.ProviderOllama || cfg.LLM.Model != "qwen2.5:7b" {
		t.Errorf("unexpected llm config %+v", cfg.LLM)
	}
	if cfg.LLM.Timeout != 30*time.Second {
		t.Errorf("timeout = %s, want 30s", cfg.LLM.Timeout)
	}
	if cfg.LLM.APIKey != "secret" {
		t.Errorf("api key not read from environment")
	}
	if cfg.Pipeline.ConfidenceThreshold != 0.9 {
		t.Errorf("threshold = %v, want 0.9", cfg.Pipeline.ConfidenceThreshold)
	}
	if cfg.Pipeline.MaxRetries != 4 {
		t.Errorf("max retries = %d, want env override 4", cfg.Pipeline.MaxRetries)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("log level = %q", cfg.Log.Level)
	}
}

func TestLoad_DiscoversFileInWorkingDir(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("HOME", t.TempDir())
	if err := os.WriteFile(filepath.Join(dir, "trjm.yaml"), []byte("db:\n  path: /tmp/x.db\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(viper.New(), "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.DB.Path != "/tmp/x.db" {
		t.Errorf("db path = %q, want /tmp/x.db", cfg.DB.Path)
	}
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	_, err := Load(viper.New(), filepath.Join(t.TempDir(), "nope.yaml"))
	if err == nil {
		t.Fatal("expected error for missing config file")
	}
}

func TestLoad_InvalidValues(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("HOME", t.TempDir())
	t.Setenv("TRJM_PIPELINE_CONFIDENCE_THRESHOLD", "1.5")
	t.Setenv("TRJM_LLM_PROVIDER", "deepl")

	_, err := Load(viper.New(), "")
	if err == nil {
		t.Fatal("expected validation error")
	}
	for _, want := range []string{"pipeline.confidence_threshold", "llm.provider"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error %q does not mention %s", err, want)
		}
	}
}

func TestValidate(t *testing.T) {
	valid := func() Config {
		return Config{
			LLM:      llm.Config{Provider: llm.ProviderMock, Timeout: time.Second},
			Pipeline: orchestrator.DefaultConfig(),
			Document: DocumentConfig{Concurrency: 2},
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{name: "valid", mutate: func(*Config) {}},
		{name: "zero threshold", mutate: func(c *Config) { c.Pipeline.ConfidenceThreshold = 0 }},
		{name: "negative threshold", mutate: func(c *Config) { c.Pipeline.ConfidenceThreshold = -0.1 }, wantErr: "confidence_threshold"},
		{name: "negative retries", mutate: func(c *Config) { c.Pipeline.MaxRetries = -1 }, wantErr: "pipeline.max_retries"},
		{name: "zero timeout", mutate: func(c *Config) { c.LLM.Timeout = 0 }, wantErr: "llm.timeout"},
		{name: "zero concurrency", mutate: func(c *Config) { c.Document.Concurrency = 0 }, wantErr: "document.concurrency"},
		{name: "bad log level", mutate: func(c *Config) { c.Log.Level = "loud" }, wantErr: "log.level"},
		{name: "bad log format", mutate: func(c *Config) { c.Log.Format = "xml" }, wantErr: "log.format"},
		{name: "provider case insensitive", mutate: func(c *Config) { c.LLM.Provider = "OpenAI" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("expected error containing %q, got %v", tt.wantErr, err)
			}
		})
	}
}
