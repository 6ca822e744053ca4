// Package config loads settings from defaults, an optional YAML file and
// TRJM_* environment variables.
package config

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/spf13/viper"

	"github.com/7tiSeven/TRJM/internal/document"
	"github.com/7tiSeven/TRJM/internal/llm"
	"github.com/7tiSeven/TRJM/internal/logging"
	"github.com/7tiSeven/TRJM/internal/orchestrator"
)

const (
	EnvPrefix     = "TRJM"
	FileName      = "trjm"
	DefaultDBPath = "./data/trjm.db"
)

type DocumentConfig struct {
	Concurrency       int `mapstructure:"concurrency"`
	MaxParagraphChars int `mapstructure:"max_paragraph_chars"`
}

type DBConfig struct {
	Path string `mapstructure:"path"`
}

type Config struct {
	LLM      llm.Config          `mapstructure:"llm"`
	Pipeline orchestrator.Config `mapstructure:"pipeline"`
	Document DocumentConfig      `mapstructure:"document"`
	DB       DBConfig            `mapstructure:"db"`
	Log      logging.Config      `mapstructure:"log"`
}

// SetDefaults registers every key so that environment overrides are seen by
// Unmarshal.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("llm.provider", llm.ProviderOpenAI)
	v.SetDefault("llm.base_url", "")
	v.SetDefault("llm.api_key", "")
	// Empty lets each provider pick its own default model.
	v.SetDefault("llm.model", "")
	v.SetDefault("llm.timeout", llm.DefaultTimeout)
	v.SetDefault("llm.max_retries", llm.DefaultMaxRetries)

	v.SetDefault("pipeline.confidence_threshold", orchestrator.DefaultConfidenceThreshold)
	v.SetDefault("pipeline.max_retries", orchestrator.DefaultMaxRetries)
	v.SetDefault("pipeline.llm_post_process", false)
	v.SetDefault("pipeline.verify_target_language", false)

	v.SetDefault("document.concurrency", document.DefaultConcurrency)
	v.SetDefault("document.max_paragraph_chars", document.DefaultMaxParagraphChars)

	v.SetDefault("db.path", DefaultDBPath)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", logging.FormatText)
}

// Load reads configuration into v. An explicit file must exist; otherwise
// trjm.yaml is looked up in the working directory and $HOME/.config/trjm and
// may be absent.
func Load(v *viper.Viper, file string) (*Config, error) {
	SetDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", file, err)
		}
	} else {
		v.SetConfigName(FileName)
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.config/trjm")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("read config: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	var errs []error

	if !slices.Contains(llm.Providers, strings.ToLower(c.LLM.Provider)) {
		errs = append(errs, fmt.Errorf("llm.provider: unknown provider %q (supported: %s)", c.LLM.Provider, strings.Join(llm.Providers, ", ")))
	}
	if c.LLM.Timeout <= 0 {
		errs = append(errs, fmt.Errorf("llm.timeout: must be positive, got %s", c.LLM.Timeout))
	}
	if c.LLM.MaxRetries < 0 {
		errs = append(errs, fmt.Errorf("llm.max_retries: must not be negative, got %d", c.LLM.MaxRetries))
	}
	if t := c.Pipeline.ConfidenceThreshold; t < 0 || t > 1 {
		errs = append(errs, fmt.Errorf("pipeline.confidence_threshold: must be in [0,1], got %v", t))
	}
	if c.Pipeline.MaxRetries < 0 {
		errs = append(errs, fmt.Errorf("pipeline.max_retries: must not be negative, got %d", c.Pipeline.MaxRetries))
	}
	if c.Document.Concurrency < 1 {
		errs = append(errs, fmt.Errorf("document.concurrency: must be at least 1, got %d", c.Document.Concurrency))
	}
	if c.Document.MaxParagraphChars < 0 {
		errs = append(errs, fmt.Errorf("document.max_paragraph_chars: must not be negative, got %d", c.Document.MaxParagraphChars))
	}
	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		errs = append(errs, fmt.Errorf("log.level: %w", err))
	}
	if f := strings.ToLower(c.Log.Format); f != "" && f != logging.FormatText && f != logging.FormatJSON {
		errs = append(errs, fmt.Errorf("log.format: must be %s or %s, got %q", logging.FormatText, logging.FormatJSON, c.Log.Format))
	}

	return errors.Join(errs...)
}
