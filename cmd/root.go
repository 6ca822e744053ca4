/*
Copyright © 2025 Valentyn Solomko <valentyn.solomko@gmail.com>

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/7tiSeven/TRJM/internal/config"
	"github.com/7tiSeven/TRJM/internal/logging"
)

var version = "0.3.0"

var (
	configFile string

	cfg    *config.Config
	logger *slog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "trjm",
	Short: "LLM translation pipeline with quality review",
	Long: `A CLI application that translates text and documents through a multi-stage
LLM pipeline: routing, protected-token extraction, drafting, review with
confidence-driven retries, and target-language post-processing.

Every translation comes with a QA report (confidence, issues, glossary
compliance, protected-token integrity).

Configuration is read from --config, ./trjm.yaml or ~/.config/trjm/trjm.yaml,
and TRJM_* environment variables (e.g. TRJM_LLM_API_KEY).

Use "trjm translate --help" for translation options.`,
	Version:      version,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		v := viper.New()
		flags := cmd.Root().PersistentFlags()
		for key, flag := range map[string]string{
			"log.level":    "log-level",
			"log.format":   "log-format",
			"db.path":      "db",
			"llm.provider": "provider",
			"llm.model":    "model",
		} {
			if err := v.BindPFlag(key, flags.Lookup(flag)); err != nil {
				return err
			}
		}

		loaded, err := config.Load(v, configFile)
		if err != nil {
			return err
		}
		cfg = loaded

		logger, err = logging.New(os.Stderr, cfg.Log)
		if err != nil {
			return fmt.Errorf("failed to init logger: %w", err)
		}
		slog.SetDefault(logger)
		return nil
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&configFile, "config", "", "Config file (default ./trjm.yaml or ~/.config/trjm/trjm.yaml)")
	flags.String("log-level", "info", "Log level: debug, info, warn, error")
	flags.String("log-format", logging.FormatText, "Log format: text or json")
	flags.String("db", config.DefaultDBPath, "SQLite database path")
	flags.String("provider", "", "LLM provider: openai, vllm, ollama, mock")
	flags.String("model", "", "LLM model (provider default if empty)")
}
