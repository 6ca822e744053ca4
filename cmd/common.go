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
	"os"
	"path/filepath"

	"github.com/7tiSeven/TRJM/internal/document"
	"github.com/7tiSeven/TRJM/internal/llm"
	"github.com/7tiSeven/TRJM/internal/orchestrator"
	"github.com/7tiSeven/TRJM/internal/store"
)

// buildProvider constructs the configured LLM provider. It is called once
// per process and shared by every stage.
func buildProvider() (llm.Provider, error) {
	provider, err := llm.New(cfg.LLM)
	if err != nil {
		return nil, fmt.Errorf("failed to create LLM provider: %w", err)
	}
	return provider, nil
}

// buildTranslator wires the provider into the pipeline and the document
// translator on top of it.
func buildTranslator(provider llm.Provider) *document.Translator {
	pipeline := orchestrator.New(provider, cfg.Pipeline, orchestrator.WithLogger(logger))
	return document.NewTranslator(pipeline, cfg.Document.Concurrency, logger)
}

func openStore() (*store.Store, error) {
	if dir := filepath.Dir(cfg.DB.Path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}
	db, err := store.New(cfg.DB.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return db, nil
}
