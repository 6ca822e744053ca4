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
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/7tiSeven/TRJM/internal"
	"github.com/7tiSeven/TRJM/internal/document"
	"github.com/7tiSeven/TRJM/internal/store"
)

var (
	inputText  string
	inputFile  string
	outputFile string
	sourceLang string
	targetLang string
	style      string
	glossaryID string
	patterns   []string
	jsonOutput bool
	noStore    bool
)

var translateCmd = &cobra.Command{
	Use:   "translate",
	Short: "Translate text or a document",
	Long: `Translate text through the review pipeline and print the result.

Input comes from --text or --input (plain text or Markdown). Paragraphs are
translated independently and reassembled in order; fenced code blocks in
Markdown are kept verbatim.

Examples:
  trjm translate --text "Your code is {code}" -t ar
  trjm translate -i memo.md -o memo.ar.md -t ar --style government_memo
  trjm translate -i notice.txt -t fr --glossary <id> --pattern 'REF-\d+' --json`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if (inputText == "") == (inputFile == "") {
			return fmt.Errorf("exactly one of --text or --input is required")
		}
		if inputFile != "" && inputFile == outputFile {
			return fmt.Errorf("input file and output file cannot be the same")
		}

		req, err := buildRequest()
		if err != nil {
			return err
		}

		name, content := "text", []byte(inputText)
		if inputFile != "" {
			content, err = os.ReadFile(inputFile)
			if err != nil {
				return fmt.Errorf("failed to read input file: %w", err)
			}
			name = filepath.Base(inputFile)
		}
		doc := document.Parse(name, content, cfg.Document.MaxParagraphChars)

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		var db *store.Store
		if !noStore || glossaryID != "" {
			db, err = openStore()
			if err != nil {
				return err
			}
			defer db.Close()
		}

		var glossary []internal.GlossaryEntry
		if glossaryID != "" {
			glossary, err = db.Entries(ctx, glossaryID)
			if err != nil {
				return fmt.Errorf("failed to load glossary: %w", err)
			}
			fmt.Fprintf(os.Stderr, "Loaded %d glossary entries\n", len(glossary))
		}

		provider, err := buildProvider()
		if err != nil {
			return err
		}
		translator := buildTranslator(provider)

		var jobID string
		if !noStore {
			jobID, err = db.CreateJob(ctx, store.Job{
				InputName:   name,
				SourceLang:  string(req.SourceLanguage),
				TargetLang:  string(req.TargetLanguage),
				StylePreset: string(req.StylePreset),
				GlossaryID:  glossaryID,
				SourceText:  doc.Text(),
			})
			if err != nil {
				return err
			}
			logger.Debug("job created", "job_id", jobID)
		}

		result, err := translator.Translate(ctx, doc, req, glossary)
		if err != nil {
			if jobID != "" {
				// The caller's context may already be cancelled.
				if ferr := db.FailJob(context.WithoutCancel(ctx), jobID, err); ferr != nil {
					logger.Warn("failed to record job failure", "job_id", jobID, "error", ferr)
				}
			}
			return fmt.Errorf("translation failed: %w", err)
		}

		encoded, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to encode result: %w", err)
		}

		if jobID != "" {
			err = db.CompleteJob(ctx, jobID, store.JobOutcome{
				Translation: result.Text,
				Confidence:  result.MinConfidence,
				Retries:     result.Retries,
				TotalTokens: result.TotalTokens,
				ResultJSON:  encoded,
			})
			if err != nil {
				logger.Warn("failed to record job result", "job_id", jobID, "error", err)
			}
		}

		out := []byte(result.Text)
		if jsonOutput {
			out = append(encoded, '\n')
		}
		if err := writeOutput(outputFile, out); err != nil {
			return err
		}

		fmt.Fprintf(os.Stderr, "Translated %d paragraph(s) to %s: confidence %.2f (%s), retries %d, tokens %d\n",
			result.Translated, req.TargetLanguage.DisplayName(),
			result.MinConfidence, internal.ConfidenceLevel(result.MinConfidence),
			result.Retries, result.TotalTokens)
		if jobID != "" {
			fmt.Fprintf(os.Stderr, "Job: %s\n", jobID)
		}
		return nil
	},
}

// buildRequest validates the language and style flags into the template
// request shared by every paragraph.
func buildRequest() (internal.TranslationRequest, error) {
	target, ok := internal.ParseLanguageCode(targetLang)
	if !ok || target == internal.LangAuto {
		return internal.TranslationRequest{}, fmt.Errorf("unsupported target language %q", targetLang)
	}
	source, ok := internal.ParseLanguageCode(sourceLang)
	if !ok {
		return internal.TranslationRequest{}, fmt.Errorf("unsupported source language %q", sourceLang)
	}

	req := internal.TranslationRequest{
		SourceLanguage:    source,
		TargetLanguage:    target,
		GlossaryID:        glossaryID,
		ProtectedPatterns: patterns,
	}
	if style != "" {
		preset, ok := internal.ParseStylePreset(style)
		if !ok {
			return internal.TranslationRequest{}, fmt.Errorf("unknown style %q (supported: %v)", style, internal.StylePresets)
		}
		req.StylePreset = preset
	}
	return req, nil
}

func writeOutput(path string, data []byte) error {
	if path == "" {
		_, err := os.Stdout.Write(data)
		if err == nil && len(data) > 0 && data[len(data)-1] != '\n' {
			_, err = fmt.Fprintln(os.Stdout)
		}
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write output file: %w", err)
	}
	return nil
}

func init() {
	rootCmd.AddCommand(translateCmd)

	translateCmd.Flags().StringVar(&inputText, "text", "", "Text to translate")
	translateCmd.Flags().StringVarP(&inputFile, "input", "i", "", "Input file to translate (.txt or .md)")
	translateCmd.Flags().StringVarP(&outputFile, "output", "o", "", "Output file (stdout if empty)")
	translateCmd.Flags().StringVarP(&sourceLang, "source", "s", string(internal.LangAuto), "Source language code or auto")
	translateCmd.Flags().StringVarP(&targetLang, "target", "t", "", "Target language code (required)")
	translateCmd.Flags().StringVar(&style, "style", "", "Style preset: formal_msa, neutral, marketing, government_memo (router recommendation if empty)")
	translateCmd.Flags().StringVar(&glossaryID, "glossary", "", "Glossary ID to apply")
	translateCmd.Flags().StringArrayVar(&patterns, "pattern", nil, "Extra regex whose matches must not be translated (repeatable)")
	translateCmd.Flags().BoolVar(&jsonOutput, "json", false, "Write the full result with QA reports as JSON")
	translateCmd.Flags().BoolVar(&noStore, "no-store", false, "Do not record the job in the database")

	translateCmd.MarkFlagRequired("target")
}
