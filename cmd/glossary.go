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
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/7tiSeven/TRJM/internal"
)

var glossaryCmd = &cobra.Command{
	Use:   "glossary",
	Short: "Manage terminology glossaries",
	Long: `Create glossaries and manage their terms.

A glossary maps source-language terms to required target-language
translations. Pass its ID to "trjm translate --glossary" to enforce it; the
reviewer reports compliance in the QA report.`,
}

var (
	glossarySource string
	glossaryTarget string
)

var glossaryCreateCmd = &cobra.Command{
	Use:   "create <name>",
	Short: "Create a glossary",
	Long: `Create a named glossary for a language pair.

Example:
  trjm glossary create legal-en-ar --source en --target ar`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		source, ok := internal.ParseLanguageCode(glossarySource)
		if !ok || source == internal.LangAuto {
			return fmt.Errorf("--source must be a supported language code")
		}
		target, ok := internal.ParseLanguageCode(glossaryTarget)
		if !ok || target == internal.LangAuto {
			return fmt.Errorf("--target must be a supported language code")
		}

		db, err := openStore()
		if err != nil {
			return err
		}
		defer db.Close()

		id, err := db.CreateGlossary(context.Background(), args[0], string(source), string(target))
		if err != nil {
			return fmt.Errorf("failed to create glossary: %w", err)
		}
		fmt.Printf("Created glossary %q [%s→%s]: %s\n", args[0], source, target, id)
		return nil
	},
}

var glossaryListCmd = &cobra.Command{
	Use:   "list",
	Short: "List glossaries",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openStore()
		if err != nil {
			return err
		}
		defer db.Close()

		list, err := db.ListGlossaries(context.Background())
		if err != nil {
			return fmt.Errorf("failed to list glossaries: %w", err)
		}
		if len(list) == 0 {
			fmt.Println("No glossaries.")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tNAME\tSOURCE LANG\tTARGET LANG\tCREATED")
		for _, g := range list {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
				g.ID, g.Name, g.SourceLang, g.TargetLang, g.CreatedAt.Format("2006-01-02 15:04"))
		}
		return w.Flush()
	},
}

var (
	termCaseSensitive bool
	termContext       string
)

var glossaryAddCmd = &cobra.Command{
	Use:   "add <glossary-id> <source-term> <target-term>",
	Short: "Add or update a glossary term",
	Long: `Add a term mapping to a glossary. Adding an existing source term replaces
its translation.

Example:
  trjm glossary add <id> "Ministry of Interior" "وزارة الداخلية" --case-sensitive`,
	Args: cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openStore()
		if err != nil {
			return err
		}
		defer db.Close()

		entry := internal.GlossaryEntry{
			SourceTerm:    args[1],
			TargetTerm:    args[2],
			CaseSensitive: termCaseSensitive,
			Context:       termContext,
		}
		id, err := db.AddTerm(context.Background(), args[0], entry)
		if err != nil {
			return fmt.Errorf("failed to add glossary term: %w", err)
		}
		fmt.Printf("Added: %q → %q (%s)\n", args[1], args[2], id)
		return nil
	},
}

var glossaryTermsCmd = &cobra.Command{
	Use:   "terms <glossary-id>",
	Short: "List the terms of a glossary",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openStore()
		if err != nil {
			return err
		}
		defer db.Close()

		ctx := context.Background()
		if _, err := db.GetGlossary(ctx, args[0]); err != nil {
			return err
		}
		terms, err := db.Terms(ctx, args[0])
		if err != nil {
			return fmt.Errorf("failed to list terms: %w", err)
		}
		if len(terms) == 0 {
			fmt.Println("Glossary is empty.")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tSOURCE TERM\tTARGET TERM\tCASE\tCONTEXT")
		for _, t := range terms {
			fmt.Fprintf(w, "%s\t%s\t%s\t%v\t%s\n",
				t.ID, t.SourceTerm, t.TargetTerm, t.CaseSensitive, t.Context)
		}
		return w.Flush()
	},
}

var deleteTerm bool

var glossaryDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a glossary or, with --term, a single term",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openStore()
		if err != nil {
			return err
		}
		defer db.Close()

		if deleteTerm {
			if err := db.DeleteTerm(context.Background(), args[0]); err != nil {
				return fmt.Errorf("failed to delete term: %w", err)
			}
			fmt.Printf("Deleted glossary term: %s\n", args[0])
			return nil
		}
		if err := db.DeleteGlossary(context.Background(), args[0]); err != nil {
			return fmt.Errorf("failed to delete glossary: %w", err)
		}
		fmt.Printf("Deleted glossary: %s\n", args[0])
		return nil
	},
}

func init() {
	rootCmd.AddCommand(glossaryCmd)

	glossaryCreateCmd.Flags().StringVarP(&glossarySource, "source", "s", "", "Source language code (e.g. en)")
	glossaryCreateCmd.Flags().StringVarP(&glossaryTarget, "target", "t", "", "Target language code (e.g. ar)")
	glossaryCreateCmd.MarkFlagRequired("source")
	glossaryCreateCmd.MarkFlagRequired("target")

	glossaryAddCmd.Flags().BoolVar(&termCaseSensitive, "case-sensitive", false, "Match the source term case-sensitively")
	glossaryAddCmd.Flags().StringVar(&termContext, "context", "", "Usage note passed to the translator")

	glossaryDeleteCmd.Flags().BoolVar(&deleteTerm, "term", false, "Treat the ID as a glossary term ID")

	glossaryCmd.AddCommand(glossaryCreateCmd)
	glossaryCmd.AddCommand(glossaryListCmd)
	glossaryCmd.AddCommand(glossaryAddCmd)
	glossaryCmd.AddCommand(glossaryTermsCmd)
	glossaryCmd.AddCommand(glossaryDeleteCmd)
}
