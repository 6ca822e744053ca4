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
)

var jobsCmd = &cobra.Command{
	Use:   "jobs",
	Short: "Inspect recorded translation jobs",
	Long:  `List, inspect, and delete the translation jobs recorded by "trjm translate".`,
}

var jobsLimit int

var jobsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent jobs",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openStore()
		if err != nil {
			return err
		}
		defer db.Close()

		jobs, err := db.ListJobs(context.Background(), jobsLimit)
		if err != nil {
			return fmt.Errorf("failed to list jobs: %w", err)
		}
		if len(jobs) == 0 {
			fmt.Println("No jobs recorded.")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tSTATUS\tINPUT\tSOURCE\tTARGET\tCONFIDENCE\tTOKENS\tCREATED\tTEXT")
		for _, j := range jobs {
			snippet := []rune(j.SourceText)
			if len(snippet) > 40 {
				snippet = append(snippet[:37], []rune("...")...)
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%.2f\t%d\t%s\t%s\n",
				j.ID, j.Status, j.InputName, j.SourceLang, j.TargetLang,
				j.Confidence, j.TotalTokens, j.CreatedAt.Format("2006-01-02 15:04"),
				string(snippet))
		}
		return w.Flush()
	},
}

var jobsShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show a job and its stored result",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openStore()
		if err != nil {
			return err
		}
		defer db.Close()

		j, err := db.GetJob(context.Background(), args[0])
		if err != nil {
			return err
		}

		fmt.Printf("ID:          %s\n", j.ID)
		fmt.Printf("Status:      %s\n", j.Status)
		fmt.Printf("Input:       %s\n", j.InputName)
		fmt.Printf("Languages:   %s → %s\n", j.SourceLang, j.TargetLang)
		if j.StylePreset != "" {
			fmt.Printf("Style:       %s\n", j.StylePreset)
		}
		if j.GlossaryID != "" {
			fmt.Printf("Glossary:    %s\n", j.GlossaryID)
		}
		fmt.Printf("Confidence:  %.2f\n", j.Confidence)
		fmt.Printf("Retries:     %d\n", j.Retries)
		fmt.Printf("Tokens:      %d\n", j.TotalTokens)
		fmt.Printf("Created:     %s\n", j.CreatedAt.Format("2006-01-02 15:04:05"))
		fmt.Printf("Updated:     %s\n", j.UpdatedAt.Format("2006-01-02 15:04:05"))
		if j.Error != "" {
			fmt.Printf("Error:       %s\n", j.Error)
		}
		if j.ResultJSON != "" {
			fmt.Printf("\n%s\n", j.ResultJSON)
		} else if j.Translation != "" {
			fmt.Printf("\n%s\n", j.Translation)
		}
		return nil
	},
}

var jobsStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show job statistics",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openStore()
		if err != nil {
			return err
		}
		defer db.Close()

		stats, err := db.JobStats(context.Background())
		if err != nil {
			return fmt.Errorf("failed to get stats: %w", err)
		}

		fmt.Printf("Total jobs:      %d\n", stats.Total)
		fmt.Printf("Completed:       %d\n", stats.Completed)
		fmt.Printf("Failed:          %d\n", stats.Failed)
		fmt.Printf("Processing:      %d\n", stats.Processing)
		fmt.Printf("Total tokens:    %d\n", stats.TotalTokens)
		fmt.Printf("Avg confidence:  %.2f\n", stats.AvgConfidence)
		return nil
	},
}

var jobsDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a job by ID",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openStore()
		if err != nil {
			return err
		}
		defer db.Close()

		if err := db.DeleteJob(context.Background(), args[0]); err != nil {
			return fmt.Errorf("failed to delete job: %w", err)
		}
		fmt.Printf("Deleted job: %s\n", args[0])
		return nil
	},
}

func init() {
	rootCmd.AddCommand(jobsCmd)

	jobsListCmd.Flags().IntVarP(&jobsLimit, "limit", "n", 20, "Maximum number of jobs to list (0 for all)")

	jobsCmd.AddCommand(jobsListCmd)
	jobsCmd.AddCommand(jobsShowCmd)
	jobsCmd.AddCommand(jobsStatsCmd)
	jobsCmd.AddCommand(jobsDeleteCmd)
}
