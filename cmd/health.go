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
	"time"

	"github.com/spf13/cobra"
)

var healthTimeout time.Duration

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check that the LLM provider and database are reachable",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithTimeout(context.Background(), healthTimeout)
		defer cancel()

		provider, err := buildProvider()
		if err != nil {
			return err
		}

		failed := false
		if err := provider.IsAvailable(ctx); err != nil {
			fmt.Printf("provider  %s (%s): unavailable: %v\n", provider.Name(), provider.DefaultModel(), err)
			failed = true
		} else {
			fmt.Printf("provider  %s (%s): ok\n", provider.Name(), provider.DefaultModel())
		}

		db, err := openStore()
		if err == nil {
			err = db.Ping(ctx)
			db.Close()
		}
		if err != nil {
			fmt.Printf("database  %s: unavailable: %v\n", cfg.DB.Path, err)
			failed = true
		} else {
			fmt.Printf("database  %s: ok\n", cfg.DB.Path)
		}

		if failed {
			return fmt.Errorf("health check failed")
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(healthCmd)

	healthCmd.Flags().DurationVar(&healthTimeout, "timeout", 10*time.Second, "Time allowed for the checks")
}
