/*
 * Copyright 2025 tomoncle.
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/tomoncle/querydsl/database"
	"github.com/tomoncle/querydsl/utils"
)

var log = utils.NewLogger("CLI")

type rootOptions struct {
	Verbose bool
	Config  string
}

// load returns the configured store, the in-memory one by default.
func (o *rootOptions) load() (*database.Config, error) {
	if o.Config == "" {
		return database.DefaultConfig(), nil
	}
	return database.LoadConfig(o.Config)
}

func newRootCommand() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:           "querydsl",
		Short:         "Type-safe queries over bun",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if opts.Verbose {
				utils.ConfigureLogLevel("debug")
			}
		},
	}
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "debug logging and SQL statements")
	cmd.PersistentFlags().StringVarP(&opts.Config, "config", "c", "", "database config file (yaml)")

	cmd.AddCommand(newDemoCommand(opts))
	cmd.AddCommand(newForeignKeysCommand(opts))
	return cmd
}

func newForeignKeysCommand(opts *rootOptions) *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "foreign-keys",
		Short: "Print or export the foreign keys derived from the registered entities",
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := database.NewForeignKeyManager(database.GetLogger(), entityList()...)
			if err != nil {
				return err
			}
			if output != "" {
				return m.Export(output)
			}
			for _, fk := range m.Constraints() {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), fk.String(), "ON DELETE", fk.OnDelete)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "write the constraints to this yaml file")
	return cmd
}

func main() {
	if err := newRootCommand().Execute(); err != nil {
		log.Error(err)
		os.Exit(1)
	}
}
