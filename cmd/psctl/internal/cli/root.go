// Copyright 2024 The Authors.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package cli builds the psctl command tree. It is internal: importers
// outside cmd/psctl should use pkg/kernel directly, the way
// arctir-proctor's own cmd package tells callers to prefer plib.
package cli

import (
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "psctl",
	Short: "Boot and observe the multi-queue teaching scheduler.",
	Run: func(cmd *cobra.Command, args []string) {
		if len(args) == 0 {
			cmd.Help()
			os.Exit(0)
		}
	},
}

// SetupCommands wires every subcommand onto the root and returns it
// for Execute.
func SetupCommands() *cobra.Command {
	rootCmd.AddCommand(runCmd)
	return rootCmd
}
