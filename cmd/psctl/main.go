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

// Command psctl boots an in-process instance of the scheduler and
// demonstrates its queue policy against a handful of synthetic
// workloads.
package main

import (
	"fmt"
	"os"

	"github.com/lirix-labs/xv6sched/cmd/psctl/internal/cli"
)

func main() {
	root := cli.SetupCommands()
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
