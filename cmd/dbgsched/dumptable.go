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

package main

import (
	"context"
	"flag"
	"fmt"

	"github.com/davecgh/go-spew/spew"
	"github.com/google/subcommands"
)

// dumpTableCmd implements subcommands.Command for "dumptable".
type dumpTableCmd struct{}

func (*dumpTableCmd) Name() string     { return "dumptable" }
func (*dumpTableCmd) Synopsis() string { return "dump every live process slot's raw fields" }
func (*dumpTableCmd) Usage() string {
	return "dumptable - boot a throwaway kernel and spew the process table\n"
}
func (*dumpTableCmd) SetFlags(*flag.FlagSet) {}

func (*dumpTableCmd) Execute(_ context.Context, _ *flag.FlagSet, _ ...any) subcommands.ExitStatus {
	k := bootDebugKernel()
	for _, v := range k.Snapshot() {
		fmt.Println(spew.Sdump(v))
	}
	return subcommands.ExitSuccess
}
