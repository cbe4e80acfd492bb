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
	"sort"

	"github.com/google/subcommands"

	"github.com/lirix-labs/xv6sched/pkg/kernel"
)

// dumpQueueCmd implements subcommands.Command for "dumpqueue".
type dumpQueueCmd struct {
	counters bool
}

func (*dumpQueueCmd) Name() string     { return "dumpqueue" }
func (*dumpQueueCmd) Synopsis() string { return "dump per-queue membership and rank ordering" }
func (*dumpQueueCmd) Usage() string {
	return "dumpqueue [--counters] - boot a throwaway kernel and group its process table by queue\n"
}

func (d *dumpQueueCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&d.counters, "counters", false, "also print per-CPU syscall counters")
}

func (d *dumpQueueCmd) Execute(_ context.Context, _ *flag.FlagSet, _ ...any) subcommands.ExitStatus {
	k := bootDebugKernel()
	views := k.Snapshot()

	byQueue := map[kernel.QueueID][]kernel.ProcView{}
	for _, v := range views {
		byQueue[v.Queue] = append(byQueue[v.Queue], v)
	}

	for _, q := range []kernel.QueueID{kernel.RoundRobin, kernel.LCFS, kernel.BJF, kernel.NoQueue} {
		members := byQueue[q]
		if len(members) == 0 {
			continue
		}
		sort.Slice(members, func(i, j int) bool { return members[i].Rank < members[j].Rank })
		fmt.Printf("queue %s (%d members):\n", q, len(members))
		for _, v := range members {
			fmt.Printf("  pid=%-4d name=%-10s state=%-9s age_xticks=%-6d rank=%.3f\n",
				v.PID, v.Name, v.State, v.XTicks, v.Rank)
		}
	}

	if d.counters {
		fmt.Printf("syscalls: total=%d\n", k.TotalSyscalls())
		for i := 0; i < k.NCPU(); i++ {
			fmt.Printf("  cpu%d: %d\n", i, k.SyscallCount(i))
		}
	}

	return subcommands.ExitSuccess
}
