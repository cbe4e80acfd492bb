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

package cli

import (
	"time"

	"github.com/lirix-labs/xv6sched/pkg/kernel"
)

// idleLoop is the workload installed on PID 1: it never exits (§4
// forbids exit() on initproc) and just yields forever, letting the
// dispatch loop spend its cycles on the demo children instead.
func idleLoop(k *kernel.Kernel, p *kernel.Proc) {
	for {
		time.Sleep(time.Millisecond)
		k.Yield(p)
	}
}

// bootDemoWorkloads starts PID 1 and forks five children
// demonstrating §8 scenario 2 (RR preempts LCFS) and scenario 3 (BJF
// ordering by rank): an LCFS-bound compute loop, an RR-bound bursty
// loop, and three BJF processes with distinct priorities. It returns
// a name->pid map so --actions can refer to processes by label.
func bootDemoWorkloads(k *kernel.Kernel) map[string]kernel.PID {
	pids := map[string]kernel.PID{}

	initp := k.Userinit("init", idleLoop)

	lcfsWorker := func(k *kernel.Kernel, p *kernel.Proc) {
		k.ChangeQueue(p.PID, kernel.LCFS)
		for i := 0; i < 200; i++ {
			time.Sleep(time.Millisecond)
			k.Yield(p)
		}
	}
	rrWorker := func(k *kernel.Kernel, p *kernel.Proc) {
		k.ChangeQueue(p.PID, kernel.RoundRobin)
		for i := 0; i < 200; i++ {
			time.Sleep(time.Millisecond)
			k.Yield(p)
		}
	}
	bjfWorker := func(priority float64) kernel.Workload {
		return func(k *kernel.Kernel, p *kernel.Proc) {
			k.ChangeQueue(p.PID, kernel.BJF)
			k.SetBJFForProcess(p.PID, 1, 0, 0, 0)
			k.SetPriority(p.PID, priority)
			for i := 0; i < 200; i++ {
				time.Sleep(time.Millisecond)
				k.Yield(p)
			}
		}
	}

	pids["lcfs"] = k.ForkExec(initp, lcfsWorker)
	pids["rr"] = k.ForkExec(initp, rrWorker)
	pids["bjf-hi"] = k.ForkExec(initp, bjfWorker(3))
	pids["bjf-mid"] = k.ForkExec(initp, bjfWorker(5))
	pids["bjf-lo"] = k.ForkExec(initp, bjfWorker(7))

	return pids
}
