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
	"time"

	"github.com/lirix-labs/xv6sched/pkg/kernel"
)

// bootDebugKernel builds a kernel with init plus one RoundRobin, one
// LCFS and two BJF processes (priorities 1 and 9), lets it run for a
// short window so ages and rank diverge, and returns it once that
// window's context has ended and its dispatch loops have stopped, so
// callers can snapshot it.
func bootDebugKernel() *kernel.Kernel {
	cfg := kernel.DefaultConfig()
	k := kernel.NewKernel(cfg, nil, nil, nil)

	idle := func(k *kernel.Kernel, p *kernel.Proc) {
		for {
			time.Sleep(time.Millisecond)
			k.Yield(p)
		}
	}
	initp := k.Userinit("init", idle)

	spin := func(k *kernel.Kernel, p *kernel.Proc) {
		for i := 0; i < 500; i++ {
			time.Sleep(time.Millisecond)
			k.Yield(p)
		}
	}

	rr := k.ForkExec(initp, spin)
	k.ChangeQueue(rr, kernel.RoundRobin)

	lcfs := k.ForkExec(initp, spin)
	k.ChangeQueue(lcfs, kernel.LCFS)

	bjfHi := k.ForkExec(initp, spin)
	k.ChangeQueue(bjfHi, kernel.BJF)
	k.SetBJFForProcess(bjfHi, 1, 0, 0, 0)
	k.SetPriority(bjfHi, 1)

	bjfLo := k.ForkExec(initp, spin)
	k.ChangeQueue(bjfLo, kernel.BJF)
	k.SetBJFForProcess(bjfLo, 1, 0, 0, 0)
	k.SetPriority(bjfLo, 9)

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()
	go k.Boot(ctx)
	<-ctx.Done()

	return k
}
