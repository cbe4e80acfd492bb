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

package kernel

import (
	"testing"
	"time"

	"github.com/davecgh/go-spew/spew"
)

// runRounds drives a single simulated CPU one dispatch at a time, for
// tests that need tight control over interleaving instead of Boot's
// free-running goroutines. Each round first advances the tick counter,
// standing in for Boot's tick loop, so RR ages diverge and the RR
// picker rotates between Runnable slots instead of always picking the
// first one in table order.
func runRounds(t *testing.T, k *Kernel, cpu *CPU, rounds int) {
	t.Helper()
	for i := 0; i < rounds; i++ {
		k.TickDriver()
		k.refreshQueue()
		k.mu.Lock()
		p := k.pickNext()
		k.mu.Unlock()
		if p == nil {
			continue
		}
		k.runProc(cpu, p)
	}
}

func newTestKernel(t *testing.T) *Kernel {
	t.Helper()
	cfg := DefaultConfig()
	cfg.NPROC = 8
	cfg.NCPU = 1
	return NewKernel(cfg, nil, nil, nil)
}

func dumpOnFail(t *testing.T, k *Kernel) {
	t.Helper()
	if t.Failed() {
		t.Logf("process table:\n%s", spew.Sdump(k.Snapshot()))
	}
}

// waitForState polls (bounded) until p reaches want, to synchronize
// with a process's own goroutine without a fixed sleep.
func waitForState(t *testing.T, p *Proc, want State) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if p.State() == want {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatalf("process %d never reached state %v, stuck at %v", p.PID, want, p.State())
}

func TestNewKernelStartsEmpty(t *testing.T) {
	k := newTestKernel(t)
	defer dumpOnFail(t, k)

	if got := k.NProc(); got != 8 {
		t.Fatalf("NProc() = %d, want 8", got)
	}
	if views := k.Snapshot(); len(views) != 0 {
		t.Fatalf("Snapshot() on fresh kernel = %d entries, want 0", len(views))
	}
}

func TestUserinitRunnable(t *testing.T) {
	k := newTestKernel(t)
	defer dumpOnFail(t, k)

	p := k.Userinit("init", func(k *Kernel, p *Proc) {
		for {
			k.Yield(p)
		}
	})

	if p.PID != 1 {
		t.Fatalf("Userinit PID = %d, want 1", p.PID)
	}
	if p.State() != Runnable {
		t.Fatalf("Userinit state = %v, want Runnable", p.State())
	}
	cpu := &CPU{ID: 0}
	runRounds(t, k, cpu, 1)
}
