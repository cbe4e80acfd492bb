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

import "testing"

func TestSetBJFForProcessRoundTrip(t *testing.T) {
	k := newTestKernel(t)
	defer dumpOnFail(t, k)

	k.mu.Lock()
	p := k.allocate()
	k.mu.Unlock()

	if got := k.SetBJFForProcess(p.PID, 2, 3, 4, 5); got != 0 {
		t.Fatalf("SetBJFForProcess() = %d, want 0", got)
	}
	bjf := p.BJF()
	if bjf.PriorityRatio != 2 || bjf.ArrivalRatio != 3 || bjf.ExecutedRatio != 4 || bjf.ProcessSizeRatio != 5 {
		t.Fatalf("BJF() after set = %+v, want ratios (2,3,4,5)", bjf)
	}
}

func TestSetBJFForProcessUnknownPid(t *testing.T) {
	k := newTestKernel(t)
	defer dumpOnFail(t, k)
	if got := k.SetBJFForProcess(999, 1, 1, 1, 1); got != -1 {
		t.Fatalf("SetBJFForProcess(999, ...) = %d, want -1", got)
	}
}

func TestSetBJFForAllAppliesToEverySlot(t *testing.T) {
	k := newTestKernel(t)
	defer dumpOnFail(t, k)

	k.mu.Lock()
	p1 := k.allocate()
	p2 := k.allocate()
	k.mu.Unlock()

	if got := k.SetBJFForAll(9, 8, 7, 6); got != 0 {
		t.Fatalf("SetBJFForAll() = %d, want 0", got)
	}
	for _, p := range []*Proc{p1, p2} {
		bjf := p.BJF()
		if bjf.PriorityRatio != 9 || bjf.ArrivalRatio != 8 || bjf.ExecutedRatio != 7 || bjf.ProcessSizeRatio != 6 {
			t.Fatalf("pid %d BJF after SetBJFForAll = %+v, want ratios (9,8,7,6)", p.PID, bjf)
		}
	}
}

func TestGetUncleCount(t *testing.T) {
	k := newTestKernel(t)
	defer dumpOnFail(t, k)

	k.mu.Lock()
	grandparent := k.allocate()
	grandparent.state = Runnable
	parent := k.allocate()
	parent.state = Runnable
	parent.ParentIdx = grandparent.Index
	uncle := k.allocate()
	uncle.state = Runnable
	uncle.ParentIdx = grandparent.Index
	unrelated := k.allocate()
	unrelated.state = Runnable
	unrelated.ParentIdx = -1
	caller := k.allocate()
	caller.state = Runnable
	caller.ParentIdx = parent.Index
	k.mu.Unlock()
	_ = unrelated

	if got := k.GetUncleCount(caller); got != 1 {
		t.Fatalf("GetUncleCount() = %d, want 1 (only %d should count)", got, uncle.PID)
	}
}

func TestGetUncleCountNoGrandparent(t *testing.T) {
	k := newTestKernel(t)
	defer dumpOnFail(t, k)

	k.mu.Lock()
	parent := k.allocate()
	parent.state = Runnable
	parent.ParentIdx = -1
	caller := k.allocate()
	caller.state = Runnable
	caller.ParentIdx = parent.Index
	k.mu.Unlock()

	if got := k.GetUncleCount(caller); got != 0 {
		t.Fatalf("GetUncleCount() with no grandparent = %d, want 0", got)
	}
}

func TestPsDoesNotPanic(t *testing.T) {
	k := newTestKernel(t)
	defer dumpOnFail(t, k)

	k.mu.Lock()
	p := k.allocate()
	p.state = Runnable
	p.Name = "sh"
	k.mu.Unlock()
	k.ChangeQueue(p.PID, RoundRobin)

	if got := k.Ps(); got != 0 {
		t.Fatalf("Ps() = %d, want 0", got)
	}
}

func TestUptimeAndTickDriver(t *testing.T) {
	k := newTestKernel(t)
	defer dumpOnFail(t, k)

	if k.Uptime() != 0 {
		t.Fatalf("Uptime() on fresh kernel = %d, want 0", k.Uptime())
	}
	k.TickDriver()
	k.TickDriver()
	if k.Uptime() != 2 {
		t.Fatalf("Uptime() after two ticks = %d, want 2", k.Uptime())
	}
}
