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

func runnableSlot(k *Kernel, queue QueueID, age int64, priority float64) *Proc {
	p := k.allocate()
	p.state = Runnable
	p.sched = schedData{queue: queue, age: age, bjf: defaultBJF(priority)}
	p.resume = make(chan struct{})
	p.yielded = make(chan struct{})
	return p
}

func TestPickNextOrderRRBeatsLCFSBeatsBJF(t *testing.T) {
	k := newTestKernel(t)
	defer dumpOnFail(t, k)

	k.mu.Lock()
	lcfsP := runnableSlot(k, LCFS, 10, 3)
	bjfP := runnableSlot(k, BJF, 10, 3)
	rrP := runnableSlot(k, RoundRobin, 10, 3)
	k.mu.Unlock()

	k.mu.Lock()
	got := k.pickNext()
	k.mu.Unlock()
	if got != rrP {
		t.Fatalf("pickNext() = pid %d, want the RR slot (pid %d)", got.PID, rrP.PID)
	}

	// With RR no longer Runnable, LCFS should win over BJF.
	k.mu.Lock()
	rrP.state = Sleeping
	got = k.pickNext()
	k.mu.Unlock()
	if got != lcfsP {
		t.Fatalf("pickNext() = pid %d, want the LCFS slot (pid %d)", got.PID, lcfsP.PID)
	}

	k.mu.Lock()
	lcfsP.state = Sleeping
	got = k.pickNext()
	k.mu.Unlock()
	if got != bjfP {
		t.Fatalf("pickNext() = pid %d, want the BJF slot (pid %d)", got.PID, bjfP.PID)
	}
}

// TestBJFOrdersByRank matches §8 scenario 3: three BJF processes with
// ratios (1,0,0,0) and priorities 5, 3, 7 must be picked in priority
// order 3, 5, 7 (lowest rank first).
func TestBJFOrdersByRank(t *testing.T) {
	k := newTestKernel(t)
	defer dumpOnFail(t, k)

	mk := func(priority float64) *Proc {
		k.mu.Lock()
		p := runnableSlot(k, BJF, 0, priority)
		p.sched.bjf.ArrivalRatio = 0
		p.sched.bjf.ExecutedRatio = 0
		p.sched.bjf.ProcessSizeRatio = 0
		k.mu.Unlock()
		return p
	}

	p5 := mk(5)
	p3 := mk(3)
	p7 := mk(7)

	order := []*Proc{}
	for i := 0; i < 3; i++ {
		k.mu.Lock()
		next := k.pickNext()
		if next != nil {
			next.state = Sleeping // remove from contention once picked
		}
		k.mu.Unlock()
		order = append(order, next)
	}

	if order[0] != p3 || order[1] != p5 || order[2] != p7 {
		pids := make([]PID, len(order))
		for i, p := range order {
			pids[i] = p.PID
		}
		t.Fatalf("pick order = %v, want [%d %d %d] (priorities 3,5,7)", pids, p3.PID, p5.PID, p7.PID)
	}
}

func TestRRPicksSmallestAge(t *testing.T) {
	k := newTestKernel(t)
	defer dumpOnFail(t, k)

	k.mu.Lock()
	old := runnableSlot(k, RoundRobin, 5, 3)
	_ = runnableSlot(k, RoundRobin, 50, 3)
	got := k.pickNext()
	k.mu.Unlock()

	if got != old {
		t.Fatalf("pickRR chose pid %d, want the oldest (smallest age) pid %d", got.PID, old.PID)
	}
}

func TestLCFSPicksLargestAge(t *testing.T) {
	k := newTestKernel(t)
	defer dumpOnFail(t, k)

	k.mu.Lock()
	_ = runnableSlot(k, LCFS, 5, 3)
	newest := runnableSlot(k, LCFS, 50, 3)
	got := k.pickNext()
	k.mu.Unlock()

	if got != newest {
		t.Fatalf("pickLCFS chose pid %d, want the most recent (largest age) pid %d", got.PID, newest.PID)
	}
}

func TestChangeQueueDefaultAssignment(t *testing.T) {
	k := newTestKernel(t)
	defer dumpOnFail(t, k)

	k.mu.Lock()
	p1 := k.allocate() // pid 1
	p2 := k.allocate() // pid 2
	p3 := k.allocate() // pid 3
	k.mu.Unlock()

	if got := k.ChangeQueue(p1.PID, NoQueue); got != 0 {
		t.Fatalf("ChangeQueue(pid1, NoQueue) = %d, want 0", got)
	}
	if got := k.ChangeQueue(p2.PID, NoQueue); got != 0 {
		t.Fatalf("ChangeQueue(pid2, NoQueue) = %d, want 0", got)
	}
	if got := k.ChangeQueue(p3.PID, NoQueue); got != 0 {
		t.Fatalf("ChangeQueue(pid3, NoQueue) = %d, want 0", got)
	}

	if p1.Queue() != RoundRobin {
		t.Fatalf("pid 1 default queue = %v, want RoundRobin", p1.Queue())
	}
	if p2.Queue() != RoundRobin {
		t.Fatalf("pid 2 default queue = %v, want RoundRobin", p2.Queue())
	}
	if p3.Queue() != LCFS {
		t.Fatalf("pid 3 default queue = %v, want LCFS", p3.Queue())
	}
}

func TestChangeQueueUnknownPid(t *testing.T) {
	k := newTestKernel(t)
	defer dumpOnFail(t, k)
	if got := k.ChangeQueue(999, RoundRobin); got != -1 {
		t.Fatalf("ChangeQueue(999, ...) = %d, want -1", got)
	}
}

func TestChangeQueueIdempotent(t *testing.T) {
	k := newTestKernel(t)
	defer dumpOnFail(t, k)

	k.mu.Lock()
	p := k.allocate()
	k.mu.Unlock()

	k.ChangeQueue(p.PID, BJF)
	first := p.Queue()
	k.ChangeQueue(p.PID, BJF)
	second := p.Queue()

	if first != BJF || second != BJF {
		t.Fatalf("ChangeQueue(pid, BJF) twice = %v then %v, want BJF both times", first, second)
	}
}
