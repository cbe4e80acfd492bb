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
	"fmt"
	"strings"
)

// tickChan is the sleep-channel identity every sys_sleep waiter shares
// with the tick driver's Wakeup calls, equivalent to xv6's
// sleep(&ticks, &tickslock).
const tickChan ChanID = ^ChanID(0)

// SetBJFForProcess sets the four BJF ratios on one slot. Returns 0 on
// success, -1 if pid does not exist — the original falls through
// without returning in that path (DESIGN.md, Open Question
// resolutions); this implementation always returns.
func (k *Kernel) SetBJFForProcess(pid PID, pr, ar, er, sr float64) int {
	k.mu.Lock()
	defer k.mu.Unlock()
	p := k.findByPID(pid)
	if p == nil {
		return -1
	}
	p.sched.bjf.PriorityRatio = pr
	p.sched.bjf.ArrivalRatio = ar
	p.sched.bjf.ExecutedRatio = er
	p.sched.bjf.ProcessSizeRatio = sr
	return 0
}

// SetPriority sets one slot's BJF priority value directly. Not part of
// the syscall surface in §4.7/§6 — the original kernel fixes priority
// at 3 on every fork and exposes no way to change it afterward, the
// four ratios being the only per-process knobs a syscall touches. This
// is a demo/debug convenience for exercising the BJF rank formula
// (cmd/psctl's demo workloads and cmd/dbgsched use it) without forking
// a new kernel image per priority level; it is not invoked by any
// syscall-surface method.
func (k *Kernel) SetPriority(pid PID, priority float64) int {
	k.mu.Lock()
	defer k.mu.Unlock()
	p := k.findByPID(pid)
	if p == nil {
		return -1
	}
	p.sched.bjf.Priority = priority
	return 0
}

// SetBJFForAll sets the four BJF ratios on every live slot.
func (k *Kernel) SetBJFForAll(pr, ar, er, sr float64) int {
	k.mu.Lock()
	defer k.mu.Unlock()
	for _, p := range k.procs {
		if p.state == Unused {
			continue
		}
		p.sched.bjf.PriorityRatio = pr
		p.sched.bjf.ArrivalRatio = ar
		p.sched.bjf.ExecutedRatio = er
		p.sched.bjf.ProcessSizeRatio = sr
	}
	return 0
}

// Ps prints the formatted process table to the console (§4.7): name,
// pid, state, queue, executed_cycle, xticks, priority, the four
// ratios, and current rank. Returns 0 unconditionally, matching the
// original's sys_ps.
func (k *Kernel) Ps() int {
	views := k.Snapshot()
	var b strings.Builder
	fmt.Fprintf(&b, "%-16s %5s %-9s %-11s %8s %8s %8s %6s %6s %6s %6s %8s\n",
		"name", "pid", "state", "queue", "cycle", "xticks", "prio", "pr", "ar", "er", "sr", "rank")
	for _, v := range views {
		fmt.Fprintf(&b, "%-16s %5d %-9s %-11s %8.1f %8d %8.1f %6.1f %6.1f %6.1f %6.1f %8.2f\n",
			v.Name, v.PID, v.State, v.Queue, v.ExecutedCycle, v.XTicks, v.Priority,
			v.PriorityRatio, v.ArrivalRatio, v.ExecutedRatio, v.SizeRatio, v.Rank)
	}
	k.logf("%s", b.String())
	return 0
}

// GetUncleCount counts slots whose parent's pid equals caller's
// grandparent's pid, excluding caller, caller's parent, and any
// Unused/Embryo slot (§4.7). Used for the classic xv6 exercise of the
// same name.
func (k *Kernel) GetUncleCount(caller *Proc) int {
	k.mu.Lock()
	defer k.mu.Unlock()

	if caller.ParentIdx < 0 {
		return 0
	}
	parent := k.procs[caller.ParentIdx]
	if parent.ParentIdx < 0 {
		return 0
	}
	grandparentPID := k.procs[parent.ParentIdx].PID

	count := 0
	for _, p := range k.procs {
		if p.Index == caller.Index || p.Index == parent.Index {
			continue
		}
		if p.state == Unused || p.state == Embryo {
			continue
		}
		if p.ParentIdx < 0 {
			continue
		}
		if k.procs[p.ParentIdx].PID == grandparentPID {
			count++
			k.logf("uncle match: pid=%d name=%s", p.PID, p.Name)
		}
	}
	return count
}

// Getpid returns the caller's pid.
func (k *Kernel) Getpid(p *Proc) PID {
	k.mu.Lock()
	defer k.mu.Unlock()
	return p.PID
}

// Sbrk grows or shrinks the caller's address space by n bytes and
// returns the size *before* the change (the historical sbrk contract),
// or -1 on failure.
func (k *Kernel) Sbrk(p *Proc, n int) int {
	k.mu.Lock()
	prevSz := p.Sz
	k.mu.Unlock()
	if _, ok := k.Growproc(p, n); !ok {
		return -1
	}
	return int(prevSz)
}

// SysSleep blocks the caller until n ticks have elapsed, or its
// pending kill is observed, whichever first. Returns -1 if killed
// before n ticks elapse, 0 otherwise.
func (k *Kernel) SysSleep(p *Proc, n int64) int {
	k.mu.Lock()
	target := k.clock.Ticks() + n
	for k.clock.Ticks() < target {
		if p.Killed {
			k.mu.Unlock()
			return -1
		}
		k.sleepLocked(p, tickChan)
	}
	k.mu.Unlock()
	return 0
}

// Uptime returns the current tick count.
func (k *Kernel) Uptime() int64 {
	return k.clock.Ticks()
}

// Lifetime returns whole seconds elapsed since p was created,
// restored from sysproc.c's sys_lifetime (SPEC_FULL.md SUPPLEMENTED
// FEATURES).
func (k *Kernel) Lifetime(p *Proc) int64 {
	k.mu.Lock()
	defer k.mu.Unlock()
	elapsed := k.clock.Ticks() - p.XTicks
	ticksPerSecond := int64(1)
	if k.cfg.TickInterval > 0 {
		ticksPerSecond = int64(1_000_000_000 / k.cfg.TickInterval.Nanoseconds())
		if ticksPerSecond == 0 {
			ticksPerSecond = 1
		}
	}
	return elapsed / ticksPerSecond
}

// TickDriver advances the tick counter by one and wakes every waiter
// parked on the shared tick channel, equivalent to the timer
// interrupt handler's wakeup(&ticks). Exposed for Boot's background
// tick goroutine and for tests that want to simulate elapsed ticks.
func (k *Kernel) TickDriver() {
	k.clock.advance()
	k.Wakeup(tickChan)
}
