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

// sched is the voluntary context-switch boundary (§4.3). Callers must
// hold k.mu, must have already set p.state to something other than
// Running, and must call it only from p's own kernel-thread goroutine.
// It hands control to the CPU dispatch loop currently running p and
// blocks until that loop dispatches p again, at which point it
// re-acquires k.mu before returning — preserving sched's documented
// pre/postcondition (lock held on both sides of the call) without
// literally holding sync.Mutex across the parked interval. See
// SPEC_FULL.md's "CONTEXT-SWITCH PRIMITIVE" section for why a literal
// held-mutex translation would deadlock real concurrent goroutines.
func (k *Kernel) sched(p *Proc) {
	if p.state == Running {
		k.mu.Unlock()
		k.panicf("kernel: sched: process %d still Running", p.PID)
	}
	k.mu.Unlock()
	p.yielded <- struct{}{}
	<-p.resume
	k.mu.Lock()
}

// Yield voluntarily gives up the CPU, making p Runnable again and
// immediately eligible for re-selection.
func (k *Kernel) Yield(p *Proc) {
	k.mu.Lock()
	p.state = Runnable
	k.sched(p)
	k.mu.Unlock()
}

// Sleep suspends p on chanID until a matching Wakeup. It is the
// general entry point for voluntary blocking outside of Wait (e.g.
// sys_sleep waiting on a tick channel). Because this simulation has no
// external condition locks distinct from the table lock, the lock-dance
// in §4.3 collapses to the single-lock case: k.mu is both the
// condition lock and the table lock, so there is no "lk != ptable
// lock" branch to implement.
func (k *Kernel) Sleep(p *Proc, chanID ChanID) {
	k.mu.Lock()
	k.sleepLocked(p, chanID)
	k.mu.Unlock()
}

// sleepLocked is Sleep's body for callers that already hold k.mu
// (Wait's scan loop). Returns with k.mu held.
func (k *Kernel) sleepLocked(p *Proc, chanID ChanID) {
	p.chanID = chanID
	p.state = Sleeping
	k.sched(p)
	p.chanID = NoChan
}

// Wakeup promotes every Sleeping slot waiting on chanID to Runnable.
func (k *Kernel) Wakeup(chanID ChanID) {
	k.mu.Lock()
	k.wakeupLocked(chanID)
	k.mu.Unlock()
}

// wakeupLocked is Wakeup's body for callers that already hold k.mu
// (Exit's parent/init notification).
func (k *Kernel) wakeupLocked(chanID ChanID) {
	if chanID == NoChan {
		return
	}
	for _, p := range k.procs {
		if p.state == Sleeping && p.chanID == chanID {
			p.state = Runnable
		}
	}
}

// forkret is the landing function every fresh kernel thread runs
// before its workload. The very first call in the kernel's lifetime
// performs the deferred filesystem initialization that needs process
// context (§4.3), via sync.Once so later processes skip it.
func (k *Kernel) forkret(p *Proc) {
	k.initOnce.Do(func() {
		k.fs.Init()
	})
}

// runProc is the "run the chosen process" step of the scheduler loop
// (§4.4 step 4): it hands control to p's kernel thread and blocks
// until p voluntarily suspends (or exits), then credits the quantum
// and clears the CPU's current-process pointer. Caller must not hold
// k.mu; runProc acquires and releases it itself, matching the
// acquire/swtch/credit/release sequence described in §4.4.
//
// p is only a candidate at this point — dispatchLoop picks it with
// k.mu released before calling in, so another CPU's dispatch loop may
// have claimed the same slot in between. runProc re-validates p is
// still Runnable under its own lock acquisition and walks away
// (leaving p for whichever CPU set it running) rather than
// double-dispatching it.
func (k *Kernel) runProc(cpu *CPU, p *Proc) {
	k.mu.Lock()
	if p.state != Runnable {
		k.mu.Unlock()
		return
	}
	cpu.proc = p
	p.state = Running
	k.vm.Activate(p.AS)
	k.mu.Unlock()

	p.resume <- struct{}{}
	<-p.yielded

	k.mu.Lock()
	p.sched.bjf.ExecutedCycle += 0.1
	p.sched.age = k.clock.Ticks()
	k.vm.ActivateKernel()
	cpu.proc = nil
	k.mu.Unlock()
}
