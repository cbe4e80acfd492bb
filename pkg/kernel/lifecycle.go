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

import "runtime"

// initImage stands in for the embedded init binary xv6 links into its
// kernel image. The simulation never executes it; LoadInitImage just
// needs bytes to copy into the fresh address space.
var initImage = []byte("init")

// Userinit creates PID 1 running workload, the system's first process
// and the eventual adoptive parent of every orphan. Must be called
// exactly once, before any CPU's dispatch loop starts.
func (k *Kernel) Userinit(name string, workload Workload) *Proc {
	k.mu.Lock()
	p := k.allocate()
	if p == nil {
		k.panicf("kernel: userinit: out of process slots")
	}

	as, err := k.vm.NewAddressSpace()
	if err != nil {
		k.panicf("kernel: userinit: NewAddressSpace: %v", err)
	}
	sz, err := k.vm.LoadInitImage(as, initImage)
	if err != nil {
		k.panicf("kernel: userinit: LoadInitImage: %v", err)
	}
	p.AS = as
	p.Sz = sz
	p.ParentIdx = -1
	p.Name = name
	p.sched = schedData{queue: RoundRobin, age: k.clock.Ticks(), bjf: defaultBJF(k.cfg.DefaultPriority)}
	p.workload = workload
	p.state = Runnable
	k.initIdx = p.Index
	k.mu.Unlock()

	k.startThread(p)
	return p
}

// Fork creates a child of parent, deep-copying its address space and
// duplicating its open files and cwd. Returns the child's pid, or -1
// on resource exhaustion. The child shares parent's workload — a
// faithful Unix fork continues running the same program text in both
// processes.
func (k *Kernel) Fork(parent *Proc) PID {
	return k.forkInto(parent, nil)
}

// ForkExec is Fork fused with an immediate exec: the child runs
// workload instead of inheriting parent's program text. This
// simulation has no separate exec() (§1's Out-of-scope list never
// promises one), but demos and tests need multi-program process
// trees, so this is the supported way to build one; it is a
// convenience layered on top of the real forkInto primitive, not an
// addition to the syscall surface in §4.7/§6.
func (k *Kernel) ForkExec(parent *Proc, workload Workload) PID {
	return k.forkInto(parent, workload)
}

// forkInto is Fork's shared body. workload nil means "inherit
// parent's," matching a real fork's semantics; non-nil overrides it,
// which is what ForkExec asks for.
func (k *Kernel) forkInto(parent *Proc, workload Workload) PID {
	k.mu.Lock()
	child := k.allocate()
	if child == nil {
		k.mu.Unlock()
		return -1
	}
	parentAS, parentSz, parentName := parent.AS, parent.Sz, parent.Name
	// Copy out of parent.Files rather than aliasing its backing array:
	// k.mu is released below for CopyAddressSpace, during which parent
	// could Exit and clear its own Files concurrently.
	parentFiles := append([]File(nil), parent.Files...)
	parentCwd := parent.Cwd
	if workload == nil {
		workload = parent.workload
	}
	k.mu.Unlock()

	childAS, err := k.vm.CopyAddressSpace(parentAS, parentSz)
	if err != nil {
		k.mu.Lock()
		child.reset()
		k.mu.Unlock()
		return -1
	}

	k.mu.Lock()
	child.AS = childAS
	child.Sz = parentSz
	child.ParentIdx = parent.Index
	child.Name = parentName
	for i, f := range parentFiles {
		if f != nil {
			child.Files[i] = k.fs.Dup(f)
		}
	}
	if parentCwd != nil {
		child.Cwd = k.fs.Idup(parentCwd)
	}
	child.XTicks = k.clock.Ticks()
	child.sched = schedData{queue: NoQueue, age: child.XTicks, bjf: defaultBJF(k.cfg.DefaultPriority)}
	child.workload = workload
	child.state = Runnable
	pid := child.PID
	k.mu.Unlock()

	k.startThread(child)
	return pid
}

// startThread spawns the persistent goroutine standing in for a
// process's kernel thread. It parks immediately on p.resume, waiting
// for a CPU's dispatch loop to first run it (see sched.go runProc):
// this is the Go realization of §9's "abstract the context-switch
// primitive behind a boundary module" — the goroutine itself never
// touches channels directly except through Yield/Sleep/Exit.
func (k *Kernel) startThread(p *Proc) {
	go func(p *Proc) {
		<-p.resume
		k.forkret(p)
		p.workload(k, p)
		k.Exit(p)
	}(p)
}

// Exit tears down the calling process: closes files, drops cwd,
// reparents children to initproc, marks self Zombie, and relinquishes
// the CPU for the last time. Calling Exit on initproc is a fatal
// invariant violation (§4.2).
func (k *Kernel) Exit(p *Proc) {
	k.mu.Lock()
	if p.Index == k.initIdx {
		k.mu.Unlock()
		k.panicf("kernel: init exiting")
	}
	files := p.Files
	cwd := p.Cwd
	k.mu.Unlock()

	for i, f := range files {
		if f != nil {
			k.fs.Close(f)
			p.Files[i] = nil
		}
	}
	if cwd != nil {
		k.fs.Iput(cwd)
	}

	k.mu.Lock()
	k.wakeupLocked(ChanID(k.procs[p.ParentIdx].Index + 1))

	for _, c := range k.procs {
		if c.ParentIdx == p.Index {
			c.ParentIdx = k.initIdx
			if c.state == Zombie {
				k.wakeupLocked(ChanID(k.initIdx + 1))
			}
		}
	}

	p.state = Zombie
	p.chanID = NoChan

	// sched() never returns for an exiting kernel thread: control is
	// handed back to the CPU dispatch loop once, and this goroutine
	// then terminates via Goexit rather than parking on p.resume again
	// (a Zombie slot is never dispatched, so there is nothing to wait
	// for) or returning to a caller that must never see control again.
	k.mu.Unlock()
	p.yielded <- struct{}{}
	runtime.Goexit()
}

// Wait blocks caller until a child becomes Zombie, reaps it, and
// returns its pid. Returns -1 if caller has no children or has been
// killed.
func (k *Kernel) Wait(caller *Proc) PID {
	k.mu.Lock()
	for {
		haveKids := false
		for _, c := range k.procs {
			if c.ParentIdx != caller.Index {
				continue
			}
			haveKids = true
			if c.state == Zombie {
				pid := c.PID
				k.vm.Free(c.AS)
				c.reset()
				k.mu.Unlock()
				return pid
			}
		}
		if !haveKids || caller.Killed {
			k.mu.Unlock()
			return -1
		}
		k.sleepLocked(caller, ChanID(caller.Index+1))
	}
}

// Kill marks pid for termination and, if it is Sleeping, promotes it
// to Runnable so it observes the pending kill. Returns 0 if found, -1
// otherwise.
func (k *Kernel) Kill(pid PID) int {
	k.mu.Lock()
	defer k.mu.Unlock()
	p := k.findByPID(pid)
	if p == nil {
		return -1
	}
	p.Killed = true
	if p.state == Sleeping {
		p.state = Runnable
	}
	return 0
}

// Growproc adjusts the caller's address-space size by n bytes
// (positive grows, negative shrinks). Returns the new size, or the
// unchanged size with an error reported via the bool on failure.
func (k *Kernel) Growproc(p *Proc, n int) (newSz uintptr, ok bool) {
	k.mu.Lock()
	as, oldSz := p.AS, p.Sz
	k.mu.Unlock()

	target := int64(oldSz) + int64(n)
	if target < 0 {
		return oldSz, false
	}
	sz, err := k.vm.Grow(as, oldSz, uintptr(target))
	if err != nil {
		return oldSz, false
	}

	k.mu.Lock()
	p.Sz = sz
	k.mu.Unlock()
	return sz, true
}
