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

// BJFData is the Best-Job-First scheduling sub-record carried by every
// process slot, mirroring the original's per-process priority/ratio
// fields used by get_bjf_rank.
type BJFData struct {
	Priority         float64
	ExecutedCycle    float64
	PriorityRatio    float64
	ArrivalRatio     float64
	ExecutedRatio    float64
	ProcessSizeRatio float64
}

// Rank computes the weighted BJF rank for a slot: lower is preferred.
// xticks and sz come from the owning slot, not BJFData itself, since
// they are lifecycle fields rather than scheduling-policy fields.
func (b BJFData) Rank(xticks int64, sz uintptr) float64 {
	return b.PriorityRatio*b.Priority +
		b.ArrivalRatio*float64(xticks) +
		b.ExecutedRatio*b.ExecutedCycle +
		b.ProcessSizeRatio*float64(sz)
}

// schedData is the queue classification and aging state for a slot.
type schedData struct {
	queue QueueID
	age   int64
	bjf   BJFData
}

// Proc is one process-table slot. Index is the slot's position in the
// table (its arena handle); ParentIdx is -1 for initproc and for any
// slot without a live parent, standing in for a nullable back-pointer
// without borrowed pointers (spec.md §9 "raw back-pointers... use slot
// indices rather than borrowed pointers").
//
// Fields below the "owned while Running" marker may be mutated by the
// owning kernel-thread goroutine without the table lock, exactly as
// spec.md §5 describes for the Running state; every other field is
// read or written only under Kernel.mu.
type Proc struct {
	Index int
	PID   PID

	state     State
	ParentIdx int

	Sz     uintptr
	AS     AddressSpace
	Killed bool
	Name   string

	Files []File // len == owning Kernel's cfg.NOFILE
	Cwd   Inode

	XTicks int64

	sched schedData

	chanID ChanID

	// resume is the context-switch rendezvous: the CPU dispatch loop
	// sends on it to hand control to this process's kernel thread, and
	// the kernel thread receives to resume after a voluntary suspend.
	// Realizes §4.3's "low-level swap primitive" (see sched.go).
	resume chan struct{}
	// yielded is the reverse direction: the kernel thread sends on it
	// when it calls sched and control returns to the CPU dispatch
	// loop.
	yielded chan struct{}

	// --- owned while Running; no lock needed from the owning thread ---
	workload Workload
}

// State returns the slot's current lifecycle state. Callers needing a
// consistent read across multiple fields should hold Kernel.mu instead
// and read p.state directly via Kernel's accessors.
func (p *Proc) State() State { return p.state }

// Queue returns the slot's current scheduling-class label.
func (p *Proc) Queue() QueueID { return p.sched.queue }

// Age returns the slot's aging/LCFS/RR timestamp.
func (p *Proc) Age() int64 { return p.sched.age }

// BJF returns a copy of the slot's Best-Job-First data.
func (p *Proc) BJF() BJFData { return p.sched.bjf }

func (p *Proc) reset() {
	p.PID = 0
	p.state = Unused
	p.ParentIdx = -1
	p.Sz = 0
	p.AS = nil
	p.Killed = false
	p.Name = ""
	for i := range p.Files {
		p.Files[i] = nil
	}
	p.Cwd = nil
	p.XTicks = 0
	p.sched = schedData{}
	p.chanID = NoChan
	p.resume = nil
	p.yielded = nil
	p.workload = nil
}

func defaultBJF(priority float64) BJFData {
	return BJFData{
		Priority:         priority,
		ExecutedCycle:    0,
		PriorityRatio:    1,
		ArrivalRatio:     1,
		ExecutedRatio:    1,
		ProcessSizeRatio: 1,
	}
}
