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

// Package kernel implements the process table, lifecycle, voluntary
// context-switch core, and multi-queue scheduler of a small teaching
// kernel. It fuses concurrency (per-CPU dispatch loops racing over a
// shared process table under a single lock), a bespoke scheduling
// policy (Round-Robin, Last-Come-First-Served, Best-Job-First with a
// weighted rank), aging-driven queue migration, and a voluntary
// context switch built on a channel rendezvous between a process's
// goroutine and the dispatching CPU's loop. Interrupt-enable state and
// per-CPU lock nesting depth are not modeled.
package kernel

import "fmt"

// PID identifies a process uniquely among live slots. Zero is never a
// valid pid.
type PID int

// State is a process slot's lifecycle stage.
type State int

// The permitted lifecycle stages. Transitions are restricted to
// Unused->Embryo->Runnable/Zombie->Unused, Runnable<->Running, and
// Running->Sleeping->Runnable.
const (
	Unused State = iota
	Embryo
	Sleeping
	Runnable
	Running
	Zombie
)

func (s State) String() string {
	switch s {
	case Unused:
		return "UNUSED"
	case Embryo:
		return "EMBRYO"
	case Sleeping:
		return "SLEEPING"
	case Runnable:
		return "RUNNABLE"
	case Running:
		return "RUNNING"
	case Zombie:
		return "ZOMBIE"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// QueueID is a scheduling-class label on a process slot. It is not a
// separate data structure: the scheduler picks a process by scanning
// the table filtered on this label.
type QueueID int

// The three queues plus the "not yet assigned" sentinel. Numbering is
// an implementer choice (spec.md §6); callers of the syscall surface
// must agree with this numbering.
const (
	NoQueue QueueID = iota
	RoundRobin
	LCFS
	BJF
)

func (q QueueID) String() string {
	switch q {
	case NoQueue:
		return "NONE"
	case RoundRobin:
		return "ROUND_ROBIN"
	case LCFS:
		return "LCFS"
	case BJF:
		return "BJF"
	default:
		return fmt.Sprintf("QueueID(%d)", int(q))
	}
}

// ChanID is the identity token processes rendezvous on for sleep and
// wakeup. The zero value, NoChan, means "not sleeping."
type ChanID uint64

// NoChan is the sentinel meaning a slot is not asleep on anything.
const NoChan ChanID = 0

// Default compile-time constants, overridable via Config (see
// config.go). These mirror NPROC/NOFILE/AGED_OUT in the original
// kernel.
const (
	DefaultNPROC      = 64
	DefaultNOFILE     = 16
	DefaultAgedOut    = 300 // ticks
	DefaultNCPU       = 2
	defaultNameBytes  = 16
	ticksPerSecondDef = 100 // matches the original kernel's 10ms tick
)
