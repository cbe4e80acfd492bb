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

// This file narrows the virtual-memory, filesystem and console
// collaborators named in spec.md §6 to small interfaces; the tick
// source is the kernel's own counter in ticks.go, and there is no
// separate page-allocator seam. Production and test code supply
// implementations (see pkg/kernel/simhw for the defaults used by tests
// and cmd/psctl).

// AddressSpace is an opaque handle to a process's virtual memory,
// equivalent to xv6's pgdir. The core never inspects it; it only
// allocates, copies, resizes, and frees it through VirtualMemory.
type AddressSpace interface{}

// Inode is an opaque filesystem handle, equivalent to xv6's struct
// inode* as returned by namei/idup.
type Inode interface{}

// File is an opaque open-file handle, equivalent to xv6's struct
// file*.
type File interface{}

// VirtualMemory is the consumed virtual-memory subsystem: setupkvm,
// inituvm, copyuvm, allocuvm, deallocuvm, freevm, switchuvm, switchkvm.
type VirtualMemory interface {
	// NewAddressSpace returns a fresh kernel-only page table
	// (setupkvm).
	NewAddressSpace() (AddressSpace, error)

	// LoadInitImage maps the embedded init binary into as at address
	// 0 (inituvm). sz is the resulting process size in bytes.
	LoadInitImage(as AddressSpace, image []byte) (sz uintptr, err error)

	// CopyAddressSpace deep-copies as, sized sz bytes, for fork's
	// child (copyuvm).
	CopyAddressSpace(as AddressSpace, sz uintptr) (AddressSpace, error)

	// Grow adjusts a process's address space to newSz bytes
	// (allocuvm when newSz > oldSz, deallocuvm when newSz < oldSz).
	// Returns the resulting size.
	Grow(as AddressSpace, oldSz, newSz uintptr) (uintptr, error)

	// Free releases as and everything it owns (freevm).
	Free(as AddressSpace)

	// Activate installs as as the active page table for the calling
	// CPU (switchuvm).
	Activate(as AddressSpace)

	// ActivateKernel installs the kernel-only page table (switchkvm),
	// used when no process is running on the calling CPU.
	ActivateKernel()
}

// FileSystem is the consumed filesystem subsystem: namei, idup, iput,
// iinit, initlog, begin_op, end_op, filedup, fileclose.
type FileSystem interface {
	// Init performs one-time inode-table and log-recovery
	// initialization (iinit + initlog). Called exactly once, from
	// within a process's kernel thread, by forkret.
	Init()

	// Namei resolves a path to an inode reference.
	Namei(path string) (Inode, error)

	// Idup duplicates a reference to an inode (refcount++).
	Idup(Inode) Inode

	// Iput drops a reference to an inode, run inside a filesystem
	// transaction (begin_op/end_op).
	Iput(Inode)

	// Dup duplicates a reference to an open file (filedup).
	Dup(File) File

	// Close drops a reference to an open file (fileclose).
	Close(File)
}

// Console is the consumed console subsystem: cprintf and panic. Panic
// must not return — implementations are expected to call Go's
// built-in panic after logging.
type Console interface {
	Printf(format string, args ...any)
	Panicf(format string, args ...any)
}
