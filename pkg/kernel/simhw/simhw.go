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

// Package simhw provides the default, in-memory implementations of the
// external collaborators pkg/kernel consumes through narrow interfaces:
// a simulated address-space/VM subsystem, a simulated filesystem, and a
// logrus-backed console. Production embedders of pkg/kernel and its
// tests use these unless they supply their own.
package simhw

import (
	"errors"
	"fmt"
	"sync"

	"github.com/mohae/deepcopy"
	"github.com/sirupsen/logrus"

	"github.com/lirix-labs/xv6sched/pkg/kernel"
)

// pageTable is the concrete type behind kernel.AddressSpace in this
// simulation. It carries just enough state (a map from start offset to
// page bytes, standing in for mapped pages) to make copyuvm/allocuvm/deallocuvm
// observably distinct operations without modeling real page tables.
type pageTable struct {
	Pages map[uintptr][]byte
}

func newPageTable() *pageTable {
	return &pageTable{Pages: map[uintptr][]byte{}}
}

// VM is the default kernel.VirtualMemory: a simulated address space
// backed by a page map, deep-copied (never aliased) across fork.
type VM struct{}

var _ kernel.VirtualMemory = VM{}

// NewAddressSpace implements kernel.VirtualMemory.
func (VM) NewAddressSpace() (kernel.AddressSpace, error) {
	return newPageTable(), nil
}

// LoadInitImage implements kernel.VirtualMemory.
func (VM) LoadInitImage(as kernel.AddressSpace, image []byte) (uintptr, error) {
	pt, ok := as.(*pageTable)
	if !ok {
		return 0, errors.New("simhw: not a simulated address space")
	}
	pt.Pages[0] = append([]byte(nil), image...)
	return uintptr(len(image)), nil
}

// CopyAddressSpace implements kernel.VirtualMemory. It is the stand-in
// for xv6's copyuvm, and is where the deep-copy dependency is
// exercised: the child must never observe the parent's later writes.
func (VM) CopyAddressSpace(as kernel.AddressSpace, sz uintptr) (kernel.AddressSpace, error) {
	pt, ok := as.(*pageTable)
	if !ok {
		return nil, errors.New("simhw: not a simulated address space")
	}
	cloned := deepcopy.Copy(pt)
	child, ok := cloned.(*pageTable)
	if !ok {
		return nil, errors.New("simhw: deep copy produced an unexpected type")
	}
	return child, nil
}

// Grow implements kernel.VirtualMemory.
func (VM) Grow(as kernel.AddressSpace, oldSz, newSz uintptr) (uintptr, error) {
	pt, ok := as.(*pageTable)
	if !ok {
		return 0, errors.New("simhw: not a simulated address space")
	}
	if newSz > oldSz {
		pt.Pages[oldSz] = make([]byte, newSz-oldSz)
	} else if newSz < oldSz {
		for off := range pt.Pages {
			if off >= newSz {
				delete(pt.Pages, off)
			}
		}
	}
	return newSz, nil
}

// Free implements kernel.VirtualMemory.
func (VM) Free(as kernel.AddressSpace) {
	if pt, ok := as.(*pageTable); ok {
		for k := range pt.Pages {
			delete(pt.Pages, k)
		}
	}
}

// Activate implements kernel.VirtualMemory. The simulation has no real
// MMU to reprogram, so this is a no-op kept for interface symmetry and
// for tests that want to assert it was called.
func (VM) Activate(kernel.AddressSpace) {}

// ActivateKernel implements kernel.VirtualMemory.
func (VM) ActivateKernel() {}

// FS is the default kernel.FileSystem: an in-memory inode table keyed
// by path, with simple reference counting.
type FS struct {
	mu     sync.Mutex
	inodes map[string]*inodeEntry
	inited bool
}

var _ kernel.FileSystem = (*FS)(nil)

type inodeEntry struct {
	path string
	refs int
}

// NewFS returns an empty simulated filesystem with a root directory.
func NewFS() *FS {
	return &FS{inodes: map[string]*inodeEntry{"/": {path: "/", refs: 1}}}
}

// Init implements kernel.FileSystem. It is idempotent; callers
// typically guard it with sync.Once (pkg/kernel does, in forkret).
func (f *FS) Init() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.inited = true
}

// Namei implements kernel.FileSystem.
func (f *FS) Namei(path string) (kernel.Inode, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	n, ok := f.inodes[path]
	if !ok {
		n = &inodeEntry{path: path}
		f.inodes[path] = n
	}
	n.refs++
	return n, nil
}

// Idup implements kernel.FileSystem.
func (f *FS) Idup(i kernel.Inode) kernel.Inode {
	f.mu.Lock()
	defer f.mu.Unlock()
	if n, ok := i.(*inodeEntry); ok {
		n.refs++
	}
	return i
}

// Iput implements kernel.FileSystem.
func (f *FS) Iput(i kernel.Inode) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if n, ok := i.(*inodeEntry); ok {
		n.refs--
	}
}

// Dup implements kernel.FileSystem. Simulated open files are opaque
// handles; duplicating one is a no-op returning the same handle, since
// the simulation tracks no real per-file offset or refcount.
func (f *FS) Dup(file kernel.File) kernel.File { return file }

// Close implements kernel.FileSystem.
func (f *FS) Close(kernel.File) {}

// LogrusConsole adapts logrus as the kernel.Console implementation,
// the way the teacher and the rest of the pack use logrus in place of
// ad-hoc fmt.Printf calls.
type LogrusConsole struct {
	Logger *logrus.Logger
}

var _ kernel.Console = (*LogrusConsole)(nil)

// NewLogrusConsole returns a console logging at info level to stderr,
// matching logrus's defaults.
func NewLogrusConsole() *LogrusConsole {
	return &LogrusConsole{Logger: logrus.StandardLogger()}
}

// Printf implements kernel.Console.
func (c *LogrusConsole) Printf(format string, args ...any) {
	c.Logger.Info(fmt.Sprintf(format, args...))
}

// Panicf implements kernel.Console. logrus.Panicf logs at the Panic
// level and then calls panic itself, matching spec.md §7's "invariant
// violations are fatal panics."
func (c *LogrusConsole) Panicf(format string, args ...any) {
	c.Logger.Panicf(format, args...)
}
