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

package simhw

import "testing"

func TestCopyAddressSpaceDoesNotAlias(t *testing.T) {
	vm := VM{}
	as, err := vm.NewAddressSpace()
	if err != nil {
		t.Fatalf("NewAddressSpace: %v", err)
	}
	if _, err := vm.LoadInitImage(as, []byte("hello")); err != nil {
		t.Fatalf("LoadInitImage: %v", err)
	}

	child, err := vm.CopyAddressSpace(as, 5)
	if err != nil {
		t.Fatalf("CopyAddressSpace: %v", err)
	}

	if _, err := vm.Grow(as, 5, 4096); err != nil {
		t.Fatalf("Grow parent: %v", err)
	}

	parentPT := as.(*pageTable)
	childPT := child.(*pageTable)
	if len(childPT.Pages) == len(parentPT.Pages) {
		t.Fatalf("child address space observed parent's later growth: child pages=%d parent pages=%d",
			len(childPT.Pages), len(parentPT.Pages))
	}
}

func TestFSNameiDupRefcounts(t *testing.T) {
	fs := NewFS()
	fs.Init()

	i1, err := fs.Namei("/bin/sh")
	if err != nil {
		t.Fatalf("Namei: %v", err)
	}
	i2 := fs.Idup(i1)
	if i1 != i2 {
		t.Fatalf("Idup returned a different handle than Namei for the same path")
	}

	entry := i1.(*inodeEntry)
	if entry.refs != 2 {
		t.Fatalf("refs after Namei+Idup = %d, want 2", entry.refs)
	}

	fs.Iput(i1)
	if entry.refs != 1 {
		t.Fatalf("refs after one Iput = %d, want 1", entry.refs)
	}
}

func TestLogrusConsolePrintfDoesNotPanic(t *testing.T) {
	c := NewLogrusConsole()
	c.Printf("process %d entered state %s", 7, "RUNNABLE")
}
