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

import "sync/atomic"

// ticker is the external tick source (§6 "Tick source"). The original
// kernel increments a global `ticks` under `tickslock` from the timer
// interrupt handler; here a single background goroutine owns the
// increment and everyone else reads it atomically, so "tickslock" is
// realized as the atomicity of the counter itself rather than a
// separate mutex — the counter is never read-modify-written by more
// than one goroutine.
type ticker struct {
	now int64 // atomic
}

// Ticks returns the current tick count.
func (t *ticker) Ticks() int64 {
	return atomic.LoadInt64(&t.now)
}

// advance moves the tick counter forward by one and returns the new
// value. Called only by the kernel's tick-driver goroutine (Boot) or
// directly by tests that want deterministic control over time.
func (t *ticker) advance() int64 {
	return atomic.AddInt64(&t.now, 1)
}

// set pins the tick counter to an exact value. Exposed for tests that
// need to fast-forward past AgedOutTicks without spinning a real
// goroutine loop.
func (t *ticker) set(v int64) {
	atomic.StoreInt64(&t.now, v)
}
