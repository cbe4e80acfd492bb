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

// DoAging promotes starved processes between queues (§4.6). For every
// Runnable slot whose queue is not RoundRobin and which has gone
// longer than AgedOutTicks since it was last picked or re-homed, its
// queue toggles between LCFS and RoundRobin and its age is refreshed
// to now. BJF slots are never touched: once Runnable in BJF, aging
// never moves them out (the invariant §4.6 flags as an open question
// and spec.md resolves by simply not including BJF in the toggle set).
func (k *Kernel) DoAging(now int64) {
	k.mu.Lock()
	defer k.mu.Unlock()
	for _, p := range k.procs {
		if p.state != Runnable || p.sched.queue == RoundRobin || p.sched.queue == BJF || p.sched.queue == NoQueue {
			continue
		}
		if now-p.sched.age > k.cfg.AgedOutTicks {
			if p.sched.queue == LCFS {
				p.sched.queue = RoundRobin
			} else {
				p.sched.queue = LCFS
			}
			p.sched.age = now
		}
	}
}
