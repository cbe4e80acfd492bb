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
	"context"
	"time"

	"github.com/cenkalti/backoff"
	"golang.org/x/sync/errgroup"
)

// Boot starts one dispatch-loop goroutine per configured CPU and a
// background tick driver, and blocks until ctx is canceled, then
// returns the context's error. It uses errgroup the way the teacher
// supervises its own goroutine fleets: the first non-nil error cancels
// every sibling via the shared context. A panic in any loop is not
// recovered.
func (k *Kernel) Boot(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return k.tickLoop(ctx)
	})

	for _, cpu := range k.cpus {
		cpu := cpu
		g.Go(func() error {
			k.dispatchLoop(ctx, cpu)
			return ctx.Err()
		})
	}

	return g.Wait()
}

func (k *Kernel) tickLoop(ctx context.Context) error {
	interval := k.cfg.TickInterval
	if interval <= 0 {
		interval = 10 * time.Millisecond
	}
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.C:
			k.TickDriver()
			k.DoAging(k.Ticks())
		}
	}
}

// dispatchLoop is one CPU's scheduler loop (§4.4): refresh default
// queue assignments, pick the next Runnable process in RR -> LCFS ->
// BJF order, run it, repeat. While idle (no Runnable process anywhere)
// it backs off exponentially instead of spinning a hot loop, resetting
// the backoff the instant a process is found.
func (k *Kernel) dispatchLoop(ctx context.Context, cpu *CPU) {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = 200 * time.Microsecond
	bo.MaxInterval = 5 * time.Millisecond
	bo.MaxElapsedTime = 0 // never stop retrying on its own

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		k.refreshQueue()

		k.mu.Lock()
		p := k.pickNext()
		k.mu.Unlock()

		if p == nil {
			select {
			case <-ctx.Done():
				return
			case <-time.After(bo.NextBackOff()):
			}
			continue
		}
		bo.Reset()
		// p was Runnable as of pickNext above, but k.mu was released
		// between the pick and here — another CPU's dispatchLoop may
		// have already claimed it. runProc re-checks under lock and
		// is a no-op if so; this CPU simply loops back and re-picks.
		k.runProc(cpu, p)
	}
}
