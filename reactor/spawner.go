// File: reactor/spawner.go
// Author: momentics <momentics@gmail.com>
//
// Spawner is §9's ThreadFactory translated into Go: a callback taking a name
// and a runnable, so callers can name goroutines (for profiling/logging) or
// pin them to a CPU via Config.WorkerCPUPinning. Default implementation
// grounded on affinity/affinity.go + adapters/affinity_adapter.go: lock the
// goroutine to its OS thread before pinning, since CPU affinity is
// meaningless for a goroutine the runtime is free to reschedule.

package reactor

import (
	"runtime"

	"github.com/momentics/ioreactor/affinity"
)

// Spawner starts fn under the given name, optionally pinning it to a CPU.
// name is advisory (used only for logging); cpuID < 0 means "no pinning".
type Spawner func(name string, cpuID int, fn func())

// DefaultSpawner runs fn on a fresh goroutine, locking it to its OS thread
// and pinning that thread to cpuID when cpuID >= 0.
func DefaultSpawner(log *reactorLogger) Spawner {
	return func(name string, cpuID int, fn func()) {
		go func() {
			if cpuID >= 0 {
				runtime.LockOSThread()
				defer runtime.UnlockOSThread()
				if err := affinity.SetAffinity(cpuID); err != nil && log != nil {
					log.warn("worker %s: cpu pin failed: %v", name, err)
				}
			}
			fn()
		}()
	}
}
