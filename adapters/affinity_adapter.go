// File: adapters/affinity_adapter.go
// Author: momentics <momentics@gmail.com>
//
// AffinityAdapter is a stateful wrapper around the affinity package's per-OS
// thread pinning for custom Spawners: such a Spawner calls Pin once at the
// top of each worker goroutine, before entering its run loop, so the
// goroutine's OS thread stays pinned for the life of the worker (locked via
// runtime.LockOSThread by the caller). reactor.DefaultSpawner does not use
// it; it calls affinity.SetAffinity directly. Grounded on the teacher's own
// adapters/affinity_adapter.go delegation shape, re-targeted at the
// `affinity` package now that internal/concurrency's pinning helpers are gone.

package adapters

import "github.com/momentics/ioreactor/affinity"

// AffinityAdapter tracks the CPU a worker goroutine has pinned itself to.
type AffinityAdapter struct {
	currentCPU int
	pinned     bool
}

// NewAffinityAdapter constructs an unpinned adapter.
func NewAffinityAdapter() *AffinityAdapter {
	return &AffinityAdapter{currentCPU: -1}
}

// Pin binds the calling OS thread to cpuID. The caller must have already
// called runtime.LockOSThread; Pin does not do so itself since un-pinning
// would otherwise require unlocking a thread other goroutines may resume.
func (a *AffinityAdapter) Pin(cpuID int) error {
	if cpuID < 0 {
		return nil
	}
	if err := affinity.SetAffinity(cpuID); err != nil {
		return err
	}
	a.currentCPU = cpuID
	a.pinned = true
	return nil
}

// CPU returns the currently pinned CPU, or -1 if unpinned.
func (a *AffinityAdapter) CPU() int { return a.currentCPU }

// Pinned reports whether Pin has succeeded and not been superseded.
func (a *AffinityAdapter) Pinned() bool { return a.pinned }
