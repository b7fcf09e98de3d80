// File: reactor/status.go
// Author: momentics <momentics@gmail.com>
//
// ReactorStatus is a totally ordered, monotonic state machine shared by
// BaseReactor and MultiWorkerReactor (§4.3). Generalized from a boolean
// running flag plus a quit/done channel pair into a five-state ordered
// enum, keeping the same closed-channel broadcast idiom for the
// terminal-state wait.

package reactor

import (
	"sync"
	"time"
)

// Status is a reactor lifecycle state. Values are ordered: a reactor never
// observes a lower value after having observed a higher one.
type Status int32

const (
	Inactive Status = iota
	Active
	ShutdownRequest
	ShuttingDown
	ShutDown
)

func (s Status) String() string {
	switch s {
	case Inactive:
		return "INACTIVE"
	case Active:
		return "ACTIVE"
	case ShutdownRequest:
		return "SHUTDOWN_REQUEST"
	case ShuttingDown:
		return "SHUTTING_DOWN"
	case ShutDown:
		return "SHUT_DOWN"
	default:
		return "UNKNOWN"
	}
}

// statusMachine is held by BaseReactor and MultiWorkerReactor. All writes
// go through transition/compareAndTransition so the monotonic invariant
// holds; Status() takes the same lock, and callers act on the snapshot it
// returns, which may be one tick stale by the time they use it (§5
// tolerates this).
type statusMachine struct {
	mu       sync.Mutex
	status   Status
	shutdown chan struct{} // closed exactly once, when status reaches ShutDown
}

func newStatusMachine() *statusMachine {
	return &statusMachine{status: Inactive, shutdown: make(chan struct{})}
}

// Status returns a snapshot read.
func (sm *statusMachine) Status() Status {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	return sm.status
}

// transition moves the status to next iff next is strictly greater than the
// current value; returns whether the transition happened.
func (sm *statusMachine) transition(next Status) bool {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	if next <= sm.status {
		return false
	}
	sm.status = next
	if next == ShutDown {
		close(sm.shutdown)
	}
	return true
}

// compareAndTransition moves the status to next iff the current value equals
// want; used where a caller must not race a concurrent forward transition.
func (sm *statusMachine) compareAndTransition(want, next Status) bool {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	if sm.status != want {
		return false
	}
	sm.status = next
	if next == ShutDown {
		close(sm.shutdown)
	}
	return true
}

// awaitShutDown blocks until status reaches ShutDown or timeoutMs elapses
// (0 means wait forever). Returns true if ShutDown was observed.
func (sm *statusMachine) awaitShutDown(timeoutMs int64) bool {
	if timeoutMs == 0 {
		<-sm.shutdown
		return true
	}
	select {
	case <-sm.shutdown:
		return true
	case <-time.After(time.Duration(timeoutMs) * time.Millisecond):
		sm.mu.Lock()
		reached := sm.status == ShutDown
		sm.mu.Unlock()
		return reached
	}
}
