// File: reactor/audit.go
// Author: momentics <momentics@gmail.com>
//
// AuditLog is the append-only (error, timestamp) trail described in §3/§7:
// it preserves the original cause of any abnormal termination plus every
// error encountered during teardown, in order, so an operator can decide
// whether restart is safe. Shape grounded on control/metrics.go's
// mutex-guarded map + snapshot-copy idiom, applied here to a slice.

package reactor

import (
	"sync"
	"time"
)

// ExceptionEvent records one audited error and when it was observed.
type ExceptionEvent struct {
	Err  error
	Time time.Time
}

// AuditLog is a concurrency-safe, append-only sequence of ExceptionEvents.
type AuditLog struct {
	mu     sync.Mutex
	events []ExceptionEvent
}

// NewAuditLog creates an empty log.
func NewAuditLog() *AuditLog {
	return &AuditLog{}
}

// Record appends err with the current time. A nil err is ignored so call
// sites can write Record(someFallibleOp()) without an extra nil check.
func (a *AuditLog) Record(err error) {
	if err == nil {
		return
	}
	a.mu.Lock()
	a.events = append(a.events, ExceptionEvent{Err: err, Time: time.Now()})
	a.mu.Unlock()
}

// Snapshot returns a copy of the recorded events in the order they occurred.
func (a *AuditLog) Snapshot() []ExceptionEvent {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]ExceptionEvent, len(a.events))
	copy(out, a.events)
	return out
}

// Len reports the number of recorded events without copying them.
func (a *AuditLog) Len() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.events)
}

// ExceptionHandler may intercept an error raised inside an EventHandler
// callback (a recovered panic) before the session is torn down. Returning
// true ("handled") leaves the session open and skips its Exception hook; the
// error is still recorded in the audit log either way. Absent a hook, or when
// it returns false, the session's Exception hook runs and the session is
// closed. Errors that end a worker's loop (selector failures) are not passed
// to the hook; they always stop the reactor.
type ExceptionHandler interface {
	HandleError(err error) (handled bool)
}

// ExceptionHandlerFunc adapts a plain function to ExceptionHandler.
type ExceptionHandlerFunc func(err error) bool

func (f ExceptionHandlerFunc) HandleError(err error) bool { return f(err) }
