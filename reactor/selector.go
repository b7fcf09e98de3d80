// File: reactor/selector.go
// Author: momentics <momentics@gmail.com>
//
// Selector is the thin OS-readiness wrapper named in §2 item 1: register a
// fd for a given interest set, block in Wait until at least one is ready or
// the timeout elapses, and accept an out-of-band Wakeup from any goroutine.
// The platform-neutral surface is grounded on reactor_linux.go's
// EventReactor shape; §9's token-not-pointer guidance ("store sessions in a
// dense slab indexed by a token; register the token as the selector's
// user-data") is implemented by readyEvent.Token indexing into a worker's
// sessions slab instead of carrying a *IOSession pointer through the kernel.

package reactor

import "time"

// readyEvent is one readiness notification: Token identifies the registered
// session (an index into the owning worker's slab), Ops reports which
// interest(s) fired.
type readyEvent struct {
	Token uint64
	Ops   InterestOps
}

// selector is implemented per-OS (selector_linux.go, selector_windows.go,
// selector_stub.go).
type selector interface {
	// register adds fd to the watch set under token with the given interest.
	register(fd uintptr, token uint64, ops InterestOps) error

	// modify changes the interest set for an already-registered fd.
	modify(fd uintptr, token uint64, ops InterestOps) error

	// unregister removes fd from the watch set. Unknown fds are a no-op.
	unregister(fd uintptr) error

	// wait blocks up to timeout for readiness, appending ready events to
	// dst and returning the (possibly grown) slice. timeout <= 0 waits
	// indefinitely until an event or a wakeup.
	wait(dst []readyEvent, timeout time.Duration) ([]readyEvent, error)

	// wakeup causes a concurrent wait to return immediately, reporting zero
	// ready events. May be called from any goroutine, any number of times;
	// wakeups are coalesced (at-least-once, not additive).
	wakeup() error

	// close releases the underlying OS resource. A wait blocked when close
	// runs must return promptly rather than hang.
	close() error
}
