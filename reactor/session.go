// File: reactor/session.go
// Author: momentics <momentics@gmail.com>
//
// IOSession is the reactor's per-connection handle (§3/§6): it carries the
// Channel, the interest-ops bitmask a worker consults every tick, and the
// idle-timeout bookkeeping a worker's validate pass checks. The owning
// worker's EventHandler lives in the attribute map under handlerAttrKey
// rather than a dedicated field, so Attribute/SetAttribute is the single
// attachment path for both the handler and application state. Field layout
// (atomics for hot fields, a mutex only for the rarely-written attachment)
// follows the same low-contention shape as queue.go's lock-free ring: hot
// counters as atomics, a lock reserved for the cold path only.

package reactor

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

// InterestOps is a bitmask of the I/O events a session's worker should wait
// for on its Channel.
type InterestOps int32

const (
	OpRead InterestOps = 1 << iota
	OpWrite
)

// SessionState is the session's own small lifecycle, independent of (and
// nested inside) the reactor's Status.
type SessionState int32

const (
	SessionOpen SessionState = iota
	SessionClosing
	SessionClosed
)

// IOSession is safe for concurrent use: EventHandler callbacks run on the
// owning worker's goroutine, but Close/SetInterestOps/Timeout may be called
// from any goroutine (e.g. application code reacting to its own events).
type IOSession struct {
	id      uuid.UUID
	channel Channel

	workerID int

	interestOps atomic.Int32
	state       atomic.Int32
	lastAccess  atomic.Int64 // unix nanos
	timeoutNs   atomic.Int64

	closeOnce sync.Once
	closedCh  chan struct{}

	// token is this session's slab index (§9: store sessions in a dense
	// slab indexed by a token, register the token as the selector's
	// user-data, avoiding pointer-identity through the kernel).
	token uint64

	// onClose is invoked exactly once, the first time Close takes effect,
	// so the owning worker can push the token onto closedSessions without
	// the session holding a reference back to its worker.
	onClose func(token uint64)

	attrMu sync.RWMutex
	attrs  map[string]any
}

func newIOSession(id uuid.UUID, token uint64, workerID int, ch Channel, timeout time.Duration, onClose func(uint64)) *IOSession {
	s := &IOSession{
		id:       id,
		token:    token,
		channel:  ch,
		workerID: workerID,
		onClose:  onClose,
		closedCh: make(chan struct{}),
		attrs:    make(map[string]any),
	}
	s.interestOps.Store(int32(OpRead))
	s.state.Store(int32(SessionOpen))
	s.lastAccess.Store(time.Now().UnixNano())
	s.timeoutNs.Store(int64(timeout))
	return s
}

// ID uniquely identifies this session.
func (s *IOSession) ID() uuid.UUID { return s.id }

// WorkerID is the index of the BaseReactor worker this session is bound to.
func (s *IOSession) WorkerID() int { return s.workerID }

// Token is this session's slab index within its owning worker.
func (s *IOSession) Token() uint64 { return s.token }

// Channel returns the underlying socket abstraction.
func (s *IOSession) Channel() Channel { return s.channel }

// InterestOps returns the current interest bitmask.
func (s *IOSession) InterestOps() InterestOps {
	return InterestOps(s.interestOps.Load())
}

// SetInterestOps replaces the interest bitmask. The selector registration
// is not changed: a worker registers each channel for OpRead once, at
// intake, and this mask only decides whether a reported write readiness is
// delivered as OutputReady.
func (s *IOSession) SetInterestOps(ops InterestOps) {
	s.interestOps.Store(int32(ops))
}

// State reports the session's own lifecycle state.
func (s *IOSession) State() SessionState {
	return SessionState(s.state.Load())
}

// Timeout returns the idle timeout applied to this session; 0 means none.
func (s *IOSession) Timeout() time.Duration {
	return time.Duration(s.timeoutNs.Load())
}

// SetTimeout overrides the session's idle timeout (e.g. from Connected).
func (s *IOSession) SetTimeout(d time.Duration) {
	s.timeoutNs.Store(int64(d))
}

// touch records activity, resetting the idle-timeout clock. The worker's
// dispatchReady performs the same store inline, before delivering
// InputReady/OutputReady.
func (s *IOSession) touch() {
	s.lastAccess.Store(time.Now().UnixNano())
}

// idleFor reports how long the session has gone without activity.
func (s *IOSession) idleFor(now time.Time) time.Duration {
	last := time.Unix(0, s.lastAccess.Load())
	return now.Sub(last)
}

// Close marks the session closed and closes its Channel. Safe to call more
// than once or concurrently; only the first call takes effect. It does not
// itself invoke Disconnected — that happens once the owning worker drains
// the session from its closedSessions queue (§8).
func (s *IOSession) Close() error {
	var err error
	s.closeOnce.Do(func() {
		s.state.Store(int32(SessionClosed))
		err = s.channel.Close()
		close(s.closedCh)
		if s.onClose != nil {
			s.onClose(s.token)
		}
	})
	return err
}

// Done returns a channel closed once Close has run, so callers can select
// on session teardown without polling State.
func (s *IOSession) Done() <-chan struct{} { return s.closedCh }

// SetAttribute attaches arbitrary per-session state for the handler's use
// (e.g. a parser's partial-frame buffer). Mirrors the attachment slot every
// NIO-style reactor exposes.
func (s *IOSession) SetAttribute(key string, value any) {
	s.attrMu.Lock()
	s.attrs[key] = value
	s.attrMu.Unlock()
}

// Attribute retrieves a previously attached value.
func (s *IOSession) Attribute(key string) (any, bool) {
	s.attrMu.RLock()
	defer s.attrMu.RUnlock()
	v, ok := s.attrs[key]
	return v, ok
}

// Context is a convenience derived from Done, so handler code can plumb a
// single cancellation signal through functions that expect a context.Context.
func (s *IOSession) Context() context.Context {
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		<-s.closedCh
		cancel()
	}()
	return ctx
}
