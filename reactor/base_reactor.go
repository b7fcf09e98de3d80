// File: reactor/base_reactor.go
// Author: momentics <momentics@gmail.com>
//
// BaseReactor is the single-worker event loop from §4.1: it owns one
// selector and runs select -> dispatch -> validate -> reap-closed ->
// intake-pending -> timeout every tick, exactly the per-session
// confinement invariant from §5 (all session code for a given connection
// runs on this one goroutine). Loop shape and ordering follow §4.1's eight
// steps; the slab/token indirection replaces the original selection-key
// attachment per §9.

package reactor

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
)

// BaseReactor runs one worker's event loop. Exported so a deployment can
// observe getStatus()/getAuditLog() on a specific worker, but constructed
// only through MultiWorkerReactor.
type BaseReactor struct {
	id      int
	cfg     *Config
	factory EventHandlerFactory
	log     *reactorLogger

	sel     selector
	slab    *sessionSlab
	pending *pendingQueue
	closed  *closedQueue

	status *statusMachine
	audit  *AuditLog

	excHandler ExceptionHandler
	metrics    MetricsSink

	lastErr error

	readyBuf []readyEvent
}

func newBaseReactor(id int, cfg *Config, factory EventHandlerFactory, excHandler ExceptionHandler) (*BaseReactor, error) {
	sel, err := newSelector()
	if err != nil {
		return nil, fmt.Errorf("worker %d: new selector: %w", id, err)
	}
	return &BaseReactor{
		id:         id,
		cfg:        cfg,
		factory:    factory,
		log:        newReactorLogger(fmt.Sprintf("worker-%d", id)),
		sel:        sel,
		slab:       newSessionSlab(),
		pending:    newPendingQueue(),
		closed:     newClosedQueue(),
		status:     newStatusMachine(),
		audit:      NewAuditLog(),
		excHandler: excHandler,
		metrics:    noopMetricsSink{},
		readyBuf:   make([]readyEvent, 0, 256),
	}, nil
}

// Status returns a snapshot read (§4.1 getStatus).
func (r *BaseReactor) Status() Status { return r.status.Status() }

// AuditLog returns this worker's own audit trail.
func (r *BaseReactor) AuditLog() *AuditLog { return r.audit }

// recordErr audits err and, when non-nil, bumps the worker-error counter.
// Record itself already no-ops on nil, so every r.audit.Record call site
// below goes through here to keep the metric in lockstep with the log.
func (r *BaseReactor) recordErr(err error) {
	r.audit.Record(err)
	if err != nil {
		r.metrics.WorkerError()
	}
}

// LastError returns the captured fatal error, if execute() has exited
// abnormally. Consulted by MultiWorkerReactor's worker-liveness check (§4.2
// step 3).
func (r *BaseReactor) LastError() error { return r.lastErr }

// enqueuePendingSession is the sole cross-thread entry point into this
// worker (§4.1, §5). Never blocks longer than the wakeup itself.
func (r *BaseReactor) enqueuePendingSession(ch Channel, req *SessionRequest) {
	r.pending.push(ch, req)
	if err := r.sel.wakeup(); err != nil {
		r.recordErr(err)
	}
}

// gracefulShutdown transitions ACTIVE -> SHUTTING_DOWN and wakes the
// selector so the loop observes it promptly (§4.1).
func (r *BaseReactor) gracefulShutdown() {
	if r.status.transition(ShuttingDown) {
		if err := r.sel.wakeup(); err != nil {
			r.recordErr(err)
		}
	}
}

// hardShutdown transitions to SHUT_DOWN, cancelling pending sessions and
// closing every active one, idempotently (§4.1).
func (r *BaseReactor) hardShutdown() {
	if !r.status.transition(ShutDown) {
		return
	}
	r.pending.cancelAll(r.audit)
	for _, sess := range r.slab.snapshot() {
		r.recordErr(sess.Close())
	}
	r.recordErr(r.sel.close())
	if err := r.sel.wakeup(); err != nil {
		_ = err // selector was closed just above; the wakeup error is expected and ignored
	}
}

// awaitShutDown blocks until Status reaches ShutDown or timeoutMs elapses.
func (r *BaseReactor) awaitShutDown(timeoutMs int64) bool {
	return r.status.awaitShutDown(timeoutMs)
}

// execute runs the loop until shutdown or a fatal condition (§4.1).
func (r *BaseReactor) execute() error {
	if !r.status.compareAndTransition(Inactive, Active) {
		return NewIOReactorError("execute", ErrAlreadyRunning)
	}
	defer r.hardShutdown()

	for {
		status := r.status.Status()
		if status == ShutDown {
			return nil
		}

		events, err := r.sel.wait(r.readyBuf[:0], r.cfg.SelectInterval)
		r.readyBuf = events
		if err != nil {
			wrapped := NewIOReactorError("select", err)
			r.lastErr = wrapped
			return wrapped
		}

		status = r.status.Status()

		if status == ShuttingDown {
			r.closeAllForShutdown()
		}

		if len(events) > 0 {
			r.dispatchReady(events)
		}

		r.validate(time.Now())
		r.reapClosed()

		if status == Active {
			r.intakePending()
		}

		if status > Active && len(r.slab.snapshot()) == 0 {
			return nil // deferred hardShutdown() performs the transition + cleanup
		}
	}
}

func (r *BaseReactor) closeAllForShutdown() {
	for _, sess := range r.slab.snapshot() {
		if sess.State() == SessionOpen {
			r.recordErr(sess.Close())
		}
	}
	r.pending.cancelAll(r.audit)
}

// dispatchReady delivers InputReady/OutputReady for every ready session
// (§4.1 step 4). Accept/Connect dispatch belongs to MultiWorkerReactor's
// main-selector hooks, not here; a worker's selector only ever watches
// already-accepted/connected sessions.
func (r *BaseReactor) dispatchReady(events []readyEvent) {
	now := time.Now()
	for _, ev := range events {
		sess, ok := r.slab.get(ev.Token)
		if !ok {
			continue
		}
		handler, ok := sess.Attribute(handlerAttrKey)
		if !ok {
			continue
		}
		h := handler.(EventHandler)

		if ev.Ops&OpRead != 0 {
			sess.lastAccess.Store(now.UnixNano())
			r.safeDispatch(sess, h.InputReady)
		}
		if ev.Ops&OpWrite != 0 && sess.InterestOps()&OpWrite != 0 {
			sess.lastAccess.Store(now.UnixNano())
			r.safeDispatch(sess, h.OutputReady)
		}
	}
}

func (r *BaseReactor) safeDispatch(sess *IOSession, fn func(*IOSession)) {
	defer func() {
		if rec := recover(); rec != nil {
			r.deliverException(sess, fmt.Errorf("handler panic: %v", rec))
		}
	}()
	fn(sess)
}

func (r *BaseReactor) deliverException(sess *IOSession, err error) {
	r.recordErr(err)
	if r.excHandler != nil && r.excHandler.HandleError(err) {
		return
	}
	if handler, ok := sess.Attribute(handlerAttrKey); ok {
		func() {
			defer func() { recover() }()
			handler.(EventHandler).Exception(sess, err)
		}()
	}
	sess.Close()
}

// validate runs the default timeout check (§4.1 step 5 / §4.4).
func (r *BaseReactor) validate(now time.Time) {
	for _, sess := range r.slab.snapshot() {
		timeout := sess.Timeout()
		if timeout <= 0 {
			continue
		}
		if sess.idleFor(now) > timeout {
			if handler, ok := sess.Attribute(handlerAttrKey); ok {
				r.safeDispatch(sess, handler.(EventHandler).Timeout)
			}
		}
	}
}

// reapClosed drains closedSessions and dispatches Disconnected exactly once
// per session (§4.1 step 6, §4.4, §8).
func (r *BaseReactor) reapClosed() {
	for _, token := range r.closed.drain() {
		sess, ok := r.slab.get(token)
		if !ok {
			continue
		}
		r.slab.release(token)
		if handler, ok := sess.Attribute(handlerAttrKey); ok {
			func() {
				defer func() {
					if rec := recover(); rec != nil {
						r.recordErr(fmt.Errorf("disconnected panic: %v", rec))
					}
				}()
				handler.(EventHandler).Disconnected(sess)
			}()
		}
	}
}

const handlerAttrKey = "__event_handler__"

// intakePending registers newly handed-off channels (§4.1 step 7).
func (r *BaseReactor) intakePending() {
	entries := r.pending.drain()
	r.metrics.SetPendingQueueSize(len(entries))
	for i, entry := range entries {
		if r.status.Status() != Active {
			if entry.request != nil {
				entry.request.Cancel()
			}
			r.recordErr(entry.channel.Close())
			continue
		}

		fd, err := entry.channel.Fd()
		if err != nil {
			if entry.request != nil {
				entry.request.Fail(err)
			}
			r.recordErr(entry.channel.Close())
			continue
		}

		sess := newIOSession(uuid.New(), 0, r.id, entry.channel, r.cfg.SoTimeout, r.onSessionClosed)
		token := r.slab.alloc(sess)
		sess.token = token

		if err := r.sel.register(fd, token, OpRead); err != nil {
			r.slab.release(token)
			if isClosedChannelErr(err) {
				if entry.request != nil {
					entry.request.Fail(err)
				}
				r.recordErr(entry.channel.Close())
				// stop draining this tick, per §4.1 step 7: the entries not
				// yet registered go back on the queue for the next tick.
				for _, rest := range entries[i+1:] {
					r.pending.push(rest.channel, rest.request)
				}
				return
			}
			r.lastErr = NewIOReactorError("register", err)
			r.recordErr(r.lastErr)
			continue
		}

		handler, err := r.factory.CreateHandler(sess)
		if err != nil {
			r.slab.release(token)
			r.sel.unregister(fd)
			if entry.request != nil {
				entry.request.Fail(err)
			}
			r.recordErr(entry.channel.Close())
			continue
		}
		sess.SetAttribute(handlerAttrKey, handler)

		if tc, ok := entry.channel.(*TCPChannel); ok {
			if err := tc.ApplySocketOptions(r.cfg); err != nil {
				r.recordErr(err)
			}
		}

		if entry.request != nil {
			entry.request.Complete(sess)
		}

		r.safeDispatch(sess, handler.Connected)
		r.metrics.SessionOpened()
	}
}

func (r *BaseReactor) onSessionClosed(token uint64) {
	r.closed.push(token)
	r.metrics.SessionClosed()
}

// isClosedChannelErr reports whether err looks like the descriptor was
// already closed by the time registration ran (a benign race between a
// peer/local close and intake draining the pending queue), as opposed to a
// genuine selector malfunction. There is no portable errno type shared by
// epoll and IOCP failures, so this matches on the syscall.Errno rendering
// both backends produce for a stale fd.
func isClosedChannelErr(err error) bool {
	if err == nil {
		return false
	}
	if os.IsNotExist(err) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "bad file descriptor") ||
		strings.Contains(msg, "invalid handle") ||
		strings.Contains(msg, "closed")
}
