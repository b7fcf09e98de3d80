// File: reactor/multiworker_reactor.go
// Author: momentics <momentics@gmail.com>
//
// MultiWorkerReactor is §4.2/§2 item 6: it owns N BaseReactor workers and
// their goroutines, a main selector for accept/connect dispatch, the audit
// log, the round-robin distribution counter, and the top-level shutdown
// state machine. §9's "abstract base classes with protected hooks" becomes
// the LoopHooks capability object passed at construction, composed rather
// than inherited.

package reactor

import (
	"fmt"
	"math"
	"sync"
	"sync/atomic"
	"time"
)

// LoopHooks supplies the main-selector specialization (§4.2, §9): what to
// do when the main selector reports readiness (typically Accept on a
// listening socket, or Connect completion on an outbound one), and what to
// do to cancel any in-flight accept/connect work during shutdown.
type LoopHooks interface {
	ProcessEvents(readyCount int) error
	CancelRequests() error
}

// noopHooks is used when a deployment only ever calls EnqueuePendingSession
// directly (e.g. channels handed in from outside the reactor) and has no
// main-selector-driven accept loop of its own.
type noopHooks struct{}

func (noopHooks) ProcessEvents(int) error { return nil }
func (noopHooks) CancelRequests() error   { return nil }

// MultiWorkerReactor is the IOReactor surface from §6.
type MultiWorkerReactor struct {
	cfg     *Config
	factory EventHandlerFactory
	hooks   LoopHooks
	spawner Spawner
	log     *reactorLogger

	mainSel selector

	status *statusMachine
	audit  *AuditLog

	excHandlerMu sync.RWMutex
	excHandler   ExceptionHandler

	metricsMu sync.RWMutex
	metrics   MetricsSink

	workers  []*BaseReactor
	workerWG sync.WaitGroup

	counter atomic.Uint64

	doShutdownOnce sync.Once
}

// NewMultiWorkerReactor constructs a reactor with INACTIVE status. hooks may
// be nil (noopHooks); spawner may be nil (DefaultSpawner).
func NewMultiWorkerReactor(cfg *Config, factory EventHandlerFactory, hooks LoopHooks, spawner Spawner) (*MultiWorkerReactor, error) {
	if factory == nil {
		return nil, NewIOReactorError("new reactor", fmt.Errorf("event handler factory is required"))
	}
	normalized := cfg.normalized()
	mainSel, err := newSelector()
	if err != nil {
		return nil, NewIOReactorError("new reactor", err)
	}
	if hooks == nil {
		hooks = noopHooks{}
	}
	log := newReactorLogger("multiworker")
	if spawner == nil {
		spawner = DefaultSpawner(log)
	}
	return &MultiWorkerReactor{
		cfg:     normalized,
		factory: factory,
		hooks:   hooks,
		spawner: spawner,
		log:     log,
		mainSel: mainSel,
		status:  newStatusMachine(),
		audit:   NewAuditLog(),
		metrics: noopMetricsSink{},
	}, nil
}

// SetHooks replaces the main-selector hook set. Only meaningful before
// Execute is called: it exists for constructors like NewTCPListenerHooks
// that need an already-constructed reactor (for its main selector) before
// they themselves can be built, inverting the usual constructor-argument
// order.
func (m *MultiWorkerReactor) SetHooks(hooks LoopHooks) {
	if hooks == nil {
		hooks = noopHooks{}
	}
	m.hooks = hooks
}

// SetMetricsSink replaces the optional observability sink, propagating it to
// every already-constructed worker and to any spawned after this call.
func (m *MultiWorkerReactor) SetMetricsSink(sink MetricsSink) {
	if sink == nil {
		sink = noopMetricsSink{}
	}
	m.metricsMu.Lock()
	m.metrics = sink
	m.metricsMu.Unlock()
	for _, w := range m.workers {
		w.metrics = sink
	}
}

func (m *MultiWorkerReactor) metricsSink() MetricsSink {
	m.metricsMu.RLock()
	defer m.metricsMu.RUnlock()
	return m.metrics
}

// MainSelector exposes the main selector so a listener hook implementation
// can register its listening socket's fd for accept-readiness.
func (m *MultiWorkerReactor) MainSelector() interface {
	Register(fd uintptr, token uint64, ops InterestOps) error
	Wakeup() error
} {
	return mainSelectorFacade{m.mainSel}
}

type mainSelectorFacade struct{ sel selector }

func (f mainSelectorFacade) Register(fd uintptr, token uint64, ops InterestOps) error {
	return f.sel.register(fd, token, ops)
}
func (f mainSelectorFacade) Wakeup() error { return f.sel.wakeup() }

// Status returns a snapshot read (§4.1 getStatus analogue at the top level).
func (m *MultiWorkerReactor) Status() Status { return m.status.Status() }

// GetAuditLog returns a copy-on-read snapshot (§4.2).
func (m *MultiWorkerReactor) GetAuditLog() []ExceptionEvent { return m.audit.Snapshot() }

// SetExceptionHandler replaces the optional hook workers consult when an
// EventHandler callback panics (§4.2, §7; see ExceptionHandler). Safe to call
// at any time.
func (m *MultiWorkerReactor) SetExceptionHandler(h ExceptionHandler) {
	m.excHandlerMu.Lock()
	m.excHandler = h
	m.excHandlerMu.Unlock()
	for _, w := range m.workers {
		w.excHandler = h
	}
}

func (m *MultiWorkerReactor) exceptionHandler() ExceptionHandler {
	m.excHandlerMu.RLock()
	defer m.excHandlerMu.RUnlock()
	return m.excHandler
}

// EnqueuePendingSession hands a connected Channel (plus optional outbound
// SessionRequest) into the pool, choosing worker i = |counter++| mod N
// (§4.2, §9: absolute value to tolerate wraparound).
func (m *MultiWorkerReactor) EnqueuePendingSession(ch Channel, req *SessionRequest) error {
	if len(m.workers) == 0 {
		return NewIOReactorError("enqueue", fmt.Errorf("reactor not running"))
	}
	n := m.counter.Add(1)
	idx := absMod(n, len(m.workers))
	m.workers[idx].enqueuePendingSession(ch, req)
	return nil
}

func absMod(n uint64, mod int) int {
	if mod <= 0 {
		return 0
	}
	v := int64(n)
	if v < 0 {
		v = int64(math.Abs(float64(v)))
	}
	return int(v % int64(mod))
}

// Execute runs the main loop, blocking until shutdown completes (§4.2).
func (m *MultiWorkerReactor) Execute() error {
	if !m.beginExecute() {
		return nil
	}

	m.workers = make([]*BaseReactor, m.cfg.IOThreadCount)
	for i := 0; i < m.cfg.IOThreadCount; i++ {
		w, err := newBaseReactor(i, m.cfg, m.factory, m.exceptionHandler())
		if err != nil {
			return NewIOReactorError("execute", err)
		}
		w.metrics = m.metricsSink()
		m.workers[i] = w
	}

	for i, w := range m.workers {
		if m.status.Status() != Active {
			break
		}
		worker := w
		idx := i
		cpu := -1
		if len(m.cfg.WorkerCPUPinning) > 0 {
			cpu = m.cfg.WorkerCPUPinning[idx%len(m.cfg.WorkerCPUPinning)]
		}
		m.workerWG.Add(1)
		m.spawner(fmt.Sprintf("ioreactor-worker-%d", idx), cpu, func() {
			defer m.workerWG.Done()
			if err := worker.execute(); err != nil {
				worker.lastErr = err
			}
		})
	}

	var runErr error
loop:
	for {
		status := m.status.Status()
		if status > Active {
			break loop
		}

		readyBuf := make([]readyEvent, 0, 64)
		events, err := m.mainSel.wait(readyBuf, m.cfg.SelectInterval)
		if err != nil {
			runErr = NewIOReactorError("main select", err)
			break loop
		}
		if len(events) > 0 {
			if err := m.hooks.ProcessEvents(len(events)); err != nil {
				m.audit.Record(err)
			}
		}

		for _, w := range m.workers {
			if werr := w.LastError(); werr != nil {
				runErr = NewIOReactorError("worker failure", werr)
				break loop
			}
		}
	}

	m.doShutdown()
	m.status.transition(ShutDown)
	return runErr
}

func (m *MultiWorkerReactor) beginExecute() bool {
	if m.status.Status() > Active {
		m.status.transition(ShutDown)
		return false
	}
	return m.status.compareAndTransition(Inactive, Active)
}

// Shutdown is the state-machine entry for controlled teardown (§4.2).
func (m *MultiWorkerReactor) Shutdown(waitMs int64) {
	status := m.status.Status()
	if status > Active {
		return
	}
	if status == Inactive {
		if m.status.compareAndTransition(Inactive, ShutDown) {
			for _, w := range m.workers {
				w.pending.cancelAll(m.audit)
			}
			m.audit.Record(m.mainSel.close())
		}
		return
	}
	if !m.status.transition(ShutdownRequest) {
		return
	}
	m.audit.Record(m.mainSel.wakeup())
	m.status.awaitShutDown(waitMs)
}

// ShutdownDefault uses §4.2's default wait (2000 ms).
func (m *MultiWorkerReactor) ShutdownDefault() { m.Shutdown(DefaultShutdownWaitMs) }

// doShutdown performs the orderly teardown exactly once (§4.2).
func (m *MultiWorkerReactor) doShutdown() {
	m.doShutdownOnce.Do(func() {
		if !m.status.transition(ShuttingDown) {
			return
		}
		if err := m.hooks.CancelRequests(); err != nil {
			m.audit.Record(err)
		}
		m.audit.Record(m.mainSel.wakeup())
		m.audit.Record(m.mainSel.close())

		for _, w := range m.workers {
			w.gracefulShutdown()
		}
		for _, w := range m.workers {
			if !w.awaitShutDown(int64(m.cfg.ShutdownGracePeriod / time.Millisecond)) {
				w.hardShutdown()
			}
		}
		waitDone := make(chan struct{})
		go func() {
			m.workerWG.Wait()
			close(waitDone)
		}()
		select {
		case <-waitDone:
		case <-time.After(m.cfg.ShutdownGracePeriod + 500*time.Millisecond):
			m.audit.Record(NewIOReactorError("join workers", fmt.Errorf("timed out waiting for worker goroutines to exit")))
		}
	})
}
