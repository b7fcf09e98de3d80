// File: reactor/reactor_test.go
// Author: momentics <momentics@gmail.com>

package reactor

import (
	"bufio"
	"net"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

// echoHandler implements EventHandler, echoing every line it reads back to
// the peer and recording which worker it ran on.
type echoHandler struct {
	t           *testing.T
	connected   chan struct{}
	disconn     chan struct{}
	workerSeen  *int32
	readBuf     []byte
}

func newEchoHandlerFactory(t *testing.T, workerSeen *int32) EventHandlerFactoryFunc {
	return func(sess *IOSession) (EventHandler, error) {
		return &echoHandler{
			t:          t,
			connected:  make(chan struct{}),
			disconn:    make(chan struct{}),
			workerSeen: workerSeen,
			readBuf:    make([]byte, 4096),
		}, nil
	}
}

func (h *echoHandler) Connected(sess *IOSession) {
	if h.workerSeen != nil {
		atomic.StoreInt32(h.workerSeen, int32(sess.WorkerID()))
	}
	close(h.connected)
}

func (h *echoHandler) InputReady(sess *IOSession) {
	n, err := sess.Channel().Read(h.readBuf)
	if n > 0 {
		sess.Channel().Write(h.readBuf[:n])
	}
	if err != nil {
		sess.Close()
	}
}

func (h *echoHandler) OutputReady(sess *IOSession)        {}
func (h *echoHandler) Timeout(sess *IOSession)            { sess.Close() }
func (h *echoHandler) Exception(sess *IOSession, err error) {}
func (h *echoHandler) Disconnected(sess *IOSession)       { close(h.disconn) }

func startTestReactor(t *testing.T, factory EventHandlerFactory) (*MultiWorkerReactor, *TCPListenerHooks, string) {
	t.Helper()
	cfg := DefaultConfig(2)
	cfg.SelectInterval = 50 * time.Millisecond
	cfg.ShutdownGracePeriod = time.Second

	r, err := NewMultiWorkerReactor(cfg, factory, nil, nil)
	if err != nil {
		t.Fatalf("new reactor: %v", err)
	}
	hooks, err := NewTCPListenerHooks("127.0.0.1:0", r)
	if err != nil {
		t.Fatalf("new listener hooks: %v", err)
	}
	r.SetHooks(hooks)

	go r.Execute()
	// give the worker goroutines a moment to reach Active.
	for i := 0; i < 100 && r.Status() != Active; i++ {
		time.Sleep(time.Millisecond)
	}
	return r, hooks, hooks.ln.Addr().String()
}

func TestEchoHappyPath(t *testing.T) {
	factory := newEchoHandlerFactory(t, nil)
	r, hooks, addr := startTestReactor(t, factory)
	defer hooks.Close()
	defer r.ShutdownDefault()

	conn, err := net.DialTimeout("tcp", addr, time.Second)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	conn.SetDeadline(time.Now().Add(2 * time.Second))
	if _, err := conn.Write([]byte("hello\n")); err != nil {
		t.Fatalf("write: %v", err)
	}
	reader := bufio.NewReader(conn)
	line, err := reader.ReadString('\n')
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if line != "hello\n" {
		t.Fatalf("got %q, want %q", line, "hello\n")
	}
}

func TestGracefulShutdownDrainsInFlightSessions(t *testing.T) {
	factory := newEchoHandlerFactory(t, nil)
	r, hooks, addr := startTestReactor(t, factory)
	defer hooks.Close()

	conn, err := net.DialTimeout("tcp", addr, time.Second)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	conn.SetDeadline(time.Now().Add(2 * time.Second))
	if _, err := conn.Write([]byte("ping\n")); err != nil {
		t.Fatalf("write: %v", err)
	}
	reader := bufio.NewReader(conn)
	if _, err := reader.ReadString('\n'); err != nil {
		t.Fatalf("read before shutdown: %v", err)
	}

	r.Shutdown(2000)
	if r.Status() != ShutDown {
		t.Fatalf("expected ShutDown after graceful Shutdown, got %v", r.Status())
	}
}

func TestRoundRobinDistribution(t *testing.T) {
	var seenMu sync.Mutex
	seen := map[int]bool{}

	factory := EventHandlerFactoryFunc(func(sess *IOSession) (EventHandler, error) {
		seenMu.Lock()
		seen[sess.WorkerID()] = true
		seenMu.Unlock()
		return &echoHandler{connected: make(chan struct{}), disconn: make(chan struct{}), readBuf: make([]byte, 64)}, nil
	})

	r, hooks, addr := startTestReactor(t, factory)
	defer hooks.Close()
	defer r.ShutdownDefault()

	for i := 0; i < 8; i++ {
		conn, err := net.DialTimeout("tcp", addr, time.Second)
		if err != nil {
			t.Fatalf("dial %d: %v", i, err)
		}
		conn.Close()
	}
	time.Sleep(200 * time.Millisecond)

	seenMu.Lock()
	defer seenMu.Unlock()
	if len(seen) < 2 {
		t.Fatalf("expected sessions spread across workers, saw only %v", seen)
	}
}

func TestSessionTimeoutDisconnectsExactlyOnce(t *testing.T) {
	var disconnects int32
	factory := EventHandlerFactoryFunc(func(sess *IOSession) (EventHandler, error) {
		sess.SetTimeout(50 * time.Millisecond)
		return &countingHandler{disconnects: &disconnects}, nil
	})

	cfg := DefaultConfig(1)
	cfg.SelectInterval = 10 * time.Millisecond
	r, err := NewMultiWorkerReactor(cfg, factory, nil, nil)
	if err != nil {
		t.Fatalf("new reactor: %v", err)
	}
	hooks, err := NewTCPListenerHooks("127.0.0.1:0", r)
	if err != nil {
		t.Fatalf("new hooks: %v", err)
	}
	r.SetHooks(hooks)
	defer hooks.Close()
	go r.Execute()
	for i := 0; i < 100 && r.Status() != Active; i++ {
		time.Sleep(time.Millisecond)
	}
	defer r.ShutdownDefault()

	conn, err := net.DialTimeout("tcp", hooks.ln.Addr().String(), time.Second)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	time.Sleep(300 * time.Millisecond)
	if atomic.LoadInt32(&disconnects) != 1 {
		t.Fatalf("expected exactly one Disconnected, got %d", atomic.LoadInt32(&disconnects))
	}
}

type countingHandler struct {
	disconnects *int32
}

func (h *countingHandler) Connected(sess *IOSession)          {}
func (h *countingHandler) InputReady(sess *IOSession)         {}
func (h *countingHandler) OutputReady(sess *IOSession)        {}
func (h *countingHandler) Timeout(sess *IOSession)            { sess.Close() }
func (h *countingHandler) Exception(sess *IOSession, err error) {}
func (h *countingHandler) Disconnected(sess *IOSession) {
	atomic.AddInt32(h.disconnects, 1)
}

func TestAbsModToleratesWraparound(t *testing.T) {
	if got := absMod(^uint64(0), 4); got < 0 || got >= 4 {
		t.Fatalf("absMod out of range: %d", got)
	}
	if got := absMod(0, 4); got != 0 {
		t.Fatalf("absMod(0, 4) = %d, want 0", got)
	}
}
