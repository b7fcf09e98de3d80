// File: reactor/tcp_listener_hooks.go
// Author: momentics <momentics@gmail.com>
//
// TCPListenerHooks is a default LoopHooks implementation closing the gap the
// spec's dataflow leaves open: "a higher layer presents a connected
// SocketChannel to the MultiWorkerReactor." Grounded on
// transport/tcp/listener.go's accept loop (net.Listen, ln.Accept, hand the
// conn to a caller-supplied handler), adapted from a goroutine-per-accept
// loop into a readiness-driven one: the listening socket's fd is registered
// on the MultiWorkerReactor's main selector, and ProcessEvents drains every
// pending connection by probing AcceptTCP with a near-zero deadline (the
// usual trick for turning a blocking Accept into a non-blocking one without
// a raw accept4/EAGAIN-syscall layer).

package reactor

import (
	"net"
	"time"
)

// listenerToken is the main selector's user-data value for the listening
// socket; token 0 is reserved for the selector's own wakeup registration
// (see newSelector in selector_linux.go/selector_windows.go).
const listenerToken uint64 = 1

// TCPListenerHooks accepts inbound connections and hands them to a
// MultiWorkerReactor via EnqueuePendingSession, round-robin across workers.
type TCPListenerHooks struct {
	ln      *net.TCPListener
	reactor *MultiWorkerReactor
	log     *reactorLogger
}

// NewTCPListenerHooks binds addr and registers the listening socket on
// reactor's main selector, so reactor must already exist. Install the result
// with reactor.SetHooks, then call reactor.Execute() (Execute does not
// itself know about listeners; it only drives whatever hooks it was given).
func NewTCPListenerHooks(addr string, reactor *MultiWorkerReactor) (*TCPListenerHooks, error) {
	tcpAddr, err := net.ResolveTCPAddr("tcp", addr)
	if err != nil {
		return nil, err
	}
	ln, err := net.ListenTCP("tcp", tcpAddr)
	if err != nil {
		return nil, err
	}
	h := &TCPListenerHooks{
		ln:      ln,
		reactor: reactor,
		log:     newReactorLogger("tcp-listener"),
	}
	fd, err := h.fd()
	if err != nil {
		ln.Close()
		return nil, err
	}
	if err := reactor.MainSelector().Register(fd, listenerToken, OpRead); err != nil {
		ln.Close()
		return nil, err
	}
	return h, nil
}

func (h *TCPListenerHooks) fd() (uintptr, error) {
	raw, err := h.ln.SyscallConn()
	if err != nil {
		return 0, err
	}
	var fd uintptr
	err = raw.Control(func(fdv uintptr) { fd = fdv })
	if err != nil {
		return 0, err
	}
	return fd, nil
}

// ProcessEvents drains every connection currently pending on the listener
// (§4.2's main-selector hook). A zero-ish deadline makes AcceptTCP return
// immediately once the backlog is empty instead of blocking the main loop.
func (h *TCPListenerHooks) ProcessEvents(readyCount int) error {
	for {
		if err := h.ln.SetDeadline(time.Now().Add(time.Millisecond)); err != nil {
			return err
		}
		conn, err := h.ln.AcceptTCP()
		if err != nil {
			if ne, ok := err.(net.Error); ok && ne.Timeout() {
				return nil
			}
			return err
		}
		ch := NewTCPChannel(conn)
		if err := h.reactor.EnqueuePendingSession(ch, nil); err != nil {
			conn.Close()
			h.log.warn("enqueue accepted connection: %v", err)
		}
	}
}

// CancelRequests is a no-op: there is no in-flight accept to cancel beyond
// what Close already handles.
func (h *TCPListenerHooks) CancelRequests() error { return nil }

// Close stops accepting and releases the listening socket. Call once the
// reactor's own Shutdown/ShutdownDefault has returned.
func (h *TCPListenerHooks) Close() error { return h.ln.Close() }
