//go:build windows

// File: reactor/selector_windows.go
// Author: momentics <momentics@gmail.com>
//
// Windows I/O Completion Port selector. Grounded on reactor/reactor_windows.go
// and reactor/iocp_reactor.go's CreateIoCompletionPort/GetQueuedCompletionStatus
// usage via golang.org/x/sys/windows.
//
// IOCP is completion-based, not readiness-based: once a handle is associated
// with a port, the only way to learn it is "ready" in the epoll sense is to
// have already issued an overlapped operation on it. Since Channel exposes
// synchronous Read/Write (net.TCPConn, itself backed by IOCP inside the Go
// runtime), this selector cannot deliver true edge-triggered readiness the
// way epollSelector does; it is kept faithful to the teacher's association +
// wait shape and used as the wakeup/timeout backbone. Each wait dequeues at
// most one completion packet and reports its token as OpRead|OpWrite ready;
// a token is reported only when a completion for its handle is dequeued, and
// tokens are not re-armed between waits.
package reactor

import (
	"fmt"
	"time"

	"golang.org/x/sys/windows"
)

const wakeupKey = 0

type iocpSelector struct {
	port windows.Handle
}

func newSelector() (selector, error) {
	port, err := windows.CreateIoCompletionPort(windows.InvalidHandle, 0, 0, 0)
	if err != nil {
		return nil, fmt.Errorf("create iocp: %w", err)
	}
	return &iocpSelector{port: port}, nil
}

func (s *iocpSelector) register(fd uintptr, token uint64, ops InterestOps) error {
	_, err := windows.CreateIoCompletionPort(windows.Handle(fd), s.port, uintptr(token), 0)
	if err != nil {
		return fmt.Errorf("associate handle: %w", err)
	}
	return nil
}

// modify is a no-op: IOCP association is permanent once made, there is no
// separate interest-set to update.
func (s *iocpSelector) modify(fd uintptr, token uint64, ops InterestOps) error {
	return nil
}

// unregister is a no-op: Windows offers no API to disassociate a handle from
// a completion port short of closing the handle, which the session does
// itself via Channel.Close.
func (s *iocpSelector) unregister(fd uintptr) error {
	return nil
}

func (s *iocpSelector) wait(dst []readyEvent, timeout time.Duration) ([]readyEvent, error) {
	ms := uint32(windows.INFINITE)
	if timeout > 0 {
		ms = uint32(timeout / time.Millisecond)
	}
	var bytes uint32
	var key uintptr
	var overlapped *windows.Overlapped
	err := windows.GetQueuedCompletionStatus(s.port, &bytes, &key, &overlapped, ms)
	if err != nil {
		if err == windows.WAIT_TIMEOUT {
			return dst, nil
		}
		return dst, fmt.Errorf("get queued completion status: %w", err)
	}
	if key == wakeupKey {
		return dst, nil
	}
	dst = append(dst, readyEvent{Token: uint64(key), Ops: OpRead | OpWrite})
	return dst, nil
}

func (s *iocpSelector) wakeup() error {
	if err := windows.PostQueuedCompletionStatus(s.port, 0, wakeupKey, nil); err != nil {
		return fmt.Errorf("post queued completion status: %w", err)
	}
	return nil
}

func (s *iocpSelector) close() error {
	return windows.CloseHandle(s.port)
}
