//go:build !linux && !windows

// File: reactor/selector_stub.go
// Author: momentics <momentics@gmail.com>
//
// Stub selector for platforms with no epoll/IOCP backend. Grounded on
// reactor/reactor_stub.go's unsupported-platform factory.

package reactor

import (
	"errors"
	"time"
)

var errSelectorUnsupported = errors.New("reactor: this platform has no selector backend")

type stubSelector struct{}

func newSelector() (selector, error) {
	return nil, errSelectorUnsupported
}

func (s *stubSelector) register(fd uintptr, token uint64, ops InterestOps) error {
	return errSelectorUnsupported
}

func (s *stubSelector) modify(fd uintptr, token uint64, ops InterestOps) error {
	return errSelectorUnsupported
}

func (s *stubSelector) unregister(fd uintptr) error {
	return errSelectorUnsupported
}

func (s *stubSelector) wait(dst []readyEvent, timeout time.Duration) ([]readyEvent, error) {
	return dst, errSelectorUnsupported
}

func (s *stubSelector) wakeup() error {
	return errSelectorUnsupported
}

func (s *stubSelector) close() error {
	return errSelectorUnsupported
}
