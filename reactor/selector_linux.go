//go:build linux

// File: reactor/selector_linux.go
// Author: momentics <momentics@gmail.com>
//
// Linux epoll(7) selector with an eventfd(2) wakeup, matching §9's "MPSC
// queue plus a one-shot wakeup primitive (e.g. eventfd / pipe / platform
// wakeup)". Grounded on reactor/reactor_linux.go's EpollCreate1/EpollCtl/
// EpollWait usage via golang.org/x/sys/unix. Unlike the teacher, which
// writes its token starting at Pad, the uint64 token is written starting at
// Fd, so it spans the Fd/Pad fields that together back the epoll_data union
// on amd64's packed epoll_event.

package reactor

import (
	"fmt"
	"time"
	"unsafe"

	"golang.org/x/sys/unix"
)

const maxEpollEvents = 256

type epollSelector struct {
	epfd    int
	wakeFd  int // eventfd used purely for wakeup
	rawBuf  [maxEpollEvents]unix.EpollEvent
}

func newSelector() (selector, error) {
	epfd, err := unix.EpollCreate1(unix.EPOLL_CLOEXEC)
	if err != nil {
		return nil, fmt.Errorf("epoll create: %w", err)
	}
	wakeFd, err := unix.Eventfd(0, unix.EFD_CLOEXEC|unix.EFD_NONBLOCK)
	if err != nil {
		unix.Close(epfd)
		return nil, fmt.Errorf("eventfd create: %w", err)
	}
	s := &epollSelector{epfd: epfd, wakeFd: wakeFd}
	ev := unix.EpollEvent{Events: unix.EPOLLIN}
	setEpollToken(&ev, 0)
	if err := unix.EpollCtl(epfd, unix.EPOLL_CTL_ADD, wakeFd, &ev); err != nil {
		unix.Close(epfd)
		unix.Close(wakeFd)
		return nil, fmt.Errorf("epoll ctl add wakefd: %w", err)
	}
	return s, nil
}

func epollEvents(ops InterestOps) uint32 {
	var ev uint32
	if ops&OpRead != 0 {
		ev |= unix.EPOLLIN
	}
	if ops&OpWrite != 0 {
		ev |= unix.EPOLLOUT
	}
	return ev
}

// setEpollToken packs token into the Fd/Pad pair that together back the
// kernel's 8-byte epoll_data union on a packed, little-endian amd64 layout.
func setEpollToken(ev *unix.EpollEvent, token uint64) {
	*(*uint64)(unsafe.Pointer(&ev.Fd)) = token
}

func epollToken(ev *unix.EpollEvent) uint64 {
	return *(*uint64)(unsafe.Pointer(&ev.Fd))
}

func (s *epollSelector) register(fd uintptr, token uint64, ops InterestOps) error {
	ev := unix.EpollEvent{Events: epollEvents(ops)}
	setEpollToken(&ev, token)
	if err := unix.EpollCtl(s.epfd, unix.EPOLL_CTL_ADD, int(fd), &ev); err != nil {
		return fmt.Errorf("epoll ctl add: %w", err)
	}
	return nil
}

func (s *epollSelector) modify(fd uintptr, token uint64, ops InterestOps) error {
	ev := unix.EpollEvent{Events: epollEvents(ops)}
	setEpollToken(&ev, token)
	if err := unix.EpollCtl(s.epfd, unix.EPOLL_CTL_MOD, int(fd), &ev); err != nil {
		return fmt.Errorf("epoll ctl mod: %w", err)
	}
	return nil
}

func (s *epollSelector) unregister(fd uintptr) error {
	if err := unix.EpollCtl(s.epfd, unix.EPOLL_CTL_DEL, int(fd), nil); err != nil {
		if err == unix.ENOENT || err == unix.EBADF {
			return nil
		}
		return fmt.Errorf("epoll ctl del: %w", err)
	}
	return nil
}

func (s *epollSelector) wait(dst []readyEvent, timeout time.Duration) ([]readyEvent, error) {
	ms := -1
	if timeout > 0 {
		ms = int(timeout / time.Millisecond)
		if ms == 0 {
			ms = 1
		}
	}
	n, err := unix.EpollWait(s.epfd, s.rawBuf[:], ms)
	if err != nil {
		if err == unix.EINTR {
			return dst, nil
		}
		return dst, fmt.Errorf("epoll wait: %w", err)
	}
	for i := 0; i < n; i++ {
		ev := s.rawBuf[i]
		if epollToken(&ev) == 0 {
			s.drainWake()
			continue
		}
		var ops InterestOps
		if ev.Events&unix.EPOLLIN != 0 {
			ops |= OpRead
		}
		if ev.Events&unix.EPOLLOUT != 0 {
			ops |= OpWrite
		}
		if ev.Events&(unix.EPOLLERR|unix.EPOLLHUP) != 0 {
			ops |= OpRead | OpWrite
		}
		dst = append(dst, readyEvent{Token: epollToken(&ev), Ops: ops})
	}
	return dst, nil
}

func (s *epollSelector) drainWake() {
	var buf [8]byte
	for {
		_, err := unix.Read(s.wakeFd, buf[:])
		if err != nil {
			return
		}
	}
}

func (s *epollSelector) wakeup() error {
	var buf [8]byte
	buf[0] = 1
	_, err := unix.Write(s.wakeFd, buf[:])
	if err != nil && err != unix.EAGAIN {
		return fmt.Errorf("eventfd write: %w", err)
	}
	return nil
}

func (s *epollSelector) close() error {
	err1 := unix.Close(s.wakeFd)
	err2 := unix.Close(s.epfd)
	if err1 != nil {
		return err1
	}
	return err2
}
