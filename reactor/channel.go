// File: reactor/channel.go
// Author: momentics <momentics@gmail.com>
//
// Channel abstracts the underlying socket a session is bound to: enough to
// read/write it and to hand its raw descriptor to a Selector. Grounded on
// api/interfaces.go's NetConn sketch, narrowed to what the reactor actually
// needs and widened with the raw-fd accessor every Selector backend requires.

package reactor

import (
	"fmt"
	"net"
)

// Channel is the minimal socket surface the reactor operates on.
type Channel interface {
	Read(p []byte) (int, error)
	Write(p []byte) (int, error)
	Close() error

	// Fd returns the raw OS descriptor used to register this channel with
	// a Selector. Channels that cannot expose one (e.g. in tests) may
	// return an error; such channels can still be driven directly by a
	// caller but cannot be registered with an epoll/IOCP Selector.
	Fd() (uintptr, error)
}

// TCPChannel wraps *net.TCPConn, exposing its raw descriptor for selector
// registration and applying the socket options named in Config (§6).
// Raw-fd extraction follows the SyscallConn idiom used throughout the pack
// (e.g. xtaci-kcptun's generic/rawcopy_unix.go).
type TCPChannel struct {
	conn *net.TCPConn
}

// NewTCPChannel wraps an already-accepted or already-connected *net.TCPConn.
func NewTCPChannel(conn *net.TCPConn) *TCPChannel {
	return &TCPChannel{conn: conn}
}

func (c *TCPChannel) Read(p []byte) (int, error)  { return c.conn.Read(p) }
func (c *TCPChannel) Write(p []byte) (int, error) { return c.conn.Write(p) }
func (c *TCPChannel) Close() error                { return c.conn.Close() }

func (c *TCPChannel) Fd() (uintptr, error) {
	raw, err := c.conn.SyscallConn()
	if err != nil {
		return 0, fmt.Errorf("tcp channel: syscall conn: %w", err)
	}
	var fd uintptr
	var ctrlErr error
	err = raw.Control(func(fdv uintptr) { fd = fdv })
	if err != nil {
		return 0, fmt.Errorf("tcp channel: control: %w", err)
	}
	if ctrlErr != nil {
		return 0, ctrlErr
	}
	return fd, nil
}

// ApplySocketOptions applies §6's socket option knobs. Called by BaseReactor
// during intake, after the session is registered and its handler created,
// and before the Connected hook fires.
func (c *TCPChannel) ApplySocketOptions(cfg *Config) error {
	if err := c.conn.SetNoDelay(cfg.TCPNoDelay); err != nil {
		return fmt.Errorf("set no delay: %w", err)
	}
	if err := c.conn.SetKeepAlive(cfg.SoKeepAlive); err != nil {
		return fmt.Errorf("set keepalive: %w", err)
	}
	if cfg.SoLinger >= 0 {
		if err := c.conn.SetLinger(cfg.SoLinger); err != nil {
			return fmt.Errorf("set linger: %w", err)
		}
	}
	if cfg.SndBufSize > 0 {
		if err := c.conn.SetWriteBuffer(cfg.SndBufSize); err != nil {
			return fmt.Errorf("set write buffer: %w", err)
		}
	}
	if cfg.RcvBufSize > 0 {
		if err := c.conn.SetReadBuffer(cfg.RcvBufSize); err != nil {
			return fmt.Errorf("set read buffer: %w", err)
		}
	}
	return nil
}
