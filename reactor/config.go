// File: reactor/config.go
// Author: momentics <momentics@gmail.com>
//
// Config enumerates the reactor-level options from §6. Shape grounded on
// the teacher's lowlevel/server Config + functional-options pattern
// (server/options.go), generalized from WebSocket-server knobs to the
// socket/loop knobs §6 actually names.

package reactor

import "time"

// Config holds the tunables an IOReactor is constructed with.
type Config struct {
	// IOThreadCount is the number of BaseReactor workers (ioThreadCount, §6). Must be >= 1.
	IOThreadCount int

	// SelectInterval bounds how long a worker's selector.Wait blocks per tick.
	SelectInterval time.Duration

	// ShutdownGracePeriod bounds how long gracefulShutdown waits for a
	// worker to reach ShutDown before hardShutdown is forced.
	ShutdownGracePeriod time.Duration

	// SoTimeout is the per-session idle timeout; 0 means infinite.
	SoTimeout time.Duration

	TCPNoDelay bool
	SoKeepAlive bool

	// SoLinger: negative means "don't set"; >= 0 enables linger with that value (seconds).
	SoLinger int

	// SndBufSize / RcvBufSize: 0 means "don't set".
	SndBufSize int
	RcvBufSize int

	// WorkerCPUPinning, when non-empty, assigns worker i to CPU
	// WorkerCPUPinning[i % len(WorkerCPUPinning)] via the configured Spawner.
	WorkerCPUPinning []int
}

// DefaultConfig returns sane defaults: one worker per logical CPU, a 1s
// select interval, a 2s shutdown grace period, no socket timeout.
func DefaultConfig(numCPU int) *Config {
	if numCPU < 1 {
		numCPU = 1
	}
	return &Config{
		IOThreadCount:       numCPU,
		SelectInterval:      time.Second,
		ShutdownGracePeriod: 2 * time.Second,
		SoTimeout:           0,
		TCPNoDelay:          true,
		SoKeepAlive:         true,
		SoLinger:            -1,
		SndBufSize:          0,
		RcvBufSize:          0,
	}
}

// normalized returns a copy of cfg with invalid values clamped to the
// smallest value the reactor can safely run with.
func (c *Config) normalized() *Config {
	out := *c
	if out.IOThreadCount < 1 {
		out.IOThreadCount = 1
	}
	if out.SelectInterval <= 0 {
		out.SelectInterval = time.Second
	}
	if out.ShutdownGracePeriod < 0 {
		out.ShutdownGracePeriod = 0
	}
	if out.SoTimeout < 0 {
		out.SoTimeout = 0
	}
	return &out
}

// DefaultShutdownWaitMs is the default wait passed by Shutdown() (§4.2).
const DefaultShutdownWaitMs int64 = 2000
