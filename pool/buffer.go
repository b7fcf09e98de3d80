// File: pool/buffer.go
// Author: momentics <momentics@gmail.com>
//
// Buffer is a NUMA-aware scratch buffer an EventHandler can borrow for its
// Channel reads and writes; it replaces the teacher's protocol-specific
// zero-copy WS frame buffer with a plain scratch allocation of the size
// passed to BufferPoolManager.Get, released back to its owning pool once the
// caller is done with it. The reactor package itself does not use it.

package pool

import "sync/atomic"

// Buffer is a pooled byte slice with a NUMA home node.
type Buffer struct {
	data     []byte
	pool     *NUMAPool
	node     int
	released atomic.Bool
}

// Bytes returns the underlying slice, sized to the pool's buffer size.
func (b *Buffer) Bytes() []byte { return b.data }

// NUMANode reports which node this buffer was allocated on (-1 if unknown/system default).
func (b *Buffer) NUMANode() int { return b.node }

// Release returns the buffer to its pool. Idempotent: a second call is a no-op.
func (b *Buffer) Release() {
	if !b.released.CompareAndSwap(false, true) {
		return
	}
	b.pool.Put(b.data)
}

// BufferPoolStats describes one live pool: its NUMA node and buffer size.
type BufferPoolStats struct {
	NUMANode   int
	BufferSize int
}
