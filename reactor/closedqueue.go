// File: reactor/closedqueue.go
// Author: momentics <momentics@gmail.com>
//
// closedQueue is the "closedSessions" queue from §4.1 step 6 / §4.4: any
// goroutine may close a session, but only the owning worker drains the
// queue and dispatches Disconnected. Same MPSC shape as pendingQueue (fast
// lock-free ring, mutex-guarded eapache/queue overflow), carrying tokens
// rather than channels per §9's no-cycles guidance.

package reactor

import (
	"sync"

	"github.com/eapache/queue"
)

const closedFastPathCapacity = 1024

type closedQueue struct {
	fast *lockFreeQueue[uint64]

	mu       sync.Mutex
	overflow *queue.Queue
}

func newClosedQueue() *closedQueue {
	return &closedQueue{
		fast:     newLockFreeQueue[uint64](closedFastPathCapacity),
		overflow: queue.New(),
	}
}

func (q *closedQueue) push(token uint64) {
	if q.fast.Enqueue(token) {
		return
	}
	q.mu.Lock()
	q.overflow.Add(token)
	q.mu.Unlock()
}

func (q *closedQueue) drain() []uint64 {
	var out []uint64
	for {
		v, ok := q.fast.Dequeue()
		if !ok {
			break
		}
		out = append(out, v)
	}
	q.mu.Lock()
	for q.overflow.Length() > 0 {
		out = append(out, q.overflow.Remove().(uint64))
	}
	q.mu.Unlock()
	return out
}
