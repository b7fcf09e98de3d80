// File: reactor/pending.go
// Author: momentics <momentics@gmail.com>
//
// pendingQueue is the MPSC hand-off described in §3/§5/§9: many goroutines
// (MultiWorkerReactor.enqueuePendingSession, a listener hook) push; only the
// owning worker's loop pops. The lock-free fast path is this package's own
// lockFreeQueue (queue.go); when it is momentarily full (the producer
// briefly outruns the single consumer), entries spill into a mutex-guarded
// github.com/eapache/queue.Queue overflow so enqueue itself never blocks or
// fails, matching §4.1's "never blocks longer than the selector's wakeup
// latency".

package reactor

import (
	"sync"

	"github.com/eapache/queue"
)

// pendingEntry is one (channel, optional session-request) tuple (§3).
type pendingEntry struct {
	channel Channel
	request *SessionRequest
}

const pendingFastPathCapacity = 1024

type pendingQueue struct {
	fast *lockFreeQueue[pendingEntry]

	mu       sync.Mutex
	overflow *queue.Queue
}

func newPendingQueue() *pendingQueue {
	return &pendingQueue{
		fast:     newLockFreeQueue[pendingEntry](pendingFastPathCapacity),
		overflow: queue.New(),
	}
}

// push enqueues a (channel, request) pair. Never blocks.
func (q *pendingQueue) push(ch Channel, req *SessionRequest) {
	entry := pendingEntry{channel: ch, request: req}
	if q.fast.Enqueue(entry) {
		return
	}
	q.mu.Lock()
	q.overflow.Add(entry)
	q.mu.Unlock()
}

// drain removes and returns every pending entry currently queued, fast-path
// entries first, then any overflow accumulated while the fast path was full.
func (q *pendingQueue) drain() []pendingEntry {
	var out []pendingEntry
	for {
		v, ok := q.fast.Dequeue()
		if !ok {
			break
		}
		out = append(out, v)
	}
	q.mu.Lock()
	for q.overflow.Length() > 0 {
		out = append(out, q.overflow.Remove().(pendingEntry))
	}
	q.mu.Unlock()
	return out
}

// cancelAll drains every pending entry and cancels its session request (if
// any) and closes its channel, used during shutdown (§4.1 step 3, §4.2
// doShutdown step 2).
func (q *pendingQueue) cancelAll(audit *AuditLog) {
	for _, e := range q.drain() {
		if e.request != nil {
			e.request.Cancel()
		}
		if e.channel != nil {
			audit.Record(e.channel.Close())
		}
	}
}
