// File: reactor/queue_test.go
// Author: momentics <momentics@gmail.com>

package reactor

import (
	"sync"
	"testing"
)

func TestLockFreeQueueEnqueueDequeueOrder(t *testing.T) {
	q := newLockFreeQueue[int](4)
	for i := 0; i < 4; i++ {
		if !q.Enqueue(i) {
			t.Fatalf("Enqueue(%d) failed, queue should not be full yet", i)
		}
	}
	if q.Enqueue(99) {
		t.Fatal("Enqueue into a full ring should fail")
	}
	for i := 0; i < 4; i++ {
		v, ok := q.Dequeue()
		if !ok || v != i {
			t.Fatalf("Dequeue() = (%d, %v), want (%d, true)", v, ok, i)
		}
	}
	if _, ok := q.Dequeue(); ok {
		t.Fatal("Dequeue on an empty ring should report ok=false")
	}
}

func TestLockFreeQueueMPMC(t *testing.T) {
	const producers = 10
	const perProducer = 10000
	q := newLockFreeQueue[int](1024)

	var wg sync.WaitGroup
	wg.Add(producers)
	for p := 0; p < producers; p++ {
		go func() {
			defer wg.Done()
			for i := 0; i < perProducer; i++ {
				for !q.Enqueue(1) {
					// overflow is the caller's responsibility in production;
					// the test just spins until the consumer catches up.
				}
			}
		}()
	}

	var consumed int
	var consumeWg sync.WaitGroup
	consumeWg.Add(1)
	go func() {
		defer consumeWg.Done()
		want := producers * perProducer
		for consumed < want {
			if _, ok := q.Dequeue(); ok {
				consumed++
			}
		}
	}()

	wg.Wait()
	consumeWg.Wait()

	if consumed != producers*perProducer {
		t.Fatalf("consumed %d items, want %d", consumed, producers*perProducer)
	}
}
