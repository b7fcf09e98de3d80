// File: reactor/slab_test.go
// Author: momentics <momentics@gmail.com>

package reactor

import "testing"

func TestSessionSlabReservesTokenZero(t *testing.T) {
	s := newSessionSlab()
	if _, ok := s.get(0); ok {
		t.Fatal("token 0 must stay reserved for the selector's own wakeup registration")
	}
}

func TestSessionSlabAllocGetRelease(t *testing.T) {
	s := newSessionSlab()
	sess := &IOSession{}
	token := s.alloc(sess)
	if token == 0 {
		t.Fatal("alloc must never hand out the reserved token 0")
	}
	got, ok := s.get(token)
	if !ok || got != sess {
		t.Fatalf("get(%d) = (%v, %v), want (%v, true)", token, got, ok, sess)
	}
	s.release(token)
	if _, ok := s.get(token); ok {
		t.Fatalf("get(%d) still ok after release", token)
	}
}

func TestSessionSlabReusesReleasedSlots(t *testing.T) {
	s := newSessionSlab()
	a := s.alloc(&IOSession{})
	s.release(a)
	b := s.alloc(&IOSession{})
	if b != a {
		t.Fatalf("expected slot reuse, got token %d after releasing %d", b, a)
	}
}

func TestSessionSlabSnapshot(t *testing.T) {
	s := newSessionSlab()
	want := []*IOSession{{}, {}, {}}
	for _, sess := range want {
		s.alloc(sess)
	}
	got := s.snapshot()
	if len(got) != len(want) {
		t.Fatalf("snapshot has %d sessions, want %d", len(got), len(want))
	}
}

func TestPendingQueuePushDrain(t *testing.T) {
	q := newPendingQueue()
	ch := &TCPChannel{}
	req := NewSessionRequest("127.0.0.1:0", nil)
	q.push(ch, req)

	entries := q.drain()
	if len(entries) != 1 {
		t.Fatalf("drain returned %d entries, want 1", len(entries))
	}
	if entries[0].channel != ch || entries[0].request != req {
		t.Fatal("drained entry does not match what was pushed")
	}
	if more := q.drain(); len(more) != 0 {
		t.Fatalf("second drain returned %d entries, want 0", len(more))
	}
}

func TestClosedQueuePushDrain(t *testing.T) {
	q := newClosedQueue()
	q.push(42)
	q.push(7)

	tokens := q.drain()
	if len(tokens) != 2 {
		t.Fatalf("drain returned %d tokens, want 2", len(tokens))
	}
}

func TestSessionRequestResolvesOnce(t *testing.T) {
	req := NewSessionRequest("127.0.0.1:0", "attachment")
	sess := &IOSession{}

	if !req.Complete(sess) {
		t.Fatal("first Complete call should succeed")
	}
	if req.Complete(sess) {
		t.Fatal("second Complete call should be a no-op")
	}
	if req.Fail(errTest) {
		t.Fatal("Fail after Complete should be a no-op")
	}
	if req.Outcome() != OutcomeCompleted {
		t.Fatalf("Outcome() = %v, want OutcomeCompleted", req.Outcome())
	}
	if got := req.Session(); got != sess {
		t.Fatal("Session() does not match the completed session")
	}
	select {
	case <-req.Done():
	default:
		t.Fatal("Done() channel should be closed after resolution")
	}
}

func TestSessionRequestCancel(t *testing.T) {
	req := NewSessionRequest("127.0.0.1:0", nil)
	if !req.Cancel() {
		t.Fatal("Cancel should succeed on a fresh request")
	}
	if req.Outcome() != OutcomeCancelled {
		t.Fatalf("Outcome() = %v, want OutcomeCancelled", req.Outcome())
	}
}

var errTest = &IOReactorError{Op: "test", Cause: nil}
