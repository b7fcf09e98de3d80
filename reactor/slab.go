// File: reactor/slab.go
// Author: momentics <momentics@gmail.com>
//
// sessionSlab is the dense, token-indexed session store §9 calls for, in
// place of selection-key attachments: "store sessions in a dense slab
// indexed by a token (arena + index); register the token as the selector's
// user-data. This avoids the pointer-identity / pinning trap and makes
// lifetime explicit." Only the owning worker ever touches the slab
// (confinement invariant, §5), so no locking is needed on the hot path;
// a mutex guards it only because Close callbacks and Disconnected fan-out
// can, in principle, run from a different goroutine than the one holding
// the iteration in progress.
//
// Token 0 is reserved for the selector's own wakeup registration (see
// selector_linux.go); real sessions are allocated starting at 1.

package reactor

import "sync"

type sessionSlab struct {
	mu    sync.Mutex
	slots []*IOSession
	free  []uint64
}

func newSessionSlab() *sessionSlab {
	return &sessionSlab{slots: make([]*IOSession, 1)} // index 0 reserved
}

// alloc reserves a token for sess and stores it, returning the token.
func (s *sessionSlab) alloc(sess *IOSession) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if n := len(s.free); n > 0 {
		tok := s.free[n-1]
		s.free = s.free[:n-1]
		s.slots[tok] = sess
		return tok
	}
	tok := uint64(len(s.slots))
	s.slots = append(s.slots, sess)
	return tok
}

// get retrieves the session at token, if still allocated.
func (s *sessionSlab) get(token uint64) (*IOSession, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if token == 0 || token >= uint64(len(s.slots)) {
		return nil, false
	}
	sess := s.slots[token]
	return sess, sess != nil
}

// release returns token to the free list.
func (s *sessionSlab) release(token uint64) {
	if token == 0 {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if token >= uint64(len(s.slots)) || s.slots[token] == nil {
		return
	}
	s.slots[token] = nil
	s.free = append(s.free, token)
}

// snapshot returns every currently allocated session, for validate/shutdown
// passes that must iterate the whole live set.
func (s *sessionSlab) snapshot() []*IOSession {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*IOSession, 0, len(s.slots))
	for _, sess := range s.slots {
		if sess != nil {
			out = append(out, sess)
		}
	}
	return out
}
