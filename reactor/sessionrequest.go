// File: reactor/sessionrequest.go
// Author: momentics <momentics@gmail.com>
//
// SessionRequest is the future-like handle for an outbound connect (§3/§6):
// the connector layer creates one, hands it to enqueuePendingSession
// alongside the dialed channel, and the owning worker signals exactly one
// of completed/failed/cancelled during intake. Outcome shape grounded on
// control/config.go's one-shot snapshot-publish idiom, applied here to a
// tri-state result instead of a config value.

package reactor

import "sync"

// SessionOutcome names which terminal state a SessionRequest reached.
type SessionOutcome int32

const (
	OutcomePending SessionOutcome = iota
	OutcomeCompleted
	OutcomeFailed
	OutcomeCancelled
)

// SessionRequest represents one outbound connect attempt. Exactly one of
// Complete/Fail/Cancel may succeed; later calls are no-ops.
type SessionRequest struct {
	Endpoint   string
	Attachment any

	mu       sync.Mutex
	outcome  SessionOutcome
	session  *IOSession
	err      error
	waitCh   chan struct{}
	resolved bool
}

// NewSessionRequest creates a pending request for the given target endpoint.
func NewSessionRequest(endpoint string, attachment any) *SessionRequest {
	return &SessionRequest{
		Endpoint:   endpoint,
		Attachment: attachment,
		waitCh:     make(chan struct{}),
	}
}

func (r *SessionRequest) resolve(outcome SessionOutcome, session *IOSession, err error) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.resolved {
		return false
	}
	r.resolved = true
	r.outcome = outcome
	r.session = session
	r.err = err
	close(r.waitCh)
	return true
}

// Complete signals a successful registration, propagating the session.
func (r *SessionRequest) Complete(session *IOSession) bool {
	return r.resolve(OutcomeCompleted, session, nil)
}

// Fail signals the request failed (e.g. registration saw a closed channel).
func (r *SessionRequest) Fail(err error) bool {
	return r.resolve(OutcomeFailed, nil, err)
}

// Cancel signals the request was cancelled before registration completed
// (e.g. the reactor is shutting down and will never drain it).
func (r *SessionRequest) Cancel() bool {
	return r.resolve(OutcomeCancelled, nil, nil)
}

// Outcome returns the current terminal state (or OutcomePending).
func (r *SessionRequest) Outcome() SessionOutcome {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.outcome
}

// Session returns the completed session, or nil if not completed.
func (r *SessionRequest) Session() *IOSession {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.session
}

// Err returns the failure cause, or nil if not failed.
func (r *SessionRequest) Err() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.err
}

// Wait blocks until the request is resolved.
func (r *SessionRequest) Wait() {
	<-r.waitCh
}

// Done returns a channel closed once the request resolves.
func (r *SessionRequest) Done() <-chan struct{} {
	return r.waitCh
}
