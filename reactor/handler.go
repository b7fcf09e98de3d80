// File: reactor/handler.go
// Author: momentics <momentics@gmail.com>
//
// EventHandler / EventHandlerFactory are the external collaborator contract
// from §1/§6: the protocol layer that interprets bytes on a ready session
// lives entirely behind these interfaces. Shape grounded on api/handler.go's
// single-method Handler, expanded to the six hooks §6 actually specifies.

package reactor

// EventHandler is implemented by callers to interpret bytes on a ready
// IOSession. Exactly one Disconnected call is delivered per session (§8).
type EventHandler interface {
	// Connected fires once, after the session's channel is registered with
	// its worker's selector, its handler is created, Config's socket options
	// are applied and any SessionRequest is completed. session.Timeout()
	// already reads Config.SoTimeout here (it is set when the session is
	// created, before CreateHandler runs); SetTimeout overrides it.
	Connected(session *IOSession)

	// InputReady fires when the session's channel has bytes available to read.
	InputReady(session *IOSession)

	// OutputReady fires when the selector reports the channel writable and
	// the session's InterestOps include OpWrite. Channels are registered for
	// OpRead only, so the epoll selector reports write readiness only
	// together with an error or hang-up condition.
	OutputReady(session *IOSession)

	// Timeout fires when the worker's validate pass observes
	// now - lastAccessTime > session.Timeout(). The handler decides
	// whether to close the session or let it continue.
	Timeout(session *IOSession)

	// Exception fires when one of this session's callbacks panics (err
	// wraps the panic value) and no ExceptionHandler claims the error; the
	// session is closed immediately afterward. Read/write errors are not
	// routed here: the handler sees them from Channel.Read/Write itself.
	Exception(session *IOSession, err error)

	// Disconnected fires exactly once per session, after it has been
	// drained from the closedSessions queue.
	Disconnected(session *IOSession)
}

// EventHandlerFactory creates one EventHandler per newly intaken session.
type EventHandlerFactory interface {
	CreateHandler(session *IOSession) (EventHandler, error)
}

// EventHandlerFactoryFunc adapts a plain function to EventHandlerFactory.
type EventHandlerFactoryFunc func(session *IOSession) (EventHandler, error)

func (f EventHandlerFactoryFunc) CreateHandler(session *IOSession) (EventHandler, error) {
	return f(session)
}
