// Copyright (c) 2025
// Author: momentics <momentics@gmail.com>

// Package reactor implements a multi-worker, non-blocking I/O reactor: a
// readiness-driven event loop that accepts newly connected channels,
// distributes them round-robin across a fixed pool of worker reactors, and
// runs a select-dispatch-timeout cycle per worker. It owns the three-phase
// lifecycle (active, graceful shutdown, hard shutdown) and an audit trail of
// the errors encountered along the way.
//
// The package carries no protocol knowledge: it hands ready bytes to an
// EventHandler supplied by the caller and otherwise only moves channels,
// sessions, and status around.
package reactor
