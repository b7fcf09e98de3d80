// File: internal/logging/logging.go
// Author: momentics <momentics@gmail.com>
//
// Package logging is the reactor's structured-logging seam, a thin wrapper
// over github.com/rs/zerolog. Kept internal since log field names and the
// default writer are this repo's own convention, not a public contract.

package logging

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// New builds a component-scoped logger writing structured JSON to out
// (os.Stderr if nil). component is attached to every event as "component".
func New(component string, out io.Writer) zerolog.Logger {
	if out == nil {
		out = os.Stderr
	}
	return zerolog.New(out).With().
		Timestamp().
		Str("component", component).
		Logger()
}

// NewConsole builds a component-scoped logger with zerolog's human-readable
// console writer, for local development and tests.
func NewConsole(component string, out io.Writer) zerolog.Logger {
	if out == nil {
		out = os.Stderr
	}
	cw := zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}
	return zerolog.New(cw).With().
		Timestamp().
		Str("component", component).
		Logger()
}

func init() {
	zerolog.TimeFieldFormat = time.RFC3339Nano
}
