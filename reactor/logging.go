// File: reactor/logging.go
// Author: momentics <momentics@gmail.com>
//
// reactorLogger adapts internal/logging's zerolog.Logger to the small
// call shape BaseReactor/MultiWorkerReactor actually use, keeping zerolog
// itself out of the package's exported surface.

package reactor

import (
	"github.com/rs/zerolog"

	"github.com/momentics/ioreactor/internal/logging"
)

type reactorLogger struct {
	z zerolog.Logger
}

func newReactorLogger(component string) *reactorLogger {
	return &reactorLogger{z: logging.New(component, nil)}
}

func (l *reactorLogger) debugf(format string, args ...any) {
	l.z.Debug().Msgf(format, args...)
}

func (l *reactorLogger) info(format string, args ...any) {
	l.z.Info().Msgf(format, args...)
}

func (l *reactorLogger) warn(format string, args ...any) {
	l.z.Warn().Msgf(format, args...)
}

func (l *reactorLogger) errorf(err error, format string, args ...any) {
	l.z.Error().Err(err).Msgf(format, args...)
}
