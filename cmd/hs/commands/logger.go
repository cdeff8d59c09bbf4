package commands

import (
	"io"

	"github.com/fivetwenty-io/hsclient/pkg/hs"
	"github.com/rs/zerolog"
)

// zerologLogger adapts a zerolog.Logger to hs.Logger.
type zerologLogger struct {
	logger zerolog.Logger
}

// newLogger returns a console logger on out. Verbose lowers the level to
// debug; otherwise only warnings and errors are shown.
func newLogger(out io.Writer, verbose bool) hs.Logger {
	level := zerolog.WarnLevel
	if verbose {
		level = zerolog.DebugLevel
	}

	logger := zerolog.New(zerolog.ConsoleWriter{Out: out}).
		Level(level).
		With().
		Timestamp().
		Str("component", "hs").
		Logger()

	return &zerologLogger{logger: logger}
}

func (l *zerologLogger) Debug(msg string, fields map[string]interface{}) {
	l.logger.Debug().Fields(fields).Msg(msg)
}

func (l *zerologLogger) Info(msg string, fields map[string]interface{}) {
	l.logger.Info().Fields(fields).Msg(msg)
}

func (l *zerologLogger) Warn(msg string, fields map[string]interface{}) {
	l.logger.Warn().Fields(fields).Msg(msg)
}

func (l *zerologLogger) Error(msg string, fields map[string]interface{}) {
	l.logger.Error().Fields(fields).Msg(msg)
}
