package commands

import (
	"io"

	"github.com/rs/zerolog"
)

// Logger adapts zerolog to directus.Logger.
type Logger struct {
	logger zerolog.Logger
}

// NewLogger writes human-readable log lines to out. Debug lines are dropped
// unless verbose is set.
func NewLogger(out io.Writer, verbose bool) *Logger {
	level := zerolog.InfoLevel
	if verbose {
		level = zerolog.DebugLevel
	}

	logger := zerolog.New(zerolog.ConsoleWriter{Out: out, NoColor: true}).
		Level(level).
		With().
		Timestamp().
		Logger()

	return &Logger{logger: logger}
}

// Debug logs at debug level.
func (l *Logger) Debug(msg string, fields map[string]interface{}) {
	l.logger.Debug().Fields(fields).Msg(msg)
}

// Info logs at info level.
func (l *Logger) Info(msg string, fields map[string]interface{}) {
	l.logger.Info().Fields(fields).Msg(msg)
}

// Warn logs at warn level.
func (l *Logger) Warn(msg string, fields map[string]interface{}) {
	l.logger.Warn().Fields(fields).Msg(msg)
}

// Error logs at error level.
func (l *Logger) Error(msg string, fields map[string]interface{}) {
	l.logger.Error().Fields(fields).Msg(msg)
}
