// Package logging provides the zerolog-backed renku.Logger.
package logging

import (
	"io"
	"os"

	"github.com/rs/zerolog"
)

// Logger implements renku.Logger on top of zerolog.
type Logger struct {
	logger zerolog.Logger
}

// New returns a JSON logger writing to w at the given level. An unknown
// level falls back to info.
func New(w io.Writer, level string) *Logger {
	return Wrap(zerolog.New(w).Level(parseLevel(level)).With().Timestamp().Logger())
}

// NewConsole returns a human readable logger on stderr, for the CLI.
func NewConsole(level string) *Logger {
	writer := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "15:04:05"}

	return New(writer, level)
}

// Wrap adapts an existing zerolog logger.
func Wrap(logger zerolog.Logger) *Logger {
	return &Logger{logger: logger}
}

// Zerolog returns the underlying logger.
func (l *Logger) Zerolog() zerolog.Logger {
	return l.logger
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

func parseLevel(level string) zerolog.Level {
	parsed, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		return zerolog.InfoLevel
	}

	return parsed
}
