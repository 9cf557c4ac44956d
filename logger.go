package main

import (
	"io"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Logger components
const (
	ComponentHTTPServer = "HTTP SERVER"
	ComponentValidator  = "VALIDATOR"
	ComponentStore      = "STORE"
	ComponentBoard      = "BOARD"
)

// Logger tags every line with the component that produced it.
type Logger struct {
	zl zerolog.Logger
}

// NewLogger writes human-readable lines in development and JSON otherwise.
func NewLogger(out io.Writer, development bool) *Logger {
	if development {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}
	}
	return &Logger{zl: zerolog.New(out).With().Timestamp().Logger()}
}

// With returns a child logger carrying key=value on every line.
func (l *Logger) With(key, value string) *Logger {
	return &Logger{zl: l.zl.With().Str(key, value).Logger()}
}

// RequestReceived is the first line logged for every request.
func (l *Logger) RequestReceived(method, path string) {
	l.zl.Info().
		Str("component", ComponentHTTPServer).
		Str("method", strings.ToLower(method)).
		Str("path", path).
		Msg("Request received")
}

// RequestCompleted closes the request with its status and latency.
func (l *Logger) RequestCompleted(status int, latency time.Duration) {
	ev := l.zl.Info()
	if status >= 500 {
		ev = l.zl.Error()
	} else if status >= 400 {
		ev = l.zl.Warn()
	}
	ev.Str("component", ComponentHTTPServer).
		Int("status", status).
		Dur("latency", latency).
		Msgf("Responding with %d", status)
}

// Info logs an info message.
func (l *Logger) Info(component, message string) {
	l.zl.Info().Str("component", component).Msg(message)
}

// Warning logs a warning message.
func (l *Logger) Warning(component, message string) {
	l.zl.Warn().Str("component", component).Msg(message)
}

// Error logs an error message.
func (l *Logger) Error(component, message string) {
	l.zl.Error().Str("component", component).Msg(message)
}

// Success logs a success message.
func (l *Logger) Success(component, message string) {
	l.zl.Info().Str("component", component).Bool("success", true).Msg(message)
}

// Violation emits the final line of a rejected request.
func (l *Logger) Violation(message string) {
	l.Error(ComponentValidator, "Violation: request "+message)
}
