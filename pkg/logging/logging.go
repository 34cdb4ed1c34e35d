package logging

import (
	"strings"

	"github.com/go-logr/logr"
)

const (
	LEVEL_INFO  = 0
	LEVEL_DEBUG = 1
	LEVEL_TRACE = 2
)

// NewLogger wraps a logr.Logger. A logger without a sink discards everything.
func NewLogger(log logr.Logger) *Logger {
	if log.GetSink() == nil {
		log = logr.Discard()
	}
	return &Logger{log: log}
}

// DefaultLogger returns a Logger that discards all output.
func DefaultLogger() *Logger {
	return &Logger{log: logr.Discard()}
}

// ParseLevel maps a level name ("info", "debug", "trace") to its verbosity. Unknown names map to LEVEL_INFO.
func ParseLevel(name string) int {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "debug":
		return LEVEL_DEBUG
	case "trace":
		return LEVEL_TRACE
	default:
		return LEVEL_INFO
	}
}

// Logger is a struct that wraps the logr.Logger interface.
type Logger struct {
	log logr.Logger
}

// WithName returns a Logger whose messages are prefixed with the component name.
func (l *Logger) WithName(name string) *Logger {
	if l == nil {
		return DefaultLogger().WithName(name)
	}
	return &Logger{log: l.log.WithName(name)}
}

// WithValues returns a Logger that attaches the given key/value pairs to every message.
func (l *Logger) WithValues(keysAndValues ...interface{}) *Logger {
	if l == nil {
		return DefaultLogger()
	}
	return &Logger{log: l.log.WithValues(keysAndValues...)}
}

// Log methods (minimizing footprint in the rest of the library)
func (l *Logger) Debug(msg string, keysAndValues ...interface{}) {
	l.log.V(LEVEL_DEBUG).Info(msg, keysAndValues...)
}

func (l *Logger) Info(msg string, keysAndValues ...interface{}) {
	l.log.Info(msg, keysAndValues...)
}

func (l *Logger) Trace(msg string, keysAndValues ...interface{}) {
	l.log.V(LEVEL_TRACE).Info(msg, keysAndValues...)
}

func (l *Logger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.log.Error(err, msg, keysAndValues...)
}
