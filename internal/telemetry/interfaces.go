// Package telemetry declares the logging and metrics capabilities editor
// components require, so they never depend on a concrete backend.
package telemetry

import "log"

// Logger exposes the logging capabilities required by editor components.
type Logger interface {
	Printf(format string, args ...any)
}

// LoggerFunc adapts functions into the Logger interface.
type LoggerFunc func(format string, args ...any)

// Printf implements Logger for LoggerFunc.
func (f LoggerFunc) Printf(format string, args ...any) {
	if f == nil {
		return
	}
	f(format, args...)
}

// WrapLogger adapts a standard library logger to the Logger interface.
func WrapLogger(logger *log.Logger) Logger {
	return &loggerAdapter{logger: logger}
}

type loggerAdapter struct {
	logger *log.Logger
}

func (l *loggerAdapter) Printf(format string, args ...any) {
	if l == nil || l.logger == nil {
		return
	}
	l.logger.Printf(format, args...)
}

// Metrics receives the editor's domain counters. The observability package
// provides the Prometheus-backed implementation; tests use Nop or a recorder.
type Metrics interface {
	SessionOpened()
	SessionClosed(reason string)
	ModifierApplied()
	ModifierRejected(reason string)
	ValidationFailure()
	ConfigReload(success bool)
}

// NopMetrics discards every observation.
type NopMetrics struct{}

func (NopMetrics) SessionOpened()          {}
func (NopMetrics) SessionClosed(string)    {}
func (NopMetrics) ModifierApplied()        {}
func (NopMetrics) ModifierRejected(string) {}
func (NopMetrics) ValidationFailure()      {}
func (NopMetrics) ConfigReload(bool)       {}
