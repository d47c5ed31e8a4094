package logger

import corelogger "github.com/kilianp07/rideslots/core/logger"

// Logger mirrors the core logger interface.
type Logger = corelogger.Logger

// NopLogger discards everything.
type NopLogger struct{}

func (NopLogger) Debugf(string, ...any)         {}
func (NopLogger) Debugw(string, map[string]any) {}
func (NopLogger) Infof(string, ...any)          {}
func (NopLogger) Infow(string, map[string]any)  {}
func (NopLogger) Warnf(string, ...any)          {}
func (NopLogger) Errorf(string, ...any)         {}

// New returns a Logger tagged with component. APP_ENV=dev selects a human
// readable console output, LOG_LEVEL (debug, info, warn, error) the minimum
// level.
func New(component string) Logger {
	return NewZerologLogger(component)
}
