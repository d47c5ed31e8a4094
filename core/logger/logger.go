// Package logger declares the logging contract shared by the analytics
// packages. Adapters live in infra/logger.
package logger

// Logger exposes leveled, printf style logging plus structured variants.
type Logger interface {
	Debugf(format string, args ...any)
	// Debugw logs a message with structured fields.
	Debugw(msg string, fields map[string]any)
	Infof(format string, args ...any)
	// Infow logs a message with structured fields.
	Infow(msg string, fields map[string]any)
	Warnf(format string, args ...any)
	Errorf(format string, args ...any)
}
