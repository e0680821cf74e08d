// ============================================================================
// nsms - SMS command platform
// ============================================================================
//
// Package:     logging
// Description: Factory functions for foundation loggers built from config
// Author:      Mike Stoffels
// Created:     2026-10-19
// License:     MIT
// ============================================================================

package logging

import (
	"io"
	"os"

	nsmslog "github.com/msto63/nsms/foundation/core/log"
	"github.com/msto63/nsms/pkg/core/config"
)

// LoggerConfig holds configuration for creating loggers
type LoggerConfig struct {
	// Component name, written as the logger field
	ServiceName string

	// Log level (trace, debug, info, warn, error)
	Level string

	// Output format (json, text, console, logfmt)
	Format string

	// Output defaults to stderr so command output on stdout stays clean.
	Output io.Writer

	// Additional outputs besides Output
	AdditionalOutputs []io.Writer
}

// DefaultLoggerConfig returns a default configuration
func DefaultLoggerConfig(serviceName string) LoggerConfig {
	return LoggerConfig{
		ServiceName: serviceName,
		Level:       "info",
		Format:      "text",
	}
}

// FromConfig derives the logger settings from the application config.
func FromConfig(cfg *config.Config, serviceName string) LoggerConfig {
	lc := DefaultLoggerConfig(serviceName)
	if cfg != nil {
		lc.Level = cfg.General.LogLevel
		lc.Format = cfg.General.LogFormat
	}
	return lc
}

// NewLogger creates a new foundation logger. Unknown level or format names
// fall back to info and JSON.
func NewLogger(cfg LoggerConfig) *nsmslog.Logger {
	level, _ := nsmslog.ParseLevel(cfg.Level)
	format, _ := nsmslog.ParseFormat(cfg.Format)

	var output io.Writer = os.Stderr
	if cfg.Output != nil {
		output = cfg.Output
	}
	if len(cfg.AdditionalOutputs) > 0 {
		output = io.MultiWriter(append([]io.Writer{output}, cfg.AdditionalOutputs...)...)
	}

	return nsmslog.NewWithConfig(nsmslog.Config{
		Level:  level,
		Format: format,
		Output: output,
		Name:   cfg.ServiceName,
	})
}

// NewSimpleLogger creates a logger with the default configuration
func NewSimpleLogger(serviceName string) *nsmslog.Logger {
	return NewLogger(DefaultLoggerConfig(serviceName))
}

// Logger wraps the foundation logger with key/value logging methods for
// the transport layers.
type Logger struct {
	*nsmslog.Logger
	name string
}

// New creates a key/value logger with the default configuration.
func New(name string) *Logger {
	return Wrap(NewSimpleLogger(name))
}

// Wrap adapts an existing foundation logger.
func Wrap(l *nsmslog.Logger) *Logger {
	return &Logger{Logger: l, name: l.Name()}
}

// WithLevel returns a new logger with the specified level
func (l *Logger) WithLevel(level Level) *Logger {
	lvl := nsmslog.LevelInfo
	switch level {
	case LevelDebug:
		lvl = nsmslog.LevelDebug
	case LevelWarn:
		lvl = nsmslog.LevelWarn
	case LevelError:
		lvl = nsmslog.LevelError
	}

	return &Logger{
		Logger: l.Logger.WithLevel(lvl),
		name:   l.name,
	}
}

// Debug logs a debug message with key-value pairs
func (l *Logger) Debug(msg string, keysAndValues ...interface{}) {
	l.Logger.Debug(msg, toFields(keysAndValues...))
}

// Info logs an info message with key-value pairs
func (l *Logger) Info(msg string, keysAndValues ...interface{}) {
	l.Logger.Info(msg, toFields(keysAndValues...))
}

// Warn logs a warning message with key-value pairs
func (l *Logger) Warn(msg string, keysAndValues ...interface{}) {
	l.Logger.Warn(msg, toFields(keysAndValues...))
}

// Error logs an error message with key-value pairs
func (l *Logger) Error(msg string, keysAndValues ...interface{}) {
	l.Logger.Error(msg, toFields(keysAndValues...))
}

// toFields converts key-value pairs to foundation fields. Non-string keys
// and a trailing key without value are dropped.
func toFields(keysAndValues ...interface{}) nsmslog.Fields {
	if len(keysAndValues) == 0 {
		return nil
	}

	fields := make(nsmslog.Fields)
	for i := 0; i < len(keysAndValues)-1; i += 2 {
		key, ok := keysAndValues[i].(string)
		if !ok {
			continue
		}
		fields[key] = keysAndValues[i+1]
	}
	return fields
}
