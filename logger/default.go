package logger

import (
	"context"
	"fmt"
	"sync"

	"github.com/philipp01105/nloghtml/core"
	"github.com/philipp01105/nloghtml/formatter"
	"github.com/philipp01105/nloghtml/handler/consolehandler"
)

var (
	defaultLogger *Logger
	defaultMu     sync.RWMutex
)

func init() {
	// Synchronous so short programs never lose their last lines
	h := consolehandler.NewConsoleHandler(consolehandler.ConsoleConfig{
		Formatter: formatter.NewTextFormatter(formatter.Config{}),
	})

	defaultLogger = NewBuilder().
		WithHandler(h).
		WithLevel(core.InfoLevel).
		Build()
}

// Default returns the default logger
func Default() *Logger {
	defaultMu.RLock()
	defer defaultMu.RUnlock()
	return defaultLogger
}

// SetDefault sets the default logger. The previous logger is not closed.
func SetDefault(l *Logger) {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	defaultLogger = l
}

// The package-level functions below call log directly rather than the
// Logger methods so the caller lookup sees the same stack depth.

// Debug logs a debug message using the default logger
func Debug(msg string, fields ...core.Field) {
	if d := Default(); d.Enabled(core.DebugLevel) {
		d.log(core.DebugLevel, msg, fields)
	}
}

// Info logs an info message using the default logger
func Info(msg string, fields ...core.Field) {
	if d := Default(); d.Enabled(core.InfoLevel) {
		d.log(core.InfoLevel, msg, fields)
	}
}

// Warn logs a warning message using the default logger
func Warn(msg string, fields ...core.Field) {
	if d := Default(); d.Enabled(core.WarnLevel) {
		d.log(core.WarnLevel, msg, fields)
	}
}

// Error logs an error message using the default logger
func Error(msg string, fields ...core.Field) {
	if d := Default(); d.Enabled(core.ErrorLevel) {
		d.log(core.ErrorLevel, msg, fields)
	}
}

// Fatal logs a fatal message using the default logger, closes its handler
// and exits the program
func Fatal(msg string, fields ...core.Field) {
	d := Default()
	d.log(core.FatalLevel, msg, fields)
	d.exit()
}

// Panic logs a panic message using the default logger and panics
func Panic(msg string, fields ...core.Field) {
	Default().log(core.PanicLevel, msg, fields)
	panic(msg)
}

// Debugf logs a formatted debug message using the default logger
func Debugf(format string, args ...any) {
	if d := Default(); d.Enabled(core.DebugLevel) {
		d.log(core.DebugLevel, fmt.Sprintf(format, args...), nil)
	}
}

// Infof logs a formatted info message using the default logger
func Infof(format string, args ...any) {
	if d := Default(); d.Enabled(core.InfoLevel) {
		d.log(core.InfoLevel, fmt.Sprintf(format, args...), nil)
	}
}

// Warnf logs a formatted warning message using the default logger
func Warnf(format string, args ...any) {
	if d := Default(); d.Enabled(core.WarnLevel) {
		d.log(core.WarnLevel, fmt.Sprintf(format, args...), nil)
	}
}

// Errorf logs a formatted error message using the default logger
func Errorf(format string, args ...any) {
	if d := Default(); d.Enabled(core.ErrorLevel) {
		d.log(core.ErrorLevel, fmt.Sprintf(format, args...), nil)
	}
}

// Fatalf logs a formatted fatal message using the default logger and exits the program
func Fatalf(format string, args ...any) {
	d := Default()
	d.log(core.FatalLevel, fmt.Sprintf(format, args...), nil)
	d.exit()
}

// Panicf logs a formatted panic message using the default logger and panics
func Panicf(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	Default().log(core.PanicLevel, msg, nil)
	panic(msg)
}

// With creates a new logger with additional fields
func With(fields ...core.Field) *Logger {
	return Default().With(fields...)
}

// Named creates a named child of the default logger
func Named(name string) *Logger {
	return Default().Named(name)
}

// WithContext creates a child of the default logger carrying the NDC and
// thread label of ctx
func WithContext(ctx context.Context) *Logger {
	return Default().WithContext(ctx)
}
