package logger

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/philipp01105/nloghtml/core"
	"github.com/philipp01105/nloghtml/handler"
)

// osExit is a variable to allow overriding os.Exit in tests
var osExit = os.Exit

// defaultCallerSkip skips core.GetCaller, Logger.log and the level method.
const defaultCallerSkip = 3

// columns are the per-logger values copied into every entry besides the
// message and fields.
type columns struct {
	name   string
	thread string
	ndc    string
	hasNDC bool
}

// Logger is the main logging interface. A Logger is never modified after
// Build; With, Named and WithContext return children.
type Logger struct {
	out          handler.Handler
	min          core.Level
	fields       []core.Field
	cols         columns
	caller       bool
	callerSkip   int
	recycleEntry bool
	coarseClock  bool
}

// Builder provides a fluent API for building Logger instances
type Builder struct {
	proto Logger
}

// NewBuilder creates a builder for an Info level logger without handler.
func NewBuilder() *Builder {
	return &Builder{proto: Logger{
		min:        core.InfoLevel,
		callerSkip: defaultCallerSkip,
	}}
}

// WithHandler sets the handler. Whether entries can go back to the pool
// after Handle is decided here once rather than on every entry.
func (b *Builder) WithHandler(h handler.Handler) *Builder {
	b.proto.out = h
	b.proto.recycleEntry = false
	if rc, ok := h.(interface{ CanRecycleEntry() bool }); ok {
		b.proto.recycleEntry = rc.CanRecycleEntry()
	}
	return b
}

// WithLevel sets the minimum level
func (b *Builder) WithLevel(level core.Level) *Builder {
	b.proto.min = level
	return b
}

// WithFields adds fields attached to every entry
func (b *Builder) WithFields(fields ...core.Field) *Builder {
	b.proto.fields = append(b.proto.fields, fields...)
	return b
}

// WithCaller records the calling file and line on every entry
func (b *Builder) WithCaller(enabled bool) *Builder {
	b.proto.caller = enabled
	return b
}

// WithName sets the logger name shown in the Logger column
func (b *Builder) WithName(name string) *Builder {
	b.proto.cols.name = name
	return b
}

// WithThread sets the label shown in the Thread column
func (b *Builder) WithThread(thread string) *Builder {
	b.proto.cols.thread = thread
	return b
}

// WithCoarseClock timestamps entries from core.CoarseNow instead of
// time.Now, trading sub-millisecond precision for a cheaper clock read.
func (b *Builder) WithCoarseClock(enabled bool) *Builder {
	b.proto.coarseClock = enabled
	return b
}

// Build returns a Logger with the configured settings. The builder may be
// reused; later changes do not affect loggers already built.
func (b *Builder) Build() *Logger {
	if b.proto.coarseClock {
		core.StartCoarseClock()
	}
	l := b.proto
	l.fields = append([]core.Field(nil), b.proto.fields...)
	return &l
}

func (l *Logger) clone() *Logger {
	c := *l
	return &c
}

// With returns a child that adds fields to every entry.
func (l *Logger) With(fields ...core.Field) *Logger {
	c := l.clone()
	// Full slice expression so appends never write into the parent's array
	c.fields = append(l.fields[:len(l.fields):len(l.fields)], fields...)
	return c
}

// Named returns a child whose name is the receiver's name joined with
// child by a dot, so "app" becomes "app.db".
func (l *Logger) Named(child string) *Logger {
	c := l.clone()
	switch {
	case child == "":
	case l.cols.name == "":
		c.cols.name = child
	default:
		c.cols.name = l.cols.name + "." + child
	}
	return c
}

// WithContext returns a child carrying the nested diagnostic context and
// thread label found in ctx. A thread label already set on the logger is
// kept when ctx has none.
func (l *Logger) WithContext(ctx context.Context) *Logger {
	c := l.clone()
	c.cols.ndc, c.cols.hasNDC = core.NDC(ctx)
	if thread := core.Thread(ctx); thread != "" {
		c.cols.thread = thread
	}
	return c
}

// Name returns the logger name
func (l *Logger) Name() string {
	return l.cols.name
}

// Enabled reports whether entries at level would reach the handler
func (l *Logger) Enabled(level core.Level) bool {
	return level >= l.min && l.out != nil
}

// Log logs a message at the specified level
func (l *Logger) Log(level core.Level, msg string, fields ...core.Field) {
	if l.Enabled(level) {
		l.log(level, msg, fields)
	}
}

func (l *Logger) now() time.Time {
	if l.coarseClock {
		return core.CoarseNow()
	}
	return time.Now()
}

// log builds the entry and hands it to the handler. Callers have already
// checked the level, so the pool is only touched for entries that are
// written. It must stay exactly one frame below the public method for
// callerSkip to hold.
func (l *Logger) log(level core.Level, msg string, fields []core.Field) {
	if l.out == nil {
		return
	}

	entry := core.GetEntry()
	entry.Time = l.now()
	entry.Level = level
	entry.Message = msg
	entry.Logger = l.cols.name
	entry.Thread = l.cols.thread
	if l.cols.hasNDC {
		entry.SetNDC(l.cols.ndc)
	}
	entry.Fields = append(append(entry.Fields, l.fields...), fields...)
	if l.caller {
		entry.Caller = core.GetCaller(l.callerSkip)
	}

	// On error the handler may still hold the entry, so it is not recycled
	if err := l.out.Handle(entry); err == nil && l.recycleEntry {
		core.PutEntry(entry)
	}
}

// exit flushes the handler, which also writes any layout footer, and
// terminates the process.
func (l *Logger) exit() {
	_ = l.Close()
	osExit(1)
}

// Debug logs at DebugLevel
func (l *Logger) Debug(msg string, fields ...core.Field) {
	if l.Enabled(core.DebugLevel) {
		l.log(core.DebugLevel, msg, fields)
	}
}

// Info logs at InfoLevel
func (l *Logger) Info(msg string, fields ...core.Field) {
	if l.Enabled(core.InfoLevel) {
		l.log(core.InfoLevel, msg, fields)
	}
}

// Warn logs at WarnLevel
func (l *Logger) Warn(msg string, fields ...core.Field) {
	if l.Enabled(core.WarnLevel) {
		l.log(core.WarnLevel, msg, fields)
	}
}

// Error logs at ErrorLevel
func (l *Logger) Error(msg string, fields ...core.Field) {
	if l.Enabled(core.ErrorLevel) {
		l.log(core.ErrorLevel, msg, fields)
	}
}

// Fatal logs at FatalLevel regardless of the minimum level, closes the
// handler and exits with status 1.
func (l *Logger) Fatal(msg string, fields ...core.Field) {
	l.log(core.FatalLevel, msg, fields)
	l.exit()
}

// Panic logs at PanicLevel regardless of the minimum level, then panics
// with msg.
func (l *Logger) Panic(msg string, fields ...core.Field) {
	l.log(core.PanicLevel, msg, fields)
	panic(msg)
}

// Debugf is Debug with a fmt.Sprintf message. Arguments are not formatted
// when the level is disabled.
func (l *Logger) Debugf(format string, args ...any) {
	if l.Enabled(core.DebugLevel) {
		l.log(core.DebugLevel, fmt.Sprintf(format, args...), nil)
	}
}

// Infof is Info with a fmt.Sprintf message.
func (l *Logger) Infof(format string, args ...any) {
	if l.Enabled(core.InfoLevel) {
		l.log(core.InfoLevel, fmt.Sprintf(format, args...), nil)
	}
}

// Warnf is Warn with a fmt.Sprintf message.
func (l *Logger) Warnf(format string, args ...any) {
	if l.Enabled(core.WarnLevel) {
		l.log(core.WarnLevel, fmt.Sprintf(format, args...), nil)
	}
}

// Errorf is Error with a fmt.Sprintf message.
func (l *Logger) Errorf(format string, args ...any) {
	if l.Enabled(core.ErrorLevel) {
		l.log(core.ErrorLevel, fmt.Sprintf(format, args...), nil)
	}
}

// Fatalf is Fatal with a fmt.Sprintf message.
func (l *Logger) Fatalf(format string, args ...any) {
	l.log(core.FatalLevel, fmt.Sprintf(format, args...), nil)
	l.exit()
}

// Panicf is Panic with a fmt.Sprintf message.
func (l *Logger) Panicf(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	l.log(core.PanicLevel, msg, nil)
	panic(msg)
}

// Close closes the logger's handler. Children share the handler, so
// closing any of them closes it for all.
func (l *Logger) Close() error {
	if l.out == nil {
		return nil
	}
	return l.out.Close()
}
