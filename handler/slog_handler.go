package handler

import (
	"context"
	"log/slog"
	"path/filepath"
	"runtime"

	"github.com/philipp01105/nloghtml/core"
)

// Attribute keys that SlogHandler maps onto entry columns instead of
// fields when they appear outside any group.
const (
	SlogLoggerKey = "logger"
	SlogThreadKey = "thread"
	SlogNDCKey    = "ndc"
)

// SlogHandler is an adapter that implements slog.Handler using a Handler,
// so nloghtml handlers (and the HTML layout) can back log/slog.
//
// The entry's thread and NDC columns are taken from the context passed to
// the slog call (core.WithThread, core.PushNDC) unless a "thread" or
// "ndc" attribute overrides them.
type SlogHandler struct {
	handler   Handler
	level     core.Level
	addSource bool
	attrs     []boundAttr
	group     string
}

// boundAttr remembers the group that was open when WithAttrs was called.
type boundAttr struct {
	group string
	attr  slog.Attr
}

// SlogOptions configures NewSlogHandlerWithOptions.
type SlogOptions struct {
	// Level is the minimum level passed through (default: DebugLevel)
	Level core.Level
	// AddSource fills the entry's caller from the record's PC
	AddSource bool
}

// NewSlogHandler creates a new slog.Handler adapter wrapping the given Handler.
func NewSlogHandler(h Handler, level core.Level) *SlogHandler {
	return NewSlogHandlerWithOptions(h, SlogOptions{Level: level})
}

// NewSlogHandlerWithOptions creates a slog.Handler adapter with options.
func NewSlogHandlerWithOptions(h Handler, opts SlogOptions) *SlogHandler {
	return &SlogHandler{
		handler:   h,
		level:     opts.Level,
		addSource: opts.AddSource,
	}
}

// Enabled reports whether the handler handles records at the given level.
func (s *SlogHandler) Enabled(_ context.Context, level slog.Level) bool {
	return slogLevelToCore(level) >= s.level
}

// Handle converts a slog.Record to a core.Entry and passes it to the
// wrapped handler.
func (s *SlogHandler) Handle(ctx context.Context, record slog.Record) error {
	entry := core.GetEntry()
	entry.Time = record.Time
	entry.Level = slogLevelToCore(record.Level)
	entry.Message = record.Message
	entry.Thread = core.Thread(ctx)
	if ndc, ok := core.NDC(ctx); ok {
		entry.SetNDC(ndc)
	}

	if s.addSource && record.PC != 0 {
		frames := runtime.CallersFrames([]uintptr{record.PC})
		f, _ := frames.Next()
		entry.Caller = core.CallerInfo{
			File:      f.File,
			ShortFile: filepath.Base(f.File),
			Line:      f.Line,
			Function:  f.Function,
			Defined:   true,
		}
	}

	for _, b := range s.attrs {
		appendAttr(entry, b.group, b.attr)
	}
	record.Attrs(func(a slog.Attr) bool {
		appendAttr(entry, s.group, a)
		return true
	})

	err := s.handler.Handle(entry)
	if rc, ok := s.handler.(interface{ CanRecycleEntry() bool }); ok && rc.CanRecycleEntry() {
		core.PutEntry(entry)
	}
	return err
}

// appendAttr routes a top-level column attribute onto the entry and
// flattens everything else into fields.
func appendAttr(entry *core.Entry, group string, a slog.Attr) {
	if group == "" && a.Value.Kind() == slog.KindString {
		switch a.Key {
		case SlogLoggerKey:
			entry.Logger = a.Value.String()
			return
		case SlogThreadKey:
			entry.Thread = a.Value.String()
			return
		case SlogNDCKey:
			entry.SetNDC(a.Value.String())
			return
		}
	}
	entry.Fields = appendSlogAttr(entry.Fields, group, a)
}

// WithAttrs returns a new SlogHandler with additional attributes.
func (s *SlogHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	if len(attrs) == 0 {
		return s
	}
	clone := *s
	clone.attrs = make([]boundAttr, 0, len(s.attrs)+len(attrs))
	clone.attrs = append(clone.attrs, s.attrs...)
	for _, a := range attrs {
		clone.attrs = append(clone.attrs, boundAttr{group: s.group, attr: a})
	}
	return &clone
}

// WithGroup returns a new SlogHandler with the given group name.
func (s *SlogHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return s
	}
	clone := *s
	if s.group != "" {
		clone.group = s.group + "." + name
	} else {
		clone.group = name
	}
	return &clone
}

// slogLevelToCore converts a slog.Level to a core.Level.
func slogLevelToCore(level slog.Level) core.Level {
	switch {
	case level >= slog.LevelError:
		return core.ErrorLevel
	case level >= slog.LevelWarn:
		return core.WarnLevel
	case level >= slog.LevelInfo:
		return core.InfoLevel
	default:
		return core.DebugLevel
	}
}

// appendSlogAttr converts a slog.Attr to fields, prefixing keys with the
// group and flattening nested groups.
func appendSlogAttr(fields []core.Field, group string, a slog.Attr) []core.Field {
	key := a.Key
	if group != "" {
		key = group + "." + a.Key
	}

	a.Value = a.Value.Resolve()

	switch a.Value.Kind() {
	case slog.KindString:
		return append(fields, core.String(key, a.Value.String()))
	case slog.KindInt64:
		return append(fields, core.Int64(key, a.Value.Int64()))
	case slog.KindUint64:
		return append(fields, core.Uint64(key, a.Value.Uint64()))
	case slog.KindFloat64:
		return append(fields, core.Float64(key, a.Value.Float64()))
	case slog.KindBool:
		return append(fields, core.Bool(key, a.Value.Bool()))
	case slog.KindTime:
		return append(fields, core.Time(key, a.Value.Time()))
	case slog.KindDuration:
		return append(fields, core.Duration(key, a.Value.Duration()))
	case slog.KindGroup:
		prefix := key
		if a.Key == "" {
			// Inline groups merge into the parent.
			prefix = group
		}
		for _, ga := range a.Value.Group() {
			fields = appendSlogAttr(fields, prefix, ga)
		}
		return fields
	default:
		if err, ok := a.Value.Any().(error); ok {
			return append(fields, core.NamedErr(key, err))
		}
		return append(fields, core.Any(key, a.Value.Any()))
	}
}
