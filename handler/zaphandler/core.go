package zaphandler

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/philipp01105/nloghtml/core"
	"github.com/philipp01105/nloghtml/handler"
)

const (
	// ThreadKey is the field key that sets the Thread column
	ThreadKey = "thread"
	// NDCKey is the field key that sets the nested diagnostic context
	NDCKey = "ndc"
	// StacktraceKey holds zap's stack trace when one is captured
	StacktraceKey = core.StacktraceKey
)

// Core is a zapcore.Core writing to a handler.Handler.
type Core struct {
	zapcore.LevelEnabler
	handler handler.Handler
	recycle bool

	fields []core.Field
	prefix string // namespace opened by With
	thread string
	ndc    string
	hasNDC bool
}

// NewCore creates a Core that delivers entries enabled by enab to h.
func NewCore(h handler.Handler, enab zapcore.LevelEnabler) *Core {
	c := &Core{LevelEnabler: enab, handler: h}
	if rc, ok := h.(interface{ CanRecycleEntry() bool }); ok {
		c.recycle = rc.CanRecycleEntry()
	}
	return c
}

// New builds a *zap.Logger on top of NewCore.
func New(h handler.Handler, enab zapcore.LevelEnabler, opts ...zap.Option) *zap.Logger {
	return zap.New(NewCore(h, enab), opts...)
}

// Close syncs log and closes the handler behind it, which writes layout
// footers. Loggers not built on a Core are only synced.
func Close(log *zap.Logger) error {
	syncErr := log.Sync()
	if c, ok := log.Core().(*Core); ok {
		if err := c.handler.Close(); err != nil {
			return err
		}
	}
	return syncErr
}

// ContextFields returns the thread and ndc fields for the thread label and
// nested diagnostic context carried by ctx.
func ContextFields(ctx context.Context) []zap.Field {
	var fields []zap.Field
	if thread := core.Thread(ctx); thread != "" {
		fields = append(fields, zap.String(ThreadKey, thread))
	}
	if ndc, ok := core.NDC(ctx); ok {
		fields = append(fields, zap.String(NDCKey, ndc))
	}
	return fields
}

// Level reports the minimum enabled level when the enabler can tell.
func (c *Core) Level() zapcore.Level {
	return zapcore.LevelOf(c.LevelEnabler)
}

// With returns a Core that adds fields to every entry.
func (c *Core) With(fields []zapcore.Field) zapcore.Core {
	clone := *c
	clone.fields = append([]core.Field(nil), c.fields...)
	conv := converter{
		fields: clone.fields,
		prefix: clone.prefix,
		thread: &clone.thread,
		ndc:    &clone.ndc,
		hasNDC: &clone.hasNDC,
	}
	for _, f := range fields {
		conv.add(f)
	}
	clone.fields = conv.fields
	clone.prefix = conv.prefix
	return &clone
}

// Check adds the Core to ce if the entry's level is enabled.
func (c *Core) Check(ent zapcore.Entry, ce *zapcore.CheckedEntry) *zapcore.CheckedEntry {
	if c.Enabled(ent.Level) {
		return ce.AddCore(ent, c)
	}
	return ce
}

// Write converts ent and fields and hands them to the handler.
func (c *Core) Write(ent zapcore.Entry, fields []zapcore.Field) error {
	entry := core.GetEntry()
	entry.Time = ent.Time
	entry.Level = levelToCore(ent.Level)
	entry.Logger = ent.LoggerName
	entry.Message = ent.Message
	entry.Thread = c.thread
	if c.hasNDC {
		entry.SetNDC(c.ndc)
	}
	if ent.Caller.Defined {
		entry.Caller = callerInfo(ent.Caller)
	}

	entry.Fields = append(entry.Fields, c.fields...)
	conv := converter{
		fields: entry.Fields,
		prefix: c.prefix,
		thread: &entry.Thread,
		ndc:    &entry.NDC,
		hasNDC: &entry.HasNDC,
	}
	for _, f := range fields {
		conv.add(f)
	}
	entry.Fields = conv.fields
	if ent.Stack != "" {
		entry.Fields = append(entry.Fields, core.String(StacktraceKey, ent.Stack))
	}

	err := c.handler.Handle(entry)
	if err == nil && c.recycle {
		core.PutEntry(entry)
	}
	return err
}

// Sync flushes the handler if it supports it.
func (c *Core) Sync() error {
	if s, ok := c.handler.(interface{ Sync() error }); ok {
		return s.Sync()
	}
	return nil
}

func levelToCore(l zapcore.Level) core.Level {
	switch {
	case l <= zapcore.DebugLevel:
		return core.DebugLevel
	case l == zapcore.InfoLevel:
		return core.InfoLevel
	case l == zapcore.WarnLevel:
		return core.WarnLevel
	case l == zapcore.ErrorLevel, l == zapcore.DPanicLevel:
		return core.ErrorLevel
	case l == zapcore.PanicLevel:
		return core.PanicLevel
	default:
		return core.FatalLevel
	}
}

func callerInfo(c zapcore.EntryCaller) core.CallerInfo {
	info := core.CallerInfo{
		File:     c.File,
		Line:     c.Line,
		Function: c.Function,
		Defined:  true,
	}
	// TrimmedPath keeps "pkg/file.go"; the location column wants the base
	// name like core.GetCaller produces.
	for i := len(c.File) - 1; i >= 0; i-- {
		if c.File[i] == '/' {
			info.ShortFile = c.File[i+1:]
			break
		}
	}
	if info.ShortFile == "" {
		info.ShortFile = c.File
	}
	return info
}

// converter turns zap fields into core fields, routing the thread and ndc
// keys onto the entry columns.
type converter struct {
	fields []core.Field
	prefix string
	thread *string
	ndc    *string
	hasNDC *bool
}

func (cv *converter) add(f zapcore.Field) {
	key := cv.prefix + f.Key

	switch f.Type {
	case zapcore.SkipType:
		return
	case zapcore.NamespaceType:
		cv.prefix = key + "."
		return
	case zapcore.StringType:
		if cv.prefix == "" {
			switch f.Key {
			case ThreadKey:
				*cv.thread = f.String
				return
			case NDCKey:
				*cv.ndc = f.String
				*cv.hasNDC = true
				return
			}
		}
		cv.fields = append(cv.fields, core.String(key, f.String))
	case zapcore.Int64Type, zapcore.Int32Type, zapcore.Int16Type, zapcore.Int8Type:
		cv.fields = append(cv.fields, core.Int64(key, f.Integer))
	case zapcore.Uint64Type, zapcore.Uint32Type, zapcore.Uint16Type, zapcore.Uint8Type, zapcore.UintptrType:
		cv.fields = append(cv.fields, core.Uint64(key, uint64(f.Integer)))
	case zapcore.Float64Type:
		cv.fields = append(cv.fields, core.Float64(key, math.Float64frombits(uint64(f.Integer))))
	case zapcore.Float32Type:
		cv.fields = append(cv.fields, core.Float64(key, float64(math.Float32frombits(uint32(f.Integer)))))
	case zapcore.BoolType:
		cv.fields = append(cv.fields, core.Bool(key, f.Integer == 1))
	case zapcore.DurationType:
		cv.fields = append(cv.fields, core.Duration(key, time.Duration(f.Integer)))
	case zapcore.TimeType:
		t := time.Unix(0, f.Integer)
		if loc, ok := f.Interface.(*time.Location); ok {
			t = t.In(loc)
		}
		cv.fields = append(cv.fields, core.Time(key, t))
	case zapcore.TimeFullType:
		cv.fields = append(cv.fields, core.Time(key, f.Interface.(time.Time)))
	case zapcore.ErrorType:
		err, _ := f.Interface.(error)
		cv.fields = append(cv.fields, core.NamedErr(key, err))
	case zapcore.StringerType:
		cv.fields = append(cv.fields, core.String(key, stringerValue(f.Interface)))
	case zapcore.ByteStringType:
		cv.fields = append(cv.fields, core.String(key, string(f.Interface.([]byte))))
	default:
		// Objects, arrays, reflected and binary values go through zap's own
		// map encoder so marshalers are honoured.
		enc := zapcore.NewMapObjectEncoder()
		f.AddTo(enc)
		if f.Key != "" {
			cv.fields = append(cv.fields, core.Any(key, enc.Fields[f.Key]))
			return
		}
		// zap.Inline adds the object's members at the current level
		keys := make([]string, 0, len(enc.Fields))
		for k := range enc.Fields {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			cv.fields = append(cv.fields, core.Any(cv.prefix+k, enc.Fields[k]))
		}
	}
}

func stringerValue(v interface{}) (s string) {
	defer func() {
		if r := recover(); r != nil {
			s = fmt.Sprintf("<PANIC=%v>", r)
		}
	}()
	if v == nil {
		return "<nil>"
	}
	return v.(fmt.Stringer).String()
}
