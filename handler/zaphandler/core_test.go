package zaphandler

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/philipp01105/nloghtml/core"
	"github.com/philipp01105/nloghtml/formatter"
	"github.com/philipp01105/nloghtml/handler/consolehandler"
	"github.com/philipp01105/nloghtml/handler/filehandler"
)

type recorder struct {
	mu      sync.Mutex
	entries []core.Entry
	closed  bool
}

func (r *recorder) Handle(entry *core.Entry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, *entry.Clone())
	return nil
}

func (r *recorder) Close() error {
	r.closed = true
	return nil
}

func (r *recorder) last(t *testing.T) core.Entry {
	t.Helper()
	r.mu.Lock()
	defer r.mu.Unlock()
	require.NotEmpty(t, r.entries)
	return r.entries[len(r.entries)-1]
}

func fieldMap(fields []core.Field) map[string]string {
	m := make(map[string]string, len(fields))
	for _, f := range fields {
		m[f.Key] = f.StringValue()
	}
	return m
}

type stringer struct{}

func (stringer) String() string { return "stringified" }

func TestCoreWrite(t *testing.T) {
	rec := &recorder{}
	log := New(rec, zapcore.DebugLevel).Named("app").Named("db")

	ts := time.Date(2026, 1, 15, 12, 0, 0, 0, time.UTC)
	log.Warn("slow query",
		zap.String("table", "users"),
		zap.Int("rows", 12),
		zap.Uint32("shard", 3),
		zap.Float64("ratio", 0.5),
		zap.Bool("cached", false),
		zap.Duration("took", 1500*time.Millisecond),
		zap.Time("at", ts),
		zap.Error(errors.New("timeout")),
		zap.Stringer("s", stringer{}),
		zap.ByteString("raw", []byte("bytes")),
		zap.Skip(),
	)

	e := rec.last(t)
	assert.Equal(t, "slow query", e.Message)
	assert.Equal(t, core.WarnLevel, e.Level)
	assert.Equal(t, "app.db", e.Logger)
	assert.False(t, e.HasNDC)
	assert.Equal(t, map[string]string{
		"table":  "users",
		"rows":   "12",
		"shard":  "3",
		"ratio":  "0.5",
		"cached": "false",
		"took":   "1.5s",
		"at":     "2026-01-15T12:00:00Z",
		"error":  "timeout",
		"s":      "stringified",
		"raw":    "bytes",
	}, fieldMap(e.Fields))
}

func TestCoreThreadAndNDC(t *testing.T) {
	rec := &recorder{}
	log := New(rec, zapcore.DebugLevel)

	ctx := core.WithThread(context.Background(), "worker-2")
	ctx = core.PushNDC(ctx, "req=5")
	ctx = core.PushNDC(ctx, "step=2")

	log.With(ContextFields(ctx)...).Info("scoped", zap.String("k", "v"))
	e := rec.last(t)
	assert.Equal(t, "worker-2", e.Thread)
	assert.True(t, e.HasNDC)
	assert.Equal(t, "req=5 step=2", e.NDC)
	assert.Equal(t, map[string]string{"k": "v"}, fieldMap(e.Fields))

	// Per-call fields override the bound ones
	log.With(ContextFields(ctx)...).Info("override", zap.String(ThreadKey, "main"))
	assert.Equal(t, "main", rec.last(t).Thread)

	assert.Empty(t, ContextFields(context.Background()))
}

func TestCoreNamespace(t *testing.T) {
	rec := &recorder{}
	log := New(rec, zapcore.DebugLevel).With(zap.Namespace("http"), zap.String("method", "GET"))

	log.Info("req", zap.Namespace("resp"), zap.Int("status", 200), zap.String(ThreadKey, "ignored"))
	e := rec.last(t)
	assert.Equal(t, map[string]string{
		"http.method":      "GET",
		"http.resp.status": "200",
		"http.resp.thread": "ignored",
	}, fieldMap(e.Fields))
	assert.Empty(t, e.Thread, "namespaced thread keys stay fields")
}

func TestCoreObjectFields(t *testing.T) {
	rec := &recorder{}
	log := New(rec, zapcore.DebugLevel)

	log.Info("obj", zap.Strings("tags", []string{"a", "b"}), zap.Any("m", map[string]int{"x": 1}))
	e := rec.last(t)
	require.Len(t, e.Fields, 2)
	assert.Equal(t, core.AnyType, e.Fields[0].Type)
	assert.Equal(t, []interface{}{"a", "b"}, e.Fields[0].Any)
	assert.Equal(t, "tags", e.Fields[0].Key)
}

func TestCoreLevels(t *testing.T) {
	tests := []struct {
		in   zapcore.Level
		want core.Level
	}{
		{zapcore.DebugLevel, core.DebugLevel},
		{zapcore.InfoLevel, core.InfoLevel},
		{zapcore.WarnLevel, core.WarnLevel},
		{zapcore.ErrorLevel, core.ErrorLevel},
		{zapcore.DPanicLevel, core.ErrorLevel},
		{zapcore.PanicLevel, core.PanicLevel},
		{zapcore.FatalLevel, core.FatalLevel},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, levelToCore(tt.in), tt.in.String())
	}

	rec := &recorder{}
	log := New(rec, zapcore.WarnLevel)
	log.Info("dropped")
	log.Error("kept")
	require.Len(t, rec.entries, 1)
	assert.Equal(t, "kept", rec.entries[0].Message)
	assert.Equal(t, zapcore.WarnLevel, NewCore(rec, zapcore.WarnLevel).Level())
}

func TestCoreCaller(t *testing.T) {
	rec := &recorder{}
	log := New(rec, zapcore.DebugLevel, zap.AddCaller())

	log.Info("where")
	e := rec.last(t)
	require.True(t, e.Caller.Defined)
	assert.Equal(t, "core_test.go", e.Caller.ShortFile)
	assert.NotZero(t, e.Caller.Line)
}

func TestCoreHTMLEndToEnd(t *testing.T) {
	var buf bytes.Buffer
	h := consolehandler.NewConsoleHandler(consolehandler.ConsoleConfig{
		Writer:    &buf,
		Formatter: formatter.NewHTMLFormatter(formatter.HTMLConfig{Title: "zap"}),
	})
	log := New(h, zapcore.DebugLevel).Named("svc")

	log.Debug("<hello>", zap.String(ThreadKey, "main"), zap.String(NDCKey, "a&b"))
	require.NoError(t, Close(log))

	out := buf.String()
	assert.Contains(t, out, "<title>zap</title>")
	assert.Contains(t, out, `<td title="main thread">main</td>`)
	assert.Contains(t, out, `<font color="#339933">DEBUG</font>`)
	assert.Contains(t, out, `<td title="svc logger">svc</td>`)
	assert.Contains(t, out, `<td title="Message">&lt;hello&gt;</td>`)
	assert.Contains(t, out, "NDC: a&amp;b</td></tr>")
	assert.True(t, bytes.HasSuffix(buf.Bytes(), []byte("</body></html>")))
}

func TestClose(t *testing.T) {
	rec := &recorder{}
	require.NoError(t, Close(New(rec, zapcore.InfoLevel)))
	assert.True(t, rec.closed)

	// Foreign cores are only synced
	require.NoError(t, Close(zap.NewNop()))
}

func TestCoreSyncFlushesFileHandler(t *testing.T) {
	name := filepath.Join(t.TempDir(), "zap.html")
	h, err := filehandler.NewFileHandler(filehandler.FileConfig{
		Filename:  name,
		Formatter: formatter.NewHTMLFormatter(formatter.HTMLConfig{LocationInfo: true}),
	})
	require.NoError(t, err)
	log := New(h, zapcore.InfoLevel, zap.AddCaller())

	log.Info("synced")
	require.NoError(t, log.Sync())

	data, err := os.ReadFile(name)
	require.NoError(t, err)
	assert.Contains(t, string(data), `<td title="Message">synced</td>`)
	assert.Contains(t, string(data), "<td>core_test.go:")
	assert.NotContains(t, string(data), "</html>")

	require.NoError(t, Close(log))
	data, err = os.ReadFile(name)
	require.NoError(t, err)
	assert.True(t, bytes.HasSuffix(data, []byte("</body></html>")))
}

func TestCoreInlineObject(t *testing.T) {
	rec := &recorder{}
	log := New(rec, zapcore.DebugLevel)
	user := zapcore.ObjectMarshalerFunc(func(enc zapcore.ObjectEncoder) error {
		enc.AddString("user", "alice")
		enc.AddInt("id", 7)
		return nil
	})

	log.Info("inline", zap.Inline(user))
	assert.Equal(t, map[string]string{"id": "7", "user": "alice"}, fieldMap(rec.last(t).Fields))

	log.With(zap.Namespace("req")).Info("nested", zap.Inline(user))
	assert.Equal(t, map[string]string{"req.id": "7", "req.user": "alice"}, fieldMap(rec.last(t).Fields))
}

func TestCoreHTMLRendersErrorAndStack(t *testing.T) {
	var buf bytes.Buffer
	h := consolehandler.NewConsoleHandler(consolehandler.ConsoleConfig{
		Writer:    &buf,
		Formatter: formatter.NewHTMLFormatter(formatter.HTMLConfig{}),
	})
	log := New(h, zapcore.DebugLevel, zap.AddStacktrace(zapcore.ErrorLevel))

	log.Error("db failed", zap.Error(errors.New("connection refused")))
	require.NoError(t, Close(log))

	out := buf.String()
	assert.Contains(t, out, `colspan="5">error: connection refused`)
	assert.Contains(t, out, "<br>&nbsp;&nbsp;&nbsp;&nbsp;")
	assert.Contains(t, out, "TestCoreHTMLRendersErrorAndStack")
}
