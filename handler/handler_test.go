package handler

import (
	"bytes"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/philipp01105/nloghtml/core"
	"github.com/philipp01105/nloghtml/formatter"
)

// recordingHandler keeps copies of every entry it is given.
type recordingHandler struct {
	mu      sync.Mutex
	entries []core.Entry
	err     error
	closed  int
	recycle bool
}

func (r *recordingHandler) Handle(entry *core.Entry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, *entry.Clone())
	return r.err
}

func (r *recordingHandler) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closed++
	return r.err
}

func (r *recordingHandler) CanRecycleEntry() bool { return r.recycle }

func (r *recordingHandler) last(t *testing.T) core.Entry {
	t.Helper()
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.entries) == 0 {
		t.Fatal("no entries recorded")
	}
	return r.entries[len(r.entries)-1]
}

func TestWriteHeaderFooter_HTML(t *testing.T) {
	f := formatter.NewHTMLFormatter(formatter.HTMLConfig{Title: "run"})

	var buf bytes.Buffer
	n, err := WriteHeader(&buf, f)
	if err != nil {
		t.Fatalf("WriteHeader() error = %v", err)
	}
	if n != buf.Len() || !strings.Contains(buf.String(), "<title>run</title>") {
		t.Errorf("WriteHeader() wrote %d bytes: %s", n, buf.String())
	}

	buf.Reset()
	if _, err := WriteFooter(&buf, f); err != nil {
		t.Fatalf("WriteFooter() error = %v", err)
	}
	if !strings.HasSuffix(buf.String(), "</body></html>") {
		t.Errorf("WriteFooter() = %q", buf.String())
	}
}

type failingWriter struct{ calls int }

func (w *failingWriter) Write(p []byte) (int, error) {
	w.calls++
	return 0, errors.New("disk full")
}

func TestWriteHeaderFooter_EmptyLayoutSkipsWrite(t *testing.T) {
	w := &failingWriter{}
	for _, f := range []formatter.Formatter{
		formatter.NewTextFormatter(formatter.Config{}),
		formatter.NewJSONFormatter(formatter.Config{}),
	} {
		if n, err := WriteHeader(w, f); n != 0 || err != nil {
			t.Errorf("WriteHeader(%T) = %d, %v", f, n, err)
		}
		if n, err := WriteFooter(w, f); n != 0 || err != nil {
			t.Errorf("WriteFooter(%T) = %d, %v", f, n, err)
		}
	}
	if w.calls != 0 {
		t.Errorf("writer called %d times for empty header/footer", w.calls)
	}
}

func TestWriteHeader_PropagatesError(t *testing.T) {
	_, err := WriteHeader(&failingWriter{}, formatter.NewHTMLFormatter(formatter.HTMLConfig{}))
	if err == nil {
		t.Error("expected the writer error to be returned")
	}
}

func TestMultiHandler(t *testing.T) {
	h1 := &recordingHandler{recycle: true}
	h2 := &recordingHandler{recycle: true}

	multi := NewMultiHandler(h1, h2)
	if !multi.CanRecycleEntry() {
		t.Error("all children recycle, so the multi handler should too")
	}

	entry := &core.Entry{Level: core.InfoLevel, Message: "multi test"}
	if err := multi.Handle(entry); err != nil {
		t.Errorf("Handle() error = %v", err)
	}

	if h1.last(t).Message != "multi test" || h2.last(t).Message != "multi test" {
		t.Error("a child handler did not receive the entry")
	}

	if err := multi.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}
	if h1.closed != 1 || h2.closed != 1 {
		t.Errorf("children closed %d and %d times", h1.closed, h2.closed)
	}
}

func TestMultiHandler_ErrorsAndRecycle(t *testing.T) {
	boom := errors.New("boom")
	bang := errors.New("bang")
	failing := &recordingHandler{err: boom, recycle: true}
	ok := &recordingHandler{recycle: false}
	alsoFailing := &recordingHandler{err: bang, recycle: true}

	multi := NewMultiHandler(failing, ok, alsoFailing)
	if multi.CanRecycleEntry() {
		t.Error("one child keeps entries, so recycling must be off")
	}
	err := multi.Handle(&core.Entry{Message: "x"})
	if !errors.Is(err, boom) || !errors.Is(err, bang) {
		t.Errorf("Handle() error = %v, want both child errors", err)
	}
	if len(ok.entries) != 1 {
		t.Error("a failing child must not stop delivery to the others")
	}
	if err := multi.Close(); !errors.Is(err, bang) {
		t.Errorf("Close() error = %v", err)
	}
	if ok.closed != 1 {
		t.Error("every child must be closed")
	}
}

type statsHandler struct {
	recordingHandler
	stats *Stats
}

func (s *statsHandler) Stats() Snapshot { return s.stats.GetSnapshot() }

func TestMultiHandler_Stats(t *testing.T) {
	a := &statsHandler{stats: NewStats()}
	b := &statsHandler{stats: NewStats()}
	a.stats.IncrementProcessed()
	b.stats.IncrementProcessed()
	b.stats.IncrementDropped(core.InfoLevel)
	b.stats.IncrementBlocked()

	snap := NewMultiHandler(a, b, &recordingHandler{}).Stats()
	if snap.ProcessedTotal != 2 || snap.BlockedTotal != 1 || snap.DroppedTotal[core.InfoLevel] != 1 {
		t.Errorf("unexpected aggregate: %+v", snap)
	}
}

func TestNewStoppedTimer(t *testing.T) {
	timer := NewStoppedTimer()
	select {
	case <-timer.C:
		t.Fatal("stopped timer fired")
	case <-time.After(5 * time.Millisecond):
	}
	timer.Reset(time.Millisecond)
	select {
	case <-timer.C:
	case <-time.After(time.Second):
		t.Fatal("reset timer never fired")
	}
}

func TestStats(t *testing.T) {
	s := NewStats()
	s.IncrementDropped(core.DebugLevel)
	s.IncrementDropped(core.DebugLevel)
	s.IncrementDropped(core.ErrorLevel)
	s.IncrementDropped(core.Level(99))
	s.IncrementBlocked()
	s.IncrementProcessed()
	s.IncrementProcessed()

	if got := s.GetDropped(core.DebugLevel); got != 2 {
		t.Errorf("GetDropped(DEBUG) = %d, want 2", got)
	}
	if got := s.GetDropped(core.PanicLevel); got != 1 {
		t.Errorf("out of range level should count as PANIC, got %d", got)
	}
	if got := s.GetTotalDropped(); got != 4 {
		t.Errorf("GetTotalDropped() = %d, want 4", got)
	}

	snap := s.GetSnapshot()
	if snap.DroppedTotal[core.ErrorLevel] != 1 || snap.BlockedTotal != 1 || snap.ProcessedTotal != 2 {
		t.Errorf("unexpected snapshot: %+v", snap)
	}

	s.Reset()
	if s.GetTotalDropped() != 0 || s.GetBlocked() != 0 || s.GetProcessed() != 0 {
		t.Error("Reset() left counters non-zero")
	}
}

func TestConcurrentStats(t *testing.T) {
	s := NewStats()
	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 1000; i++ {
				s.IncrementProcessed()
				s.IncrementDropped(core.InfoLevel)
			}
		}()
	}
	wg.Wait()
	if s.GetProcessed() != 8000 || s.GetDropped(core.InfoLevel) != 8000 {
		t.Errorf("lost updates: processed=%d dropped=%d", s.GetProcessed(), s.GetDropped(core.InfoLevel))
	}
}

func TestOverflowPolicy_String(t *testing.T) {
	for p, want := range map[OverflowPolicy]string{
		DropNewest:         "DropNewest",
		DropOldest:         "DropOldest",
		Block:              "Block",
		OverflowPolicy(42): "Unknown",
	} {
		if p.String() != want {
			t.Errorf("%d.String() = %q, want %q", p, p.String(), want)
		}
	}
	if DefaultLevelPolicy()[core.ErrorLevel] != Block {
		t.Error("errors should block by default")
	}
}
