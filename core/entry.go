package core

import (
	"path/filepath"
	"runtime"
	"sync"
	"time"
)

// Entry is one log event: the columns of an HTML row plus structured
// fields.
type Entry struct {
	Time    time.Time
	Level   Level
	Logger  string
	Thread  string
	Message string
	// NDC is only meaningful when HasNDC is set; an empty context that was
	// explicitly pushed still renders.
	NDC    string
	HasNDC bool
	Fields []Field
	Caller CallerInfo
}

// CallerInfo locates the statement that logged an entry. Line 0 means the
// line is unknown.
type CallerInfo struct {
	File      string
	ShortFile string
	Line      int
	Function  string
	Defined   bool
}

var entryPool = sync.Pool{
	New: func() interface{} {
		return &Entry{
			Fields: make([]Field, 0, 8),
		}
	},
}

// GetEntry takes a cleared Entry from the pool, stamped with the current
// time.
func GetEntry() *Entry {
	e := entryPool.Get().(*Entry)
	e.Time = time.Now()
	return e
}

// PutEntry clears e and returns it to the pool. The caller must not use e
// afterwards.
func PutEntry(e *Entry) {
	if e == nil {
		return
	}
	e.Reset()
	entryPool.Put(e)
}

// Reset clears every column and field but keeps the field capacity.
func (e *Entry) Reset() {
	fields := e.Fields[:0]
	*e = Entry{Fields: fields}
}

// Clone returns a copy of e that shares nothing with it, for handlers that
// keep entries past Handle.
func (e *Entry) Clone() *Entry {
	c := *e
	if e.Fields != nil {
		c.Fields = append(make([]Field, 0, len(e.Fields)), e.Fields...)
	}
	return &c
}

// SetNDC attaches a nested diagnostic context to the entry.
func (e *Entry) SetNDC(ndc string) {
	e.NDC = ndc
	e.HasNDC = true
}

// GetCaller reports the caller skip frames above GetCaller itself, as
// runtime.Caller does.
func GetCaller(skip int) CallerInfo {
	var pcs [1]uintptr
	// +1 skips runtime.Callers
	if runtime.Callers(skip+1, pcs[:]) == 0 {
		return CallerInfo{}
	}

	frame, _ := runtime.CallersFrames(pcs[:]).Next()
	if frame.File == "" {
		return CallerInfo{}
	}

	return CallerInfo{
		File:      frame.File,
		ShortFile: filepath.Base(frame.File),
		Line:      frame.Line,
		Function:  frame.Function,
		Defined:   true,
	}
}
