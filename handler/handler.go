package handler

import (
	"bytes"
	"io"
	"time"

	"github.com/philipp01105/nloghtml/core"
	"github.com/philipp01105/nloghtml/formatter"
)

// Handler defines the interface for log handlers
type Handler interface {
	// Handle processes a log entry
	Handle(entry *core.Entry) error

	// Close closes the handler and releases resources
	Close() error
}

// StatsProvider is implemented by handlers that keep delivery statistics.
type StatsProvider interface {
	Stats() Snapshot
}

// WriteHeader writes the header of f to w if f is a formatter.Layout with
// a non-empty header. It returns the number of bytes written.
func WriteHeader(w io.Writer, f formatter.Formatter) (int, error) {
	layout, ok := f.(formatter.Layout)
	if !ok {
		return 0, nil
	}
	return writeLayoutPart(w, layout.AppendHeader)
}

// WriteFooter writes the footer of f to w if f is a formatter.Layout with
// a non-empty footer. It returns the number of bytes written.
func WriteFooter(w io.Writer, f formatter.Formatter) (int, error) {
	layout, ok := f.(formatter.Layout)
	if !ok {
		return 0, nil
	}
	return writeLayoutPart(w, layout.AppendFooter)
}

func writeLayoutPart(w io.Writer, appendPart func(*bytes.Buffer)) (int, error) {
	var buf bytes.Buffer
	appendPart(&buf)
	if buf.Len() == 0 {
		return 0, nil
	}
	return w.Write(buf.Bytes())
}

// NewStoppedTimer returns a timer that is stopped and drained, ready for
// Reset. Handlers keep one per instance for the Block overflow policy
// instead of allocating with time.After on every full queue.
func NewStoppedTimer() *time.Timer {
	t := time.NewTimer(time.Hour)
	if !t.Stop() {
		<-t.C
	}
	return t
}
