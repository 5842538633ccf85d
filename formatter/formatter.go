package formatter

import (
	"bytes"
	"io"
	"sort"
	"strings"
	"sync"

	"github.com/philipp01105/nloghtml/core"
)

// Formatter defines the interface for log formatters
type Formatter interface {
	// Format formats a log entry into bytes
	Format(entry *core.Entry) ([]byte, error)
}

// WriterFormatter is an optional interface that formatters can implement
// to write directly to a writer without intermediate byte slice allocation.
type WriterFormatter interface {
	// FormatTo formats a log entry and writes it directly to the writer
	FormatTo(entry *core.Entry, w io.Writer) error
}

// BufferFormatter is an optional interface that formatters can implement
// to format directly into a caller-provided buffer, avoiding internal
// buffer pool overhead. FormatEntry appends; it never resets buf.
type BufferFormatter interface {
	// FormatEntry formats a log entry into the given buffer.
	FormatEntry(entry *core.Entry, buf *bytes.Buffer)
}

// Layout is implemented by formatters whose output forms a document: the
// header is written once before the first entry and the footer once after
// the last one.
type Layout interface {
	AppendHeader(buf *bytes.Buffer)
	AppendFooter(buf *bytes.Buffer)
	// ContentType is the MIME type of the produced document.
	ContentType() string
	// IgnoresThrowable reports whether the layout leaves error details
	// out of the formatted entry. When true, a handler that wants error
	// and stack trace text must append it itself (see AppendThrowable);
	// when false the layout renders it.
	IgnoresThrowable() bool
}

// OptionSetter accepts string options by name. Names are matched
// case-insensitively and unknown names are ignored.
type OptionSetter interface {
	SetOption(name, value string)
}

// ApplyOptions feeds every option in opts to f in name order. It reports
// false when f does not accept options.
func ApplyOptions(f Formatter, opts map[string]string) bool {
	setter, ok := f.(OptionSetter)
	if !ok {
		return false
	}
	names := make([]string, 0, len(opts))
	for name := range opts {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		setter.SetOption(name, opts[name])
	}
	return true
}

// Config holds common formatter configuration
type Config struct {
	// IncludeCaller enables caller information in log output
	IncludeCaller bool
	// TimestampFormat specifies the time format (empty for RFC3339)
	TimestampFormat string
}

// SetOption implements OptionSetter for the text and JSON formatters.
// Recognized names are "includecaller" (alias "locationinfo") and
// "timestampformat".
func (c *Config) SetOption(name, value string) {
	switch strings.ToLower(name) {
	case "includecaller", "locationinfo":
		c.IncludeCaller = toBoolean(value, false)
	case "timestampformat":
		if value != "" {
			c.TimestampFormat = value
		}
	}
}

// bufferPool is a pool of bytes.Buffer to reduce allocations
var bufferPool = &sync.Pool{
	New: func() interface{} {
		b := new(bytes.Buffer)
		b.Grow(256)
		return b
	},
}

func getBuffer() *bytes.Buffer {
	buf := bufferPool.Get().(*bytes.Buffer)
	buf.Reset()
	return buf
}

func putBuffer(buf *bytes.Buffer) {
	if buf.Cap() > 64*1024 { // Don't keep very large buffers
		return
	}
	bufferPool.Put(buf)
}

// formatCopy runs fn into a pooled buffer and returns a copy of the result.
func formatCopy(fn func(buf *bytes.Buffer)) []byte {
	buf := getBuffer()
	defer putBuffer(buf)

	fn(buf)

	result := make([]byte, buf.Len())
	copy(result, buf.Bytes())
	return result
}

// formatWrite runs fn into a pooled buffer and writes it to w in one call.
func formatWrite(w io.Writer, fn func(buf *bytes.Buffer)) error {
	buf := getBuffer()
	fn(buf)
	_, err := w.Write(buf.Bytes())
	putBuffer(buf)
	return err
}
