package formatter

import (
	"bytes"
	"strings"

	"github.com/philipp01105/nloghtml/core"
)

// HasThrowable reports whether entry carries error text: a non-empty error
// field or a core.StacktraceKey string field.
func HasThrowable(entry *core.Entry) bool {
	for i := range entry.Fields {
		if isThrowableField(&entry.Fields[i]) {
			return true
		}
	}
	return false
}

func isThrowableField(f *core.Field) bool {
	switch f.Type {
	case core.ErrorType:
		return f.Str != ""
	case core.StringType:
		return f.Key == core.StacktraceKey && f.Str != ""
	}
	return false
}

// eachThrowableLine calls fn for every line of error text in entry. Error
// fields come first as "key: message", stack traces after them.
func eachThrowableLine(entry *core.Entry, fn func(line string)) {
	for i := range entry.Fields {
		if f := &entry.Fields[i]; f.Type == core.ErrorType && f.Str != "" {
			eachLine(f.Key+": "+f.Str, fn)
		}
	}
	for i := range entry.Fields {
		if f := &entry.Fields[i]; f.Type == core.StringType && f.Key == core.StacktraceKey {
			eachLine(f.Str, fn)
		}
	}
}

func eachLine(s string, fn func(line string)) {
	for s != "" {
		line, rest, _ := strings.Cut(s, "\n")
		fn(strings.TrimSuffix(line, "\r"))
		s = rest
	}
}

// AppendThrowable appends the error text of entry to buf as plain lines.
// Handlers use it after the formatted entry when the layout reports that
// it ignores throwables. It reports whether anything was written.
func AppendThrowable(buf *bytes.Buffer, entry *core.Entry) bool {
	if !HasThrowable(entry) {
		return false
	}
	eachThrowableLine(entry, func(line string) {
		buf.WriteString(line)
		buf.WriteByte('\n')
	})
	return true
}

// IgnoresThrowable reports whether f is a Layout that leaves error text to
// its caller. Formatters that are not layouts are assumed to render
// whatever fields they support.
func IgnoresThrowable(f Formatter) bool {
	l, ok := f.(Layout)
	return ok && l.IgnoresThrowable()
}
