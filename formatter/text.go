package formatter

import (
	"bytes"
	"io"
	"strconv"
	"time"

	"github.com/philipp01105/nloghtml/core"
)

// TextFormatter formats log entries as human-readable text:
//
//	<time> [LEVEL] (thread) logger: [file:line] message key=value ndc=...
//
// The thread, logger and caller parts are omitted when empty.
type TextFormatter struct {
	Config
}

// NewTextFormatter creates a new text formatter
func NewTextFormatter(cfg Config) *TextFormatter {
	if cfg.TimestampFormat == "" {
		cfg.TimestampFormat = time.RFC3339
	}
	return &TextFormatter{Config: cfg}
}

// Format formats an entry as text
func (f *TextFormatter) Format(entry *core.Entry) ([]byte, error) {
	return formatCopy(func(buf *bytes.Buffer) { f.FormatEntry(entry, buf) }), nil
}

// FormatTo formats an entry and writes it directly to the writer
func (f *TextFormatter) FormatTo(entry *core.Entry, w io.Writer) error {
	return formatWrite(w, func(buf *bytes.Buffer) { f.FormatEntry(entry, buf) })
}

// pre-formatted level strings to avoid multiple WriteString calls
var levelBrackets = [...]string{
	core.DebugLevel: " [DEBUG] ",
	core.InfoLevel:  " [INFO] ",
	core.WarnLevel:  " [WARN] ",
	core.ErrorLevel: " [ERROR] ",
	core.FatalLevel: " [FATAL] ",
	core.PanicLevel: " [PANIC] ",
}

// FormatEntry writes the formatted entry into the given buffer
func (f *TextFormatter) FormatEntry(entry *core.Entry, buf *bytes.Buffer) {
	buf.Write(entry.Time.AppendFormat(buf.AvailableBuffer(), f.TimestampFormat))

	if entry.Level >= 0 && int(entry.Level) < len(levelBrackets) {
		buf.WriteString(levelBrackets[entry.Level])
	} else {
		buf.WriteString(" [UNKNOWN] ")
	}

	if entry.Thread != "" {
		buf.WriteByte('(')
		buf.WriteString(entry.Thread)
		buf.WriteString(") ")
	}
	if entry.Logger != "" {
		buf.WriteString(entry.Logger)
		buf.WriteString(": ")
	}

	if f.IncludeCaller && entry.Caller.Defined {
		buf.WriteByte('[')
		buf.WriteString(entry.Caller.ShortFile)
		buf.WriteByte(':')
		buf.Write(strconv.AppendInt(buf.AvailableBuffer(), int64(entry.Caller.Line), 10))
		buf.WriteString("] ")
	}

	buf.WriteString(entry.Message)

	for _, field := range entry.Fields {
		buf.WriteByte(' ')
		buf.WriteString(field.Key)
		buf.WriteByte('=')
		buf.Write(field.AppendValue(buf.AvailableBuffer()))
	}

	if entry.HasNDC {
		buf.WriteString(" ndc=")
		buf.Write(strconv.AppendQuote(buf.AvailableBuffer(), entry.NDC))
	}

	buf.WriteByte('\n')
}

// AppendHeader implements Layout; plain text has no header.
func (f *TextFormatter) AppendHeader(*bytes.Buffer) {}

// AppendFooter implements Layout; plain text has no footer.
func (f *TextFormatter) AppendFooter(*bytes.Buffer) {}

// ContentType implements Layout.
func (f *TextFormatter) ContentType() string { return "text/plain" }

// IgnoresThrowable implements Layout. Error and stacktrace fields are
// rendered inline like any other field.
func (f *TextFormatter) IgnoresThrowable() bool { return false }
