package formatter

import (
	"bytes"
	"io"
	"math"
	"strconv"
	"time"

	"github.com/philipp01105/nloghtml/core"
)

// JSONFormatter formats log entries as one JSON object per line. The
// logger, thread and ndc keys are only present when set, so the output
// stays compatible with consumers of the plain entry shape.
type JSONFormatter struct {
	Config
}

// NewJSONFormatter creates a new JSON formatter
func NewJSONFormatter(cfg Config) *JSONFormatter {
	if cfg.TimestampFormat == "" {
		cfg.TimestampFormat = time.RFC3339Nano
	}
	return &JSONFormatter{Config: cfg}
}

// Format formats an entry as JSON
func (f *JSONFormatter) Format(entry *core.Entry) ([]byte, error) {
	return formatCopy(func(buf *bytes.Buffer) { f.FormatEntry(entry, buf) }), nil
}

// FormatTo formats an entry as JSON and writes it directly to the writer
func (f *JSONFormatter) FormatTo(entry *core.Entry, w io.Writer) error {
	return formatWrite(w, func(buf *bytes.Buffer) { f.FormatEntry(entry, buf) })
}

// FormatEntry appends the JSON object for entry and a newline to buf
// (implements BufferFormatter). The object is built by hand so nothing is
// reflected or allocated per entry.
func (f *JSONFormatter) FormatEntry(entry *core.Entry, buf *bytes.Buffer) {
	buf.WriteString(`{"time":"`)
	buf.Write(entry.Time.AppendFormat(buf.AvailableBuffer(), f.TimestampFormat))
	buf.WriteString(`","level":"`)
	buf.WriteString(entry.Level.String())
	buf.WriteByte('"')

	if entry.Logger != "" {
		writeJSONMember(buf, "logger", entry.Logger)
	}
	if entry.Thread != "" {
		writeJSONMember(buf, "thread", entry.Thread)
	}
	writeJSONMember(buf, "message", entry.Message)
	if entry.HasNDC {
		writeJSONMember(buf, "ndc", entry.NDC)
	}

	if f.IncludeCaller && entry.Caller.Defined {
		buf.WriteString(`,"caller":{"file":`)
		writeJSONString(buf, entry.Caller.ShortFile)
		buf.WriteString(`,"line":`)
		buf.Write(strconv.AppendInt(buf.AvailableBuffer(), int64(entry.Caller.Line), 10))
		if entry.Caller.Function != "" {
			writeJSONMember(buf, "function", entry.Caller.Function)
		}
		buf.WriteByte('}')
	}

	for _, field := range entry.Fields {
		buf.WriteByte(',')
		writeJSONString(buf, field.Key)
		buf.WriteByte(':')
		writeJSONValue(buf, field)
	}

	buf.WriteString("}\n")
}

// writeJSONMember writes ,"key":"value" with value escaped. Keys are
// trusted constants.
func writeJSONMember(buf *bytes.Buffer, key, value string) {
	buf.WriteString(`,"`)
	buf.WriteString(key)
	buf.WriteString(`":`)
	writeJSONString(buf, value)
}

const hexDigits = "0123456789abcdef"

// writeJSONString writes s as a quoted JSON string. Only the quote, the
// backslash and control bytes need escaping; UTF-8 passes through.
func writeJSONString(buf *bytes.Buffer, s string) {
	buf.WriteByte('"')
	last := 0
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c >= 0x20 && c != '"' && c != '\\' {
			continue
		}
		buf.WriteString(s[last:i])
		last = i + 1
		switch c {
		case '"', '\\':
			buf.WriteByte('\\')
			buf.WriteByte(c)
		case '\n':
			buf.WriteString(`\n`)
		case '\r':
			buf.WriteString(`\r`)
		case '\t':
			buf.WriteString(`\t`)
		default:
			buf.WriteString(`\u00`)
			buf.WriteByte(hexDigits[c>>4])
			buf.WriteByte(hexDigits[c&0xf])
		}
	}
	buf.WriteString(s[last:])
	buf.WriteByte('"')
}

// writeJSONValue writes the value of field. Numbers and booleans are bare,
// durations are nanoseconds, everything else is a string.
func writeJSONValue(buf *bytes.Buffer, field core.Field) {
	switch field.Type {
	case core.IntType, core.Int64Type, core.DurationType:
		buf.Write(strconv.AppendInt(buf.AvailableBuffer(), field.Int64, 10))
	case core.Uint64Type:
		buf.Write(strconv.AppendUint(buf.AvailableBuffer(), uint64(field.Int64), 10))
	case core.Float64Type:
		if math.IsNaN(field.Float64) || math.IsInf(field.Float64, 0) {
			// Not representable as a JSON number
			writeJSONString(buf, strconv.FormatFloat(field.Float64, 'f', -1, 64))
			return
		}
		buf.Write(strconv.AppendFloat(buf.AvailableBuffer(), field.Float64, 'f', -1, 64))
	case core.BoolType:
		buf.Write(strconv.AppendBool(buf.AvailableBuffer(), field.Int64 == 1))
	case core.StringType, core.ErrorType:
		writeJSONString(buf, field.Str)
	default:
		// Times and Any values use their text form
		writeJSONString(buf, field.StringValue())
	}
}

// AppendHeader implements Layout; JSON lines have no header.
func (f *JSONFormatter) AppendHeader(*bytes.Buffer) {}

// AppendFooter implements Layout; JSON lines have no footer.
func (f *JSONFormatter) AppendFooter(*bytes.Buffer) {}

// ContentType implements Layout.
func (f *JSONFormatter) ContentType() string { return "application/json" }

// IgnoresThrowable implements Layout. Error and stacktrace fields are
// written as members of the object.
func (f *JSONFormatter) IgnoresThrowable() bool { return false }
