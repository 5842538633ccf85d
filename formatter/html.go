package formatter

import (
	"bytes"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/philipp01105/nloghtml/core"
)

// DefaultHTMLTitle is the page title used when none is configured.
const DefaultHTMLTitle = "Log Messages"

const eol = "\n"

// Header cells, in column order. The File:Line column only exists with
// location info; everything that depends on the column count goes
// through HTMLFormatter.columns.
var (
	htmlColumns         = []string{"Time", "Thread", "Level", "Logger", "Message"}
	htmlLocationColumns = []string{"Time", "Thread", "Level", "Logger", "File:Line", "Message"}
)

// HTMLConfig configures an HTMLFormatter.
type HTMLConfig struct {
	// LocationInfo adds a File:Line column (default: false)
	LocationInfo bool
	// Title is the page title (default: DefaultHTMLTitle)
	Title string
	// Now supplies the session start time printed by AppendHeader
	// (default: time.Now)
	Now func() time.Time
}

// HTMLFormatter renders each entry as a row of an HTML table. A complete
// page is AppendHeader, any number of entries, then AppendFooter.
//
// Every text column is escaped with AppendEscapingTags. Timestamps are
// always printed in UTC so pages produced on different hosts compare
// directly.
//
// Option changes (SetOption, SetLocationInfo, SetTitle) must not run
// concurrently with formatting; formatting itself may be concurrent.
type HTMLFormatter struct {
	locationInfo bool
	title        string
	dateFormat   *ISO8601DateFormat
	now          func() time.Time

	// expectedRowLength is twice the size of a representative row
	// without message. It only sizes buffers, it never limits output.
	expectedRowLength int
}

// NewHTMLFormatter creates a new HTML formatter
func NewHTMLFormatter(cfg HTMLConfig) *HTMLFormatter {
	if cfg.Title == "" {
		cfg.Title = DefaultHTMLTitle
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	f := &HTMLFormatter{
		locationInfo: cfg.LocationInfo,
		title:        cfg.Title,
		dateFormat:   NewISO8601DateFormat(),
		now:          cfg.Now,
	}
	f.expectedRowLength = f.formattedRowLength() * 2
	return f
}

// SetOption implements OptionSetter. Recognized names are "title" and
// "locationinfo"; others are ignored.
func (f *HTMLFormatter) SetOption(name, value string) {
	switch strings.ToLower(name) {
	case "title":
		f.SetTitle(value)
	case "locationinfo":
		f.SetLocationInfo(toBoolean(value, false))
	}
}

// SetLocationInfo toggles the File:Line column.
func (f *HTMLFormatter) SetLocationInfo(enabled bool) {
	f.locationInfo = enabled
	f.expectedRowLength = f.formattedRowLength() * 2
}

// LocationInfo reports whether the File:Line column is rendered.
func (f *HTMLFormatter) LocationInfo() bool {
	return f.locationInfo
}

// SetTitle sets the page title. The title only affects the header, so the
// row size hint is left alone.
func (f *HTMLFormatter) SetTitle(title string) {
	f.title = title
}

// Title returns the configured page title, unescaped.
func (f *HTMLFormatter) Title() string {
	return f.title
}

// ExpectedRowLength returns the buffer size hint for one row, excluding
// the message text.
func (f *HTMLFormatter) ExpectedRowLength() int {
	return f.expectedRowLength
}

// ColumnCount returns the number of table columns, which is also the
// colspan of the NDC row.
func (f *HTMLFormatter) ColumnCount() int {
	return len(f.columns())
}

func (f *HTMLFormatter) columns() []string {
	if f.locationInfo {
		return htmlLocationColumns
	}
	return htmlColumns
}

// ContentType implements Layout.
func (f *HTMLFormatter) ContentType() string {
	return "text/html"
}

// IgnoresThrowable implements Layout. Error and stack trace text is rendered
// in a row of its own below the entry.
func (f *HTMLFormatter) IgnoresThrowable() bool {
	return false
}

// Format formats an entry as an HTML table row
func (f *HTMLFormatter) Format(entry *core.Entry) ([]byte, error) {
	return formatCopy(func(buf *bytes.Buffer) { f.FormatEntry(entry, buf) }), nil
}

// FormatTo formats an entry and writes it directly to the writer
func (f *HTMLFormatter) FormatTo(entry *core.Entry, w io.Writer) error {
	return formatWrite(w, func(buf *bytes.Buffer) { f.FormatEntry(entry, buf) })
}

// FormatEntry appends the row for entry to buf (implements BufferFormatter).
func (f *HTMLFormatter) FormatEntry(entry *core.Entry, buf *bytes.Buffer) {
	buf.Grow(f.expectedRowLength + len(entry.Message))

	buf.WriteString(eol + "<tr>" + eol + "<td>")
	buf.Write(f.dateFormat.AppendFormat(buf.AvailableBuffer(), entry.Time))
	buf.WriteString("</td>" + eol)

	buf.WriteString(`<td title="`)
	AppendEscapingTags(buf, entry.Thread)
	buf.WriteString(` thread">`)
	AppendEscapingTags(buf, entry.Thread)
	buf.WriteString("</td>" + eol)

	buf.WriteString(`<td title="Level">`)
	switch {
	case entry.Level == core.DebugLevel:
		buf.WriteString(`<font color="#339933">`)
		AppendEscapingTags(buf, entry.Level.String())
		buf.WriteString(`</font>`)
	case entry.Level >= core.WarnLevel:
		buf.WriteString(`<font color="#993300"><strong>`)
		AppendEscapingTags(buf, entry.Level.String())
		buf.WriteString(`</strong></font>`)
	default:
		AppendEscapingTags(buf, entry.Level.String())
	}
	buf.WriteString("</td>" + eol)

	buf.WriteString(`<td title="`)
	AppendEscapingTags(buf, entry.Logger)
	buf.WriteString(` logger">`)
	AppendEscapingTags(buf, entry.Logger)
	buf.WriteString("</td>" + eol)

	if f.locationInfo {
		buf.WriteString("<td>")
		AppendEscapingTags(buf, locationFile(entry.Caller))
		buf.WriteByte(':')
		if entry.Caller.Line != 0 {
			buf.Write(strconv.AppendInt(buf.AvailableBuffer(), int64(entry.Caller.Line), 10))
		}
		buf.WriteString("</td>" + eol)
	}

	buf.WriteString(`<td title="Message">`)
	AppendEscapingTags(buf, entry.Message)
	buf.WriteString("</td>" + eol + "</tr>" + eol)

	if entry.HasNDC {
		buf.WriteString(`<tr><td bgcolor="#EEEEEE" style="font-size : xx-small;" colspan="`)
		buf.Write(strconv.AppendInt(buf.AvailableBuffer(), int64(f.ColumnCount()), 10))
		buf.WriteString(`" title="Nested Diagnostic Context">NDC: `)
		AppendEscapingTags(buf, entry.NDC)
		buf.WriteString("</td></tr>" + eol)
	}

	if HasThrowable(entry) {
		f.appendThrowableRow(entry, buf)
	}
}

// appendThrowableRow renders error fields and the stack trace as one cell
// spanning the table, a line per <br>.
func (f *HTMLFormatter) appendThrowableRow(entry *core.Entry, buf *bytes.Buffer) {
	buf.WriteString(`<tr><td bgcolor="#993300" style="color:White; font-size : xx-small;" colspan="`)
	buf.Write(strconv.AppendInt(buf.AvailableBuffer(), int64(f.ColumnCount()), 10))
	buf.WriteString(`">`)
	first := true
	eachThrowableLine(entry, func(line string) {
		if !first {
			buf.WriteString(eol + "<br>&nbsp;&nbsp;&nbsp;&nbsp;")
		}
		first = false
		AppendEscapingTags(buf, line)
	})
	buf.WriteString("</td></tr>" + eol)
}

// locationFile prefers the short file name the logger captured.
func locationFile(c core.CallerInfo) string {
	if c.ShortFile != "" {
		return c.ShortFile
	}
	return c.File
}

// AppendHeader writes the document prologue up to and including the
// table's header row (implements Layout).
func (f *HTMLFormatter) AppendHeader(buf *bytes.Buffer) {
	buf.WriteString(`<!DOCTYPE HTML PUBLIC "-//W3C//DTD HTML 4.01 Transitional//EN" "http://www.w3.org/TR/html4/loose.dtd">` + eol)
	buf.WriteString("<html>" + eol + "<head>" + eol + "<title>")
	AppendEscapingTags(buf, f.title)
	buf.WriteString("</title>" + eol)
	buf.WriteString(`<style type="text/css">` + eol + "<!--" + eol)
	buf.WriteString("body, table {font-family: arial,sans-serif; font-size: x-small;}" + eol)
	buf.WriteString("th {background: #336699; color: #FFFFFF; text-align: left;}" + eol)
	buf.WriteString("-->" + eol + "</style>" + eol + "</head>" + eol)
	buf.WriteString(`<body bgcolor="#FFFFFF" topmargin="6" leftmargin="6">` + eol)
	buf.WriteString(`<hr size="1" noshade>` + eol)
	buf.WriteString("Log session start time ")
	buf.Write(f.dateFormat.AppendFormat(buf.AvailableBuffer(), f.now()))
	buf.WriteString("<br>" + eol + "<br>" + eol)
	buf.WriteString(`<table cellspacing="0" cellpadding="4" border="1" bordercolor="#224466" width="100%">` + eol)
	buf.WriteString("<tr>" + eol)
	for _, col := range f.columns() {
		buf.WriteString("<th>")
		buf.WriteString(col)
		buf.WriteString("</th>" + eol)
	}
	buf.WriteString("</tr>" + eol)
}

// AppendFooter closes the table and the document (implements Layout).
func (f *HTMLFormatter) AppendFooter(buf *bytes.Buffer) {
	buf.WriteString("</table>" + eol + "<br>" + eol + "</body></html>")
}

// formattedRowLength measures the row of a representative entry with an
// empty message under the current settings.
func (f *HTMLFormatter) formattedRowLength() int {
	var buf bytes.Buffer
	f.FormatEntry(representativeEntry(), &buf)
	return buf.Len()
}

func representativeEntry() *core.Entry {
	return &core.Entry{
		Time:   time.Unix(0, 0),
		Level:  core.DebugLevel,
		Logger: "example.logger",
		Thread: "main",
		Caller: core.CallerInfo{
			File:      "example.go",
			ShortFile: "example.go",
			Line:      100,
			Defined:   true,
		},
	}
}
