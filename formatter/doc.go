// Package formatter defines how log entries are serialized into bytes.
//
// It exposes three entry-level interfaces: Formatter, which returns a
// []byte, WriterFormatter, which writes directly to an io.Writer, and
// BufferFormatter, which appends to a caller-owned bytes.Buffer. Handlers
// check for the optional ones at construction time and prefer them.
//
// Formatters whose output is a document rather than a stream of lines
// also implement Layout, which adds a header and footer around the
// entries. HTMLFormatter is the main one: every entry becomes a table
// row, AppendHeader opens the page and the table, and AppendFooter closes
// them. All text taken from an entry is escaped with AppendEscapingTags,
// so a log message can never inject markup into the page.
//
// Formatters accept string options through OptionSetter, which lets
// configuration files drive them without knowing their concrete types:
//
//	f := formatter.NewHTMLFormatter(formatter.HTMLConfig{})
//	formatter.ApplyOptions(f, map[string]string{
//	    "title":        "nightly run",
//	    "locationinfo": "true",
//	})
//
// The built-in formatters use a pooled bytes.Buffer and Append-style
// functions (time.AppendFormat, strconv.AppendInt). Buffers larger than
// 64 KiB are not returned to the pool.
package formatter
