package main

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/titanous/json5"

	"github.com/philipp01105/nloghtml/core"
	"github.com/philipp01105/nloghtml/formatter"
)

const maxLineSize = 1 << 20

// converter renders decoded log lines as table rows.
type converter struct {
	formatter *formatter.HTMLFormatter
	strict    bool
	warn      io.Writer
	rows      int
	skipped   int
}

// convert writes one row per decodable line of r to w. Blank lines are
// ignored. Other undecodable lines are reported to warn and skipped, or
// abort the run in strict mode.
func (c *converter) convert(name string, r io.Reader, w io.Writer) error {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	var buf bytes.Buffer
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := bytes.TrimSpace(sc.Bytes())
		if len(line) == 0 {
			continue
		}

		entry, err := decodeLine(line)
		if err != nil {
			if c.strict {
				return fmt.Errorf("%s:%d: %w", name, lineNo, err)
			}
			c.skipped++
			fmt.Fprintf(c.warn, "%s:%d: skipping line: %v\n", name, lineNo, err)
			continue
		}

		buf.Reset()
		c.formatter.FormatEntry(entry, &buf)
		core.PutEntry(entry)
		if _, err := w.Write(buf.Bytes()); err != nil {
			return err
		}
		c.rows++
	}
	if err := sc.Err(); err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	return nil
}

// decodeLine decodes one JSON (or JSON5) log object. Besides the keys the
// JSON formatter writes it accepts the short names zap's production
// encoder uses ("ts", "msg", "caller" as "file:line").
func decodeLine(line []byte) (*core.Entry, error) {
	var obj map[string]interface{}
	if err := json5.Unmarshal(line, &obj); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	if obj == nil {
		return nil, fmt.Errorf("decode: not an object")
	}

	entry := core.GetEntry()
	ok := false
	defer func() {
		if !ok {
			core.PutEntry(entry)
		}
	}()

	t, err := decodeTime(first(obj, "time", "ts"))
	if err != nil {
		return nil, err
	}
	entry.Time = t

	level, _ := first(obj, "level").(string)
	entry.Level = core.ParseLevel(level)

	msg, found := first(obj, "message", "msg").(string)
	if !found {
		return nil, fmt.Errorf("missing message")
	}
	entry.Message = msg

	entry.Logger, _ = first(obj, "logger").(string)
	entry.Thread, _ = first(obj, "thread").(string)
	if ndc, found := first(obj, "ndc").(string); found {
		entry.SetNDC(ndc)
	}
	entry.Caller = decodeCaller(first(obj, "caller"))

	// Error text renders as the row's throwable cell
	if errText, _ := obj["error"].(string); errText != "" {
		entry.Fields = append(entry.Fields, core.Field{Key: "error", Type: core.ErrorType, Str: errText})
	}
	if stack, _ := obj[core.StacktraceKey].(string); stack != "" {
		entry.Fields = append(entry.Fields, core.String(core.StacktraceKey, stack))
	}

	ok = true
	return entry, nil
}

func first(obj map[string]interface{}, keys ...string) interface{} {
	for _, k := range keys {
		if v, found := obj[k]; found {
			return v
		}
	}
	return nil
}

var timeLayouts = []string{time.RFC3339Nano, formatter.ISO8601Layout}

func decodeTime(v interface{}) (time.Time, error) {
	switch t := v.(type) {
	case string:
		for _, layout := range timeLayouts {
			if parsed, err := time.Parse(layout, t); err == nil {
				return parsed, nil
			}
		}
		return time.Time{}, fmt.Errorf("unrecognized time %q", t)
	case float64:
		// Epoch seconds, as zap's production encoder writes them
		sec := int64(t)
		return time.Unix(sec, int64((t-float64(sec))*1e9)), nil
	case nil:
		return time.Time{}, fmt.Errorf("missing time")
	default:
		return time.Time{}, fmt.Errorf("unrecognized time %v", t)
	}
}

func decodeCaller(v interface{}) core.CallerInfo {
	var info core.CallerInfo
	switch c := v.(type) {
	case map[string]interface{}:
		info.File, _ = c["file"].(string)
		info.Function, _ = c["function"].(string)
		if line, ok := c["line"].(float64); ok {
			info.Line = int(line)
		}
	case string:
		// "pkg/file.go:42"
		info.File = c
		if i := strings.LastIndexByte(c, ':'); i > 0 {
			if line, err := strconv.Atoi(c[i+1:]); err == nil {
				info.File = c[:i]
				info.Line = line
			}
		}
	default:
		return info
	}
	if info.File == "" {
		return core.CallerInfo{}
	}
	info.ShortFile = filepath.Base(info.File)
	info.Defined = true
	return info
}
