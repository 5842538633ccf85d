package formatter_test

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/philipp01105/nloghtml/core"
	"github.com/philipp01105/nloghtml/formatter"
)

func ExampleNewTextFormatter() {
	f := formatter.NewTextFormatter(formatter.Config{})

	entry := &core.Entry{
		Time:    time.Date(2026, 1, 15, 12, 0, 0, 0, time.UTC),
		Level:   core.InfoLevel,
		Logger:  "app",
		Message: "hello world",
	}

	out, _ := f.Format(entry)
	fmt.Print(string(out))
	// Output:
	// 2026-01-15T12:00:00Z [INFO] app: hello world
}

func ExampleNewJSONFormatter() {
	f := formatter.NewJSONFormatter(formatter.Config{})

	entry := &core.Entry{
		Time:    time.Date(2026, 1, 15, 12, 0, 0, 0, time.UTC),
		Level:   core.InfoLevel,
		Message: "request handled",
		Fields: []core.Field{
			{Key: "status", Int64: 200, Type: core.Int64Type},
		},
	}

	out, _ := f.Format(entry)
	fmt.Println(strings.Contains(string(out), `"level":"INFO"`))
	fmt.Println(strings.Contains(string(out), `"message":"request handled"`))
	// Output:
	// true
	// true
}

func ExampleHTMLFormatter_FormatEntry() {
	f := formatter.NewHTMLFormatter(formatter.HTMLConfig{})

	entry := &core.Entry{
		Time:    time.Date(2026, 1, 15, 12, 0, 0, 7000000, time.UTC),
		Level:   core.InfoLevel,
		Logger:  "app.http",
		Thread:  "main",
		Message: "GET /search?q=<b>",
	}

	var buf bytes.Buffer
	f.FormatEntry(entry, &buf)
	fmt.Print(buf.String())
	// Output:
	// <tr>
	// <td>2026-01-15 12:00:00,007</td>
	// <td title="main thread">main</td>
	// <td title="Level">INFO</td>
	// <td title="app.http logger">app.http</td>
	// <td title="Message">GET /search?q=&lt;b&gt;</td>
	// </tr>
}
