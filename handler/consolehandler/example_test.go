package consolehandler_test

import (
	"io"
	"os"
	"time"

	"github.com/philipp01105/nloghtml/core"
	"github.com/philipp01105/nloghtml/formatter"
	"github.com/philipp01105/nloghtml/handler/consolehandler"
)

// Create a synchronous console handler writing plain text.
func ExampleNewConsoleHandler() {
	h := consolehandler.NewConsoleHandler(consolehandler.ConsoleConfig{
		Writer: io.Discard,
		Formatter: formatter.NewTextFormatter(formatter.Config{
			IncludeCaller: false,
		}),
	})
	defer h.Close()
}

// Create an async console handler with a custom buffer size.
func ExampleNewConsoleHandler_async() {
	h := consolehandler.NewConsoleHandler(consolehandler.ConsoleConfig{
		Writer:     io.Discard,
		Async:      true,
		BufferSize: 4096,
		Formatter:  formatter.NewJSONFormatter(formatter.Config{}),
	})
	defer h.Close()
}

// An HTML console handler emits the page header before the first row and
// the footer on Close.
func ExampleNewConsoleHandler_html() {
	h := consolehandler.NewConsoleHandler(consolehandler.ConsoleConfig{
		Writer:    os.Stdout,
		Formatter: formatter.NewHTMLFormatter(formatter.HTMLConfig{}),
	})

	h.Handle(&core.Entry{
		Time:    time.Date(2026, 1, 15, 12, 0, 0, 0, time.UTC),
		Level:   core.InfoLevel,
		Logger:  "app",
		Thread:  "main",
		Message: "hello",
	})
	h.Close()
}
