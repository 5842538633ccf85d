// Package consolehandler provides console output handlers that write
// formatted log entries to any io.Writer (default: os.Stdout).
//
//   - SyncConsoleHandler writes under a single lock before Handle returns.
//   - AsyncConsoleHandler writes from a background goroutine through a
//     handler.Queue with per-level OverflowPolicy.
//
// When the formatter is a formatter.Layout (HTMLFormatter), the header is
// written just before the first entry and the footer on Close, so the
// output is a complete document.
package consolehandler
