// Package handler provides the Handler interface and the pieces shared by
// the built-in handlers.
//
// A Handler receives entries from a Logger and writes them somewhere.
// Handlers that can recycle entries as soon as Handle returns report so
// through CanRecycleEntry; the logger then returns the entry to the pool.
//
// Formatters that implement formatter.Layout (HTMLFormatter) produce a
// document rather than a stream of lines. WriteHeader and WriteFooter
// render the layout's header and footer; handlers call them when a
// destination is opened and closed.
//
// Asynchronous handlers push entries through a Queue. When the queue is
// full each level gets its OverflowPolicy: DropNewest (default for
// Debug/Info/Warn), DropOldest, or Block with a timeout after which the
// entry is written synchronously (default for Error and above). Dropped,
// blocked and processed counts are kept in Stats.
//
// Implementations:
//
//   - consolehandler writes to any io.Writer (default: stdout).
//   - filehandler writes to a file with rotation by size, age or interval.
//   - MultiHandler fans out a single entry to multiple child handlers.
//   - SlogHandler adapts a Handler to log/slog.Handler.
//   - zaphandler adapts a Handler to a zapcore.Core.
package handler
