// Package logger is the public API of nloghtml. Most users only need to
// import this package.
//
// A Logger is immutable after construction. The handler, level, name,
// thread label and default fields are set once via the Builder, and every
// derived logger (With, Named, WithContext) is a copy. Loggers are safe
// for concurrent use without locking on the read path.
//
// The package initializes a default Logger (synchronous, InfoLevel, text
// format to stdout) in init(). The package-level functions Info, Error,
// Debugf, etc. delegate to it:
//
//	logger.Info("ready", logger.Int("port", 8080))
//
// An HTML log page is a Logger whose handler uses formatter.HTMLFormatter:
//
//	fh, _ := filehandler.NewFileHandler(filehandler.FileConfig{
//	    Filename:  "app.html",
//	    Formatter: formatter.NewHTMLFormatter(formatter.HTMLConfig{LocationInfo: true}),
//	})
//	log := logger.NewBuilder().
//	    WithHandler(fh).
//	    WithName("app").
//	    WithThread("main").
//	    WithCaller(true).
//	    Build()
//	defer log.Close()
//
// Each table row shows the logger name, which Named extends with dotted
// children ("app" then "app.db"), and the thread label. Go has no thread
// names, so the label is whatever WithThread or core.WithThread set. The
// nested diagnostic context (NDC) is pushed onto a context.Context with
// core.PushNDC and attached with WithContext:
//
//	ctx = core.PushNDC(ctx, "req=42")
//	log.WithContext(ctx).Warn("slow query")
//
// Level checks happen before any allocation, so filtered-out messages
// cost only a single integer comparison.
package logger
