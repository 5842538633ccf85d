// Package zaphandler lets go.uber.org/zap log through nloghtml handlers.
//
// NewCore returns a zapcore.Core that converts each zap entry into a
// core.Entry and passes it to a handler.Handler, so zap output can be
// rendered by HTMLFormatter, rotated by filehandler and so on:
//
//	fh, _ := filehandler.NewFileHandler(filehandler.FileConfig{
//	    Filename:  "app.html",
//	    Formatter: formatter.NewHTMLFormatter(formatter.HTMLConfig{}),
//	})
//	log := zaphandler.New(fh, zapcore.DebugLevel, zap.AddCaller())
//	defer zaphandler.Close(log)
//
// The logger name becomes the Logger column. Top-level string fields named
// "thread" and "ndc" fill the Thread column and the NDC row instead of
// becoming fields; ContextFields builds them from a context.Context.
package zaphandler
