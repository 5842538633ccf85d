package consolehandler

import (
	"bytes"
	"io"
	"os"
	"sync"
	"time"

	"github.com/philipp01105/nloghtml/core"
	"github.com/philipp01105/nloghtml/formatter"
	"github.com/philipp01105/nloghtml/handler"
)

// consoleBase contains shared fields and methods for console handlers.
type consoleBase struct {
	writer          io.Writer
	formatter       formatter.Formatter
	bufferFormatter formatter.BufferFormatter
	// appendThrowable is set for layouts that leave error text to us
	appendThrowable bool
	stats           *handler.Stats

	mu            sync.Mutex // protects buf, writer and the layout state
	buf           bytes.Buffer
	headerWritten bool
	closed        bool // set by writeFooter; no entry may follow
}

func (b *consoleBase) init(cfg ConsoleConfig) {
	b.writer = cfg.Writer
	b.formatter = cfg.Formatter
	b.bufferFormatter, _ = cfg.Formatter.(formatter.BufferFormatter)
	b.appendThrowable = formatter.IgnoresThrowable(cfg.Formatter)
	b.stats = handler.NewStats()
	b.buf.Grow(256)
}

// write formats and writes an entry, emitting the layout header first if
// this is the first entry. Once the footer is out the document is complete
// and further entries are refused with os.ErrClosed.
func (b *consoleBase) write(entry *core.Entry) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return os.ErrClosed
	}
	if err := b.writeHeaderLocked(); err != nil {
		return err
	}

	b.buf.Reset()
	if b.bufferFormatter != nil {
		b.bufferFormatter.FormatEntry(entry, &b.buf)
	} else {
		data, err := b.formatter.Format(entry)
		if err != nil {
			return err
		}
		b.buf.Write(data)
	}
	if b.appendThrowable {
		formatter.AppendThrowable(&b.buf, entry)
	}

	_, err := b.writer.Write(b.buf.Bytes())
	if err == nil {
		b.stats.IncrementProcessed()
	}
	return err
}

func (b *consoleBase) writeHeaderLocked() error {
	if b.headerWritten {
		return nil
	}
	b.headerWritten = true
	_, err := handler.WriteHeader(b.writer, b.formatter)
	return err
}

// writeFooter closes the document opened by the header and stops further
// writes. Nothing is written if no entry was ever logged.
func (b *consoleBase) writeFooter() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return nil
	}
	b.closed = true
	if !b.headerWritten {
		return nil
	}
	_, err := handler.WriteFooter(b.writer, b.formatter)
	return err
}

// Stats returns a snapshot of the current statistics
func (b *consoleBase) Stats() handler.Snapshot {
	return b.stats.GetSnapshot()
}

// ConsoleConfig holds configuration for console handler
type ConsoleConfig struct {
	// Writer to write to (default: os.Stdout)
	Writer io.Writer
	// Formatter to use (default: TextFormatter). A formatter.Layout gets
	// its header written before the first entry and its footer on Close.
	Formatter formatter.Formatter
	// Async enables asynchronous logging (default: false)
	Async bool
	// BufferSize is the size of the async queue (default: 1000)
	BufferSize int
	// OverflowPolicy defines per-level overflow behavior (default: uses DefaultLevelPolicy)
	OverflowPolicy map[core.Level]handler.OverflowPolicy
	// BlockTimeout is the timeout for blocking overflow policy (default: 100ms)
	BlockTimeout time.Duration
	// DrainTimeout is the timeout for draining queue on Close (default: 5s)
	DrainTimeout time.Duration
}

// applyConsoleDefaults fills in zero-value fields with defaults.
func applyConsoleDefaults(cfg *ConsoleConfig) {
	if cfg.Writer == nil {
		cfg.Writer = os.Stdout
	}
	if cfg.Formatter == nil {
		cfg.Formatter = formatter.NewTextFormatter(formatter.Config{})
	}
}

// NewConsoleHandler creates a new console handler.
// Returns a SyncConsoleHandler when Async is false, or an AsyncConsoleHandler
// when Async is true. Both implement Handler and StatsProvider.
func NewConsoleHandler(cfg ConsoleConfig) handler.Handler {
	applyConsoleDefaults(&cfg)
	if cfg.Async {
		return newAsyncConsoleHandler(cfg)
	}
	return newSyncConsoleHandler(cfg)
}
