package filehandler

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/philipp01105/nloghtml/core"
	"github.com/philipp01105/nloghtml/formatter"
	"github.com/philipp01105/nloghtml/handler"
)

// backupTimeLayout names rotated files. Nanoseconds keep names unique and
// make lexical order match rotation order.
const backupTimeLayout = "2006-01-02T15-04-05.000000000"

// rename is os.Rename, replaceable in tests.
var rename = os.Rename

// fileBase contains shared fields and methods for file handlers.
type fileBase struct {
	filename        string
	file            *os.File
	bufWriter       *bufio.Writer
	formatter       formatter.Formatter
	bufferFormatter formatter.BufferFormatter
	appendThrowable bool
	mu              sync.Mutex
	buf             bytes.Buffer
	maxSize         int64
	maxAge          time.Duration
	maxBackups      int
	rotateInterval  time.Duration
	currentSize     int64
	lastRotateTime  time.Time
	hasRotation     bool
	stats           *handler.Stats
}

// write formats and writes an entry
func (b *fileBase) write(entry *core.Entry) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.file == nil {
		return os.ErrClosed
	}
	// A failed rotation still leaves a document open to write into;
	// the entry goes there and the rotation error is reported with it.
	rotateErr := b.rotateIfNeeded()
	if b.file == nil {
		return rotateErr
	}

	b.buf.Reset()
	if b.bufferFormatter != nil {
		b.bufferFormatter.FormatEntry(entry, &b.buf)
	} else {
		data, err := b.formatter.Format(entry)
		if err != nil {
			return errors.Join(rotateErr, err)
		}
		b.buf.Write(data)
	}
	if b.appendThrowable {
		formatter.AppendThrowable(&b.buf, entry)
	}

	n, err := b.bufWriter.Write(b.buf.Bytes())
	b.currentSize += int64(n)
	if err == nil {
		b.stats.IncrementProcessed()
	}
	return errors.Join(rotateErr, err)
}

// writeHeader starts a new document in an empty file.
func (b *fileBase) writeHeader() error {
	n, err := handler.WriteHeader(b.bufWriter, b.formatter)
	b.currentSize += int64(n)
	return err
}

// writeFooter ends the document in the current file.
func (b *fileBase) writeFooter() error {
	n, err := handler.WriteFooter(b.bufWriter, b.formatter)
	b.currentSize += int64(n)
	return err
}

// rotateIfNeeded checks and performs rotation if needed
func (b *fileBase) rotateIfNeeded() error {
	if !b.hasRotation {
		return nil
	}

	needRotate := false

	// Check size-based rotation
	if b.maxSize > 0 && b.currentSize >= b.maxSize {
		needRotate = true
	}

	// Check time-based rotation (by age)
	if b.maxAge > 0 && time.Since(b.lastRotateTime) >= b.maxAge {
		needRotate = true
	}

	// Check interval-based rotation
	if b.rotateInterval > 0 && time.Since(b.lastRotateTime) >= b.rotateInterval {
		needRotate = true
	}

	if !needRotate {
		return nil
	}

	return b.rotate()
}

// rotate moves the current file aside under a timestamp suffix and starts
// a new document under the original name. The footer goes through the old
// descriptor after the rename, so a failed rename leaves the current
// document open and untouched. If the file was removed from under us its
// document is finished and a fresh one started.
func (b *fileBase) rotate() error {
	if err := b.bufWriter.Flush(); err != nil {
		return err
	}

	rotatedName := b.filename + "." + time.Now().Format(backupTimeLayout)
	if err := rename(b.filename, rotatedName); err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			// Keep writing the current document; retry at the next
			// threshold instead of on every entry.
			b.lastRotateTime = time.Now()
			b.currentSize = 0
			return fmt.Errorf("filehandler: rotate %s: %w", b.filename, err)
		}
		rotatedName = ""
	}

	finishErr := b.finishFile()
	if rotatedName != "" && b.maxBackups > 0 {
		b.cleanupOldBackups()
	}
	return errors.Join(finishErr, b.openFresh())
}

// finishFile ends the current document and closes its descriptor.
func (b *fileBase) finishFile() error {
	file := b.file
	b.file = nil
	err := errors.Join(b.writeFooter(), b.bufWriter.Flush(), file.Sync())
	return errors.Join(err, file.Close())
}

// openFresh starts a new, empty document under the handler's file name.
func (b *fileBase) openFresh() error {
	file, err := os.OpenFile(b.filename, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return fmt.Errorf("filehandler: reopen %s: %w", b.filename, err)
	}
	b.file = file
	b.bufWriter.Reset(file)
	b.currentSize = 0
	b.lastRotateTime = time.Now()
	return b.writeHeader()
}

// backups returns the rotated files of filename, oldest first.
func backups(filename string) ([]string, error) {
	base := filepath.Base(filename)
	matches, err := filepath.Glob(filepath.Join(filepath.Dir(filename), base+".*"))
	if err != nil {
		return nil, err
	}

	var out []string
	for _, match := range matches {
		suffix := strings.TrimPrefix(filepath.Base(match), base+".")
		if _, err := time.Parse(backupTimeLayout, suffix); err == nil {
			out = append(out, match)
		}
	}
	sort.Strings(out)
	return out, nil
}

// cleanupOldBackups removes old backup files based on MaxBackups
func (b *fileBase) cleanupOldBackups() {
	files, err := backups(b.filename)
	if err != nil || len(files) <= b.maxBackups {
		return
	}
	for _, file := range files[:len(files)-b.maxBackups] {
		if err := os.Remove(file); err != nil {
			return
		}
	}
}

// Stats returns a snapshot of the current statistics
func (b *fileBase) Stats() handler.Snapshot {
	return b.stats.GetSnapshot()
}

// Sync flushes buffered entries to disk without ending the document.
func (b *fileBase) Sync() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.file == nil {
		return nil
	}
	if err := b.bufWriter.Flush(); err != nil {
		return err
	}
	return b.file.Sync()
}

// closeFile writes the footer, then flushes, syncs and closes the file.
func (b *fileBase) closeFile() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.file == nil {
		return nil
	}
	return b.finishFile()
}

// FileConfig holds configuration for file handler
type FileConfig struct {
	// Filename is the path to the log file
	Filename string
	// Formatter to use (default: TextFormatter). A formatter.Layout gets
	// its header at the start of every new file and its footer at the end.
	Formatter formatter.Formatter
	// Async enables asynchronous logging (default: false)
	Async bool
	// BufferSize is the size of the async queue (default: 1000)
	BufferSize int
	// MaxSize is the maximum size in bytes before rotation (0 = no size rotation)
	MaxSize int64
	// MaxAge is the maximum age before rotation (0 = no time rotation)
	MaxAge time.Duration
	// MaxBackups is the maximum number of old log files to retain (0 = keep all)
	MaxBackups int
	// RotateInterval is the interval for time-based rotation (0 = no interval rotation)
	RotateInterval time.Duration
	// OverflowPolicy defines per-level overflow behavior (default: uses DefaultLevelPolicy)
	OverflowPolicy map[core.Level]handler.OverflowPolicy
	// BlockTimeout is the timeout for blocking overflow policy (default: 100ms)
	BlockTimeout time.Duration
	// DrainTimeout is the timeout for draining queue on Close (default: 5s)
	DrainTimeout time.Duration
}

// applyFileDefaults fills in zero-value fields with defaults.
func applyFileDefaults(cfg *FileConfig) {
	if cfg.Formatter == nil {
		cfg.Formatter = formatter.NewTextFormatter(formatter.Config{})
	}
}

// initFileBase initializes a fileBase in place with the given config and
// opened file. A document header is written if the file is empty.
func initFileBase(b *fileBase, cfg FileConfig, file *os.File, fileSize int64) error {
	b.filename = cfg.Filename
	b.file = file
	b.bufWriter = bufio.NewWriterSize(file, 4096)
	b.formatter = cfg.Formatter
	b.bufferFormatter, _ = cfg.Formatter.(formatter.BufferFormatter)
	b.appendThrowable = formatter.IgnoresThrowable(cfg.Formatter)
	b.maxSize = cfg.MaxSize
	b.maxAge = cfg.MaxAge
	b.maxBackups = cfg.MaxBackups
	b.rotateInterval = cfg.RotateInterval
	b.currentSize = fileSize
	b.lastRotateTime = time.Now()
	b.hasRotation = cfg.MaxSize > 0 || cfg.MaxAge > 0 || cfg.RotateInterval > 0
	b.stats = handler.NewStats()
	b.buf.Grow(256)

	if fileSize == 0 {
		return b.writeHeader()
	}
	return nil
}

// NewFileHandler creates a new file handler.
// Returns a SyncFileHandler when Async is false, or an AsyncFileHandler
// when Async is true. Both implement Handler and StatsProvider.
func NewFileHandler(cfg FileConfig) (handler.Handler, error) {
	if cfg.Filename == "" {
		return nil, errors.New("filehandler: filename is required")
	}
	applyFileDefaults(&cfg)

	if err := os.MkdirAll(filepath.Dir(cfg.Filename), 0755); err != nil {
		return nil, fmt.Errorf("filehandler: create directory: %w", err)
	}

	file, err := os.OpenFile(cfg.Filename, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("filehandler: open: %w", err)
	}

	info, err := file.Stat()
	if err != nil {
		return nil, errors.Join(fmt.Errorf("filehandler: stat: %w", err), file.Close())
	}

	if cfg.Async {
		h := &AsyncFileHandler{}
		if err := initFileBase(&h.fileBase, cfg, file, info.Size()); err != nil {
			return nil, errors.Join(err, file.Close())
		}
		h.start(cfg)
		return h, nil
	}

	h := &SyncFileHandler{}
	if err := initFileBase(&h.fileBase, cfg, file, info.Size()); err != nil {
		return nil, errors.Join(err, file.Close())
	}
	return h, nil
}
