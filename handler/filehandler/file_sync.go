package filehandler

import (
	"github.com/philipp01105/nloghtml/core"
)

// SyncFileHandler writes each entry before Handle returns.
type SyncFileHandler struct {
	fileBase
}

// Handle processes a log entry synchronously.
func (h *SyncFileHandler) Handle(entry *core.Entry) error {
	return h.write(entry)
}

// CanRecycleEntry returns true because sync handler processes entries immediately.
func (h *SyncFileHandler) CanRecycleEntry() bool {
	return true
}

// Close writes the layout footer and closes the underlying file.
func (h *SyncFileHandler) Close() error {
	return h.closeFile()
}
