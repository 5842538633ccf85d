package consolehandler

import (
	"sync/atomic"

	"github.com/philipp01105/nloghtml/core"
)

// SyncConsoleHandler writes each entry before Handle returns.
type SyncConsoleHandler struct {
	consoleBase
	closed atomic.Bool
}

func newSyncConsoleHandler(cfg ConsoleConfig) *SyncConsoleHandler {
	h := &SyncConsoleHandler{}
	h.init(cfg)
	return h
}

// Handle processes a log entry synchronously.
func (h *SyncConsoleHandler) Handle(entry *core.Entry) error {
	return h.write(entry)
}

// CanRecycleEntry returns true because sync handler processes entries immediately.
func (h *SyncConsoleHandler) CanRecycleEntry() bool {
	return true
}

// Close writes the layout footer. The writer itself is left open.
func (h *SyncConsoleHandler) Close() error {
	if h.closed.Swap(true) {
		return nil
	}
	return h.writeFooter()
}
