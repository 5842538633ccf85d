package consolehandler

import (
	"sync/atomic"

	"github.com/philipp01105/nloghtml/core"
	"github.com/philipp01105/nloghtml/handler"
)

// AsyncConsoleHandler queues entries and writes them from a background
// goroutine, applying the configured OverflowPolicy when the queue is full.
type AsyncConsoleHandler struct {
	consoleBase
	queue  *handler.Queue
	closed atomic.Bool
}

func newAsyncConsoleHandler(cfg ConsoleConfig) *AsyncConsoleHandler {
	h := &AsyncConsoleHandler{}
	h.init(cfg)
	h.queue = handler.NewQueue(handler.QueueConfig{
		Size:         cfg.BufferSize,
		Policy:       cfg.OverflowPolicy,
		BlockTimeout: cfg.BlockTimeout,
		DrainTimeout: cfg.DrainTimeout,
	}, h.stats, h.write)
	return h
}

// Handle sends a log entry to the async queue with overflow policy handling.
func (h *AsyncConsoleHandler) Handle(entry *core.Entry) error {
	return h.queue.Enqueue(entry)
}

// CanRecycleEntry returns false because the async handler processes entries
// in a background goroutine after Handle returns.
func (h *AsyncConsoleHandler) CanRecycleEntry() bool {
	return false
}

// Close drains the queue with a timeout, then writes the layout footer.
func (h *AsyncConsoleHandler) Close() error {
	if h.closed.Swap(true) {
		return nil
	}
	h.queue.Close()
	return h.writeFooter()
}
