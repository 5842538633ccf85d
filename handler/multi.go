package handler

import (
	"errors"

	"github.com/philipp01105/nloghtml/core"
)

// MultiHandler fans each entry out to several handlers, for example an
// HTML file and a plain text console at the same time.
type MultiHandler struct {
	handlers     []Handler
	recycleEntry bool // true when every child supports entry recycling
}

// NewMultiHandler creates a new multi-handler
func NewMultiHandler(handlers ...Handler) *MultiHandler {
	m := &MultiHandler{
		handlers:     handlers,
		recycleEntry: true,
	}
	for _, h := range handlers {
		if rc, ok := h.(interface{ CanRecycleEntry() bool }); !ok || !rc.CanRecycleEntry() {
			m.recycleEntry = false
		}
	}
	return m
}

// Handle passes entry to every child, even after a failure, and returns
// the joined errors.
func (m *MultiHandler) Handle(entry *core.Entry) error {
	var errs []error
	for _, h := range m.handlers {
		if err := h.Handle(entry); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// CanRecycleEntry reports whether the entry may be pooled once Handle
// returns, which holds only if no child keeps it.
func (m *MultiHandler) CanRecycleEntry() bool {
	return m.recycleEntry
}

// Stats sums the statistics of the children that keep them.
func (m *MultiHandler) Stats() Snapshot {
	var total Snapshot
	for _, h := range m.handlers {
		sp, ok := h.(StatsProvider)
		if !ok {
			continue
		}
		s := sp.Stats()
		for level, n := range s.DroppedTotal {
			if total.DroppedTotal == nil {
				total.DroppedTotal = make(map[core.Level]uint64)
			}
			total.DroppedTotal[level] += n
		}
		total.BlockedTotal += s.BlockedTotal
		total.ProcessedTotal += s.ProcessedTotal
	}
	return total
}

// Close closes every child and returns the joined errors.
func (m *MultiHandler) Close() error {
	var errs []error
	for _, h := range m.handlers {
		if err := h.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
