package handler

import (
	"sync"
	"time"

	"github.com/philipp01105/nloghtml/core"
)

// QueueConfig configures a Queue.
type QueueConfig struct {
	// Size is the capacity of the queue (default: 1000)
	Size int
	// Policy defines per-level overflow behavior (default: DefaultLevelPolicy)
	Policy map[core.Level]OverflowPolicy
	// BlockTimeout bounds how long a Block entry waits for space before it
	// is written synchronously (default: 100ms)
	BlockTimeout time.Duration
	// DrainTimeout bounds how long Close keeps draining (default: 5s)
	DrainTimeout time.Duration
}

func (cfg *QueueConfig) applyDefaults() {
	if cfg.Size <= 0 {
		cfg.Size = 1000
	}
	if cfg.Policy == nil {
		cfg.Policy = DefaultLevelPolicy()
	}
	if cfg.BlockTimeout <= 0 {
		cfg.BlockTimeout = 100 * time.Millisecond
	}
	if cfg.DrainTimeout <= 0 {
		cfg.DrainTimeout = 5 * time.Second
	}
}

// Queue is the bounded entry queue behind the async handlers. A single
// background goroutine hands queued entries to the write function and
// recycles them afterwards, so write must not keep the entry.
type Queue struct {
	ch           chan *core.Entry
	policy       map[core.Level]OverflowPolicy
	blockTimeout time.Duration
	drainTimeout time.Duration
	write        func(*core.Entry) error
	stats        *Stats

	blockMu    sync.Mutex // guards blockTimer
	blockTimer *time.Timer

	// sendMu is held for reading by every send into ch and for writing
	// while closing, so no send can land after the consumer has drained.
	sendMu    sync.RWMutex
	isClosed  bool // guarded by sendMu
	closeOnce sync.Once
	closed    chan struct{}
	done      chan struct{}
}

// NewQueue starts a queue that delivers entries to write. Overflow and
// processing counts are recorded in stats.
func NewQueue(cfg QueueConfig, stats *Stats, write func(*core.Entry) error) *Queue {
	cfg.applyDefaults()
	q := &Queue{
		ch:           make(chan *core.Entry, cfg.Size),
		policy:       cfg.Policy,
		blockTimeout: cfg.BlockTimeout,
		drainTimeout: cfg.DrainTimeout,
		write:        write,
		stats:        stats,
		blockTimer:   NewStoppedTimer(),
		closed:       make(chan struct{}),
		done:         make(chan struct{}),
	}
	go q.process()
	return q
}

// Enqueue hands entry to the queue. Ownership of entry passes to the queue
// unless it was dropped, in which case the caller may reuse it. After Close
// entries are written synchronously.
func (q *Queue) Enqueue(entry *core.Entry) error {
	q.sendMu.RLock()
	if q.isClosed {
		q.sendMu.RUnlock()
		return q.write(entry)
	}
	queued := q.enqueueLocked(entry)
	q.sendMu.RUnlock()

	if !queued {
		// Block timed out: write synchronously rather than lose an
		// important entry
		q.stats.IncrementBlocked()
		return q.write(entry)
	}
	return nil
}

// enqueueLocked applies the overflow policy. It reports false only when a
// Block entry found no room within the block timeout. Callers hold sendMu
// for reading.
func (q *Queue) enqueueLocked(entry *core.Entry) bool {
	policy, ok := q.policy[entry.Level]
	if !ok {
		policy = DropNewest
	}

	select {
	case q.ch <- entry:
		return true
	default:
	}

	switch policy {
	case Block:
		return q.enqueueBlocking(entry)

	case DropOldest:
		select {
		case old := <-q.ch:
			q.stats.IncrementDropped(old.Level)
			core.PutEntry(old)
		default:
		}
		select {
		case q.ch <- entry:
		default:
			q.stats.IncrementDropped(entry.Level)
		}
		return true

	default:
		q.stats.IncrementDropped(entry.Level)
		return true
	}
}

func (q *Queue) enqueueBlocking(entry *core.Entry) bool {
	q.blockMu.Lock()
	defer q.blockMu.Unlock()

	q.blockTimer.Reset(q.blockTimeout)
	select {
	case q.ch <- entry:
		stopTimer(q.blockTimer)
		return true
	case <-q.blockTimer.C:
		return false
	}
}

func stopTimer(t *time.Timer) {
	if !t.Stop() {
		select {
		case <-t.C:
		default:
		}
	}
}

func (q *Queue) deliver(entry *core.Entry) {
	// Write errors have nowhere to go from the background goroutine; the
	// entry simply is not counted as processed.
	_ = q.write(entry)
	core.PutEntry(entry)
}

func (q *Queue) process() {
	defer close(q.done)

	for {
		select {
		case entry := <-q.ch:
			q.deliver(entry)
		case <-q.closed:
			deadline := time.NewTimer(q.drainTimeout)
			defer deadline.Stop()
			for {
				select {
				case entry := <-q.ch:
					q.deliver(entry)
				case <-deadline.C:
					return
				default:
					return
				}
			}
		}
	}
}

// Len returns the number of entries waiting to be written.
func (q *Queue) Len() int {
	return len(q.ch)
}

// Close stops accepting queued entries, drains what is left within the
// drain timeout and waits for the background goroutine to exit. Entries
// handed to Enqueue after Close are written synchronously.
func (q *Queue) Close() {
	q.closeOnce.Do(func() {
		// Waits for in-flight sends; a Block sender holds the read lock
		// for at most the block timeout.
		q.sendMu.Lock()
		q.isClosed = true
		close(q.closed)
		q.sendMu.Unlock()
	})
	<-q.done
}
