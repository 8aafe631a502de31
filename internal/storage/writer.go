package storage

import (
	"context"
	"log"
	"sync"
	"time"
)

// WriterStatus is a point-in-time view of the writer's counters.
type WriterStatus struct {
	Submitted uint64 `json:"submitted"`
	Completed uint64 `json:"completed"`
	Failed    uint64 `json:"failed"`
	LastError string `json:"lastError,omitempty"`
}

// Writer applies snapshots to an Adapter from a single goroutine.
//
// Submit never blocks. Snapshots submitted while a write is in flight
// collapse into the newest one, so the slot may skip intermediate versions
// but always ends on the latest. Failed writes are logged and dropped.
type Writer struct {
	slot    Adapter
	timeout time.Duration

	mu         sync.Mutex
	pending    []byte
	hasPending bool
	submitted  uint64
	completed  uint64
	failed     uint64
	lastErr    string
	progress   chan struct{} // closed and replaced after every write attempt
	closed     bool

	wake      chan struct{}
	done      chan struct{}
	stopped   chan struct{}
	closeOnce sync.Once
}

// NewWriter starts the writer goroutine. timeout bounds each write; zero
// means no bound.
func NewWriter(slot Adapter, timeout time.Duration) *Writer {
	w := &Writer{
		slot:     slot,
		timeout:  timeout,
		progress: make(chan struct{}),
		wake:     make(chan struct{}, 1),
		done:     make(chan struct{}),
		stopped:  make(chan struct{}),
	}
	go w.run()
	return w
}

// Submit queues data as the newest snapshot and returns its version.
func (w *Writer) Submit(data []byte) uint64 {
	w.mu.Lock()
	if w.closed {
		version := w.submitted
		w.mu.Unlock()
		log.Printf("Storage writer: closed, dropping snapshot")
		return version
	}
	w.submitted++
	w.pending = data
	w.hasPending = true
	version := w.submitted
	w.mu.Unlock()

	select {
	case w.wake <- struct{}{}:
	default:
	}
	return version
}

// Flush waits until every snapshot submitted before the call has been
// written or dropped.
func (w *Writer) Flush(ctx context.Context) error {
	w.mu.Lock()
	target := w.submitted
	for w.completed < target {
		progress := w.progress
		w.mu.Unlock()
		select {
		case <-progress:
		case <-ctx.Done():
			return ctx.Err()
		}
		w.mu.Lock()
	}
	w.mu.Unlock()
	return nil
}

// Close writes the remaining snapshot and stops the goroutine.
func (w *Writer) Close(ctx context.Context) error {
	w.closeOnce.Do(func() {
		w.mu.Lock()
		w.closed = true
		w.mu.Unlock()
		close(w.done)
	})

	select {
	case <-w.stopped:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (w *Writer) Status() WriterStatus {
	w.mu.Lock()
	defer w.mu.Unlock()
	return WriterStatus{
		Submitted: w.submitted,
		Completed: w.completed,
		Failed:    w.failed,
		LastError: w.lastErr,
	}
}

func (w *Writer) run() {
	defer close(w.stopped)
	for {
		select {
		case <-w.wake:
			w.drain()
		case <-w.done:
			w.drain()
			return
		}
	}
}

func (w *Writer) drain() {
	for {
		w.mu.Lock()
		if !w.hasPending {
			w.mu.Unlock()
			return
		}
		data, version := w.pending, w.submitted
		w.pending, w.hasPending = nil, false
		w.mu.Unlock()

		err := w.write(data)

		w.mu.Lock()
		w.completed = version
		if err != nil {
			w.failed++
			w.lastErr = err.Error()
		}
		close(w.progress)
		w.progress = make(chan struct{})
		w.mu.Unlock()

		if err != nil {
			log.Printf("Storage writer: failed to persist snapshot v%d: %v", version, err)
		}
	}
}

func (w *Writer) write(data []byte) error {
	ctx := context.Background()
	if w.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, w.timeout)
		defer cancel()
	}
	return w.slot.Set(ctx, data)
}
