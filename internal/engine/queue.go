package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/Veraticus/paycapture/internal/model"
	"github.com/Veraticus/paycapture/internal/service"
)

// DefaultQueueSize is the number of prefill requests a QueuedPresenter buffers.
const DefaultQueueSize = 64

var (
	// ErrQueueFull is returned when a request cannot be buffered without blocking.
	ErrQueueFull = errors.New("presentation queue full")
	// ErrQueueClosed is returned for requests offered after Close.
	ErrQueueClosed = errors.New("presentation queue closed")
)

// QueuedPresenter hands prefill requests to a slower presenter, such as the
// inbox database, on a background goroutine. Present never blocks.
type QueuedPresenter struct {
	next      service.Presenter
	queue     chan model.PrefillRequest
	done      chan struct{}
	mu        sync.RWMutex
	closeOnce sync.Once
	failed    atomic.Int64
	closed    bool
}

// NewQueuedPresenter starts a worker presenting to next. A non-positive size
// selects DefaultQueueSize.
func NewQueuedPresenter(next service.Presenter, size int) *QueuedPresenter {
	if size <= 0 {
		size = DefaultQueueSize
	}

	q := &QueuedPresenter{
		next:  next,
		queue: make(chan model.PrefillRequest, size),
		done:  make(chan struct{}),
	}
	go q.run()
	return q
}

// Present buffers req for the worker.
func (q *QueuedPresenter) Present(ctx context.Context, req model.PrefillRequest) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed {
		return ErrQueueClosed
	}

	select {
	case q.queue <- req:
		return nil
	default:
		return fmt.Errorf("%w: dropped request %d", ErrQueueFull, req.RequestCode)
	}
}

func (q *QueuedPresenter) run() {
	defer close(q.done)

	for req := range q.queue {
		if err := q.next.Present(context.Background(), req); err != nil {
			q.failed.Add(1)
			slog.Warn("Failed to present queued capture",
				"source", req.SourceID,
				"request_code", req.RequestCode,
				"error", err)
		}
	}
}

// Close stops accepting requests and waits until the buffered ones have
// been presented.
func (q *QueuedPresenter) Close() {
	q.closeOnce.Do(func() {
		q.mu.Lock()
		q.closed = true
		close(q.queue)
		q.mu.Unlock()
	})
	<-q.done
}

// Failed returns how many buffered requests the wrapped presenter rejected.
func (q *QueuedPresenter) Failed() int64 {
	return q.failed.Load()
}
