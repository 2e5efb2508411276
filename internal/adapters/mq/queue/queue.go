// Package queue holds export jobs between the producer that plans a batch
// and the workers that render it.
package queue

import (
	"context"
	"sync"
	"time"

	"github.com/okian/rally/pkg/metrics"
)

const defaultCapacity = 1024

// Job is one chart to render and write.
type Job struct {
	Player string
	Kind   string
	Format string
	Width  float64
	At     time.Duration
	Path   string // destination, relative to the sink
}

// Queue provides non-blocking enqueue and channel-based dequeue.
type Queue interface {
	// Enqueue adds a job. It fails with ErrFull or ErrClosed instead of
	// blocking.
	Enqueue(ctx context.Context, j Job) error
	// Dequeue returns the job channel. It is closed once the queue is
	// closed and drained.
	Dequeue() <-chan Job
	Len() int
	Close() error
	IsClosed() bool
}

// InMemoryQueue implements Queue with a buffered channel.
type InMemoryQueue struct {
	jobs     chan Job
	capacity int

	mu     sync.RWMutex
	closed bool
}

// NewInMemoryQueue creates a queue with the given options.
func NewInMemoryQueue(opts ...Option) *InMemoryQueue {
	q := &InMemoryQueue{capacity: defaultCapacity}
	for _, opt := range opts {
		opt(q)
	}
	q.jobs = make(chan Job, q.capacity)
	metrics.UpdateExportQueueSize(0)
	return q
}

// Enqueue adds j to the queue.
func (q *InMemoryQueue) Enqueue(ctx context.Context, j Job) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	q.mu.RLock()
	defer q.mu.RUnlock()
	if q.closed {
		metrics.RecordErrorByComponent("queue", "closed")
		return ErrClosed
	}
	select {
	case q.jobs <- j:
		metrics.UpdateExportQueueSize(len(q.jobs))
		return nil
	default:
		metrics.RecordErrorByComponent("queue", "queue_full")
		return ErrFull
	}
}

// Dequeue returns the job channel shared by every consumer.
func (q *InMemoryQueue) Dequeue() <-chan Job { return q.jobs }

// Len returns the number of queued jobs.
func (q *InMemoryQueue) Len() int {
	n := len(q.jobs)
	metrics.UpdateExportQueueSize(n)
	return n
}

// Close stops accepting jobs. Queued jobs are still delivered.
func (q *InMemoryQueue) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return nil
	}
	close(q.jobs)
	q.closed = true
	return nil
}

// IsClosed reports whether Close was called.
func (q *InMemoryQueue) IsClosed() bool {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return q.closed
}
