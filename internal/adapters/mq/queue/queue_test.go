package queue

import (
	"context"
	"errors"
	"sync"
	"testing"
)

func TestInMemoryQueue_BasicOperations(t *testing.T) {
	q := NewInMemoryQueue(WithCapacity(2))
	ctx := context.Background()

	if l := q.Len(); l != 0 {
		t.Errorf("expected length 0, got %d", l)
	}
	if err := q.Enqueue(ctx, Job{Player: "FAN Zhendong", Kind: "trend"}); err != nil {
		t.Fatalf("enqueue: %v", err)
	}
	if err := q.Enqueue(ctx, Job{Player: "XU Xin", Kind: "trend"}); err != nil {
		t.Fatalf("enqueue: %v", err)
	}
	if l := q.Len(); l != 2 {
		t.Errorf("expected length 2, got %d", l)
	}
	if err := q.Enqueue(ctx, Job{Player: "MA Long"}); !errors.Is(err, ErrFull) {
		t.Errorf("expected ErrFull, got %v", err)
	}

	got := <-q.Dequeue()
	if got.Player != "FAN Zhendong" {
		t.Errorf("expected FIFO order, got %q", got.Player)
	}
}

func TestInMemoryQueue_Close(t *testing.T) {
	q := NewInMemoryQueue(WithCapacity(4))
	ctx := context.Background()
	_ = q.Enqueue(ctx, Job{Player: "a"})
	_ = q.Enqueue(ctx, Job{Player: "b"})

	if err := q.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if err := q.Close(); err != nil {
		t.Fatalf("second close: %v", err)
	}
	if !q.IsClosed() {
		t.Error("expected queue to be closed")
	}
	if err := q.Enqueue(ctx, Job{Player: "c"}); !errors.Is(err, ErrClosed) {
		t.Errorf("expected ErrClosed, got %v", err)
	}

	var drained []string
	for j := range q.Dequeue() {
		drained = append(drained, j.Player)
	}
	if len(drained) != 2 || drained[0] != "a" || drained[1] != "b" {
		t.Errorf("expected queued jobs to drain in order, got %v", drained)
	}
}

func TestInMemoryQueue_CancelledContext(t *testing.T) {
	q := NewInMemoryQueue()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := q.Enqueue(ctx, Job{}); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestInMemoryQueue_ConcurrentConsumers(t *testing.T) {
	const jobs = 100
	q := NewInMemoryQueue(WithCapacity(jobs))
	ctx := context.Background()
	for i := range jobs {
		if err := q.Enqueue(ctx, Job{Width: float64(i)}); err != nil {
			t.Fatalf("enqueue %d: %v", i, err)
		}
	}
	_ = q.Close()

	var (
		mu   sync.Mutex
		seen = make(map[float64]bool)
		wg   sync.WaitGroup
	)
	for range 4 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range q.Dequeue() {
				mu.Lock()
				seen[j.Width] = true
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	if len(seen) != jobs {
		t.Errorf("expected %d distinct jobs, got %d", jobs, len(seen))
	}
}
