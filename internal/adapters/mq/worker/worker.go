// Package worker renders queued export jobs concurrently and writes the
// results to a sink.
package worker

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"strconv"
	"sync"
	"time"

	"github.com/okian/rally/internal/adapters/mq/queue"
	"github.com/okian/rally/pkg/logger"
	"github.com/okian/rally/pkg/metrics"
)

// Renderer produces the bytes of one job.
type Renderer interface {
	Render(ctx context.Context, j queue.Job) ([]byte, error)
}

// RendererFunc adapts a function to Renderer.
type RendererFunc func(ctx context.Context, j queue.Job) ([]byte, error)

// Render implements Renderer.
func (f RendererFunc) Render(ctx context.Context, j queue.Job) ([]byte, error) { return f(ctx, j) }

// Sink stores rendered output.
type Sink interface {
	Write(ctx context.Context, path string, data []byte) error
}

// Source is where workers receive jobs.
type Source interface {
	Dequeue() <-chan queue.Job
}

// Summary counts the outcome of a batch.
type Summary struct {
	Done   int
	Failed int
	Bytes  int
	Err    error // every job error, joined
}

// InMemoryWorker processes jobs until the source is drained or stopped.
type InMemoryWorker struct {
	source   Source
	renderer Renderer
	sink     Sink
	name     string
	record   func(queue.Job, int, error)

	shutdown chan struct{}
	done     chan struct{}
	stopOnce sync.Once

	logger logger.Logger
}

// NewInMemoryWorker creates a worker with configuration options.
func NewInMemoryWorker(source Source, r Renderer, s Sink, opts ...Option) *InMemoryWorker {
	w := &InMemoryWorker{
		source:   source,
		renderer: r,
		sink:     s,
		name:     "worker",
		record:   func(queue.Job, int, error) {},
		shutdown: make(chan struct{}),
		done:     make(chan struct{}),
		logger:   logger.Nop(),
	}
	for _, opt := range opts {
		opt(w)
	}
	w.logger = w.logger.Named(w.name)
	return w
}

// Run processes jobs until the source closes, Shutdown is called or ctx
// is done.
func (w *InMemoryWorker) Run(ctx context.Context) {
	defer close(w.done)
	metrics.AddExportWorkers(1)
	defer metrics.AddExportWorkers(-1)

	jobs := w.source.Dequeue()
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.shutdown:
			return
		case j, ok := <-jobs:
			if !ok {
				return
			}
			n, err := w.process(ctx, j)
			w.record(j, n, err)
		}
	}
}

// Shutdown stops the worker after the current job.
func (w *InMemoryWorker) Shutdown(ctx context.Context) error {
	w.stopOnce.Do(func() { close(w.shutdown) })
	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		w.logger.Warn(ctx, "shutdown timed out")
		return fmt.Errorf("shutdown timed out: %w", ctx.Err())
	}
}

func (w *InMemoryWorker) process(ctx context.Context, j queue.Job) (int, error) {
	start := time.Now()
	data, err := w.renderer.Render(ctx, j)
	if err == nil {
		err = w.sink.Write(ctx, j.Path, data)
	}
	took := float64(time.Since(start).Milliseconds())
	if err != nil {
		metrics.RecordExportJob(j.Kind, "failed", took)
		metrics.RecordErrorByComponent("worker", "export_failed")
		w.logger.Error(ctx, "export failed",
			logger.String("player", j.Player),
			logger.String("chart", j.Kind),
			logger.Error(err),
		)
		return 0, fmt.Errorf("%s %s: %w", j.Player, j.Kind, err)
	}
	metrics.RecordExportJob(j.Kind, "ok", took)
	w.logger.Debug(ctx, "exported",
		logger.String("path", j.Path),
		logger.Int("bytes", len(data)),
	)
	return len(data), nil
}

// Pool runs several workers over one source.
type Pool struct {
	workers []*InMemoryWorker
	source  Source
	logger  logger.Logger

	mu      sync.Mutex
	summary Summary
	errs    []error
}

// NewPool creates a pool of workerCount workers. A count below one uses
// the number of CPUs.
func NewPool(workerCount int, source Source, r Renderer, s Sink, opts ...Option) *Pool {
	if workerCount < 1 {
		workerCount = runtime.NumCPU()
	}
	p := &Pool{
		workers: make([]*InMemoryWorker, workerCount),
		source:  source,
		logger:  logger.Nop(),
	}
	probe := &InMemoryWorker{logger: p.logger}
	for _, opt := range opts {
		opt(probe)
	}
	p.logger = probe.logger.Named("worker-pool")

	for i := range workerCount {
		wopts := append([]Option{}, opts...)
		wopts = append(wopts, WithName("worker-"+strconv.Itoa(i)), withRecorder(p.record))
		p.workers[i] = NewInMemoryWorker(source, r, s, wopts...)
	}
	return p
}

func (p *Pool) record(_ queue.Job, n int, err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err != nil {
		p.summary.Failed++
		p.errs = append(p.errs, err)
		return
	}
	p.summary.Done++
	p.summary.Bytes += n
}

// Start starts every worker.
func (p *Pool) Start(ctx context.Context) {
	for _, w := range p.workers {
		go w.Run(ctx)
	}
}

// Wait blocks until every worker has exited, which happens once the
// source is closed and drained, and returns the batch summary. It returns
// early with ctx's error.
func (p *Pool) Wait(ctx context.Context) (Summary, error) {
	for _, w := range p.workers {
		select {
		case <-w.done:
		case <-ctx.Done():
			return p.Summary(), ctx.Err()
		}
	}
	s := p.Summary()
	p.logger.Info(ctx, "batch finished",
		logger.Int("done", s.Done),
		logger.Int("failed", s.Failed),
		logger.Int("bytes", s.Bytes),
	)
	return s, nil
}

// Summary returns the counts so far.
func (p *Pool) Summary() Summary {
	p.mu.Lock()
	defer p.mu.Unlock()
	s := p.summary
	s.Err = errors.Join(p.errs...)
	return s
}

// Shutdown closes the source if it can be closed and stops every worker.
func (p *Pool) Shutdown(ctx context.Context) error {
	if closer, ok := p.source.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			p.logger.Error(ctx, "error closing queue", logger.Error(err))
		}
	}
	var errs []error
	for i, w := range p.workers {
		if err := w.Shutdown(ctx); err != nil {
			p.logger.Warn(ctx, "worker shutdown timed out", logger.Int("worker_id", i))
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
