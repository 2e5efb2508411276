package worker

import (
	"github.com/okian/rally/internal/adapters/mq/queue"
	"github.com/okian/rally/pkg/logger"
)

// Option applies a configuration option to the InMemoryWorker.
type Option func(*InMemoryWorker)

// WithName sets the worker name for identification and logging.
func WithName(name string) Option {
	return func(w *InMemoryWorker) {
		if name != "" {
			w.name = name
		}
	}
}

// WithLogger sets a custom logger for the worker.
func WithLogger(l logger.Logger) Option {
	return func(w *InMemoryWorker) {
		if l != nil {
			w.logger = l
		}
	}
}

func withRecorder(fn func(queue.Job, int, error)) Option {
	return func(w *InMemoryWorker) {
		w.record = fn
	}
}
