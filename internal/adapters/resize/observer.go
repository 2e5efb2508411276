package resize

import (
	"context"
	"sync"

	"github.com/okian/rally/internal/domain/model"
	"github.com/okian/rally/pkg/logger"
	"github.com/okian/rally/pkg/metrics"
)

// Observer watches one container and fans its sizes out to subscribers.
// Every subscriber channel holds at most one pending size; a newer size
// replaces an unread one.
type Observer struct {
	container Container
	ratio     float64
	name      string
	logger    logger.Logger

	mu       sync.Mutex
	subs     map[*Subscription]chan model.ContainerSize
	current  model.ContainerSize
	last     float64
	observed bool
	closed   bool

	cancel context.CancelFunc
	done   chan struct{}
}

// Subscription is one consumer of an observer.
type Subscription struct {
	// C receives sizes. It is closed on Cancel or when the observer closes.
	C <-chan model.ContainerSize
	o *Observer
}

// Observe starts watching c until ctx is cancelled or Close is called.
// The first measurement is taken immediately.
func Observe(ctx context.Context, c Container, opts ...Option) *Observer {
	o := &Observer{
		container: c,
		ratio:     model.AspectRatio,
		name:      "observer",
		logger:    logger.Nop(),
		subs:      make(map[*Subscription]chan model.ContainerSize),
		done:      make(chan struct{}),
	}
	for _, opt := range opts {
		opt(o)
	}
	o.logger = o.logger.Named(o.name)

	ctx, o.cancel = context.WithCancel(ctx)
	go o.run(ctx)
	return o
}

func (o *Observer) run(ctx context.Context) {
	defer close(o.done)
	o.observe(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-o.container.Changes():
			o.observe(ctx)
		}
	}
}

// observe measures the container once and emits the size if the width
// changed since the previous observation.
func (o *Observer) observe(ctx context.Context) {
	width, err := o.container.Measure(ctx)
	if ctx.Err() != nil {
		return
	}
	metrics.RecordSizeObservation()
	if err != nil {
		metrics.RecordSizeFailure()
		o.logger.Warn(ctx, "container measurement failed", logger.Error(err))
		width = 0
	}

	o.mu.Lock()
	defer o.mu.Unlock()
	if o.closed || (o.observed && width == o.last) {
		return
	}
	o.observed = true
	o.last = width
	o.current = model.SizeWithAspect(width, o.ratio)
	for _, ch := range o.subs {
		offer(ch, o.current)
	}
	metrics.RecordSizeEmission()
	o.logger.Debug(ctx, "container resized",
		logger.Float64("width", o.current.Width),
		logger.Float64("height", o.current.Height),
	)
}

// offer delivers s, replacing a pending unread size. Callers hold o.mu so
// this goroutine is the only sender.
func offer(ch chan model.ContainerSize, s model.ContainerSize) {
	select {
	case ch <- s:
		return
	default:
	}
	select {
	case <-ch:
	default:
	}
	select {
	case ch <- s:
	default:
	}
}

// Subscribe registers a consumer. If a size was already observed it is
// delivered immediately. Subscribing to a closed observer yields a closed
// channel and Err reports ErrClosed.
func (o *Observer) Subscribe() *Subscription {
	ch := make(chan model.ContainerSize, 1)
	sub := &Subscription{C: ch, o: o}

	o.mu.Lock()
	defer o.mu.Unlock()
	if o.closed {
		close(ch)
		return sub
	}
	o.subs[sub] = ch
	if o.observed {
		ch <- o.current
	}
	return sub
}

// Cancel stops deliveries to the subscription and closes its channel.
// Cancelling twice is a no-op.
func (s *Subscription) Cancel() {
	s.o.mu.Lock()
	defer s.o.mu.Unlock()
	if ch, ok := s.o.subs[s]; ok {
		delete(s.o.subs, s)
		close(ch)
	}
}

// Err returns ErrClosed once the observer has been closed. A subscription
// that was only cancelled, or is still live, reports nil.
func (s *Subscription) Err() error {
	s.o.mu.Lock()
	defer s.o.mu.Unlock()
	if s.o.closed {
		return ErrClosed
	}
	return nil
}

// Current returns the latest size, or the zero size before the first
// observation.
func (o *Observer) Current() model.ContainerSize {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.current
}

// Subscribers returns the number of active subscriptions.
func (o *Observer) Subscribers() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return len(o.subs)
}

// Close stops observing, waits for the watch loop to exit and closes every
// subscriber channel. No size is emitted after Close returns.
func (o *Observer) Close() error {
	o.mu.Lock()
	if o.closed {
		o.mu.Unlock()
		return nil
	}
	o.closed = true
	o.mu.Unlock()

	o.cancel()
	<-o.done

	o.mu.Lock()
	for sub, ch := range o.subs {
		delete(o.subs, sub)
		close(ch)
	}
	o.mu.Unlock()
	return nil
}

// Done is closed once the watch loop has exited.
func (o *Observer) Done() <-chan struct{} { return o.done }
