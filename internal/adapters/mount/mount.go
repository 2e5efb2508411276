// Package mount runs the lifecycle of one chart inside a container:
// subscribe to its size, render on every size or data change, commit the
// scene, track the pointer for tooltips and tear everything down on
// unmount.
package mount

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/okian/rally/internal/adapters/resize"
	"github.com/okian/rally/internal/domain/chart"
	"github.com/okian/rally/internal/domain/geom"
	"github.com/okian/rally/internal/domain/model"
	"github.com/okian/rally/internal/domain/scene"
	"github.com/okian/rally/internal/domain/tooltip"
	"github.com/okian/rally/pkg/logger"
	"github.com/okian/rally/pkg/metrics"
)

// Empty render reasons reported to metrics.
const (
	reasonSize = "size"
	reasonData = "data"
)

// Committer replaces the previous output of a chart with a new scene.
type Committer interface {
	Commit(ctx context.Context, s *scene.Scene) error
	Target() string
}

// Pointer is a pointer sample in chart coordinates.
type Pointer struct {
	X, Y   float64
	Inside bool
}

type pointerReq struct {
	p     Pointer
	reply chan pointerResp
}

type pointerResp struct {
	ev  tooltip.Event
	err error
}

// Mount is one chart bound to one container.
type Mount struct {
	renderer  chart.Renderer
	committer Committer
	sub       *resize.Subscription
	tip       *tooltip.Controller
	tracker   *tooltip.Tracker
	name      string
	logger    logger.Logger

	// owned by the Run goroutine
	data chart.Data
	size model.ContainerSize

	updates  chan chart.Data
	pointers chan pointerReq
	shutdown chan struct{}
	done     chan struct{}
	stopOnce sync.Once
	running  atomic.Bool

	mu     sync.RWMutex
	scene  *scene.Scene
	passes int
}

// New mounts r into the container watched by obs. The tooltip element is
// acquired from doc immediately; Run must be called to start rendering.
func New(obs *resize.Observer, r chart.Renderer, c Committer, doc *tooltip.Document, opts ...Option) *Mount {
	m := &Mount{
		renderer:  r,
		committer: c,
		name:      string(r.Kind()),
		logger:    logger.Nop(),
		updates:   make(chan chart.Data, 1),
		pointers:  make(chan pointerReq),
		shutdown:  make(chan struct{}),
		done:      make(chan struct{}),
	}
	for _, opt := range opts {
		opt(m)
	}
	m.logger = m.logger.Named(m.name)
	m.tip = tooltip.Acquire(doc, r.Tooltip())
	m.tracker = tooltip.NewTracker(m.tip)
	m.sub = obs.Subscribe()
	metrics.AddMountedCharts(1)
	return m
}

// Run serializes size emissions, data updates and pointer samples until
// ctx is cancelled, the chart is unmounted or the observer closes.
func (m *Mount) Run(ctx context.Context) {
	if !m.running.CompareAndSwap(false, true) {
		return
	}
	defer close(m.done)

	for {
		select {
		case <-m.shutdown:
			return
		default:
		}

		select {
		case <-ctx.Done():
			return
		case <-m.shutdown:
			return
		case size, ok := <-m.sub.C:
			if !ok {
				if err := m.sub.Err(); err != nil {
					m.logger.Debug(ctx, "size stream ended", logger.Error(err))
				}
				return
			}
			m.size = size
			m.pass(ctx)
		case d := <-m.updates:
			m.data = d
			m.pass(ctx)
		case req := <-m.pointers:
			ev, err := m.track(req.p)
			req.reply <- pointerResp{ev: ev, err: err}
		}
	}
}

// pass performs one full redraw from a clean slate.
func (m *Mount) pass(ctx context.Context) {
	start := time.Now()
	kind := string(m.renderer.Kind())

	s := m.renderer.Render(m.data, m.size)
	if s.Empty() {
		reason := reasonData
		if m.size.IsZero() {
			reason = reasonSize
		}
		metrics.RecordEmptyRender(kind, reason)
	}
	if err := m.tracker.Reset(); err != nil {
		m.logger.Debug(ctx, "tooltip reset skipped", logger.Error(err))
	}

	commitStart := time.Now()
	if err := m.committer.Commit(ctx, s); err != nil {
		metrics.RecordCommitError(m.committer.Target())
		metrics.RecordErrorByComponent("mount", "commit_error")
		m.logger.Error(ctx, "commit failed", logger.String("target", m.committer.Target()), logger.Error(err))
	} else {
		metrics.RecordCommit(m.committer.Target(), float64(time.Since(commitStart).Milliseconds()))
	}

	m.mu.Lock()
	m.scene = s
	m.passes++
	passes := m.passes
	m.mu.Unlock()

	metrics.RecordRender(kind, float64(time.Since(start).Milliseconds()), s.Size())
	m.logger.Debug(ctx, "render pass",
		logger.Int("pass", passes),
		logger.Float64("width", m.size.Width),
		logger.Int("nodes", s.Size()),
	)
}

func (m *Mount) track(p Pointer) (tooltip.Event, error) {
	m.mu.RLock()
	s := m.scene
	m.mu.RUnlock()
	ev, err := m.tracker.Pointer(s, geom.Pt(p.X, p.Y), p.Inside)
	if ev != tooltip.EventNone && err == nil {
		metrics.RecordTooltipEvent(string(m.renderer.Kind()), string(ev))
	}
	return ev, err
}

// Update replaces the chart data and triggers a redraw. An update not yet
// picked up by the loop is replaced by the newer one.
func (m *Mount) Update(d chart.Data) {
	for {
		select {
		case m.updates <- d:
			return
		default:
		}
		select {
		case <-m.updates:
		default:
		}
	}
}

// Pointer feeds a pointer sample to the chart and returns the resulting
// tooltip transition.
func (m *Mount) Pointer(ctx context.Context, p Pointer) (tooltip.Event, error) {
	req := pointerReq{p: p, reply: make(chan pointerResp, 1)}
	select {
	case m.pointers <- req:
	case <-m.done:
		return tooltip.EventNone, ErrUnmounted
	case <-m.shutdown:
		return tooltip.EventNone, ErrUnmounted
	case <-ctx.Done():
		return tooltip.EventNone, ctx.Err()
	}
	resp := <-req.reply
	return resp.ev, resp.err
}

// Scene returns the last committed scene, or nil before the first pass.
func (m *Mount) Scene() *scene.Scene {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.scene
}

// Passes returns the number of completed render passes.
func (m *Mount) Passes() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.passes
}

// Tooltip returns the chart's tooltip state.
func (m *Mount) Tooltip() tooltip.State { return m.tip.State() }

// TooltipID returns the id of the chart's tooltip element.
func (m *Mount) TooltipID() string { return m.tip.ID() }

// Kind returns the chart kind.
func (m *Mount) Kind() chart.Kind { return m.renderer.Kind() }

// Unmount cancels the size subscription, stops the loop and removes the
// tooltip element. It waits for the loop to exit or ctx to expire.
func (m *Mount) Unmount(ctx context.Context) error {
	var err error
	m.stopOnce.Do(func() {
		m.sub.Cancel()
		close(m.shutdown)
		if m.running.Load() {
			select {
			case <-m.done:
			case <-ctx.Done():
				m.logger.Warn(ctx, "unmount timed out")
				err = fmt.Errorf("unmount timed out: %w", ctx.Err())
			}
		}
		m.tip.Release()
		metrics.AddMountedCharts(-1)
	})
	return err
}
