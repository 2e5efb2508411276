// Package resize observes chart containers and streams their sizes to
// subscribed renderers.
package resize

import (
	"context"
	"fmt"
	"sync"

	"github.com/gdamore/tcell/v2"
)

// Container is something whose width can be measured and which signals
// when its layout may have changed.
type Container interface {
	Measure(ctx context.Context) (float64, error)
	Changes() <-chan struct{}
}

// notify performs a non-blocking send on a one-slot signal channel. A
// pending signal already covers the new change.
func notify(ch chan struct{}) {
	select {
	case ch <- struct{}{}:
	default:
	}
}

// Box is a container whose width is set programmatically, e.g. by an HTTP
// client or a test.
type Box struct {
	mu      sync.RWMutex
	width   float64
	err     error
	changes chan struct{}
}

// NewBox returns a box of the given width.
func NewBox(width float64) *Box {
	return &Box{width: width, changes: make(chan struct{}, 1)}
}

// Resize sets the width and signals a change.
func (b *Box) Resize(width float64) {
	b.mu.Lock()
	b.width = width
	b.err = nil
	b.mu.Unlock()
	notify(b.changes)
}

// Fail makes subsequent measurements return err until the next Resize.
func (b *Box) Fail(err error) {
	b.mu.Lock()
	b.err = err
	b.mu.Unlock()
	notify(b.changes)
}

// Width returns the configured width.
func (b *Box) Width() float64 {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.width
}

// Measure implements Container.
func (b *Box) Measure(ctx context.Context) (float64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.err != nil {
		return 0, fmt.Errorf("%w: %w", ErrMeasurement, b.err)
	}
	return b.width, nil
}

// Changes implements Container.
func (b *Box) Changes() <-chan struct{} { return b.changes }

// ScreenContainer measures a terminal screen. Its width is the column count
// times a nominal pixel width per cell.
type ScreenContainer struct {
	screen  tcell.Screen
	cellW   float64
	changes chan struct{}
}

// NewScreenContainer wraps screen; pixelsPerCell converts columns to pixels.
func NewScreenContainer(screen tcell.Screen, pixelsPerCell float64) *ScreenContainer {
	if pixelsPerCell <= 0 {
		pixelsPerCell = 1
	}
	return &ScreenContainer{screen: screen, cellW: pixelsPerCell, changes: make(chan struct{}, 1)}
}

// Notify tells observers the screen was resized. Hosts call it on
// *tcell.EventResize.
func (c *ScreenContainer) Notify() { notify(c.changes) }

// Measure implements Container.
func (c *ScreenContainer) Measure(ctx context.Context) (float64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if c.screen == nil {
		return 0, ErrNoScreen
	}
	cols, _ := c.screen.Size()
	if cols <= 0 {
		return 0, nil
	}
	return float64(cols) * c.cellW, nil
}

// Changes implements Container.
func (c *ScreenContainer) Changes() <-chan struct{} { return c.changes }
