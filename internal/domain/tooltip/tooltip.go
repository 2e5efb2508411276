// Package tooltip positions a floating label next to the pointer while it
// hovers chart elements. Each mounted chart acquires its own controller
// against a shared Document and releases it on unmount.
package tooltip

import (
	"sync"

	"github.com/google/uuid"

	"github.com/okian/rally/internal/domain/geom"
)

// Options configures where and how the label is shown.
type Options struct {
	OffsetX float64 // added to the pointer x
	OffsetY float64 // added to the pointer y
	Opacity float64 // opacity while visible
	Follow  bool    // reposition on pointer move
}

// State is the observable state of one tooltip element.
type State struct {
	Visible bool     `json:"visible"`
	X       float64  `json:"x"`
	Y       float64  `json:"y"`
	Opacity float64  `json:"opacity"`
	Lines   []string `json:"lines,omitempty"`
}

// Document is the host surface tooltip elements are appended to.
type Document struct {
	mu       sync.RWMutex
	elements map[string]*Controller
}

// NewDocument returns an empty document.
func NewDocument() *Document {
	return &Document{elements: make(map[string]*Controller)}
}

// Len returns the number of attached elements.
func (d *Document) Len() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.elements)
}

// Has reports whether an element with id is attached.
func (d *Document) Has(id string) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	_, ok := d.elements[id]
	return ok
}

// Visible returns the number of attached elements currently shown.
func (d *Document) Visible() int {
	d.mu.RLock()
	ctrls := make([]*Controller, 0, len(d.elements))
	for _, c := range d.elements {
		ctrls = append(ctrls, c)
	}
	d.mu.RUnlock()
	n := 0
	for _, c := range ctrls {
		if c.State().Visible {
			n++
		}
	}
	return n
}

func (d *Document) append(c *Controller) {
	d.mu.Lock()
	d.elements[c.id] = c
	d.mu.Unlock()
}

func (d *Document) remove(id string) {
	d.mu.Lock()
	delete(d.elements, id)
	d.mu.Unlock()
}

// Controller owns one tooltip element.
type Controller struct {
	mu       sync.Mutex
	doc      *Document
	id       string
	opts     Options
	state    State
	released bool
}

// Acquire creates a hidden tooltip element in doc.
func Acquire(doc *Document, opts Options) *Controller {
	c := &Controller{
		doc:  doc,
		id:   "tooltip-" + uuid.NewString(),
		opts: opts,
	}
	doc.append(c)
	return c
}

// ID returns the element id.
func (c *Controller) ID() string { return c.id }

// Options returns the controller options.
func (c *Controller) Options() Options { return c.opts }

// Enter shows lines next to pointer p.
func (c *Controller) Enter(p geom.Point, lines []string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.released {
		return ErrReleased
	}
	c.state = State{
		Visible: true,
		X:       p.X + c.opts.OffsetX,
		Y:       p.Y + c.opts.OffsetY,
		Opacity: c.opts.Opacity,
		Lines:   append([]string(nil), lines...),
	}
	return nil
}

// Move repositions a visible tooltip. Hidden tooltips stay hidden.
func (c *Controller) Move(p geom.Point) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.released {
		return ErrReleased
	}
	if c.state.Visible {
		c.state.X = p.X + c.opts.OffsetX
		c.state.Y = p.Y + c.opts.OffsetY
	}
	return nil
}

// Leave hides the tooltip.
func (c *Controller) Leave() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.released {
		return ErrReleased
	}
	c.state = State{}
	return nil
}

// State returns a copy of the current state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	s := c.state
	s.Lines = append([]string(nil), c.state.Lines...)
	return s
}

// Release hides the tooltip and removes its element from the document.
// Releasing twice is a no-op.
func (c *Controller) Release() {
	c.mu.Lock()
	if c.released {
		c.mu.Unlock()
		return
	}
	c.released = true
	c.state = State{}
	c.mu.Unlock()
	c.doc.remove(c.id)
}
