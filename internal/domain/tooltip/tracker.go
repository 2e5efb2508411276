package tooltip

import (
	"github.com/okian/rally/internal/domain/geom"
	"github.com/okian/rally/internal/domain/scene"
)

// Event is the hover transition produced by a pointer sample.
type Event string

const (
	EventNone  Event = ""
	EventEnter Event = "enter"
	EventMove  Event = "move"
	EventLeave Event = "leave"
)

// Tracker turns raw pointer positions into enter/move/leave calls on a
// controller by hit-testing the committed scene.
type Tracker struct {
	ctrl    *Controller
	current string
}

// NewTracker returns a tracker driving c.
func NewTracker(c *Controller) *Tracker {
	return &Tracker{ctrl: c}
}

// Pointer handles a pointer sample at p. inside is false when the pointer
// left the chart surface.
func (t *Tracker) Pointer(s *scene.Scene, p geom.Point, inside bool) (Event, error) {
	var hit *scene.Node
	if inside && s != nil {
		hit = s.HitTest(p)
	}
	switch {
	case hit == nil && t.current == "":
		return EventNone, nil
	case hit == nil:
		t.current = ""
		return EventLeave, t.ctrl.Leave()
	case hit.ID != t.current:
		t.current = hit.ID
		return EventEnter, t.ctrl.Enter(p, hit.Hover.Lines)
	case t.ctrl.Options().Follow:
		return EventMove, t.ctrl.Move(p)
	}
	return EventNone, nil
}

// Reset forgets the hovered element and hides the tooltip. Called when the
// scene is replaced.
func (t *Tracker) Reset() error {
	if t.current == "" {
		return nil
	}
	t.current = ""
	return t.ctrl.Leave()
}
