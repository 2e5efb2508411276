package scene

import (
	"time"

	"github.com/okian/rally/internal/domain/animation"
	"github.com/okian/rally/internal/domain/geom"
)

// Prop is the attribute an animation drives.
type Prop string

const (
	PropWidth      Prop = "width"
	PropOpacity    Prop = "opacity"
	PropDashOffset Prop = "stroke-dashoffset"
	PropPoints     Prop = "points"
)

// Animation tweens one attribute of a node. The node itself carries the
// final value; From/To describe the transition towards it.
type Animation struct {
	Prop       Prop
	From, To   float64
	FromPoints []geom.Point
	ToPoints   []geom.Point
	Delay      time.Duration
	Duration   time.Duration
	Ease       string
}

// End returns when the animation finishes.
func (a Animation) End() time.Duration { return a.Delay + a.Duration }

// apply sets the animated attribute of n to its value at elapsed.
func (a Animation) apply(n *Node, elapsed time.Duration) {
	t := animation.Progress(elapsed, a.Delay, a.Duration, animation.EaseByName(a.Ease))
	switch a.Prop {
	case PropWidth:
		n.W = animation.Lerp(a.From, a.To, t)
	case PropOpacity:
		n.Style.Opacity = animation.Lerp(a.From, a.To, t)
	case PropDashOffset:
		n.Style.DashOffset = animation.Lerp(a.From, a.To, t)
	case PropPoints:
		n.Points = animation.LerpPoints(a.FromPoints, a.ToPoints, t)
	}
}

// Frame returns a copy of the scene as it looks elapsed after the render
// pass started. Animations are resolved and dropped from the copy.
func (s *Scene) Frame(elapsed time.Duration) *Scene {
	f := s.Clone()
	f.Walk(func(n *Node, _ geom.Point) bool {
		for _, a := range n.Anims {
			a.apply(n, elapsed)
		}
		n.Anims = nil
		return true
	})
	return f
}

// HitTest returns the topmost node with hover content whose final geometry
// contains p, in scene coordinates. Rotated nodes are not hit-tested.
func (s *Scene) HitTest(p geom.Point) *Node {
	var hit *Node
	s.Walk(func(n *Node, offset geom.Point) bool {
		if n.Transform.Rotate != 0 {
			return false
		}
		if n.Hover != nil && contains(n, p.Sub(offset)) {
			hit = n
		}
		return true
	})
	return hit
}

func contains(n *Node, p geom.Point) bool {
	p = p.Sub(geom.Pt(n.Transform.TX, n.Transform.TY))
	switch n.Kind {
	case KindRect:
		return geom.Rect{X: n.X, Y: n.Y, W: n.W, H: n.H}.Contains(p)
	case KindCircle:
		return p.Dist(geom.Pt(n.X, n.Y)) <= n.R
	case KindPolygon:
		return geom.InPolygon(p, n.Points)
	}
	return false
}
