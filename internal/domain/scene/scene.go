// Package scene is the retained output of one render pass: a tree of
// shapes with their final geometry, style, pending animations and hover
// labels. A scene knows nothing about how it is painted.
package scene

import (
	"time"

	"github.com/okian/rally/internal/domain/geom"
)

// Kind is the shape of a node.
type Kind string

const (
	KindGroup   Kind = "g"
	KindRect    Kind = "rect"
	KindCircle  Kind = "circle"
	KindLine    Kind = "line"
	KindPath    Kind = "path"
	KindPolygon Kind = "polygon"
	KindText    Kind = "text"
)

// Style holds presentation attributes. Empty strings and zero numbers are
// left unset when committed, except Opacity which defaults to 1.
type Style struct {
	Fill        string
	Stroke      string
	StrokeWidth float64
	Opacity     float64
	FontSize    float64
	FontWeight  string
	Anchor      string // start, middle, end
	Baseline    string
	DashArray   float64
	DashOffset  float64
}

// Transform is a translation followed by a rotation in degrees.
type Transform struct {
	TX, TY float64
	Rotate float64
}

// IsZero reports whether the transform is the identity.
func (t Transform) IsZero() bool { return t == Transform{} }

// Hover is the tooltip content attached to a node.
type Hover struct {
	Lines []string
}

// Node is one element of the scene tree. Which geometry fields apply
// depends on Kind: rects use X,Y,W,H; circles X,Y,R; lines X,Y to X2,Y2;
// text is anchored at X,Y; polygons use Points; paths use Path.
type Node struct {
	ID        string
	Kind      Kind
	Class     string
	X, Y      float64
	X2, Y2    float64
	W, H      float64
	R         float64
	Points    []geom.Point
	Path      geom.Path
	Text      string
	Style     Style
	Transform Transform
	Children  []*Node
	Anims     []Animation
	Hover     *Hover
}

// NewNode returns a fully opaque node of the given kind.
func NewNode(kind Kind, id string) *Node {
	return &Node{Kind: kind, ID: id, Style: Style{Opacity: 1}}
}

// Group returns a group translated to (tx, ty).
func Group(id string, tx, ty float64) *Node {
	n := NewNode(KindGroup, id)
	n.Transform = Transform{TX: tx, TY: ty}
	return n
}

// Add appends children and returns n.
func (n *Node) Add(children ...*Node) *Node {
	n.Children = append(n.Children, children...)
	return n
}

// Animate appends an animation and returns n.
func (n *Node) Animate(a Animation) *Node {
	n.Anims = append(n.Anims, a)
	return n
}

// Clone deep-copies the node and its subtree.
func (n *Node) Clone() *Node {
	if n == nil {
		return nil
	}
	c := *n
	c.Points = clonePoints(n.Points)
	c.Path = n.Path.Clone()
	if n.Anims != nil {
		c.Anims = make([]Animation, len(n.Anims))
		for i, a := range n.Anims {
			a.FromPoints = clonePoints(a.FromPoints)
			a.ToPoints = clonePoints(a.ToPoints)
			c.Anims[i] = a
		}
	}
	if n.Hover != nil {
		c.Hover = &Hover{Lines: append([]string(nil), n.Hover.Lines...)}
	}
	if n.Children != nil {
		c.Children = make([]*Node, len(n.Children))
		for i, ch := range n.Children {
			c.Children[i] = ch.Clone()
		}
	}
	return &c
}

func clonePoints(pts []geom.Point) []geom.Point {
	if pts == nil {
		return nil
	}
	return append([]geom.Point(nil), pts...)
}

// Scene is the output of a render pass.
type Scene struct {
	Width, Height float64
	Root          *Node
}

// New returns an empty scene of the given size.
func New(width, height float64) *Scene {
	return &Scene{Width: width, Height: height, Root: Group("root", 0, 0)}
}

// Empty reports whether the scene draws nothing.
func (s *Scene) Empty() bool {
	return s == nil || s.Root == nil || len(s.Root.Children) == 0
}

// Clone deep-copies the scene.
func (s *Scene) Clone() *Scene {
	if s == nil {
		return nil
	}
	return &Scene{Width: s.Width, Height: s.Height, Root: s.Root.Clone()}
}

// Walk visits every node depth-first in paint order. offset is the
// accumulated translation of the node's ancestors. Returning false from fn
// skips the node's children.
func (s *Scene) Walk(fn func(n *Node, offset geom.Point) bool) {
	if s == nil || s.Root == nil {
		return
	}
	walk(s.Root, geom.Point{}, fn)
}

func walk(n *Node, offset geom.Point, fn func(*Node, geom.Point) bool) {
	if !fn(n, offset) {
		return
	}
	inner := offset.Add(geom.Pt(n.Transform.TX, n.Transform.TY))
	for _, c := range n.Children {
		walk(c, inner, fn)
	}
}

// Count returns the number of nodes of kind k.
func (s *Scene) Count(k Kind) int {
	total := 0
	s.Walk(func(n *Node, _ geom.Point) bool {
		if n.Kind == k {
			total++
		}
		return true
	})
	return total
}

// Size returns the number of nodes, root included.
func (s *Scene) Size() int {
	total := 0
	s.Walk(func(*Node, geom.Point) bool {
		total++
		return true
	})
	return total
}

// Find returns the node with the given id.
func (s *Scene) Find(id string) *Node {
	var found *Node
	s.Walk(func(n *Node, _ geom.Point) bool {
		if found == nil && n.ID == id {
			found = n
		}
		return found == nil
	})
	return found
}

// FindClass returns every node with the given class in paint order.
func (s *Scene) FindClass(class string) []*Node {
	var out []*Node
	s.Walk(func(n *Node, _ geom.Point) bool {
		if n.Class == class {
			out = append(out, n)
		}
		return true
	})
	return out
}

// Duration returns the time at which the last animation finishes.
func (s *Scene) Duration() time.Duration {
	var end time.Duration
	s.Walk(func(n *Node, _ geom.Point) bool {
		for _, a := range n.Anims {
			if e := a.End(); e > end {
				end = e
			}
		}
		return true
	})
	return end
}
