package geom

import "strings"

// flattenSteps is the number of chords used per cubic segment when a path
// is measured or rasterized.
const flattenSteps = 32

// SegmentKind identifies a path command.
type SegmentKind int

const (
	MoveTo SegmentKind = iota
	LineTo
	CubicTo
	ClosePath
)

// Segment is one path command. MoveTo and LineTo use Pts[0]; CubicTo uses
// two control points followed by the end point.
type Segment struct {
	Kind SegmentKind
	Pts  [3]Point
}

// Path is an ordered list of segments.
type Path struct {
	Segments []Segment
}

// MoveTo starts a new subpath.
func (p *Path) MoveTo(pt Point) {
	p.Segments = append(p.Segments, Segment{Kind: MoveTo, Pts: [3]Point{pt}})
}

// LineTo draws a straight line to pt.
func (p *Path) LineTo(pt Point) {
	p.Segments = append(p.Segments, Segment{Kind: LineTo, Pts: [3]Point{pt}})
}

// CubicTo draws a cubic Bézier curve to end.
func (p *Path) CubicTo(c1, c2, end Point) {
	p.Segments = append(p.Segments, Segment{Kind: CubicTo, Pts: [3]Point{c1, c2, end}})
}

// Close closes the current subpath.
func (p *Path) Close() {
	p.Segments = append(p.Segments, Segment{Kind: ClosePath})
}

// Empty reports whether the path draws nothing.
func (p Path) Empty() bool { return len(p.Segments) == 0 }

// Clone returns a deep copy.
func (p Path) Clone() Path {
	if p.Segments == nil {
		return Path{}
	}
	return Path{Segments: append([]Segment(nil), p.Segments...)}
}

// Polygon builds a closed path through pts.
func Polygon(pts []Point) Path {
	var p Path
	for i, pt := range pts {
		if i == 0 {
			p.MoveTo(pt)
			continue
		}
		p.LineTo(pt)
	}
	if len(pts) > 0 {
		p.Close()
	}
	return p
}

// SVG renders the path as an SVG path data string.
func (p Path) SVG() string {
	var b strings.Builder
	for _, s := range p.Segments {
		switch s.Kind {
		case MoveTo:
			b.WriteString("M")
			writePoint(&b, s.Pts[0])
		case LineTo:
			b.WriteString("L")
			writePoint(&b, s.Pts[0])
		case CubicTo:
			b.WriteString("C")
			writePoint(&b, s.Pts[0])
			b.WriteString(",")
			writePoint(&b, s.Pts[1])
			b.WriteString(",")
			writePoint(&b, s.Pts[2])
		case ClosePath:
			b.WriteString("Z")
		}
	}
	return b.String()
}

func writePoint(b *strings.Builder, pt Point) {
	b.WriteString(Num(pt.X))
	b.WriteString(",")
	b.WriteString(Num(pt.Y))
}

// Flatten converts the path into polylines, one per subpath. Closed
// subpaths end with their starting point.
func (p Path) Flatten() [][]Point {
	var (
		out   [][]Point
		cur   []Point
		start Point
	)
	flush := func() {
		if len(cur) > 0 {
			out = append(out, cur)
		}
		cur = nil
	}
	for _, s := range p.Segments {
		switch s.Kind {
		case MoveTo:
			flush()
			start = s.Pts[0]
			cur = []Point{start}
		case LineTo:
			if len(cur) == 0 {
				cur = []Point{start}
			}
			cur = append(cur, s.Pts[0])
		case CubicTo:
			if len(cur) == 0 {
				cur = []Point{start}
			}
			p0 := cur[len(cur)-1]
			for i := 1; i <= flattenSteps; i++ {
				cur = append(cur, cubicAt(p0, s.Pts[0], s.Pts[1], s.Pts[2], float64(i)/flattenSteps))
			}
		case ClosePath:
			if len(cur) > 0 {
				cur = append(cur, start)
			}
			flush()
		}
	}
	flush()
	return out
}

// Length returns the drawn length of the path. Cubic segments are measured
// on their flattened polyline.
func (p Path) Length() float64 {
	total := 0.0
	for _, line := range p.Flatten() {
		for i := 1; i < len(line); i++ {
			total += line[i].Dist(line[i-1])
		}
	}
	return total
}

func cubicAt(p0, p1, p2, p3 Point, t float64) Point {
	u := 1 - t
	a, b, c, d := u*u*u, 3*u*u*t, 3*u*t*t, t*t*t
	return Point{
		X: a*p0.X + b*p1.X + c*p2.X + d*p3.X,
		Y: a*p0.Y + b*p1.Y + c*p2.Y + d*p3.Y,
	}
}
