// Package raster paints scenes into RGBA images and encodes them as PNG.
// Shapes go through an anti-aliasing vector rasterizer and text is drawn
// with the bundled Go fonts, so output is the same on every host.
package raster

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"io"
	"math"
	"time"

	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/math/f64"
	"golang.org/x/image/math/fixed"
	"golang.org/x/image/vector"

	"github.com/okian/rally/internal/domain/geom"
	"github.com/okian/rally/internal/domain/scene"
)

// ContentType is the media type of EncodePNG output.
const ContentType = "image/png"

// circleSegments is the polygon resolution used for circles.
const circleSegments = 32

// Rasterizer paints scenes. It is safe for concurrent use.
type Rasterizer struct {
	background string
	foreground string
	scale      float64
	faces      *faces
}

// New returns a rasterizer with a transparent background, white
// currentColor and unit scale.
func New(opts ...Option) (*Rasterizer, error) {
	fc, err := newFaces()
	if err != nil {
		return nil, err
	}
	r := &Rasterizer{foreground: "white", scale: 1, faces: fc}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// Scale returns the coordinate multiplier.
func (r *Rasterizer) Scale() float64 { return r.scale }

// Scaled returns a copy of r drawing at scale. Loaded fonts are shared.
func (r *Rasterizer) Scaled(scale float64) *Rasterizer {
	c := *r
	if scale > 0 {
		c.scale = scale
	}
	return &c
}

// Render paints s as it looks at elapsed time at.
func (r *Rasterizer) Render(s *scene.Scene, at time.Duration) (*image.RGBA, error) {
	w := int(math.Ceil(s.Width * r.scale))
	h := int(math.Ceil(s.Height * r.scale))
	if w <= 0 || h <= 0 {
		return nil, ErrEmptyScene
	}
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	if bg, ok := parseColor(r.background, r.foreground); ok {
		draw.Draw(img, img.Bounds(), image.NewUniform(bg), image.Point{}, draw.Src)
	}
	frame := s.Frame(at)
	if frame.Root == nil {
		return img, nil
	}
	p := &painter{r: r, img: img, vec: vector.NewRasterizer(w, h)}
	base := affine{a: r.scale, d: r.scale}
	for _, c := range frame.Root.Children {
		if err := p.node(c, base, 0, 1); err != nil {
			return nil, err
		}
	}
	return img, nil
}

// EncodePNG renders s at elapsed time at and writes it as PNG.
func (r *Rasterizer) EncodePNG(w io.Writer, s *scene.Scene, at time.Duration) error {
	img, err := r.Render(s, at)
	if err != nil {
		return err
	}
	enc := png.Encoder{CompressionLevel: png.BestSpeed}
	if err := enc.Encode(w, img); err != nil {
		return fmt.Errorf("encode png: %w", err)
	}
	return nil
}

// affine maps (x, y) to (a*x + c*y + e, b*x + d*y + f).
type affine struct {
	a, b, c, d, e, f float64
}

func (m affine) apply(p geom.Point) geom.Point {
	return geom.Pt(m.a*p.X+m.c*p.Y+m.e, m.b*p.X+m.d*p.Y+m.f)
}

// then returns m applied after n.
func (m affine) then(n affine) affine {
	return affine{
		a: m.a*n.a + m.c*n.b,
		b: m.b*n.a + m.d*n.b,
		c: m.a*n.c + m.c*n.d,
		d: m.b*n.c + m.d*n.d,
		e: m.a*n.e + m.c*n.f + m.e,
		f: m.b*n.e + m.d*n.f + m.f,
	}
}

func (m affine) with(t scene.Transform) affine {
	if t.IsZero() {
		return m
	}
	m = m.then(affine{a: 1, d: 1, e: t.TX, f: t.TY})
	if t.Rotate != 0 {
		sin, cos := math.Sincos(t.Rotate * math.Pi / 180)
		m = m.then(affine{a: cos, b: sin, c: -sin, d: cos})
	}
	return m
}

type painter struct {
	r   *Rasterizer
	img *image.RGBA
	vec *vector.Rasterizer
}

func (p *painter) node(n *scene.Node, m affine, angle, opacity float64) error {
	m = m.with(n.Transform)
	angle += n.Transform.Rotate
	opacity *= n.Style.Opacity
	if opacity <= 0 {
		return nil
	}

	switch n.Kind {
	case scene.KindGroup:
		for _, c := range n.Children {
			if err := p.node(c, m, angle, opacity); err != nil {
				return err
			}
		}
	case scene.KindRect:
		if n.W <= 0 || n.H <= 0 {
			return nil
		}
		p.shape(n, m, opacity, geom.Pt(n.X, n.Y), geom.Pt(n.X+n.W, n.Y),
			geom.Pt(n.X+n.W, n.Y+n.H), geom.Pt(n.X, n.Y+n.H))
	case scene.KindCircle:
		if n.R <= 0 {
			return nil
		}
		pts := make([]geom.Point, circleSegments)
		for i := range pts {
			pts[i] = geom.Pt(n.X, n.Y).Add(geom.Polar(2*math.Pi*float64(i)/circleSegments, n.R))
		}
		p.shape(n, m, opacity, pts...)
	case scene.KindPolygon:
		p.shape(n, m, opacity, n.Points...)
	case scene.KindLine:
		p.stroke(n, m, opacity, []geom.Point{geom.Pt(n.X, n.Y), geom.Pt(n.X2, n.Y2)})
	case scene.KindPath:
		lines := n.Path.Flatten()
		if c, ok := parseColor(n.Style.Fill, p.r.foreground); ok {
			p.vec.Reset(p.img.Bounds().Dx(), p.img.Bounds().Dy())
			for _, line := range lines {
				p.contour(line, m)
			}
			p.flush(withOpacity(c, opacity))
		}
		for _, line := range lines {
			p.stroke(n, m, opacity, line)
		}
	case scene.KindText:
		return p.text(n, m, angle, opacity)
	}
	return nil
}

// shape fills and strokes a closed outline given in user space.
func (p *painter) shape(n *scene.Node, m affine, opacity float64, pts ...geom.Point) {
	if len(pts) < 2 {
		return
	}
	if c, ok := parseColor(n.Style.Fill, p.r.foreground); ok {
		p.vec.Reset(p.img.Bounds().Dx(), p.img.Bounds().Dy())
		p.contour(pts, m)
		p.flush(withOpacity(c, opacity))
	}
	p.stroke(n, m, opacity, append(append([]geom.Point(nil), pts...), pts[0]))
}

// contour adds one closed subpath to the vector rasterizer.
func (p *painter) contour(pts []geom.Point, m affine) {
	for i, pt := range pts {
		d := m.apply(pt)
		if i == 0 {
			p.vec.MoveTo(float32(d.X), float32(d.Y))
			continue
		}
		p.vec.LineTo(float32(d.X), float32(d.Y))
	}
	p.vec.ClosePath()
}

func (p *painter) flush(c color.NRGBA) {
	p.vec.DrawOp = draw.Over
	p.vec.Draw(p.img, p.img.Bounds(), image.NewUniform(c), image.Point{})
}

// stroke draws a polyline as one quad per segment. Every quad has the
// same orientation, so overlaps at joints accumulate instead of cancel.
func (p *painter) stroke(n *scene.Node, m affine, opacity float64, line []geom.Point) {
	c, ok := parseColor(n.Style.Stroke, p.r.foreground)
	if !ok || len(line) < 2 {
		return
	}
	width := n.Style.StrokeWidth
	if width <= 0 {
		width = 1
	}
	half := width * p.r.scale / 2

	p.vec.Reset(p.img.Bounds().Dx(), p.img.Bounds().Dy())
	drawn := false
	for _, run := range dashes(line, n.Style.DashArray, n.Style.DashOffset) {
		for i := 1; i < len(run); i++ {
			a, b := m.apply(run[i-1]), m.apply(run[i])
			length := a.Dist(b)
			if length == 0 {
				continue
			}
			nx, ny := -(b.Y-a.Y)/length*half, (b.X-a.X)/length*half
			p.vec.MoveTo(float32(a.X+nx), float32(a.Y+ny))
			p.vec.LineTo(float32(b.X+nx), float32(b.Y+ny))
			p.vec.LineTo(float32(b.X-nx), float32(b.Y-ny))
			p.vec.LineTo(float32(a.X-nx), float32(a.Y-ny))
			p.vec.ClosePath()
			drawn = true
		}
	}
	if drawn {
		p.flush(withOpacity(c, opacity))
	}
}

// dashes splits line into the visible runs of a dash pattern with equal
// dash and gap lengths, shifted by offset.
func dashes(line []geom.Point, dash, offset float64) [][]geom.Point {
	if dash <= 0 {
		return [][]geom.Point{line}
	}
	period := 2 * dash
	pos := math.Mod(offset, period)
	if pos < 0 {
		pos += period
	}
	on := pos < dash
	remaining := dash - pos
	if !on {
		remaining = period - pos
	}

	var (
		out [][]geom.Point
		cur []geom.Point
	)
	if on {
		cur = []geom.Point{line[0]}
	}
	for i := 1; i < len(line); i++ {
		a, b := line[i-1], line[i]
		length := a.Dist(b)
		t := 0.0
		for length-t > remaining {
			t += remaining
			at := geom.Pt(a.X+(b.X-a.X)*t/length, a.Y+(b.Y-a.Y)*t/length)
			if on {
				out = append(out, append(cur, at))
				cur = nil
			} else {
				cur = []geom.Point{at}
			}
			on = !on
			remaining = dash
		}
		remaining -= length - t
		if on {
			cur = append(cur, b)
		}
	}
	if on && len(cur) > 1 {
		out = append(out, cur)
	}
	return out
}

// text draws n anchored at its position. Rotated labels are drawn upright
// into a scratch image and then transformed onto the canvas.
func (p *painter) text(n *scene.Node, m affine, angle, opacity float64) error {
	if n.Text == "" {
		return nil
	}
	fill := n.Style.Fill
	if fill == "" {
		fill = "black"
	}
	c, ok := parseColor(fill, p.r.foreground)
	if !ok {
		return nil
	}
	src := image.NewUniform(withOpacity(c, opacity))

	p.r.faces.mu.Lock()
	defer p.r.faces.mu.Unlock()
	face, err := p.r.faces.face(n.Style.FontSize*p.r.scale, n.Style.FontWeight == "bold")
	if err != nil {
		return err
	}

	metrics := face.Metrics()
	ascent, descent := fix(metrics.Ascent), fix(metrics.Descent)
	advance := fix(font.MeasureString(face, n.Text))
	var dx, dy float64
	switch n.Style.Anchor {
	case "middle":
		dx = -advance / 2
	case "end":
		dx = -advance
	}
	switch n.Style.Baseline {
	case "middle", "central":
		dy = (ascent - descent) / 2
	case "hanging":
		dy = ascent
	}

	anchor := m.apply(geom.Pt(n.X, n.Y))
	if angle == 0 {
		d := font.Drawer{Dst: p.img, Src: src, Face: face, Dot: point26(anchor.X+dx, anchor.Y+dy)}
		d.DrawString(n.Text)
		return nil
	}

	w, h := int(math.Ceil(advance))+2, int(math.Ceil(ascent+descent))+2
	scratch := image.NewRGBA(image.Rect(0, 0, w, h))
	d := font.Drawer{Dst: scratch, Src: src, Face: face, Dot: point26(1, 1+ascent)}
	d.DrawString(n.Text)

	ax, ay := 1-dx, 1+ascent-dy
	sin, cos := math.Sincos(angle * math.Pi / 180)
	s2d := f64.Aff3{
		cos, -sin, anchor.X - (cos*ax - sin*ay),
		sin, cos, anchor.Y - (sin*ax + cos*ay),
	}
	xdraw.BiLinear.Transform(p.img, s2d, scratch, scratch.Bounds(), xdraw.Over, nil)
	return nil
}

func fix(v fixed.Int26_6) float64 { return float64(v) / 64 }

func point26(x, y float64) fixed.Point26_6 {
	return fixed.Point26_6{X: fixed.Int26_6(math.Round(x * 64)), Y: fixed.Int26_6(math.Round(y * 64))}
}
