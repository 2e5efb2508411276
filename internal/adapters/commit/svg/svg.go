// Package svg commits scenes as standalone SVG documents. Animations are
// expressed as SMIL <animate> elements so the output plays in a browser
// without script.
package svg

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/okian/rally/internal/domain/animation"
	"github.com/okian/rally/internal/domain/geom"
	"github.com/okian/rally/internal/domain/scene"
)

// ContentType is the media type of the encoded output.
const ContentType = "image/svg+xml"

// cubicInOutSplines approximates the cubic in-out easing as a CSS bezier.
const cubicInOutSplines = "0.645 0.045 0.355 1"

// Encoder writes scenes as SVG.
type Encoder struct {
	background string
	foreground string
	animate    bool
}

// NewEncoder returns an encoder with animations enabled.
func NewEncoder(opts ...Option) *Encoder {
	e := &Encoder{foreground: "white", animate: true}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Encode writes s to w.
func (e *Encoder) Encode(w io.Writer, s *scene.Scene) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, `<svg xmlns="http://www.w3.org/2000/svg" width="%s" height="%s" viewBox="0 0 %s %s" font-family="sans-serif" color="%s">`,
		geom.Num(s.Width), geom.Num(s.Height), geom.Num(s.Width), geom.Num(s.Height), escapeXML(e.foreground))
	if e.background != "" {
		fmt.Fprintf(bw, `<rect width="100%%" height="100%%" fill="%s"/>`, escapeXML(e.background))
	}
	if s.Root != nil {
		for _, c := range s.Root.Children {
			e.node(bw, c)
		}
	}
	bw.WriteString("</svg>")
	return bw.Flush()
}

// node writes n and its subtree.
func (e *Encoder) node(w *bufio.Writer, n *scene.Node) {
	attrs := e.attrs(n)
	tag := string(n.Kind)
	if n.Kind == scene.KindGroup {
		fmt.Fprintf(w, "<g%s>", attrs)
		for _, c := range n.Children {
			e.node(w, c)
		}
		w.WriteString("</g>")
		return
	}

	inner := e.anims(n)
	if n.Hover != nil {
		inner += "<title>" + escapeXML(strings.Join(n.Hover.Lines, "\n")) + "</title>"
	}
	if n.Kind == scene.KindText {
		inner += escapeXML(n.Text)
	}
	if inner == "" {
		fmt.Fprintf(w, "<%s%s/>", tag, attrs)
		return
	}
	fmt.Fprintf(w, "<%s%s>%s</%s>", tag, attrs, inner, tag)
}

// attrs renders geometry, style and transform. Animated attributes start
// at their initial value when animations are enabled.
func (e *Encoder) attrs(n *scene.Node) string {
	n = e.initial(n)
	var b strings.Builder
	attr := func(k, v string) {
		b.WriteString(" ")
		b.WriteString(k)
		b.WriteString(`="`)
		b.WriteString(escapeXML(v))
		b.WriteString(`"`)
	}
	num := func(k string, v float64) { attr(k, geom.Num(v)) }

	if n.ID != "" {
		attr("id", n.ID)
	}
	if n.Class != "" {
		attr("class", n.Class)
	}
	if t := transform(n.Transform); t != "" {
		attr("transform", t)
	}
	switch n.Kind {
	case scene.KindRect:
		num("x", n.X)
		num("y", n.Y)
		num("width", n.W)
		num("height", n.H)
	case scene.KindCircle:
		num("cx", n.X)
		num("cy", n.Y)
		num("r", n.R)
	case scene.KindLine:
		num("x1", n.X)
		num("y1", n.Y)
		num("x2", n.X2)
		num("y2", n.Y2)
	case scene.KindPath:
		attr("d", n.Path.SVG())
	case scene.KindPolygon:
		attr("points", points(n.Points))
	case scene.KindText:
		num("x", n.X)
		num("y", n.Y)
	}

	st := n.Style
	if st.Fill != "" {
		attr("fill", st.Fill)
	}
	if st.Stroke != "" {
		attr("stroke", st.Stroke)
	}
	if st.StrokeWidth != 0 {
		num("stroke-width", st.StrokeWidth)
	}
	if st.DashArray != 0 {
		num("stroke-dasharray", st.DashArray)
		num("stroke-dashoffset", st.DashOffset)
	}
	if st.Opacity != 1 {
		num("opacity", st.Opacity)
	}
	if st.FontSize != 0 {
		num("font-size", st.FontSize)
	}
	if st.FontWeight != "" {
		attr("font-weight", st.FontWeight)
	}
	if st.Anchor != "" {
		attr("text-anchor", st.Anchor)
	}
	if st.Baseline != "" {
		attr("dominant-baseline", st.Baseline)
	}
	return b.String()
}

// initial returns n with animated attributes set to their start values.
func (e *Encoder) initial(n *scene.Node) *scene.Node {
	if !e.animate || len(n.Anims) == 0 {
		return n
	}
	c := *n
	for _, a := range n.Anims {
		switch a.Prop {
		case scene.PropWidth:
			c.W = a.From
		case scene.PropOpacity:
			c.Style.Opacity = a.From
		case scene.PropDashOffset:
			c.Style.DashOffset = a.From
		case scene.PropPoints:
			c.Points = a.FromPoints
		}
	}
	return &c
}

func (e *Encoder) anims(n *scene.Node) string {
	if !e.animate {
		return ""
	}
	var b strings.Builder
	for _, a := range n.Anims {
		from, to := geom.Num(a.From), geom.Num(a.To)
		if a.Prop == scene.PropPoints {
			from, to = points(a.FromPoints), points(a.ToPoints)
		}
		fmt.Fprintf(&b, `<animate attributeName="%s" from="%s" to="%s" begin="%dms" dur="%dms" fill="freeze"`,
			a.Prop, from, to, a.Delay.Milliseconds(), a.Duration.Milliseconds())
		if a.Ease != animation.NameLinear {
			fmt.Fprintf(&b, ` calcMode="spline" keyTimes="0;1" keySplines="%s"`, cubicInOutSplines)
		}
		b.WriteString("/>")
	}
	return b.String()
}

func transform(t scene.Transform) string {
	var parts []string
	if t.TX != 0 || t.TY != 0 {
		parts = append(parts, "translate("+geom.Num(t.TX)+","+geom.Num(t.TY)+")")
	}
	if t.Rotate != 0 {
		parts = append(parts, "rotate("+geom.Num(t.Rotate)+")")
	}
	return strings.Join(parts, " ")
}

func points(pts []geom.Point) string {
	parts := make([]string, len(pts))
	for i, p := range pts {
		parts[i] = geom.Num(p.X) + "," + geom.Num(p.Y)
	}
	return strings.Join(parts, " ")
}

func escapeXML(s string) string {
	s = strings.ReplaceAll(s, "&", "&amp;")
	s = strings.ReplaceAll(s, "<", "&lt;")
	s = strings.ReplaceAll(s, ">", "&gt;")
	s = strings.ReplaceAll(s, `"`, "&quot;")
	return s
}

// Surface keeps the latest committed document. Each commit replaces the
// previous output entirely.
type Surface struct {
	enc *Encoder

	mu      sync.RWMutex
	doc     []byte
	version int
}

// NewSurface returns a surface encoding with enc; nil uses the defaults.
func NewSurface(enc *Encoder) *Surface {
	if enc == nil {
		enc = NewEncoder()
	}
	return &Surface{enc: enc}
}

// Commit implements the mount committer contract.
func (s *Surface) Commit(ctx context.Context, sc *scene.Scene) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	var b strings.Builder
	if err := s.enc.Encode(&b, sc); err != nil {
		return fmt.Errorf("encode svg: %w", err)
	}
	s.mu.Lock()
	s.doc = []byte(b.String())
	s.version++
	s.mu.Unlock()
	return nil
}

// Target names the commit target in metrics and logs.
func (s *Surface) Target() string { return "svg" }

// Document returns the latest document and how many commits produced it.
func (s *Surface) Document() ([]byte, int) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.doc, s.version
}
