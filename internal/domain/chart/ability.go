package chart

import (
	"math"
	"strconv"

	"github.com/okian/rally/internal/domain/geom"
	"github.com/okian/rally/internal/domain/model"
	"github.com/okian/rally/internal/domain/scene"
	"github.com/okian/rally/internal/domain/tooltip"
)

// Radar layout, relative to the square side.
const (
	radarRadiusRatio = 0.4
	labelGapRatio    = 1.0 / 16
	gridColor        = "#ccc"
	labelColor       = "#b22222"
	labelFontSize    = 16
	shapeFill        = "rgba(255,0,0,0.4)"
	shapeStroke      = "#ff0000"
	shapeStrokeWidth = 2
)

// AbilityRenderer draws the six ability scores as a radar polygon over a
// hexagonal grid.
type AbilityRenderer struct {
	s settings
}

// NewAbilityRenderer returns an ability renderer.
func NewAbilityRenderer(opts ...Option) *AbilityRenderer {
	return &AbilityRenderer{s: newSettings(opts)}
}

// Kind implements Renderer.
func (r *AbilityRenderer) Kind() Kind { return KindAbility }

// Tooltip implements Renderer. The radar has no hover targets.
func (r *AbilityRenderer) Tooltip() tooltip.Options { return tooltip.Options{} }

// Render implements Renderer.
func (r *AbilityRenderer) Render(data Data, size model.ContainerSize) *scene.Scene {
	return r.RenderVector(data.Ability, size)
}

// RenderVector draws v centered in a container of the given size.
func (r *AbilityRenderer) RenderVector(v model.AbilityVector, size model.ContainerSize) *scene.Scene {
	out := scene.New(size.Width, size.Height)
	side := math.Min(size.Width, size.Height)
	if size.IsZero() || side <= 0 {
		return out
	}
	radius := radarRadiusRatio * side

	g := scene.Group("radar", size.Width/2, size.Height/2)
	for level := 1; level <= r.s.abilityLevels; level++ {
		ring := scene.NewNode(scene.KindPolygon, "grid-"+strconv.Itoa(level))
		ring.Class = "grid"
		ring.Points = hexagon(radius / float64(r.s.abilityLevels) * float64(level))
		ring.Style.Stroke = gridColor
		ring.Style.Fill = "none"
		g.Add(ring)
	}

	labelR := radius + side*labelGapRatio
	for i, label := range model.AbilityLabels {
		at := geom.Polar(axisAngle(i), labelR)
		t := scene.NewNode(scene.KindText, "label-"+strconv.Itoa(i))
		t.Class = "label"
		t.Text = label
		t.X, t.Y = at.X, at.Y
		t.Style.Fill = labelColor
		t.Style.FontSize = labelFontSize
		t.Style.Anchor = "middle"
		t.Style.Baseline = "middle"
		g.Add(t)
	}

	g.Add(r.shape(v, radius))
	out.Root.Add(g)
	return out
}

// shape is the value polygon, grown out of the center.
func (r *AbilityRenderer) shape(v model.AbilityVector, radius float64) *scene.Node {
	to := VertexPoints(v, r.s.abilityMax, radius)
	n := scene.NewNode(scene.KindPolygon, "shape")
	n.Class = "shape"
	n.Points = to
	n.Style.Fill = shapeFill
	n.Style.Stroke = shapeStroke
	n.Style.StrokeWidth = shapeStrokeWidth
	return n.Animate(scene.Animation{
		Prop:       scene.PropPoints,
		FromPoints: make([]geom.Point, len(to)),
		ToPoints:   append([]geom.Point(nil), to...),
		Duration:   r.s.radarDuration,
	})
}

// VertexPoints places each value on its axis. Values are clamped to
// [0,maxValue] so maxValue lands on the outer ring.
func VertexPoints(v model.AbilityVector, maxValue, radius float64) []geom.Point {
	pts := make([]geom.Point, len(v))
	for i, x := range v {
		x = math.Max(0, math.Min(x, maxValue))
		pts[i] = geom.Polar(axisAngle(i), x/maxValue*radius)
	}
	return pts
}

func axisAngle(i int) float64 {
	return 2 * math.Pi * float64(i) / model.AbilityDimensions
}

func hexagon(r float64) []geom.Point {
	pts := make([]geom.Point, model.AbilityDimensions)
	for i := range pts {
		pts[i] = geom.Polar(axisAngle(i), r)
	}
	return pts
}
