package chart

import (
	"strconv"
	"time"

	"github.com/okian/rally/internal/domain/animation"
	"github.com/okian/rally/internal/domain/geom"
	"github.com/okian/rally/internal/domain/model"
	"github.com/okian/rally/internal/domain/scale"
	"github.com/okian/rally/internal/domain/scene"
	"github.com/okian/rally/internal/domain/tooltip"
)

// Trend chart layout.
const (
	trendColor       = "#ff6600"
	trendStrokeWidth = 2
	markerRadius     = 4
	timeTickCount    = 12
	rankTickCount    = 20
	timeLabelRotate  = 45
	monthLayout      = "2006-01"
	// dashPad covers the arc length the chord approximation misses, so no
	// tail of the line shows before the reveal starts.
	dashPad = 1
)

// TrendMargins surround the trend plot area.
var TrendMargins = Margins{Top: 20, Right: 30, Bottom: 50, Left: 50} //nolint:gochecknoglobals // layout constant

// TrendTooltip follows the pointer above and right of it.
var TrendTooltip = tooltip.Options{OffsetX: 10, OffsetY: -20, Opacity: 0.9, Follow: true} //nolint:gochecknoglobals // layout constant

// TrendRenderer draws the monthly ranking history as a smoothed line with
// one marker per month.
type TrendRenderer struct {
	s settings
}

// NewTrendRenderer returns a trend renderer.
func NewTrendRenderer(opts ...Option) *TrendRenderer {
	return &TrendRenderer{s: newSettings(opts)}
}

// Kind implements Renderer.
func (r *TrendRenderer) Kind() Kind { return KindTrend }

// Tooltip implements Renderer.
func (r *TrendRenderer) Tooltip() tooltip.Options { return TrendTooltip }

// Render implements Renderer.
func (r *TrendRenderer) Render(data Data, size model.ContainerSize) *scene.Scene {
	return r.RenderSeries(data.Trend, size)
}

// RenderSeries draws points into a container of the given size.
func (r *TrendRenderer) RenderSeries(points []model.TimeSeriesPoint, size model.ContainerSize) *scene.Scene {
	out := scene.New(size.Width, size.Height)
	points = model.NormalizeSeries(points)
	innerW, innerH := TrendMargins.inner(size)
	if size.IsZero() || len(points) == 0 || innerW <= 0 || innerH <= 0 {
		return out
	}

	x := scale.NewTime(points[0].Date, points[len(points)-1].Date, 0, innerW)
	y := scale.Rank(model.MaxRank(points), r.s.rankFloor, innerH)

	pts := make([]geom.Point, len(points))
	for i, p := range points {
		pts[i] = geom.Pt(x.Map(p.Date), y.Map(float64(p.Rank)))
	}

	plot := scene.Group("plot", TrendMargins.Left, TrendMargins.Top)
	plot.Add(r.line(pts))
	for i, p := range points {
		plot.Add(r.marker(i, len(points), pts[i], p))
	}

	xAxis := bottomAxis("x-axis", 0, innerW, timeTicks(x), axisFontSize, timeLabelRotate)
	xAxis.Transform.TY = innerH
	plot.Add(xAxis, leftAxis("y-axis", innerH, 0, rankTicks(y), axisFontSize))

	out.Root.Add(
		plot,
		title("title-x", "Time", size.Width/2, size.Height, 0),
		title("title-y", "Rank", -size.Height/2, 15, -90),
	)
	return out
}

// line is the smoothed path, revealed by shrinking its dash offset.
func (r *TrendRenderer) line(pts []geom.Point) *scene.Node {
	n := scene.NewNode(scene.KindPath, "trend-line")
	n.Class = "line"
	n.Path = geom.MonotoneX(pts)
	length := n.Path.Length() + dashPad
	n.Style.Fill = "none"
	n.Style.Stroke = trendColor
	n.Style.StrokeWidth = trendStrokeWidth
	n.Style.DashArray = length
	n.Style.DashOffset = 0
	return n.Animate(scene.Animation{
		Prop:     scene.PropDashOffset,
		From:     length,
		To:       0,
		Duration: r.s.pathDuration,
		Ease:     animation.NameLinear,
	})
}

// marker is the dot for sample i of n. Markers fade in staggered so the
// last one completes together with the path.
func (r *TrendRenderer) marker(i, n int, at geom.Point, p model.TimeSeriesPoint) *scene.Node {
	c := scene.NewNode(scene.KindCircle, "marker-"+strconv.Itoa(i))
	c.Class = "marker"
	c.X, c.Y, c.R = at.X, at.Y, markerRadius
	c.Style.Fill = trendColor
	c.Hover = &scene.Hover{Lines: []string{
		"Date: " + p.Date.Format(monthLayout),
		"Rank: " + strconv.Itoa(p.Rank),
	}}
	return c.Animate(scene.Animation{
		Prop:     scene.PropOpacity,
		From:     0,
		To:       1,
		Delay:    MarkerDelay(i, n, r.s.pathDuration, r.s.pointDuration),
		Duration: r.s.pointDuration,
		Ease:     animation.NameCubicInOut,
	})
}

// MarkerDelay is the fade-in delay of marker i out of n.
func MarkerDelay(i, n int, path, point time.Duration) time.Duration {
	if n <= 1 || path <= point {
		return 0
	}
	return time.Duration(float64(i) / float64(n-1) * float64(path-point))
}

func timeTicks(x scale.Time) []tick {
	ts := x.MonthTicks(timeTickCount)
	out := make([]tick, len(ts))
	for i, t := range ts {
		out[i] = tick{pos: x.Map(t), label: t.Format(monthLayout)}
	}
	return out
}

func rankTicks(y scale.Linear) []tick {
	vs := y.Ticks(rankTickCount)
	out := make([]tick, len(vs))
	for i, v := range vs {
		out[i] = tick{pos: y.Map(v), label: strconv.FormatFloat(v, 'f', -1, 64)}
	}
	return out
}
