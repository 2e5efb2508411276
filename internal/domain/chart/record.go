package chart

import (
	"strconv"

	"github.com/okian/rally/internal/domain/animation"
	"github.com/okian/rally/internal/domain/model"
	"github.com/okian/rally/internal/domain/scale"
	"github.com/okian/rally/internal/domain/scene"
	"github.com/okian/rally/internal/domain/tooltip"
)

// Record chart layout.
const (
	winsColor        = "#1a8577"
	lossesColor      = "gray"
	yearFontSize     = 12
	legendFontSize   = 12
	legendSwatch     = 15
	barLabelInset    = 5
	barLabelBaseline = 4
)

// RecordMargins surround the record plot area.
var RecordMargins = Margins{Top: 40, Right: 20, Bottom: 50, Left: 60} //nolint:gochecknoglobals // layout constant

// RecordTooltip sits above and right of the entry point.
var RecordTooltip = tooltip.Options{OffsetX: 10, OffsetY: -28, Opacity: 0.9} //nolint:gochecknoglobals // layout constant

// RecordRenderer draws yearly wins and losses as stacked horizontal bars.
type RecordRenderer struct {
	s settings
}

// NewRecordRenderer returns a record renderer.
func NewRecordRenderer(opts ...Option) *RecordRenderer {
	return &RecordRenderer{s: newSettings(opts)}
}

// Kind implements Renderer.
func (r *RecordRenderer) Kind() Kind { return KindRecord }

// Tooltip implements Renderer.
func (r *RecordRenderer) Tooltip() tooltip.Options { return RecordTooltip }

// Render implements Renderer.
func (r *RecordRenderer) Render(data Data, size model.ContainerSize) *scene.Scene {
	return r.RenderRecords(data.Record, size)
}

// RenderRecords draws one band per record, in input order.
func (r *RecordRenderer) RenderRecords(records []model.RecordPoint, size model.ContainerSize) *scene.Scene {
	out := scene.New(size.Width, size.Height)
	innerW, innerH := RecordMargins.inner(size)
	if size.IsZero() || len(records) == 0 || innerW <= 0 || innerH <= 0 {
		return out
	}

	years := make([]string, len(records))
	for i, rec := range records {
		years[i] = rec.Year
	}
	y := scale.NewBand(years, 0, innerH, scale.DefaultPadding)
	x := scale.Magnitude(model.MaxTotal(records), innerW)
	bw := y.Bandwidth()

	plot := scene.Group("plot", RecordMargins.Left, RecordMargins.Top)

	ticks := make([]tick, len(records))
	for i, rec := range records {
		top, _ := y.Map(rec.Year)
		ticks[i] = tick{pos: top + bw/2, label: rec.Year}
	}
	plot.Add(leftAxis("y-axis", 0, innerH, ticks, yearFontSize))

	for i, rec := range records {
		top, _ := y.Map(rec.Year)
		winsW := x.Map(float64(rec.Wins))
		plot.Add(r.bar("wins-"+strconv.Itoa(i), "wins", 0, top, winsW, bw, winsColor,
			rec.Year, "Wins: "+strconv.Itoa(rec.Wins)))
	}
	for i, rec := range records {
		top, _ := y.Map(rec.Year)
		plot.Add(r.bar("losses-"+strconv.Itoa(i), "losses", x.Map(float64(rec.Wins)), top,
			x.Map(float64(rec.Losses)), bw, lossesColor, rec.Year, "Losses: "+strconv.Itoa(rec.Losses)))
	}
	for i, rec := range records {
		top, _ := y.Map(rec.Year)
		base := top + bw/2 + barLabelBaseline
		plot.Add(
			barLabel("win-text-"+strconv.Itoa(i), barLabelInset, base, rec.Wins),
			barLabel("loss-text-"+strconv.Itoa(i), x.Map(float64(rec.Wins))+barLabelInset, base, rec.Losses),
		)
	}

	out.Root.Add(plot, legend(size.Height))
	return out
}

func (r *RecordRenderer) bar(id, class string, x, y, w, h float64, fill string, lines ...string) *scene.Node {
	n := scene.NewNode(scene.KindRect, id)
	n.Class = class
	n.X, n.Y, n.W, n.H = x, y, w, h
	n.Style.Fill = fill
	n.Hover = &scene.Hover{Lines: lines}
	return n.Animate(scene.Animation{
		Prop:     scene.PropWidth,
		From:     0,
		To:       w,
		Duration: r.s.barDuration,
		Ease:     animation.NameCubicInOut,
	})
}

func barLabel(id string, x, y float64, v int) *scene.Node {
	n := scene.NewNode(scene.KindText, id)
	n.Class = "bar-label"
	n.Text = strconv.Itoa(v)
	n.X, n.Y = x, y
	n.Style.Fill = "white"
	n.Style.FontWeight = "bold"
	return n
}

func legend(height float64) *scene.Node {
	g := scene.Group("legend", RecordMargins.Left, height-10)
	entries := []struct {
		x     float64
		color string
		text  string
	}{
		{0, winsColor, "Wins"},
		{70, lossesColor, "Losses"},
	}
	for i, e := range entries {
		sw := scene.NewNode(scene.KindRect, "legend-swatch-"+strconv.Itoa(i))
		sw.X, sw.Y, sw.W, sw.H = e.x, -10, legendSwatch, legendSwatch
		sw.Style.Fill = e.color

		t := scene.NewNode(scene.KindText, "legend-text-"+strconv.Itoa(i))
		t.Text = e.text
		t.X, t.Y = e.x+legendSwatch+5, 0
		t.Style.Fill = "white"
		t.Style.FontSize = legendFontSize
		g.Add(sw, t)
	}
	return g
}
