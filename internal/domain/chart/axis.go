package chart

import (
	"strconv"

	"github.com/okian/rally/internal/domain/geom"
	"github.com/okian/rally/internal/domain/scene"
)

// Axis drawing constants.
const (
	axisColor     = "currentColor"
	tickSize      = 6
	tickPadding   = 3
	axisFontSize  = 10
	bottomLabelDY = 0.71 // em, hangs the label below the tick
	leftLabelDY   = 0.32 // em, centers the label on the tick
)

type tick struct {
	pos   float64
	label string
}

// bottomAxis draws a horizontal axis at y=0 of its group spanning [r0,r1].
// A non-zero rotate turns every label and anchors it at its start.
func bottomAxis(id string, r0, r1 float64, ticks []tick, fontSize, rotate float64) *scene.Node {
	g := scene.Group(id, 0, 0)
	g.Class = "axis"

	var d geom.Path
	d.MoveTo(geom.Pt(r0, tickSize))
	d.LineTo(geom.Pt(r0, 0))
	d.LineTo(geom.Pt(r1, 0))
	d.LineTo(geom.Pt(r1, tickSize))
	g.Add(domainNode(id, d))

	for i, t := range ticks {
		tg := scene.Group(id+"-tick-"+strconv.Itoa(i), t.pos, 0)
		tg.Class = "tick"

		line := scene.NewNode(scene.KindLine, "")
		line.Y2 = tickSize
		line.Style.Stroke = axisColor

		text := scene.NewNode(scene.KindText, "")
		text.Text = t.label
		text.Y = tickSize + tickPadding + bottomLabelDY*fontSize
		text.Style.Fill = axisColor
		text.Style.FontSize = fontSize
		text.Style.Anchor = "middle"
		if rotate != 0 {
			text.Transform.Rotate = rotate
			text.Style.Anchor = "start"
		}
		tg.Add(line, text)
		g.Add(tg)
	}
	return g
}

// leftAxis draws a vertical axis at x=0 of its group spanning [r0,r1].
func leftAxis(id string, r0, r1 float64, ticks []tick, fontSize float64) *scene.Node {
	g := scene.Group(id, 0, 0)
	g.Class = "axis"

	var d geom.Path
	d.MoveTo(geom.Pt(-tickSize, r0))
	d.LineTo(geom.Pt(0, r0))
	d.LineTo(geom.Pt(0, r1))
	d.LineTo(geom.Pt(-tickSize, r1))
	g.Add(domainNode(id, d))

	for i, t := range ticks {
		tg := scene.Group(id+"-tick-"+strconv.Itoa(i), 0, t.pos)
		tg.Class = "tick"

		line := scene.NewNode(scene.KindLine, "")
		line.X2 = -tickSize
		line.Style.Stroke = axisColor

		text := scene.NewNode(scene.KindText, "")
		text.Text = t.label
		text.X = -(tickSize + tickPadding)
		text.Y = leftLabelDY * fontSize
		text.Style.Fill = axisColor
		text.Style.FontSize = fontSize
		text.Style.Anchor = "end"
		tg.Add(line, text)
		g.Add(tg)
	}
	return g
}

func domainNode(id string, d geom.Path) *scene.Node {
	n := scene.NewNode(scene.KindPath, id+"-domain")
	n.Class = "domain"
	n.Path = d
	n.Style.Stroke = axisColor
	n.Style.Fill = "none"
	return n
}

// title is an axis caption.
func title(id, text string, x, y, rotate float64) *scene.Node {
	n := scene.NewNode(scene.KindText, id)
	n.Class = "title"
	n.Text = text
	n.X, n.Y = x, y
	n.Transform.Rotate = rotate
	n.Style.Fill = "white"
	n.Style.FontSize = 20
	n.Style.Anchor = "middle"
	return n
}
