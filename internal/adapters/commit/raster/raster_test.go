package raster

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"
	"time"

	"github.com/okian/rally/internal/domain/chart"
	"github.com/okian/rally/internal/domain/geom"
	"github.com/okian/rally/internal/domain/model"
	"github.com/okian/rally/internal/domain/scene"
	. "github.com/smartystreets/goconvey/convey"
)

func near(c color.Color, want color.NRGBA) bool {
	r, g, b, _ := c.RGBA()
	diff := func(got uint32, w uint8) bool {
		d := int(got>>8) - int(w)
		return d >= -3 && d <= 3
	}
	return diff(r, want.R) && diff(g, want.G) && diff(b, want.B)
}

func recordScene() *scene.Scene {
	return chart.NewRecordRenderer().RenderRecords([]model.RecordPoint{
		{Year: "2019", Wins: 10, Losses: 4},
		{Year: "2020", Wins: 2, Losses: 1},
	}, model.SizeFromWidth(600))
}

func TestParseColor(t *testing.T) {
	Convey("Given CSS colors", t, func() {
		c, ok := parseColor("#1a8577", "white")
		So(ok, ShouldBeTrue)
		So(c, ShouldResemble, color.NRGBA{R: 0x1a, G: 0x85, B: 0x77, A: 0xff})

		c, ok = parseColor("#fff", "")
		So(ok, ShouldBeTrue)
		So(c, ShouldResemble, color.NRGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff})

		c, ok = parseColor("rgba(0, 0, 0, 0.5)", "")
		So(ok, ShouldBeTrue)
		So(c.A, ShouldEqual, 128)

		c, ok = parseColor("Gray", "")
		So(ok, ShouldBeTrue)
		So(c.R, ShouldEqual, 0x80)

		c, ok = parseColor("currentColor", "#ff0000")
		So(ok, ShouldBeTrue)
		So(c.R, ShouldEqual, 0xff)

		for _, s := range []string{"", "none", "#12", "rgb(1,2)", "chartreuse-ish"} {
			_, ok = parseColor(s, "white")
			So(ok, ShouldBeFalse)
		}
	})
}

func TestDashes(t *testing.T) {
	Convey("Given a straight line of length 10", t, func() {
		line := []geom.Point{geom.Pt(0, 0), geom.Pt(10, 0)}

		Convey("Without a dash pattern the line is one run", func() {
			So(dashes(line, 0, 0), ShouldResemble, [][]geom.Point{line})
		})

		Convey("With dash equal to the length and no offset it is fully drawn", func() {
			runs := dashes(line, 10, 0)
			So(len(runs), ShouldEqual, 1)
			So(runs[0][len(runs[0])-1], ShouldResemble, geom.Pt(10, 0))
		})

		Convey("With offset equal to the length nothing is drawn", func() {
			So(dashes(line, 10, 10), ShouldBeEmpty)
		})

		Convey("With offset of 4 the first 6 units are drawn", func() {
			runs := dashes(line, 10, 4)
			So(len(runs), ShouldEqual, 1)
			So(runs[0][0], ShouldResemble, geom.Pt(0, 0))
			So(runs[0][len(runs[0])-1].X, ShouldAlmostEqual, 6, 1e-9)
		})

		Convey("With short dashes the line alternates", func() {
			runs := dashes(line, 2, 0)
			So(len(runs), ShouldEqual, 3)
			So(runs[1][0].X, ShouldAlmostEqual, 4, 1e-9)
			So(runs[1][1].X, ShouldAlmostEqual, 6, 1e-9)
		})
	})
}

func TestAffine(t *testing.T) {
	Convey("Given a translate then rotate transform", t, func() {
		m := affine{a: 1, d: 1}.with(scene.Transform{TX: 10, TY: 5, Rotate: 90})
		p := m.apply(geom.Pt(1, 0))
		So(p.X, ShouldAlmostEqual, 10, 1e-9)
		So(p.Y, ShouldAlmostEqual, 6, 1e-9)
	})
}

func TestRender(t *testing.T) {
	Convey("Given a rasterizer on a black background", t, func() {
		r, err := New(WithBackground("black"))
		So(err, ShouldBeNil)
		s := recordScene()
		wins := s.Find("wins-0")
		So(wins, ShouldNotBeNil)
		cx := int(chart.RecordMargins.Left + wins.X + 3*wins.W/4)
		cy := int(chart.RecordMargins.Top + wins.Y + wins.H/2)

		Convey("When the record chart is painted after its animations", func() {
			img, err := r.Render(s, s.Duration())
			So(err, ShouldBeNil)

			Convey("Then the canvas matches the scene size", func() {
				So(img.Bounds(), ShouldResemble, image.Rect(0, 0, 600, 360))
			})

			Convey("Then the wins bar is filled with its color", func() {
				So(near(img.At(cx, cy), color.NRGBA{R: 0x1a, G: 0x85, B: 0x77}), ShouldBeTrue)
			})

			Convey("Then the corner is background", func() {
				So(near(img.At(599, 0), color.NRGBA{}), ShouldBeTrue)
			})
		})

		Convey("When painted at the start", func() {
			img, err := r.Render(s, 0)
			So(err, ShouldBeNil)

			Convey("Then bars have not grown yet", func() {
				So(near(img.At(cx, cy), color.NRGBA{}), ShouldBeTrue)
			})
		})

		Convey("When a scaled rasterizer paints", func() {
			half, err := New(WithScale(0.5))
			So(err, ShouldBeNil)
			img, err := half.Render(s, s.Duration())
			So(err, ShouldBeNil)
			So(img.Bounds().Dx(), ShouldEqual, 300)
			So(img.Bounds().Dy(), ShouldEqual, 180)
		})

		Convey("When a copy is scaled", func() {
			So(r.Scaled(2).Scale(), ShouldEqual, 2)
			So(r.Scaled(-1).Scale(), ShouldEqual, 1)
			So(r.Scale(), ShouldEqual, 1)
		})

		Convey("When the scene is empty", func() {
			_, err := r.Render(scene.New(0, 0), 0)
			So(err, ShouldEqual, ErrEmptyScene)
		})
	})

	Convey("Given a trend chart with rotated labels", t, func() {
		r, err := New()
		So(err, ShouldBeNil)
		start := time.Date(2019, time.January, 1, 0, 0, 0, 0, time.UTC)
		s := chart.NewTrendRenderer().RenderSeries([]model.TimeSeriesPoint{
			{Date: start, Rank: 3}, {Date: start.AddDate(0, 6, 0), Rank: 9}, {Date: start.AddDate(1, 0, 0), Rank: 1},
		}, model.SizeFromWidth(640))

		Convey("It encodes a decodable PNG", func() {
			var buf bytes.Buffer
			So(r.EncodePNG(&buf, s, s.Duration()), ShouldBeNil)
			img, err := png.Decode(&buf)
			So(err, ShouldBeNil)
			So(img.Bounds().Dx(), ShouldEqual, 640)
			So(img.Bounds().Dy(), ShouldEqual, 384)
		})

		Convey("The middle marker is painted once visible", func() {
			img, err := r.Render(s, s.Duration())
			So(err, ShouldBeNil)
			m := s.Find("marker-1")
			x := int(chart.TrendMargins.Left + m.X)
			y := int(chart.TrendMargins.Top + m.Y)
			So(near(img.At(x, y), color.NRGBA{R: 0xff, G: 0x66, B: 0x00}), ShouldBeTrue)
		})
	})
}
