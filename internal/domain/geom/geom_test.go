package geom_test

import (
	"math"
	"testing"

	"github.com/okian/rally/internal/domain/geom"
	"github.com/smartystreets/goconvey/convey"
)

const eps = 1e-9

func TestPolar(t *testing.T) {
	convey.Convey("Given angles measured clockwise from the top", t, func() {
		convey.So(geom.Polar(0, 10).X, convey.ShouldAlmostEqual, 0, eps)
		convey.So(geom.Polar(0, 10).Y, convey.ShouldAlmostEqual, -10, eps)
		convey.So(geom.Polar(math.Pi/2, 10).X, convey.ShouldAlmostEqual, 10, eps)
		convey.So(geom.Polar(math.Pi/2, 10).Y, convey.ShouldAlmostEqual, 0, eps)
		convey.So(geom.Polar(math.Pi, 10).Y, convey.ShouldAlmostEqual, 10, eps)
	})
}

func TestNum(t *testing.T) {
	tests := map[float64]string{
		0:          "0",
		1.5:        "1.5",
		2:          "2",
		3.14159:    "3.142",
		-0.0001:    "0",
		math.NaN(): "0",
		-12.25:     "-12.25",
	}
	for in, want := range tests {
		if got := geom.Num(in); got != want {
			t.Errorf("Num(%v) = %q, want %q", in, got, want)
		}
	}
}

func TestPathBasics(t *testing.T) {
	convey.Convey("Given a polygon path", t, func() {
		p := geom.Polygon([]geom.Point{geom.Pt(0, 0), geom.Pt(3, 0), geom.Pt(3, 4)})

		convey.Convey("Then its SVG data closes the shape", func() {
			convey.So(p.SVG(), convey.ShouldEqual, "M0,0L3,0L3,4Z")
		})

		convey.Convey("Then its length includes the closing edge", func() {
			convey.So(p.Length(), convey.ShouldAlmostEqual, 12, eps)
		})

		convey.Convey("Then flattening yields one closed polyline", func() {
			lines := p.Flatten()
			convey.So(lines, convey.ShouldHaveLength, 1)
			convey.So(lines[0][len(lines[0])-1], convey.ShouldResemble, geom.Pt(0, 0))
		})

		convey.Convey("Then a clone is independent", func() {
			c := p.Clone()
			c.Segments[0].Pts[0] = geom.Pt(9, 9)
			convey.So(p.Segments[0].Pts[0], convey.ShouldResemble, geom.Pt(0, 0))
		})
	})

	convey.Convey("Given an empty polygon", t, func() {
		p := geom.Polygon(nil)
		convey.So(p.Empty(), convey.ShouldBeTrue)
		convey.So(p.Length(), convey.ShouldEqual, 0)
	})
}

func TestInPolygon(t *testing.T) {
	square := []geom.Point{geom.Pt(0, 0), geom.Pt(10, 0), geom.Pt(10, 10), geom.Pt(0, 10)}
	if !geom.InPolygon(geom.Pt(5, 5), square) {
		t.Error("center should be inside")
	}
	if geom.InPolygon(geom.Pt(15, 5), square) {
		t.Error("outside point reported inside")
	}
	if !(geom.Rect{X: 1, Y: 1, W: 2, H: 2}).Contains(geom.Pt(3, 3)) {
		t.Error("rect edge should be inside")
	}
}

func TestMonotoneX(t *testing.T) {
	convey.Convey("Given sample counts", t, func() {
		convey.Convey("When there is one point", func() {
			p := geom.MonotoneX([]geom.Point{geom.Pt(1, 2)})
			convey.So(p.SVG(), convey.ShouldEqual, "M1,2")
		})

		convey.Convey("When there are two points", func() {
			p := geom.MonotoneX([]geom.Point{geom.Pt(0, 0), geom.Pt(10, 5)})
			convey.So(p.SVG(), convey.ShouldEqual, "M0,0L10,5")
			convey.So(p.Length(), convey.ShouldAlmostEqual, math.Hypot(10, 5), eps)
		})

		convey.Convey("When the points are collinear", func() {
			p := geom.MonotoneX([]geom.Point{geom.Pt(0, 0), geom.Pt(10, 10), geom.Pt(20, 20)})

			convey.Convey("Then every segment is a cubic ending on a sample", func() {
				convey.So(p.Segments, convey.ShouldHaveLength, 3)
				convey.So(p.Segments[1].Kind, convey.ShouldEqual, geom.CubicTo)
				convey.So(p.Segments[2].Pts[2], convey.ShouldResemble, geom.Pt(20, 20))
			})

			convey.Convey("Then the curve stays a straight line", func() {
				convey.So(p.Length(), convey.ShouldAlmostEqual, math.Hypot(20, 20), 1e-6)
			})
		})

		convey.Convey("When a sample is a local extremum", func() {
			p := geom.MonotoneX([]geom.Point{geom.Pt(0, 10), geom.Pt(10, 0), geom.Pt(20, 10)})

			convey.Convey("Then the tangent there is flat", func() {
				// incoming control point shares y with the extremum
				convey.So(p.Segments[1].Pts[1].Y, convey.ShouldAlmostEqual, 0, eps)
				convey.So(p.Segments[2].Pts[0].Y, convey.ShouldAlmostEqual, 0, eps)
			})

			convey.Convey("Then no control point overshoots the samples", func() {
				for _, s := range p.Segments {
					for _, c := range s.Pts {
						convey.So(c.Y, convey.ShouldBeBetweenOrEqual, 0, 10)
					}
				}
			})
		})

		convey.Convey("When a point repeats", func() {
			p := geom.MonotoneX([]geom.Point{geom.Pt(0, 0), geom.Pt(0, 0), geom.Pt(5, 5)})
			convey.So(p.SVG(), convey.ShouldEqual, "M0,0L5,5")
		})

		convey.Convey("When there are no points", func() {
			convey.So(geom.MonotoneX(nil).Empty(), convey.ShouldBeTrue)
		})
	})
}
