package chart_test

import (
	"math"
	"testing"
	"time"

	"github.com/okian/rally/internal/domain/chart"
	"github.com/okian/rally/internal/domain/geom"
	"github.com/okian/rally/internal/domain/model"
	"github.com/okian/rally/internal/domain/scene"
	"github.com/smartystreets/goconvey/convey"
)

const eps = 1e-6

// arcLength measures p with many more chords than geom uses.
func arcLength(p geom.Path) float64 {
	const steps = 4096
	var total float64
	var cur geom.Point
	for _, seg := range p.Segments {
		switch seg.Kind {
		case geom.MoveTo:
			cur = seg.Pts[0]
		case geom.LineTo:
			total += math.Hypot(seg.Pts[0].X-cur.X, seg.Pts[0].Y-cur.Y)
			cur = seg.Pts[0]
		case geom.CubicTo:
			prev := cur
			for i := 1; i <= steps; i++ {
				t := float64(i) / steps
				u := 1 - t
				x := u*u*u*cur.X + 3*u*u*t*seg.Pts[0].X + 3*u*t*t*seg.Pts[1].X + t*t*t*seg.Pts[2].X
				y := u*u*u*cur.Y + 3*u*u*t*seg.Pts[0].Y + 3*u*t*t*seg.Pts[1].Y + t*t*t*seg.Pts[2].Y
				total += math.Hypot(x-prev.X, y-prev.Y)
				prev = geom.Point{X: x, Y: y}
			}
			cur = seg.Pts[2]
		}
	}
	return total
}

func month(y int, m time.Month) time.Time {
	return time.Date(y, m, 1, 0, 0, 0, 0, time.UTC)
}

func series(ranks ...int) []model.TimeSeriesPoint {
	out := make([]model.TimeSeriesPoint, len(ranks))
	for i, r := range ranks {
		out[i] = model.TimeSeriesPoint{Date: month(2019, time.January).AddDate(0, i, 0), Rank: r}
	}
	return out
}

func TestParseKind(t *testing.T) {
	for _, k := range chart.Kinds {
		got, ok := chart.ParseKind(string(k))
		if !ok || got != k {
			t.Errorf("ParseKind(%q) = %q, %v", k, got, ok)
		}
		if r, ok := chart.New(k); !ok || r.Kind() != k {
			t.Errorf("New(%q) returned wrong renderer", k)
		}
	}
	if _, ok := chart.ParseKind("pie"); ok {
		t.Error("unknown kind accepted")
	}
}

func TestTrendRenderer(t *testing.T) {
	convey.Convey("Given a trend renderer and ranks [3,5,2]", t, func() {
		r := chart.NewTrendRenderer()
		size := model.ContainerSize{Width: 800, Height: 500}
		s := r.RenderSeries(series(3, 5, 2), size)
		innerH := 500.0 - 20 - 50

		convey.Convey("Then one marker is drawn per point", func() {
			convey.So(s.Count(scene.KindCircle), convey.ShouldEqual, 3)
			convey.So(len(s.FindClass("marker")), convey.ShouldEqual, 3)
		})

		convey.Convey("Then the rank axis spans the floor of 20 down to 1", func() {
			ticks := s.FindClass("tick")
			labels := map[string]bool{}
			for _, tk := range ticks {
				labels[tk.Children[1].Text] = true
			}
			convey.So(labels["1"], convey.ShouldBeTrue)
			convey.So(labels["20"], convey.ShouldBeTrue)
			convey.So(labels["21"], convey.ShouldBeFalse)
		})

		convey.Convey("Then markers sit on the rank scale", func() {
			m2 := s.Find("marker-2")
			convey.So(m2.Y, convey.ShouldAlmostEqual, innerH*(2-1)/(20-1), eps)
			convey.So(s.Find("marker-0").X, convey.ShouldEqual, 0)
			convey.So(m2.X, convey.ShouldAlmostEqual, 800-50-30, eps)
		})

		convey.Convey("Then the path is revealed over 2000ms linearly", func() {
			line := s.Find("trend-line")
			convey.So(line.Style.Stroke, convey.ShouldEqual, "#ff6600")
			convey.So(line.Style.DashArray, convey.ShouldAlmostEqual, line.Path.Length()+1, eps)
			convey.So(line.Anims, convey.ShouldHaveLength, 1)
			convey.So(line.Anims[0].From, convey.ShouldAlmostEqual, line.Style.DashArray, eps)
			convey.So(line.Style.DashArray, convey.ShouldBeGreaterThan, arcLength(line.Path))
			convey.So(line.Anims[0].Duration, convey.ShouldEqual, 2*time.Second)
			convey.So(line.Anims[0].Ease, convey.ShouldEqual, "linear")
		})

		convey.Convey("Then the last marker finishes with the path", func() {
			last := s.Find("marker-2").Anims[0]
			convey.So(last.Delay+last.Duration, convey.ShouldEqual, 2*time.Second)
			convey.So(s.Find("marker-0").Anims[0].Delay, convey.ShouldEqual, 0)
			convey.So(s.Find("marker-1").Anims[0].Delay, convey.ShouldEqual, 600*time.Millisecond)
		})

		convey.Convey("Then markers carry date and rank labels", func() {
			convey.So(s.Find("marker-1").Hover.Lines, convey.ShouldResemble, []string{"Date: 2019-02", "Rank: 5"})
		})

		convey.Convey("Then both axis titles are present", func() {
			convey.So(s.Find("title-x").Text, convey.ShouldEqual, "Time")
			convey.So(s.Find("title-y").Text, convey.ShouldEqual, "Rank")
			convey.So(s.Find("title-y").Transform.Rotate, convey.ShouldEqual, -90)
		})

		convey.Convey("Then time labels are rotated and start anchored", func() {
			tick := s.Find("x-axis-tick-0")
			convey.So(tick, convey.ShouldNotBeNil)
			convey.So(tick.Children[1].Transform.Rotate, convey.ShouldEqual, 45)
			convey.So(tick.Children[1].Style.Anchor, convey.ShouldEqual, "start")
			convey.So(tick.Children[1].Text, convey.ShouldEqual, "2019-01")
		})

		convey.Convey("Then rendering again yields an identical scene", func() {
			convey.So(r.RenderSeries(series(3, 5, 2), size), convey.ShouldResemble, s)
		})

		convey.Convey("Then hovering a marker finds it", func() {
			m := s.Find("marker-1")
			hit := s.HitTest(geom.Pt(m.X+chart.TrendMargins.Left, m.Y+chart.TrendMargins.Top))
			convey.So(hit, convey.ShouldNotBeNil)
			convey.So(hit.ID, convey.ShouldEqual, "marker-1")
		})
	})

	convey.Convey("Given an observed rank beyond the floor", t, func() {
		s := chart.NewTrendRenderer(chart.WithRankFloor(20)).RenderSeries(series(1, 40), model.ContainerSize{Width: 800, Height: 500})
		convey.So(s.Find("marker-1").Y, convey.ShouldAlmostEqual, 500-20-50, eps)
		convey.So(s.Find("marker-0").Y, convey.ShouldAlmostEqual, 0, eps)
	})

	convey.Convey("Given nothing to draw", t, func() {
		r := chart.NewTrendRenderer()
		convey.So(r.RenderSeries(nil, model.ContainerSize{Width: 800, Height: 500}).Empty(), convey.ShouldBeTrue)
		convey.So(r.RenderSeries(series(1, 2), model.ContainerSize{}).Empty(), convey.ShouldBeTrue)
		convey.So(r.RenderSeries(series(1, 2), model.SizeFromWidth(60)).Empty(), convey.ShouldBeTrue)
	})

	convey.Convey("Given a single sample", t, func() {
		s := chart.NewTrendRenderer().RenderSeries(series(7), model.SizeFromWidth(500))
		convey.So(s.Count(scene.KindCircle), convey.ShouldEqual, 1)
		convey.So(s.Find("marker-0").Anims[0].Delay, convey.ShouldEqual, 0)
		convey.So(s.Find("trend-line").Path.Length(), convey.ShouldEqual, 0)
	})
}

func TestMarkerDelay(t *testing.T) {
	path, point := 2*time.Second, 800*time.Millisecond
	tests := []struct {
		i, n int
		want time.Duration
	}{
		{0, 1, 0},
		{0, 5, 0},
		{2, 5, 600 * time.Millisecond},
		{4, 5, 1200 * time.Millisecond},
	}
	for _, tt := range tests {
		if got := chart.MarkerDelay(tt.i, tt.n, path, point); got != tt.want {
			t.Errorf("MarkerDelay(%d,%d) = %v, want %v", tt.i, tt.n, got, tt.want)
		}
	}
}

func TestAbilityRenderer(t *testing.T) {
	convey.Convey("Given an ability renderer in a 500x300 container", t, func() {
		r := chart.NewAbilityRenderer()
		size := model.SizeFromWidth(500)
		radius := 0.4 * 300

		convey.Convey("When every score is the maximum", func() {
			s := r.RenderVector(model.NewAbilityVector([]float64{5, 5, 5, 5, 5, 5}), size)
			shape := s.Find("shape")

			convey.Convey("Then every vertex lies on the outer ring", func() {
				outer := s.Find("grid-5")
				for i, p := range shape.Points {
					convey.So(math.Hypot(p.X, p.Y), convey.ShouldAlmostEqual, radius, eps)
					convey.So(p.X, convey.ShouldAlmostEqual, outer.Points[i].X, eps)
					convey.So(p.Y, convey.ShouldAlmostEqual, outer.Points[i].Y, eps)
				}
			})

			convey.Convey("Then the first vertex points straight up", func() {
				convey.So(shape.Points[0].X, convey.ShouldAlmostEqual, 0, eps)
				convey.So(shape.Points[0].Y, convey.ShouldAlmostEqual, -radius, eps)
			})

			convey.Convey("Then the shape grows from the center over 1000ms", func() {
				a := shape.Anims[0]
				convey.So(a.Prop, convey.ShouldEqual, scene.PropPoints)
				convey.So(a.Duration, convey.ShouldEqual, time.Second)
				convey.So(a.FromPoints, convey.ShouldResemble, make([]geom.Point, 6))
			})

			convey.Convey("Then the chart is centered with five grid rings and six labels", func() {
				g := s.Find("radar")
				convey.So(g.Transform.TX, convey.ShouldEqual, 250)
				convey.So(g.Transform.TY, convey.ShouldEqual, 150)
				convey.So(len(s.FindClass("grid")), convey.ShouldEqual, 5)
				labels := s.FindClass("label")
				convey.So(labels, convey.ShouldHaveLength, 6)
				convey.So(labels[0].Text, convey.ShouldEqual, "Serving")
				convey.So(labels[0].Y, convey.ShouldAlmostEqual, -(radius + 300.0/16), eps)
			})
		})

		convey.Convey("When the vector is empty", func() {
			empty := r.RenderVector(model.NewAbilityVector(nil), size)
			zeros := r.RenderVector(model.AbilityVector{}, size)

			convey.Convey("Then it renders the same as all zeros", func() {
				convey.So(empty, convey.ShouldResemble, zeros)
				for _, p := range empty.Find("shape").Points {
					convey.So(p.X, convey.ShouldAlmostEqual, 0, eps)
					convey.So(p.Y, convey.ShouldAlmostEqual, 0, eps)
				}
			})
		})

		convey.Convey("When a score is out of range", func() {
			s := r.RenderVector(model.AbilityVector{9, -1, 0, 0, 0, 0}, size)
			pts := s.Find("shape").Points
			convey.So(math.Hypot(pts[0].X, pts[0].Y), convey.ShouldAlmostEqual, radius, eps)
			convey.So(math.Hypot(pts[1].X, pts[1].Y), convey.ShouldAlmostEqual, 0, eps)
		})

		convey.Convey("When the maximum is configured", func() {
			s := chart.NewAbilityRenderer(chart.WithAbilityMax(10), chart.WithAbilityLevels(4)).
				RenderVector(model.AbilityVector{5, 5, 5, 5, 5, 5}, size)
			convey.So(math.Hypot(s.Find("shape").Points[0].X, s.Find("shape").Points[0].Y), convey.ShouldAlmostEqual, radius/2, eps)
			convey.So(len(s.FindClass("grid")), convey.ShouldEqual, 4)
		})

		convey.Convey("When the container has no size", func() {
			convey.So(r.RenderVector(model.AbilityVector{1, 2, 3, 4, 5, 1}, model.ContainerSize{}).Empty(), convey.ShouldBeTrue)
		})
	})
}

func TestRecordRenderer(t *testing.T) {
	convey.Convey("Given a record renderer and four years", t, func() {
		r := chart.NewRecordRenderer()
		size := model.ContainerSize{Width: 580, Height: 390}
		innerW := 580.0 - 60 - 20
		records := []model.RecordPoint{
			{Year: "2017", Wins: 4, Losses: 3},
			{Year: "2018", Wins: 8, Losses: 2},
			{Year: "2019", Wins: 10, Losses: 4},
			{Year: "2020", Wins: 1, Losses: 0},
		}
		s := r.RenderRecords(records, size)
		scaleOf := func(v float64) float64 { return v / 14 * innerW }

		convey.Convey("Then the losses bar starts where wins end", func() {
			wins, losses := s.Find("wins-2"), s.Find("losses-2")
			convey.So(wins.W, convey.ShouldAlmostEqual, scaleOf(10), eps)
			convey.So(losses.X, convey.ShouldAlmostEqual, scaleOf(10), eps)
			convey.So(losses.X+losses.W, convey.ShouldAlmostEqual, scaleOf(14), eps)
			convey.So(wins.Style.Fill, convey.ShouldEqual, "#1a8577")
			convey.So(losses.Style.Fill, convey.ShouldEqual, "gray")
		})

		convey.Convey("Then every bar grows from zero width independently", func() {
			for _, class := range []string{"wins", "losses"} {
				for _, bar := range s.FindClass(class) {
					convey.So(bar.Anims, convey.ShouldHaveLength, 1)
					convey.So(bar.Anims[0].From, convey.ShouldEqual, 0)
					convey.So(bar.Anims[0].To, convey.ShouldEqual, bar.W)
					convey.So(bar.Anims[0].Duration, convey.ShouldEqual, 800*time.Millisecond)
				}
			}
		})

		convey.Convey("Then labels sit inside the bars", func() {
			bar := s.Find("wins-2")
			win, loss := s.Find("win-text-2"), s.Find("loss-text-2")
			convey.So(win.X, convey.ShouldEqual, 5)
			convey.So(win.Text, convey.ShouldEqual, "10")
			convey.So(loss.X, convey.ShouldAlmostEqual, scaleOf(10)+5, eps)
			convey.So(win.Y, convey.ShouldAlmostEqual, bar.Y+bar.H/2+4, eps)
			convey.So(win.Style.FontWeight, convey.ShouldEqual, "bold")
		})

		convey.Convey("Then the legend sits at the bottom left", func() {
			g := s.Find("legend")
			convey.So(g.Transform.TX, convey.ShouldEqual, 60)
			convey.So(g.Transform.TY, convey.ShouldEqual, 380)
			convey.So(s.Find("legend-text-0").X, convey.ShouldEqual, 20)
			convey.So(s.Find("legend-text-1").X, convey.ShouldEqual, 90)
			convey.So(s.Find("legend-swatch-1").X, convey.ShouldEqual, 70)
		})

		convey.Convey("Then bars carry year and count labels", func() {
			convey.So(s.Find("wins-0").Hover.Lines, convey.ShouldResemble, []string{"2017", "Wins: 4"})
			convey.So(s.Find("losses-0").Hover.Lines, convey.ShouldResemble, []string{"2017", "Losses: 3"})
		})

		convey.Convey("Then the year axis lists every year", func() {
			convey.So(s.Find("y-axis-tick-3").Children[1].Text, convey.ShouldEqual, "2020")
		})
	})

	convey.Convey("Given no records", t, func() {
		s := chart.NewRecordRenderer().RenderRecords(nil, model.SizeFromWidth(600))
		convey.So(s.Empty(), convey.ShouldBeTrue)
		convey.So(s.Count(scene.KindRect), convey.ShouldEqual, 0)
	})

	convey.Convey("Given only zero counts", t, func() {
		s := chart.NewRecordRenderer().RenderRecords([]model.RecordPoint{{Year: "2019"}}, model.SizeFromWidth(600))
		convey.So(s.Find("wins-0").W, convey.ShouldEqual, 0)
		convey.So(s.Find("losses-0").X, convey.ShouldEqual, 0)
	})
}
