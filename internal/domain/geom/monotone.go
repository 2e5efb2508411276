package geom

import "math"

// MonotoneX builds a smooth curve through pts that preserves monotonicity
// in y between samples, assuming x is increasing. A single point yields a
// bare MoveTo; two points yield a straight line.
func MonotoneX(pts []Point) Path {
	var (
		p              Path
		x0, y0, x1, y1 = math.NaN(), math.NaN(), math.NaN(), math.NaN()
		t0             float64
		state          int
	)
	for _, pt := range pts {
		x, y := pt.X, pt.Y
		if x == x1 && y == y1 {
			continue
		}
		var t1 float64
		switch state {
		case 0:
			state = 1
			p.MoveTo(pt)
		case 1:
			state = 2
		case 2:
			state = 3
			t1 = slope3(x0, y0, x1, y1, x, y)
			hermite(&p, x0, y0, x1, y1, slope2(x0, y0, x1, y1, t1), t1)
		default:
			t1 = slope3(x0, y0, x1, y1, x, y)
			hermite(&p, x0, y0, x1, y1, t0, t1)
		}
		x0, x1 = x1, x
		y0, y1 = y1, y
		t0 = t1
	}
	switch state {
	case 2:
		p.LineTo(Point{X: x1, Y: y1})
	case 3:
		hermite(&p, x0, y0, x1, y1, t0, slope2(x0, y0, x1, y1, t0))
	}
	return p
}

// slope3 is the tangent at (x1,y1) given its neighbours.
func slope3(x0, y0, x1, y1, x2, y2 float64) float64 {
	h0, h1 := x1-x0, x2-x1
	s0 := (y1 - y0) / nonZero(h0, h1)
	s1 := (y2 - y1) / nonZero(h1, h0)
	p := (s0*h1 + s1*h0) / (h0 + h1)
	v := (sign(s0) + sign(s1)) * math.Min(math.Min(math.Abs(s0), math.Abs(s1)), 0.5*math.Abs(p))
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

// slope2 is a one-sided tangent from a known tangent t.
func slope2(x0, y0, x1, y1, t float64) float64 {
	if h := x1 - x0; h != 0 {
		return (3*(y1-y0)/h - t) / 2
	}
	return t
}

// nonZero returns h, or a signed zero chosen by other so that a coincident
// x yields an infinite slope of the right sign.
func nonZero(h, other float64) float64 {
	if h != 0 {
		return h
	}
	if other < 0 {
		return math.Copysign(0, -1)
	}
	return 0
}

func sign(v float64) float64 {
	if v < 0 {
		return -1
	}
	return 1
}

func hermite(p *Path, x0, y0, x1, y1, t0, t1 float64) {
	dx := (x1 - x0) / 3
	p.CubicTo(Point{X: x0 + dx, Y: y0 + dx*t0}, Point{X: x1 - dx, Y: y1 - dx*t1}, Point{X: x1, Y: y1})
}
