// Package scale maps domain values (ranks, dates, counts, years) to pixel
// coordinates and generates axis ticks. Scales are plain values rebuilt on
// every render pass.
package scale

import (
	"math"
	"time"
)

var (
	e10 = math.Sqrt(50) //nolint:gochecknoglobals // tick step thresholds
	e5  = math.Sqrt(10) //nolint:gochecknoglobals // tick step thresholds
	e2  = math.Sqrt(2)  //nolint:gochecknoglobals // tick step thresholds
)

// Linear maps a continuous domain onto a pixel range.
type Linear struct {
	D0, D1 float64
	R0, R1 float64
}

// NewLinear returns a linear scale from [d0,d1] onto [r0,r1].
func NewLinear(d0, d1, r0, r1 float64) Linear {
	return Linear{D0: d0, D1: d1, R0: r0, R1: r1}
}

// Map converts v to a pixel coordinate. A degenerate domain maps every
// value to the range start.
func (s Linear) Map(v float64) float64 {
	if s.D0 == s.D1 || math.IsNaN(v) {
		return s.R0
	}
	return s.R0 + (v-s.D0)/(s.D1-s.D0)*(s.R1-s.R0)
}

// Ticks returns round values inside the domain, roughly count of them, in
// ascending order. Steps are 1, 2 or 5 times a power of ten.
func (s Linear) Ticks(count int) []float64 {
	lo, hi := s.D0, s.D1
	if lo > hi {
		lo, hi = hi, lo
	}
	if count <= 0 {
		return nil
	}
	if lo == hi {
		return []float64{lo}
	}
	inc := tickIncrement(lo, hi, count)
	if inc == 0 || math.IsInf(inc, 0) || math.IsNaN(inc) {
		return nil
	}
	var out []float64
	if inc > 0 {
		start, stop := math.Ceil(lo/inc), math.Floor(hi/inc)
		for i := start; i <= stop; i++ {
			out = append(out, i*inc)
		}
		return out
	}
	// negative increments encode 1/step to keep fractional ticks exact
	inv := -inc
	start, stop := math.Ceil(lo*inv), math.Floor(hi*inv)
	for i := start; i <= stop; i++ {
		out = append(out, i/inv)
	}
	return out
}

// tickIncrement returns the tick step for [lo,hi]. Steps below one are
// returned as the negated reciprocal.
func tickIncrement(lo, hi float64, count int) float64 {
	step := (hi - lo) / float64(count)
	power := math.Floor(math.Log10(step))
	errRatio := step / math.Pow(10, power)
	factor := 1.0
	switch {
	case errRatio >= e10:
		factor = 10
	case errRatio >= e5:
		factor = 5
	case errRatio >= e2:
		factor = 2
	}
	if power >= 0 {
		return factor * math.Pow(10, power)
	}
	return -math.Pow(10, -power) / factor
}

// Rank returns the vertical rank scale: rank 1 at the top (y=0) and the
// larger of floor and maxObserved at the bottom.
func Rank(maxObserved, floor int, innerHeight float64) Linear {
	bottom := floor
	if maxObserved > bottom {
		bottom = maxObserved
	}
	return NewLinear(float64(bottom), 1, innerHeight, 0)
}

// Magnitude returns the horizontal count scale [0,maxTotal] -> [0,innerWidth].
func Magnitude(maxTotal int, innerWidth float64) Linear {
	return NewLinear(0, float64(maxTotal), 0, innerWidth)
}

// Time maps an instant range linearly onto pixels.
type Time struct {
	Start, End time.Time
	R0, R1     float64
}

// NewTime returns a time scale from [start,end] onto [r0,r1].
func NewTime(start, end time.Time, r0, r1 float64) Time {
	return Time{Start: start, End: end, R0: r0, R1: r1}
}

// Map converts t to a pixel coordinate.
func (s Time) Map(t time.Time) float64 {
	return s.linear().Map(float64(t.Sub(s.Start)))
}

func (s Time) linear() Linear {
	return NewLinear(0, float64(s.End.Sub(s.Start)), s.R0, s.R1)
}

// monthIntervals are the sub-year tick intervals, in months.
var monthIntervals = []int{1, 3, 6, 12} //nolint:gochecknoglobals // fixed table

// MonthTicks returns month-aligned ticks inside the domain using the
// smallest interval that yields at most count ticks. Intervals longer than
// a year are whole-year multiples following the 1/2/5 rule.
func (s Time) MonthTicks(count int) []time.Time {
	if count <= 0 {
		return nil
	}
	lo, hi := s.Start, s.End
	if lo.After(hi) {
		lo, hi = hi, lo
	}
	for _, months := range monthIntervals {
		if ticks := monthTicks(lo, hi, months); len(ticks) <= count {
			return ticks
		}
	}
	years := 1
	for {
		for _, f := range []int{2, 5, 10} {
			step := years * f
			if ticks := yearTicks(lo, hi, step); len(ticks) <= count {
				return ticks
			}
		}
		years *= 10
	}
}

func monthTicks(lo, hi time.Time, every int) []time.Time {
	t := time.Date(lo.Year(), lo.Month(), 1, 0, 0, 0, 0, time.UTC)
	if t.Before(lo) {
		t = t.AddDate(0, 1, 0)
	}
	for (int(t.Month())-1)%every != 0 {
		t = t.AddDate(0, 1, 0)
	}
	var out []time.Time
	for !t.After(hi) {
		out = append(out, t)
		t = t.AddDate(0, every, 0)
	}
	return out
}

func yearTicks(lo, hi time.Time, every int) []time.Time {
	first := time.Date(lo.Year(), time.January, 1, 0, 0, 0, 0, time.UTC)
	if first.Before(lo) {
		first = first.AddDate(1, 0, 0)
	}
	y := first.Year()
	for y%every != 0 {
		y++
	}
	var out []time.Time
	for t := time.Date(y, time.January, 1, 0, 0, 0, 0, time.UTC); !t.After(hi); t = t.AddDate(every, 0, 0) {
		out = append(out, t)
	}
	return out
}
