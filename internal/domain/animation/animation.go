// Package animation holds the time side of chart rendering: easing
// functions, interpolation, clocks and a frame scheduler. Painting is left
// to the commit step.
package animation

import (
	"time"

	"github.com/okian/rally/internal/domain/geom"
)

// Ease maps linear progress in [0,1] to eased progress.
type Ease func(t float64) float64

// Easing names understood by EaseByName.
const (
	NameLinear     = "linear"
	NameCubicInOut = "cubic-in-out"
)

// Linear is the identity easing.
func Linear(t float64) float64 { return t }

// CubicInOut accelerates through the first half and decelerates through
// the second.
func CubicInOut(t float64) float64 {
	t *= 2
	if t <= 1 {
		return t * t * t / 2
	}
	t -= 2
	return (t*t*t + 2) / 2
}

// EaseByName resolves a named easing, falling back to cubic in-out.
func EaseByName(name string) Ease {
	if name == NameLinear {
		return Linear
	}
	return CubicInOut
}

// Lerp interpolates between a and b.
func Lerp(a, b, t float64) float64 { return a + (b-a)*t }

// LerpPoint interpolates each coordinate.
func LerpPoint(a, b geom.Point, t float64) geom.Point {
	return geom.Point{X: Lerp(a.X, b.X, t), Y: Lerp(a.Y, b.Y, t)}
}

// LerpPoints interpolates two point lists vertex by vertex. Lists of
// different length cannot be matched and yield a copy of b.
func LerpPoints(a, b []geom.Point, t float64) []geom.Point {
	out := make([]geom.Point, len(b))
	if len(a) != len(b) {
		copy(out, b)
		return out
	}
	for i := range b {
		out[i] = LerpPoint(a[i], b[i], t)
	}
	return out
}

// Progress returns eased progress of an animation that starts after delay
// and runs for dur, sampled at elapsed.
func Progress(elapsed, delay, dur time.Duration, ease Ease) float64 {
	if ease == nil {
		ease = CubicInOut
	}
	if elapsed < delay {
		return ease(0)
	}
	if dur <= 0 || elapsed >= delay+dur {
		return ease(1)
	}
	return ease(float64(elapsed-delay) / float64(dur))
}
