// Package model contains the view-model values passed from ingestion to the
// chart renderers.
package model

import (
	"math"
	"sort"
	"strconv"
	"strings"
	"time"
)

// AspectRatio is the default height/width ratio of a chart container.
const AspectRatio = 0.6

// AbilityDimensions is the fixed number of radar axes.
const AbilityDimensions = 6

// AbilityLabels names the ability axes in vector order.
var AbilityLabels = [AbilityDimensions]string{ //nolint:gochecknoglobals // fixed label set
	"Serving", "Defense", "Speed", "Experience", "Power", "Skill",
}

// TimeSeriesPoint is one monthly ranking sample.
type TimeSeriesPoint struct {
	Date time.Time // first day of the month, UTC
	Rank int       // 1 is the top
}

// AbilityVector holds one score per AbilityLabels entry.
type AbilityVector [AbilityDimensions]float64

// NewAbilityVector copies values into a vector. Any input that does not
// have exactly six components yields the zero vector.
func NewAbilityVector(values []float64) AbilityVector {
	var v AbilityVector
	if len(values) != AbilityDimensions {
		return v
	}
	for i, x := range values {
		if math.IsNaN(x) || math.IsInf(x, 0) {
			x = 0
		}
		v[i] = x
	}
	return v
}

// IsZero reports whether every component is zero.
func (v AbilityVector) IsZero() bool {
	return v == AbilityVector{}
}

// RecordPoint is one year of match results.
type RecordPoint struct {
	Year   string
	Wins   int
	Losses int
}

// Total returns wins plus losses.
func (r RecordPoint) Total() int { return r.Wins + r.Losses }

// ContainerSize is the measured size of a chart container.
type ContainerSize struct {
	Width  float64
	Height float64
}

// SizeFromWidth derives a size from a measured width using AspectRatio.
func SizeFromWidth(width float64) ContainerSize {
	return SizeWithAspect(width, AspectRatio)
}

// SizeWithAspect derives a size from a measured width and a height/width
// ratio. Negative or non-finite widths collapse to the zero size.
func SizeWithAspect(width, ratio float64) ContainerSize {
	if width <= 0 || math.IsNaN(width) || math.IsInf(width, 0) {
		return ContainerSize{}
	}
	return ContainerSize{Width: width, Height: width * ratio}
}

// IsZero reports whether no geometry fits the size.
func (s ContainerSize) IsZero() bool {
	return s.Width <= 0 || s.Height <= 0
}

// ParseNumber coerces a table cell to a number; anything that is not a
// finite number becomes 0.
func ParseNumber(s string) float64 {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}

// ParseCount coerces a table cell to a non-negative integer count.
func ParseCount(s string) int {
	f := ParseNumber(s)
	if f <= 0 {
		return 0
	}
	return int(math.Round(f))
}

// ParseMonth parses YYYY-MM or YYYY-MM-DD into the first day of that month.
func ParseMonth(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	for _, layout := range []string{"2006-01", "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC), true
		}
	}
	return time.Time{}, false
}

// NormalizeSeries returns the points sorted by month, with repeated months
// collapsed to the last sample seen. The input is not modified.
func NormalizeSeries(points []TimeSeriesPoint) []TimeSeriesPoint {
	if len(points) == 0 {
		return nil
	}
	byMonth := make(map[time.Time]int, len(points))
	out := make([]TimeSeriesPoint, 0, len(points))
	for _, p := range points {
		d := time.Date(p.Date.Year(), p.Date.Month(), 1, 0, 0, 0, 0, time.UTC)
		if i, ok := byMonth[d]; ok {
			out[i].Rank = p.Rank
			continue
		}
		byMonth[d] = len(out)
		out = append(out, TimeSeriesPoint{Date: d, Rank: p.Rank})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out
}

// MaxRank returns the largest rank in the series, or 0 when empty.
func MaxRank(points []TimeSeriesPoint) int {
	m := 0
	for _, p := range points {
		if p.Rank > m {
			m = p.Rank
		}
	}
	return m
}

// MaxTotal returns the largest wins+losses across the records.
func MaxTotal(records []RecordPoint) int {
	m := 0
	for _, r := range records {
		if t := r.Total(); t > m {
			m = t
		}
	}
	return m
}
