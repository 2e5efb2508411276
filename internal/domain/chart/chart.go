// Package chart turns player statistics into scenes. Each renderer is a
// pure function of (data, size): it recomputes its scales, lays out the
// shapes with their final geometry and attaches the animations that lead
// to it. A pass never depends on the previous one.
package chart

import (
	"time"

	"github.com/okian/rally/internal/domain/model"
	"github.com/okian/rally/internal/domain/scene"
	"github.com/okian/rally/internal/domain/tooltip"
)

// Kind names a chart.
type Kind string

const (
	KindTrend   Kind = "trend"
	KindAbility Kind = "ability"
	KindRecord  Kind = "record"
)

// Kinds lists every chart kind in panel order.
var Kinds = []Kind{KindTrend, KindAbility, KindRecord} //nolint:gochecknoglobals // fixed set

// ParseKind returns the kind named s.
func ParseKind(s string) (Kind, bool) {
	for _, k := range Kinds {
		if string(k) == s {
			return k, true
		}
	}
	return "", false
}

// Data is everything known about one player. Each renderer reads its own
// part and ignores the rest.
type Data struct {
	Trend   []model.TimeSeriesPoint
	Ability model.AbilityVector
	Record  []model.RecordPoint
}

// Renderer produces one kind of chart.
type Renderer interface {
	Kind() Kind
	Render(data Data, size model.ContainerSize) *scene.Scene
	Tooltip() tooltip.Options
}

// Margins is the space between the container edge and the plot area.
type Margins struct {
	Top, Right, Bottom, Left float64
}

// inner returns the plot area size, which may be non-positive.
func (m Margins) inner(size model.ContainerSize) (w, h float64) {
	return size.Width - m.Left - m.Right, size.Height - m.Top - m.Bottom
}

// Defaults.
const (
	DefaultRankFloor     = 20
	DefaultAbilityMax    = 5.0
	DefaultAbilityLevels = 5
	DefaultPathDuration  = 2000 * time.Millisecond
	DefaultPointDuration = 800 * time.Millisecond
	DefaultRadarDuration = 1000 * time.Millisecond
	DefaultBarDuration   = 800 * time.Millisecond
)

type settings struct {
	rankFloor     int
	abilityMax    float64
	abilityLevels int
	pathDuration  time.Duration
	pointDuration time.Duration
	radarDuration time.Duration
	barDuration   time.Duration
}

func defaultSettings() settings {
	return settings{
		rankFloor:     DefaultRankFloor,
		abilityMax:    DefaultAbilityMax,
		abilityLevels: DefaultAbilityLevels,
		pathDuration:  DefaultPathDuration,
		pointDuration: DefaultPointDuration,
		radarDuration: DefaultRadarDuration,
		barDuration:   DefaultBarDuration,
	}
}

func newSettings(opts []Option) settings {
	s := defaultSettings()
	for _, opt := range opts {
		opt(&s)
	}
	return s
}

// New returns the renderer for kind k.
func New(k Kind, opts ...Option) (Renderer, bool) {
	switch k {
	case KindTrend:
		return NewTrendRenderer(opts...), true
	case KindAbility:
		return NewAbilityRenderer(opts...), true
	case KindRecord:
		return NewRecordRenderer(opts...), true
	}
	return nil, false
}
