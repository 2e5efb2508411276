package chart

import "time"

// Option configures a renderer. Options that do not apply to a renderer
// are ignored by it.
type Option func(*settings)

// WithRankFloor sets the minimum bottom bound of the rank axis.
func WithRankFloor(floor int) Option {
	return func(s *settings) {
		if floor >= 1 {
			s.rankFloor = floor
		}
	}
}

// WithAbilityMax sets the value drawn on the outer radar ring.
func WithAbilityMax(maxValue float64) Option {
	return func(s *settings) {
		if maxValue > 0 {
			s.abilityMax = maxValue
		}
	}
}

// WithAbilityLevels sets the number of radar grid rings.
func WithAbilityLevels(levels int) Option {
	return func(s *settings) {
		if levels > 0 {
			s.abilityLevels = levels
		}
	}
}

// WithTrendDurations sets the path reveal and marker fade durations.
// The marker duration is capped at the path duration.
func WithTrendDurations(path, point time.Duration) Option {
	return func(s *settings) {
		if path > 0 {
			s.pathDuration = path
		}
		if point > 0 {
			s.pointDuration = point
		}
		if s.pointDuration > s.pathDuration {
			s.pointDuration = s.pathDuration
		}
	}
}

// WithRadarDuration sets the radar grow duration.
func WithRadarDuration(d time.Duration) Option {
	return func(s *settings) {
		if d > 0 {
			s.radarDuration = d
		}
	}
}

// WithBarDuration sets the bar grow duration.
func WithBarDuration(d time.Duration) Option {
	return func(s *settings) {
		if d > 0 {
			s.barDuration = d
		}
	}
}
