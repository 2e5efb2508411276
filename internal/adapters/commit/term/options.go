package term

import (
	"time"

	"github.com/okian/rally/internal/domain/animation"
	"github.com/okian/rally/pkg/logger"
)

// Option configures a Surface.
type Option func(*Surface)

// WithClock sets the time source used to sample animations.
func WithClock(c animation.Clock) Option {
	return func(s *Surface) {
		if c != nil {
			s.clock = c
		}
	}
}

// WithFrameInterval sets how often Run repaints while a scene animates.
func WithFrameInterval(d time.Duration) Option {
	return func(s *Surface) {
		if d > 0 {
			s.interval = d
		}
	}
}

// WithOrigin places the surface at column x and row y of the screen.
func WithOrigin(x, y int) Option {
	return func(s *Surface) {
		s.x, s.y = max(x, 0), max(y, 0)
	}
}

// WithLogger sets the logger.
func WithLogger(l logger.Logger) Option {
	return func(s *Surface) {
		if l != nil {
			s.log = l
		}
	}
}
