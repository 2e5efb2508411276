package resize

import "github.com/okian/rally/pkg/logger"

// Option applies a configuration option to the Observer.
type Option func(*Observer)

// WithAspectRatio sets the height/width ratio of emitted sizes.
func WithAspectRatio(ratio float64) Option {
	return func(o *Observer) {
		if ratio > 0 {
			o.ratio = ratio
		}
	}
}

// WithName sets the observer name used in logs.
func WithName(name string) Option {
	return func(o *Observer) {
		if name != "" {
			o.name = name
		}
	}
}

// WithLogger sets a custom logger for the observer.
func WithLogger(l logger.Logger) Option {
	return func(o *Observer) {
		if l != nil {
			o.logger = l
		}
	}
}
