package mount

import (
	"github.com/okian/rally/internal/domain/chart"
	"github.com/okian/rally/pkg/logger"
)

// Option applies a configuration option to the Mount.
type Option func(*Mount)

// WithName sets the mount name for identification and logging.
func WithName(name string) Option {
	return func(m *Mount) {
		if name != "" {
			m.name = name
		}
	}
}

// WithLogger sets a custom logger for the mount.
func WithLogger(l logger.Logger) Option {
	return func(m *Mount) {
		if l != nil {
			m.logger = l
		}
	}
}

// WithData sets the data rendered by the first pass.
func WithData(d chart.Data) Option {
	return func(m *Mount) {
		m.data = d
	}
}
