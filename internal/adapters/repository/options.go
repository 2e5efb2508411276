package repository

import (
	"time"

	"github.com/okian/rally/internal/adapters/ingest"
	"github.com/okian/rally/pkg/logger"
)

// Option applies a configuration option to the MemoryStore.
type Option func(*MemoryStore)

// WithRecordYears sets the years the record chart shows, in order.
func WithRecordYears(years []string) Option {
	return func(s *MemoryStore) {
		if len(years) > 0 {
			s.years = append([]string(nil), years...)
		}
	}
}

// WithSources sets where Reload reads the tables from.
func WithSources(src ingest.Sources) Option {
	return func(s *MemoryStore) {
		s.sources = &src
	}
}

// WithReloadInterval re-reads the sources periodically. Zero disables it.
func WithReloadInterval(interval time.Duration) Option {
	return func(s *MemoryStore) {
		if interval > 0 {
			s.reloadInterval = interval
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l logger.Logger) Option {
	return func(s *MemoryStore) {
		if l != nil {
			s.log = l
		}
	}
}
