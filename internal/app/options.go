package service

import (
	"github.com/okian/rally/internal/adapters/repository"
	"github.com/okian/rally/pkg/logger"
)

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithStore replaces the table-backed store. The service does not load or
// close a store it did not create.
func WithStore(store repository.Store) Option {
	return func(s *Service) {
		if store != nil {
			s.store = store
			s.ownStore = false
		}
	}
}
