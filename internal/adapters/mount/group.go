package mount

import (
	"context"
	"errors"
	"time"

	"github.com/okian/rally/internal/domain/chart"
	"github.com/okian/rally/pkg/logger"
)

const groupShutdownTimeout = 5 * time.Second

// Group runs the mounts sharing one container.
type Group struct {
	mounts []*Mount
	logger logger.Logger
}

// NewGroup returns a group over mounts.
func NewGroup(l logger.Logger, mounts ...*Mount) *Group {
	if l == nil {
		l = logger.Nop()
	}
	return &Group{mounts: mounts, logger: l}
}

// Start runs every mount in its own goroutine.
func (g *Group) Start(ctx context.Context) {
	for _, m := range g.mounts {
		go m.Run(ctx)
	}
}

// Update sends d to every mount.
func (g *Group) Update(d chart.Data) {
	for _, m := range g.mounts {
		m.Update(d)
	}
}

// Mount returns the mount of kind k.
func (g *Group) Mount(k chart.Kind) (*Mount, bool) {
	for _, m := range g.mounts {
		if m.Kind() == k {
			return m, true
		}
	}
	return nil, false
}

// Mounts returns the mounts in start order.
func (g *Group) Mounts() []*Mount {
	return append([]*Mount(nil), g.mounts...)
}

// Unmount unmounts every mount, giving them a shared deadline.
func (g *Group) Unmount(ctx context.Context) error {
	shutdownCtx, cancel := context.WithTimeout(ctx, groupShutdownTimeout)
	defer cancel()

	var errs []error
	for _, m := range g.mounts {
		if err := m.Unmount(shutdownCtx); err != nil {
			g.logger.Warn(ctx, "mount shutdown failed", logger.String("chart", string(m.Kind())), logger.Error(err))
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
