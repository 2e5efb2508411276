package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/okian/rally/internal/adapters/commit/svg"
	"github.com/okian/rally/internal/adapters/mount"
	"github.com/okian/rally/internal/adapters/resize"
	"github.com/okian/rally/internal/domain/chart"
	"github.com/okian/rally/internal/domain/tooltip"
	"github.com/okian/rally/pkg/logger"
	"github.com/okian/rally/pkg/metrics"
)

// panel is one player shown in one container: a box, its observer and a
// mount per chart kind, each committing SVG to its own surface.
type panel struct {
	id       string
	player   string
	pinned   bool
	box      *resize.Box
	obs      *resize.Observer
	group    *mount.Group
	surfaces map[chart.Kind]*svg.Surface
}

// ChartInfo describes one mounted chart of a panel.
type ChartInfo struct {
	Kind      string        `json:"kind"`
	Passes    int           `json:"passes"`
	Version   int           `json:"version"`
	TooltipID string        `json:"tooltipId"`
	Tooltip   tooltip.State `json:"tooltip"`
}

// PanelInfo describes a panel.
type PanelInfo struct {
	ID     string      `json:"id"`
	Player string      `json:"player"`
	Pinned bool        `json:"pinned"`
	Width  float64     `json:"width"`
	Height float64     `json:"height"`
	Charts []ChartInfo `json:"charts"`
}

// ChartOutput is the latest committed document of a panel chart.
type ChartOutput struct {
	Document []byte
	Passes   int
	Version  int
}

// openPanel mounts the three charts for player. s.mu must be held.
func (s *Service) openPanel(ctx context.Context, player string, pinned bool) *panel {
	p := &panel{
		id:       uuid.NewString(),
		player:   player,
		pinned:   pinned,
		box:      resize.NewBox(float64(s.cfg.DefaultWidth)),
		surfaces: make(map[chart.Kind]*svg.Surface, len(chart.Kinds)),
	}
	log := s.logger.Named("panel")
	p.obs = resize.Observe(s.runCtx, p.box,
		resize.WithAspectRatio(s.cfg.AspectRatio),
		resize.WithName(p.id),
		resize.WithLogger(log),
	)

	data := chartData(ctx, s.store, player)
	mounts := make([]*mount.Mount, 0, len(chart.Kinds))
	for _, k := range chart.Kinds {
		r, _ := chart.New(k, s.chartOptions()...)
		surf := svg.NewSurface(nil)
		p.surfaces[k] = surf
		mounts = append(mounts, mount.New(p.obs, r, surf, s.doc,
			mount.WithName(string(k)),
			mount.WithLogger(log),
			mount.WithData(data),
		))
	}
	p.group = mount.NewGroup(log, mounts...)
	p.group.Start(s.runCtx)

	s.logger.Info(ctx, "panel opened",
		logger.String("panel", p.id),
		logger.String("player", player),
		logger.Bool("pinned", pinned),
	)
	return p
}

func (p *panel) close(ctx context.Context) error {
	err := p.group.Unmount(ctx)
	return errors.Join(err, p.obs.Close())
}

func (p *panel) info() PanelInfo {
	size := p.obs.Current()
	out := PanelInfo{
		ID:     p.id,
		Player: p.player,
		Pinned: p.pinned,
		Width:  size.Width,
		Height: size.Height,
	}
	for _, m := range p.group.Mounts() {
		_, version := p.surfaces[m.Kind()].Document()
		out.Charts = append(out.Charts, ChartInfo{
			Kind:      string(m.Kind()),
			Passes:    m.Passes(),
			Version:   version,
			TooltipID: m.TooltipID(),
			Tooltip:   m.Tooltip(),
		})
	}
	return out
}

// findPanel returns the panel and its index. s.mu must be held.
func (s *Service) findPanel(id string) (*panel, int, error) {
	if !s.started {
		return nil, -1, ErrNotStarted
	}
	for i, p := range s.panels {
		if p.id == id {
			return p, i, nil
		}
	}
	return nil, -1, fmt.Errorf("%w: %s", ErrPanelNotFound, id)
}

func (s *Service) panel(id string) (*panel, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, _, err := s.findPanel(id)
	return p, err
}

// checkPlayer accepts any roster member. An empty roster accepts every
// name so panels still open, showing empty charts.
func (s *Service) checkPlayer(ctx context.Context, name string) error {
	if s.store.Count(ctx) == 0 {
		return nil
	}
	if _, err := s.store.Player(ctx, name); err != nil {
		return fmt.Errorf("player %q: %w", name, err)
	}
	return nil
}

// Panels lists the open panels in display order.
func (s *Service) Panels() []PanelInfo {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]PanelInfo, len(s.panels))
	for i, p := range s.panels {
		out[i] = p.info()
	}
	return out
}

// Panel returns one panel.
func (s *Service) Panel(id string) (PanelInfo, error) {
	p, err := s.panel(id)
	if err != nil {
		return PanelInfo{}, err
	}
	return p.info(), nil
}

// AddPanel opens an unpinned panel. An empty player picks the roster
// entry at the current panel count, wrapping around.
func (s *Service) AddPanel(ctx context.Context, player string) (PanelInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return PanelInfo{}, ErrNotStarted
	}
	if len(s.panels) >= s.cfg.MaxPanels {
		return PanelInfo{}, fmt.Errorf("%w: %d", ErrPanelLimit, s.cfg.MaxPanels)
	}
	if player == "" {
		player = s.nextDefaultPlayer(ctx)
	}
	if err := s.checkPlayer(ctx, player); err != nil {
		return PanelInfo{}, err
	}

	p := s.openPanel(ctx, player, false)
	s.panels = append(s.panels, p)
	metrics.UpdatePanels(len(s.panels))
	return p.info(), nil
}

func (s *Service) nextDefaultPlayer(ctx context.Context) string {
	if roster := s.store.Players(ctx); len(roster) > 0 {
		return roster[len(s.panels)%len(roster)].Name
	}
	if len(s.cfg.DefaultPlayers) > 0 {
		return s.cfg.DefaultPlayers[0]
	}
	return ""
}

// RemovePanel closes an unpinned panel.
func (s *Service) RemovePanel(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, i, err := s.findPanel(id)
	if err != nil {
		return err
	}
	if p.pinned {
		return fmt.Errorf("%w: %s", ErrPanelPinned, id)
	}
	s.panels = append(s.panels[:i:i], s.panels[i+1:]...)
	metrics.UpdatePanels(len(s.panels))

	if err := p.close(ctx); err != nil {
		s.logger.Warn(ctx, "panel close failed", logger.String("panel", id), logger.Error(err))
	}
	s.logger.Info(ctx, "panel removed", logger.String("panel", id))
	return nil
}

// SelectPlayer switches a panel to another player; its charts redraw.
func (s *Service) SelectPlayer(ctx context.Context, id, player string) (PanelInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, _, err := s.findPanel(id)
	if err != nil {
		return PanelInfo{}, err
	}
	if err := s.checkPlayer(ctx, player); err != nil {
		return PanelInfo{}, err
	}
	p.player = player
	p.group.Update(chartData(ctx, s.store, player))
	return p.info(), nil
}

// ResizePanel sets the container width of a panel.
func (s *Service) ResizePanel(_ context.Context, id string, width float64) error {
	if err := s.validWidth(width); err != nil {
		return err
	}
	p, err := s.panel(id)
	if err != nil {
		return err
	}
	p.box.Resize(width)
	return nil
}

// PanelChart returns the latest SVG committed by a panel chart.
func (s *Service) PanelChart(_ context.Context, id, kind string) (ChartOutput, error) {
	p, err := s.panel(id)
	if err != nil {
		return ChartOutput{}, err
	}
	m, surf, err := p.chart(kind)
	if err != nil {
		return ChartOutput{}, err
	}
	doc, version := surf.Document()
	return ChartOutput{Document: doc, Passes: m.Passes(), Version: version}, nil
}

// Pointer feeds a pointer sample, in chart coordinates, to a panel chart
// and returns the tooltip transition and resulting state.
func (s *Service) Pointer(ctx context.Context, id, kind string, ptr mount.Pointer) (tooltip.Event, tooltip.State, error) {
	p, err := s.panel(id)
	if err != nil {
		return tooltip.EventNone, tooltip.State{}, err
	}
	m, _, err := p.chart(kind)
	if err != nil {
		return tooltip.EventNone, tooltip.State{}, err
	}
	ev, err := m.Pointer(ctx, ptr)
	if err != nil {
		return ev, tooltip.State{}, err
	}
	return ev, m.Tooltip(), nil
}

func (p *panel) chart(kind string) (*mount.Mount, *svg.Surface, error) {
	k, ok := chart.ParseKind(kind)
	if !ok {
		return nil, nil, fmt.Errorf("%w: %q", ErrUnknownChart, kind)
	}
	m, ok := p.group.Mount(k)
	if !ok {
		return nil, nil, fmt.Errorf("%w: %q", ErrUnknownChart, kind)
	}
	return m, p.surfaces[k], nil
}
