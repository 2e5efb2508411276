// Package service ties the roster, the chart mounts and the output
// surfaces together behind the operations the HTTP API and the CLIs use.
package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/okian/rally/internal/adapters/commit/raster"
	"github.com/okian/rally/internal/adapters/commit/svg"
	"github.com/okian/rally/internal/adapters/ingest"
	"github.com/okian/rally/internal/adapters/repository"
	"github.com/okian/rally/internal/config"
	"github.com/okian/rally/internal/domain/chart"
	"github.com/okian/rally/internal/domain/model"
	"github.com/okian/rally/internal/domain/tooltip"
	"github.com/okian/rally/pkg/logger"
	"github.com/okian/rally/pkg/metrics"
)

// Output formats accepted by RenderChart.
const (
	FormatSVG = "svg"
	FormatPNG = "png"
)

// pngBackground matches the dashboard page so PNGs read the same as the
// inline SVG.
const pngBackground = "#1f1f1f"

// Service owns the roster, the tooltip document and the open panels.
type Service struct {
	cfg *config.Config

	mu       sync.RWMutex
	store    repository.Store
	ownStore bool
	doc      *tooltip.Document
	raster   *raster.Rasterizer
	panels   []*panel

	started bool
	runCtx  context.Context
	cancel  context.CancelFunc

	logger logger.Logger
}

// PlayerData is everything the charts show for one player.
type PlayerData struct {
	Player  repository.Player       `json:"player"`
	Trend   []model.TimeSeriesPoint `json:"trend"`
	Ability model.AbilityVector     `json:"ability"`
	Record  []model.RecordPoint     `json:"record"`
}

// RenderRequest describes a stateless chart render.
type RenderRequest struct {
	Player string
	Kind   string
	Width  float64 // 0 uses the configured default
	Format string  // svg (default) or png
	// At samples the animation timeline at that instant. Zero keeps SVG
	// animated and renders PNG at the end of the timeline.
	At time.Duration
}

// New constructs a Service. A nil cfg uses the defaults.
func New(cfg *config.Config, opts ...Option) *Service {
	if cfg == nil {
		cfg = config.New(context.Background())
	}
	s := &Service{
		cfg:      cfg,
		ownStore: true,
		doc:      tooltip.NewDocument(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start loads the tables and opens one pinned panel per default player.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	if s.logger == nil {
		s.logger = logger.Get()
	}
	s.logger.Info(ctx, "starting chart service...")

	rast, err := raster.New(raster.WithBackground(pngBackground))
	if err != nil {
		return fmt.Errorf("init rasterizer: %w", err)
	}
	s.raster = rast

	s.runCtx, s.cancel = context.WithCancel(context.WithoutCancel(ctx))
	if s.store == nil {
		ms := repository.NewMemoryStore(s.runCtx,
			repository.WithRecordYears(s.cfg.RecordYears),
			repository.WithSources(ingest.Sources{
				Rankings:  s.cfg.RankingsCSV,
				Abilities: s.cfg.AbilitiesCSV,
				Records:   s.cfg.RecordsCSV,
			}),
			repository.WithReloadInterval(time.Duration(s.cfg.ReloadSeconds)*time.Second),
			repository.WithLogger(s.logger.Named("repository")),
		)
		if err := ms.Reload(ctx); err != nil {
			_ = ms.Close()
			s.cancel()
			return fmt.Errorf("load tables: %w", err)
		}
		s.store = ms
	}

	for _, name := range s.cfg.DefaultPlayers {
		s.panels = append(s.panels, s.openPanel(ctx, name, true))
	}
	metrics.UpdatePanels(len(s.panels))

	s.started = true
	s.logger.Info(ctx, "chart service started",
		logger.Int("players", s.store.Count(ctx)),
		logger.Int("panels", len(s.panels)),
		logger.Int("maxPanels", s.cfg.MaxPanels),
	)
	return nil
}

// Stop unmounts every panel and releases the store.
func (s *Service) Stop(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}
	s.logger.Info(ctx, "stopping chart service...")

	for _, p := range s.panels {
		if err := p.close(ctx); err != nil {
			s.logger.Warn(ctx, "panel close failed", logger.String("panel", p.id), logger.Error(err))
		}
	}
	s.panels = nil
	metrics.UpdatePanels(0)

	if s.ownStore {
		if closer, ok := s.store.(interface{ Close() error }); ok {
			_ = closer.Close()
		}
		s.store = nil
	}
	s.cancel()

	s.started = false
	s.logger.Info(ctx, "chart service stopped")
}

// Config returns the configuration the service runs with.
func (s *Service) Config() *config.Config { return s.cfg }

// Tooltips returns the shared tooltip document.
func (s *Service) Tooltips() *tooltip.Document { return s.doc }

func (s *Service) startedStore() (repository.Store, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.started {
		return nil, ErrNotStarted
	}
	return s.store, nil
}

// Players returns the roster.
func (s *Service) Players(ctx context.Context) ([]repository.Player, error) {
	store, err := s.startedStore()
	if err != nil {
		return nil, err
	}
	return store.Players(ctx), nil
}

// PlayerData returns the chart inputs of one player.
func (s *Service) PlayerData(ctx context.Context, name string) (PlayerData, error) {
	store, err := s.startedStore()
	if err != nil {
		return PlayerData{}, err
	}
	p, err := store.Player(ctx, name)
	if err != nil {
		return PlayerData{}, fmt.Errorf("player %q: %w", name, err)
	}
	return PlayerData{
		Player:  p,
		Trend:   store.Trend(ctx, name),
		Ability: store.Ability(ctx, name),
		Record:  store.Record(ctx, name),
	}, nil
}

func chartData(ctx context.Context, store repository.Store, name string) chart.Data {
	return chart.Data{
		Trend:   store.Trend(ctx, name),
		Ability: store.Ability(ctx, name),
		Record:  store.Record(ctx, name),
	}
}

// ChartData returns the data every chart of player renders.
func (s *Service) ChartData(ctx context.Context, player string) (chart.Data, error) {
	store, err := s.startedStore()
	if err != nil {
		return chart.Data{}, err
	}
	if _, err := store.Player(ctx, player); err != nil {
		return chart.Data{}, fmt.Errorf("player %q: %w", player, err)
	}
	return chartData(ctx, store, player), nil
}

// Renderer returns a renderer for kind configured like the panel charts.
func (s *Service) Renderer(kind string) (chart.Renderer, error) {
	k, ok := chart.ParseKind(kind)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownChart, kind)
	}
	r, _ := chart.New(k, s.chartOptions()...)
	return r, nil
}

func (s *Service) chartOptions() []chart.Option {
	return []chart.Option{
		chart.WithRankFloor(s.cfg.RankFloor),
		chart.WithAbilityMax(s.cfg.AbilityMax),
		chart.WithAbilityLevels(s.cfg.AbilityLevels),
		chart.WithTrendDurations(config.Duration(s.cfg.TrendPathMS), config.Duration(s.cfg.TrendPointMS)),
		chart.WithRadarDuration(config.Duration(s.cfg.RadarMS)),
		chart.WithBarDuration(config.Duration(s.cfg.BarMS)),
	}
}

// checkWidth validates a requested container width; 0 selects the
// default.
func (s *Service) checkWidth(width float64) (float64, error) {
	if err := s.validWidth(width); err != nil {
		return 0, err
	}
	if width == 0 {
		return float64(s.cfg.DefaultWidth), nil
	}
	return width, nil
}

// validWidth rejects NaN and widths outside [0, max_width].
func (s *Service) validWidth(width float64) error {
	if math.IsNaN(width) || width < 0 || width > float64(s.cfg.MaxWidth) {
		return fmt.Errorf("%w: %v not in [0, %d]", ErrInvalidWidth, width, s.cfg.MaxWidth)
	}
	return nil
}

// RenderChart renders one chart for a player without mounting it.
func (s *Service) RenderChart(ctx context.Context, req RenderRequest) ([]byte, string, error) {
	store, err := s.startedStore()
	if err != nil {
		return nil, "", err
	}
	kind, ok := chart.ParseKind(req.Kind)
	if !ok {
		return nil, "", fmt.Errorf("%w: %q", ErrUnknownChart, req.Kind)
	}
	width, err := s.checkWidth(req.Width)
	if err != nil {
		return nil, "", err
	}
	if _, err := store.Player(ctx, req.Player); err != nil {
		return nil, "", fmt.Errorf("player %q: %w", req.Player, err)
	}

	r, _ := chart.New(kind, s.chartOptions()...)
	start := time.Now()
	sc := r.Render(chartData(ctx, store, req.Player), model.SizeWithAspect(width, s.cfg.AspectRatio))
	metrics.RecordRender(string(kind), float64(time.Since(start).Milliseconds()), sc.Size())

	var buf bytes.Buffer
	switch req.Format {
	case "", FormatSVG:
		enc := svg.NewEncoder()
		if req.At > 0 {
			enc = svg.NewEncoder(svg.WithAnimations(false))
			sc = sc.Frame(req.At)
		}
		if err := enc.Encode(&buf, sc); err != nil {
			return nil, "", fmt.Errorf("encode svg: %w", err)
		}
		return buf.Bytes(), svg.ContentType, nil
	case FormatPNG:
		at := req.At
		if at <= 0 {
			at = sc.Duration()
		}
		s.mu.RLock()
		rast := s.raster
		s.mu.RUnlock()
		if err := rast.EncodePNG(&buf, sc, at); err != nil {
			if errors.Is(err, raster.ErrEmptyScene) {
				return nil, "", fmt.Errorf("%w: png needs a non-empty container", ErrInvalidWidth)
			}
			return nil, "", err
		}
		return buf.Bytes(), raster.ContentType, nil
	}
	return nil, "", fmt.Errorf("%w: %q", ErrInvalidFormat, req.Format)
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := map[string]any{
		"started":   s.started,
		"maxPanels": s.cfg.MaxPanels,
		"panels":    len(s.panels),
		"tooltips":  s.doc.Len(),
		"visible":   s.doc.Visible(),
	}
	if s.started {
		players := s.store.Count(context.Background())
		stats["players"] = players
		metrics.UpdatePlayersLoaded(players)
		metrics.UpdatePanels(len(s.panels))
	}
	return stats
}
