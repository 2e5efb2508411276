package main

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/gdamore/tcell/v2"

	"github.com/okian/rally/internal/adapters/commit/raster"
	"github.com/okian/rally/internal/adapters/commit/term"
	"github.com/okian/rally/internal/adapters/mount"
	"github.com/okian/rally/internal/adapters/resize"
	service "github.com/okian/rally/internal/app"
	"github.com/okian/rally/internal/domain/chart"
	"github.com/okian/rally/pkg/logger"
)

// defaultCellWidth is the chart width in pixels of one terminal column.
// Every row is two pixels tall, so the chart keeps its aspect ratio.
const defaultCellWidth = 6

// chartTop is the first row painted by the chart; row 0 is the status line.
const chartTop = 1

// background fills the chart area so every cell is painted.
const background = "#1f1f1f"

var errQuit = errors.New("quit")

type hostOption func(*host)

func withCellWidth(w float64) hostOption {
	return func(h *host) {
		if w > 0 {
			h.cellW = w
		}
	}
}

func withHostLogger(l logger.Logger) hostOption {
	return func(h *host) {
		if l != nil {
			h.log = l
		}
	}
}

// host drives one chart mount from terminal events.
type host struct {
	svc    *service.Service
	screen tcell.Screen
	cellW  float64
	log    logger.Logger

	container *resize.ScreenContainer
	obs       *resize.Observer
	surface   *term.Surface

	players []string
	player  int
	kind    int

	mu    sync.Mutex
	mount *mount.Mount
	hover []string
}

func newHost(ctx context.Context, svc *service.Service, screen tcell.Screen, player, kind string, opts ...hostOption) (*host, error) {
	h := &host{svc: svc, screen: screen, cellW: defaultCellWidth, log: logger.Nop()}
	for _, opt := range opts {
		opt(h)
	}

	roster, err := svc.Players(ctx)
	if err != nil {
		return nil, err
	}
	if len(roster) == 0 {
		return nil, errors.New("no players loaded")
	}
	for i, p := range roster {
		h.players = append(h.players, p.Name)
		if p.Name == player {
			h.player = i
		}
	}
	if player != "" && h.players[h.player] != player {
		return nil, fmt.Errorf("unknown player %q", player)
	}
	k, ok := chart.ParseKind(kind)
	if !ok {
		return nil, fmt.Errorf("%w: %q", service.ErrUnknownChart, kind)
	}
	for i, c := range chart.Kinds {
		if c == k {
			h.kind = i
		}
	}

	rast, err := raster.New(raster.WithBackground(background))
	if err != nil {
		return nil, err
	}
	cfg := svc.Config()
	h.container = resize.NewScreenContainer(screen, h.cellW)
	h.obs = resize.Observe(ctx, h.container,
		resize.WithAspectRatio(cfg.AspectRatio),
		resize.WithName("terminal"),
		resize.WithLogger(h.log),
	)
	h.surface = term.NewSurface(screen, rast, term.WithOrigin(0, chartTop), term.WithLogger(h.log))
	return h, nil
}

// run mounts the selected chart and handles events until the user quits
// or ctx is done.
func (h *host) run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	defer func() { _ = h.obs.Close() }()

	if err := h.remount(ctx); err != nil {
		return err
	}
	defer func() { _ = h.unmount(context.WithoutCancel(ctx)) }()

	// The surface paints from its own goroutine; it must be gone before the
	// caller finalizes the screen.
	surfaceDone := make(chan struct{})
	go func() {
		defer close(surfaceDone)
		if err := h.surface.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			h.log.Warn(ctx, "surface stopped", logger.Error(err))
		}
	}()
	defer func() {
		cancel()
		<-surfaceDone
	}()

	events := make(chan tcell.Event)
	go func() {
		defer close(events)
		for {
			ev := h.screen.PollEvent()
			if ev == nil {
				return
			}
			select {
			case events <- ev:
			case <-ctx.Done():
				return
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			if err := h.handle(ctx, ev); err != nil {
				if errors.Is(err, errQuit) {
					return nil
				}
				return err
			}
		}
	}
}

func (h *host) handle(ctx context.Context, ev tcell.Event) error {
	switch ev := ev.(type) {
	case *tcell.EventResize:
		h.screen.Sync()
		h.container.Notify()
		h.status()
	case *tcell.EventKey:
		return h.key(ctx, ev)
	case *tcell.EventMouse:
		return h.pointer(ctx, ev)
	}
	return nil
}

func (h *host) key(ctx context.Context, ev *tcell.EventKey) error {
	switch ev.Key() {
	case tcell.KeyEscape, tcell.KeyCtrlC:
		return errQuit
	case tcell.KeyTab:
		h.kind = (h.kind + 1) % len(chart.Kinds)
		return h.remount(ctx)
	case tcell.KeyBacktab:
		h.kind = (h.kind + len(chart.Kinds) - 1) % len(chart.Kinds)
		return h.remount(ctx)
	case tcell.KeyRight:
		h.player = (h.player + 1) % len(h.players)
		return h.update(ctx)
	case tcell.KeyLeft:
		h.player = (h.player + len(h.players) - 1) % len(h.players)
		return h.update(ctx)
	case tcell.KeyRune:
		if ev.Rune() == 'q' {
			return errQuit
		}
	}
	return nil
}

// pointer converts a cell position to chart pixels and feeds the mount.
func (h *host) pointer(ctx context.Context, ev *tcell.EventMouse) error {
	col, row := ev.Position()
	p := mount.Pointer{
		X:      (float64(col) + 0.5) * h.cellW,
		Y:      (float64(2*(row-chartTop)) + 1) * h.cellW,
		Inside: row >= chartTop,
	}
	h.mu.Lock()
	m := h.mount
	h.mu.Unlock()
	if _, err := m.Pointer(ctx, p); err != nil {
		if errors.Is(err, mount.ErrUnmounted) {
			return nil
		}
		return err
	}
	state := m.Tooltip()
	h.mu.Lock()
	h.hover = nil
	if state.Visible {
		h.hover = state.Lines
	}
	h.mu.Unlock()
	h.status()
	return nil
}

// remount replaces the mounted chart with the selected kind.
func (h *host) remount(ctx context.Context) error {
	if err := h.unmount(ctx); err != nil {
		return err
	}
	r, err := h.svc.Renderer(string(chart.Kinds[h.kind]))
	if err != nil {
		return err
	}
	data, err := h.svc.ChartData(ctx, h.players[h.player])
	if err != nil {
		return err
	}
	m := mount.New(h.obs, r, h.surface, h.svc.Tooltips(),
		mount.WithData(data),
		mount.WithLogger(h.log),
	)
	h.mu.Lock()
	h.mount = m
	h.hover = nil
	h.mu.Unlock()
	go m.Run(ctx)
	h.status()
	return nil
}

func (h *host) unmount(ctx context.Context) error {
	h.mu.Lock()
	m := h.mount
	h.mount = nil
	h.mu.Unlock()
	if m == nil {
		return nil
	}
	return m.Unmount(ctx)
}

// update shows the selected player in the mounted chart.
func (h *host) update(ctx context.Context) error {
	data, err := h.svc.ChartData(ctx, h.players[h.player])
	if err != nil {
		return err
	}
	h.mu.Lock()
	m := h.mount
	h.hover = nil
	h.mu.Unlock()
	m.Update(data)
	h.status()
	return nil
}

// status paints row 0: player, chart and the hover label if any.
func (h *host) status() {
	h.mu.Lock()
	hover := strings.Join(h.hover, "  ")
	h.mu.Unlock()

	line := fmt.Sprintf(" %s | %s", h.players[h.player], chart.Kinds[h.kind])
	if hover != "" {
		line += " | " + hover
	}
	cols, _ := h.screen.Size()
	style := tcell.StyleDefault.Reverse(true)
	runes := []rune(line)
	for x := 0; x < cols; x++ {
		r := ' '
		if x < len(runes) {
			r = runes[x]
		}
		h.screen.SetContent(x, 0, r, nil, style)
	}
	h.screen.Show()
}
