// Package term commits scenes to a terminal screen. Scenes are rasterized
// at one pixel per column and two pixels per row, and every cell shows an
// upper half block with the top pixel as foreground and the bottom pixel
// as background.
package term

import (
	"context"
	"image"
	"image/color"
	"sync"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/okian/rally/internal/adapters/commit/raster"
	"github.com/okian/rally/internal/domain/animation"
	"github.com/okian/rally/internal/domain/scene"
	"github.com/okian/rally/pkg/logger"
)

const upperHalf = '▀'

// Surface paints the latest committed scene onto a screen region.
type Surface struct {
	screen   tcell.Screen
	raster   *raster.Rasterizer
	clock    animation.Clock
	interval time.Duration
	log      logger.Logger
	x, y     int

	mu        sync.Mutex
	scene     *scene.Scene
	committed time.Time
	version   int
	changed   chan struct{}
}

// NewSurface returns a surface drawing onto screen with r.
func NewSurface(screen tcell.Screen, r *raster.Rasterizer, opts ...Option) *Surface {
	s := &Surface{
		screen:   screen,
		raster:   r,
		clock:    animation.SystemClock{},
		interval: animation.DefaultFrameInterval,
		log:      logger.Nop(),
		changed:  make(chan struct{}, 1),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Commit replaces the displayed scene and paints its first frame.
func (s *Surface) Commit(ctx context.Context, sc *scene.Scene) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	s.scene = sc
	s.committed = s.clock.Now()
	s.version++
	s.mu.Unlock()

	select {
	case s.changed <- struct{}{}:
	default:
	}
	return s.Draw()
}

// Target names the commit target in metrics and logs.
func (s *Surface) Target() string { return "term" }

// Version returns how many scenes have been committed.
func (s *Surface) Version() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.version
}

// Elapsed returns the animation time of the displayed scene.
func (s *Surface) Elapsed() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.elapsedLocked()
}

func (s *Surface) elapsedLocked() time.Duration {
	if s.scene == nil {
		return 0
	}
	return min(s.clock.Now().Sub(s.committed), s.scene.Duration())
}

// Draw paints the current frame and shows the screen.
func (s *Surface) Draw() error {
	if s.screen == nil {
		return ErrNoScreen
	}
	s.mu.Lock()
	sc, at := s.scene, s.elapsedLocked()
	s.mu.Unlock()

	s.clear()
	if sc == nil || sc.Empty() || sc.Width <= 0 {
		s.screen.Show()
		return nil
	}
	cols, _ := s.screen.Size()
	img, err := s.raster.Scaled(float64(cols-s.x)/sc.Width).Render(sc, at)
	if err != nil {
		return err
	}
	s.paint(img)
	s.screen.Show()
	return nil
}

// Run repaints while the displayed scene animates and then waits for the
// next commit. It returns when ctx is done.
func (s *Surface) Run(ctx context.Context) error {
	sched := animation.NewScheduler(s.clock, s.interval)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-s.changed:
		}
		s.mu.Lock()
		total := time.Duration(0)
		if s.scene != nil {
			total = s.scene.Duration()
		}
		s.mu.Unlock()

		err := sched.Run(ctx, total, func(time.Duration) {
			if err := s.Draw(); err != nil {
				s.log.Warn(ctx, "terminal frame failed", logger.Error(err))
			}
		})
		if err != nil {
			return err
		}
	}
}

func (s *Surface) clear() {
	cols, rows := s.screen.Size()
	for y := s.y; y < rows; y++ {
		for x := s.x; x < cols; x++ {
			s.screen.SetContent(x, y, ' ', nil, tcell.StyleDefault)
		}
	}
}

func (s *Surface) paint(img *image.RGBA) {
	cols, rows := s.screen.Size()
	b := img.Bounds()
	for row := 0; s.y+row < rows && 2*row < b.Dy(); row++ {
		for col := 0; s.x+col < cols && col < b.Dx(); col++ {
			top := img.RGBAAt(col, 2*row)
			bottom := color.RGBA{}
			if 2*row+1 < b.Dy() {
				bottom = img.RGBAAt(col, 2*row+1)
			}
			if top.A == 0 && bottom.A == 0 {
				continue
			}
			style := tcell.StyleDefault.Foreground(cellColor(top)).Background(cellColor(bottom))
			s.screen.SetContent(s.x+col, s.y+row, upperHalf, nil, style)
		}
	}
}

// cellColor maps a premultiplied pixel to a terminal color. Transparent
// pixels keep the terminal default.
func cellColor(c color.RGBA) tcell.Color {
	if c.A == 0 {
		return tcell.ColorDefault
	}
	return tcell.NewRGBColor(int32(c.R), int32(c.G), int32(c.B))
}
