package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/okian/rally/internal/adapters/mq/queue"
	"github.com/okian/rally/internal/adapters/mq/worker"
	service "github.com/okian/rally/internal/app"
	"github.com/okian/rally/internal/domain/chart"
	"github.com/okian/rally/pkg/logger"
)

type exportFlags struct {
	render  renderFlags
	dir     string
	workers int
	players []string
	charts  []string
}

func newExportCmd(tables *tableFlags) *cobra.Command {
	f := &exportFlags{}
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Render every chart of every player into a directory",
		Long: `Render charts for many players concurrently. Files are written as
<dir>/<player>/<chart>.<format>.

Examples:
  rallyctl export --dir out
  rallyctl export --dir out --format png --width 640 --workers 8
  rallyctl export --dir out --player "FAN Zhendong" --chart trend,record`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			return withService(ctx, tables, func(svc *service.Service) error {
				jobs, err := planExport(ctx, svc, f)
				if err != nil {
					return err
				}
				q := queue.NewInMemoryQueue(queue.WithCapacity(max(len(jobs), 1)))
				for _, j := range jobs {
					if err := q.Enqueue(ctx, j); err != nil {
						return err
					}
				}
				_ = q.Close()

				pool := worker.NewPool(f.workers, q, renderJobs(svc), worker.DirSink{Root: f.dir},
					worker.WithLogger(logger.Get().Named("export")))
				pool.Start(ctx)
				summary, err := pool.Wait(ctx)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "exported %d charts (%d bytes) to %s\n", summary.Done, summary.Bytes, f.dir)
				if summary.Failed > 0 {
					return fmt.Errorf("%d exports failed: %w", summary.Failed, summary.Err)
				}
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&f.dir, "dir", "export", "output directory")
	cmd.Flags().IntVar(&f.workers, "workers", 0, "concurrent renders (default: number of CPUs)")
	cmd.Flags().StringSliceVar(&f.players, "player", nil, "players to export (default: whole roster)")
	cmd.Flags().StringSliceVar(&f.charts, "chart", nil, "charts to export (default: all)")
	cmd.Flags().Float64Var(&f.render.width, "width", 0, "container width in pixels (default from config)")
	cmd.Flags().StringVar(&f.render.format, "format", service.FormatSVG, "output format: svg or png")
	cmd.Flags().DurationVar(&f.render.at, "at", 0, "sample the animation at this instant")
	return cmd
}

// planExport expands the selected players and charts into jobs.
func planExport(ctx context.Context, svc *service.Service, f *exportFlags) ([]queue.Job, error) {
	players := f.players
	if len(players) == 0 {
		roster, err := svc.Players(ctx)
		if err != nil {
			return nil, err
		}
		for _, p := range roster {
			players = append(players, p.Name)
		}
	}
	kinds := f.charts
	if len(kinds) == 0 {
		for _, k := range chart.Kinds {
			kinds = append(kinds, string(k))
		}
	}
	for _, k := range kinds {
		if _, ok := chart.ParseKind(k); !ok {
			return nil, fmt.Errorf("%w: %q", service.ErrUnknownChart, k)
		}
	}
	ext := strings.ToLower(f.render.format)
	if ext == "" {
		ext = service.FormatSVG
	}

	jobs := make([]queue.Job, 0, len(players)*len(kinds))
	for _, p := range players {
		for _, k := range kinds {
			jobs = append(jobs, queue.Job{
				Player: p,
				Kind:   k,
				Format: f.render.format,
				Width:  f.render.width,
				At:     f.render.at,
				Path:   p + "/" + k + "." + ext,
			})
		}
	}
	return jobs, nil
}

func renderJobs(svc *service.Service) worker.RendererFunc {
	return func(ctx context.Context, j queue.Job) ([]byte, error) {
		doc, _, err := svc.RenderChart(ctx, service.RenderRequest{
			Player: j.Player,
			Kind:   j.Kind,
			Width:  j.Width,
			Format: j.Format,
			At:     j.At,
		})
		return doc, err
	}
}
