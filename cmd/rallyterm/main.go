// Command rallyterm shows a player's charts in the terminal. The chart
// follows the terminal width, animates on every redraw and shows hover
// labels in the status line.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/gdamore/tcell/v2"
	"github.com/spf13/cobra"

	service "github.com/okian/rally/internal/app"
	"github.com/okian/rally/internal/config"
	"github.com/okian/rally/pkg/logger"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		player  string
		kind    string
		logPath string
		cellW   float64
	)
	cmd := &cobra.Command{
		Use:   "rallyterm",
		Short: "Animated player charts in the terminal",
		Long: `rallyterm renders the trend, ability and record charts with half-block
cells. Resize the terminal to redraw at the new width.

Keys:
  tab / shift-tab   next / previous chart
  left / right      previous / next player
  q / esc / ctrl-c  quit`,
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			// The screen owns stdout, so logs go to a file or nowhere.
			var w io.Writer = io.Discard
			if logPath != "" {
				f, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
				if err != nil {
					return fmt.Errorf("open log: %w", err)
				}
				defer f.Close()
				w = f
			}
			if err := logger.Init(logger.WithWriter(w)); err != nil {
				return err
			}

			ctx := cmd.Context()
			cfg, err := config.Load(ctx)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			_ = logger.SetLevelString(cfg.LogLevel)
			cfg.DefaultPlayers = nil

			svc := service.New(cfg, service.WithLogger(logger.Get()))
			if err := svc.Start(ctx); err != nil {
				return err
			}
			defer svc.Stop(context.WithoutCancel(ctx))

			screen, err := tcell.NewScreen()
			if err != nil {
				return fmt.Errorf("open terminal: %w", err)
			}
			if err := screen.Init(); err != nil {
				return fmt.Errorf("init terminal: %w", err)
			}
			defer screen.Fini()
			screen.EnableMouse()

			h, err := newHost(ctx, svc, screen, player, kind,
				withCellWidth(cellW), withHostLogger(logger.Named("rallyterm")))
			if err != nil {
				return err
			}
			return h.run(ctx)
		},
	}
	cmd.Flags().StringVarP(&player, "player", "p", "", "player to show (default: top ranked)")
	cmd.Flags().StringVarP(&kind, "chart", "c", "trend", "chart to show: trend, ability or record")
	cmd.Flags().StringVar(&logPath, "log", "", "append logs to this file")
	cmd.Flags().Float64Var(&cellW, "cell-width", defaultCellWidth, "chart pixels per terminal column")
	return cmd
}
