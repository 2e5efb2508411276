package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	service "github.com/okian/rally/internal/app"
	"github.com/okian/rally/internal/config"
	"github.com/okian/rally/pkg/logger"
)

// tableFlags override the configured table locations.
type tableFlags struct {
	rankings  string
	abilities string
	records   string
}

func (f *tableFlags) apply(cfg *config.Config) {
	if f.rankings != "" {
		cfg.RankingsCSV = f.rankings
	}
	if f.abilities != "" {
		cfg.AbilitiesCSV = f.abilities
	}
	if f.records != "" {
		cfg.RecordsCSV = f.records
	}
}

func newRootCmd() *cobra.Command {
	tables := &tableFlags{}
	root := &cobra.Command{
		Use:   "rallyctl",
		Short: "Inspect players and render their charts",
		Long: `rallyctl reads the rankings, abilities and records tables and renders
the trend, ability and record charts as SVG or PNG.

Configuration follows the server: defaults, then the YAML file named by
RALLY_CONFIG, then RALLY_* environment variables. The table flags win
over all three.

Examples:
  rallyctl players
  rallyctl players --json
  rallyctl render "FAN Zhendong" trend -o trend.svg
  rallyctl render "XU Xin" record --format png --width 640 -o record.png
  rallyctl render "MA Long" ability --at 500ms > frame.svg
  rallyctl export --dir out --format png`,
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&tables.rankings, "rankings", "", "rankings CSV path")
	root.PersistentFlags().StringVar(&tables.abilities, "abilities", "", "abilities CSV path")
	root.PersistentFlags().StringVar(&tables.records, "records", "", "records CSV path")

	root.AddCommand(newPlayersCmd(tables), newRenderCmd(tables), newExportCmd(tables))
	return root
}

// withService loads the configuration, starts a service for the duration
// of fn and stops it afterwards.
func withService(ctx context.Context, tables *tableFlags, fn func(*service.Service) error) error {
	cfg, err := config.Load(ctx)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	tables.apply(cfg)
	// The CLI has no panels to show.
	cfg.DefaultPlayers = nil

	svc := service.New(cfg, service.WithLogger(logger.Get().Named("rallyctl")))
	if err := svc.Start(ctx); err != nil {
		return err
	}
	defer svc.Stop(context.WithoutCancel(ctx))
	return fn(svc)
}
