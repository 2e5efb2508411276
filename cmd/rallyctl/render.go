package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	service "github.com/okian/rally/internal/app"
)

type renderFlags struct {
	width  float64
	format string
	at     time.Duration
	output string
}

func newRenderCmd(tables *tableFlags) *cobra.Command {
	f := &renderFlags{}
	cmd := &cobra.Command{
		Use:   "render <player> <trend|ability|record>",
		Short: "Render one chart of a player",
		Long: `Render one chart of a player to a file or stdout.

SVG output is animated unless --at samples an instant. PNG output shows
the final frame unless --at is given.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if f.at < 0 {
				return fmt.Errorf("--at must not be negative")
			}
			return withService(cmd.Context(), tables, func(svc *service.Service) error {
				doc, _, err := svc.RenderChart(cmd.Context(), service.RenderRequest{
					Player: args[0],
					Kind:   args[1],
					Width:  f.width,
					Format: f.format,
					At:     f.at,
				})
				if err != nil {
					return err
				}
				if f.output == "" || f.output == "-" {
					_, err = cmd.OutOrStdout().Write(doc)
					return err
				}
				if err := os.WriteFile(f.output, doc, 0o644); err != nil {
					return fmt.Errorf("write %s: %w", f.output, err)
				}
				fmt.Fprintf(cmd.ErrOrStderr(), "wrote %s (%d bytes)\n", f.output, len(doc))
				return nil
			})
		},
	}
	cmd.Flags().Float64Var(&f.width, "width", 0, "container width in pixels (default from config)")
	cmd.Flags().StringVar(&f.format, "format", service.FormatSVG, "output format: svg or png")
	cmd.Flags().DurationVar(&f.at, "at", 0, "sample the animation at this instant")
	cmd.Flags().StringVarP(&f.output, "output", "o", "", "output file (default stdout)")
	return cmd
}
