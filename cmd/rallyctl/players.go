package main

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	service "github.com/okian/rally/internal/app"
)

func newPlayersCmd(tables *tableFlags) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "players",
		Short: "List the roster in rank order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withService(cmd.Context(), tables, func(svc *service.Service) error {
				players, err := svc.Players(cmd.Context())
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				if asJSON {
					enc := json.NewEncoder(out)
					enc.SetIndent("", "  ")
					return enc.Encode(players)
				}
				tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
				fmt.Fprintln(tw, "POS\tRANK\tNAME\tCOUNTRY")
				for _, p := range players {
					rank := "-"
					if p.Rank > 0 {
						rank = fmt.Sprint(p.Rank)
					}
					fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", p.Position, rank, p.Name, p.Country)
				}
				return tw.Flush()
			})
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON instead of a table")
	return cmd
}
