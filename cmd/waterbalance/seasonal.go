package main

import (
	"context"

	"github.com/couchcryptid/water-balance-etl/internal/domain"
	"github.com/spf13/cobra"
)

var seasonalCmd = &cobra.Command{
	Use:   "seasonal",
	Short: "Water balance by season (DJF, MAM, JJA, SON)",
	Long: `Aggregates by meteorological season within season years that run from
September to August, and lists the seasons where evaporation computed as
P - Q is negative, i.e. where storage change cannot be neglected.`,
	RunE: withApp(func(ctx context.Context, a *app, cmd *cobra.Command, _ []string) error {
		return runBalance(ctx, a, cmd, domain.PeriodSeasonal)
	}),
}

func init() {
	rootCmd.AddCommand(seasonalCmd)
}
