package main

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/couchcryptid/water-balance-etl/internal/adapter/plot"
	"github.com/couchcryptid/water-balance-etl/internal/domain"
	"github.com/couchcryptid/water-balance-etl/internal/report"
	"github.com/spf13/cobra"
)

var runoffAll bool

var runoffCmd = &cobra.Command{
	Use:   "runoff",
	Short: "Runoff ratio and forest cover",
	Long: `Computes the runoff ratio (total discharge over total precipitation) for the
configured catchment, or with --all for every catchment in the dataset. With
--all it also groups catchments by forest cover, fits runoff ratio against
forest percentage, and draws a box plot per group.`,
	RunE: withApp(runRunoff),
}

func init() {
	runoffCmd.Flags().BoolVar(&runoffAll, "all", false, "process every catchment in the dataset")
	rootCmd.AddCommand(runoffCmd)
}

func runRunoff(ctx context.Context, a *app, cmd *cobra.Command, _ []string) error {
	extract(a, cmd)

	p, closeFn := newPipeline(a)
	defer closeFn()

	out := cmd.OutOrStdout()
	if !runoffAll {
		s, err := p.Summary(ctx, a.cfg.CatchmentID)
		if err != nil {
			return err
		}
		report.Summaries(out, []domain.CatchmentSummary{s})
		warnRatio(a, s)
		return nil
	}

	summaries, err := p.RunAll(ctx)
	if err != nil {
		return err
	}
	report.Summaries(out, summaries)
	for _, s := range summaries {
		warnRatio(a, s)
	}

	groups := domain.GroupRunoffRatios(summaries)
	report.GroupCounts(out, groups)

	fit, err := domain.FitRunoffForest(summaries)
	switch {
	case errors.Is(err, domain.ErrInsufficientData):
		a.logger.Warn("regression skipped", "error", err)
	case err != nil:
		return err
	default:
		report.FitLine(out, fit)
	}

	path := filepath.Join(a.cfg.OutputDir, "runoff_ratio_by_forest.png")
	if err := plot.RunoffRatioByForest(path, groups); err != nil {
		if errors.Is(err, plot.ErrNothingToPlot) {
			a.logger.Warn("box plot skipped, no catchment has land cover")
			return nil
		}
		return err
	}
	fmt.Fprintf(out, "\nPlot written to %s\n", path)
	return nil
}

func warnRatio(a *app, s domain.CatchmentSummary) {
	if err := domain.CheckRunoffRatio(s.RunoffRatio, a.cfg.RunoffRatioMin, a.cfg.RunoffRatioMax); err != nil {
		a.logger.Warn("implausible runoff ratio", "catchment_id", s.CatchmentID, "error", err)
	}
}
