package main

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/couchcryptid/water-balance-etl/internal/adapter/camels"
	kafkaadapter "github.com/couchcryptid/water-balance-etl/internal/adapter/kafka"
	"github.com/couchcryptid/water-balance-etl/internal/adapter/plot"
	"github.com/couchcryptid/water-balance-etl/internal/domain"
	"github.com/couchcryptid/water-balance-etl/internal/pipeline"
	"github.com/couchcryptid/water-balance-etl/internal/report"
	"github.com/spf13/cobra"
)

// consistencyHead is how many per-period differences are printed.
const consistencyHead = 5

var annualCmd = &cobra.Command{
	Use:   "annual",
	Short: "Water balance by water year (October to September)",
	RunE: withApp(func(ctx context.Context, a *app, cmd *cobra.Command, _ []string) error {
		return runBalance(ctx, a, cmd, domain.PeriodAnnual)
	}),
}

func init() {
	rootCmd.AddCommand(annualCmd)
}

// newPipeline wires the dataset reader and, when enabled, the Kafka sink.
// The returned close function releases the sink.
func newPipeline(a *app) (*pipeline.Pipeline, func()) {
	var loader pipeline.BatchLoader
	closeFn := func() {}
	if a.cfg.KafkaEnabled {
		w := kafkaadapter.NewWriter(a.cfg, a.logger)
		loader = w
		closeFn = func() {
			if err := w.Close(); err != nil {
				a.logger.Error("kafka writer close error", "error", err)
			}
		}
		a.logger.Info("publishing balance records", "topic", a.cfg.KafkaTopic, "brokers", a.cfg.KafkaBrokers)
	}
	return pipeline.New(camels.NewDataset(a.cfg.DataDir()), loader, a.logger, a.metrics), closeFn
}

func runBalance(ctx context.Context, a *app, cmd *cobra.Command, kind domain.PeriodKind) error {
	extract(a, cmd)

	p, closeFn := newPipeline(a)
	defer closeFn()

	id := a.cfg.CatchmentID
	res, err := p.RunCatchment(ctx, id, kind)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	report.Load(out, id, res.RowsRead, res.RowsDropped)
	report.BalanceTable(out, id, res.Records)
	report.Consistency(out, res.Records, consistencyHead)
	report.Violations(out, fmt.Sprintf("Periods where |diff| > %.2f mm", a.cfg.DischargeToleranceMM),
		domain.CheckConsistency(res.Records, a.cfg.DischargeToleranceMM))
	report.Violations(out, "Negative totals", domain.CheckNonNegative(res.Records))
	if kind == domain.PeriodSeasonal {
		report.NegativeEvaporation(out, res.Records)
	}

	path := filepath.Join(a.cfg.OutputDir, fmt.Sprintf("water_balance_%s_%s.png", id, kind))
	if err := plot.WaterBalance(path, id, res.Records); err != nil {
		return err
	}
	fmt.Fprintf(out, "\nPlot written to %s\n", path)
	return nil
}
