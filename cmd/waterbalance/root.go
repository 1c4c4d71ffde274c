package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/couchcryptid/water-balance-etl/internal/config"
	"github.com/couchcryptid/water-balance-etl/internal/observability"
	"github.com/spf13/cobra"
)

var (
	cfgFile     string
	catchmentID string
	dataRoot    string
	outputDir   string
)

var rootCmd = &cobra.Command{
	Use:   "waterbalance",
	Short: "Water balance analysis of CAMELS-GB catchments",
	Long: `waterbalance loads the CAMELS-GB hydrometeorological dataset, aggregates daily
precipitation and discharge by water year or season, derives evaporation as the
residual of the water-balance equation, and relates runoff ratio to forest cover.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $CONFIG_PATH or ./waterbalance.yaml)")
	rootCmd.PersistentFlags().StringVar(&catchmentID, "catchment", "", "gauge id (overrides CATCHMENT_ID)")
	rootCmd.PersistentFlags().StringVar(&dataRoot, "data-root", "", "directory holding the dataset archive (overrides DATA_ROOT)")
	rootCmd.PersistentFlags().StringVar(&outputDir, "output-dir", "", "directory for plots (overrides OUTPUT_DIR)")
}

// app carries what every subcommand needs.
type app struct {
	cfg     *config.Config
	logger  *slog.Logger
	metrics *observability.Metrics
	start   time.Time
}

func loadConfig() (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if cfgFile != "" {
		cfg, err = config.LoadFile(cfgFile)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	if catchmentID != "" {
		cfg.CatchmentID = catchmentID
	}
	if dataRoot != "" {
		cfg.DataRoot = dataRoot
	}
	if outputDir != "" {
		cfg.OutputDir = outputDir
	}
	return cfg, nil
}

// finish records run metrics and flushes them to METRICS_FILE when set.
func (a *app) finish() {
	a.metrics.RunDuration.Observe(time.Since(a.start).Seconds())
	a.metrics.LastRunTimestamp.SetToCurrentTime()
	if a.cfg.MetricsFile == "" {
		return
	}
	if err := a.metrics.WriteTextfile(a.cfg.MetricsFile); err != nil {
		a.logger.Warn("metrics not written", "path", a.cfg.MetricsFile, "error", err)
		return
	}
	a.logger.Debug("metrics written", "path", a.cfg.MetricsFile)
}

// withApp adapts a subcommand body to cobra's RunE, building the app first
// and flushing metrics afterwards.
func withApp(fn func(ctx context.Context, a *app, cmd *cobra.Command, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		a := &app{
			cfg:     cfg,
			logger:  observability.NewLogger(cfg),
			metrics: observability.NewMetrics(),
			start:   time.Now(),
		}
		defer a.finish()
		return fn(cmd.Context(), a, cmd, args)
	}
}
