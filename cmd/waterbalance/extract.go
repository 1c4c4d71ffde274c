package main

import (
	"context"

	"github.com/couchcryptid/water-balance-etl/internal/pipeline"
	"github.com/couchcryptid/water-balance-etl/internal/report"
	"github.com/spf13/cobra"
)

var extractCmd = &cobra.Command{
	Use:   "extract",
	Short: "Unpack the dataset archive",
	Long: `Unpacks <data-root>/<dataset-id>.zip into <data-root> unless the dataset
directory already exists. A missing or corrupt archive is reported and the
command still succeeds.`,
	RunE: withApp(runExtract),
}

func init() {
	rootCmd.AddCommand(extractCmd)
}

func runExtract(_ context.Context, a *app, cmd *cobra.Command, _ []string) error {
	extract(a, cmd)
	return nil
}

// extract makes sure the dataset directory exists, printing what happened.
func extract(a *app, cmd *cobra.Command) {
	res, ok := pipeline.ExtractArchive(a.cfg.ArchivePath(), a.cfg.ExtractDir(), a.cfg.DataRoot, a.logger, a.metrics)
	if ok {
		report.Extraction(cmd.OutOrStdout(), a.cfg.ExtractDir(), res.Skipped, res.Files, res.Bytes)
	}
}
