// Command waterbalance applies the catchment water-balance equation to the
// CAMELS-GB dataset: it unpacks the archive, aggregates daily records by water
// year or season, derives evaporation as the residual E = P - Q, and relates
// runoff ratio to forest cover.
//
// Usage:
//
//	waterbalance extract
//	waterbalance annual --catchment 97002
//	waterbalance seasonal --catchment 97002
//	waterbalance runoff --all
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		slog.Error("command failed", "error", err)
		stop()
		os.Exit(1)
	}
}
