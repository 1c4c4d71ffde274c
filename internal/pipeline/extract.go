package pipeline

import (
	"errors"
	"log/slog"

	"github.com/couchcryptid/water-balance-etl/internal/adapter/camels"
	"github.com/couchcryptid/water-balance-etl/internal/observability"
)

// ExtractArchive unpacks the dataset archive if needed. Archive problems are
// logged and reported through ok=false rather than returned: the run carries
// on and fails later only if the data directory is unusable.
func ExtractArchive(zipPath, extractDir, destRoot string, logger *slog.Logger, metrics *observability.Metrics) (res camels.ExtractResult, ok bool) {
	res, err := camels.Extract(zipPath, extractDir, destRoot)
	switch {
	case err == nil && res.Skipped:
		metrics.ArchiveExtractions.WithLabelValues("skipped").Inc()
		logger.Info("dataset already extracted", "dir", extractDir)
		return res, true
	case err == nil:
		metrics.ArchiveExtractions.WithLabelValues("extracted").Inc()
		logger.Info("dataset extracted", "archive", zipPath, "files", res.Files, "bytes", res.Bytes)
		return res, true
	case errors.Is(err, camels.ErrArchiveNotFound):
		metrics.ArchiveExtractions.WithLabelValues("missing").Inc()
		logger.Warn("zip file not found", "archive", zipPath)
	case errors.Is(err, camels.ErrArchiveCorrupt):
		metrics.ArchiveExtractions.WithLabelValues("corrupt").Inc()
		logger.Warn("zip file is corrupt", "archive", zipPath, "error", err)
	default:
		metrics.ArchiveExtractions.WithLabelValues("error").Inc()
		logger.Warn("extract dataset", "archive", zipPath, "error", err)
	}
	return res, false
}
