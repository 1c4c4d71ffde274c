package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/couchcryptid/water-balance-etl/internal/domain"
	"github.com/couchcryptid/water-balance-etl/internal/observability"
	"github.com/google/uuid"
)

// Source reads catchment data. camels.Dataset implements it.
type Source interface {
	ListCatchments() ([]string, error)
	ReadTimeseries(id string) (domain.CatchmentSeries, error)
	ReadTopography() (map[string]domain.Topography, error)
	ReadLandCover() (map[string]domain.LandCover, error)
}

// BatchLoader writes balance records to a destination.
type BatchLoader interface {
	LoadBatch(ctx context.Context, records []domain.BalanceRecord) error
}

// Result is the outcome of running one catchment.
type Result struct {
	CatchmentID string
	Name        string
	AreaKm2     float64
	RowsRead    int
	RowsDropped int
	Records     []domain.BalanceRecord
}

// Pipeline runs extract, transform and an optional load for catchments.
type Pipeline struct {
	source  Source
	loader  BatchLoader
	logger  *slog.Logger
	metrics *observability.Metrics
	runID   string
}

// New creates a Pipeline. A nil loader disables publishing.
func New(src Source, loader BatchLoader, logger *slog.Logger, metrics *observability.Metrics) *Pipeline {
	runID := uuid.NewString()
	return &Pipeline{
		source:  src,
		loader:  loader,
		logger:  logger.With("run_id", runID),
		metrics: metrics,
		runID:   runID,
	}
}

// RunID identifies this run on every record it produces.
func (p *Pipeline) RunID() string {
	return p.runID
}

// RunCatchment computes the balance records of one catchment at the given
// period kind and publishes them when a loader is configured.
func (p *Pipeline) RunCatchment(ctx context.Context, id string, kind domain.PeriodKind) (Result, error) {
	topo, err := p.source.ReadTopography()
	if err != nil {
		return Result{}, err
	}
	res, err := p.runCatchment(ctx, id, kind, topo)
	if err != nil {
		p.metrics.CatchmentsFailed.Inc()
		return res, err
	}
	p.metrics.CatchmentsProcessed.Inc()
	return res, nil
}

// Summary computes the runoff ratio of one catchment and attaches its land
// cover when available.
func (p *Pipeline) Summary(ctx context.Context, id string) (domain.CatchmentSummary, error) {
	res, err := p.RunCatchment(ctx, id, domain.PeriodAnnual)
	if err != nil {
		return domain.CatchmentSummary{}, err
	}
	s, err := domain.Summarize(id, res.Records)
	if err != nil {
		return domain.CatchmentSummary{}, err
	}
	covers := p.landCover()
	if lc, ok := covers[id]; ok {
		s = domain.AttachLandCover(s, lc)
	}
	return s, nil
}

// RunAll summarizes every catchment in the dataset. Catchments that fail are
// logged and skipped. An error is returned only when nothing succeeded or the
// context was cancelled.
func (p *Pipeline) RunAll(ctx context.Context) ([]domain.CatchmentSummary, error) {
	ids, err := p.source.ListCatchments()
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return nil, errors.New("no catchments found")
	}
	topo, err := p.source.ReadTopography()
	if err != nil {
		return nil, err
	}
	covers := p.landCover()

	p.logger.Info("processing catchments", "count", len(ids))
	summaries := make([]domain.CatchmentSummary, 0, len(ids))
	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			return summaries, err
		}
		res, err := p.runCatchment(ctx, id, domain.PeriodAnnual, topo)
		if err == nil {
			var s domain.CatchmentSummary
			s, err = domain.Summarize(id, res.Records)
			if err == nil {
				if lc, ok := covers[id]; ok {
					s = domain.AttachLandCover(s, lc)
				}
				summaries = append(summaries, s)
				p.metrics.CatchmentsProcessed.Inc()
				continue
			}
		}
		p.metrics.CatchmentsFailed.Inc()
		p.logger.Warn("skipping catchment", "catchment_id", id, "error", err)
	}

	if len(summaries) == 0 {
		return nil, fmt.Errorf("all %d catchments failed", len(ids))
	}
	p.logger.Info("catchments processed", "succeeded", len(summaries), "failed", len(ids)-len(summaries))
	return summaries, nil
}

func (p *Pipeline) runCatchment(ctx context.Context, id string, kind domain.PeriodKind, topo map[string]domain.Topography) (Result, error) {
	t, ok := topo[id]
	if !ok {
		return Result{CatchmentID: id}, fmt.Errorf("topographic attributes for %s: %w", id, domain.ErrCatchmentNotFound)
	}
	res := Result{CatchmentID: id, Name: t.Name, AreaKm2: t.AreaKm2}

	series, err := p.source.ReadTimeseries(id)
	if err != nil {
		return res, err
	}
	res.RowsRead = len(series.Records)
	p.metrics.RowsRead.Add(float64(res.RowsRead))

	records, dropped, err := Balance(series, kind, t.AreaKm2)
	res.RowsDropped = dropped
	p.metrics.RowsDropped.Add(float64(dropped))
	if err != nil {
		return res, err
	}
	for i := range records {
		records[i].RunID = p.runID
	}
	res.Records = records
	p.metrics.RecordsAggregated.WithLabelValues(string(kind)).Add(float64(len(records)))

	if p.loader != nil {
		if err := p.loader.LoadBatch(ctx, records); err != nil {
			return res, fmt.Errorf("load %s records for %s: %w", kind, id, err)
		}
		p.metrics.RecordsPublished.Add(float64(len(records)))
	}

	p.logger.Info("catchment processed",
		"catchment_id", id,
		"kind", string(kind),
		"rows", res.RowsRead,
		"dropped", dropped,
		"periods", len(records),
	)
	return res, nil
}

// landCover reads the land-cover table, returning nil if it is unavailable.
func (p *Pipeline) landCover() map[string]domain.LandCover {
	covers, err := p.source.ReadLandCover()
	if err != nil {
		p.logger.Warn("land cover unavailable, forest grouping skipped", "error", err)
		return nil
	}
	return covers
}
