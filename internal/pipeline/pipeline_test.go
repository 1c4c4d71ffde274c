package pipeline_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"math"
	"path/filepath"
	"testing"
	"time"

	"github.com/couchcryptid/water-balance-etl/internal/domain"
	"github.com/couchcryptid/water-balance-etl/internal/observability"
	"github.com/couchcryptid/water-balance-etl/internal/pipeline"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testAreaKm2 makes a discharge of 2 m³/s equal to 1 mm/day.
const testAreaKm2 = 172.8

var testProcessedAt = time.Date(2026, time.October, 18, 6, 0, 0, 0, time.UTC)

// --- mocks ---

type mockSource struct {
	series  map[string]domain.CatchmentSeries
	topo    map[string]domain.Topography
	covers  map[string]domain.LandCover
	listErr error
}

func (m *mockSource) ListCatchments() ([]string, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	ids := make([]string, 0, len(m.series))
	for _, id := range []string{"1001", "28015", "97002"} {
		if _, ok := m.series[id]; ok {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

func (m *mockSource) ReadTimeseries(id string) (domain.CatchmentSeries, error) {
	s, ok := m.series[id]
	if !ok {
		return domain.CatchmentSeries{}, domain.ErrCatchmentNotFound
	}
	return s, nil
}

func (m *mockSource) ReadTopography() (map[string]domain.Topography, error) {
	return m.topo, nil
}

func (m *mockSource) ReadLandCover() (map[string]domain.LandCover, error) {
	if m.covers == nil {
		return nil, errors.New("landcover file missing")
	}
	return m.covers, nil
}

type mockLoader struct {
	loaded []domain.BalanceRecord
	err    error
}

func (m *mockLoader) LoadBatch(_ context.Context, records []domain.BalanceRecord) error {
	if m.err != nil {
		return m.err
	}
	m.loaded = append(m.loaded, records...)
	return nil
}

// --- helpers ---

func freezeClock(t *testing.T) {
	t.Helper()
	domain.SetClock(clockwork.NewFakeClockAt(testProcessedAt))
	t.Cleanup(func() { domain.SetClock(nil) })
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// twoWaterYears covers WY1971 and WY1972 with 2 mm/day of rain and 1 mm/day
// of discharge. One day in March 1971 has no discharge volume.
func twoWaterYears(id string) domain.CatchmentSeries {
	start := time.Date(1970, time.October, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(1972, time.September, 30, 0, 0, 0, 0, time.UTC)
	missing := time.Date(1971, time.March, 15, 0, 0, 0, 0, time.UTC)

	s := domain.CatchmentSeries{ID: id}
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		r := domain.DailyRecord{Date: d, Precipitation: 2, PET: 1, DischargeSpec: 1, DischargeVol: 2}
		if d.Equal(missing) {
			r.DischargeVol = math.NaN()
		}
		s.Records = append(s.Records, r)
	}
	return s
}

func newSource() *mockSource {
	return &mockSource{
		series: map[string]domain.CatchmentSeries{
			"97002": twoWaterYears("97002"),
			"28015": twoWaterYears("28015"),
			"1001":  twoWaterYears("1001"),
		},
		topo: map[string]domain.Topography{
			"97002": {ID: "97002", Name: "Wick at Tarroul", AreaKm2: testAreaKm2},
			"28015": {ID: "28015", Name: "Idle at Mattersey", AreaKm2: testAreaKm2},
		},
		covers: map[string]domain.LandCover{
			"97002": {ID: "97002", DeciduousWoodland: 1.5, EvergreenWoodland: 3},
		},
	}
}

// --- tests ---

func TestPipeline_RunCatchment_Annual(t *testing.T) {
	freezeClock(t)
	ldr := &mockLoader{}
	metrics := observability.NewMetrics()
	p := pipeline.New(newSource(), ldr, discardLogger(), metrics)

	res, err := p.RunCatchment(context.Background(), "97002", domain.PeriodAnnual)
	require.NoError(t, err)

	assert.Equal(t, "Wick at Tarroul", res.Name)
	assert.Equal(t, 731, res.RowsRead)
	assert.Equal(t, 1, res.RowsDropped)

	want := []domain.BalanceRecord{
		{
			CatchmentID: "97002", Period: domain.Period{Kind: domain.PeriodAnnual, Year: 1971}, Days: 364,
			Precipitation: 728, PET: 364, DischargeSpec: 364, DischargeVol: 364 * 172800,
			DischargeComputed: 364, Diff: 0, Evaporation: 364,
			RunID: p.RunID(), ProcessedAt: testProcessedAt,
		},
		{
			CatchmentID: "97002", Period: domain.Period{Kind: domain.PeriodAnnual, Year: 1972}, Days: 366,
			Precipitation: 732, PET: 366, DischargeSpec: 366, DischargeVol: 366 * 172800,
			DischargeComputed: 366, Diff: 0, Evaporation: 366,
			RunID: p.RunID(), ProcessedAt: testProcessedAt,
		},
	}
	if diff := cmp.Diff(want, res.Records, cmpopts.EquateApprox(0, 1e-6)); diff != "" {
		t.Fatalf("records mismatch (-want +got):\n%s", diff)
	}

	assert.Len(t, ldr.loaded, 2)
	assert.InDelta(t, 731, testutil.ToFloat64(metrics.RowsRead), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(metrics.RowsDropped), 0)
	assert.InDelta(t, 2, testutil.ToFloat64(metrics.RecordsAggregated.WithLabelValues("annual")), 0)
	assert.InDelta(t, 2, testutil.ToFloat64(metrics.RecordsPublished), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(metrics.CatchmentsProcessed), 0)
}

func TestPipeline_RunCatchment_Seasonal(t *testing.T) {
	p := pipeline.New(newSource(), nil, discardLogger(), observability.NewMetrics())

	res, err := p.RunCatchment(context.Background(), "97002", domain.PeriodSeasonal)
	require.NoError(t, err)

	require.Len(t, res.Records, 9)
	first := res.Records[0]
	assert.Equal(t, domain.Period{Kind: domain.PeriodSeasonal, Year: 1971, Season: domain.SeasonSON}, first.Period)
	assert.Equal(t, 61, first.Days)

	mam := res.Records[2]
	assert.Equal(t, domain.SeasonMAM, mam.Period.Season)
	assert.Equal(t, 91, mam.Days, "the day without discharge is dropped")

	last := res.Records[8]
	assert.Equal(t, domain.Period{Kind: domain.PeriodSeasonal, Year: 1973, Season: domain.SeasonSON}, last.Period)
	assert.Equal(t, 30, last.Days)
	assert.Empty(t, domain.NegativeEvaporation(res.Records))
}

func TestPipeline_RunCatchment_UnknownCatchment(t *testing.T) {
	metrics := observability.NewMetrics()
	p := pipeline.New(newSource(), nil, discardLogger(), metrics)

	_, err := p.RunCatchment(context.Background(), "99999", domain.PeriodAnnual)

	require.ErrorIs(t, err, domain.ErrCatchmentNotFound)
	assert.InDelta(t, 1, testutil.ToFloat64(metrics.CatchmentsFailed), 0)
}

func TestPipeline_RunCatchment_InvalidArea(t *testing.T) {
	src := newSource()
	src.topo["97002"] = domain.Topography{ID: "97002", AreaKm2: 0}
	p := pipeline.New(src, nil, discardLogger(), observability.NewMetrics())

	_, err := p.RunCatchment(context.Background(), "97002", domain.PeriodAnnual)

	require.ErrorIs(t, err, domain.ErrInvalidArea)
}

func TestPipeline_RunCatchment_LoaderError(t *testing.T) {
	metrics := observability.NewMetrics()
	p := pipeline.New(newSource(), &mockLoader{err: errors.New("broker down")}, discardLogger(), metrics)

	_, err := p.RunCatchment(context.Background(), "97002", domain.PeriodAnnual)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "broker down")
	assert.InDelta(t, 0, testutil.ToFloat64(metrics.RecordsPublished), 0)
}

func TestPipeline_Summary(t *testing.T) {
	p := pipeline.New(newSource(), nil, discardLogger(), observability.NewMetrics())

	s, err := p.Summary(context.Background(), "97002")
	require.NoError(t, err)

	assert.Equal(t, "97002", s.CatchmentID)
	assert.Equal(t, 2, s.Periods)
	assert.InDelta(t, 0.5, s.RunoffRatio, 1e-9)
	assert.True(t, s.HasLandCover)
	assert.InDelta(t, 4.5, s.ForestPerc, 1e-9)
	assert.Equal(t, domain.ForestLow, s.ForestGroup)
}

func TestPipeline_RunAll(t *testing.T) {
	metrics := observability.NewMetrics()
	p := pipeline.New(newSource(), nil, discardLogger(), metrics)

	summaries, err := p.RunAll(context.Background())
	require.NoError(t, err)

	require.Len(t, summaries, 2, "1001 has no topography and is skipped")
	assert.Equal(t, "28015", summaries[0].CatchmentID)
	assert.False(t, summaries[0].HasLandCover)
	assert.Equal(t, "97002", summaries[1].CatchmentID)
	assert.True(t, summaries[1].HasLandCover)

	assert.InDelta(t, 2, testutil.ToFloat64(metrics.CatchmentsProcessed), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(metrics.CatchmentsFailed), 0)
}

func TestPipeline_RunAll_NoLandCover(t *testing.T) {
	src := newSource()
	src.covers = nil
	p := pipeline.New(src, nil, discardLogger(), observability.NewMetrics())

	summaries, err := p.RunAll(context.Background())
	require.NoError(t, err)
	for _, s := range summaries {
		assert.False(t, s.HasLandCover)
	}
}

func TestPipeline_RunAll_AllFail(t *testing.T) {
	src := newSource()
	src.topo = map[string]domain.Topography{}
	p := pipeline.New(src, nil, discardLogger(), observability.NewMetrics())

	_, err := p.RunAll(context.Background())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "all 3 catchments failed")
}

func TestPipeline_RunAll_ContextCancelled(t *testing.T) {
	p := pipeline.New(newSource(), nil, discardLogger(), observability.NewMetrics())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	summaries, err := p.RunAll(ctx)

	require.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, summaries)
}

func TestPipeline_RunAll_ListError(t *testing.T) {
	src := newSource()
	src.listErr = errors.New("permission denied")
	p := pipeline.New(src, nil, discardLogger(), observability.NewMetrics())

	_, err := p.RunAll(context.Background())
	require.Error(t, err)
}

func TestPipeline_RunIDIsStable(t *testing.T) {
	p := pipeline.New(newSource(), nil, discardLogger(), observability.NewMetrics())
	q := pipeline.New(newSource(), nil, discardLogger(), observability.NewMetrics())

	assert.Len(t, p.RunID(), 36)
	assert.Equal(t, p.RunID(), p.RunID())
	assert.NotEqual(t, p.RunID(), q.RunID())
}

func TestBalance_NoDischarge(t *testing.T) {
	series := domain.CatchmentSeries{ID: "97002", Records: []domain.DailyRecord{
		{Date: time.Date(1971, 1, 1, 0, 0, 0, 0, time.UTC), Precipitation: 1, DischargeVol: math.NaN()},
	}}

	_, dropped, err := pipeline.Balance(series, domain.PeriodAnnual, testAreaKm2)

	require.ErrorIs(t, err, domain.ErrInsufficientData)
	assert.Equal(t, 1, dropped)
}

func TestBalance_UnknownKind(t *testing.T) {
	_, _, err := pipeline.Balance(twoWaterYears("97002"), domain.PeriodKind("monthly"), testAreaKm2)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "monthly")
}

func TestExtractArchive_Missing(t *testing.T) {
	root := t.TempDir()
	metrics := observability.NewMetrics()

	_, ok := pipeline.ExtractArchive(filepath.Join(root, "ds.zip"), filepath.Join(root, "ds"), root, discardLogger(), metrics)

	assert.False(t, ok)
	assert.InDelta(t, 1, testutil.ToFloat64(metrics.ArchiveExtractions.WithLabelValues("missing")), 0)
}

func TestExtractArchive_AlreadyExtracted(t *testing.T) {
	root := t.TempDir()
	metrics := observability.NewMetrics()

	res, ok := pipeline.ExtractArchive(filepath.Join(root, "ds.zip"), root, root, discardLogger(), metrics)

	assert.True(t, ok)
	assert.True(t, res.Skipped)
	assert.InDelta(t, 1, testutil.ToFloat64(metrics.ArchiveExtractions.WithLabelValues("skipped")), 0)
}
