package plot

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/couchcryptid/water-balance-etl/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func annualRecords() []domain.BalanceRecord {
	var out []domain.BalanceRecord
	for y := 1971; y <= 1975; y++ {
		p := 900 + float64(y-1971)*20
		q := 500 + float64(y-1971)*10
		out = append(out, domain.BalanceRecord{
			CatchmentID:       "97002",
			Period:            domain.Period{Kind: domain.PeriodAnnual, Year: y},
			Precipitation:     p,
			DischargeSpec:     q,
			DischargeComputed: q,
			Evaporation:       p - q,
		})
	}
	return out
}

func assertPNG(t *testing.T, path string) {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Greater(t, len(data), 8)
	assert.Equal(t, []byte("\x89PNG"), data[:4])
}

func TestWaterBalance(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plots", "water_balance_97002.png")

	require.NoError(t, WaterBalance(path, "97002", annualRecords()))
	assertPNG(t, path)
}

func TestWaterBalance_Seasonal(t *testing.T) {
	var recs []domain.BalanceRecord
	for _, s := range domain.Seasons {
		recs = append(recs, domain.BalanceRecord{
			Period:        domain.Period{Kind: domain.PeriodSeasonal, Year: 1976, Season: s},
			Precipitation: 200, DischargeSpec: 120, Evaporation: 80,
		})
	}
	path := filepath.Join(t.TempDir(), "seasonal.png")

	require.NoError(t, WaterBalance(path, "97002", recs))
	assertPNG(t, path)
}

func TestWaterBalance_Empty(t *testing.T) {
	err := WaterBalance(filepath.Join(t.TempDir(), "x.png"), "97002", nil)
	assert.ErrorIs(t, err, ErrNothingToPlot)
}

func TestRunoffRatioByForest(t *testing.T) {
	path := filepath.Join(t.TempDir(), "runoff_by_forest.png")
	groups := map[domain.ForestGroup][]float64{
		domain.ForestLow:    {0.45, 0.52, 0.61, 0.58},
		domain.ForestMedium: {0.38, 0.41, 0.49},
		domain.ForestHigh:   nil,
	}

	require.NoError(t, RunoffRatioByForest(path, groups))
	assertPNG(t, path)
}

func TestRunoffRatioByForest_AllEmpty(t *testing.T) {
	err := RunoffRatioByForest(filepath.Join(t.TempDir(), "x.png"), map[domain.ForestGroup][]float64{})
	assert.ErrorIs(t, err, ErrNothingToPlot)
}

func TestPeriodX(t *testing.T) {
	assert.InDelta(t, 1976.0, periodX(domain.Period{Kind: domain.PeriodAnnual, Year: 1976}), 0)
	assert.InDelta(t, 1975.25, periodX(domain.Period{Kind: domain.PeriodSeasonal, Year: 1976, Season: domain.SeasonSON}), 1e-12)
	assert.InDelta(t, 1976.0, periodX(domain.Period{Kind: domain.PeriodSeasonal, Year: 1976, Season: domain.SeasonJJA}), 1e-12)
}
