package pipeline

import (
	"fmt"

	"github.com/couchcryptid/water-balance-etl/internal/domain"
)

// Balance is the transform stage: it drops days without discharge volume,
// aggregates to the requested period kind and converts discharge volume to a
// depth over the catchment area. It returns the records and the number of
// dropped days.
func Balance(series domain.CatchmentSeries, kind domain.PeriodKind, areaKm2 float64) ([]domain.BalanceRecord, int, error) {
	kept, dropped := domain.DropMissingDischarge(series.Records)
	if len(kept) == 0 {
		return nil, dropped, fmt.Errorf("catchment %s has no days with discharge: %w", series.ID, domain.ErrInsufficientData)
	}
	series.Records = kept

	var records []domain.BalanceRecord
	switch kind {
	case domain.PeriodAnnual:
		records = domain.AggregateAnnual(series)
	case domain.PeriodSeasonal:
		records = domain.AggregateSeasonal(series)
	default:
		return nil, dropped, fmt.Errorf("unknown period kind %q", kind)
	}

	if err := domain.ApplyArea(records, areaKm2); err != nil {
		return nil, dropped, err
	}
	return records, dropped, nil
}
