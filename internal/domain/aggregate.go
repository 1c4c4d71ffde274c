package domain

import "sort"

// DropMissingDischarge removes rows with no discharge volume. It returns the
// kept rows and the number dropped. The input slice is not modified.
func DropMissingDischarge(records []DailyRecord) ([]DailyRecord, int) {
	kept := make([]DailyRecord, 0, len(records))
	for _, r := range records {
		if isMissing(r.DischargeVol) {
			continue
		}
		kept = append(kept, r)
	}
	return kept, len(records) - len(kept)
}

// AggregateAnnual sums a catchment's daily records by water year.
// Discharge volume is converted from m³/s to m³/day before summing.
func AggregateAnnual(series CatchmentSeries) []BalanceRecord {
	return aggregate(series, func(r DailyRecord) Period {
		return Period{Kind: PeriodAnnual, Year: WaterYear(r.Date)}
	})
}

// AggregateSeasonal sums a catchment's daily records by season year and season.
// Discharge volume is converted from m³/s to m³/day before summing.
func AggregateSeasonal(series CatchmentSeries) []BalanceRecord {
	return aggregate(series, func(r DailyRecord) Period {
		return Period{Kind: PeriodSeasonal, Year: SeasonYear(r.Date), Season: SeasonOf(r.Date.Month())}
	})
}

func aggregate(series CatchmentSeries, periodOf func(DailyRecord) Period) []BalanceRecord {
	buckets := make(map[Period]*BalanceRecord)
	now := clock.Now()

	for _, r := range series.Records {
		p := periodOf(r)
		b, ok := buckets[p]
		if !ok {
			b = &BalanceRecord{CatchmentID: series.ID, Period: p, ProcessedAt: now}
			buckets[p] = b
		}
		b.Days++
		b.Precipitation += valueOrZero(r.Precipitation)
		b.PET += valueOrZero(r.PET)
		b.DischargeSpec += valueOrZero(r.DischargeSpec)
		b.DischargeVol += PerSecondToPerDay(valueOrZero(r.DischargeVol))
	}

	out := make([]BalanceRecord, 0, len(buckets))
	for _, b := range buckets {
		out = append(out, *b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Period.Before(out[j].Period) })
	return out
}

// valueOrZero treats a missing observation as contributing nothing to a sum.
func valueOrZero(v float64) float64 {
	if isMissing(v) {
		return 0
	}
	return v
}
