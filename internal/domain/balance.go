package domain

import (
	"fmt"
	"math"
)

// ApplyArea converts each record's discharge volume to a depth using the
// catchment area (km²), then derives the difference from the supplied specific
// discharge and the evaporation residual E = P − Q. Records are updated in place.
func ApplyArea(records []BalanceRecord, areaKm2 float64) error {
	areaM2 := SquareKilometresToSquareMetres(areaKm2)
	for i := range records {
		depth, err := VolumeToDepth(records[i].DischargeVol, areaM2)
		if err != nil {
			return fmt.Errorf("apply area to %s: %w", records[i].Key(), err)
		}
		records[i].DischargeComputed = depth
		records[i].Diff = records[i].DischargeSpec - depth
		records[i].Evaporation = records[i].Precipitation - depth
	}
	return nil
}

// MeanAbsDiff returns the mean absolute difference between supplied and
// computed specific discharge. Returns 0 for no records.
func MeanAbsDiff(records []BalanceRecord) float64 {
	if len(records) == 0 {
		return 0
	}
	var sum float64
	for _, r := range records {
		sum += math.Abs(r.Diff)
	}
	return sum / float64(len(records))
}

// RunoffRatio returns ΣQ / ΣP over the records, using the area-derived
// discharge depth.
func RunoffRatio(records []BalanceRecord) (float64, error) {
	var p, q float64
	for _, r := range records {
		p += r.Precipitation
		q += r.DischargeComputed
	}
	if p == 0 {
		return 0, ErrNoPrecipitation
	}
	return q / p, nil
}

// NegativeEvaporation returns the records whose evaporation residual is below
// zero. At seasonal scale this signals that the storage term is not negligible.
func NegativeEvaporation(records []BalanceRecord) []BalanceRecord {
	var out []BalanceRecord
	for _, r := range records {
		if r.Evaporation < 0 {
			out = append(out, r)
		}
	}
	return out
}

// Summarize totals a catchment's balance records and computes its runoff ratio.
// Land-cover fields are left for [AttachLandCover].
func Summarize(id string, records []BalanceRecord) (CatchmentSummary, error) {
	s := CatchmentSummary{CatchmentID: id, Periods: len(records)}
	for _, r := range records {
		s.Precipitation += r.Precipitation
		s.DischargeComputed += r.DischargeComputed
	}
	ratio, err := RunoffRatio(records)
	if err != nil {
		return s, fmt.Errorf("summarize %s: %w", id, err)
	}
	s.RunoffRatio = ratio
	return s, nil
}
