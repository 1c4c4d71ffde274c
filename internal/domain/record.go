package domain

import (
	"errors"
	"fmt"
	"math"
	"time"
)

var (
	// ErrInvalidArea is returned when a catchment area is zero, negative or NaN.
	ErrInvalidArea = errors.New("catchment area must be positive")

	// ErrCatchmentNotFound is returned when a gauge id has no attribute row.
	ErrCatchmentNotFound = errors.New("catchment not found")

	// ErrNoPrecipitation is returned when a runoff ratio would divide by zero.
	ErrNoPrecipitation = errors.New("total precipitation is zero")

	// ErrInsufficientData is returned when a statistical fit has too few points.
	ErrInsufficientData = errors.New("insufficient data")
)

// DailyRecord is one row of a CAMELS-GB hydromet time series.
// Missing values are NaN.
type DailyRecord struct {
	Date          time.Time
	Precipitation float64 // mm/day
	PET           float64 // mm/day
	DischargeSpec float64 // mm/day
	DischargeVol  float64 // m³/s
}

// CatchmentSeries is the daily record for a single gauge.
type CatchmentSeries struct {
	ID      string
	Records []DailyRecord
}

// Topography holds the static topographic attributes used for unit conversion.
type Topography struct {
	ID      string
	Name    string
	Lat     float64
	Lon     float64
	AreaKm2 float64
}

// LandCover holds land-cover fractions (percent of catchment area).
type LandCover struct {
	ID                string
	DeciduousWoodland float64
	EvergreenWoodland float64
	Grassland         float64
	Shrub             float64
	Crop              float64
	Urban             float64
	InlandWater       float64
	BareSoil          float64
	Dominant          string
}

// PeriodKind distinguishes annual from seasonal aggregation.
type PeriodKind string

const (
	PeriodAnnual   PeriodKind = "annual"
	PeriodSeasonal PeriodKind = "seasonal"
)

// Period identifies an aggregation bucket. Year is the year the period ends in.
// Season is empty for annual periods.
type Period struct {
	Kind   PeriodKind `json:"kind"`
	Year   int        `json:"year"`
	Season Season     `json:"season,omitempty"`
}

func (p Period) String() string {
	if p.Kind == PeriodSeasonal {
		return fmt.Sprintf("%d-%s", p.Year, p.Season)
	}
	return fmt.Sprintf("WY%d", p.Year)
}

// Before orders periods by year, then season.
func (p Period) Before(o Period) bool {
	if p.Year != o.Year {
		return p.Year < o.Year
	}
	return p.Season.order() < o.Season.order()
}

// BalanceRecord is an aggregated water-balance row for one catchment and period.
// All depths are in mm; DischargeVol is the summed daily volume in m³.
type BalanceRecord struct {
	CatchmentID       string    `json:"catchment_id"`
	Period            Period    `json:"period"`
	Days              int       `json:"days"`
	Precipitation     float64   `json:"precipitation"`
	PET               float64   `json:"pet"`
	DischargeSpec     float64   `json:"discharge_spec"`
	DischargeVol      float64   `json:"discharge_vol"`
	DischargeComputed float64   `json:"discharge_spec_computed"`
	Diff              float64   `json:"diff"`
	Evaporation       float64   `json:"evaporation"`
	RunID             string    `json:"run_id,omitempty"`
	ProcessedAt       time.Time `json:"processed_at"`
}

// Key returns a stable identifier for the record, e.g. "97002/WY1976".
func (r BalanceRecord) Key() string {
	return r.CatchmentID + "/" + r.Period.String()
}

// CatchmentSummary aggregates a catchment's full record.
type CatchmentSummary struct {
	CatchmentID       string      `json:"catchment_id"`
	Periods           int         `json:"periods"`
	Precipitation     float64     `json:"precipitation"`
	DischargeComputed float64     `json:"discharge_spec_computed"`
	RunoffRatio       float64     `json:"runoff_ratio"`
	ForestPerc        float64     `json:"forest_perc"`
	ForestGroup       ForestGroup `json:"forest_group,omitempty"`
	HasLandCover      bool        `json:"has_land_cover"`
}

// isMissing reports whether v is a missing observation.
func isMissing(v float64) bool {
	return math.IsNaN(v)
}
