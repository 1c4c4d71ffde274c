package domain

import (
	"fmt"
	"math"
)

const (
	// SecondsPerDay converts a daily mean rate to a daily total.
	SecondsPerDay = 60 * 60 * 24

	squareMetresPerSquareKilometre = 1e6
	millimetresPerMetre            = 1000
)

// PerSecondToPerDay converts a daily mean flow in m³/s to a daily total in m³.
func PerSecondToPerDay(v float64) float64 {
	return v * SecondsPerDay
}

// SquareKilometresToSquareMetres converts an area in km² to m².
func SquareKilometresToSquareMetres(a float64) float64 {
	return a * squareMetresPerSquareKilometre
}

// VolumeToDepth spreads a volume (m³) over an area (m²) and returns the
// equivalent depth in mm.
func VolumeToDepth(volM3, areaM2 float64) (float64, error) {
	if !(areaM2 > 0) || math.IsInf(areaM2, 0) {
		return 0, fmt.Errorf("volume to depth (area %g m²): %w", areaM2, ErrInvalidArea)
	}
	return volM3 / areaM2 * millimetresPerMetre, nil
}
