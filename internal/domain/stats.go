package domain

import (
	"fmt"

	"gonum.org/v1/gonum/stat"
)

// Fit is an ordinary least-squares line y = Intercept + Slope·x.
type Fit struct {
	Intercept   float64 `json:"intercept"`
	Slope       float64 `json:"slope"`
	Correlation float64 `json:"correlation"`
	RSquared    float64 `json:"r_squared"`
	N           int     `json:"n"`
}

// FitRunoffForest regresses runoff ratio on forest percentage across the
// summaries that carry land cover.
func FitRunoffForest(summaries []CatchmentSummary) (Fit, error) {
	var xs, ys []float64
	for _, s := range summaries {
		if !s.HasLandCover {
			continue
		}
		xs = append(xs, s.ForestPerc)
		ys = append(ys, s.RunoffRatio)
	}
	return fitLinear(xs, ys)
}

func fitLinear(xs, ys []float64) (Fit, error) {
	if len(xs) < 2 {
		return Fit{}, fmt.Errorf("fit needs at least 2 points, got %d: %w", len(xs), ErrInsufficientData)
	}
	if stat.Variance(xs, nil) == 0 {
		return Fit{}, fmt.Errorf("fit needs variation in x: %w", ErrInsufficientData)
	}

	alpha, beta := stat.LinearRegression(xs, ys, nil, false)
	return Fit{
		Intercept:   alpha,
		Slope:       beta,
		Correlation: stat.Correlation(xs, ys, nil),
		RSquared:    stat.RSquared(xs, ys, nil, alpha, beta),
		N:           len(xs),
	}, nil
}
