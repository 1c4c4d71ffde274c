// Package plot renders water-balance charts to image files.
package plot

import (
	"errors"
	"fmt"
	"image/color"
	"os"
	"path/filepath"

	"github.com/couchcryptid/water-balance-etl/internal/domain"
	gonumplot "gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

var (
	precipitationColor = color.RGBA{R: 31, G: 119, B: 180, A: 255}
	dischargeColor     = color.RGBA{R: 44, G: 160, B: 44, A: 255}
	evaporationColor   = color.RGBA{R: 255, G: 127, B: 14, A: 255}
)

// ErrNothingToPlot is returned when there is no data for a chart.
var ErrNothingToPlot = errors.New("nothing to plot")

// WaterBalance draws precipitation, discharge and evaporation per period for
// one catchment and saves it to path. The image format follows the file
// extension (.png, .svg, .pdf).
func WaterBalance(path, catchmentID string, records []domain.BalanceRecord) error {
	if len(records) == 0 {
		return fmt.Errorf("water balance for %s: %w", catchmentID, ErrNothingToPlot)
	}

	p := gonumplot.New()
	p.Title.Text = "Water balance for catchment " + catchmentID
	p.X.Label.Text = "Water year end"
	if records[0].Period.Kind == domain.PeriodSeasonal {
		p.X.Label.Text = "Season year"
	}
	p.Y.Label.Text = "Depth (mm)"
	p.Add(plotter.NewGrid())

	series := []struct {
		name  string
		color color.Color
		value func(domain.BalanceRecord) float64
	}{
		{"Precipitation", precipitationColor, func(r domain.BalanceRecord) float64 { return r.Precipitation }},
		{"Discharge", dischargeColor, func(r domain.BalanceRecord) float64 { return r.DischargeSpec }},
		{"Evaporation", evaporationColor, func(r domain.BalanceRecord) float64 { return r.Evaporation }},
	}
	for _, s := range series {
		pts := make(plotter.XYs, len(records))
		for i, r := range records {
			pts[i].X = periodX(r.Period)
			pts[i].Y = s.value(r)
		}
		line, err := plotter.NewLine(pts)
		if err != nil {
			return fmt.Errorf("%s line: %w", s.name, err)
		}
		line.Color = s.color
		line.Width = vg.Points(1.5)
		p.Add(line)
		p.Legend.Add(s.name, line)
	}
	p.Legend.Top = true

	return save(p, path, 10*vg.Inch, 5*vg.Inch)
}

// RunoffRatioByForest draws a box plot of runoff ratio per forest group and
// saves it to path. Empty groups are left out.
func RunoffRatioByForest(path string, groups map[domain.ForestGroup][]float64) error {
	p := gonumplot.New()
	p.Title.Text = "Runoff ratio by forest cover"
	p.Y.Label.Text = "Runoff ratio"
	p.Add(plotter.NewGrid())

	var names []string
	width := vg.Points(30)
	for _, g := range domain.ForestGroups {
		ratios := groups[g]
		if len(ratios) == 0 {
			continue
		}
		box, err := plotter.NewBoxPlot(width, float64(len(names)), plotter.Values(ratios))
		if err != nil {
			return fmt.Errorf("%s box: %w", g, err)
		}
		p.Add(box)
		names = append(names, g.Label())
	}
	if len(names) == 0 {
		return fmt.Errorf("runoff ratio by forest: %w", ErrNothingToPlot)
	}
	p.NominalX(names...)

	return save(p, path, 8*vg.Inch, 5*vg.Inch)
}

// periodX places a period on a continuous axis. Seasons sit at quarter
// steps ending on the season year.
func periodX(p domain.Period) float64 {
	if p.Kind != domain.PeriodSeasonal {
		return float64(p.Year)
	}
	for i, s := range domain.Seasons {
		if s == p.Season {
			return float64(p.Year) - 1 + float64(i+1)*0.25
		}
	}
	return float64(p.Year)
}

func save(p *gonumplot.Plot, path string, w, h vg.Length) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create plot directory: %w", err)
	}
	if err := p.Save(w, h, path); err != nil {
		return fmt.Errorf("save plot %s: %w", path, err)
	}
	return nil
}
