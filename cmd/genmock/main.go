// Command genmock generates a synthetic CAMELS-GB dataset archive for local
// runs and tests. Catchments get a seasonal rainfall and PET climate, a linear
// reservoir discharge response whose runoff coefficient falls with forest
// cover, and a few runs of missing discharge. Output is deterministic for a
// given seed.
//
// Usage:
//
//	go run ./cmd/genmock \
//	  -out-dir data \
//	  -catchments 12 \
//	  -seed 42
package main

import (
	"flag"
	"fmt"
	"log"
	"math"
	"math/rand/v2"
	"os"
	"path/filepath"
	"time"

	"github.com/couchcryptid/water-balance-etl/internal/adapter/camels"
	"github.com/couchcryptid/water-balance-etl/internal/domain"
	"github.com/couchcryptid/water-balance-etl/internal/pipeline"
)

var (
	recordStart = time.Date(1970, time.October, 1, 0, 0, 0, 0, time.UTC)
	recordEnd   = time.Date(2015, time.September, 30, 0, 0, 0, 0, time.UTC)
)

// catchmentDef holds the static parameters of one synthetic catchment.
type catchmentDef struct {
	topo   domain.Topography
	cover  domain.LandCover
	coeff  float64 // fraction of rainfall that becomes runoff
	recess float64 // daily reservoir outflow fraction
}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	outDir := flag.String("out-dir", "data", "data root the archive is written to")
	datasetID := flag.String("dataset-id", "8344e4f3-d2ea-44f5-8afa-86d2987543a9", "dataset id, used as archive name and top-level folder")
	n := flag.Int("catchments", 8, "number of catchments to generate")
	seed := flag.Uint64("seed", 42, "random seed")
	flag.Parse()

	if *n < 1 {
		flag.Usage()
		return fmt.Errorf("-catchments must be at least 1")
	}

	rng := rand.New(rand.NewPCG(*seed, *seed^0x9e3779b97f4a7c15))

	staging, err := os.MkdirTemp("", "genmock-")
	if err != nil {
		return fmt.Errorf("create staging dir: %w", err)
	}
	defer os.RemoveAll(staging)

	dataDir := filepath.Join(staging, *datasetID, "data")
	defs := make([]catchmentDef, 0, *n)
	for i := range *n {
		defs = append(defs, newCatchment(rng, i, *n))
	}

	topo := make([]domain.Topography, 0, len(defs))
	covers := make([]domain.LandCover, 0, len(defs))
	for _, d := range defs {
		series := simulate(rng, d)
		if err := camels.WriteTimeseries(dataDir, series); err != nil {
			return fmt.Errorf("writing %s: %w", d.topo.ID, err)
		}
		logSeries(d, series)
		topo = append(topo, d.topo)
		covers = append(covers, d.cover)
	}

	if err := camels.WriteTopography(dataDir, topo); err != nil {
		return fmt.Errorf("writing topographic attributes: %w", err)
	}
	if err := camels.WriteLandCover(dataDir, covers); err != nil {
		return fmt.Errorf("writing landcover attributes: %w", err)
	}

	if err := os.MkdirAll(*outDir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	zipPath := filepath.Join(*outDir, *datasetID+".zip")
	if err := camels.Archive(zipPath, filepath.Join(staging, *datasetID), staging); err != nil {
		return err
	}
	log.Printf("wrote archive: %s (%d catchments)", zipPath, len(defs))
	return nil
}

// newCatchment spreads forest cover evenly from 2% to 50% so every forest
// group is populated.
func newCatchment(rng *rand.Rand, i, n int) catchmentDef {
	id := fmt.Sprintf("%d", 10001+i*3011)

	forest := 2.0
	if n > 1 {
		forest += 48 * float64(i) / float64(n-1)
	}
	evergreen := forest * (0.2 + 0.6*rng.Float64())
	rest := 100 - forest
	cover := domain.LandCover{
		ID:                id,
		DeciduousWoodland: round(forest-evergreen, 2),
		EvergreenWoodland: round(evergreen, 2),
		Grassland:         round(rest*0.55, 2),
		Crop:              round(rest*0.3, 2),
		Urban:             round(rest*0.08, 2),
		Shrub:             round(rest*0.05, 2),
		InlandWater:       round(rest*0.01, 2),
		BareSoil:          round(rest*0.01, 2),
		Dominant:          "grass",
	}
	if forest > rest*0.55 {
		cover.Dominant = "forest"
	}

	return catchmentDef{
		topo: domain.Topography{
			ID:      id,
			Name:    fmt.Sprintf("Synthetic Water at Gauge %d", i+1),
			Lat:     round(50.5+rng.Float64()*7.5, 4),
			Lon:     round(-5+rng.Float64()*6.5, 4),
			AreaKm2: round(10+rng.Float64()*990, 1),
		},
		cover:  cover,
		coeff:  0.75 - 0.008*forest + 0.05*rng.NormFloat64(),
		recess: 0.05 + 0.1*rng.Float64(),
	}
}

// simulate produces a daily record over the full CAMELS-GB period.
func simulate(rng *rand.Rand, d catchmentDef) domain.CatchmentSeries {
	days := int(recordEnd.Sub(recordStart).Hours()/24) + 1
	records := make([]domain.DailyRecord, 0, days)

	wetness := 2 + 2*rng.Float64() // mean mm/day
	storage := 50.0
	gapLeft := 0

	for day := recordStart; !day.After(recordEnd); day = day.AddDate(0, 0, 1) {
		doy := float64(day.YearDay())

		// Wetter winters, evaporative demand peaking in July.
		precip := 0.0
		if rng.Float64() < 0.55 {
			mean := wetness * (1 + 0.35*math.Cos(2*math.Pi*(doy-15)/365.25)) / 0.55
			precip = rng.ExpFloat64() * mean
		}
		pet := math.Max(0, 1.6-1.5*math.Cos(2*math.Pi*(doy-15)/365.25)+0.2*rng.NormFloat64())

		storage += precip * d.coeff
		q := storage * d.recess
		storage -= q

		rec := domain.DailyRecord{
			Date:          day,
			Precipitation: round(precip, 2),
			PET:           round(pet, 2),
			DischargeSpec: round(q, 3),
			DischargeVol:  round(depthToVolume(q, d.topo.AreaKm2), 3),
		}

		if gapLeft == 0 && rng.Float64() < 0.0005 {
			gapLeft = 1 + rng.IntN(30)
		}
		if gapLeft > 0 {
			rec.DischargeSpec = math.NaN()
			rec.DischargeVol = math.NaN()
			gapLeft--
		}
		records = append(records, rec)
	}
	return domain.CatchmentSeries{ID: d.topo.ID, Records: records}
}

// depthToVolume converts mm/day over areaKm2 to m³/s.
func depthToVolume(mm, areaKm2 float64) float64 {
	return mm / 1000 * domain.SquareKilometresToSquareMetres(areaKm2) / domain.SecondsPerDay
}

func logSeries(d catchmentDef, series domain.CatchmentSeries) {
	records, dropped, err := pipeline.Balance(series, domain.PeriodAnnual, d.topo.AreaKm2)
	if err != nil {
		log.Printf("%s: %v", d.topo.ID, err)
		return
	}
	ratio, err := domain.RunoffRatio(records)
	if err != nil {
		log.Printf("%s: %v", d.topo.ID, err)
		return
	}
	forest := domain.ForestPerc(d.cover)
	log.Printf("%s: %d days (%d without discharge), area %.1f km², forest %.1f%% (%s), runoff ratio %.3f",
		d.topo.ID, len(series.Records), dropped, d.topo.AreaKm2, forest, domain.ForestGroupOf(forest), ratio)
}

func round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}
