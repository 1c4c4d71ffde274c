// Command validate performs data integrity checks on an extracted CAMELS-GB
// dataset: it verifies the dataset layout, that the discharge depth computed
// from volume and area agrees with the supplied specific discharge, that
// annual totals are non-negative, that runoff ratios are physically plausible,
// and that annual and seasonal aggregation account for the same water.
//
// Usage:
//
//	go run ./cmd/validate \
//	  -data-dir data/8344e4f3-d2ea-44f5-8afa-86d2987543a9/data \
//	  -catchment 97002 \
//	  -tolerance 1.0
package main

import (
	"flag"
	"fmt"
	"math"
	"os"
	"time"

	"github.com/couchcryptid/water-balance-etl/internal/adapter/camels"
	"github.com/couchcryptid/water-balance-etl/internal/domain"
	"github.com/couchcryptid/water-balance-etl/internal/pipeline"
	"github.com/jonboulle/clockwork"
)

// phase tracks pass/fail for a validation phase.
type phase struct {
	name   string
	errors []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

// thresholds are the limits the checks compare against.
type thresholds struct {
	toleranceMM float64
	ratioMin    float64
	ratioMax    float64
}

// catchmentData is everything computed for one catchment.
type catchmentData struct {
	id       string
	annual   []domain.BalanceRecord
	seasonal []domain.BalanceRecord
	err      error
}

func main() {
	dataDir := flag.String("data-dir", "", "extracted dataset directory holding timeseries/ and the attribute CSVs")
	catchment := flag.String("catchment", "", "gauge id to check (default: every catchment)")
	tolerance := flag.Float64("tolerance", 1.0, "allowed |discharge_spec - computed| per water year, mm")
	ratioMin := flag.Float64("ratio-min", 0, "lowest plausible runoff ratio")
	ratioMax := flag.Float64("ratio-max", 1.5, "highest plausible runoff ratio")
	flag.Parse()

	if *dataDir == "" {
		flag.Usage()
		os.Exit(1)
	}

	th := thresholds{toleranceMM: *tolerance, ratioMin: *ratioMin, ratioMax: *ratioMax}
	if code := run(*dataDir, *catchment, th); code != 0 {
		os.Exit(code)
	}
}

func run(dataDir, catchment string, th thresholds) int {
	// Fixed clock so ProcessedAt never makes two runs differ.
	domain.SetClock(clockwork.NewFakeClockAt(time.Date(2015, time.October, 1, 0, 0, 0, 0, time.UTC)))
	defer domain.SetClock(nil)

	fmt.Println("=== Water Balance Integrity Validation ===")
	fmt.Println()

	ds := camels.NewDataset(dataDir)
	layout, ids, topo := validateLayout(ds, catchment)
	if len(ids) == 0 {
		fmt.Fprintf(os.Stderr, "FATAL: no catchments to validate in %s\n", dataDir)
		for _, e := range layout.errors {
			fmt.Fprintf(os.Stderr, "  %s\n", e)
		}
		return 1
	}

	data := loadAll(ds, ids, topo)

	phases := []*phase{
		layout,
		validateConsistency(data, th.toleranceMM),
		validateNonNegative(data),
		validateRunoffRatio(data, th.ratioMin, th.ratioMax),
		validateClosure(data),
	}

	fmt.Println()
	allPassed := true
	for _, p := range phases {
		status := "\033[32mPASS\033[0m"
		if !p.passed() {
			status = fmt.Sprintf("\033[31mFAIL (%d errors)\033[0m", len(p.errors))
			allPassed = false
		}
		fmt.Printf("  %-42s %s\n", p.name, status)
	}

	fmt.Println()
	fmt.Printf("Catchments: %d checked, %d failed to load\n", len(data), countLoadErrors(data))

	for _, p := range phases {
		if p.passed() {
			continue
		}
		fmt.Printf("\n--- %s ---\n", p.name)
		for i, e := range p.errors {
			fmt.Printf("  [%d] %s\n", i+1, e)
		}
	}

	if allPassed {
		fmt.Println("\nAll validations passed.")
		return 0
	}
	fmt.Println("\nValidation FAILED.")
	return 1
}

// ── Phase 1: Dataset Layout ──
// Every catchment to check has a time series and a usable area.

func validateLayout(ds *camels.Dataset, catchment string) (*phase, []string, map[string]domain.Topography) {
	p := &phase{name: "Phase 1: Dataset Layout"}

	ids, err := ds.ListCatchments()
	if err != nil {
		p.errorf("list catchments: %v", err)
		return p, nil, nil
	}
	if catchment != "" {
		found := false
		for _, id := range ids {
			if id == catchment {
				found = true
				break
			}
		}
		if !found {
			p.errorf("catchment %s: no timeseries file", catchment)
			return p, nil, nil
		}
		ids = []string{catchment}
	}

	topo, err := ds.ReadTopography()
	if err != nil {
		p.errorf("topographic attributes: %v", err)
		return p, nil, nil
	}
	if _, err := ds.ReadLandCover(); err != nil {
		p.errorf("landcover attributes: %v", err)
	}

	usable := make([]string, 0, len(ids))
	for _, id := range ids {
		t, ok := topo[id]
		switch {
		case !ok:
			p.errorf("catchment %s: no topographic attributes", id)
		case math.IsNaN(t.AreaKm2) || t.AreaKm2 <= 0:
			p.errorf("catchment %s: area %g km² is not positive", id, t.AreaKm2)
		default:
			usable = append(usable, id)
		}
	}
	return p, usable, topo
}

func loadAll(ds *camels.Dataset, ids []string, topo map[string]domain.Topography) []catchmentData {
	out := make([]catchmentData, 0, len(ids))
	for _, id := range ids {
		cd := catchmentData{id: id}
		series, err := ds.ReadTimeseries(id)
		if err != nil {
			cd.err = err
			out = append(out, cd)
			continue
		}
		area := topo[id].AreaKm2
		if cd.annual, _, err = pipeline.Balance(series, domain.PeriodAnnual, area); err != nil {
			cd.err = err
		} else if cd.seasonal, _, err = pipeline.Balance(series, domain.PeriodSeasonal, area); err != nil {
			cd.err = err
		}
		out = append(out, cd)
	}
	return out
}

func countLoadErrors(data []catchmentData) int {
	n := 0
	for _, cd := range data {
		if cd.err != nil {
			n++
		}
	}
	return n
}

// ── Phase 2: Discharge Consistency ──
// Depth computed from volume and area must match discharge_spec.

func validateConsistency(data []catchmentData, tol float64) *phase {
	p := &phase{name: "Phase 2: Discharge Consistency"}
	for _, cd := range data {
		if cd.err != nil {
			p.errorf("catchment %s: %v", cd.id, cd.err)
			continue
		}
		for _, v := range domain.CheckConsistency(cd.annual, tol) {
			p.errorf("%s", v)
		}
	}
	return p
}

// ── Phase 3: Non-negative Totals ──

func validateNonNegative(data []catchmentData) *phase {
	p := &phase{name: "Phase 3: Non-negative Totals"}
	for _, cd := range data {
		if cd.err != nil {
			continue
		}
		for _, v := range domain.CheckNonNegative(cd.annual) {
			p.errorf("%s", v)
		}
	}
	return p
}

// ── Phase 4: Runoff Ratio Plausibility ──

func validateRunoffRatio(data []catchmentData, lo, hi float64) *phase {
	p := &phase{name: "Phase 4: Runoff Ratio Plausibility"}
	for _, cd := range data {
		if cd.err != nil {
			continue
		}
		ratio, err := domain.RunoffRatio(cd.annual)
		if err != nil {
			p.errorf("catchment %s: %v", cd.id, err)
			continue
		}
		if err := domain.CheckRunoffRatio(ratio, lo, hi); err != nil {
			p.errorf("catchment %s: %v", cd.id, err)
		}
	}
	return p
}

// ── Phase 5: Aggregation Closure ──
// Annual and seasonal buckets partition the same days, so their totals agree.

func validateClosure(data []catchmentData) *phase {
	p := &phase{name: "Phase 5: Aggregation Closure"}
	for _, cd := range data {
		if cd.err != nil {
			continue
		}
		a, s := totals(cd.annual), totals(cd.seasonal)
		if a.days != s.days {
			p.errorf("catchment %s: %d days by water year, %d by season", cd.id, a.days, s.days)
		}
		if !floatEq(a.precip, s.precip) {
			p.errorf("catchment %s: precipitation %.3f mm by water year, %.3f by season", cd.id, a.precip, s.precip)
		}
		if !floatEq(a.discharge, s.discharge) {
			p.errorf("catchment %s: discharge %.3f mm by water year, %.3f by season", cd.id, a.discharge, s.discharge)
		}
	}
	return p
}

type total struct {
	days      int
	precip    float64
	discharge float64
}

func totals(records []domain.BalanceRecord) total {
	var t total
	for _, r := range records {
		t.days += r.Days
		t.precip += r.Precipitation
		t.discharge += r.DischargeComputed
	}
	return t
}

// ── Helpers ──

func floatEq(a, b float64) bool {
	return math.Abs(a-b) <= 1e-6*math.Max(1, math.Max(math.Abs(a), math.Abs(b)))
}
