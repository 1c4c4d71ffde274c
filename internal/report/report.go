// Package report prints water-balance results as plain-text tables.
package report

import (
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/couchcryptid/water-balance-etl/internal/domain"
	"github.com/dustin/go-humanize"
)

const rule = "------------------------------------------------------------------------------------------"

// Extraction prints the outcome of unpacking the dataset archive.
func Extraction(w io.Writer, dir string, skipped bool, files int, bytes uint64) {
	if skipped {
		fmt.Fprintf(w, "%s already exists, skipping extraction\n", dir)
		return
	}
	fmt.Fprintf(w, "Extracted %s files (%s) to %s\n", humanize.Comma(int64(files)), humanize.Bytes(bytes), dir)
}

// Load prints how many daily rows were read and dropped for a catchment.
func Load(w io.Writer, id string, read, dropped int) {
	fmt.Fprintf(w, "Catchment %s: %s daily rows, %s dropped for missing discharge\n",
		id, humanize.Comma(int64(read)), humanize.Comma(int64(dropped)))
}

// BalanceTable prints one row per period.
func BalanceTable(w io.Writer, id string, records []domain.BalanceRecord) {
	fmt.Fprintf(w, "\nWater balance for catchment %s (mm)\n", id)
	fmt.Fprintln(w, rule)
	fmt.Fprintf(w, "%-10s %5s %10s %10s %10s %10s %10s %10s %10s\n",
		"Period", "Days", "P", "PET", "Q spec", "Q vol", "Q calc", "Diff", "E")
	fmt.Fprintln(w, rule)
	for _, r := range records {
		fmt.Fprintf(w, "%-10s %5d %10.2f %10.2f %10.2f %10s %10.2f %10.3f %10.2f\n",
			r.Period, r.Days, r.Precipitation, r.PET, r.DischargeSpec,
			humanize.SIWithDigits(r.DischargeVol, 1, "m³"), r.DischargeComputed, r.Diff, r.Evaporation)
	}
	fmt.Fprintln(w, rule)
	fmt.Fprintf(w, "%d periods\n", len(records))
}

// Consistency prints the first n differences between provided and computed
// discharge followed by their mean absolute value.
func Consistency(w io.Writer, records []domain.BalanceRecord, n int) {
	fmt.Fprintln(w, "\nDischarge consistency (discharge_spec - computed, mm)")
	for i, r := range records {
		if i == n {
			fmt.Fprintf(w, "  ... %d more\n", len(records)-n)
			break
		}
		fmt.Fprintf(w, "  %-10s %10.4f\n", r.Period, r.Diff)
	}
	fmt.Fprintf(w, "Mean |diff|: %.4f mm\n", domain.MeanAbsDiff(records))
}

// NegativeEvaporation lists periods where the residual evaporation is negative.
func NegativeEvaporation(w io.Writer, records []domain.BalanceRecord) {
	neg := domain.NegativeEvaporation(records)
	if len(neg) == 0 {
		fmt.Fprintln(w, "\nNo periods with negative evaporation")
		return
	}
	fmt.Fprintf(w, "\n%d periods with negative evaporation\n", len(neg))
	fmt.Fprintf(w, "%-10s %10s %10s %10s\n", "Period", "P", "Q calc", "E")
	for _, r := range neg {
		fmt.Fprintf(w, "%-10s %10.2f %10.2f %10.2f\n", r.Period, r.Precipitation, r.DischargeComputed, r.Evaporation)
	}
}

// Summaries prints runoff ratio and forest cover per catchment.
func Summaries(w io.Writer, summaries []domain.CatchmentSummary) {
	fmt.Fprintln(w, "\nRunoff ratio by catchment")
	fmt.Fprintln(w, rule)
	fmt.Fprintf(w, "%-10s %7s %12s %12s %8s %8s  %s\n", "Catchment", "Years", "P", "Q calc", "Ratio", "Forest%", "Group")
	fmt.Fprintln(w, rule)
	for _, s := range summaries {
		forest, group := "-", "-"
		if s.HasLandCover {
			forest = fmt.Sprintf("%.2f", s.ForestPerc)
			group = s.ForestGroup.Label()
		}
		fmt.Fprintf(w, "%-10s %7d %12s %12s %8.3f %8s  %s\n",
			s.CatchmentID, s.Periods, humanize.CommafWithDigits(s.Precipitation, 1),
			humanize.CommafWithDigits(s.DischargeComputed, 1), s.RunoffRatio, forest, group)
	}
	fmt.Fprintln(w, rule)
	fmt.Fprintf(w, "%d catchments\n", len(summaries))
}

// GroupCounts prints how many catchments fall in each forest group, with the
// group's mean runoff ratio.
func GroupCounts(w io.Writer, groups map[domain.ForestGroup][]float64) {
	fmt.Fprintln(w, "\nCatchments per forest group")
	for _, g := range domain.ForestGroups {
		ratios := groups[g]
		mean := "-"
		if len(ratios) > 0 {
			var sum float64
			for _, r := range ratios {
				sum += r
			}
			mean = fmt.Sprintf("%.3f", sum/float64(len(ratios)))
		}
		fmt.Fprintf(w, "  %-24s %5d  mean ratio %s\n", g.Label(), len(ratios), mean)
	}
}

// FitLine prints the regression of runoff ratio on forest percentage.
func FitLine(w io.Writer, fit domain.Fit) {
	sign := "+"
	slope := fit.Slope
	if math.Signbit(slope) {
		sign = "-"
		slope = -slope
	}
	fmt.Fprintf(w, "\nrunoff_ratio = %.4f %s %.5f * forest_perc  (r = %.3f, R² = %.3f, n = %d)\n",
		fit.Intercept, sign, slope, fit.Correlation, fit.RSquared, fit.N)
}

// Violations prints sanity-check violations under a heading.
func Violations(w io.Writer, heading string, vs []domain.Violation) {
	if len(vs) == 0 {
		return
	}
	fmt.Fprintf(w, "\n%s (%d)\n", heading, len(vs))
	var b strings.Builder
	for _, v := range vs {
		b.WriteString("  ")
		b.WriteString(v.String())
		b.WriteByte('\n')
	}
	fmt.Fprint(w, b.String())
}
