// Package camels reads the CAMELS-GB dataset from disk: the zip archive as
// downloaded from the EIDC catalogue, the per-gauge hydromet time series, and
// the static catchment attribute tables.
package camels

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/couchcryptid/water-balance-etl/internal/domain"
)

const (
	timeseriesDir    = "timeseries"
	timeseriesPrefix = "CAMELS_GB_hydromet_timeseries_"
	topographicFile  = "CAMELS_GB_topographic_attributes.csv"
	landcoverFile    = "CAMELS_GB_landcover_attributes.csv"
	dateLayout       = "2006-01-02"
)

// TimeseriesFilename returns the file name CAMELS-GB uses for a gauge's
// 1970-10-01 to 2015-09-30 record.
func TimeseriesFilename(id string) string {
	return timeseriesPrefix + id + "_19701001-20150930.csv"
}

// Dataset is an extracted CAMELS-GB data directory, i.e. the "data" folder
// holding timeseries/ and the attribute CSVs.
type Dataset struct {
	Dir string
}

// NewDataset returns a Dataset rooted at dir.
func NewDataset(dir string) *Dataset {
	return &Dataset{Dir: dir}
}

// ListCatchments returns the gauge ids that have a time series file, sorted.
func (d *Dataset) ListCatchments() ([]string, error) {
	matches, err := filepath.Glob(filepath.Join(d.Dir, timeseriesDir, timeseriesPrefix+"*.csv"))
	if err != nil {
		return nil, fmt.Errorf("list catchments: %w", err)
	}
	ids := make([]string, 0, len(matches))
	for _, m := range matches {
		rest := strings.TrimPrefix(filepath.Base(m), timeseriesPrefix)
		id, _, ok := strings.Cut(rest, "_")
		if !ok || id == "" {
			continue
		}
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

// timeseriesPath finds the time series file for a gauge, whatever its date range.
func (d *Dataset) timeseriesPath(id string) (string, error) {
	exact := filepath.Join(d.Dir, timeseriesDir, TimeseriesFilename(id))
	if _, err := os.Stat(exact); err == nil {
		return exact, nil
	}
	matches, err := filepath.Glob(filepath.Join(d.Dir, timeseriesDir, timeseriesPrefix+id+"_*.csv"))
	if err != nil {
		return "", fmt.Errorf("find timeseries for %s: %w", id, err)
	}
	if len(matches) == 0 {
		return "", fmt.Errorf("timeseries for %s: %w", id, domain.ErrCatchmentNotFound)
	}
	return matches[0], nil
}

// ReadTimeseries loads a gauge's daily hydromet record.
func (d *Dataset) ReadTimeseries(id string) (domain.CatchmentSeries, error) {
	path, err := d.timeseriesPath(id)
	if err != nil {
		return domain.CatchmentSeries{}, err
	}

	series := domain.CatchmentSeries{ID: id}
	err = readTable(path, []string{"date", "precipitation", "pet", "discharge_spec", "discharge_vol"}, func(row rowFunc) error {
		date, err := time.Parse(dateLayout, row("date"))
		if err != nil {
			return fmt.Errorf("parse date %q: %w", row("date"), err)
		}
		series.Records = append(series.Records, domain.DailyRecord{
			Date:          date,
			Precipitation: parseFloatOrNaN(row("precipitation")),
			PET:           parseFloatOrNaN(row("pet")),
			DischargeSpec: parseFloatOrNaN(row("discharge_spec")),
			DischargeVol:  parseFloatOrNaN(row("discharge_vol")),
		})
		return nil
	})
	if err != nil {
		return domain.CatchmentSeries{}, fmt.Errorf("read timeseries %s: %w", id, err)
	}
	return series, nil
}

// ReadTopography loads the topographic attributes keyed by gauge id.
func (d *Dataset) ReadTopography() (map[string]domain.Topography, error) {
	out := make(map[string]domain.Topography)
	err := readTable(filepath.Join(d.Dir, topographicFile), []string{"gauge_id", "area"}, func(row rowFunc) error {
		t := domain.Topography{
			ID:      strings.TrimSpace(row("gauge_id")),
			Name:    row("gauge_name"),
			Lat:     parseFloatOrNaN(row("gauge_lat")),
			Lon:     parseFloatOrNaN(row("gauge_lon")),
			AreaKm2: parseFloatOrNaN(row("area")),
		}
		out[t.ID] = t
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("read topographic attributes: %w", err)
	}
	return out, nil
}

// ReadLandCover loads the land-cover attributes keyed by gauge id.
func (d *Dataset) ReadLandCover() (map[string]domain.LandCover, error) {
	out := make(map[string]domain.LandCover)
	err := readTable(filepath.Join(d.Dir, landcoverFile), []string{"gauge_id", "dwood_perc", "ewood_perc"}, func(row rowFunc) error {
		lc := domain.LandCover{
			ID:                strings.TrimSpace(row("gauge_id")),
			DeciduousWoodland: parseFloatOrNaN(row("dwood_perc")),
			EvergreenWoodland: parseFloatOrNaN(row("ewood_perc")),
			Grassland:         parseFloatOrNaN(row("grass_perc")),
			Shrub:             parseFloatOrNaN(row("shrub_perc")),
			Crop:              parseFloatOrNaN(row("crop_perc")),
			Urban:             parseFloatOrNaN(row("urban_perc")),
			InlandWater:       parseFloatOrNaN(row("inwater_perc")),
			BareSoil:          parseFloatOrNaN(row("bares_perc")),
			Dominant:          row("dom_land_cover"),
		}
		out[lc.ID] = lc
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("read landcover attributes: %w", err)
	}
	return out, nil
}

// Area returns a catchment's drainage area in km².
func Area(topo map[string]domain.Topography, id string) (float64, error) {
	t, ok := topo[id]
	if !ok {
		return 0, fmt.Errorf("topographic attributes for %s: %w", id, domain.ErrCatchmentNotFound)
	}
	return t.AreaKm2, nil
}

// rowFunc returns the named column of the current row, or "" if absent.
type rowFunc func(col string) string

// readTable streams a headed CSV file, calling fn per data row. Every name in
// required must appear in the header.
func readTable(path string, required []string, fn func(row rowFunc) error) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.ReuseRecord = true

	header, err := r.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return fmt.Errorf("%s: empty file", filepath.Base(path))
		}
		return fmt.Errorf("read header: %w", err)
	}
	index := make(map[string]int, len(header))
	for i, h := range header {
		index[strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))] = i
	}
	for _, col := range required {
		if _, ok := index[col]; !ok {
			return fmt.Errorf("%s: missing column %q", filepath.Base(path), col)
		}
	}

	for line := 2; ; line++ {
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("line %d: %w", line, err)
		}
		row := func(col string) string {
			i, ok := index[col]
			if !ok || i >= len(rec) {
				return ""
			}
			return rec[i]
		}
		if err := fn(row); err != nil {
			return fmt.Errorf("line %d: %w", line, err)
		}
	}
}

// parseFloatOrNaN parses a numeric field, returning NaN for empty or
// unparseable values.
func parseFloatOrNaN(s string) float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return math.NaN()
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return math.NaN()
	}
	return v
}
