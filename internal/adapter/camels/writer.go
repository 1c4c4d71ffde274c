package camels

import (
	"archive/zip"
	"encoding/csv"
	"fmt"
	"io"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"strconv"

	"github.com/couchcryptid/water-balance-etl/internal/domain"
)

// WriteTimeseries writes a gauge's record in CAMELS-GB layout below dir
// (dir/timeseries/<file>). Used by cmd/genmock and tests.
func WriteTimeseries(dir string, series domain.CatchmentSeries) error {
	header := []string{"date", "precipitation", "pet", "temperature", "discharge_spec", "discharge_vol"}
	rows := make([][]string, 0, len(series.Records))
	for _, r := range series.Records {
		rows = append(rows, []string{
			r.Date.Format(dateLayout),
			formatFloat(r.Precipitation),
			formatFloat(r.PET),
			"NaN",
			formatFloat(r.DischargeSpec),
			formatFloat(r.DischargeVol),
		})
	}
	path := filepath.Join(dir, timeseriesDir, TimeseriesFilename(series.ID))
	return writeTable(path, header, rows)
}

// WriteTopography writes CAMELS_GB_topographic_attributes.csv below dir.
func WriteTopography(dir string, topo []domain.Topography) error {
	header := []string{"gauge_id", "gauge_name", "gauge_lat", "gauge_lon", "area"}
	rows := make([][]string, 0, len(topo))
	for _, t := range topo {
		rows = append(rows, []string{t.ID, t.Name, formatFloat(t.Lat), formatFloat(t.Lon), formatFloat(t.AreaKm2)})
	}
	return writeTable(filepath.Join(dir, topographicFile), header, rows)
}

// WriteLandCover writes CAMELS_GB_landcover_attributes.csv below dir.
func WriteLandCover(dir string, covers []domain.LandCover) error {
	header := []string{"gauge_id", "dwood_perc", "ewood_perc", "grass_perc", "shrub_perc", "crop_perc", "urban_perc", "inwater_perc", "bares_perc", "dom_land_cover"}
	rows := make([][]string, 0, len(covers))
	for _, lc := range covers {
		rows = append(rows, []string{
			lc.ID,
			formatFloat(lc.DeciduousWoodland),
			formatFloat(lc.EvergreenWoodland),
			formatFloat(lc.Grassland),
			formatFloat(lc.Shrub),
			formatFloat(lc.Crop),
			formatFloat(lc.Urban),
			formatFloat(lc.InlandWater),
			formatFloat(lc.BareSoil),
			lc.Dominant,
		})
	}
	return writeTable(filepath.Join(dir, landcoverFile), header, rows)
}

// Archive zips srcDir into zipPath with entry names relative to base.
// Pass base = filepath.Dir(srcDir) to keep srcDir's own name as the top level.
func Archive(zipPath, srcDir, base string) error {
	out, err := os.Create(zipPath)
	if err != nil {
		return fmt.Errorf("create archive: %w", err)
	}
	zw := zip.NewWriter(out)

	walkErr := filepath.WalkDir(srcDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(base, path)
		if err != nil {
			return err
		}
		if rel == "." {
			return nil
		}
		name := filepath.ToSlash(rel)
		if d.IsDir() {
			_, err := zw.Create(name + "/")
			return err
		}
		w, err := zw.Create(name)
		if err != nil {
			return err
		}
		f, err := os.Open(path)
		if err != nil {
			return err
		}
		defer f.Close()
		_, err = io.Copy(w, f)
		return err
	})
	if walkErr != nil {
		zw.Close()
		out.Close()
		return fmt.Errorf("write archive: %w", walkErr)
	}
	if err := zw.Close(); err != nil {
		out.Close()
		return fmt.Errorf("finalize archive: %w", err)
	}
	return out.Close()
}

func writeTable(path string, header []string, rows [][]string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create directory: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", filepath.Base(path), err)
	}
	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		f.Close()
		return fmt.Errorf("write header: %w", err)
	}
	if err := w.WriteAll(rows); err != nil {
		f.Close()
		return fmt.Errorf("write rows: %w", err)
	}
	return f.Close()
}

func formatFloat(v float64) string {
	if math.IsNaN(v) {
		return "NaN"
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}
