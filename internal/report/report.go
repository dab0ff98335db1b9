package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"

	"go.uber.org/zap"

	"github.com/vincentlogarzo/archilume/internal/aggregate"
)

// Row is one region/raster pair of the flat report.
type Row struct {
	Region        string
	Raster        string
	TotalPixels   int
	PassingPixels int
	PassingArea   float64
}

// ReadResultDir loads every per-region result file under dir. Files that
// fail to parse are skipped with a warning so one bad artifact does not
// block the report.
func ReadResultDir(dir string, log *zap.Logger) ([]aggregate.ResultRecord, error) {
	paths, err := filepath.Glob(filepath.Join(dir, "*.wpd"))
	if err != nil {
		return nil, fmt.Errorf("failed to scan result directory: %w", err)
	}
	sort.Strings(paths)

	var records []aggregate.ResultRecord
	for _, p := range paths {
		recs, err := aggregate.ReadResultFile(p)
		if err != nil {
			log.Warn("skipping unreadable result file", zap.String("path", p), zap.Error(err))
			continue
		}
		records = append(records, recs...)
	}
	return records, nil
}

// Merge joins result records with the scale's per-pixel area into report
// rows ordered by region then raster.
func Merge(records []aggregate.ResultRecord, areaPerPixel float64) []Row {
	rows := make([]Row, 0, len(records))
	for _, r := range records {
		rows = append(rows, Row{
			Region:        r.Region,
			Raster:        r.Raster,
			TotalPixels:   r.TotalPixels,
			PassingPixels: r.PassingPixels,
			PassingArea:   float64(r.PassingPixels) * areaPerPixel,
		})
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Region != rows[j].Region {
			return rows[i].Region < rows[j].Region
		}
		return rows[i].Raster < rows[j].Raster
	})
	return rows
}

// WriteFlat writes the flat report as CSV.
func WriteFlat(w io.Writer, rows []Row) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"region", "raster", "total_pixels", "passing_pixels", "passing_area_m2"}); err != nil {
		return fmt.Errorf("failed to write report header: %w", err)
	}
	for _, r := range rows {
		rec := []string{
			r.Region,
			r.Raster,
			strconv.Itoa(r.TotalPixels),
			strconv.Itoa(r.PassingPixels),
			strconv.FormatFloat(r.PassingArea, 'f', 6, 64),
		}
		if err := cw.Write(rec); err != nil {
			return fmt.Errorf("failed to write report row: %w", err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("failed to flush report: %w", err)
	}
	return nil
}

// Pivot is the region×raster passing-area matrix with per-region totals.
type Pivot struct {
	Regions []string
	Rasters []string
	Area    map[string]map[string]float64
	Totals  map[string]float64
}

// BuildPivot arranges flat rows into a pivot with sorted axes.
func BuildPivot(rows []Row) Pivot {
	p := Pivot{
		Area:   make(map[string]map[string]float64),
		Totals: make(map[string]float64),
	}
	seenRaster := make(map[string]bool)
	for _, r := range rows {
		m, ok := p.Area[r.Region]
		if !ok {
			m = make(map[string]float64)
			p.Area[r.Region] = m
			p.Regions = append(p.Regions, r.Region)
		}
		m[r.Raster] = r.PassingArea
		p.Totals[r.Region] += r.PassingArea
		if !seenRaster[r.Raster] {
			seenRaster[r.Raster] = true
			p.Rasters = append(p.Rasters, r.Raster)
		}
	}
	sort.Strings(p.Regions)
	sort.Strings(p.Rasters)
	return p
}

// WritePivot writes the pivot report as CSV with one row per region and a
// trailing total column.
func WritePivot(w io.Writer, p Pivot) error {
	cw := csv.NewWriter(w)
	header := append(append([]string{"region"}, p.Rasters...), "total_area_m2")
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("failed to write pivot header: %w", err)
	}
	for _, region := range p.Regions {
		rec := make([]string, 0, len(p.Rasters)+2)
		rec = append(rec, region)
		for _, raster := range p.Rasters {
			rec = append(rec, strconv.FormatFloat(p.Area[region][raster], 'f', 6, 64))
		}
		rec = append(rec, strconv.FormatFloat(p.Totals[region], 'f', 6, 64))
		if err := cw.Write(rec); err != nil {
			return fmt.Errorf("failed to write pivot row: %w", err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("failed to flush pivot: %w", err)
	}
	return nil
}

// WriteReports writes both flat and pivot CSVs under dir.
func WriteReports(dir string, rows []Row) (string, string, error) {
	flatPath := filepath.Join(dir, "compliance_report.csv")
	pivotPath := filepath.Join(dir, "compliance_pivot.csv")

	f, err := os.Create(flatPath)
	if err != nil {
		return "", "", fmt.Errorf("failed to create flat report: %w", err)
	}
	if err := WriteFlat(f, rows); err != nil {
		f.Close()
		return "", "", err
	}
	if err := f.Close(); err != nil {
		return "", "", fmt.Errorf("failed to close flat report: %w", err)
	}

	p, err := os.Create(pivotPath)
	if err != nil {
		return "", "", fmt.Errorf("failed to create pivot report: %w", err)
	}
	if err := WritePivot(p, BuildPivot(rows)); err != nil {
		p.Close()
		return "", "", err
	}
	if err := p.Close(); err != nil {
		return "", "", fmt.Errorf("failed to close pivot report: %w", err)
	}
	return flatPath, pivotPath, nil
}
