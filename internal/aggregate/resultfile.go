package aggregate

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
)

// ResultPath names the per-region result file for a region.
func ResultPath(resultDir, regionName string) string {
	return filepath.Join(resultDir, regionName+".wpd")
}

// WriteResultFile writes one region's result file: a header with the
// region's polygon pixel count, a column header, then one row per raster
// sorted by raster identifier.
func WriteResultFile(path string, totalPixels int, records []ResultRecord) error {
	rows := append([]ResultRecord(nil), records...)
	sort.Slice(rows, func(i, j int) bool { return rows[i].Raster < rows[j].Raster })

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create result file: %w", err)
	}
	w := bufio.NewWriter(f)
	fmt.Fprintf(w, "total_pixels_in_polygon: %d\n", totalPixels)
	fmt.Fprintln(w, "raster_id passing_pixels")
	for _, r := range rows {
		fmt.Fprintf(w, "%s %d\n", r.Raster, r.PassingPixels)
	}
	if err := w.Flush(); err != nil {
		f.Close()
		return fmt.Errorf("failed to write result file: %w", err)
	}
	return f.Close()
}

// ReadResultFile parses one per-region result file back into records. The
// region name is recovered from the file stem.
func ReadResultFile(path string) ([]ResultRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read result file: %w", err)
	}
	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))

	lines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
	if len(lines) < 2 {
		return nil, fmt.Errorf("result file %s: missing header", path)
	}
	_, totalStr, ok := strings.Cut(lines[0], ":")
	if !ok {
		return nil, fmt.Errorf("result file %s: malformed total line %q", path, lines[0])
	}
	total, err := strconv.Atoi(strings.TrimSpace(totalStr))
	if err != nil {
		return nil, fmt.Errorf("result file %s: malformed total line %q", path, lines[0])
	}

	var records []ResultRecord
	for _, line := range lines[2:] {
		fields := strings.Fields(line)
		if len(fields) < 2 {
			continue
		}
		passing, err := strconv.Atoi(fields[1])
		if err != nil {
			return nil, fmt.Errorf("result file %s: malformed row %q", path, line)
		}
		records = append(records, ResultRecord{
			Region:        name,
			Raster:        fields[0],
			TotalPixels:   total,
			PassingPixels: passing,
		})
	}
	return records, nil
}
