// Package region parses zone-of-interest polygons and tests pixel
// containment against them.
package region

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// ParseError reports a malformed region file. The caller skips the affected
// region with a warning; it is never a pipeline abort.
type ParseError struct {
	File string
	Line int
	Msg  string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("region %s line %d: %s", e.File, e.Line, e.Msg)
}

// Point is a vertex in pixel space.
type Point struct {
	X, Y float64
}

// Region is an immutable polygon in pixel space plus its metadata. Regions
// are parsed once per aggregation pass and evaluated against every raster
// that shares their owning view.
type Region struct {
	// Name is the region file stem; result files are named after it.
	Name string
	// Label is the human-readable owner/space label from the file header.
	Label string
	// View identifies the viewpoint this region's pixel coordinates belong to.
	View string
	// Elevation is the reference plane height in metres.
	Elevation float64
	Points    []Point
}

// ParseFile reads one region definition file.
//
// The fixed schema is line-oriented:
//
//	line 1:  owner/label
//	line 2:  associated view identifier
//	line 3:  reference elevation
//	line 4:  perimeter point count
//	line 5+: whitespace-delimited pixel coordinate pairs
//
// Header lines may carry a "key: value" prefix; vertex rows may carry
// leading world coordinates, in which case the pixel pair is the last two
// columns.
func ParseFile(path string) (*Region, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open region file: %w", err)
	}
	defer f.Close()

	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return Parse(f, name)
}

// Parse reads a region definition from r; name becomes the region's Name.
func Parse(r io.Reader, name string) (*Region, error) {
	sc := bufio.NewScanner(r)
	lineNo := 0
	next := func() (string, bool) {
		if !sc.Scan() {
			return "", false
		}
		lineNo++
		return strings.TrimSpace(sc.Text()), true
	}

	label, ok := next()
	if !ok || label == "" {
		return nil, &ParseError{File: name, Line: 1, Msg: "missing label line"}
	}

	viewLine, ok := next()
	if !ok {
		return nil, &ParseError{File: name, Line: 2, Msg: "missing view line"}
	}
	view := headerValue(viewLine)
	view = strings.TrimSuffix(view, ".vp")
	if view == "" {
		return nil, &ParseError{File: name, Line: 2, Msg: "empty view identifier"}
	}

	elevLine, ok := next()
	if !ok {
		return nil, &ParseError{File: name, Line: 3, Msg: "missing elevation line"}
	}
	elev, err := strconv.ParseFloat(headerValue(elevLine), 64)
	if err != nil {
		return nil, &ParseError{File: name, Line: 3, Msg: fmt.Sprintf("bad elevation %q", headerValue(elevLine))}
	}

	countLine, ok := next()
	if !ok {
		return nil, &ParseError{File: name, Line: 4, Msg: "missing point count line"}
	}
	count, ok := firstInt(countLine)
	if !ok || count < 3 {
		return nil, &ParseError{File: name, Line: 4, Msg: fmt.Sprintf("bad point count %q", countLine)}
	}

	points := make([]Point, 0, count)
	for len(points) < count {
		line, ok := next()
		if !ok {
			return nil, &ParseError{File: name, Line: lineNo + 1, Msg: fmt.Sprintf("expected %d points, got %d", count, len(points))}
		}
		if line == "" {
			continue
		}
		pt, err := parseVertex(line)
		if err != nil {
			return nil, &ParseError{File: name, Line: lineNo, Msg: err.Error()}
		}
		points = append(points, pt)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("failed to read region file: %w", err)
	}

	return &Region{
		Name:      name,
		Label:     headerValue(label),
		View:      view,
		Elevation: elev,
		Points:    points,
	}, nil
}

// headerValue strips an optional "key:" prefix from a header line.
func headerValue(line string) string {
	if i := strings.LastIndex(line, ":"); i >= 0 {
		return strings.TrimSpace(line[i+1:])
	}
	return line
}

// firstInt returns the first whitespace-delimited integer on the line.
func firstInt(line string) (int, bool) {
	for _, field := range strings.Fields(line) {
		field = strings.TrimSuffix(field, ":")
		if n, err := strconv.Atoi(field); err == nil {
			return n, true
		}
	}
	return 0, false
}

// parseVertex reads a pixel coordinate pair. Rows with four or more columns
// carry world coordinates first; the pixel pair is the last two columns.
func parseVertex(line string) (Point, error) {
	fields := strings.Fields(line)
	if len(fields) < 2 {
		return Point{}, fmt.Errorf("bad vertex row %q", line)
	}
	xs, ys := fields[0], fields[1]
	if len(fields) >= 4 {
		xs, ys = fields[len(fields)-2], fields[len(fields)-1]
	}
	x, errX := strconv.ParseFloat(xs, 64)
	y, errY := strconv.ParseFloat(ys, 64)
	if errX != nil || errY != nil {
		return Point{}, fmt.Errorf("bad vertex row %q", line)
	}
	return Point{X: x, Y: y}, nil
}
