// Package report derives the pixel-to-world scale and merges per-region
// result files into the consolidated compliance report.
package report

import (
	"bufio"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/vincentlogarzo/archilume/internal/raster"
)

// Scale maps raster pixels to world dimensions for one viewpoint.
type Scale struct {
	ImageWidth  int
	ImageHeight int
	WorldWidth  float64
	WorldHeight float64
}

// AreaPerPixel is the world area one pixel represents, in m², rounded to
// keep sub-mm² precision without float noise.
func (s Scale) AreaPerPixel() float64 {
	a := (s.WorldWidth / float64(s.ImageWidth)) * (s.WorldHeight / float64(s.ImageHeight))
	return math.Round(a*1e6) / 1e6
}

// ScaleFromHeader derives the world extent of a plan render from its view
// framing: width = 2·z·tan(vh/2), height = 2·z·tan(vv/2).
func ScaleFromHeader(h raster.Header) (Scale, error) {
	if !h.HasView {
		return Scale{}, fmt.Errorf("raster header has no view framing")
	}
	v := h.View
	if v.Z <= 0 || v.HAngle <= 0 || v.VAngle <= 0 {
		return Scale{}, fmt.Errorf("view framing is degenerate (z=%g vh=%g vv=%g)", v.Z, v.HAngle, v.VAngle)
	}
	return Scale{
		ImageWidth:  h.Width,
		ImageHeight: h.Height,
		WorldWidth:  2 * v.Z * math.Tan(v.HAngle/2*math.Pi/180),
		WorldHeight: 2 * v.Z * math.Tan(v.VAngle/2*math.Pi/180),
	}, nil
}

// WriteScaleMap persists a scale as the pixel-to-world map artifact consumed
// by later aggregation runs.
func WriteScaleMap(path string, s Scale) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create scale map: %w", err)
	}
	w := bufio.NewWriter(f)
	fmt.Fprintln(w, "# Pixel-to-world coordinate map")
	fmt.Fprintf(w, "# Image dimensions in pixels: width=%d, height=%d\n", s.ImageWidth, s.ImageHeight)
	fmt.Fprintf(w, "# World dimensions in meters: width=%f, height=%f\n", s.WorldWidth, s.WorldHeight)
	fmt.Fprintf(w, "# Area per pixel: %g m2\n", s.AreaPerPixel())
	if err := w.Flush(); err != nil {
		f.Close()
		return fmt.Errorf("failed to write scale map: %w", err)
	}
	return f.Close()
}

// ReadScale parses a pixel-to-world map artifact's header. Only the image
// and world dimension lines are contractual.
func ReadScale(path string) (Scale, error) {
	f, err := os.Open(path)
	if err != nil {
		return Scale{}, fmt.Errorf("failed to open scale map: %w", err)
	}
	defer f.Close()

	var s Scale
	haveImage, haveWorld := false, false
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := sc.Text()
		switch {
		case strings.Contains(line, "dimensions in pixels"):
			w, h, err := dims(line)
			if err != nil {
				return Scale{}, fmt.Errorf("scale map %s: %w", path, err)
			}
			s.ImageWidth, s.ImageHeight = int(w), int(h)
			haveImage = true
		case strings.Contains(line, "dimensions in meters"):
			w, h, err := dims(line)
			if err != nil {
				return Scale{}, fmt.Errorf("scale map %s: %w", path, err)
			}
			s.WorldWidth, s.WorldHeight = w, h
			haveWorld = true
		}
	}
	if err := sc.Err(); err != nil {
		return Scale{}, fmt.Errorf("failed to read scale map: %w", err)
	}
	if !haveImage || !haveWorld {
		return Scale{}, fmt.Errorf("scale map %s: missing dimension lines", path)
	}
	if s.ImageWidth <= 0 || s.ImageHeight <= 0 {
		return Scale{}, fmt.Errorf("scale map %s: non-positive image dimensions", path)
	}
	return s, nil
}

// dims extracts "width=<n>, height=<n>" values from a header line.
func dims(line string) (float64, float64, error) {
	w, err := keyed(line, "width=")
	if err != nil {
		return 0, 0, err
	}
	h, err := keyed(line, "height=")
	if err != nil {
		return 0, 0, err
	}
	return w, h, nil
}

func keyed(line, key string) (float64, error) {
	i := strings.Index(line, key)
	if i < 0 {
		return 0, fmt.Errorf("missing %q in %q", key, line)
	}
	val := line[i+len(key):]
	if j := strings.IndexAny(val, ", "); j >= 0 {
		val = val[:j]
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(val), 64)
	if err != nil {
		return 0, fmt.Errorf("bad %q value in %q", key, line)
	}
	return v, nil
}
