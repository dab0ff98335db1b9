package raster

import (
	"bufio"
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"
)

// View is the framing recorded in a render's header: the eye point plus the
// horizontal and vertical view angles in degrees. Together with the eye
// height they determine the world extent a plan render covers.
type View struct {
	X, Y, Z float64
	HAngle  float64
	VAngle  float64
}

// Header is the line-oriented metadata block of a Radiance HDR artifact.
type Header struct {
	Width  int
	Height int
	View   View
	// HasView reports whether a VIEW line was present.
	HasView bool
}

var (
	vpRE = regexp.MustCompile(`-vp\s+(-?[\d.]+)\s+(-?[\d.]+)\s+(-?[\d.]+)`)
	vhRE = regexp.MustCompile(`-vh\s+(-?[\d.]+)`)
	vvRE = regexp.MustCompile(`-vv\s+(-?[\d.]+)`)
	// Standard orientation resolution line, e.g. "-Y 1778 +X 2048".
	resRE = regexp.MustCompile(`^-Y\s+(\d+)\s+\+X\s+(\d+)$`)
)

// ReadHeader parses an HDR artifact's header: the magic line, the key=value
// block ended by a blank line, and the resolution line that follows it.
func ReadHeader(path string) (Header, error) {
	f, err := os.Open(path)
	if err != nil {
		return Header{}, fmt.Errorf("failed to open raster: %w", err)
	}
	defer f.Close()

	r := bufio.NewReader(f)
	magic, err := r.ReadString('\n')
	if err != nil || !strings.HasPrefix(magic, "#?") {
		return Header{}, &ParseError{Path: path, Msg: "missing #? magic line"}
	}

	var h Header
	for {
		line, err := r.ReadString('\n')
		if err != nil {
			return Header{}, &ParseError{Path: path, Msg: "truncated header"}
		}
		line = strings.TrimRight(line, "\n")
		if line == "" {
			break
		}
		if strings.HasPrefix(line, "VIEW=") {
			view, ok := parseView(line)
			if !ok {
				return Header{}, &ParseError{Path: path, Msg: "malformed VIEW line"}
			}
			h.View = view
			h.HasView = true
		}
	}

	resLine, err := r.ReadString('\n')
	if err != nil {
		return Header{}, &ParseError{Path: path, Msg: "missing resolution line"}
	}
	m := resRE.FindStringSubmatch(strings.TrimSpace(resLine))
	if m == nil {
		return Header{}, &ParseError{Path: path, Msg: fmt.Sprintf("unsupported resolution line %q", strings.TrimSpace(resLine))}
	}
	h.Height, _ = strconv.Atoi(m[1])
	h.Width, _ = strconv.Atoi(m[2])
	if h.Width <= 0 || h.Height <= 0 {
		return Header{}, &ParseError{Path: path, Msg: "non-positive resolution"}
	}
	return h, nil
}

func parseView(line string) (View, bool) {
	vp := vpRE.FindStringSubmatch(line)
	vh := vhRE.FindStringSubmatch(line)
	vv := vvRE.FindStringSubmatch(line)
	if vp == nil || vh == nil || vv == nil {
		return View{}, false
	}
	var v View
	v.X, _ = strconv.ParseFloat(vp[1], 64)
	v.Y, _ = strconv.ParseFloat(vp[2], 64)
	v.Z, _ = strconv.ParseFloat(vp[3], 64)
	v.HAngle, _ = strconv.ParseFloat(vh[1], 64)
	v.VAngle, _ = strconv.ParseFloat(vv[1], 64)
	return v, true
}
