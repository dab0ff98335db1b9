package region

import "math"

const eps = 1e-10

// Contains reports whether the point (x, y) lies inside the polygon under
// even-odd ray casting. Points on an edge or vertex count as inside; this is
// the one consistent boundary rule the whole system uses.
func Contains(poly []Point, x, y float64) bool {
	n := len(poly)
	if n < 3 {
		return false
	}

	inside := false
	j := n - 1
	for i := 0; i < n; i++ {
		xi, yi := poly[i].X, poly[i].Y
		xj, yj := poly[j].X, poly[j].Y

		if math.Abs(x-xi) < eps && math.Abs(y-yi) < eps {
			return true
		}

		// Collinear point within the edge's bounding box lies on the edge.
		if math.Min(yi, yj) <= y && y <= math.Max(yi, yj) &&
			math.Min(xi, xj) <= x && x <= math.Max(xi, xj) {
			if math.Abs((y-yi)*(xj-xi)-(x-xi)*(yj-yi)) < eps {
				return true
			}
		}

		if (yi > y) != (yj > y) && x < (xj-xi)*(y-yi)/(yj-yi)+xi {
			inside = !inside
		}
		j = i
	}
	return inside
}

// PixelsInside returns the row-major indices of the integer pixel centres
// contained by the polygon within a width×height grid. A polygon lying
// entirely outside the grid yields an empty slice, which downstream code
// treats as a normal zero-count outcome.
func PixelsInside(poly []Point, width, height int) []int {
	if len(poly) < 3 {
		return nil
	}

	// Grid scan restricted to the polygon's clipped bounding rows/columns.
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, p := range poly {
		minX = math.Min(minX, p.X)
		minY = math.Min(minY, p.Y)
		maxX = math.Max(maxX, p.X)
		maxY = math.Max(maxY, p.Y)
	}

	x0 := clamp(int(math.Floor(minX)), 0, width-1)
	x1 := clamp(int(math.Ceil(maxX)), 0, width-1)
	y0 := clamp(int(math.Floor(minY)), 0, height-1)
	y1 := clamp(int(math.Ceil(maxY)), 0, height-1)
	if maxX < 0 || maxY < 0 || minX > float64(width-1) || minY > float64(height-1) {
		return nil
	}

	var idx []int
	for y := y0; y <= y1; y++ {
		for x := x0; x <= x1; x++ {
			if Contains(poly, float64(x), float64(y)) {
				idx = append(idx, y*width+x)
			}
		}
	}
	return idx
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
