// Package raster decodes rendered image artifacts into in-memory intensity
// grids and caches the decoded result per artifact.
package raster

import "fmt"

// ParseError reports a malformed raster header or pixel stream. The caller
// skips the affected artifact with a warning; it is never a pipeline abort.
type ParseError struct {
	Path string
	Msg  string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("raster %s: %s", e.Path, e.Msg)
}

// Grid is a decoded raster: a row-major 2D grid of intensity samples.
// Grids are shared across many region evaluations and never mutated.
type Grid struct {
	Width   int
	Height  int
	Samples []float32
}

// At returns the sample at pixel column x, row y.
func (g *Grid) At(x, y int) float32 {
	return g.Samples[y*g.Width+x]
}
