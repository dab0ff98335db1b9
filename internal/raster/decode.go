package raster

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"golang.org/x/image/tiff"
)

// DecodeFunc turns one raster artifact into a grid. The cache is generic
// over the decoder so tests can count invocations.
type DecodeFunc func(path string) (*Grid, error)

// Decode dispatches on the artifact extension: HDR images go through the
// toolchain's pvalue extractor, converted TIFFs are decoded in process.
func Decode(path string) (*Grid, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".hdr", ".pic":
		return PvalueDecode(path)
	case ".tif", ".tiff":
		return TIFFDecode(path)
	default:
		return nil, &ParseError{Path: path, Msg: "unsupported raster format"}
	}
}

// PvalueDecode extracts the brightness channel of an HDR artifact as a raw
// float stream via pvalue, the same wire contract the renderer's own tools
// use. Dimensions come from the artifact's header.
func PvalueDecode(path string) (*Grid, error) {
	h, err := ReadHeader(path)
	if err != nil {
		return nil, err
	}

	cmd := exec.Command("pvalue", "-h", "-H", "-b", "-df", path)
	var out, errBuf bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &errBuf
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("pvalue failed for %s: %w (%s)", path, err, strings.TrimSpace(errBuf.String()))
	}

	raw := out.Bytes()
	want := h.Width * h.Height * 4
	if len(raw) != want {
		return nil, &ParseError{Path: path, Msg: fmt.Sprintf("pixel stream is %d bytes, want %d", len(raw), want)}
	}

	samples := make([]float32, h.Width*h.Height)
	for i := range samples {
		bits := binary.LittleEndian.Uint32(raw[i*4:])
		samples[i] = math.Float32frombits(bits)
	}
	return &Grid{Width: h.Width, Height: h.Height, Samples: samples}, nil
}

// TIFFDecode reads a converted TIFF artifact into a luminance grid using the
// renderer's RGB luminance weighting.
func TIFFDecode(path string) (*Grid, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open raster: %w", err)
	}
	defer f.Close()

	img, err := tiff.Decode(f)
	if err != nil {
		return nil, &ParseError{Path: path, Msg: err.Error()}
	}

	b := img.Bounds()
	g := &Grid{
		Width:   b.Dx(),
		Height:  b.Dy(),
		Samples: make([]float32, b.Dx()*b.Dy()),
	}
	i := 0
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			g.Samples[i] = luminance(img.At(x, y).RGBA())
			i++
		}
	}
	return g, nil
}

// luminance applies the Radiance luminance weights to 16-bit channel values.
func luminance(r, gr, b, _ uint32) float32 {
	return float32((0.265*float64(r) + 0.670*float64(gr) + 0.065*float64(b)) / float64(0xffff))
}
