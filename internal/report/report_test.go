package report

import (
	"bytes"
	"math"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/vincentlogarzo/archilume/internal/aggregate"
	"github.com/vincentlogarzo/archilume/internal/raster"
)

func TestAreaPerPixel(t *testing.T) {
	s := Scale{ImageWidth: 100, ImageHeight: 100, WorldWidth: 10, WorldHeight: 10}
	assert.Equal(t, 0.01, s.AreaPerPixel())

	// Rounded to six decimals.
	s = Scale{ImageWidth: 2048, ImageHeight: 2048, WorldWidth: 21.838, WorldHeight: 21.838}
	app := s.AreaPerPixel()
	assert.Equal(t, math.Round(app*1e6)/1e6, app)
	assert.InDelta(t, 0.000114, app, 1e-6)
}

func TestScaleFromHeader(t *testing.T) {
	h := raster.Header{
		Width:   2048,
		Height:  2048,
		HasView: true,
		View:    raster.View{X: 10, Y: 20, Z: 30, HAngle: 40, VAngle: 40},
	}

	s, err := ScaleFromHeader(h)
	require.NoError(t, err)
	assert.Equal(t, 2048, s.ImageWidth)
	assert.InDelta(t, 2*30*math.Tan(20*math.Pi/180), s.WorldWidth, 1e-9)
	assert.InDelta(t, s.WorldWidth, s.WorldHeight, 1e-9)
}

func TestScaleFromHeaderErrors(t *testing.T) {
	_, err := ScaleFromHeader(raster.Header{Width: 4, Height: 4})
	assert.Error(t, err)

	_, err = ScaleFromHeader(raster.Header{
		Width: 4, Height: 4, HasView: true,
		View: raster.View{Z: 0, HAngle: 40, VAngle: 40},
	})
	assert.Error(t, err)
}

func TestScaleMapRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pixel_to_world_map.txt")
	want := Scale{ImageWidth: 2048, ImageHeight: 1778, WorldWidth: 21.838, WorldHeight: 18.9}

	require.NoError(t, WriteScaleMap(path, want))

	got, err := ReadScale(path)
	require.NoError(t, err)
	assert.Equal(t, want.ImageWidth, got.ImageWidth)
	assert.Equal(t, want.ImageHeight, got.ImageHeight)
	assert.InDelta(t, want.WorldWidth, got.WorldWidth, 1e-6)
	assert.InDelta(t, want.WorldHeight, got.WorldHeight, 1e-6)
}

func TestReadScaleErrors(t *testing.T) {
	_, err := ReadScale(filepath.Join(t.TempDir(), "absent.txt"))
	assert.Error(t, err)
}

func TestMerge(t *testing.T) {
	records := []aggregate.ResultRecord{
		{Region: "b_zone", Raster: "r2.hdr", TotalPixels: 10, PassingPixels: 4},
		{Region: "a_zone", Raster: "r1.hdr", TotalPixels: 10, PassingPixels: 10},
		{Region: "b_zone", Raster: "r1.hdr", TotalPixels: 10, PassingPixels: 0},
	}

	rows := Merge(records, 0.25)
	require.Len(t, rows, 3)

	assert.Equal(t, "a_zone", rows[0].Region)
	assert.Equal(t, 2.5, rows[0].PassingArea)

	assert.Equal(t, "b_zone", rows[1].Region)
	assert.Equal(t, "r1.hdr", rows[1].Raster)
	assert.Zero(t, rows[1].PassingArea)

	assert.Equal(t, "r2.hdr", rows[2].Raster)
	assert.Equal(t, 1.0, rows[2].PassingArea)
}

func TestWriteFlat(t *testing.T) {
	var buf bytes.Buffer
	rows := []Row{
		{Region: "zone", Raster: "r.hdr", TotalPixels: 4, PassingPixels: 3, PassingArea: 0.75},
	}
	require.NoError(t, WriteFlat(&buf, rows))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "region,raster,total_pixels,passing_pixels,passing_area_m2", lines[0])
	assert.Equal(t, "zone,r.hdr,4,3,0.750000", lines[1])
}

func TestBuildPivot(t *testing.T) {
	rows := []Row{
		{Region: "z2", Raster: "r1", PassingArea: 1},
		{Region: "z1", Raster: "r2", PassingArea: 2},
		{Region: "z1", Raster: "r1", PassingArea: 3},
	}

	p := BuildPivot(rows)
	assert.Equal(t, []string{"z1", "z2"}, p.Regions)
	assert.Equal(t, []string{"r1", "r2"}, p.Rasters)
	assert.Equal(t, 3.0, p.Area["z1"]["r1"])
	assert.Equal(t, 5.0, p.Totals["z1"])
	assert.Equal(t, 1.0, p.Totals["z2"])
	assert.Zero(t, p.Area["z2"]["r2"], "absent cells read as zero area")
}

func TestWritePivot(t *testing.T) {
	rows := []Row{
		{Region: "z1", Raster: "r1", PassingArea: 1.5},
		{Region: "z1", Raster: "r2", PassingArea: 0.5},
	}
	var buf bytes.Buffer
	require.NoError(t, WritePivot(&buf, BuildPivot(rows)))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "region,r1,r2,total_area_m2", lines[0])
	assert.Equal(t, "z1,1.500000,0.500000,2.000000", lines[1])
}

func TestReadResultDir(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, aggregate.WriteResultFile(aggregate.ResultPath(dir, "zone_a"), 4,
		[]aggregate.ResultRecord{{Region: "zone_a", Raster: "r.hdr", TotalPixels: 4, PassingPixels: 2}}))
	require.NoError(t, aggregate.WriteResultFile(aggregate.ResultPath(dir, "zone_b"), 9,
		[]aggregate.ResultRecord{{Region: "zone_b", Raster: "r.hdr", TotalPixels: 9, PassingPixels: 9}}))

	records, err := ReadResultDir(dir, zap.NewNop())
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "zone_a", records[0].Region)
	assert.Equal(t, "zone_b", records[1].Region)
}

func TestWriteReports(t *testing.T) {
	dir := t.TempDir()
	rows := []Row{{Region: "z", Raster: "r", TotalPixels: 4, PassingPixels: 4, PassingArea: 1}}

	flat, pivot, err := WriteReports(dir, rows)
	require.NoError(t, err)
	assert.FileExists(t, flat)
	assert.FileExists(t, pivot)
}
