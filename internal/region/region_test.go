package region

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleRegion = `owner: jane_citizen_LivingRoom
ASSOCIATED VIEW FILE: level01.vp
reference elevation: 0.85
number of points: 4
10.5 20.0
42.0 20.0
42.0 55.5
10.5 55.5
`

func TestParse(t *testing.T) {
	r, err := Parse(strings.NewReader(sampleRegion), "unit12_living")
	require.NoError(t, err)

	assert.Equal(t, "unit12_living", r.Name)
	assert.Equal(t, "jane_citizen_LivingRoom", r.Label)
	assert.Equal(t, "level01", r.View, "view id drops the .vp suffix")
	assert.Equal(t, 0.85, r.Elevation)
	require.Len(t, r.Points, 4)
	assert.Equal(t, Point{X: 10.5, Y: 20.0}, r.Points[0])
	assert.Equal(t, Point{X: 10.5, Y: 55.5}, r.Points[3])
}

func TestParseBareHeaders(t *testing.T) {
	raw := "LivingRoom\nlevel02\n1.2\n3\n0 0\n4 0\n4 4\n"
	r, err := Parse(strings.NewReader(raw), "zone")
	require.NoError(t, err)
	assert.Equal(t, "LivingRoom", r.Label)
	assert.Equal(t, "level02", r.View)
	require.Len(t, r.Points, 3)
}

func TestParseWorldColumns(t *testing.T) {
	// Rows carrying world coordinates first: the pixel pair is the last two
	// columns.
	raw := "Bedroom\nlevel01.vp\n0.85\n3\n" +
		"12.345 67.890 100 200\n" +
		"13.345 67.890 150 200\n" +
		"13.345 68.890 150 250\n"
	r, err := Parse(strings.NewReader(raw), "zone")
	require.NoError(t, err)
	assert.Equal(t, Point{X: 100, Y: 200}, r.Points[0])
	assert.Equal(t, Point{X: 150, Y: 250}, r.Points[2])
}

func TestParseSkipsBlankVertexLines(t *testing.T) {
	raw := "Bedroom\nlevel01\n0\n3\n0 0\n\n4 0\n4 4\n"
	r, err := Parse(strings.NewReader(raw), "zone")
	require.NoError(t, err)
	require.Len(t, r.Points, 3)
}

func TestParseErrors(t *testing.T) {
	var perr *ParseError

	_, err := Parse(strings.NewReader(""), "zone")
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, 1, perr.Line)

	_, err = Parse(strings.NewReader("label\nlevel01\nnot-a-number\n3\n0 0\n1 0\n1 1\n"), "zone")
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, 3, perr.Line)

	// Fewer than three vertices cannot form a polygon.
	_, err = Parse(strings.NewReader("label\nlevel01\n0\n2\n0 0\n1 0\n"), "zone")
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, 4, perr.Line)

	// Fewer vertex rows than the declared count.
	_, err = Parse(strings.NewReader("label\nlevel01\n0\n4\n0 0\n1 0\n1 1\n"), "zone")
	require.ErrorAs(t, err, &perr)

	_, err = Parse(strings.NewReader("label\nlevel01\n0\n3\n0 0\nnope\n1 1\n"), "zone")
	require.ErrorAs(t, err, &perr)
}
