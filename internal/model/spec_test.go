package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompileSpecInvocation(t *testing.T) {
	inv := CompileSpec{
		SceneOctree: "oct/scene_c1_temp.oct",
		SkyFile:     "skies/c1.sky",
		Output:      "oct/scene_c1.oct",
	}.Invocation()

	assert.Equal(t, "oconv", inv.Program)
	assert.Equal(t, []string{"-i", "oct/scene_c1_temp.oct", "skies/c1.sky"}, inv.Args)
	assert.Equal(t, "oct/scene_c1.oct", inv.Stdout)
}

func TestWarmSpecInvocation(t *testing.T) {
	inv := WarmSpec{
		ViewFile:    "views/v1.vp",
		Octree:      "oct/scene_overcast.oct",
		AmbientFile: "img/scene_v1__overcast.amb",
		XRes:        512, YRes: 512,
		Params: OvertureParams(),
	}.Invocation()

	require.Equal(t, "rpict", inv.Program)
	assert.Empty(t, inv.Stdout, "warm pass output is the ambient file, not stdout")

	s := inv.String()
	assert.Contains(t, s, "-vf views/v1.vp")
	assert.Contains(t, s, "-x 512 -y 512")
	assert.Contains(t, s, "-aa 0.1 -ab 1 -ad 2048 -ar 1024 -as 512 -ps 4")
	assert.Contains(t, s, "-af img/scene_v1__overcast.amb oct/scene_overcast.oct")
	assert.Contains(t, s, "-i")
}

func TestRenderSpecDirectSunOmitsAmbient(t *testing.T) {
	inv := RenderSpec{
		ViewFile: "views/v1.vp",
		Octree:   "oct/scene_c1.oct",
		Output:   "img/scene_v1_c1.hdr",
		XRes:     2048, YRes: 2048,
		Params: DirectSunParams(),
	}.Invocation()

	s := inv.String()
	assert.NotContains(t, s, "-af")
	assert.NotContains(t, s, "-aa")
	assert.Contains(t, s, "-ab 0 -ad 128 -ar 64 -as 64 -ps 2")
	assert.Contains(t, s, "-lw 0.005")
	assert.NotContains(t, s, "-i", "direct-sun renders stay in radiance mode")
	assert.Equal(t, "img/scene_v1_c1.hdr", inv.Stdout)
}

func TestRenderSpecIndirect(t *testing.T) {
	inv := RenderSpec{
		ViewFile:    "views/v1.vp",
		Octree:      "oct/scene_overcast.oct",
		AmbientFile: "img/scene_v1__overcast.amb",
		Output:      "img/scene_v1__overcast.hdr",
		XRes:        2048, YRes: 2048,
		Params: IndirectParams(),
	}.Invocation()

	s := inv.String()
	assert.Contains(t, s, "-ad 4096")
	assert.Contains(t, s, "-as 1024")
	assert.Contains(t, s, "-af img/scene_v1__overcast.amb")
	assert.Contains(t, s, " -i ")
}

func TestCompositeSpecInvocation(t *testing.T) {
	inv := CompositeSpec{
		IndirectHDR: "a.hdr",
		DirectHDR:   "b.hdr",
		Output:      "out.hdr",
	}.Invocation()

	assert.Equal(t, "pcomb", inv.Program)
	require.Len(t, inv.Args, 4)
	assert.Equal(t, "-e", inv.Args[0])
	assert.Equal(t, "ro=ri(1)+ri(2); go=gi(1)+gi(2); bo=bi(1)+bi(2)", inv.Args[1])
	assert.Equal(t, []string{"a.hdr", "b.hdr"}, inv.Args[2:])
	assert.Equal(t, "out.hdr", inv.Stdout)
}

func TestConvertSpecInvocation(t *testing.T) {
	inv := ConvertSpec{Input: "in.hdr", Output: "out.tiff", Exposure: 2}.Invocation()

	assert.Equal(t, "ra_tiff", inv.Program)
	assert.Equal(t, []string{"-e", "2", "in.hdr", "out.tiff"}, inv.Args)
	assert.Empty(t, inv.Stdout, "ra_tiff writes its own output file")
}

func TestInvocationString(t *testing.T) {
	inv := Invocation{Program: "oconv", Args: []string{"-i", "a", "b"}, Stdout: "c.oct"}
	assert.Equal(t, "oconv -i a b > c.oct", inv.String())
}

func TestPhaseOrderAndNames(t *testing.T) {
	phases := Phases()
	require.Len(t, phases, 6)
	for i := 1; i < len(phases); i++ {
		assert.Greater(t, int(phases[i]), int(phases[i-1]))
	}
	assert.Equal(t, "scene-compile", PhaseSceneCompile.String())
	assert.Equal(t, "convert", PhaseConvert.String())
	assert.Equal(t, "phase(42)", Phase(42).String())
}
