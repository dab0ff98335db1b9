package planner

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vincentlogarzo/archilume/internal/model"
)

func testPlanner() *Planner {
	return &Planner{
		OctreeDir: "oct",
		ImageDir:  "img",
		XRes:      2048,
		YRes:      2048,
		WarmRes:   512,
		Exposure:  1,
	}
}

func desc(ids ...string) []Descriptor {
	var ds []Descriptor
	for _, id := range ids {
		ds = append(ds, Descriptor{ID: id, Path: id + ".sky"})
	}
	return ds
}

func TestPlanJobCounts(t *testing.T) {
	p := testPlanner()
	overcast := Descriptor{ID: "overcast", Path: "overcast.sky"}
	conditions := desc("mar21_0900", "mar21_1200", "jun21_1200")
	viewpoints := []Descriptor{
		{ID: "level01", Path: "level01.vp"},
		{ID: "level02", Path: "level02.vp"},
	}

	jobs, err := p.Plan("scene_skyless.oct", overcast, conditions, viewpoints)
	require.NoError(t, err)

	counts := map[model.Phase]int{}
	for _, j := range jobs {
		counts[j.Phase]++
	}
	assert.Equal(t, 1, counts[model.PhaseSceneCompile])
	assert.Equal(t, 2, counts[model.PhaseAmbientWarm])
	assert.Equal(t, 3, counts[model.PhaseConditionCompile], "one compile per condition after dedup")
	assert.Equal(t, 2+3*2, counts[model.PhaseRender], "indirect per view plus direct per condition x view")
	assert.Equal(t, 3*2, counts[model.PhaseComposite])
	assert.Equal(t, 3*2, counts[model.PhaseConvert])
}

func TestPlanPhaseOrdering(t *testing.T) {
	p := testPlanner()
	jobs, err := p.Plan("scene_skyless.oct",
		Descriptor{ID: "overcast", Path: "overcast.sky"},
		desc("c1", "c2"),
		[]Descriptor{{ID: "v1", Path: "v1.vp"}})
	require.NoError(t, err)

	last := model.PhaseSceneCompile
	for _, j := range jobs {
		assert.GreaterOrEqual(t, int(j.Phase), int(last), "jobs must appear in phase order")
		last = j.Phase
	}

	// Every input of a job is either an external file or an earlier output.
	produced := map[string]model.Phase{}
	for _, j := range jobs {
		for _, in := range j.Inputs {
			if phase, ok := produced[in]; ok {
				assert.Less(t, int(phase), int(j.Phase),
					"input %s of %s job must come from an earlier phase", in, j.Phase)
			}
		}
		produced[j.Output] = j.Phase
	}
}

func TestPlanDedupKeepsFirstPosition(t *testing.T) {
	p := testPlanner()
	jobs, err := p.Plan("scene_skyless.oct",
		Descriptor{ID: "overcast", Path: "overcast.sky"},
		desc("c1", "c2"),
		[]Descriptor{{ID: "v1", Path: "v1.vp"}, {ID: "v2", Path: "v2.vp"}, {ID: "v3", Path: "v3.vp"}})
	require.NoError(t, err)

	compiles := model.JobsInPhase(jobs, model.PhaseConditionCompile)
	require.Len(t, compiles, 2)
	assert.Equal(t, filepath.Join("oct", "scene_c1.oct"), compiles[0].Output)
	assert.Equal(t, filepath.Join("oct", "scene_c2.oct"), compiles[1].Output)

	seen := map[string]bool{}
	for _, j := range jobs {
		assert.False(t, seen[j.Output], "duplicate planned output %s", j.Output)
		seen[j.Output] = true
	}
}

func TestPlanDeterministic(t *testing.T) {
	p := testPlanner()
	overcast := Descriptor{ID: "overcast", Path: "overcast.sky"}
	conditions := desc("c1", "c2")
	viewpoints := []Descriptor{{ID: "v1", Path: "v1.vp"}}

	a, err := p.Plan("scene_skyless.oct", overcast, conditions, viewpoints)
	require.NoError(t, err)
	b, err := p.Plan("scene_skyless.oct", overcast, conditions, viewpoints)
	require.NoError(t, err)

	require.Equal(t, len(a), len(b))
	for i := range a {
		assert.Equal(t, a[i].Output, b[i].Output)
		assert.Equal(t, a[i].Inputs, b[i].Inputs)
	}
}

func TestPlanEmptyInputs(t *testing.T) {
	p := testPlanner()
	overcast := Descriptor{ID: "overcast", Path: "overcast.sky"}

	jobs, err := p.Plan("scene_skyless.oct", overcast, nil, desc("v1"))
	require.NoError(t, err)
	assert.Empty(t, jobs)

	jobs, err = p.Plan("scene_skyless.oct", overcast, desc("c1"), nil)
	require.NoError(t, err)
	assert.Empty(t, jobs)
}

func TestPlanValidation(t *testing.T) {
	p := testPlanner()
	overcast := Descriptor{ID: "overcast", Path: "overcast.sky"}

	_, err := p.Plan("", overcast, desc("c1"), desc("v1"))
	var perr *PlanningError
	require.ErrorAs(t, err, &perr)

	_, err = p.Plan("scene.oct", Descriptor{}, desc("c1"), desc("v1"))
	require.ErrorAs(t, err, &perr)

	bad := testPlanner()
	bad.XRes = 0
	_, err = bad.Plan("scene.oct", overcast, desc("c1"), desc("v1"))
	require.ErrorAs(t, err, &perr)
}

func TestStagings(t *testing.T) {
	p := testPlanner()
	jobs, err := p.Plan("scene_skyless.oct",
		Descriptor{ID: "overcast", Path: "overcast.sky"},
		desc("c1", "c2"),
		[]Descriptor{{ID: "v1", Path: "v1.vp"}, {ID: "v2", Path: "v2.vp"}})
	require.NoError(t, err)

	stagings := Stagings(jobs)
	assert.Equal(t, []string{
		filepath.Join("oct", "scene_c1_temp.oct"),
		filepath.Join("oct", "scene_c2_temp.oct"),
	}, stagings)
}

func TestBaseName(t *testing.T) {
	assert.Equal(t, "tower", BaseName("/models/tower_skyless.oct"))
	assert.Equal(t, "tower", BaseName("tower.oct"))
	assert.Equal(t, "a_b", BaseName("a_b_skyless.oct"))
}

func TestNamingContract(t *testing.T) {
	assert.Equal(t, filepath.Join("o", "s_c.oct"), CompiledOctree("o", "s", "c"))
	assert.Equal(t, filepath.Join("o", "s_c_temp.oct"), StagingOctree("o", "s", "c"))
	assert.Equal(t, filepath.Join("i", "s_v__oc.amb"), AmbientFile("i", "s", "v", "oc"))
	assert.Equal(t, filepath.Join("i", "s_v__oc.hdr"), IndirectHDR("i", "s", "v", "oc"))
	assert.Equal(t, filepath.Join("i", "s_v_c.hdr"), DirectHDR("i", "s", "v", "c"))
	assert.Equal(t, filepath.Join("i", "s_v_c_combined.hdr"), CombinedHDR("i", "s", "v", "c"))
	assert.Equal(t, filepath.Join("i", "s_v_c_combined.tiff"), ConvertedTIFF("i", "s", "v", "c"))
}
