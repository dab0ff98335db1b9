// Package planner expands a base scene plus lighting conditions and
// viewpoints into the dependency-ordered job set of one rendering run.
package planner

import (
	"fmt"

	"github.com/vincentlogarzo/archilume/internal/model"
)

// Descriptor identifies one external input file (a sky condition or a
// viewpoint) by its id, the file stem used in every derived artifact name.
type Descriptor struct {
	ID   string
	Path string
}

// PlanningError reports missing or malformed planning inputs. Planning
// aborts before any external process is launched.
type PlanningError struct {
	Msg string
}

func (e *PlanningError) Error() string {
	return fmt.Sprintf("planning: %s", e.Msg)
}

// Planner builds the full job set for a scene. All configuration is explicit
// at construction; planning itself touches no global state and no files.
type Planner struct {
	OctreeDir string
	ImageDir  string
	XRes      int
	YRes      int
	// WarmRes is the overture resolution; the ambient cache is sampled at a
	// fraction of final resolution.
	WarmRes int
	// Exposure is the f-stop adjustment applied during TIFF conversion.
	Exposure int
}

// Plan expands the conditions × viewpoints cross-product into jobs for every
// phase, in phase order. Identical upstream compile jobs required by several
// downstream jobs collapse to a single job at their first-seen position. An
// empty conditions or viewpoints list yields an empty plan without error.
func (p *Planner) Plan(sceneOctree string, overcast Descriptor, conditions, viewpoints []Descriptor) ([]model.Job, error) {
	if sceneOctree == "" {
		return nil, &PlanningError{Msg: "scene octree path is empty"}
	}
	if overcast.ID == "" || overcast.Path == "" {
		return nil, &PlanningError{Msg: "overcast sky descriptor is incomplete"}
	}
	if p.XRes <= 0 || p.YRes <= 0 {
		return nil, &PlanningError{Msg: fmt.Sprintf("resolution must be positive: %dx%d", p.XRes, p.YRes)}
	}
	if len(conditions) == 0 || len(viewpoints) == 0 {
		return nil, nil
	}

	base := BaseName(sceneOctree)
	overcastOct := CompiledOctree(p.OctreeDir, base, overcast.ID)

	var jobs []model.Job

	jobs = append(jobs, model.Job{
		Phase:  model.PhaseSceneCompile,
		Output: overcastOct,
		Inputs: []string{sceneOctree, overcast.Path},
		Spec: model.CompileSpec{
			SceneOctree: sceneOctree,
			SkyFile:     overcast.Path,
			Output:      overcastOct,
		},
	})

	for _, view := range viewpoints {
		amb := AmbientFile(p.ImageDir, base, view.ID, overcast.ID)
		jobs = append(jobs, model.Job{
			Phase:  model.PhaseAmbientWarm,
			Output: amb,
			Inputs: []string{view.Path, overcastOct},
			Spec: model.WarmSpec{
				ViewFile:    view.Path,
				Octree:      overcastOct,
				AmbientFile: amb,
				XRes:        p.WarmRes,
				YRes:        p.WarmRes,
				Params:      model.OvertureParams(),
			},
		})
	}

	// Condition compiles are generated per (condition, viewpoint) pair like
	// their downstream renders, then deduplicated by output path.
	var compiles []model.Job
	for _, cond := range conditions {
		for range viewpoints {
			staging := StagingOctree(p.OctreeDir, base, cond.ID)
			out := CompiledOctree(p.OctreeDir, base, cond.ID)
			compiles = append(compiles, model.Job{
				Phase:  model.PhaseConditionCompile,
				Output: out,
				Inputs: []string{staging, cond.Path},
				Spec: model.CompileSpec{
					SceneOctree: staging,
					SkyFile:     cond.Path,
					Output:      out,
				},
			})
		}
	}
	jobs = append(jobs, dedupByOutput(compiles)...)

	for _, view := range viewpoints {
		amb := AmbientFile(p.ImageDir, base, view.ID, overcast.ID)
		indirect := IndirectHDR(p.ImageDir, base, view.ID, overcast.ID)
		jobs = append(jobs, model.Job{
			Phase:  model.PhaseRender,
			Output: indirect,
			Inputs: []string{view.Path, overcastOct, amb},
			Spec: model.RenderSpec{
				ViewFile:    view.Path,
				Octree:      overcastOct,
				AmbientFile: amb,
				Output:      indirect,
				XRes:        p.XRes,
				YRes:        p.YRes,
				Params:      model.IndirectParams(),
			},
		})
	}

	for _, cond := range conditions {
		condOct := CompiledOctree(p.OctreeDir, base, cond.ID)
		for _, view := range viewpoints {
			direct := DirectHDR(p.ImageDir, base, view.ID, cond.ID)
			jobs = append(jobs, model.Job{
				Phase:  model.PhaseRender,
				Output: direct,
				Inputs: []string{view.Path, condOct},
				Spec: model.RenderSpec{
					ViewFile: view.Path,
					Octree:   condOct,
					Output:   direct,
					XRes:     p.XRes,
					YRes:     p.YRes,
					Params:   model.DirectSunParams(),
				},
			})
		}
	}

	for _, cond := range conditions {
		for _, view := range viewpoints {
			indirect := IndirectHDR(p.ImageDir, base, view.ID, overcast.ID)
			direct := DirectHDR(p.ImageDir, base, view.ID, cond.ID)
			combined := CombinedHDR(p.ImageDir, base, view.ID, cond.ID)
			jobs = append(jobs, model.Job{
				Phase:  model.PhaseComposite,
				Output: combined,
				Inputs: []string{indirect, direct},
				Spec: model.CompositeSpec{
					IndirectHDR: indirect,
					DirectHDR:   direct,
					Output:      combined,
				},
			})
		}
	}

	for _, cond := range conditions {
		for _, view := range viewpoints {
			combined := CombinedHDR(p.ImageDir, base, view.ID, cond.ID)
			tiff := ConvertedTIFF(p.ImageDir, base, view.ID, cond.ID)
			jobs = append(jobs, model.Job{
				Phase:  model.PhaseConvert,
				Output: tiff,
				Inputs: []string{combined},
				Spec: model.ConvertSpec{
					Input:    combined,
					Output:   tiff,
					Exposure: p.Exposure,
				},
			})
		}
	}

	return jobs, nil
}

// Stagings lists the working copies of the scene octree that must exist
// before the condition-compile phase runs, in plan order.
func Stagings(jobs []model.Job) []string {
	var paths []string
	seen := make(map[string]bool)
	for _, j := range jobs {
		if j.Phase != model.PhaseConditionCompile || len(j.Inputs) == 0 {
			continue
		}
		if staging := j.Inputs[0]; !seen[staging] {
			seen[staging] = true
			paths = append(paths, staging)
		}
	}
	return paths
}

// dedupByOutput drops jobs whose output path was already planned; the first
// occurrence keeps its position.
func dedupByOutput(jobs []model.Job) []model.Job {
	seen := make(map[string]bool, len(jobs))
	out := jobs[:0]
	for _, j := range jobs {
		if seen[j.Output] {
			continue
		}
		seen[j.Output] = true
		out = append(out, j)
	}
	return out
}
