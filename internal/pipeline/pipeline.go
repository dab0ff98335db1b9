// Package pipeline orchestrates a full project run: planning, staged
// execution of the rendering phases, and aggregation into the compliance
// report.
package pipeline

import (
	"context"
	"fmt"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/vincentlogarzo/archilume/internal/aggregate"
	"github.com/vincentlogarzo/archilume/internal/artifact"
	"github.com/vincentlogarzo/archilume/internal/config"
	"github.com/vincentlogarzo/archilume/internal/engine"
	"github.com/vincentlogarzo/archilume/internal/model"
	"github.com/vincentlogarzo/archilume/internal/planner"
	"github.com/vincentlogarzo/archilume/internal/raster"
	"github.com/vincentlogarzo/archilume/internal/region"
	"github.com/vincentlogarzo/archilume/internal/report"
)

// PhaseTiming summarizes one executed phase.
type PhaseTiming struct {
	Phase     model.Phase
	Planned   int
	Skipped   int
	Succeeded int
	Failed    int
	Duration  time.Duration
}

// Pipeline drives rendering and aggregation for one configured project.
type Pipeline struct {
	cfg config.Config
	pl  *planner.Planner
	eng *engine.Engine
	log *zap.Logger
}

// New builds a pipeline from a validated configuration.
func New(cfg config.Config, log *zap.Logger) *Pipeline {
	return &Pipeline{
		cfg: cfg,
		pl: &planner.Planner{
			OctreeDir: cfg.Paths.OctreeDir,
			ImageDir:  cfg.Paths.ImageDir,
			XRes:      cfg.Render.XRes,
			YRes:      cfg.Render.YRes,
			WarmRes:   cfg.Render.XRes / 4,
			Exposure:  int(cfg.Render.Exposure),
		},
		eng: engine.New(log),
		log: log,
	}
}

// Plan discovers the project's skies and viewpoints and expands them into
// the full job set without executing anything.
func (p *Pipeline) Plan() ([]model.Job, error) {
	overcast, conditions, err := p.discoverSkies()
	if err != nil {
		return nil, err
	}
	viewpoints, err := discover(p.cfg.Paths.ViewDir, "*.vp")
	if err != nil {
		return nil, fmt.Errorf("failed to discover viewpoints: %w", err)
	}
	return p.pl.Plan(p.cfg.Paths.SceneOctree, overcast, conditions, viewpoints)
}

// Render plans and executes all rendering phases in order. Already-produced
// artifacts are skipped; job failures are isolated and reported in the
// returned timings rather than aborting the run.
func (p *Pipeline) Render(ctx context.Context) ([]PhaseTiming, error) {
	jobs, err := p.Plan()
	if err != nil {
		return nil, err
	}
	if len(jobs) == 0 {
		p.log.Info("nothing to render", zap.String("project", p.cfg.Project))
		return nil, nil
	}
	stagings := planner.Stagings(jobs)

	var timings []PhaseTiming
	for _, phase := range model.Phases() {
		phaseJobs := model.JobsInPhase(jobs, phase)
		fresh, skipped := artifact.FilterNew(phaseJobs)

		if phase == model.PhaseConditionCompile && len(fresh) > 0 {
			if err := artifact.Stage(p.cfg.Paths.SceneOctree, stagings); err != nil {
				return timings, err
			}
		}

		start := time.Now()
		_, summary := p.eng.Run(ctx, fresh, p.cfg.Workers.For(phase))
		timing := PhaseTiming{
			Phase:     phase,
			Planned:   len(phaseJobs),
			Skipped:   skipped,
			Succeeded: summary.Succeeded,
			Failed:    summary.Failed,
			Duration:  time.Since(start),
		}
		timings = append(timings, timing)

		if phase == model.PhaseConditionCompile {
			if deleted, err := artifact.Remove(stagings); err != nil {
				p.log.Warn("failed to clean staged octrees", zap.Error(err))
			} else if deleted > 0 {
				p.log.Debug("cleaned staged octrees", zap.Int("deleted", deleted))
			}
		}

		p.log.Info("phase complete",
			zap.Stringer("phase", phase),
			zap.Int("planned", timing.Planned),
			zap.Int("skipped", timing.Skipped),
			zap.Int("succeeded", timing.Succeeded),
			zap.Int("failed", timing.Failed),
			zap.Duration("duration", timing.Duration),
		)

		if err := ctx.Err(); err != nil {
			return timings, err
		}
	}

	if err := p.writeScaleMap(jobs); err != nil {
		p.log.Warn("failed to write pixel-to-world map", zap.Error(err))
	}
	return timings, nil
}

// Aggregate scores every rendered raster against the project's regions and
// writes the flat and pivot compliance reports. It returns the written
// report paths.
func (p *Pipeline) Aggregate(ctx context.Context) (string, string, error) {
	if p.cfg.Paths.RegionDir == "" || p.cfg.Paths.ResultDir == "" {
		return "", "", fmt.Errorf("paths.region_dir and paths.result_dir are required for aggregation")
	}

	regions, err := p.loadRegions()
	if err != nil {
		return "", "", err
	}
	rasters, err := filepath.Glob(filepath.Join(p.cfg.Paths.ImageDir, "*.hdr"))
	if err != nil {
		return "", "", fmt.Errorf("failed to scan image directory: %w", err)
	}
	sort.Strings(rasters)

	scale, err := report.ReadScale(p.cfg.Paths.ScaleMapPath())
	if err != nil {
		return "", "", fmt.Errorf("pixel-to-world map is required for aggregation: %w", err)
	}

	groups := aggregate.GroupByView(regions, rasters, p.cfg.Paths.ResultDir, p.log)
	workers := p.cfg.Workers.Aggregate
	if workers < 1 {
		workers = 1
	}
	if cpus := runtime.NumCPU(); workers > cpus {
		workers = cpus
	}
	agg := aggregate.New(raster.Decode, p.cfg.Render.Threshold, p.cfg.Paths.ResultDir, workers, p.log)
	if _, err := agg.Run(ctx, groups); err != nil {
		return "", "", err
	}

	// Report from the full result directory so earlier runs contribute too.
	records, err := report.ReadResultDir(p.cfg.Paths.ResultDir, p.log)
	if err != nil {
		return "", "", err
	}
	rows := report.Merge(records, scale.AreaPerPixel())
	return report.WriteReports(p.cfg.Paths.ResultDir, rows)
}

// discoverSkies splits the sky inputs into the overcast sky and the lighting
// conditions, dropping the overcast file from the condition list if it lives
// in the same directory.
func (p *Pipeline) discoverSkies() (planner.Descriptor, []planner.Descriptor, error) {
	overcast := planner.Descriptor{
		ID:   stem(p.cfg.Paths.OvercastSky),
		Path: p.cfg.Paths.OvercastSky,
	}
	conditions, err := discover(p.cfg.Paths.SkyDir, "*.sky")
	if err != nil {
		return planner.Descriptor{}, nil, fmt.Errorf("failed to discover sky conditions: %w", err)
	}
	kept := conditions[:0]
	for _, c := range conditions {
		if c.ID == overcast.ID {
			continue
		}
		kept = append(kept, c)
	}
	return overcast, kept, nil
}

// loadRegions parses every region file, skipping malformed ones with a
// warning so one bad file does not block the rest.
func (p *Pipeline) loadRegions() ([]*region.Region, error) {
	paths, err := filepath.Glob(filepath.Join(p.cfg.Paths.RegionDir, "*.aoi"))
	if err != nil {
		return nil, fmt.Errorf("failed to scan region directory: %w", err)
	}
	sort.Strings(paths)

	var regions []*region.Region
	for _, path := range paths {
		reg, err := region.ParseFile(path)
		if err != nil {
			p.log.Warn("skipping malformed region file", zap.String("path", path), zap.Error(err))
			continue
		}
		regions = append(regions, reg)
	}
	return regions, nil
}

// writeScaleMap derives the pixel-to-world map from the first rendered
// raster that exists and carries view framing.
func (p *Pipeline) writeScaleMap(jobs []model.Job) error {
	path := p.cfg.Paths.ScaleMapPath()
	if artifact.Exists(path) {
		return nil
	}
	for _, j := range model.JobsInPhase(jobs, model.PhaseRender) {
		if !artifact.Exists(j.Output) {
			continue
		}
		h, err := raster.ReadHeader(j.Output)
		if err != nil || !h.HasView {
			continue
		}
		scale, err := report.ScaleFromHeader(h)
		if err != nil {
			continue
		}
		if err := report.WriteScaleMap(path, scale); err != nil {
			return err
		}
		p.log.Info("wrote pixel-to-world map", zap.String("path", path), zap.String("source", j.Output))
		return nil
	}
	return fmt.Errorf("no rendered raster with view framing found")
}

// discover lists files matching pattern under dir as sorted descriptors.
func discover(dir, pattern string) ([]planner.Descriptor, error) {
	paths, err := filepath.Glob(filepath.Join(dir, pattern))
	if err != nil {
		return nil, err
	}
	sort.Strings(paths)
	descs := make([]planner.Descriptor, 0, len(paths))
	for _, path := range paths {
		descs = append(descs, planner.Descriptor{ID: stem(path), Path: path})
	}
	return descs, nil
}

func stem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
