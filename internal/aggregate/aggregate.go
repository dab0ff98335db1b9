// Package aggregate evaluates region polygons against rendered rasters and
// reduces them to pass/fail pixel counts.
package aggregate

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/vincentlogarzo/archilume/internal/raster"
	"github.com/vincentlogarzo/archilume/internal/region"
)

// ErrNoArtifacts means there was nothing to aggregate: no group had both
// regions and rasters. Fatal to the aggregation stage only.
var ErrNoArtifacts = errors.New("aggregate: no raster artifacts matched any region group")

// ResultRecord is the outcome of evaluating one region against one raster.
type ResultRecord struct {
	Region        string
	Raster        string
	TotalPixels   int
	PassingPixels int
}

// Aggregator runs grouped region×raster classification. Each group is
// CPU-bound numeric work, so groups run on their own workers with their own
// decode caches; nothing decoded is shared across groups.
type Aggregator struct {
	Decode    raster.DecodeFunc
	Threshold float64
	ResultDir string
	Workers   int

	log *zap.Logger
}

func New(decode raster.DecodeFunc, threshold float64, resultDir string, workers int, log *zap.Logger) *Aggregator {
	if workers < 1 {
		workers = 1
	}
	return &Aggregator{
		Decode:    decode,
		Threshold: threshold,
		ResultDir: resultDir,
		Workers:   workers,
		log:       log,
	}
}

// Run evaluates every group concurrently and returns the combined records.
// Malformed rasters are skipped with a warning; a group whose rasters all
// fail to decode simply contributes no records.
func (a *Aggregator) Run(ctx context.Context, groups []Group) ([]ResultRecord, error) {
	work := make([]Group, 0, len(groups))
	for _, g := range groups {
		if len(g.Regions) > 0 && len(g.Rasters) > 0 {
			work = append(work, g)
		}
	}
	if len(work) == 0 {
		return nil, ErrNoArtifacts
	}

	if err := os.MkdirAll(a.ResultDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create result dir: %w", err)
	}

	var mu sync.Mutex
	var records []ResultRecord
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(a.Workers)
	for _, grp := range work {
		grp := grp
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			recs, err := a.processGroup(grp)
			if err != nil {
				return err
			}
			mu.Lock()
			records = append(records, recs...)
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return records, nil
}

// processGroup owns one view group end to end: decode each distinct raster
// exactly once through a group-local cache, rasterize each region polygon
// once, count passing pixels per (region, raster), and write one result
// file per region.
func (a *Aggregator) processGroup(grp Group) ([]ResultRecord, error) {
	cache := raster.NewCache(a.Decode)

	rasters := append([]string(nil), grp.Rasters...)
	sort.Strings(rasters)

	first, err := cache.Get(rasters[0])
	if err != nil {
		a.log.Warn("skipping group: reference raster failed to decode",
			zap.String("view", grp.View), zap.Error(err))
		return nil, nil
	}
	width, height := first.Width, first.Height

	// One rasterization per region, reused against every raster.
	masks := make([][]int, len(grp.Regions))
	for i, r := range grp.Regions {
		masks[i] = region.PixelsInside(r.Points, width, height)
	}

	var records []ResultRecord
	perRegion := make([][]ResultRecord, len(grp.Regions))

	for _, path := range rasters {
		grid, err := cache.Get(path)
		if err != nil {
			a.log.Warn("skipping raster", zap.String("raster", path), zap.Error(err))
			continue
		}
		if grid.Width != width || grid.Height != height {
			a.log.Warn("skipping raster with mismatched resolution",
				zap.String("raster", path),
				zap.Int("width", grid.Width), zap.Int("height", grid.Height))
			continue
		}

		id := filepath.Base(path)
		for i, r := range grp.Regions {
			passing := 0
			for _, idx := range masks[i] {
				if float64(grid.Samples[idx]) > a.Threshold {
					passing++
				}
			}
			rec := ResultRecord{
				Region:        r.Name,
				Raster:        id,
				TotalPixels:   len(masks[i]),
				PassingPixels: passing,
			}
			records = append(records, rec)
			perRegion[i] = append(perRegion[i], rec)
		}
	}

	for i, r := range grp.Regions {
		if len(perRegion[i]) == 0 {
			continue
		}
		if err := WriteResultFile(ResultPath(a.ResultDir, r.Name), len(masks[i]), perRegion[i]); err != nil {
			return nil, err
		}
	}

	a.log.Info("group aggregated",
		zap.String("view", grp.View),
		zap.Int("regions", len(grp.Regions)),
		zap.Int("rasters", len(rasters)),
		zap.Int("decodes", cache.Len()))
	return records, nil
}
