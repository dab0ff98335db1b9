package aggregate

import (
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/vincentlogarzo/archilume/internal/artifact"
	"github.com/vincentlogarzo/archilume/internal/region"
)

// Group associates the regions and raster artifacts that share one owning
// view. Groups are evaluated independently; pixel coordinates only make
// sense against rasters framed by the same viewpoint.
type Group struct {
	View    string
	Regions []*region.Region
	Rasters []string
}

// GroupByView buckets regions by their owning view and matches raster
// artifacts whose base name contains that view identifier. Regions whose
// result file already exists in resultDir are skipped; rasters matching no
// group are dropped with a warning.
func GroupByView(regions []*region.Region, rasters []string, resultDir string, log *zap.Logger) []Group {
	byView := make(map[string]*Group)
	var order []string

	skipped := 0
	for _, r := range regions {
		if artifact.Exists(ResultPath(resultDir, r.Name)) {
			skipped++
			continue
		}
		g, ok := byView[r.View]
		if !ok {
			g = &Group{View: r.View}
			byView[r.View] = g
			order = append(order, r.View)
		}
		g.Regions = append(g.Regions, r)
	}
	if skipped > 0 {
		log.Info("skipping regions with existing results", zap.Int("count", skipped))
	}

	for _, path := range rasters {
		base := filepath.Base(path)
		matched := false
		for _, view := range order {
			if strings.Contains(base, view) {
				byView[view].Rasters = append(byView[view].Rasters, path)
				matched = true
				break
			}
		}
		if !matched {
			log.Warn("raster matches no view group", zap.String("raster", base))
		}
	}

	groups := make([]Group, 0, len(order))
	for _, view := range order {
		groups = append(groups, *byView[view])
	}
	return groups
}
