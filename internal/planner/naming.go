package planner

import (
	"path/filepath"
	"strings"
)

// Output naming is a fixed contract: every path below is a pure function of
// (base name, condition id, viewpoint id, phase). The idempotent filter
// relies on replanning producing byte-identical paths.

// BaseName derives the scene base name from the frozen (skyless) octree path.
func BaseName(sceneOctree string) string {
	stem := strings.TrimSuffix(filepath.Base(sceneOctree), filepath.Ext(sceneOctree))
	return strings.TrimSuffix(stem, "_skyless")
}

// CompiledOctree is the octree holding the scene plus one sky description.
func CompiledOctree(octreeDir, base, condID string) string {
	return filepath.Join(octreeDir, base+"_"+condID+".oct")
}

// StagingOctree is the per-condition working copy of the scene octree that
// oconv reads while compiling; staged before the phase and deleted after.
func StagingOctree(octreeDir, base, condID string) string {
	return filepath.Join(octreeDir, base+"_"+condID+"_temp.oct")
}

// AmbientFile is the ambient cache shared by the overture and indirect
// render passes of one viewpoint.
func AmbientFile(imageDir, base, viewID, overcastID string) string {
	return filepath.Join(imageDir, base+"_"+viewID+"__"+overcastID+".amb")
}

// IndirectHDR is the diffuse render of one viewpoint under the overcast sky.
// The double underscore keeps it out of the per-condition namespace.
func IndirectHDR(imageDir, base, viewID, overcastID string) string {
	return filepath.Join(imageDir, base+"_"+viewID+"__"+overcastID+".hdr")
}

// DirectHDR is the direct-sun render of one condition from one viewpoint.
func DirectHDR(imageDir, base, viewID, condID string) string {
	return filepath.Join(imageDir, base+"_"+viewID+"_"+condID+".hdr")
}

// CombinedHDR is the composite of the indirect and direct renders.
func CombinedHDR(imageDir, base, viewID, condID string) string {
	return filepath.Join(imageDir, base+"_"+viewID+"_"+condID+"_combined.hdr")
}

// ConvertedTIFF is the displayable conversion of a combined HDR.
func ConvertedTIFF(imageDir, base, viewID, condID string) string {
	return filepath.Join(imageDir, base+"_"+viewID+"_"+condID+"_combined.tiff")
}
