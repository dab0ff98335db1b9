package model

import "strconv"

// RenderParams holds the rpict sampling parameters for one render quality
// preset. Zero-valued ambient-interpolation fields (AA, PT, PJ, DJ, LR) are
// omitted from the argument list, matching the direct-sun command shape.
type RenderParams struct {
	AA float64 // ambient accuracy
	AB int     // ambient bounces
	AD int     // ambient divisions
	AR int     // ambient resolution
	AS int     // ambient samples
	PS int     // pixel sample spacing
	PT float64 // pixel threshold
	PJ float64 // pixel jitter
	DJ float64 // direct jitter
	LR int     // limit reflection
	LW float64 // limit weight
	// Irradiance switches rpict to irradiance output, which limits blown-out
	// contrast in deep interior renders.
	Irradiance bool
}

// OvertureParams is the low-resolution ambient-file warming preset.
func OvertureParams() RenderParams {
	return RenderParams{
		AA: 0.1, AB: 1, AD: 2048, AR: 1024, AS: 512,
		PS: 4, PT: 0.05, PJ: 1, DJ: 0.7, LR: 12, LW: 0.002,
		Irradiance: true,
	}
}

// IndirectParams is the medium-quality diffuse render preset, reusing the
// ambient file produced by an overture pass.
func IndirectParams() RenderParams {
	return RenderParams{
		AA: 0.1, AB: 1, AD: 4096, AR: 1024, AS: 1024,
		PS: 4, PT: 0.05, PJ: 1, DJ: 0.7, LR: 12, LW: 0.002,
		Irradiance: true,
	}
}

// DirectSunParams is the zero-bounce preset for direct solar renders.
func DirectSunParams() RenderParams {
	return RenderParams{AB: 0, AD: 128, AR: 64, AS: 64, PS: 2, LW: 0.005}
}

func (p RenderParams) args() []string {
	var a []string
	if p.AA > 0 {
		a = append(a, "-aa", ftoa(p.AA))
	}
	a = append(a,
		"-ab", strconv.Itoa(p.AB),
		"-ad", strconv.Itoa(p.AD),
		"-ar", strconv.Itoa(p.AR),
		"-as", strconv.Itoa(p.AS),
		"-ps", strconv.Itoa(p.PS),
	)
	if p.PT > 0 {
		a = append(a, "-pt", ftoa(p.PT))
	}
	if p.PJ > 0 {
		a = append(a, "-pj", ftoa(p.PJ))
	}
	if p.DJ > 0 {
		a = append(a, "-dj", ftoa(p.DJ))
	}
	if p.LR > 0 {
		a = append(a, "-lr", strconv.Itoa(p.LR))
	}
	a = append(a, "-lw", ftoa(p.LW))
	if p.Irradiance {
		a = append(a, "-i")
	}
	return a
}

func ftoa(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}

// CompileSpec combines a frozen scene octree with a sky description into a
// renderable octree (oconv).
type CompileSpec struct {
	SceneOctree string
	SkyFile     string
	Output      string
}

func (s CompileSpec) Invocation() Invocation {
	return Invocation{
		Program: "oconv",
		Args:    []string{"-i", s.SceneOctree, s.SkyFile},
		Stdout:  s.Output,
	}
}

// WarmSpec runs a low-resolution rpict pass whose only durable product is
// the ambient cache file named by -af.
type WarmSpec struct {
	ViewFile    string
	Octree      string
	AmbientFile string
	XRes, YRes  int
	Params      RenderParams
}

func (s WarmSpec) Invocation() Invocation {
	args := []string{"-w", "-t", "2", "-vf", s.ViewFile,
		"-x", strconv.Itoa(s.XRes), "-y", strconv.Itoa(s.YRes)}
	args = append(args, s.Params.args()...)
	args = append(args, "-af", s.AmbientFile, s.Octree)
	return Invocation{Program: "rpict", Args: args}
}

// RenderSpec runs a full-resolution rpict pass producing an HDR image.
// AmbientFile is empty for direct-sun renders.
type RenderSpec struct {
	ViewFile    string
	Octree      string
	AmbientFile string
	Output      string
	XRes, YRes  int
	Params      RenderParams
}

func (s RenderSpec) Invocation() Invocation {
	args := []string{"-w", "-t", "2", "-vf", s.ViewFile,
		"-x", strconv.Itoa(s.XRes), "-y", strconv.Itoa(s.YRes)}
	args = append(args, s.Params.args()...)
	if s.AmbientFile != "" {
		args = append(args, "-af", s.AmbientFile)
	}
	args = append(args, s.Octree)
	return Invocation{Program: "rpict", Args: args, Stdout: s.Output}
}

// CompositeSpec adds the indirect and direct HDR images channel-wise (pcomb).
type CompositeSpec struct {
	IndirectHDR string
	DirectHDR   string
	Output      string
}

func (s CompositeSpec) Invocation() Invocation {
	return Invocation{
		Program: "pcomb",
		Args: []string{
			"-e", "ro=ri(1)+ri(2); go=gi(1)+gi(2); bo=bi(1)+bi(2)",
			s.IndirectHDR, s.DirectHDR,
		},
		Stdout: s.Output,
	}
}

// ConvertSpec converts a combined HDR image to TIFF with a fixed exposure
// adjustment (ra_tiff writes the output file itself).
type ConvertSpec struct {
	Input    string
	Output   string
	Exposure int
}

func (s ConvertSpec) Invocation() Invocation {
	return Invocation{
		Program: "ra_tiff",
		Args:    []string{"-e", strconv.Itoa(s.Exposure), s.Input, s.Output},
	}
}
