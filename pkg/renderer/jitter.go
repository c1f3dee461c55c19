package renderer

import "github.com/df07/go-photon-raytracer/pkg/core"

// JitterSampler places the samples of a pixel on a stratified grid: Nz
// layers of an Nx by Ny grid, one random offset inside each cell
type JitterSampler struct {
	nx, ny, nz int
}

// NewJitterSampler creates a sampler for the given grid; sizes below one are
// treated as one
func NewJitterSampler(grid [3]int) *JitterSampler {
	return &JitterSampler{
		nx: max(1, grid[0]),
		ny: max(1, grid[1]),
		nz: max(1, grid[2]),
	}
}

// SamplesPerPixel returns Nx*Ny*Nz
func (j *JitterSampler) SamplesPerPixel() int {
	return j.nx * j.ny * j.nz
}

// Offsets appends the sub-pixel offsets of one pixel to dst. Every offset is
// in [0, 1) on both axes.
func (j *JitterSampler) Offsets(dst []core.Vec2, sampler core.Sampler) []core.Vec2 {
	cellW := 1.0 / float64(j.nx)
	cellH := 1.0 / float64(j.ny)
	for z := 0; z < j.nz; z++ {
		for y := 0; y < j.ny; y++ {
			for x := 0; x < j.nx; x++ {
				r := sampler.Get2D()
				dst = append(dst, core.NewVec2(
					(float64(x)+r.X)*cellW,
					(float64(y)+r.Y)*cellH,
				))
			}
		}
	}
	return dst
}
