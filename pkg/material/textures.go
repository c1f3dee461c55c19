package material

import (
	"math"

	"github.com/df07/go-photon-raytracer/pkg/core"
)

// ColorSource modulates a material color at a surface point. Image textures
// read uv; solid textures read the object-space point.
type ColorSource interface {
	Evaluate(uv core.Vec2, point core.Vec3) core.Vec3
}

// SolidColor is a constant color source
type SolidColor struct {
	Color core.Vec3
}

// NewSolidColor creates a constant color source
func NewSolidColor(color core.Vec3) *SolidColor {
	return &SolidColor{Color: color}
}

func (s *SolidColor) Evaluate(uv core.Vec2, point core.Vec3) core.Vec3 {
	return s.Color
}

// CheckerTexture alternates two colors. In UV space the unit square holds
// Checks×Checks squares; in solid mode the checks are cubes of edge Size in
// object space, so the pattern does not depend on the mesh parameterization.
type CheckerTexture struct {
	Even, Odd core.Vec3
	Checks    int     // UV mode: squares per unit edge
	Size      float64 // Solid mode: cube edge length; 0 selects UV mode
}

// NewUVChecker creates a checker over texture coordinates
func NewUVChecker(checks int, even, odd core.Vec3) *CheckerTexture {
	return &CheckerTexture{Even: even, Odd: odd, Checks: max(checks, 1)}
}

// NewSolidChecker creates an object-space 3D checker
func NewSolidChecker(size float64, even, odd core.Vec3) *CheckerTexture {
	return &CheckerTexture{Even: even, Odd: odd, Size: size}
}

func (c *CheckerTexture) Evaluate(uv core.Vec2, point core.Vec3) core.Vec3 {
	var parity int
	if c.Size > 0 {
		parity = cell(point.X/c.Size) + cell(point.Y/c.Size) + cell(point.Z/c.Size)
	} else {
		n := float64(c.Checks)
		parity = cell(uv.X*n) + cell(uv.Y*n)
	}
	if parity&1 == 0 {
		return c.Even
	}
	return c.Odd
}

func cell(x float64) int {
	return int(math.Floor(x))
}
