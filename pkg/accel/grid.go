package accel

import (
	"math"

	"github.com/df07/go-photon-raytracer/pkg/core"
	"github.com/df07/go-photon-raytracer/pkg/geometry"
)

// Grid is a uniform grid over the item bounds. An item is stored in every
// cell its bounding box overlaps.
type Grid struct {
	bounds     core.AABB
	resolution [3]int
	cellSize   core.Vec3
	cells      [][]geometry.Intersectable
	count      int
}

// NewGrid builds a uniform grid. The configuration is expected to be valid;
// use New to get it checked.
func NewGrid(items []geometry.Intersectable, config GridConfig) *Grid {
	g := &Grid{resolution: config.Resolution, count: len(items)}
	if len(items) == 0 {
		g.bounds = core.EmptyAABB()
		return g
	}

	// Pad the scene bounds so boundary points land inside a cell
	g.bounds = boundsOf(items).Thicken(boxEpsilon)
	g.bounds = g.bounds.Expand(g.bounds.Size().MaxComponent() * 1e-6)

	size := g.bounds.Size()
	g.cellSize = core.NewVec3(
		size.X/float64(g.resolution[0]),
		size.Y/float64(g.resolution[1]),
		size.Z/float64(g.resolution[2]),
	)
	g.cells = make([][]geometry.Intersectable, g.resolution[0]*g.resolution[1]*g.resolution[2])

	for _, item := range items {
		box := item.BoundingBox()
		if !box.IsValid() {
			continue
		}
		lo := g.cellOf(box.Min)
		hi := g.cellOf(box.Max)
		for z := lo[2]; z <= hi[2]; z++ {
			for y := lo[1]; y <= hi[1]; y++ {
				for x := lo[0]; x <= hi[0]; x++ {
					idx := g.index(x, y, z)
					g.cells[idx] = append(g.cells[idx], item)
				}
			}
		}
	}
	return g
}

// cellOf returns the clamped cell coordinates containing p
func (g *Grid) cellOf(p core.Vec3) [3]int {
	var c [3]int
	for axis := 0; axis < 3; axis++ {
		i := int((p.Axis(axis) - g.bounds.Min.Axis(axis)) / g.cellSize.Axis(axis))
		c[axis] = max(0, min(g.resolution[axis]-1, i))
	}
	return c
}

func (g *Grid) index(x, y, z int) int {
	return (z*g.resolution[1]+y)*g.resolution[0] + x
}

// FindNearestIntersection walks the cells pierced by the ray with a 3D-DDA.
// A hit found in a cell is final once it is no farther than the next cell
// boundary; otherwise a closer item may still live in a later cell.
func (g *Grid) FindNearestIntersection(ray core.Ray, tMin, tMax float64) (geometry.Intersection, bool) {
	if g.count == 0 {
		return geometry.Intersection{}, false
	}
	tMax = ray.Limit(tMax)
	enter, exit, ok := g.bounds.Intersect(ray, tMin, tMax)
	if !ok {
		return geometry.Intersection{}, false
	}

	cell := g.cellOf(ray.At(enter))
	var step [3]int
	var tNext, tDelta [3]float64
	for axis := 0; axis < 3; axis++ {
		d := ray.Direction.Axis(axis)
		switch {
		case d > 0:
			step[axis] = 1
			boundary := g.bounds.Min.Axis(axis) + float64(cell[axis]+1)*g.cellSize.Axis(axis)
			tNext[axis] = (boundary - ray.Origin.Axis(axis)) / d
			tDelta[axis] = g.cellSize.Axis(axis) / d
		case d < 0:
			step[axis] = -1
			boundary := g.bounds.Min.Axis(axis) + float64(cell[axis])*g.cellSize.Axis(axis)
			tNext[axis] = (boundary - ray.Origin.Axis(axis)) / d
			tDelta[axis] = -g.cellSize.Axis(axis) / d
		default:
			// Parallel to this axis: never crosses a boundary
			tNext[axis] = math.Inf(1)
			tDelta[axis] = math.Inf(1)
		}
	}

	var closest geometry.Intersection
	hitAnything := false
	closestSoFar := tMax

	for {
		for _, item := range g.cells[g.index(cell[0], cell[1], cell[2])] {
			if hit, isHit := item.Intersect(ray, tMin, closestSoFar); isHit {
				hitAnything = true
				closestSoFar = hit.T
				closest = hit
			}
		}

		axis := 0
		if tNext[1] < tNext[axis] {
			axis = 1
		}
		if tNext[2] < tNext[axis] {
			axis = 2
		}
		boundary := tNext[axis]

		if hitAnything && closestSoFar <= boundary {
			return closest, true
		}
		if boundary > exit {
			break
		}

		cell[axis] += step[axis]
		if cell[axis] < 0 || cell[axis] >= g.resolution[axis] {
			break
		}
		tNext[axis] += tDelta[axis]
	}
	return closest, hitAnything
}

// BoundingBox returns the padded grid bounds
func (g *Grid) BoundingBox() core.AABB { return g.bounds }

// Kind returns KindGrid
func (g *Grid) Kind() Kind { return KindGrid }

// Resolution returns the number of cells along each axis
func (g *Grid) Resolution() [3]int { return g.resolution }

// GridStats summarizes cell occupancy
type GridStats struct {
	Cells      int
	Occupied   int
	References int
}

// Stats returns cell occupancy statistics
func (g *Grid) Stats() GridStats {
	stats := GridStats{Cells: len(g.cells)}
	for _, cell := range g.cells {
		if len(cell) > 0 {
			stats.Occupied++
			stats.References += len(cell)
		}
	}
	return stats
}
