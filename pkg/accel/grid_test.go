package accel

import (
	"testing"

	"github.com/df07/go-photon-raytracer/pkg/core"
	"github.com/df07/go-photon-raytracer/pkg/geometry"
)

func TestGrid_LargeItemSpansCells(t *testing.T) {
	// A large triangle spanning most of the grid plus a small one
	big := geometry.NewTriangle(core.NewVec3(0, 0, 0), core.NewVec3(10, 0, 0), core.NewVec3(0, 10, 0))
	small := geometry.NewTriangle(core.NewVec3(9, 9, 5), core.NewVec3(10, 9, 5), core.NewVec3(10, 10, 5))
	grid := NewGrid([]geometry.Intersectable{big, small}, GridConfig{Resolution: [3]int{4, 4, 4}})

	stats := grid.Stats()
	if stats.Cells != 64 {
		t.Errorf("Expected 64 cells, got %d", stats.Cells)
	}
	if stats.References <= 2 {
		t.Errorf("Expected the large triangle to occupy several cells, got %d references", stats.References)
	}

	// Grid bounds contain every item
	for _, item := range []geometry.Intersectable{big, small} {
		if !containsBox(grid.BoundingBox(), item.BoundingBox()) {
			t.Errorf("Grid bounds %v do not contain %v", grid.BoundingBox(), item.BoundingBox())
		}
	}
}

func TestGrid_CellsOverlapTheirItems(t *testing.T) {
	items := mockItems(40)
	grid := NewGrid(items, GridConfig{Resolution: [3]int{3, 5, 4}})

	res := grid.Resolution()
	if res != [3]int{3, 5, 4} {
		t.Fatalf("Expected resolution [3 5 4], got %v", res)
	}

	seen := make(map[geometry.Intersectable]bool)
	for z := 0; z < res[2]; z++ {
		for y := 0; y < res[1]; y++ {
			for x := 0; x < res[0]; x++ {
				cell := grid.cellBounds(x, y, z).Expand(1e-9)
				for _, item := range grid.cells[grid.index(x, y, z)] {
					seen[item] = true
					if !cell.Overlaps(item.BoundingBox()) {
						t.Errorf("Cell (%d,%d,%d) %v holds disjoint item %v", x, y, z, cell, item.BoundingBox())
					}
				}
			}
		}
	}
	if len(seen) != len(items) {
		t.Errorf("Expected every item in some cell, found %d of %d", len(seen), len(items))
	}

	// A box far outside the grid overlaps no cell
	outside := core.AABB{Min: core.NewVec3(1000, 1000, 1000), Max: core.NewVec3(1001, 1001, 1001)}
	if grid.BoundingBox().Overlaps(outside) {
		t.Errorf("Expected %v to miss the grid bounds %v", outside, grid.BoundingBox())
	}
}

func (g *Grid) cellBounds(x, y, z int) core.AABB {
	lo := g.bounds.Min.Add(core.NewVec3(float64(x)*g.cellSize.X, float64(y)*g.cellSize.Y, float64(z)*g.cellSize.Z))
	return core.AABB{Min: lo, Max: lo.Add(g.cellSize)}
}

func TestGrid_HitBeyondCurrentCellIsDeferred(t *testing.T) {
	// The slanted triangle is registered in the first cell the ray visits,
	// but its hit lies beyond a closer triangle in a later cell
	slanted := geometry.NewTriangle(core.NewVec3(0, -1, 0), core.NewVec3(0, 1, 0), core.NewVec3(10, 0, 10))
	closer := geometry.NewTriangle(core.NewVec3(3, -1, -1), core.NewVec3(3, 1, -1), core.NewVec3(3, 0, 11))
	items := []geometry.Intersectable{slanted, closer}
	grid := NewGrid(items, GridConfig{Resolution: [3]int{5, 1, 5}})
	linear := NewLinear(items)

	ray := core.NewRay(core.NewVec3(-1, 0, 8), core.NewVec3(1, 0, 0))
	want, wantOK := linear.FindNearestIntersection(ray, core.SmallEpsilon, ray.MaxT)
	got, gotOK := grid.FindNearestIntersection(ray, core.SmallEpsilon, ray.MaxT)
	if !wantOK || !gotOK {
		t.Fatalf("Expected hits, linear=%v grid=%v", wantOK, gotOK)
	}
	if got.Primitive != want.Primitive {
		t.Errorf("Grid returned t=%f, linear t=%f", got.T, want.T)
	}
}
