package core

import (
	"math"
	"testing"
)

func TestAABB_Intersect(t *testing.T) {
	box := NewAABB(NewVec3(-1, -1, -1), NewVec3(1, 1, 1))

	tests := []struct {
		name      string
		ray       Ray
		expectHit bool
		enter     float64
	}{
		{"straight on", NewRay(NewVec3(0, 0, 5), NewVec3(0, 0, -1)), true, 4},
		{"miss", NewRay(NewVec3(3, 0, 5), NewVec3(0, 0, -1)), false, 0},
		{"origin inside", NewRay(NewVec3(0, 0, 0), NewVec3(1, 0, 0)), true, 0},
		{"pointing away", NewRay(NewVec3(0, 0, 5), NewVec3(0, 0, 1)), false, 0},
		{"parallel inside slab", NewRay(NewVec3(-5, 0.5, 0.5), NewVec3(1, 0, 0)), true, 4},
		{"parallel outside slab", NewRay(NewVec3(-5, 1.5, 0.5), NewVec3(1, 0, 0)), false, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			enter, _, ok := box.Intersect(tt.ray, 0, math.Inf(1))
			if ok != tt.expectHit {
				t.Fatalf("Expected hit=%v, got %v", tt.expectHit, ok)
			}
			if ok && math.Abs(enter-tt.enter) > 1e-9 {
				t.Errorf("Expected entry %f, got %f", tt.enter, enter)
			}
		})
	}
}

func TestAABB_ThickenDegenerate(t *testing.T) {
	// A flat box in the z=0 plane
	flat := NewAABB(NewVec3(-1, -1, 0), NewVec3(1, 1, 0))
	thick := flat.Thicken(1e-4)

	if thick.Size().Z <= 0 {
		t.Fatalf("Expected thickened Z extent, got %v", thick.Size())
	}
	if thick.Size().X != 2 {
		t.Errorf("Thicken should leave non-degenerate axes alone, got %v", thick.Size())
	}

	ray := NewRay(NewVec3(0.2, 0.3, 1), NewVec3(0, 0, -1))
	if !thick.Hit(ray, 0, math.Inf(1)) {
		t.Error("Expected ray to hit thickened flat box")
	}
}

func TestAABB_UnionWithEmpty(t *testing.T) {
	box := NewAABB(NewVec3(1, 2, 3), NewVec3(4, 5, 6))
	union := EmptyAABB().Union(box)
	if union != box {
		t.Errorf("Expected %v, got %v", box, union)
	}
	if EmptyAABB().IsValid() {
		t.Error("Empty box should not be valid")
	}
}
