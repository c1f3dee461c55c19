package geometry

import (
	"testing"

	"github.com/df07/go-photon-raytracer/pkg/core"
	"github.com/df07/go-photon-raytracer/pkg/material"
)

func TestNewTriangleMesh(t *testing.T) {
	mat := material.NewDiffuse(core.NewVec3(0.5, 0.5, 0.5))
	vertices := []core.Vec3{
		core.NewVec3(0, 0, 0),
		core.NewVec3(1, 0, 0),
		core.NewVec3(1, 1, 0),
		core.NewVec3(0, 1, 0),
	}

	tests := []struct {
		name      string
		faces     []int
		wantErr   bool
		wantCount int
	}{
		{name: "two triangles", faces: []int{0, 1, 2, 0, 2, 3}, wantCount: 2},
		{name: "empty", faces: nil, wantCount: 0},
		{name: "partial face", faces: []int{0, 1}, wantErr: true},
		{name: "index out of range", faces: []int{0, 1, 4}, wantErr: true},
		{name: "negative index", faces: []int{0, -1, 2}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mesh, err := NewTriangleMesh("quad", vertices, tt.faces, mat)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Expected error=%v, got %v", tt.wantErr, err)
			}
			if tt.wantErr {
				return
			}
			if len(mesh.Primitives()) != tt.wantCount {
				t.Errorf("Expected %d primitives, got %d", tt.wantCount, len(mesh.Primitives()))
			}
			for _, p := range mesh.Primitives() {
				if p.Mesh() != mesh {
					t.Error("Primitive does not reference its mesh")
				}
			}
			if mesh.Material() != mat {
				t.Error("Mesh material not set")
			}
		})
	}
}

func TestNewQuadMesh_NormalAndBounds(t *testing.T) {
	quad := NewQuadMesh("floor", core.NewVec3(-0.5, -0.5, 0), core.NewVec3(1, 0, 0), core.NewVec3(0, 1, 0), nil)

	if len(quad.Primitives()) != 2 {
		t.Fatalf("Expected 2 triangles, got %d", len(quad.Primitives()))
	}
	for _, p := range quad.Primitives() {
		if n := p.Normal(core.Vec3{}); n != core.NewVec3(0, 0, 1) {
			t.Errorf("Expected normal +Z, got %v", n)
		}
	}

	bbox := quad.BoundingBox()
	if bbox.Min != core.NewVec3(-0.5, -0.5, 0) || bbox.Max != core.NewVec3(0.5, 0.5, 0) {
		t.Errorf("Unexpected bounds %v", bbox)
	}

	// Center ray from above must hit
	ray := core.NewRay(core.NewVec3(0, 0, 5), core.NewVec3(0, 0, -1))
	hits := 0
	for _, p := range quad.Primitives() {
		if _, ok := p.Intersect(ray, core.SmallEpsilon, ray.MaxT); ok {
			hits++
		}
	}
	if hits == 0 {
		t.Error("Expected the center ray to hit the quad")
	}
}

func TestNewBoxMesh_OutwardNormals(t *testing.T) {
	center := core.NewVec3(1, 2, 3)
	box := NewBoxMesh("box", center, core.NewVec3(1, 0.5, 2), core.NewVec3(0, 0.3, 0), nil)

	if len(box.Primitives()) != 12 {
		t.Fatalf("Expected 12 triangles, got %d", len(box.Primitives()))
	}

	for i, p := range box.Primitives() {
		tri := p.(*Triangle)
		faceCenter := tri.V0.Add(tri.V1).Add(tri.V2).Multiply(1.0 / 3.0)
		outward := faceCenter.Subtract(center)
		if tri.Normal(faceCenter).Dot(outward) <= 0 {
			t.Errorf("Triangle %d normal %v points inward", i, tri.Normal(faceCenter))
		}
	}
}
