package geometry

import (
	"github.com/pkg/errors"

	"github.com/df07/go-photon-raytracer/pkg/core"
	"github.com/df07/go-photon-raytracer/pkg/material"
)

// MeshObject is a group of primitives sharing one material. Primitives keep a
// back-reference to their mesh so the renderer can look up the material.
type MeshObject struct {
	Name       string
	primitives []Primitive
	material   material.Material
	bbox       core.AABB
}

// NewMeshObject creates an empty mesh with the given material
func NewMeshObject(name string, mat material.Material) *MeshObject {
	return &MeshObject{
		Name:     name,
		material: mat,
		bbox:     core.EmptyAABB(),
	}
}

// AddTriangle attaches a triangle to the mesh
func (m *MeshObject) AddTriangle(t *Triangle) {
	t.mesh = m
	m.add(t)
}

// AddSphere attaches a sphere to the mesh
func (m *MeshObject) AddSphere(s *Sphere) {
	s.mesh = m
	m.add(s)
}

func (m *MeshObject) add(p Primitive) {
	m.primitives = append(m.primitives, p)
	m.bbox = m.bbox.Union(p.BoundingBox())
}

// Primitives returns the mesh primitives
func (m *MeshObject) Primitives() []Primitive {
	return m.primitives
}

// Material returns the mesh material
func (m *MeshObject) Material() material.Material {
	return m.material
}

// SetMaterial replaces the mesh material
func (m *MeshObject) SetMaterial(mat material.Material) {
	m.material = mat
}

// BoundingBox returns the union of the primitive bounds. An empty mesh
// returns an inverted box.
func (m *MeshObject) BoundingBox() core.AABB {
	return m.bbox
}

// NewTriangleMesh creates a mesh from vertices and face indices, each group
// of 3 indices forming a triangle
func NewTriangleMesh(name string, vertices []core.Vec3, faces []int, mat material.Material) (*MeshObject, error) {
	if len(faces)%3 != 0 {
		return nil, errors.Errorf("mesh %q: face index count %d is not a multiple of 3", name, len(faces))
	}

	mesh := NewMeshObject(name, mat)
	for i := 0; i < len(faces); i += 3 {
		for _, idx := range faces[i : i+3] {
			if idx < 0 || idx >= len(vertices) {
				return nil, errors.Errorf("mesh %q: face %d references vertex %d of %d", name, i/3, idx, len(vertices))
			}
		}
		mesh.AddTriangle(NewTriangle(vertices[faces[i]], vertices[faces[i+1]], vertices[faces[i+2]]))
	}
	return mesh, nil
}

// NewQuadMesh creates a parallelogram from a corner and two edge vectors,
// split into two triangles. The face normal is u × v.
func NewQuadMesh(name string, corner, u, v core.Vec3, mat material.Material) *MeshObject {
	mesh := NewMeshObject(name, mat)
	p1 := corner.Add(u)
	p2 := corner.Add(u).Add(v)
	p3 := corner.Add(v)

	t0 := NewTriangle(corner, p1, p2)
	t0.SetVertexUVs(core.NewVec2(0, 0), core.NewVec2(1, 0), core.NewVec2(1, 1))
	t1 := NewTriangle(corner, p2, p3)
	t1.SetVertexUVs(core.NewVec2(0, 0), core.NewVec2(1, 1), core.NewVec2(0, 1))

	mesh.AddTriangle(t0)
	mesh.AddTriangle(t1)
	return mesh
}

// NewBoxMesh creates a box of 12 triangles with the given half-extents and
// Euler rotation (radians, applied X then Y then Z). Faces point outward.
func NewBoxMesh(name string, center, halfSize, rotation core.Vec3, mat material.Material) *MeshObject {
	// The 8 corners of a unit box centered at origin
	corners := [8]core.Vec3{
		core.NewVec3(-1, -1, -1), // 0: left-bottom-back
		core.NewVec3(1, -1, -1),  // 1: right-bottom-back
		core.NewVec3(1, 1, -1),   // 2: right-top-back
		core.NewVec3(-1, 1, -1),  // 3: left-top-back
		core.NewVec3(-1, -1, 1),  // 4: left-bottom-front
		core.NewVec3(1, -1, 1),   // 5: right-bottom-front
		core.NewVec3(1, 1, 1),    // 6: right-top-front
		core.NewVec3(-1, 1, 1),   // 7: left-top-front
	}

	for i := range corners {
		corners[i] = corners[i].MultiplyVec(halfSize).Rotate(rotation).Add(center)
	}

	// Each face as (corner, right, up) so that right × up points outward
	faces := [6][3]int{
		{4, 5, 7}, // front (Z+)
		{1, 0, 2}, // back (Z-)
		{5, 1, 6}, // right (X+)
		{0, 4, 3}, // left (X-)
		{7, 6, 3}, // top (Y+)
		{0, 1, 4}, // bottom (Y-)
	}

	mesh := NewMeshObject(name, mat)
	for _, f := range faces {
		origin := corners[f[0]]
		u := corners[f[1]].Subtract(origin)
		v := corners[f[2]].Subtract(origin)
		quad := NewQuadMesh(name, origin, u, v, mat)
		for _, p := range quad.Primitives() {
			mesh.AddTriangle(p.(*Triangle))
		}
	}
	return mesh
}
