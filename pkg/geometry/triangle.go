package geometry

import (
	"github.com/df07/go-photon-raytracer/pkg/core"
)

// Triangle represents a single triangle defined by three vertices
type Triangle struct {
	V0, V1, V2 core.Vec3 // The three vertices

	normals *[3]core.Vec3 // Optional per-vertex normals
	uvs     *[3]core.Vec2 // Optional per-vertex texture coordinates
	normal  core.Vec3     // Cached face normal
	bbox    core.AABB     // Cached bounding box
	mesh    *MeshObject   // Owning mesh (lookup only)
}

// NewTriangle creates a new triangle from three vertices
func NewTriangle(v0, v1, v2 core.Vec3) *Triangle {
	t := &Triangle{
		V0: v0,
		V1: v1,
		V2: v2,
	}

	// Precompute normal and bounding box for efficiency
	t.normal = v1.Subtract(v0).Cross(v2.Subtract(v0)).Normalize()
	t.bbox = core.NewAABBFromPoints(v0, v1, v2)

	return t
}

// SetVertexNormals enables smooth shading with per-vertex normals
func (t *Triangle) SetVertexNormals(n0, n1, n2 core.Vec3) {
	t.normals = &[3]core.Vec3{n0.Normalize(), n1.Normalize(), n2.Normalize()}
}

// SetVertexUVs sets per-vertex texture coordinates
func (t *Triangle) SetVertexUVs(uv0, uv1, uv2 core.Vec2) {
	t.uvs = &[3]core.Vec2{uv0, uv1, uv2}
}

// Intersect tests if a ray intersects with the triangle using the Möller-Trumbore algorithm.
// Degenerate (zero-area) triangles never report a hit.
func (t *Triangle) Intersect(ray core.Ray, tMin, tMax float64) (Intersection, bool) {
	const epsilon = 1e-12

	// Calculate two edge vectors
	edge1 := t.V1.Subtract(t.V0)
	edge2 := t.V2.Subtract(t.V0)

	// Calculate determinant
	h := ray.Direction.Cross(edge2)
	a := edge1.Dot(h)

	// If determinant is near zero, ray lies in plane of triangle
	if a > -epsilon && a < epsilon {
		return Intersection{}, false
	}

	f := 1.0 / a
	s := ray.Origin.Subtract(t.V0)
	u := f * s.Dot(h)

	// Check if intersection is outside triangle
	if u < 0.0 || u > 1.0 {
		return Intersection{}, false
	}

	q := s.Cross(edge1)
	v := f * ray.Direction.Dot(q)

	// Check if intersection is outside triangle
	if v < 0.0 || u+v > 1.0 {
		return Intersection{}, false
	}

	// Calculate t parameter
	tParam := f * edge2.Dot(q)

	// Check if intersection is within valid range
	if tParam < tMin || tParam > tMax {
		return Intersection{}, false
	}

	return Intersection{T: tParam, Primitive: t}, true
}

// barycentric returns the weights of V0, V1, V2 at a point in the triangle plane
func (t *Triangle) barycentric(p core.Vec3) (float64, float64, float64) {
	e0 := t.V1.Subtract(t.V0)
	e1 := t.V2.Subtract(t.V0)
	e2 := p.Subtract(t.V0)

	d00 := e0.Dot(e0)
	d01 := e0.Dot(e1)
	d11 := e1.Dot(e1)
	d20 := e2.Dot(e0)
	d21 := e2.Dot(e1)

	denom := d00*d11 - d01*d01
	if denom == 0 {
		return 1, 0, 0
	}
	v := (d11*d20 - d01*d21) / denom
	w := (d00*d21 - d01*d20) / denom
	return 1 - v - w, v, w
}

// Normal returns the interpolated vertex normal, or the face normal
func (t *Triangle) Normal(point core.Vec3) core.Vec3 {
	if t.normals == nil {
		return t.normal
	}
	a, b, c := t.barycentric(point)
	return t.normals[0].Multiply(a).Add(t.normals[1].Multiply(b)).Add(t.normals[2].Multiply(c)).Normalize()
}

// UV returns the interpolated texture coordinates (barycentric if none were set)
func (t *Triangle) UV(point core.Vec3) core.Vec2 {
	_, b, c := t.barycentric(point)
	if t.uvs == nil {
		return core.NewVec2(b, c)
	}
	a := 1 - b - c
	return core.NewVec2(
		t.uvs[0].X*a+t.uvs[1].X*b+t.uvs[2].X*c,
		t.uvs[0].Y*a+t.uvs[1].Y*b+t.uvs[2].Y*c,
	)
}

// BoundingBox returns the axis-aligned bounding box for this triangle
func (t *Triangle) BoundingBox() core.AABB {
	return t.bbox
}

// Mesh returns the owning mesh object
func (t *Triangle) Mesh() *MeshObject {
	return t.mesh
}

// Area returns the triangle's surface area
func (t *Triangle) Area() float64 {
	return t.V1.Subtract(t.V0).Cross(t.V2.Subtract(t.V0)).Length() * 0.5
}
