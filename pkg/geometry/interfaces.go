package geometry

import (
	"github.com/df07/go-photon-raytracer/pkg/core"
)

// Intersection is the result of a nearest-hit query
type Intersection struct {
	T         float64         // Ray parameter of the hit
	Primitive Primitive       // Hit primitive, owned by its mesh
	Transform *core.Transform // Local-to-world transform of the hit object (nil for world-space geometry)
}

// Intersectable is anything an acceleration structure can index
type Intersectable interface {
	Intersect(ray core.Ray, tMin, tMax float64) (Intersection, bool)
	BoundingBox() core.AABB
}

// Primitive is a basic shape belonging to a mesh object
type Primitive interface {
	Intersectable

	// Normal returns the outward unit normal at a point on the surface (local space)
	Normal(point core.Vec3) core.Vec3

	// UV returns texture coordinates at a point on the surface
	UV(point core.Vec3) core.Vec2

	// Mesh returns the owning mesh object, used to look up the material
	Mesh() *MeshObject
}
