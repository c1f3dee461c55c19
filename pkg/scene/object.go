package scene

import (
	"github.com/pkg/errors"

	"github.com/df07/go-photon-raytracer/pkg/accel"
	"github.com/df07/go-photon-raytracer/pkg/core"
	"github.com/df07/go-photon-raytracer/pkg/geometry"
)

// SceneObject places a group of meshes in the world. Its primitives are
// indexed in object space; rays are moved into that space for queries.
type SceneObject struct {
	Name      string
	Transform core.Transform

	meshes      []*geometry.MeshObject
	structure   accel.Structure
	worldBounds core.AABB
}

// NewSceneObject creates an empty object with the identity transform
func NewSceneObject(name string, meshes ...*geometry.MeshObject) *SceneObject {
	return &SceneObject{
		Name:        name,
		Transform:   core.NewTransform(),
		meshes:      meshes,
		worldBounds: core.EmptyAABB(),
	}
}

// AddMeshObject appends a mesh to the object
func (o *SceneObject) AddMeshObject(mesh *geometry.MeshObject) {
	o.meshes = append(o.meshes, mesh)
}

// MeshObjects returns the object's meshes
func (o *SceneObject) MeshObjects() []*geometry.MeshObject {
	return o.meshes
}

// PrimitiveCount returns the number of primitives across all meshes
func (o *SceneObject) PrimitiveCount() int {
	count := 0
	for _, mesh := range o.meshes {
		count += len(mesh.Primitives())
	}
	return count
}

// CreateAccelerationData indexes the object's primitives. The transform must
// be final before this is called; world bounds are derived from it.
func (o *SceneObject) CreateAccelerationData(kind accel.Kind, cfg accel.Config) error {
	items := make([]geometry.Intersectable, 0, o.PrimitiveCount())
	for _, mesh := range o.meshes {
		for _, primitive := range mesh.Primitives() {
			items = append(items, primitive)
		}
	}

	structure, err := accel.New(kind, items, cfg)
	if err != nil {
		return errors.Wrapf(err, "object %q", o.Name)
	}
	o.structure = structure

	o.worldBounds = core.EmptyAABB()
	if local := structure.BoundingBox(); local.IsValid() {
		o.worldBounds = o.Transform.BoundsToWorld(local)
	}
	return nil
}

// Intersect finds the nearest primitive hit of a world-space ray. The hit
// records the object transform so the normal can be brought back to world
// space.
func (o *SceneObject) Intersect(ray core.Ray, tMin, tMax float64) (geometry.Intersection, bool) {
	if o.structure == nil {
		return geometry.Intersection{}, false
	}
	hit, ok := o.structure.FindNearestIntersection(o.Transform.RayToLocal(ray), tMin, tMax)
	if !ok {
		return geometry.Intersection{}, false
	}
	hit.Transform = &o.Transform
	return hit, true
}

// BoundingBox returns the world-space bounds computed by CreateAccelerationData
func (o *SceneObject) BoundingBox() core.AABB {
	return o.worldBounds
}

// Structure returns the object's acceleration structure, or nil before
// CreateAccelerationData
func (o *SceneObject) Structure() accel.Structure {
	return o.structure
}
