package scene

import (
	"github.com/df07/go-photon-raytracer/pkg/core"
	"github.com/df07/go-photon-raytracer/pkg/geometry"
	"github.com/df07/go-photon-raytracer/pkg/material"
)

// IntersectionState is the per-ray record filled in by Scene.Trace and
// consumed by shading. The primitive is owned by the scene geometry.
type IntersectionState struct {
	Ray       core.Ray
	T         float64
	Primitive geometry.Primitive
	Transform *core.Transform

	CurrentIOR                 float64
	RemainingReflectionBounces int
	RemainingRefractionBounces int

	normal         core.Vec3
	normalComputed bool
}

// NewIntersectionState creates a state in air with the given bounce budgets
func NewIntersectionState(reflectionBounces, refractionBounces int) IntersectionState {
	return IntersectionState{
		CurrentIOR:                 1.0,
		RemainingReflectionBounces: reflectionBounces,
		RemainingRefractionBounces: refractionBounces,
	}
}

// HasIntersection reports whether the state holds a hit
func (s *IntersectionState) HasIntersection() bool {
	return s.Primitive != nil
}

// Point returns the world-space hit point
func (s *IntersectionState) Point() core.Vec3 {
	return s.Ray.At(s.T)
}

// ComputeNormal returns the outward world-space surface normal at the hit,
// computing it on first use
func (s *IntersectionState) ComputeNormal() core.Vec3 {
	if s.normalComputed {
		return s.normal
	}
	if s.Transform == nil {
		s.normal = s.Primitive.Normal(s.Point())
	} else {
		local := s.Transform.PointToLocal(s.Point())
		s.normal = s.Transform.NormalToWorld(s.Primitive.Normal(local))
	}
	s.normalComputed = true
	return s.normal
}

// UV returns the texture coordinates of the hit
func (s *IntersectionState) UV() core.Vec2 {
	if s.Transform == nil {
		return s.Primitive.UV(s.Point())
	}
	return s.Primitive.UV(s.Transform.PointToLocal(s.Point()))
}

// Material returns the material of the hit primitive's mesh, or nil
func (s *IntersectionState) Material() material.Material {
	mesh := s.Primitive.Mesh()
	if mesh == nil {
		return nil
	}
	return mesh.Material()
}

// set records a hit, invalidating the cached normal
func (s *IntersectionState) set(ray core.Ray, hit geometry.Intersection) {
	s.Ray = ray
	s.T = hit.T
	s.Primitive = hit.Primitive
	s.Transform = hit.Transform
	s.normalComputed = false
}
