package core

import "math"

const (
	// SmallEpsilon is the minimum accepted hit distance along a ray
	SmallEpsilon = 1e-6

	// LargeEpsilon offsets secondary ray origins off the surface they leave
	LargeEpsilon = 1e-4
)

// Ray represents a ray with an origin, a unit direction and an optional
// maximum distance (MaxT is +Inf for unbounded rays).
type Ray struct {
	Origin    Vec3
	Direction Vec3
	MaxT      float64
}

// NewRay creates an unbounded ray; the direction is normalized
func NewRay(origin, direction Vec3) Ray {
	return Ray{Origin: origin, Direction: direction.Normalize(), MaxT: math.Inf(1)}
}

// NewBoundedRay creates a ray that only reports hits closer than maxT
func NewBoundedRay(origin, direction Vec3, maxT float64) Ray {
	return Ray{Origin: origin, Direction: direction.Normalize(), MaxT: maxT}
}

// At returns the point at parameter t along the ray
func (r Ray) At(t float64) Vec3 {
	return r.Origin.Add(r.Direction.Multiply(t))
}

// SetPosition moves the ray origin
func (r *Ray) SetPosition(origin Vec3) {
	r.Origin = origin
}

// SetDirection replaces the direction, normalizing it
func (r *Ray) SetDirection(direction Vec3) {
	r.Direction = direction.Normalize()
}

// Limit returns the smaller of tMax and the ray's own maximum distance
func (r Ray) Limit(tMax float64) float64 {
	if r.MaxT > 0 && r.MaxT < tMax {
		return r.MaxT
	}
	return tMax
}
