package core

import "math"

// Mat3 is a row-major 3x3 matrix used for object rotations
type Mat3 [3][3]float64

// Identity3 returns the identity matrix
func Identity3() Mat3 {
	return Mat3{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}}
}

// AxisAngle returns the rotation of angle radians about axis (Rodrigues)
func AxisAngle(axis Vec3, angle float64) Mat3 {
	a := axis.Normalize()
	c, s := math.Cos(angle), math.Sin(angle)
	t := 1 - c
	return Mat3{
		{t*a.X*a.X + c, t*a.X*a.Y - s*a.Z, t*a.X*a.Z + s*a.Y},
		{t*a.X*a.Y + s*a.Z, t*a.Y*a.Y + c, t*a.Y*a.Z - s*a.X},
		{t*a.X*a.Z - s*a.Y, t*a.Y*a.Z + s*a.X, t*a.Z*a.Z + c},
	}
}

// Mul returns m * other
func (m Mat3) Mul(other Mat3) Mat3 {
	var out Mat3
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			out[i][j] = m[i][0]*other[0][j] + m[i][1]*other[1][j] + m[i][2]*other[2][j]
		}
	}
	return out
}

// Transpose returns the transposed matrix (the inverse of a rotation)
func (m Mat3) Transpose() Mat3 {
	return Mat3{
		{m[0][0], m[1][0], m[2][0]},
		{m[0][1], m[1][1], m[2][1]},
		{m[0][2], m[1][2], m[2][2]},
	}
}

// Apply returns m * v
func (m Mat3) Apply(v Vec3) Vec3 {
	return Vec3{
		X: m[0][0]*v.X + m[0][1]*v.Y + m[0][2]*v.Z,
		Y: m[1][0]*v.X + m[1][1]*v.Y + m[1][2]*v.Z,
		Z: m[2][0]*v.X + m[2][1]*v.Y + m[2][2]*v.Z,
	}
}

// Transform places an object in the world: uniform scale, then rotation,
// then translation. Only similarity transforms are supported so that ray
// parameters are identical in local and world space.
type Transform struct {
	rotation    Mat3
	inverse     Mat3
	translation Vec3
	scale       float64
}

// NewTransform returns the identity transform
func NewTransform() Transform {
	return Transform{rotation: Identity3(), inverse: Identity3(), scale: 1}
}

// Rotate applies an additional world-space rotation about axis
func (t *Transform) Rotate(axis Vec3, angle float64) {
	t.rotation = AxisAngle(axis, angle).Mul(t.rotation)
	t.inverse = t.rotation.Transpose()
}

// Translate moves the object by offset
func (t *Transform) Translate(offset Vec3) {
	t.translation = t.translation.Add(offset)
}

// MultScale multiplies the uniform scale; non-positive factors are ignored
func (t *Transform) MultScale(factor float64) {
	if factor > 0 {
		t.scale *= factor
	}
}

// Position returns the world-space translation
func (t Transform) Position() Vec3 {
	return t.translation
}

// PointToWorld maps a local point into world space
func (t Transform) PointToWorld(p Vec3) Vec3 {
	return t.rotation.Apply(p.Multiply(t.scale)).Add(t.translation)
}

// PointToLocal maps a world point into local space
func (t Transform) PointToLocal(p Vec3) Vec3 {
	return t.inverse.Apply(p.Subtract(t.translation)).Multiply(1 / t.scale)
}

// NormalToWorld maps a local normal into a unit world normal
func (t Transform) NormalToWorld(n Vec3) Vec3 {
	return t.rotation.Apply(n).Normalize()
}

// RayToLocal maps a world ray into local space. The local direction keeps
// the 1/scale factor instead of being renormalized, so a hit at parameter t
// in local space is the hit at the same t in world space.
func (t Transform) RayToLocal(ray Ray) Ray {
	return Ray{
		Origin:    t.PointToLocal(ray.Origin),
		Direction: t.inverse.Apply(ray.Direction).Multiply(1 / t.scale),
		MaxT:      ray.MaxT,
	}
}

// BoundsToWorld returns the world AABB of a local box
func (t Transform) BoundsToWorld(box AABB) AABB {
	bounds := EmptyAABB()
	for _, corner := range box.Corners() {
		p := t.PointToWorld(corner)
		bounds = bounds.Union(AABB{Min: p, Max: p})
	}
	return bounds
}
