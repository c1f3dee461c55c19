package core

import (
	"math"

	"pgregory.net/rand"
)

// Sampler provides random sampling for rendering algorithms
// Can be swapped out for deterministic testing or different sampling patterns
type Sampler interface {
	Get1D() float64
	Get2D() Vec2
	Get3D() Vec3
}

// RandomSampler wraps a seeded pgregory.net/rand generator. A RandomSampler
// is not safe for concurrent use; every worker owns its own.
type RandomSampler struct {
	random *rand.Rand
}

// NewRandomSampler creates a sampler with a deterministic stream for seed
func NewRandomSampler(seed uint64) *RandomSampler {
	return &RandomSampler{random: rand.New(seed)}
}

// Get1D returns a random float64 in [0, 1)
func (r *RandomSampler) Get1D() float64 {
	return r.random.Float64()
}

// Get2D returns two random float64 values in [0, 1)
func (r *RandomSampler) Get2D() Vec2 {
	return NewVec2(r.random.Float64(), r.random.Float64())
}

// Get3D returns three random float64 values in [0, 1)
func (r *RandomSampler) Get3D() Vec3 {
	return NewVec3(r.random.Float64(), r.random.Float64(), r.random.Float64())
}

// StreamSeed derives an independent seed for stream n of a base seed
// (splitmix64 finalizer), used to give each worker or tile its own sampler
func StreamSeed(seed uint64, n int) uint64 {
	z := seed + uint64(n+1)*0x9e3779b97f4a7c15
	z = (z ^ (z >> 30)) * 0xbf58476d1ce4e5b9
	z = (z ^ (z >> 27)) * 0x94d049bb133111eb
	return z ^ (z >> 31)
}

// TangentFrame builds an orthonormal (tangent, bitangent) pair around a unit
// normal. The reference axis is world X unless the normal is within the 0.8
// dot-product cone of X, in which case world Y is used.
func TangentFrame(normal Vec3) (Vec3, Vec3) {
	reference := NewVec3(1, 0, 0)
	if d := normal.Dot(reference); d > 0.8 || d < -0.8 {
		reference = NewVec3(0, 1, 0)
	}
	tangent := normal.Cross(reference).Normalize()
	bitangent := normal.Cross(tangent).Normalize()
	return tangent, bitangent
}

// SampleCosineHemisphere generates a cosine-weighted direction in the
// hemisphere around normal: r = sqrt(u1), theta = 2*pi*u2, local direction
// (r cos theta, r sin theta, sqrt(1-u1)) mapped through TangentFrame
func SampleCosineHemisphere(normal Vec3, sample Vec2) Vec3 {
	r := math.Sqrt(sample.X)
	theta := 2.0 * math.Pi * sample.Y

	x := r * math.Cos(theta)
	y := r * math.Sin(theta)
	z := math.Sqrt(math.Max(0, 1.0-sample.X))

	tangent, bitangent := TangentFrame(normal)
	return tangent.Multiply(x).Add(bitangent.Multiply(y)).Add(normal.Multiply(z)).Normalize()
}

// SampleOnUnitSphere generates a uniform random direction on the unit sphere
func SampleOnUnitSphere(sample Vec2) Vec3 {
	z := 1.0 - 2.0*sample.X // z ∈ [-1, 1]
	r := math.Sqrt(math.Max(0, 1.0-z*z))
	phi := 2.0 * math.Pi * sample.Y
	x := r * math.Cos(phi)
	y := r * math.Sin(phi)
	return NewVec3(x, y, z)
}
