package lights

import (
	"github.com/df07/go-photon-raytracer/pkg/core"
)

// AreaLight is a one-sided parallelogram light spanned by u and v from a
// corner. It emits on the side of u × v.
type AreaLight struct {
	Corner core.Vec3
	U, V   core.Vec3
	Normal core.Vec3

	color          core.Vec3
	samplesPerSide int
}

// NewAreaLight creates an area light that is sampled with a jittered
// samplesPerSide × samplesPerSide pattern for direct lighting
func NewAreaLight(corner, u, v, color core.Vec3, samplesPerSide int) *AreaLight {
	if samplesPerSide < 1 {
		samplesPerSide = 1
	}
	return &AreaLight{
		Corner:         corner,
		U:              u,
		V:              v,
		Normal:         u.Cross(v).Normalize(),
		color:          color,
		samplesPerSide: samplesPerSide,
	}
}

func (al *AreaLight) Type() LightType {
	return LightTypeArea
}

// Position returns the center of the light
func (al *AreaLight) Position() core.Vec3 {
	return al.Corner.Add(al.U.Multiply(0.5)).Add(al.V.Multiply(0.5))
}

// Color returns the light color
func (al *AreaLight) Color() core.Vec3 { return al.color }

// Area returns the light's surface area
func (al *AreaLight) Area() float64 {
	return al.U.Cross(al.V).Length()
}

// ComputeSampleRays returns one ray per jittered stratum of the light
func (al *AreaLight) ComputeSampleRays(origin, normal core.Vec3, sampler core.Sampler) []core.Ray {
	origin = origin.Add(normal.Multiply(core.LargeEpsilon))
	n := al.samplesPerSide
	rays := make([]core.Ray, 0, n*n)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			jitter := sampler.Get2D()
			s := (float64(i) + jitter.X) / float64(n)
			t := (float64(j) + jitter.Y) / float64(n)
			point := al.Corner.Add(al.U.Multiply(s)).Add(al.V.Multiply(t))

			toLight := point.Subtract(origin)
			// Points behind the emitting side receive nothing
			if toLight.Dot(al.Normal) >= 0 {
				continue
			}
			rays = append(rays, core.NewBoundedRay(origin, toLight, toLight.Length()))
		}
	}
	return rays
}

// ComputeLightAttenuation splits the light evenly over the sample rays
func (al *AreaLight) ComputeLightAttenuation(origin core.Vec3) float64 {
	return 1.0 / float64(al.samplesPerSide*al.samplesPerSide)
}

// GenerateRandomPhotonRay emits from a uniform point on the light in a
// cosine-weighted direction about the light normal
func (al *AreaLight) GenerateRandomPhotonRay(sampler core.Sampler) core.Ray {
	uv := sampler.Get2D()
	point := al.Corner.Add(al.U.Multiply(uv.X)).Add(al.V.Multiply(uv.Y))
	direction := core.SampleCosineHemisphere(al.Normal, sampler.Get2D())
	return core.NewRay(point, direction)
}
