package lights

import (
	"github.com/df07/go-photon-raytracer/pkg/core"
)

// PointLight emits uniformly in all directions from a single point
type PointLight struct {
	position core.Vec3
	color    core.Vec3
}

// NewPointLight creates a new point light
func NewPointLight(position, color core.Vec3) *PointLight {
	return &PointLight{position: position, color: color}
}

func (pl *PointLight) Type() LightType {
	return LightTypePoint
}

// Position returns the light position
func (pl *PointLight) Position() core.Vec3 { return pl.position }

// SetPosition moves the light
func (pl *PointLight) SetPosition(position core.Vec3) { pl.position = position }

// Color returns the light color
func (pl *PointLight) Color() core.Vec3 { return pl.color }

// SetColor replaces the light color
func (pl *PointLight) SetColor(color core.Vec3) { pl.color = color }

// ComputeSampleRays returns the single ray toward the light
func (pl *PointLight) ComputeSampleRays(origin, normal core.Vec3, sampler core.Sampler) []core.Ray {
	origin = origin.Add(normal.Multiply(core.LargeEpsilon))
	toLight := pl.position.Subtract(origin)
	return []core.Ray{core.NewBoundedRay(origin, toLight, toLight.Length())}
}

// ComputeLightAttenuation is constant for point lights
func (pl *PointLight) ComputeLightAttenuation(origin core.Vec3) float64 {
	return 1.0
}

// GenerateRandomPhotonRay emits a photon in a uniformly random direction
func (pl *PointLight) GenerateRandomPhotonRay(sampler core.Sampler) core.Ray {
	return core.NewRay(pl.position, core.SampleOnUnitSphere(sampler.Get2D()))
}
