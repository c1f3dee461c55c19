package lights

import "github.com/df07/go-photon-raytracer/pkg/core"

type LightType string

const (
	LightTypeArea  LightType = "area"
	LightTypePoint LightType = "point"
)

// Light interface for objects that illuminate the scene, both for direct
// lighting and for photon emission
type Light interface {
	Type() LightType

	// Position returns a representative position (the center for area lights)
	Position() core.Vec3

	// Color returns the emitted radiance; its length drives the photon budget
	Color() core.Vec3

	// ComputeSampleRays returns shadow-test rays FROM the shading point TO
	// the light. Each ray's MaxT is the distance to its light sample. The
	// origin is lifted off the surface along normal.
	ComputeSampleRays(origin, normal core.Vec3, sampler core.Sampler) []core.Ray

	// ComputeLightAttenuation returns the weight of each sample ray's
	// contribution at origin
	ComputeLightAttenuation(origin core.Vec3) float64

	// GenerateRandomPhotonRay returns a ray FROM the light for photon tracing
	GenerateRandomPhotonRay(sampler core.Sampler) core.Ray
}
