package material

import (
	"github.com/df07/go-photon-raytracer/pkg/core"
)

// Material exposes the reflectance capabilities the renderer and the photon
// tracer query at a hit point
type Material interface {
	// BaseDiffuseReflection returns the untextured diffuse reflectance; the
	// photon tracer uses it for the Russian-roulette survival probability
	BaseDiffuseReflection() core.Vec3
	BaseSpecularReflection() core.Vec3

	// Reflectivity is the mirror weight in [0, 1]
	Reflectivity() float64
	// Transmittance is the refraction weight in [0, 1]
	Transmittance() float64
	IOR() float64

	// ComputeDiffuse returns the texture-modulated diffuse reflectance
	ComputeDiffuse(uv core.Vec2, point core.Vec3) core.Vec3

	// ComputeBRDF evaluates the local reflection toward the viewer for light
	// arriving along toLight, split into diffuse and specular terms.
	// All directions point away from the surface.
	ComputeBRDF(toLight, toViewer, normal core.Vec3, uv core.Vec2, point core.Vec3) (diffuse, specular core.Vec3)

	// Clone returns an independent copy that can be specialized per mesh
	Clone() Material
}
