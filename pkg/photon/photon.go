package photon

import "github.com/df07/go-photon-raytracer/pkg/core"

// Photon is a stored packet of light: where it landed and the power it carries
type Photon struct {
	Position  core.Vec3
	Intensity core.Vec3
}
