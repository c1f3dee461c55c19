package scene

import (
	"time"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/df07/go-photon-raytracer/pkg/accel"
	"github.com/df07/go-photon-raytracer/pkg/core"
	"github.com/df07/go-photon-raytracer/pkg/geometry"
	"github.com/df07/go-photon-raytracer/pkg/lights"
	"github.com/df07/go-photon-raytracer/pkg/log"
)

var logger = log.New("scene")

// CameraConfig describes the viewpoint a scene suggests
type CameraConfig struct {
	Center core.Vec3 // Camera position
	LookAt core.Vec3 // Point the camera looks at
	Up     core.Vec3 // Up direction
	VFov   float64   // Vertical field of view in degrees
}

// Scene contains all the elements needed for rendering
type Scene struct {
	Camera     CameraConfig
	Background core.Vec3 // Color returned by rays that miss everything

	objects []*SceneObject
	lights  []lights.Light
	top     accel.Structure
}

// New creates an empty scene
func New() *Scene {
	return &Scene{
		Camera: CameraConfig{
			Center: core.NewVec3(0, 0, 5),
			Up:     core.NewVec3(0, 1, 0),
			VFov:   45,
		},
	}
}

// AddSceneObject adds an object. Acceleration data must be regenerated
// afterwards.
func (s *Scene) AddSceneObject(object *SceneObject) {
	s.objects = append(s.objects, object)
	s.top = nil
}

// AddLight adds a light to the scene
func (s *Scene) AddLight(light lights.Light) {
	s.lights = append(s.lights, light)
}

// Objects returns the scene objects
func (s *Scene) Objects() []*SceneObject {
	return s.objects
}

// Lights returns the scene lights
func (s *Scene) Lights() []lights.Light {
	return s.lights
}

// TotalLights returns the number of lights
func (s *Scene) TotalLights() int {
	return len(s.lights)
}

// LightObject returns light i, or nil when out of range
func (s *Scene) LightObject(i int) lights.Light {
	if i < 0 || i >= len(s.lights) {
		return nil
	}
	return s.lights[i]
}

// PrimitiveCount returns the total number of primitives in the scene
func (s *Scene) PrimitiveCount() int {
	count := 0
	for _, object := range s.objects {
		count += object.PrimitiveCount()
	}
	return count
}

// GenerateAccelerationData builds every object's structure in parallel and
// then the top-level structure over the object bounds. Objects without
// primitives are left out of the top level.
func (s *Scene) GenerateAccelerationData(kind accel.Kind, cfg accel.Config) error {
	start := time.Now()

	var g errgroup.Group
	for _, object := range s.objects {
		object := object
		g.Go(func() error {
			return object.CreateAccelerationData(kind, cfg)
		})
	}
	if err := g.Wait(); err != nil {
		return errors.Wrap(err, "building object acceleration data")
	}

	items := make([]geometry.Intersectable, 0, len(s.objects))
	for _, object := range s.objects {
		if object.BoundingBox().IsValid() {
			items = append(items, object)
		}
	}

	top, err := accel.New(kind, items, cfg)
	if err != nil {
		return errors.Wrap(err, "building scene acceleration data")
	}
	s.top = top

	logger.Infof("acceleration data (%s) for %d objects, %d primitives built in %v",
		kind, len(s.objects), s.PrimitiveCount(), time.Since(start))
	return nil
}

// IsReady reports whether acceleration data has been generated
func (s *Scene) IsReady() bool {
	return s.top != nil
}

// BoundingBox returns the world bounds of all objects
func (s *Scene) BoundingBox() core.AABB {
	if s.top == nil {
		return core.EmptyAABB()
	}
	return s.top.BoundingBox()
}

// FindNearestIntersection returns the nearest hit in [tMin, tMax], also
// limited by the ray's own max distance
func (s *Scene) FindNearestIntersection(ray core.Ray, tMin, tMax float64) (geometry.Intersection, bool) {
	if s.top == nil {
		return geometry.Intersection{}, false
	}
	return s.top.FindNearestIntersection(ray, tMin, ray.Limit(tMax))
}

// Trace fills state with the nearest hit of ray. It returns false on a miss,
// leaving state untouched.
func (s *Scene) Trace(ray core.Ray, state *IntersectionState) bool {
	hit, ok := s.FindNearestIntersection(ray, core.SmallEpsilon, ray.MaxT)
	if !ok {
		return false
	}
	state.set(ray, hit)
	return true
}

// Occluded reports whether anything lies along ray before its max distance
func (s *Scene) Occluded(ray core.Ray) bool {
	_, ok := s.FindNearestIntersection(ray, core.SmallEpsilon, ray.MaxT)
	return ok
}
