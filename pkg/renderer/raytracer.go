package renderer

import (
	"image/color"

	"github.com/df07/go-photon-raytracer/pkg/core"
	"github.com/df07/go-photon-raytracer/pkg/material"
	"github.com/df07/go-photon-raytracer/pkg/scene"
)

// Config contains the settings of the backward renderer
type Config struct {
	Width  int
	Height int

	Jitter               [3]int // Stratified sample grid per pixel (Nx, Ny, Nz)
	MaxReflectionBounces int    // Mirror recursion budget
	MaxRefractionBounces int    // Transmission recursion budget

	Seed     uint64 // Base seed of the per-tile sampler streams
	Workers  int    // Tile workers; 0 uses runtime.NumCPU
	TileSize int    // Tile edge length in pixels
}

// DefaultConfig returns sensible default values
func DefaultConfig() Config {
	return Config{
		Width:                480,
		Height:               320,
		Jitter:               [3]int{4, 4, 4},
		MaxReflectionBounces: 4,
		MaxRefractionBounces: 2,
		Seed:                 1,
		TileSize:             32,
	}
}

// SampleCallback is notified of every pixel sample in order. Returning false
// stops sampling the pixel; the samples taken so far are averaged.
type SampleCallback func(x, y int, color core.Vec3, index int) bool

// ProgressCallback is notified each time a tile finishes
type ProgressCallback func(tilesDone, totalTiles int)

// IndirectEstimator adds light arriving at a surface point after bouncing
// off other surfaces
type IndirectEstimator interface {
	EstimateIndirect(point, normal, diffuse core.Vec3) core.Vec3
}

// Raytracer is a Whitted-style backward renderer: direct light from every
// light source, plus mirror reflection and refraction up to fixed budgets
type Raytracer struct {
	scene    *scene.Scene
	camera   *Camera
	jitter   *JitterSampler
	config   Config
	indirect IndirectEstimator
	callback SampleCallback
	progress ProgressCallback
}

// NewRaytracer creates a renderer for s. The scene's acceleration data must
// be generated before rendering.
func NewRaytracer(s *scene.Scene, config Config) *Raytracer {
	return &Raytracer{
		scene:  s,
		camera: NewCamera(s.Camera, config.Width, config.Height),
		jitter: NewJitterSampler(config.Jitter),
		config: config,
	}
}

// Config returns the renderer settings
func (rt *Raytracer) Config() Config {
	return rt.config
}

// Camera returns the camera primary rays are generated from
func (rt *Raytracer) Camera() *Camera {
	return rt.camera
}

// SetSampleCallback installs the per-sample notification
func (rt *Raytracer) SetSampleCallback(callback SampleCallback) {
	rt.callback = callback
}

// SetProgressCallback installs the per-tile notification. It runs on the
// goroutine that called Render.
func (rt *Raytracer) SetProgressCallback(callback ProgressCallback) {
	rt.progress = callback
}

// SetIndirectEstimator installs the indirect lighting term; nil disables it
func (rt *Raytracer) SetIndirectEstimator(estimator IndirectEstimator) {
	rt.indirect = estimator
}

// TraceRay returns the color seen along a primary ray
func (rt *Raytracer) TraceRay(ray core.Ray, sampler core.Sampler) core.Vec3 {
	return rt.traceRay(ray, 1.0, rt.config.MaxReflectionBounces, rt.config.MaxRefractionBounces, sampler)
}

func (rt *Raytracer) traceRay(ray core.Ray, ior float64, reflectionBounces, refractionBounces int, sampler core.Sampler) core.Vec3 {
	state := scene.NewIntersectionState(reflectionBounces, refractionBounces)
	state.CurrentIOR = ior
	if !rt.scene.Trace(ray, &state) {
		return rt.scene.Background
	}
	return rt.ComputeSampleColor(&state, sampler)
}

// ComputeSampleColor shades a hit: direct lighting, the indirect term, then
// reflection and refraction while their budgets last
func (rt *Raytracer) ComputeSampleColor(state *scene.IntersectionState, sampler core.Sampler) core.Vec3 {
	mat := state.Material()
	if mat == nil {
		return core.Vec3{}
	}

	point := state.Point()
	normal := state.ComputeNormal()
	direction := state.Ray.Direction.Normalize()
	toViewer := direction.Negate()
	uv := state.UV()

	// Shade the side of the surface the ray arrived from
	shadingNormal := normal
	if shadingNormal.Dot(toViewer) < 0 {
		shadingNormal = shadingNormal.Negate()
	}

	color := rt.computeDirect(mat, point, shadingNormal, toViewer, uv, sampler)

	if rt.indirect != nil {
		color = color.Add(rt.indirect.EstimateIndirect(point, shadingNormal, mat.ComputeDiffuse(uv, point)))
	}

	if reflectivity := mat.Reflectivity(); reflectivity > 0 && state.RemainingReflectionBounces > 0 {
		reflected := direction.Reflect(shadingNormal)
		ray := core.NewRay(point.Add(reflected.Multiply(core.LargeEpsilon)), reflected)
		reflectColor := rt.traceRay(ray, state.CurrentIOR, state.RemainingReflectionBounces-1, state.RemainingRefractionBounces, sampler)
		color = color.Lerp(reflectColor, reflectivity)
	}

	if transmittance := mat.Transmittance(); transmittance > 0 && state.RemainingRefractionBounces > 0 {
		refractColor := rt.computeRefraction(state, mat, normal, direction, point, sampler)
		color = color.Lerp(refractColor, transmittance)
	}

	return color
}

// computeDirect sums the unoccluded light sample contributions at point
func (rt *Raytracer) computeDirect(mat material.Material, point, normal, toViewer core.Vec3, uv core.Vec2, sampler core.Sampler) core.Vec3 {
	var direct core.Vec3
	for _, light := range rt.scene.Lights() {
		attenuation := light.ComputeLightAttenuation(point)
		for _, ray := range light.ComputeSampleRays(point, normal, sampler) {
			if rt.scene.Occluded(ray) {
				continue
			}
			diffuse, specular := mat.ComputeBRDF(ray.Direction, toViewer, normal, uv, point)
			direct = direct.Add(light.Color().MultiplyVec(diffuse.Add(specular)).Multiply(attenuation))
		}
	}
	return direct
}

// computeRefraction follows the transmitted ray. Entering rays go from the
// current medium into the material; leaving rays go back to air. Total
// internal reflection continues as a mirror ray inside the current medium.
func (rt *Raytracer) computeRefraction(state *scene.IntersectionState, mat material.Material, normal, direction, point core.Vec3, sampler core.Sampler) core.Vec3 {
	facing := normal
	n1, n2 := state.CurrentIOR, mat.IOR()
	if direction.Dot(normal) > 0 {
		facing = normal.Negate()
		n1, n2 = mat.IOR(), 1.0
	}

	next := n2
	transmitted, ok := direction.Refract(facing, n1/n2)
	if !ok {
		transmitted = direction.Reflect(facing)
		next = n1
	}

	ray := core.NewRay(point.Add(transmitted.Multiply(core.LargeEpsilon)), transmitted)
	return rt.traceRay(ray, next, state.RemainingReflectionBounces, state.RemainingRefractionBounces-1, sampler)
}

// RenderPixel averages the jittered samples of pixel (x, y), with y growing
// downwards. It returns the color and the number of samples taken.
func (rt *Raytracer) RenderPixel(x, y int, sampler core.Sampler) (core.Vec3, int) {
	offsets := rt.jitter.Offsets(make([]core.Vec2, 0, rt.jitter.SamplesPerPixel()), sampler)

	var colorAccum core.Vec3
	taken := 0
	for i, offset := range offsets {
		sample := rt.TraceRay(rt.PixelRay(float64(x)+offset.X, float64(y)+offset.Y), sampler)
		colorAccum = colorAccum.Add(sample)
		taken++

		if rt.callback != nil && !rt.callback(x, y, sample, i) {
			break
		}
	}

	return colorAccum.Multiply(1.0 / float64(taken)), taken
}

// PixelRay returns the primary ray through image position (px, py), with py
// growing downwards
func (rt *Raytracer) PixelRay(px, py float64) core.Ray {
	s := px / float64(rt.config.Width)
	t := 1 - py/float64(rt.config.Height)
	return rt.camera.GetRay(s, t)
}

// vec3ToColor converts a Vec3 color to RGBA with proper clamping and gamma correction
func vec3ToColor(colorVec core.Vec3) color.RGBA {
	// Apply gamma correction (gamma = 2.0)
	colorVec = colorVec.Clamp(0.0, 1.0).GammaCorrect(2.0)

	return color.RGBA{
		R: uint8(255 * colorVec.X),
		G: uint8(255 * colorVec.Y),
		B: uint8(255 * colorVec.Z),
		A: 255,
	}
}
