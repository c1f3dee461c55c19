package renderer

import (
	"context"
	"image"
	"math"
	"time"

	"github.com/pkg/errors"

	"github.com/df07/go-photon-raytracer/pkg/core"
	"github.com/df07/go-photon-raytracer/pkg/photon"
	"github.com/df07/go-photon-raytracer/pkg/scene"
)

// PhotonMode selects how the diffuse photon map feeds the image
type PhotonMode string

const (
	PhotonModeVisualize PhotonMode = "visualize" // Mark points with a photon nearby in red
	PhotonModeEstimate  PhotonMode = "estimate"  // Radiance estimate from the photon density
	PhotonModeNearest   PhotonMode = "nearest"   // Density over the sphere holding the k nearest photons
	PhotonModeOff       PhotonMode = "off"       // Direct lighting only
)

// ParsePhotonMode validates a mode name from the config file or CLI
func ParsePhotonMode(name string) (PhotonMode, error) {
	switch mode := PhotonMode(name); mode {
	case PhotonModeVisualize, PhotonModeEstimate, PhotonModeNearest, PhotonModeOff:
		return mode, nil
	}
	return "", errors.Errorf("unknown photon mode %q", name)
}

// PhotonConfig contains the settings of the photon pre-pass
type PhotonConfig struct {
	Photons    int        // Photons emitted over all lights
	MaxBounces int        // Bounce budget of each photon
	Radius     float64    // Gather radius around shaded points
	Nearest    int        // Photons gathered per estimate in nearest mode
	Mode       PhotonMode // Indirect term
	Workers    int        // Tracing goroutines; 0 uses runtime.NumCPU
	Seed       uint64     // Base seed of the photon streams
}

// DefaultPhotonConfig returns sensible default values
func DefaultPhotonConfig() PhotonConfig {
	return PhotonConfig{
		Photons:    1000000,
		MaxBounces: 1000,
		Radius:     0.003,
		Nearest:    50,
		Mode:       PhotonModeVisualize,
		Seed:       1,
	}
}

// visualizeColor is added wherever a photon lies within the gather radius
var visualizeColor = core.NewVec3(1, 0, 0)

// PhotonRenderer is the backward renderer plus an indirect term read from a
// diffuse photon map built before rendering
type PhotonRenderer struct {
	*Raytracer

	photons    PhotonConfig
	diffuseMap *photon.Map
	traceStats photon.TraceStats
	traceTime  time.Duration
}

// NewPhotonRenderer creates a photon mapping renderer for s
func NewPhotonRenderer(s *scene.Scene, config Config, photons PhotonConfig) *PhotonRenderer {
	return &PhotonRenderer{
		Raytracer: NewRaytracer(s, config),
		photons:   photons,
	}
}

// SetNumberOfDiffusePhotons sets how many photons the next initialization emits
func (pr *PhotonRenderer) SetNumberOfDiffusePhotons(count int) {
	pr.photons.Photons = count
}

// PhotonConfig returns the photon pass settings
func (pr *PhotonRenderer) PhotonConfig() PhotonConfig {
	return pr.photons
}

// InitializeRenderer traces the photons, optimises the diffuse map and
// installs the indirect term. The map is rebuilt on every call.
func (pr *PhotonRenderer) InitializeRenderer(ctx context.Context) error {
	if pr.photons.Mode == PhotonModeOff {
		pr.SetIndirectEstimator(nil)
		return nil
	}
	if pr.photons.Radius <= 0 {
		return errors.Errorf("photon gather radius must be positive, got %g", pr.photons.Radius)
	}
	if pr.photons.Mode == PhotonModeNearest && pr.photons.Nearest < 1 {
		return errors.Errorf("nearest photon count must be positive, got %d", pr.photons.Nearest)
	}

	start := time.Now()
	tracer := photon.NewTracer(pr.scene, photon.Config{
		MaxBounces: pr.photons.MaxBounces,
		Workers:    pr.photons.Workers,
		Seed:       pr.photons.Seed,
	})

	builder := photon.NewBuilder(pr.photons.Photons)
	stats, err := tracer.GenericPhotonMapGeneration(ctx, builder, pr.photons.Photons)
	if err != nil {
		return errors.Wrap(err, "building diffuse photon map")
	}

	pr.diffuseMap = builder.Optimise()
	pr.traceStats = stats
	pr.traceTime = time.Since(start)
	pr.SetIndirectEstimator(pr)

	logger.Noticef("diffuse photon map ready: %d photons in %v", pr.diffuseMap.Len(), pr.traceTime)
	return nil
}

// DiffuseMap returns the optimised map, or nil before initialization
func (pr *PhotonRenderer) DiffuseMap() *photon.Map {
	return pr.diffuseMap
}

// TraceStats returns the statistics of the last photon pass
func (pr *PhotonRenderer) TraceStats() photon.TraceStats {
	return pr.traceStats
}

// EstimateIndirect reads the diffuse map around point
func (pr *PhotonRenderer) EstimateIndirect(point, normal, diffuse core.Vec3) core.Vec3 {
	if pr.diffuseMap == nil {
		return core.Vec3{}
	}

	switch pr.photons.Mode {
	case PhotonModeVisualize:
		if len(pr.diffuseMap.FindWithinRange(point, pr.photons.Radius)) > 0 {
			return visualizeColor
		}
	case PhotonModeEstimate:
		nearby := pr.diffuseMap.FindWithinRange(point, pr.photons.Radius)
		return radianceEstimate(nearby, diffuse, pr.photons.Radius*pr.photons.Radius)
	case PhotonModeNearest:
		nearby, radiusSq := pr.diffuseMap.Nearest(point, pr.photons.Nearest)
		return radianceEstimate(nearby, diffuse, radiusSq)
	}
	return core.Vec3{}
}

// radianceEstimate divides the reflected flux of photons by the disc of
// squared radius radiusSq they were gathered from
func radianceEstimate(photons []photon.Photon, diffuse core.Vec3, radiusSq float64) core.Vec3 {
	if len(photons) == 0 || radiusSq <= 0 {
		return core.Vec3{}
	}
	var flux core.Vec3
	for _, p := range photons {
		flux = flux.Add(p.Intensity)
	}
	return diffuse.MultiplyVec(flux).Multiply(1.0 / (math.Pi * radiusSq))
}

// Render builds the photon map if needed and renders the image
func (pr *PhotonRenderer) Render(ctx context.Context) (*image.RGBA, RenderStats, error) {
	if pr.diffuseMap == nil && pr.photons.Mode != PhotonModeOff {
		if err := pr.InitializeRenderer(ctx); err != nil {
			return nil, RenderStats{}, err
		}
	}

	img, stats, err := pr.Raytracer.Render(ctx)
	if err != nil {
		return nil, stats, err
	}
	if pr.diffuseMap != nil {
		stats.Phases = append([]PhaseTiming{{Name: "photons", Duration: pr.traceTime}}, stats.Phases...)
	}
	return img, stats, nil
}
