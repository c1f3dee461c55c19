package photon

import (
	"context"
	"math"
	"runtime"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/df07/go-photon-raytracer/pkg/core"
	"github.com/df07/go-photon-raytracer/pkg/lights"
	"github.com/df07/go-photon-raytracer/pkg/log"
	"github.com/df07/go-photon-raytracer/pkg/scene"
)

var logger = log.New("photon")

// chunkSize is the number of photons traced with one sampler stream
const chunkSize = 4096

// Config controls the photon pass
type Config struct {
	MaxBounces int    // Bounce budget of each photon
	Workers    int    // Tracing goroutines; 0 uses runtime.NumCPU
	Seed       uint64 // Base seed of the per-chunk sampler streams
}

// DefaultConfig returns the settings used when none are given
func DefaultConfig() Config {
	return Config{MaxBounces: 1000, Seed: 1}
}

// TraceStats counts what happened to the traced photons
type TraceStats struct {
	Emitted   int // Photons leaving the lights
	Stored    int // Photons written to the map
	Bounced   int // Surface hits that survived Russian roulette
	Absorbed  int // Surface hits that were absorbed
	Escaped   int // Photon paths that left the scene
	Exhausted int // Photon paths stopped by the bounce budget
}

// Add accumulates other into s
func (s *TraceStats) Add(other TraceStats) {
	s.Emitted += other.Emitted
	s.Stored += other.Stored
	s.Bounced += other.Bounced
	s.Absorbed += other.Absorbed
	s.Escaped += other.Escaped
	s.Exhausted += other.Exhausted
}

// Batch collects the photons and statistics of one unit of tracing work
type Batch struct {
	Photons []Photon
	Stats   TraceStats
}

// Tracer shoots photons from the scene lights and records where diffuse
// bounces land
type Tracer struct {
	scene  *scene.Scene
	config Config
}

// NewTracer creates a tracer over a scene whose acceleration data is built
func NewTracer(s *scene.Scene, config Config) *Tracer {
	if config.Workers <= 0 {
		config.Workers = runtime.NumCPU()
	}
	return &Tracer{scene: s, config: config}
}

type chunk struct {
	light     lights.Light
	intensity core.Vec3
	count     int
}

// GenericPhotonMapGeneration distributes totalPhotons over the lights by
// power, traces them in parallel and inserts the stored photons into
// builder. Each chunk of photons uses its own sampler stream and results are
// merged in chunk order, so the map is identical for a given seed no matter
// how many workers run.
func (t *Tracer) GenericPhotonMapGeneration(ctx context.Context, builder *Builder, totalPhotons int) (TraceStats, error) {
	if !t.scene.IsReady() {
		return TraceStats{}, errors.New("photon tracing requires scene acceleration data")
	}
	start := time.Now()

	var chunks []chunk
	for i, count := range lights.PhotonBudget(t.scene.Lights(), totalPhotons) {
		if count == 0 {
			continue
		}
		light := t.scene.LightObject(i)
		intensity := light.Color().Multiply(1.0 / float64(count))
		for remaining := count; remaining > 0; remaining -= chunkSize {
			chunks = append(chunks, chunk{light: light, intensity: intensity, count: min(remaining, chunkSize)})
		}
	}

	batches := make([]Batch, len(chunks))
	workers := min(t.config.Workers, max(1, len(chunks)))
	g, ctx := errgroup.WithContext(ctx)
	for w := 0; w < workers; w++ {
		w := w
		g.Go(func() error {
			for c := w; c < len(chunks); c += workers {
				if err := ctx.Err(); err != nil {
					return err
				}
				sampler := core.NewRandomSampler(core.StreamSeed(t.config.Seed, c))
				t.traceChunk(chunks[c], sampler, &batches[c])
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return TraceStats{}, errors.Wrap(err, "photon pass interrupted")
	}

	var stats TraceStats
	for i := range batches {
		if err := builder.InsertAll(batches[i].Photons); err != nil {
			return stats, err
		}
		stats.Add(batches[i].Stats)
	}

	logger.Infof("traced %d photons from %d lights in %v: %d stored, %d absorbed, %d escaped",
		stats.Emitted, t.scene.TotalLights(), time.Since(start), stats.Stored, stats.Absorbed, stats.Escaped)
	return stats, nil
}

func (t *Tracer) traceChunk(c chunk, sampler core.Sampler, batch *Batch) {
	path := make([]byte, 0, 16)
	for j := 0; j < c.count; j++ {
		batch.Stats.Emitted++
		ray := c.light.GenerateRandomPhotonRay(sampler)
		path = append(path[:0], 'L')
		t.TracePhoton(ray, c.intensity, path, 1.0, t.config.MaxBounces, sampler, batch)
	}
}

// TracePhoton follows one photon through the scene. Every surface hit after
// the first one leaving the light stores a photon; Russian roulette on the
// brightest diffuse channel decides whether the photon bounces in a
// cosine-weighted direction or is absorbed.
func (t *Tracer) TracePhoton(ray core.Ray, intensity core.Vec3, path []byte, ior float64, remainingBounces int, sampler core.Sampler, batch *Batch) {
	if remainingBounces < 0 {
		batch.Stats.Exhausted++
		return
	}

	state := scene.NewIntersectionState(0, 0)
	state.CurrentIOR = ior
	if !t.scene.Trace(ray, &state) {
		batch.Stats.Escaped++
		return
	}
	point := state.Point()

	// Direct light-to-surface hits are left to direct lighting
	if len(path) > 1 {
		batch.Photons = append(batch.Photons, Photon{Position: point, Intensity: intensity})
		batch.Stats.Stored++
	}
	path = append(path, 'B')

	var diffuse core.Vec3
	if mat := state.Material(); mat != nil {
		diffuse = mat.BaseDiffuseReflection()
	}
	if sampler.Get1D() > diffuse.MaxComponent() {
		batch.Stats.Absorbed++
		return
	}
	batch.Stats.Bounced++

	// Bounce into the hemisphere the photon arrived from
	normal := state.ComputeNormal()
	if normal.Dot(ray.Direction) > 0 {
		normal = normal.Negate()
	}
	direction := core.SampleCosineHemisphere(normal, sampler.Get2D())

	ray.SetDirection(direction)
	ray.SetPosition(point.Add(direction.Multiply(core.LargeEpsilon)))
	ray.MaxT = math.Inf(1)
	t.TracePhoton(ray, intensity, path, ior, remainingBounces-1, sampler, batch)
}
