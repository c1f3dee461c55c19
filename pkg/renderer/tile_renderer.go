package renderer

import (
	"context"
	"image"
	"time"

	"github.com/pkg/errors"

	"github.com/df07/go-photon-raytracer/pkg/core"
	"github.com/df07/go-photon-raytracer/pkg/log"
)

var logger = log.New("renderer")

// TileRenderer renders individual tiles with a raytracer
type TileRenderer struct {
	raytracer *Raytracer
	seed      uint64
}

// NewTileRenderer creates a new tile renderer. Every tile draws from its own
// sampler stream derived from seed and the tile ID.
func NewTileRenderer(raytracer *Raytracer, seed uint64) *TileRenderer {
	return &TileRenderer{raytracer: raytracer, seed: seed}
}

// RenderTileBounds renders the pixels of tile into the shared pixel buffer
func (tr *TileRenderer) RenderTileBounds(tile Tile, pixels [][]core.Vec3) RenderStats {
	sampler := core.NewRandomSampler(core.StreamSeed(tr.seed, tile.ID))
	stats := tr.initRenderStatsForBounds(tile.Bounds)

	for j := tile.Bounds.Min.Y; j < tile.Bounds.Max.Y; j++ {
		for i := tile.Bounds.Min.X; i < tile.Bounds.Max.X; i++ {
			color, samplesUsed := tr.raytracer.RenderPixel(i, j, sampler)
			pixels[j][i] = color
			tr.updateStats(&stats, samplesUsed)
		}
	}

	tr.finalizeStats(&stats)
	return stats
}

// initRenderStatsForBounds initializes the render statistics tracking for specific bounds
func (tr *TileRenderer) initRenderStatsForBounds(bounds image.Rectangle) RenderStats {
	maxSamples := tr.raytracer.jitter.SamplesPerPixel()
	return RenderStats{
		TotalPixels: bounds.Dx() * bounds.Dy(),
		MaxSamples:  maxSamples,
		MinSamples:  maxSamples, // Start with max, will be reduced
		Tiles:       1,
	}
}

// updateStats updates the render statistics with data from a single pixel
func (tr *TileRenderer) updateStats(stats *RenderStats, samplesUsed int) {
	stats.TotalSamples += samplesUsed
	stats.MinSamples = min(stats.MinSamples, samplesUsed)
	stats.MaxSamplesUsed = max(stats.MaxSamplesUsed, samplesUsed)
}

// finalizeStats calculates final statistics after all pixels are rendered
func (tr *TileRenderer) finalizeStats(stats *RenderStats) {
	if stats.TotalPixels > 0 {
		stats.AverageSamples = float64(stats.TotalSamples) / float64(stats.TotalPixels)
	}
}

// Render renders the full image with a pool of tile workers. The image is
// the same for a given seed regardless of the number of workers.
func (rt *Raytracer) Render(ctx context.Context) (*image.RGBA, RenderStats, error) {
	width, height := rt.config.Width, rt.config.Height
	if width <= 0 || height <= 0 {
		return nil, RenderStats{}, errors.Errorf("invalid image size %dx%d", width, height)
	}
	if !rt.scene.IsReady() {
		return nil, RenderStats{}, errors.New("rendering requires scene acceleration data")
	}

	start := time.Now()
	tileSize := rt.config.TileSize
	if tileSize <= 0 {
		tileSize = DefaultConfig().TileSize
	}

	pixels := make([][]core.Vec3, height)
	for j := range pixels {
		pixels[j] = make([]core.Vec3, width)
	}

	tiles := NewTileGrid(width, height, tileSize)
	pool := NewWorkerPool(NewTileRenderer(rt, rt.config.Seed), rt.config.Workers, len(tiles))
	pool.Start(ctx)
	for _, tile := range tiles {
		pool.SubmitTask(TileTask{Tile: tile, Pixels: pixels})
	}

	stats := NewRenderStats()
	stats.MinSamples = rt.jitter.SamplesPerPixel()
	stats.MaxSamples = rt.jitter.SamplesPerPixel()
	stats.Workers = pool.GetNumWorkers()

	var renderErr error
	done := 0
	for range tiles {
		result, ok := pool.GetResult()
		if !ok {
			break
		}
		if result.Error != nil {
			renderErr = result.Error
			continue
		}
		stats.Merge(result.Stats)
		done++
		if rt.progress != nil {
			rt.progress(done, len(tiles))
		}
	}
	pool.Stop()

	if renderErr != nil {
		return nil, stats, errors.Wrap(renderErr, "render interrupted")
	}

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for j := 0; j < height; j++ {
		for i := 0; i < width; i++ {
			img.SetRGBA(i, j, vec3ToColor(pixels[j][i]))
		}
	}

	stats.AddPhase("render", time.Since(start))
	logger.Infof("rendered %dx%d in %d tiles with %d workers in %v (%.1f samples/pixel)",
		width, height, len(tiles), stats.Workers, time.Since(start), stats.AverageSamples)
	return img, stats, nil
}
