package main

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/pkg/errors"
	"github.com/urfave/cli"

	"github.com/df07/go-photon-raytracer/pkg/config"
	"github.com/df07/go-photon-raytracer/pkg/log"
	"github.com/df07/go-photon-raytracer/pkg/photon"
	"github.com/df07/go-photon-raytracer/pkg/renderer"
	"github.com/df07/go-photon-raytracer/pkg/scene"
	"github.com/df07/go-photon-raytracer/web/server"
)

func setupLogging(ctx *cli.Context, cfg config.RenderConfig) {
	if level, ok := log.ParseLevel(cfg.LogLevel); ok {
		log.SetLevel(level)
	}

	if ctx.GlobalBool("v") {
		log.SetLevel(log.Info)
	}

	if ctx.GlobalBool("vv") {
		log.SetLevel(log.Debug)
	}
}

// loadConfig builds the render config from the defaults, the --config file
// and the flags, in that order
func loadConfig(ctx *cli.Context) (config.RenderConfig, error) {
	cfg := config.Default()
	if path := ctx.String("config"); path != "" {
		var err error
		if cfg, err = config.Load(path); err != nil {
			return cfg, err
		}
	}

	if ctx.IsSet("scene") {
		cfg.Scene = ctx.String("scene")
	}
	if ctx.IsSet("accel") {
		cfg.Accel.Kind = ctx.String("accel")
	}
	if ctx.IsSet("photons") {
		cfg.Photons.Count = ctx.Int("photons")
	}
	if ctx.IsSet("seed") {
		cfg.Seed = ctx.Uint64("seed")
	}
	if ctx.IsSet("width") {
		cfg.Width = ctx.Int("width")
	}
	if ctx.IsSet("height") {
		cfg.Height = ctx.Int("height")
	}
	if ctx.IsSet("photon-mode") {
		cfg.Photons.Mode = ctx.String("photon-mode")
	}
	if ctx.IsSet("photon-nearest") {
		cfg.Photons.Nearest = ctx.Int("photon-nearest")
	}

	return cfg, cfg.Validate()
}

// outputPath returns the PNG path for a render started at now
func outputPath(out, sceneID string, now time.Time) string {
	if out != "" {
		return out
	}
	return filepath.Join("output", sceneID, fmt.Sprintf("render_%s.png", now.Format("20060102_150405")))
}

// interruptContext is cancelled on the first interrupt signal
func interruptContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt)
}

// RenderScene renders the configured scene to a PNG file.
func RenderScene(ctx *cli.Context) error {
	cfg, err := loadConfig(ctx)
	setupLogging(ctx, cfg)
	if err != nil {
		return err
	}

	s, err := cfg.BuildScene()
	if err != nil {
		return err
	}

	runCtx, cancel := interruptContext()
	defer cancel()

	r := renderer.NewPhotonRenderer(s, cfg.RendererConfig(), cfg.PhotonConfig())
	img, stats, err := r.Render(runCtx)
	if err != nil {
		return err
	}

	path := outputPath(ctx.String("out"), cfg.Scene, time.Now())
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return errors.Wrap(err, "creating output directory")
	}
	if err := writePNG(path, img); err != nil {
		return err
	}

	var buf bytes.Buffer
	stats.WriteTable(&buf)
	logger.Noticef("render statistics\n%s", buf.String())
	logger.Noticef("render saved as %s", path)
	return nil
}

// writePNG encodes img to path. A failed close is reported since it can
// lose buffered image data.
func writePNG(path string, img image.Image) (err error) {
	file, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "creating output file")
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil && err == nil {
			err = errors.Wrap(closeErr, "closing output file")
		}
	}()

	if err := png.Encode(file, img); err != nil {
		return errors.Wrap(err, "encoding png")
	}
	return nil
}

// ListScenes prints the built-in scenes.
func ListScenes(ctx *cli.Context) error {
	var buf bytes.Buffer
	writeSceneTable(&buf, scene.ListScenes())
	fmt.Fprint(ctx.App.Writer, buf.String())
	return nil
}

func writeSceneTable(buf *bytes.Buffer, scenes []scene.SceneInfo) {
	table := tablewriter.NewWriter(buf)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.SetHeader([]string{"ID", "Name", "Group", "Description"})
	for _, info := range scenes {
		table.Append([]string{info.ID, info.Name, info.Group, info.Description})
	}
	table.Render()
}

// TracePhotons runs the photon pass alone and prints its statistics.
func TracePhotons(ctx *cli.Context) error {
	cfg, err := loadConfig(ctx)
	setupLogging(ctx, cfg)
	if err != nil {
		return err
	}

	s, err := cfg.BuildScene()
	if err != nil {
		return err
	}

	runCtx, cancel := interruptContext()
	defer cancel()

	photonCfg := cfg.PhotonConfig()
	tracer := photon.NewTracer(s, photon.Config{
		MaxBounces: photonCfg.MaxBounces,
		Workers:    photonCfg.Workers,
		Seed:       photonCfg.Seed,
	})
	builder := photon.NewBuilder(photonCfg.Photons)

	start := time.Now()
	stats, err := tracer.GenericPhotonMapGeneration(runCtx, builder, photonCfg.Photons)
	if err != nil {
		return err
	}
	photonMap := builder.Optimise()

	var buf bytes.Buffer
	writePhotonTable(&buf, stats, photonMap.Len(), time.Since(start))
	fmt.Fprint(ctx.App.Writer, buf.String())
	return nil
}

func writePhotonTable(buf *bytes.Buffer, stats photon.TraceStats, mapSize int, elapsed time.Duration) {
	table := tablewriter.NewWriter(buf)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetAutoFormatHeaders(false)
	table.SetHeader([]string{"Stat", "Photons"})
	table.Append([]string{"Emitted", fmt.Sprint(stats.Emitted)})
	table.Append([]string{"Stored", fmt.Sprint(stats.Stored)})
	table.Append([]string{"Bounced", fmt.Sprint(stats.Bounced)})
	table.Append([]string{"Absorbed", fmt.Sprint(stats.Absorbed)})
	table.Append([]string{"Escaped", fmt.Sprint(stats.Escaped)})
	table.Append([]string{"Exhausted", fmt.Sprint(stats.Exhausted)})
	table.SetFooter([]string{"Map size", fmt.Sprintf("%d (%s)", mapSize, elapsed.Round(time.Millisecond))})
	table.Render()
}

// Serve runs the web server until interrupted.
func Serve(ctx *cli.Context) error {
	cfg, err := loadConfig(ctx)
	setupLogging(ctx, cfg)
	if err != nil {
		return err
	}

	runCtx, cancel := interruptContext()
	defer cancel()

	return server.NewServer(ctx.Int("port"), cfg).Start(runCtx)
}
