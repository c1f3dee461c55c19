package main

import (
	"os"

	"github.com/urfave/cli"

	"github.com/df07/go-photon-raytracer/pkg/log"
)

var logger = log.New("raytracer")

func main() {
	if err := newApp().Run(os.Args); err != nil {
		logger.Error(err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	// The default version flag claims -v, which the verbosity flag uses
	cli.VersionFlag = cli.BoolFlag{
		Name:  "version",
		Usage: "print only the version",
	}

	app := cli.NewApp()
	app.Name = "photon-raytracer"
	app.Usage = "render scenes with a Whitted ray tracer and a diffuse photon map"
	app.Version = "0.1.0"
	app.Flags = []cli.Flag{
		cli.BoolFlag{
			Name:  "v",
			Usage: "enable verbose logging",
		},
		cli.BoolFlag{
			Name:  "vv",
			Usage: "enable even more verbose logging",
		},
	}

	sceneFlags := []cli.Flag{
		cli.StringFlag{
			Name:  "scene",
			Usage: "built-in scene id (see the scenes command)",
		},
		cli.StringFlag{
			Name:  "config",
			Usage: "YAML render config applied before the other flags",
		},
		cli.StringFlag{
			Name:  "accel",
			Usage: "acceleration structure: none, bvh or grid",
		},
		cli.IntFlag{
			Name:  "photons",
			Usage: "number of photons emitted by all lights together",
		},
		cli.Uint64Flag{
			Name:  "seed",
			Usage: "base seed of every sampler stream",
		},
	}

	app.Commands = []cli.Command{
		{
			Name:  "render",
			Usage: "render a scene to a PNG file",
			Description: `
Trace a diffuse photon map from the scene lights, then render the image with
direct lighting, mirror reflection, refraction and the photon map indirect
term. Settings come from the defaults, then --config, then the flags.`,
			Flags: append(sceneFlags,
				cli.IntFlag{
					Name:  "width",
					Usage: "image width",
				},
				cli.IntFlag{
					Name:  "height",
					Usage: "image height",
				},
				cli.StringFlag{
					Name:  "photon-mode",
					Usage: "indirect term: visualize, estimate, nearest or off",
				},
				cli.IntFlag{
					Name:  "photon-nearest",
					Usage: "photons gathered per estimate in nearest mode",
				},
				cli.StringFlag{
					Name:  "out",
					Usage: "output file; defaults to output/<scene>/render_<timestamp>.png",
				},
			),
			Action: RenderScene,
		},
		{
			Name:   "scenes",
			Usage:  "list the built-in scenes",
			Action: ListScenes,
		},
		{
			Name:   "photons",
			Usage:  "run only the photon pass and print its statistics",
			Flags:  sceneFlags,
			Action: TracePhotons,
		},
		{
			Name:  "serve",
			Usage: "serve renders over HTTP",
			Description: `
Start a web server. GET /api/render streams photon and tile progress as
server-sent events and finishes with the PNG; GET /api/inspect describes the
surface under a pixel. Query parameters override the --config settings.`,
			Flags: []cli.Flag{
				cli.IntFlag{
					Name:  "port",
					Value: 8080,
					Usage: "port to serve on",
				},
				cli.StringFlag{
					Name:  "config",
					Usage: "YAML render config used as request defaults",
				},
			},
			Action: Serve,
		},
	}
	return app
}
