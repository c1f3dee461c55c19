package renderer

import (
	"context"
	"math"
	"testing"

	"github.com/df07/go-photon-raytracer/pkg/accel"
	"github.com/df07/go-photon-raytracer/pkg/core"
	"github.com/df07/go-photon-raytracer/pkg/photon"
)

func photonConfig(mode PhotonMode) PhotonConfig {
	config := DefaultPhotonConfig()
	config.Photons = 20000
	config.Radius = 0.5
	config.Mode = mode
	config.Workers = 2
	return config
}

func TestPhotonRenderer_IndirectEstimateBelowLight(t *testing.T) {
	for _, kind := range []accel.Kind{accel.KindBVH, accel.KindGrid} {
		pr := NewPhotonRenderer(planeScene(t, kind), DefaultConfig(), photonConfig(PhotonModeEstimate))
		if err := pr.InitializeRenderer(context.Background()); err != nil {
			t.Fatalf("%s: InitializeRenderer failed: %v", kind, err)
		}

		if pr.DiffuseMap() == nil || pr.DiffuseMap().Len() == 0 {
			t.Fatalf("%s: expected stored photons after the photon pass", kind)
		}
		if stats := pr.TraceStats(); stats.Emitted != 20000 || stats.Stored != pr.DiffuseMap().Len() {
			t.Errorf("%s: unexpected trace stats %+v", kind, stats)
		}

		diffuse := core.NewVec3(0.8, 0.8, 0.8)
		indirect := pr.EstimateIndirect(core.Vec3{}, core.NewVec3(0, 0, 1), diffuse)
		if indirect.X <= 0 || indirect.Y <= 0 || indirect.Z <= 0 {
			t.Errorf("%s: expected a positive indirect estimate at the plane center, got %v", kind, indirect)
		}

		// The shaded color is the direct term plus the estimate
		color := pr.TraceRay(core.NewRay(core.NewVec3(0, 0, 1), core.NewVec3(0, 0, -1)), core.NewRandomSampler(1))
		if color.X <= 0.8 {
			t.Errorf("%s: expected the indirect term on top of direct light 0.8, got %v", kind, color)
		}
	}
}

func TestPhotonRenderer_Visualize(t *testing.T) {
	pr := NewPhotonRenderer(planeScene(t, accel.KindBVH), DefaultConfig(), photonConfig(PhotonModeVisualize))
	if err := pr.InitializeRenderer(context.Background()); err != nil {
		t.Fatalf("InitializeRenderer failed: %v", err)
	}

	photons := pr.DiffuseMap().Photons()
	if len(photons) == 0 {
		t.Fatal("Expected stored photons")
	}
	if got := pr.EstimateIndirect(photons[0].Position, core.NewVec3(0, 0, 1), core.Vec3{}); got != visualizeColor {
		t.Errorf("Expected %v at a stored photon, got %v", visualizeColor, got)
	}
	if got := pr.EstimateIndirect(core.NewVec3(100, 100, 100), core.NewVec3(0, 0, 1), core.Vec3{}); !got.IsZero() {
		t.Errorf("Expected nothing far from every photon, got %v", got)
	}
}

func TestPhotonRenderer_NearestEstimate(t *testing.T) {
	builder := photon.NewBuilder(3)
	for _, position := range []core.Vec3{core.NewVec3(1, 0, 0), core.NewVec3(0, 2, 0), core.NewVec3(0, 0, 5)} {
		if err := builder.Insert(photon.Photon{Position: position, Intensity: core.NewVec3(1, 1, 1)}); err != nil {
			t.Fatalf("Insert failed: %v", err)
		}
	}
	diffuseMap := builder.Optimise()
	diffuse := core.NewVec3(1, 0.5, 0)

	tests := []struct {
		name    string
		nearest int
		want    float64
	}{
		// Two photons inside the radius of the second one
		{"two nearest", 2, 2 / (math.Pi * 4)},
		// k beyond the map size gathers everything
		{"whole map", 10, 3 / (math.Pi * 25)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := photonConfig(PhotonModeNearest)
			config.Nearest = tt.nearest
			pr := NewPhotonRenderer(planeScene(t, accel.KindBVH), DefaultConfig(), config)
			pr.diffuseMap = diffuseMap

			got := pr.EstimateIndirect(core.Vec3{}, core.NewVec3(0, 0, 1), diffuse)
			want := diffuse.Multiply(tt.want)
			if got.Subtract(want).Length() > 1e-12 {
				t.Errorf("Expected %v, got %v", want, got)
			}
		})
	}
}

func TestPhotonRenderer_NearestBelowLight(t *testing.T) {
	config := photonConfig(PhotonModeNearest)
	config.Nearest = 20
	pr := NewPhotonRenderer(planeScene(t, accel.KindGrid), DefaultConfig(), config)
	if err := pr.InitializeRenderer(context.Background()); err != nil {
		t.Fatalf("InitializeRenderer failed: %v", err)
	}

	indirect := pr.EstimateIndirect(core.Vec3{}, core.NewVec3(0, 0, 1), core.NewVec3(0.8, 0.8, 0.8))
	if indirect.X <= 0 || indirect.Y <= 0 || indirect.Z <= 0 {
		t.Errorf("Expected a positive nearest estimate at the plane center, got %v", indirect)
	}
}

func TestPhotonRenderer_Off(t *testing.T) {
	pr := NewPhotonRenderer(planeScene(t, accel.KindBVH), DefaultConfig(), photonConfig(PhotonModeOff))
	if err := pr.InitializeRenderer(context.Background()); err != nil {
		t.Fatalf("InitializeRenderer failed: %v", err)
	}
	if pr.DiffuseMap() != nil {
		t.Error("Expected no photon map with the indirect term off")
	}

	color := pr.TraceRay(core.NewRay(core.NewVec3(0, 0, 1), core.NewVec3(0, 0, -1)), core.NewRandomSampler(1))
	direct := NewRaytracer(planeScene(t, accel.KindBVH), DefaultConfig()).
		TraceRay(core.NewRay(core.NewVec3(0, 0, 1), core.NewVec3(0, 0, -1)), core.NewRandomSampler(1))
	if color != direct {
		t.Errorf("Expected direct light only %v, got %v", direct, color)
	}
}

func TestPhotonRenderer_SetNumberOfDiffusePhotons(t *testing.T) {
	pr := NewPhotonRenderer(planeScene(t, accel.KindBVH), DefaultConfig(), photonConfig(PhotonModeEstimate))
	pr.SetNumberOfDiffusePhotons(500)
	if err := pr.InitializeRenderer(context.Background()); err != nil {
		t.Fatalf("InitializeRenderer failed: %v", err)
	}
	if got := pr.TraceStats().Emitted; got != 500 {
		t.Errorf("Expected 500 emitted photons, got %d", got)
	}
}

func TestPhotonRenderer_Errors(t *testing.T) {
	config := photonConfig(PhotonModeEstimate)
	config.Radius = 0
	pr := NewPhotonRenderer(planeScene(t, accel.KindBVH), DefaultConfig(), config)
	if err := pr.InitializeRenderer(context.Background()); err == nil {
		t.Error("Expected an error for a zero gather radius")
	}

	config = photonConfig(PhotonModeNearest)
	config.Nearest = 0
	pr = NewPhotonRenderer(planeScene(t, accel.KindBVH), DefaultConfig(), config)
	if err := pr.InitializeRenderer(context.Background()); err == nil {
		t.Error("Expected an error for a zero nearest count")
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	pr = NewPhotonRenderer(planeScene(t, accel.KindBVH), DefaultConfig(), photonConfig(PhotonModeEstimate))
	if err := pr.InitializeRenderer(ctx); err == nil {
		t.Error("Expected an error for a cancelled photon pass")
	}
}

func TestPhotonRenderer_Render(t *testing.T) {
	config := photonConfig(PhotonModeEstimate)
	config.Photons = 2000
	pr := NewPhotonRenderer(planeScene(t, accel.KindBVH), smallConfig(), config)

	img, stats, err := pr.Render(context.Background())
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	if img.Bounds().Dx() != 16 || img.Bounds().Dy() != 12 {
		t.Errorf("Unexpected image bounds %v", img.Bounds())
	}
	if len(stats.Phases) != 2 || stats.Phases[0].Name != "photons" || stats.Phases[1].Name != "render" {
		t.Errorf("Expected photon and render phases, got %+v", stats.Phases)
	}
}

func TestParsePhotonMode(t *testing.T) {
	tests := []struct {
		name    string
		want    PhotonMode
		wantErr bool
	}{
		{"visualize", PhotonModeVisualize, false},
		{"estimate", PhotonModeEstimate, false},
		{"nearest", PhotonModeNearest, false},
		{"off", PhotonModeOff, false},
		{"caustic", "", true},
	}

	for _, tt := range tests {
		got, err := ParsePhotonMode(tt.name)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("ParsePhotonMode(%q) = %q, %v", tt.name, got, err)
		}
	}
}
