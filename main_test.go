package main

import (
	"bytes"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func runApp(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var buf bytes.Buffer
	app := newApp()
	app.Writer = &buf
	app.ErrWriter = &buf
	err := app.Run(append([]string{"photon-raytracer"}, args...))
	return buf.String(), err
}

func TestScenesCommand(t *testing.T) {
	out, err := runApp(t, "scenes")
	if err != nil {
		t.Fatalf("scenes failed: %v", err)
	}
	for _, id := range []string{"plane", "cornell", "cubes"} {
		if !strings.Contains(out, id) {
			t.Errorf("Expected scene %q in the listing:\n%s", id, out)
		}
	}
}

func TestGlobalFlags(t *testing.T) {
	out, err := runApp(t, "-v", "scenes")
	if err != nil {
		t.Fatalf("scenes with -v failed: %v", err)
	}
	if !strings.Contains(out, "cornell") {
		t.Errorf("Expected the scene listing after -v:\n%s", out)
	}

	out, err = runApp(t, "--version")
	if err != nil {
		t.Fatalf("--version failed: %v", err)
	}
	if !strings.Contains(out, "0.1.0") {
		t.Errorf("Expected the version, got %q", out)
	}
}

func TestPhotonsCommand(t *testing.T) {
	out, err := runApp(t, "photons", "--scene", "plane", "--photons", "2000", "--accel", "grid")
	if err != nil {
		t.Fatalf("photons failed: %v", err)
	}
	for _, want := range []string{"Emitted", "2000", "Stored", "Map size"} {
		if !strings.Contains(out, want) {
			t.Errorf("Expected %q in the photon statistics:\n%s", want, out)
		}
	}
}

func TestRenderCommand(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "render.yaml")
	if err := os.WriteFile(configPath, []byte("jitter: [1, 1, 1]\ntile_size: 4\n"), 0o644); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}
	out := filepath.Join(dir, "nested", "plane.png")

	if _, err := runApp(t, "render", "--config", configPath, "--scene", "plane",
		"--width", "10", "--height", "6", "--photons", "500", "--photon-mode", "estimate", "--out", out); err != nil {
		t.Fatalf("render failed: %v", err)
	}

	file, err := os.Open(out)
	if err != nil {
		t.Fatalf("Expected the PNG to be written: %v", err)
	}
	defer file.Close()
	img, err := png.Decode(file)
	if err != nil {
		t.Fatalf("Invalid PNG: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 10 || b.Dy() != 6 {
		t.Errorf("Expected a 10x6 image, got %v", b)
	}
}

func TestRenderCommand_Errors(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"unknown scene", []string{"render", "--scene", "nonexistent"}},
		{"unknown accel", []string{"render", "--scene", "plane", "--accel", "octree"}},
		{"unknown photon mode", []string{"render", "--scene", "plane", "--photon-mode", "caustics"}},
		{"bad size", []string{"render", "--scene", "plane", "--width", "0"}},
		{"missing config", []string{"render", "--config", "does/not/exist.yaml"}},
		{"serve missing config", []string{"serve", "--config", "does/not/exist.yaml"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := runApp(t, tt.args...); err == nil {
				t.Errorf("Expected an error for %v", tt.args)
			}
		})
	}
}

func TestWritePNG(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 3, 2))
	path := filepath.Join(t.TempDir(), "out.png")
	if err := writePNG(path, img); err != nil {
		t.Fatalf("writePNG failed: %v", err)
	}
	file, err := os.Open(path)
	if err != nil {
		t.Fatalf("Expected the file to exist: %v", err)
	}
	defer file.Close()
	if decoded, err := png.Decode(file); err != nil || decoded.Bounds() != img.Bounds() {
		t.Errorf("Expected a 3x2 PNG, got %v (%v)", decoded, err)
	}

	if err := writePNG(filepath.Join(t.TempDir(), "missing", "out.png"), img); err == nil {
		t.Error("Expected an error for a missing directory")
	}
}

func TestOutputPath(t *testing.T) {
	now := time.Date(2024, 3, 9, 14, 5, 7, 0, time.UTC)
	tests := []struct {
		name  string
		out   string
		scene string
		want  string
	}{
		{"explicit", "frame.png", "cornell", "frame.png"},
		{"default", "", "cornell", filepath.Join("output", "cornell", "render_20240309_140507.png")},
		{"scene dir", "", "plane", filepath.Join("output", "plane", "render_20240309_140507.png")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := outputPath(tt.out, tt.scene, now); got != tt.want {
				t.Errorf("Expected %q, got %q", tt.want, got)
			}
		})
	}
}
