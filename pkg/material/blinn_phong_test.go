package material

import (
	"math"
	"testing"

	"github.com/df07/go-photon-raytracer/pkg/core"
)

func TestBlinnPhong_ComputeBRDF(t *testing.T) {
	m := NewDiffuse(core.NewVec3(0.5, 0.25, 1))
	m.SetSpecular(core.NewVec3(1, 1, 1), 10)

	normal := core.NewVec3(0, 0, 1)

	tests := []struct {
		name             string
		toLight          core.Vec3
		toViewer         core.Vec3
		expectedDiffuse  core.Vec3
		expectedSpecular float64
	}{
		{
			name:             "light and viewer along the normal",
			toLight:          normal,
			toViewer:         normal,
			expectedDiffuse:  core.NewVec3(0.5, 0.25, 1),
			expectedSpecular: 1,
		},
		{
			name:             "light below the surface",
			toLight:          core.NewVec3(0, 0, -1),
			toViewer:         normal,
			expectedDiffuse:  core.Vec3{},
			expectedSpecular: 0,
		},
		{
			name:             "grazing light at 60 degrees",
			toLight:          core.NewVec3(math.Sin(math.Pi/3), 0, math.Cos(math.Pi/3)),
			toViewer:         core.NewVec3(-math.Sin(math.Pi/3), 0, math.Cos(math.Pi/3)),
			expectedDiffuse:  core.NewVec3(0.25, 0.125, 0.5),
			expectedSpecular: 1, // mirror configuration: half vector is the normal
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			diffuse, specular := m.ComputeBRDF(tt.toLight, tt.toViewer, normal, core.Vec2{}, core.Vec3{})
			if diffuse.Subtract(tt.expectedDiffuse).Length() > 1e-9 {
				t.Errorf("Expected diffuse %v, got %v", tt.expectedDiffuse, diffuse)
			}
			if math.Abs(specular.X-tt.expectedSpecular) > 1e-9 {
				t.Errorf("Expected specular %f, got %v", tt.expectedSpecular, specular)
			}
		})
	}
}

func TestBlinnPhong_TextureModulatesDiffuse(t *testing.T) {
	m := NewDiffuse(core.NewVec3(0.5, 0.5, 0.5))
	m.SetTexture(DiffuseTexture, NewSolidColor(core.NewVec3(1, 0, 0.5)))

	got := m.ComputeDiffuse(core.Vec2{}, core.Vec3{})
	expected := core.NewVec3(0.5, 0, 0.25)
	if !got.Equals(expected) {
		t.Errorf("Expected %v, got %v", expected, got)
	}

	// The base reflectance used for photon roulette is not textured
	if !m.BaseDiffuseReflection().Equals(core.NewVec3(0.5, 0.5, 0.5)) {
		t.Errorf("Base diffuse changed by texture: %v", m.BaseDiffuseReflection())
	}
}

func TestBlinnPhong_CloneIsIndependent(t *testing.T) {
	original := NewDiffuse(core.NewVec3(1, 1, 1))
	original.SetTexture(DiffuseTexture, NewSolidColor(core.NewVec3(0, 1, 0)))

	clone := original.Clone().(*BlinnPhong)
	clone.SetDiffuse(core.NewVec3(0.2, 0.2, 0.2))
	clone.SetTexture(DiffuseTexture, nil)
	clone.SetReflectivity(3)

	if !original.BaseDiffuseReflection().Equals(core.NewVec3(1, 1, 1)) {
		t.Errorf("Clone modified original diffuse: %v", original.BaseDiffuseReflection())
	}
	if got := original.ComputeDiffuse(core.Vec2{}, core.Vec3{}); !got.Equals(core.NewVec3(0, 1, 0)) {
		t.Errorf("Clone modified original texture binding, got %v", got)
	}
	if clone.Reflectivity() != 1 {
		t.Errorf("Expected reflectivity clamped to 1, got %f", clone.Reflectivity())
	}
}
