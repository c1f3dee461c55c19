package scene

import (
	"math"

	"github.com/df07/go-photon-raytracer/pkg/core"
	"github.com/df07/go-photon-raytracer/pkg/geometry"
	"github.com/df07/go-photon-raytracer/pkg/lights"
	"github.com/df07/go-photon-raytracer/pkg/material"
)

// NewPlaneScene creates a unit diffuse square at z=0 facing a white point
// light at (0,0,5). A large diffuse ceiling at z=6 sends bounced photons
// back down onto the square.
func NewPlaneScene() (*Scene, error) {
	s := New()
	s.Camera = CameraConfig{
		Center: core.NewVec3(0, -2, 2),
		LookAt: core.NewVec3(0, 0, 0),
		Up:     core.NewVec3(0, 0, 1),
		VFov:   45,
	}

	plane := geometry.NewQuadMesh("plane",
		core.NewVec3(-0.5, -0.5, 0), // corner
		core.NewVec3(1, 0, 0),       // u vector (X direction)
		core.NewVec3(0, 1, 0),       // v vector (Y direction), normal +Z
		material.NewDiffuse(core.NewVec3(0.8, 0.8, 0.8)),
	)
	s.AddSceneObject(NewSceneObject("plane", plane))

	ceiling := geometry.NewQuadMesh("ceiling",
		core.NewVec3(-10, -10, 6),
		core.NewVec3(0, 20, 0),
		core.NewVec3(20, 0, 0), // normal -Z
		material.NewDiffuse(core.NewVec3(0.8, 0.8, 0.8)),
	)
	s.AddSceneObject(NewSceneObject("ceiling", ceiling))

	s.AddLight(lights.NewPointLight(core.NewVec3(0, 0, 5), core.NewVec3(1, 1, 1)))
	return s, nil
}

// NewCornellScene creates a Cornell box from triangles with an area light,
// a mirror block placed through its object transform, and a glass sphere
func NewCornellScene() (*Scene, error) {
	s := New()
	s.Camera = CameraConfig{
		Center: core.NewVec3(0, 0, 3.6), // Position camera outside the box looking in
		LookAt: core.NewVec3(0, 0, 0),   // Look at the center of the box
		Up:     core.NewVec3(0, 1, 0),
		VFov:   40,
	}

	white := material.NewDiffuse(core.NewVec3(0.73, 0.73, 0.73))
	red := material.NewDiffuse(core.NewVec3(0.65, 0.05, 0.05))
	green := material.NewDiffuse(core.NewVec3(0.12, 0.45, 0.15))

	// The box spans [-1, 1] on every axis; the front (+Z) is open
	walls := NewSceneObject("walls",
		// Floor (white) - normal +Y
		geometry.NewQuadMesh("floor", core.NewVec3(-1, -1, -1), core.NewVec3(0, 0, 2), core.NewVec3(2, 0, 0), white),
		// Ceiling (white) - normal -Y
		geometry.NewQuadMesh("ceiling", core.NewVec3(-1, 1, -1), core.NewVec3(2, 0, 0), core.NewVec3(0, 0, 2), white),
		// Back wall (white) - normal +Z
		geometry.NewQuadMesh("back", core.NewVec3(-1, -1, -1), core.NewVec3(2, 0, 0), core.NewVec3(0, 2, 0), white),
		// Left wall (red) - normal +X
		geometry.NewQuadMesh("left", core.NewVec3(-1, -1, -1), core.NewVec3(0, 2, 0), core.NewVec3(0, 0, 2), red),
		// Right wall (green) - normal -X
		geometry.NewQuadMesh("right", core.NewVec3(1, -1, -1), core.NewVec3(0, 0, 2), core.NewVec3(0, 2, 0), green),
	)
	s.AddSceneObject(walls)

	// Mirror block built at the origin and placed by its transform
	mirror := material.NewBlinnPhong()
	mirror.SetDiffuse(core.NewVec3(0.1, 0.1, 0.1))
	mirror.SetSpecular(core.NewVec3(0.5, 0.5, 0.5), 40)
	mirror.SetReflectivity(0.8)
	block := NewSceneObject("block",
		geometry.NewBoxMesh("block", core.Vec3{}, core.NewVec3(0.5, 1, 0.5), core.Vec3{}, mirror),
	)
	block.Transform.MultScale(0.4)
	block.Transform.Rotate(core.NewVec3(0, 1, 0), 0.3)
	block.Transform.Translate(core.NewVec3(-0.4, -0.6, -0.3))
	s.AddSceneObject(block)

	// Glass sphere
	glass := geometry.NewMeshObject("sphere", material.NewGlass(1.5))
	glass.AddSphere(geometry.NewSphere(core.NewVec3(0.4, -0.65, 0.2), 0.35))
	s.AddSceneObject(NewSceneObject("sphere", glass))

	// Ceiling light slightly below the ceiling, facing down
	s.AddLight(lights.NewAreaLight(
		core.NewVec3(-0.25, 0.99, -0.25),
		core.NewVec3(0.5, 0, 0),
		core.NewVec3(0, 0, 0.5),
		core.NewVec3(1, 1, 1),
		2,
	))
	return s, nil
}

// NewCubesScene creates textured Blinn-Phong cubes on a checkerboard floor,
// lit by several point lights of different strength
func NewCubesScene() (*Scene, error) {
	s := New()
	s.Camera = CameraConfig{
		Center: core.NewVec3(0, -14, 7),
		LookAt: core.NewVec3(0, 0, 1),
		Up:     core.NewVec3(0, 0, 1),
		VFov:   40,
	}

	floorMaterial := material.NewDiffuse(core.NewVec3(0.9, 0.9, 0.9))
	floorMaterial.SetTexture(material.DiffuseTexture, material.NewSolidChecker(2,
		core.NewVec3(0.9, 0.9, 0.9), core.NewVec3(0.2, 0.2, 0.25)))
	floor := geometry.NewQuadMesh("floor",
		core.NewVec3(-10, -10, 0),
		core.NewVec3(20, 0, 0),
		core.NewVec3(0, 20, 0), // normal +Z
		floorMaterial,
	)
	s.AddSceneObject(NewSceneObject("floor", floor))

	cubeMaterial := material.NewBlinnPhong()
	cubeMaterial.SetDiffuse(core.NewVec3(0.6, 0.6, 0.6))
	cubeMaterial.SetSpecular(core.NewVec3(0.4, 0.4, 0.4), 40)
	cubeMaterial.SetReflectivity(0.3)

	tints := []core.Vec3{
		core.NewVec3(0.8, 0.3, 0.3),
		core.NewVec3(0.3, 0.8, 0.3),
		core.NewVec3(0.3, 0.3, 0.8),
		core.NewVec3(0.8, 0.8, 0.3),
	}
	for i, tint := range tints {
		// Each cube gets its own specialized copy of the shared material
		mat := cubeMaterial.Clone().(*material.BlinnPhong)
		mat.SetDiffuse(tint)

		cube := NewSceneObject("cube", geometry.NewBoxMesh("cube", core.Vec3{}, core.NewVec3(1, 1, 1), core.Vec3{}, mat))
		angle := float64(i) * math.Pi / 8
		cube.Transform.Rotate(core.NewVec3(0, 0, 1), angle)
		cube.Transform.Translate(core.NewVec3(-4.5+3*float64(i), 0, 1))
		s.AddSceneObject(cube)
	}

	s.AddLight(lights.NewPointLight(core.NewVec3(-3, -3, 8), core.NewVec3(0.5, 0.5, 0.4)))
	s.AddLight(lights.NewPointLight(core.NewVec3(6, -8, 6.4), core.NewVec3(0.3, 0.3, 0.3)))
	s.AddLight(lights.NewPointLight(core.NewVec3(-6, 2, 10), core.NewVec3(0.2, 0.2, 0.25)))
	return s, nil
}
