package loaders

import (
	"path/filepath"

	"github.com/pkg/errors"

	"github.com/df07/go-photon-raytracer/pkg/core"
	"github.com/df07/go-photon-raytracer/pkg/material"
	"github.com/df07/go-photon-raytracer/pkg/scene"
)

// ObjectSpec describes a mesh file placed into a scene with a Blinn-Phong
// material. Relative paths are resolved against the directory passed to
// LoadSceneObject.
type ObjectSpec struct {
	Name    string `yaml:"name"`
	Mesh    string `yaml:"mesh"`    // PLY file
	Texture string `yaml:"texture"` // Optional PNG or JPEG diffuse texture

	Diffuse       [3]float64 `yaml:"diffuse"`
	Specular      [3]float64 `yaml:"specular"`
	Shininess     float64    `yaml:"shininess"`
	Reflectivity  float64    `yaml:"reflectivity"`
	Transmittance float64    `yaml:"transmittance"`
	IOR           float64    `yaml:"ior"`

	Position    [3]float64 `yaml:"position"`
	Scale       float64    `yaml:"scale"`        // Uniform scale; 0 keeps 1
	RotateAxis  [3]float64 `yaml:"rotate_axis"`  // Rotation axis
	RotateAngle float64    `yaml:"rotate_angle"` // Radians
}

func vec(v [3]float64) core.Vec3 {
	return core.NewVec3(v[0], v[1], v[2])
}

// Material builds the object's material, loading its texture if any
func (spec ObjectSpec) Material(dir string) (material.Material, error) {
	mat := material.NewBlinnPhong()
	mat.SetDiffuse(vec(spec.Diffuse))
	if specular := vec(spec.Specular); !specular.IsZero() {
		mat.SetSpecular(specular, max(spec.Shininess, 1))
	}
	mat.SetReflectivity(spec.Reflectivity)
	mat.SetTransmittance(spec.Transmittance)
	if spec.IOR > 0 {
		mat.SetIOR(spec.IOR)
	}

	if spec.Texture != "" {
		texture, err := LoadImageTexture(resolve(dir, spec.Texture))
		if err != nil {
			return nil, err
		}
		mat.SetTexture(material.DiffuseTexture, texture)
		if !vec(spec.Specular).IsZero() {
			mat.SetTexture(material.SpecularTexture, texture)
		}
	}
	return mat, nil
}

// LoadSceneObject loads the configured mesh and wraps it in a placed scene object
func LoadSceneObject(spec ObjectSpec, dir string) (*scene.SceneObject, error) {
	if spec.Mesh == "" {
		return nil, errors.Errorf("object %q has no mesh file", spec.Name)
	}
	name := spec.Name
	if name == "" {
		name = filepath.Base(spec.Mesh)
	}

	mat, err := spec.Material(dir)
	if err != nil {
		return nil, errors.Wrapf(err, "object %q", name)
	}

	data, err := LoadPLY(resolve(dir, spec.Mesh))
	if err != nil {
		return nil, errors.Wrapf(err, "object %q", name)
	}
	mesh, err := NewPLYMesh(data, name, mat)
	if err != nil {
		return nil, err
	}

	object := scene.NewSceneObject(name, mesh)
	if spec.Scale > 0 {
		object.Transform.MultScale(spec.Scale)
	}
	if axis := vec(spec.RotateAxis); spec.RotateAngle != 0 && !axis.IsZero() {
		object.Transform.Rotate(axis, spec.RotateAngle)
	}
	object.Transform.Translate(vec(spec.Position))
	return object, nil
}

func resolve(dir, path string) string {
	if dir == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(dir, path)
}
