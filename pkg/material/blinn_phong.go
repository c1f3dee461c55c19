package material

import (
	"math"

	"github.com/df07/go-photon-raytracer/pkg/core"
)

// Texture slot names accepted by SetTexture
const (
	DiffuseTexture  = "diffuseTexture"
	SpecularTexture = "specularTexture"
)

// BlinnPhong is a diffuse + specular material with optional mirror
// reflection and refraction
type BlinnPhong struct {
	diffuse       core.Vec3
	specular      core.Vec3
	shininess     float64
	reflectivity  float64
	transmittance float64
	ior           float64
	textures      map[string]ColorSource
}

// NewBlinnPhong creates a white diffuse material without specular highlights
func NewBlinnPhong() *BlinnPhong {
	return &BlinnPhong{
		diffuse:   core.NewVec3(1, 1, 1),
		shininess: 1,
		ior:       1,
		textures:  make(map[string]ColorSource),
	}
}

// NewDiffuse creates a plain diffuse material
func NewDiffuse(albedo core.Vec3) *BlinnPhong {
	m := NewBlinnPhong()
	m.SetDiffuse(albedo)
	return m
}

// NewMirror creates a perfectly reflective material
func NewMirror() *BlinnPhong {
	m := NewBlinnPhong()
	m.SetDiffuse(core.Vec3{})
	m.SetReflectivity(1)
	return m
}

// NewGlass creates a transparent material with the given index of refraction
func NewGlass(ior float64) *BlinnPhong {
	m := NewBlinnPhong()
	m.SetDiffuse(core.Vec3{})
	m.SetTransmittance(1)
	m.SetIOR(ior)
	return m
}

// SetDiffuse sets the base diffuse reflectance
func (m *BlinnPhong) SetDiffuse(color core.Vec3) {
	m.diffuse = color
}

// SetSpecular sets the specular color and the Blinn-Phong exponent
func (m *BlinnPhong) SetSpecular(color core.Vec3, shininess float64) {
	m.specular = color
	m.shininess = shininess
}

// SetReflectivity sets the mirror weight, clamped to [0, 1]
func (m *BlinnPhong) SetReflectivity(reflectivity float64) {
	m.reflectivity = math.Max(0, math.Min(1, reflectivity))
}

// SetTransmittance sets the refraction weight, clamped to [0, 1]
func (m *BlinnPhong) SetTransmittance(transmittance float64) {
	m.transmittance = math.Max(0, math.Min(1, transmittance))
}

// SetIOR sets the index of refraction
func (m *BlinnPhong) SetIOR(ior float64) {
	m.ior = ior
}

// SetTexture binds a color source to a texture slot
func (m *BlinnPhong) SetTexture(name string, texture ColorSource) {
	if texture == nil {
		delete(m.textures, name)
		return
	}
	m.textures[name] = texture
}

func (m *BlinnPhong) BaseDiffuseReflection() core.Vec3  { return m.diffuse }
func (m *BlinnPhong) BaseSpecularReflection() core.Vec3 { return m.specular }
func (m *BlinnPhong) Shininess() float64                { return m.shininess }
func (m *BlinnPhong) Reflectivity() float64             { return m.reflectivity }
func (m *BlinnPhong) Transmittance() float64            { return m.transmittance }
func (m *BlinnPhong) IOR() float64                      { return m.ior }

// ComputeDiffuse modulates the base diffuse color by the diffuse texture
func (m *BlinnPhong) ComputeDiffuse(uv core.Vec2, point core.Vec3) core.Vec3 {
	return m.lookup(DiffuseTexture, m.diffuse, uv, point)
}

func (m *BlinnPhong) lookup(name string, base core.Vec3, uv core.Vec2, point core.Vec3) core.Vec3 {
	texture, ok := m.textures[name]
	if !ok {
		return base
	}
	return base.MultiplyVec(texture.Evaluate(uv, point))
}

// ComputeBRDF evaluates Lambert diffuse plus the Blinn-Phong half-vector lobe
func (m *BlinnPhong) ComputeBRDF(toLight, toViewer, normal core.Vec3, uv core.Vec2, point core.Vec3) (core.Vec3, core.Vec3) {
	nDotL := normal.Dot(toLight)
	if nDotL <= 0 {
		return core.Vec3{}, core.Vec3{}
	}

	diffuse := m.ComputeDiffuse(uv, point).Multiply(nDotL)

	var specular core.Vec3
	if !m.specular.IsZero() {
		halfVector := toLight.Add(toViewer).Normalize()
		if nDotH := normal.Dot(halfVector); nDotH > 0 {
			specular = m.lookup(SpecularTexture, m.specular, uv, point).Multiply(math.Pow(nDotH, m.shininess))
		}
	}

	return diffuse, specular
}

// Clone copies the material; texture sources are shared since they are read-only
func (m *BlinnPhong) Clone() Material {
	clone := *m
	clone.textures = make(map[string]ColorSource, len(m.textures))
	for name, texture := range m.textures {
		clone.textures[name] = texture
	}
	return &clone
}
