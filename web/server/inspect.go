package server

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/df07/go-photon-raytracer/pkg/accel"
	"github.com/df07/go-photon-raytracer/pkg/core"
	"github.com/df07/go-photon-raytracer/pkg/geometry"
	"github.com/df07/go-photon-raytracer/pkg/material"
	"github.com/df07/go-photon-raytracer/pkg/renderer"
	"github.com/df07/go-photon-raytracer/pkg/scene"
)

// InspectResponse represents the JSON response for object inspection
type InspectResponse struct {
	Hit          bool                   `json:"hit"`
	Object       string                 `json:"object"`
	MaterialType string                 `json:"materialType"`
	GeometryType string                 `json:"geometryType"`
	Point        [3]float64             `json:"point"`
	Normal       [3]float64             `json:"normal"`
	Distance     float64                `json:"distance"`
	Properties   map[string]interface{} `json:"properties"`
}

func triple(v core.Vec3) [3]float64 {
	return [3]float64{v.X, v.Y, v.Z}
}

func hexColor(v core.Vec3) string {
	v = v.Clamp(0, 1)
	return fmt.Sprintf("#%02x%02x%02x", int(v.X*255), int(v.Y*255), int(v.Z*255))
}

// extractMaterialInfo describes the material at a hit
func extractMaterialInfo(mat material.Material, uv core.Vec2, point core.Vec3) (string, map[string]interface{}) {
	properties := make(map[string]interface{})

	switch m := mat.(type) {
	case *material.BlinnPhong:
		diffuse := m.ComputeDiffuse(uv, point)
		properties["diffuse"] = triple(diffuse)
		properties["color"] = hexColor(diffuse)
		properties["specular"] = triple(m.BaseSpecularReflection())
		properties["shininess"] = m.Shininess()
		properties["reflectivity"] = m.Reflectivity()
		properties["transmittance"] = m.Transmittance()
		properties["ior"] = m.IOR()
		return "blinn_phong", properties

	case nil:
		return "none", properties

	default:
		properties["reflectivity"] = m.Reflectivity()
		properties["transmittance"] = m.Transmittance()
		return "unknown", properties
	}
}

// extractGeometryInfo describes the hit primitive in object space
func extractGeometryInfo(primitive geometry.Primitive) (string, map[string]interface{}) {
	properties := make(map[string]interface{})
	bbox := primitive.BoundingBox()
	properties["boundingBox"] = map[string]interface{}{
		"min": triple(bbox.Min),
		"max": triple(bbox.Max),
	}

	switch p := primitive.(type) {
	case *geometry.Triangle:
		properties["area"] = p.Area()
		return "triangle", properties
	case *geometry.Sphere:
		properties["center"] = triple(p.Center)
		properties["radius"] = p.Radius
		return "sphere", properties
	default:
		return "unknown", properties
	}
}

// extractObjectInfo describes the scene object owning mesh and its
// acceleration structure
func extractObjectInfo(s *scene.Scene, mesh *geometry.MeshObject) map[string]interface{} {
	for _, object := range s.Objects() {
		for _, m := range object.MeshObjects() {
			if m != mesh {
				continue
			}
			properties := map[string]interface{}{
				"name":       object.Name,
				"primitives": object.PrimitiveCount(),
			}
			if structure := object.Structure(); structure != nil {
				properties["accel"] = structure.Kind().String()
				if grid, ok := structure.(*accel.Grid); ok {
					properties["gridResolution"] = grid.Resolution()
				}
			}
			return properties
		}
	}
	return nil
}

// inspectPixel casts a ray through the center of pixel (x, y) and returns
// the nearest hit
func inspectPixel(s *scene.Scene, cfg renderer.Config, x, y int) (scene.IntersectionState, bool) {
	rt := renderer.NewRaytracer(s, cfg)
	state := scene.NewIntersectionState(0, 0)
	s.Trace(rt.PixelRay(float64(x)+0.5, float64(y)+0.5), &state)
	return state, state.HasIntersection()
}

// handleInspect handles ray casting inspection requests
func (s *Server) handleInspect(w http.ResponseWriter, r *http.Request) {
	cfg, err := s.parseRenderRequest(r.URL.Query())
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid scene parameters: "+err.Error())
		return
	}

	pixelX, err := strconv.Atoi(r.URL.Query().Get("x"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid x coordinate")
		return
	}
	pixelY, err := strconv.Atoi(r.URL.Query().Get("y"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid y coordinate")
		return
	}
	if pixelX < 0 || pixelX >= cfg.Width || pixelY < 0 || pixelY >= cfg.Height {
		writeError(w, http.StatusBadRequest, "Pixel coordinates out of bounds")
		return
	}

	sc, err := cfg.BuildScene()
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	state, hit := inspectPixel(sc, cfg.RendererConfig(), pixelX, pixelY)
	if !hit {
		writeJSON(w, http.StatusOK, InspectResponse{Hit: false})
		return
	}

	point := state.Point()
	materialType, materialProps := extractMaterialInfo(state.Material(), state.UV(), point)
	geometryType, geometryProps := extractGeometryInfo(state.Primitive)

	writeJSON(w, http.StatusOK, InspectResponse{
		Hit:          true,
		Object:       state.Primitive.Mesh().Name,
		MaterialType: materialType,
		GeometryType: geometryType,
		Point:        triple(point),
		Normal:       triple(state.ComputeNormal()),
		Distance:     state.T,
		Properties: map[string]interface{}{
			"material": materialProps,
			"geometry": geometryProps,
			"object":   extractObjectInfo(sc, state.Primitive.Mesh()),
		},
	})
}
