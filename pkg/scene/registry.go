package scene

import (
	"strings"

	"github.com/pkg/errors"
	"golang.org/x/exp/slices"
)

// SceneInfo describes a built-in scene
type SceneInfo struct {
	ID          string `yaml:"id" json:"id"`                   // Unique identifier
	Name        string `yaml:"name" json:"name"`               // Scene name
	Description string `yaml:"description" json:"description"` // Optional description
	Group       string `yaml:"group" json:"group"`             // Grouping category
}

type entry struct {
	info  SceneInfo
	build func() (*Scene, error)
}

var registry = map[string]entry{
	"plane": {
		info: SceneInfo{
			ID:          "plane",
			Name:        "Lit Plane",
			Description: "Unit diffuse plane under a point light with a diffuse ceiling",
			Group:       "Built-in Scenes",
		},
		build: NewPlaneScene,
	},
	"cornell": {
		info: SceneInfo{
			ID:          "cornell",
			Name:        "Cornell Box",
			Description: "Triangle Cornell box with a mirror block and a glass sphere",
			Group:       "Built-in Scenes",
		},
		build: NewCornellScene,
	},
	"cubes": {
		info: SceneInfo{
			ID:          "cubes",
			Name:        "Cubes",
			Description: "Rotated Blinn-Phong cubes on a checkerboard floor under several point lights",
			Group:       "Built-in Scenes",
		},
		build: NewCubesScene,
	},
}

// ListScenes returns the built-in scenes sorted by ID
func ListScenes() []SceneInfo {
	scenes := make([]SceneInfo, 0, len(registry))
	for _, e := range registry {
		scenes = append(scenes, e.info)
	}
	slices.SortFunc(scenes, func(a, b SceneInfo) int {
		return strings.Compare(a.ID, b.ID)
	})
	return scenes
}

// Load builds the built-in scene with the given ID. Acceleration data is
// not generated.
func Load(id string) (*Scene, error) {
	e, ok := registry[id]
	if !ok {
		return nil, errors.Errorf("unknown scene %q", id)
	}
	s, err := e.build()
	if err != nil {
		return nil, errors.Wrapf(err, "building scene %q", id)
	}
	return s, nil
}
