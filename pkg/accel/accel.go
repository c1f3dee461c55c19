package accel

import (
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/df07/go-photon-raytracer/pkg/core"
	"github.com/df07/go-photon-raytracer/pkg/geometry"
	"github.com/df07/go-photon-raytracer/pkg/log"
)

var logger = log.New("accel")

// Kind selects an acceleration structure variant
type Kind int

const (
	KindNone Kind = iota // linear scan
	KindBVH              // bounding volume hierarchy
	KindGrid             // uniform grid
)

// String returns the name used in configuration files
func (k Kind) String() string {
	switch k {
	case KindNone:
		return "none"
	case KindBVH:
		return "bvh"
	case KindGrid:
		return "grid"
	}
	return "unknown"
}

// ParseKind converts a configuration name into a Kind
func ParseKind(name string) (Kind, error) {
	switch strings.ToLower(name) {
	case "none", "linear":
		return KindNone, nil
	case "bvh":
		return KindBVH, nil
	case "grid", "uniformgrid":
		return KindGrid, nil
	}
	return KindNone, errors.Wrapf(ErrInvalidConfig, "unknown acceleration structure %q", name)
}

// ErrInvalidConfig is the cause of every configuration error returned by New
var ErrInvalidConfig = errors.New("invalid acceleration structure configuration")

// BVHConfig holds the BVH-only build parameters
type BVHConfig struct {
	MaxChildren int // children per internal node (>= 2)
	LeafSize    int // maximum items per leaf (>= 1)
}

// GridConfig holds the uniform grid build parameters
type GridConfig struct {
	Resolution [3]int // cells along X, Y and Z
}

// Config carries the variant-specific build parameters. Only the section
// matching the requested Kind is read.
type Config struct {
	BVH  BVHConfig
	Grid GridConfig
}

// DefaultConfig returns a binary BVH with two items per leaf and a 10³ grid
func DefaultConfig() Config {
	return Config{
		BVH:  BVHConfig{MaxChildren: 2, LeafSize: 2},
		Grid: GridConfig{Resolution: [3]int{10, 10, 10}},
	}
}

// Validate checks the section of the configuration used by kind
func (c Config) Validate(kind Kind) error {
	switch kind {
	case KindNone:
		return nil
	case KindBVH:
		if c.BVH.MaxChildren < 2 {
			return errors.Wrapf(ErrInvalidConfig, "bvh max children %d < 2", c.BVH.MaxChildren)
		}
		if c.BVH.LeafSize < 1 {
			return errors.Wrapf(ErrInvalidConfig, "bvh leaf size %d < 1", c.BVH.LeafSize)
		}
		return nil
	case KindGrid:
		for axis, n := range c.Grid.Resolution {
			if n <= 0 {
				return errors.Wrapf(ErrInvalidConfig, "grid resolution %v has non-positive axis %d", c.Grid.Resolution, axis)
			}
		}
		return nil
	}
	return errors.Wrapf(ErrInvalidConfig, "unknown acceleration structure kind %d", int(kind))
}

// Structure answers nearest-hit queries over a fixed set of items. A built
// structure is read-only and safe for concurrent queries.
type Structure interface {
	// FindNearestIntersection returns the closest hit with t in [tMin, tMax]
	FindNearestIntersection(ray core.Ray, tMin, tMax float64) (geometry.Intersection, bool)
	BoundingBox() core.AABB
	Kind() Kind
}

// New builds a structure of the given kind over items. The items slice is
// copied; the caller may reuse it.
func New(kind Kind, items []geometry.Intersectable, cfg Config) (Structure, error) {
	if err := cfg.Validate(kind); err != nil {
		return nil, err
	}

	start := time.Now()
	var s Structure
	switch kind {
	case KindNone:
		s = NewLinear(items)
	case KindBVH:
		s = NewBVH(items, cfg.BVH)
	case KindGrid:
		s = NewGrid(items, cfg.Grid)
	}
	logger.Debugf("built %s over %d items in %v", kind, len(items), time.Since(start))
	return s, nil
}

// boundsOf returns the union of the item bounds, or an empty box
func boundsOf(items []geometry.Intersectable) core.AABB {
	bounds := core.EmptyAABB()
	for _, item := range items {
		bounds = bounds.Union(item.BoundingBox())
	}
	return bounds
}
