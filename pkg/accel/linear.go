package accel

import (
	"github.com/df07/go-photon-raytracer/pkg/core"
	"github.com/df07/go-photon-raytracer/pkg/geometry"
)

// Linear tests every item for every ray. It is the reference the other
// structures are checked against.
type Linear struct {
	items  []geometry.Intersectable
	bounds core.AABB
}

// NewLinear creates a linear-scan structure
func NewLinear(items []geometry.Intersectable) *Linear {
	itemsCopy := make([]geometry.Intersectable, len(items))
	copy(itemsCopy, items)
	return &Linear{items: itemsCopy, bounds: boundsOf(itemsCopy)}
}

// FindNearestIntersection keeps the minimum t over all items
func (l *Linear) FindNearestIntersection(ray core.Ray, tMin, tMax float64) (geometry.Intersection, bool) {
	var closest geometry.Intersection
	hitAnything := false
	closestSoFar := ray.Limit(tMax)

	for _, item := range l.items {
		if hit, isHit := item.Intersect(ray, tMin, closestSoFar); isHit {
			hitAnything = true
			closestSoFar = hit.T
			closest = hit
		}
	}
	return closest, hitAnything
}

// BoundingBox returns the union of the item bounds
func (l *Linear) BoundingBox() core.AABB { return l.bounds }

// Kind returns KindNone
func (l *Linear) Kind() Kind { return KindNone }
