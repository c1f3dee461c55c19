package accel

import (
	"cmp"

	"golang.org/x/exp/slices"

	"github.com/df07/go-photon-raytracer/pkg/core"
	"github.com/df07/go-photon-raytracer/pkg/geometry"
)

// boxEpsilon thickens flat node bounds so they keep a volume
const boxEpsilon = 1e-9

// BVHNode represents a node in the Bounding Volume Hierarchy
type BVHNode struct {
	BoundingBox core.AABB
	Children    []*BVHNode               // Internal nodes only
	Items       []geometry.Intersectable // Leaf nodes only (nil for internal nodes)
}

// IsLeaf reports whether the node stores items
func (n *BVHNode) IsLeaf() bool {
	return n.Children == nil
}

// BVH is an n-ary Bounding Volume Hierarchy for fast ray-object intersection
type BVH struct {
	Root   *BVHNode
	config BVHConfig
}

type bvhItem struct {
	item     geometry.Intersectable
	bounds   core.AABB
	centroid core.Vec3
}

// NewBVH constructs a BVH from a slice of items. The configuration is
// expected to be valid; use New to get it checked.
func NewBVH(items []geometry.Intersectable, config BVHConfig) *BVH {
	if len(items) == 0 {
		return &BVH{Root: nil, config: config}
	}

	// Work on a copy so concurrent builds over shared slices are safe
	refs := make([]bvhItem, len(items))
	for i, item := range items {
		bounds := item.BoundingBox()
		refs[i] = bvhItem{item: item, bounds: bounds, centroid: bounds.Center()}
	}

	return &BVH{
		Root:   buildBVH(refs, config),
		config: config,
	}
}

// buildBVH recursively partitions items by centroid along the longest
// centroid axis into MaxChildren groups of equal count
func buildBVH(refs []bvhItem, config BVHConfig) *BVHNode {
	boundingBox := core.EmptyAABB()
	centroids := core.EmptyAABB()
	for _, ref := range refs {
		boundingBox = boundingBox.Union(ref.bounds)
		centroids = centroids.Union(core.AABB{Min: ref.centroid, Max: ref.centroid})
	}
	boundingBox = boundingBox.Thicken(boxEpsilon)

	// Base case: few items - create leaf node for linear search
	if len(refs) <= config.LeafSize {
		items := make([]geometry.Intersectable, len(refs))
		for i, ref := range refs {
			items[i] = ref.item
		}
		return &BVHNode{BoundingBox: boundingBox, Items: items}
	}

	axis := centroids.LongestAxis()
	slices.SortFunc(refs, func(a, b bvhItem) int {
		return cmp.Compare(a.centroid.Axis(axis), b.centroid.Axis(axis))
	})

	groups := config.MaxChildren
	if groups > len(refs) {
		groups = len(refs)
	}

	node := &BVHNode{BoundingBox: boundingBox, Children: make([]*BVHNode, 0, groups)}
	for g := 0; g < groups; g++ {
		lo := g * len(refs) / groups
		hi := (g + 1) * len(refs) / groups
		node.Children = append(node.Children, buildBVH(refs[lo:hi], config))
	}
	return node
}

// FindNearestIntersection walks the tree depth-first, nearest child first,
// skipping children whose box is missed or starts beyond the best hit
func (bvh *BVH) FindNearestIntersection(ray core.Ray, tMin, tMax float64) (geometry.Intersection, bool) {
	if bvh.Root == nil {
		return geometry.Intersection{}, false
	}
	tMax = ray.Limit(tMax)
	if _, _, ok := bvh.Root.BoundingBox.Intersect(ray, tMin, tMax); !ok {
		return geometry.Intersection{}, false
	}

	var closest geometry.Intersection
	closestSoFar := tMax
	hitAnything := bvh.hitNode(bvh.Root, ray, tMin, &closestSoFar, &closest)
	return closest, hitAnything
}

type childEntry struct {
	node  *BVHNode
	enter float64
}

// hitNode tests a node whose bounds are already known to be hit
func (bvh *BVH) hitNode(node *BVHNode, ray core.Ray, tMin float64, closestSoFar *float64, closest *geometry.Intersection) bool {
	if node.IsLeaf() {
		hitAnything := false
		for _, item := range node.Items {
			if hit, isHit := item.Intersect(ray, tMin, *closestSoFar); isHit {
				hitAnything = true
				*closestSoFar = hit.T
				*closest = hit
			}
		}
		return hitAnything
	}

	var buf [8]childEntry
	entries := buf[:0]
	for _, child := range node.Children {
		if enter, _, ok := child.BoundingBox.Intersect(ray, tMin, *closestSoFar); ok {
			entries = append(entries, childEntry{node: child, enter: enter})
		}
	}

	// Nearest entry first; insertion sort since the list is tiny
	for i := 1; i < len(entries); i++ {
		for j := i; j > 0 && entries[j].enter < entries[j-1].enter; j-- {
			entries[j], entries[j-1] = entries[j-1], entries[j]
		}
	}

	hitAnything := false
	for _, entry := range entries {
		if entry.enter > *closestSoFar {
			break
		}
		if bvh.hitNode(entry.node, ray, tMin, closestSoFar, closest) {
			hitAnything = true
		}
	}
	return hitAnything
}

// BoundingBox returns the root bounds
func (bvh *BVH) BoundingBox() core.AABB {
	if bvh.Root == nil {
		return core.EmptyAABB()
	}
	return bvh.Root.BoundingBox
}

// Kind returns KindBVH
func (bvh *BVH) Kind() Kind { return KindBVH }

// BVHStats contains statistics about the BVH structure
type BVHStats struct {
	TotalNodes int
	LeafNodes  int
	MaxDepth   int
	AvgDepth   float64
	TotalItems int
}

// Stats returns statistics about the BVH structure
func (bvh *BVH) Stats() BVHStats {
	if bvh.Root == nil {
		return BVHStats{}
	}

	stats := BVHStats{}
	collectStats(bvh.Root, 0, &stats)

	// Calculate average depth after collecting all data
	if stats.LeafNodes > 0 {
		stats.AvgDepth = stats.AvgDepth / float64(stats.LeafNodes)
	}
	return stats
}

// collectStats recursively collects statistics about the BVH
func collectStats(node *BVHNode, depth int, stats *BVHStats) {
	stats.TotalNodes++
	if depth > stats.MaxDepth {
		stats.MaxDepth = depth
	}

	if node.IsLeaf() {
		stats.LeafNodes++
		stats.TotalItems += len(node.Items)
		stats.AvgDepth += float64(depth) // Accumulate depth for average calculation
		return
	}
	for _, child := range node.Children {
		collectStats(child, depth+1, stats)
	}
}
