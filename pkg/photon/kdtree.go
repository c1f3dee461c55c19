package photon

import (
	"container/heap"

	"github.com/pkg/errors"

	"github.com/df07/go-photon-raytracer/pkg/core"
)

// ErrMapOptimised is returned when photons are inserted into a builder that
// has already produced its map
var ErrMapOptimised = errors.New("photon map already optimised")

// Builder collects photons before the map is balanced. It is not safe for
// concurrent use; concurrent tracers collect locally and insert in order.
type Builder struct {
	photons   []Photon
	optimised bool
}

// NewBuilder creates a builder with room for capacity photons
func NewBuilder(capacity int) *Builder {
	return &Builder{photons: make([]Photon, 0, capacity)}
}

// Insert adds a photon
func (b *Builder) Insert(p Photon) error {
	if b.optimised {
		return ErrMapOptimised
	}
	b.photons = append(b.photons, p)
	return nil
}

// InsertAll adds photons in order
func (b *Builder) InsertAll(photons []Photon) error {
	if b.optimised {
		return ErrMapOptimised
	}
	b.photons = append(b.photons, photons...)
	return nil
}

// Len returns the number of photons inserted so far
func (b *Builder) Len() int {
	return len(b.photons)
}

// Optimise balances the photons into a read-only Map. The builder accepts
// no further photons afterwards.
func (b *Builder) Optimise() *Map {
	b.optimised = true
	m := &Map{photons: b.photons, axes: make([]uint8, len(b.photons))}
	m.build(0, len(m.photons))
	b.photons = nil
	return m
}

// Map is a balanced k-d tree over photons laid out implicitly in a slice:
// the median of each range is its node, the halves are its subtrees. It is
// read-only and safe for concurrent queries.
type Map struct {
	photons []Photon
	axes    []uint8
}

// Len returns the number of stored photons
func (m *Map) Len() int {
	return len(m.photons)
}

// Photons returns the stored photons in tree order
func (m *Map) Photons() []Photon {
	return m.photons
}

// build places the median along the widest axis of [lo, hi) at its middle
func (m *Map) build(lo, hi int) {
	if hi-lo <= 0 {
		return
	}
	bounds := core.EmptyAABB()
	for _, p := range m.photons[lo:hi] {
		bounds = bounds.Union(core.AABB{Min: p.Position, Max: p.Position})
	}
	axis := bounds.LongestAxis()
	mid := lo + (hi-lo)/2
	m.selectNth(lo, hi, mid, axis)
	m.axes[mid] = uint8(axis)

	m.build(lo, mid)
	m.build(mid+1, hi)
}

// selectNth partially sorts [lo, hi) so that position n holds the element
// that would be there if sorted along axis (quickselect)
func (m *Map) selectNth(lo, hi, n, axis int) {
	ps := m.photons
	hi--
	for lo < hi {
		// Median of three pivot
		mid := lo + (hi-lo)/2
		if ps[mid].Position.Axis(axis) < ps[lo].Position.Axis(axis) {
			ps[mid], ps[lo] = ps[lo], ps[mid]
		}
		if ps[hi].Position.Axis(axis) < ps[lo].Position.Axis(axis) {
			ps[hi], ps[lo] = ps[lo], ps[hi]
		}
		if ps[hi].Position.Axis(axis) < ps[mid].Position.Axis(axis) {
			ps[hi], ps[mid] = ps[mid], ps[hi]
		}
		pivot := ps[mid].Position.Axis(axis)

		i, j := lo, hi
		for i <= j {
			for ps[i].Position.Axis(axis) < pivot {
				i++
			}
			for ps[j].Position.Axis(axis) > pivot {
				j--
			}
			if i <= j {
				ps[i], ps[j] = ps[j], ps[i]
				i++
				j--
			}
		}
		switch {
		case n <= j:
			hi = j
		case n >= i:
			lo = i
		default:
			return
		}
	}
}

// FindWithinRange returns every photon whose distance to point is at most
// radius
func (m *Map) FindWithinRange(point core.Vec3, radius float64) []Photon {
	return m.AppendWithinRange(nil, point, radius)
}

// AppendWithinRange appends the photons within radius of point to dst,
// letting callers reuse a buffer across queries
func (m *Map) AppendWithinRange(dst []Photon, point core.Vec3, radius float64) []Photon {
	if radius < 0 {
		return dst
	}
	return m.rangeSearch(dst, 0, len(m.photons), point, radius*radius)
}

func (m *Map) rangeSearch(dst []Photon, lo, hi int, point core.Vec3, radiusSq float64) []Photon {
	for hi > lo {
		mid := lo + (hi-lo)/2
		p := m.photons[mid]
		if p.Position.Subtract(point).LengthSquared() <= radiusSq {
			dst = append(dst, p)
		}

		axis := int(m.axes[mid])
		delta := point.Axis(axis) - p.Position.Axis(axis)
		// Search the near side first, the far side only if the splitting
		// plane is within range
		if delta <= 0 {
			if delta*delta <= radiusSq {
				dst = m.rangeSearch(dst, mid+1, hi, point, radiusSq)
			}
			hi = mid
		} else {
			if delta*delta <= radiusSq {
				dst = m.rangeSearch(dst, lo, mid, point, radiusSq)
			}
			lo = mid + 1
		}
	}
	return dst
}

// Nearest returns up to k photons closest to point, nearest first, and the
// squared distance of the farthest one returned
func (m *Map) Nearest(point core.Vec3, k int) ([]Photon, float64) {
	if k <= 0 || len(m.photons) == 0 {
		return nil, 0
	}
	h := &maxHeap{}
	m.nearest(h, 0, len(m.photons), point, k)

	out := make([]Photon, h.Len())
	farthest := (*h)[0].distSq
	for i := len(out) - 1; i >= 0; i-- {
		out[i] = heap.Pop(h).(candidate).photon
	}
	return out, farthest
}

func (m *Map) nearest(h *maxHeap, lo, hi int, point core.Vec3, k int) {
	if hi <= lo {
		return
	}
	mid := lo + (hi-lo)/2
	p := m.photons[mid]

	distSq := p.Position.Subtract(point).LengthSquared()
	if h.Len() < k {
		heap.Push(h, candidate{photon: p, distSq: distSq})
	} else if distSq < (*h)[0].distSq {
		(*h)[0] = candidate{photon: p, distSq: distSq}
		heap.Fix(h, 0)
	}

	axis := int(m.axes[mid])
	delta := point.Axis(axis) - p.Position.Axis(axis)
	nearLo, nearHi, farLo, farHi := lo, mid, mid+1, hi
	if delta > 0 {
		nearLo, nearHi, farLo, farHi = mid+1, hi, lo, mid
	}
	m.nearest(h, nearLo, nearHi, point, k)
	if h.Len() < k || delta*delta < (*h)[0].distSq {
		m.nearest(h, farLo, farHi, point, k)
	}
}

type candidate struct {
	photon Photon
	distSq float64
}

// maxHeap keeps the k best candidates with the farthest on top
type maxHeap []candidate

func (h maxHeap) Len() int            { return len(h) }
func (h maxHeap) Less(i, j int) bool  { return h[i].distSq > h[j].distSq }
func (h maxHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i] }
func (h *maxHeap) Push(x interface{}) { *h = append(*h, x.(candidate)) }
func (h *maxHeap) Pop() interface{} {
	old := *h
	n := len(old)
	c := old[n-1]
	*h = old[:n-1]
	return c
}
