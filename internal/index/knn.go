package index

import (
	"container/heap"
	"math"
	"sort"

	set3 "github.com/TomTonic/Set3"

	"github.com/arx-os/arxspace/pkg/errors"
	"github.com/arx-os/arxspace/pkg/geometry"
)

// Neighbor is one k-NN result
type Neighbor struct {
	ID       EntityID
	Distance float64
}

// candidateItem orders candidate nodes by a lower bound on their distance
// to the query point
type candidateItem[K comparable] struct {
	key    K
	node   *node
	lbDist float64
}

type candidateHeap[K comparable] []candidateItem[K]

func (h candidateHeap[K]) Len() int            { return len(h) }
func (h candidateHeap[K]) Less(i, j int) bool  { return h[i].lbDist < h[j].lbDist }
func (h candidateHeap[K]) Swap(i, j int)       { h[i], h[j] = h[j], h[i] }
func (h *candidateHeap[K]) Push(x interface{}) { *h = append(*h, x.(candidateItem[K])) }
func (h *candidateHeap[K]) Pop() interface{} {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}

// resultHeap is a bounded max-heap holding the best k neighbors so far
type resultHeap []Neighbor

func (h resultHeap) Len() int            { return len(h) }
func (h resultHeap) Less(i, j int) bool  { return h[i].Distance > h[j].Distance }
func (h resultHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i] }
func (h *resultHeap) Push(x interface{}) { *h = append(*h, x.(Neighbor)) }
func (h *resultHeap) Pop() interface{} {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}

// KNearestNeighbors returns up to k entities nearest to the query point,
// sorted by ascending distance, all within maxDistance (or unbounded when
// maxDistance <= 0). Candidate nodes are visited best-first by a lower-bound
// distance and the search stops once the closest untouched node cannot beat
// the current k-th neighbor.
func (s *SpatialIndex[K, V]) KNearestNeighbors(p geometry.Point3D, k int, maxDistance float64) ([]Neighbor, error) {
	if k <= 0 {
		return nil, errors.InvalidArgument("k must be positive, got %d", k)
	}
	queriesTotal.WithLabelValues(s.calc.Name(), "knn").Inc()

	s.mu.RLock()
	defer s.mu.RUnlock()

	radius := maxDistance
	if radius <= 0 {
		// Unbounded: the domain diagonal covers everything
		radius = math.Sqrt(3) * float64(1<<21)
	}
	search := geometry.Sphere{Center: p, Radius: radius}.Bounds()

	// Bootstrap the candidate set from the range estimator
	cands := &candidateHeap[K]{}
	s.scanRegion(search, func(key K, n *node) {
		if n.count() == 0 {
			return
		}
		cb, err := s.calc.CellBounds(key)
		if err != nil {
			return
		}
		lb := math.Sqrt(cb.DistanceSquaredTo(p))
		if lb <= radius {
			*cands = append(*cands, candidateItem[K]{key: key, node: n, lbDist: lb})
		}
	})
	heap.Init(cands)

	results := &resultHeap{}
	seen := set3.Empty[EntityID]()

	for cands.Len() > 0 {
		c := heap.Pop(cands).(candidateItem[K])

		// The closest remaining node cannot improve a full result set
		if results.Len() == k && c.lbDist > (*results)[0].Distance {
			break
		}

		for _, id := range c.node.entities {
			if seen.Contains(id) {
				continue
			}
			seen.Add(id)

			e := s.store.get(id)
			if e == nil {
				continue
			}
			d := p.DistanceTo(e.Position)
			if d > radius {
				continue
			}
			if results.Len() < k {
				heap.Push(results, Neighbor{ID: id, Distance: d})
			} else if d < (*results)[0].Distance {
				heap.Pop(results)
				heap.Push(results, Neighbor{ID: id, Distance: d})
			}
		}
	}

	out := make([]Neighbor, results.Len())
	for i := range out {
		out[i] = (*results)[i]
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Distance < out[j].Distance })
	return out, nil
}

// NearestNeighbor returns the single closest entity to the query point
func (s *SpatialIndex[K, V]) NearestNeighbor(p geometry.Point3D) (Neighbor, bool) {
	res, err := s.KNearestNeighbors(p, 1, 0)
	if err != nil || len(res) == 0 {
		return Neighbor{}, false
	}
	return res[0], true
}
