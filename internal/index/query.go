package index

import (
	"sort"

	set3 "github.com/TomTonic/Set3"

	"github.com/arx-os/arxspace/internal/sfc"
	"github.com/arx-os/arxspace/pkg/geometry"
)

// rangeBudget caps the LITMAX/BIGMIN decomposition per level; beyond it the
// intervals degrade to conservative supersets, which the per-node cell test
// filters out again
const rangeBudget = 64

// EntitiesInRegion returns the ids of all entities intersecting an
// axis-aligned box, ascending by id. Bounded entities match when their
// volume overlaps the region, point entities when their position lies
// inside it.
func (s *SpatialIndex[K, V]) EntitiesInRegion(region geometry.AABB) []EntityID {
	queriesTotal.WithLabelValues(s.calc.Name(), "region").Inc()

	s.mu.RLock()
	defer s.mu.RUnlock()

	seen := set3.Empty[EntityID]()
	var out []EntityID

	s.scanRegion(region, func(k K, n *node) {
		for _, id := range n.entities {
			if seen.Contains(id) {
				continue
			}
			e := s.store.get(id)
			if e == nil {
				continue
			}
			if entityInRegion(e, region) {
				seen.Add(id)
				out = append(out, id)
			}
		}
	})

	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// EntitiesInCube returns the ids of entities intersecting an axis-aligned
// cube given by its origin corner and edge length
func (s *SpatialIndex[K, V]) EntitiesInCube(origin geometry.Point3D, edge float64) []EntityID {
	return s.EntitiesInRegion(geometry.NewCube(origin, edge))
}

// EntitiesInSphere returns the ids of entities intersecting a sphere,
// ascending by id
func (s *SpatialIndex[K, V]) EntitiesInSphere(sphere geometry.Sphere) []EntityID {
	queriesTotal.WithLabelValues(s.calc.Name(), "sphere").Inc()

	s.mu.RLock()
	defer s.mu.RUnlock()

	region := sphere.Bounds()
	seen := set3.Empty[EntityID]()
	var out []EntityID

	s.scanRegion(region, func(k K, n *node) {
		for _, id := range n.entities {
			if seen.Contains(id) {
				continue
			}
			e := s.store.get(id)
			if e == nil {
				continue
			}
			match := false
			if e.Bounds != nil {
				match = sphere.IntersectsAABB(*e.Bounds)
			} else {
				match = sphere.Contains(e.Position)
			}
			if match {
				seen.Add(id)
				out = append(out, id)
			}
		}
	})

	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// scanRegion visits every node whose cell intersects the region, using
// per-level curve intervals to restrict the ordered-map scans. Nodes whose
// keys fail to decode are skipped, not fatal.
func (s *SpatialIndex[K, V]) scanRegion(region geometry.AABB, visit func(K, *node)) {
	for _, level := range s.nodes.populatedLevels() {
		ranges, err := s.calc.Ranges(region, level, rangeBudget)
		if err != nil {
			continue
		}
		for _, r := range ranges {
			s.nodes.ascendRange(r.Lo, r.Hi, func(k K, n *node) bool {
				cb, err := s.calc.CellBounds(k)
				if err != nil {
					return true
				}
				if cb.Intersects(region) {
					visit(k, n)
				}
				return true
			})
		}
	}
}

func entityInRegion[K sfc.Key[K], V any](e *Entity[K, V], region geometry.AABB) bool {
	if e.Bounds != nil {
		return region.Intersects(*e.Bounds)
	}
	return region.Contains(e.Position)
}
