package index

import (
	"math"
	"sort"

	set3 "github.com/TomTonic/Set3"

	"github.com/arx-os/arxspace/internal/sfc"
	"github.com/arx-os/arxspace/pkg/geometry"
)

// pointHitEpsilon is the perpendicular tolerance for ray and plane tests
// against point entities
const pointHitEpsilon = 1e-9

// RayHit is one ray intersection result
type RayHit struct {
	ID       EntityID
	Distance float64
	Point    geometry.Point3D
}

// RayIntersectAll returns every entity the ray passes through within its
// maximum distance, sorted by ascending hit distance. Candidate nodes come
// from a slab test against each existing node's cell, walked in entry order.
func (s *SpatialIndex[K, V]) RayIntersectAll(ray geometry.Ray3D) []RayHit {
	queriesTotal.WithLabelValues(s.calc.Name(), "ray").Inc()

	s.mu.RLock()
	defer s.mu.RUnlock()

	type rayNode struct {
		n     *node
		entry float64
	}
	var nodes []rayNode
	s.nodes.ascend(func(k K, n *node) bool {
		if n.count() == 0 {
			return true
		}
		cb, err := s.calc.CellBounds(k)
		if err != nil {
			return true
		}
		if entry, ok := ray.IntersectAABB(cb); ok {
			nodes = append(nodes, rayNode{n: n, entry: entry})
		}
		return true
	})
	sort.Slice(nodes, func(i, j int) bool { return nodes[i].entry < nodes[j].entry })

	seen := set3.Empty[EntityID]()
	var hits []RayHit
	for _, rn := range nodes {
		if ray.MaxDistance > 0 && rn.entry > ray.MaxDistance {
			break
		}
		for _, id := range rn.n.entities {
			if seen.Contains(id) {
				continue
			}
			seen.Add(id)

			e := s.store.get(id)
			if e == nil {
				continue
			}
			if d, ok := rayHitsEntity(ray, e); ok {
				hits = append(hits, RayHit{ID: id, Distance: d, Point: ray.PointAt(d)})
			}
		}
	}

	sort.Slice(hits, func(i, j int) bool { return hits[i].Distance < hits[j].Distance })
	return hits
}

// RayIntersectFirst returns the closest hit along the ray. It collects every
// hit through RayIntersectAll and returns the nearest one; the walk does not
// stop early once a hit is found.
func (s *SpatialIndex[K, V]) RayIntersectFirst(ray geometry.Ray3D) (RayHit, bool) {
	hits := s.RayIntersectAll(ray)
	if len(hits) == 0 {
		return RayHit{}, false
	}
	return hits[0], true
}

func rayHitsEntity[K sfc.Key[K], V any](ray geometry.Ray3D, e *Entity[K, V]) (float64, bool) {
	if e.Bounds != nil {
		return ray.IntersectAABB(*e.Bounds)
	}
	if ray.DistanceToPoint(e.Position) > pointHitEpsilon {
		return 0, false
	}
	t := e.Position.Sub(ray.Origin).Dot(ray.Direction)
	if t < 0 || (ray.MaxDistance > 0 && t > ray.MaxDistance) {
		return 0, false
	}
	return t, true
}

// PlaneIntersect returns the entities straddled by a plane, ordered by the
// absolute distance of their cell centers from the plane
func (s *SpatialIndex[K, V]) PlaneIntersect(plane geometry.Plane3D) []EntityID {
	queriesTotal.WithLabelValues(s.calc.Name(), "plane").Inc()

	s.mu.RLock()
	defer s.mu.RUnlock()

	type planeNode struct {
		n    *node
		dist float64
	}
	var nodes []planeNode
	s.nodes.ascend(func(k K, n *node) bool {
		if n.count() == 0 {
			return true
		}
		cb, err := s.calc.CellBounds(k)
		if err != nil {
			return true
		}
		if !plane.IntersectsAABB(cb) {
			return true
		}
		nodes = append(nodes, planeNode{n: n, dist: math.Abs(plane.SignedDistance(cb.Center()))})
		return true
	})
	sort.Slice(nodes, func(i, j int) bool { return nodes[i].dist < nodes[j].dist })

	seen := set3.Empty[EntityID]()
	var out []EntityID
	for _, pn := range nodes {
		for _, id := range pn.n.entities {
			if seen.Contains(id) {
				continue
			}
			seen.Add(id)

			e := s.store.get(id)
			if e == nil {
				continue
			}
			match := false
			if e.Bounds != nil {
				match = plane.IntersectsAABB(*e.Bounds)
			} else {
				match = math.Abs(plane.SignedDistance(e.Position)) <= pointHitEpsilon
			}
			if match {
				out = append(out, id)
			}
		}
	}
	return out
}

// FrustumCull returns the entities inside a view frustum, ordered by
// distance from the camera position
func (s *SpatialIndex[K, V]) FrustumCull(frustum geometry.Frustum3D, camera geometry.Point3D) []EntityID {
	queriesTotal.WithLabelValues(s.calc.Name(), "frustum").Inc()

	s.mu.RLock()
	defer s.mu.RUnlock()

	type frustumNode struct {
		n    *node
		dist float64
	}
	var nodes []frustumNode
	s.nodes.ascend(func(k K, n *node) bool {
		if n.count() == 0 {
			return true
		}
		cb, err := s.calc.CellBounds(k)
		if err != nil {
			return true
		}
		if !frustum.IntersectsAABB(cb) {
			return true
		}
		nodes = append(nodes, frustumNode{n: n, dist: camera.DistanceSquaredTo(cb.Center())})
		return true
	})
	sort.Slice(nodes, func(i, j int) bool { return nodes[i].dist < nodes[j].dist })

	type culled struct {
		id   EntityID
		dist float64
	}
	seen := set3.Empty[EntityID]()
	var kept []culled
	for _, fn := range nodes {
		for _, id := range fn.n.entities {
			if seen.Contains(id) {
				continue
			}
			seen.Add(id)

			e := s.store.get(id)
			if e == nil {
				continue
			}
			match := false
			if e.Bounds != nil {
				match = frustum.IntersectsAABB(*e.Bounds)
			} else {
				match = frustum.ContainsPoint(e.Position)
			}
			if match {
				kept = append(kept, culled{id: id, dist: camera.DistanceSquaredTo(e.Position)})
			}
		}
	}

	sort.Slice(kept, func(i, j int) bool { return kept[i].dist < kept[j].dist })
	out := make([]EntityID, len(kept))
	for i, c := range kept {
		out[i] = c.id
	}
	return out
}
