// Package index implements the hierarchical spatial index engines: a Morton
// keyed octree and a tetrahedral tree sharing one generic core. Entities are
// stored in per-node buckets keyed by space-filling-curve keys; queries run
// over the ordered node map with curve-interval pruning.
package index

import (
	"math"

	"github.com/arx-os/arxspace/internal/sfc"
	"github.com/arx-os/arxspace/pkg/errors"
	"github.com/arx-os/arxspace/pkg/geometry"
)

// EntityID identifies a stored entity
type EntityID int64

// Entity is a stored entity together with its current cell memberships
type Entity[K sfc.Key[K], V any] struct {
	ID       EntityID
	Position geometry.Point3D
	Bounds   *geometry.AABB
	Content  V

	// locations lists every node key holding this entity. Point entities
	// have exactly one location; bounded entities may span several cells.
	locations []K
}

// Locations returns a copy of the entity's cell memberships
func (e *Entity[K, V]) Locations() []K {
	out := make([]K, len(e.locations))
	copy(out, e.locations)
	return out
}

// entityStore owns entity records and id generation. All access runs under
// the tree's lock.
type entityStore[K sfc.Key[K], V any] struct {
	entities map[EntityID]*Entity[K, V]
	nextID   int64
}

func newEntityStore[K sfc.Key[K], V any]() *entityStore[K, V] {
	return &entityStore[K, V]{
		entities: make(map[EntityID]*Entity[K, V]),
		nextID:   1,
	}
}

// generateID returns the next unused id, or a capacity error when the id
// space is exhausted
func (s *entityStore[K, V]) generateID() (EntityID, error) {
	if s.nextID == math.MaxInt64 {
		return 0, errors.NewAppError(errors.CodeCapacity, "entity id generator exhausted", errors.ErrCapacity)
	}
	id := EntityID(s.nextID)
	s.nextID++
	return id, nil
}

// create records a new entity; the id must be unused
func (s *entityStore[K, V]) create(id EntityID, pos geometry.Point3D, bounds *geometry.AABB, content V, locations []K) (*Entity[K, V], error) {
	if _, exists := s.entities[id]; exists {
		return nil, errors.NewAppError(errors.CodeAlreadyExists,
			"entity id already in use", errors.ErrAlreadyExists).WithDetails("id", int64(id))
	}
	if id >= EntityID(s.nextID) {
		s.nextID = int64(id) + 1
	}
	e := &Entity[K, V]{
		ID:        id,
		Position:  pos,
		Bounds:    bounds,
		Content:   content,
		locations: locations,
	}
	s.entities[id] = e
	return e, nil
}

// get returns the entity or nil
func (s *entityStore[K, V]) get(id EntityID) *Entity[K, V] {
	return s.entities[id]
}

// remove forgets the entity, returning it for location cleanup
func (s *entityStore[K, V]) remove(id EntityID) *Entity[K, V] {
	e := s.entities[id]
	if e != nil {
		delete(s.entities, id)
	}
	return e
}

// len returns the number of stored entities
func (s *entityStore[K, V]) len() int {
	return len(s.entities)
}

// replaceLocation swaps one location key for zero or more replacements
func (e *Entity[K, V]) replaceLocation(old K, repl []K) {
	out := make([]K, 0, len(e.locations)-1+len(repl))
	for _, k := range e.locations {
		if k != old {
			out = append(out, k)
		}
	}
	e.locations = append(out, repl...)
}
