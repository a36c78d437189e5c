package index

import (
	"github.com/google/uuid"

	"github.com/arx-os/arxspace/internal/sfc"
	"github.com/arx-os/arxspace/pkg/errors"
	"github.com/arx-os/arxspace/pkg/geometry"
)

// BoundaryOp tells a receiving partition what to do with a boundary element
type BoundaryOp uint8

const (
	// BoundaryInsert mirrors a new remote entity locally
	BoundaryInsert BoundaryOp = iota
	// BoundaryUpdate moves an already mirrored entity
	BoundaryUpdate
	// BoundaryRemove drops a mirrored entity
	BoundaryRemove
)

// BoundaryElement is one element of the ghost exchange stream. Content is an
// opaque blob; the external transport owns encoding and decoding.
type BoundaryElement[K sfc.Key[K]] struct {
	Op        BoundaryOp
	OwnerRank int32
	TreeID    uuid.UUID
	Key       K
	EntityID  EntityID
	Position  geometry.Point3D
	Bounds    *geometry.AABB
	Content   []byte
}

// BoundaryElements emits the entities of every node the boundary predicate
// selects, ready for the external ghost transport. The predicate sees each
// node's key and cell hull; encode turns entity content into the opaque
// blob.
func (s *SpatialIndex[K, V]) BoundaryElements(rank int32, isBoundary func(K, geometry.AABB) bool, encode func(V) []byte) []BoundaryElement[K] {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []BoundaryElement[K]
	s.nodes.ascend(func(k K, n *node) bool {
		if n.count() == 0 {
			return true
		}
		cb, err := s.calc.CellBounds(k)
		if err != nil {
			return true
		}
		if !isBoundary(k, cb) {
			return true
		}
		for _, id := range n.entities {
			e := s.store.get(id)
			if e == nil {
				continue
			}
			elem := BoundaryElement[K]{
				Op:        BoundaryInsert,
				OwnerRank: rank,
				TreeID:    s.treeID,
				Key:       k,
				EntityID:  id,
				Position:  e.Position,
				Content:   encode(e.Content),
			}
			if e.Bounds != nil {
				b := *e.Bounds
				elem.Bounds = &b
			}
			out = append(out, elem)
		}
		return true
	})
	return out
}

// ApplyBoundary applies inbound ghost elements: inserts mirror remote
// entities, updates move them, removes drop them. Errors are collected
// per element; one bad element never aborts the stream.
func (s *SpatialIndex[K, V]) ApplyBoundary(elems []BoundaryElement[K], decode func([]byte) V) []error {
	var errs []error
	for _, el := range elems {
		var err error
		switch el.Op {
		case BoundaryInsert:
			level := el.Key.Level()
			if el.Bounds != nil {
				err = s.InsertBoundedWithID(el.EntityID, el.Position, *el.Bounds, level, decode(el.Content))
			} else {
				err = s.InsertWithID(el.EntityID, el.Position, level, decode(el.Content))
			}
		case BoundaryUpdate:
			var ok bool
			ok, err = s.UpdateEntity(el.EntityID, el.Position, el.Key.Level())
			if err == nil && !ok {
				err = errors.NewAppError(errors.CodeNotFound,
					"ghost update for unknown entity", errors.ErrNotFound).WithDetails("id", int64(el.EntityID))
			}
		case BoundaryRemove:
			if !s.RemoveEntity(el.EntityID) {
				err = errors.NewAppError(errors.CodeNotFound,
					"ghost remove for unknown entity", errors.ErrNotFound).WithDetails("id", int64(el.EntityID))
			}
		default:
			err = errors.InvalidArgument("unknown boundary op %d", el.Op)
		}
		if err != nil {
			errs = append(errs, err)
		}
	}
	return errs
}
