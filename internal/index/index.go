package index

import (
	"sync"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/arx-os/arxspace/internal/common/logger"
	"github.com/arx-os/arxspace/internal/config"
	"github.com/arx-os/arxspace/internal/sfc"
	"github.com/arx-os/arxspace/pkg/errors"
	"github.com/arx-os/arxspace/pkg/geometry"
)

// SpatialIndex is the generic tree engine shared by the octree and the
// tetree. A single reader/writer lock guards the node map and entity store;
// entity and node counters are atomic so stats reads never block.
type SpatialIndex[K sfc.Key[K], V any] struct {
	mu    sync.RWMutex
	calc  Calculator[K]
	cfg   *config.Config
	nodes *nodeMap[K]
	store *entityStore[K, V]
	pool  *nodePool

	treeID   uuid.UUID
	maxDepth uint8

	entityCount atomic.Int64
	nodeCount   atomic.Int64
}

// NodeInfo is a read-only snapshot of one node, enough for debug exporters
// to reconstruct geometry without touching internals
type NodeInfo[K sfc.Key[K]] struct {
	Key       K
	EntityIDs []EntityID
	ChildMask uint8
}

func newSpatialIndex[K sfc.Key[K], V any](calc Calculator[K], cfg *config.Config) (*SpatialIndex[K, V], error) {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	maxDepth := calc.MaxLevel()
	if cfg.MaxDepth > 0 && cfg.MaxDepth < int(maxDepth) {
		maxDepth = uint8(cfg.MaxDepth)
	}

	s := &SpatialIndex[K, V]{
		calc:     calc,
		cfg:      cfg,
		nodes:    newNodeMap[K](),
		store:    newEntityStore[K, V](),
		pool:     newNodePool(),
		treeID:   uuid.New(),
		maxDepth: maxDepth,
	}
	logger.Debug("created %s index %s (maxDepth=%d, bucket=%d)",
		calc.Name(), s.treeID, maxDepth, cfg.MaxEntitiesPerNode)
	return s, nil
}

// TreeID returns the tree's identity used by the ghost boundary stream
func (s *SpatialIndex[K, V]) TreeID() uuid.UUID {
	return s.treeID
}

// Engine returns the engine name ("octree" or "tetree")
func (s *SpatialIndex[K, V]) Engine() string {
	return s.calc.Name()
}

// MaxDepth returns the effective refinement cap
func (s *SpatialIndex[K, V]) MaxDepth() uint8 {
	return s.maxDepth
}

// Insert stores a point entity at the given level and returns its id
func (s *SpatialIndex[K, V]) Insert(pos geometry.Point3D, level uint8, content V) (EntityID, error) {
	return s.insert(nil, pos, nil, level, content)
}

// InsertWithID stores a point entity under a caller-chosen id
func (s *SpatialIndex[K, V]) InsertWithID(id EntityID, pos geometry.Point3D, level uint8, content V) error {
	_, err := s.insert(&id, pos, nil, level, content)
	return err
}

// InsertBounded stores an entity with a bounding volume; depending on the
// spanning policy it may occupy every cell the volume intersects
func (s *SpatialIndex[K, V]) InsertBounded(pos geometry.Point3D, bounds geometry.AABB, level uint8, content V) (EntityID, error) {
	b := bounds
	return s.insert(nil, pos, &b, level, content)
}

// InsertBoundedWithID stores a bounded entity under a caller-chosen id
func (s *SpatialIndex[K, V]) InsertBoundedWithID(id EntityID, pos geometry.Point3D, bounds geometry.AABB, level uint8, content V) error {
	b := bounds
	_, err := s.insert(&id, pos, &b, level, content)
	return err
}

func (s *SpatialIndex[K, V]) insert(id *EntityID, pos geometry.Point3D, bounds *geometry.AABB, level uint8, content V) (EntityID, error) {
	if err := s.validateLevel(level); err != nil {
		return 0, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	assigned, err := s.insertLocked(id, pos, bounds, level, content)
	if err != nil {
		return 0, err
	}

	s.entityCount.Add(1)
	insertsTotal.WithLabelValues(s.calc.Name()).Inc()
	entitiesGauge.WithLabelValues(s.calc.Name()).Inc()
	return assigned, nil
}

// insertLocked performs the insertion under the write lock. Nothing is
// mutated when key computation or id validation fails.
func (s *SpatialIndex[K, V]) insertLocked(id *EntityID, pos geometry.Point3D, bounds *geometry.AABB, level uint8, content V) (EntityID, error) {
	keys, err := s.keysFor(pos, bounds, level)
	if err != nil {
		return 0, err
	}

	assigned := EntityID(0)
	if id != nil {
		assigned = *id
	} else {
		assigned, err = s.store.generateID()
		if err != nil {
			return 0, err
		}
	}

	if _, err := s.store.create(assigned, pos, bounds, content, keys); err != nil {
		return 0, err
	}

	for _, k := range keys {
		n := s.ensureNode(k)
		n.add(assigned)
	}
	s.subdivideOverflowing(keys)
	return assigned, nil
}

// keysFor computes the cell memberships for a new or moved entity
func (s *SpatialIndex[K, V]) keysFor(pos geometry.Point3D, bounds *geometry.AABB, level uint8) ([]K, error) {
	if bounds != nil && s.cfg.SpanningPolicy != config.SpanningNone {
		limit := 0
		if s.cfg.SpanningPolicy == config.SpanningPerLevelCap {
			limit = s.cfg.MaxSpanCells
		}
		keys, err := s.calc.SpanningKeys(*bounds, level, limit)
		if err != nil {
			return nil, err
		}
		if len(keys) > 0 {
			return keys, nil
		}
	}
	k, err := s.calc.KeyFor(pos, level)
	if err != nil {
		return nil, err
	}
	return []K{k}, nil
}

// ensureNode returns the node at key, creating it from the pool and wiring
// the parent's child mask when needed
func (s *SpatialIndex[K, V]) ensureNode(k K) *node {
	if n := s.nodes.get(k); n != nil {
		return n
	}
	n := s.pool.get()
	s.nodes.put(k, n)
	s.nodeCount.Add(1)
	nodesGauge.WithLabelValues(s.calc.Name()).Inc()

	if parentKey, ok := k.Parent(); ok {
		if parent := s.nodes.get(parentKey); parent != nil {
			parent.setChild(k.ChildIndex())
		}
	}
	// A node created below existing finer nodes adopts them in its mask
	for i := 0; i < 8; i++ {
		child, err := k.Child(i)
		if err != nil {
			break
		}
		if s.nodes.get(child) != nil {
			n.setChild(i)
		}
	}
	return n
}

// releaseNode removes an empty node and returns it to the pool, cascading
// the purge through emptied ancestors
func (s *SpatialIndex[K, V]) releaseNode(k K) {
	for {
		n := s.nodes.get(k)
		if n == nil || !n.isEmpty() {
			return
		}
		s.nodes.delete(k)
		s.pool.put(n)
		s.nodeCount.Add(-1)
		nodesGauge.WithLabelValues(s.calc.Name()).Dec()

		parentKey, ok := k.Parent()
		if !ok {
			return
		}
		if parent := s.nodes.get(parentKey); parent != nil {
			parent.clearChild(k.ChildIndex())
		}
		k = parentKey
	}
}

// subdivideOverflowing splits any touched node whose bucket exceeds the
// threshold, following moved entities down until every bucket fits or
// cannot be separated further
func (s *SpatialIndex[K, V]) subdivideOverflowing(touched []K) {
	work := append([]K(nil), touched...)
	for len(work) > 0 {
		k := work[len(work)-1]
		work = work[:len(work)-1]

		n := s.nodes.get(k)
		if n == nil || n.count() <= s.cfg.MaxEntitiesPerNode || k.Level() >= s.maxDepth {
			continue
		}
		moved := s.splitNode(k, n)
		work = append(work, moved...)
	}
}

// splitNode distributes a node's entities among its children. It returns
// the child keys that received entities, or nil when subdivision would not
// separate anything (all entities share one child cell).
func (s *SpatialIndex[K, V]) splitNode(k K, n *node) []K {
	childLevel := k.Level() + 1

	type move struct {
		id      EntityID
		targets []K
	}
	moves := make([]move, 0, n.count())
	distinct := make(map[K]struct{})
	movable := 0

	for _, id := range n.entities {
		e := s.store.get(id)
		if e == nil {
			continue
		}
		targets := s.childTargets(k, e, childLevel)
		if len(targets) == 0 {
			continue
		}
		movable++
		for _, t := range targets {
			distinct[t] = struct{}{}
		}
		moves = append(moves, move{id: id, targets: targets})
	}

	// Splitting helps only when the entities separate into at least two
	// cells, or some entities stay behind
	if len(distinct) <= 1 && movable == n.count() {
		return nil
	}
	if len(distinct) == 0 {
		return nil
	}

	for _, m := range moves {
		n.remove(m.id)
		for _, t := range m.targets {
			cn := s.ensureNode(t)
			cn.add(m.id)
		}
		if e := s.store.get(m.id); e != nil {
			e.replaceLocation(k, m.targets)
		}
	}

	subdivisionsTotal.WithLabelValues(s.calc.Name()).Inc()

	out := make([]K, 0, len(distinct))
	for t := range distinct {
		out = append(out, t)
	}
	return out
}

// childTargets computes where an entity of a splitting node lands one level
// down. Bounded entities may span several children; targets outside this
// node's subtree are dropped (the entity keeps its other locations).
func (s *SpatialIndex[K, V]) childTargets(parent K, e *Entity[K, V], childLevel uint8) []K {
	if e.Bounds != nil && s.cfg.SpanningPolicy != config.SpanningNone {
		limit := 0
		if s.cfg.SpanningPolicy == config.SpanningPerLevelCap {
			limit = s.cfg.MaxSpanCells
		}
		keys, err := s.calc.SpanningKeys(*e.Bounds, childLevel, limit)
		if err != nil {
			return nil
		}
		out := keys[:0]
		for _, ck := range keys {
			if p, ok := ck.Parent(); ok && p == parent {
				out = append(out, ck)
			}
		}
		return out
	}

	ck, err := s.calc.KeyFor(e.Position, childLevel)
	if err != nil {
		return nil
	}
	if p, ok := ck.Parent(); !ok || p != parent {
		return nil
	}
	return []K{ck}
}

// RemoveEntity purges an entity from every location. It returns false for
// an unknown id.
func (s *SpatialIndex[K, V]) RemoveEntity(id EntityID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.removeLocked(id) {
		return false
	}

	s.entityCount.Add(-1)
	removesTotal.WithLabelValues(s.calc.Name()).Inc()
	entitiesGauge.WithLabelValues(s.calc.Name()).Dec()
	return true
}

func (s *SpatialIndex[K, V]) removeLocked(id EntityID) bool {
	e := s.store.remove(id)
	if e == nil {
		return false
	}
	for _, k := range e.locations {
		if n := s.nodes.get(k); n != nil {
			n.remove(id)
			if s.cfg.SubdivisionStrategy != config.SubdivisionLazy {
				s.releaseNode(k)
			}
		}
	}
	return true
}

// UpdateEntity moves an entity to a new position at the given level,
// recomputing its cell memberships. Bounds travel with the position.
// It returns false for an unknown id.
func (s *SpatialIndex[K, V]) UpdateEntity(id EntityID, pos geometry.Point3D, level uint8) (bool, error) {
	if err := s.validateLevel(level); err != nil {
		return false, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	e := s.store.get(id)
	if e == nil {
		return false, nil
	}

	// Translate any bounds by the movement delta before re-inserting
	var bounds *geometry.AABB
	if e.Bounds != nil {
		delta := pos.Sub(e.Position)
		b := geometry.AABB{
			Min: e.Bounds.Min.Add(delta),
			Max: e.Bounds.Max.Add(delta),
		}
		bounds = &b
	}
	content := e.Content

	// Compute the new memberships first so an invalid position leaves the
	// entity where it was
	if _, err := s.keysFor(pos, bounds, level); err != nil {
		return false, err
	}
	if !s.removeLocked(id) {
		return false, errors.Inconsistent("entity %d vanished during update", id)
	}
	if _, err := s.insertLocked(&id, pos, bounds, level, content); err != nil {
		return false, err
	}

	updatesTotal.WithLabelValues(s.calc.Name()).Inc()
	return true, nil
}

// GetEntity returns the content stored under an id
func (s *SpatialIndex[K, V]) GetEntity(id EntityID) (V, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e := s.store.get(id)
	if e == nil {
		var zero V
		return zero, false
	}
	return e.Content, true
}

// GetEntityPosition returns an entity's position
func (s *SpatialIndex[K, V]) GetEntityPosition(id EntityID) (geometry.Point3D, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e := s.store.get(id)
	if e == nil {
		return geometry.Point3D{}, false
	}
	return e.Position, true
}

// GetEntityBounds returns an entity's bounding volume, nil for point
// entities
func (s *SpatialIndex[K, V]) GetEntityBounds(id EntityID) (*geometry.AABB, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e := s.store.get(id)
	if e == nil {
		return nil, false
	}
	if e.Bounds == nil {
		return nil, true
	}
	b := *e.Bounds
	return &b, true
}

// EntityLocations returns the node keys currently holding an entity
func (s *SpatialIndex[K, V]) EntityLocations(id EntityID) []K {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e := s.store.get(id)
	if e == nil {
		return nil
	}
	return e.Locations()
}

// ContainsEntity reports whether an id is stored
func (s *SpatialIndex[K, V]) ContainsEntity(id EntityID) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.store.get(id) != nil
}

// EntityCount returns the number of stored entities
func (s *SpatialIndex[K, V]) EntityCount() int {
	return int(s.entityCount.Load())
}

// NodeCount returns the number of allocated nodes
func (s *SpatialIndex[K, V]) NodeCount() int {
	return int(s.nodeCount.Load())
}

// Nodes returns a snapshot of every node in key order
func (s *SpatialIndex[K, V]) Nodes() []NodeInfo[K] {
	var out []NodeInfo[K]
	s.NodesFunc(func(info NodeInfo[K]) bool {
		out = append(out, info)
		return true
	})
	return out
}

// NodesFunc streams node snapshots in key order until fn returns false
func (s *SpatialIndex[K, V]) NodesFunc(fn func(NodeInfo[K]) bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	s.nodes.ascend(func(k K, n *node) bool {
		ids := make([]EntityID, len(n.entities))
		copy(ids, n.entities)
		return fn(NodeInfo[K]{Key: k, EntityIDs: ids, ChildMask: n.childMask})
	})
}

// GetNodeBounds returns the axis-aligned hull of a node's cell; debug
// exporters reconstruct geometry from this alone
func (s *SpatialIndex[K, V]) GetNodeBounds(k K) (geometry.AABB, error) {
	return s.calc.CellBounds(k)
}

// Enclosing returns the node whose cell contains a point at the given
// level; ok is false when no node exists there
func (s *SpatialIndex[K, V]) Enclosing(p geometry.Point3D, level uint8) (NodeInfo[K], bool, error) {
	if err := s.validateLevel(level); err != nil {
		return NodeInfo[K]{}, false, err
	}
	k, err := s.calc.KeyFor(p, level)
	if err != nil {
		return NodeInfo[K]{}, false, err
	}
	return s.nodeInfoAt(k)
}

// EnclosingVolume returns the deepest existing node whose single cell, at
// or above the given level, contains the whole volume
func (s *SpatialIndex[K, V]) EnclosingVolume(bounds geometry.AABB, level uint8) (NodeInfo[K], bool, error) {
	if err := s.validateLevel(level); err != nil {
		return NodeInfo[K]{}, false, err
	}

	lo, err := s.calc.KeyFor(bounds.Min, level)
	if err != nil {
		return NodeInfo[K]{}, false, err
	}
	hi, err := s.calc.KeyFor(bounds.Max, level)
	if err != nil {
		return NodeInfo[K]{}, false, err
	}

	// Ascend to the common ancestor cell
	for lo != hi {
		pl, ok := lo.Parent()
		if !ok {
			break
		}
		ph, _ := hi.Parent()
		lo, hi = pl, ph
	}

	// Walk up until a node exists at the enclosing cell
	for {
		info, ok, err := s.nodeInfoAt(lo)
		if err != nil || ok {
			return info, ok, err
		}
		parent, ok := lo.Parent()
		if !ok {
			return NodeInfo[K]{Key: lo}, false, nil
		}
		lo = parent
	}
}

func (s *SpatialIndex[K, V]) nodeInfoAt(k K) (NodeInfo[K], bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n := s.nodes.get(k)
	if n == nil {
		return NodeInfo[K]{Key: k}, false, nil
	}
	ids := make([]EntityID, len(n.entities))
	copy(ids, n.entities)
	return NodeInfo[K]{Key: k, EntityIDs: ids, ChildMask: n.childMask}, true, nil
}

func (s *SpatialIndex[K, V]) validateLevel(level uint8) error {
	if level > s.maxDepth {
		return errors.InvalidLevel(level, s.maxDepth)
	}
	return nil
}
