package index

import (
	"sort"
	"sync"

	"github.com/arx-os/arxspace/internal/common/logger"
	"github.com/arx-os/arxspace/pkg/errors"
	"github.com/arx-os/arxspace/pkg/geometry"
)

// InsertBatch stores many point entities at one level. Keys are computed in
// parallel, the batch is pre-sorted in curve order for locality, and
// subdivision runs once at the end instead of per insertion. Ids are
// returned in input order; per-item failures land in the error slice at the
// same position and never abort the rest of the batch.
//
// The application phase runs under one write lock acquisition, so the
// observable result equals a sequential insertion of the same input.
func (s *SpatialIndex[K, V]) InsertBatch(positions []geometry.Point3D, contents []V, level uint8) ([]EntityID, []error) {
	n := len(positions)
	ids := make([]EntityID, n)
	errs := make([]error, n)

	if len(contents) != n {
		for i := range errs {
			errs[i] = errors.InvalidArgument("positions and contents length mismatch: %d vs %d", n, len(contents))
		}
		return ids, errs
	}
	if err := s.validateLevel(level); err != nil {
		for i := range errs {
			errs[i] = err
		}
		return ids, errs
	}
	if n == 0 {
		return ids, errs
	}

	// Small batches gain nothing from the pipeline
	if n < s.cfg.Bulk.BatchSize {
		for i := range positions {
			id, err := s.Insert(positions[i], level, contents[i])
			ids[i], errs[i] = id, err
		}
		return ids, errs
	}

	// Phase 1: compute keys in parallel chunks
	keys := make([]K, n)
	workers := s.cfg.Bulk.Parallelism
	if workers > n {
		workers = n
	}
	chunk := (n + workers - 1) / workers

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		lo := w * chunk
		hi := lo + chunk
		if hi > n {
			hi = n
		}
		if lo >= hi {
			break
		}
		wg.Add(1)
		go func(lo, hi int) {
			defer wg.Done()
			for i := lo; i < hi; i++ {
				k, err := s.calc.KeyFor(positions[i], level)
				if err != nil {
					errs[i] = err
					continue
				}
				keys[i] = k
			}
		}(lo, hi)
	}
	wg.Wait()

	// Phase 2: order the valid items along the curve
	order := make([]int, 0, n)
	for i := 0; i < n; i++ {
		if errs[i] == nil {
			order = append(order, i)
		}
	}
	if s.cfg.Bulk.PreSortBySFC {
		sort.Slice(order, func(a, b int) bool {
			return keys[order[a]].Compare(keys[order[b]]) < 0
		})
	}

	// Phase 3: apply under a single write lock; ids are assigned in input
	// order so the result matches a sequential insertion
	s.mu.Lock()

	inserted := 0
	for i := 0; i < n; i++ {
		if errs[i] != nil {
			continue
		}
		id, err := s.store.generateID()
		if err != nil {
			errs[i] = err
			continue
		}
		ids[i] = id
	}

	touched := make([]K, 0, len(order))
	for _, i := range order {
		if errs[i] != nil {
			continue
		}
		if _, err := s.store.create(ids[i], positions[i], nil, contents[i], []K{keys[i]}); err != nil {
			errs[i] = err
			ids[i] = 0
			continue
		}
		nd := s.ensureNode(keys[i])
		nd.add(ids[i])
		touched = append(touched, keys[i])
		inserted++

		if !s.cfg.Bulk.DeferSubdivision {
			s.subdivideOverflowing([]K{keys[i]})
		}
	}

	if s.cfg.Bulk.DeferSubdivision {
		s.subdivideOverflowing(touched)
	}
	s.mu.Unlock()

	s.entityCount.Add(int64(inserted))
	insertsTotal.WithLabelValues(s.calc.Name()).Add(float64(inserted))
	entitiesGauge.WithLabelValues(s.calc.Name()).Add(float64(inserted))

	logger.Debug("%s bulk insert: %d/%d entities at level %d", s.calc.Name(), inserted, n, level)
	return ids, errs
}
