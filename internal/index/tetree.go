package index

import (
	"sort"

	"github.com/dgraph-io/ristretto"

	"github.com/arx-os/arxspace/internal/config"
	"github.com/arx-os/arxspace/internal/sfc"
	"github.com/arx-os/arxspace/pkg/geometry"
)

// tetEnumLimit bounds how many cells a curve interval may expand into
// per-cell type probes before the engine falls back to a whole-level scan.
const tetEnumLimit = 2048

// tetCacheMaxLevel is the deepest level whose decoded cells fit the packed
// cache key (index shifted by 5 bits plus the level).
const tetCacheMaxLevel = 19

// tetCalculator implements the tetrahedral engine. Decoding a key walks the
// connectivity tables once per level, so decoded cells are memoized in a
// ristretto cache.
type tetCalculator struct {
	cells *ristretto.Cache
}

// NewTetree creates a spatial index over Bey-refined tetrahedral cells
func NewTetree[V any](cfg *config.Config) (*SpatialIndex[sfc.TetKey, V], error) {
	calc, err := newTetCalculator()
	if err != nil {
		return nil, err
	}
	return newSpatialIndex[sfc.TetKey, V](calc, cfg)
}

func newTetCalculator() (*tetCalculator, error) {
	cells, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: 1 << 16,
		MaxCost:     1 << 14,
		BufferItems: 64,
	})
	if err != nil {
		return nil, err
	}
	return &tetCalculator{cells: cells}, nil
}

func (*tetCalculator) Name() string {
	return "tetree"
}

func (*tetCalculator) MaxLevel() uint8 {
	return sfc.MaxLevel
}

func (*tetCalculator) Root() sfc.TetKey {
	return sfc.TetRootKey()
}

// decode returns the geometric cell for a key, consulting the cache for
// levels whose packed key fits
func (c *tetCalculator) decode(k sfc.TetKey) (sfc.Tet, error) {
	if k.Level() > tetCacheMaxLevel {
		return k.Tet()
	}
	packed := k.Index()<<5 | uint64(k.Level())
	if v, ok := c.cells.Get(packed); ok {
		return v.(sfc.Tet), nil
	}
	t, err := k.Tet()
	if err != nil {
		return sfc.Tet{}, err
	}
	c.cells.Set(packed, t, 1)
	return t, nil
}

func (*tetCalculator) KeyFor(p geometry.Point3D, level uint8) (sfc.TetKey, error) {
	t, err := sfc.TetFromPoint(p.X, p.Y, p.Z, level)
	if err != nil {
		return sfc.TetKey{}, err
	}
	return t.Key(), nil
}

// SpanningKeys enumerates the six tetrahedra of every cube intersecting the
// volume. Each tetrahedron's hull spans its whole cube, so the cube-level
// test is the tightest cheap filter available.
func (c *tetCalculator) SpanningKeys(bounds geometry.AABB, level uint8, limit int) ([]sfc.TetKey, error) {
	clamped, ok := clampToDomain(bounds)
	if !ok {
		return nil, nil
	}

	lvl := level
	lo, hi := cellIndexSpan(clamped, lvl)
	if limit > 0 {
		for lvl > 0 && spanCellCount(lo, hi)*6 > uint64(limit) {
			lvl--
			lo, hi = cellIndexSpan(clamped, lvl)
		}
	}

	cell := int32(sfc.CellSize(lvl))
	keys := make([]sfc.TetKey, 0, spanCellCount(lo, hi)*6)
	for x := lo[0]; x <= hi[0]; x++ {
		for y := lo[1]; y <= hi[1]; y++ {
			for z := lo[2]; z <= hi[2]; z++ {
				for typ := uint8(0); typ < 6; typ++ {
					t := sfc.Tet{
						X:     int32(x) * cell,
						Y:     int32(y) * cell,
						Z:     int32(z) * cell,
						Level: lvl,
						Type:  typ,
					}
					keys = append(keys, t.Key())
				}
			}
		}
	}
	return keys, nil
}

// CellBounds returns the cube hull of the tetrahedron; every type spans the
// diagonal, so the hull is the full cube
func (c *tetCalculator) CellBounds(k sfc.TetKey) (geometry.AABB, error) {
	t, err := c.decode(k)
	if err != nil {
		return geometry.AABB{}, err
	}
	return geometry.NewCube(
		geometry.NewPoint3D(float64(t.X), float64(t.Y), float64(t.Z)),
		float64(t.CellSize())), nil
}

func (c *tetCalculator) ContainsPoint(k sfc.TetKey, p geometry.Point3D) (bool, error) {
	t, err := c.decode(k)
	if err != nil {
		return false, err
	}
	return t.Contains(p.X, p.Y, p.Z), nil
}

// Ranges expands Morton cube intervals into tetrahedral key intervals by
// probing the six types of each cell. Oversized intervals degrade to one
// whole-level range; node filtering against cell bounds keeps that sound.
func (c *tetCalculator) Ranges(bounds geometry.AABB, level uint8, maxRanges int) ([]sfc.Range[sfc.TetKey], error) {
	clamped, ok := clampToDomain(bounds)
	if !ok {
		return nil, nil
	}

	cubeRanges, err := sfc.MortonRanges(
		uint32(clamped.Min.X), uint32(clamped.Min.Y), uint32(clamped.Min.Z),
		uint32(clamped.Max.X), uint32(clamped.Max.Y), uint32(clamped.Max.Z),
		level, maxRanges)
	if err != nil {
		return nil, err
	}

	var total uint64
	for _, r := range cubeRanges {
		total += sfc.RangeCellCount(r)
	}
	if total > tetEnumLimit {
		return c.wholeLevelRange(level)
	}

	keys := make([]sfc.TetKey, 0, total*6)
	for _, r := range cubeRanges {
		sfc.CellsInRange(r, func(x, y, z uint32) bool {
			for typ := uint8(0); typ < 6; typ++ {
				t := sfc.Tet{X: int32(x), Y: int32(y), Z: int32(z), Level: level, Type: typ}
				keys = append(keys, t.Key())
			}
			return true
		})
	}

	sort.Slice(keys, func(i, j int) bool { return keys[i].Compare(keys[j]) < 0 })

	// Coalesce consecutive curve indices into intervals
	var ranges []sfc.Range[sfc.TetKey]
	for _, k := range keys {
		if n := len(ranges); n > 0 && k.Index() <= ranges[n-1].Hi.Index()+1 {
			if k.Index() > ranges[n-1].Hi.Index() {
				ranges[n-1].Hi = k
			}
			continue
		}
		ranges = append(ranges, sfc.Range[sfc.TetKey]{Lo: k, Hi: k})
	}
	return ranges, nil
}

func (*tetCalculator) wholeLevelRange(level uint8) ([]sfc.Range[sfc.TetKey], error) {
	lo, err := sfc.TetKeyFromIndex(0, level)
	if err != nil {
		return nil, err
	}
	hi, err := sfc.TetKeyFromIndex(1<<(3*uint(level))-1, level)
	if err != nil {
		return nil, err
	}
	return []sfc.Range[sfc.TetKey]{{Lo: lo, Hi: hi}}, nil
}
