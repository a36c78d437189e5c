package index

import (
	"github.com/arx-os/arxspace/internal/sfc"
	"github.com/arx-os/arxspace/pkg/geometry"
)

// Calculator is the per-engine geometry bridge: it maps positions and
// volumes to keys and keys back to cells. The tree core is generic over it,
// which keeps the octree and the tetree monomorphic behind one engine.
type Calculator[K sfc.Key[K]] interface {
	// Name labels the engine in logs and metrics
	Name() string

	// MaxLevel returns the engine's deepest refinement level
	MaxLevel() uint8

	// Root returns the level-0 key
	Root() K

	// KeyFor returns the key of the cell containing a point at a level
	KeyFor(p geometry.Point3D, level uint8) (K, error)

	// SpanningKeys returns the keys of all cells intersecting a volume at
	// the given level. A positive limit caps the result by coarsening the
	// level until the volume fits.
	SpanningKeys(bounds geometry.AABB, level uint8, limit int) ([]K, error)

	// CellBounds returns the axis-aligned hull of a cell
	CellBounds(k K) (geometry.AABB, error)

	// ContainsPoint tests exact cell membership
	ContainsPoint(k K, p geometry.Point3D) (bool, error)

	// Ranges decomposes a volume into curve intervals at a level. The
	// result may conservatively cover extra cells; queries filter nodes by
	// cell bounds afterwards.
	Ranges(bounds geometry.AABB, level uint8, maxRanges int) ([]sfc.Range[K], error)
}

// clampToDomain intersects a query volume with the positive curve domain.
// ok is false when nothing remains.
func clampToDomain(b geometry.AABB) (geometry.AABB, bool) {
	max := float64(sfc.MaxCoord)
	if b.Max.X < 0 || b.Max.Y < 0 || b.Max.Z < 0 ||
		b.Min.X >= max || b.Min.Y >= max || b.Min.Z >= max {
		return geometry.AABB{}, false
	}
	clamp := func(v, lo, hi float64) float64 {
		if v < lo {
			return lo
		}
		if v > hi {
			return hi
		}
		return v
	}
	return geometry.AABB{
		Min: geometry.Point3D{
			X: clamp(b.Min.X, 0, max-1),
			Y: clamp(b.Min.Y, 0, max-1),
			Z: clamp(b.Min.Z, 0, max-1),
		},
		Max: geometry.Point3D{
			X: clamp(b.Max.X, 0, max-1),
			Y: clamp(b.Max.Y, 0, max-1),
			Z: clamp(b.Max.Z, 0, max-1),
		},
	}, true
}

// cellIndexSpan returns the inclusive per-axis cell index range covered by a
// clamped volume at a level
func cellIndexSpan(b geometry.AABB, level uint8) (lo, hi [3]uint32) {
	shift := sfc.MaxLevel - level
	lo = [3]uint32{
		uint32(b.Min.X) >> shift,
		uint32(b.Min.Y) >> shift,
		uint32(b.Min.Z) >> shift,
	}
	hi = [3]uint32{
		uint32(b.Max.X) >> shift,
		uint32(b.Max.Y) >> shift,
		uint32(b.Max.Z) >> shift,
	}
	return lo, hi
}

// spanCellCount returns the number of cells in an inclusive index span
func spanCellCount(lo, hi [3]uint32) uint64 {
	return uint64(hi[0]-lo[0]+1) * uint64(hi[1]-lo[1]+1) * uint64(hi[2]-lo[2]+1)
}
