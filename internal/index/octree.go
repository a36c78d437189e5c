package index

import (
	"github.com/arx-os/arxspace/internal/config"
	"github.com/arx-os/arxspace/internal/sfc"
	"github.com/arx-os/arxspace/pkg/errors"
	"github.com/arx-os/arxspace/pkg/geometry"
)

// mortonCalculator implements the cubic-cell engine on Morton keys
type mortonCalculator struct{}

// NewOctree creates a spatial index over Morton-encoded cubic cells
func NewOctree[V any](cfg *config.Config) (*SpatialIndex[sfc.MortonKey, V], error) {
	return newSpatialIndex[sfc.MortonKey, V](mortonCalculator{}, cfg)
}

func (mortonCalculator) Name() string {
	return "octree"
}

func (mortonCalculator) MaxLevel() uint8 {
	return sfc.MaxLevel
}

func (mortonCalculator) Root() sfc.MortonKey {
	return sfc.MortonRoot()
}

func (mortonCalculator) KeyFor(p geometry.Point3D, level uint8) (sfc.MortonKey, error) {
	if !p.IsNonNegative() {
		return sfc.MortonKey{}, errors.InvalidCoordinates("negative position %v", p)
	}
	if p.X >= float64(sfc.MaxCoord) || p.Y >= float64(sfc.MaxCoord) || p.Z >= float64(sfc.MaxCoord) {
		return sfc.MortonKey{}, errors.InvalidCoordinates("position %v outside [0,%d)", p, sfc.MaxCoord)
	}
	return sfc.EncodeMorton(uint32(p.X), uint32(p.Y), uint32(p.Z), level)
}

func (c mortonCalculator) SpanningKeys(bounds geometry.AABB, level uint8, limit int) ([]sfc.MortonKey, error) {
	clamped, ok := clampToDomain(bounds)
	if !ok {
		return nil, nil
	}

	// Under a cap, coarsen until the volume fits the budget
	lvl := level
	lo, hi := cellIndexSpan(clamped, lvl)
	if limit > 0 {
		for lvl > 0 && spanCellCount(lo, hi) > uint64(limit) {
			lvl--
			lo, hi = cellIndexSpan(clamped, lvl)
		}
	}

	cell := sfc.CellSize(lvl)
	keys := make([]sfc.MortonKey, 0, spanCellCount(lo, hi))
	for x := lo[0]; x <= hi[0]; x++ {
		for y := lo[1]; y <= hi[1]; y++ {
			for z := lo[2]; z <= hi[2]; z++ {
				k, err := sfc.EncodeMorton(x*cell, y*cell, z*cell, lvl)
				if err != nil {
					return nil, err
				}
				keys = append(keys, k)
			}
		}
	}
	return keys, nil
}

func (mortonCalculator) CellBounds(k sfc.MortonKey) (geometry.AABB, error) {
	x, y, z := k.Decode()
	return geometry.NewCube(
		geometry.NewPoint3D(float64(x), float64(y), float64(z)),
		float64(k.CellSize())), nil
}

func (c mortonCalculator) ContainsPoint(k sfc.MortonKey, p geometry.Point3D) (bool, error) {
	b, _ := c.CellBounds(k)
	// Cells are half-open so neighboring cells never share points
	return p.X >= b.Min.X && p.X < b.Max.X &&
		p.Y >= b.Min.Y && p.Y < b.Max.Y &&
		p.Z >= b.Min.Z && p.Z < b.Max.Z, nil
}

func (mortonCalculator) Ranges(bounds geometry.AABB, level uint8, maxRanges int) ([]sfc.Range[sfc.MortonKey], error) {
	clamped, ok := clampToDomain(bounds)
	if !ok {
		return nil, nil
	}
	return sfc.MortonRanges(
		uint32(clamped.Min.X), uint32(clamped.Min.Y), uint32(clamped.Min.Z),
		uint32(clamped.Max.X), uint32(clamped.Max.Y), uint32(clamped.Max.Z),
		level, maxRanges)
}
