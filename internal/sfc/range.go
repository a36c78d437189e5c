package sfc

import (
	"math/bits"

	"github.com/arx-os/arxspace/pkg/errors"
)

// MortonRanges decomposes an inclusive grid-coordinate box into contiguous
// Z-order intervals at the given level, following the Tropf/Herzog
// construction: the highest bit where the two corner codes differ splits the
// box into a below-LITMAX and an above-BIGMIN part, which recurse
// independently. Adjacent intervals are merged.
//
// The result covers the box exactly: every cell in the box falls into
// exactly one interval and no cell outside the box is covered — unless
// maxRanges > 0 cuts the recursion short, in which case the affected
// interval degrades to a conservative superset (callers filter candidate
// cells against the query shape anyway).
func MortonRanges(minX, minY, minZ, maxX, maxY, maxZ uint32, level uint8, maxRanges int) ([]Range[MortonKey], error) {
	if level > MaxLevel {
		return nil, errors.InvalidLevel(level, MaxLevel)
	}
	if minX > maxX || minY > maxY || minZ > maxZ {
		return nil, errors.InvalidArgument("box min (%d,%d,%d) exceeds max (%d,%d,%d)", minX, minY, minZ, maxX, maxY, maxZ)
	}
	if maxX >= MaxCoord || maxY >= MaxCoord || maxZ >= MaxCoord {
		return nil, errors.InvalidCoordinates("box max (%d,%d,%d) outside [0,%d)", maxX, maxY, maxZ, MaxCoord)
	}

	shift := MaxLevel - level
	lo := [3]uint32{minX >> shift, minY >> shift, minZ >> shift}
	hi := [3]uint32{maxX >> shift, maxY >> shift, maxZ >> shift}

	var codes []codeRange
	decomposeBox(lo, hi, maxRanges, &codes)

	merged := mergeCodeRanges(codes)
	ranges := make([]Range[MortonKey], len(merged))
	for i, cr := range merged {
		ranges[i] = Range[MortonKey]{
			Lo: MortonKey{code: cr.lo, lvl: level},
			Hi: MortonKey{code: cr.hi, lvl: level},
		}
	}
	return ranges, nil
}

type codeRange struct {
	lo uint64
	hi uint64
}

// decomposeBox recursively splits the cell-index box until each piece is a
// contiguous curve segment
func decomposeBox(min, max [3]uint32, maxRanges int, out *[]codeRange) {
	lo := encodeCells(min)
	hi := encodeCells(max)

	cells := uint64(max[0]-min[0]+1) * uint64(max[1]-min[1]+1) * uint64(max[2]-min[2]+1)
	if hi-lo+1 == cells {
		*out = append(*out, codeRange{lo: lo, hi: hi})
		return
	}
	if maxRanges > 0 && len(*out) >= maxRanges {
		// Budget exhausted: keep the conservative superset
		*out = append(*out, codeRange{lo: lo, hi: hi})
		return
	}

	// Highest differing code bit names the axis and the coordinate bit to
	// split on; LITMAX ends the lower half, BIGMIN starts the upper one
	bit := uint(bits.Len64(lo^hi) - 1)
	axis := bit % 3
	coordBit := bit / 3

	splitAt := max[axis] >> coordBit << coordBit

	lower := max
	lower[axis] = splitAt - 1
	upper := min
	upper[axis] = splitAt

	decomposeBox(min, lower, maxRanges, out)
	decomposeBox(upper, max, maxRanges, out)
}

// mergeCodeRanges merges touching intervals; the decomposition emits them in
// ascending curve order
func mergeCodeRanges(in []codeRange) []codeRange {
	if len(in) == 0 {
		return in
	}
	out := in[:1]
	for _, cr := range in[1:] {
		last := &out[len(out)-1]
		if cr.lo <= last.hi+1 {
			if cr.hi > last.hi {
				last.hi = cr.hi
			}
			continue
		}
		out = append(out, cr)
	}
	return out
}

// encodeCells interleaves cell indices (not grid coordinates)
func encodeCells(c [3]uint32) uint64 {
	return interleave3(uint64(c[0])) | interleave3(uint64(c[1]))<<1 | interleave3(uint64(c[2]))<<2
}

// CellsInRange walks the cell origins of a code interval at the given level
// in curve order, stopping early when fn returns false. Used by the
// tetrahedral engine to expand Morton intervals into per-cell type probes.
func CellsInRange(r Range[MortonKey], fn func(x, y, z uint32) bool) {
	shift := MaxLevel - r.Lo.lvl
	for code := r.Lo.code; code <= r.Hi.code; code++ {
		x := uint32(deinterleave3(code)) << shift
		y := uint32(deinterleave3(code>>1)) << shift
		z := uint32(deinterleave3(code>>2)) << shift
		if !fn(x, y, z) {
			return
		}
	}
}

// RangeCellCount returns the number of cells in a code interval
func RangeCellCount(r Range[MortonKey]) uint64 {
	return r.Hi.code - r.Lo.code + 1
}
