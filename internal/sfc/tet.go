package sfc

import (
	"fmt"
	"math/bits"

	"github.com/arx-os/arxspace/pkg/errors"
)

// Tet is the geometric form of a tetrahedral cell: the anchor of its
// enclosing cube, the refinement level and the simplex type 0..5. The anchor
// and the far corner anchor+(h,h,h) span the cube diagonal shared by all six
// types.
type Tet struct {
	X     int32 `json:"x"`
	Y     int32 `json:"y"`
	Z     int32 `json:"z"`
	Level uint8 `json:"level"`
	Type  uint8 `json:"type"`
}

// TetRoot returns the level-0 type-0 tetrahedron
func TetRoot() Tet {
	return Tet{}
}

// TetFromPoint locates the tetrahedron containing a point at the given
// level. Points on an internal diagonal plane are resolved by closed
// containment so that every in-domain point maps to a cell.
func TetFromPoint(x, y, z float64, level uint8) (Tet, error) {
	if level > MaxLevel {
		return Tet{}, errors.InvalidLevel(level, MaxLevel)
	}
	if x < 0 || y < 0 || z < 0 || x >= float64(MaxCoord) || y >= float64(MaxCoord) || z >= float64(MaxCoord) {
		return Tet{}, errors.InvalidCoordinates("point (%v,%v,%v) outside [0,%d)", x, y, z, MaxCoord)
	}

	h := int32(CellSize(level))
	mask := ^(h - 1)
	anchor := Tet{
		X:     int32(x) & mask,
		Y:     int32(y) & mask,
		Z:     int32(z) & mask,
		Level: level,
	}

	for typ := uint8(0); typ < 6; typ++ {
		t := anchor
		t.Type = typ
		if t.Contains(x, y, z) {
			return t, nil
		}
	}
	// Boundary fallback: the exclusive face rules leave points on shared
	// diagonal planes unclaimed; take the first type whose closed hull
	// contains the point.
	for typ := uint8(0); typ < 6; typ++ {
		t := anchor
		t.Type = typ
		if t.containsClosed(x, y, z) {
			return t, nil
		}
	}
	return Tet{}, errors.Inconsistent("point (%v,%v,%v) not located in any tetrahedron at level %d", x, y, z, level)
}

// TetFromIndex reconstructs a tetrahedron from its curve index and level by
// replaying the path of local indices from the root.
func TetFromIndex(idx uint64, level uint8) (Tet, error) {
	if level > MaxLevel {
		return Tet{}, errors.InvalidLevel(level, MaxLevel)
	}
	if idx >= 1<<(3*uint(level)) {
		return Tet{}, errors.InvalidArgument("index %d too large for level %d", idx, level)
	}

	t := Tet{Level: level}
	typ := uint8(0)
	for i := uint8(1); i <= level; i++ {
		local := uint8(idx >> (3 * uint(level-i)) & 7)
		cid := ParentTypeLocalIndexToCubeID[typ][local]
		if cid&1 != 0 {
			t.X |= 1 << (MaxLevel - i)
		}
		if cid&2 != 0 {
			t.Y |= 1 << (MaxLevel - i)
		}
		if cid&4 != 0 {
			t.Z |= 1 << (MaxLevel - i)
		}
		typ = ParentTypeLocalIndexToType[typ][local]
	}
	t.Type = typ
	return t, nil
}

// LevelFromIndex derives the level implied by a raw curve index: the number
// of 3-bit path steps needed to represent it.
func LevelFromIndex(idx uint64) uint8 {
	if idx == 0 {
		return 0
	}
	lvl := uint8(bits.Len64(idx)-1)/3 + 1
	if lvl > MaxLevel {
		lvl = MaxLevel
	}
	return lvl
}

// CellSize returns the edge length of the enclosing cube in grid units
func (t Tet) CellSize() int32 {
	return int32(CellSize(t.Level))
}

// CubeID returns the octant tag of the anchor at the given level
func (t Tet) CubeID(level uint8) uint8 {
	if level == 0 || level > MaxLevel {
		return 0
	}
	shift := MaxLevel - level
	return uint8(t.X>>shift&1) | uint8(t.Y>>shift&1)<<1 | uint8(t.Z>>shift&1)<<2
}

// Parent returns the tetrahedron one level up; ok is false for the root.
// The parent anchor clears the h bit per axis, the parent type follows the
// connectivity table.
func (t Tet) Parent() (Tet, bool) {
	if t.Level == 0 {
		return Tet{}, false
	}
	h := t.CellSize()
	return Tet{
		X:     t.X &^ h,
		Y:     t.Y &^ h,
		Z:     t.Z &^ h,
		Level: t.Level - 1,
		Type:  CubeIDTypeToParentType[t.CubeID(t.Level)][t.Type],
	}, true
}

// Child returns the i-th child in curve order
func (t Tet) Child(i int) (Tet, error) {
	if i < 0 || i > 7 {
		return Tet{}, errors.InvalidArgument("child index %d outside 0..7", i)
	}
	if t.Level >= MaxLevel {
		return Tet{}, errors.InvalidLevel(t.Level+1, MaxLevel)
	}
	h2 := int32(CellSize(t.Level + 1))
	cid := ParentTypeLocalIndexToCubeID[t.Type][i]
	c := Tet{
		X:     t.X,
		Y:     t.Y,
		Z:     t.Z,
		Level: t.Level + 1,
		Type:  ParentTypeLocalIndexToType[t.Type][i],
	}
	if cid&1 != 0 {
		c.X += h2
	}
	if cid&2 != 0 {
		c.Y += h2
	}
	if cid&4 != 0 {
		c.Z += h2
	}
	return c, nil
}

// ChildBey returns the child with the given Bey id. The anchor is the
// midpoint of the parent anchor and the defining vertex; Bey child 0 keeps
// the parent anchor.
func (t Tet) ChildBey(beyID int) (Tet, error) {
	if beyID < 0 || beyID > 7 {
		return Tet{}, errors.InvalidArgument("bey id %d outside 0..7", beyID)
	}
	if t.Level >= MaxLevel {
		return Tet{}, errors.InvalidLevel(t.Level+1, MaxLevel)
	}
	v := t.Vertices()[BeyChildToVertex[beyID]]
	return Tet{
		X:     (t.X + v[0]) >> 1,
		Y:     (t.Y + v[1]) >> 1,
		Z:     (t.Z + v[2]) >> 1,
		Level: t.Level + 1,
		Type:  TypeBeyChildToType[t.Type][beyID],
	}, nil
}

// LocalIndex returns which child of its parent this tetrahedron is
func (t Tet) LocalIndex() uint8 {
	if t.Level == 0 {
		return 0
	}
	return TypeCubeIDToLocalIndex[t.Type][t.CubeID(t.Level)]
}

// Vertices returns the four corners in grid coordinates
func (t Tet) Vertices() [4][3]int32 {
	h := t.CellSize()
	unit := TypeToSimplexVertices[t.Type]
	var v [4][3]int32
	for i := 0; i < 4; i++ {
		v[i] = [3]int32{
			t.X + int32(unit[i][0])*h,
			t.Y + int32(unit[i][1])*h,
			t.Z + int32(unit[i][2])*h,
		}
	}
	return v
}

// FaceNeighbor returns the tetrahedron across the given face together with
// the matching face index on the neighbor. Faces 1 and 2 stay in the same
// cube, face 0 advances one cell along the type's first edge axis and face 3
// retreats along the remaining axis. The neighbor may lie outside the domain;
// callers check InDomain.
func (t Tet) FaceNeighbor(face int) (Tet, int, error) {
	if face < 0 || face > 3 {
		return Tet{}, 0, errors.InvalidArgument("face %d outside 0..3", face)
	}
	n := Tet{
		X:     t.X,
		Y:     t.Y,
		Z:     t.Z,
		Level: t.Level,
		Type:  FaceNeighborType[t.Type][face],
	}
	h := t.CellSize()
	switch face {
	case 0:
		n.addAxis(faceNeighborAxis[t.Type][0], h)
	case 3:
		n.addAxis(faceNeighborAxis[t.Type][1], -h)
	}
	return n, int(FaceNeighborMirror[face]), nil
}

func (t *Tet) addAxis(axis uint8, d int32) {
	switch axis {
	case 0:
		t.X += d
	case 1:
		t.Y += d
	default:
		t.Z += d
	}
}

// InDomain reports whether the anchor lies inside the positive grid cube
func (t Tet) InDomain() bool {
	return t.X >= 0 && t.Y >= 0 && t.Z >= 0 &&
		uint32(t.X) < MaxCoord && uint32(t.Y) < MaxCoord && uint32(t.Z) < MaxCoord
}

// Contains tests point membership using the four oriented face predicates.
// A boundary point counts as inside only on the face opposite the diagonal
// vertex, so the six types of a cube claim interior points exclusively.
// The determinants are evaluated in float64; grid vertices up to 2^21 are
// exactly representable, keeping the predicate sign-consistent on the grid.
func (t Tet) Contains(px, py, pz float64) bool {
	return t.contains(px, py, pz, false)
}

// containsClosed is the closed-hull variant used for point location
func (t Tet) containsClosed(px, py, pz float64) bool {
	return t.contains(px, py, pz, true)
}

// Faces in the order CDB, DCA, BDA, BAC with the opposite vertex of each;
// only the last face (opposite the diagonal vertex D) owns its boundary.
var tetFaces = [4][4]uint8{
	{2, 3, 1, 0},
	{3, 2, 0, 1},
	{1, 3, 0, 2},
	{1, 0, 2, 3},
}

func (t Tet) contains(px, py, pz float64, closed bool) bool {
	verts := t.Vertices()
	var v [4][3]float64
	for i := 0; i < 4; i++ {
		v[i] = [3]float64{float64(verts[i][0]), float64(verts[i][1]), float64(verts[i][2])}
	}
	p := [3]float64{px, py, pz}

	for f, face := range tetFaces {
		o := orient3d(v[face[0]], v[face[1]], v[face[2]], p)
		ref := orient3d(v[face[0]], v[face[1]], v[face[2]], v[face[3]])
		if o*ref < 0 {
			return false
		}
		if o == 0 && f != 3 && !closed {
			return false
		}
	}
	return true
}

// orient3d returns the signed volume determinant of the tetrahedron
// (a, b, c, d); the sign tells which side of plane (a,b,c) holds d
func orient3d(a, b, c, d [3]float64) float64 {
	adx, ady, adz := a[0]-d[0], a[1]-d[1], a[2]-d[2]
	bdx, bdy, bdz := b[0]-d[0], b[1]-d[1], b[2]-d[2]
	cdx, cdy, cdz := c[0]-d[0], c[1]-d[1], c[2]-d[2]

	return adx*(bdy*cdz-bdz*cdy) -
		ady*(bdx*cdz-bdz*cdx) +
		adz*(bdx*cdy-bdy*cdx)
}

// Index computes the curve index by walking the path of local indices from
// this level up to the root. There is no level offset; the child index is
// always parent<<3 | local.
func (t Tet) Index() uint64 {
	idx := uint64(0)
	typ := t.Type
	for i := t.Level; i > 0; i-- {
		cid := t.CubeID(i)
		local := TypeCubeIDToLocalIndex[typ][cid]
		idx |= uint64(local) << (3 * uint(t.Level-i))
		typ = CubeIDTypeToParentType[cid][typ]
	}
	return idx
}

// Key returns the compact ordered key for this tetrahedron
func (t Tet) Key() TetKey {
	return TetKey{idx: t.Index(), lvl: t.Level}
}

// String returns a string representation
func (t Tet) String() string {
	return fmt.Sprintf("tet(%d,%d,%d@%d t%d)", t.X, t.Y, t.Z, t.Level, t.Type)
}

// TetKey identifies a tetrahedral cell by its curve index and level. The
// index is the packed path of local indices from the root, so parent and
// child are plain shifts; anchor and type are recovered through the
// connectivity tables on demand.
type TetKey struct {
	idx uint64
	lvl uint8
}

// TetRootKey returns the canonical level-0 key
func TetRootKey() TetKey {
	return TetKey{}
}

// TetKeyFromIndex creates a key from a raw index and level
func TetKeyFromIndex(idx uint64, level uint8) (TetKey, error) {
	if level > MaxLevel {
		return TetKey{}, errors.InvalidLevel(level, MaxLevel)
	}
	if idx >= 1<<(3*uint(level)) {
		return TetKey{}, errors.InvalidArgument("index %d too large for level %d", idx, level)
	}
	return TetKey{idx: idx, lvl: level}, nil
}

// Index returns the raw curve index
func (k TetKey) Index() uint64 {
	return k.idx
}

// Level returns the refinement level
func (k TetKey) Level() uint8 {
	return k.lvl
}

// Tet decodes the key back to its geometric form
func (k TetKey) Tet() (Tet, error) {
	return TetFromIndex(k.idx, k.lvl)
}

// Parent returns the parent key; ok is false for the root
func (k TetKey) Parent() (TetKey, bool) {
	if k.lvl == 0 {
		return TetKey{}, false
	}
	return TetKey{idx: k.idx >> 3, lvl: k.lvl - 1}, true
}

// Child returns the i-th child key in curve order
func (k TetKey) Child(i int) (TetKey, error) {
	if i < 0 || i > 7 {
		return TetKey{}, errors.InvalidArgument("child index %d outside 0..7", i)
	}
	if k.lvl >= MaxLevel {
		return TetKey{}, errors.InvalidLevel(k.lvl+1, MaxLevel)
	}
	return TetKey{idx: k.idx<<3 | uint64(i), lvl: k.lvl + 1}, nil
}

// ChildIndex returns which child of its parent this key is
func (k TetKey) ChildIndex() int {
	if k.lvl == 0 {
		return 0
	}
	return int(k.idx & 7)
}

// Compare orders keys by level, then by unsigned curve index
func (k TetKey) Compare(other TetKey) int {
	if k.lvl != other.lvl {
		if k.lvl < other.lvl {
			return -1
		}
		return 1
	}
	if k.idx != other.idx {
		if k.idx < other.idx {
			return -1
		}
		return 1
	}
	return 0
}

// IsValid reports whether the key's level and index are within bounds
func (k TetKey) IsValid() bool {
	return k.lvl <= MaxLevel && k.idx < 1<<(3*uint(k.lvl))
}

// String returns a string representation
func (k TetKey) String() string {
	return fmt.Sprintf("tetkey(%d@%d)", k.idx, k.lvl)
}

// Centroid returns the centroid of the tetrahedron, used by traversal
// orderings that need a representative interior point
func (t Tet) Centroid() (float64, float64, float64) {
	v := t.Vertices()
	var cx, cy, cz float64
	for i := 0; i < 4; i++ {
		cx += float64(v[i][0])
		cy += float64(v[i][1])
		cz += float64(v[i][2])
	}
	return cx / 4, cy / 4, cz / 4
}
