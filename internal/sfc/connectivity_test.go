package sfc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// The connectivity tables are redundant encodings of one refinement; these
// tests pin every relation between them so a bad constant cannot hide.

func TestConnectivity_LocalIndexRoundTrip(t *testing.T) {
	for p := 0; p < 6; p++ {
		for i := 0; i < 8; i++ {
			cid := ParentTypeLocalIndexToCubeID[p][i]
			ct := ParentTypeLocalIndexToType[p][i]

			assert.Equal(t, uint8(p), CubeIDTypeToParentType[cid][ct],
				"parent type of child (p=%d, i=%d)", p, i)
			assert.Equal(t, uint8(i), TypeCubeIDToLocalIndex[ct][cid],
				"local index of child (p=%d, i=%d)", p, i)
		}
	}
}

func TestConnectivity_BeyPermutations(t *testing.T) {
	for p := 0; p < 6; p++ {
		var seen [8]bool
		for i := 0; i < 8; i++ {
			bey := TypeLocalIndexToBeyChild[p][i]
			require.Less(t, int(bey), 8)
			assert.False(t, seen[bey], "bey id %d repeated for parent type %d", bey, p)
			seen[bey] = true
		}
	}
}

func TestConnectivity_BeyTypeAgreement(t *testing.T) {
	// The type of the i-th child agrees whether derived through local-index
	// tables or through the Bey numbering
	for p := 0; p < 6; p++ {
		for i := 0; i < 8; i++ {
			bey := TypeLocalIndexToBeyChild[p][i]
			assert.Equal(t, ParentTypeLocalIndexToType[p][i], TypeBeyChildToType[p][bey],
				"child type mismatch (p=%d, i=%d)", p, i)
		}
	}
}

func TestConnectivity_BeyVertexMatchesCubeID(t *testing.T) {
	// The anchor derived from the Bey defining vertex must land in the
	// octant named by the cube id table
	for p := 0; p < 6; p++ {
		for i := 0; i < 8; i++ {
			bey := TypeLocalIndexToBeyChild[p][i]
			v := TypeToSimplexVertices[p][BeyChildToVertex[bey]]
			cid := ParentTypeLocalIndexToCubeID[p][i]

			assert.Equal(t, cid&1, v[0], "x octant (p=%d, i=%d)", p, i)
			assert.Equal(t, cid>>1&1, v[1], "y octant (p=%d, i=%d)", p, i)
			assert.Equal(t, cid>>2&1, v[2], "z octant (p=%d, i=%d)", p, i)
		}
	}
}

func TestConnectivity_CornerChildrenKeepType(t *testing.T) {
	// Bey children 0..3 sit at the parent's vertices and keep its type
	for p := 0; p < 6; p++ {
		for bey := 0; bey < 4; bey++ {
			assert.Equal(t, uint8(p), TypeBeyChildToType[p][bey])
		}
	}
	// Bey child 0 is anchored at the parent anchor itself
	assert.Equal(t, uint8(0), BeyChildToVertex[0])
}

func TestConnectivity_SimplexVertices(t *testing.T) {
	for typ := 0; typ < 6; typ++ {
		v := TypeToSimplexVertices[typ]
		// Every type spans the main diagonal
		assert.Equal(t, [3]uint8{0, 0, 0}, v[0], "type %d anchor", typ)
		assert.Equal(t, [3]uint8{1, 1, 1}, v[3], "type %d far corner", typ)

		// v1 and v2 are distinct cube corners off the diagonal
		assert.NotEqual(t, v[0], v[1])
		assert.NotEqual(t, v[1], v[2])
		assert.NotEqual(t, v[2], v[3])
	}
}

func TestConnectivity_FaceNeighborInvolution(t *testing.T) {
	// Crossing a face and crossing back returns to the original tetrahedron
	for typ := uint8(0); typ < 6; typ++ {
		tet := Tet{X: 1 << 19, Y: 1 << 19, Z: 1 << 19, Level: 2, Type: typ}
		for face := 0; face < 4; face++ {
			n, mirror, err := tet.FaceNeighbor(face)
			require.NoError(t, err)

			back, backMirror, err := n.FaceNeighbor(mirror)
			require.NoError(t, err)
			assert.Equal(t, tet, back, "type %d face %d", typ, face)
			assert.Equal(t, face, backMirror, "type %d face %d", typ, face)
		}
	}
}

func TestConnectivity_ChildrenInsideParent(t *testing.T) {
	// The centroid of every child lies inside the parent tetrahedron;
	// this ties the tables to the containment predicate
	for typ := uint8(0); typ < 6; typ++ {
		parent := Tet{Level: 0, Type: typ}
		for i := 0; i < 8; i++ {
			child, err := parent.Child(i)
			require.NoError(t, err)

			cx, cy, cz := child.Centroid()
			assert.True(t, parent.Contains(cx, cy, cz),
				"child %d of type %d escapes its parent", i, typ)
		}
	}
}

func TestConnectivity_ChildrenPartitionParent(t *testing.T) {
	// Child volumes are disjoint: a point interior to one child is claimed
	// by no sibling
	parent := TetRoot()
	for i := 0; i < 8; i++ {
		child, err := parent.Child(i)
		require.NoError(t, err)
		cx, cy, cz := child.Centroid()

		owners := 0
		for j := 0; j < 8; j++ {
			sibling, err := parent.Child(j)
			require.NoError(t, err)
			if sibling.Contains(cx, cy, cz) {
				owners++
			}
		}
		assert.Equal(t, 1, owners, "centroid of child %d claimed by %d siblings", i, owners)
	}
}
