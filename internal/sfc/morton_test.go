package sfc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/arx-os/arxspace/pkg/errors"
)

func TestEncodeMorton_RoundTrip(t *testing.T) {
	tests := []struct {
		name    string
		x, y, z uint32
		level   uint8
	}{
		{"origin at root", 0, 0, 0, 0},
		{"origin at max level", 0, 0, 0, 21},
		{"small point level 10", 100, 100, 100, 10},
		{"asymmetric point", 100, 200, 300, 21},
		{"max corner", MaxCoord - 1, MaxCoord - 1, MaxCoord - 1, 21},
		{"single axis", 1 << 20, 0, 0, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			k, err := EncodeMorton(tt.x, tt.y, tt.z, tt.level)
			require.NoError(t, err)
			require.True(t, k.IsValid())

			x, y, z := k.Decode()
			cell := CellSize(tt.level)
			// Decode returns the origin of the containing cell
			assert.Equal(t, tt.x/cell*cell, x)
			assert.Equal(t, tt.y/cell*cell, y)
			assert.Equal(t, tt.z/cell*cell, z)
		})
	}
}

func TestEncodeMorton_Errors(t *testing.T) {
	_, err := EncodeMorton(0, 0, 0, 22)
	assert.True(t, apperrors.IsInvalidArgument(err))

	_, err = EncodeMorton(MaxCoord, 0, 0, 21)
	assert.True(t, apperrors.IsInvalidArgument(err))
}

func TestMortonKey_BitLayout(t *testing.T) {
	// x contributes bit 0, y bit 1, z bit 2 of each triplet
	k, err := EncodeMorton(1, 0, 0, 21)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), k.Code())

	k, err = EncodeMorton(0, 1, 0, 21)
	require.NoError(t, err)
	assert.Equal(t, uint64(2), k.Code())

	k, err = EncodeMorton(0, 0, 1, 21)
	require.NoError(t, err)
	assert.Equal(t, uint64(4), k.Code())
}

func TestMortonKey_ParentChild(t *testing.T) {
	root := MortonRoot()
	_, ok := root.Parent()
	assert.False(t, ok, "root has no parent")

	// parent(child(k, i)) == k for every i
	k, err := EncodeMorton(12345, 54321, 99999, 15)
	require.NoError(t, err)
	for i := 0; i < 8; i++ {
		c, err := k.Child(i)
		require.NoError(t, err)
		assert.Equal(t, k.Level()+1, c.Level())
		assert.Equal(t, i, c.ChildIndex())

		p, ok := c.Parent()
		require.True(t, ok)
		assert.Equal(t, k, p)
	}
}

func TestMortonKey_ChildErrors(t *testing.T) {
	k := MortonRoot()

	_, err := k.Child(-1)
	assert.True(t, apperrors.IsInvalidArgument(err))

	_, err = k.Child(8)
	assert.True(t, apperrors.IsInvalidArgument(err))

	deep, err := EncodeMorton(7, 11, 13, MaxLevel)
	require.NoError(t, err)
	_, err = deep.Child(0)
	assert.True(t, apperrors.IsInvalidArgument(err), "child past max depth")
}

func TestMortonKey_Compare(t *testing.T) {
	// Same level: unsigned code order
	a := NewMortonKey(5, 10)
	b := NewMortonKey(6, 10)
	assert.Equal(t, -1, a.Compare(b))
	assert.Equal(t, 1, b.Compare(a))
	assert.Equal(t, 0, a.Compare(a))

	// Cross level: level orders first
	shallow := NewMortonKey(1000, 3)
	deep := NewMortonKey(1, 4)
	assert.Equal(t, -1, shallow.Compare(deep))
	assert.Equal(t, 1, deep.Compare(shallow))
}

func TestMortonKey_CompareMatchesCodeOrder(t *testing.T) {
	// Invariant: same-level comparison is consistent with unsigned order
	coords := [][3]uint32{
		{0, 0, 0}, {1, 0, 0}, {0, 1, 0}, {7, 7, 7},
		{100, 100, 100}, {150, 150, 150}, {200, 200, 200},
		{1 << 20, 1 << 19, 1 << 18},
	}
	keys := make([]MortonKey, 0, len(coords))
	for _, c := range coords {
		k, err := EncodeMorton(c[0], c[1], c[2], 21)
		require.NoError(t, err)
		keys = append(keys, k)
	}
	for i := range keys {
		for j := range keys {
			cmp := keys[i].Compare(keys[j])
			switch {
			case keys[i].Code() < keys[j].Code():
				assert.Equal(t, -1, cmp)
			case keys[i].Code() > keys[j].Code():
				assert.Equal(t, 1, cmp)
			default:
				assert.Equal(t, 0, cmp)
			}
		}
	}
}

func TestMortonKey_IsValid(t *testing.T) {
	assert.True(t, MortonRoot().IsValid())
	assert.False(t, NewMortonKey(0, 22).IsValid())
	assert.False(t, NewMortonKey(8, 1).IsValid(), "code 8 needs more than one level")
	assert.True(t, NewMortonKey(7, 1).IsValid())
}

func TestCellSize(t *testing.T) {
	assert.Equal(t, MaxCoord, CellSize(0))
	assert.Equal(t, uint32(1), CellSize(MaxLevel))
	assert.Equal(t, uint32(2048), CellSize(10))
}
