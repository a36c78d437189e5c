package index

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arx-os/arxspace/internal/config"
	"github.com/arx-os/arxspace/pkg/geometry"
)

func bulkConfig(batchSize int) *config.Config {
	cfg := config.DefaultConfig()
	cfg.Bulk.BatchSize = batchSize
	return cfg
}

func TestInsertBatch_SmallFallsBackToSequential(t *testing.T) {
	idx, err := NewOctree[int](bulkConfig(100))
	require.NoError(t, err)

	positions := []geometry.Point3D{
		geometry.NewPoint3D(10, 10, 10),
		geometry.NewPoint3D(20, 20, 20),
	}
	ids, errs := idx.InsertBatch(positions, []int{1, 2}, 12)

	require.Len(t, ids, 2)
	for i, err := range errs {
		assert.NoError(t, err, "item %d", i)
	}
	assert.Equal(t, EntityID(1), ids[0])
	assert.Equal(t, EntityID(2), ids[1])
	assert.Equal(t, 2, idx.EntityCount())
}

func TestInsertBatch_Large(t *testing.T) {
	idx, err := NewOctree[int](bulkConfig(16))
	require.NoError(t, err)

	rng := rand.New(rand.NewSource(77))
	n := 500
	positions := make([]geometry.Point3D, n)
	contents := make([]int, n)
	for i := range positions {
		positions[i] = geometry.NewPoint3D(
			rng.Float64()*100000, rng.Float64()*100000, rng.Float64()*100000)
		contents[i] = i
	}

	ids, errs := idx.InsertBatch(positions, contents, 12)

	require.Len(t, ids, n)
	for i := range errs {
		require.NoError(t, errs[i], "item %d", i)
	}

	// Ids are assigned in input order
	for i := 1; i < n; i++ {
		assert.Greater(t, ids[i], ids[i-1], "id order at %d", i)
	}
	assert.Equal(t, n, idx.EntityCount())

	// Every entity is queryable under its content
	for i := 0; i < n; i += 97 {
		content, ok := idx.GetEntity(ids[i])
		require.True(t, ok)
		assert.Equal(t, i, content)
		pos, ok := idx.GetEntityPosition(ids[i])
		require.True(t, ok)
		assert.Equal(t, positions[i], pos)
	}
	checkInvariants(t, idx)
}

func TestInsertBatch_PartialErrors(t *testing.T) {
	idx, err := NewOctree[int](bulkConfig(2))
	require.NoError(t, err)

	positions := []geometry.Point3D{
		geometry.NewPoint3D(10, 10, 10),
		geometry.NewPoint3D(-5, 0, 0), // invalid
		geometry.NewPoint3D(30, 30, 30),
	}
	ids, errs := idx.InsertBatch(positions, []int{0, 1, 2}, 12)

	assert.NoError(t, errs[0])
	assert.Error(t, errs[1])
	assert.NoError(t, errs[2])
	assert.Equal(t, EntityID(0), ids[1], "failed item gets no id")
	assert.Equal(t, 2, idx.EntityCount())
	checkInvariants(t, idx)
}

func TestInsertBatch_LengthMismatch(t *testing.T) {
	idx := newTestOctree(t)

	ids, errs := idx.InsertBatch(
		[]geometry.Point3D{geometry.NewPoint3D(1, 1, 1)}, nil, 10)
	require.Len(t, errs, 1)
	assert.Error(t, errs[0])
	assert.Equal(t, EntityID(0), ids[0])
	assert.Equal(t, 0, idx.EntityCount())
}

func TestInsertBatch_Empty(t *testing.T) {
	idx := newTestOctree(t)
	ids, errs := idx.InsertBatch(nil, nil, 10)
	assert.Empty(t, ids)
	assert.Empty(t, errs)
}

func TestInsertBatch_MatchesSequential(t *testing.T) {
	// The bulk path and plain inserts of the same input agree on the
	// resulting entity set and node structure
	rng := rand.New(rand.NewSource(42))
	n := 200
	positions := make([]geometry.Point3D, n)
	contents := make([]int, n)
	for i := range positions {
		positions[i] = geometry.NewPoint3D(
			rng.Float64()*50000, rng.Float64()*50000, rng.Float64()*50000)
		contents[i] = i
	}

	bulk, err := NewOctree[int](bulkConfig(8))
	require.NoError(t, err)
	seq, err := NewOctree[int](bulkConfig(1 << 30))
	require.NoError(t, err)

	bulkIDs, errs := bulk.InsertBatch(positions, contents, 12)
	for i := range errs {
		require.NoError(t, errs[i])
	}
	seqIDs, errs := seq.InsertBatch(positions, contents, 12)
	for i := range errs {
		require.NoError(t, errs[i])
	}

	assert.Equal(t, seqIDs, bulkIDs)
	assert.Equal(t, seq.EntityCount(), bulk.EntityCount())

	for i := range bulkIDs {
		bp, ok := bulk.GetEntityPosition(bulkIDs[i])
		require.True(t, ok)
		sp, ok := seq.GetEntityPosition(seqIDs[i])
		require.True(t, ok)
		assert.Equal(t, sp, bp)
	}

	// Observable query results agree regardless of internal node layout
	region := geometry.NewAABB(
		geometry.NewPoint3D(10000, 10000, 10000),
		geometry.NewPoint3D(40000, 40000, 40000))
	assert.Equal(t, seq.EntitiesInRegion(region), bulk.EntitiesInRegion(region))
	checkInvariants(t, bulk)
	checkInvariants(t, seq)
}

func TestInsertBatch_NoPreSort(t *testing.T) {
	cfg := bulkConfig(4)
	cfg.Bulk.PreSortBySFC = false
	cfg.Bulk.DeferSubdivision = false
	idx, err := NewOctree[int](cfg)
	require.NoError(t, err)

	positions := make([]geometry.Point3D, 64)
	contents := make([]int, 64)
	for i := range positions {
		positions[i] = geometry.NewPoint3D(float64(i)*1000, 500, 500)
		contents[i] = i
	}
	ids, errs := idx.InsertBatch(positions, contents, 10)
	for i := range errs {
		require.NoError(t, errs[i])
	}
	require.Len(t, ids, 64)
	assert.Equal(t, 64, idx.EntityCount())
	checkInvariants(t, idx)
}
