package index

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arx-os/arxspace/pkg/geometry"
)

func TestRayIntersectAll_PointEntity(t *testing.T) {
	// A ray along +x through an entity reports it at distance 50
	idx := newTestOctree(t)

	id, err := idx.Insert(geometry.NewPoint3D(100, 100, 100), 10, "target")
	require.NoError(t, err)
	_, err = idx.Insert(geometry.NewPoint3D(100, 900, 100), 10, "offline")
	require.NoError(t, err)

	ray := geometry.NewRay3D(
		geometry.NewPoint3D(50, 100, 100),
		geometry.NewPoint3D(1, 0, 0),
		200)
	hits := idx.RayIntersectAll(ray)

	require.Len(t, hits, 1)
	assert.Equal(t, id, hits[0].ID)
	assert.InDelta(t, 50, hits[0].Distance, 1e-9)
	assert.InDelta(t, 100, hits[0].Point.X, 1e-9)
}

func TestRayIntersectAll_MaxDistance(t *testing.T) {
	idx := newTestOctree(t)

	_, err := idx.Insert(geometry.NewPoint3D(1000, 100, 100), 10, "beyond")
	require.NoError(t, err)

	ray := geometry.NewRay3D(
		geometry.NewPoint3D(50, 100, 100),
		geometry.NewPoint3D(1, 0, 0),
		200)
	assert.Empty(t, idx.RayIntersectAll(ray), "hit past maxDistance")
}

func TestRayIntersectAll_BoundedEntities(t *testing.T) {
	idx := newTestOctree(t)

	first, err := idx.InsertBounded(
		geometry.NewPoint3D(300, 100, 100),
		geometry.NewAABB(geometry.NewPoint3D(290, 90, 90), geometry.NewPoint3D(310, 110, 110)),
		10, "near box")
	require.NoError(t, err)
	second, err := idx.InsertBounded(
		geometry.NewPoint3D(600, 100, 100),
		geometry.NewAABB(geometry.NewPoint3D(590, 90, 90), geometry.NewPoint3D(610, 110, 110)),
		10, "far box")
	require.NoError(t, err)

	ray := geometry.NewRay3D(
		geometry.NewPoint3D(0, 100, 100),
		geometry.NewPoint3D(1, 0, 0),
		1000)
	hits := idx.RayIntersectAll(ray)

	require.Len(t, hits, 2)
	assert.Equal(t, first, hits[0].ID)
	assert.Equal(t, second, hits[1].ID)
	assert.InDelta(t, 290, hits[0].Distance, 1e-9)
	assert.InDelta(t, 590, hits[1].Distance, 1e-9)

	got, ok := idx.RayIntersectFirst(ray)
	require.True(t, ok)
	assert.Equal(t, first, got.ID)
}

func TestRayIntersectAll_Miss(t *testing.T) {
	idx := newTestOctree(t)
	_, err := idx.Insert(geometry.NewPoint3D(100, 100, 100), 10, "aside")
	require.NoError(t, err)

	ray := geometry.NewRay3D(
		geometry.NewPoint3D(0, 0, 0),
		geometry.NewPoint3D(0, 0, 1),
		500)
	assert.Empty(t, idx.RayIntersectAll(ray))

	_, ok := idx.RayIntersectFirst(ray)
	assert.False(t, ok)
}

func TestPlaneIntersect(t *testing.T) {
	idx := newTestOctree(t)

	onPlane, err := idx.Insert(geometry.NewPoint3D(100, 100, 500), 10, "on")
	require.NoError(t, err)
	straddling, err := idx.InsertBounded(
		geometry.NewPoint3D(800, 800, 500),
		geometry.NewAABB(geometry.NewPoint3D(790, 790, 450), geometry.NewPoint3D(810, 810, 550)),
		10, "straddles")
	require.NoError(t, err)
	_, err = idx.Insert(geometry.NewPoint3D(100, 100, 2000), 10, "above")
	require.NoError(t, err)

	// Horizontal plane z = 500
	plane := geometry.NewPlane3D(geometry.NewPoint3D(0, 0, 1), -500)
	got := idx.PlaneIntersect(plane)

	require.Len(t, got, 2)
	assert.Contains(t, got, onPlane)
	assert.Contains(t, got, straddling)
}

func TestFrustumCull(t *testing.T) {
	idx := newTestOctree(t)

	inside, err := idx.Insert(geometry.NewPoint3D(500, 500, 500), 10, "visible")
	require.NoError(t, err)
	insideFar, err := idx.Insert(geometry.NewPoint3D(500, 500, 900), 10, "visible far")
	require.NoError(t, err)
	_, err = idx.Insert(geometry.NewPoint3D(5000, 5000, 5000), 10, "outside")
	require.NoError(t, err)

	// Axis-aligned box frustum around [0,1000]^3
	frustum := geometry.NewFrustum3D(
		geometry.NewPlane3D(geometry.NewPoint3D(1, 0, 0), 0),      // x >= 0
		geometry.NewPlane3D(geometry.NewPoint3D(-1, 0, 0), 1000),  // x <= 1000
		geometry.NewPlane3D(geometry.NewPoint3D(0, -1, 0), 1000),  // y <= 1000
		geometry.NewPlane3D(geometry.NewPoint3D(0, 1, 0), 0),      // y >= 0
		geometry.NewPlane3D(geometry.NewPoint3D(0, 0, 1), 0),      // z >= 0
		geometry.NewPlane3D(geometry.NewPoint3D(0, 0, -1), 1000))  // z <= 1000

	camera := geometry.NewPoint3D(500, 500, 0)
	got := idx.FrustumCull(frustum, camera)

	require.Len(t, got, 2)
	assert.Equal(t, inside, got[0], "nearer entity first")
	assert.Equal(t, insideFar, got[1])
}

func TestEntitiesInSphere(t *testing.T) {
	idx := newTestOctree(t)

	in, err := idx.Insert(geometry.NewPoint3D(500, 500, 500), 12, "in")
	require.NoError(t, err)
	_, err = idx.Insert(geometry.NewPoint3D(700, 500, 500), 12, "out")
	require.NoError(t, err)
	boxed, err := idx.InsertBounded(
		geometry.NewPoint3D(600, 500, 500),
		geometry.NewAABB(geometry.NewPoint3D(540, 490, 490), geometry.NewPoint3D(660, 510, 510)),
		12, "touching box")
	require.NoError(t, err)

	got := idx.EntitiesInSphere(geometry.NewSphere(geometry.NewPoint3D(500, 500, 500), 60))
	assert.Equal(t, []EntityID{in, boxed}, got)
}

func TestRegionQuery_Tetree(t *testing.T) {
	idx := newTestTetree(t)

	in, err := idx.Insert(geometry.NewPoint3D(100.5, 100.25, 100.75), 12, "in")
	require.NoError(t, err)
	_, err = idx.Insert(geometry.NewPoint3D(5000.5, 5000.25, 5000.75), 12, "out")
	require.NoError(t, err)

	got := idx.EntitiesInRegion(geometry.NewAABB(
		geometry.NewPoint3D(50, 50, 50),
		geometry.NewPoint3D(200, 200, 200)))
	assert.Equal(t, []EntityID{in}, got)
}
