package geometry

import (
	"errors"
	"testing"
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func unitQuadAtZ(z float32) []mgl32.Vec3 {
	return Quad(nil,
		mgl32.Vec3{-1, -1, z},
		mgl32.Vec3{1, -1, z},
		mgl32.Vec3{1, 1, z},
		mgl32.Vec3{-1, 1, z},
	)
}

func TestNewTriangleMeshValidation(t *testing.T) {
	_, err := NewTriangleMesh(nil)
	assert.Error(t, err)

	_, err = NewTriangleMesh(make([]mgl32.Vec3, 4))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "multiple of 3")
}

func TestQuadAppendsTwoTriangles(t *testing.T) {
	verts := unitQuadAtZ(0)
	assert.Len(t, verts, 6)

	verts = Quad(verts, mgl32.Vec3{2, 0, 0}, mgl32.Vec3{3, 0, 0}, mgl32.Vec3{3, 1, 0}, mgl32.Vec3{2, 1, 0})
	assert.Len(t, verts, 12)
}

func TestRaycastHit(t *testing.T) {
	mesh, err := NewTriangleMesh(unitQuadAtZ(-3))
	require.NoError(t, err)
	assert.Equal(t, 2, mesh.TriangleCount())

	hit, ok := mesh.Raycast(mgl32.Vec3{0, 0, 0}, mgl32.Vec3{0, 0, -1})
	require.True(t, ok)
	assert.InDelta(t, 3, float64(hit.Distance), 1e-5)
	assert.InDelta(t, -3, float64(hit.Point.Z()), 1e-5)

	// The normal must face the ray origin regardless of winding.
	assert.InDelta(t, 1, float64(hit.Normal.Z()), 1e-5)
}

func TestRaycastNormalFacesOriginFromEitherSide(t *testing.T) {
	mesh, err := NewTriangleMesh(unitQuadAtZ(0))
	require.NoError(t, err)

	front, ok := mesh.Raycast(mgl32.Vec3{0, 0, 5}, mgl32.Vec3{0, 0, -1})
	require.True(t, ok)
	back, ok := mesh.Raycast(mgl32.Vec3{0, 0, -5}, mgl32.Vec3{0, 0, 1})
	require.True(t, ok)

	assert.Greater(t, front.Normal.Z(), float32(0))
	assert.Less(t, back.Normal.Z(), float32(0))
}

func TestRaycastReturnsNearestHit(t *testing.T) {
	verts := unitQuadAtZ(-2)
	verts = append(verts, unitQuadAtZ(-6)...)
	mesh, err := NewTriangleMesh(verts)
	require.NoError(t, err)

	hit, ok := mesh.Raycast(mgl32.Vec3{0, 0, 0}, mgl32.Vec3{0, 0, -1})
	require.True(t, ok)
	assert.InDelta(t, 2, float64(hit.Distance), 1e-5)
}

func TestRaycastMiss(t *testing.T) {
	mesh, err := NewTriangleMesh(unitQuadAtZ(-3))
	require.NoError(t, err)

	// Away from the wall.
	_, ok := mesh.Raycast(mgl32.Vec3{0, 0, 0}, mgl32.Vec3{0, 0, 1})
	assert.False(t, ok)

	// Parallel to the wall plane.
	_, ok = mesh.Raycast(mgl32.Vec3{0, 0, 0}, mgl32.Vec3{1, 0, 0})
	assert.False(t, ok)

	// Past the wall's extent.
	_, ok = mesh.Raycast(mgl32.Vec3{5, 5, 0}, mgl32.Vec3{0, 0, -1})
	assert.False(t, ok)
}

func TestRaycastSkipsDegenerateTriangles(t *testing.T) {
	// One zero-area triangle followed by a real wall.
	verts := []mgl32.Vec3{
		{0, 0, -1}, {0, 0, -1}, {0, 0, -1},
	}
	verts = append(verts, unitQuadAtZ(-3)...)
	mesh, err := NewTriangleMesh(verts)
	require.NoError(t, err)

	hit, ok := mesh.Raycast(mgl32.Vec3{0, 0, 0}, mgl32.Vec3{0, 0, -1})
	require.True(t, ok)
	assert.InDelta(t, 3, float64(hit.Distance), 1e-5)
}

func TestLargeMeshParallelBuild(t *testing.T) {
	// Enough faces to span several precompute chunks.
	var verts []mgl32.Vec3
	for i := 0; i < 3000; i++ {
		z := -1 - float32(i)*0.01
		verts = append(verts, unitQuadAtZ(z)...)
	}
	mesh, err := NewTriangleMesh(verts, WithBuildWorkers(4))
	require.NoError(t, err)
	assert.Equal(t, 6000, mesh.TriangleCount())

	hit, ok := mesh.Raycast(mgl32.Vec3{0, 0, 0}, mgl32.Vec3{0, 0, -1})
	require.True(t, ok)
	assert.InDelta(t, 1, float64(hit.Distance), 1e-4)
}

func gridCorridor(t *testing.T) *TriangleMesh {
	t.Helper()
	var verts []mgl32.Vec3
	for i := 0; i < 100; i++ {
		verts = append(verts, unitQuadAtZ(-1-float32(i))...)
		verts = append(verts, unitQuadAtZ(1+float32(i))...)
	}
	mesh, err := NewTriangleMesh(verts)
	require.NoError(t, err)
	require.NotNil(t, mesh.grid, "mesh of this size must carry the grid index")
	return mesh
}

func TestGridTraversalMatchesLinearScan(t *testing.T) {
	mesh := gridCorridor(t)
	linear := &TriangleMesh{tris: mesh.tris}

	rays := []struct{ origin, direction mgl32.Vec3 }{
		{mgl32.Vec3{0, 0, 0}, mgl32.Vec3{0, 0, -1}},
		{mgl32.Vec3{0, 0, 0}, mgl32.Vec3{0, 0, 1}},
		{mgl32.Vec3{0.5, -0.5, -50.5}, mgl32.Vec3{0, 0, 1}},
		{mgl32.Vec3{0, 0, 200}, mgl32.Vec3{0, 0, -1}},
		{mgl32.Vec3{5, 5, 0}, mgl32.Vec3{0, 0, -1}}, // misses every quad
	}
	for _, ray := range rays {
		gridHit, gridOK := mesh.Raycast(ray.origin, ray.direction)
		linHit, linOK := linear.Raycast(ray.origin, ray.direction)
		require.Equal(t, linOK, gridOK)
		if linOK {
			assert.InDelta(t, float64(linHit.Distance), float64(gridHit.Distance), 1e-5)
			assert.Equal(t, linHit.Normal, gridHit.Normal)
		}
	}
}

func TestGridRayStartingOutsideBounds(t *testing.T) {
	mesh := gridCorridor(t)

	hit, ok := mesh.Raycast(mgl32.Vec3{0, 0, 500}, mgl32.Vec3{0, 0, -1})
	require.True(t, ok)
	assert.InDelta(t, 400, float64(hit.Distance), 1e-3)

	_, ok = mesh.Raycast(mgl32.Vec3{50, 0, 0}, mgl32.Vec3{1, 0, 0})
	assert.False(t, ok, "ray pointing away from the bounds must miss")
}

func TestWithoutGridForcesLinearScan(t *testing.T) {
	var verts []mgl32.Vec3
	for i := 0; i < 100; i++ {
		verts = append(verts, unitQuadAtZ(-1-float32(i))...)
	}
	mesh, err := NewTriangleMesh(verts, WithoutGrid())
	require.NoError(t, err)
	assert.Nil(t, mesh.grid)

	hit, ok := mesh.Raycast(mgl32.Vec3{0, 0, 0}, mgl32.Vec3{0, 0, -1})
	require.True(t, ok)
	assert.InDelta(t, 1, float64(hit.Distance), 1e-5)
}

func TestStaticProvider(t *testing.T) {
	mesh, err := NewTriangleMesh(unitQuadAtZ(-1))
	require.NoError(t, err)

	geom, ok := NewStaticProvider(mesh).TryGetCollisionGeometry()
	assert.True(t, ok)
	assert.Equal(t, Geometry(mesh), geom)

	_, ok = NewStaticProvider(nil).TryGetCollisionGeometry()
	assert.False(t, ok)
}

func TestAsyncProviderPublishesAfterLoad(t *testing.T) {
	release := make(chan struct{})
	p := NewAsyncProvider(func() (Geometry, error) {
		<-release
		return NewTriangleMesh(unitQuadAtZ(-1))
	}, nil)

	_, ok := p.TryGetCollisionGeometry()
	assert.False(t, ok, "geometry must be absent while loading")

	close(release)
	assert.Eventually(t, func() bool {
		_, ok := p.TryGetCollisionGeometry()
		return ok
	}, time.Second, time.Millisecond)
}

func TestAsyncProviderSwallowsLoadFailure(t *testing.T) {
	p := NewAsyncProvider(func() (Geometry, error) {
		return nil, errors.New("corrupt mesh file")
	}, nil)

	assert.Never(t, func() bool {
		_, ok := p.TryGetCollisionGeometry()
		return ok
	}, 50*time.Millisecond, 5*time.Millisecond)
}
