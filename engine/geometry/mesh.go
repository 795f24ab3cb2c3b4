package geometry

import (
	"fmt"
	"math"
	"runtime"
	"sync"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"
	"github.com/go-gl/mathgl/mgl32"
)

const (
	// rayEpsilon rejects near-parallel ray/triangle pairs and grazing hits.
	rayEpsilon = 1e-7

	// degenerateArea is the squared-length threshold below which a face
	// normal is considered zero and the triangle is skipped during raycasts.
	degenerateArea = 1e-12

	// gridMinTriangles is the face count below which the uniform grid is not
	// worth its memory and a linear scan is used instead.
	gridMinTriangles = 128

	// gridMaxCellsPerAxis caps the grid resolution.
	gridMaxCellsPerAxis = 64
)

// triangle holds precomputed intersection data for one face.
type triangle struct {
	a          mgl32.Vec3 // first vertex
	e1, e2     mgl32.Vec3 // edges from a
	normal     mgl32.Vec3 // unit face normal
	degenerate bool
}

// TriangleMesh is static collision geometry backed by a triangle soup.
// Per-face intersection data (edges, normals) is precomputed at construction,
// in parallel across a worker pool for large meshes. Meshes above a size
// threshold additionally get a uniform spatial grid so raycasts traverse
// cells instead of scanning every face. The mesh is immutable after
// construction and therefore safe for concurrent raycasts.
type TriangleMesh struct {
	tris []triangle
	grid *uniformGrid
}

var _ Geometry = &TriangleMesh{}

// meshBuilder holds construction parameters for a TriangleMesh.
type meshBuilder struct {
	workers   int
	chunkSize int
	noGrid    bool
}

// MeshOption is a functional option for configuring TriangleMesh construction.
type MeshOption func(*meshBuilder)

// WithBuildWorkers sets the number of workers used to precompute face data.
// Values <= 0 fall back to the default (NumCPU - 1, minimum 1).
//
// Parameters:
//   - workers: worker count for the precompute pool
//
// Returns:
//   - MeshOption: functional option to set the worker count
func WithBuildWorkers(workers int) MeshOption {
	return func(b *meshBuilder) {
		if workers > 0 {
			b.workers = workers
		}
	}
}

// WithoutGrid disables the uniform grid index, forcing linear raycasts.
//
// Returns:
//   - MeshOption: functional option to disable the grid
func WithoutGrid() MeshOption {
	return func(b *meshBuilder) {
		b.noGrid = true
	}
}

// NewTriangleMesh builds collision geometry from a triangle soup.
// The vertex slice is consumed three vertices per face, in order.
//
// Parameters:
//   - vertices: triangle soup (length must be a non-zero multiple of 3)
//   - options: functional options for construction tuning
//
// Returns:
//   - *TriangleMesh: the constructed mesh
//   - error: error if the vertex slice is empty or not a multiple of 3
func NewTriangleMesh(vertices []mgl32.Vec3, options ...MeshOption) (*TriangleMesh, error) {
	if len(vertices) == 0 {
		return nil, fmt.Errorf("triangle mesh requires at least one face")
	}
	if len(vertices)%3 != 0 {
		return nil, fmt.Errorf("triangle mesh vertex count must be a multiple of 3, got %d", len(vertices))
	}

	b := &meshBuilder{
		workers:   max(runtime.NumCPU()-1, 1),
		chunkSize: 1024,
	}
	for _, option := range options {
		option(b)
	}

	m := &TriangleMesh{
		tris: make([]triangle, len(vertices)/3),
	}

	// Precompute edges and normals in parallel. Each task owns a disjoint
	// chunk of the face slice so no synchronization is needed beyond the
	// completion barrier.
	pool := worker.NewDynamicWorkerPool(b.workers, max(len(m.tris)/b.chunkSize+1, 16), time.Second)
	var wg sync.WaitGroup
	taskID := 0
	for start := 0; start < len(m.tris); start += b.chunkSize {
		end := min(start+b.chunkSize, len(m.tris))
		wg.Add(1)
		lo, hi := start, end
		id := taskID
		taskID++
		pool.SubmitTask(worker.Task{
			ID: id,
			Do: func() (any, error) {
				defer wg.Done()
				for i := lo; i < hi; i++ {
					a := vertices[i*3]
					e1 := vertices[i*3+1].Sub(a)
					e2 := vertices[i*3+2].Sub(a)
					n := e1.Cross(e2)
					t := triangle{a: a, e1: e1, e2: e2}
					if n.LenSqr() < degenerateArea {
						t.degenerate = true
					} else {
						t.normal = n.Normalize()
					}
					m.tris[i] = t
				}
				return nil, nil
			},
		})
	}
	wg.Wait()

	if !b.noGrid && len(m.tris) >= gridMinTriangles {
		m.grid = buildUniformGrid(m.tris)
	}

	return m, nil
}

// TriangleCount returns the number of faces in the mesh, including degenerate
// faces that are skipped during raycasts.
//
// Returns:
//   - int: face count
func (m *TriangleMesh) TriangleCount() int {
	return len(m.tris)
}

// Raycast intersects the ray with the mesh and returns the nearest hit.
// Large meshes walk the uniform grid; small meshes scan every face. The
// returned normal is flipped when necessary so it always faces the ray origin.
func (m *TriangleMesh) Raycast(origin, direction mgl32.Vec3) (Hit, bool) {
	bestDist := float32(math.MaxFloat32)
	bestIdx := -1

	if m.grid != nil {
		bestDist, bestIdx = m.grid.traverse(m, origin, direction)
	} else {
		for i := range m.tris {
			if dist, ok := m.intersect(i, origin, direction); ok && dist < bestDist {
				bestDist = dist
				bestIdx = i
			}
		}
	}

	if bestIdx < 0 {
		return Hit{}, false
	}
	return m.hitAt(bestIdx, bestDist, origin, direction), true
}

// intersect runs the Moller-Trumbore test for one face and returns the hit
// distance along the ray.
func (m *TriangleMesh) intersect(index int, origin, direction mgl32.Vec3) (float32, bool) {
	t := &m.tris[index]
	if t.degenerate {
		return 0, false
	}

	p := direction.Cross(t.e2)
	det := t.e1.Dot(p)
	if det > -rayEpsilon && det < rayEpsilon {
		return 0, false // ray parallel to the face plane
	}
	invDet := 1 / det

	s := origin.Sub(t.a)
	u := s.Dot(p) * invDet
	if u < 0 || u > 1 {
		return 0, false
	}

	q := s.Cross(t.e1)
	v := direction.Dot(q) * invDet
	if v < 0 || u+v > 1 {
		return 0, false
	}

	dist := t.e2.Dot(q) * invDet
	if dist <= rayEpsilon {
		return 0, false
	}
	return dist, true
}

// hitAt materializes the Hit for a face, orienting the normal toward the ray
// origin.
func (m *TriangleMesh) hitAt(index int, dist float32, origin, direction mgl32.Vec3) Hit {
	normal := m.tris[index].normal
	if normal.Dot(direction) > 0 {
		normal = normal.Mul(-1)
	}
	return Hit{
		Distance: dist,
		Point:    origin.Add(direction.Mul(dist)),
		Normal:   normal,
	}
}

// uniformGrid is a fixed-resolution spatial index over the mesh's faces.
// Each cell lists the faces whose bounding box overlaps it; a face may appear
// in several cells, which is harmless because the intersection test is
// idempotent.
type uniformGrid struct {
	min      mgl32.Vec3
	cellSize mgl32.Vec3
	dims     [3]int
	cells    [][]int32
}

// buildUniformGrid bins every face into the cells its bounding box overlaps.
// Resolution scales with the cube root of the face count, capped per axis.
func buildUniformGrid(tris []triangle) *uniformGrid {
	lo := tris[0].a
	hi := tris[0].a
	for i := range tris {
		for _, v := range triangleVertices(&tris[i]) {
			lo = componentMin(lo, v)
			hi = componentMax(hi, v)
		}
	}

	res := min(max(int(math.Cbrt(float64(len(tris)))), 1), gridMaxCellsPerAxis)
	extent := hi.Sub(lo)

	g := &uniformGrid{min: lo}
	for axis := 0; axis < 3; axis++ {
		g.dims[axis] = res
		if extent[axis] <= 0 {
			// Flat along this axis (a wall, a floor): one cell suffices.
			g.dims[axis] = 1
			g.cellSize[axis] = 1
			continue
		}
		g.cellSize[axis] = extent[axis] / float32(res)
	}
	g.cells = make([][]int32, g.dims[0]*g.dims[1]*g.dims[2])

	for i := range tris {
		verts := triangleVertices(&tris[i])
		tLo := componentMin(componentMin(verts[0], verts[1]), verts[2])
		tHi := componentMax(componentMax(verts[0], verts[1]), verts[2])

		var cLo, cHi [3]int
		for axis := 0; axis < 3; axis++ {
			cLo[axis] = g.cellIndex(tLo[axis], axis)
			cHi[axis] = g.cellIndex(tHi[axis], axis)
		}
		for z := cLo[2]; z <= cHi[2]; z++ {
			for y := cLo[1]; y <= cHi[1]; y++ {
				for x := cLo[0]; x <= cHi[0]; x++ {
					idx := g.flatten(x, y, z)
					g.cells[idx] = append(g.cells[idx], int32(i))
				}
			}
		}
	}

	return g
}

// traverse walks the grid cells pierced by the ray in order (3D DDA) and
// returns the nearest face hit. Traversal stops as soon as a hit is known to
// precede every cell not yet visited.
func (g *uniformGrid) traverse(m *TriangleMesh, origin, direction mgl32.Vec3) (float32, int) {
	bestDist := float32(math.MaxFloat32)
	bestIdx := -1

	tEntry, tExit, ok := g.clipToBounds(origin, direction)
	if !ok {
		return bestDist, bestIdx
	}

	entry := origin.Add(direction.Mul(tEntry))
	var cell, step [3]int
	var tNext, tDelta [3]float32
	for axis := 0; axis < 3; axis++ {
		cell[axis] = g.cellIndex(entry[axis], axis)
		switch {
		case direction[axis] > 0:
			step[axis] = 1
			boundary := g.min[axis] + float32(cell[axis]+1)*g.cellSize[axis]
			tNext[axis] = tEntry + (boundary-entry[axis])/direction[axis]
			tDelta[axis] = g.cellSize[axis] / direction[axis]
		case direction[axis] < 0:
			step[axis] = -1
			boundary := g.min[axis] + float32(cell[axis])*g.cellSize[axis]
			tNext[axis] = tEntry + (boundary-entry[axis])/direction[axis]
			tDelta[axis] = -g.cellSize[axis] / direction[axis]
		default:
			tNext[axis] = float32(math.MaxFloat32)
			tDelta[axis] = float32(math.MaxFloat32)
		}
	}

	for {
		for _, ti := range g.cells[g.flatten(cell[0], cell[1], cell[2])] {
			if dist, hit := m.intersect(int(ti), origin, direction); hit && dist < bestDist {
				bestDist = dist
				bestIdx = int(ti)
			}
		}

		axis := 0
		if tNext[1] < tNext[axis] {
			axis = 1
		}
		if tNext[2] < tNext[axis] {
			axis = 2
		}

		// A hit before the current cell's exit cannot be beaten by any face
		// in a later cell.
		if bestIdx >= 0 && bestDist <= tNext[axis] {
			break
		}
		if tNext[axis] > tExit {
			break
		}

		cell[axis] += step[axis]
		if cell[axis] < 0 || cell[axis] >= g.dims[axis] {
			break
		}
		tNext[axis] += tDelta[axis]
	}

	return bestDist, bestIdx
}

// clipToBounds intersects the ray with the grid's bounding box (slab test)
// and returns the parametric entry and exit distances.
func (g *uniformGrid) clipToBounds(origin, direction mgl32.Vec3) (float32, float32, bool) {
	tEntry := float32(0)
	tExit := float32(math.MaxFloat32)

	for axis := 0; axis < 3; axis++ {
		lo := g.min[axis]
		hi := g.min[axis] + float32(g.dims[axis])*g.cellSize[axis]
		if direction[axis] == 0 {
			if origin[axis] < lo || origin[axis] > hi {
				return 0, 0, false
			}
			continue
		}
		t0 := (lo - origin[axis]) / direction[axis]
		t1 := (hi - origin[axis]) / direction[axis]
		if t0 > t1 {
			t0, t1 = t1, t0
		}
		tEntry = max(tEntry, t0)
		tExit = min(tExit, t1)
		if tEntry > tExit {
			return 0, 0, false
		}
	}
	return tEntry, tExit, true
}

// cellIndex maps a world coordinate to a cell index on one axis, clamped to
// the grid.
func (g *uniformGrid) cellIndex(v float32, axis int) int {
	idx := int((v - g.min[axis]) / g.cellSize[axis])
	return min(max(idx, 0), g.dims[axis]-1)
}

func (g *uniformGrid) flatten(x, y, z int) int {
	return (z*g.dims[1]+y)*g.dims[0] + x
}

func triangleVertices(t *triangle) [3]mgl32.Vec3 {
	return [3]mgl32.Vec3{t.a, t.a.Add(t.e1), t.a.Add(t.e2)}
}

func componentMin(a, b mgl32.Vec3) mgl32.Vec3 {
	return mgl32.Vec3{min(a[0], b[0]), min(a[1], b[1]), min(a[2], b[2])}
}

func componentMax(a, b mgl32.Vec3) mgl32.Vec3 {
	return mgl32.Vec3{max(a[0], b[0]), max(a[1], b[1]), max(a[2], b[2])}
}

// Quad appends the two triangles covering the quadrilateral a-b-c-d to dst
// and returns the extended slice. Vertices must be given in winding order
// around the quad perimeter.
//
// Parameters:
//   - dst: destination triangle soup (may be nil)
//   - a, b, c, d: quad corners in winding order
//
// Returns:
//   - []mgl32.Vec3: dst extended by six vertices
func Quad(dst []mgl32.Vec3, a, b, c, d mgl32.Vec3) []mgl32.Vec3 {
	return append(dst, a, b, c, a, c, d)
}
