package geometry

import (
	"encoding/base64"
	"encoding/binary"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// encodeGeometryBuffer packs vec3 positions followed by uint16 indices into a
// little-endian buffer and returns it with the byte offset of the index block.
func encodeGeometryBuffer(positions []mgl32.Vec3, indices []uint16) ([]byte, int) {
	buf := make([]byte, len(positions)*12+len(indices)*2)
	for i, p := range positions {
		for c := 0; c < 3; c++ {
			binary.LittleEndian.PutUint32(buf[i*12+c*4:], math.Float32bits(p[c]))
		}
	}
	indexOffset := len(positions) * 12
	for i, idx := range indices {
		binary.LittleEndian.PutUint16(buf[indexOffset+i*2:], idx)
	}
	return buf, indexOffset
}

func writeMeshFile(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "scene.gltf")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
	return path
}

func TestLoadCollisionMeshIndexedQuad(t *testing.T) {
	positions := []mgl32.Vec3{
		{-1, -1, 0},
		{1, -1, 0},
		{1, 1, 0},
		{-1, 1, 0},
	}
	buf, indexOffset := encodeGeometryBuffer(positions, []uint16{0, 1, 2, 0, 2, 3})

	doc := fmt.Sprintf(`{
  "asset": {"version": "2.0"},
  "scene": 0,
  "scenes": [{"nodes": [0]}],
  "nodes": [{"mesh": 0, "translation": [0, 0, -3]}],
  "meshes": [{"primitives": [{"attributes": {"POSITION": 0}, "indices": 1}]}],
  "accessors": [
    {"bufferView": 0, "componentType": 5126, "count": 4, "type": "VEC3"},
    {"bufferView": 1, "componentType": 5123, "count": 6, "type": "SCALAR"}
  ],
  "bufferViews": [
    {"buffer": 0, "byteOffset": 0, "byteLength": %d},
    {"buffer": 0, "byteOffset": %d, "byteLength": %d}
  ],
  "buffers": [{"uri": "data:application/octet-stream;base64,%s", "byteLength": %d}]
}`, indexOffset, indexOffset, len(buf)-indexOffset, base64.StdEncoding.EncodeToString(buf), len(buf))

	mesh, err := LoadCollisionMesh(writeMeshFile(t, doc))
	require.NoError(t, err)
	assert.Equal(t, 2, mesh.TriangleCount())

	// The node translation moves the quad to z = -3.
	hit, ok := mesh.Raycast(mgl32.Vec3{0, 0, 0}, mgl32.Vec3{0, 0, -1})
	require.True(t, ok)
	assert.InDelta(t, 3, float64(hit.Distance), 1e-5)
}

func TestLoadCollisionMeshExternalBuffer(t *testing.T) {
	positions := []mgl32.Vec3{
		{0, 0, -2}, {1, 0, -2}, {0, 1, -2},
	}
	buf, _ := encodeGeometryBuffer(positions, nil)

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "scene.bin"), buf, 0o644))

	doc := fmt.Sprintf(`{
  "asset": {"version": "2.0"},
  "scenes": [{"nodes": [0]}],
  "nodes": [{"mesh": 0}],
  "meshes": [{"primitives": [{"attributes": {"POSITION": 0}}]}],
  "accessors": [{"bufferView": 0, "componentType": 5126, "count": 3, "type": "VEC3"}],
  "bufferViews": [{"buffer": 0, "byteOffset": 0, "byteLength": %d}],
  "buffers": [{"uri": "scene.bin", "byteLength": %d}]
}`, len(buf), len(buf))
	path := filepath.Join(dir, "scene.gltf")
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))

	mesh, err := LoadCollisionMesh(path)
	require.NoError(t, err)
	assert.Equal(t, 1, mesh.TriangleCount())
}

func TestLoadCollisionMeshRejectsWrongVersion(t *testing.T) {
	_, err := LoadCollisionMesh(writeMeshFile(t, `{"asset": {"version": "1.0"}}`))
	require.Error(t, err)
	assert.ErrorIs(t, err, errUnsupportedVersion)
}

func TestLoadCollisionMeshEmptyScene(t *testing.T) {
	_, err := LoadCollisionMesh(writeMeshFile(t, `{"asset": {"version": "2.0"}}`))
	require.Error(t, err)
	assert.ErrorIs(t, err, errNoTriangles)
}

func TestLoadCollisionMeshMissingFile(t *testing.T) {
	_, err := LoadCollisionMesh(filepath.Join(t.TempDir(), "absent.glb"))
	assert.Error(t, err)
}
