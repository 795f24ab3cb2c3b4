package geometry

import (
	"bytes"
	"encoding/base64"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-gl/mathgl/mgl32"
)

// Common errors returned by the collision mesh loader
var (
	errUnsupportedVersion = errors.New("unsupported glTF version: must be 2.x")
	errInvalidGLBMagic    = errors.New("invalid GLB magic number")
	errMissingJSONChunk   = errors.New("GLB file missing JSON chunk")
	errInvalidBufferURI   = errors.New("invalid buffer URI")
	errNoTriangles        = errors.New("document contains no triangle geometry")
)

// GLB container constants.
// Reference: https://registry.khronos.org/glTF/specs/2.0/glTF-2.0.html#glb-file-format-specification
const (
	glbMagic     = 0x46546C67 // "glTF"
	glbVersion   = 2
	glbChunkJSON = 0x4E4F534A // "JSON"
	glbChunkBIN  = 0x004E4942 // "BIN\0"
)

// glTF accessor component types and topology modes used for collision extraction.
const (
	componentUnsignedByte  = 5121
	componentUnsignedShort = 5123
	componentUnsignedInt   = 5125
	componentFloat         = 5126

	modeTriangles = 4
)

// collisionDocument is the subset of a glTF 2.0 document needed to extract
// static collision geometry: the node hierarchy for world transforms, mesh
// primitives for topology, and the accessor/bufferView/buffer chain for
// vertex data. Materials, textures, skins, and animations are ignored.
type collisionDocument struct {
	Asset struct {
		Version string `json:"version"`
	} `json:"asset"`
	Scene       *int             `json:"scene,omitempty"`
	Scenes      []collisionScene `json:"scenes,omitempty"`
	Nodes       []collisionNode  `json:"nodes,omitempty"`
	Meshes      []collisionMesh  `json:"meshes,omitempty"`
	Accessors   []accessor       `json:"accessors,omitempty"`
	BufferViews []bufferView     `json:"bufferViews,omitempty"`
	Buffers     []buffer         `json:"buffers,omitempty"`
}

type collisionScene struct {
	Nodes []int `json:"nodes,omitempty"`
}

type collisionNode struct {
	Children    []int        `json:"children,omitempty"`
	Mesh        *int         `json:"mesh,omitempty"`
	Matrix      *[16]float32 `json:"matrix,omitempty"`
	Translation *[3]float32  `json:"translation,omitempty"`
	Rotation    *[4]float32  `json:"rotation,omitempty"` // quaternion x, y, z, w
	Scale       *[3]float32  `json:"scale,omitempty"`
}

type collisionMesh struct {
	Primitives []primitive `json:"primitives"`
}

type primitive struct {
	Attributes map[string]int `json:"attributes"`
	Indices    *int           `json:"indices,omitempty"`
	Mode       *int           `json:"mode,omitempty"` // default 4 (TRIANGLES)
}

type accessor struct {
	BufferView    *int   `json:"bufferView,omitempty"`
	ByteOffset    int    `json:"byteOffset,omitempty"`
	ComponentType int    `json:"componentType"`
	Count         int    `json:"count"`
	Type          string `json:"type"`
}

type bufferView struct {
	Buffer     int  `json:"buffer"`
	ByteOffset int  `json:"byteOffset,omitempty"`
	ByteLength int  `json:"byteLength"`
	ByteStride *int `json:"byteStride,omitempty"`
}

type buffer struct {
	URI        string `json:"uri,omitempty"`
	ByteLength int    `json:"byteLength"`

	data []byte
}

// LoadCollisionMesh reads a glTF or GLB file and builds collision geometry
// from every triangle primitive it contains, with node transforms applied.
// Format detection is automatic: GLB by magic number, JSON otherwise.
//
// Parameters:
//   - path: path to the .gltf or .glb file
//   - options: functional options forwarded to TriangleMesh construction
//
// Returns:
//   - *TriangleMesh: the collision mesh in world space
//   - error: error if the file cannot be read, decoded, or holds no triangles
func LoadCollisionMesh(path string, options ...MeshOption) (*TriangleMesh, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read mesh file: %w", err)
	}

	doc, err := parseCollisionDocument(data, filepath.Dir(path))
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	verts, err := doc.triangleSoup()
	if err != nil {
		return nil, fmt.Errorf("failed to extract collision geometry from %s: %w", path, err)
	}

	return NewTriangleMesh(verts, options...)
}

// parseCollisionDocument decodes a glTF JSON or GLB payload and resolves all
// buffer data (external files relative to baseDir, data URIs, or the GLB
// binary chunk).
func parseCollisionDocument(data []byte, baseDir string) (*collisionDocument, error) {
	var jsonData, binChunk []byte

	if len(data) >= 4 && binary.LittleEndian.Uint32(data[:4]) == glbMagic {
		var err error
		jsonData, binChunk, err = splitGLB(data)
		if err != nil {
			return nil, err
		}
	} else {
		jsonData = data
	}

	var doc collisionDocument
	if err := json.Unmarshal(jsonData, &doc); err != nil {
		return nil, fmt.Errorf("failed to decode glTF JSON: %w", err)
	}
	if !strings.HasPrefix(doc.Asset.Version, "2.") {
		return nil, errUnsupportedVersion
	}

	for i := range doc.Buffers {
		buf := &doc.Buffers[i]
		switch {
		case buf.URI == "" && i == 0 && binChunk != nil:
			buf.data = binChunk
		case buf.URI == "":
			return nil, fmt.Errorf("buffer %d has no URI and no GLB binary chunk", i)
		case strings.HasPrefix(buf.URI, "data:"):
			decoded, err := decodeDataURI(buf.URI)
			if err != nil {
				return nil, fmt.Errorf("buffer %d: %w", i, err)
			}
			buf.data = decoded
		default:
			external, err := os.ReadFile(filepath.Join(baseDir, buf.URI))
			if err != nil {
				return nil, fmt.Errorf("buffer %d: failed to load %q: %w", i, buf.URI, err)
			}
			buf.data = external
		}
		if len(buf.data) < buf.ByteLength {
			return nil, fmt.Errorf("buffer %d: size mismatch: have %d bytes, header says %d", i, len(buf.data), buf.ByteLength)
		}
	}

	return &doc, nil
}

// splitGLB separates a GLB container into its JSON and binary chunks.
func splitGLB(data []byte) (jsonData, binChunk []byte, err error) {
	r := bytes.NewReader(data)

	var header struct {
		Magic, Version, Length uint32
	}
	if err := binary.Read(r, binary.LittleEndian, &header); err != nil {
		return nil, nil, fmt.Errorf("failed to read GLB header: %w", err)
	}
	if header.Magic != glbMagic {
		return nil, nil, errInvalidGLBMagic
	}
	if header.Version != glbVersion {
		return nil, nil, fmt.Errorf("unsupported GLB version %d: must be %d", header.Version, glbVersion)
	}

	for {
		var chunk struct {
			Length, Type uint32
		}
		if err := binary.Read(r, binary.LittleEndian, &chunk); err != nil {
			if err == io.EOF {
				break
			}
			return nil, nil, fmt.Errorf("failed to read chunk header: %w", err)
		}
		payload := make([]byte, chunk.Length)
		if _, err := io.ReadFull(r, payload); err != nil {
			return nil, nil, fmt.Errorf("failed to read chunk data: %w", err)
		}
		switch chunk.Type {
		case glbChunkJSON:
			jsonData = payload
		case glbChunkBIN:
			binChunk = payload
		}
	}

	if jsonData == nil {
		return nil, nil, errMissingJSONChunk
	}
	return jsonData, binChunk, nil
}

// decodeDataURI decodes a base64 data URI.
// Format: data:[<mediatype>][;base64],<data>
func decodeDataURI(uri string) ([]byte, error) {
	commaIdx := strings.Index(uri, ",")
	if commaIdx < 0 {
		return nil, errInvalidBufferURI
	}
	if !strings.Contains(uri[5:commaIdx], "base64") {
		return nil, fmt.Errorf("unsupported data URI encoding: %s", uri[5:commaIdx])
	}
	decoded, err := base64.StdEncoding.DecodeString(uri[commaIdx+1:])
	if err != nil {
		return nil, fmt.Errorf("failed to decode base64 buffer: %w", err)
	}
	return decoded, nil
}

// triangleSoup walks the scene graph and flattens every triangle primitive
// into a world-space triangle soup. Non-triangle topologies (points, lines,
// strips, fans) are skipped.
func (d *collisionDocument) triangleSoup() ([]mgl32.Vec3, error) {
	roots := d.rootNodes()

	var verts []mgl32.Vec3
	var walk func(nodeIndex int, parent mgl32.Mat4) error
	walk = func(nodeIndex int, parent mgl32.Mat4) error {
		if nodeIndex < 0 || nodeIndex >= len(d.Nodes) {
			return fmt.Errorf("node index %d out of range", nodeIndex)
		}
		node := &d.Nodes[nodeIndex]
		world := parent.Mul4(node.localTransform())

		if node.Mesh != nil {
			if *node.Mesh < 0 || *node.Mesh >= len(d.Meshes) {
				return fmt.Errorf("mesh index %d out of range", *node.Mesh)
			}
			for _, prim := range d.Meshes[*node.Mesh].Primitives {
				appended, err := d.appendPrimitive(verts, &prim, world)
				if err != nil {
					return err
				}
				verts = appended
			}
		}

		for _, child := range node.Children {
			if err := walk(child, world); err != nil {
				return err
			}
		}
		return nil
	}

	for _, root := range roots {
		if err := walk(root, mgl32.Ident4()); err != nil {
			return nil, err
		}
	}

	if len(verts) == 0 {
		return nil, errNoTriangles
	}
	return verts, nil
}

// rootNodes returns the default scene's roots, falling back to the first
// scene, then to every node when the document declares no scenes at all.
func (d *collisionDocument) rootNodes() []int {
	sceneIndex := 0
	if d.Scene != nil {
		sceneIndex = *d.Scene
	}
	if sceneIndex >= 0 && sceneIndex < len(d.Scenes) {
		return d.Scenes[sceneIndex].Nodes
	}

	all := make([]int, len(d.Nodes))
	for i := range all {
		all[i] = i
	}
	return all
}

// appendPrimitive transforms one triangle primitive into world space and
// appends its faces to the soup. Indexed primitives are expanded.
func (d *collisionDocument) appendPrimitive(verts []mgl32.Vec3, prim *primitive, world mgl32.Mat4) ([]mgl32.Vec3, error) {
	if prim.Mode != nil && *prim.Mode != modeTriangles {
		return verts, nil
	}
	posAccessor, ok := prim.Attributes["POSITION"]
	if !ok {
		return verts, nil
	}

	positions, err := d.readVec3Accessor(posAccessor)
	if err != nil {
		return nil, fmt.Errorf("POSITION accessor: %w", err)
	}
	for i, p := range positions {
		v := world.Mul4x1(mgl32.Vec4{p.X(), p.Y(), p.Z(), 1})
		positions[i] = v.Vec3()
	}

	if prim.Indices == nil {
		if len(positions)%3 != 0 {
			return nil, fmt.Errorf("non-indexed primitive has %d vertices, not a multiple of 3", len(positions))
		}
		return append(verts, positions...), nil
	}

	indices, err := d.readIndexAccessor(*prim.Indices)
	if err != nil {
		return nil, fmt.Errorf("index accessor: %w", err)
	}
	if len(indices)%3 != 0 {
		return nil, fmt.Errorf("primitive has %d indices, not a multiple of 3", len(indices))
	}
	for _, idx := range indices {
		if int(idx) >= len(positions) {
			return nil, fmt.Errorf("index %d out of range for %d vertices", idx, len(positions))
		}
		verts = append(verts, positions[idx])
	}
	return verts, nil
}

// localTransform returns the node's local transform: the explicit matrix when
// present, otherwise composed from translation, rotation, and scale.
func (n *collisionNode) localTransform() mgl32.Mat4 {
	if n.Matrix != nil {
		var m mgl32.Mat4
		copy(m[:], n.Matrix[:])
		return m
	}

	out := mgl32.Ident4()
	if n.Translation != nil {
		out = out.Mul4(mgl32.Translate3D(n.Translation[0], n.Translation[1], n.Translation[2]))
	}
	if n.Rotation != nil {
		q := mgl32.Quat{
			W: n.Rotation[3],
			V: mgl32.Vec3{n.Rotation[0], n.Rotation[1], n.Rotation[2]},
		}
		out = out.Mul4(q.Normalize().Mat4())
	}
	if n.Scale != nil {
		out = out.Mul4(mgl32.Scale3D(n.Scale[0], n.Scale[1], n.Scale[2]))
	}
	return out
}

// readVec3Accessor reads an accessor as VEC3 FLOAT data.
func (d *collisionDocument) readVec3Accessor(index int) ([]mgl32.Vec3, error) {
	acc, data, stride, err := d.accessorData(index)
	if err != nil {
		return nil, err
	}
	if acc.Type != "VEC3" || acc.ComponentType != componentFloat {
		return nil, fmt.Errorf("accessor %d is not VEC3 FLOAT: type=%s componentType=%d", index, acc.Type, acc.ComponentType)
	}

	out := make([]mgl32.Vec3, acc.Count)
	for i := 0; i < acc.Count; i++ {
		base := i * stride
		out[i] = mgl32.Vec3{
			math.Float32frombits(binary.LittleEndian.Uint32(data[base:])),
			math.Float32frombits(binary.LittleEndian.Uint32(data[base+4:])),
			math.Float32frombits(binary.LittleEndian.Uint32(data[base+8:])),
		}
	}
	return out, nil
}

// readIndexAccessor reads an accessor as index data, widening unsigned byte
// and short components to uint32.
func (d *collisionDocument) readIndexAccessor(index int) ([]uint32, error) {
	acc, data, stride, err := d.accessorData(index)
	if err != nil {
		return nil, err
	}
	if acc.Type != "SCALAR" {
		return nil, fmt.Errorf("index accessor %d is not SCALAR: type=%s", index, acc.Type)
	}

	out := make([]uint32, acc.Count)
	for i := 0; i < acc.Count; i++ {
		base := i * stride
		switch acc.ComponentType {
		case componentUnsignedByte:
			out[i] = uint32(data[base])
		case componentUnsignedShort:
			out[i] = uint32(binary.LittleEndian.Uint16(data[base:]))
		case componentUnsignedInt:
			out[i] = binary.LittleEndian.Uint32(data[base:])
		default:
			return nil, fmt.Errorf("unsupported index component type: %d", acc.ComponentType)
		}
	}
	return out, nil
}

// accessorData resolves an accessor to its backing bytes and element stride.
func (d *collisionDocument) accessorData(index int) (*accessor, []byte, int, error) {
	if index < 0 || index >= len(d.Accessors) {
		return nil, nil, 0, fmt.Errorf("accessor index %d out of range", index)
	}
	acc := &d.Accessors[index]
	if acc.BufferView == nil {
		return nil, nil, 0, fmt.Errorf("accessor %d has no bufferView", index)
	}
	if *acc.BufferView < 0 || *acc.BufferView >= len(d.BufferViews) {
		return nil, nil, 0, fmt.Errorf("bufferView index %d out of range", *acc.BufferView)
	}
	bv := &d.BufferViews[*acc.BufferView]
	if bv.Buffer < 0 || bv.Buffer >= len(d.Buffers) {
		return nil, nil, 0, fmt.Errorf("buffer index %d out of range", bv.Buffer)
	}

	elementSize := componentSize(acc.ComponentType) * componentCount(acc.Type)
	if elementSize == 0 {
		return nil, nil, 0, fmt.Errorf("accessor %d has unsupported layout: type=%s componentType=%d", index, acc.Type, acc.ComponentType)
	}
	stride := elementSize
	if bv.ByteStride != nil && *bv.ByteStride > 0 {
		stride = *bv.ByteStride
	}

	start := bv.ByteOffset + acc.ByteOffset
	data := d.Buffers[bv.Buffer].data
	if start > len(data) {
		return nil, nil, 0, fmt.Errorf("accessor %d starts past the end of its buffer", index)
	}
	if acc.Count > 0 {
		if need := start + (acc.Count-1)*stride + elementSize; need > len(data) {
			return nil, nil, 0, fmt.Errorf("accessor %d overruns buffer: need %d bytes, have %d", index, need, len(data))
		}
	}
	return acc, data[start:], stride, nil
}

// componentSize returns the byte size of a component type.
func componentSize(componentType int) int {
	switch componentType {
	case componentUnsignedByte:
		return 1
	case componentUnsignedShort:
		return 2
	case componentUnsignedInt, componentFloat:
		return 4
	default:
		return 0
	}
}

// componentCount returns the number of components for an accessor type.
func componentCount(accessorType string) int {
	switch accessorType {
	case "SCALAR":
		return 1
	case "VEC2":
		return 2
	case "VEC3":
		return 3
	case "VEC4":
		return 4
	default:
		return 0
	}
}
