// Package loaders reads external geometry formats into shapes usable by the
// rendering subsystems, e.g. as sensor ray targets.
package loaders

import (
	"fmt"
	"math"

	"github.com/qmuntal/gltf"

	"github.com/leroyvn/mitsuba2/pkg/core"
	"github.com/leroyvn/mitsuba2/pkg/geometry"
)

// LoadGLTF loads a glTF or GLB file and merges all triangle primitives into
// a single TriangleMesh. Materials, textures and animations are ignored;
// only the geometry matters here.
func LoadGLTF(path string) (*geometry.TriangleMesh, error) {
	doc, err := gltf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open gltf: %w", err)
	}
	return MeshFromDocument(doc)
}

// MeshFromDocument builds a TriangleMesh from an in-memory glTF document
func MeshFromDocument(doc *gltf.Document) (*geometry.TriangleMesh, error) {
	var vertices []core.Vec3
	var indices []int

	for _, m := range doc.Meshes {
		for _, prim := range m.Primitives {
			if prim.Mode != gltf.PrimitiveTriangles {
				continue // Skip lines, points, strips
			}

			posIdx, ok := prim.Attributes[gltf.POSITION]
			if !ok {
				continue
			}

			positions, err := readVec3Accessor(doc, posIdx)
			if err != nil {
				return nil, fmt.Errorf("mesh %q: read positions: %w", m.Name, err)
			}

			baseVertex := len(vertices)
			vertices = append(vertices, positions...)

			if prim.Indices != nil {
				primIndices, err := readIndexAccessor(doc, *prim.Indices)
				if err != nil {
					return nil, fmt.Errorf("mesh %q: read indices: %w", m.Name, err)
				}
				for _, idx := range primIndices {
					indices = append(indices, baseVertex+idx)
				}
			} else {
				// No index buffer: sequential triangles
				for i := range positions {
					indices = append(indices, baseVertex+i)
				}
			}
		}
	}

	if len(indices) == 0 {
		return nil, fmt.Errorf("document contains no triangle geometry")
	}

	return geometry.NewTriangleMesh(vertices, indices), nil
}

// accessorBytes resolves an accessor to its backing byte slice, element
// stride and count
func accessorBytes(doc *gltf.Document, accessor *gltf.Accessor, elementSize int) ([]byte, int, int, error) {
	if accessor.BufferView == nil {
		return nil, 0, 0, fmt.Errorf("accessor has no buffer view")
	}

	bufferView := doc.BufferViews[*accessor.BufferView]
	buffer := doc.Buffers[bufferView.Buffer]
	if buffer.Data == nil {
		return nil, 0, 0, fmt.Errorf("buffer %d has no data (external buffers are not supported)", bufferView.Buffer)
	}

	stride := bufferView.ByteStride
	if stride == 0 {
		stride = elementSize
	}

	start := bufferView.ByteOffset + accessor.ByteOffset
	end := start + (accessor.Count-1)*stride + elementSize
	if end > len(buffer.Data) {
		return nil, 0, 0, fmt.Errorf("accessor exceeds buffer bounds")
	}

	return buffer.Data[start:], stride, accessor.Count, nil
}

// readVec3Accessor reads float VEC3 data from a glTF accessor
func readVec3Accessor(doc *gltf.Document, accessorIdx int) ([]core.Vec3, error) {
	accessor := doc.Accessors[accessorIdx]
	if accessor.Type != gltf.AccessorVec3 || accessor.ComponentType != gltf.ComponentFloat {
		return nil, fmt.Errorf("expected float VEC3, got %v/%v", accessor.Type, accessor.ComponentType)
	}

	data, stride, count, err := accessorBytes(doc, accessor, 12)
	if err != nil {
		return nil, err
	}

	result := make([]core.Vec3, count)
	for i := 0; i < count; i++ {
		offset := i * stride
		result[i] = core.NewVec3(
			float64(readFloat32(data[offset:])),
			float64(readFloat32(data[offset+4:])),
			float64(readFloat32(data[offset+8:])),
		)
	}
	return result, nil
}

// readIndexAccessor reads scalar index data (ubyte, ushort or uint)
func readIndexAccessor(doc *gltf.Document, accessorIdx int) ([]int, error) {
	accessor := doc.Accessors[accessorIdx]
	if accessor.Type != gltf.AccessorScalar {
		return nil, fmt.Errorf("expected SCALAR indices, got %v", accessor.Type)
	}

	var elementSize int
	switch accessor.ComponentType {
	case gltf.ComponentUbyte:
		elementSize = 1
	case gltf.ComponentUshort:
		elementSize = 2
	case gltf.ComponentUint:
		elementSize = 4
	default:
		return nil, fmt.Errorf("unsupported index component type: %v", accessor.ComponentType)
	}

	data, stride, count, err := accessorBytes(doc, accessor, elementSize)
	if err != nil {
		return nil, err
	}

	result := make([]int, count)
	for i := 0; i < count; i++ {
		offset := i * stride
		switch accessor.ComponentType {
		case gltf.ComponentUbyte:
			result[i] = int(data[offset])
		case gltf.ComponentUshort:
			result[i] = int(uint16(data[offset]) | uint16(data[offset+1])<<8)
		case gltf.ComponentUint:
			result[i] = int(uint32(data[offset]) | uint32(data[offset+1])<<8 |
				uint32(data[offset+2])<<16 | uint32(data[offset+3])<<24)
		}
	}
	return result, nil
}

// readFloat32 reads a little-endian float32
func readFloat32(b []byte) float32 {
	bits := uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16 | uint32(b[3])<<24
	return math.Float32frombits(bits)
}
