package asset

import (
	"fmt"

	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"

	"github.com/wtvr-engine/wtvr3d/common"
	"github.com/wtvr-engine/wtvr3d/engine/uniform"
)

// ImportGLTF reads a glTF or GLB file and converts every mesh primitive
// into a MeshFile ready for registration. Positions are required; normals
// and texture coordinates are included when the primitive carries them.
// Primitive ids are "<mesh name>/<primitive index>", or "<file index>" for
// unnamed meshes.
//
// Parameters:
//   - path: the .gltf or .glb file path
//
// Returns:
//   - []*MeshFile: one mesh file per primitive, in document order
//   - error: parse or accessor read failure
func ImportGLTF(path string) ([]*MeshFile, error) {
	doc, err := gltf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening gltf %q: %w", path, err)
	}
	return importDocument(doc)
}

func importDocument(doc *gltf.Document) ([]*MeshFile, error) {
	var files []*MeshFile
	for meshIndex, m := range doc.Meshes {
		name := m.Name
		if name == "" {
			name = fmt.Sprintf("%d", meshIndex)
		}
		for primIndex, prim := range m.Primitives {
			file, err := importPrimitive(doc, prim, fmt.Sprintf("%s/%d", name, primIndex))
			if err != nil {
				return nil, err
			}
			files = append(files, file)
		}
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("gltf document contains no mesh primitives")
	}
	return files, nil
}

func importPrimitive(doc *gltf.Document, prim *gltf.Primitive, id string) (*MeshFile, error) {
	file := &MeshFile{ID: id}

	posIndex, ok := prim.Attributes[gltf.POSITION]
	if !ok {
		return nil, fmt.Errorf("primitive %q has no position attribute", id)
	}
	positions, err := modeler.ReadPosition(doc, doc.Accessors[posIndex], nil)
	if err != nil {
		return nil, fmt.Errorf("primitive %q: reading positions: %w", id, err)
	}
	file.Buffers = append(file.Buffers, FileBuffer{
		Name:     common.VertexBufferName,
		DataType: uniform.Vector3,
		Data:     flatten3(positions),
	})

	if normalIndex, ok := prim.Attributes[gltf.NORMAL]; ok {
		normals, err := modeler.ReadNormal(doc, doc.Accessors[normalIndex], nil)
		if err != nil {
			return nil, fmt.Errorf("primitive %q: reading normals: %w", id, err)
		}
		file.Buffers = append(file.Buffers, FileBuffer{
			Name:     common.NormalBufferName,
			DataType: uniform.Vector3,
			Data:     flatten3(normals),
		})
	}

	if texIndex, ok := prim.Attributes[gltf.TEXCOORD_0]; ok {
		texCoords, err := modeler.ReadTextureCoord(doc, doc.Accessors[texIndex], nil)
		if err != nil {
			return nil, fmt.Errorf("primitive %q: reading texture coordinates: %w", id, err)
		}
		file.Buffers = append(file.Buffers, FileBuffer{
			Name:     common.UVBufferName,
			DataType: uniform.Vector2,
			Data:     flatten2(texCoords),
		})
	}

	if prim.Indices != nil {
		indices, err := modeler.ReadIndices(doc, doc.Accessors[*prim.Indices], nil)
		if err != nil {
			return nil, fmt.Errorf("primitive %q: reading indices: %w", id, err)
		}
		if len(indices)%3 != 0 {
			return nil, fmt.Errorf("primitive %q: index count %d is not a triangle list", id, len(indices))
		}
		file.Triangles = make([]Triangle, 0, len(indices)/3)
		for i := 0; i+2 < len(indices); i += 3 {
			file.Triangles = append(file.Triangles, Triangle{indices[i], indices[i+1], indices[i+2]})
		}
	}

	return file, nil
}

func flatten3(vs [][3]float32) []float32 {
	flat := make([]float32, 0, len(vs)*3)
	for _, v := range vs {
		flat = append(flat, v[0], v[1], v[2])
	}
	return flat
}

func flatten2(vs [][2]float32) []float32 {
	flat := make([]float32, 0, len(vs)*2)
	for _, v := range vs {
		flat = append(flat, v[0], v[1])
	}
	return flat
}
