// Package asset implements the binary asset file formats and the registry
// that owns every loaded material, material instance, mesh, and texture.
// Asset files are produced offline; at runtime they decode, upload their
// payloads to the GPU, and register under append-only integer indices.
package asset

import (
	"bytes"
	"encoding/gob"
	"fmt"
	"io"

	"github.com/wtvr-engine/wtvr3d/engine/uniform"
)

// FileBuffer is one named attribute stream of a serialized mesh: flat float
// data plus the shader data type of each element.
type FileBuffer struct {
	// Name is the vertex attribute the buffer feeds, e.g. "a_position".
	Name string

	// DataType is the per-element component shape.
	DataType uniform.ShaderDataType

	// Data is the flat float payload, indexed per vertex.
	Data []float32
}

// Triangle is one face as three vertex indices.
type Triangle [3]uint32

// MeshFile is the serialized form of a mesh: per-vertex attribute streams
// plus the triangle list indexing into them.
type MeshFile struct {
	// ID is the registry id the mesh registers under.
	ID string

	// Buffers are the attribute streams.
	Buffers []FileBuffer

	// Triangles is the face list. Empty means the streams are already laid
	// out as a flat triangle soup.
	Triangles []Triangle
}

// UniformFileValue is a serialized uniform value. Texture values reference
// a texture registered separately by id; everything else carries its float
// payload inline.
type UniformFileValue struct {
	// Name is the uniform name.
	Name string

	// Kind is the value variant.
	Kind uniform.ValueKind

	// Floats is the flat payload for non-texture kinds.
	Floats []float32

	// TextureID is the registry id of the referenced texture, for
	// KindTexture values.
	TextureID string
}

// MaterialFile is the serialized form of a shared material: the shader pair
// plus flags and initial shared uniforms.
type MaterialFile struct {
	// ID is the registry id the material registers under.
	ID string

	// VertexShader is the vertex shader source.
	VertexShader string

	// FragmentShader is the fragment shader source.
	FragmentShader string

	// Transparent marks the material semi-transparent.
	Transparent bool

	// Lit marks the material as consuming scene lights.
	Lit bool

	// Uniforms are the initial shared uniform values.
	Uniforms []UniformFileValue
}

// MaterialInstanceFile is the serialized form of a material instance: the
// parent material id plus the per-instance uniform overrides.
type MaterialInstanceFile struct {
	// ID is the registry id the instance registers under.
	ID string

	// ParentID is the registry id of the shared material. The parent must
	// be registered before the instance.
	ParentID string

	// Uniforms are the per-instance uniform values.
	Uniforms []UniformFileValue
}

// DecodeMeshFile decodes a serialized mesh.
//
// Parameters:
//   - r: the encoded stream
//
// Returns:
//   - *MeshFile: the decoded mesh file
//   - error: decode failure
func DecodeMeshFile(r io.Reader) (*MeshFile, error) {
	var file MeshFile
	if err := gob.NewDecoder(r).Decode(&file); err != nil {
		return nil, fmt.Errorf("decoding mesh file: %w", err)
	}
	return &file, nil
}

// DecodeMaterialFile decodes a serialized material.
//
// Parameters:
//   - r: the encoded stream
//
// Returns:
//   - *MaterialFile: the decoded material file
//   - error: decode failure
func DecodeMaterialFile(r io.Reader) (*MaterialFile, error) {
	var file MaterialFile
	if err := gob.NewDecoder(r).Decode(&file); err != nil {
		return nil, fmt.Errorf("decoding material file: %w", err)
	}
	return &file, nil
}

// DecodeMaterialInstanceFile decodes a serialized material instance.
//
// Parameters:
//   - r: the encoded stream
//
// Returns:
//   - *MaterialInstanceFile: the decoded instance file
//   - error: decode failure
func DecodeMaterialInstanceFile(r io.Reader) (*MaterialInstanceFile, error) {
	var file MaterialInstanceFile
	if err := gob.NewDecoder(r).Decode(&file); err != nil {
		return nil, fmt.Errorf("decoding material instance file: %w", err)
	}
	return &file, nil
}

// Encode serializes the mesh file.
func (f *MeshFile) Encode(w io.Writer) error {
	return gob.NewEncoder(w).Encode(f)
}

// Encode serializes the material file.
func (f *MaterialFile) Encode(w io.Writer) error {
	return gob.NewEncoder(w).Encode(f)
}

// Encode serializes the material instance file.
func (f *MaterialInstanceFile) Encode(w io.Writer) error {
	return gob.NewEncoder(w).Encode(f)
}

// EncodeToBytes serializes the mesh file to a byte slice.
func (f *MeshFile) EncodeToBytes() ([]byte, error) {
	var buf bytes.Buffer
	if err := f.Encode(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// EncodeToBytes serializes the material file to a byte slice.
func (f *MaterialFile) EncodeToBytes() ([]byte, error) {
	var buf bytes.Buffer
	if err := f.Encode(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// EncodeToBytes serializes the material instance file to a byte slice.
func (f *MaterialInstanceFile) EncodeToBytes() ([]byte, error) {
	var buf bytes.Buffer
	if err := f.Encode(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Deindex expands the mesh's indexed attribute streams into a flat triangle
// soup: every triangle corner becomes its own vertex, in face order, and the
// triangle list is dropped. Meshes without triangles are returned unchanged.
//
// Returns:
//   - *MeshFile: the de-indexed mesh file
//   - error: error when an index points past the end of a stream
func (f *MeshFile) Deindex() (*MeshFile, error) {
	if len(f.Triangles) == 0 {
		return f, nil
	}
	out := &MeshFile{ID: f.ID, Buffers: make([]FileBuffer, len(f.Buffers))}
	for i, b := range f.Buffers {
		size := int(b.DataType.Size())
		elements := len(b.Data) / size
		flat := make([]float32, 0, len(f.Triangles)*3*size)
		for _, tri := range f.Triangles {
			for _, index := range tri {
				if int(index) >= elements {
					return nil, fmt.Errorf("mesh %q: index %d out of range for buffer %q (%d elements)", f.ID, index, b.Name, elements)
				}
				offset := int(index) * size
				flat = append(flat, b.Data[offset:offset+size]...)
			}
		}
		out.Buffers[i] = FileBuffer{Name: b.Name, DataType: b.DataType, Data: flat}
	}
	return out, nil
}

// VertexCount returns the number of vertices the mesh draws: three per
// triangle when indexed, the stream length otherwise.
func (f *MeshFile) VertexCount() int32 {
	if len(f.Triangles) > 0 {
		return int32(len(f.Triangles) * 3)
	}
	if len(f.Buffers) == 0 {
		return 0
	}
	b := f.Buffers[0]
	return int32(len(b.Data)) / b.DataType.Size()
}
