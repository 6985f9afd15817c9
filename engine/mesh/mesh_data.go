// Package mesh holds the immutable geometry payload shared by scene
// entities: named attribute buffers plus vertex and index counts. MeshData
// is owned by the asset registry and referenced by id from any number of
// entities.
package mesh

import (
	"github.com/wtvr-engine/wtvr3d/engine/buffer"
	"github.com/wtvr-engine/wtvr3d/engine/gpu"
)

// AttributeRegistrar resolves and caches attribute locations by name.
// Implemented by material.Material; declared here so the geometry layer does
// not depend on the material layer.
type AttributeRegistrar interface {
	// RegisterAttributeLocation looks up and caches an attribute location
	// if it is not cached yet. Safe to call every frame.
	RegisterAttributeLocation(ctx gpu.Context, name string) gpu.AttribLocation
}

// MeshData is the geometry for one mesh: an ordered collection of named
// attribute buffers, an optional index buffer, and the vertex count.
// Buffers are uploaded to the GPU at construction; MeshData never retains
// CPU-side geometry.
type MeshData struct {
	id          string
	buffers     []*buffer.Buffer
	indexBuffer *buffer.Buffer
	vertexCount int32
	lookupDone  bool
}

// New creates an empty MeshData shell. Buffers are attached with PushBuffer
// and SetIndexBuffer during asset construction.
//
// Parameters:
//   - id: the registry id for this mesh data
//   - vertexCount: the number of vertices, including duplicates from
//     de-indexing
//
// Returns:
//   - *MeshData: the mesh data
func New(id string, vertexCount int32) *MeshData {
	return &MeshData{id: id, vertexCount: vertexCount}
}

// ID returns the registry id.
func (m *MeshData) ID() string {
	return m.id
}

// VertexCount returns the number of vertices in the attribute buffers.
func (m *MeshData) VertexCount() int32 {
	return m.vertexCount
}

// PushBuffer appends an attribute buffer.
func (m *MeshData) PushBuffer(b *buffer.Buffer) {
	m.buffers = append(m.buffers, b)
}

// SetIndexBuffer attaches the triangle index buffer. Meshes without one are
// drawn with a plain (non-indexed) triangle draw.
func (m *MeshData) SetIndexBuffer(b *buffer.Buffer) {
	m.indexBuffer = b
}

// IndexBuffer returns the index buffer, or nil for de-indexed meshes.
func (m *MeshData) IndexBuffer() *buffer.Buffer {
	return m.indexBuffer
}

// Buffers returns the attribute buffers in insertion order.
func (m *MeshData) Buffers() []*buffer.Buffer {
	return m.buffers
}

// Buffer returns the attribute buffer with the given name, or nil.
func (m *MeshData) Buffer(name string) *buffer.Buffer {
	for _, b := range m.buffers {
		if b.AttributeName() == name {
			return b
		}
	}
	return nil
}

// LookupLocations registers every attribute buffer name with the material's
// location cache and copies the resolved locations onto the buffers. Runs
// the underlying work once; subsequent calls are no-ops, so it is safe to
// call when a mesh is (re-)registered with the renderer each frame.
//
// Parameters:
//   - ctx: the GPU context
//   - registrar: the material owning the attribute location cache
func (m *MeshData) LookupLocations(ctx gpu.Context, registrar AttributeRegistrar) {
	if m.lookupDone {
		return
	}
	for _, b := range m.buffers {
		location := registrar.RegisterAttributeLocation(ctx, b.AttributeName())
		b.SetLocation(location)
	}
	m.lookupDone = true
}
