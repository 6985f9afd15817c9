// Package buffer wraps GPU vertex and index buffer objects. A buffer is
// created and uploaded once at mesh construction time; the CPU-side data is
// not retained.
package buffer

import (
	"fmt"

	"github.com/wtvr-engine/wtvr3d/engine/gpu"
	"github.com/wtvr-engine/wtvr3d/engine/uniform"
)

// Buffer is a GPU buffer object tied to a named vertex attribute (or to the
// index binding point). The attribute location is looked up once against a
// program and cached.
type Buffer struct {
	attributeName string
	dataType      uniform.ShaderDataType
	location      gpu.AttribLocation
	located       bool
	handle        gpu.Buffer
	index         bool
	elementCount  int32
}

// FromFloat32Data creates a vertex attribute buffer and uploads the flat
// float data to the GPU immediately.
//
// Parameters:
//   - ctx: the GPU context
//   - name: the vertex attribute name this buffer feeds
//   - dataType: the per-vertex component shape (Vector3 for positions, ...)
//   - data: flat float data, len(data) divisible by dataType.Size()
//
// Returns:
//   - *Buffer: the uploaded buffer
//   - error: GPU buffer creation failure
func FromFloat32Data(ctx gpu.Context, name string, dataType uniform.ShaderDataType, data []float32) (*Buffer, error) {
	handle, err := ctx.CreateFloatBuffer(data)
	if err != nil {
		return nil, fmt.Errorf("buffer %q: %w", name, err)
	}
	return &Buffer{
		attributeName: name,
		dataType:      dataType,
		location:      gpu.AttribLocationNone,
		handle:        handle,
		elementCount:  int32(len(data)) / dataType.Size(),
	}, nil
}

// FromIndexData creates an index buffer and uploads the triangle indices to
// the GPU immediately.
//
// Parameters:
//   - ctx: the GPU context
//   - data: triangle vertex indices
//
// Returns:
//   - *Buffer: the uploaded index buffer
//   - error: GPU buffer creation failure
func FromIndexData(ctx gpu.Context, data []uint32) (*Buffer, error) {
	handle, err := ctx.CreateIndexBuffer(data)
	if err != nil {
		return nil, fmt.Errorf("index buffer: %w", err)
	}
	return &Buffer{
		location:     gpu.AttribLocationNone,
		handle:       handle,
		index:        true,
		elementCount: int32(len(data)),
	}, nil
}

// AttributeName returns the vertex attribute this buffer feeds. Empty for
// index buffers.
func (b *Buffer) AttributeName() string {
	return b.attributeName
}

// DataType returns the per-vertex component shape.
func (b *Buffer) DataType() uniform.ShaderDataType {
	return b.dataType
}

// IsIndex reports whether this is an index buffer.
func (b *Buffer) IsIndex() bool {
	return b.index
}

// ElementCount returns the number of vertices (attribute buffers) or
// indices (index buffers) the buffer holds.
func (b *Buffer) ElementCount() int32 {
	return b.elementCount
}

// Handle returns the underlying GPU buffer handle.
func (b *Buffer) Handle() gpu.Buffer {
	return b.handle
}

// SetLocation installs a location resolved elsewhere, typically copied from
// a material's attribute location cache.
func (b *Buffer) SetLocation(location gpu.AttribLocation) {
	b.location = location
	b.located = true
}

// LookupLocation resolves the attribute location against a program, caching
// the result so the underlying query runs at most once.
//
// Parameters:
//   - ctx: the GPU context
//   - program: the linked program to resolve against
func (b *Buffer) LookupLocation(ctx gpu.Context, program gpu.Program) {
	if b.located || b.index {
		return
	}
	b.location = ctx.GetAttribLocation(program, b.attributeName)
	b.located = true
}

// EnableAndBindAttribute binds the buffer and points the cached attribute
// location at it.
//
// Returns:
//   - error: error if the location is unresolved; the bind is skipped. The
//     caller logs and continues, a missing attribute never aborts a frame.
func (b *Buffer) EnableAndBindAttribute(ctx gpu.Context) error {
	if b.index {
		ctx.BindBuffer(gpu.ElementArrayBuffer, b.handle)
		return nil
	}
	if !b.located || b.location == gpu.AttribLocationNone {
		return fmt.Errorf("attribute %q has no resolved location", b.attributeName)
	}
	ctx.BindBuffer(gpu.ArrayBuffer, b.handle)
	ctx.EnableVertexAttrib(b.location, b.dataType.Size())
	return nil
}
