package uniform

import (
	"errors"
	"fmt"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/wtvr-engine/wtvr3d/engine/gpu"
)

// ErrMissingTextureUnit is returned when a texture value is uploaded without
// an assigned texture unit. Texture uniforms must be given a stable unit
// index before the first upload; a missing index is an error, not a skip.
var ErrMissingTextureUnit = errors.New("texture uniform has no assigned texture unit")

// ErrNilTexture is returned when a texture value holds no GPU texture.
var ErrNilTexture = errors.New("texture uniform references no texture")

// ValueKind tags the variant held by a Value.
type ValueKind int

const (
	// KindFloat is a scalar float.
	KindFloat ValueKind = iota

	// KindFloatArray is a flat float array.
	KindFloatArray

	// KindVector2 is a vec2 (or a flattened vec2 array).
	KindVector2

	// KindVector3 is a vec3 (or a flattened vec3 array).
	KindVector3

	// KindVector4 is a vec4 (or a flattened vec4 array).
	KindVector4

	// KindMatrix2 is a column-major mat2.
	KindMatrix2

	// KindMatrix3 is a column-major mat3.
	KindMatrix3

	// KindMatrix4 is a column-major mat4.
	KindMatrix4

	// KindTexture is a texture sampler binding.
	KindTexture
)

// Value is a closed, type-tagged uniform value: one of scalar, float array,
// vector, flattened vector array, matrix, or texture reference. Dispatch to
// the matching GPU upload call happens in a single switch in Upload.
type Value struct {
	kind    ValueKind
	floats  []float32
	texture gpu.Texture
}

// Float wraps a scalar float.
func Float(v float32) Value {
	return Value{kind: KindFloat, floats: []float32{v}}
}

// FloatArray wraps a flat float array. The slice is used as-is.
func FloatArray(v []float32) Value {
	return Value{kind: KindFloatArray, floats: v}
}

// Vec2 wraps a two-component vector.
func Vec2(v mgl32.Vec2) Value {
	return Value{kind: KindVector2, floats: v[:]}
}

// Vec3 wraps a three-component vector.
func Vec3(v mgl32.Vec3) Value {
	return Value{kind: KindVector3, floats: v[:]}
}

// Vec4 wraps a four-component vector.
func Vec4(v mgl32.Vec4) Value {
	return Value{kind: KindVector4, floats: v[:]}
}

// Vec2Array flattens a vec2 slice into one contiguous float buffer,
// preserving insertion order.
func Vec2Array(vs []mgl32.Vec2) Value {
	flat := make([]float32, 0, len(vs)*2)
	for _, v := range vs {
		flat = append(flat, v[0], v[1])
	}
	return Value{kind: KindVector2, floats: flat}
}

// Vec3Array flattens a vec3 slice into one contiguous float buffer,
// preserving insertion order.
func Vec3Array(vs []mgl32.Vec3) Value {
	flat := make([]float32, 0, len(vs)*3)
	for _, v := range vs {
		flat = append(flat, v[0], v[1], v[2])
	}
	return Value{kind: KindVector3, floats: flat}
}

// Vec4Array flattens a vec4 slice into one contiguous float buffer,
// preserving insertion order.
func Vec4Array(vs []mgl32.Vec4) Value {
	flat := make([]float32, 0, len(vs)*4)
	for _, v := range vs {
		flat = append(flat, v[0], v[1], v[2], v[3])
	}
	return Value{kind: KindVector4, floats: flat}
}

// Mat2 wraps a column-major 2x2 matrix.
func Mat2(m mgl32.Mat2) Value {
	return Value{kind: KindMatrix2, floats: m[:]}
}

// Mat3 wraps a column-major 3x3 matrix.
func Mat3(m mgl32.Mat3) Value {
	return Value{kind: KindMatrix3, floats: m[:]}
}

// Mat4 wraps a column-major 4x4 matrix.
func Mat4(m mgl32.Mat4) Value {
	return Value{kind: KindMatrix4, floats: m[:]}
}

// FromFloats builds a value of the given kind from a flat float payload,
// used when decoding serialized uniform values. The payload length must be a
// multiple of the kind's component count; matrices must be exactly one
// matrix.
//
// Parameters:
//   - kind: the target variant, any non-texture kind
//   - floats: the flat payload
//
// Returns:
//   - Value: the wrapped value
//   - error: error when the payload does not fit the kind
func FromFloats(kind ValueKind, floats []float32) (Value, error) {
	var components int
	switch kind {
	case KindFloat:
		components = 1
	case KindFloatArray:
		components = 1
	case KindVector2:
		components = 2
	case KindVector3:
		components = 3
	case KindVector4:
		components = 4
	case KindMatrix2:
		components = 4
	case KindMatrix3:
		components = 9
	case KindMatrix4:
		components = 16
	case KindTexture:
		return Value{}, errors.New("texture values carry no float payload")
	default:
		return Value{}, fmt.Errorf("invalid uniform value kind %d", kind)
	}
	if len(floats) == 0 || len(floats)%components != 0 {
		return Value{}, fmt.Errorf("payload of %d floats does not fit uniform value kind %d", len(floats), kind)
	}
	isMatrix := kind == KindMatrix2 || kind == KindMatrix3 || kind == KindMatrix4
	if isMatrix && len(floats) != components {
		return Value{}, fmt.Errorf("matrix payload must be exactly %d floats, got %d", components, len(floats))
	}
	return Value{kind: kind, floats: floats}, nil
}

// TextureRef wraps a GPU texture binding.
func TextureRef(t gpu.Texture) Value {
	return Value{kind: KindTexture, texture: t}
}

// Kind returns the variant tag.
func (v Value) Kind() ValueKind {
	return v.kind
}

// Floats returns the flat float payload for non-texture variants.
func (v Value) Floats() []float32 {
	return v.floats
}

// Upload submits the value to the context at the given location.
//
// Texture values bind the texture on textureUnit and upload the unit index
// as the sampler uniform; textureUnit must be non-negative for them and is
// ignored for every other variant.
//
// Parameters:
//   - ctx: the GPU context
//   - location: the resolved uniform location
//   - textureUnit: the assigned texture unit for sampler values, -1 if none
//
// Returns:
//   - error: ErrMissingTextureUnit or ErrNilTexture for broken texture
//     values; nil otherwise
func (v Value) Upload(ctx gpu.Context, location gpu.UniformLocation, textureUnit int) error {
	switch v.kind {
	case KindFloat, KindFloatArray:
		ctx.Uniform1fv(location, v.floats)
	case KindVector2:
		ctx.Uniform2fv(location, v.floats)
	case KindVector3:
		ctx.Uniform3fv(location, v.floats)
	case KindVector4:
		ctx.Uniform4fv(location, v.floats)
	case KindMatrix2:
		ctx.UniformMatrix2fv(location, v.floats)
	case KindMatrix3:
		ctx.UniformMatrix3fv(location, v.floats)
	case KindMatrix4:
		ctx.UniformMatrix4fv(location, v.floats)
	case KindTexture:
		if v.texture == 0 {
			return ErrNilTexture
		}
		if textureUnit < 0 {
			return ErrMissingTextureUnit
		}
		ctx.BindTexture(textureUnit, v.texture)
		ctx.Uniform1i(location, int32(textureUnit))
	default:
		return fmt.Errorf("invalid uniform value kind %d", v.kind)
	}
	return nil
}
