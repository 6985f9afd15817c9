package uniform

// ShaderDataType enumerates the GLSL value shapes the engine can move
// through buffers and uniforms.
type ShaderDataType int

const (
	// Single is a scalar float.
	Single ShaderDataType = iota

	// Vector2 is a two-component float vector.
	Vector2

	// Vector3 is a three-component float vector.
	Vector3

	// Vector4 is a four-component float vector.
	Vector4

	// Matrix2 is a 2x2 float matrix.
	Matrix2

	// Matrix3 is a 3x3 float matrix.
	Matrix3

	// Matrix4 is a 4x4 float matrix.
	Matrix4

	// Sampler2D is a 2D texture sampler.
	Sampler2D
)

// Size returns the number of float components one element of the type
// occupies, used when slicing flat buffers per vertex or per array element.
//
// Returns:
//   - int32: the component count (1 for Single and Sampler2D)
func (t ShaderDataType) Size() int32 {
	switch t {
	case Vector2:
		return 2
	case Vector3:
		return 3
	case Vector4, Matrix2:
		return 4
	case Matrix3:
		return 9
	case Matrix4:
		return 16
	default:
		return 1
	}
}
