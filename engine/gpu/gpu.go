// Package gpu defines the graphics-context capability the engine is given.
// The core depends on this surface but does not own it: the opengl
// subpackage implements it for desktop GL, and gputest provides a recording
// fake for tests.
package gpu

// Shader is an opaque handle to a compiled shader object. The zero value is
// not a valid shader.
type Shader uint32

// Program is an opaque handle to a linked shader program. The zero value is
// not a valid program.
type Program uint32

// Buffer is an opaque handle to a GPU buffer object. The zero value is not
// a valid buffer.
type Buffer uint32

// Texture is an opaque handle to a GPU texture object. The zero value is
// not a valid texture.
type Texture uint32

// AttribLocation is a resolved vertex attribute location.
// AttribLocationNone marks an attribute the program does not declare.
type AttribLocation int32

// AttribLocationNone is the unresolved attribute location.
const AttribLocationNone AttribLocation = -1

// UniformLocation is a resolved uniform location. UniformLocationNone marks
// a uniform the program does not declare (or that the driver optimized out).
type UniformLocation int32

// UniformLocationNone is the unresolved uniform location.
const UniformLocationNone UniformLocation = -1

// ShaderType identifies the pipeline stage a shader source targets.
type ShaderType int

const (
	// VertexShader is the vertex stage.
	VertexShader ShaderType = iota

	// FragmentShader is the fragment stage.
	FragmentShader
)

// String returns the stage name for error messages.
func (t ShaderType) String() string {
	switch t {
	case VertexShader:
		return "vertex"
	case FragmentShader:
		return "fragment"
	default:
		return "unknown"
	}
}

// BufferTarget selects the binding point for a buffer object.
type BufferTarget int

const (
	// ArrayBuffer is the vertex attribute data binding point.
	ArrayBuffer BufferTarget = iota

	// ElementArrayBuffer is the index data binding point.
	ElementArrayBuffer
)

// Capability is a fixed-function GPU state toggle.
type Capability int

const (
	// DepthTest enables depth-buffer testing.
	DepthTest Capability = iota

	// CullFace enables back-face culling.
	CullFace

	// Blend enables alpha blending, used for transparent materials.
	Blend
)

// Context is the binding protocol the engine core renders through.
//
// Resource creation (buffers, textures, programs) happens synchronously
// inside the call and returns an error on failure; compile and link errors
// carry the driver's info log. Everything else is a fire-and-forget state
// change or draw submission.
type Context interface {
	// CompileShader compiles a shader source for the given stage.
	//
	// Parameters:
	//   - shaderType: the pipeline stage
	//   - source: the shader source text
	//
	// Returns:
	//   - Shader: the compiled shader handle
	//   - error: compile failure with the compiler log attached
	CompileShader(shaderType ShaderType, source string) (Shader, error)

	// LinkProgram links a vertex and a fragment shader into a program.
	//
	// Parameters:
	//   - vertex: the compiled vertex shader
	//   - fragment: the compiled fragment shader
	//
	// Returns:
	//   - Program: the linked program handle
	//   - error: link failure with the linker log attached
	LinkProgram(vertex, fragment Shader) (Program, error)

	// DeleteShader releases a shader object. Safe once the program is linked.
	DeleteShader(shader Shader)

	// DeleteProgram releases a linked program.
	DeleteProgram(program Program)

	// UseProgram makes a program current for subsequent uniform uploads and draws.
	UseProgram(program Program)

	// GetAttribLocation resolves a vertex attribute by name.
	// Returns AttribLocationNone if the program does not declare it.
	GetAttribLocation(program Program, name string) AttribLocation

	// GetUniformLocation resolves a uniform by name.
	// Returns UniformLocationNone if the program does not declare it.
	GetUniformLocation(program Program, name string) UniformLocation

	// CreateFloatBuffer creates an ARRAY_BUFFER and uploads the data once.
	//
	// Parameters:
	//   - data: flat float32 attribute data
	//
	// Returns:
	//   - Buffer: the buffer handle
	//   - error: creation failure
	CreateFloatBuffer(data []float32) (Buffer, error)

	// CreateIndexBuffer creates an ELEMENT_ARRAY_BUFFER and uploads the
	// triangle indices once.
	//
	// Parameters:
	//   - data: triangle vertex indices
	//
	// Returns:
	//   - Buffer: the buffer handle
	//   - error: creation failure
	CreateIndexBuffer(data []uint32) (Buffer, error)

	// DeleteBuffer releases a buffer object.
	DeleteBuffer(buffer Buffer)

	// BindBuffer binds a buffer to a target.
	BindBuffer(target BufferTarget, buffer Buffer)

	// EnableVertexAttrib points the currently bound ARRAY_BUFFER at an
	// attribute location and enables the attribute array. Size is the
	// number of float components per vertex (3 for a vec3, and so on).
	EnableVertexAttrib(location AttribLocation, size int32)

	// CreateTexture creates a 2D RGBA texture from raw pixels.
	//
	// Parameters:
	//   - width: texture width in pixels
	//   - height: texture height in pixels
	//   - pixels: RGBA pixel data, 4 bytes per pixel
	//
	// Returns:
	//   - Texture: the texture handle
	//   - error: creation failure
	CreateTexture(width, height int, pixels []byte) (Texture, error)

	// DeleteTexture releases a texture object.
	DeleteTexture(texture Texture)

	// BindTexture makes a texture active on the given texture unit.
	//
	// Parameters:
	//   - unit: the texture unit index (0-based)
	//   - texture: the texture handle
	BindTexture(unit int, texture Texture)

	// Uniform1f uploads a scalar float uniform.
	Uniform1f(location UniformLocation, value float32)

	// Uniform1fv uploads a float array uniform.
	Uniform1fv(location UniformLocation, data []float32)

	// Uniform2fv uploads a vec2 (or flattened vec2 array) uniform.
	Uniform2fv(location UniformLocation, data []float32)

	// Uniform3fv uploads a vec3 (or flattened vec3 array) uniform.
	Uniform3fv(location UniformLocation, data []float32)

	// Uniform4fv uploads a vec4 (or flattened vec4 array) uniform.
	Uniform4fv(location UniformLocation, data []float32)

	// UniformMatrix2fv uploads a mat2 uniform in column-major order.
	UniformMatrix2fv(location UniformLocation, data []float32)

	// UniformMatrix3fv uploads a mat3 uniform in column-major order.
	UniformMatrix3fv(location UniformLocation, data []float32)

	// UniformMatrix4fv uploads a mat4 uniform in column-major order.
	UniformMatrix4fv(location UniformLocation, data []float32)

	// Uniform1i uploads a scalar int uniform (also used for sampler units).
	Uniform1i(location UniformLocation, value int32)

	// DrawTriangles issues a non-indexed triangle draw over the currently
	// bound attributes.
	//
	// Parameters:
	//   - first: index of the first vertex
	//   - count: number of vertices to draw
	DrawTriangles(first, count int32)

	// DrawIndexedTriangles issues an indexed triangle draw using the
	// currently bound ELEMENT_ARRAY_BUFFER.
	//
	// Parameters:
	//   - count: number of indices to draw
	DrawIndexedTriangles(count int32)

	// Viewport sets the viewport rectangle in device pixels.
	Viewport(x, y, width, height int32)

	// ClearColor sets the color used by Clear.
	ClearColor(r, g, b, a float32)

	// Clear clears the selected framebuffer planes.
	//
	// Parameters:
	//   - color: clear the color buffer
	//   - depth: clear the depth buffer
	Clear(color, depth bool)

	// Enable turns on a fixed-function capability.
	Enable(capability Capability)

	// Disable turns off a fixed-function capability.
	Disable(capability Capability)
}
