// Package opengl implements gpu.Context on top of a desktop OpenGL 4.1
// core-profile context. The hosting window (GLFW in the examples) must have
// made its GL context current on the calling goroutine before NewContext is
// called, and all subsequent calls must stay on that goroutine.
package opengl

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-gl/gl/v4.1-core/gl"

	"github.com/wtvr-engine/wtvr3d/engine/gpu"
)

// context implements gpu.Context over go-gl bindings.
type context struct {
	vao uint32
}

var _ gpu.Context = &context{}

// NewContext initializes the GL bindings and returns a gpu.Context bound to
// the current GL context. A single vertex array object is created and kept
// bound for the lifetime of the context, as required by the core profile.
//
// Returns:
//   - gpu.Context: the GL-backed context
//   - error: error if the GL bindings could not be initialized
func NewContext() (gpu.Context, error) {
	if err := gl.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize OpenGL bindings: %w", err)
	}
	c := &context{}
	gl.GenVertexArrays(1, &c.vao)
	gl.BindVertexArray(c.vao)
	return c, nil
}

func (c *context) CompileShader(shaderType gpu.ShaderType, source string) (gpu.Shader, error) {
	var glType uint32
	switch shaderType {
	case gpu.VertexShader:
		glType = gl.VERTEX_SHADER
	case gpu.FragmentShader:
		glType = gl.FRAGMENT_SHADER
	default:
		return 0, fmt.Errorf("unsupported shader type %d", shaderType)
	}
	shader := gl.CreateShader(glType)
	if shader == 0 {
		return 0, errors.New("could not create shader object")
	}
	csources, free := gl.Strs(source + "\x00")
	gl.ShaderSource(shader, 1, csources, nil)
	free()
	gl.CompileShader(shader)

	var status int32
	gl.GetShaderiv(shader, gl.COMPILE_STATUS, &status)
	if status == gl.FALSE {
		log := shaderInfoLog(shader)
		gl.DeleteShader(shader)
		return 0, fmt.Errorf("%s shader compilation failed: %s", shaderType, log)
	}
	return gpu.Shader(shader), nil
}

func (c *context) LinkProgram(vertex, fragment gpu.Shader) (gpu.Program, error) {
	program := gl.CreateProgram()
	if program == 0 {
		return 0, errors.New("could not create program object")
	}
	gl.AttachShader(program, uint32(vertex))
	gl.AttachShader(program, uint32(fragment))
	gl.LinkProgram(program)

	var status int32
	gl.GetProgramiv(program, gl.LINK_STATUS, &status)
	if status == gl.FALSE {
		log := programInfoLog(program)
		gl.DeleteProgram(program)
		return 0, fmt.Errorf("program link failed: %s", log)
	}
	return gpu.Program(program), nil
}

func (c *context) DeleteShader(shader gpu.Shader) {
	gl.DeleteShader(uint32(shader))
}

func (c *context) DeleteProgram(program gpu.Program) {
	gl.DeleteProgram(uint32(program))
}

func (c *context) UseProgram(program gpu.Program) {
	gl.UseProgram(uint32(program))
}

func (c *context) GetAttribLocation(program gpu.Program, name string) gpu.AttribLocation {
	return gpu.AttribLocation(gl.GetAttribLocation(uint32(program), gl.Str(name+"\x00")))
}

func (c *context) GetUniformLocation(program gpu.Program, name string) gpu.UniformLocation {
	return gpu.UniformLocation(gl.GetUniformLocation(uint32(program), gl.Str(name+"\x00")))
}

func (c *context) CreateFloatBuffer(data []float32) (gpu.Buffer, error) {
	if len(data) == 0 {
		return 0, errors.New("refusing to create empty float buffer")
	}
	var buffer uint32
	gl.GenBuffers(1, &buffer)
	gl.BindBuffer(gl.ARRAY_BUFFER, buffer)
	gl.BufferData(gl.ARRAY_BUFFER, len(data)*4, gl.Ptr(data), gl.STATIC_DRAW)
	return gpu.Buffer(buffer), nil
}

func (c *context) CreateIndexBuffer(data []uint32) (gpu.Buffer, error) {
	if len(data) == 0 {
		return 0, errors.New("refusing to create empty index buffer")
	}
	var buffer uint32
	gl.GenBuffers(1, &buffer)
	gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, buffer)
	gl.BufferData(gl.ELEMENT_ARRAY_BUFFER, len(data)*4, gl.Ptr(data), gl.STATIC_DRAW)
	return gpu.Buffer(buffer), nil
}

func (c *context) DeleteBuffer(buffer gpu.Buffer) {
	b := uint32(buffer)
	gl.DeleteBuffers(1, &b)
}

func (c *context) BindBuffer(target gpu.BufferTarget, buffer gpu.Buffer) {
	gl.BindBuffer(bufferTarget(target), uint32(buffer))
}

func (c *context) EnableVertexAttrib(location gpu.AttribLocation, size int32) {
	if location == gpu.AttribLocationNone {
		return
	}
	gl.VertexAttribPointerWithOffset(uint32(location), size, gl.FLOAT, false, 0, 0)
	gl.EnableVertexAttribArray(uint32(location))
}

func (c *context) CreateTexture(width, height int, pixels []byte) (gpu.Texture, error) {
	if len(pixels) < width*height*4 {
		return 0, fmt.Errorf("pixel data too short for %dx%d RGBA texture", width, height)
	}
	var texture uint32
	gl.GenTextures(1, &texture)
	gl.BindTexture(gl.TEXTURE_2D, texture)
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA8, int32(width), int32(height), 0,
		gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(pixels))
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.NEAREST)
	return gpu.Texture(texture), nil
}

func (c *context) DeleteTexture(texture gpu.Texture) {
	t := uint32(texture)
	gl.DeleteTextures(1, &t)
}

func (c *context) BindTexture(unit int, texture gpu.Texture) {
	gl.ActiveTexture(gl.TEXTURE0 + uint32(unit))
	gl.BindTexture(gl.TEXTURE_2D, uint32(texture))
}

func (c *context) Uniform1f(location gpu.UniformLocation, value float32) {
	gl.Uniform1f(int32(location), value)
}

func (c *context) Uniform1fv(location gpu.UniformLocation, data []float32) {
	if len(data) == 0 {
		return
	}
	gl.Uniform1fv(int32(location), int32(len(data)), &data[0])
}

func (c *context) Uniform2fv(location gpu.UniformLocation, data []float32) {
	if len(data) < 2 {
		return
	}
	gl.Uniform2fv(int32(location), int32(len(data)/2), &data[0])
}

func (c *context) Uniform3fv(location gpu.UniformLocation, data []float32) {
	if len(data) < 3 {
		return
	}
	gl.Uniform3fv(int32(location), int32(len(data)/3), &data[0])
}

func (c *context) Uniform4fv(location gpu.UniformLocation, data []float32) {
	if len(data) < 4 {
		return
	}
	gl.Uniform4fv(int32(location), int32(len(data)/4), &data[0])
}

func (c *context) UniformMatrix2fv(location gpu.UniformLocation, data []float32) {
	if len(data) < 4 {
		return
	}
	gl.UniformMatrix2fv(int32(location), int32(len(data)/4), false, &data[0])
}

func (c *context) UniformMatrix3fv(location gpu.UniformLocation, data []float32) {
	if len(data) < 9 {
		return
	}
	gl.UniformMatrix3fv(int32(location), int32(len(data)/9), false, &data[0])
}

func (c *context) UniformMatrix4fv(location gpu.UniformLocation, data []float32) {
	if len(data) < 16 {
		return
	}
	gl.UniformMatrix4fv(int32(location), int32(len(data)/16), false, &data[0])
}

func (c *context) Uniform1i(location gpu.UniformLocation, value int32) {
	gl.Uniform1i(int32(location), value)
}

func (c *context) DrawTriangles(first, count int32) {
	gl.DrawArrays(gl.TRIANGLES, first, count)
}

func (c *context) DrawIndexedTriangles(count int32) {
	gl.DrawElementsWithOffset(gl.TRIANGLES, count, gl.UNSIGNED_INT, 0)
}

func (c *context) Viewport(x, y, width, height int32) {
	gl.Viewport(x, y, width, height)
}

func (c *context) ClearColor(r, g, b, a float32) {
	gl.ClearColor(r, g, b, a)
}

func (c *context) Clear(color, depth bool) {
	var mask uint32
	if color {
		mask |= gl.COLOR_BUFFER_BIT
	}
	if depth {
		mask |= gl.DEPTH_BUFFER_BIT
	}
	if mask != 0 {
		gl.Clear(mask)
	}
}

func (c *context) Enable(capability gpu.Capability) {
	switch capability {
	case gpu.Blend:
		gl.Enable(gl.BLEND)
		gl.BlendFunc(gl.SRC_ALPHA, gl.ONE_MINUS_SRC_ALPHA)
	default:
		gl.Enable(glCapability(capability))
	}
}

func (c *context) Disable(capability gpu.Capability) {
	gl.Disable(glCapability(capability))
}

func bufferTarget(target gpu.BufferTarget) uint32 {
	if target == gpu.ElementArrayBuffer {
		return gl.ELEMENT_ARRAY_BUFFER
	}
	return gl.ARRAY_BUFFER
}

func glCapability(capability gpu.Capability) uint32 {
	switch capability {
	case gpu.DepthTest:
		return gl.DEPTH_TEST
	case gpu.CullFace:
		return gl.CULL_FACE
	case gpu.Blend:
		return gl.BLEND
	default:
		return gl.DEPTH_TEST
	}
}

// shaderInfoLog fetches the driver's compile log for a shader.
func shaderInfoLog(shader uint32) string {
	var logLength int32
	gl.GetShaderiv(shader, gl.INFO_LOG_LENGTH, &logLength)
	if logLength == 0 {
		return "unknown error creating shader"
	}
	log := strings.Repeat("\x00", int(logLength+1))
	gl.GetShaderInfoLog(shader, logLength, nil, gl.Str(log))
	return strings.TrimRight(log, "\x00")
}

// programInfoLog fetches the driver's link log for a program.
func programInfoLog(program uint32) string {
	var logLength int32
	gl.GetProgramiv(program, gl.INFO_LOG_LENGTH, &logLength)
	if logLength == 0 {
		return "unknown error creating program object"
	}
	log := strings.Repeat("\x00", int(logLength+1))
	gl.GetProgramInfoLog(program, logLength, nil, gl.Str(log))
	return strings.TrimRight(log, "\x00")
}
