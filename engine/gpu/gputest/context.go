// Package gputest provides a recording implementation of gpu.Context for
// tests. It assigns deterministic handles and locations, counts every call
// by method name, and keeps a transcript of uniform uploads and draws so
// tests can assert on the exact GPU traffic a frame produced.
package gputest

import (
	"errors"
	"fmt"

	"github.com/wtvr-engine/wtvr3d/engine/gpu"
)

// Upload is one recorded uniform upload.
type Upload struct {
	// Method is the context method that performed the upload, e.g. "Uniform3fv".
	Method string

	// Location is the uniform location the upload targeted.
	Location gpu.UniformLocation

	// Data holds the float payload for the fv variants, nil otherwise.
	Data []float32

	// Int holds the payload for Uniform1i uploads.
	Int int32
}

// Draw is one recorded draw call.
type Draw struct {
	// Indexed reports whether the draw used the bound index buffer.
	Indexed bool

	// Count is the vertex or index count submitted.
	Count int32

	// Program is the program that was current when the draw was issued.
	Program gpu.Program
}

type locKey struct {
	program gpu.Program
	name    string
}

// Context is a gpu.Context fake that records everything. The zero value is
// not usable; create instances with NewContext.
type Context struct {
	// Calls counts invocations by method name.
	Calls map[string]int

	// AttribQueries counts underlying GetAttribLocation lookups per name.
	AttribQueries map[string]int

	// UniformQueries counts underlying GetUniformLocation lookups per name.
	UniformQueries map[string]int

	// MissingAttribs lists attribute names that resolve to AttribLocationNone.
	MissingAttribs map[string]bool

	// MissingUniforms lists uniform names that resolve to UniformLocationNone.
	MissingUniforms map[string]bool

	// CompileErr, when set for a stage, makes CompileShader fail with the
	// given text as the compiler log.
	CompileErr map[gpu.ShaderType]string

	// LinkErr, when non-empty, makes LinkProgram fail with this linker log.
	LinkErr string

	// Uploads is the transcript of uniform uploads in submission order.
	Uploads []Upload

	// Draws is the transcript of draw calls in submission order.
	Draws []Draw

	// ProgramSwitches records every UseProgram call in order.
	ProgramSwitches []gpu.Program

	// BoundTextures maps texture units to the texture last bound on them.
	BoundTextures map[int]gpu.Texture

	// FloatBuffers maps buffer handles to the length of the uploaded data.
	FloatBuffers map[gpu.Buffer]int

	// IndexBuffers maps buffer handles to the length of the uploaded data.
	IndexBuffers map[gpu.Buffer]int

	currentProgram gpu.Program
	attribLocs     map[locKey]gpu.AttribLocation
	uniformLocs    map[locKey]gpu.UniformLocation
	nextShader     gpu.Shader
	nextProgram    gpu.Program
	nextBuffer     gpu.Buffer
	nextTexture    gpu.Texture
	nextAttrib     gpu.AttribLocation
	nextUniform    gpu.UniformLocation
}

var _ gpu.Context = &Context{}

// NewContext creates an empty recording context where every creation call
// succeeds and every name resolves to a fresh location.
//
// Returns:
//   - *Context: the recording context
func NewContext() *Context {
	return &Context{
		Calls:           make(map[string]int),
		AttribQueries:   make(map[string]int),
		UniformQueries:  make(map[string]int),
		MissingAttribs:  make(map[string]bool),
		MissingUniforms: make(map[string]bool),
		CompileErr:      make(map[gpu.ShaderType]string),
		BoundTextures:   make(map[int]gpu.Texture),
		FloatBuffers:    make(map[gpu.Buffer]int),
		IndexBuffers:    make(map[gpu.Buffer]int),
		attribLocs:      make(map[locKey]gpu.AttribLocation),
		uniformLocs:     make(map[locKey]gpu.UniformLocation),
	}
}

// CurrentProgram returns the program made current by the last UseProgram call.
func (c *Context) CurrentProgram() gpu.Program {
	return c.currentProgram
}

func (c *Context) record(method string) {
	c.Calls[method]++
}

func (c *Context) CompileShader(shaderType gpu.ShaderType, source string) (gpu.Shader, error) {
	c.record("CompileShader")
	if log, ok := c.CompileErr[shaderType]; ok {
		return 0, fmt.Errorf("%s shader compilation failed: %s", shaderType, log)
	}
	if source == "" {
		return 0, errors.New("empty shader source")
	}
	c.nextShader++
	return c.nextShader, nil
}

func (c *Context) LinkProgram(vertex, fragment gpu.Shader) (gpu.Program, error) {
	c.record("LinkProgram")
	if c.LinkErr != "" {
		return 0, fmt.Errorf("program link failed: %s", c.LinkErr)
	}
	if vertex == 0 || fragment == 0 {
		return 0, errors.New("link with invalid shader handle")
	}
	c.nextProgram++
	return c.nextProgram, nil
}

func (c *Context) DeleteShader(shader gpu.Shader) {
	c.record("DeleteShader")
}

func (c *Context) DeleteProgram(program gpu.Program) {
	c.record("DeleteProgram")
}

func (c *Context) UseProgram(program gpu.Program) {
	c.record("UseProgram")
	c.currentProgram = program
	c.ProgramSwitches = append(c.ProgramSwitches, program)
}

func (c *Context) GetAttribLocation(program gpu.Program, name string) gpu.AttribLocation {
	c.record("GetAttribLocation")
	c.AttribQueries[name]++
	if c.MissingAttribs[name] {
		return gpu.AttribLocationNone
	}
	key := locKey{program: program, name: name}
	if loc, ok := c.attribLocs[key]; ok {
		return loc
	}
	loc := c.nextAttrib
	c.nextAttrib++
	c.attribLocs[key] = loc
	return loc
}

func (c *Context) GetUniformLocation(program gpu.Program, name string) gpu.UniformLocation {
	c.record("GetUniformLocation")
	c.UniformQueries[name]++
	if c.MissingUniforms[name] {
		return gpu.UniformLocationNone
	}
	key := locKey{program: program, name: name}
	if loc, ok := c.uniformLocs[key]; ok {
		return loc
	}
	loc := c.nextUniform
	c.nextUniform++
	c.uniformLocs[key] = loc
	return loc
}

func (c *Context) CreateFloatBuffer(data []float32) (gpu.Buffer, error) {
	c.record("CreateFloatBuffer")
	c.nextBuffer++
	c.FloatBuffers[c.nextBuffer] = len(data)
	return c.nextBuffer, nil
}

func (c *Context) CreateIndexBuffer(data []uint32) (gpu.Buffer, error) {
	c.record("CreateIndexBuffer")
	c.nextBuffer++
	c.IndexBuffers[c.nextBuffer] = len(data)
	return c.nextBuffer, nil
}

func (c *Context) DeleteBuffer(buffer gpu.Buffer) {
	c.record("DeleteBuffer")
}

func (c *Context) BindBuffer(target gpu.BufferTarget, buffer gpu.Buffer) {
	c.record("BindBuffer")
}

func (c *Context) EnableVertexAttrib(location gpu.AttribLocation, size int32) {
	c.record("EnableVertexAttrib")
}

func (c *Context) CreateTexture(width, height int, pixels []byte) (gpu.Texture, error) {
	c.record("CreateTexture")
	if width <= 0 || height <= 0 {
		return 0, fmt.Errorf("invalid texture size %dx%d", width, height)
	}
	c.nextTexture++
	return c.nextTexture, nil
}

func (c *Context) DeleteTexture(texture gpu.Texture) {
	c.record("DeleteTexture")
}

func (c *Context) BindTexture(unit int, texture gpu.Texture) {
	c.record("BindTexture")
	c.BoundTextures[unit] = texture
}

func (c *Context) upload(method string, location gpu.UniformLocation, data []float32) {
	c.record(method)
	cp := make([]float32, len(data))
	copy(cp, data)
	c.Uploads = append(c.Uploads, Upload{Method: method, Location: location, Data: cp})
}

func (c *Context) Uniform1f(location gpu.UniformLocation, value float32) {
	c.upload("Uniform1f", location, []float32{value})
}

func (c *Context) Uniform1fv(location gpu.UniformLocation, data []float32) {
	c.upload("Uniform1fv", location, data)
}

func (c *Context) Uniform2fv(location gpu.UniformLocation, data []float32) {
	c.upload("Uniform2fv", location, data)
}

func (c *Context) Uniform3fv(location gpu.UniformLocation, data []float32) {
	c.upload("Uniform3fv", location, data)
}

func (c *Context) Uniform4fv(location gpu.UniformLocation, data []float32) {
	c.upload("Uniform4fv", location, data)
}

func (c *Context) UniformMatrix2fv(location gpu.UniformLocation, data []float32) {
	c.upload("UniformMatrix2fv", location, data)
}

func (c *Context) UniformMatrix3fv(location gpu.UniformLocation, data []float32) {
	c.upload("UniformMatrix3fv", location, data)
}

func (c *Context) UniformMatrix4fv(location gpu.UniformLocation, data []float32) {
	c.upload("UniformMatrix4fv", location, data)
}

func (c *Context) Uniform1i(location gpu.UniformLocation, value int32) {
	c.record("Uniform1i")
	c.Uploads = append(c.Uploads, Upload{Method: "Uniform1i", Location: location, Int: value})
}

func (c *Context) DrawTriangles(first, count int32) {
	c.record("DrawTriangles")
	c.Draws = append(c.Draws, Draw{Indexed: false, Count: count, Program: c.currentProgram})
}

func (c *Context) DrawIndexedTriangles(count int32) {
	c.record("DrawIndexedTriangles")
	c.Draws = append(c.Draws, Draw{Indexed: true, Count: count, Program: c.currentProgram})
}

func (c *Context) Viewport(x, y, width, height int32) {
	c.record("Viewport")
}

func (c *Context) ClearColor(r, g, b, a float32) {
	c.record("ClearColor")
}

func (c *Context) Clear(color, depth bool) {
	c.record("Clear")
}

func (c *Context) Enable(capability gpu.Capability) {
	c.record("Enable")
}

func (c *Context) Disable(capability gpu.Capability) {
	c.record("Disable")
}
