// Package material manages compiled shader programs and their uniforms.
//
// Material is the shared, reference-counted program plus the uniforms
// common to every object using it; MaterialInstance layers per-object
// overrides on top of one parent Material. Attribute and uniform locations
// are looked up once and cached until the material is destroyed.
package material

import (
	"log/slog"

	wtvr3d "github.com/wtvr-engine/wtvr3d"
	"github.com/wtvr-engine/wtvr3d/engine/gpu"
	"github.com/wtvr-engine/wtvr3d/engine/uniform"
)

// materialImpl is the implementation of the Material interface.
type materialImpl struct {
	name            string
	program         gpu.Program
	transparent     bool
	lit             bool
	sharedUniforms  map[string]*uniform.Uniform
	attribLocations map[string]gpu.AttribLocation
	globals         GlobalUniformLocations
	lightConfig     LightConfig
	nextTextureUnit int
	logger          *slog.Logger
}

// Material is a compiled GPU program plus its shared ("global") uniform
// values and location caches.
//
// The program is compiled and linked exactly once, at construction, and is
// never recompiled; location lookups are memoized and invalidated only by
// Destroy. Materials are shared: many MaterialInstances reference one
// Material, and mutating a shared uniform is visible to all of them.
type Material interface {
	// Name returns the material's declared name/id.
	Name() string

	// Program returns the linked GPU program handle.
	Program() gpu.Program

	// Transparent reports whether the material is semi-transparent.
	// Transparent materials render after all opaque ones.
	Transparent() bool

	// SetTransparent marks the material semi-transparent.
	//
	// Parameters:
	//   - transparent: true for semi-transparent rendering
	SetTransparent(transparent bool)

	// Lit reports whether the material consumes the scene's light uniforms.
	Lit() bool

	// HasUniform reports whether a shared uniform with the name exists.
	//
	// Parameters:
	//   - name: the uniform name
	//
	// Returns:
	//   - bool: true if the name is a shared uniform of this material
	HasUniform(name string) bool

	// Uniform returns the shared uniform with the given name, or nil.
	Uniform(name string) *uniform.Uniform

	// SetUniform inserts or replaces a shared uniform value by name.
	// Replacing keeps the existing slot's cached location and texture unit.
	// Sampler uniforms are assigned the next free texture unit of this
	// material on first insertion; the unit stays stable afterwards.
	//
	// Parameters:
	//   - name: the uniform name
	//   - value: the new value
	SetUniform(name string, value uniform.Value)

	// PushUniforms batch-inserts shared uniforms by name.
	//
	// Parameters:
	//   - uniforms: name to value map to insert
	PushUniforms(uniforms map[string]uniform.Value)

	// RegisterAttributeLocation looks up and caches an attribute location
	// if it is not already cached. Idempotent: a cache hit performs no GPU
	// query, so meshes may register their buffer names every frame.
	//
	// Parameters:
	//   - ctx: the GPU context
	//   - name: the attribute name
	//
	// Returns:
	//   - gpu.AttribLocation: the cached location (AttribLocationNone if
	//     the program does not declare the attribute)
	RegisterAttributeLocation(ctx gpu.Context, name string) gpu.AttribLocation

	// AttributeLocation returns the cached location for an attribute name.
	//
	// Returns:
	//   - gpu.AttribLocation: the cached location
	//   - bool: false if the name was never registered
	AttributeLocation(name string) (gpu.AttribLocation, bool)

	// LookupLocations resolves the global uniform locations (camera, world
	// transform, light array slots sized by config) and the locations of
	// every shared uniform. Must run once before first use; idempotent
	// afterwards except that a config with more lights resolves the
	// additional slots.
	//
	// Parameters:
	//   - ctx: the GPU context
	//   - config: the active light counts
	LookupLocations(ctx gpu.Context, config LightConfig)

	// GlobalLocations returns the resolved global uniform locations.
	GlobalLocations() *GlobalUniformLocations

	// SetUniformsToContext uploads every shared uniform using its cached
	// location. Best effort: an individual failure (unresolved location,
	// missing texture unit) is logged as a warning and the rest of the
	// batch continues.
	//
	// Parameters:
	//   - ctx: the GPU context
	SetUniformsToContext(ctx gpu.Context)

	// AllocateTextureUnit reserves the next texture unit of this material.
	// Units are unique among the samplers bound for one draw call and
	// stable once handed out; material instances draw from the same pool
	// as the parent's shared samplers.
	//
	// Returns:
	//   - int: the reserved unit index
	AllocateTextureUnit() int

	// Destroy deletes the GPU program and invalidates all cached
	// locations. The material is unusable afterwards.
	//
	// Parameters:
	//   - ctx: the GPU context
	Destroy(ctx gpu.Context)
}

var _ Material = &materialImpl{}

// New compiles and links a material's shader pair immediately and wraps the
// resulting program. Construction is the only time compilation happens.
//
// Parameters:
//   - ctx: the GPU context
//   - name: the material's declared name/id, used in error reports
//   - vertexSrc: vertex shader source
//   - fragmentSrc: fragment shader source
//   - options: functional options (transparency, lit flag, initial uniforms)
//
// Returns:
//   - Material: the constructed material
//   - error: *CompileError or *LinkError with the driver log attached
func New(ctx gpu.Context, name, vertexSrc, fragmentSrc string, options ...MaterialBuilderOption) (Material, error) {
	vertex, err := ctx.CompileShader(gpu.VertexShader, vertexSrc)
	if err != nil {
		return nil, &CompileError{Material: name, Stage: gpu.VertexShader, Log: err.Error()}
	}
	fragment, err := ctx.CompileShader(gpu.FragmentShader, fragmentSrc)
	if err != nil {
		ctx.DeleteShader(vertex)
		return nil, &CompileError{Material: name, Stage: gpu.FragmentShader, Log: err.Error()}
	}
	program, err := ctx.LinkProgram(vertex, fragment)
	ctx.DeleteShader(vertex)
	ctx.DeleteShader(fragment)
	if err != nil {
		return nil, &LinkError{Material: name, Log: err.Error()}
	}

	m := &materialImpl{
		name:            name,
		program:         program,
		sharedUniforms:  make(map[string]*uniform.Uniform),
		attribLocations: make(map[string]gpu.AttribLocation),
		globals:         newGlobalUniformLocations(),
	}
	for _, opt := range options {
		opt(m)
	}
	return m, nil
}

func (m *materialImpl) Name() string {
	return m.name
}

func (m *materialImpl) Program() gpu.Program {
	return m.program
}

func (m *materialImpl) Transparent() bool {
	return m.transparent
}

func (m *materialImpl) SetTransparent(transparent bool) {
	m.transparent = transparent
}

func (m *materialImpl) Lit() bool {
	return m.lit
}

func (m *materialImpl) HasUniform(name string) bool {
	_, ok := m.sharedUniforms[name]
	return ok
}

func (m *materialImpl) Uniform(name string) *uniform.Uniform {
	return m.sharedUniforms[name]
}

func (m *materialImpl) SetUniform(name string, value uniform.Value) {
	if existing, ok := m.sharedUniforms[name]; ok {
		existing.SetValue(value)
		m.assignTextureUnit(existing)
		return
	}
	u := uniform.New(name, value)
	m.assignTextureUnit(u)
	m.sharedUniforms[name] = u
}

func (m *materialImpl) PushUniforms(uniforms map[string]uniform.Value) {
	for name, value := range uniforms {
		m.SetUniform(name, value)
	}
}

// assignTextureUnit hands a sampler uniform its stable unit on first sight.
func (m *materialImpl) assignTextureUnit(u *uniform.Uniform) {
	if u.Value().Kind() != uniform.KindTexture || u.TextureUnit() >= 0 {
		return
	}
	u.SetTextureUnit(m.AllocateTextureUnit())
}

func (m *materialImpl) AllocateTextureUnit() int {
	unit := m.nextTextureUnit
	m.nextTextureUnit++
	return unit
}

func (m *materialImpl) RegisterAttributeLocation(ctx gpu.Context, name string) gpu.AttribLocation {
	if location, ok := m.attribLocations[name]; ok {
		return location
	}
	location := ctx.GetAttribLocation(m.program, name)
	m.attribLocations[name] = location
	return location
}

func (m *materialImpl) AttributeLocation(name string) (gpu.AttribLocation, bool) {
	location, ok := m.attribLocations[name]
	return location, ok
}

func (m *materialImpl) LookupLocations(ctx gpu.Context, config LightConfig) {
	m.globals.lookup(ctx, m.program, config)
	if config.Directional > m.lightConfig.Directional {
		m.lightConfig.Directional = config.Directional
	}
	if config.Point > m.lightConfig.Point {
		m.lightConfig.Point = config.Point
	}
	if config.Spot > m.lightConfig.Spot {
		m.lightConfig.Spot = config.Spot
	}
	for _, u := range m.sharedUniforms {
		u.LookupLocation(ctx, m.program)
	}
}

func (m *materialImpl) GlobalLocations() *GlobalUniformLocations {
	return &m.globals
}

func (m *materialImpl) SetUniformsToContext(ctx gpu.Context) {
	for _, u := range m.sharedUniforms {
		if err := u.SetToContext(ctx); err != nil {
			m.log().Warn("skipping shared uniform", "material", m.name, "error", err)
		}
	}
}

func (m *materialImpl) Destroy(ctx gpu.Context) {
	ctx.DeleteProgram(m.program)
	m.program = 0
	m.attribLocations = make(map[string]gpu.AttribLocation)
	m.globals = newGlobalUniformLocations()
	m.lightConfig = LightConfig{}
}

// log returns the injected logger, falling back to the engine-wide one.
func (m *materialImpl) log() *slog.Logger {
	if m.logger != nil {
		return m.logger
	}
	return wtvr3d.Logger()
}
