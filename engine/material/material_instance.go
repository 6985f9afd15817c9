package material

import (
	"log/slog"

	wtvr3d "github.com/wtvr-engine/wtvr3d"
	"github.com/wtvr-engine/wtvr3d/engine/gpu"
	"github.com/wtvr-engine/wtvr3d/engine/uniform"
)

// materialInstanceImpl is the implementation of the MaterialInstance
// interface.
type materialInstanceImpl struct {
	id       string
	parent   Material
	uniforms map[string]*uniform.Uniform
	logger   *slog.Logger
}

// MaterialInstance layers per-object uniform overrides on top of one shared
// parent Material. Instances never own a program; they resolve locations
// against the parent's and draw texture units from the parent's pool, so a
// unit is never reused between a shared sampler and an instance sampler.
type MaterialInstance interface {
	// ID returns the instance's registry id.
	ID() string

	// Parent returns the shared material this instance overrides.
	Parent() Material

	// SetUniform sets a per-instance uniform value.
	//
	// When the name collides with a shared uniform of the parent, the call
	// mutates the parent's uniform instead, which is visible to every
	// instance of that material. Use distinct names for values that must
	// stay per-instance.
	//
	// Parameters:
	//   - name: the uniform name
	//   - value: the new value
	SetUniform(name string, value uniform.Value)

	// PushUniforms batch-sets uniforms by name, with the same shared-name
	// redirect rule as SetUniform.
	//
	// Parameters:
	//   - uniforms: name to value map to set
	PushUniforms(uniforms map[string]uniform.Value)

	// Uniform returns the instance-local uniform with the given name, or
	// nil. Shared uniforms of the parent are not visible here.
	Uniform(name string) *uniform.Uniform

	// LookupLocations resolves every instance-local uniform against the
	// parent's program. Idempotent per uniform.
	//
	// Parameters:
	//   - ctx: the GPU context
	LookupLocations(ctx gpu.Context)

	// SetUniformsToContext uploads the instance-local uniforms using their
	// cached locations. Best effort: individual failures are logged as
	// warnings and the rest of the batch continues.
	//
	// Parameters:
	//   - ctx: the GPU context
	SetUniformsToContext(ctx gpu.Context)
}

var _ MaterialInstance = &materialInstanceImpl{}

// NewInstance creates a per-object view of a shared material.
//
// Parameters:
//   - id: the instance's registry id
//   - parent: the shared material
//   - options: functional options (initial uniforms, logger)
//
// Returns:
//   - MaterialInstance: the instance
func NewInstance(id string, parent Material, options ...InstanceBuilderOption) MaterialInstance {
	mi := &materialInstanceImpl{
		id:       id,
		parent:   parent,
		uniforms: make(map[string]*uniform.Uniform),
	}
	for _, opt := range options {
		opt(mi)
	}
	return mi
}

func (mi *materialInstanceImpl) ID() string {
	return mi.id
}

func (mi *materialInstanceImpl) Parent() Material {
	return mi.parent
}

func (mi *materialInstanceImpl) SetUniform(name string, value uniform.Value) {
	if mi.parent.HasUniform(name) {
		mi.parent.SetUniform(name, value)
		return
	}
	if existing, ok := mi.uniforms[name]; ok {
		existing.SetValue(value)
		mi.assignTextureUnit(existing)
		return
	}
	u := uniform.New(name, value)
	mi.assignTextureUnit(u)
	mi.uniforms[name] = u
}

func (mi *materialInstanceImpl) PushUniforms(uniforms map[string]uniform.Value) {
	for name, value := range uniforms {
		mi.SetUniform(name, value)
	}
}

// assignTextureUnit reserves a unit from the parent's pool for sampler
// uniforms that do not have one yet.
func (mi *materialInstanceImpl) assignTextureUnit(u *uniform.Uniform) {
	if u.Value().Kind() != uniform.KindTexture || u.TextureUnit() >= 0 {
		return
	}
	u.SetTextureUnit(mi.parent.AllocateTextureUnit())
}

func (mi *materialInstanceImpl) Uniform(name string) *uniform.Uniform {
	return mi.uniforms[name]
}

func (mi *materialInstanceImpl) LookupLocations(ctx gpu.Context) {
	for _, u := range mi.uniforms {
		u.LookupLocation(ctx, mi.parent.Program())
	}
}

func (mi *materialInstanceImpl) SetUniformsToContext(ctx gpu.Context) {
	for _, u := range mi.uniforms {
		if err := u.SetToContext(ctx); err != nil {
			mi.log().Warn("skipping instance uniform", "instance", mi.id, "material", mi.parent.Name(), "error", err)
		}
	}
}

func (mi *materialInstanceImpl) log() *slog.Logger {
	if mi.logger != nil {
		return mi.logger
	}
	return wtvr3d.Logger()
}

// InstanceBuilderOption is a functional option for configuring a
// MaterialInstance at construction.
type InstanceBuilderOption func(*materialInstanceImpl)

// WithInstanceUniforms seeds the instance's uniforms, applying the
// shared-name redirect rule.
//
// Parameters:
//   - uniforms: name to value map of uniforms
//
// Returns:
//   - InstanceBuilderOption: the option to apply
func WithInstanceUniforms(uniforms map[string]uniform.Value) InstanceBuilderOption {
	return func(mi *materialInstanceImpl) {
		mi.PushUniforms(uniforms)
	}
}

// WithInstanceLogger overrides the engine-wide logger for this instance's
// render time warnings.
//
// Parameters:
//   - logger: the logger to use
//
// Returns:
//   - InstanceBuilderOption: the option to apply
func WithInstanceLogger(logger *slog.Logger) InstanceBuilderOption {
	return func(mi *materialInstanceImpl) {
		mi.logger = logger
	}
}
