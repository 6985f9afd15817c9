// Package uniform implements the typed value wrapper uploaded to shader
// uniforms, and the named uniform slot that memoizes its GPU location.
package uniform

import (
	"fmt"

	"github.com/wtvr-engine/wtvr3d/engine/gpu"
)

// Uniform is a named shader input: a type-tagged value plus the memoized
// location it resolves to in a specific program. Sampler uniforms carry the
// texture unit assigned to them; the unit is stable across frames once set.
type Uniform struct {
	name        string
	location    gpu.UniformLocation
	located     bool
	value       Value
	textureUnit int
}

// New creates an unresolved uniform. The location is looked up lazily via
// LookupLocation.
//
// Parameters:
//   - name: the uniform name as declared in the shader
//   - value: the initial value
//
// Returns:
//   - *Uniform: the uniform slot
func New(name string, value Value) *Uniform {
	return &Uniform{name: name, value: value, textureUnit: -1}
}

// NewWithLocation creates a uniform with a pre-resolved location, used when
// the caller already holds a cached location (light array slots).
//
// Parameters:
//   - name: the uniform name, may be empty for throwaway upload slots
//   - location: the resolved location
//   - value: the value to upload
//
// Returns:
//   - *Uniform: the uniform slot
func NewWithLocation(name string, location gpu.UniformLocation, value Value) *Uniform {
	return &Uniform{name: name, location: location, located: true, value: value, textureUnit: -1}
}

// Name returns the uniform's declared name.
func (u *Uniform) Name() string {
	return u.name
}

// Value returns the current value.
func (u *Uniform) Value() Value {
	return u.value
}

// SetValue replaces the value without touching the cached location.
func (u *Uniform) SetValue(value Value) {
	u.value = value
}

// TextureUnit returns the assigned texture unit, or -1 if none is assigned.
func (u *Uniform) TextureUnit() int {
	return u.textureUnit
}

// SetTextureUnit assigns the texture unit used by sampler values. Assigning
// a unit is a one-time setup step; the unit stays stable afterwards so the
// texture does not have to be rebound redundantly.
func (u *Uniform) SetTextureUnit(unit int) {
	u.textureUnit = unit
}

// LookupLocation resolves the uniform location against a program, caching
// the result. The underlying query runs at most once per uniform, even when
// the program does not declare the name.
//
// Parameters:
//   - ctx: the GPU context
//   - program: the linked program to resolve against
func (u *Uniform) LookupLocation(ctx gpu.Context, program gpu.Program) {
	if u.located {
		return
	}
	u.location = ctx.GetUniformLocation(program, u.name)
	u.located = true
}

// Location returns the cached location and whether lookup has run.
//
// Returns:
//   - gpu.UniformLocation: the cached location (UniformLocationNone if the
//     program does not declare the uniform)
//   - bool: true once LookupLocation has resolved the uniform
func (u *Uniform) Location() (gpu.UniformLocation, bool) {
	return u.location, u.located
}

// SetToContext uploads the current value using the cached location.
//
// Returns:
//   - error: error naming the uniform if the location is unresolved or the
//     value itself fails to upload
func (u *Uniform) SetToContext(ctx gpu.Context) error {
	if !u.located {
		return fmt.Errorf("uniform %q: location has not been looked up", u.name)
	}
	if u.location == gpu.UniformLocationNone {
		return fmt.Errorf("uniform %q: not declared by the program", u.name)
	}
	if err := u.value.Upload(ctx, u.location, u.textureUnit); err != nil {
		return fmt.Errorf("uniform %q could not be set: %w", u.name, err)
	}
	return nil
}
