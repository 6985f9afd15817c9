package material

import (
	"log/slog"

	"github.com/wtvr-engine/wtvr3d/engine/uniform"
)

// MaterialBuilderOption is a functional option for configuring a Material at
// construction.
type MaterialBuilderOption func(*materialImpl)

// WithTransparency marks the material semi-transparent. Transparent
// materials render after every opaque material, with blending enabled.
//
// Returns:
//   - MaterialBuilderOption: the option to apply
func WithTransparency() MaterialBuilderOption {
	return func(m *materialImpl) {
		m.transparent = true
	}
}

// WithLighting marks the material as lit, so the renderer resolves and
// uploads the scene's light uniforms for it.
//
// Returns:
//   - MaterialBuilderOption: the option to apply
func WithLighting() MaterialBuilderOption {
	return func(m *materialImpl) {
		m.lit = true
	}
}

// WithUniforms seeds the material's shared uniforms. Sampler values receive
// their texture units in map iteration order; pass textures through
// SetUniform instead when the unit assignment order matters.
//
// Parameters:
//   - uniforms: name to value map of shared uniforms
//
// Returns:
//   - MaterialBuilderOption: the option to apply
func WithUniforms(uniforms map[string]uniform.Value) MaterialBuilderOption {
	return func(m *materialImpl) {
		m.PushUniforms(uniforms)
	}
}

// WithLogger overrides the engine-wide logger for this material's render
// time warnings.
//
// Parameters:
//   - logger: the logger to use
//
// Returns:
//   - MaterialBuilderOption: the option to apply
func WithLogger(logger *slog.Logger) MaterialBuilderOption {
	return func(m *materialImpl) {
		m.logger = logger
	}
}
