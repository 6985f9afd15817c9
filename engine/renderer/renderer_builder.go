package renderer

import (
	"log/slog"

	"github.com/wtvr-engine/wtvr3d/common"
	"github.com/wtvr-engine/wtvr3d/engine/asset"
	"github.com/wtvr-engine/wtvr3d/engine/gpu"
)

// RendererBuilderOption is a functional option applied to a renderer during
// construction via NewRenderer.
type RendererBuilderOption func(*rendererImpl)

// WithContext sets the GPU context the renderer draws through. Required.
//
// Parameters:
//   - ctx: the GPU context
//
// Returns:
//   - RendererBuilderOption: a function that sets the context
func WithContext(ctx gpu.Context) RendererBuilderOption {
	return func(r *rendererImpl) {
		r.ctx = ctx
	}
}

// WithRegistry sets the asset registry the renderer resolves material and
// mesh indices against. Required.
//
// Parameters:
//   - registry: the asset registry
//
// Returns:
//   - RendererBuilderOption: a function that sets the registry
func WithRegistry(registry asset.Registry) RendererBuilderOption {
	return func(r *rendererImpl) {
		r.registry = registry
	}
}

// WithSurface sets the render target used for viewport and aspect ratio
// tracking. Without a surface the renderer never touches the viewport.
//
// Parameters:
//   - surface: the render target
//
// Returns:
//   - RendererBuilderOption: a function that sets the surface
func WithSurface(surface Surface) RendererBuilderOption {
	return func(r *rendererImpl) {
		r.surface = surface
	}
}

// WithClearColor sets the background color.
//
// Parameters:
//   - color: the clear color
//
// Returns:
//   - RendererBuilderOption: a function that sets the clear color
func WithClearColor(color common.Color) RendererBuilderOption {
	return func(r *rendererImpl) {
		r.clearColor = color
	}
}

// WithLogger overrides the engine-wide logger for render time warnings.
//
// Parameters:
//   - logger: the logger to use
//
// Returns:
//   - RendererBuilderOption: a function that sets the logger
func WithLogger(logger *slog.Logger) RendererBuilderOption {
	return func(r *rendererImpl) {
		r.logger = logger
	}
}
