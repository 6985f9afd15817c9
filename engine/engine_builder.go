package engine

import (
	"time"

	"github.com/wtvr-engine/wtvr3d/engine/renderer"
	"github.com/wtvr-engine/wtvr3d/engine/scene"
	"github.com/wtvr-engine/wtvr3d/engine/window"
)

// EngineBuilderOption is a functional option for configuring an Engine.
// Use the With* functions to create options that are applied directly to the
// engine instance.
type EngineBuilderOption func(*engineImpl)

// WithWindow sets the window the engine polls and presents through. Required
// before Run.
//
// Parameters:
//   - w: a pre-configured Window instance
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithWindow(w window.Window) EngineBuilderOption {
	return func(e *engineImpl) {
		e.window = w
	}
}

// WithRenderer sets the renderer the engine draws with each frame. Required
// before Run.
//
// Parameters:
//   - r: a pre-configured Renderer instance
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithRenderer(r renderer.Renderer) EngineBuilderOption {
	return func(e *engineImpl) {
		e.renderer = r
	}
}

// WithScene sets the scene the engine updates and renders. Required before
// Run.
//
// Parameters:
//   - s: the Scene to drive
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithScene(s scene.Scene) EngineBuilderOption {
	return func(e *engineImpl) {
		e.scene = s
	}
}

// WithTickRate sets the fixed tick rate in ticks per second. The tick
// callback fires at this rate for game logic updates. Values <= 0 are
// treated as the default (60Hz).
//
// Parameters:
//   - fps: target ticks per second (default 60)
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithTickRate(fps float64) EngineBuilderOption {
	return func(e *engineImpl) {
		if fps <= 0 {
			fps = 60.0
		}
		e.tickRate = time.Second / time.Duration(fps)
	}
}

// WithFrameLimit sets an optional render frame rate cap in frames per
// second. Pass 0 to uncap the render loop (default).
//
// Parameters:
//   - fps: maximum render frames per second (0 = uncapped)
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithFrameLimit(fps float64) EngineBuilderOption {
	return func(e *engineImpl) {
		if fps <= 0 {
			e.frameLimit = 0
			return
		}
		e.frameLimit = time.Second / time.Duration(fps)
	}
}

// WithProfiling enables or disables frame statistics output.
//
// Parameters:
//   - enabled: if true, enables frame statistics logging
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithProfiling(enabled bool) EngineBuilderOption {
	return func(e *engineImpl) {
		e.profilingEnabled = enabled
	}
}
