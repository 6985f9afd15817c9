// Package engine ties the window, renderer, and scene together into the
// main loop. The loop is single threaded and runs on the goroutine that
// created the window, which OpenGL requires anyway.
package engine

import (
	"errors"
	"time"

	"github.com/wtvr-engine/wtvr3d/engine/profiler"
	"github.com/wtvr-engine/wtvr3d/engine/renderer"
	"github.com/wtvr-engine/wtvr3d/engine/scene"
	"github.com/wtvr-engine/wtvr3d/engine/window"
)

// ErrNotConfigured is returned by Run when the engine is missing its window,
// renderer, or scene.
var ErrNotConfigured = errors.New("engine: window, renderer, and scene are required")

// engineImpl implements the Engine interface.
type engineImpl struct {
	window   window.Window
	renderer renderer.Renderer
	scene    scene.Scene

	profiler         *profiler.Profiler
	profilingEnabled bool

	tickRate     time.Duration
	tickCallback func(deltaTime float32)

	frameLimit time.Duration // minimum frame duration; 0 = uncapped

	quitting bool
}

// Engine owns the main loop. Each frame it pumps window events, fires the
// fixed-step tick callback, renders the scene, and presents.
type Engine interface {
	// Window returns the underlying window.
	//
	// Returns:
	//   - window.Window: the window instance
	Window() window.Window

	// Renderer returns the renderer driving the frame.
	//
	// Returns:
	//   - renderer.Renderer: the renderer instance
	Renderer() renderer.Renderer

	// Scene returns the scene rendered each frame.
	//
	// Returns:
	//   - scene.Scene: the scene instance
	Scene() scene.Scene

	// EnableProfiler enables frame statistics output to the engine logger.
	EnableProfiler()

	// DisableProfiler disables frame statistics output.
	DisableProfiler()

	// SetTickRate sets the fixed tick rate in ticks per second. The tick
	// callback fires at this rate regardless of the render frame rate.
	//
	// Parameters:
	//   - fps: target ticks per second (defaults to 60 if <= 0)
	SetTickRate(fps float64)

	// SetTickCallback registers the function called each fixed tick. Use
	// this for game logic, input processing, and animation updates.
	//
	// Parameters:
	//   - callback: function to call at the tick rate, receiving the step
	//     duration in seconds
	SetTickCallback(callback func(deltaTime float32))

	// SetFrameLimit sets an optional render frame rate cap in frames per
	// second. Pass 0 to uncap the render loop (default).
	//
	// Parameters:
	//   - fps: maximum render frames per second (0 = uncapped)
	SetFrameLimit(fps float64)

	// Run starts the main loop and blocks until the window closes or Quit
	// is called. It must run on the goroutine that created the window.
	//
	// Returns:
	//   - error: the first hard render failure, or nil on a clean exit
	Run() error

	// Quit asks the main loop to exit after the current frame. Safe to
	// call from a tick or key callback.
	Quit()
}

var _ Engine = &engineImpl{}

// NewEngine creates an engine with the provided options. A window, renderer,
// and scene are all required before Run.
//
// Parameters:
//   - options: functional options for engine configuration
//
// Returns:
//   - Engine: the newly created engine
func NewEngine(options ...EngineBuilderOption) Engine {
	e := &engineImpl{
		profiler: profiler.NewProfiler(),
		tickRate: time.Second / 60,
	}
	for _, option := range options {
		option(e)
	}
	return e
}

func (e *engineImpl) Window() window.Window {
	return e.window
}

func (e *engineImpl) Renderer() renderer.Renderer {
	return e.renderer
}

func (e *engineImpl) Scene() scene.Scene {
	return e.scene
}

// Run drives the frame loop. Ticks run on a fixed-step accumulator so game
// logic advances at the configured rate even when rendering is slower or
// faster. Render errors that indicate missing wiring are returned; per-entity
// problems are already logged and skipped inside the renderer.
func (e *engineImpl) Run() error {
	if e.window == nil || e.renderer == nil || e.scene == nil {
		return ErrNotConfigured
	}

	lastFrame := time.Now()
	var accumulator time.Duration

	for !e.quitting && !e.window.ShouldClose() {
		e.window.PollEvents()

		now := time.Now()
		frameDelta := now.Sub(lastFrame)
		lastFrame = now

		if e.tickCallback != nil {
			accumulator += frameDelta
			step := float32(e.tickRate.Seconds())
			for accumulator >= e.tickRate {
				e.tickCallback(step)
				accumulator -= e.tickRate
			}
		}

		if err := e.renderer.RenderFrame(e.scene); err != nil {
			return err
		}
		e.window.SwapBuffers()

		if e.profilingEnabled {
			e.profiler.Tick()
		}

		if e.frameLimit > 0 {
			if remaining := e.frameLimit - time.Since(now); remaining > 0 {
				time.Sleep(remaining)
			}
		}
	}
	return nil
}

func (e *engineImpl) Quit() {
	e.quitting = true
}

func (e *engineImpl) EnableProfiler() {
	e.profilingEnabled = true
}

func (e *engineImpl) DisableProfiler() {
	e.profilingEnabled = false
}

func (e *engineImpl) SetTickRate(fps float64) {
	if fps <= 0 {
		fps = 60
	}
	e.tickRate = time.Second / time.Duration(fps)
}

func (e *engineImpl) SetTickCallback(callback func(deltaTime float32)) {
	e.tickCallback = callback
}

func (e *engineImpl) SetFrameLimit(fps float64) {
	if fps <= 0 {
		e.frameLimit = 0
		return
	}
	e.frameLimit = time.Second / time.Duration(fps)
}
