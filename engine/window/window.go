// Package window manages the GLFW window and the OpenGL context behind the
// engine's render surface. Everything here must run on the main OS thread;
// NewWindow locks the calling goroutine to it.
package window

import (
	"fmt"
	"runtime"

	"github.com/go-gl/glfw/v3.3/glfw"
)

// engineWindow is the implementation of the Window interface.
type engineWindow struct {
	window *glfw.Window

	title  string
	width  int
	height int

	onResize func(width, height int)
	onKey    func(key glfw.Key, action glfw.Action)
}

// Window owns the native window and its OpenGL context. It doubles as the
// renderer's surface: Size reports the drawable framebuffer size, which on
// high-DPI displays differs from the window size.
type Window interface {
	// Size returns the framebuffer size in device pixels.
	//
	// Returns:
	//   - width: framebuffer width in pixels
	//   - height: framebuffer height in pixels
	Size() (width, height int32)

	// ShouldClose reports whether the user asked to close the window.
	ShouldClose() bool

	// PollEvents pumps the platform event queue. Call once per frame.
	PollEvents()

	// SwapBuffers presents the rendered frame.
	SwapBuffers()

	// SetResizeCallback sets the function called when the framebuffer is
	// resized.
	//
	// Parameters:
	//   - callback: function receiving the new size in pixels, or nil to
	//     disable
	SetResizeCallback(callback func(width, height int))

	// SetKeyCallback sets the function called on key press and release.
	//
	// Parameters:
	//   - callback: function receiving the key and action, or nil to
	//     disable
	SetKeyCallback(callback func(key glfw.Key, action glfw.Action))

	// Destroy closes the window and terminates the platform layer.
	Destroy()
}

var _ Window = &engineWindow{}

// NewWindow creates the window with an OpenGL 4.1 core context made current
// on the calling goroutine, which is locked to its OS thread.
//
// Parameters:
//   - options: functional options for title and size
//
// Returns:
//   - Window: the created window
//   - error: platform or context creation failure
func NewWindow(options ...WindowBuilderOption) (Window, error) {
	runtime.LockOSThread()

	w := &engineWindow{
		title:  "wtvr3d",
		width:  1280,
		height: 720,
	}
	for _, option := range options {
		option(w)
	}

	if err := glfw.Init(); err != nil {
		return nil, fmt.Errorf("initializing glfw: %w", err)
	}

	glfw.WindowHint(glfw.ContextVersionMajor, 4)
	glfw.WindowHint(glfw.ContextVersionMinor, 1)
	glfw.WindowHint(glfw.OpenGLProfile, glfw.OpenGLCoreProfile)
	glfw.WindowHint(glfw.OpenGLForwardCompatible, glfw.True)
	glfw.WindowHint(glfw.Resizable, glfw.True)

	win, err := glfw.CreateWindow(w.width, w.height, w.title, nil, nil)
	if err != nil {
		glfw.Terminate()
		return nil, fmt.Errorf("creating window: %w", err)
	}
	win.MakeContextCurrent()
	glfw.SwapInterval(1)

	w.window = win
	win.SetFramebufferSizeCallback(func(_ *glfw.Window, width, height int) {
		if w.onResize != nil {
			w.onResize(width, height)
		}
	})
	win.SetKeyCallback(func(_ *glfw.Window, key glfw.Key, _ int, action glfw.Action, _ glfw.ModifierKey) {
		if w.onKey != nil {
			w.onKey(key, action)
		}
	})

	return w, nil
}

func (w *engineWindow) Size() (int32, int32) {
	width, height := w.window.GetFramebufferSize()
	return int32(width), int32(height)
}

func (w *engineWindow) ShouldClose() bool {
	return w.window.ShouldClose()
}

func (w *engineWindow) PollEvents() {
	glfw.PollEvents()
}

func (w *engineWindow) SwapBuffers() {
	w.window.SwapBuffers()
}

func (w *engineWindow) SetResizeCallback(callback func(width, height int)) {
	w.onResize = callback
}

func (w *engineWindow) SetKeyCallback(callback func(key glfw.Key, action glfw.Action)) {
	w.onKey = callback
}

func (w *engineWindow) Destroy() {
	w.window.Destroy()
	glfw.Terminate()
}
