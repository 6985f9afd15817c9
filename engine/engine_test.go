package engine

import (
	"errors"
	"testing"

	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/wtvr-engine/wtvr3d/common"
	"github.com/wtvr-engine/wtvr3d/engine/light"
	"github.com/wtvr-engine/wtvr3d/engine/renderer"
	"github.com/wtvr-engine/wtvr3d/engine/scene"
)

// fakeWindow closes itself after a fixed number of polled frames.
type fakeWindow struct {
	framesLeft int
	swaps      int
}

func (w *fakeWindow) Size() (int32, int32) { return 640, 480 }
func (w *fakeWindow) ShouldClose() bool    { return w.framesLeft <= 0 }
func (w *fakeWindow) PollEvents()          { w.framesLeft-- }
func (w *fakeWindow) SwapBuffers()         { w.swaps++ }
func (w *fakeWindow) SetResizeCallback(func(width, height int)) {
}
func (w *fakeWindow) SetKeyCallback(func(key glfw.Key, action glfw.Action)) {
}
func (w *fakeWindow) Destroy() {}

// fakeRenderer counts frames and can fail or call back on demand.
type fakeRenderer struct {
	frames  int
	err     error
	onFrame func()
}

func (r *fakeRenderer) RenderFrame(scene.Scene) error {
	r.frames++
	if r.onFrame != nil {
		r.onFrame()
	}
	return r.err
}

func (r *fakeRenderer) Lights() light.Repository   { return nil }
func (r *fakeRenderer) SetClearColor(common.Color) {}

var _ renderer.Renderer = &fakeRenderer{}

func TestRunRequiresWiring(t *testing.T) {
	e := NewEngine(WithWindow(&fakeWindow{}))
	if err := e.Run(); !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("expected ErrNotConfigured, got %v", err)
	}
}

func TestRunStopsWhenWindowCloses(t *testing.T) {
	win := &fakeWindow{framesLeft: 3}
	r := &fakeRenderer{}
	e := NewEngine(
		WithWindow(win),
		WithRenderer(r),
		WithScene(scene.NewScene()),
	)

	if err := e.Run(); err != nil {
		t.Fatalf("run: %v", err)
	}
	if r.frames != 3 {
		t.Fatalf("expected 3 rendered frames, got %d", r.frames)
	}
	if win.swaps != 3 {
		t.Fatalf("expected 3 buffer swaps, got %d", win.swaps)
	}
}

func TestQuitStopsLoopAfterCurrentFrame(t *testing.T) {
	win := &fakeWindow{framesLeft: 1000}
	r := &fakeRenderer{}
	e := NewEngine(
		WithWindow(win),
		WithRenderer(r),
		WithScene(scene.NewScene()),
	)
	r.onFrame = e.Quit

	if err := e.Run(); err != nil {
		t.Fatalf("run: %v", err)
	}
	if r.frames != 1 {
		t.Fatalf("expected 1 rendered frame, got %d", r.frames)
	}
}

func TestRunSurfacesRenderFailures(t *testing.T) {
	boom := errors.New("boom")
	e := NewEngine(
		WithWindow(&fakeWindow{framesLeft: 10}),
		WithRenderer(&fakeRenderer{err: boom}),
		WithScene(scene.NewScene()),
	)
	if err := e.Run(); !errors.Is(err, boom) {
		t.Fatalf("expected render error, got %v", err)
	}
}
