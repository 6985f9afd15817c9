// Package wtvr3d is a lightweight, modular 3D rendering engine built around
// a WebGL-style binding protocol.
//
// The engine is split into small packages under engine/:
//
//   - engine/gpu: the graphics-context capability the engine is given
//     (buffer/texture/program creation, location queries, uniform uploads,
//     draw submission), with an OpenGL backend and a recording test fake
//   - engine/uniform, engine/buffer: typed uniform values and GPU buffer
//     wrappers with memoized locations
//   - engine/mesh, engine/material: geometry payloads and compiled shader
//     programs with shared/per-instance uniforms
//   - engine/scene: the transform arena with lazy world-matrix propagation
//   - engine/light: per-frame light aggregation
//   - engine/asset: the registry owning canonical mesh/material/texture
//     instances
//   - engine/renderer: the per-frame draw pipeline
//   - engine/window, engine: the GLFW window and the main loop driving the
//     tick callback, the renderer, and presentation
//
// Scheduling is strictly single-threaded and frame-driven: one cooperative
// tick runs the scene-graph pass, the lighting pass, and the rendering pass
// in that fixed order. The root package only carries the injected logger
// shared by the engine packages; see SetLogger.
package wtvr3d
