// Package renderer implements the frame tick: it walks the scene, rebuilds
// the light repository, groups renderable entities by material and mesh,
// and issues the draw calls with a minimal number of program switches.
package renderer

import (
	"errors"
	"log/slog"
	"sort"

	"github.com/go-gl/mathgl/mgl32"

	wtvr3d "github.com/wtvr-engine/wtvr3d"
	"github.com/wtvr-engine/wtvr3d/common"
	"github.com/wtvr-engine/wtvr3d/engine/asset"
	"github.com/wtvr-engine/wtvr3d/engine/camera"
	"github.com/wtvr-engine/wtvr3d/engine/gpu"
	"github.com/wtvr-engine/wtvr3d/engine/light"
	"github.com/wtvr-engine/wtvr3d/engine/material"
	"github.com/wtvr-engine/wtvr3d/engine/scene"
)

// ErrNoContext is returned when a renderer is built without a GPU context.
var ErrNoContext = errors.New("renderer has no gpu context")

// ErrNoRegistry is returned when a renderer is built without an asset
// registry.
var ErrNoRegistry = errors.New("renderer has no asset registry")

// ErrNoCamera is returned by RenderFrame when the scene has no main camera.
var ErrNoCamera = errors.New("scene has no main camera")

// Surface is the render target the engine draws into. The window layer
// implements it; tests substitute a fixed-size fake.
type Surface interface {
	// Size returns the drawable size in device pixels.
	//
	// Returns:
	//   - width: drawable width in pixels
	//   - height: drawable height in pixels
	Size() (width, height int32)
}

// drawItem is one entity scheduled for drawing: its instance and world
// matrix under a (material, mesh) group.
type drawItem struct {
	instanceIndex int
	world         mgl32.Mat4
}

// meshGroup collects the instances drawn with one mesh under one material.
type meshGroup struct {
	meshIndex int
	items     []drawItem
}

// materialGroup collects the mesh groups drawn with one material. Groups
// are ordered opaque first so transparent materials blend over a complete
// depth buffer.
type materialGroup struct {
	materialIndex int
	meshes        map[int]*meshGroup
}

// rendererImpl is the implementation of the Renderer interface.
type rendererImpl struct {
	ctx        gpu.Context
	registry   asset.Registry
	surface    Surface
	logger     *slog.Logger
	lights     light.Repository
	clearColor common.Color

	lastWidth  int32
	lastHeight int32
}

// Renderer draws a scene once per tick. Renderers are single-threaded: all
// scene mutation and every RenderFrame call happen on the same goroutine.
//
// Failures at render time are soft: a mesh with an unresolved attribute or
// an instance with a broken uniform is logged and skipped, and the rest of
// the frame draws. Hard failures belong to asset registration, before the
// frame loop starts.
type Renderer interface {
	// RenderFrame draws one frame of the scene: refreshes world matrices,
	// rebuilds the light repository, and draws every enabled mesh entity
	// grouped by material and mesh, opaque materials before transparent
	// ones.
	//
	// Parameters:
	//   - s: the scene to draw
	//
	// Returns:
	//   - error: ErrNoCamera when the scene cannot be drawn at all;
	//     per-entity failures are logged and skipped instead
	RenderFrame(s scene.Scene) error

	// Lights returns the repository rebuilt by the last frame.
	Lights() light.Repository

	// SetClearColor sets the background color for subsequent frames.
	//
	// Parameters:
	//   - color: the clear color
	SetClearColor(color common.Color)
}

var _ Renderer = &rendererImpl{}

// NewRenderer creates a renderer. A GPU context and an asset registry are
// required; a surface is required for viewport and aspect tracking.
//
// Parameters:
//   - options: functional options to configure the renderer
//
// Returns:
//   - Renderer: the newly created renderer
//   - error: ErrNoContext or ErrNoRegistry when a required part is missing
func NewRenderer(options ...RendererBuilderOption) (Renderer, error) {
	r := &rendererImpl{
		lights:     light.NewRepository(),
		clearColor: common.Color{R: 0, G: 0, B: 0, A: 1},
	}
	for _, option := range options {
		option(r)
	}
	if r.ctx == nil {
		return nil, ErrNoContext
	}
	if r.registry == nil {
		return nil, ErrNoRegistry
	}
	return r, nil
}

func (r *rendererImpl) Lights() light.Repository {
	return r.lights
}

func (r *rendererImpl) SetClearColor(color common.Color) {
	r.clearColor = color
}

func (r *rendererImpl) RenderFrame(s scene.Scene) error {
	s.UpdateWorldMatrices()
	r.lights.Rebuild(s.LightEntries())

	cam, camID, ok := s.MainCamera()
	if !ok {
		return ErrNoCamera
	}
	camWorld, err := s.WorldMatrix(camID)
	if err != nil {
		return err
	}

	r.prepareSurface(cam)

	view := cam.ViewMatrix(camWorld)
	projection := cam.ProjectionMatrix()
	position := cam.Position(camWorld)

	r.ctx.ClearColor(r.clearColor.R, r.clearColor.G, r.clearColor.B, r.clearColor.A)
	r.ctx.Clear(true, true)
	r.ctx.Enable(gpu.DepthTest)
	r.ctx.Enable(gpu.CullFace)

	opaque, transparent := r.group(s)
	r.ctx.Disable(gpu.Blend)
	for _, group := range opaque {
		r.drawMaterialGroup(group, view, projection, position)
	}
	r.ctx.Enable(gpu.Blend)
	for _, group := range transparent {
		r.drawMaterialGroup(group, view, projection, position)
	}
	return nil
}

// prepareSurface tracks surface resizes: the viewport and the main camera's
// aspect ratio follow the drawable size.
func (r *rendererImpl) prepareSurface(cam camera.Camera) {
	if r.surface == nil {
		return
	}
	width, height := r.surface.Size()
	if width == r.lastWidth && height == r.lastHeight {
		return
	}
	r.lastWidth = width
	r.lastHeight = height
	r.ctx.Viewport(0, 0, width, height)
	if height > 0 {
		cam.SetAspectRatio(float32(width) / float32(height))
	}
}

// group buckets the scene's enabled mesh entities by material, then mesh,
// splitting opaque from transparent materials. Entities with broken
// references or unreadable world matrices are logged and dropped here,
// before any GPU state changes.
func (r *rendererImpl) group(s scene.Scene) (opaque, transparent []*materialGroup) {
	groups := make(map[int]*materialGroup)
	for _, entity := range s.MeshEntities() {
		m := r.registry.MaterialAt(entity.Ref.MaterialID)
		if m == nil {
			r.log().Error("skipping entity with unknown material", "material", entity.Ref.MaterialID)
			continue
		}
		// A negative instance index means the entity draws with the shared
		// material alone; a non-negative one must resolve.
		if entity.Ref.MaterialInstanceID >= 0 && r.registry.MaterialInstanceAt(entity.Ref.MaterialInstanceID) == nil {
			r.log().Error("skipping entity with unknown material instance", "instance", entity.Ref.MaterialInstanceID)
			continue
		}
		if r.registry.MeshDataAt(entity.Ref.MeshDataID) == nil {
			r.log().Error("skipping entity with unknown mesh data", "mesh", entity.Ref.MeshDataID)
			continue
		}
		world, err := s.WorldMatrix(entity.Transform)
		if err != nil {
			r.log().Error("skipping entity without world matrix", "error", err)
			continue
		}

		group, ok := groups[entity.Ref.MaterialID]
		if !ok {
			group = &materialGroup{materialIndex: entity.Ref.MaterialID, meshes: make(map[int]*meshGroup)}
			groups[entity.Ref.MaterialID] = group
		}
		mg, ok := group.meshes[entity.Ref.MeshDataID]
		if !ok {
			mg = &meshGroup{meshIndex: entity.Ref.MeshDataID}
			group.meshes[entity.Ref.MeshDataID] = mg
		}
		mg.items = append(mg.items, drawItem{instanceIndex: entity.Ref.MaterialInstanceID, world: world})
	}

	for _, group := range groups {
		// Items sort by instance so equal instances draw back to back and
		// their override uniforms upload once per run.
		for _, mg := range group.meshes {
			sort.Slice(mg.items, func(i, j int) bool { return mg.items[i].instanceIndex < mg.items[j].instanceIndex })
		}
		if r.registry.MaterialAt(group.materialIndex).Transparent() {
			transparent = append(transparent, group)
		} else {
			opaque = append(opaque, group)
		}
	}
	// Registry order keeps frames deterministic; there is no depth sort,
	// even among transparent materials.
	sort.Slice(opaque, func(i, j int) bool { return opaque[i].materialIndex < opaque[j].materialIndex })
	sort.Slice(transparent, func(i, j int) bool { return transparent[i].materialIndex < transparent[j].materialIndex })
	return opaque, transparent
}

// drawMaterialGroup binds one material's program once and draws every mesh
// group under it.
func (r *rendererImpl) drawMaterialGroup(group *materialGroup, view, projection mgl32.Mat4, cameraPosition mgl32.Vec3) {
	m := r.registry.MaterialAt(group.materialIndex)
	r.ctx.UseProgram(m.Program())
	m.LookupLocations(r.ctx, r.lights.Config())

	globals := m.GlobalLocations()
	if globals.ViewMatrix != gpu.UniformLocationNone {
		r.ctx.UniformMatrix4fv(globals.ViewMatrix, view[:])
	}
	if globals.ProjectionMatrix != gpu.UniformLocationNone {
		r.ctx.UniformMatrix4fv(globals.ProjectionMatrix, projection[:])
	}
	if globals.CameraPosition != gpu.UniformLocationNone {
		r.ctx.Uniform3fv(globals.CameraPosition, cameraPosition[:])
	}
	if m.Lit() {
		r.lights.SetMaterialUniforms(r.ctx, m)
	}
	m.SetUniformsToContext(r.ctx)

	meshIndices := make([]int, 0, len(group.meshes))
	for index := range group.meshes {
		meshIndices = append(meshIndices, index)
	}
	sort.Ints(meshIndices)

	for _, meshIndex := range meshIndices {
		r.drawMeshGroup(m, globals, group.meshes[meshIndex])
	}
}

// drawMeshGroup binds one mesh's buffers and draws each item with its world
// matrix. Instance override uniforms upload only when the instance changes
// from the previous item; group() orders items so equal instances are
// adjacent.
func (r *rendererImpl) drawMeshGroup(m material.Material, globals *material.GlobalUniformLocations, group *meshGroup) {
	md := r.registry.MeshDataAt(group.meshIndex)
	md.LookupLocations(r.ctx, m)

	for _, b := range md.Buffers() {
		if err := b.EnableAndBindAttribute(r.ctx); err != nil {
			r.log().Warn("skipping mesh attribute", "mesh", md.ID(), "error", err)
		}
	}
	indexed := md.IndexBuffer() != nil
	if indexed {
		if err := md.IndexBuffer().EnableAndBindAttribute(r.ctx); err != nil {
			r.log().Warn("skipping mesh without index binding", "mesh", md.ID(), "error", err)
			return
		}
	}

	lastInstance := -1
	for _, item := range group.items {
		if item.instanceIndex >= 0 && item.instanceIndex != lastInstance {
			if instance := r.registry.MaterialInstanceAt(item.instanceIndex); instance != nil {
				instance.LookupLocations(r.ctx)
				instance.SetUniformsToContext(r.ctx)
			}
			lastInstance = item.instanceIndex
		}
		if globals.WorldTransform != gpu.UniformLocationNone {
			world := item.world
			r.ctx.UniformMatrix4fv(globals.WorldTransform, world[:])
		}
		if indexed {
			r.ctx.DrawIndexedTriangles(md.IndexBuffer().ElementCount())
		} else {
			r.ctx.DrawTriangles(0, md.VertexCount())
		}
	}
}

func (r *rendererImpl) log() *slog.Logger {
	if r.logger != nil {
		return r.logger
	}
	return wtvr3d.Logger()
}
