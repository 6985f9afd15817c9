package renderer

import (
	"bytes"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/wtvr-engine/wtvr3d/common"
	"github.com/wtvr-engine/wtvr3d/engine/asset"
	"github.com/wtvr-engine/wtvr3d/engine/camera"
	"github.com/wtvr-engine/wtvr3d/engine/gpu/gputest"
	"github.com/wtvr-engine/wtvr3d/engine/light"
	"github.com/wtvr-engine/wtvr3d/engine/scene"
	"github.com/wtvr-engine/wtvr3d/engine/uniform"
)

type fixedSurface struct {
	width  int32
	height int32
}

func (s *fixedSurface) Size() (int32, int32) {
	return s.width, s.height
}

// frame is a ready-to-render fixture: context, registry, renderer, and a
// scene with a camera at the origin. Renderer log output is captured in log
// so tests can assert on skipped work.
type frame struct {
	ctx      *gputest.Context
	registry asset.Registry
	renderer Renderer
	scene    scene.Scene
	surface  *fixedSurface
	log      *bytes.Buffer
}

func newFrame(t *testing.T) *frame {
	t.Helper()
	ctx := gputest.NewContext()
	registry := asset.NewRegistry()
	surface := &fixedSurface{width: 800, height: 600}
	logBuf := &bytes.Buffer{}
	r, err := NewRenderer(
		WithContext(ctx),
		WithRegistry(registry),
		WithSurface(surface),
		WithLogger(slog.New(slog.NewTextHandler(logBuf, nil))),
	)
	if err != nil {
		t.Fatalf("NewRenderer: %v", err)
	}

	s := scene.NewScene()
	camID := s.AppendNew()
	if err := s.SetCamera(camID, camera.NewCamera()); err != nil {
		t.Fatal(err)
	}
	return &frame{ctx: ctx, registry: registry, renderer: r, scene: s, surface: surface, log: logBuf}
}

// addMaterial registers a material plus one instance, returning both
// registry indices.
func (f *frame) addMaterial(t *testing.T, id string, transparent bool) (materialIndex, instanceIndex int) {
	t.Helper()
	file := &asset.MaterialFile{
		ID:             id,
		VertexShader:   "vertex src",
		FragmentShader: "fragment src",
		Transparent:    transparent,
	}
	if _, err := f.registry.RegisterMaterialFile(f.ctx, file); err != nil {
		t.Fatalf("RegisterMaterialFile: %v", err)
	}
	instance := &asset.MaterialInstanceFile{ID: id + "-instance", ParentID: id}
	if _, err := f.registry.RegisterMaterialInstanceFile(instance); err != nil {
		t.Fatalf("RegisterMaterialInstanceFile: %v", err)
	}
	materialIndex, _ = f.registry.MaterialIndex(id)
	instanceIndex, _ = f.registry.MaterialInstanceIndex(id + "-instance")
	return materialIndex, instanceIndex
}

func (f *frame) addMesh(t *testing.T, id string, options ...asset.MeshRegisterOption) int {
	t.Helper()
	file := &asset.MeshFile{
		ID: id,
		Buffers: []asset.FileBuffer{
			{
				Name:     common.VertexBufferName,
				DataType: uniform.Vector3,
				Data:     []float32{0, 0, 0, 1, 0, 0, 0, 1, 0},
			},
		},
		Triangles: []asset.Triangle{{0, 1, 2}},
	}
	if _, err := f.registry.RegisterMeshFile(f.ctx, file, options...); err != nil {
		t.Fatalf("RegisterMeshFile: %v", err)
	}
	index, _ := f.registry.MeshDataIndex(id)
	return index
}

func (f *frame) addEntity(t *testing.T, ref scene.MeshRef) scene.TransformID {
	t.Helper()
	id := f.scene.AppendNew()
	if err := f.scene.SetMeshRef(id, ref); err != nil {
		t.Fatal(err)
	}
	return id
}

func TestRenderFrameRequiresCamera(t *testing.T) {
	ctx := gputest.NewContext()
	r, err := NewRenderer(WithContext(ctx), WithRegistry(asset.NewRegistry()))
	if err != nil {
		t.Fatal(err)
	}
	if err := r.RenderFrame(scene.NewScene()); !errors.Is(err, ErrNoCamera) {
		t.Fatalf("error = %v, want ErrNoCamera", err)
	}
}

func TestNewRendererRequiresContextAndRegistry(t *testing.T) {
	if _, err := NewRenderer(WithRegistry(asset.NewRegistry())); !errors.Is(err, ErrNoContext) {
		t.Errorf("error = %v, want ErrNoContext", err)
	}
	if _, err := NewRenderer(WithContext(gputest.NewContext())); !errors.Is(err, ErrNoRegistry) {
		t.Errorf("error = %v, want ErrNoRegistry", err)
	}
}

func TestProgramBindsOncePerMaterialGroup(t *testing.T) {
	f := newFrame(t)
	matIndex, instIndex := f.addMaterial(t, "shared", false)
	meshA := f.addMesh(t, "a")
	meshB := f.addMesh(t, "b")

	// Three entities over two meshes, all one material.
	f.addEntity(t, scene.MeshRef{MaterialID: matIndex, MaterialInstanceID: instIndex, MeshDataID: meshA})
	f.addEntity(t, scene.MeshRef{MaterialID: matIndex, MaterialInstanceID: instIndex, MeshDataID: meshA})
	f.addEntity(t, scene.MeshRef{MaterialID: matIndex, MaterialInstanceID: instIndex, MeshDataID: meshB})

	if err := f.renderer.RenderFrame(f.scene); err != nil {
		t.Fatalf("RenderFrame: %v", err)
	}

	if got := len(f.ctx.ProgramSwitches); got != 1 {
		t.Errorf("program switches = %d, want 1", got)
	}
	if got := len(f.ctx.Draws); got != 3 {
		t.Errorf("draws = %d, want 3", got)
	}
}

func TestOpaqueDrawsBeforeTransparent(t *testing.T) {
	f := newFrame(t)
	// Transparent material registers first; it must still draw last.
	glassIndex, glassInstance := f.addMaterial(t, "glass", true)
	solidIndex, solidInstance := f.addMaterial(t, "solid", false)
	meshIndex := f.addMesh(t, "tri")

	f.addEntity(t, scene.MeshRef{MaterialID: glassIndex, MaterialInstanceID: glassInstance, MeshDataID: meshIndex})
	f.addEntity(t, scene.MeshRef{MaterialID: solidIndex, MaterialInstanceID: solidInstance, MeshDataID: meshIndex})

	if err := f.renderer.RenderFrame(f.scene); err != nil {
		t.Fatal(err)
	}

	if got := len(f.ctx.Draws); got != 2 {
		t.Fatalf("draws = %d, want 2", got)
	}
	solidProgram := f.registry.MaterialAt(solidIndex).Program()
	glassProgram := f.registry.MaterialAt(glassIndex).Program()
	if f.ctx.Draws[0].Program != solidProgram {
		t.Error("first draw is not the opaque material")
	}
	if f.ctx.Draws[1].Program != glassProgram {
		t.Error("last draw is not the transparent material")
	}
}

func TestIndexedAndDeindexedDraws(t *testing.T) {
	f := newFrame(t)
	matIndex, instIndex := f.addMaterial(t, "shared", false)
	soup := f.addMesh(t, "soup")
	indexed := f.addMesh(t, "indexed", asset.WithIndexBuffer())

	f.addEntity(t, scene.MeshRef{MaterialID: matIndex, MaterialInstanceID: instIndex, MeshDataID: soup})
	f.addEntity(t, scene.MeshRef{MaterialID: matIndex, MaterialInstanceID: instIndex, MeshDataID: indexed})

	if err := f.renderer.RenderFrame(f.scene); err != nil {
		t.Fatal(err)
	}

	if got := len(f.ctx.Draws); got != 2 {
		t.Fatalf("draws = %d, want 2", got)
	}
	var sawIndexed, sawPlain bool
	for _, d := range f.ctx.Draws {
		if d.Indexed {
			sawIndexed = true
		} else {
			sawPlain = true
		}
		if d.Count != 3 {
			t.Errorf("draw count = %d, want 3", d.Count)
		}
	}
	if !sawIndexed || !sawPlain {
		t.Error("expected one indexed and one plain draw")
	}
}

func TestWorldTransformUploadsPerEntity(t *testing.T) {
	f := newFrame(t)
	matIndex, instIndex := f.addMaterial(t, "shared", false)
	meshIndex := f.addMesh(t, "tri")

	moved := f.addEntity(t, scene.MeshRef{MaterialID: matIndex, MaterialInstanceID: instIndex, MeshDataID: meshIndex})
	if err := f.scene.SetTranslation(moved, mgl32.Vec3{7, 0, 0}); err != nil {
		t.Fatal(err)
	}

	if err := f.renderer.RenderFrame(f.scene); err != nil {
		t.Fatal(err)
	}

	worldLoc := f.registry.MaterialAt(matIndex).GlobalLocations().WorldTransform
	var uploaded []float32
	for _, u := range f.ctx.Uploads {
		if u.Method == "UniformMatrix4fv" && u.Location == worldLoc {
			uploaded = u.Data
		}
	}
	if uploaded == nil {
		t.Fatal("no world transform upload")
	}
	want := mgl32.Translate3D(7, 0, 0)
	for i := range want {
		if uploaded[i] != want[i] {
			t.Fatalf("world[%d] = %v, want %v", i, uploaded[i], want[i])
		}
	}
}

func TestLitMaterialReceivesLightUniforms(t *testing.T) {
	f := newFrame(t)
	file := &asset.MaterialFile{ID: "lit", VertexShader: "v", FragmentShader: "f", Lit: true}
	if _, err := f.registry.RegisterMaterialFile(f.ctx, file); err != nil {
		t.Fatal(err)
	}
	matIndex, _ := f.registry.MaterialIndex("lit")
	meshIndex := f.addMesh(t, "tri")
	f.addEntity(t, scene.MeshRef{MaterialID: matIndex, MaterialInstanceID: -1, MeshDataID: meshIndex})

	sun := f.scene.AppendNew()
	f.scene.SetLightSource(sun, light.Source{Color: mgl32.Vec3{1, 1, 1}, Intensity: 1})
	f.scene.SetLightDirection(sun, mgl32.Vec3{0, -1, 0})

	if err := f.renderer.RenderFrame(f.scene); err != nil {
		t.Fatal(err)
	}

	globals := f.registry.MaterialAt(matIndex).GlobalLocations()
	if len(globals.Directional) != 1 {
		t.Fatalf("directional slots = %d, want 1", len(globals.Directional))
	}
	found := false
	for _, u := range f.ctx.Uploads {
		if u.Location == globals.Directional[0].PositionOrDirection {
			found = true
		}
	}
	if !found {
		t.Error("directional light vector was not uploaded")
	}
}

func TestBrokenEntityIsSkippedNotFatal(t *testing.T) {
	f := newFrame(t)
	matIndex, instIndex := f.addMaterial(t, "shared", false)
	meshIndex := f.addMesh(t, "tri")

	f.addEntity(t, scene.MeshRef{MaterialID: matIndex, MaterialInstanceID: instIndex, MeshDataID: meshIndex})
	f.addEntity(t, scene.MeshRef{MaterialID: 99, MaterialInstanceID: instIndex, MeshDataID: meshIndex})

	if err := f.renderer.RenderFrame(f.scene); err != nil {
		t.Fatalf("broken entity aborted the frame: %v", err)
	}
	if got := len(f.ctx.Draws); got != 1 {
		t.Errorf("draws = %d, want 1 (broken entity skipped)", got)
	}
	if got := strings.Count(f.log.String(), "level=ERROR"); got != 1 {
		t.Errorf("error records = %d, want 1\nlog:\n%s", got, f.log.String())
	}
	if !strings.Contains(f.log.String(), "unknown material") {
		t.Errorf("skip was not logged as an unknown material:\n%s", f.log.String())
	}
}

func TestDanglingMaterialInstanceIsSkipped(t *testing.T) {
	f := newFrame(t)
	matIndex, instIndex := f.addMaterial(t, "shared", false)
	meshIndex := f.addMesh(t, "tri")

	f.addEntity(t, scene.MeshRef{MaterialID: matIndex, MaterialInstanceID: instIndex, MeshDataID: meshIndex})
	// No instance at all is legal; an index pointing past the store is not.
	f.addEntity(t, scene.MeshRef{MaterialID: matIndex, MaterialInstanceID: -1, MeshDataID: meshIndex})
	f.addEntity(t, scene.MeshRef{MaterialID: matIndex, MaterialInstanceID: 99, MeshDataID: meshIndex})

	if err := f.renderer.RenderFrame(f.scene); err != nil {
		t.Fatalf("dangling instance aborted the frame: %v", err)
	}
	if got := len(f.ctx.Draws); got != 2 {
		t.Errorf("draws = %d, want 2 (dangling instance skipped)", got)
	}
	if got := strings.Count(f.log.String(), "level=ERROR"); got != 1 {
		t.Errorf("error records = %d, want 1\nlog:\n%s", got, f.log.String())
	}
	if !strings.Contains(f.log.String(), "unknown material instance") {
		t.Errorf("skip was not logged as an unknown material instance:\n%s", f.log.String())
	}
}

func TestInstanceUniformsUploadOncePerRun(t *testing.T) {
	f := newFrame(t)
	matIndex, redIndex := f.addMaterial(t, "shared", false)
	blueFile := &asset.MaterialInstanceFile{ID: "shared-blue", ParentID: "shared"}
	if _, err := f.registry.RegisterMaterialInstanceFile(blueFile); err != nil {
		t.Fatal(err)
	}
	blueIndex, _ := f.registry.MaterialInstanceIndex("shared-blue")
	f.registry.MaterialInstanceAt(redIndex).SetUniform("u_tint", uniform.Vec3(mgl32.Vec3{1, 0, 0}))
	f.registry.MaterialInstanceAt(blueIndex).SetUniform("u_tint", uniform.Vec3(mgl32.Vec3{0, 0, 1}))
	meshIndex := f.addMesh(t, "tri")

	// Two entities share the red instance; the third draws blue.
	f.addEntity(t, scene.MeshRef{MaterialID: matIndex, MaterialInstanceID: redIndex, MeshDataID: meshIndex})
	f.addEntity(t, scene.MeshRef{MaterialID: matIndex, MaterialInstanceID: blueIndex, MeshDataID: meshIndex})
	f.addEntity(t, scene.MeshRef{MaterialID: matIndex, MaterialInstanceID: redIndex, MeshDataID: meshIndex})

	if err := f.renderer.RenderFrame(f.scene); err != nil {
		t.Fatal(err)
	}

	if got := len(f.ctx.Draws); got != 3 {
		t.Fatalf("draws = %d, want 3", got)
	}
	cameraLoc := f.registry.MaterialAt(matIndex).GlobalLocations().CameraPosition
	tintUploads := 0
	for _, u := range f.ctx.Uploads {
		if u.Method == "Uniform3fv" && u.Location != cameraLoc {
			tintUploads++
		}
	}
	if tintUploads != 2 {
		t.Errorf("tint uploads = %d, want 2 (one per instance run)", tintUploads)
	}
}

func TestResizeUpdatesViewportAndAspectOnce(t *testing.T) {
	f := newFrame(t)
	matIndex, instIndex := f.addMaterial(t, "shared", false)
	meshIndex := f.addMesh(t, "tri")
	f.addEntity(t, scene.MeshRef{MaterialID: matIndex, MaterialInstanceID: instIndex, MeshDataID: meshIndex})

	for i := 0; i < 3; i++ {
		if err := f.renderer.RenderFrame(f.scene); err != nil {
			t.Fatal(err)
		}
	}
	if got := f.ctx.Calls["Viewport"]; got != 1 {
		t.Errorf("viewport calls = %d, want 1 for a fixed-size surface", got)
	}

	f.surface.width, f.surface.height = 400, 400
	if err := f.renderer.RenderFrame(f.scene); err != nil {
		t.Fatal(err)
	}
	if got := f.ctx.Calls["Viewport"]; got != 2 {
		t.Errorf("viewport calls after resize = %d, want 2", got)
	}
	cam, _, _ := f.scene.MainCamera()
	if got := cam.Aspect(); got != 1.0 {
		t.Errorf("aspect after resize = %v, want 1.0", got)
	}
}
