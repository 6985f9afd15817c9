package scene

import (
	"errors"
	"testing"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/wtvr-engine/wtvr3d/engine/camera"
	"github.com/wtvr-engine/wtvr3d/engine/light"
)

func mat4Near(t *testing.T, got, want mgl32.Mat4, context string) {
	t.Helper()
	for i := range got {
		diff := got[i] - want[i]
		if diff > 1e-5 || diff < -1e-5 {
			t.Fatalf("%s: matrix[%d] = %v, want %v", context, i, got[i], want[i])
		}
	}
}

func TestAppendNewStartsDirty(t *testing.T) {
	s := NewScene()
	id := s.AppendNew()

	if _, err := s.WorldMatrix(id); !errors.Is(err, ErrDirtyTransform) {
		t.Fatalf("WorldMatrix before update = %v, want ErrDirtyTransform", err)
	}
	s.UpdateWorldMatrices()
	world, err := s.WorldMatrix(id)
	if err != nil {
		t.Fatalf("WorldMatrix after update: %v", err)
	}
	mat4Near(t, world, mgl32.Ident4(), "fresh root")
}

func TestWorldMatrixComposesParentChain(t *testing.T) {
	s := NewScene()
	root := s.AppendNew()
	child, err := s.AppendChild(root)
	if err != nil {
		t.Fatalf("AppendChild: %v", err)
	}

	if err := s.SetTranslation(root, mgl32.Vec3{10, 0, 0}); err != nil {
		t.Fatal(err)
	}
	if err := s.SetTranslation(child, mgl32.Vec3{0, 5, 0}); err != nil {
		t.Fatal(err)
	}
	if err := s.SetScale(root, mgl32.Vec3{2, 2, 2}); err != nil {
		t.Fatal(err)
	}
	s.UpdateWorldMatrices()

	world, err := s.WorldMatrix(child)
	if err != nil {
		t.Fatal(err)
	}
	want := mgl32.Translate3D(10, 0, 0).Mul4(mgl32.Scale3D(2, 2, 2)).Mul4(mgl32.Translate3D(0, 5, 0))
	mat4Near(t, world, want, "child under translated scaled root")
}

func TestDirtinessPropagatesToCleanChildren(t *testing.T) {
	s := NewScene()
	root := s.AppendNew()
	child, _ := s.AppendChild(root)
	grandchild, _ := s.AppendChild(child)
	s.UpdateWorldMatrices()

	// Only the root moves; the clean descendants must still follow.
	if err := s.SetTranslation(root, mgl32.Vec3{0, 0, 7}); err != nil {
		t.Fatal(err)
	}
	if _, err := s.WorldMatrix(root); !errors.Is(err, ErrDirtyTransform) {
		t.Fatal("moved root did not report dirty")
	}
	s.UpdateWorldMatrices()

	world, err := s.WorldMatrix(grandchild)
	if err != nil {
		t.Fatal(err)
	}
	mat4Near(t, world, mgl32.Translate3D(0, 0, 7), "grandchild after root move")
}

func TestUpdateLeavesUnrelatedSubtreesUntouched(t *testing.T) {
	s := NewScene()
	a := s.AppendNew()
	b := s.AppendNew()
	s.SetTranslation(b, mgl32.Vec3{1, 1, 1})
	s.UpdateWorldMatrices()

	s.SetTranslation(a, mgl32.Vec3{5, 0, 0})
	s.UpdateWorldMatrices()

	world, err := s.WorldMatrix(b)
	if err != nil {
		t.Fatal(err)
	}
	mat4Near(t, world, mgl32.Translate3D(1, 1, 1), "untouched sibling root")
}

func TestDestroyCascadesAndPatchesSiblings(t *testing.T) {
	s := NewScene()
	root := s.AppendNew()
	first, _ := s.AppendChild(root)
	second, _ := s.AppendChild(root)
	third, _ := s.AppendChild(root)
	grandchild, _ := s.AppendChild(second)

	if err := s.Destroy(second); err != nil {
		t.Fatalf("Destroy: %v", err)
	}

	if s.Alive(second) || s.Alive(grandchild) {
		t.Error("destroyed subtree still resolves")
	}
	children := s.Children(root)
	if len(children) != 2 || children[0] != first || children[1] != third {
		t.Errorf("children after destroy = %v, want [first third]", children)
	}
	if got := s.Len(); got != 3 {
		t.Errorf("live transforms = %d, want 3", got)
	}
}

func TestStaleIDsAreRejectedAfterSlotReuse(t *testing.T) {
	s := NewScene()
	s.AppendNew()
	old := s.AppendNew()
	if err := s.Destroy(old); err != nil {
		t.Fatal(err)
	}

	reused := s.AppendNew()
	if reused.Index != old.Index {
		t.Fatalf("free slot was not reused: got index %d, want %d", reused.Index, old.Index)
	}
	if reused.Generation == old.Generation {
		t.Fatal("reused slot kept its generation")
	}
	if err := s.SetTranslation(old, mgl32.Vec3{1, 2, 3}); !errors.Is(err, ErrStaleTransform) {
		t.Errorf("stale id error = %v, want ErrStaleTransform", err)
	}
	if !s.Alive(reused) {
		t.Error("fresh id on the reused slot does not resolve")
	}
}

func TestMeshEntitiesSkipDisabled(t *testing.T) {
	s := NewScene()
	visible := s.AppendNew()
	hidden := s.AppendNew()
	bare := s.AppendNew()
	_ = bare

	ref := MeshRef{MaterialID: 0, MaterialInstanceID: 1, MeshDataID: 2}
	s.SetMeshRef(visible, ref)
	s.SetMeshRef(hidden, ref)
	s.SetEnabled(hidden, false)

	entities := s.MeshEntities()
	if len(entities) != 1 {
		t.Fatalf("entities = %d, want 1", len(entities))
	}
	if entities[0].Transform != visible || entities[0].Ref != ref {
		t.Errorf("entity = %+v, want the enabled mesh entity", entities[0])
	}
}

func TestLightEntriesUseWorldSpace(t *testing.T) {
	s := NewScene()

	sun := s.AppendNew()
	s.SetLightSource(sun, light.Source{Color: mgl32.Vec3{1, 1, 1}, Intensity: 1})
	s.SetLightDirection(sun, mgl32.Vec3{0, 0, -1})
	s.SetRotation(sun, mgl32.QuatRotate(mgl32.DegToRad(90), mgl32.Vec3{0, 1, 0}))

	lamp := s.AppendNew()
	s.SetLightSource(lamp, light.Source{Color: mgl32.Vec3{1, 0.5, 0}, Intensity: 2, Attenuation: 0.1})
	s.SetTranslation(lamp, mgl32.Vec3{3, 4, 5})

	fill := s.AppendNew()
	s.SetAmbientLight(fill, light.Source{Color: mgl32.Vec3{0.1, 0.1, 0.1}, Intensity: 1})

	s.UpdateWorldMatrices()
	entries := s.LightEntries()
	if len(entries) != 3 {
		t.Fatalf("entries = %d, want 3", len(entries))
	}

	kinds := map[light.Kind]light.Entry{}
	for _, e := range entries {
		kinds[e.Classify()] = e
	}

	directional, ok := kinds[light.KindDirectional]
	if !ok {
		t.Fatal("no directional entry")
	}
	// -Z rotated 90 degrees around Y lands on -X.
	d := *directional.Direction
	if diff := d[0] + 1; diff > 1e-5 || diff < -1e-5 {
		t.Errorf("world direction = %v, want [-1 0 0]", d)
	}

	point, ok := kinds[light.KindPoint]
	if !ok {
		t.Fatal("no point entry")
	}
	if got := *point.Position; got != (mgl32.Vec3{3, 4, 5}) {
		t.Errorf("world position = %v, want [3 4 5]", got)
	}

	if _, ok := kinds[light.KindAmbient]; !ok {
		t.Error("no ambient entry")
	}
}

func TestMainCameraFollowsFirstAttachAndDestroy(t *testing.T) {
	s := NewScene()
	first := s.AppendNew()
	second := s.AppendNew()
	s.SetCamera(first, camera.NewCamera())
	s.SetCamera(second, camera.NewCamera())

	if _, id, ok := s.MainCamera(); !ok || id != first {
		t.Fatal("first attached camera is not the main camera")
	}
	if err := s.SetMainCamera(second); err != nil {
		t.Fatal(err)
	}
	if err := s.Destroy(second); err != nil {
		t.Fatal(err)
	}
	if _, _, ok := s.MainCamera(); ok {
		t.Error("destroyed main camera still reported")
	}
}
