package camera

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

func TestDefaults(t *testing.T) {
	c := NewCamera()
	if got := c.Fov(); got != mgl32.DegToRad(45) {
		t.Errorf("fov = %v, want 45 degrees in radians", got)
	}
	if got := c.Aspect(); got != 1.0 {
		t.Errorf("aspect = %v, want 1.0", got)
	}
	if c.Near() != 0.1 || c.Far() != 100.0 {
		t.Errorf("planes = %v/%v, want 0.1/100", c.Near(), c.Far())
	}
}

func TestProjectionMatchesSettings(t *testing.T) {
	c := NewCamera(WithFov(mgl32.DegToRad(60)), WithAspect(16.0/9.0), WithNear(0.5), WithFar(200))
	want := mgl32.Perspective(mgl32.DegToRad(60), 16.0/9.0, 0.5, 200)
	if got := c.ProjectionMatrix(); got != want {
		t.Errorf("projection = %v, want %v", got, want)
	}
}

func TestSetAspectRatioRecomputesProjection(t *testing.T) {
	c := NewCamera()
	before := c.ProjectionMatrix()
	c.SetAspectRatio(2.0)
	after := c.ProjectionMatrix()
	if before == after {
		t.Error("projection did not change after aspect update")
	}
	if want := mgl32.Perspective(c.Fov(), 2.0, c.Near(), c.Far()); after != want {
		t.Errorf("projection = %v, want %v", after, want)
	}
}

func TestViewMatrixInvertsWorldMatrix(t *testing.T) {
	c := NewCamera()
	world := mgl32.Translate3D(3, -2, 5).Mul4(mgl32.HomogRotate3DY(mgl32.DegToRad(30)))
	view := c.ViewMatrix(world)

	identity := world.Mul4(view)
	for i, v := range identity {
		want := float32(0)
		if i%5 == 0 {
			want = 1
		}
		if diff := v - want; diff > 1e-5 || diff < -1e-5 {
			t.Fatalf("world*view[%d] = %v, want %v", i, v, want)
		}
	}
}

func TestViewProjectionCombinesBoth(t *testing.T) {
	c := NewCamera()
	world := mgl32.Translate3D(0, 1, 4)
	want := c.ProjectionMatrix().Mul4(c.ViewMatrix(world))
	if got := c.ViewProjectionMatrix(world); got != want {
		t.Errorf("view-projection = %v, want %v", got, want)
	}
}

func TestPositionExtractsTranslation(t *testing.T) {
	c := NewCamera()
	world := mgl32.Translate3D(1, 2, 3)
	if got := c.Position(world); got != (mgl32.Vec3{1, 2, 3}) {
		t.Errorf("position = %v, want [1 2 3]", got)
	}
}
