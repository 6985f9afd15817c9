package material

import (
	"errors"
	"strings"
	"testing"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/wtvr-engine/wtvr3d/common"
	"github.com/wtvr-engine/wtvr3d/engine/gpu"
	"github.com/wtvr-engine/wtvr3d/engine/gpu/gputest"
	"github.com/wtvr-engine/wtvr3d/engine/uniform"
)

const (
	testVertexSrc   = "void main() { gl_Position = vec4(0.0); }"
	testFragmentSrc = "void main() { gl_FragColor = vec4(1.0); }"
)

func newTestMaterial(t *testing.T, ctx *gputest.Context, options ...MaterialBuilderOption) Material {
	t.Helper()
	m, err := New(ctx, "test_material", testVertexSrc, testFragmentSrc, options...)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return m
}

func TestNewCompilesAndLinksOnce(t *testing.T) {
	ctx := gputest.NewContext()
	m := newTestMaterial(t, ctx)

	if m.Program() == 0 {
		t.Fatal("expected a valid program handle")
	}
	if got := ctx.Calls["CompileShader"]; got != 2 {
		t.Errorf("CompileShader calls = %d, want 2", got)
	}
	if got := ctx.Calls["LinkProgram"]; got != 1 {
		t.Errorf("LinkProgram calls = %d, want 1", got)
	}
	// Shader objects are released once the program holds them.
	if got := ctx.Calls["DeleteShader"]; got != 2 {
		t.Errorf("DeleteShader calls = %d, want 2", got)
	}
}

func TestNewReportsCompileFailureWithStageAndLog(t *testing.T) {
	ctx := gputest.NewContext()
	ctx.CompileErr[gpu.FragmentShader] = "0:12 undeclared identifier"

	_, err := New(ctx, "broken", testVertexSrc, testFragmentSrc)
	if err == nil {
		t.Fatal("expected a compile error")
	}
	var compileErr *CompileError
	if !errors.As(err, &compileErr) {
		t.Fatalf("error type = %T, want *CompileError", err)
	}
	if compileErr.Stage != gpu.FragmentShader {
		t.Errorf("stage = %v, want fragment", compileErr.Stage)
	}
	if !strings.Contains(compileErr.Log, "undeclared identifier") {
		t.Errorf("log %q does not carry the compiler output", compileErr.Log)
	}
	if compileErr.Material != "broken" {
		t.Errorf("material = %q, want %q", compileErr.Material, "broken")
	}
}

func TestNewReportsLinkFailureWithLog(t *testing.T) {
	ctx := gputest.NewContext()
	ctx.LinkErr = "varying v_normal not written by vertex stage"

	_, err := New(ctx, "broken", testVertexSrc, testFragmentSrc)
	var linkErr *LinkError
	if !errors.As(err, &linkErr) {
		t.Fatalf("error type = %T, want *LinkError", err)
	}
	if !strings.Contains(linkErr.Log, "v_normal") {
		t.Errorf("log %q does not carry the linker output", linkErr.Log)
	}
}

func TestRegisterAttributeLocationQueriesOnce(t *testing.T) {
	ctx := gputest.NewContext()
	m := newTestMaterial(t, ctx)

	first := m.RegisterAttributeLocation(ctx, common.VertexBufferName)
	for i := 0; i < 5; i++ {
		if got := m.RegisterAttributeLocation(ctx, common.VertexBufferName); got != first {
			t.Fatalf("repeated registration returned %d, want %d", got, first)
		}
	}
	if got := ctx.AttribQueries[common.VertexBufferName]; got != 1 {
		t.Errorf("GetAttribLocation ran %d times, want 1", got)
	}
}

func TestRegisterAttributeLocationCachesMisses(t *testing.T) {
	ctx := gputest.NewContext()
	ctx.MissingAttribs[common.WeightBufferName] = true
	m := newTestMaterial(t, ctx)

	for i := 0; i < 3; i++ {
		if got := m.RegisterAttributeLocation(ctx, common.WeightBufferName); got != gpu.AttribLocationNone {
			t.Fatalf("missing attribute resolved to %d", got)
		}
	}
	if got := ctx.AttribQueries[common.WeightBufferName]; got != 1 {
		t.Errorf("GetAttribLocation ran %d times for a missing attribute, want 1", got)
	}
}

func TestLookupLocationsIsIdempotent(t *testing.T) {
	ctx := gputest.NewContext()
	m := newTestMaterial(t, ctx)
	m.SetUniform("u_color", uniform.Vec3(mgl32.Vec3{1, 0, 0}))

	config := LightConfig{Directional: 1, Point: 2}
	m.LookupLocations(ctx, config)
	queries := ctx.Calls["GetUniformLocation"]
	m.LookupLocations(ctx, config)
	m.LookupLocations(ctx, config)
	if got := ctx.Calls["GetUniformLocation"]; got != queries {
		t.Errorf("repeated lookup issued %d extra queries", got-queries)
	}

	globals := m.GlobalLocations()
	if globals.ViewMatrix == gpu.UniformLocationNone {
		t.Error("view matrix location not resolved")
	}
	if len(globals.Directional) != 1 || len(globals.Point) != 2 || len(globals.Spot) != 0 {
		t.Errorf("light slots = %d/%d/%d, want 1/2/0",
			len(globals.Directional), len(globals.Point), len(globals.Spot))
	}
}

func TestLookupLocationsGrowsLightSlotsIncrementally(t *testing.T) {
	ctx := gputest.NewContext()
	m := newTestMaterial(t, ctx)

	m.LookupLocations(ctx, LightConfig{Point: 1})
	firstSlotQueries := ctx.UniformQueries["u_point_lights[0].color"]
	m.LookupLocations(ctx, LightConfig{Point: 3})

	if got := len(m.GlobalLocations().Point); got != 3 {
		t.Fatalf("point slots = %d, want 3", got)
	}
	if got := ctx.UniformQueries["u_point_lights[0].color"]; got != firstSlotQueries {
		t.Error("growing the config re-resolved an existing slot")
	}
	if got := ctx.UniformQueries["u_point_lights[2].color"]; got != 1 {
		t.Errorf("slot 2 resolved %d times, want 1", got)
	}
}

func TestSetUniformReplacementKeepsLocationAndUnit(t *testing.T) {
	ctx := gputest.NewContext()
	m := newTestMaterial(t, ctx)

	tex, err := ctx.CreateTexture(2, 2, make([]byte, 16))
	if err != nil {
		t.Fatalf("CreateTexture: %v", err)
	}
	m.SetUniform("u_diffuse", uniform.TextureRef(tex))
	m.LookupLocations(ctx, LightConfig{})

	u := m.Uniform("u_diffuse")
	location, _ := u.Location()
	unit := u.TextureUnit()
	if unit < 0 {
		t.Fatal("sampler uniform was not assigned a texture unit")
	}

	replacement, err := ctx.CreateTexture(4, 4, make([]byte, 64))
	if err != nil {
		t.Fatalf("CreateTexture: %v", err)
	}
	m.SetUniform("u_diffuse", uniform.TextureRef(replacement))

	u = m.Uniform("u_diffuse")
	if gotLoc, _ := u.Location(); gotLoc != location {
		t.Errorf("replacement changed the cached location: %d -> %d", location, gotLoc)
	}
	if got := u.TextureUnit(); got != unit {
		t.Errorf("replacement changed the texture unit: %d -> %d", unit, got)
	}
	if got := ctx.UniformQueries["u_diffuse"]; got != 1 {
		t.Errorf("replacement triggered %d extra location queries", got-1)
	}
}

func TestTextureUnitsAreUniqueAcrossMaterialAndInstances(t *testing.T) {
	ctx := gputest.NewContext()
	m := newTestMaterial(t, ctx)

	tex := func(size int) gpu.Texture {
		t.Helper()
		handle, err := ctx.CreateTexture(size, size, make([]byte, size*size*4))
		if err != nil {
			t.Fatalf("CreateTexture: %v", err)
		}
		return handle
	}

	m.SetUniform("u_diffuse", uniform.TextureRef(tex(2)))
	a := NewInstance("a", m)
	b := NewInstance("b", m)
	a.SetUniform("u_detail", uniform.TextureRef(tex(2)))
	b.SetUniform("u_overlay", uniform.TextureRef(tex(2)))

	seen := map[int]string{
		m.Uniform("u_diffuse").TextureUnit(): "u_diffuse",
	}
	for _, probe := range []struct {
		name string
		u    *uniform.Uniform
	}{
		{"u_detail", a.Uniform("u_detail")},
		{"u_overlay", b.Uniform("u_overlay")},
	} {
		unit := probe.u.TextureUnit()
		if unit < 0 {
			t.Fatalf("%s has no texture unit", probe.name)
		}
		if other, taken := seen[unit]; taken {
			t.Errorf("unit %d shared by %s and %s", unit, other, probe.name)
		}
		seen[unit] = probe.name
	}
}

func TestInstanceSetUniformRedirectsSharedNames(t *testing.T) {
	ctx := gputest.NewContext()
	m := newTestMaterial(t, ctx)
	m.SetUniform("u_color", uniform.Vec3(mgl32.Vec3{1, 1, 1}))

	mi := NewInstance("a", m)
	mi.SetUniform("u_color", uniform.Vec3(mgl32.Vec3{1, 0, 0}))

	if mi.Uniform("u_color") != nil {
		t.Error("shared name created an instance-local uniform")
	}
	shared := m.Uniform("u_color")
	if shared == nil {
		t.Fatal("shared uniform disappeared")
	}
	got := shared.Value().Floats()
	if got[0] != 1 || got[1] != 0 || got[2] != 0 {
		t.Errorf("shared value = %v, want [1 0 0]", got)
	}

	// Non-colliding names stay instance-local.
	mi.SetUniform("u_tint", uniform.Float(0.5))
	if mi.Uniform("u_tint") == nil {
		t.Error("instance-local uniform missing")
	}
	if m.HasUniform("u_tint") {
		t.Error("instance-local uniform leaked into the shared material")
	}
}

func TestSetUniformsToContextSkipsUndeclaredUniforms(t *testing.T) {
	ctx := gputest.NewContext()
	ctx.MissingUniforms["u_ghost"] = true
	m := newTestMaterial(t, ctx)
	m.SetUniform("u_ghost", uniform.Float(1))
	m.SetUniform("u_color", uniform.Vec3(mgl32.Vec3{0, 1, 0}))
	m.LookupLocations(ctx, LightConfig{})

	m.SetUniformsToContext(ctx)

	if got := len(ctx.Uploads); got != 1 {
		t.Fatalf("uploads = %d, want 1 (undeclared uniform skipped)", got)
	}
	if ctx.Uploads[0].Method != "Uniform3fv" {
		t.Errorf("upload method = %q, want Uniform3fv", ctx.Uploads[0].Method)
	}
}

func TestDestroyInvalidatesCaches(t *testing.T) {
	ctx := gputest.NewContext()
	m := newTestMaterial(t, ctx)
	m.RegisterAttributeLocation(ctx, common.VertexBufferName)
	m.LookupLocations(ctx, LightConfig{Directional: 1})

	m.Destroy(ctx)

	if got := ctx.Calls["DeleteProgram"]; got != 1 {
		t.Errorf("DeleteProgram calls = %d, want 1", got)
	}
	if _, ok := m.AttributeLocation(common.VertexBufferName); ok {
		t.Error("attribute cache survived Destroy")
	}
	if m.GlobalLocations().ViewMatrix != gpu.UniformLocationNone {
		t.Error("global locations survived Destroy")
	}
}
